package extract_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/extract"
	"github.com/parametrica/ossature/pkg/field"
)

func sphereField(r float64) field.Field {
	return func(p v3.Vec) float64 { return p.Length() - r }
}

func boxField(half float64) field.Field {
	return func(p v3.Vec) float64 {
		return math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))) - half
	}
}

func cube(min, max float64) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: min, Y: min, Z: min},
		Max: v3.Vec{X: max, Y: max, Z: max},
	}
}

// testParams returns parameters scaled to the unit-sized test fields.
func testParams() extract.Parameters {
	p := extract.DefaultParameters()
	p.Resolution = 32
	p.FloorHeight = 0.5
	p.CoreRadius = 1.0
	p.FrameThreshold = 0.1
	return p
}

func TestExtractShellSphere(t *testing.T) {
	m, err := extract.ExtractShell(context.Background(), sphereField(1), cube(-2, 2), testParams())
	if err != nil {
		t.Fatalf("ExtractShell failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("shell is empty")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("shell invalid: %v", err)
	}

	outward := 0
	for i := 0; i < m.VertexCount(); i++ {
		if m.Normal(i).Dot(m.Position(i)) > 0 {
			outward++
		}
	}
	if ratio := float64(outward) / float64(m.VertexCount()); ratio < 0.7 {
		t.Errorf("only %.0f%% outward normals, want >= 70%%", ratio*100)
	}
}

func TestExtractShellNoSurface(t *testing.T) {
	// A field uniformly positive over the box: valid, empty shell.
	m, err := extract.ExtractShell(context.Background(), sphereField(0.1), cube(1, 2), testParams())
	if err != nil {
		t.Fatalf("ExtractShell failed: %v", err)
	}
	if !m.IsEmpty() {
		t.Errorf("expected empty shell, got %d vertices", m.VertexCount())
	}
}

func TestExtractFrameThresholds(t *testing.T) {
	bb := cube(-1.5, 1.5)

	p := testParams()
	p.FrameThreshold = 0
	segments, err := extract.ExtractFrame(context.Background(), sphereField(1), bb, p)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if len(segments) == 0 {
		t.Error("zero threshold emitted no segments")
	}
	for i, s := range segments {
		if s.Length() <= 0 {
			t.Fatalf("segment %d has non-positive length", i)
		}
	}

	p.FrameThreshold = math.Inf(1)
	segments, err = extract.ExtractFrame(context.Background(), sphereField(1), bb, p)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("infinite threshold emitted %d segments, want 0", len(segments))
	}
}

func TestExtractFrameDeterministic(t *testing.T) {
	p := testParams()
	p.FrameThreshold = 0
	a, err := extract.ExtractFrame(context.Background(), sphereField(1), cube(-1.5, 1.5), p)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	b, err := extract.ExtractFrame(context.Background(), sphereField(1), cube(-1.5, 1.5), p)
	if err != nil {
		t.Fatalf("ExtractFrame failed: %v", err)
	}
	if len(a) != len(b) {
		t.Errorf("repeat runs differ: %d vs %d segments", len(a), len(b))
	}
}

func TestSliceFloors(t *testing.T) {
	bb := cube(-1.2, 1.2)
	p := testParams()

	floors, heights, err := extract.SliceFloors(context.Background(), sphereField(1), bb, p)
	if err != nil {
		t.Fatalf("SliceFloors failed: %v", err)
	}
	if len(floors) == 0 {
		t.Fatal("no floor slices retained")
	}
	if len(floors) != len(heights) {
		t.Fatalf("%d floors but %d heights", len(floors), len(heights))
	}

	for i, h := range heights {
		if i > 0 && h <= heights[i-1] {
			t.Errorf("heights not strictly increasing at %d: %v", i, heights)
		}
		// Every retained height sits on the floor lattice.
		k := (h - bb.Min.Y) / p.FloorHeight
		if math.Abs(k-math.Round(k)) > 1e-9 {
			t.Errorf("height %g is not min.y + k*floorHeight", h)
		}
	}

	for i, m := range floors {
		if err := m.Validate(); err != nil {
			t.Errorf("floor %d invalid: %v", i, err)
		}
		if m.VertexCount() <= 16 {
			t.Errorf("floor %d kept with only %d vertices", i, m.VertexCount())
		}
	}
}

func TestSampleCore(t *testing.T) {
	bb := cube(-1.2, 1.2)
	p := testParams()

	points, err := extract.SampleCore(context.Background(), sphereField(1), bb, p)
	if err != nil {
		t.Fatalf("SampleCore failed: %v", err)
	}
	if len(points) == 0 {
		t.Fatal("no core points for a sphere crossing the core cylinder")
	}

	near := p.CoreRadius / 8 / 2
	f := sphereField(1)
	for i, pt := range points {
		horizontal := math.Hypot(pt.X, pt.Z)
		if horizontal > p.CoreRadius+1e-9 {
			t.Errorf("point %d at horizontal distance %g outside core radius %g", i, horizontal, p.CoreRadius)
		}
		if math.Abs(f(pt)) >= near {
			t.Errorf("point %d has field value %g, want within %g of the surface", i, f(pt), near)
		}
	}
}

func TestClusterPanelsCube(t *testing.T) {
	shell, err := extract.ExtractShell(context.Background(), boxField(0.5), cube(-1, 1), testParams())
	if err != nil {
		t.Fatalf("ExtractShell failed: %v", err)
	}

	panels := extract.ClusterPanels(shell, testParams())
	if len(panels) == 0 {
		t.Fatal("cube shell produced no panels")
	}
	if len(panels) > 6 {
		t.Fatalf("%d panels from 6 axis buckets", len(panels))
	}

	total := 0
	for i, panel := range panels {
		if err := panel.Validate(); err != nil {
			t.Errorf("panel %d invalid: %v", i, err)
		}
		if panel.TriangleCount() <= 10 {
			t.Errorf("panel %d kept with only %d triangles", i, panel.TriangleCount())
		}
		if len(panel.Normals) == 0 {
			t.Errorf("panel %d missing recomputed normals", i)
		}
		// A facade panel of a centered cube faces away from the center: its
		// average normal and average position agree in direction. A sign
		// flip here means triangles landed in the opposite axis bucket.
		var normalSum, centroidSum v3.Vec
		for v := 0; v < panel.VertexCount(); v++ {
			normalSum = normalSum.Add(panel.Normal(v))
			centroidSum = centroidSum.Add(panel.Position(v))
		}
		if normalSum.Dot(centroidSum) <= 0 {
			t.Errorf("panel %d faces toward the cube center", i)
		}
		total += panel.TriangleCount()
	}
	if total > shell.TriangleCount() {
		t.Errorf("panels hold %d triangles, more than the shell's %d", total, shell.TriangleCount())
	}
}

func TestClusterPanelsByAngle(t *testing.T) {
	shell, err := extract.ExtractShell(context.Background(), boxField(0.5), cube(-1, 1), testParams())
	if err != nil {
		t.Fatalf("ExtractShell failed: %v", err)
	}

	p := testParams()
	axisBucket := extract.ClusterPanels(shell, p)
	byAngle := extract.ClusterPanelsByAngle(shell, p)

	// A cube's faces are axis-aligned, so the angular gate keeps panels too.
	if len(byAngle) == 0 {
		t.Fatal("threshold-aware clustering dropped every cube panel")
	}

	totalAxis, totalAngle := 0, 0
	for _, panel := range axisBucket {
		totalAxis += panel.TriangleCount()
	}
	for _, panel := range byAngle {
		totalAngle += panel.TriangleCount()
	}
	if totalAngle > totalAxis {
		t.Errorf("angular gate kept %d triangles, more than the ungated %d", totalAngle, totalAxis)
	}
}

func TestClusterPanelsEmptyShell(t *testing.T) {
	if panels := extract.ClusterPanels(nil, testParams()); panels != nil {
		t.Errorf("nil shell produced %d panels", len(panels))
	}
}

func TestBuildSphere(t *testing.T) {
	model, err := extract.Build(context.Background(), sphereField(1), cube(-1.2, 1.2), testParams())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if model.Shell.IsEmpty() {
		t.Error("model has empty shell")
	}
	if model.Meta.TotalFloors != len(model.Floors) {
		t.Errorf("metadata says %d floors, model has %d", model.Meta.TotalFloors, len(model.Floors))
	}
	if len(model.Meta.FloorHeights) != len(model.Floors) {
		t.Errorf("%d floor heights for %d floors", len(model.Meta.FloorHeights), len(model.Floors))
	}
	if model.Meta.PanelCount != len(model.Panels) {
		t.Errorf("metadata says %d panels, model has %d", model.Meta.PanelCount, len(model.Panels))
	}
	if model.Meta.CoreRadius != testParams().CoreRadius {
		t.Errorf("metadata core radius = %g, want %g", model.Meta.CoreRadius, testParams().CoreRadius)
	}
	if model.Meta.Clustering != "axis-bucket" {
		t.Errorf("metadata clustering = %q", model.Meta.Clustering)
	}
}

func TestBuildIdempotent(t *testing.T) {
	a, err := extract.Build(context.Background(), sphereField(1), cube(-1.2, 1.2), testParams())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	b, err := extract.Build(context.Background(), sphereField(1), cube(-1.2, 1.2), testParams())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if a.Shell.VertexCount() != b.Shell.VertexCount() ||
		a.Shell.TriangleCount() != b.Shell.TriangleCount() {
		t.Error("shell counts differ between identical builds")
	}
	if len(a.Frame) != len(b.Frame) {
		t.Error("frame counts differ between identical builds")
	}
	if len(a.Floors) != len(b.Floors) {
		t.Error("floor counts differ between identical builds")
	}
	if len(a.Core) != len(b.Core) {
		t.Error("core counts differ between identical builds")
	}
	if len(a.Panels) != len(b.Panels) {
		t.Error("panel counts differ between identical builds")
	}
}

func TestBuildRejectsInvalidParameters(t *testing.T) {
	p := testParams()
	p.Resolution = 1
	_, err := extract.Build(context.Background(), sphereField(1), cube(-1, 1), p)
	var cfgErr extract.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "resolution" {
		t.Errorf("error names field %q, want resolution", cfgErr.Field)
	}

	p = testParams()
	p.FloorHeight = 0
	if _, err := extract.Build(context.Background(), sphereField(1), cube(-1, 1), p); !errors.As(err, &cfgErr) {
		t.Errorf("zero floor height not rejected: %v", err)
	}
}

func TestBuildRejectsInvalidBounds(t *testing.T) {
	bb := sdf.Box3{Min: v3.Vec{X: 1, Y: 1, Z: 1}, Max: v3.Vec{X: 1, Y: 2, Z: 2}}
	_, err := extract.Build(context.Background(), sphereField(1), bb, testParams())
	var cfgErr extract.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %T: %v", err, err)
	}
	if cfgErr.Field != "boundingBox" {
		t.Errorf("error names field %q, want boundingBox", cfgErr.Field)
	}
}

func TestBuildDegenerateFieldNamesStage(t *testing.T) {
	bad := func(p v3.Vec) float64 { return math.NaN() }
	_, err := extract.Build(context.Background(), bad, cube(-1, 1), testParams())
	if err == nil {
		t.Fatal("expected error for NaN field")
	}

	var stageErr *extract.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T: %v", err, err)
	}
	if stageErr.Stage != extract.StageShell {
		t.Errorf("failed stage = %q, want %q", stageErr.Stage, extract.StageShell)
	}
	var degErr field.DegenerateFieldError
	if !errors.As(err, &degErr) {
		t.Errorf("StageError does not wrap DegenerateFieldError: %v", err)
	}
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := extract.Build(ctx, sphereField(1), cube(-1, 1), testParams()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestLoadParametersDefaults(t *testing.T) {
	p := extract.DefaultParameters()
	if p.Resolution != 128 || p.FloorHeight != 3.5 || p.CoreRadius != 5.0 ||
		p.PanelAngleThreshold != 15 || p.CurvatureEpsilon != 0.01 ||
		p.FrameThreshold != 0.8 || p.ShellThreshold != 0 {
		t.Errorf("unexpected defaults: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
}
