package march_test

import (
	"context"
	"math"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/march"
	"github.com/parametrica/ossature/pkg/mesh"
)

func sphereField(r float64) field.Field {
	return func(p v3.Vec) float64 { return p.Length() - r }
}

// boxField is the Chebyshev-distance SDF of an axis-aligned cube with the
// given half-extent.
func boxField(half float64) field.Field {
	return func(p v3.Vec) float64 {
		return math.Max(math.Abs(p.X), math.Max(math.Abs(p.Y), math.Abs(p.Z))) - half
	}
}

func sampleGrid(t *testing.T, f field.Field, min, max float64, res int) *field.Grid {
	t.Helper()
	bb := sdf.Box3{
		Min: v3.Vec{X: min, Y: min, Z: min},
		Max: v3.Vec{X: max, Y: max, Z: max},
	}
	g, err := field.Sample(context.Background(), f, bb, res)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	return g
}

func TestUniformPositiveFieldEmptyMesh(t *testing.T) {
	g := sampleGrid(t, func(v3.Vec) float64 { return 1 }, -1, 1, 8)
	m := march.Triangulate(g, 0)
	if !m.IsEmpty() || len(m.Indices) != 0 {
		t.Errorf("uniform positive field produced %d vertices, %d indices", m.VertexCount(), len(m.Indices))
	}
}

func TestUniformNegativeFieldEmptyMesh(t *testing.T) {
	g := sampleGrid(t, func(v3.Vec) float64 { return -1 }, -1, 1, 8)
	m := march.Triangulate(g, 0)
	if !m.IsEmpty() {
		t.Errorf("uniform negative field produced %d vertices", m.VertexCount())
	}
}

func TestSphereMesh(t *testing.T) {
	g := sampleGrid(t, sphereField(1), -2, 2, 16)
	m := march.Triangulate(g, 0)
	if m.IsEmpty() {
		t.Fatal("sphere produced an empty mesh")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("sphere mesh invalid: %v", err)
	}

	// Every vertex lies near the unit sphere.
	for i := 0; i < m.VertexCount(); i++ {
		d := m.Position(i).Length()
		if d > 1.1 {
			t.Fatalf("vertex %d at distance %g from origin, want <= 1.1", i, d)
		}
	}
}

func TestSphereOutwardNormals(t *testing.T) {
	g := sampleGrid(t, sphereField(1), -2, 2, 16)
	m := march.Triangulate(g, 0)
	mesh.ComputeNormals(m)

	outward := 0
	for i := 0; i < m.VertexCount(); i++ {
		if m.Normal(i).Dot(m.Position(i)) > 0 {
			outward++
		}
	}
	if ratio := float64(outward) / float64(m.VertexCount()); ratio < 0.7 {
		t.Errorf("only %.0f%% of normals point outward, want >= 70%%", ratio*100)
	}
}

func TestSphereTriangleWinding(t *testing.T) {
	// Checks the raw winding, independent of vertex-normal averaging: for a
	// sphere centered at the origin, each face normal (b-a) x (c-a) must
	// point away from the center.
	g := sampleGrid(t, sphereField(1), -2, 2, 32)
	m := march.Triangulate(g, 0)
	if m.IsEmpty() {
		t.Fatal("sphere produced an empty mesh")
	}

	outward := 0
	for i := 0; i < m.TriangleCount(); i++ {
		a := m.Position(int(m.Indices[3*i]))
		b := m.Position(int(m.Indices[3*i+1]))
		c := m.Position(int(m.Indices[3*i+2]))
		face := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).MulScalar(1.0 / 3.0)
		if face.Dot(centroid) > 0 {
			outward++
		}
	}
	if ratio := float64(outward) / float64(m.TriangleCount()); ratio < 0.95 {
		t.Errorf("only %.1f%% of faces wind outward, want >= 95%%", ratio*100)
	}
}

func TestBoxMeshPlausibleTriangleCount(t *testing.T) {
	g := sampleGrid(t, boxField(0.5), -1, 1, 16)
	m := march.Triangulate(g, 0)
	if m.IsEmpty() {
		t.Fatal("box produced an empty mesh")
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("box mesh invalid: %v", err)
	}
	// Order-of-magnitude check for a tessellated cube at this resolution;
	// the exact count depends on the triangulation table.
	if n := m.TriangleCount(); n < 100 || n > 5000 {
		t.Errorf("box triangle count %d outside plausible range [100, 5000]", n)
	}
}

func TestNonZeroIsovalue(t *testing.T) {
	// Shell at distance 0.5 outside the unit sphere = sphere of radius 1.5.
	g := sampleGrid(t, sphereField(1), -3, 3, 24)
	m := march.Triangulate(g, 0.5)
	if m.IsEmpty() {
		t.Fatal("offset isosurface is empty")
	}
	for i := 0; i < m.VertexCount(); i++ {
		d := m.Position(i).Length()
		if d < 1.2 || d > 1.8 {
			t.Fatalf("vertex %d at distance %g, want near 1.5", i, d)
		}
	}
}

func TestTriangulateDeterministic(t *testing.T) {
	g := sampleGrid(t, sphereField(1), -2, 2, 16)
	a := march.Triangulate(g, 0)
	b := march.Triangulate(g, 0)
	if a.VertexCount() != b.VertexCount() || a.TriangleCount() != b.TriangleCount() {
		t.Errorf("repeat runs differ: %d/%d verts, %d/%d tris",
			a.VertexCount(), b.VertexCount(), a.TriangleCount(), b.TriangleCount())
	}
}

func TestDegenerateResolution(t *testing.T) {
	// Resolution 2 is a single cell; it must not panic and must emit a
	// structurally valid (possibly empty) mesh.
	g := sampleGrid(t, sphereField(1), -2, 2, 2)
	m := march.Triangulate(g, 0)
	if err := m.Validate(); err != nil {
		t.Errorf("single-cell mesh invalid: %v", err)
	}
	if len(m.Indices)%3 != 0 {
		t.Errorf("index count %d not a multiple of 3", len(m.Indices))
	}
}
