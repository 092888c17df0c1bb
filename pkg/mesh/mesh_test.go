package mesh_test

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/mesh"
)

// triangleXY returns one counterclockwise triangle in the z=0 plane.
func triangleXY() *mesh.Mesh {
	return &mesh.Mesh{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Indices:   []uint32{0, 1, 2},
	}
}

func TestComputeNormalsSingleTriangle(t *testing.T) {
	m := triangleXY()
	mesh.ComputeNormals(m)
	if len(m.Normals) != len(m.Positions) {
		t.Fatalf("normals length %d, want %d", len(m.Normals), len(m.Positions))
	}
	for i := 0; i < m.VertexCount(); i++ {
		n := m.Normal(i)
		if math.Abs(n.Z-1) > 1e-6 || math.Abs(n.X) > 1e-6 || math.Abs(n.Y) > 1e-6 {
			t.Errorf("vertex %d normal = %v, want +z", i, n)
		}
	}
}

func TestComputeNormalsDegenerateTriangle(t *testing.T) {
	m := &mesh.Mesh{
		Positions: []float32{0, 0, 0, 0, 0, 0, 0, 0, 0},
		Indices:   []uint32{0, 1, 2},
	}
	mesh.ComputeNormals(m)
	for i := 0; i < m.VertexCount(); i++ {
		n := m.Normal(i)
		if n.Length() != 0 {
			t.Errorf("degenerate vertex %d normal = %v, want zero vector", i, n)
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			t.Errorf("degenerate vertex %d normal contains NaN", i)
		}
	}
}

func TestComputeNormalsUnitLength(t *testing.T) {
	// Two triangles sharing duplicated corner positions at different angles.
	m := &mesh.Mesh{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0,
			0, 0, 0, 0, 1, 0, 0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
	mesh.ComputeNormals(m)
	for i := 0; i < m.VertexCount(); i++ {
		l := m.Normal(i).Length()
		if l != 0 && (l < 0.9 || l > 1.1) {
			t.Errorf("vertex %d normal magnitude %g outside [0.9, 1.1]", i, l)
		}
	}
}

func TestValidate(t *testing.T) {
	m := triangleXY()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid mesh rejected: %v", err)
	}

	bad := &mesh.Mesh{Positions: []float32{0, 0, 0}, Indices: []uint32{0, 0, 7}}
	if err := bad.Validate(); err == nil {
		t.Error("out-of-range index not rejected")
	}

	bad = &mesh.Mesh{Positions: []float32{0, 0}, Indices: nil}
	if err := bad.Validate(); err == nil {
		t.Error("ragged positions not rejected")
	}

	bad = triangleXY()
	bad.Normals = []float32{0, 0, 1}
	if err := bad.Validate(); err == nil {
		t.Error("mismatched normals length not rejected")
	}
}

func TestWeld(t *testing.T) {
	// Two triangles sharing an edge, stored as soup: 6 vertices, 4 distinct.
	m := &mesh.Mesh{
		Positions: []float32{
			0, 0, 0, 1, 0, 0, 0, 1, 0,
			1, 0, 0, 1, 1, 0, 0, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 3, 4, 5},
	}
	mesh.ComputeNormals(m)

	w := mesh.Weld(m, 1e-6)
	if w.VertexCount() != 4 {
		t.Errorf("welded vertex count = %d, want 4", w.VertexCount())
	}
	if w.TriangleCount() != 2 {
		t.Errorf("welded triangle count = %d, want 2", w.TriangleCount())
	}
	if err := w.Validate(); err != nil {
		t.Errorf("welded mesh invalid: %v", err)
	}
	if len(w.Normals) == 0 {
		t.Error("welded mesh lost its normals")
	}

	// The input soup is untouched.
	if m.VertexCount() != 6 {
		t.Errorf("input mutated: vertex count = %d, want 6", m.VertexCount())
	}
}

func TestWeldZeroTolerancePassesThrough(t *testing.T) {
	m := triangleXY()
	w := mesh.Weld(m, 0)
	if w.VertexCount() != m.VertexCount() || w.TriangleCount() != m.TriangleCount() {
		t.Errorf("zero-tolerance weld changed the mesh: %d/%d verts, %d/%d tris",
			w.VertexCount(), m.VertexCount(), w.TriangleCount(), m.TriangleCount())
	}
}

func TestLineLength(t *testing.T) {
	l := mesh.Line{End: v3.Vec{X: 3, Y: 4}}
	if math.Abs(l.Length()-5) > 1e-12 {
		t.Errorf("length = %g, want 5", l.Length())
	}
}
