// Package mesh defines the triangle mesh and line segment value types shared
// by the extraction pipeline, plus per-vertex normal estimation and an
// optional vertex welding pass.
package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh in flat buffers: Positions has 3 floats per vertex
// (x,y,z), Normals is empty or parallel to Positions, Indices has 3 uint32s
// per triangle. Meshes produced by the pipeline are unwelded triangle soup:
// vertices are not shared across grid cells. That duplication is part of the
// output contract, not a defect; use Weld for an opt-in dedup pass.
type Mesh struct {
	Positions []float32 `json:"positions"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals   []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	Indices   []uint32  `json:"indices"`   // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Validate checks the structural invariants: position and index counts are
// multiples of 3, every index references a vertex, and normals (when
// present) are parallel to positions.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3", len(m.Positions))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d is not a multiple of 3", len(m.Indices))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("normals length %d does not match positions length %d", len(m.Normals), len(m.Positions))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("index %d at offset %d out of range (have %d vertices)", idx, i, n)
		}
	}
	return nil
}

// Position returns vertex i as a vector.
func (m *Mesh) Position(i int) v3.Vec {
	return v3.Vec{
		X: float64(m.Positions[3*i]),
		Y: float64(m.Positions[3*i+1]),
		Z: float64(m.Positions[3*i+2]),
	}
}

// Normal returns the normal of vertex i as a vector. The zero vector is
// returned when no normals are present.
func (m *Mesh) Normal(i int) v3.Vec {
	if len(m.Normals) == 0 {
		return v3.Vec{}
	}
	return v3.Vec{
		X: float64(m.Normals[3*i]),
		Y: float64(m.Normals[3*i+1]),
		Z: float64(m.Normals[3*i+2]),
	}
}

// Line is an oriented line segment. The frame extractor emits these to mark
// approximate structural ridge locations.
type Line struct {
	Start v3.Vec `json:"start"`
	End   v3.Vec `json:"end"`
}

// Length returns the segment length.
func (l Line) Length() float64 {
	return l.End.Sub(l.Start).Length()
}
