// Package march triangulates a sampled scalar grid into a triangle mesh at a
// given isovalue (marching cubes). The output is unwelded triangle soup:
// each cell emits its own vertices and sequential indices, with no vertex
// sharing across cells.
package march

import (
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/mesh"
)

// interpEpsilon guards the edge interpolation against a near-zero corner
// value difference; below it the crossing falls back to the edge midpoint.
const interpEpsilon = 1e-12

// Triangulate runs marching cubes over the grid at the given isovalue. For
// each of the (Res-1)^3 cells it builds an 8-bit case index from corner
// signs (inside = value below the isovalue), looks the case up in the
// 256-entry triangulation table, and linearly interpolates each referenced
// edge's zero crossing. Triangles wind counterclockwise seen from outside
// the solid, so face normals point outward. A grid uniformly above or below
// the isovalue yields the empty mesh. Every emitted index is valid and the
// index count is a multiple of 3.
func Triangulate(g *field.Grid, iso float64) *mesh.Mesh {
	out := &mesh.Mesh{}
	n := g.Res - 1

	var corners [8]float64
	var verts [12]v3.Vec
	var have [12]bool

	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				caseIdx := 0
				for i, off := range cornerOffsets {
					corners[i] = g.At(x+off[0], y+off[1], z+off[2])
					if corners[i] < iso {
						caseIdx |= 1 << i
					}
				}

				tri := &triTable[caseIdx]
				if tri[0] == -1 {
					continue
				}

				for i := range have {
					have[i] = false
				}
				for i := 0; tri[i] != -1; i += 3 {
					// The table lists each triangle's edges in clockwise
					// order for this corner layout; emit them reversed so
					// face normals point out of the solid.
					for _, e := range [3]int8{tri[i+2], tri[i+1], tri[i]} {
						if !have[e] {
							verts[e] = edgeVertex(g, x, y, z, int(e), corners, iso)
							have[e] = true
						}
						v := verts[e]
						out.Indices = append(out.Indices, uint32(len(out.Positions)/3))
						out.Positions = append(out.Positions, float32(v.X), float32(v.Y), float32(v.Z))
					}
				}
			}
		}
	}
	return out
}

// edgeVertex interpolates the isovalue crossing on one cube edge of the cell
// at (x, y, z).
func edgeVertex(g *field.Grid, x, y, z, e int, corners [8]float64, iso float64) v3.Vec {
	ca, cb := cubeEdges[e][0], cubeEdges[e][1]
	oa, ob := cornerOffsets[ca], cornerOffsets[cb]
	pa := g.Pos(x+oa[0], y+oa[1], z+oa[2])
	pb := g.Pos(x+ob[0], y+ob[1], z+ob[2])

	va, vb := corners[ca], corners[cb]
	d := vb - va
	t := 0.5
	if d > interpEpsilon || d < -interpEpsilon {
		t = (iso - va) / d
	}
	return pa.Add(pb.Sub(pa).MulScalar(t))
}
