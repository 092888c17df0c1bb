package extract

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/mesh"
)

// minPanelTriangles is the triangle count a cluster must exceed to be kept
// as a panel. Smaller clusters are dropped silently.
const minPanelTriangles = 10

// panelAxes are the six bucket directions, ordered +x, -x, +y, -y, +z, -z.
var panelAxes = [6]v3.Vec{
	{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
}

// ClusterPanels partitions the shell's triangles into facade panels by
// quantized facing direction: each triangle's average vertex normal is
// classified into one of six axis buckets by dominant component and sign,
// and triangles sharing a bucket become one sub-mesh with locally remapped
// indices and recomputed normals.
//
// PanelAngleThreshold is accepted for signature parity but NOT used by this
// classification: every triangle lands in its nearest axis bucket no matter
// how far off-axis it points. ClusterPanelsByAngle is the variant that
// honors the threshold.
func ClusterPanels(shell *mesh.Mesh, p Parameters) []*mesh.Mesh {
	return clusterPanels(shell, -1)
}

// ClusterPanelsByAngle is the threshold-aware clusterer: a triangle joins
// its dominant axis bucket only when its facing direction is within
// PanelAngleThreshold degrees of that axis, so strongly off-axis triangles
// belong to no panel.
func ClusterPanelsByAngle(shell *mesh.Mesh, p Parameters) []*mesh.Mesh {
	return clusterPanels(shell, math.Cos(p.PanelAngleThreshold*math.Pi/180))
}

// clusterPanels groups triangles into axis buckets. minCos < -1 disables the
// angular gate; otherwise a triangle is kept only when the cosine of the
// angle between its direction and the bucket axis reaches minCos.
func clusterPanels(shell *mesh.Mesh, minCos float64) []*mesh.Mesh {
	if shell == nil || shell.IsEmpty() {
		return nil
	}

	buckets := make([][]int, len(panelAxes))
	for t := 0; t < shell.TriangleCount(); t++ {
		dir := triangleDirection(shell, t)
		if dir.Length() < 1e-12 {
			continue
		}
		dir = dir.Normalize()
		b := dominantAxis(dir)
		if minCos >= -1 && dir.Dot(panelAxes[b]) < minCos {
			continue
		}
		buckets[b] = append(buckets[b], t)
	}

	var panels []*mesh.Mesh
	for _, tris := range buckets {
		if len(tris) <= minPanelTriangles {
			continue
		}
		panels = append(panels, subMesh(shell, tris))
	}
	return panels
}

// triangleDirection returns triangle t's facing direction: the average of
// its vertex normals, or the raw face normal when the shell carries none.
func triangleDirection(m *mesh.Mesh, t int) v3.Vec {
	i0, i1, i2 := m.Indices[3*t], m.Indices[3*t+1], m.Indices[3*t+2]
	if len(m.Normals) != 0 {
		sum := m.Normal(int(i0)).Add(m.Normal(int(i1))).Add(m.Normal(int(i2)))
		return sum.MulScalar(1.0 / 3.0)
	}
	a, b, c := m.Position(int(i0)), m.Position(int(i1)), m.Position(int(i2))
	return b.Sub(a).Cross(c.Sub(a))
}

// dominantAxis maps a unit direction to its axis bucket index.
func dominantAxis(d v3.Vec) int {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)
	switch {
	case ax >= ay && ax >= az:
		if d.X >= 0 {
			return 0
		}
		return 1
	case ay >= az:
		if d.Y >= 0 {
			return 2
		}
		return 3
	default:
		if d.Z >= 0 {
			return 4
		}
		return 5
	}
}

// subMesh extracts the given triangles into a standalone mesh with locally
// remapped indices and freshly computed normals.
func subMesh(m *mesh.Mesh, tris []int) *mesh.Mesh {
	out := &mesh.Mesh{}
	remap := make(map[uint32]uint32, len(tris)*3)

	for _, t := range tris {
		for k := 0; k < 3; k++ {
			old := m.Indices[3*t+k]
			idx, ok := remap[old]
			if !ok {
				idx = uint32(len(out.Positions) / 3)
				remap[old] = idx
				out.Positions = append(out.Positions,
					m.Positions[3*old], m.Positions[3*old+1], m.Positions[3*old+2])
			}
			out.Indices = append(out.Indices, idx)
		}
	}
	mesh.ComputeNormals(out)
	return out
}
