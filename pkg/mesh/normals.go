package mesh

import (
	"github.com/chewxy/math32"
)

// minNormalLen2 is the squared magnitude below which an accumulated vertex
// normal is left as the zero vector instead of being normalized.
const minNormalLen2 = 1e-12

// ComputeNormals fills m.Normals with per-vertex unit normals: each
// triangle's face normal (cross product of two edge vectors, unnormalized so
// large faces weigh more) is accumulated into its three vertices, then every
// accumulated vector is normalized. Vertices whose accumulation is near zero
// (degenerate triangles, exactly cancelling faces) keep the zero vector.
func ComputeNormals(m *Mesh) {
	acc := make([]float32, len(m.Positions))

	for t := 0; t+2 < len(m.Indices); t += 3 {
		i0, i1, i2 := m.Indices[t], m.Indices[t+1], m.Indices[t+2]

		ax, ay, az := m.Positions[3*i0], m.Positions[3*i0+1], m.Positions[3*i0+2]
		bx, by, bz := m.Positions[3*i1], m.Positions[3*i1+1], m.Positions[3*i1+2]
		cx, cy, cz := m.Positions[3*i2], m.Positions[3*i2+1], m.Positions[3*i2+2]

		// Face normal = (b - a) x (c - a).
		e1x, e1y, e1z := bx-ax, by-ay, bz-az
		e2x, e2y, e2z := cx-ax, cy-ay, cz-az
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, i := range [3]uint32{i0, i1, i2} {
			acc[3*i] += nx
			acc[3*i+1] += ny
			acc[3*i+2] += nz
		}
	}

	for i := 0; i+2 < len(acc); i += 3 {
		nx, ny, nz := acc[i], acc[i+1], acc[i+2]
		len2 := nx*nx + ny*ny + nz*nz
		if len2 < minNormalLen2 {
			acc[i], acc[i+1], acc[i+2] = 0, 0, 0
			continue
		}
		inv := 1.0 / math32.Sqrt(len2)
		acc[i] = nx * inv
		acc[i+1] = ny * inv
		acc[i+2] = nz * inv
	}

	m.Normals = acc
}
