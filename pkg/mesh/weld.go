package mesh

import "math"

// weldKey is a position quantized to the welding tolerance. Vertices that
// land on the same key collapse to one.
type weldKey struct {
	x, y, z int64
}

// Weld returns a copy of m with vertices closer than tolerance merged via
// spatial hashing. The input is left untouched: the pipeline's contract is
// unwelded soup, so welding is strictly an opt-in post-pass for consumers
// that want shared vertices. Normals are recomputed on the welded mesh when
// the input carried them.
func Weld(m *Mesh, tolerance float64) *Mesh {
	if tolerance <= 0 || m.IsEmpty() {
		out := &Mesh{
			Positions: append([]float32(nil), m.Positions...),
			Normals:   append([]float32(nil), m.Normals...),
			Indices:   append([]uint32(nil), m.Indices...),
		}
		return out
	}

	inv := 1.0 / tolerance
	remap := make([]uint32, m.VertexCount())
	seen := make(map[weldKey]uint32, m.VertexCount())

	out := &Mesh{}
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2]
		key := weldKey{
			x: int64(math.Floor(float64(x)*inv + 0.5)),
			y: int64(math.Floor(float64(y)*inv + 0.5)),
			z: int64(math.Floor(float64(z)*inv + 0.5)),
		}
		if j, ok := seen[key]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(out.Positions) / 3)
		seen[key] = j
		remap[i] = j
		out.Positions = append(out.Positions, x, y, z)
	}

	out.Indices = make([]uint32, len(m.Indices))
	for i, idx := range m.Indices {
		out.Indices[i] = remap[idx]
	}

	if len(m.Normals) != 0 {
		ComputeNormals(out)
	}
	return out
}
