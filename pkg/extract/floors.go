package extract

import (
	"context"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/march"
	"github.com/parametrica/ossature/pkg/mesh"
)

// slabThicknessRatio sets a floor slab's half-thickness as a fraction of the
// floor height.
const slabThicknessRatio = 0.05

// minFloorVertices is the vertex count a slice must exceed to be kept.
// Near-empty slices are expected wherever the shape has no material at that
// height and are dropped silently.
const minFloorVertices = 16

// minSlabResolution floors the reduced sampling resolution for slabs.
const minSlabResolution = 8

// SliceFloors extracts one thin horizontal slice per floor height, from the
// bottom of the box upward. Each slice is an independent reduced-resolution
// marching cubes run over a slab bounding box. It returns the retained
// slices together with a parallel, strictly increasing list of their
// heights; every height is bb.Min.Y + k*FloorHeight for some k, with gaps
// where slices were dropped.
func SliceFloors(ctx context.Context, f field.Field, bb sdf.Box3, p Parameters) ([]*mesh.Mesh, []float64, error) {
	res := p.Resolution / 4
	if res < minSlabResolution {
		res = minSlabResolution
	}
	thickness := p.FloorHeight * slabThicknessRatio

	var floors []*mesh.Mesh
	var heights []float64

	for k := 0; ; k++ {
		y := bb.Min.Y + float64(k)*p.FloorHeight
		if y > bb.Max.Y {
			break
		}
		slab := sdf.Box3{
			Min: v3.Vec{X: bb.Min.X, Y: y - thickness, Z: bb.Min.Z},
			Max: v3.Vec{X: bb.Max.X, Y: y + thickness, Z: bb.Max.Z},
		}
		g, err := field.Sample(ctx, f, slab, res)
		if err != nil {
			return nil, nil, err
		}
		m := march.Triangulate(g, p.ShellThreshold)
		if m.VertexCount() <= minFloorVertices {
			continue
		}
		mesh.ComputeNormals(m)
		floors = append(floors, m)
		heights = append(heights, y)
	}
	return floors, heights, nil
}
