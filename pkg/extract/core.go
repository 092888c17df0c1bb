package extract

import (
	"context"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
)

// Cylindrical lattice density for the core sampler.
const (
	coreRings   = 8
	coreSectors = 16
)

// SampleCore probes a cylindrical lattice around the bounding box's
// horizontal centroid out to CoreRadius and keeps every sample whose field
// value lies within half the radial step of zero, i.e. on or just inside
// the surface. The result is a sparse point cloud approximating the
// vertical structural core, not a continuous solid.
func SampleCore(ctx context.Context, f field.Field, bb sdf.Box3, p Parameters) ([]v3.Vec, error) {
	cx := (bb.Min.X + bb.Max.X) / 2
	cz := (bb.Min.Z + bb.Max.Z) / 2
	dr := p.CoreRadius / coreRings
	near := dr / 2
	dy := p.FloorHeight / 2

	var points []v3.Vec
	for y := bb.Min.Y; y <= bb.Max.Y; y += dy {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for ring := 0; ring <= coreRings; ring++ {
			r := float64(ring) * dr
			sectors := coreSectors
			if ring == 0 {
				sectors = 1 // the axis sample, once per height
			}
			for s := 0; s < sectors; s++ {
				theta := 2 * math.Pi * float64(s) / float64(sectors)
				pt := v3.Vec{
					X: cx + r*math.Cos(theta),
					Y: y,
					Z: cz + r*math.Sin(theta),
				}
				v := f(pt)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, field.DegenerateFieldError{P: pt, Value: v}
				}
				if math.Abs(v) < near {
					points = append(points, pt)
				}
			}
		}
	}
	return points, nil
}
