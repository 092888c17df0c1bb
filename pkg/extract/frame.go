package extract

import (
	"context"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/parametrica/ossature/pkg/field"
	"github.com/parametrica/ossature/pkg/mesh"
)

// frameLatticeSteps is the coarse sampling density per axis for the frame
// extractor. Frame detection is a heuristic; it does not need shell-grade
// resolution.
const frameLatticeSteps = 32

// frameHalfLength scales a frame segment's half-length relative to the
// lattice step.
const frameHalfLength = 0.4

// ExtractFrame scans a coarse lattice for near-surface samples with high
// curvature and emits one short line segment per hit, centered on the
// sample and oriented along the field gradient. The result is an unordered,
// disconnected approximation of structural ridge locations, not a connected
// wireframe. Output is fully deterministic for a given field and parameters.
func ExtractFrame(ctx context.Context, f field.Field, bb sdf.Box3, p Parameters) ([]mesh.Line, error) {
	size := bb.Max.Sub(bb.Min)
	sx := size.X / frameLatticeSteps
	sy := size.Y / frameLatticeSteps
	sz := size.Z / frameLatticeSteps
	step := math.Min(sx, math.Min(sy, sz))
	near := step / 2

	var segments []mesh.Line
	for i := 0; i <= frameLatticeSteps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j <= frameLatticeSteps; j++ {
			for k := 0; k <= frameLatticeSteps; k++ {
				pt := v3.Vec{
					X: bb.Min.X + float64(i)*sx,
					Y: bb.Min.Y + float64(j)*sy,
					Z: bb.Min.Z + float64(k)*sz,
				}
				v := f(pt)
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, field.DegenerateFieldError{P: pt, Value: v}
				}
				if math.Abs(v) >= near {
					continue
				}

				k1, k2 := field.CurvatureProxy(f, pt, p.CurvatureEpsilon)
				if math.Abs(k1) <= p.FrameThreshold && math.Abs(k2) <= p.FrameThreshold {
					continue
				}

				grad := field.Gradient(f, pt, p.CurvatureEpsilon)
				if grad.Length() < 1e-12 {
					continue
				}
				dir := grad.Normalize().MulScalar(frameHalfLength * step)
				segments = append(segments, mesh.Line{
					Start: pt.Sub(dir),
					End:   pt.Add(dir),
				})
			}
		}
	}
	return segments, nil
}
