// Package field provides signed distance field plumbing for the extraction
// pipeline: the field function type, bounding box checks, regular-grid
// sampling, and finite-difference gradient/curvature estimators.
package field

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Field is a signed distance function: negative inside the solid, positive
// outside, approximately zero on the surface. A Field must be pure,
// deterministic, and finite everywhere inside the sampled bounding box.
// Shape suppliers provide these; the pipeline never inspects how a value
// was computed.
type Field func(p v3.Vec) float64

// FromSDF3 adapts an sdfx solid to a Field.
func FromSDF3(s sdf.SDF3) Field {
	return func(p v3.Vec) float64 {
		return s.Evaluate(p)
	}
}

// CheckBounds verifies that the box has positive extent on every axis.
func CheckBounds(bb sdf.Box3) error {
	if bb.Min.X >= bb.Max.X || bb.Min.Y >= bb.Max.Y || bb.Min.Z >= bb.Max.Z {
		return fmt.Errorf("bounding box min (%g, %g, %g) must be strictly below max (%g, %g, %g) on every axis",
			bb.Min.X, bb.Min.Y, bb.Min.Z, bb.Max.X, bb.Max.Y, bb.Max.Z)
	}
	return nil
}

// DegenerateFieldError reports a non-finite field sample. It is raised at
// the sampling boundary so NaN/Inf values never reach triangle math.
type DegenerateFieldError struct {
	P     v3.Vec
	Value float64
}

func (e DegenerateFieldError) Error() string {
	return fmt.Sprintf("degenerate field value %v at (%g, %g, %g)", e.Value, e.P.X, e.P.Y, e.P.Z)
}
