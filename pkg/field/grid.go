package field

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// Grid holds field samples on a regular Res x Res x Res lattice spanning a
// bounding box. Values are stored x-fastest: index = x + Res*(y + Res*z).
type Grid struct {
	Res    int
	BB     sdf.Box3
	Values []float64
}

// At returns the sample at lattice coordinates (x, y, z).
func (g *Grid) At(x, y, z int) float64 {
	return g.Values[x+g.Res*(y+g.Res*z)]
}

// Step returns the lattice spacing along each axis.
func (g *Grid) Step() v3.Vec {
	d := float64(g.Res - 1)
	return v3.Vec{
		X: (g.BB.Max.X - g.BB.Min.X) / d,
		Y: (g.BB.Max.Y - g.BB.Min.Y) / d,
		Z: (g.BB.Max.Z - g.BB.Min.Z) / d,
	}
}

// Pos returns the world position of the lattice point (x, y, z).
func (g *Grid) Pos(x, y, z int) v3.Vec {
	s := g.Step()
	return v3.Vec{
		X: g.BB.Min.X + float64(x)*s.X,
		Y: g.BB.Min.Y + float64(y)*s.Y,
		Z: g.BB.Min.Z + float64(z)*s.Z,
	}
}

// Sample evaluates f on a res^3 lattice over bb. Slabs of constant z are
// evaluated in parallel with a join barrier before return; the caller sees a
// fully populated grid or an error, never a partial one. Cancellation is
// cooperative, checked once per lattice row. A non-finite sample aborts the
// whole grid with a DegenerateFieldError naming the first offending point
// found in its slab.
func Sample(ctx context.Context, f Field, bb sdf.Box3, res int) (*Grid, error) {
	if res < 2 {
		return nil, fmt.Errorf("grid resolution %d below minimum of 2", res)
	}
	if err := CheckBounds(bb); err != nil {
		return nil, err
	}

	g := &Grid{
		Res:    res,
		BB:     bb,
		Values: make([]float64, res*res*res),
	}
	step := g.Step()

	// One task per z-slab; slabs write disjoint ranges of Values.
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	var degenerate sync.Once
	var degErr error

	for z := 0; z < res; z++ {
		eg.Go(func() error {
			pz := bb.Min.Z + float64(z)*step.Z
			for y := 0; y < res; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				py := bb.Min.Y + float64(y)*step.Y
				base := res * (y + res*z)
				for x := 0; x < res; x++ {
					p := v3.Vec{X: bb.Min.X + float64(x)*step.X, Y: py, Z: pz}
					v := f(p)
					if math.IsNaN(v) || math.IsInf(v, 0) {
						err := DegenerateFieldError{P: p, Value: v}
						degenerate.Do(func() { degErr = err })
						return err
					}
					g.Values[base+x] = v
				}
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		// Prefer the degenerate-sample diagnostic over a bare context error
		// from a sibling slab.
		if degErr != nil {
			return nil, degErr
		}
		return nil, err
	}
	return g, nil
}
