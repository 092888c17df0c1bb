package field

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Gradient estimates the field gradient at p using central differences with
// step eps per axis.
func Gradient(f Field, p v3.Vec, eps float64) v3.Vec {
	inv := 1.0 / (2.0 * eps)
	return v3.Vec{
		X: (f(v3.Vec{X: p.X + eps, Y: p.Y, Z: p.Z}) - f(v3.Vec{X: p.X - eps, Y: p.Y, Z: p.Z})) * inv,
		Y: (f(v3.Vec{X: p.X, Y: p.Y + eps, Z: p.Z}) - f(v3.Vec{X: p.X, Y: p.Y - eps, Z: p.Z})) * inv,
		Z: (f(v3.Vec{X: p.X, Y: p.Y, Z: p.Z + eps}) - f(v3.Vec{X: p.X, Y: p.Y, Z: p.Z - eps})) * inv,
	}
}

// HessianDiag estimates the diagonal second derivatives (fxx, fyy, fzz) at p
// via second-order central differences.
func HessianDiag(f Field, p v3.Vec, eps float64) v3.Vec {
	c := 2.0 * f(p)
	inv := 1.0 / (eps * eps)
	return v3.Vec{
		X: (f(v3.Vec{X: p.X + eps, Y: p.Y, Z: p.Z}) + f(v3.Vec{X: p.X - eps, Y: p.Y, Z: p.Z}) - c) * inv,
		Y: (f(v3.Vec{X: p.X, Y: p.Y + eps, Z: p.Z}) + f(v3.Vec{X: p.X, Y: p.Y - eps, Z: p.Z}) - c) * inv,
		Z: (f(v3.Vec{X: p.X, Y: p.Y, Z: p.Z + eps}) + f(v3.Vec{X: p.X, Y: p.Y, Z: p.Z - eps}) - c) * inv,
	}
}

// mixed estimates a mixed second derivative f_ab where da and db are the two
// axis offsets.
func mixed(f Field, p, da, db v3.Vec, eps float64) float64 {
	return (f(p.Add(da).Add(db)) - f(p.Add(da).Sub(db)) - f(p.Sub(da).Add(db)) + f(p.Sub(da).Sub(db))) /
		(4.0 * eps * eps)
}

// CrossXY estimates the mixed second derivative fxy at p.
func CrossXY(f Field, p v3.Vec, eps float64) float64 {
	return mixed(f, p, v3.Vec{X: eps}, v3.Vec{Y: eps}, eps)
}

// CurvatureProxy returns the two largest-magnitude diagonal Hessian entries
// at p, ordered by magnitude. This is a cheap stand-in for principal
// curvature, NOT an eigen-decomposition of the full Hessian: it ignores the
// off-diagonal terms entirely. Callers needing the real thing should use
// PrincipalCurvatures.
func CurvatureProxy(f Field, p v3.Vec, eps float64) (k1, k2 float64) {
	h := HessianDiag(f, p, eps)
	a, b, c := h.X, h.Y, h.Z
	// Order the three by magnitude, keep the top two.
	if math.Abs(b) > math.Abs(a) {
		a, b = b, a
	}
	if math.Abs(c) > math.Abs(a) {
		a, c = c, a
	}
	if math.Abs(c) > math.Abs(b) {
		b, c = c, b
	}
	return a, b
}

// PrincipalCurvatures returns the eigenvalues of the full symmetric Hessian
// at p in descending order, computed with the closed-form trigonometric
// method for symmetric 3x3 matrices. This is the precise tier of the
// curvature API; the pipeline itself only needs CurvatureProxy.
func PrincipalCurvatures(f Field, p v3.Vec, eps float64) (k1, k2, k3 float64) {
	d := HessianDiag(f, p, eps)
	xy := mixed(f, p, v3.Vec{X: eps}, v3.Vec{Y: eps}, eps)
	xz := mixed(f, p, v3.Vec{X: eps}, v3.Vec{Z: eps}, eps)
	yz := mixed(f, p, v3.Vec{Y: eps}, v3.Vec{Z: eps}, eps)

	p1 := xy*xy + xz*xz + yz*yz
	if p1 == 0 {
		// Already diagonal.
		return sort3(d.X, d.Y, d.Z)
	}

	q := (d.X + d.Y + d.Z) / 3.0
	p2 := (d.X-q)*(d.X-q) + (d.Y-q)*(d.Y-q) + (d.Z-q)*(d.Z-q) + 2.0*p1
	pp := math.Sqrt(p2 / 6.0)

	// B = (H - qI) / pp; r = det(B) / 2.
	b11, b22, b33 := (d.X-q)/pp, (d.Y-q)/pp, (d.Z-q)/pp
	b12, b13, b23 := xy/pp, xz/pp, yz/pp
	r := (b11*(b22*b33-b23*b23) - b12*(b12*b33-b23*b13) + b13*(b12*b23-b22*b13)) / 2.0

	// Clamp against round-off before acos.
	if r < -1 {
		r = -1
	} else if r > 1 {
		r = 1
	}

	phi := math.Acos(r) / 3.0
	e1 := q + 2.0*pp*math.Cos(phi)
	e3 := q + 2.0*pp*math.Cos(phi+2.0*math.Pi/3.0)
	e2 := 3.0*q - e1 - e3
	return e1, e2, e3
}

// sort3 returns a, b, c in descending order.
func sort3(a, b, c float64) (float64, float64, float64) {
	if a < b {
		a, b = b, a
	}
	if a < c {
		a, c = c, a
	}
	if b < c {
		b, c = c, b
	}
	return a, b, c
}
