package curve

import (
	"math"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/dualvis"
)

// Bezier is a cubic Bézier segment, parameterized over u ∈ [0,1].
type Bezier struct {
	P0, P1, P2, P3 dualvis.Pair
}

// Line returns a straight segment from p to q as a cubic.
func Line(p, q dualvis.Pair) Bezier {
	return Bezier{p, dualvis.Lerp(p, q, 1.0/3), dualvis.Lerp(p, q, 2.0/3), q}
}

// Eval returns the point at parameter u.
func (b Bezier) Eval(u float64) dualvis.Pair {
	mu := 1 - u
	return b.P0.Scaled(mu*mu*mu) + b.P1.Scaled(3*mu*mu*u) + b.P2.Scaled(3*mu*u*u) + b.P3.Scaled(u*u*u)
}

// Deriv returns the first derivative dB/du.
func (b Bezier) Deriv(u float64) dualvis.Pair {
	mu := 1 - u
	d0, d1, d2 := b.P1-b.P0, b.P2-b.P1, b.P3-b.P2
	return (d0.Scaled(mu*mu) + d1.Scaled(2*mu*u) + d2.Scaled(u*u)).Scaled(3)
}

// Deriv2 returns the second derivative d²B/du².
func (b Bezier) Deriv2(u float64) dualvis.Pair {
	dd0 := b.P2 - b.P1.Scaled(2) + b.P0
	dd1 := b.P3 - b.P2.Scaled(2) + b.P1
	return (dd0.Scaled(1-u) + dd1.Scaled(u)).Scaled(6)
}

// Hodograph returns the control points of dB/du, a quadratic Bézier.
func (b Bezier) Hodograph() [3]dualvis.Pair {
	return [3]dualvis.Pair{(b.P1 - b.P0).Scaled(3), (b.P2 - b.P1).Scaled(3), (b.P3 - b.P2).Scaled(3)}
}

// Split divides b at u, using de Casteljau.
func (b Bezier) Split(u float64) (Bezier, Bezier) {
	p01 := dualvis.Lerp(b.P0, b.P1, u)
	p12 := dualvis.Lerp(b.P1, b.P2, u)
	p23 := dualvis.Lerp(b.P2, b.P3, u)
	p012 := dualvis.Lerp(p01, p12, u)
	p123 := dualvis.Lerp(p12, p23, u)
	m := dualvis.Lerp(p012, p123, u)
	return Bezier{b.P0, p01, p012, m}, Bezier{m, p123, p23, b.P3}
}

// Subsegment returns the part of b between u0 and u1.
func (b Bezier) Subsegment(u0, u1 float64) Bezier {
	p0, p3 := b.Eval(u0), b.Eval(u1)
	scale := (u1 - u0) / 3
	return Bezier{p0, p0 + b.Deriv(u0).Scaled(scale), p3 - b.Deriv(u1).Scaled(scale), p3}
}

// Reversed returns b with opposite direction.
func (b Bezier) Reversed() Bezier {
	return Bezier{b.P3, b.P2, b.P1, b.P0}
}

// Bounds returns the bounding box of the control hull, which contains the
// segment.
func (b Bezier) Bounds() polyclip.Rectangle {
	minx := math.Min(math.Min(b.P0.X(), b.P1.X()), math.Min(b.P2.X(), b.P3.X()))
	maxx := math.Max(math.Max(b.P0.X(), b.P1.X()), math.Max(b.P2.X(), b.P3.X()))
	miny := math.Min(math.Min(b.P0.Y(), b.P1.Y()), math.Min(b.P2.Y(), b.P3.Y()))
	maxy := math.Max(math.Max(b.P0.Y(), b.P1.Y()), math.Max(b.P2.Y(), b.P3.Y()))
	return polyclip.Rectangle{
		Min: polyclip.Point{X: minx, Y: miny},
		Max: polyclip.Point{X: maxx, Y: maxy},
	}
}

// Size is the larger side of the control hull box.
func (b Bezier) Size() float64 {
	r := b.Bounds()
	return math.Max(r.Max.X-r.Min.X, r.Max.Y-r.Min.Y)
}

// Inflate grows a rectangle by d on every side.
func Inflate(r polyclip.Rectangle, d float64) polyclip.Rectangle {
	r.Min.X -= d
	r.Min.Y -= d
	r.Max.X += d
	r.Max.Y += d
	return r
}

// Arclen returns the length of b, accurate to about accuracy.
// Uses 8-point Gauss-Legendre quadrature with adaptive bisection.
func (b Bezier) Arclen(accuracy float64) float64 {
	return b.arclen(accuracy, 0)
}

func (b Bezier) arclen(accuracy float64, depth int) float64 {
	est := b.gauss8()
	if depth >= 16 {
		return est
	}
	l, r := b.Split(0.5)
	fine := l.gauss8() + r.gauss8()
	if math.Abs(fine-est) < accuracy {
		return fine
	}
	return l.arclen(accuracy/2, depth+1) + r.arclen(accuracy/2, depth+1)
}

var gaussLegendre8 = [...][2]float64{ // weight, abscissa
	{0.3626837833783620, -0.1834346424956498},
	{0.3626837833783620, 0.1834346424956498},
	{0.3137066458778873, -0.5255324099163290},
	{0.3137066458778873, 0.5255324099163290},
	{0.2223810344533745, -0.7966664774136267},
	{0.2223810344533745, 0.7966664774136267},
	{0.1012285362903763, -0.9602898564975363},
	{0.1012285362903763, 0.9602898564975363},
}

func (b Bezier) gauss8() float64 {
	var sum float64
	for _, c := range gaussLegendre8 {
		sum += c[0] * b.Deriv(0.5+0.5*c[1]).Abs()
	}
	return sum * 0.5
}
