/*
Package curve provides parametric planar curves: cubic Bézier segments,
splines fitted through obstacle samples, and straight segments.

All curves satisfy interface Curve, which is what the dualizer and the
intersector operate on. Splines are fitted with Hobby's algorithm (package
jhobby) and parameterized by chord length.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package curve

import (
	"math"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.curve'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.curve")
}

// DefaultArcLengthAccuracy is used for arc length quadrature.
const DefaultArcLengthAccuracy = 1e-9

// Curve is a parametric planar curve over a finite parameter domain.
// Closed curves take parameters modulo the domain's length.
type Curve interface {
	Domain() (float64, float64)
	IsClosed() bool
	Eval(t float64) dualvis.Pair
	Tangent(t float64) dualvis.Pair // derivative with respect to t
	Pieces() []Piece
}

// Piece is a cubic approximation of a curve over a parameter range.
// Bez(u) approximates the curve at T0 + u·(T1-T0) with an error of at
// most Slack. Pieces of primal curves are exact and have Slack 0.
type Piece struct {
	Bez    Bezier
	T0, T1 float64
	Slack  float64
}

// Approximator is implemented by curves whose pieces carry slack.
// Approximate returns a new cubic approximation of the curve over [t0,t1]
// with its measured slack. The intersector uses it to tighten the boxes of
// sub-spans.
type Approximator interface {
	Approximate(t0, t1 float64) Piece
}

// Param maps a piece-local u ∈ [0,1] to the curve parameter.
func (p Piece) Param(u float64) float64 {
	return p.T0 + u*(p.T1-p.T0)
}

// Local maps a curve parameter to a piece-local u.
func (p Piece) Local(t float64) float64 {
	return (t - p.T0) / (p.T1 - p.T0)
}

// Period is the length of the parameter domain of c.
func Period(c Curve) float64 {
	t0, t1 := c.Domain()
	return t1 - t0
}

// Wrap maps t into the domain of c. Closed curves wrap, open curves clamp.
func Wrap(c Curve, t float64) float64 {
	lo, hi := c.Domain()
	if !c.IsClosed() {
		return math.Max(lo, math.Min(hi, t))
	}
	p := hi - lo
	t = math.Mod(t-lo, p)
	if t < 0 {
		t += p
	}
	return lo + t
}

// ParamDistance is the distance between two parameters of c. For closed
// curves this is the shorter way around.
func ParamDistance(c Curve, t1, t2 float64) float64 {
	d := math.Abs(Wrap(c, t1) - Wrap(c, t2))
	if c.IsClosed() {
		d = math.Min(d, Period(c)-d)
	}
	return d
}

// Sample returns points along c at parameter distance step. The end
// of the domain is always included.
func Sample(c Curve, step float64) []dualvis.Pair {
	lo, hi := c.Domain()
	if step <= 0 || step > hi-lo {
		step = (hi - lo) / 2
	}
	n := int(math.Ceil((hi - lo) / step))
	pts := make([]dualvis.Pair, 0, n+1)
	for i := 0; i < n; i++ {
		pts = append(pts, c.Eval(lo+float64(i)*step))
	}
	return append(pts, c.Eval(hi))
}

// Flatten returns a polyline of c with n points per piece. For closed curves
// the closing point is not repeated.
func Flatten(c Curve, n int) []dualvis.Pair {
	if n < 1 {
		n = 1
	}
	pieces := c.Pieces()
	pts := make([]dualvis.Pair, 0, len(pieces)*n+1)
	for _, p := range pieces {
		for i := 0; i < n; i++ {
			pts = append(pts, c.Eval(p.Param(float64(i)/float64(n))))
		}
	}
	if !c.IsClosed() {
		_, hi := c.Domain()
		pts = append(pts, c.Eval(hi))
	}
	return pts
}
