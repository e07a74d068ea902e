/*
Package dualvis computes common tangents and smooth visibility graphs for
curved planar obstacles, using point/line duality.

Obstacle boundaries are fitted with Hobby splines (package jhobby, package curve).
Every curve is mapped to its dual curve, i.e. the curve of its tangent lines,
embedded into the plane (package dual). Common tangents of two obstacles then
are intersections of their dual curves (package intersect). Filtered
tangents (package tangent) together with boundary arcs form a visibility graph
(package visgraph), on which shortest paths are found. Package engine
orchestrates the complete pipeline.

This root package holds the numeric base shared by all of them: points,
oriented lines, affine transforms and error values.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package dualvis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis'
func tracer() tracing.Trace {
	return tracing.Select("dualvis")
}

// === Numeric Data Type =====================================================

// Deg2Rad is a constant for converting from DEG to RAD or vice versa
const Deg2Rad float64 = math.Pi / 180

// Epsilon : numbers below ε are considered 0
var Epsilon float64 = 0.0000001

// Is0 is a predicate: is n = 0 ?
func Is0(n float64) bool {
	return math.Abs(n) <= Epsilon
}

// Zap makes n = 0 if n "means" to be zero
func Zap(n float64) float64 {
	if Is0(n) {
		n = 0
	}
	return n
}

// IsFinite is a predicate: is n neither NaN nor ±Inf?
func IsFinite(n float64) bool {
	return !math.IsNaN(n) && !math.IsInf(n, 0)
}

// === Pair Data Type ========================================================

// Pair is a 2D-point or a 2D-vector.
type Pair complex128

// Origin represents the frequently used constant (0,0).
var Origin = P(0, 0)

// Pretty Stringer for simple pairs.
func (p Pair) String() string {
	return fmt.Sprintf("(%g,%g)", real(p), imag(p))
}

// C returns a Pair as a complex number.
func (p Pair) C() complex128 {
	return complex128(p)
}

// C2P returns a Pair from a complex number.
func C2P(c complex128) Pair {
	if cmplx.IsNaN(c) || cmplx.IsInf(c) {
		tracer().Errorf("created pair for complex.NaN")
		return Origin
	}
	return Pair(c)
}

// P is a quick notation for contructing a pair from floats.
func P(x, y float64) Pair {
	return Pair(complex(x, y))
}

// X is the x-part of a pair.
func (p Pair) X() float64 {
	return real(p)
}

// Y is the y-part of a pair.
func (p Pair) Y() float64 {
	return imag(p)
}

// IsValid is false if one of the coordinates is NaN or infinite.
func (p Pair) IsValid() bool {
	return IsFinite(p.X()) && IsFinite(p.Y())
}

// Zap rounds x-part and y-part to Epsilon.
func (p Pair) Zap() Pair {
	return P(Zap(p.X()), Zap(p.Y()))
}

// IsOrigin is a predicate: is this pair origin?
func (p Pair) IsOrigin() bool {
	return p.Equal(Origin)
}

// Equal compares two pairs with tolerance Epsilon.
func (p Pair) Equal(p2 Pair) bool {
	return Is0(p.X()-p2.X()) && Is0(p.Y()-p2.Y())
}

// Abs is the length of a vector.
func (p Pair) Abs() float64 {
	return cmplx.Abs(p.C())
}

// Dist is the euclidean distance between two points.
func Dist(p, q Pair) float64 {
	return (q - p).Abs()
}

// Dot is the scalar product of two vectors.
func Dot(p, q Pair) float64 {
	return p.X()*q.X() + p.Y()*q.Y()
}

// Cross is the z-component of the cross product of two vectors.
// It is positive if q lies counter-clockwise of p.
func Cross(p, q Pair) float64 {
	return p.X()*q.Y() - p.Y()*q.X()
}

// Unit returns a vector of length 1 in the direction of p.
// The zero vector stays zero.
func (p Pair) Unit() Pair {
	l := p.Abs()
	if l == 0 {
		return Origin
	}
	return P(p.X()/l, p.Y()/l)
}

// Angle is the direction of a vector in radians, in -π … π.
func (p Pair) Angle() float64 {
	return cmplx.Phase(p.C())
}

// Dir returns the unit vector with angle phi.
func Dir(phi float64) Pair {
	return C2P(cmplx.Rect(1, phi))
}

// RightNormal is p rotated clockwise by 90 degrees.
func (p Pair) RightNormal() Pair {
	return P(p.Y(), -p.X())
}

// Scaled returns a new pair scaled by factor a.
func (p Pair) Scaled(a float64) Pair {
	return P(p.X()*a, p.Y()*a)
}

// Lerp interpolates linearly between p (t=0) and q (t=1).
func Lerp(p, q Pair, t float64) Pair {
	return p + (q - p).Scaled(t)
}

// Centroid is the arithmetic mean of a set of points.
func Centroid(pts []Pair) Pair {
	if len(pts) == 0 {
		return Origin
	}
	var c Pair
	for _, p := range pts {
		c += p
	}
	return c.Scaled(1 / float64(len(pts)))
}

// === Affine Transformations ================================================

// AT is an affine transform, a matrix type used for transforming points of
// scenes, e.g. when placing an obstacle template at a position (see the
// placement of obstacles in scene files).
type AT [9]float64 // a 3x3 matrix, flattened by rows

func (m AT) get(row, col int) float64 {
	return m[row*3+col]
}

func (m *AT) set(row, col int, value float64) {
	m[row*3+col] = value
}

// Identity transform. Will transform a point onto itself.
func Identity() AT {
	var m AT
	m.set(0, 0, 1)
	m.set(1, 1, 1)
	m.set(2, 2, 1)
	return m
}

// Translation transform. Translate a point by (dx,dy).
func Translation(p Pair) AT {
	m := Identity()
	m.set(0, 2, p.X())
	m.set(1, 2, p.Y())
	return m
}

// Rotation transform. Rotate a point counter-clockwise around the origin.
// Argument is in radians.
func Rotation(theta float64) AT {
	m := Identity()
	sin, cos := math.Sincos(theta)
	m.set(0, 0, cos)
	m.set(0, 1, -sin)
	m.set(1, 0, sin)
	m.set(1, 1, cos)
	return m
}

// Scaling transform, scaling x and y uniformly by s.
func Scaling(s float64) AT {
	m := Identity()
	m.set(0, 0, s)
	m.set(1, 1, s)
	return m
}

// Debug Stringer for an affine transform.
func (m AT) String() string {
	return fmt.Sprintf("[%g,%g,%g|%g,%g,%g|%g,%g,%g]",
		m[0], m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8])
}

// Combine 2 affine transformations to a new one: first m, then n.
func (m AT) Combine(n AT) AT {
	var o AT
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += n.get(row, k) * m.get(k, col)
			}
			o.set(row, col, s)
		}
	}
	return o
}

// Transform a 2D-point. The argument is unchanged and a new pair is returned.
func (m AT) Transform(p Pair) Pair {
	x := m.get(0, 0)*p.X() + m.get(0, 1)*p.Y() + m.get(0, 2)
	y := m.get(1, 0)*p.X() + m.get(1, 1)*p.Y() + m.get(1, 2)
	return P(x, y)
}

// TransformAll transforms a slice of points into a new slice.
func (m AT) TransformAll(pts []Pair) []Pair {
	r := make([]Pair, len(pts))
	for i, p := range pts {
		r[i] = m.Transform(p)
	}
	return r
}
