package dualvis

import (
	"fmt"
	"math"
)

// Line is an oriented line in homogeneous form a·x + b·y + c = 0.
// The normal (a,b) points to the right of the line's direction.
// Lines created by this package are normalized, i.e. |(a,b)| = 1.
type Line struct {
	A, B, C float64
}

// LineThrough returns the oriented line through p with direction dir.
// A zero direction yields the zero line, which is not valid.
func LineThrough(p, dir Pair) Line {
	n := dir.Unit().RightNormal()
	return Line{A: n.X(), B: n.Y(), C: -Dot(n, p)}
}

// LineBetween returns the oriented line from p to q.
func LineBetween(p, q Pair) Line {
	return LineThrough(p, q-p)
}

// IsValid is false for the zero line.
func (l Line) IsValid() bool {
	return !Is0(l.A) || !Is0(l.B)
}

// Normal returns the normal vector (a,b).
func (l Line) Normal() Pair {
	return P(l.A, l.B)
}

// Direction returns the direction vector of the line, i.e. the normal rotated
// counter-clockwise.
func (l Line) Direction() Pair {
	return P(-l.B, l.A)
}

// Normalized scales l to a unit normal. The zero line is returned unchanged.
func (l Line) Normalized() Line {
	n := l.Normal().Abs()
	if n == 0 {
		return l
	}
	return Line{A: l.A / n, B: l.B / n, C: l.C / n}
}

// Distance is the signed distance of p from l, positive on the normal's side.
// l must be normalized.
func (l Line) Distance(p Pair) float64 {
	return l.A*p.X() + l.B*p.Y() + l.C
}

// Reflected is the point reflection (a,b,c) → (−a,−b,−c), i.e. the same line
// with opposite orientation.
func (l Line) Reflected() Line {
	return Line{A: -l.A, B: -l.B, C: -l.C}
}

// Foot is the point on l closest to p. l must be normalized.
func (l Line) Foot(p Pair) Pair {
	return p - l.Normal().Scaled(l.Distance(p))
}

// Parallel is true if l and m have parallel normals, disregarding orientation.
func (l Line) Parallel(m Line) bool {
	return Is0(Cross(l.Normal().Unit(), m.Normal().Unit()))
}

// Angle is the unsigned angle between the undirected lines l and m, in 0 … π/2.
func (l Line) Angle(m Line) float64 {
	u, v := l.Normal().Unit(), m.Normal().Unit()
	return math.Atan2(math.Abs(Cross(u, v)), math.Abs(Dot(u, v)))
}

func (l Line) String() string {
	return fmt.Sprintf("[%.4g·x + %.4g·y + %.4g = 0]", l.A, l.B, l.C)
}
