package curve

import (
	"fmt"

	"github.com/npillmayer/dualvis"
)

// Segment is a straight line segment from P0 (t=0) to P1 (t=1).
type Segment struct {
	P0, P1 dualvis.Pair
}

// Domain is [0,1].
func (s Segment) Domain() (float64, float64) { return 0, 1 }

// IsClosed is always false.
func (s Segment) IsClosed() bool { return false }

// Eval returns the point at t.
func (s Segment) Eval(t float64) dualvis.Pair { return dualvis.Lerp(s.P0, s.P1, t) }

// Tangent is constant.
func (s Segment) Tangent(float64) dualvis.Pair { return s.P1 - s.P0 }

// Pieces returns the segment as a single cubic.
func (s Segment) Pieces() []Piece {
	return []Piece{{Bez: Line(s.P0, s.P1), T0: 0, T1: 1}}
}

// ArcLength is the length between t0 and t1.
func (s Segment) ArcLength(t0, t1 float64) float64 {
	l := dualvis.Dist(s.P0, s.P1) * (t1 - t0)
	if l < 0 {
		return -l
	}
	return l
}

// Subdivide splits the segment at t, which must lie strictly within (0,1).
func (s Segment) Subdivide(t float64) (Segment, Segment, error) {
	if t <= 0 || t >= 1 {
		return Segment{}, Segment{}, fmt.Errorf("%w: segment split at %g",
			dualvis.ErrParameterOutOfRange, t)
	}
	m := s.Eval(t)
	return Segment{s.P0, m}, Segment{m, s.P1}, nil
}

// Trimmed returns the part of s between t0 and t1.
func (s Segment) Trimmed(t0, t1 float64) Segment {
	return Segment{s.Eval(t0), s.Eval(t1)}
}

// Line returns the oriented carrier line of s.
func (s Segment) Line() dualvis.Line {
	return dualvis.LineBetween(s.P0, s.P1)
}

// Closest returns the parameter of the point of s closest to p.
func (s Segment) Closest(p dualvis.Pair) float64 {
	v := s.P1 - s.P0
	l2 := dualvis.Dot(v, v)
	if l2 == 0 {
		return 0
	}
	return max(0, min(1, dualvis.Dot(p-s.P0, v)/l2))
}

// Distance is the distance of p from s.
func (s Segment) Distance(p dualvis.Pair) float64 {
	return dualvis.Dist(p, s.Eval(s.Closest(p)))
}
