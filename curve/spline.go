package curve

import (
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/jhobby"
)

// MinFitPoints is the minimum number of samples needed to fit a spline.
const MinFitPoints = 4

// Spline is a sequence of cubic Bézier segments, fitted through ordered
// sample points. Segment i covers parameters knots[i] … knots[i+1].
// Closed splines are oriented counter-clockwise, i.e. the right-hand normal
// of the tangent points to the outside.
//
// Splines are immutable after fitting.
type Spline struct {
	segs   []Bezier
	knots  []float64
	closed bool
}

// Fit fits a smooth spline through points with Hobby's algorithm. Closed
// splines connect the last point with the first one; clients must not repeat
// the first point. tension = 1 is MetaFont's default.
//
// Fit returns dualvis.ErrDegenerateInput for less than MinFitPoints points,
// for coincident consecutive points and for invalid coordinates.
func Fit(points []dualvis.Pair, closed bool, tension float64) (*Spline, error) {
	if err := validateSamples(points, closed); err != nil {
		return nil, err
	}
	pts := append([]dualvis.Pair(nil), points...)
	if closed && SignedArea(pts) < 0 {
		tracer().Debugf("reversing clockwise samples")
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	path := jhobby.FromKnots(pts, closed).Tension(tension)
	controls, err := jhobby.FindHobbyControls(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dualvis.ErrDegenerateInput, err)
	}
	n := len(pts)
	nsegs := n - 1
	if closed {
		nsegs = n
	}
	s := &Spline{
		segs:   make([]Bezier, nsegs),
		knots:  make([]float64, nsegs+1),
		closed: closed,
	}
	for i := 0; i < nsegs; i++ {
		j := (i + 1) % n
		s.segs[i] = Bezier{pts[i], controls.PostControl(i), controls.PreControl(j), pts[j]}
		s.knots[i+1] = s.knots[i] + dualvis.Dist(pts[i], pts[j])
	}
	tracer().Debugf("fitted spline with %d segments, domain [0,%.4g]", nsegs, s.knots[nsegs])
	return s, nil
}

func validateSamples(points []dualvis.Pair, closed bool) error {
	n := len(points)
	if n < MinFitPoints {
		return fmt.Errorf("%w: need at least %d points, have %d", dualvis.ErrDegenerateInput,
			MinFitPoints, n)
	}
	for i, p := range points {
		if !p.IsValid() {
			return fmt.Errorf("%w: invalid point #%d", dualvis.ErrDegenerateInput, i)
		}
	}
	limit := n - 1
	if closed {
		limit = n
	}
	for i := 0; i < limit; i++ {
		if dualvis.Dist(points[i], points[(i+1)%n]) <= dualvis.Epsilon {
			return fmt.Errorf("%w: points #%d and #%d coincide", dualvis.ErrDegenerateInput,
				i, (i+1)%n)
		}
	}
	return nil
}

// SignedArea is the shoelace area of a closed polygon, positive for
// counter-clockwise vertex order.
func SignedArea(pts []dualvis.Pair) float64 {
	var a float64
	for i := range pts {
		a += dualvis.Cross(pts[i], pts[(i+1)%len(pts)])
	}
	return a / 2
}

// Domain returns the parameter range of the spline.
func (s *Spline) Domain() (float64, float64) {
	return s.knots[0], s.knots[len(s.knots)-1]
}

// IsClosed is true for closed splines.
func (s *Spline) IsClosed() bool {
	return s.closed
}

// N is the number of Bézier segments.
func (s *Spline) N() int {
	return len(s.segs)
}

// Segment returns Bézier segment i.
func (s *Spline) Segment(i int) Bezier {
	return s.segs[i]
}

// Knots returns the parameter values at the segment joins.
func (s *Spline) Knots() []float64 {
	return append([]float64(nil), s.knots...)
}

// Start and End are the points at the ends of the domain.
func (s *Spline) Start() dualvis.Pair { return s.segs[0].P0 }

// End returns the point at the end of the domain.
func (s *Spline) End() dualvis.Pair { return s.segs[len(s.segs)-1].P3 }

// locate finds the segment containing t and the segment-local parameter.
func (s *Spline) locate(t float64) (int, float64) {
	t = Wrap(s, t)
	i := sort.SearchFloat64s(s.knots, t) - 1 // knots[i] < t <= knots[i+1]
	if i < 0 {
		i = 0
	} else if i >= len(s.segs) {
		i = len(s.segs) - 1
	}
	u := (t - s.knots[i]) / (s.knots[i+1] - s.knots[i])
	return i, math.Max(0, math.Min(1, u))
}

// Eval returns the point at parameter t.
func (s *Spline) Eval(t float64) dualvis.Pair {
	i, u := s.locate(t)
	return s.segs[i].Eval(u)
}

// Tangent returns the derivative with respect to t.
func (s *Spline) Tangent(t float64) dualvis.Pair {
	i, u := s.locate(t)
	return s.segs[i].Deriv(u).Scaled(1 / (s.knots[i+1] - s.knots[i]))
}

// Curvature returns the signed curvature at t, positive for left turns.
func (s *Spline) Curvature(t float64) float64 {
	i, u := s.locate(t)
	d1, d2 := s.segs[i].Deriv(u), s.segs[i].Deriv2(u)
	l := d1.Abs()
	if l == 0 {
		return math.Inf(1)
	}
	return dualvis.Cross(d1, d2) / (l * l * l)
}

// Pieces returns the Bézier segments with their parameter ranges.
func (s *Spline) Pieces() []Piece {
	pieces := make([]Piece, len(s.segs))
	for i, b := range s.segs {
		pieces[i] = Piece{Bez: b, T0: s.knots[i], T1: s.knots[i+1]}
	}
	return pieces
}

// ArcLength returns the length of the spline between t0 and t1. For closed
// splines the way runs forward from t0 and wraps around if t1 < t0.
// For open splines the order of t0 and t1 does not matter.
func (s *Spline) ArcLength(t0, t1 float64) float64 {
	lo, hi := s.Domain()
	a, b := Wrap(s, t0), Wrap(s, t1)
	if !s.closed {
		return s.length(math.Min(a, b), math.Max(a, b))
	}
	if b < a {
		return s.length(a, hi) + s.length(lo, b)
	}
	return s.length(a, b)
}

// length for lo <= a <= b <= hi.
func (s *Spline) length(a, b float64) float64 {
	var l float64
	for i, seg := range s.segs {
		k0, k1 := s.knots[i], s.knots[i+1]
		if k1 <= a || k0 >= b {
			continue
		}
		u0 := math.Max(0, (a-k0)/(k1-k0))
		u1 := math.Min(1, (b-k0)/(k1-k0))
		if u0 == 0 && u1 == 1 {
			l += seg.Arclen(DefaultArcLengthAccuracy)
		} else {
			l += seg.Subsegment(u0, u1).Arclen(DefaultArcLengthAccuracy)
		}
	}
	return l
}

// Length is the total length of the spline.
func (s *Spline) Length() float64 {
	lo, hi := s.Domain()
	return s.length(lo, hi)
}

// Subdivide splits the spline at t into two open splines whose union
// reproduces s. t must lie strictly inside the domain.
func (s *Spline) Subdivide(t float64) (*Spline, *Spline, error) {
	lo, hi := s.Domain()
	if s.closed {
		t = Wrap(s, t)
	}
	if t <= lo || t >= hi || math.IsNaN(t) {
		return nil, nil, fmt.Errorf("%w: cannot subdivide at %g, domain is [%g,%g]",
			dualvis.ErrParameterOutOfRange, t, lo, hi)
	}
	i, u := s.locate(t)
	left := &Spline{knots: append([]float64(nil), s.knots[:i+1]...)}
	right := &Spline{knots: []float64{t}}
	const snap = 1e-12
	switch {
	case u <= snap:
		left.segs = append(left.segs, s.segs[:i]...)
		right.segs = append(right.segs, s.segs[i:]...)
		right.knots = append(right.knots, s.knots[i+1:]...)
		left.knots[len(left.knots)-1] = t
	case u >= 1-snap:
		left.segs = append(left.segs, s.segs[:i+1]...)
		left.knots = append(left.knots, t)
		right.segs = append(right.segs, s.segs[i+1:]...)
		right.knots = append(right.knots, s.knots[i+2:]...)
	default:
		b1, b2 := s.segs[i].Split(u)
		left.segs = append(append(left.segs, s.segs[:i]...), b1)
		left.knots = append(left.knots, t)
		right.segs = append(append(right.segs, b2), s.segs[i+1:]...)
		right.knots = append(right.knots, s.knots[i+1:]...)
	}
	if len(left.segs) == 0 || len(right.segs) == 0 {
		return nil, nil, fmt.Errorf("%w: cannot subdivide at %g, too close to the domain's end",
			dualvis.ErrParameterOutOfRange, t)
	}
	return left, right, nil
}

// Restrict returns the open part of s between t0 and t1, keeping the
// parameterization. It is used to display curves growing over time.
func (s *Spline) Restrict(t0, t1 float64) (*Spline, error) {
	lo, hi := s.Domain()
	if t0 < lo || t1 > hi || t0 >= t1 {
		return nil, fmt.Errorf("%w: cannot restrict to [%g,%g], domain is [%g,%g]",
			dualvis.ErrParameterOutOfRange, t0, t1, lo, hi)
	}
	r := &Spline{segs: s.segs, knots: s.knots}
	var err error
	if t0 > lo {
		if _, r, err = r.Subdivide(t0); err != nil {
			return nil, err
		}
	}
	if t1 < hi {
		if r, _, err = r.Subdivide(t1); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Orientation is +1 for closed splines (counter-clockwise) and 0 for open ones.
func (s *Spline) Orientation() int {
	if s.closed {
		return 1
	}
	return 0
}
