package jhobby

import (
	"errors"
	"math/cmplx"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.fit'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.fit")
}

const _epsilon = 0.0000001

var (
	// ErrNilPath indicates a nil path pointer.
	ErrNilPath = errors.New("path must not be nil")
	// ErrTooFewKnots indicates path knot count is insufficient for solving.
	ErrTooFewKnots = errors.New("path has too few knots")
	// ErrInvalidKnot indicates a knot coordinate contains NaN/Inf.
	ErrInvalidKnot = errors.New("path has invalid knot coordinate")
	// ErrDegenerateSegment indicates two consecutive knots collapse to one point.
	ErrDegenerateSegment = errors.New("path has degenerate segment")
	// ErrInvalidTension indicates a tension below 3/4, which Hobby's
	// algorithm does not support.
	ErrInvalidTension = errors.New("tension must be at least 3/4")
)

// Path is a skeleton path of knots, joined by curves of uniform tension.
// To construct a path, start with Nullpath(), which creates an empty
// path, and then extend it.
type Path struct {
	points  []dualvis.Pair // point i
	cycle   bool           // is this path cyclic ?
	tension float64        // tension for all joins
}

// Controls collects calculated spline control points.
type Controls struct {
	prec  []dualvis.Pair // control point i-, to be calculated
	postc []dualvis.Pair // control point i+, to be calculated
}

// Nullpath creates an empty path of tension 1.
func Nullpath() *Path {
	return &Path{tension: 1}
}

// FromKnots creates a path through the given knots. The slice is copied.
func FromKnots(knots []dualvis.Pair, cycle bool) *Path {
	path := Nullpath()
	path.points = append(path.points, knots...)
	path.cycle = cycle
	return path
}

// Knot appends a knot to the path.
func (path *Path) Knot(p dualvis.Pair) *Path {
	path.points = append(path.points, p)
	return path
}

// Tension sets the tension for all joins. MetaFont's default is 1.
func (path *Path) Tension(t float64) *Path {
	path.tension = t
	return path
}

// End terminates an open path.
func (path *Path) End() *Path {
	path.cycle = false
	return path
}

// Cycle closes the path. The last knot connects to the first one; clients
// must not repeat the first knot.
func (path *Path) Cycle() *Path {
	path.cycle = true
	return path
}

// IsCycle is a predicate: is this path closed?
func (path *Path) IsCycle() bool {
	return path.cycle
}

// N returns the number of knots.
func (path *Path) N() int {
	return len(path.points)
}

// Z returns knot i. For cyclic paths the index wraps.
func (path *Path) Z(i int) dualvis.Pair {
	n := path.N()
	if path.cycle {
		i = ((i % n) + n) % n
	}
	return path.points[i]
}

// Knots returns a copy of the knots of the path.
func (path *Path) Knots() []dualvis.Pair {
	return append([]dualvis.Pair(nil), path.points...)
}

// delta is the vector from knot i to knot i+1.
func (path *Path) delta(i int) dualvis.Pair {
	return path.Z(i+1) - path.Z(i)
}

// d is the distance from knot i to knot i+1.
func (path *Path) d(i int) float64 {
	return path.delta(i).Abs()
}

// psi is the turning angle at knot i; 0 at the ends of an open path.
func (path *Path) psi(i int) float64 {
	if !path.cycle && (i <= 0 || i >= path.N()-1) {
		return 0
	}
	return reduceAngle(path.delta(i).Angle() - path.delta(i-1).Angle())
}

// N returns the number of pre- and post-control slots in use.
func (ctrls *Controls) N() int {
	return max(len(ctrls.prec), len(ctrls.postc))
}

// SetPreControl sets the incoming control point of knot i.
func (ctrls *Controls) SetPreControl(i int, c dualvis.Pair) {
	ctrls.prec = extendC(ctrls.prec, i, dualvis.Pair(cmplx.NaN()))
	ctrls.prec[i] = c
}

// SetPostControl sets the outgoing control point of knot i.
func (ctrls *Controls) SetPostControl(i int, c dualvis.Pair) {
	ctrls.postc = extendC(ctrls.postc, i, dualvis.Pair(cmplx.NaN()))
	ctrls.postc[i] = c
}

// PreControl is the incoming control point of knot i, or NaN if unknown.
func (ctrls *Controls) PreControl(i int) dualvis.Pair {
	return getC(ctrls.prec, i, dualvis.Pair(cmplx.NaN()))
}

// PostControl is the outgoing control point of knot i, or NaN if unknown.
func (ctrls *Controls) PostControl(i int) dualvis.Pair {
	return getC(ctrls.postc, i, dualvis.Pair(cmplx.NaN()))
}
