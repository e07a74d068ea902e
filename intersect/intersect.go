/*
Package intersect finds intersections of parametric curves by recursive
subdivision.

The intersector works on the cubic pieces of curves (curve.Piece). Pairs of
sub-pieces are kept on an explicit worklist; pairs whose control hull boxes
do not overlap are pruned, others are split until both boxes are smaller
than the tolerance. Candidates found this way are refined with Newton's
method on the exact curves and verified against the tolerance before being
reported. Pieces may be approximations with a known slack, which is added to
their boxes. If a curve is a curve.Approximator, split spans are
approximated anew, so their slack shrinks along with them.

Searching for self-intersections, neighbouring spans are discarded as soon
as their tangents fit into a common open half-plane: the curve is monotone
in that direction across both spans and cannot meet itself there.

Exceeding the depth or work ceiling is reported as
dualvis.ErrToleranceNotReached. This typically happens for curves touching
tangentially over a long stretch.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package intersect

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.intersect'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.intersect")
}

// Options for the intersector.
type Options struct {
	Tolerance      float64 // verified distance of intersection points
	MaxDepth       int     // ceiling for subdivision depth
	MaxWork        int     // ceiling for the number of processed span pairs
	MinSeparation  float64 // minimal parameter distance of self-intersections
	DedupeDistance float64 // hits closer in parameters are merged
}

// DefaultOptions returns the options used by the engine if not configured
// otherwise.
func DefaultOptions() Options {
	return Options{
		Tolerance:      1e-6,
		MaxDepth:       96,
		MaxWork:        1 << 20,
		MinSeparation:  1e-2,
		DedupeDistance: 1e-4,
	}
}

// Hit is an intersection of curves A and B at parameters TA and TB.
type Hit struct {
	TA, TB float64
	P      dualvis.Pair
}

// span is a part of a piece, over piece-local parameters u0…u1.
type span struct {
	piece  int
	bez    curve.Bezier
	slack  float64
	u0, u1 float64
}

type task struct {
	a, b  span
	depth int
}

// intersector holds the state of a single search.
type intersector struct {
	a, b      curve.Curve
	pa, pb    []curve.Piece
	opts      Options
	self      bool
	firstOnly bool
	work      int
	hits      []Hit
}

// Curves returns all intersections of curves a and b.
func Curves(ctx context.Context, a, b curve.Curve, opts Options) ([]Hit, error) {
	isec := newIntersector(a, b, opts)
	if err := isec.run(ctx); err != nil {
		return nil, err
	}
	return isec.result(), nil
}

// Self returns the self-intersections of c, with TA < TB and parameters at
// least MinSeparation apart (the shorter way around for closed curves).
func Self(ctx context.Context, c curve.Curve, opts Options) ([]Hit, error) {
	isec := newIntersector(c, c, opts)
	isec.self = true
	if err := isec.run(ctx); err != nil {
		return nil, err
	}
	return isec.result(), nil
}

// Any reports whether curves a and b intersect, stopping at the first
// verified intersection.
func Any(ctx context.Context, a, b curve.Curve, opts Options) (bool, error) {
	isec := newIntersector(a, b, opts)
	isec.firstOnly = true
	if err := isec.run(ctx); err != nil {
		return false, err
	}
	return len(isec.hits) > 0, nil
}

func newIntersector(a, b curve.Curve, opts Options) *intersector {
	def := DefaultOptions()
	if opts.Tolerance <= 0 {
		opts.Tolerance = def.Tolerance
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.MaxWork <= 0 {
		opts.MaxWork = def.MaxWork
	}
	if opts.DedupeDistance <= 0 {
		opts.DedupeDistance = def.DedupeDistance
	}
	if opts.MinSeparation <= 0 {
		opts.MinSeparation = def.MinSeparation
	}
	return &intersector{a: a, b: b, pa: a.Pieces(), pb: b.Pieces(), opts: opts}
}

func (isec *intersector) run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var stack []task
	for i, p := range isec.pa {
		for j, q := range isec.pb {
			if isec.self && j < i {
				continue
			}
			stack = append(stack, task{
				a: span{piece: i, bez: p.Bez, slack: p.Slack, u0: 0, u1: 1},
				b: span{piece: j, bez: q.Bez, slack: q.Slack, u0: 0, u1: 1},
			})
		}
	}
	tol := isec.opts.Tolerance
	for len(stack) > 0 {
		tk := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		isec.work++
		if isec.work > isec.opts.MaxWork {
			return fmt.Errorf("%w: work ceiling of %d exceeded", dualvis.ErrToleranceNotReached,
				isec.opts.MaxWork)
		}
		if isec.work%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		boxA := curve.Inflate(tk.a.bez.Bounds(), tk.a.slack+tol/2)
		boxB := curve.Inflate(tk.b.bez.Bounds(), tk.b.slack+tol/2)
		if !boxA.Overlaps(boxB) {
			continue
		}
		near := false
		if isec.self {
			gap, extent := isec.separation(tk.a, tk.b)
			if extent < isec.opts.MinSeparation || (gap == 0 && monotone(tk.a, tk.b)) {
				continue
			}
			near = gap < isec.opts.MinSeparation
		}
		sizeA, sizeB := tk.a.bez.Size(), tk.b.bez.Size()
		if sizeA < math.Max(tol, tk.a.slack) && sizeB < math.Max(tol, tk.b.slack) {
			if isec.leaf(tk) && isec.firstOnly {
				return nil
			}
			continue
		}
		if tk.depth >= isec.opts.MaxDepth {
			return fmt.Errorf("%w: depth ceiling of %d reached at t = %g", dualvis.ErrToleranceNotReached,
				isec.opts.MaxDepth, isec.param(isec.pa, tk.a, 0.5))
		}
		// split the larger span; near the diagonal split the wider one in parameter
		splitA := sizeA >= sizeB
		if near {
			splitA = isec.width(isec.pa, tk.a) >= isec.width(isec.pb, tk.b)
		}
		if splitA {
			a1, a2 := isec.split(isec.a, isec.pa, tk.a)
			stack = append(stack, task{a1, tk.b, tk.depth + 1}, task{a2, tk.b, tk.depth + 1})
		} else {
			b1, b2 := isec.split(isec.b, isec.pb, tk.b)
			stack = append(stack, task{tk.a, b1, tk.depth + 1}, task{tk.a, b2, tk.depth + 1})
		}
	}
	tracer().Debugf("intersection search: %d span pairs, %d hits", isec.work, len(isec.hits))
	return nil
}

// split halves a span. While its slack is significant, the halves of an
// approximated curve are approximated anew.
func (isec *intersector) split(c curve.Curve, pieces []curve.Piece, s span) (span, span) {
	m := (s.u0 + s.u1) / 2
	if ap, ok := c.(curve.Approximator); ok && s.slack > isec.opts.Tolerance/8 {
		p := pieces[s.piece]
		l := ap.Approximate(p.Param(s.u0), p.Param(m))
		r := ap.Approximate(p.Param(m), p.Param(s.u1))
		return span{s.piece, l.Bez, l.Slack, s.u0, m}, span{s.piece, r.Bez, r.Slack, m, s.u1}
	}
	l, r := s.bez.Split(0.5)
	return span{s.piece, l, s.slack, s.u0, m}, span{s.piece, r, s.slack, m, s.u1}
}

// monotone is true if the hodographs of both spans lie in a common open
// half-plane.
func monotone(a, b span) bool {
	ha, hb := a.bez.Hodograph(), b.bez.Hodograph()
	vs := append(ha[:], hb[:]...)
	var d dualvis.Pair
	for _, v := range vs {
		if l := v.Abs(); l > 0 {
			d += v.Scaled(1 / l)
		}
	}
	if d.Abs() == 0 {
		return false
	}
	for _, v := range vs {
		if dualvis.Dot(d, v) <= 0 {
			return false
		}
	}
	return true
}

func (isec *intersector) param(pieces []curve.Piece, s span, u float64) float64 {
	return pieces[s.piece].Param(s.u0 + u*(s.u1-s.u0))
}

func (isec *intersector) width(pieces []curve.Piece, s span) float64 {
	return math.Abs(isec.param(pieces, s, 1) - isec.param(pieces, s, 0))
}

// separation returns the parameter gap between two spans of the same curve
// and an upper bound for the distance of their farthest parameters.
func (isec *intersector) separation(a, b span) (float64, float64) {
	a0, a1 := isec.param(isec.pa, a, 0), isec.param(isec.pa, a, 1)
	b0, b1 := isec.param(isec.pb, b, 0), isec.param(isec.pb, b, 1)
	gap := math.Max(0, math.Max(b0-a1, a0-b1))
	if gap > 0 && isec.a.IsClosed() {
		around := curve.Period(isec.a) - (math.Max(a1, b1) - math.Min(a0, b0))
		gap = math.Min(gap, math.Max(0, around))
	}
	return gap, gap + (a1 - a0) + (b1 - b0)
}

// leaf refines and verifies a candidate. It returns true if a new hit has
// been recorded.
func (isec *intersector) leaf(tk task) bool {
	ta0, tb0 := isec.param(isec.pa, tk.a, 0.5), isec.param(isec.pb, tk.b, 0.5)
	ta, tb, ok := refine(isec.a, isec.b, ta0, tb0, isec.opts.Tolerance)
	if !ok {
		return false
	}
	if isec.self {
		// Newton slid onto the trivial solution ta = tb: the spans are
		// branches of a cusp or of a tangential fold, not a crossing
		if curve.ParamDistance(isec.a, ta, tb) < isec.opts.MinSeparation {
			tracer().Debugf("dropping near-diagonal candidate at %.6g/%.6g", ta0, tb0)
			return false
		}
		if tb < ta {
			ta, tb = tb, ta
		}
	}
	for _, h := range isec.hits {
		if curve.ParamDistance(isec.a, h.TA, ta) < isec.opts.DedupeDistance &&
			curve.ParamDistance(isec.b, h.TB, tb) < isec.opts.DedupeDistance {
			return false
		}
	}
	p := isec.a.Eval(ta)
	tracer().Debugf("intersection at tA = %.6g, tB = %.6g, P = %v", ta, tb, p)
	isec.hits = append(isec.hits, Hit{TA: ta, TB: tb, P: p})
	return true
}

func (isec *intersector) result() []Hit {
	sort.Slice(isec.hits, func(i, j int) bool {
		if isec.hits[i].TA != isec.hits[j].TA {
			return isec.hits[i].TA < isec.hits[j].TA
		}
		return isec.hits[i].TB < isec.hits[j].TB
	})
	return isec.hits
}

// refine solves A(ta) = B(tb) with Newton's method, starting from the
// subdivision's estimate. It falls back to the estimate for tangential
// contacts, if that satisfies the tolerance.
func refine(a, b curve.Curve, ta, tb, tol float64) (float64, float64, bool) {
	ta0, tb0 := ta, tb
	for i := 0; i < 24; i++ {
		f := a.Eval(ta) - b.Eval(tb)
		if f.Abs() < tol*1e-3 {
			break
		}
		da, db := a.Tangent(ta), b.Tangent(tb)
		det := dualvis.Cross(da, db.Scaled(-1))
		if math.Abs(det) < 1e-14*(da.Abs()*db.Abs()+1e-300) {
			break
		}
		// J·(dta,dtb) = -f with J = [da | -db], by Cramer's rule
		dta := dualvis.Cross(f.Scaled(-1), db.Scaled(-1)) / det
		dtb := dualvis.Cross(da, f.Scaled(-1)) / det
		if math.IsNaN(dta) || math.IsNaN(dtb) {
			break
		}
		ta, tb = curve.Wrap(a, ta+dta), curve.Wrap(b, tb+dtb)
	}
	if (a.Eval(ta) - b.Eval(tb)).Abs() < tol {
		return ta, tb, true
	}
	if (a.Eval(ta0) - b.Eval(tb0)).Abs() < tol {
		return ta0, tb0, true
	}
	return 0, 0, false
}
