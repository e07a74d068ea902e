/*
Package obstacle bundles everything the engine knows about a single
obstacle: its fitted boundary curve, the dual of that curve, and a
polygonal outline for containment tests.

Containment is decided by the outline, except within a band around it
which covers the deviation of the outline from the curve. Inside that band
the side of the nearest curve point decides.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package obstacle

import (
	"fmt"
	"math"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/dualvis/polygon"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.obstacle'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.obstacle")
}

// Obstacle is a curved obstacle of a scene. Obstacles are identified by
// their index into the scene's obstacle list.
type Obstacle struct {
	Index     int
	Curve     *curve.Spline
	Dual      *dual.Curve // tangent lines, oriented like the curve
	Reflected *dual.Curve // tangent lines with opposite orientation
	Outline   *polygon.Polygon
	params    []float64      // curve parameters of the outline's vertices
	verts     []dualvis.Pair // outline vertices, closing vertex repeated
	band      float64        // bound of the outline's deviation from the curve
}

// New creates an obstacle from a fitted curve, computing its dual in emb and
// an outline with flatten vertices per curve segment.
func New(index int, c *curve.Spline, emb dual.Embedding, opts dual.Options, flatten int) (*Obstacle, error) {
	d, err := dual.Of(c, emb, opts)
	if err != nil {
		return nil, fmt.Errorf("obstacle #%d: %w", index, err)
	}
	o := &Obstacle{
		Index:     index,
		Curve:     c,
		Dual:      d,
		Reflected: d.Reflect(),
		Outline:   polygon.FromCurve(c, flatten),
	}
	o.measure(flatten)
	tracer().Debugf("obstacle #%d: %d outline vertices, band %.3g", index, len(o.params), o.band)
	return o, nil
}

// measure records the outline's vertex parameters, the way curve.Flatten
// places them, and the largest distance of the curve from an outline edge.
func (o *Obstacle) measure(flatten int) {
	if flatten < 1 {
		flatten = 1
	}
	for _, p := range o.Curve.Pieces() {
		for i := 0; i < flatten; i++ {
			o.params = append(o.params, p.Param(float64(i)/float64(flatten)))
		}
	}
	_, hi := o.Curve.Domain()
	o.params = append(o.params, hi)
	o.verts = make([]dualvis.Pair, len(o.params))
	for i, t := range o.params {
		o.verts[i] = o.Curve.Eval(t)
	}
	var dev float64
	for i := 0; i+1 < len(o.params); i++ {
		ta, tb := o.params[i], o.params[i+1]
		for k := 1; k < 8; k++ {
			dev = math.Max(dev, o.edge(i).Distance(o.Curve.Eval(ta+(tb-ta)*float64(k)/8)))
		}
	}
	o.band = 2*dev + dualvis.Epsilon
}

// IsClosed is true for closed obstacles, which have an interior.
func (o *Obstacle) IsClosed() bool {
	return o.Curve.IsClosed()
}

// Contains is true if p lies inside a closed obstacle. Points on the curve
// are not inside.
func (o *Obstacle) Contains(p dualvis.Pair) bool {
	if !o.IsClosed() {
		return false
	}
	i, d := o.nearestEdge(p)
	if d >= o.band {
		return o.Outline.Contains(p)
	}
	t := o.nearest(p, i)
	q, tan := o.Curve.Eval(t), o.Curve.Tangent(t)
	// counter-clockwise curves have their interior to the left
	return dualvis.Cross(tan, p-q) > dualvis.Epsilon*tan.Abs()
}

// nearestEdge returns the outline edge closest to p and its distance.
func (o *Obstacle) nearestEdge(p dualvis.Pair) (int, float64) {
	best, dist := 0, math.Inf(1)
	for i := 0; i+1 < len(o.verts); i++ {
		if d := o.edge(i).Distance(p); d < dist {
			best, dist = i, d
		}
	}
	return best, dist
}

func (o *Obstacle) edge(i int) curve.Segment {
	return curve.Segment{P0: o.verts[i], P1: o.verts[i+1]}
}

// nearest returns the curve parameter closest to p, searching the stretch
// of the curve around outline edge i.
func (o *Obstacle) nearest(p dualvis.Pair, i int) float64 {
	ta, tb := o.params[i], o.params[i+1]
	w := tb - ta
	lo, hi := ta-w/2, tb+w/2
	if !o.IsClosed() {
		dlo, dhi := o.Curve.Domain()
		lo, hi = math.Max(lo, dlo), math.Min(hi, dhi)
	}
	dist := func(t float64) float64 {
		return dualvis.Dist(p, o.Curve.Eval(curve.Wrap(o.Curve, t)))
	}
	const n = 16
	step := (hi - lo) / n
	best := lo
	for k := 1; k <= n; k++ {
		if t := lo + float64(k)*step; dist(t) < dist(best) {
			best = t
		}
	}
	a, b := best-step, best+step
	for k := 0; k < 40; k++ {
		m1, m2 := a+(b-a)/3, b-(b-a)/3
		if dist(m1) < dist(m2) {
			b = m2
		} else {
			a = m1
		}
	}
	return curve.Wrap(o.Curve, (a+b)/2)
}

// Endpoints returns the parameters of the ends of an open obstacle. Closed
// obstacles have none.
func (o *Obstacle) Endpoints() []float64 {
	if o.IsClosed() {
		return nil
	}
	lo, hi := o.Curve.Domain()
	return []float64{lo, hi}
}
