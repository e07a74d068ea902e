/*
Package dual maps curves to their dual curves, i.e. to the curves of their
tangent lines.

An oriented line with unit normal n and offset h = n·(p − c) relative to a
center c is embedded into the plane as the point n·(R + h). As long as R
exceeds the radius of the scene around c, this map is continuous and
injective for all lines meeting the scene. Common tangents of two curves
then are intersections of their dual curves: lines with equal orientation
meet in the dual of the primal curves, lines of opposite orientation meet
with the reflected dual.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package dual

import (
	"math"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.dual'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.dual")
}

// Embedding maps oriented lines to points of the plane and back.
type Embedding struct {
	Center dualvis.Pair
	Radius float64 // R, must exceed the scene's radius around Center
}

// NewEmbedding creates an embedding around center. radius must exceed the
// distance of every relevant line from center.
func NewEmbedding(center dualvis.Pair, radius float64) Embedding {
	if radius <= 0 {
		radius = 1
	}
	return Embedding{Center: center, Radius: radius}
}

// EmbeddingFor creates an embedding suitable for every line meeting the
// bounding box of points.
func EmbeddingFor(points ...dualvis.Pair) Embedding {
	if len(points) == 0 {
		return Embedding{Radius: 1}
	}
	minx, miny := math.Inf(1), math.Inf(1)
	maxx, maxy := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minx, maxx = math.Min(minx, p.X()), math.Max(maxx, p.X())
		miny, maxy = math.Min(miny, p.Y()), math.Max(maxy, p.Y())
	}
	c := dualvis.P((minx+maxx)/2, (miny+maxy)/2)
	var r float64
	for _, p := range points {
		r = math.Max(r, dualvis.Dist(c, p))
	}
	emb := NewEmbedding(c, 2*r+1)
	tracer().Debugf("dual embedding center %v, R = %.4g", emb.Center, emb.Radius)
	return emb
}

// Offset is the signed distance h of the line from the center, measured
// along the line's normal.
func (emb Embedding) Offset(l dualvis.Line) float64 {
	return -l.Normalized().Distance(emb.Center)
}

// Point embeds an oriented line.
func (emb Embedding) Point(l dualvis.Line) dualvis.Pair {
	l = l.Normalized()
	return l.Normal().Scaled(emb.Radius + emb.Offset(l))
}

// Line recovers the oriented line from its embedded point.
func (emb Embedding) Line(q dualvis.Pair) dualvis.Line {
	r := q.Abs()
	n := q.Unit()
	h := r - emb.Radius
	return dualvis.Line{A: n.X(), B: n.Y(), C: -(h + dualvis.Dot(n, emb.Center))}
}

// Covers is true if the line l is injectively embedded, i.e. its offset is
// smaller than R.
func (emb Embedding) Covers(l dualvis.Line) bool {
	return math.Abs(emb.Offset(l)) < emb.Radius
}
