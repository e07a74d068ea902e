/*
Package polygon deals with polygonal approximations of obstacles.

Polygons serve two purposes: fast point containment tests for closed
obstacles, and the classic polygonal visibility graph, which the engine
reports for comparison with the smooth one. Boolean operations are
delegated to polyclip.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package polygon

import (
	"fmt"
	"math"
	"strings"

	polyclip "github.com/akavel/polyclip-go"
	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/schuko/tracing"
)

// L writes to trace with key 'dualvis.polygon'
func L() tracing.Trace {
	return tracing.Select("dualvis.polygon")
}

// Polygon is a polyline, which may be closed.
type Polygon struct {
	pts    []dualvis.Pair
	closed bool
}

// NullPolygon creates an empty polygon. Extend it with Knot(…).
func NullPolygon() *Polygon {
	return &Polygon{}
}

// FromPoints creates a polygon from vertices. The slice is copied.
func FromPoints(pts []dualvis.Pair, closed bool) *Polygon {
	return &Polygon{pts: append([]dualvis.Pair(nil), pts...), closed: closed}
}

// FromCurve flattens a curve with n vertices per piece.
func FromCurve(c curve.Curve, n int) *Polygon {
	return &Polygon{pts: curve.Flatten(c, n), closed: c.IsClosed()}
}

// Box creates a closed rectangle from two opposite corners.
func Box(p, q dualvis.Pair) *Polygon {
	x0, x1 := math.Min(p.X(), q.X()), math.Max(p.X(), q.X())
	y0, y1 := math.Min(p.Y(), q.Y()), math.Max(p.Y(), q.Y())
	return NullPolygon().Knot(dualvis.P(x0, y0)).Knot(dualvis.P(x1, y0)).
		Knot(dualvis.P(x1, y1)).Knot(dualvis.P(x0, y1)).Cycle()
}

// Knot appends a vertex.
func (pg *Polygon) Knot(p dualvis.Pair) *Polygon {
	pg.pts = append(pg.pts, p)
	return pg
}

// Cycle closes the polygon.
func (pg *Polygon) Cycle() *Polygon {
	pg.closed = true
	return pg
}

// End terminates an open polyline.
func (pg *Polygon) End() *Polygon {
	pg.closed = false
	return pg
}

// N is the number of vertices.
func (pg *Polygon) N() int {
	return len(pg.pts)
}

// Pt returns vertex i.
func (pg *Polygon) Pt(i int) dualvis.Pair {
	return pg.pts[i]
}

// Points returns a copy of the vertices.
func (pg *Polygon) Points() []dualvis.Pair {
	return append([]dualvis.Pair(nil), pg.pts...)
}

// IsCycle is true for closed polygons.
func (pg *Polygon) IsCycle() bool {
	return pg.closed
}

// Area is the signed area of a closed polygon, positive for counter-clockwise
// orientation. Open polylines have no area.
func (pg *Polygon) Area() float64 {
	if !pg.closed {
		return 0
	}
	return curve.SignedArea(pg.pts)
}

// Edges returns the edges of the polygon as pairs of vertices.
func (pg *Polygon) Edges() [][2]dualvis.Pair {
	n := len(pg.pts)
	m := n - 1
	if pg.closed {
		m = n
	}
	edges := make([][2]dualvis.Pair, 0, max(m, 0))
	for i := 0; i < m; i++ {
		edges = append(edges, [2]dualvis.Pair{pg.pts[i], pg.pts[(i+1)%n]})
	}
	return edges
}

// Contour converts the polygon to a polyclip contour.
func (pg *Polygon) Contour() polyclip.Contour {
	c := make(polyclip.Contour, len(pg.pts))
	for i, p := range pg.pts {
		c[i] = polyclip.Point{X: p.X(), Y: p.Y()}
	}
	return c
}

// Bounds returns the bounding box of the vertices.
func (pg *Polygon) Bounds() polyclip.Rectangle {
	return pg.Contour().BoundingBox()
}

// Contains is true if p is inside a closed polygon. Open polylines contain
// nothing.
func (pg *Polygon) Contains(p dualvis.Pair) bool {
	if !pg.closed || len(pg.pts) < 3 {
		return false
	}
	return pg.Contour().Contains(polyclip.Point{X: p.X(), Y: p.Y()})
}

// Union merges closed polygons. Open polylines are passed through unchanged.
func Union(polys []*Polygon) []*Polygon {
	var acc polyclip.Polygon
	var result []*Polygon
	for _, pg := range polys {
		if !pg.closed {
			result = append(result, pg)
			continue
		}
		if acc == nil {
			acc = polyclip.Polygon{pg.Contour()}
			continue
		}
		acc = acc.Construct(polyclip.UNION, polyclip.Polygon{pg.Contour()})
	}
	for _, c := range acc {
		pg := NullPolygon()
		for _, p := range c {
			pg.Knot(dualvis.P(p.X, p.Y))
		}
		pg.Cycle()
		if pg.Area() < 0 {
			pg.reverse()
		}
		result = append(result, pg)
	}
	L().Debugf("union of %d polygons yields %d", len(polys), len(result))
	return result
}

func (pg *Polygon) reverse() {
	for i, j := 0, len(pg.pts)-1; i < j; i, j = i+1, j-1 {
		pg.pts[i], pg.pts[j] = pg.pts[j], pg.pts[i]
	}
}

// SegmentsCross is true if segments p1–p2 and q1–q2 cross properly, i.e. in a
// single point interior to both.
func SegmentsCross(p1, p2, q1, q2 dualvis.Pair) bool {
	d1 := dualvis.Cross(p2-p1, q1-p1)
	d2 := dualvis.Cross(p2-p1, q2-p1)
	d3 := dualvis.Cross(q2-q1, p1-q1)
	d4 := dualvis.Cross(q2-q1, p2-q1)
	eps := dualvis.Epsilon * (p2 - p1).Abs() * (q2 - q1).Abs()
	return ((d1 > eps && d2 < -eps) || (d1 < -eps && d2 > eps)) &&
		((d3 > eps && d4 < -eps) || (d3 < -eps && d4 > eps))
}

// Crossed is true if the segment p–q properly crosses an edge of pg.
func (pg *Polygon) Crossed(p, q dualvis.Pair) bool {
	for _, e := range pg.Edges() {
		if SegmentsCross(p, q, e[0], e[1]) {
			return true
		}
	}
	return false
}

// AsString returns a polygon as a (debugging) string.
func AsString(pg *Polygon) string {
	var b strings.Builder
	for i, p := range pg.pts {
		if i > 0 {
			b.WriteString(" -- ")
		}
		fmt.Fprintf(&b, "(%.4g,%.4g)", p.X(), p.Y())
	}
	if pg.closed {
		b.WriteString(" -- cycle")
	}
	return b.String()
}
