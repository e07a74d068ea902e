package polygon

import (
	"math"
	"testing"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pg := NullPolygon().Knot(dualvis.P(0, 0)).Knot(dualvis.P(1, 3)).Knot(dualvis.P(3, 0)).Cycle()
	L().Infof("pg = %s", AsString(pg))
	if pg.N() != 3 {
		t.Fail()
	}
	assert.Equal(t, "(0,0) -- (1,3) -- (3,0) -- cycle", AsString(pg))
	assert.InDelta(t, -4.5, pg.Area(), 1e-12, "clockwise")
	assert.Len(t, pg.Edges(), 3)
	assert.Len(t, pg.End().Edges(), 2)
	assert.Equal(t, 0.0, pg.Area())
}

func TestBox(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	box := Box(dualvis.P(0, 5), dualvis.P(4, 1))
	L().Infof("box = %s", AsString(box))
	if box.N() != 4 {
		t.Fail()
	}
	assert.InDelta(t, 16.0, box.Area(), 1e-12)
	assert.True(t, box.Contains(dualvis.P(2, 3)))
	assert.False(t, box.Contains(dualvis.P(5, 3)))
	r := box.Bounds()
	assert.Equal(t, 1.0, r.Min.Y)
	assert.Equal(t, 4.0, r.Max.X)
}

func TestFromCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := make([]dualvis.Pair, 8)
	for i := range pts {
		pts[i] = dualvis.Dir(2 * math.Pi * float64(i) / 8).Scaled(2)
	}
	s, err := curve.Fit(pts, true, 1)
	require.NoError(t, err)
	pg := FromCurve(s, 4)
	assert.Equal(t, 32, pg.N())
	assert.True(t, pg.IsCycle())
	assert.InDelta(t, 4*math.Pi, pg.Area(), 0.2)
	assert.True(t, pg.Contains(dualvis.Origin))
	assert.False(t, pg.Contains(dualvis.P(2.1, 0)))
	assert.True(t, pg.Crossed(dualvis.P(-3, 0.3), dualvis.P(3, 0.3)))
	assert.False(t, pg.Crossed(dualvis.P(-3, 3), dualvis.P(3, 3)))
}

func TestSegmentsCross(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	assert.True(t, SegmentsCross(dualvis.P(0, 0), dualvis.P(2, 2), dualvis.P(0, 2), dualvis.P(2, 0)))
	assert.False(t, SegmentsCross(dualvis.P(0, 0), dualvis.P(1, 1), dualvis.P(1, 1), dualvis.P(2, 0)),
		"touching at an endpoint is no crossing")
	assert.False(t, SegmentsCross(dualvis.P(0, 0), dualvis.P(2, 0), dualvis.P(0, 1), dualvis.P(2, 1)))
}

func TestUnion(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	a := Box(dualvis.P(0, 0), dualvis.P(2, 2))
	b := Box(dualvis.P(1, 1), dualvis.P(3, 3))
	c := Box(dualvis.P(10, 10), dualvis.P(11, 11))
	open := NullPolygon().Knot(dualvis.P(5, 5)).Knot(dualvis.P(6, 6)).End()
	u := Union([]*Polygon{a, b, c, open})
	require.Len(t, u, 3)
	var area float64
	for _, pg := range u {
		area += pg.Area()
	}
	assert.InDelta(t, 4+4-1+1, area, 1e-9)
}
