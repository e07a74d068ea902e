package obstacle

import (
	"testing"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosedObstacle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []dualvis.Pair{dualvis.P(2, 0), dualvis.P(0, 2), dualvis.P(-2, 0), dualvis.P(0, -2)}
	s, err := curve.Fit(pts, true, 1)
	require.NoError(t, err)
	o, err := New(3, s, dual.EmbeddingFor(pts...), dual.DefaultOptions(), 8)
	require.NoError(t, err)
	assert.Equal(t, 3, o.Index)
	assert.True(t, o.IsClosed())
	assert.True(t, o.Contains(dualvis.P(0.5, 0.5)))
	assert.False(t, o.Contains(dualvis.P(3, 0)))
	assert.Nil(t, o.Endpoints())
	assert.True(t, o.Reflected.IsReflected())
	assert.False(t, o.Dual.IsReflected())
}

func TestOpenObstacle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	pts := []dualvis.Pair{dualvis.P(0, 0), dualvis.P(1, 1), dualvis.P(2, 0), dualvis.P(3, 1)}
	s, err := curve.Fit(pts, false, 1)
	require.NoError(t, err)
	o, err := New(0, s, dual.EmbeddingFor(pts...), dual.DefaultOptions(), 8)
	require.NoError(t, err)
	assert.False(t, o.IsClosed())
	assert.False(t, o.Contains(dualvis.P(1, 0.5)), "open obstacles have no inside")
	ends := o.Endpoints()
	require.Len(t, ends, 2)
	assert.InDelta(t, 0, dualvis.Dist(pts[0], s.Eval(ends[0])), 1e-9)
	assert.InDelta(t, 0, dualvis.Dist(pts[3], s.Eval(ends[1])), 1e-9)
}

func TestContainsFollowsCurve(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	bean := []dualvis.Pair{
		dualvis.P(0, -3), dualvis.P(3, -2), dualvis.P(4, 1), dualvis.P(2, 3),
		dualvis.P(0, 1.5), dualvis.P(-2, 3), dualvis.P(-4, 1), dualvis.P(-3, -2),
	}
	s, err := curve.Fit(bean, true, 1)
	require.NoError(t, err)
	o, err := New(0, s, dual.EmbeddingFor(bean...), dual.DefaultOptions(), 2)
	require.NoError(t, err)
	const delta = 0.02
	disagree := 0
	lo, hi := s.Domain()
	for k := 0; k < 200; k++ {
		t0 := lo + (hi-lo)*(float64(k)+0.5)/200
		q := s.Eval(t0)
		n := s.Tangent(t0).Unit().RightNormal() // outward
		out, in := q+n.Scaled(delta), q-n.Scaled(delta)
		assert.False(t, o.Contains(out), "%v outside the curve", out)
		assert.True(t, o.Contains(in), "%v inside the curve", in)
		if o.Outline.Contains(out) || !o.Outline.Contains(in) {
			disagree++
		}
	}
	assert.Greater(t, disagree, 0, "a coarse outline deviates from the curve")
	assert.True(t, o.Contains(dualvis.P(0, 0)))
	assert.False(t, o.Contains(dualvis.P(0, 2.5)), "inside the dent")
}
