package visgraph

import (
	"bytes"
	"context"
	"math"
	"testing"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/dualvis/obstacle"
	"github.com/npillmayer/dualvis/polygon"
	"github.com/npillmayer/dualvis/tangent"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type boundary struct {
	pts    []dualvis.Pair
	closed bool
}

func circle(c dualvis.Pair, r float64) boundary {
	pts := make([]dualvis.Pair, 8)
	for i := range pts {
		pts[i] = c + dualvis.Dir(2*math.Pi*float64(i)/8).Scaled(r)
	}
	return boundary{pts, true}
}

func makeScene(t *testing.T, src, dst dualvis.Pair, bounds ...boundary) []*obstacle.Obstacle {
	all := []dualvis.Pair{src, dst}
	for _, b := range bounds {
		all = append(all, b.pts...)
	}
	emb := dual.EmbeddingFor(all...)
	obstacles := make([]*obstacle.Obstacle, len(bounds))
	for i, b := range bounds {
		s, err := curve.Fit(b.pts, b.closed, 1)
		require.NoError(t, err)
		obstacles[i], err = obstacle.New(i, s, emb, dual.DefaultOptions(), 16)
		require.NoError(t, err)
	}
	return obstacles
}

func survivors(t *testing.T, obstacles []*obstacle.Obstacle, opts tangent.Options) []tangent.Candidate {
	var raw []tangent.Candidate
	for i, a := range obstacles {
		for _, b := range obstacles[i:] {
			cands, err := tangent.Common(context.Background(), a, b, opts)
			require.NoError(t, err)
			raw = append(raw, cands...)
		}
	}
	cands := tangent.RejectImpostors(raw, obstacles, opts.AngleTolerance)
	cands, err := tangent.RejectOccluded(context.Background(), cands, obstacles, opts)
	require.NoError(t, err)
	return cands
}

func TestCircleDetour(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	src, dst := dualvis.P(-10, 0), dualvis.P(10, 0)
	obstacles := makeScene(t, src, dst, circle(dualvis.Origin, 3))
	opts := DefaultOptions()
	g, err := Build(context.Background(), obstacles, src, dst, survivors(t, obstacles, opts.Tangent), opts)
	require.NoError(t, err)
	assert.Len(t, g.Vertices, 6, "source, destination and 4 tangency points")
	path, err := ShortestPath(g, g.Source, g.Destination)
	require.NoError(t, err)
	// 2·√91 for the tangents, 3·(π − 2·acos(0.3)) for the arc
	expected := 2*math.Sqrt(91) + 3*(math.Pi-2*math.Acos(0.3))
	assert.InDelta(t, expected, path.Length, 0.05)
	require.Len(t, path.Steps, 3)
	kinds := []EdgeKind{}
	for _, s := range path.Steps {
		kinds = append(kinds, g.Edges[s.Edge].Kind)
	}
	assert.Equal(t, []EdgeKind{Tangent, Arc, Tangent}, kinds)
	pts := g.Polyline(path, 0.05)
	require.NotEmpty(t, pts)
	assert.Equal(t, src, pts[0])
	assert.Equal(t, dst, pts[len(pts)-1])
	var l float64
	for i := 1; i < len(pts); i++ {
		l += dualvis.Dist(pts[i-1], pts[i])
	}
	assert.InDelta(t, path.Length, l, 0.01, "polyline follows the path")
}

func TestInvalidQueryPoint(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	src, dst := dualvis.P(0.5, 0), dualvis.P(10, 0)
	obstacles := makeScene(t, src, dst, circle(dualvis.Origin, 3))
	_, err := Build(context.Background(), obstacles, src, dst, nil, DefaultOptions())
	assert.ErrorIs(t, err, dualvis.ErrInvalidQueryPoint)
	_, err = Build(context.Background(), obstacles, dst, src, nil, DefaultOptions())
	assert.ErrorIs(t, err, dualvis.ErrInvalidQueryPoint)
}

func TestConnectivity(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	src, dst := dualvis.P(-12, 0.5), dualvis.P(12, -0.5)
	obstacles := makeScene(t, src, dst,
		circle(dualvis.P(-5, 0), 2), circle(dualvis.P(0, 1), 1.5), circle(dualvis.P(5, -1), 2))
	opts := DefaultOptions()
	cands := survivors(t, obstacles, opts.Tangent)
	assert.NotEmpty(t, cands)
	g, err := Build(context.Background(), obstacles, src, dst, cands, opts)
	require.NoError(t, err)
	path, err := ShortestPath(g, g.Source, g.Destination)
	require.NoError(t, err)
	assert.Greater(t, path.Length, dualvis.Dist(src, dst))
	assert.Less(t, path.Length, 30.0)
	for _, e := range g.Edges {
		assert.GreaterOrEqual(t, e.Weight, 0.0)
	}
}

func TestOpenObstacle(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	src, dst := dualvis.P(-5, 0), dualvis.P(5, 0)
	wall := boundary{[]dualvis.Pair{
		dualvis.P(0, -3), dualvis.P(0.3, -1), dualvis.P(0, 1), dualvis.P(0.3, 3),
	}, false}
	obstacles := makeScene(t, src, dst, wall)
	g, err := Build(context.Background(), obstacles, src, dst, nil, DefaultOptions())
	require.NoError(t, err)
	endpoints := 0
	for _, v := range g.Vertices {
		if v.Kind == Endpoint {
			endpoints++
			assert.Equal(t, 0, v.Obstacle)
		}
	}
	assert.Equal(t, 2, endpoints)
	path, err := ShortestPath(g, g.Source, g.Destination)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Sqrt(34), path.Length, 0.1, "around an end of the wall")
}

func TestWriteDump(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	src, dst := dualvis.P(-10, 0), dualvis.P(10, 0)
	obstacles := makeScene(t, src, dst, circle(dualvis.Origin, 3))
	g, err := Build(context.Background(), obstacles, src, dst, nil, DefaultOptions())
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, g.Write(&buf))
	var d Dump
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &d))
	require.Len(t, d.Obstacles, 1)
	assert.True(t, d.Obstacles[0].Closed)
	assert.Len(t, d.Obstacles[0].Knots, 8)
	assert.Len(t, d.Vertices, len(g.Vertices))
	assert.Len(t, d.Edges, len(g.Edges))
	assert.Equal(t, "source", d.Vertices[d.Source].Kind)
}

func TestPolygonal(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	box := polygon.Box(dualvis.P(-1, -1), dualvis.P(1, 1))
	g, err := BuildPolygonal([]*polygon.Polygon{box}, dualvis.P(-3, 0), dualvis.P(3, 0))
	require.NoError(t, err)
	path, err := ShortestPath(g, g.Source, g.Destination)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Sqrt(5)+2, path.Length, 1e-9)
	_, err = BuildPolygonal([]*polygon.Polygon{box}, dualvis.Origin, dualvis.P(3, 0))
	assert.ErrorIs(t, err, dualvis.ErrInvalidQueryPoint)
}
