package engine

import (
	"bytes"
	"context"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/tangent"
	"github.com/npillmayer/dualvis/visgraph"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func circle(c dualvis.Pair, r float64) Boundary {
	pts := make([]dualvis.Pair, 8)
	for i := range pts {
		pts[i] = c + dualvis.Dir(2*math.Pi*float64(i)/8).Scaled(r)
	}
	return Boundary{Points: pts, Closed: true}
}

func twoCircles() Scene {
	return scaledCircles(1)
}

func scaledCircles(s float64) Scene {
	return Scene{
		Obstacles:   []Boundary{circle(dualvis.P(-4*s, 0), 2*s), circle(dualvis.P(4*s, 0), 2*s)},
		Source:      dualvis.P(-10*s, 0),
		Destination: dualvis.P(10*s, 0),
	}
}

func TestConfigSet(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Set("angle-tolerance", 0.02))
	assert.Equal(t, 0.02, cfg.AngleTolerance)
	require.NoError(t, cfg.Set("intersectionTolerance", 1e-7))
	assert.Equal(t, 1e-7, cfg.IntersectionTolerance)
	require.NoError(t, cfg.Set("sampleStepForDisplay", 0.1))
	assert.Equal(t, 0.1, cfg.SampleStep)
	assert.ErrorIs(t, cfg.Set("colour", 1), dualvis.ErrUnknownSetting)
	assert.ErrorIs(t, cfg.Set("tension", 0.5), dualvis.ErrInvalidSetting)
	assert.Equal(t, 1.0, cfg.Tension, "failed Set leaves config unchanged")
	assert.ErrorIs(t, cfg.Set("angle-tolerance", 0), dualvis.ErrInvalidSetting)
	assert.Contains(t, Settings(), "occlusion-margin")
}

func TestSceneFile(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	input := `
config:
  angle-tolerance: 0.02
source: [-10, 0]
destination: [10, 0.5]
obstacles:
  - closed: true
    points: [[3, 0], [0, 3], [-3, 0], [0, -3]]
  - points: [[5, -3], [5.3, -1], [5, 1], [5.3, 3]]
`
	scene, cfg, err := LoadScene(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 0.02, cfg.AngleTolerance)
	assert.Equal(t, DefaultConfig().IntersectionTolerance, cfg.IntersectionTolerance, "defaults are kept")
	assert.Equal(t, dualvis.P(10, 0.5), scene.Destination)
	require.Len(t, scene.Obstacles, 2)
	assert.True(t, scene.Obstacles[0].Closed)
	assert.False(t, scene.Obstacles[1].Closed)
	assert.Equal(t, dualvis.P(0, 3), scene.Obstacles[0].Points[1])
	//
	var buf bytes.Buffer
	require.NoError(t, WriteScene(&buf, scene, cfg))
	scene2, cfg2, err := LoadScene(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(scene, scene2); diff != "" {
		t.Errorf("scene changed after writing and reading (-want +got):\n%s", diff)
	}
	assert.Equal(t, cfg, cfg2)
	//
	_, _, err = LoadScene(strings.NewReader("config:\n  tension: 0.1\n"))
	assert.ErrorIs(t, err, dualvis.ErrInvalidSetting)
}

func TestScenePlacement(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	input := `
source: [-10, 0]
destination: [10, 0]
obstacles:
  - closed: true
    points: &diamond [[1, 0], [0, 1], [-1, 0], [0, -1]]
    place: { shift: [-4, 0] }
  - closed: true
    points: *diamond
    place: { scale: 2, rotate: 90, shift: [4, 0] }
`
	scene, _, err := LoadScene(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, scene.Obstacles, 2)
	assert.True(t, scene.Obstacles[0].Points[0].Equal(dualvis.P(-3, 0)), "got %v", scene.Obstacles[0].Points[0])
	want := []dualvis.Pair{dualvis.P(4, 2), dualvis.P(2, 0), dualvis.P(4, -2), dualvis.P(6, 0)}
	for i, p := range scene.Obstacles[1].Points {
		assert.True(t, p.Equal(want[i]), "point #%d is %v, want %v", i, p, want[i])
	}
	_, _, err = LoadScene(strings.NewReader("obstacles:\n  - points: [[0, 0], [1, 0]]\n    place: { scale: -1 }\n"))
	assert.ErrorIs(t, err, dualvis.ErrDegenerateInput)
}

func TestComputeTwoCircles(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	r, err := Compute(context.Background(), twoCircles(), DefaultConfig())
	require.NoError(t, err)
	direct := 0
	for _, c := range r.Tangents {
		if c.Provenance == tangent.Direct {
			direct++
		}
	}
	assert.Equal(t, 2, direct, "outer tangents")
	// tangents 2·√32 from the query points, 8 between the circles,
	// two arcs of 2·(π/2 − acos(1/3))
	expected := 2*math.Sqrt(32) + 8 + 4*(math.Pi/2-math.Acos(1.0/3))
	assert.InDelta(t, expected, r.Path.Length, 0.05)
	for i, s := range r.Path.Steps {
		want := visgraph.Tangent
		if i%2 == 1 {
			want = visgraph.Arc
		}
		assert.Equal(t, want, r.Graph.Edges[s.Edge].Kind, "step %d", i)
	}
	for _, p := range r.PathPoints {
		for _, o := range r.Obstacles {
			assert.False(t, o.Contains(p), "path point %v inside obstacle #%d", p, o.Index)
		}
	}
	require.Len(t, r.Curves, 2)
	assert.NotEmpty(t, r.Curves[0])
	assert.False(t, math.IsNaN(r.PolygonalLength))
	assert.InDelta(t, r.Path.Length, r.PolygonalLength, 0.5)
	report := r.Report()
	tracer().Infof("\n%s", report)
	assert.Contains(t, report, "path length")
	assert.Contains(t, report, "polygonal length")
}

func TestComputeAtScale(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	unit := 2*math.Sqrt(32) + 8 + 4*(math.Pi/2-math.Acos(1.0/3))
	for _, s := range []float64{0.5, 2, 5, 10, 25, 100} {
		r, err := Compute(context.Background(), scaledCircles(s), DefaultConfig())
		require.NoError(t, err, "scale %g", s)
		assert.InEpsilon(t, s*unit, r.Path.Length, 0.005, "scale %g", s)
		assert.Len(t, r.Path.Steps, 5, "scale %g", s)
	}
}

func TestComputeWithoutObstacles(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	scene := Scene{Source: dualvis.P(-1, -1), Destination: dualvis.P(2, 3)}
	r, err := Compute(context.Background(), scene, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 5.0, r.Path.Length, 1e-12)
	assert.Len(t, r.Path.Steps, 1)
	assert.InDelta(t, 5.0, r.PolygonalLength, 1e-12)
}

func TestComputeErrors(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	scene := twoCircles()
	scene.Obstacles = append(scene.Obstacles, Boundary{
		Points: []dualvis.Pair{dualvis.P(0, 5), dualvis.P(1, 6)},
	})
	_, err := Compute(context.Background(), scene, DefaultConfig())
	assert.ErrorIs(t, err, dualvis.ErrDegenerateInput)
	scene = twoCircles()
	scene.Source = dualvis.P(-4, 0.5)
	_, err = Compute(context.Background(), scene, DefaultConfig())
	assert.ErrorIs(t, err, dualvis.ErrInvalidQueryPoint)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Compute(ctx, twoCircles(), DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngineKeepsPreviousResult(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, e.Result())
	r1, err := e.Load(context.Background(), twoCircles())
	require.NoError(t, err)
	assert.Same(t, r1, e.Result())
	spline := e.splines[0]
	//
	_, err = e.RecomputeWithNewSourceDest(context.Background(), dualvis.P(4, 0), dualvis.P(10, 0))
	assert.ErrorIs(t, err, dualvis.ErrInvalidQueryPoint)
	assert.Same(t, r1, e.Result(), "failed recompute keeps the previous result")
	_, err = e.RecomputeWithNewObstacles(context.Background(), []Boundary{
		{Points: []dualvis.Pair{dualvis.P(0, 0), dualvis.P(1, 1)}, Closed: true},
	})
	assert.ErrorIs(t, err, dualvis.ErrDegenerateInput)
	assert.Same(t, r1, e.Result())
	//
	r2, err := e.RecomputeWithNewSourceDest(context.Background(), dualvis.P(-10, 1), dualvis.P(10, -1))
	require.NoError(t, err)
	assert.Same(t, r2, e.Result())
	assert.Same(t, spline, e.splines[0], "fitted curves are reused")
	//
	require.NoError(t, e.SetTolerance("tension", 1.2))
	_, err = e.Recompute(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, spline, e.splines[0], "tension change refits")
	assert.ErrorIs(t, e.SetTolerance("nonsense", 1), dualvis.ErrUnknownSetting)
}

func TestEngineCancelled(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Load(ctx, twoCircles())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, e.Result())
}

func TestEngineConcurrentCommands(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	_, err = e.Load(context.Background(), twoCircles())
	require.NoError(t, err)
	three := []Boundary{circle(dualvis.P(-4, 0), 2), circle(dualvis.P(4, 0), 2), circle(dualvis.P(0, 7), 2)}
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 4; i++ {
			obstacles := twoCircles().Obstacles
			if i%2 == 0 {
				obstacles = three
			}
			_, err := e.RecomputeWithNewObstacles(context.Background(), obstacles)
			if err != nil {
				assert.ErrorIs(t, err, context.Canceled)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 4; i++ {
			_, err := e.RecomputeWithNewSourceDest(context.Background(),
				dualvis.P(-10, float64(i)/10), dualvis.P(10, 0))
			if err != nil {
				assert.ErrorIs(t, err, context.Canceled)
			}
		}
	}()
	wg.Wait()
	// the committed scene and its fitted curves belong together
	e.mu.Lock()
	require.Len(t, e.splines, len(e.scene.Obstacles))
	for i, b := range e.scene.Obstacles {
		assert.InDelta(t, 0, dualvis.Dist(b.Points[0], e.splines[i].Eval(0)), 1e-9)
	}
	n := len(e.scene.Obstacles)
	e.mu.Unlock()
	require.NoError(t, e.SetTolerance("tension", 1.1))
	r, err := e.Recompute(context.Background())
	require.NoError(t, err)
	assert.Len(t, r.Obstacles, n)
}
