/*
Package engine runs the complete pipeline from obstacle outlines to a
shortest path: fitting, dualization, common tangents, filtering, graph
assembly and path search.

Compute is a pure function of a scene snapshot and a configuration.
Engine wraps it with the commands of an interactive client, caching fitted
curves across moves of the source and destination, cancelling superseded
computations and keeping the last valid result whenever a computation
fails.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package engine

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/dualvis/obstacle"
	"github.com/npillmayer/dualvis/polygon"
	"github.com/npillmayer/dualvis/tangent"
	"github.com/npillmayer/dualvis/visgraph"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer writes to trace with key 'dualvis.engine'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.engine")
}

// Result is the outcome of a computation, ready for display.
type Result struct {
	Obstacles       []*obstacle.Obstacle
	Curves          [][]dualvis.Pair // display samples per obstacle
	Tangents        []tangent.Candidate
	Graph           *visgraph.Graph
	Path            visgraph.Path
	PathPoints      []dualvis.Pair
	PolygonalLength float64 // NaN if the polygonal graph has no path
}

// Report summarizes a result, comparing the length of the smooth path with
// the length of the path around polygonal approximations of the obstacles.
func (r *Result) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "obstacles:        %d\n", len(r.Obstacles))
	fmt.Fprintf(&b, "common tangents:  %d\n", len(r.Tangents))
	if r.Graph != nil {
		fmt.Fprintf(&b, "visibility graph: %d vertices, %d edges\n", len(r.Graph.Vertices), len(r.Graph.Edges))
	}
	fmt.Fprintf(&b, "path length:      %.6f (%d steps)\n", r.Path.Length, len(r.Path.Steps))
	if math.IsNaN(r.PolygonalLength) {
		b.WriteString("polygonal length: n/a\n")
	} else {
		fmt.Fprintf(&b, "polygonal length: %.6f\n", r.PolygonalLength)
		if r.PolygonalLength > 0 {
			fmt.Fprintf(&b, "ratio:            %.6f\n", r.Path.Length/r.PolygonalLength)
		}
	}
	return b.String()
}

// Compute runs the pipeline on a scene.
func Compute(ctx context.Context, scene Scene, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	splines, err := FitAll(ctx, scene.Obstacles, cfg.Tension)
	if err != nil {
		return nil, err
	}
	return computeWith(ctx, splines, scene.Source, scene.Destination, cfg)
}

// FitAll fits a curve through every boundary, in parallel.
func FitAll(ctx context.Context, boundaries []Boundary, tension float64) ([]*curve.Spline, error) {
	splines := make([]*curve.Spline, len(boundaries))
	g := new(errgroup.Group)
	for i, b := range boundaries {
		// per-iteration copy (go1.22 loopvar semantics under go 1.21)
		i, b := i, b
		g.Go(func() error {
			s, err := curve.Fit(b.Points, b.Closed, tension)
			if err != nil {
				return fmt.Errorf("obstacle #%d: %w", i, err)
			}
			splines[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracer().Errorf("fitting obstacles: %v", err)
		return nil, err
	}
	return splines, ctx.Err()
}

// embeddingFor covers every line meeting a control hull or a query point.
func embeddingFor(splines []*curve.Spline, src, dst dualvis.Pair) dual.Embedding {
	pts := []dualvis.Pair{src, dst}
	for _, s := range splines {
		for i := 0; i < s.N(); i++ {
			b := s.Segment(i)
			pts = append(pts, b.P0, b.P1, b.P2, b.P3)
		}
	}
	return dual.EmbeddingFor(pts...)
}

func computeWith(ctx context.Context, splines []*curve.Spline, src, dst dualvis.Pair, cfg Config) (*Result, error) {
	topts := cfg.tangentOptions()
	emb := embeddingFor(splines, src, dst)
	obstacles := make([]*obstacle.Obstacle, len(splines))
	g := new(errgroup.Group)
	for i, s := range splines {
		// per-iteration copy (go1.22 loopvar semantics under go 1.21)
		i, s := i, s
		g.Go(func() error {
			o, err := obstacle.New(i, s, emb, topts.Dual, cfg.Flatten)
			obstacles[i] = o
			return err
		})
	}
	if err := g.Wait(); err != nil {
		tracer().Errorf("dualizing obstacles: %v", err)
		return nil, err
	}
	tangents, err := commonTangents(ctx, obstacles, topts)
	if err != nil {
		return nil, err
	}
	graph, err := visgraph.Build(ctx, obstacles, src, dst, tangents, cfg.graphOptions())
	if err != nil {
		return nil, err
	}
	path, err := visgraph.ShortestPath(graph, graph.Source, graph.Destination)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &Result{
		Obstacles:       obstacles,
		Curves:          make([][]dualvis.Pair, len(splines)),
		Tangents:        tangents,
		Graph:           graph,
		Path:            path,
		PathPoints:      graph.Polyline(path, cfg.SampleStep),
		PolygonalLength: polygonalLength(splines, src, dst, cfg.PolygonalFlatten),
	}
	for i, s := range splines {
		r.Curves[i] = curve.Sample(s, cfg.SampleStep)
	}
	tracer().P("obstacles", len(obstacles)).Infof("path length %.6g, polygonal %.6g",
		path.Length, r.PolygonalLength)
	return r, nil
}

// commonTangents finds the filtered common tangents of every pair of
// obstacles, including each obstacle with itself.
func commonTangents(ctx context.Context, obstacles []*obstacle.Obstacle, opts tangent.Options) ([]tangent.Candidate, error) {
	type pair struct{ a, b int }
	var pairs []pair
	for i := range obstacles {
		for j := i; j < len(obstacles); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}
	raw := make([][]tangent.Candidate, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for k, p := range pairs {
		// per-iteration copy (go1.22 loopvar semantics under go 1.21)
		k, p := k, p
		g.Go(func() error {
			cands, err := tangent.Common(gctx, obstacles[p.a], obstacles[p.b], opts)
			raw[k] = cands
			return err
		})
	}
	if err := g.Wait(); err != nil {
		tracer().Errorf("common tangents: %v", err)
		return nil, err
	}
	var cands []tangent.Candidate
	for _, c := range raw {
		cands = append(cands, c...)
	}
	n := len(cands)
	cands = tangent.RejectImpostors(cands, obstacles, opts.AngleTolerance)
	m := len(cands)
	cands, err := tangent.RejectOccluded(ctx, cands, obstacles, opts)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("%d raw candidates, %d impostors, %d occluded", n, n-m, m-len(cands))
	return cands, nil
}

// polygonalLength is the length of the shortest path around flattened and
// merged obstacle outlines, or NaN if there is none.
func polygonalLength(splines []*curve.Spline, src, dst dualvis.Pair, flatten int) float64 {
	polys := make([]*polygon.Polygon, len(splines))
	for i, s := range splines {
		polys[i] = polygon.FromCurve(s, flatten)
	}
	g, err := visgraph.BuildPolygonal(polygon.Union(polys), src, dst)
	if err != nil {
		tracer().Infof("no polygonal comparison: %v", err)
		return math.NaN()
	}
	path, err := visgraph.ShortestPath(g, g.Source, g.Destination)
	if err != nil {
		tracer().Infof("no polygonal comparison: %v", err)
		return math.NaN()
	}
	return path.Length
}
