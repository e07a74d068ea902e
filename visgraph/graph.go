/*
Package visgraph assembles the smooth visibility graph of a scene and finds
shortest paths in it.

Vertices are the source, the destination, the ends of open obstacles and
every tangency point of a surviving common tangent. Edges are straight
tangent segments, weighted by length, and arcs along obstacle boundaries
between neighbouring vertices, weighted by arc length. The graph is rebuilt
from scratch for every query and never patched.

For comparison there is also the classic polygonal visibility graph over
flattened obstacle outlines.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package visgraph

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/dualvis/obstacle"
	"github.com/npillmayer/dualvis/tangent"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/sync/errgroup"
)

// tracer writes to trace with key 'dualvis.graph'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.graph")
}

// VertexKind classifies vertices.
type VertexKind int

// Kinds of vertices
const (
	Source VertexKind = iota
	Destination
	Tangency
	Endpoint // end of an open obstacle
)

func (k VertexKind) String() string {
	switch k {
	case Source:
		return "source"
	case Destination:
		return "destination"
	case Tangency:
		return "tangency"
	case Endpoint:
		return "endpoint"
	}
	return fmt.Sprintf("vertex-kind(%d)", int(k))
}

// EdgeKind classifies edges.
type EdgeKind int

// Kinds of edges
const (
	Tangent EdgeKind = iota // straight segment
	Arc                     // along an obstacle's boundary
)

func (k EdgeKind) String() string {
	switch k {
	case Tangent:
		return "tangent"
	case Arc:
		return "arc"
	}
	return fmt.Sprintf("edge-kind(%d)", int(k))
}

// Vertex is a vertex of the visibility graph. Vertices on an obstacle carry
// its index and the curve parameter; others have Obstacle == NoObstacle.
type Vertex struct {
	P        dualvis.Pair
	Kind     VertexKind
	Obstacle int
	T        float64
}

// Edge is an undirected edge between vertices From and To. Arc edges run
// forward in parameter from T0 at From to T1 at To; on closed obstacles
// T1 may exceed the domain's end, meaning the arc wraps around.
type Edge struct {
	From, To int
	Kind     EdgeKind
	Weight   float64
	Obstacle int
	T0, T1   float64
}

// Graph is a visibility graph. Adj lists the indices of the edges incident
// to each vertex.
type Graph struct {
	Vertices    []Vertex
	Edges       []Edge
	Adj         [][]int
	Source      int
	Destination int
	curves      []*curve.Spline // for arc edges, by obstacle index
}

// Options for building a graph.
type Options struct {
	Tangent        tangent.Options
	MergeTolerance float64 // tangency points closer than this are unified
}

// DefaultOptions returns the options used by the engine if not configured
// otherwise.
func DefaultOptions() Options {
	return Options{
		Tangent:        tangent.DefaultOptions(),
		MergeTolerance: 1e-6,
	}
}

func newGraph(curves []*curve.Spline) *Graph {
	return &Graph{curves: curves}
}

func (g *Graph) addVertex(v Vertex) int {
	g.Vertices = append(g.Vertices, v)
	g.Adj = append(g.Adj, nil)
	return len(g.Vertices) - 1
}

func (g *Graph) addEdge(e Edge) int {
	id := len(g.Edges)
	g.Edges = append(g.Edges, e)
	g.Adj[e.From] = append(g.Adj[e.From], id)
	if e.To != e.From {
		g.Adj[e.To] = append(g.Adj[e.To], id)
	}
	return id
}

// Other returns the vertex at the other end of edge e.
func (g *Graph) Other(e int, v int) int {
	if g.Edges[e].From == v {
		return g.Edges[e].To
	}
	return g.Edges[e].From
}

// Curve returns the curve of obstacle i, if known to the graph.
func (g *Graph) Curve(i int) *curve.Spline {
	if i < 0 || i >= len(g.curves) {
		return nil
	}
	return g.curves[i]
}

// builder holds the state of a single Build.
type builder struct {
	g         *Graph
	obstacles []*obstacle.Obstacle
	opts      Options
	poles     []tangent.End
	poleVx    []int
}

// Build assembles the smooth visibility graph from obstacles, the query
// points src and dst, and the common tangents of the obstacles which have
// survived filtering. Tangents from the poles (source, destination and the
// ends of open obstacles) are computed and filtered here.
//
// If src or dst lies inside a closed obstacle, Build fails with
// dualvis.ErrInvalidQueryPoint.
func Build(ctx context.Context, obstacles []*obstacle.Obstacle, src, dst dualvis.Pair,
	survivors []tangent.Candidate, opts Options) (*Graph, error) {
	//
	for _, o := range obstacles {
		if o.Contains(src) {
			return nil, fmt.Errorf("%w: source %v inside obstacle #%d", dualvis.ErrInvalidQueryPoint, src, o.Index)
		}
		if o.Contains(dst) {
			return nil, fmt.Errorf("%w: destination %v inside obstacle #%d", dualvis.ErrInvalidQueryPoint, dst, o.Index)
		}
	}
	if opts.MergeTolerance <= 0 {
		opts.MergeTolerance = DefaultOptions().MergeTolerance
	}
	curves := make([]*curve.Spline, len(obstacles))
	for i, o := range obstacles {
		curves[i] = o.Curve
	}
	b := &builder{g: newGraph(curves), obstacles: obstacles, opts: opts}
	b.g.Source = b.addPole(tangent.PoleEnd(0, src, tangent.NoObstacle, 0), Source)
	b.g.Destination = b.addPole(tangent.PoleEnd(1, dst, tangent.NoObstacle, 0), Destination)
	for _, o := range obstacles {
		for _, t := range o.Endpoints() {
			e := tangent.PoleEnd(len(b.poles), o.Curve.Eval(t), o.Index, t)
			b.addPole(e, Endpoint)
		}
	}
	if err := b.poleToPole(ctx); err != nil {
		return nil, err
	}
	poleTangents, err := b.poleTangents(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range append(poleTangents, survivors...) {
		b.tangentEdge(c)
	}
	b.arcs()
	tracer().Infof("visibility graph: %d vertices, %d edges", len(b.g.Vertices), len(b.g.Edges))
	return b.g, nil
}

func (b *builder) addPole(e tangent.End, kind VertexKind) int {
	v := b.g.addVertex(Vertex{P: e.P, Kind: kind, Obstacle: e.Obstacle, T: e.T})
	b.poles = append(b.poles, e)
	b.poleVx = append(b.poleVx, v)
	return v
}

// poleToPole adds straight edges between mutually visible poles.
func (b *builder) poleToPole(ctx context.Context) error {
	for i := range b.poles {
		for j := i + 1; j < len(b.poles); j++ {
			visible, err := tangent.Visible(ctx, b.poles[i], b.poles[j], b.obstacles, b.opts.Tangent)
			if err != nil {
				return err
			}
			if visible {
				b.tangentEdge(tangent.BetweenPoles(b.poles[i], b.poles[j]))
			}
		}
	}
	return nil
}

// poleTangents computes the filtered tangents from every pole to every
// obstacle. Results are collected by index, keeping the order deterministic.
func (b *builder) poleTangents(ctx context.Context) ([]tangent.Candidate, error) {
	n := len(b.obstacles)
	raw := make([][]tangent.Candidate, len(b.poles)*n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	if n == 0 {
		return nil, nil
	}
	emb := b.obstacles[0].Dual.Embedding() // pencils must share the obstacles' embedding
	for i, pole := range b.poles {
		// per-iteration copy (go1.22 loopvar semantics under go 1.21)
		i, pole := i, pole
		pencil := dual.OfPoint(pole.P, emb, b.opts.Tangent.Dual)
		for j, o := range b.obstacles {
			// per-iteration copy (go1.22 loopvar semantics under go 1.21)
			j, o := j, o
			g.Go(func() error {
				cands, err := tangent.FromPole(gctx, pencil, pole, o, b.opts.Tangent)
				raw[i*n+j] = cands
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var cands []tangent.Candidate
	for _, c := range raw {
		cands = append(cands, c...)
	}
	cands = tangent.RejectImpostors(cands, b.obstacles, b.opts.Tangent.AngleTolerance)
	return tangent.RejectOccluded(ctx, cands, b.obstacles, b.opts.Tangent)
}

// vertex returns the vertex for an end of a tangent, merging tangency
// points on the same obstacle.
func (b *builder) vertex(e tangent.End) int {
	if e.IsPole() {
		return b.poleVx[e.Pole]
	}
	for i, v := range b.g.Vertices {
		if v.Obstacle == e.Obstacle && dualvis.Dist(v.P, e.P) < b.opts.MergeTolerance {
			return i
		}
	}
	t := curve.Wrap(b.obstacles[e.Obstacle].Curve, e.T)
	return b.g.addVertex(Vertex{P: e.P, Kind: Tangency, Obstacle: e.Obstacle, T: t})
}

func (b *builder) tangentEdge(c tangent.Candidate) {
	from, to := b.vertex(c.From), b.vertex(c.To)
	if from == to {
		return
	}
	b.g.addEdge(Edge{
		From:     from,
		To:       to,
		Kind:     Tangent,
		Weight:   dualvis.Dist(b.g.Vertices[from].P, b.g.Vertices[to].P),
		Obstacle: tangent.NoObstacle,
	})
}

// arcs connects neighbouring vertices on every obstacle.
func (b *builder) arcs() {
	on := make([][]int, len(b.obstacles))
	for i, v := range b.g.Vertices {
		if v.Obstacle != tangent.NoObstacle {
			on[v.Obstacle] = append(on[v.Obstacle], i)
		}
	}
	for k, vs := range on {
		c := b.obstacles[k].Curve
		sort.SliceStable(vs, func(i, j int) bool {
			return b.g.Vertices[vs[i]].T < b.g.Vertices[vs[j]].T
		})
		m := len(vs) - 1
		if c.IsClosed() {
			if len(vs) <= 1 {
				continue
			}
			m = len(vs)
		}
		for i := 0; i < m; i++ {
			from, to := vs[i], vs[(i+1)%len(vs)]
			t0, t1 := b.g.Vertices[from].T, b.g.Vertices[to].T
			if t1 < t0 {
				t1 += curve.Period(c)
			}
			b.g.addEdge(Edge{
				From:     from,
				To:       to,
				Kind:     Arc,
				Weight:   c.ArcLength(t0, t1),
				Obstacle: k,
				T0:       t0,
				T1:       t1,
			})
		}
		tracer().Debugf("obstacle #%d: %d vertices, %d arcs", k, len(vs), max(m, 0))
	}
}
