package visgraph

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/npillmayer/dualvis"
)

// Step is an edge of a path. Reverse is set if the edge is traversed from
// To to From.
type Step struct {
	Edge    int
	Reverse bool
}

// Path is a path through a graph.
type Path struct {
	Steps    []Step
	Vertices []int
	Length   float64
}

type queued struct {
	v    int
	dist float64
}

// ShortestPath finds a shortest path from vertex from to vertex to with
// Dijkstra's algorithm. Edge weights must not be negative. If to is not
// reachable, ShortestPath fails with dualvis.ErrNoPath.
func ShortestPath(g *Graph, from, to int) (Path, error) {
	n := len(g.Vertices)
	if from < 0 || from >= n || to < 0 || to >= n {
		return Path{}, fmt.Errorf("%w: vertex out of range", dualvis.ErrNoPath)
	}
	dist := make([]float64, n)
	via := make([]int, n) // edge leading to a vertex
	for i := range dist {
		dist[i] = math.Inf(1)
		via[i] = -1
	}
	done := make([]bool, n)
	dist[from] = 0
	heap := binaryheap.NewWith(func(a, b interface{}) int {
		da, db := a.(queued).dist, b.(queued).dist
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})
	heap.Push(queued{from, 0})
	for !heap.Empty() {
		item, _ := heap.Pop()
		u := item.(queued).v
		if done[u] {
			continue
		}
		done[u] = true
		if u == to {
			break
		}
		for _, e := range g.Adj[u] {
			v := g.Other(e, u)
			if d := dist[u] + g.Edges[e].Weight; d < dist[v] {
				dist[v] = d
				via[v] = e
				heap.Push(queued{v, d})
			}
		}
	}
	if math.IsInf(dist[to], 1) {
		return Path{}, fmt.Errorf("%w: from vertex %d to vertex %d", dualvis.ErrNoPath, from, to)
	}
	var steps []Step
	vertices := []int{to}
	for v := to; v != from; {
		e := via[v]
		u := g.Other(e, v)
		steps = append(steps, Step{Edge: e, Reverse: g.Edges[e].To == u && g.Edges[e].From == v})
		vertices = append(vertices, u)
		v = u
	}
	reverseSteps(steps)
	reverseInts(vertices)
	tracer().Debugf("shortest path with %d steps, length %.6g", len(steps), dist[to])
	return Path{Steps: steps, Vertices: vertices, Length: dist[to]}, nil
}

func reverseSteps(s []Step) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Polyline samples a path for display. Arcs are sampled at parameter
// distance step.
func (g *Graph) Polyline(p Path, step float64) []dualvis.Pair {
	if len(p.Vertices) == 0 {
		return nil
	}
	pts := []dualvis.Pair{g.Vertices[p.Vertices[0]].P}
	for _, s := range p.Steps {
		e := g.Edges[s.Edge]
		if e.Kind != Arc || g.Curve(e.Obstacle) == nil {
			end := e.To
			if s.Reverse {
				end = e.From
			}
			pts = append(pts, g.Vertices[end].P)
			continue
		}
		arc := g.sampleArc(e, step)
		if s.Reverse {
			for i := len(arc) - 2; i >= 0; i-- {
				pts = append(pts, arc[i])
			}
		} else {
			pts = append(pts, arc[1:]...)
		}
	}
	return pts
}

// sampleArc returns points along an arc edge, from T0 to T1.
func (g *Graph) sampleArc(e Edge, step float64) []dualvis.Pair {
	c := g.Curve(e.Obstacle)
	if step <= 0 {
		step = 0.05
	}
	n := max(1, int(math.Ceil((e.T1-e.T0)/step)))
	pts := make([]dualvis.Pair, 0, n+1)
	for k := 0; k <= n; k++ {
		pts = append(pts, c.Eval(e.T0+(e.T1-e.T0)*float64(k)/float64(n)))
	}
	return pts
}
