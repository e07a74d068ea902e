package visgraph

import (
	"math"
	"testing"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthetic builds a graph with n vertices and undirected weighted edges.
func synthetic(n int, edges [][3]float64) *Graph {
	g := newGraph(nil)
	for i := 0; i < n; i++ {
		g.addVertex(Vertex{P: dualvis.P(float64(i), 0), Kind: Tangency, Obstacle: -1})
	}
	for _, e := range edges {
		g.addEdge(Edge{From: int(e[0]), To: int(e[1]), Kind: Tangent, Weight: e[2], Obstacle: -1})
	}
	return g
}

// bruteForce enumerates all simple paths.
func bruteForce(g *Graph, from, to int) float64 {
	best := math.Inf(1)
	visited := make([]bool, len(g.Vertices))
	var walk func(v int, l float64)
	walk = func(v int, l float64) {
		if v == to {
			best = math.Min(best, l)
			return
		}
		visited[v] = true
		for _, e := range g.Adj[v] {
			if w := g.Other(e, v); !visited[w] {
				walk(w, l+g.Edges[e].Weight)
			}
		}
		visited[v] = false
	}
	walk(from, 0)
	return best
}

func TestShortestPathBruteForce(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := synthetic(7, [][3]float64{
		{0, 1, 7}, {0, 2, 9}, {0, 5, 14}, {1, 2, 10}, {1, 3, 15}, {2, 3, 11},
		{2, 5, 2}, {3, 4, 6}, {4, 5, 9}, {4, 6, 1}, {3, 6, 8}, {1, 6, 30},
	})
	for from := range g.Vertices {
		for to := range g.Vertices {
			path, err := ShortestPath(g, from, to)
			require.NoError(t, err)
			assert.InDelta(t, bruteForce(g, from, to), path.Length, 1e-12, "%d → %d", from, to)
			var sum float64
			v := from
			for i, s := range path.Steps {
				e := g.Edges[s.Edge]
				if s.Reverse {
					assert.Equal(t, v, e.To)
				} else {
					assert.Equal(t, v, e.From)
				}
				v = g.Other(s.Edge, v)
				assert.Equal(t, path.Vertices[i+1], v)
				sum += e.Weight
			}
			assert.Equal(t, to, v)
			assert.InDelta(t, path.Length, sum, 1e-12)
		}
	}
	path, err := ShortestPath(g, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5, 4}, path.Vertices)
	assert.InDelta(t, 20.0, path.Length, 1e-12)
}

func TestNoPath(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()
	g := synthetic(4, [][3]float64{{0, 1, 1}, {2, 3, 1}})
	_, err := ShortestPath(g, 0, 3)
	assert.ErrorIs(t, err, dualvis.ErrNoPath)
	_, err = ShortestPath(g, 0, 9)
	assert.ErrorIs(t, err, dualvis.ErrNoPath)
}
