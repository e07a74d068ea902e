package visgraph

import (
	"fmt"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/polygon"
)

// BuildPolygonal assembles the classic visibility graph over polygonal
// obstacles. Every polygon vertex becomes a graph vertex, with Obstacle set
// to the polygon's index. Vertices are connected by a straight edge if the
// segment between them neither crosses a polygon edge nor runs through the
// inside of a closed polygon. Polygon edges themselves are always part of
// the graph.
func BuildPolygonal(polys []*polygon.Polygon, src, dst dualvis.Pair) (*Graph, error) {
	for i, pg := range polys {
		if pg.Contains(src) {
			return nil, fmt.Errorf("%w: source %v inside polygon #%d", dualvis.ErrInvalidQueryPoint, src, i)
		}
		if pg.Contains(dst) {
			return nil, fmt.Errorf("%w: destination %v inside polygon #%d", dualvis.ErrInvalidQueryPoint, dst, i)
		}
	}
	g := newGraph(nil)
	g.Source = g.addVertex(Vertex{P: src, Kind: Source, Obstacle: -1})
	g.Destination = g.addVertex(Vertex{P: dst, Kind: Destination, Obstacle: -1})
	first := make([]int, len(polys)) // index of the first vertex of each polygon
	for i, pg := range polys {
		first[i] = len(g.Vertices)
		for k := 0; k < pg.N(); k++ {
			g.addVertex(Vertex{P: pg.Pt(k), Kind: Tangency, Obstacle: i, T: float64(k)})
		}
	}
	adjacent := func(u, v Vertex) bool {
		if u.Obstacle < 0 || u.Obstacle != v.Obstacle {
			return false
		}
		pg := polys[u.Obstacle]
		d := int(v.T) - int(u.T)
		return d == 1 || d == -1 || (pg.IsCycle() && (d == pg.N()-1 || d == 1-pg.N()))
	}
	for i := range g.Vertices {
		for j := i + 1; j < len(g.Vertices); j++ {
			u, v := g.Vertices[i], g.Vertices[j]
			if u.P.Equal(v.P) {
				continue
			}
			if adjacent(u, v) || freeSegment(polys, u.P, v.P) {
				g.addEdge(Edge{From: i, To: j, Kind: Tangent, Weight: dualvis.Dist(u.P, v.P), Obstacle: -1})
			}
		}
	}
	tracer().Debugf("polygonal visibility graph: %d vertices, %d edges", len(g.Vertices), len(g.Edges))
	return g, nil
}

func freeSegment(polys []*polygon.Polygon, p, q dualvis.Pair) bool {
	for _, pg := range polys {
		if pg.Crossed(p, q) {
			return false
		}
		for _, t := range []float64{0.25, 0.5, 0.75} {
			if pg.Contains(dualvis.Lerp(p, q, t)) {
				return false
			}
		}
	}
	return true
}
