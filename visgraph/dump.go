package visgraph

import (
	"io"

	"github.com/npillmayer/dualvis"
	"gopkg.in/yaml.v3"
)

// Dump is the serializable form of a graph together with its obstacles.
type Dump struct {
	Obstacles   []DumpObstacle `yaml:"obstacles"`
	Vertices    []DumpVertex   `yaml:"vertices"`
	Edges       []DumpEdge     `yaml:"edges"`
	Source      int            `yaml:"source"`
	Destination int            `yaml:"destination"`
}

// DumpObstacle lists the knots of an obstacle's curve.
type DumpObstacle struct {
	Index  int          `yaml:"index"`
	Closed bool         `yaml:"closed"`
	Knots  [][2]float64 `yaml:"knots,flow"`
}

// DumpVertex is a graph vertex.
type DumpVertex struct {
	ID       int        `yaml:"id"`
	Kind     string     `yaml:"kind"`
	P        [2]float64 `yaml:"p,flow"`
	Obstacle int        `yaml:"obstacle"`
	T        float64    `yaml:"t"`
}

// DumpEdge is a graph edge.
type DumpEdge struct {
	From     int     `yaml:"from"`
	To       int     `yaml:"to"`
	Kind     string  `yaml:"kind"`
	Weight   float64 `yaml:"weight"`
	Obstacle int     `yaml:"obstacle"`
	T0       float64 `yaml:"t0"`
	T1       float64 `yaml:"t1"`
}

func xy(p dualvis.Pair) [2]float64 {
	return [2]float64{p.X(), p.Y()}
}

// Dump converts the graph into its serializable form.
func (g *Graph) Dump() Dump {
	d := Dump{Source: g.Source, Destination: g.Destination}
	for i, c := range g.curves {
		o := DumpObstacle{Index: i, Closed: c.IsClosed()}
		for k := 0; k < c.N(); k++ {
			o.Knots = append(o.Knots, xy(c.Segment(k).P0))
		}
		if !c.IsClosed() {
			o.Knots = append(o.Knots, xy(c.End()))
		}
		d.Obstacles = append(d.Obstacles, o)
	}
	for i, v := range g.Vertices {
		d.Vertices = append(d.Vertices, DumpVertex{
			ID: i, Kind: v.Kind.String(), P: xy(v.P), Obstacle: v.Obstacle, T: v.T,
		})
	}
	for _, e := range g.Edges {
		d.Edges = append(d.Edges, DumpEdge{
			From: e.From, To: e.To, Kind: e.Kind.String(), Weight: e.Weight,
			Obstacle: e.Obstacle, T0: e.T0, T1: e.T1,
		})
	}
	return d
}

// Write writes the graph and its obstacles as YAML.
func (g *Graph) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(g.Dump()); err != nil {
		return err
	}
	return enc.Close()
}
