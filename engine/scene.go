package engine

import (
	"fmt"
	"io"

	"github.com/npillmayer/dualvis"
	"gopkg.in/yaml.v3"
)

// Boundary is the outline of an obstacle as an ordered list of points.
type Boundary struct {
	Points []dualvis.Pair
	Closed bool
}

// Scene is an immutable snapshot of the input of a computation.
type Scene struct {
	Obstacles   []Boundary
	Source      dualvis.Pair
	Destination dualvis.Pair
}

type sceneFile struct {
	Config      Config         `yaml:"config"`
	Source      [2]float64     `yaml:"source,flow"`
	Destination [2]float64     `yaml:"destination,flow"`
	Obstacles   []boundaryFile `yaml:"obstacles"`
}

type boundaryFile struct {
	Closed bool         `yaml:"closed"`
	Points [][2]float64 `yaml:"points,flow"`
	Place  *placement   `yaml:"place,omitempty"`
}

// placement moves the points of a boundary. Scaling and rotation are about
// the centroid of the points, the shift is applied last.
type placement struct {
	Scale  float64    `yaml:"scale,omitempty"`
	Rotate float64    `yaml:"rotate,omitempty"` // degrees, counter-clockwise
	Shift  [2]float64 `yaml:"shift,flow"`
}

func (pl *placement) transform(pts []dualvis.Pair) (dualvis.AT, error) {
	if pl.Scale < 0 {
		return dualvis.AT{}, fmt.Errorf("%w: negative scale %g", dualvis.ErrDegenerateInput, pl.Scale)
	}
	scale := pl.Scale
	if scale == 0 {
		scale = 1
	}
	c := dualvis.Centroid(pts)
	return dualvis.Translation(-c).
		Combine(dualvis.Scaling(scale)).
		Combine(dualvis.Rotation(pl.Rotate * dualvis.Deg2Rad)).
		Combine(dualvis.Translation(c + dualvis.P(pl.Shift[0], pl.Shift[1]))), nil
}

// LoadScene reads a scene in YAML format:
//
//	config:
//	  angle-tolerance: 0.01
//	source: [-10, 0]
//	destination: [10, 0]
//	obstacles:
//	  - closed: true
//	    points: &diamond [[3, 0], [0, 3], [-3, 0], [0, -3]]
//	  - closed: true
//	    points: *diamond
//	    place: { scale: 0.5, rotate: 45, shift: [8, 0] }
//
// Settings missing from the config block keep their default value. An
// obstacle's optional placement scales and rotates its points about their
// centroid, then shifts them. Together with YAML anchors this places copies
// of a template outline. WriteScene writes placed points.
func LoadScene(r io.Reader) (Scene, Config, error) {
	f := sceneFile{Config: DefaultConfig()}
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return Scene{}, Config{}, fmt.Errorf("reading scene: %w", err)
	}
	if err := f.Config.Validate(); err != nil {
		return Scene{}, Config{}, err
	}
	scene := Scene{
		Source:      dualvis.P(f.Source[0], f.Source[1]),
		Destination: dualvis.P(f.Destination[0], f.Destination[1]),
	}
	for k, b := range f.Obstacles {
		bd := Boundary{Closed: b.Closed, Points: make([]dualvis.Pair, len(b.Points))}
		for i, p := range b.Points {
			bd.Points[i] = dualvis.P(p[0], p[1])
		}
		if b.Place != nil {
			m, err := b.Place.transform(bd.Points)
			if err != nil {
				return Scene{}, Config{}, fmt.Errorf("obstacle #%d: %w", k, err)
			}
			tracer().Debugf("placing obstacle #%d with %s", k, m)
			bd.Points = m.TransformAll(bd.Points)
		}
		scene.Obstacles = append(scene.Obstacles, bd)
	}
	tracer().Debugf("loaded scene with %d obstacles", len(scene.Obstacles))
	return scene, f.Config, nil
}

// WriteScene writes a scene and its configuration in the format read by
// LoadScene.
func WriteScene(w io.Writer, scene Scene, cfg Config) error {
	f := sceneFile{
		Config:      cfg,
		Source:      [2]float64{scene.Source.X(), scene.Source.Y()},
		Destination: [2]float64{scene.Destination.X(), scene.Destination.Y()},
	}
	for _, b := range scene.Obstacles {
		bf := boundaryFile{Closed: b.Closed}
		for _, p := range b.Points {
			bf.Points = append(bf.Points, [2]float64{p.X(), p.Y()})
		}
		f.Obstacles = append(f.Obstacles, bf)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}
