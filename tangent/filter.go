package tangent

import (
	"context"
	"math"
	"runtime"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/intersect"
	"github.com/npillmayer/dualvis/obstacle"
	"golang.org/x/sync/errgroup"
)

// concave is the curvature below which a point of a counter-clockwise
// curve counts as locally concave.
const concave = -1e-6

// RejectImpostors keeps candidates whose chord runs along the curve's
// tangent at every end touching an obstacle. The angle between chord and
// tangent must be strictly below angleTol, in either direction. Pole ends
// are not checked. Candidates with zero length are rejected.
func RejectImpostors(cands []Candidate, obstacles []*obstacle.Obstacle, angleTol float64) []Candidate {
	var out []Candidate
	for _, c := range cands {
		v := c.To.P - c.From.P
		if v.Abs() <= dualvis.Epsilon {
			continue
		}
		if alongTangent(v, c.From, obstacles, angleTol) && alongTangent(v, c.To, obstacles, angleTol) {
			out = append(out, c)
		} else {
			tracer().Debugf("rejecting impostor %s", c)
		}
	}
	return out
}

func alongTangent(v dualvis.Pair, e End, obstacles []*obstacle.Obstacle, angleTol float64) bool {
	if e.IsPole() || !e.OnObstacle() {
		return true
	}
	tan := obstacles[e.Obstacle].Curve.Tangent(e.T)
	if tan.Abs() == 0 {
		return false
	}
	angle := math.Atan2(math.Abs(dualvis.Cross(v, tan)), math.Abs(dualvis.Dot(v, tan)))
	return angle < angleTol
}

// RejectOccluded keeps candidates whose segment is free. The segment must
// not cross any obstacle's boundary, apart from a margin at an end lying on
// that very obstacle. It must not leave a tangency point into a locally
// concave obstacle, and no interior sample may lie inside a closed obstacle.
func RejectOccluded(ctx context.Context, cands []Candidate, obstacles []*obstacle.Obstacle, opts Options) ([]Candidate, error) {
	free := make([]bool, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range cands {
		// per-iteration copy (go1.22 loopvar semantics under go 1.21)
		i := i
		g.Go(func() error {
			occ, err := Occluded(gctx, cands[i], obstacles, opts)
			free[i] = !occ
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []Candidate
	for i, c := range cands {
		if free[i] {
			out = append(out, c)
		} else {
			tracer().Debugf("rejecting occluded %s", c)
		}
	}
	return out, nil
}

// Occluded tests a single candidate, see RejectOccluded.
func Occluded(ctx context.Context, c Candidate, obstacles []*obstacle.Obstacle, opts Options) (bool, error) {
	for _, e := range []End{c.From, c.To} {
		if e.IsPole() || !e.OnObstacle() {
			continue
		}
		o := obstacles[e.Obstacle]
		if o.IsClosed() && o.Curve.Curvature(e.T) < concave {
			return true, nil
		}
	}
	seg := c.Segment()
	n := opts.OcclusionSamples
	for k := 1; k <= n; k++ {
		p := seg.Eval(float64(k) / float64(n+1))
		for _, o := range obstacles {
			if o.Contains(p) {
				return true, nil
			}
		}
	}
	for i, o := range obstacles {
		t0, t1 := 0.0, 1.0
		if c.From.OnObstacle() && c.From.Obstacle == i {
			t0 = opts.OcclusionMargin
		}
		if c.To.OnObstacle() && c.To.Obstacle == i {
			t1 = 1 - opts.OcclusionMargin
		}
		hit, err := intersect.Any(ctx, seg.Trimmed(t0, t1), o.Curve, opts.Intersect)
		if err != nil {
			return false, err
		}
		if hit {
			return true, nil
		}
	}
	return false, nil
}

// Visible is true if the straight segment between two ends is not occluded.
func Visible(ctx context.Context, from, to End, obstacles []*obstacle.Obstacle, opts Options) (bool, error) {
	occ, err := Occluded(ctx, BetweenPoles(from, to), obstacles, opts)
	return !occ, err
}
