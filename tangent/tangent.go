/*
Package tangent computes common tangents of obstacles from intersections of
their dual curves, and filters them.

Raw candidates come in three kinds: direct tangents, where both curves run
in the same direction along the tangent line (for counter-clockwise closed
obstacles these are the outer tangents), reflected tangents with opposite
directions (the inner tangents), and pole tangents through a fixed point
such as the source or the destination. Two filters then reject impostors,
i.e. candidates whose chord does not run along the curves' tangents, and
occluded candidates, whose segment crosses or enters an obstacle.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package tangent

import (
	"context"
	"fmt"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
	"github.com/npillmayer/dualvis/dual"
	"github.com/npillmayer/dualvis/intersect"
	"github.com/npillmayer/dualvis/obstacle"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'dualvis.tangent'
func tracer() tracing.Trace {
	return tracing.Select("dualvis.tangent")
}

// Provenance tells how a candidate has been found.
type Provenance int

// Candidates are found by intersecting two duals directly, a dual with a
// reflected dual, or a dual with a pole's pencil.
const (
	Direct Provenance = iota
	Reflected
	Pole
)

func (p Provenance) String() string {
	switch p {
	case Direct:
		return "direct"
	case Reflected:
		return "reflected"
	case Pole:
		return "pole"
	}
	return fmt.Sprintf("provenance(%d)", int(p))
}

// NoObstacle marks an end which does not lie on an obstacle.
const NoObstacle = -1

// NoPole marks an end which is not a pole.
const NoPole = -1

// End is an end of a tangent segment. It either touches obstacle Obstacle
// at parameter T, or it is pole Pole, or both (for the ends of open
// obstacles, which are poles lying on their curve).
type End struct {
	Obstacle int
	Pole     int
	T        float64
	P        dualvis.Pair
}

// TangencyEnd creates an end touching obstacle o at t.
func TangencyEnd(o *obstacle.Obstacle, t float64) End {
	return End{Obstacle: o.Index, Pole: NoPole, T: t, P: o.Curve.Eval(t)}
}

// PoleEnd creates an end for a pole, which may lie on an obstacle (pass
// NoObstacle otherwise).
func PoleEnd(pole int, p dualvis.Pair, onObstacle int, t float64) End {
	return End{Obstacle: onObstacle, Pole: pole, T: t, P: p}
}

// IsPole is true for ends at a pole.
func (e End) IsPole() bool {
	return e.Pole != NoPole
}

// OnObstacle is true for ends lying on an obstacle's boundary.
func (e End) OnObstacle() bool {
	return e.Obstacle != NoObstacle
}

// Candidate is a common tangent candidate between two ends.
type Candidate struct {
	From, To   End
	Provenance Provenance
	Line       dualvis.Line
}

// Segment returns the straight segment of the candidate.
func (c Candidate) Segment() curve.Segment {
	return curve.Segment{P0: c.From.P, P1: c.To.P}
}

// Length is the length of the candidate's segment.
func (c Candidate) Length() float64 {
	return dualvis.Dist(c.From.P, c.To.P)
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s tangent %v[%d:%.4g] -- %v[%d:%.4g]", c.Provenance,
		c.From.P, c.From.Obstacle, c.From.T, c.To.P, c.To.Obstacle, c.To.T)
}

// Options for candidate generation and filtering.
type Options struct {
	Intersect        intersect.Options
	Dual             dual.Options
	AngleTolerance   float64 // radians, for rejecting impostors
	OcclusionSamples int     // interior samples tested for containment
	OcclusionMargin  float64 // fraction of a segment ignored at ends on obstacles
}

// DefaultOptions returns the options used by the engine if not configured
// otherwise.
func DefaultOptions() Options {
	return Options{
		Intersect:        intersect.DefaultOptions(),
		Dual:             dual.DefaultOptions(),
		AngleTolerance:   0.01,
		OcclusionSamples: 8,
		OcclusionMargin:  0.01,
	}
}

// Common returns the raw common tangent candidates of obstacles a and b.
// For a == b these are the obstacle's bitangents.
func Common(ctx context.Context, a, b *obstacle.Obstacle, opts Options) ([]Candidate, error) {
	if a == b {
		return bitangents(ctx, a, opts)
	}
	direct, err := intersect.Curves(ctx, a.Dual, b.Dual, opts.Intersect)
	if err != nil {
		return nil, fmt.Errorf("direct tangents of #%d and #%d: %w", a.Index, b.Index, err)
	}
	reflected, err := intersect.Curves(ctx, a.Dual, b.Reflected, opts.Intersect)
	if err != nil {
		return nil, fmt.Errorf("reflected tangents of #%d and #%d: %w", a.Index, b.Index, err)
	}
	cands := make([]Candidate, 0, len(direct)+len(reflected))
	for _, h := range direct {
		cands = append(cands, fromHit(a, b, h, Direct))
	}
	for _, h := range reflected {
		cands = append(cands, fromHit(a, b, h, Reflected))
	}
	tracer().Debugf("obstacles #%d and #%d: %d direct, %d reflected candidates",
		a.Index, b.Index, len(direct), len(reflected))
	return cands, nil
}

func bitangents(ctx context.Context, o *obstacle.Obstacle, opts Options) ([]Candidate, error) {
	direct, err := intersect.Self(ctx, o.Dual, opts.Intersect)
	if err != nil {
		return nil, fmt.Errorf("bitangents of #%d: %w", o.Index, err)
	}
	reflected, err := intersect.Curves(ctx, o.Dual, o.Reflected, opts.Intersect)
	if err != nil {
		return nil, fmt.Errorf("reflected bitangents of #%d: %w", o.Index, err)
	}
	cands := make([]Candidate, 0, len(direct)+len(reflected))
	for _, h := range direct {
		cands = append(cands, fromHit(o, o, h, Direct))
	}
	// every reflected bitangent is found twice, as (s,t) and as (t,s)
	for _, h := range reflected {
		if h.TA < h.TB {
			cands = append(cands, fromHit(o, o, h, Reflected))
		}
	}
	tracer().Debugf("obstacle #%d: %d bitangent candidates", o.Index, len(cands))
	return cands, nil
}

func fromHit(a, b *obstacle.Obstacle, h intersect.Hit, prov Provenance) Candidate {
	return Candidate{
		From:       TangencyEnd(a, h.TA),
		To:         TangencyEnd(b, h.TB),
		Provenance: prov,
		Line:       a.Dual.Line(h.TA),
	}
}

// FromPole returns the tangents from a pole to obstacle o. pencil is the
// pole's dual, see dual.OfPoint; from describes the pole as an end.
func FromPole(ctx context.Context, pencil *dual.Curve, from End, o *obstacle.Obstacle, opts Options) ([]Candidate, error) {
	hits, err := intersect.Curves(ctx, pencil, o.Dual, opts.Intersect)
	if err != nil {
		return nil, fmt.Errorf("tangents from pole #%d to #%d: %w", from.Pole, o.Index, err)
	}
	cands := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		if from.Obstacle == o.Index && curve.ParamDistance(o.Curve, h.TB, from.T) < opts.Intersect.MinSeparation {
			continue // the pole's own tangent line at an end of o
		}
		cands = append(cands, Candidate{
			From:       from,
			To:         TangencyEnd(o, h.TB),
			Provenance: Pole,
			Line:       o.Dual.Line(h.TB),
		})
	}
	return cands, nil
}

// BetweenPoles returns the straight candidate between two poles.
func BetweenPoles(from, to End) Candidate {
	return Candidate{
		From:       from,
		To:         to,
		Provenance: Pole,
		Line:       dualvis.LineBetween(from.P, to.P),
	}
}
