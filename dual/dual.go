package dual

import (
	"fmt"
	"math"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
)

// Options control the approximation of dual curves by cubic pieces.
type Options struct {
	SamplesPerPiece int     // Hermite pieces per primal piece
	PoleSamples     int     // Hermite pieces of a pole's pencil
	CuspEpsilon     float64 // tangents shorter than this are cusps
}

// DefaultOptions returns the options used by the engine if not configured
// otherwise.
func DefaultOptions() Options {
	return Options{
		SamplesPerPiece: 8,
		PoleSamples:     64,
		CuspEpsilon:     1e-9,
	}
}

// Curve is the dual curve of a primal curve or the pencil of lines through a
// pole. The dual is parameterized like the primal: Line(t) is the tangent
// line of the primal at t, and Eval(t) is its embedded point.
//
// Eval and Line are exact. Pieces are cubic Hermite approximations, each
// carrying its measured approximation error as slack.
type Curve struct {
	primal    curve.Curve
	pole      dualvis.Pair
	isPole    bool
	emb       Embedding
	reflected bool
	pieces    []curve.Piece
	h         float64 // finite difference step
}

// Of computes the dual curve of c. It returns dualvis.ErrCusp if the
// tangent of c vanishes somewhere.
func Of(c curve.Curve, emb Embedding, opts Options) (*Curve, error) {
	opts = sanitize(opts)
	lo, hi := c.Domain()
	d := &Curve{primal: c, emb: emb, h: 1e-6 * math.Max(1, hi-lo)}
	for _, p := range c.Pieces() {
		n := opts.SamplesPerPiece
		for k := 0; k <= 4*n; k++ {
			t := p.Param(float64(k) / float64(4*n))
			if c.Tangent(t).Abs() < opts.CuspEpsilon {
				return nil, fmt.Errorf("%w: vanishing tangent at t = %g", dualvis.ErrCusp, t)
			}
		}
		for k := 0; k < n; k++ {
			a := p.Param(float64(k) / float64(n))
			b := p.Param(float64(k+1) / float64(n))
			d.pieces = append(d.pieces, d.hermite(a, b))
		}
	}
	tracer().Debugf("dual curve with %d pieces, max slack %.3g", len(d.pieces), d.MaxSlack())
	return d, nil
}

// OfPoint returns the pencil of oriented lines through pole, parameterized
// by the angle φ ∈ [0,2π] of their normal.
func OfPoint(pole dualvis.Pair, emb Embedding, opts Options) *Curve {
	opts = sanitize(opts)
	d := &Curve{pole: pole, isPole: true, emb: emb, h: 1e-6}
	n := opts.PoleSamples
	for k := 0; k < n; k++ {
		a := 2 * math.Pi * float64(k) / float64(n)
		b := 2 * math.Pi * float64(k+1) / float64(n)
		d.pieces = append(d.pieces, d.hermite(a, b))
	}
	return d
}

func sanitize(opts Options) Options {
	def := DefaultOptions()
	if opts.SamplesPerPiece < 1 {
		opts.SamplesPerPiece = def.SamplesPerPiece
	}
	if opts.PoleSamples < 4 {
		opts.PoleSamples = def.PoleSamples
	}
	if opts.CuspEpsilon <= 0 {
		opts.CuspEpsilon = def.CuspEpsilon
	}
	return opts
}

// Reflect returns the dual curve of the same lines with opposite
// orientation, i.e. the point reflection (a,b,c) → (−a,−b,−c).
func (d *Curve) Reflect() *Curve {
	r := *d
	r.reflected = !d.reflected
	r.pieces = make([]curve.Piece, len(d.pieces))
	for i, p := range d.pieces {
		r.pieces[i] = r.hermite(p.T0, p.T1)
	}
	return &r
}

// IsReflected is true for reflected duals.
func (d *Curve) IsReflected() bool {
	return d.reflected
}

// Pole returns the pole of a pencil. ok is false for duals of curves.
func (d *Curve) Pole() (dualvis.Pair, bool) {
	return d.pole, d.isPole
}

// Primal returns the primal curve, or nil for pencils.
func (d *Curve) Primal() curve.Curve {
	return d.primal
}

// Embedding returns the embedding the dual lives in.
func (d *Curve) Embedding() Embedding {
	return d.emb
}

// Domain is the primal's domain, or [0,2π] for pencils.
func (d *Curve) Domain() (float64, float64) {
	if d.isPole {
		return 0, 2 * math.Pi
	}
	return d.primal.Domain()
}

// IsClosed is true for duals of closed curves and for pencils.
func (d *Curve) IsClosed() bool {
	return d.isPole || d.primal.IsClosed()
}

// Line returns the oriented line at parameter t: the tangent line of the
// primal, or the line through the pole with normal angle t.
func (d *Curve) Line(t float64) dualvis.Line {
	var l dualvis.Line
	if d.isPole {
		n := dualvis.Dir(t)
		l = dualvis.Line{A: n.X(), B: n.Y(), C: -dualvis.Dot(n, d.pole)}
	} else {
		l = dualvis.LineThrough(d.primal.Eval(t), d.primal.Tangent(t))
	}
	if d.reflected {
		l = l.Reflected()
	}
	return l
}

// Eval returns the embedded point of Line(t).
func (d *Curve) Eval(t float64) dualvis.Pair {
	return d.emb.Point(d.Line(t))
}

// Tangent returns the derivative of Eval at t.
func (d *Curve) Tangent(t float64) dualvis.Pair {
	if d.isPole {
		return d.poleDeriv(t)
	}
	if !d.primal.IsClosed() {
		lo, hi := d.primal.Domain()
		if t-d.h < lo {
			return d.derivIn(lo, 1)
		} else if t+d.h > hi {
			return d.derivIn(hi, -1)
		}
	}
	return (d.Eval(t+d.h) - d.Eval(t-d.h)).Scaled(1 / (2 * d.h))
}

func (d *Curve) poleDeriv(t float64) dualvis.Pair {
	n := dualvis.Dir(t)
	dn := dualvis.P(-n.Y(), n.X())
	v := d.pole - d.emb.Center
	h, dh := dualvis.Dot(n, v), dualvis.Dot(dn, v)
	q := dn.Scaled(d.emb.Radius+h) + n.Scaled(dh)
	if d.reflected {
		// reflected point is -n·(R - h)
		q = dn.Scaled(-(d.emb.Radius - h)) + n.Scaled(dh)
	}
	return q
}

// derivIn is a second order one-sided difference, looking into the interval
// towards dir. Curve joints may have discontinuous curvature, so the
// derivative is taken from within the piece.
func (d *Curve) derivIn(t, dir float64) dualvis.Pair {
	if d.isPole {
		return d.poleDeriv(t)
	}
	h := dir * 10 * d.h
	f0, f1, f2 := d.Eval(t), d.Eval(t+h), d.Eval(t+2*h)
	return (f1.Scaled(4) - f0.Scaled(3) - f2).Scaled(1 / (2 * h))
}

// hermite builds the cubic Hermite piece between parameters a and b and
// measures its deviation from the exact dual.
func (d *Curve) hermite(a, b float64) curve.Piece {
	p0, p3 := d.Eval(a), d.Eval(b)
	s := (b - a) / 3
	bez := curve.Bezier{
		P0: p0,
		P1: p0 + d.derivIn(a, 1).Scaled(s),
		P2: p3 - d.derivIn(b, -1).Scaled(s),
		P3: p3,
	}
	var slack float64
	for _, u := range []float64{0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875} {
		slack = math.Max(slack, dualvis.Dist(bez.Eval(u), d.Eval(a+u*(b-a))))
	}
	return curve.Piece{Bez: bez, T0: a, T1: b, Slack: 2*slack + 1e-12*d.emb.Radius}
}

// Approximate returns a cubic Hermite piece over [t0,t1]. Slack shrinks
// with the fourth power of the parameter range.
func (d *Curve) Approximate(t0, t1 float64) curve.Piece {
	return d.hermite(t0, t1)
}

// Pieces returns the cubic approximation of the dual.
func (d *Curve) Pieces() []curve.Piece {
	return d.pieces
}

// MaxSlack is the largest approximation error of all pieces.
func (d *Curve) MaxSlack() float64 {
	var m float64
	for _, p := range d.pieces {
		m = math.Max(m, p.Slack)
	}
	return m
}
