package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/curve"
)

// ErrSuperseded is returned by a recompute which has been cancelled by a
// newer one.
var ErrSuperseded = fmt.Errorf("recompute superseded: %w", context.Canceled)

// Engine holds the current scene and the last valid result for an
// interactive client. Every command triggers a full, blocking recompute.
// A recompute started while another one is running cancels the older one.
// Failed recomputes leave the previous result in place.
type Engine struct {
	mu         sync.Mutex
	cfg        Config
	scene      Scene
	splines    []*curve.Spline // fitted from scene.Obstacles with tension
	tension    float64
	result     *Result
	cancel     context.CancelFunc
	generation uint64
}

// New creates an engine with an empty scene.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, tension: cfg.Tension}, nil
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Result returns the last valid result, or nil if there has been none yet.
func (e *Engine) Result() *Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result
}

// SetTolerance changes a setting by name, see Config.Set. It takes effect
// with the next recompute.
func (e *Engine) SetTolerance(name string, value float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Set(name, value)
}

// RecomputeWithNewSourceDest moves the query points and recomputes.
// Fitted curves are reused.
func (e *Engine) RecomputeWithNewSourceDest(ctx context.Context, src, dst dualvis.Pair) (*Result, error) {
	return e.recompute(ctx, func(scene *Scene) bool {
		scene.Source, scene.Destination = src, dst
		return false
	})
}

// RecomputeWithNewObstacles replaces the obstacles and recomputes.
func (e *Engine) RecomputeWithNewObstacles(ctx context.Context, obstacles []Boundary) (*Result, error) {
	obstacles = cloneBoundaries(obstacles)
	return e.recompute(ctx, func(scene *Scene) bool {
		scene.Obstacles = obstacles
		return true
	})
}

// Load replaces the whole scene and recomputes.
func (e *Engine) Load(ctx context.Context, scene Scene) (*Result, error) {
	scene.Obstacles = cloneBoundaries(scene.Obstacles)
	return e.recompute(ctx, func(current *Scene) bool {
		*current = scene
		return true
	})
}

// Recompute recomputes the current scene, e.g. after changing settings.
func (e *Engine) Recompute(ctx context.Context) (*Result, error) {
	return e.recompute(ctx, func(*Scene) bool { return false })
}

// recompute applies change to a copy of the last valid scene and computes
// it. change reports whether obstacles have to be fitted anew. The scene is
// committed together with its fitted curves, and only on success. A
// command superseded by a newer one is lost.
func (e *Engine) recompute(ctx context.Context, change func(*Scene) bool) (*Result, error) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.generation++
	gen := e.generation
	cfg := e.cfg
	scene := e.scene
	refit := change(&scene)
	splines := e.splines
	if refit || cfg.Tension != e.tension || len(splines) != len(scene.Obstacles) {
		splines = nil
	}
	e.mu.Unlock()
	defer cancel()
	//
	tracer().Debugf("recompute #%d", gen)
	var err error
	if splines == nil {
		if splines, err = FitAll(ctx, scene.Obstacles, cfg.Tension); err != nil {
			return nil, e.failed(gen, err)
		}
	}
	r, err := computeWith(ctx, splines, scene.Source, scene.Destination, cfg)
	if err != nil {
		return nil, e.failed(gen, err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return nil, ErrSuperseded
	}
	e.scene, e.splines, e.tension, e.result = scene, splines, cfg.Tension, r
	e.cancel = nil
	return r, nil
}

func (e *Engine) failed(gen uint64, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		return ErrSuperseded
	}
	e.cancel = nil
	tracer().Errorf("recompute #%d failed, keeping previous result: %v", gen, err)
	return err
}

func cloneBoundaries(bs []Boundary) []Boundary {
	out := make([]Boundary, len(bs))
	for i, b := range bs {
		out[i] = Boundary{Points: append([]dualvis.Pair(nil), b.Points...), Closed: b.Closed}
	}
	return out
}
