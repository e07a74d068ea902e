package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/npillmayer/dualvis"
	"github.com/npillmayer/dualvis/tangent"
	"github.com/npillmayer/dualvis/visgraph"
)

// Config holds the numeric settings of the engine. Display toggles are not
// part of it; they belong to whoever draws the results.
type Config struct {
	IntersectionTolerance float64 `yaml:"intersection-tolerance"`
	AngleTolerance        float64 `yaml:"angle-tolerance"` // radians
	SampleStep            float64 `yaml:"sample-step"`     // parameter step for display samples
	MergeTolerance        float64 `yaml:"merge-tolerance"`
	OcclusionSamples      int     `yaml:"occlusion-samples"`
	OcclusionMargin       float64 `yaml:"occlusion-margin"`
	SelfSeparation        float64 `yaml:"self-separation"`
	Tension               float64 `yaml:"tension"`
	Flatten               int     `yaml:"flatten"`           // outline vertices per curve segment
	PolygonalFlatten      int     `yaml:"polygonal-flatten"` // same, for the polygonal comparison
}

// DefaultConfig returns the settings used if nothing else is configured.
func DefaultConfig() Config {
	topts := tangent.DefaultOptions()
	return Config{
		IntersectionTolerance: topts.Intersect.Tolerance,
		AngleTolerance:        topts.AngleTolerance,
		SampleStep:            0.05,
		MergeTolerance:        visgraph.DefaultOptions().MergeTolerance,
		OcclusionSamples:      topts.OcclusionSamples,
		OcclusionMargin:       topts.OcclusionMargin,
		SelfSeparation:        topts.Intersect.MinSeparation,
		Tension:               1,
		Flatten:               16,
		PolygonalFlatten:      4,
	}
}

type setter func(c *Config, v float64)

var setters = map[string]setter{
	"intersection-tolerance": func(c *Config, v float64) { c.IntersectionTolerance = v },
	"angle-tolerance":        func(c *Config, v float64) { c.AngleTolerance = v },
	"sample-step":            func(c *Config, v float64) { c.SampleStep = v },
	"merge-tolerance":        func(c *Config, v float64) { c.MergeTolerance = v },
	"occlusion-samples":      func(c *Config, v float64) { c.OcclusionSamples = int(v) },
	"occlusion-margin":       func(c *Config, v float64) { c.OcclusionMargin = v },
	"self-separation":        func(c *Config, v float64) { c.SelfSeparation = v },
	"tension":                func(c *Config, v float64) { c.Tension = v },
	"flatten":                func(c *Config, v float64) { c.Flatten = int(v) },
	"polygonal-flatten":      func(c *Config, v float64) { c.PolygonalFlatten = int(v) },
}

var aliases = map[string]string{
	"intersectiontolerance": "intersection-tolerance",
	"angletolerance":        "angle-tolerance",
	"samplestepfordisplay":  "sample-step",
	"samplestep":            "sample-step",
}

// Settings lists the names accepted by Set.
func Settings() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Set changes a single setting by name, e.g. "angle-tolerance". The
// resulting configuration is validated; on error c remains unchanged.
func (c *Config) Set(name string, value float64) error {
	key := strings.ToLower(name)
	if alias, ok := aliases[key]; ok {
		key = alias
	}
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: %q", dualvis.ErrUnknownSetting, name)
	}
	changed := *c
	set(&changed, value)
	if err := changed.Validate(); err != nil {
		return err
	}
	*c = changed
	return nil
}

// Validate checks every setting for its admissible range.
func (c Config) Validate() error {
	positive := map[string]float64{
		"intersection-tolerance": c.IntersectionTolerance,
		"angle-tolerance":        c.AngleTolerance,
		"sample-step":            c.SampleStep,
		"merge-tolerance":        c.MergeTolerance,
		"self-separation":        c.SelfSeparation,
	}
	for name, v := range positive {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive, is %g", dualvis.ErrInvalidSetting, name, v)
		}
	}
	if c.AngleTolerance >= math.Pi/2 {
		return fmt.Errorf("%w: angle-tolerance must be below π/2", dualvis.ErrInvalidSetting)
	}
	if c.OcclusionMargin < 0 || c.OcclusionMargin >= 0.5 {
		return fmt.Errorf("%w: occlusion-margin must be in [0,0.5)", dualvis.ErrInvalidSetting)
	}
	if c.OcclusionSamples < 0 {
		return fmt.Errorf("%w: occlusion-samples must not be negative", dualvis.ErrInvalidSetting)
	}
	if c.Tension < 0.75 || math.IsNaN(c.Tension) {
		return fmt.Errorf("%w: tension must be at least 3/4", dualvis.ErrInvalidSetting)
	}
	if c.Flatten < 1 || c.PolygonalFlatten < 1 {
		return fmt.Errorf("%w: flatten must be at least 1", dualvis.ErrInvalidSetting)
	}
	return nil
}

func (c Config) tangentOptions() tangent.Options {
	opts := tangent.DefaultOptions()
	opts.Intersect.Tolerance = c.IntersectionTolerance
	opts.Intersect.MinSeparation = c.SelfSeparation
	opts.AngleTolerance = c.AngleTolerance
	opts.OcclusionSamples = c.OcclusionSamples
	opts.OcclusionMargin = c.OcclusionMargin
	return opts
}

func (c Config) graphOptions() visgraph.Options {
	return visgraph.Options{
		Tangent:        c.tangentOptions(),
		MergeTolerance: c.MergeTolerance,
	}
}
