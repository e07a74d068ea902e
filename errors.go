package dualvis

import "errors"

// Errors of the engine. Functions wrap them with context, clients check with
// errors.Is. Every one of them aborts the current recompute.
var (
	// ErrDegenerateInput indicates that a curve cannot be fitted through the
	// given points: too few points, coincident consecutive points or NaN.
	ErrDegenerateInput = errors.New("degenerate input for curve fitting")
	// ErrCusp indicates a curve with a vanishing tangent, which has no dual.
	ErrCusp = errors.New("curve has a cusp, dual undefined")
	// ErrToleranceNotReached indicates that the subdivision intersector hit
	// its depth or work ceiling before reaching the requested tolerance.
	ErrToleranceNotReached = errors.New("intersection tolerance not reached")
	// ErrInvalidQueryPoint indicates a source or destination inside an obstacle.
	ErrInvalidQueryPoint = errors.New("query point lies inside an obstacle")
	// ErrNoPath indicates that the destination is unreachable from the source.
	ErrNoPath = errors.New("no path from source to destination")
	// ErrParameterOutOfRange indicates a curve parameter outside of the
	// (interior of the) curve's domain.
	ErrParameterOutOfRange = errors.New("curve parameter out of range")
	// ErrUnknownSetting indicates a tolerance name unknown to the configuration.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrInvalidSetting indicates a configuration value out of its range.
	ErrInvalidSetting = errors.New("invalid setting")
)
