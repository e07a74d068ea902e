package jhobby

import (
	"fmt"
	"math"
)

// ValidateForSolve checks if a path is solvable by Hobby interpolation.
func (path *Path) ValidateForSolve() error {
	if path == nil {
		return ErrNilPath
	}
	n := path.N()
	if n < 3 {
		kind := "open path"
		if path.IsCycle() {
			kind = "cycle"
		}
		return fmt.Errorf("%w: %s needs at least 3 knots, got %d", ErrTooFewKnots, kind, n)
	}
	if path.tension < 0.75 || math.IsNaN(path.tension) {
		return fmt.Errorf("%w: got %g", ErrInvalidTension, path.tension)
	}
	for i, z := range path.points {
		if !z.IsValid() {
			return fmt.Errorf("%w at knot %d", ErrInvalidKnot, i)
		}
	}
	limit := n - 1
	if path.IsCycle() {
		limit = n
	}
	for i := 0; i < limit; i++ {
		if path.d(i) <= _epsilon {
			return fmt.Errorf("%w between knots %d and %d", ErrDegenerateSegment, i, (i+1)%n)
		}
	}
	return nil
}

// FindHobbyControls finds the parameters for Hobby-spline control points
// for a given skeleton path.
//
// Clients may provide a container for the spline control points. If none
// is provided, i.e. controls == nil, this function will allocate one.
// It validates the path and returns an error for empty/invalid geometry.
// The resulting path is traced with level INFO (as MetaFont does with
// tracingchoices).
func FindHobbyControls(path *Path, controls *Controls) (*Controls, error) {
	if err := path.ValidateForSolve(); err != nil {
		return nil, err
	}
	if controls == nil {
		controls = &Controls{}
	}
	n := path.N()
	u := make([]float64, n+2)
	v := make([]float64, n+2)
	theta := make([]float64, n+2)
	if path.IsCycle() {
		w := make([]float64, n+2)
		solveCyclePath(path, theta, u, v, w)
	} else {
		solveOpenPath(path, theta, u, v)
	}
	setControls(path, theta, controls)
	tracer().Debugf("smooth path = %s", AsString(path, controls))
	return controls, nil
}

// MustFindHobbyControls is a helper which panics on validation errors.
func MustFindHobbyControls(path *Path, controls *Controls) *Controls {
	c, err := FindHobbyControls(path, controls)
	if err != nil {
		panic(err)
	}
	return c
}

// Open paths have curl 1 at both ends, which for uniform tension
// yields u₀ = 1 and u_m = 1.
func solveOpenPath(path *Path, theta, u, v []float64) {
	last := path.N() - 1
	u[0] = 1
	v[0] = -u[0] * path.psi(1)
	buildEqs(path, 1, last-1, u, v, nil)
	u[last] = 1
	theta[last] = v[last-1] / (u[last-1] - u[last])
	for i := last - 1; i >= 0; i-- {
		theta[i] = v[i] - u[i]*theta[i+1]
	}
}

// For cycles index n denotes knot 0 again. We carry θ₀ as an unknown
// through the elimination (coefficients w) and resolve it at the end.
func solveCyclePath(path *Path, theta, u, v, w []float64) {
	n := path.N()
	u[0], v[0], w[0] = 0, 0, 1
	buildEqs(path, 1, n, u, v, w)
	var a, b float64 = 0, 1 // θ_k = a + b·θ₀, starting with k = n
	for k := n - 1; k >= 1; k-- {
		a, b = v[k]-u[k]*a, w[k]-u[k]*b
	}
	t0 := (v[n] - u[n]*a) / (1 - (w[n] - u[n]*b))
	theta[0], theta[n] = t0, t0
	for k := n - 1; k >= 1; k-- {
		theta[k] = v[k] + w[k]*t0 - u[k]*theta[k+1]
	}
	tracer().Debugf("cycle: θ.0 = %.4g", rad2deg(t0))
}

// buildEqs performs the forward elimination for the tridiagonal system of
// mock curvature equations at knots from…to.
func buildEqs(path *Path, from, to int, u, v, w []float64) {
	a := recip(path.tension)
	b := a
	for i := from; i <= to; i++ {
		A := a / (square(b) * path.d(i-1))
		B := (3 - a) / (square(b) * path.d(i-1))
		C := (3 - b) / (square(a) * path.d(i))
		D := b / (square(a) * path.d(i))
		t := B - u[i-1]*A + C
		u[i] = D / t
		v[i] = (-B*path.psi(i) - D*path.psi(i+1) - A*v[i-1]) / t
		if w != nil {
			w[i] = -A * w[i-1] / t
		}
		tracer().Debugf("u.%d = %.4g, v.%d = %.4g", i, u[i], i, v[i])
	}
}

func setControls(path *Path, theta []float64, controls *Controls) *Controls {
	n := path.N()
	segments := n - 1
	if path.IsCycle() {
		segments = n
	}
	a := recip(path.tension)
	for i := 0; i < segments; i++ {
		phi := -path.psi(i+1) - theta[i+1]
		p2, p3 := controlPoints(phi, theta[i], a, a, path.delta(i))
		controls.SetPostControl(i, path.Z(i)+p2)
		controls.SetPreControl((i+1)%n, path.Z(i+1)-p3)
	}
	return controls
}
