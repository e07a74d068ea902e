package jhobby

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/npillmayer/dualvis"
)

// Hobby's empiric constants.
const (
	hobbyA  = math.Sqrt2
	hobbyB  = 1.0 / 16
	hobbyC  = 0.38196601125 // (3 - sqrt(5)) / 2
	hobbyCC = 0.61803398875 // 1 - c
)

func hobbyParamsRhoSigma(theta, phi float64) (float64, float64) {
	st, ct := math.Sincos(theta) // in-angle
	sf, cf := math.Sincos(phi)   // out-angle
	alpha := hobbyA * (st - hobbyB*sf) * (sf - hobbyB*st) * (ct - cf)
	beta := 1 + hobbyCC*ct + hobbyC*cf
	return (2 + alpha) / beta, (2 - alpha) / beta
}

// Calculate control point offsets between z.i and z.[i+1]: the chord
// rotated by θ resp. -φ, scaled by ρ/3τ resp. σ/3τ.
func controlPoints(phi, theta, a, b float64, dvec dualvis.Pair) (dualvis.Pair, dualvis.Pair) {
	rho, sigma := hobbyParamsRhoSigma(theta, phi)
	uv1 := dvec * dualvis.Dir(theta)
	uv2 := dvec * dualvis.Dir(-phi)
	return uv1.Scaled(a / 3 * rho), uv2.Scaled(b / 3 * sigma)
}

// Extend a slice of pairs to make room for index i.
// Will do nothing if the slice is already large enough.
func extendC(arr []dualvis.Pair, i int, deflt dualvis.Pair) []dualvis.Pair {
	l := len(arr)
	if i >= l {
		arr = append(arr, make([]dualvis.Pair, i-l+1)...)
		for ; i >= l; i-- {
			arr[i] = deflt
		}
	}
	return arr
}

// Get a value from a slice if present, default value deflt otherwise.
func getC(arr []dualvis.Pair, i int, deflt dualvis.Pair) dualvis.Pair {
	if i >= len(arr) {
		return deflt
	}
	return arr[i]
}

// Reduce an angle to fit into -pi .. pi.
func reduceAngle(a float64) float64 {
	if math.Abs(a) > math.Pi {
		if a > 0 {
			a -= 2 * math.Pi
		} else {
			a += 2 * math.Pi
		}
	}
	return a
}

// Return 1/a for a.
func recip(a float64) float64 {
	if math.IsNaN(a) {
		return 1.0
	}
	return 1.0 / a
}

func square(a float64) float64 {
	return a * a
}

func rad2deg(a float64) float64 {
	return a / dualvis.Deg2Rad
}

func ptstring(p dualvis.Pair, iscontrol bool) string {
	if cmplx.IsNaN(p.C()) {
		return "(<unknown>)"
	}
	if iscontrol {
		return fmt.Sprintf("(%.4f,%.4f)", round(p.X()), round(p.Y()))
	}
	return fmt.Sprintf("(%.4g,%.4g)", round(p.X()), round(p.Y()))
}

func round(x float64) float64 {
	return math.Round(x*10000) / 10000
}
