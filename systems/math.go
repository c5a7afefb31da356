package systems

import "math"

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// mod returns the positive remainder of a/n (Go's math.Mod keeps the sign of a).
func mod(a, n float64) float64 {
	return math.Mod(math.Mod(a, n)+n, n)
}
