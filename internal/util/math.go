package util

import "math"

// Clamp01 bounds v to the [0, 1] confidence range.
func Clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// CeilFraction returns ceil(ratio * n), at least 1 for positive n.
func CeilFraction(n int, ratio float64) int {
	if n <= 0 {
		return 0
	}
	v := int(math.Ceil(float64(n) * ratio))
	if v < 1 {
		return 1
	}
	return v
}

func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
