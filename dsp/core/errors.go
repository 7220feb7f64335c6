package core

import (
	"errors"
	"math"
)

// ErrInvalidParameter reports a processing parameter that cannot be applied,
// such as a non-positive tempo ratio.
var ErrInvalidParameter = errors.New("invalid parameter")

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsFinitePositive reports whether v is finite and strictly positive.
func IsFinitePositive(v float64) bool {
	return v > 0 && IsFinite(v)
}

// FiniteOr returns v if it is finite and fallback otherwise.
func FiniteOr(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}

	return fallback
}
