// Package gain scales sample amplitude by a decibel amount and hard-clips
// the result to a symmetric ceiling.
//
// Clipping never wraps around: a sample that would exceed the ceiling is
// pinned to it. NaN samples become silence and infinities are pinned to the
// ceiling, so the output is always finite.
package gain
