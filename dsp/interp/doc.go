// Package interp provides fractional interpolation primitives and whole-block
// length conversion built on them.
//
// Available methods, from cheapest to highest quality:
//
//   - [Linear2]:  2-point linear interpolation
//   - [Hermite4]: 4-point cubic Hermite (good default)
//
// [ResampleLinear] and [ResampleHermite] stretch or squeeze a block to an
// exact output length; they change pitch together with duration.
package interp
