// Package pcm provides the decoded-audio container shared by every stage of
// the remix pipeline.
//
// A Buffer stores samples planar, one []float64 per channel, normalized to the
// nominal range [-1, +1]. Buffers are immutable by convention: stages read a
// source Buffer and return a new one, so the decoded original stays available
// for repeated previews with different parameters.
package pcm
