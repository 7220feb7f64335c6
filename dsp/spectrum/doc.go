// Package spectrum provides frequency-domain measurements for rendered audio.
//
// DominantFrequency and MagnitudeSpectrum run a windowed FFT frame through
// algo-fft. Goertzel evaluates single DFT bins cheaply, which suits checking
// the level of a known tone. Magnitude and Power convert complex bins using
// algo-vecmath kernels.
package spectrum
