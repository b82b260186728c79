// Package channel simulates an additive white Gaussian noise channel for
// unit-energy antipodal symbols. The channel never inserts or deletes
// symbols, only perturbs their values, and always returns a fresh slice so
// the transmitted sequence stays intact for error-rate comparison.
package channel

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinearEbN0 converts an Eb/N0 value from decibels to linear scale.
func LinearEbN0(ebn0dB float64) float64 {
	return math.Pow(10, ebn0dB/10)
}

// NoiseVariance derives the per-symbol noise variance from Eb/N0 in dB.
// With Eb = 1 for antipodal symbols, variance = N0/2 = 1/(2*EbN0).
func NoiseVariance(ebn0dB float64) float64 {
	return 1 / (2 * LinearEbN0(ebn0dB))
}

// Apply adds one independent zero-mean Gaussian sample per symbol, drawn
// from the caller-supplied source. The source is an explicit parameter so
// that a fixed seed reproduces the same noisy output exactly; the package
// holds no generator state of its own.
//
// An infinite Eb/N0 (zero variance) yields a plain copy of the input.
func Apply(symbols []float64, ebn0dB float64, src rand.Source) []float64 {
	out := make([]float64, len(symbols))

	variance := NoiseVariance(ebn0dB)
	if variance == 0 || math.IsInf(ebn0dB, 1) {
		copy(out, symbols)
		return out
	}

	noise := distuv.Normal{Mu: 0, Sigma: math.Sqrt(variance), Src: src}
	for i, s := range symbols {
		out[i] = s + noise.Rand()
	}
	return out
}
