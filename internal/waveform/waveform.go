// Package waveform renders text as a continuous noisy sinusoid for
// illustration. It shares nothing with the transmission core: the noise here
// is scaled from a signal-power SNR, there is no modulation or decision
// stage, and nothing feeds back into the link.
package waveform

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Defaults mirror the interactive simulation tool.
const (
	DefaultText         = "Hello, Semantic Communication!"
	DefaultSamplingRate = 10
	DefaultSNRdB        = 20
	decimation          = 10 // thin the output arrays for transport
)

// Params configures one rendering.
type Params struct {
	Text         string
	SamplingRate int     // points per character
	SNRdB        float64 // signal-to-noise ratio of the overlay noise
}

// Rendering holds decimated sample arrays ready for plotting.
type Rendering struct {
	Text       string    `json:"text"`
	SNRdB      float64   `json:"snr"`
	Time       []float64 `json:"time"`
	Signal     []float64 `json:"original_signal"`
	Noise      []float64 `json:"noise"`
	Noisy      []float64 `json:"noisy_signal"`
	Amplitudes []float64 `json:"amplitudes"` // normalized per-character values
}

// Render converts text to a normalized sinusoid shaped by per-character
// amplitude pulses and overlays Gaussian noise at the requested SNR. Empty
// text falls back to DefaultText; randomness comes only from src.
func Render(p Params, src rand.Source) Rendering {
	if p.Text == "" {
		p.Text = DefaultText
	}
	if p.SamplingRate <= 0 {
		p.SamplingRate = DefaultSamplingRate
	}

	runes := []rune(p.Text)
	n := len(runes)

	// Normalized character amplitudes.
	amplitudes := make([]float64, n)
	for i, r := range runes {
		amplitudes[i] = float64(r)
	}
	if max := floats.Max(amplitudes); max > 0 {
		floats.Scale(1/max, amplitudes)
	}

	// Dense time axis with SamplingRate points per character.
	samples := n * p.SamplingRate
	if samples < 2 {
		samples = 2
	}
	t := make([]float64, samples)
	floats.Span(t, 0, float64(n))

	// One Gaussian-windowed sinusoidal pulse per character, frequency tied
	// to the text length.
	frequency := 2 * math.Pi / (float64(n) / 3)
	signal := make([]float64, samples)
	for i, amp := range amplitudes {
		for j, tj := range t {
			d := (tj - float64(i)) / 0.5
			signal[j] += amp * math.Sin(frequency*(tj-float64(i))) * math.Exp(-0.5*d*d)
		}
	}
	if peak := maxAbs(signal); peak > 0 {
		floats.Scale(1/peak, signal)
	}

	// Noise power from the signal-power SNR. This is deliberately the crude
	// model: no Eb/N0, no per-bit scaling.
	signalPower := floats.Dot(signal, signal) / float64(samples)
	noisePower := signalPower / math.Pow(10, p.SNRdB/10)

	dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(noisePower), Src: src}
	noise := make([]float64, samples)
	noisy := make([]float64, samples)
	for i := range noise {
		noise[i] = dist.Rand()
		noisy[i] = signal[i] + noise[i]
	}

	return Rendering{
		Text:       p.Text,
		SNRdB:      p.SNRdB,
		Time:       decimate(t),
		Signal:     decimate(signal),
		Noise:      decimate(noise),
		Noisy:      decimate(noisy),
		Amplitudes: amplitudes,
	}
}

func maxAbs(xs []float64) float64 {
	var max float64
	for _, x := range xs {
		if a := math.Abs(x); a > max {
			max = a
		}
	}
	return max
}

func decimate(xs []float64) []float64 {
	out := make([]float64, 0, (len(xs)+decimation-1)/decimation)
	for i := 0; i < len(xs); i += decimation {
		out = append(out, xs[i])
	}
	return out
}
