package waveform

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
)

func TestRender_Shapes(t *testing.T) {
	p := Params{Text: "Hello", SamplingRate: 10, SNRdB: 20}
	r := Render(p, rand.NewSource(1))

	wantSamples := (len("Hello")*10 + decimation - 1) / decimation
	if len(r.Time) != wantSamples {
		t.Errorf("time samples: %d, expected %d", len(r.Time), wantSamples)
	}
	if len(r.Signal) != len(r.Time) || len(r.Noise) != len(r.Time) || len(r.Noisy) != len(r.Time) {
		t.Error("sample array lengths differ")
	}
	if len(r.Amplitudes) != len("Hello") {
		t.Errorf("amplitudes: %d, expected %d", len(r.Amplitudes), len("Hello"))
	}

	for i := range r.Signal {
		if r.Noisy[i] != r.Signal[i]+r.Noise[i] {
			t.Fatalf("sample %d: noisy != signal + noise", i)
		}
	}
}

func TestRender_NormalizedAmplitudes(t *testing.T) {
	r := Render(Params{Text: "abcz", SamplingRate: 5, SNRdB: 20}, rand.NewSource(1))

	var max float64
	for _, a := range r.Amplitudes {
		if a < 0 || a > 1 {
			t.Errorf("amplitude %v outside [0, 1]", a)
		}
		if a > max {
			max = a
		}
	}
	if math.Abs(max-1) > 1e-12 {
		t.Errorf("peak amplitude %v, expected 1", max)
	}

	for _, s := range r.Signal {
		if s < -1-1e-9 || s > 1+1e-9 {
			t.Errorf("signal sample %v outside normalized range", s)
		}
	}
}

func TestRender_EmptyTextUsesDefault(t *testing.T) {
	r := Render(Params{SNRdB: DefaultSNRdB}, rand.NewSource(1))

	if r.Text != DefaultText {
		t.Errorf("text %q, expected default", r.Text)
	}
	if len(r.Amplitudes) != len([]rune(DefaultText)) {
		t.Errorf("amplitudes %d, expected one per character", len(r.Amplitudes))
	}
}

func TestRender_Deterministic(t *testing.T) {
	p := Params{Text: "seeded", SamplingRate: 10, SNRdB: 10}

	a := Render(p, rand.NewSource(42))
	b := Render(p, rand.NewSource(42))
	for i := range a.Noisy {
		if a.Noisy[i] != b.Noisy[i] {
			t.Fatalf("sample %d differs for identical seed", i)
		}
	}
}

func TestRender_NoiseShrinksWithSNR(t *testing.T) {
	text := "a reasonably long line of text for power estimates"

	noisePower := func(snr float64) float64 {
		r := Render(Params{Text: text, SamplingRate: 20, SNRdB: snr}, rand.NewSource(7))
		var sum float64
		for _, v := range r.Noise {
			sum += v * v
		}
		return sum / float64(len(r.Noise))
	}

	if noisePower(0) <= noisePower(30) {
		t.Error("noise power did not shrink as SNR increased")
	}
}
