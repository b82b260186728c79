package link

import (
	"encoding/json"
	"flag"
	"math"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/jeongseonghan/semcom/internal/bitcodec"
)

var update = flag.Bool("update", false, "rewrite golden files")

func TestTransmit_NoiselessRoundTrip(t *testing.T) {
	l := Default()

	texts := []string{
		"Hello, world!",
		"This is a test message for semantic communication.",
		"unicode: 日本語",
	}
	for _, text := range texts {
		res := l.Transmit(text, math.Inf(1), rand.NewSource(1))
		if res.Text != text {
			t.Errorf("noiseless transmit corrupted text: %q -> %q", text, res.Text)
		}
		if res.BER != 0 {
			t.Errorf("noiseless transmit of %q: BER = %v, expected 0", text, res.BER)
		}
	}
}

func TestTransmit_BitCountInvariant(t *testing.T) {
	l := Default()

	// "Hello, world!" is 13 ASCII bytes: 104 bits either side of the channel.
	res := l.Transmit("Hello, world!", 0, rand.NewSource(5))
	if res.BitCount() != 13*8 {
		t.Errorf("bit count: %d, expected %d", res.BitCount(), 13*8)
	}
	if len(res.TxBits) != len(res.RxBits) {
		t.Errorf("tx/rx length mismatch: %d != %d", len(res.TxBits), len(res.RxBits))
	}
}

func TestTransmit_BERMatchesBitDifference(t *testing.T) {
	l := Default()

	// Low enough Eb/N0 that some errors are near certain over 400 bits.
	res := l.Transmit("a message long enough to see bit errors at -2 dB here", -2, rand.NewSource(9))

	errors := 0
	for i := range res.TxBits {
		if res.TxBits[i] != res.RxBits[i] {
			errors++
		}
	}
	want := float64(errors) / float64(len(res.TxBits))
	if res.BER != want {
		t.Errorf("BER = %v, expected %v from %d differing bits", res.BER, want, errors)
	}
	if errors != res.ErrorBits() {
		t.Errorf("ErrorBits() = %d, counted %d", res.ErrorBits(), errors)
	}
	if res.BER < 0 || res.BER > 1 {
		t.Errorf("BER %v outside [0, 1]", res.BER)
	}
}

func TestTransmit_Deterministic(t *testing.T) {
	l := Default()

	a := l.Transmit("determinism check", 3, rand.NewSource(42))
	b := l.Transmit("determinism check", 3, rand.NewSource(42))

	if a.BER != b.BER || a.Text != b.Text {
		t.Fatalf("same seed diverged: BER %v vs %v, text %q vs %q", a.BER, b.BER, a.Text, b.Text)
	}
	for i := range a.RxBits {
		if a.RxBits[i] != b.RxBits[i] {
			t.Fatalf("rx bit %d differs for identical seed", i)
		}
	}
}

func TestTransmit_DegradationTrend(t *testing.T) {
	l := Default()
	const trials = 400
	text := "statistical degradation trend check, several words long"

	meanBER := func(ebn0dB float64) float64 {
		src := rand.NewSource(17)
		var sum float64
		for i := 0; i < trials; i++ {
			sum += l.Transmit(text, ebn0dB, src).BER
		}
		return sum / trials
	}

	points := []float64{0, 2, 4, 6, 8, 10}
	prev := math.Inf(1)
	for _, p := range points {
		ber := meanBER(p)
		if ber > prev {
			t.Errorf("mean BER rose from %v to %v at %v dB", prev, ber, p)
		}
		prev = ber
	}

	// Sanity: the channel destroys information at very low Eb/N0.
	if low := meanBER(-20); low < 0.3 {
		t.Errorf("mean BER at -20 dB = %v, expected near 0.5", low)
	}
}

func TestTransmit_EmptyTextUsesDefault(t *testing.T) {
	l := Default()

	res := l.Transmit("", math.Inf(1), rand.NewSource(1))
	if res.Text != bitcodec.DefaultText {
		t.Errorf("empty input decoded to %q, expected default text", res.Text)
	}
	if res.BitCount() != 8*len(bitcodec.DefaultText) {
		t.Errorf("bit count %d, expected %d", res.BitCount(), 8*len(bitcodec.DefaultText))
	}
}

// goldenResult is the serialized form of the pinned regression scenario.
type goldenResult struct {
	Text   string  `json:"text"`
	BER    float64 `json:"ber"`
	TxBits []byte  `json:"tx_bits"`
	RxBits []byte  `json:"rx_bits"`
}

// TestTransmit_Seed42Baseline pins transmit("Hello, world!", 0 dB, seed 42)
// against a recorded baseline so the exact noisy outcome can never drift
// silently. Run with -update to re-record after an intentional change.
func TestTransmit_Seed42Baseline(t *testing.T) {
	l := Default()
	res := l.Transmit("Hello, world!", 0, rand.NewSource(42))

	got := goldenResult{Text: res.Text, BER: res.BER, TxBits: res.TxBits, RxBits: res.RxBits}
	golden := filepath.Join("testdata", "transmit_seed42.json")

	if *update {
		data, err := json.MarshalIndent(got, "", "  ")
		if err != nil {
			t.Fatalf("marshal baseline: %v", err)
		}
		if err := os.WriteFile(golden, append(data, '\n'), 0644); err != nil {
			t.Fatalf("record baseline: %v", err)
		}
		t.Logf("recorded baseline %s", golden)
	}

	data, err := os.ReadFile(golden)
	if err != nil {
		t.Fatalf("read baseline (re-record with -update): %v", err)
	}
	var want goldenResult
	if err := json.Unmarshal(data, &want); err != nil {
		t.Fatalf("parse baseline: %v", err)
	}

	if got.Text != want.Text {
		t.Errorf("text drifted: %q, baseline %q", got.Text, want.Text)
	}
	if got.BER != want.BER {
		t.Errorf("BER drifted: %v, baseline %v", got.BER, want.BER)
	}
	if len(got.TxBits) != len(want.TxBits) || len(got.RxBits) != len(want.RxBits) {
		t.Fatalf("bit counts drifted: tx %d/%d, rx %d/%d",
			len(got.TxBits), len(want.TxBits), len(got.RxBits), len(want.RxBits))
	}
	for i := range want.TxBits {
		if got.TxBits[i] != want.TxBits[i] {
			t.Fatalf("tx bit %d drifted", i)
		}
	}
	for i := range want.RxBits {
		if got.RxBits[i] != want.RxBits[i] {
			t.Fatalf("rx bit %d drifted", i)
		}
	}
}
