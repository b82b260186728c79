// Package modem implements binary antipodal signalling for the simulated
// link: bits map to unit-energy symbols on the real line and come back
// through a hard decision.
package modem

// BPSK maps bits to antipodal symbols with unit symbol energy (Eb = 1).
type BPSK struct{}

// BitsPerSymbol returns the number of bits per BPSK symbol.
func (BPSK) BitsPerSymbol() int {
	return 1
}

// String returns the modulation name.
func (BPSK) String() string {
	return "BPSK"
}

// Map maps a single bit to a symbol: 0 -> -1.0, 1 -> +1.0.
func (BPSK) Map(bit byte) float64 {
	if bit&1 == 1 {
		return 1.0
	}
	return -1.0
}

// Decide makes a hard decision on a received sample: >= 0 -> 1, < 0 -> 0.
// No soft metric is retained.
func (BPSK) Decide(sample float64) byte {
	if sample >= 0 {
		return 1
	}
	return 0
}

// Modulate maps a bit slice (0/1 bytes) to a symbol sequence.
func (m BPSK) Modulate(bits []byte) []float64 {
	symbols := make([]float64, len(bits))
	for i, b := range bits {
		symbols[i] = m.Map(b)
	}
	return symbols
}

// Demodulate recovers bits from received samples by hard decision.
func (m BPSK) Demodulate(samples []float64) []byte {
	bits := make([]byte, len(samples))
	for i, s := range samples {
		bits[i] = m.Decide(s)
	}
	return bits
}
