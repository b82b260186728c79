// Package link composes the bit codec, BPSK modem and AWGN channel into a
// single end-to-end text transmission. Every surface of the system (HTTP
// handlers, CLIs, batch sweeps) goes through Transmit; nothing reimplements
// the pipeline.
package link

import (
	"golang.org/x/exp/rand"

	"github.com/jeongseonghan/semcom/internal/bitcodec"
	"github.com/jeongseonghan/semcom/internal/channel"
	"github.com/jeongseonghan/semcom/internal/modem"
)

// Result is the immutable outcome of one transmission. A corrupted Text
// after heavy noise is an expected, valid result, never an error; callers
// judge quality from BER and the bitcodec.DecodeFailed sentinel.
type Result struct {
	Text   string
	BER    float64
	TxBits []byte
	RxBits []byte
}

// BitCount returns the number of transmitted bits.
func (r Result) BitCount() int {
	return len(r.TxBits)
}

// ErrorBits returns the number of bit positions that differ between the
// transmitted and received streams.
func (r Result) ErrorBits() int {
	count := 0
	for i := range r.TxBits {
		if r.TxBits[i] != r.RxBits[i] {
			count++
		}
	}
	return count
}

// Link is a configured point-to-point transmission pipeline. It carries no
// randomness of its own; the source is supplied per call, so independent
// calls with separate sources are safe to run concurrently.
type Link struct {
	codec *bitcodec.Codec
	bpsk  modem.BPSK
}

// New creates a link using the given bit codec.
func New(codec *bitcodec.Codec) *Link {
	return &Link{codec: codec}
}

// Default returns a link with the default UTF-8 codec.
func Default() *Link {
	return New(bitcodec.Default())
}

// Codec returns the link's bit codec.
func (l *Link) Codec() *bitcodec.Codec {
	return l.codec
}

// Transmit sends text through encode -> modulate -> AWGN -> demodulate ->
// decode with a single noise draw and reports the bit error rate. It is
// deterministic for a fixed source and never fails: encoding and decoding
// recover locally per the codec's policies.
func (l *Link) Transmit(text string, ebn0dB float64, src rand.Source) Result {
	txBits := l.codec.Encode(text)
	txSymbols := l.bpsk.Modulate(txBits)
	rxSymbols := channel.Apply(txSymbols, ebn0dB, src)
	rxBits := l.bpsk.Demodulate(rxSymbols)

	return Result{
		Text:   l.codec.Decode(rxBits),
		BER:    BitErrorRate(txBits, rxBits),
		TxBits: txBits,
		RxBits: rxBits,
	}
}

// BitErrorRate returns the fraction of positions where the two equal-length
// bit streams differ. Empty streams have rate 0.
func BitErrorRate(tx, rx []byte) float64 {
	if len(tx) == 0 {
		return 0
	}
	errors := 0
	for i := range tx {
		if tx[i] != rx[i] {
			errors++
		}
	}
	return float64(errors) / float64(len(tx))
}
