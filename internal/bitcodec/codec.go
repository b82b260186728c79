// Package bitcodec converts text to and from bit sequences for transmission.
//
// Bits are represented as byte slices holding one 0/1 value per element,
// expanded MSB first so that the bitstream length is always a multiple of 8
// on the encode side.
package bitcodec

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// DefaultText is substituted for empty input so the pipeline never operates
// on a zero-length stream.
const DefaultText = "Default text for simulation"

// DecodeFailed is returned by Decode when no byte of the received stream
// survives validation. It is a regular output value, not an error.
const DecodeFailed = "*** Error decoding text ***"

// EncodePolicy selects how runes that cannot be represented in the target
// encoding are handled.
type EncodePolicy int

const (
	// Substitute replaces an unencodable rune with the encoding's
	// substitution byte.
	Substitute EncodePolicy = iota
	// Escape replaces an unencodable rune with an HTML numeric escape.
	Escape
)

// DecodePolicy selects how byte values that cannot occur in the target
// encoding are handled before text decoding.
type DecodePolicy int

const (
	// SkipInvalid drops invalid bytes from the stream. This is the default.
	SkipInvalid DecodePolicy = iota
	// SubstituteInvalid replaces invalid bytes with '?'.
	SubstituteInvalid
)

// Codec encodes text into a bitstream and decodes a (possibly corrupted)
// bitstream back into text. The zero value is not usable; construct with New
// or Default.
type Codec struct {
	enc          encoding.Encoding
	name         string
	encodePolicy EncodePolicy
	decodePolicy DecodePolicy
}

// New creates a codec for the given text encoding and policies.
func New(enc encoding.Encoding, ep EncodePolicy, dp DecodePolicy) *Codec {
	return &Codec{enc: enc, name: encodingName(enc), encodePolicy: ep, decodePolicy: dp}
}

// ByName creates a codec from an IANA encoding name such as "utf-8" or
// "iso-8859-1".
func ByName(name string, ep EncodePolicy, dp DecodePolicy) (*Codec, error) {
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("lookup encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("encoding %q has no codec", name)
	}
	c := New(enc, ep, dp)
	c.name = name
	return c, nil
}

// Default returns a UTF-8 codec with Substitute/SkipInvalid policies.
func Default() *Codec {
	return New(unicode.UTF8, Substitute, SkipInvalid)
}

// EncodingName returns the name of the configured text encoding.
func (c *Codec) EncodingName() string {
	return c.name
}

// Encode converts text into a bitstream, MSB first per encoded byte. Empty
// input is replaced with DefaultText. Runes the encoding cannot represent are
// handled per the encode policy, so Encode never fails; text already
// representable in the encoding round-trips losslessly.
func (c *Codec) Encode(text string) []byte {
	if text == "" {
		text = DefaultText
	}

	enc := c.enc.NewEncoder()
	switch c.encodePolicy {
	case Escape:
		enc = encoding.HTMLEscapeUnsupported(enc)
	default:
		enc = encoding.ReplaceUnsupported(enc)
	}

	data, err := enc.Bytes([]byte(text))
	if err != nil {
		// Unreachable with the wrappers above, but stay total.
		data = []byte(DefaultText)
	}
	return BytesToBits(data)
}

// Decode converts a received bitstream back into text. A tail that is not a
// multiple of 8 bits is zero-padded before grouping into bytes. For encodings
// whose byte validity can be judged in isolation, byte values that can never
// occur are skipped or substituted per the decode policy; the stream is then
// decoded with U+FFFD replacement for invalid sequences. Decode never fails:
// if nothing survives filtering it returns DecodeFailed.
func (c *Codec) Decode(bits []byte) string {
	data := c.filterInvalid(BitsToBytes(bits))
	if len(data) == 0 {
		return DecodeFailed
	}

	decoded, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return DecodeFailed
	}
	return string(decoded)
}

// filterInvalid applies the decode policy to byte values that can never occur
// in the configured encoding. Only encodings judgeable one byte at a time are
// filtered: UTF-8 and single-byte character maps. For multi-byte encodings
// such as Shift JIS a lead byte is only invalid in the context of its
// neighbors, so the stream passes through untouched and the replacement
// decoder resolves ill-formed sequences.
func (c *Codec) filterInvalid(data []byte) []byte {
	valid := c.byteValidator()
	if valid == nil {
		return data
	}

	kept := make([]byte, 0, len(data))
	for _, b := range data {
		if valid(b) {
			kept = append(kept, b)
		} else if c.decodePolicy == SubstituteInvalid {
			kept = append(kept, '?')
		}
	}
	return kept
}

// byteValidator returns a per-byte validity test, or nil when the encoding
// cannot be judged byte-wise.
func (c *Codec) byteValidator() func(byte) bool {
	if c.enc == unicode.UTF8 || strings.EqualFold(c.name, "utf-8") {
		// Byte values that never appear in well-formed UTF-8.
		return func(b byte) bool {
			return b != 0xC0 && b != 0xC1 && b < 0xF5
		}
	}
	if cm, ok := c.enc.(*charmap.Charmap); ok {
		return func(b byte) bool {
			out, err := cm.NewDecoder().Bytes([]byte{b})
			if err != nil {
				return false
			}
			return !strings.ContainsRune(string(out), '�')
		}
	}
	return nil
}

func encodingName(enc encoding.Encoding) string {
	if name, err := ianaindex.IANA.Name(enc); err == nil {
		return name
	}
	return fmt.Sprint(enc)
}

// BytesToBits expands each byte into 8 bits, MSB first.
func BytesToBits(data []byte) []byte {
	bits := make([]byte, len(data)*8)
	for i, b := range data {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (b >> (7 - j)) & 1
		}
	}
	return bits
}

// BitsToBytes groups bits into bytes, MSB first. A trailing partial byte is
// zero-padded; text recovered across that boundary is intentionally lossy.
func BitsToBytes(bits []byte) []byte {
	data := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit&1 == 1 {
			data[i/8] |= 1 << (7 - i%8)
		}
	}
	return data
}
