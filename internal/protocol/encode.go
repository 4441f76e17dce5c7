package protocol

import (
	"bytes"
	"math"
)

// CaptureBuilder assembles a synthetic capture, byte-for-byte compatible
// with Tokenize. Tests use it for fixtures; the export round-trip uses
// it to re-decode corrected sessions.
type CaptureBuilder struct {
	buf  bytes.Buffer
	mode PrintMode
}

// NewCaptureBuilder returns a builder emitting records with the given
// print mode.
func NewCaptureBuilder(mode PrintMode) *CaptureBuilder {
	return &CaptureBuilder{mode: mode}
}

// Header appends the ESC 0 capture header.
func (b *CaptureBuilder) Header(rm RateMode) *CaptureBuilder {
	b.buf.Write([]byte{Esc, CmdHeader, byte(rm)})
	return b
}

// Value appends a signed value record. Magnitudes are clamped to the
// printable range and rounded to the device's milli-unit resolution.
func (b *CaptureBuilder) Value(v float64) *CaptureBuilder {
	flags := byte(0)
	if v < 0 {
		flags |= FlagNegative
		v = -v
	}
	if v > MaxMagnitude {
		v = MaxMagnitude
	}
	n := int(math.Round(v * ValueScale))

	b.buf.Write([]byte{Esc, CmdValue, byte(b.mode), flags, 0x00})
	for i := ValueDigitBytes - 1; i >= 0; i-- {
		pair := n / pow100(i) % 100
		b.buf.WriteByte(byte(pair/10<<4 | pair%10))
	}
	return b
}

// Error appends the device's bad-measurement marker.
func (b *CaptureBuilder) Error(negative bool) *CaptureBuilder {
	flags := FlagMeasureError
	if negative {
		flags |= FlagNegative
	}
	b.buf.Write([]byte{Esc, CmdValue, byte(b.mode), flags})
	return b
}

// Timestamp appends a RetroPrinter ESC T record for the next value.
func (b *CaptureBuilder) Timestamp(hh, mm, ss int) *CaptureBuilder {
	b.buf.Write([]byte{Esc, CmdTimestamp, byte(hh), byte(mm), byte(ss)})
	return b
}

// EndLine appends a line separator.
func (b *CaptureBuilder) EndLine() *CaptureBuilder {
	b.buf.Write([]byte{CarriageReturn, LineFeed})
	return b
}

// EndPage appends a page separator.
func (b *CaptureBuilder) EndPage() *CaptureBuilder {
	b.buf.WriteByte(FormFeed)
	return b
}

// Raw appends arbitrary bytes, for malformed-stream fixtures.
func (b *CaptureBuilder) Raw(p ...byte) *CaptureBuilder {
	b.buf.Write(p)
	return b
}

// Bytes returns the assembled capture.
func (b *CaptureBuilder) Bytes() []byte {
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

func pow100(n int) int {
	out := 1
	for ; n > 0; n-- {
		out *= 100
	}
	return out
}
