package protocol

import "fmt"

// TokenKind is the closed set of token variants. Every consumer must
// switch over all three.
type TokenKind uint8

const (
	KindValue TokenKind = iota
	KindErrorMarker
	KindSeparator
)

func (k TokenKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindErrorMarker:
		return "error-marker"
	case KindSeparator:
		return "separator"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// SeparatorClass distinguishes line boundaries from page boundaries.
type SeparatorClass uint8

const (
	SepLine SeparatorClass = iota
	SepPage
)

func (s SeparatorClass) String() string {
	switch s {
	case SepLine:
		return "line"
	case SepPage:
		return "page"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// RawToken is one decoded element of the print stream. Transient:
// tokens are consumed during reconciliation and never retained.
type RawToken struct {
	Kind   TokenKind
	Offset int // byte offset of the record in the capture

	// KindValue and KindErrorMarker.
	PrintMode     PrintMode
	Negative      bool
	FirstOfSeries bool

	// KindValue only.
	Magnitude float64
	Timestamp string // side-band RetroPrinter timestamp, may be empty

	// KindSeparator only.
	Sep SeparatorClass
}

// Value returns the signed value of a KindValue token.
func (t RawToken) Value() float64 {
	if t.Negative {
		return -t.Magnitude
	}
	return t.Magnitude
}

// TokenStream is the tokenizer output: the ordered tokens plus the
// capture-level side-band recovered along the way.
type TokenStream struct {
	Tokens []RawToken

	RateMode     RateMode
	RateModeSeen bool
	Acquisition  AcquisitionMode
	Timestamped  bool
}

// Slots counts the measurement slots (values and error markers) in the
// stream.
func (ts *TokenStream) Slots() int {
	n := 0
	for _, tok := range ts.Tokens {
		switch tok.Kind {
		case KindValue, KindErrorMarker:
			n++
		case KindSeparator:
		}
	}
	return n
}
