package protocol

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Record sizes on the wire, including the ESC 1 prefix.
const (
	valueRecordLen = 8
	errorRecordLen = 4
	headerLen      = 3
	timestampLen   = 5
)

// Tokenize scans a complete capture left to right into its token
// stream. It fails with MalformedStreamError on the first byte run that
// matches no recognized record pattern; nothing is emitted past the
// failure and the capture is never mutated.
func Tokenize(raw []byte) (*TokenStream, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyCapture
	}

	ts := &TokenStream{}
	pendingTimestamp := ""

	for i := 0; i < len(raw); {
		b := raw[i]
		switch b {
		case Esc:
			if i+1 >= len(raw) {
				return nil, malformed(i, b, "truncated escape sequence")
			}
			cmd := raw[i+1]
			switch cmd {
			case CmdHeader:
				if i+headerLen > len(raw) {
					return nil, malformed(i, b, "truncated capture header")
				}
				rm := RateMode(raw[i+2])
				if !rm.Valid() {
					return nil, malformed(i+2, raw[i+2], "unknown rate mode")
				}
				ts.RateMode = rm
				ts.RateModeSeen = true
				log.Debug().Stringer("rate_mode", rm).Int("offset", i).Msg("capture header")
				i += headerLen

			case CmdValue:
				tok, n, err := parseValueRecord(raw, i)
				if err != nil {
					return nil, err
				}
				if tok.Kind == KindValue {
					tok.Timestamp = pendingTimestamp
				}
				pendingTimestamp = ""
				ts.Acquisition = AcquisitionMode(raw[i+3] & FlagAcquisitionHz)
				ts.Tokens = append(ts.Tokens, tok)
				i += n

			case CmdTimestamp:
				if i+timestampLen > len(raw) {
					return nil, malformed(i, b, "truncated timestamp record")
				}
				hh, mm, ss := raw[i+2], raw[i+3], raw[i+4]
				if hh >= 24 || mm >= 60 || ss >= 60 {
					return nil, malformed(i+2, raw[i+2], "timestamp out of range")
				}
				pendingTimestamp = fmt.Sprintf("%02d:%02d:%02d", hh, mm, ss)
				ts.Timestamped = true
				i += timestampLen

			default:
				return nil, malformed(i+1, cmd, "unknown escape command")
			}

		case CarriageReturn:
			ts.Tokens = append(ts.Tokens, RawToken{Kind: KindSeparator, Offset: i, Sep: SepLine})
			i++
			if i < len(raw) && raw[i] == LineFeed {
				i++
			}

		case LineFeed:
			ts.Tokens = append(ts.Tokens, RawToken{Kind: KindSeparator, Offset: i, Sep: SepLine})
			i++

		case FormFeed:
			ts.Tokens = append(ts.Tokens, RawToken{Kind: KindSeparator, Offset: i, Sep: SepPage})
			i++

		default:
			return nil, malformed(i, b, "unrecognized byte run")
		}
	}

	log.Debug().
		Int("tokens", len(ts.Tokens)).
		Int("slots", ts.Slots()).
		Bool("timestamped", ts.Timestamped).
		Msg("tokenized capture")
	return ts, nil
}

func parseValueRecord(raw []byte, start int) (RawToken, int, error) {
	if start+errorRecordLen > len(raw) {
		return RawToken{}, 0, malformed(start, Esc, "truncated value record")
	}

	mode := PrintMode(raw[start+2])
	if !mode.Valid() {
		return RawToken{}, 0, malformed(start+2, raw[start+2], "unknown print mode")
	}

	flags := raw[start+3]
	tok := RawToken{
		Offset:        start,
		PrintMode:     mode,
		Negative:      flags&FlagNegative != 0,
		FirstOfSeries: flags&FlagFirstOfSeries != 0,
	}

	// The device's own bad-measurement marker: the record stops after
	// the flags byte, carrying only a sign.
	if flags&FlagMeasureError != 0 {
		tok.Kind = KindErrorMarker
		return tok, errorRecordLen, nil
	}

	if start+valueRecordLen > len(raw) {
		return RawToken{}, 0, malformed(start, Esc, "truncated value record")
	}

	digits := raw[start+5 : start+5+ValueDigitBytes]
	mag, bad, ok := decodeBCD(digits)
	if !ok {
		return RawToken{}, 0, malformed(start+5+bad, digits[bad], "non-BCD value digit")
	}

	tok.Kind = KindValue
	tok.Magnitude = mag
	return tok, valueRecordLen, nil
}

// decodeBCD unpacks packed BCD byte pairs into a magnitude in units.
// On a non-decimal nibble it returns the index of the offending byte.
func decodeBCD(b []byte) (float64, int, bool) {
	n := 0
	for i, by := range b {
		hi := int(by >> 4)
		lo := int(by & 0x0F)
		if hi > 9 || lo > 9 {
			return 0, i, false
		}
		n = n*100 + hi*10 + lo
	}
	return float64(n) / ValueScale, 0, true
}
