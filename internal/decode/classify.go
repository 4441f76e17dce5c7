package decode

import (
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

// minSlotsForSignature is the fewest measurement slots that can satisfy
// either structural signature. Below it the classifier falls back.
const minSlotsForSignature = 4

// Classification is the outcome of mode detection on the full token
// stream. Fallback marks the documented best-effort fallback to mode B
// taken when neither signature holds.
type Classification struct {
	Mode         session.Mode
	PrintMode    protocol.PrintMode
	SlotsPerLine int
	Fallback     bool
}

// Classify inspects the complete token stream and determines print mode
// and page geometry. Unanimous per-record print-mode bytes win; mixed or
// absent bytes defer to structure (fixed line geometry plus consistent
// sign alternation identifies mode A); anything still ambiguous falls
// back to mode B, the permissive mode, with Fallback set.
func Classify(ts *protocol.TokenStream) Classification {
	printMode, unanimous := recordPrintMode(ts)
	lines := lineLengths(ts)
	slots := ts.Slots()
	slotsPerLine, uniform := uniformLineLength(lines, slots)
	if !uniform {
		// Irregular geometry still gets an inspectable width.
		slotsPerLine = longestLine(lines)
	}

	if unanimous {
		cls := Classification{PrintMode: printMode, SlotsPerLine: slotsPerLine}
		switch printMode {
		case protocol.PrintModeA10, protocol.PrintModeA2M:
			cls.Mode = session.ModeA
		case protocol.PrintModeC, protocol.PrintModeB1S:
			cls.Mode = session.ModeB
		}
		log.Debug().
			Stringer("print_mode", printMode).
			Stringer("mode", cls.Mode).
			Int("slots_per_line", cls.SlotsPerLine).
			Msg("classified by print-mode bytes")
		return cls
	}

	if slots >= minSlotsForSignature {
		if uniform && signsAlternate(ts) {
			log.Debug().Int("slots_per_line", slotsPerLine).Msg("classified as mode A by structure")
			return Classification{
				Mode:         session.ModeA,
				PrintMode:    printMode,
				SlotsPerLine: slotsPerLine,
			}
		}
		log.Debug().Msg("classified as mode B by structure")
		return Classification{
			Mode:         session.ModeB,
			PrintMode:    printMode,
			SlotsPerLine: slotsPerLine,
		}
	}

	// Too short or too irregular for either signature. The protocol is
	// undocumented, so this stays a visible decision, not a failure.
	log.Warn().
		Int("slots", slots).
		Msg("ambiguous capture geometry, falling back to mode B")
	return Classification{
		Mode:         session.ModeB,
		PrintMode:    printMode,
		SlotsPerLine: slotsPerLine,
		Fallback:     true,
	}
}

// recordPrintMode reports the print-mode byte shared by every value and
// error record, if they all agree.
func recordPrintMode(ts *protocol.TokenStream) (protocol.PrintMode, bool) {
	var mode protocol.PrintMode
	seen := false
	for _, tok := range ts.Tokens {
		switch tok.Kind {
		case protocol.KindValue, protocol.KindErrorMarker:
			if !seen {
				mode = tok.PrintMode
				seen = true
				continue
			}
			if tok.PrintMode != mode {
				return mode, false
			}
		case protocol.KindSeparator:
		}
	}
	return mode, seen
}

// lineLengths returns the slot count of every separator-terminated line.
func lineLengths(ts *protocol.TokenStream) []int {
	var lines []int
	current := 0
	for _, tok := range ts.Tokens {
		switch tok.Kind {
		case protocol.KindValue, protocol.KindErrorMarker:
			current++
		case protocol.KindSeparator:
			lines = append(lines, current)
			current = 0
		}
	}
	return lines
}

// uniformLineLength reports the fixed slots-per-line, when there is one.
// A capture without separators is a single line of all its slots.
func uniformLineLength(lines []int, slots int) (int, bool) {
	if len(lines) == 0 {
		return slots, slots > 0
	}
	first := lines[0]
	for _, l := range lines[1:] {
		if l != first {
			return 0, false
		}
	}
	return first, first > 0
}

// longestLine is the reported width of a capture whose lines vary.
func longestLine(lines []int) int {
	max := 0
	for _, l := range lines {
		if l > max {
			max = l
		}
	}
	return max
}

// signsAlternate reports whether consecutive valid values alternate
// sign. Error markers are skipped; pages restart the chain.
func signsAlternate(ts *protocol.TokenStream) bool {
	havePrev := false
	prevNeg := false
	for _, tok := range ts.Tokens {
		switch tok.Kind {
		case protocol.KindValue:
			if havePrev && tok.Negative == prevNeg {
				return false
			}
			prevNeg = tok.Negative
			havePrev = true
		case protocol.KindErrorMarker:
		case protocol.KindSeparator:
			if tok.Sep == protocol.SepPage {
				havePrev = false
			}
		}
	}
	return true
}
