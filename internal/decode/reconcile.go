package decode

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

const (
	// outlierWindow is the number of same-channel valid values taken
	// on each side of a candidate.
	outlierWindow = 5
	// outlierSpread is the tolerated deviation from the window mean,
	// in multiples of the window spread.
	outlierSpread = 3.0
)

// slot is one measurement slot prior to correction.
type slot struct {
	tok        protocol.RawToken
	slotInLine int
	phase      int // alternation position within the page
}

// Reconcile assigns each measurement slot to a channel, annotates
// statistical outliers, and returns the measurements in sequence order.
// Error-marker slots carry NaN until the corrector fills them; outlier
// values are retained unmodified, only the device's own error markers
// justify reconstruction.
func Reconcile(ts *protocol.TokenStream, cls Classification) []session.Measurement {
	slots := collectSlots(ts)
	ms := make([]session.Measurement, len(slots))

	switch cls.Mode {
	case session.ModeA:
		reconcileModeA(slots, ms)
	case session.ModeB:
		reconcileModeB(slots, ms)
	}

	for i := range ms {
		ms[i].SequenceIndex = i
		ms[i].SlotIndex = slots[i].slotInLine
		if cls.Mode == session.ModeA {
			ms[i].DayIndex = i / protocol.MeasuresPerDay
		}
		if slots[i].tok.Kind == protocol.KindValue {
			ms[i].Timestamp = slots[i].tok.Timestamp
		}
	}
	return ms
}

func collectSlots(ts *protocol.TokenStream) []slot {
	var slots []slot
	slotInLine := 0
	phase := 0
	for _, tok := range ts.Tokens {
		switch tok.Kind {
		case protocol.KindValue, protocol.KindErrorMarker:
			slots = append(slots, slot{tok: tok, slotInLine: slotInLine, phase: phase})
			slotInLine++
			phase++
		case protocol.KindSeparator:
			slotInLine = 0
			if tok.Sep == protocol.SepPage {
				phase = 0
			}
		}
	}
	return slots
}

// reconcileModeA alternates tick/tock from a fixed initial channel per
// page. A valid token whose sign breaks the expected alternation is
// either an outlier (annotated, value kept) or a legitimate channel
// flip that re-anchors the alternation.
func reconcileModeA(slots []slot, ms []session.Measurement) {
	flip := false
	tickNeg := false
	tickKnown := false

	for i, sl := range slots {
		if sl.phase == 0 {
			flip = false
			tickKnown = false
		}

		ch := session.Channel(sl.phase % 2)
		if flip {
			ch = ch.Other()
		}

		if sl.tok.Kind == protocol.KindErrorMarker {
			ms[i] = session.Measurement{Channel: ch, Value: math.NaN(), Status: session.CorrectedError}
			continue
		}

		neg := sl.tok.Negative
		if !tickKnown {
			tickNeg = neg
			if ch == session.Tock {
				tickNeg = !neg
			}
			tickKnown = true
		}

		expectNeg := tickNeg
		if ch == session.Tock {
			expectNeg = !tickNeg
		}

		status := session.Original
		if neg != expectNeg {
			// Assigned channels behind the candidate, expected channels
			// ahead of it under the current flip state.
			channelOf := func(j int) session.Channel {
				if j < i {
					return ms[j].Channel
				}
				c := session.Channel(slots[j].phase % 2)
				if flip {
					c = c.Other()
				}
				return c
			}
			if isOutlier(slots, i, sl.tok.Magnitude, channelOf) {
				status = session.Outlier
				log.Warn().
					Int("slot", i).
					Float64("value", sl.tok.Value()).
					Msg("alternation break outside tolerance, annotated as outlier")
			} else {
				flip = !flip
				ch = ch.Other()
				log.Debug().Int("slot", i).Msg("accepted legitimate channel flip")
			}
		}

		ms[i] = session.Measurement{Channel: ch, Value: sl.tok.Value(), Status: status}
	}
}

// reconcileModeB assigns channels by parity of intra-line position;
// alternation is not guaranteed, so every valid value gets the outlier
// test instead of only sign breaks.
func reconcileModeB(slots []slot, ms []session.Measurement) {
	channelOf := func(j int) session.Channel {
		return session.Channel(slots[j].slotInLine % 2)
	}
	for i, sl := range slots {
		ch := channelOf(i)

		if sl.tok.Kind == protocol.KindErrorMarker {
			ms[i] = session.Measurement{Channel: ch, Value: math.NaN(), Status: session.CorrectedError}
			continue
		}

		status := session.Original
		if isOutlier(slots, i, sl.tok.Magnitude, channelOf) {
			status = session.Outlier
			log.Warn().
				Int("slot", i).
				Float64("value", sl.tok.Value()).
				Msg("value outside local tolerance, annotated as outlier")
		}
		ms[i] = session.Measurement{Channel: ch, Value: sl.tok.Value(), Status: status}
	}
}

// isOutlier tests a magnitude against the local same-channel window:
// up to outlierWindow valid values per side sharing the candidate's
// channel, as reported by channelOf. Error markers and the other
// channel never feed the window. Windows with fewer than two values
// carry no signal and never flag.
func isOutlier(slots []slot, i int, mag float64, channelOf func(int) session.Channel) bool {
	ch := channelOf(i)
	window := make([]float64, 0, 2*outlierWindow)
	for j, n := i-1, 0; j >= 0 && n < outlierWindow; j-- {
		if slots[j].tok.Kind == protocol.KindValue && channelOf(j) == ch {
			window = append(window, slots[j].tok.Magnitude)
			n++
		}
	}
	for j, n := i+1, 0; j < len(slots) && n < outlierWindow; j++ {
		if slots[j].tok.Kind == protocol.KindValue && channelOf(j) == ch {
			window = append(window, slots[j].tok.Magnitude)
			n++
		}
	}
	if len(window) < 2 {
		return false
	}

	mean := stat.Mean(window, nil)
	spread := stat.StdDev(window, nil)
	return math.Abs(mag-mean) > outlierSpread*spread
}
