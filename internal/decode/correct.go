package decode

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/seikoctl/internal/session"
)

// UnrecoverableChannelError reports a channel with zero valid
// measurements anywhere in the session. Fatal for the capture; sibling
// captures in a batch are unaffected.
type UnrecoverableChannelError struct {
	Channel       session.Channel
	SequenceIndex int
}

func (e UnrecoverableChannelError) Error() string {
	return fmt.Sprintf("decode: channel %s has no valid measurement to correct from (slot %d)",
		e.Channel, e.SequenceIndex)
}

// Correct fills every device-flagged error slot with the arithmetic mean
// of its nearest valid same-channel neighbors; at a stream boundary the
// single neighbor's value is used verbatim. No slot is ever dropped.
func Correct(ms []session.Measurement) error {
	corrected := 0
	for i := range ms {
		if ms[i].Status != session.CorrectedError {
			continue
		}
		before, okBefore := nearestValid(ms, i, -1)
		after, okAfter := nearestValid(ms, i, +1)
		switch {
		case okBefore && okAfter:
			ms[i].Value = (before + after) / 2
		case okBefore:
			ms[i].Value = before
		case okAfter:
			ms[i].Value = after
		default:
			return UnrecoverableChannelError{Channel: ms[i].Channel, SequenceIndex: i}
		}
		corrected++
	}
	if corrected > 0 {
		log.Debug().Int("corrected", corrected).Msg("reconstructed device-flagged error slots")
	}
	return nil
}

// nearestValid scans from i in the given direction for the closest
// same-channel measurement that is not itself an error slot.
func nearestValid(ms []session.Measurement, i, step int) (float64, bool) {
	for j := i + step; j >= 0 && j < len(ms); j += step {
		if ms[j].Channel == ms[i].Channel && ms[j].Status != session.CorrectedError {
			return ms[j].Value, true
		}
	}
	return 0, false
}
