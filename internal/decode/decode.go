package decode

import (
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

// Decode runs the full pipeline on one captured print stream: tokenizer,
// mode classifier, channel reconciler, error corrector. It is a pure
// function of the capture; each invocation is isolated, so a failing
// file in a batch never affects its siblings.
func Decode(raw []byte) (*session.Session, error) {
	ts, err := protocol.Tokenize(raw)
	if err != nil {
		return nil, err
	}

	cls := Classify(ts)
	ms := Reconcile(ts, cls)
	if err := Correct(ms); err != nil {
		return nil, err
	}

	s := &session.Session{
		Mode:               cls.Mode,
		SlotsPerLine:       cls.SlotsPerLine,
		FallbackClassified: cls.Fallback,
		PrintMode:          cls.PrintMode,
		RateMode:           ts.RateMode,
		RateModeSeen:       ts.RateModeSeen,
		Acquisition:        ts.Acquisition,
		Timestamped:        ts.Timestamped,
		Measurements:       ms,
	}

	counts := s.StatusCounts()
	log.Info().
		Stringer("mode", s.Mode).
		Stringer("print_mode", s.PrintMode).
		Int("measurements", len(ms)).
		Int("corrected", counts[session.CorrectedError]).
		Int("outliers", counts[session.Outlier]).
		Bool("fallback", s.FallbackClassified).
		Msg("decoded capture")
	return s, nil
}
