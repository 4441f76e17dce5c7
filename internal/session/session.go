// Package session holds the canonical measurement model produced by the
// decode pipeline and consumed read-only by the renderer and exporter.
package session

import (
	"fmt"
	"math"

	"github.com/danmuck/seikoctl/internal/protocol"
)

// Channel is one of the two alternating measurement channels sampled
// per escapement beat.
type Channel uint8

const (
	Tick Channel = iota
	Tock
)

func (c Channel) String() string {
	switch c {
	case Tick:
		return "tick"
	case Tock:
		return "tock"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Other returns the opposite channel.
func (c Channel) Other() Channel {
	if c == Tick {
		return Tock
	}
	return Tick
}

// Status records how a measurement's value came to be.
type Status uint8

const (
	// Original is a reading taken verbatim from the device.
	Original Status = iota
	// CorrectedError replaces a device-flagged bad measurement with a
	// value reconstructed from same-channel neighbors.
	CorrectedError
	// Outlier is a statistically anomalous but not device-flagged
	// reading, annotated for display and retained unmodified.
	Outlier
)

func (s Status) String() string {
	switch s {
	case Original:
		return "original"
	case CorrectedError:
		return "corrected"
	case Outlier:
		return "outlier"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Mode is the decoded print layout.
type Mode uint8

const (
	ModeA Mode = iota
	ModeB
)

func (m Mode) String() string {
	switch m {
	case ModeA:
		return "A"
	case ModeB:
		return "B"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// Measurement is one measurement slot of the capture. Immutable once
// the session is built.
type Measurement struct {
	SequenceIndex int
	Channel       Channel
	Value         float64
	Status        Status
	DayIndex      int
	SlotIndex     int
	Timestamp     string // side-band, may be empty
}

// Session is the decoded result for one input file. Collaborators hold
// it by reference and never mutate it.
type Session struct {
	Mode               Mode
	SlotsPerLine       int
	FallbackClassified bool

	PrintMode    protocol.PrintMode
	RateMode     protocol.RateMode
	RateModeSeen bool
	Acquisition  protocol.AcquisitionMode
	Timestamped  bool

	Measurements []Measurement
}

// MaxAbs returns the maximum absolute value across the session, zero
// when the session is empty.
func (s *Session) MaxAbs() float64 {
	max := 0.0
	for _, m := range s.Measurements {
		if v := math.Abs(m.Value); v > max {
			max = v
		}
	}
	return max
}

// StatusCounts tallies measurements per status.
func (s *Session) StatusCounts() map[Status]int {
	counts := make(map[Status]int, 3)
	for _, m := range s.Measurements {
		counts[m.Status]++
	}
	return counts
}

// ChannelValues returns the values of one channel in sequence order.
func (s *Session) ChannelValues(c Channel) []float64 {
	var out []float64
	for _, m := range s.Measurements {
		if m.Channel == c {
			out = append(out, m.Value)
		}
	}
	return out
}
