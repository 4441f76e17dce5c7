// Package cutoff computes the presentation-only boundary used to keep
// an otherwise unbounded series drawable: the axis wraps (horizontal)
// or clips (vertical) at the limit. It never alters measurements and is
// irrelevant to the tabular export path.
package cutoff

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/seikoctl/internal/session"
)

const (
	// autoHorizontalDays is the fixed auto cutoff for the time axis.
	autoHorizontalDays = 2
	// verticalRound is the rounding grain of the auto vertical bound.
	verticalRound = 10
)

var ErrNonPositiveCutoff = errors.New("cutoff: explicit cutoff must be a positive number")

// Orientation selects the graph layout the cutoff applies to.
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// RequestKind is the caller-supplied cutoff policy.
type RequestKind uint8

const (
	Auto RequestKind = iota
	Disabled
	Explicit
)

// Request is the caller-supplied cutoff configuration.
type Request struct {
	Kind  RequestKind
	Value float64 // Explicit only
}

// ParseRequest maps the CLI tristate to a request: truthy words select
// auto, falsy words disable, anything else must parse as a number.
func ParseRequest(raw string) (Request, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "yes", "true", "t", "y", "1", "auto":
		return Request{Kind: Auto}, nil
	case "no", "false", "f", "n", "0", "off", "disabled":
		return Request{Kind: Disabled}, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Request{}, fmt.Errorf("cutoff: unrecognized cutoff %q", raw)
	}
	return Request{Kind: Explicit, Value: v}, nil
}

// Limit is the resolved boundary. Explicit marks a user-supplied value
// used verbatim; Unbounded disables the boundary entirely.
type Limit struct {
	Unbounded bool
	Explicit  bool
	Value     float64
}

// Spec is the planned cutoff consumed by the renderer.
type Spec struct {
	Orientation Orientation
	Limit       Limit
}

// Plan derives the cutoff for a completed session. Auto vertical picks
// the next multiple of 10 at or above the session's maximum absolute
// value; auto horizontal is a fixed 2-day wrap; an explicit positive
// number overrides the computed bound verbatim.
func Plan(s *session.Session, o Orientation, r Request) (Spec, error) {
	switch r.Kind {
	case Explicit:
		if math.IsNaN(r.Value) || r.Value <= 0 {
			return Spec{}, ErrNonPositiveCutoff
		}
		return Spec{Orientation: o, Limit: Limit{Explicit: true, Value: r.Value}}, nil

	case Disabled:
		return Spec{Orientation: o, Limit: Limit{Unbounded: true}}, nil

	case Auto:
		if o == Horizontal {
			return Spec{Orientation: o, Limit: Limit{Value: autoHorizontalDays}}, nil
		}
		bound := math.Ceil(s.MaxAbs()/verticalRound) * verticalRound
		if bound == 0 {
			bound = verticalRound
		}
		return Spec{Orientation: o, Limit: Limit{Value: bound}}, nil

	default:
		return Spec{}, fmt.Errorf("cutoff: unknown request kind %d", r.Kind)
	}
}
