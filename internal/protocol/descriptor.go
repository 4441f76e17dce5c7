package protocol

import "fmt"

// Descriptor constants for the QT-2100 print stream. No vendor
// specification exists; everything below was recovered from captures.
// Corrections to the format land here and nowhere else.

// Record framing bytes.
const (
	Esc byte = 0x1B

	CmdHeader    byte = '0' // ESC 0 <rate_mode>
	CmdValue     byte = '1' // ESC 1 <print_mode> <flags> [<ukn> <v1> <v2> <v3>]
	CmdTimestamp byte = 'T' // ESC T <hh> <mm> <ss>, prefixes an ESC 1 record
)

// Separator bytes between records. CR ends a printed line, FF ends a
// page and resets the channel alternation phase.
const (
	LineFeed       byte = 0x0A
	FormFeed       byte = 0x0C
	CarriageReturn byte = 0x0D
)

// Flag bits of the value-record flags byte.
const (
	FlagNegative      byte = 0x01
	FlagFirstOfSeries byte = 0x10
	FlagAcquisitionHz byte = 0x20
	FlagMeasureError  byte = 0x80
)

// Value encoding: three packed BCD byte pairs, six decimal digits,
// scaled to units. The /1000 scale is the least certain part of the
// reverse engineering; the printed range is [-999.999, +999.999].
const (
	ValueDigitBytes = 3
	ValueScale      = 1000.0
	MaxMagnitude    = 999.999
)

// MeasuresPerDay is the fixed mode A cadence: 50 slots per device day,
// 25 per channel.
const MeasuresPerDay = 50

// PrintMode is the layout byte carried by every value record.
type PrintMode uint8

const (
	PrintModeC   PrintMode = 0
	PrintModeA10 PrintMode = 1
	PrintModeA2M PrintMode = 2
	PrintModeB1S PrintMode = 3
)

// Valid reports whether m is a print mode the device is known to emit.
func (m PrintMode) Valid() bool {
	return m <= PrintModeB1S
}

func (m PrintMode) String() string {
	switch m {
	case PrintModeC:
		return "C"
	case PrintModeA10:
		return "A 10S"
	case PrintModeA2M:
		return "A 2M"
	case PrintModeB1S:
		return "B 1S"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// RateMode is the capture-level rate label from the ESC 0 header.
type RateMode uint8

const (
	Rate10Sec RateMode = 0
	Rate2Min  RateMode = 1
	Rate1Sec  RateMode = 2
	RatePlain RateMode = 3
)

// Valid reports whether r is a known rate mode.
func (r RateMode) Valid() bool {
	return r <= RatePlain
}

func (r RateMode) String() string {
	switch r {
	case Rate10Sec:
		return "10 SEC RATE SEC/DAY"
	case Rate2Min:
		return "2 MIN RATE SEC/DAY"
	case Rate1Sec:
		return "1 SEC RATE SEC/DAY"
	case RatePlain:
		return "RATE SEC/DAY"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(r))
	}
}

// AcquisitionMode is the seconds/Hz bit of the flags byte.
type AcquisitionMode uint8

const (
	AcquireSeconds AcquisitionMode = 0
	AcquireHz      AcquisitionMode = AcquisitionMode(FlagAcquisitionHz)
)

func (a AcquisitionMode) String() string {
	switch a {
	case AcquireSeconds:
		return "Seconds"
	case AcquireHz:
		return "Hz"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}
