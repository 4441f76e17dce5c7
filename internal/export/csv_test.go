package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/danmuck/seikoctl/internal/cutoff"
	"github.com/danmuck/seikoctl/internal/decode"
	"github.com/danmuck/seikoctl/internal/logging"
	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

func init() {
	logging.ConfigureTests()
}

func TestWriteCSV(t *testing.T) {
	s := &session.Session{
		RateMode:     protocol.Rate10Sec,
		RateModeSeen: true,
		Measurements: []session.Measurement{
			{SequenceIndex: 0, Channel: session.Tick, Value: 10.0, Status: session.Original},
			{SequenceIndex: 1, Channel: session.Tock, Value: -9.8, Status: session.CorrectedError},
			{SequenceIndex: 2, Channel: session.Tick, Value: 80.0, Status: session.Outlier},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	want := strings.Join([]string{
		"index,channel,10 SEC RATE SEC/DAY,status",
		"0,tick,10.000,original",
		"1,tock,-9.800,corrected",
		"2,tick,80.000,outlier",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSVTimestamped(t *testing.T) {
	s := &session.Session{
		RateMode:    protocol.RatePlain,
		Timestamped: true,
		Measurements: []session.Measurement{
			{SequenceIndex: 0, Channel: session.Tick, Value: 1.5, Status: session.Original, Timestamp: "01:02:03"},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	want := "index,timestamp,channel,RATE SEC/DAY,status\n" +
		"0,01:02:03,tick,1.500,original\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv:\n%s", buf.String())
	}
}

// The export is a pure function of the session: planning any cutoff
// before or after must not change a byte of it.
func TestWriteCSVIndependentOfCutoff(t *testing.T) {
	raw := protocol.NewCaptureBuilder(protocol.PrintModeB1S).
		Value(10.0).Value(9.8).Error(false).Value(10.2).Value(9.9).
		Bytes()
	s, err := decode.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var before bytes.Buffer
	if err := WriteCSV(&before, s); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	for _, req := range []cutoff.Request{
		{Kind: cutoff.Auto},
		{Kind: cutoff.Disabled},
		{Kind: cutoff.Explicit, Value: 10},
	} {
		for _, o := range []cutoff.Orientation{cutoff.Vertical, cutoff.Horizontal} {
			if _, err := cutoff.Plan(s, o, req); err != nil {
				t.Fatalf("plan: %v", err)
			}
			var after bytes.Buffer
			if err := WriteCSV(&after, s); err != nil {
				t.Fatalf("write csv: %v", err)
			}
			if !bytes.Equal(before.Bytes(), after.Bytes()) {
				t.Fatalf("csv changed under cutoff %+v orientation %s", req, o)
			}
		}
	}
}

// Re-decoding the exported values as a fresh capture must show no
// corrected slots: correction happened once, the export carries plain
// numbers.
func TestCSVRoundTripHasNoCorrectedSlots(t *testing.T) {
	raw := protocol.NewCaptureBuilder(protocol.PrintModeB1S).
		Value(10.0).Value(9.8).Value(10.2).Value(9.9).
		Error(false).
		Value(10.1).Value(9.7).
		Bytes()
	s, err := decode.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.StatusCounts()[session.CorrectedError] != 1 {
		t.Fatalf("fixture must contain one corrected slot")
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv back: %v", err)
	}

	rebuilt := protocol.NewCaptureBuilder(protocol.PrintModeB1S)
	for _, rec := range records[1:] {
		v, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			t.Fatalf("parse exported value %q: %v", rec[2], err)
		}
		rebuilt.Value(v)
	}

	again, err := decode.Decode(rebuilt.Bytes())
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if len(again.Measurements) != len(s.Measurements) {
		t.Fatalf("slot count changed across round trip")
	}
	if n := again.StatusCounts()[session.CorrectedError]; n != 0 {
		t.Fatalf("expected zero corrected slots after round trip, got %d", n)
	}
}
