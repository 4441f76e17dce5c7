package decode

import (
	"testing"

	"github.com/danmuck/seikoctl/internal/logging"
	"github.com/danmuck/seikoctl/internal/protocol"
	"github.com/danmuck/seikoctl/internal/session"
)

func init() {
	logging.ConfigureTests()
}

func mustTokenize(t *testing.T, raw []byte) *protocol.TokenStream {
	t.Helper()
	ts, err := protocol.Tokenize(raw)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	return ts
}

func TestClassifyByPrintModeBytes(t *testing.T) {
	cases := []struct {
		name      string
		printMode protocol.PrintMode
		want      session.Mode
	}{
		{"A 10S", protocol.PrintModeA10, session.ModeA},
		{"A 2M", protocol.PrintModeA2M, session.ModeA},
		{"B 1S", protocol.PrintModeB1S, session.ModeB},
		{"C", protocol.PrintModeC, session.ModeB},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := protocol.NewCaptureBuilder(tc.printMode).
				Value(10.0).Value(-9.8).EndLine().
				Value(10.1).Value(-9.9).EndLine().
				Bytes()
			cls := Classify(mustTokenize(t, raw))
			if cls.Mode != tc.want {
				t.Fatalf("expected mode %s, got %s", tc.want, cls.Mode)
			}
			if cls.PrintMode != tc.printMode {
				t.Fatalf("expected print mode %s, got %s", tc.printMode, cls.PrintMode)
			}
			if cls.Fallback {
				t.Fatalf("unexpected fallback classification")
			}
			if cls.SlotsPerLine != 2 {
				t.Fatalf("expected 2 slots per line, got %d", cls.SlotsPerLine)
			}
		})
	}
}

func TestClassifyStructuralModeA(t *testing.T) {
	// Mixed print-mode bytes force structural analysis: fixed line
	// geometry plus consistent sign alternation reads as mode A.
	raw := append(
		protocol.NewCaptureBuilder(protocol.PrintModeA10).Value(10.0).Value(-9.8).EndLine().Bytes(),
		protocol.NewCaptureBuilder(protocol.PrintModeA2M).Value(10.1).Value(-9.9).EndLine().Bytes()...,
	)
	cls := Classify(mustTokenize(t, raw))
	if cls.Mode != session.ModeA {
		t.Fatalf("expected mode A, got %s", cls.Mode)
	}
	if cls.Fallback {
		t.Fatalf("unexpected fallback classification")
	}
}

func TestClassifyStructuralModeB(t *testing.T) {
	// Broken sign alternation with enough slots reads as mode B.
	raw := append(
		protocol.NewCaptureBuilder(protocol.PrintModeB1S).Value(10.0).Value(10.1).EndLine().Bytes(),
		protocol.NewCaptureBuilder(protocol.PrintModeA10).Value(10.2).Value(10.0).EndLine().Bytes()...,
	)
	cls := Classify(mustTokenize(t, raw))
	if cls.Mode != session.ModeB {
		t.Fatalf("expected mode B, got %s", cls.Mode)
	}
	if cls.Fallback {
		t.Fatalf("unexpected fallback classification")
	}
}

func TestClassifyIrregularLinesReportLongest(t *testing.T) {
	// Varying line lengths are legal in mode B; the reported width is
	// the longest line, never zero.
	raw := protocol.NewCaptureBuilder(protocol.PrintModeB1S).
		Value(10.0).Value(10.1).EndLine().
		Value(10.2).Value(10.0).Value(10.1).EndLine().
		Bytes()
	cls := Classify(mustTokenize(t, raw))
	if cls.Mode != session.ModeB {
		t.Fatalf("expected mode B, got %s", cls.Mode)
	}
	if cls.SlotsPerLine != 3 {
		t.Fatalf("expected longest line 3, got %d", cls.SlotsPerLine)
	}
	if cls.Fallback {
		t.Fatalf("unexpected fallback classification")
	}
}

func TestClassifyFallbackOnShortAmbiguousStream(t *testing.T) {
	// Two slots with disagreeing print-mode bytes satisfy neither
	// signature: documented best-effort fallback to mode B.
	raw := append(
		protocol.NewCaptureBuilder(protocol.PrintModeA10).Value(10.0).Bytes(),
		protocol.NewCaptureBuilder(protocol.PrintModeB1S).Value(9.9).Bytes()...,
	)
	cls := Classify(mustTokenize(t, raw))
	if cls.Mode != session.ModeB {
		t.Fatalf("expected fallback mode B, got %s", cls.Mode)
	}
	if !cls.Fallback {
		t.Fatalf("expected fallback classification to be flagged")
	}
}
