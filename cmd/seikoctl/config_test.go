package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/danmuck/seikoctl/internal/cutoff"
)

func writeDefaults(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seikoctl.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write defaults file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeDefaults(t, `
orientation = "horizontal"
cutoff = "off"
output_dir = "out"
log_level = "warn"
`)
	cfg, err := loadDefaults(path)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Orientation != cutoff.Horizontal {
		t.Fatalf("expected horizontal, got %s", cfg.Orientation)
	}
	if cfg.Cutoff.Kind != cutoff.Disabled {
		t.Fatalf("expected disabled cutoff, got %+v", cfg.Cutoff)
	}
	if cfg.OutputDir != "out" {
		t.Fatalf("expected output dir out, got %q", cfg.OutputDir)
	}
	if !cfg.LogLevelSet || cfg.LogLevel != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %+v", cfg)
	}
}

func TestLoadDefaultsPartialFileKeepsBase(t *testing.T) {
	path := writeDefaults(t, `cutoff = "25"`)
	cfg, err := loadDefaults(path)
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.Orientation != cutoff.Vertical {
		t.Fatalf("expected base vertical orientation, got %s", cfg.Orientation)
	}
	if cfg.Cutoff.Kind != cutoff.Explicit || cfg.Cutoff.Value != 25 {
		t.Fatalf("expected explicit 25, got %+v", cfg.Cutoff)
	}
	if cfg.LogLevelSet {
		t.Fatalf("expected no log level from file")
	}
}

func TestLoadDefaultsRejectsUnknownValues(t *testing.T) {
	cases := []string{
		`orientation = "diagonal"`,
		`cutoff = "sometimes"`,
		`log_level = "shouty"`,
	}
	for _, body := range cases {
		if _, err := loadDefaults(writeDefaults(t, body)); err == nil {
			t.Fatalf("expected error for %q", body)
		}
	}
}

func TestParseArgsFlagsOverrideDefaults(t *testing.T) {
	opts, err := parseArgs([]string{"-i", "capture.bin", "-g", "-csv", "-horizontal", "-c", "10"})
	if err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if len(opts.inputs) != 1 || opts.inputs[0] != "capture.bin" {
		t.Fatalf("unexpected inputs: %v", opts.inputs)
	}
	if !opts.wantCSV || !opts.wantGraph {
		t.Fatalf("expected csv and graph requested")
	}
	if opts.orientation != cutoff.Horizontal {
		t.Fatalf("expected horizontal, got %s", opts.orientation)
	}
	if opts.cutoffReq.Kind != cutoff.Explicit || opts.cutoffReq.Value != 10 {
		t.Fatalf("expected explicit cutoff 10, got %+v", opts.cutoffReq)
	}
}

func TestParseArgsRequiresInput(t *testing.T) {
	if _, err := parseArgs([]string{"-csv"}); err == nil {
		t.Fatalf("expected missing input error")
	}
}

func TestParseArgsBatchInputs(t *testing.T) {
	opts, err := parseArgs([]string{"-i", "a.bin", "b.bin", "c.bin"})
	if err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if len(opts.inputs) != 3 {
		t.Fatalf("expected 3 inputs, got %v", opts.inputs)
	}
}

func TestParseArgsHelp(t *testing.T) {
	if _, err := parseArgs([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
}

func TestParseArgsOrientationConflict(t *testing.T) {
	if _, err := parseArgs([]string{"-i", "a.bin", "-horizontal", "-vertical"}); err == nil {
		t.Fatalf("expected orientation conflict error")
	}
}
