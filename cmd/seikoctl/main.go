// seikoctl converts raw print captures from the Seiko QT-2100
// timegrapher into CSV tables and timegrapher-style charts.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/seikoctl/internal/cutoff"
	"github.com/danmuck/seikoctl/internal/decode"
	"github.com/danmuck/seikoctl/internal/export"
	"github.com/danmuck/seikoctl/internal/logging"
	"github.com/danmuck/seikoctl/internal/render"
	"github.com/danmuck/seikoctl/internal/session"
)

const version = "0.1.0"

type options struct {
	inputs      []string
	output      string
	outputDir   string
	wantCSV     bool
	wantGraph   bool
	orientation cutoff.Orientation
	cutoffReq   cutoff.Request
	debug       bool
}

func main() {
	logging.ConfigureRuntime()

	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "seikoctl: %v\n", err)
		os.Exit(2)
	}
	if opts == nil { // --version
		os.Exit(0)
	}

	// Each input runs as an isolated conversion; one bad capture never
	// stops its siblings.
	failed := 0
	for _, input := range opts.inputs {
		if err := runFile(input, opts); err != nil {
			log.Error().Err(err).Str("input", input).Msg("conversion failed")
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("seikoctl", flag.ContinueOnError)

	var (
		input       string
		output      string
		wantCSV     bool
		wantGraph   bool
		horizontal  bool
		vertical    bool
		cutoffRaw   string
		debug       bool
		verbose     bool
		showVersion bool
		configPath  string
	)
	fs.StringVar(&input, "i", "", "raw file from device")
	fs.StringVar(&input, "input", "", "raw file from device")
	fs.StringVar(&output, "o", "", "generated file base name")
	fs.StringVar(&output, "output", "", "generated file base name")
	fs.BoolVar(&wantCSV, "csv", false, "extract the parsed values into a CSV file")
	fs.BoolVar(&wantGraph, "g", false, "extract the parsed values into a timegrapher style chart")
	fs.BoolVar(&wantGraph, "graph", false, "extract the parsed values into a timegrapher style chart")
	fs.BoolVar(&horizontal, "horizontal", false, "wrap the day axis instead of clipping values")
	fs.BoolVar(&vertical, "vertical", false, "clip values at the cutoff (default)")
	fs.StringVar(&cutoffRaw, "c", "", "cutoff: auto, off, or a positive number")
	fs.StringVar(&cutoffRaw, "cutoff", "", "cutoff: auto, off, or a positive number")
	fs.BoolVar(&debug, "d", false, "print the session summary and debug logs")
	fs.BoolVar(&debug, "debug", false, "print the session summary and debug logs")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&showVersion, "version", false, "print version and exit")
	fs.StringVar(&configPath, "config", "", "optional TOML defaults file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Printf("seikoctl %s\n", version)
		return nil, nil
	}

	defaults := baseDefaults()
	if configPath != "" {
		var err error
		defaults, err = loadDefaults(configPath)
		if err != nil {
			return nil, err
		}
	}

	opts := &options{
		output:      output,
		outputDir:   defaults.OutputDir,
		wantCSV:     wantCSV,
		wantGraph:   wantGraph,
		orientation: defaults.Orientation,
		cutoffReq:   defaults.Cutoff,
		debug:       debug,
	}

	if input != "" {
		opts.inputs = append(opts.inputs, input)
	}
	opts.inputs = append(opts.inputs, fs.Args()...)
	if len(opts.inputs) == 0 {
		return nil, fmt.Errorf("input file is required (-i)")
	}

	if horizontal && vertical {
		return nil, fmt.Errorf("choose one of -horizontal or -vertical")
	}
	if horizontal {
		opts.orientation = cutoff.Horizontal
	} else if vertical {
		opts.orientation = cutoff.Vertical
	}

	if cutoffRaw != "" {
		req, err := cutoff.ParseRequest(cutoffRaw)
		if err != nil {
			return nil, err
		}
		opts.cutoffReq = req
	}

	switch {
	case verbose || debug:
		logging.SetLevel(zerolog.DebugLevel)
	case defaults.LogLevelSet:
		logging.SetLevel(defaults.LogLevel)
	}

	return opts, nil
}

func runFile(input string, opts *options) error {
	raw, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}

	s, err := decode.Decode(raw)
	if err != nil {
		return err
	}

	if opts.debug {
		printSummary(os.Stdout, input, s)
	}

	base := outputBase(input, opts)

	if opts.wantCSV {
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, s); err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
		if err := writeArtifact(base+".csv", buf.Bytes()); err != nil {
			return err
		}
	}

	if opts.wantGraph {
		spec, err := cutoff.Plan(s, opts.orientation, opts.cutoffReq)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render.Graph(&buf, s, spec); err != nil {
			return fmt.Errorf("graph render: %w", err)
		}
		if err := writeArtifact(base+".png", buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// writeArtifact writes a fully assembled artifact in one shot; failed
// conversions never leave partial files behind.
func writeArtifact(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	log.Info().Str("path", path).Int("bytes", len(data)).Msg("artifact written")
	return nil
}

func outputBase(input string, opts *options) string {
	base := opts.output
	if base == "" || len(opts.inputs) > 1 {
		stem := filepath.Base(input)
		base = strings.TrimSuffix(stem, filepath.Ext(stem))
	}
	if opts.outputDir != "" && !filepath.IsAbs(base) {
		base = filepath.Join(opts.outputDir, base)
	}
	return base
}

func printSummary(w *os.File, input string, s *session.Session) {
	counts := s.StatusCounts()
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "capture\t%s\n", input)
	fmt.Fprintf(tw, "print mode\t%s\n", s.PrintMode)
	fmt.Fprintf(tw, "mode\t%s\n", s.Mode)
	if s.RateModeSeen {
		fmt.Fprintf(tw, "rate mode\t%s\n", s.RateMode)
	}
	fmt.Fprintf(tw, "acquisition\t%s\n", s.Acquisition)
	fmt.Fprintf(tw, "slots per line\t%d\n", s.SlotsPerLine)
	fmt.Fprintf(tw, "measurements\t%d\n", len(s.Measurements))
	fmt.Fprintf(tw, "corrected\t%d\n", counts[session.CorrectedError])
	fmt.Fprintf(tw, "outliers\t%d\n", counts[session.Outlier])
	if s.FallbackClassified {
		fmt.Fprintf(tw, "classification\tfallback to mode B\n")
	}
	tw.Flush()
}
