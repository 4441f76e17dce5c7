package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/danmuck/seikoctl/internal/cutoff"
	"github.com/danmuck/seikoctl/internal/logging"
)

// runDefaults are the resolved settings a defaults file can provide.
// Flags set on the command line always win over the file.
type runDefaults struct {
	Orientation cutoff.Orientation
	Cutoff      cutoff.Request
	OutputDir   string
	LogLevel    zerolog.Level
	LogLevelSet bool
}

type fileConfig struct {
	Orientation string `toml:"orientation"`
	Cutoff      string `toml:"cutoff"`
	OutputDir   string `toml:"output_dir"`
	LogLevel    string `toml:"log_level"`
}

func baseDefaults() runDefaults {
	return runDefaults{
		Orientation: cutoff.Vertical,
		Cutoff:      cutoff.Request{Kind: cutoff.Auto},
	}
}

func loadDefaults(path string) (runDefaults, error) {
	cfg := baseDefaults()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return runDefaults{}, fmt.Errorf("load defaults (%s): %w", path, err)
	}

	if meta.IsDefined("orientation") {
		o, err := parseOrientation(raw.Orientation)
		if err != nil {
			return runDefaults{}, err
		}
		cfg.Orientation = o
	}

	if meta.IsDefined("cutoff") {
		req, err := cutoff.ParseRequest(raw.Cutoff)
		if err != nil {
			return runDefaults{}, err
		}
		cfg.Cutoff = req
	}

	if meta.IsDefined("output_dir") {
		cfg.OutputDir = strings.TrimSpace(raw.OutputDir)
	}

	if meta.IsDefined("log_level") {
		lvl, ok := logging.ParseLevel(raw.LogLevel)
		if !ok {
			return runDefaults{}, fmt.Errorf("unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = lvl
		cfg.LogLevelSet = true
	}

	return cfg, nil
}

func parseOrientation(raw string) (cutoff.Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "vertical":
		return cutoff.Vertical, nil
	case "horizontal":
		return cutoff.Horizontal, nil
	default:
		return cutoff.Vertical, fmt.Errorf("unknown orientation %q", raw)
	}
}
