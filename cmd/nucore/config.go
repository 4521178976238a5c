package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"nucore/internal/plugin"
	"nucore/internal/trace"
)

const configFileName = "nucore.toml"

// fileConfig mirrors nucore.toml. Every table is optional.
type fileConfig struct {
	Output outputConfig `toml:"output"`
	Wire   wireConfig   `toml:"wire"`
	Trace  traceConfig  `toml:"trace"`
}

type outputConfig struct {
	Color          string `toml:"color"`
	Width          int    `toml:"width"`
	Format         string `toml:"format"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
}

type wireConfig struct {
	Codec string `toml:"codec"`
	Lift  bool   `toml:"lift"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// settings is the effective configuration: flags override nucore.toml,
// which overrides built-in defaults.
type settings struct {
	ConfigPath     string
	Color          string
	Width          int
	Format         string
	MaxDiagnostics int
	Codec          string
	Lift           bool
	Trace          traceConfig
}

func defaultSettings() settings {
	return settings{
		Color:          "auto",
		Width:          80,
		Format:         "pretty",
		MaxDiagnostics: 100,
		Codec:          "msgpack",
		Trace:          traceConfig{Level: "off", Mode: "stream"},
	}
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads path on top of base. Keys absent from the file keep
// their base value; unknown keys are an error.
func loadConfig(path string, base settings) (settings, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return base, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return base, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	s := base
	s.ConfigPath = path
	if meta.IsDefined("output", "color") {
		s.Color = strings.TrimSpace(cfg.Output.Color)
	}
	if meta.IsDefined("output", "width") {
		s.Width = cfg.Output.Width
	}
	if meta.IsDefined("output", "format") {
		s.Format = strings.TrimSpace(cfg.Output.Format)
	}
	if meta.IsDefined("output", "max_diagnostics") {
		s.MaxDiagnostics = cfg.Output.MaxDiagnostics
	}
	if meta.IsDefined("wire", "codec") {
		s.Codec = strings.TrimSpace(cfg.Wire.Codec)
	}
	if meta.IsDefined("wire", "lift") {
		s.Lift = cfg.Wire.Lift
	}
	if meta.IsDefined("trace", "level") {
		s.Trace.Level = strings.TrimSpace(cfg.Trace.Level)
	}
	if meta.IsDefined("trace", "mode") {
		s.Trace.Mode = strings.TrimSpace(cfg.Trace.Mode)
	}
	if meta.IsDefined("trace", "output") {
		s.Trace.Output = cfg.Trace.Output
	}
	if err := s.validate(); err != nil {
		return base, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (s settings) validate() error {
	if !slices.Contains([]string{"auto", "on", "off"}, s.Color) {
		return fmt.Errorf("invalid color %q (expected auto|on|off)", s.Color)
	}
	if !slices.Contains([]string{"pretty", "json"}, s.Format) {
		return fmt.Errorf("invalid format %q (expected pretty|json)", s.Format)
	}
	if s.Width < 8 {
		return fmt.Errorf("width must be at least 8, got %d", s.Width)
	}
	if s.MaxDiagnostics <= 0 {
		return fmt.Errorf("max_diagnostics must be positive, got %d", s.MaxDiagnostics)
	}
	if _, err := plugin.CodecByName(s.Codec); err != nil {
		return err
	}
	if _, err := trace.ParseLevel(s.Trace.Level); err != nil {
		return err
	}
	if _, err := trace.ParseMode(s.Trace.Mode); err != nil {
		return err
	}
	return nil
}

// resolveSettings merges defaults, nucore.toml and the flags that were set
// explicitly on the command line.
func resolveSettings(cmd *cobra.Command) (settings, error) {
	s := defaultSettings()
	pf := cmd.Root().PersistentFlags()

	path, err := pf.GetString("config")
	if err != nil {
		return s, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		found, ok, err := findConfig(".")
		if err != nil {
			return s, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if s, err = loadConfig(path, s); err != nil {
			return s, err
		}
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"color", &s.Color},
		{"trace", &s.Trace.Output},
		{"trace-level", &s.Trace.Level},
		{"trace-mode", &s.Trace.Mode},
	}
	for _, f := range stringFlags {
		if !pf.Changed(f.name) {
			continue
		}
		if *f.dst, err = pf.GetString(f.name); err != nil {
			return s, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}
	if pf.Changed("max-diagnostics") {
		if s.MaxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
			return s, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}

	// флаги подкоманды
	flags := cmd.Flags()
	if f := flags.Lookup("codec"); f != nil && f.Changed {
		s.Codec = f.Value.String()
	}
	if f := flags.Lookup("format"); f != nil && f.Changed {
		s.Format = strings.ToLower(f.Value.String())
	}
	if f := flags.Lookup("width"); f != nil && f.Changed {
		if s.Width, err = flags.GetInt("width"); err != nil {
			return s, fmt.Errorf("failed to get width flag: %w", err)
		}
	}
	if f := flags.Lookup("lift"); f != nil && f.Changed {
		if s.Lift, err = flags.GetBool("lift"); err != nil {
			return s, fmt.Errorf("failed to get lift flag: %w", err)
		}
	}
	return s, s.validate()
}

// useColor decides colouring for output written to f.
func (s settings) useColor(f *os.File) bool {
	return s.Color == "on" || (s.Color == "auto" && isTerminal(f))
}
