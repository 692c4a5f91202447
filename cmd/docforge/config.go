package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	docforge "github.com/alnah/go-docforge"
	"github.com/alnah/go-docforge/internal/yamlutil"
)

// Sentinel errors for configuration loading.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("config file parse failed")
)

// defaultConfigName is probed in the working directory when no config
// is named explicitly.
const defaultConfigName = "docforge.yaml"

// fileConfig mirrors the YAML configuration file. Unknown keys are
// rejected so typos surface immediately.
type fileConfig struct {
	InputDir     string `yaml:"input_dir"`
	OutputDir    string `yaml:"output_dir"`
	Format       string `yaml:"format"`
	TemplatePath string `yaml:"template"`
	Workers      int    `yaml:"workers"`
	Timeout      string `yaml:"timeout"`
	Interval     string `yaml:"interval"`
	MinFreeMB    int    `yaml:"min_free_mb"`
	Listen       string `yaml:"listen"`
	RedisAddr    string `yaml:"redis"`
	PidFile      string `yaml:"pid_file"`
}

// settings is the fully resolved runtime configuration, merged from
// defaults, config file, environment, and flags (highest wins).
type settings struct {
	InputDir     string
	OutputDir    string
	Format       docforge.Format
	TemplatePath string
	Force        bool
	Workers      int
	Timeout      time.Duration
	Interval     time.Duration
	MinFreeBytes uint64
	Listen       string
	RedisAddr    string
	PidFile      string
	Verbose      bool
	Quiet        bool
	JSONOut      bool
}

func defaultSettings() settings {
	return settings{
		InputDir:     "input",
		OutputDir:    "output",
		Format:       docforge.FormatPDF,
		Timeout:      docforge.DefaultTimeout,
		Interval:     time.Minute,
		MinFreeBytes: docforge.DefaultMinFreeBytes,
		PidFile:      "output/docforge.pid",
	}
}

// loadFileConfig reads and parses a YAML config. An explicitly named
// file must exist; the default probe tolerates absence.
func loadFileConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if path == "" {
		path = os.Getenv("DOCFORGE_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigName
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-selected config path
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	var cfg fileConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return &cfg, nil
}

// resolveSettings merges defaults, the config file, environment
// variables, and flags into one settings value.
func resolveSettings(f *cliFlags) (settings, error) {
	s := defaultSettings()

	cfg, err := loadFileConfig(f.common.config)
	if err != nil {
		return s, err
	}
	applyFileConfig(&s, cfg)
	applyEnv(&s)
	if err := applyFlags(&s, f); err != nil {
		return s, err
	}

	switch s.Format {
	case docforge.FormatPDF, docforge.FormatDocx, docforge.FormatHTML:
	default:
		return s, fmt.Errorf("%w: %s", docforge.ErrUnsupportedFormat, s.Format)
	}
	return s, nil
}

func applyFileConfig(s *settings, cfg *fileConfig) {
	if cfg.InputDir != "" {
		s.InputDir = cfg.InputDir
	}
	if cfg.OutputDir != "" {
		s.OutputDir = cfg.OutputDir
	}
	if cfg.Format != "" {
		s.Format = docforge.Format(cfg.Format)
	}
	if cfg.TemplatePath != "" {
		s.TemplatePath = cfg.TemplatePath
	}
	if cfg.Workers > 0 {
		s.Workers = cfg.Workers
	}
	if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
		s.Timeout = d
	}
	if d, err := time.ParseDuration(cfg.Interval); err == nil && d > 0 {
		s.Interval = d
	}
	if cfg.MinFreeMB > 0 {
		s.MinFreeBytes = uint64(cfg.MinFreeMB) << 20
	}
	if cfg.Listen != "" {
		s.Listen = cfg.Listen
	}
	if cfg.RedisAddr != "" {
		s.RedisAddr = cfg.RedisAddr
	}
	if cfg.PidFile != "" {
		s.PidFile = cfg.PidFile
	}
}

// applyEnv overlays DOCFORGE_* environment variables. PANDOC_TIMEOUT is
// honored for compatibility with existing deployments, in whole seconds.
func applyEnv(s *settings) {
	if v := os.Getenv("DOCFORGE_INPUT_DIR"); v != "" {
		s.InputDir = v
	}
	if v := os.Getenv("DOCFORGE_OUTPUT_DIR"); v != "" {
		s.OutputDir = v
	}
	if v := os.Getenv("DOCFORGE_TEMPLATE"); v != "" {
		s.TemplatePath = v
	}
	if v := os.Getenv("DOCFORGE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Workers = n
		}
	}
	if v := os.Getenv("DOCFORGE_REDIS"); v != "" {
		s.RedisAddr = v
	}
	if v := os.Getenv("PANDOC_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.Timeout = time.Duration(n) * time.Second
		}
	}
}

func applyFlags(s *settings, f *cliFlags) error {
	if f.io.input != "" {
		s.InputDir = f.io.input
	}
	if f.io.output != "" {
		s.OutputDir = f.io.output
	}
	if f.io.format != "" {
		s.Format = docforge.Format(f.io.format)
	}
	if f.io.template != "" {
		s.TemplatePath = f.io.template
	}
	if f.io.workers > 0 {
		s.Workers = f.io.workers
	}
	if f.io.timeout != "" {
		d, err := time.ParseDuration(f.io.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid --timeout %q", f.io.timeout)
		}
		s.Timeout = d
	}
	if f.service.interval != "" {
		d, err := time.ParseDuration(f.service.interval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid --interval %q", f.service.interval)
		}
		s.Interval = d
	}
	if f.service.pidFile != "" {
		s.PidFile = f.service.pidFile
	}
	if f.service.listen != "" {
		s.Listen = f.service.listen
	}
	if f.service.redis != "" {
		s.RedisAddr = f.service.redis
	}
	s.Force = f.io.force
	s.Verbose = f.common.verbose
	s.Quiet = f.common.quiet
	s.JSONOut = f.jsonOut
	return nil
}
