package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Engine kinds.
const (
	EngineCLI    = "cli"
	EngineNative = "native"
)

// CORS holds optional cross-origin settings for the HTTP server.
type CORS struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by Defaults.
type Config struct {
	Addr            string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir       string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	DefaultModel    string `json:"default_model" yaml:"default_model" toml:"default_model"`
	LoadBundled     bool   `json:"load_bundled" yaml:"load_bundled" toml:"load_bundled"`
	Engine          string `json:"engine" yaml:"engine" toml:"engine"`
	FastTextBin     string `json:"fasttext_bin" yaml:"fasttext_bin" toml:"fasttext_bin"`
	TempDir         string `json:"temp_dir" yaml:"temp_dir" toml:"temp_dir"`
	LogLevel        string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat       string `json:"log_format" yaml:"log_format" toml:"log_format"`
	NormalizeInput  bool   `json:"normalize_input" yaml:"normalize_input" toml:"normalize_input"`
	WatchModel      bool   `json:"watch_model" yaml:"watch_model" toml:"watch_model"`
	MaxBodyBytes    int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	TrainRatePerMin int    `json:"train_rate_per_min" yaml:"train_rate_per_min" toml:"train_rate_per_min"`
	CORS            CORS   `json:"cors" yaml:"cors" toml:"cors"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		Addr:            ":8080",
		ModelsDir:       "~/models/fasttext",
		Engine:          EngineCLI,
		LogLevel:        "info",
		LogFormat:       "json",
		MaxBodyBytes:    1 << 20,
		TrainRatePerMin: 2,
	}
}

// WithDefaults fills unset fields of c from Defaults.
func (c Config) WithDefaults() Config {
	d := Defaults()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = d.ModelsDir
	}
	if c.Engine == "" {
		c.Engine = d.Engine
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = d.LogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.TrainRatePerMin == 0 {
		c.TrainRatePerMin = d.TrainRatePerMin
	}
	return c
}

// Validate rejects values no component can act on.
func (c Config) Validate() error {
	switch c.Engine {
	case "", EngineCLI, EngineNative:
	default:
		return fmt.Errorf("unknown engine %q (want %s or %s)", c.Engine, EngineCLI, EngineNative)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// envPrefix namespaces environment overrides.
const envPrefix = "FTSERVE_"

// ApplyEnv overrides fields from FTSERVE_* environment variables. Invalid
// booleans and numbers are reported rather than ignored.
func (c Config) ApplyEnv() (Config, error) {
	str := map[string]*string{
		"ADDR":          &c.Addr,
		"MODELS_DIR":    &c.ModelsDir,
		"DEFAULT_MODEL": &c.DefaultModel,
		"ENGINE":        &c.Engine,
		"FASTTEXT_BIN":  &c.FastTextBin,
		"TEMP_DIR":      &c.TempDir,
		"LOG_LEVEL":     &c.LogLevel,
		"LOG_FORMAT":    &c.LogFormat,
	}
	for k, p := range str {
		if v, ok := os.LookupEnv(envPrefix + k); ok {
			*p = v
		}
	}
	bools := map[string]*bool{
		"LOAD_BUNDLED":    &c.LoadBundled,
		"NORMALIZE_INPUT": &c.NormalizeInput,
		"WATCH_MODEL":     &c.WatchModel,
		"CORS_ENABLED":    &c.CORS.Enabled,
	}
	for k, p := range bools {
		if v, ok := os.LookupEnv(envPrefix + k); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return c, fmt.Errorf("%s%s: %w", envPrefix, k, err)
			}
			*p = b
		}
	}
	if v, ok := os.LookupEnv(envPrefix + "TRAIN_RATE_PER_MIN"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c, fmt.Errorf("%sTRAIN_RATE_PER_MIN: %w", envPrefix, err)
		}
		c.TrainRatePerMin = n
	}
	if v, ok := os.LookupEnv(envPrefix + "MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c, fmt.Errorf("%sMAX_BODY_BYTES: %w", envPrefix, err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := os.LookupEnv(envPrefix + "CORS_ORIGINS"); ok {
		c.CORS.Origins = SplitCSV(v)
	}
	return c, nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, cfg.Validate()
}
