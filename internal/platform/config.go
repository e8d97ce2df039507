package platform

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"triage/pkg/engine"
	"triage/pkg/kb"
)

// KBConfig configures knowledge base loading.
type KBConfig struct {
	Dir      string   `yaml:"dir"`
	Patterns []string `yaml:"patterns"`
	Watch    bool     `yaml:"watch"`
}

// Config is the application configuration, loaded from a YAML file with
// defaults filled in for anything the file omits.
type Config struct {
	Addr           string            `yaml:"addr"`
	DataDir        string            `yaml:"data_dir"`
	UploadDir      string            `yaml:"upload_dir"`
	Adapter        string            `yaml:"adapter"` // fs | sqlite
	SQLitePath     string            `yaml:"sqlite_path"`
	KB             KBConfig          `yaml:"kb"`
	Weights        engine.Weights    `yaml:"weights"`
	Thresholds     engine.Thresholds `yaml:"thresholds"`
	MaxUploadBytes int64             `yaml:"max_upload_bytes"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Addr:       ":5000",
		DataDir:    "data/assessments",
		UploadDir:  "data/uploads",
		Adapter:    AdapterFS,
		SQLitePath: "data/triage.db",
		KB: KBConfig{
			Dir:      "kb",
			Patterns: kb.DefaultPatterns,
			Watch:    true,
		},
		Weights:        engine.DefaultWeights(),
		Thresholds:     engine.DefaultThresholds(),
		MaxUploadBytes: 5 << 20,
	}
}

// LoadConfig reads the YAML file at path over the defaults. A missing file
// is not an error; the defaults apply unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would misbehave at
// runtime rather than fail loudly.
func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterFS, AdapterSQLite:
	default:
		return fmt.Errorf("unknown adapter %q", c.Adapter)
	}

	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}

	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}
