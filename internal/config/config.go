package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file, looked up in the
// project root.
const FileName = ".reqtxt.yaml"

const (
	defaultOutput   = "requirements.txt"
	defaultLogLevel = "info"
)

// Config controls a generator run. Every field is optional; zero
// values fall back to the defaults.
type Config struct {
	// Output is the manifest path, relative to the project root.
	Output string `yaml:"output"`
	// Model overrides the Gemini model for AI-driven inference.
	Model string `yaml:"model"`
	// Exclude lists extra directory names to skip while walking.
	Exclude []string `yaml:"exclude"`
	// NameMap adds import-to-package entries on top of the built-in
	// table. Entries here win over the built-ins.
	NameMap map[string]string `yaml:"name_map"`
	// Tools lists extra known tools to pin when installed.
	Tools   []string `yaml:"tools"`
	Logging Logging  `yaml:"logging"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func Default() *Config {
	return &Config{
		Output: defaultOutput,
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}

// Load reads FileName from the project root. A missing file is not an
// error; the defaults are returned.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("no %s found, using defaults", FileName)
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Output == "" {
		cfg.Output = defaultOutput
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	logrus.Debugf("loaded config from %s", path)
	return cfg, nil
}
