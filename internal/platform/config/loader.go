package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config.yaml"
	DefaultEnvFile    = ".env"
)

// Loader builds a Config from an optional YAML file, an optional .env file
// and the process environment, in increasing precedence.
type Loader struct {
	configPath string
	required   bool
	envFile    string
	lookup     func(string) (string, bool)
}

// NewLoader treats an empty path as the default config path, which may be
// absent. An explicit path must exist.
func NewLoader(configPath string) *Loader {
	required := true
	if configPath == "" {
		configPath = DefaultConfigPath
		required = false
	}
	return &Loader{configPath: configPath, required: required, lookup: os.LookupEnv}
}

func (l *Loader) WithEnvFile(path string) *Loader {
	l.envFile = path
	return l
}

func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	l.lookup = lookup
	return l
}

func (l *Loader) Load() (*Config, error) {
	if l.envFile != "" {
		if err := godotenv.Load(l.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, NewEnvFileError(l.envFile, err)
		}
	}
	cfg := NewConfig()
	c, err := os.ReadFile(l.configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(c, cfg); err != nil {
			return nil, NewParseError(l.configPath, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !l.required:
	default:
		return nil, NewReadError(l.configPath, err)
	}
	if err := cfg.ApplyEnv(l.lookup); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) getConfigPath() string {
	return l.configPath
}
