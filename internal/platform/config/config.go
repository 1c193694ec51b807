package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "trafficwatch/internal/platform/errors"
)

type Config struct {
	Provider      ProviderConfig      `yaml:"provider"`
	Route         RouteConfig         `yaml:"route"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Storage       StorageConfig       `yaml:"storage"`
	Visualization VisualizationConfig `yaml:"visualization"`
	Logging       LoggingConfig       `yaml:"logging"`
	Server        ServerConfig        `yaml:"server"`
}

type ProviderConfig struct {
	BaseURL string        `yaml:"base_url"`
	Key     string        `yaml:"key"`
	Timeout time.Duration `yaml:"timeout"`
}

type RouteConfig struct {
	Origin      string `yaml:"origin"`
	Destination string `yaml:"destination"`
	Strategy    int    `yaml:"strategy"`
}

type ScheduleConfig struct {
	Cadence  time.Duration `yaml:"cadence"`
	Timezone string        `yaml:"timezone"`
}

type StorageConfig struct {
	HistoryFile string `yaml:"history_file"`
	Format      string `yaml:"format"`
	IndexDB     string `yaml:"index_db"`
}

type VisualizationConfig struct {
	Dir    string  `yaml:"dir"`
	Latest string  `yaml:"latest"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	DPI    int     `yaml:"dpi"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	JSON  bool   `yaml:"json"`
}

type ServerConfig struct {
	HTTPAddr    string `yaml:"http_addr"`
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

const (
	DefaultBaseURL     = "https://restapi.amap.com/v3"
	DefaultTimeout     = 10 * time.Second
	DefaultStrategy    = 10
	DefaultCadence     = time.Minute
	DefaultHistoryFile = "data/hourly_durations.json"
	DefaultIndexDB     = "data/history.db"
	DefaultVisualDir   = "visualizations"
	DefaultLatestImage = "latest.png"
	DefaultWidthInch   = 12
	DefaultHeightInch  = 6
	DefaultDPI         = 300
	DefaultLogLevel    = "INFO"
	DefaultLogFile     = "traffic_monitor.log"
	DefaultHTTPAddr    = ":8000"
	DefaultGRPCAddr    = ":9000"

	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// Environment variables that override file settings.
const (
	EnvAPIKey      = "AMAP_API_KEY"
	EnvBaseURL     = "AMAP_API_BASE_URL"
	EnvOrigin      = "DEFAULT_ORIGIN"
	EnvDestination = "DEFAULT_DESTINATION"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFile     = "LOG_FILE"
	EnvCadence     = "TRAFFICWATCH_CADENCE"
	EnvTimezone    = "TRAFFICWATCH_TIMEZONE"
)

func NewConfig() *Config {
	return &Config{}
}

// ApplyEnv overlays values found through lookup onto c.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	strs := []struct {
		name string
		dst  *string
	}{
		{EnvAPIKey, &c.Provider.Key},
		{EnvBaseURL, &c.Provider.BaseURL},
		{EnvOrigin, &c.Route.Origin},
		{EnvDestination, &c.Route.Destination},
		{EnvLogLevel, &c.Logging.Level},
		{EnvLogFile, &c.Logging.File},
		{EnvTimezone, &c.Schedule.Timezone},
	}
	for _, s := range strs {
		if v, ok := lookup(s.name); ok && strings.TrimSpace(v) != "" {
			*s.dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup(EnvCadence); ok && strings.TrimSpace(v) != "" {
		cadence, err := parseCadence(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrInvalidConfig, EnvCadence, err)
		}
		c.Schedule.Cadence = cadence
	}
	return nil
}

// parseCadence accepts Go durations plus the words "minute" and "hour".
func parseCadence(v string) (time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "minute", "minutely":
		return time.Minute, nil
	case "hour", "hourly":
		return time.Hour, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults() {
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = DefaultBaseURL
	}
	c.Provider.BaseURL = strings.TrimRight(c.Provider.BaseURL, "/")
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = DefaultTimeout
	}
	if c.Route.Strategy == 0 {
		c.Route.Strategy = DefaultStrategy
	}
	if c.Schedule.Cadence == 0 {
		c.Schedule.Cadence = DefaultCadence
	}
	if c.Storage.HistoryFile == "" {
		c.Storage.HistoryFile = DefaultHistoryFile
	}
	if c.Storage.Format == "" {
		c.Storage.Format = FormatJSON
	}
	c.Storage.Format = strings.ToLower(c.Storage.Format)
	if c.Storage.IndexDB == "" {
		c.Storage.IndexDB = DefaultIndexDB
	}
	if c.Visualization.Dir == "" {
		c.Visualization.Dir = DefaultVisualDir
	}
	if c.Visualization.Latest == "" {
		c.Visualization.Latest = DefaultLatestImage
	}
	if c.Visualization.Width == 0 {
		c.Visualization.Width = DefaultWidthInch
	}
	if c.Visualization.Height == 0 {
		c.Visualization.Height = DefaultHeightInch
	}
	if c.Visualization.DPI == 0 {
		c.Visualization.DPI = DefaultDPI
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}
}

// Validate checks structural settings. Provider credentials are checked by
// ValidateMonitor because read-only commands run without them.
func (c *Config) Validate() error {
	if c.Schedule.Cadence <= 0 {
		return fmt.Errorf("%w: schedule cadence (%v) must be positive", apperrors.ErrInvalidConfig, c.Schedule.Cadence)
	}
	if (24*time.Hour)%c.Schedule.Cadence != 0 {
		return fmt.Errorf("%w: schedule cadence (%v) must divide 24h", apperrors.ErrInvalidConfig, c.Schedule.Cadence)
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("%w: provider timeout (%v) must be positive", apperrors.ErrInvalidConfig, c.Provider.Timeout)
	}
	if c.Provider.Timeout > c.Schedule.Cadence {
		return fmt.Errorf("%w: provider timeout (%v) must be <= schedule cadence (%v)",
			apperrors.ErrInvalidConfig, c.Provider.Timeout, c.Schedule.Cadence)
	}
	if _, err := url.ParseRequestURI(c.Provider.BaseURL); err != nil {
		return fmt.Errorf("%w: provider base_url %q: %v", apperrors.ErrInvalidConfig, c.Provider.BaseURL, err)
	}
	if c.Storage.Format != FormatJSON && c.Storage.Format != FormatJSONL {
		return fmt.Errorf("%w: storage format %q must be %s or %s", apperrors.ErrInvalidConfig, c.Storage.Format, FormatJSON, FormatJSONL)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Visualization.Width <= 0 || c.Visualization.Height <= 0 || c.Visualization.DPI <= 0 {
		return fmt.Errorf("%w: visualization width, height and dpi must be positive", apperrors.ErrInvalidConfig)
	}
	return nil
}

// Missing lists the required provider settings that are unset, by their
// environment variable names.
func (c *Config) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Provider.Key) == "" {
		missing = append(missing, EnvAPIKey)
	}
	if strings.TrimSpace(c.Route.Origin) == "" {
		missing = append(missing, EnvOrigin)
	}
	if strings.TrimSpace(c.Route.Destination) == "" {
		missing = append(missing, EnvDestination)
	}
	return missing
}

// ValidateMonitor is the startup check for the sampling loop.
func (c *Config) ValidateMonitor() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing required environment variables: %s", apperrors.ErrInvalidConfig, strings.Join(missing, ", "))
	}
	return c.Validate()
}

// ValidateProvider only requires the credential.
func (c *Config) ValidateProvider() error {
	if strings.TrimSpace(c.Provider.Key) == "" {
		return fmt.Errorf("%w: missing required environment variables: %s", apperrors.ErrInvalidConfig, EnvAPIKey)
	}
	return c.Validate()
}

func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Schedule.Timezone) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule timezone %q: %v", apperrors.ErrInvalidConfig, c.Schedule.Timezone, err)
	}
	return loc, nil
}
