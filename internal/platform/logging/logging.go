package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	hclog "github.com/hashicorp/go-hclog"
)

type Options struct {
	Name   string
	Level  string
	File   string
	JSON   bool
	Output io.Writer
}

// New returns a logger writing to Output (stderr by default) and, when File
// is set, appending to that file as well. The returned closer releases the file.
func New(opts Options) (hclog.Logger, io.Closer, error) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = io.MultiWriter(out, f)
		closer = f
	}
	name := opts.Name
	if name == "" {
		name = "trafficwatch"
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      ParseLevel(opts.Level),
		Output:     out,
		JSONFormat: opts.JSON,
	})
	return logger, closer, nil
}

// ParseLevel maps the usual level names, including WARNING and CRITICAL, and
// falls back to info.
func ParseLevel(level string) hclog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return hclog.Warn
	case "critical", "fatal":
		return hclog.Error
	}
	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		return hclog.Info
	}
	return parsed
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
