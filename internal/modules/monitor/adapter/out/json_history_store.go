package out

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
	"trafficwatch/internal/platform/fsutil"
)

// JSONHistoryStore keeps the history as one indented JSON array and
// rewrites it through a temp file on every append. An advisory lock on
// <path>.lock serialises writers across processes.
type JSONHistoryStore struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger hclog.Logger
}

func NewJSONHistoryStore(path string, logger hclog.Logger) monitorout.HistoryStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &JSONHistoryStore{path: path, lock: flock.New(path + ".lock"), logger: logger}
}

func (s *JSONHistoryStore) Path() string { return s.path }

func (s *JSONHistoryStore) Initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	return s.withLock(ctx, func() error {
		if _, err := os.Stat(s.path); err == nil {
			return nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat history: %w", err)
		}
		return fsutil.WriteFileAtomic(s.path, []byte("[]"), 0o644)
	})
}

func (s *JSONHistoryStore) Append(ctx context.Context, sample domain.Sample) error {
	return s.withLock(ctx, func() error {
		samples, err := s.read()
		if err != nil {
			return fmt.Errorf("read history before append: %w", err)
		}
		samples = append(samples, sample)
		raw, err := json.MarshalIndent(samples, "", "    ")
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		if err := fsutil.WriteFileAtomic(s.path, raw, 0o644); err != nil {
			return fmt.Errorf("write history: %w", err)
		}
		return nil
	})
}

func (s *JSONHistoryStore) Load(context.Context) ([]domain.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONHistoryStore) LoadAll(ctx context.Context) []domain.Sample {
	samples, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("history unreadable, treating as empty", "path", s.path, "error", err)
		return []domain.Sample{}
	}
	return samples
}

func (s *JSONHistoryStore) read() ([]domain.Sample, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Sample{}, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []domain.Sample{}, nil
	}
	var samples []domain.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", s.path, err)
	}
	if samples == nil {
		samples = []domain.Sample{}
	}
	return samples, nil
}

func (s *JSONHistoryStore) withLock(ctx context.Context, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock history: %s is held by another process", s.lock.Path())
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("unlock history", "error", err)
		}
	}()
	return fn()
}
