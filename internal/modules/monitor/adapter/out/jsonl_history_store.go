package out

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"
)

const lockRetryDelay = 50 * time.Millisecond

// JSONLHistoryStore writes one sample per line and never rewrites earlier
// lines. A torn final line left by a crash is ignored on read and cut off
// before the next append.
type JSONLHistoryStore struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger hclog.Logger
}

func NewJSONLHistoryStore(path string, logger hclog.Logger) monitorout.HistoryStore {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &JSONLHistoryStore{path: path, lock: flock.New(path + ".lock"), logger: logger}
}

func (s *JSONLHistoryStore) Path() string { return s.path }

func (s *JSONLHistoryStore) Initialize(context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create history: %w", err)
	}
	return f.Close()
}

func (s *JSONLHistoryStore) Append(ctx context.Context, sample domain.Sample) error {
	line, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("encode sample: %w", err)
	}
	line = append(line, '\n')

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

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer f.Close()
	if err := repairTail(f); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek history: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync history: %w", err)
	}
	return nil
}

// repairTail truncates a final line that lacks its newline.
func repairTail(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat history: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("read history tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}
	const chunk = 4096
	end := size
	for end > 0 {
		start := end - chunk
		if start < 0 {
			start = 0
		}
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, start); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read history tail: %w", err)
		}
		if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
			return truncate(f, start+int64(i)+1)
		}
		end = start
	}
	return truncate(f, 0)
}

func truncate(f *os.File, size int64) error {
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("truncate torn history line: %w", err)
	}
	return nil
}

func (s *JSONLHistoryStore) Load(context.Context) ([]domain.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Sample{}, nil
		}
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	samples := []domain.Sample{}
	reader := bufio.NewReader(f)
	lineNo := 0
	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("read history: %w", readErr)
		}
		torn := errors.Is(readErr, io.EOF)
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			lineNo++
			var sample domain.Sample
			if err := json.Unmarshal(trimmed, &sample); err != nil {
				if torn {
					s.logger.Warn("ignoring torn history line", "path", s.path, "line", lineNo)
					break
				}
				return nil, fmt.Errorf("decode history %s line %d: %w", s.path, lineNo, err)
			}
			samples = append(samples, sample)
		}
		if torn {
			break
		}
	}
	return samples, nil
}

func (s *JSONLHistoryStore) LoadAll(ctx context.Context) []domain.Sample {
	samples, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("history unreadable, treating as empty", "path", s.path, "error", err)
		return []domain.Sample{}
	}
	return samples
}
