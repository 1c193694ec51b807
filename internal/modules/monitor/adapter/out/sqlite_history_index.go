package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"trafficwatch/internal/modules/monitor/domain"
	monitorout "trafficwatch/internal/modules/monitor/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteHistoryIndex is a rebuildable projection of the history file used
// for range and aggregate queries. The history file stays authoritative.
type SQLiteHistoryIndex struct {
	db *sql.DB
}

func NewSQLiteHistoryIndex(dbPath string) (monitorout.HistoryIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	index := &SQLiteHistoryIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteHistoryIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS samples (
  captured_at TEXT PRIMARY KEY,
  captured_unix INTEGER NOT NULL,
  sample_date TEXT NOT NULL,
  sample_time TEXT NOT NULL,
  duration_hours REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS samples_captured_unix ON samples (captured_unix);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create samples table: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryIndex) Close() error {
	return s.db.Close()
}

func (s *SQLiteHistoryIndex) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM samples`); err != nil {
		return fmt.Errorf("reset samples: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryIndex) Upsert(ctx context.Context, sample domain.Sample) error {
	const stmt = `
INSERT INTO samples (captured_at, captured_unix, sample_date, sample_time, duration_hours)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(captured_at) DO UPDATE SET
  captured_unix=excluded.captured_unix,
  sample_date=excluded.sample_date,
  sample_time=excluded.sample_time,
  duration_hours=excluded.duration_hours;
`
	_, err := s.db.ExecContext(ctx, stmt,
		sample.StampText(),
		sample.Timestamp.UnixNano(),
		sample.Date,
		sample.Time,
		sample.Duration,
	)
	if err != nil {
		return fmt.Errorf("upsert sample: %w", err)
	}
	return nil
}

func (s *SQLiteHistoryIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

func (s *SQLiteHistoryIndex) Stats(ctx context.Context, from, to time.Time) (domain.Stats, error) {
	where, args := rangeClause(from, to)
	query := `
SELECT COUNT(*), COALESCE(MIN(duration_hours), 0), COALESCE(MAX(duration_hours), 0), COALESCE(AVG(duration_hours), 0),
  (SELECT captured_at FROM samples` + where + ` ORDER BY captured_unix ASC LIMIT 1),
  (SELECT captured_at FROM samples` + where + ` ORDER BY captured_unix DESC LIMIT 1)
FROM samples` + where
	params := slices.Concat(args, args, args)

	var (
		stats       domain.Stats
		first, last sql.NullString
	)
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&stats.Count, &stats.Min, &stats.Max, &stats.Mean, &first, &last); err != nil {
		return domain.Stats{}, fmt.Errorf("query sample stats: %w", err)
	}
	stats.Mean = domain.RoundHours(stats.Mean)
	var err error
	if first.Valid {
		if stats.First, err = domain.ParseTimestamp(first.String); err != nil {
			return domain.Stats{}, err
		}
	}
	if last.Valid {
		if stats.Last, err = domain.ParseTimestamp(last.String); err != nil {
			return domain.Stats{}, err
		}
	}
	return stats, nil
}

// Range returns samples in chronological order. A positive limit keeps the
// most recent ones.
func (s *SQLiteHistoryIndex) Range(ctx context.Context, from, to time.Time, limit int) ([]domain.Sample, error) {
	if limit <= 0 {
		limit = -1
	}
	where, args := rangeClause(from, to)
	query := `SELECT captured_at, sample_date, sample_time, duration_hours FROM samples` + where + ` ORDER BY captured_unix DESC, rowid DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []domain.Sample{}
	for rows.Next() {
		var (
			capturedAt string
			sample     domain.Sample
		)
		if err := rows.Scan(&capturedAt, &sample.Date, &sample.Time, &sample.Duration); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if sample.Timestamp, err = domain.ParseTimestamp(capturedAt); err != nil {
			return nil, err
		}
		sample.Stamp = capturedAt
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	slices.Reverse(samples)
	return samples, nil
}

func rangeClause(from, to time.Time) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "captured_unix >= ?")
		args = append(args, from.UnixNano())
	}
	if !to.IsZero() {
		conds = append(conds, "captured_unix <= ?")
		args = append(args, to.UnixNano())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
