package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"tubeaudio/internal/config"
)

// Store persists run results in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Two tubeaudio processes fetching different videos can write at the same
// moment; busy_timeout covers most of that and busyRetry covers the rest.
const (
	busyTimeoutMillis = 5000
	busyRetries       = 5
	busyBackoff       = 10 * time.Millisecond
	busyBackoffMax    = 200 * time.Millisecond
	sqliteBusy        = 5
)

// Open connects to the history database under state_dir, creating and
// migrating it as needed.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	path := cfg.HistoryPath()
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	store := &Store{db: db, path: path, now: time.Now}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis))
	return "file:" + path + "?" + q.Encode()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return busyRetry(orBackground(ctx), func(ctx context.Context) (sql.Result, error) {
		return s.db.ExecContext(ctx, query, args...)
	})
}

// busyRetry reruns op with doubling backoff while SQLite reports the database
// as locked.
func busyRetry[T any](ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	delay := busyBackoff
	for attempt := 1; ; attempt++ {
		result, err := op(ctx)
		if err == nil || !isBusy(err) || attempt == busyRetries {
			return result, err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return result, ctx.Err()
		}
		delay = min(delay*2, busyBackoffMax)
	}
}

func isBusy(err error) bool {
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusy {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
