package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	// DefaultFileName is the store file name used by every app release.
	DefaultFileName = "agrolink.db"

	defaultBusyTimeout = 5 * time.Second
)

type Options struct {
	Logger      *slog.Logger
	BusyTimeout time.Duration
	// Now overrides the clock used for createdAt and timestamp columns.
	Now func() time.Time
}

type Store struct {
	db     *sqlx.DB
	path   string
	logger *slog.Logger
	now    func() time.Time

	// migrateMu serializes EnsureSchema runs; initOnce guards the lazy
	// first-use initialization and keeps its outcome.
	migrateMu sync.Mutex
	initOnce  sync.Once
	initErr   error

	Users     UserRepository
	Equipment EquipmentRepository
	Services  ServiceRepository
	Calendar  CalendarRepository
	News      NewsRepository
}

// Open opens (creating if needed) the store file at path. The schema is not
// touched until the first repository call or an explicit EnsureSchema.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open storage: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("open storage: create parent dir: %w", err)
	}

	busyTimeout := opts.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}

	db, err := sqlx.Open("sqlite", dataSourceName(path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: open %s: %v", ErrSchemaInit, path, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	store := &Store{
		db:     db,
		path:   path,
		logger: logger.With("component", "storage"),
		now:    now,
	}
	store.Users = &userRepository{store: store}
	store.Equipment = &equipmentRepository{store: store}
	store.Services = &serviceRepository{store: store}
	store.Calendar = &calendarRepository{store: store}
	store.News = &newsRepository{store: store}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) DB() *sqlx.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Ready runs the lazy initialization once and reports its outcome. A failed
// initialization is kept: every later call returns the same error.
//
// Initialization ignores cancellation and deadlines on ctx. Its outcome is
// shared by every caller of the Store, so it is bounded only by the
// per-statement busy timeout.
func (s *Store) Ready(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("%w: store is not open", ErrSchemaInit)
	}
	s.initOnce.Do(func() {
		s.initErr = s.EnsureSchema(context.WithoutCancel(ctx))
	})
	return s.initErr
}

// Backfill runs the ownership backfill on a ready store and reports what it
// did. It is a no-op when the reserved admin already exists.
func (s *Store) Backfill(ctx context.Context) (BackfillResult, error) {
	if err := s.Ready(ctx); err != nil {
		return BackfillResult{}, err
	}
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()
	return s.backfillOwners(ctx)
}

func (s *Store) conn(ctx context.Context) (*sqlx.DB, error) {
	if err := s.Ready(ctx); err != nil {
		return nil, err
	}
	return s.db, nil
}

func (s *Store) nowUTC() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func dataSourceName(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(0)",
		path,
		busyTimeout.Milliseconds(),
	)
}
