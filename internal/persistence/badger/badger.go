// Package badger stores the workout slot in an embedded BadgerDB so a single
// machine keeps its activity log across restarts without an external database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"example.com/workouts/internal/persistence"
)

// Config holds configuration for the embedded database.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is true.
	Path string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// SyncWrites fsyncs every write.
	SyncWrites bool
	// GCInterval is how often value-log GC runs. Zero disables it.
	GCInterval time.Duration
	// GCDiscardRatio is the garbage ratio that triggers a rewrite.
	GCDiscardRatio float64
	// Logger receives BadgerDB's internal messages. Nil silences them.
	Logger *log.Logger
}

// DefaultConfig returns durable settings for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns settings suited to tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Printf("ERROR: "+format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Printf("WARN: "+format, args...)
}

func (l badgerLogger) Infof(string, ...interface{}) {}

func (l badgerLogger) Debugf(string, ...interface{}) {}

// DB wraps a BadgerDB instance with its GC loop.
type DB struct {
	*badger.DB
	stopGC chan struct{}
	doneGC chan struct{}
}

// Open opens the database described by cfg and starts value-log GC when configured.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	wrapped := &DB{DB: db}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		wrapped.stopGC = make(chan struct{})
		wrapped.doneGC = make(chan struct{})
		go wrapped.runGC(cfg.GCInterval, ratio, cfg.Logger)
	}
	return wrapped, nil
}

func (d *DB) runGC(interval time.Duration, ratio float64, logger *log.Logger) {
	defer close(d.doneGC)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite only means nothing was worth collecting.
			if err := d.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) && logger != nil {
				logger.Printf("badger value log GC error: %v", err)
			}
		}
	}
}

// Close stops GC and closes the database.
func (d *DB) Close() error {
	if d.stopGC != nil {
		close(d.stopGC)
		<-d.doneGC
		d.stopGC = nil
	}
	return d.DB.Close()
}

// Slot is a persistence.Slot backed by one BadgerDB key.
type Slot struct {
	db  *DB
	key []byte
}

// NewSlot binds key in db.
func NewSlot(db *DB, key string) *Slot {
	if key == "" {
		key = persistence.DefaultSlotKey
	}
	return &Slot{db: db, key: []byte(key)}
}

// Read implements persistence.Slot.
func (s *Slot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, persistence.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %s: %w", s.key, err)
	}
	return payload, nil
}

// Write implements persistence.Slot.
func (s *Slot) Write(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, payload)
	}); err != nil {
		return fmt.Errorf("write slot %s: %w", s.key, err)
	}
	return nil
}

// Delete implements persistence.Slot.
func (s *Slot) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	}); err != nil {
		return fmt.Errorf("delete slot %s: %w", s.key, err)
	}
	return nil
}
