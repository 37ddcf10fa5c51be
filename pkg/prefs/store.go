package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
)

// Bucket and key names.
var (
	bucketPrefs = []byte("preferences")
	keyCurrent  = []byte("current")
)

// store implements the Store interface using BoltDB.
type store struct {
	db     *bolt.DB
	logger logger.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a new preferences store.
//
// Parameters:
//   - cfg: Store configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Store
//   - Error if database cannot be opened
func New(cfg Config, log logger.Logger) (Store, error) {
	// Set default timeout.
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	// Expand home directory in path.
	dbPath := expandHome(cfg.DBPath)

	// Create directory if it doesn't exist.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database.
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Initialize bucket.
	if err := db.Update(func(tx *bolt.Tx) error {
		if _, createErr := tx.CreateBucketIfNotExists(bucketPrefs); createErr != nil {
			return fmt.Errorf("failed to create preferences bucket: %w", createErr)
		}
		return nil
	}); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("failed to close database after initialization error",
				"error", closeErr)
		}
		return nil, err
	}

	log.Info("preferences store initialized", "db_path", dbPath)

	return &store{
		db:     db,
		logger: log,
	}, nil
}

// Load implements Store.Load.
//
// A missing record is not an error: fresh installs get defaults.
func (s *store) Load() (*Preferences, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrStoreClosed
	}
	s.mu.Unlock()

	prefs := defaultPreferences()

	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketPrefs).Get(keyCurrent)
		if data == nil {
			return nil
		}

		if err := json.Unmarshal(data, prefs); err != nil {
			return fmt.Errorf("failed to unmarshal preferences: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return prefs, nil
}

// Save implements Store.Save.
func (s *store) Save(p *Preferences) error {
	if p == nil {
		return ErrNilPreferences
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.mu.Unlock()

	p.UpdatedAt = time.Now()

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal preferences: %w", err)
		}

		if err := tx.Bucket(bucketPrefs).Put(keyCurrent, data); err != nil {
			return fmt.Errorf("failed to store preferences: %w", err)
		}

		s.logger.Debug("preferences saved",
			"window_hours", p.WindowHours,
			"page_size", p.PageSize)

		return nil
	})
}

// Close implements Store.Close.
func (s *store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.logger.Info("preferences store closed")
	return nil
}

// defaultPreferences returns the preferences used when nothing is stored.
func defaultPreferences() *Preferences {
	return &Preferences{
		ColorEnabled: true,
	}
}

// expandHome expands ~ in file paths to the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return homeDir
	}

	return filepath.Join(homeDir, path[2:])
}
