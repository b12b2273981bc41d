package statelog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// StateRecord is the row written for each entry.
type StateRecord struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	SessionID string    `gorm:"size:36;index"`
	AgentID   int       `gorm:"index"`
	State     string    `gorm:"size:8"`
	Message   string
}

// SQLiteSink stores entries in a SQLite database through gorm. An empty
// path keeps the database in memory.
type SQLiteSink struct {
	mu      sync.Mutex
	path    string
	db      *gorm.DB
	session string
	closed  bool
	now     func() time.Time
	log     zerolog.Logger
}

func NewSQLiteSink(path string, log zerolog.Logger) *SQLiteSink {
	return &SQLiteSink{path: path, now: time.Now, log: log}
}

func (s *SQLiteSink) Path() string {
	return s.path
}

func (s *SQLiteSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *SQLiteSink) openLocked() error {
	if s.db != nil {
		return nil
	}

	dsn := "file::memory:?cache=shared"
	if s.path != "" {
		if dir := filepath.Dir(s.path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create database directory %s: %w", dir, err)
			}
		}
		dsn = s.path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open state database: %w", err)
	}
	if err := db.AutoMigrate(&StateRecord{}); err != nil {
		return fmt.Errorf("migrate state database: %w", err)
	}

	s.db = db
	s.closed = false
	s.session = uuid.NewString()
	s.log.Info().Str("path", s.path).Str("session", s.session).Msg("state database opened")

	start := StateRecord{CreatedAt: s.now(), SessionID: s.session, AgentID: -1, Message: "session started"}
	if err := s.db.Create(&start).Error; err != nil {
		return fmt.Errorf("write session marker: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Append(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if err := s.openLocked(); err != nil {
		return err
	}

	ts := e.Time
	if ts.IsZero() {
		ts = s.now()
	}
	rec := StateRecord{
		CreatedAt: ts,
		SessionID: s.session,
		AgentID:   e.AgentID,
		State:     e.State,
		Message:   e.Message,
	}
	if err := s.db.Create(&rec).Error; err != nil {
		return fmt.Errorf("insert state record: %w", err)
	}
	return nil
}

// Records returns the rows of the current session in insertion order,
// excluding the session marker.
func (s *SQLiteSink) Records() ([]StateRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil, nil
	}
	var out []StateRecord
	err := s.db.Where("session_id = ? AND agent_id >= 0", s.session).Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query state records: %w", err)
	}
	return out, nil
}

func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return fmt.Errorf("access sql interface: %w", err)
	}
	return sqlDB.Close()
}
