package statelog

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultDir  = "logs"
	DefaultFile = "drone_state.log"

	timestampLayout = "2006-01-02 15:04:05.000"
)

// FileSink appends human-readable lines to a text file. The directory and
// file are created on first use and every open writes a session marker.
type FileSink struct {
	mu      sync.Mutex
	dir     string
	path    string
	f       *os.File
	session string
	closed  bool
	now     func() time.Time
	log     zerolog.Logger
}

type FileOption func(*FileSink)

func WithFileLogger(log zerolog.Logger) FileOption {
	return func(s *FileSink) {
		s.log = log
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) FileOption {
	return func(s *FileSink) {
		if now != nil {
			s.now = now
		}
	}
}

func NewFileSink(dir, file string, opts ...FileOption) *FileSink {
	if dir == "" {
		dir = DefaultDir
	}
	if file == "" {
		file = DefaultFile
	}
	s := &FileSink{
		dir:  dir,
		path: filepath.Join(dir, file),
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileSink) Path() string {
	return s.path
}

// Session returns the id of the current session, empty before the first
// open.
func (s *FileSink) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *FileSink) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked()
}

func (s *FileSink) openLocked() error {
	if s.f != nil {
		return nil
	}

	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %s: %w", s.dir, err)
		}
		s.log.Info().Str("dir", s.dir).Msg("created log directory")
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file %s: %w", s.path, err)
	}

	session := uuid.NewString()
	marker := fmt.Sprintf("=== New Session Started at %s (session %s) ===\n", s.now().Format(timestampLayout), session)
	if _, err := f.WriteString(marker); err != nil {
		_ = f.Close()
		return fmt.Errorf("write session marker: %w", err)
	}

	s.f = f
	s.closed = false
	s.session = session
	return nil
}

func (s *FileSink) Append(e Entry) error {
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
	var line string
	if e.State == "" {
		line = fmt.Sprintf("[%s] %s\n", ts.Format(timestampLayout), e.Message)
	} else {
		line = fmt.Sprintf("[%s] Agent %d state changed to %s\n", ts.Format(timestampLayout), e.AgentID, e.State)
	}
	if _, err := s.f.WriteString(line); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeFileLocked()
}

func (s *FileSink) closeFileLocked() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *FileSink) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Contents returns the log file lines. A missing file yields no lines.
func (s *FileSink) Contents() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log file %s: %w", s.path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimRight(sc.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log file %s: %w", s.path, err)
	}
	return lines, nil
}

// Clear deletes the log file. The next Append starts a new session.
func (s *FileSink) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.closeFileLocked(); err != nil {
		s.log.Warn().Err(err).Msg("close before clear failed")
	}
	s.closed = false
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear log file %s: %w", s.path, err)
	}
	return nil
}
