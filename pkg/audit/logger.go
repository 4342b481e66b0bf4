package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/newtron-network/newtmn/pkg/util"
)

// Logger is an audit backend.
type Logger interface {
	Log(event *Event) error
	Query(filter Filter) ([]*Event, error)
	Close() error
}

// RotationConfig configures log file rotation. Rotated files are named
// <path>.1 (newest) through <path>.<MaxBackups> (oldest).
type RotationConfig struct {
	MaxSize    int64 // bytes; 0 disables rotation
	MaxBackups int
}

// FileLogger appends events to a JSON-lines file.
type FileLogger struct {
	path     string
	rotation RotationConfig

	mu   sync.RWMutex
	file *os.File
	size int64
}

// NewFileLogger opens (or creates) the log at path.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating audit log directory: %w", err)
	}
	l := &FileLogger{path: path, rotation: rotation}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *FileLogger) open() error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat audit log: %w", err)
	}
	l.file, l.size = f, info.Size()
	return nil
}

// Log appends one event, rotating first if the file has reached MaxSize.
func (l *FileLogger) Log(event *Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("audit log %s is closed", l.path)
	}
	if l.rotation.MaxSize > 0 && l.size >= l.rotation.MaxSize {
		if err := l.rotate(); err != nil {
			if l.file == nil {
				return fmt.Errorf("rotating audit log: %w", err)
			}
			util.Warnf("audit: rotating %s: %v; appending to the live file", l.path, err)
		}
	}
	n, err := l.file.Write(line)
	l.size += int64(n)
	return err
}

// Query returns matching events oldest first, reading rotated files before
// the live one. Offset and Limit apply after filtering and count back from
// the newest event: Offset skips the most recent matches and Limit keeps
// the most recent of the rest.
func (l *FileLogger) Query(filter Filter) ([]*Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	events := []*Event{}
	for i := l.rotation.MaxBackups; i >= 1; i-- {
		if err := readEvents(backupName(l.path, i), filter, &events); err != nil {
			return nil, err
		}
	}
	if err := readEvents(l.path, filter, &events); err != nil {
		return nil, err
	}

	end := len(events)
	if filter.Offset > 0 {
		end -= filter.Offset
	}
	if end <= 0 {
		return []*Event{}, nil
	}
	start := 0
	if filter.Limit > 0 && filter.Limit < end {
		start = end - filter.Limit
	}
	return events[start:end], nil
}

// Close closes the log file. Further Log calls fail.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func readEvents(path string, filter Filter, out *[]*Event) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var ev Event
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			util.Warnf("audit: skipping malformed entry %s:%d: %v", filepath.Base(path), line, err)
			continue
		}
		if filter.matches(&ev) {
			*out = append(*out, &ev)
		}
	}
	return scanner.Err()
}

func (f Filter) matches(e *Event) bool {
	switch {
	case f.Switch != "" && e.Switch != f.Switch:
		return false
	case f.User != "" && e.User != f.User:
		return false
	case f.Operation != "" && e.Operation != f.Operation:
		return false
	case f.Controller != "" && !e.hasController(f.Controller):
		return false
	case !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime):
		return false
	case !f.EndTime.IsZero() && e.Timestamp.After(f.EndTime):
		return false
	case f.SuccessOnly && !e.Success:
		return false
	case f.FailureOnly && e.Success:
		return false
	}
	return true
}

// rotate shifts <path>.N-1 to <path>.N down to <path> -> <path>.1, dropping
// whatever falls past MaxBackups, then reopens the live file. The live file
// is reopened even when shifting fails, so a failed rotation leaves the
// logger writable.
func (l *FileLogger) rotate() error {
	err := l.file.Close()
	l.file = nil
	if err == nil {
		err = l.shiftBackups()
	}
	if openErr := l.open(); openErr != nil {
		if err != nil {
			return fmt.Errorf("%w; reopening: %v", err, openErr)
		}
		return openErr
	}
	return err
}

func (l *FileLogger) shiftBackups() error {
	if l.rotation.MaxBackups <= 0 {
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	os.Remove(backupName(l.path, l.rotation.MaxBackups))
	for i := l.rotation.MaxBackups - 1; i >= 1; i-- {
		if err := os.Rename(backupName(l.path, i), backupName(l.path, i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return os.Rename(l.path, backupName(l.path, 1))
}

func backupName(path string, n int) string {
	return fmt.Sprintf("%s.%d", path, n)
}

// loggerHolder keeps atomic.Value's stored type constant.
type loggerHolder struct {
	logger Logger
}

var defaultLogger atomic.Value

// SetDefaultLogger sets the logger used by the package-level functions.
// Passing nil disables auditing.
func SetDefaultLogger(logger Logger) {
	defaultLogger.Store(loggerHolder{logger: logger})
}

func getDefaultLogger() Logger {
	v := defaultLogger.Load()
	if v == nil {
		return nil
	}
	return v.(loggerHolder).logger
}

// Log records an event with the default logger; a no-op when none is set.
func Log(event *Event) error {
	if l := getDefaultLogger(); l != nil {
		return l.Log(event)
	}
	return nil
}

// Query queries the default logger.
func Query(filter Filter) ([]*Event, error) {
	if l := getDefaultLogger(); l != nil {
		return l.Query(filter)
	}
	return []*Event{}, nil
}
