package logbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const tailCapacity = 200

// Logbook records session activity to a file through zap and keeps the most
// recent lines in memory so the TUI can render a tail panel without
// re-reading the file.
type Logbook struct {
	path   string
	logger *zap.SugaredLogger

	mu     sync.Mutex
	recent []string
}

// New creates a logbook writing to path. The parent directory is created if
// missing.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(zapcore.AddSync(file)),
		zapcore.InfoLevel,
	)
	return &Logbook{
		path:   path,
		logger: zap.New(core).Sugar(),
	}, nil
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Tail returns up to maxLines of the most recent entries, oldest first.
func (l *Logbook) Tail(maxLines int) []string {
	if l == nil || maxLines <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.recent) == 0 {
		return nil
	}
	start := 0
	if len(l.recent) > maxLines {
		start = len(l.recent) - maxLines
	}
	out := make([]string, len(l.recent)-start)
	copy(out, l.recent[start:])
	return out
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Info(msg)
	l.remember("INFO", msg)
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Warn(msg)
	l.remember("WARN", msg)
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	if l == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.logger.Error(msg)
	l.remember("ERROR", msg)
}

// Printf satisfies the api client's Logger interface; request diagnostics
// land as informational entries.
func (l *Logbook) Printf(format string, args ...any) {
	l.Info(format, args...)
}

// Close flushes buffered entries to disk.
func (l *Logbook) Close() error {
	if l == nil {
		return nil
	}
	return l.logger.Sync()
}

func (l *Logbook) remember(level, msg string) {
	line := fmt.Sprintf("%s %-5s %s",
		time.Now().UTC().Format(time.RFC3339),
		level,
		strings.TrimSpace(msg),
	)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recent = append(l.recent, line)
	if len(l.recent) > tailCapacity {
		l.recent = l.recent[len(l.recent)-tailCapacity:]
	}
}
