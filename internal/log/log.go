// Package log provides structured logging for commands, errors and
// operational messages.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"userdesk/local-app/internal/model"
)

// Fields carries the structured attributes of a log entry.
type Fields map[string]interface{}

// logMessage is a queued log entry.
type logMessage struct {
	level   LogLevel
	message string
	fields  Fields
	ctx     context.Context
}

// Logger writes command entries, errors and operational messages to
// separate JSON log streams. Entries are queued and written by a single
// goroutine so callers on the UI loop never block on file I/O.
type Logger struct {
	commandLogger *slog.Logger
	errorLogger   *slog.Logger
	infoLogger    *slog.Logger
	files         []*os.File
	level         LogLevel

	logChan chan logMessage
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
}

// NewLogger creates a Logger writing to the command, error and info log
// files named in cfg. Messages below level are dropped from the info log.
func NewLogger(cfg *model.Config, level LogLevel) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, name := range []string{cfg.CommandLog, cfg.ErrorLog, cfg.InfoLog} {
		path := filepath.Join(cfg.LogFolder, name)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
		}
		files = append(files, f)
	}

	logger := newLogger(files[0], files[1], files[2], level)
	logger.files = files
	return logger, nil
}

// NewWriterLogger creates a Logger that writes every stream to w.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return newLogger(w, w, w, level)
}

// NewNopLogger creates a Logger that discards everything.
func NewNopLogger() *Logger {
	return newLogger(io.Discard, io.Discard, io.Discard, LevelError)
}

func newLogger(commandOut, errorOut, infoOut io.Writer, level LogLevel) *Logger {
	logger := &Logger{
		commandLogger: slog.New(slog.NewJSONHandler(commandOut, &slog.HandlerOptions{Level: slog.LevelInfo})),
		errorLogger:   slog.New(slog.NewJSONHandler(errorOut, &slog.HandlerOptions{Level: slog.LevelError})),
		infoLogger:    slog.New(slog.NewJSONHandler(infoOut, &slog.HandlerOptions{Level: level.toSlogLevel()})),
		level:         level,
		logChan:       make(chan logMessage, 100),
	}

	logger.wg.Add(1)
	go logger.processLogs()

	return logger
}

// processLogs writes queued entries until the queue is closed.
func (l *Logger) processLogs() {
	defer l.wg.Done()
	for msg := range l.logChan {
		attrs := msg.fields.attrs()
		switch msg.level {
		case LevelCommand:
			l.commandLogger.LogAttrs(msg.ctx, slog.LevelInfo, msg.message, attrs...)
		case LevelError:
			l.errorLogger.LogAttrs(msg.ctx, slog.LevelError, msg.message, attrs...)
			l.infoLogger.LogAttrs(msg.ctx, slog.LevelError, msg.message, attrs...)
		default:
			l.infoLogger.LogAttrs(msg.ctx, msg.level.toSlogLevel(), msg.message, attrs...)
		}
	}
}

func (l *Logger) enqueue(ctx context.Context, level LogLevel, message string, fields Fields) {
	if ctx == nil {
		ctx = context.Background()
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	l.logChan <- logMessage{level: level, message: message, fields: fields, ctx: ctx}
}

// Command records an executed user command.
func (l *Logger) Command(ctx context.Context, message string, fields Fields) {
	l.enqueue(ctx, LevelCommand, message, fields)
}

// Error records a failure. Errors go to both the error and info logs.
func (l *Logger) Error(ctx context.Context, message string, fields Fields) {
	l.enqueue(ctx, LevelError, message, fields)
}

// Warn records a recoverable problem.
func (l *Logger) Warn(ctx context.Context, message string, fields Fields) {
	if l.level < LevelWarn {
		return
	}
	l.enqueue(ctx, LevelWarn, message, fields)
}

// Info records an operational message.
func (l *Logger) Info(ctx context.Context, message string, fields Fields) {
	if l.level < LevelInfo {
		return
	}
	l.enqueue(ctx, LevelInfo, message, fields)
}

// Debug records a diagnostic message.
func (l *Logger) Debug(ctx context.Context, message string, fields Fields) {
	if l.level < LevelDebug {
		return
	}
	l.enqueue(ctx, LevelDebug, message, fields)
}

// Close flushes queued entries and closes the log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.logChan)
	l.mu.Unlock()

	l.wg.Wait()

	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close log file %s: %w", f.Name(), err)
		}
	}
	return firstErr
}

// attrs converts the fields to slog attributes. Errors are logged by message.
func (f Fields) attrs() []slog.Attr {
	if len(f) == 0 {
		return nil
	}
	attrs := make([]slog.Attr, 0, len(f))
	for key, value := range f {
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		attrs = append(attrs, slog.Any(key, value))
	}
	return attrs
}
