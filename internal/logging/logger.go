// Package logging provides structured logging for meshprobe.
//
// Get a named logger for your component:
//
//	logger := logging.GetLogger("fixture")
//	logger.Info("namespace %s created", name)
//
// Structured fields are preferred for anything a reader may want to grep for:
//
//	logger.InfoWithFields("request finished",
//	    logging.Field("scenario", "get"),
//	    logging.Field("status", 200),
//	)
//
// Child loggers carry persistent fields:
//
//	vuLogger := logger.WithField("vu", 12)
//
// Levels can be overridden per package name, with "pkg.*" wildcards:
//
//	logging.Initialize("info", map[string]string{"loadtest.*": "debug"})
//
// Records are encoded by zap. DEBUG/INFO/WARN go to stdout, ERROR to stderr.
// Set LOG_TIMESTAMP to freeze the timestamp in tests.
package logging

import (
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
)

var (
	globalMu     sync.RWMutex
	globalLevel  = INFO
	globalZap    *zap.Logger
	stdoutWriter io.Writer = os.Stdout
	stderrWriter io.Writer = os.Stderr
)

// Initialize configures the default level and optional per-package overrides.
// An unknown default level falls back to INFO.
func Initialize(levelStr string, packageLevels ...map[string]string) error {
	level, err := parseLevel(levelStr)
	if err != nil {
		level = INFO
	}

	globalMu.Lock()
	globalLevel = level
	globalZap = newZapLogger(stdoutWriter, stderrWriter)
	globalMu.Unlock()

	if len(packageLevels) > 0 && packageLevels[0] != nil {
		return SetPackageLogLevels(packageLevels[0])
	}
	return nil
}

// SetOutput redirects log output. Mainly useful in tests.
func SetOutput(stdout, stderr io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	stdoutWriter = stdout
	stderrWriter = stderr
	globalZap = newZapLogger(stdoutWriter, stderrWriter)
}

// Sync flushes buffered records.
func Sync() {
	globalMu.RLock()
	z := globalZap
	globalMu.RUnlock()
	if z != nil {
		_ = z.Sync()
	}
}

func backend() (*zap.Logger, LogLevel) {
	globalMu.RLock()
	z, level := globalZap, globalLevel
	globalMu.RUnlock()
	if z != nil {
		return z, level
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if globalZap == nil {
		globalZap = newZapLogger(stdoutWriter, stderrWriter)
	}
	return globalZap, globalLevel
}

// Logger is an immutable named logger. With* methods return copies.
type Logger struct {
	name   string
	fields map[string]interface{}
}

// GetLogger returns a logger with the specified name
func GetLogger(name string) *Logger {
	return &Logger{name: name, fields: map[string]interface{}{}}
}

// Name returns the logger name used for package level lookups.
func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) shouldLog(level LogLevel) bool {
	if pkgLevel := GetPackageLogLevel(l.name); pkgLevel >= 0 {
		return level >= pkgLevel
	}
	_, defaultLevel := backend()
	return level >= defaultLevel
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.logf(DEBUG, msg, args...)
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.logf(INFO, msg, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.logf(WARN, msg, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.logf(ERROR, msg, args...)
}

// ErrorWithErr logs an error message with the error attached as a field.
func (l *Logger) ErrorWithErr(msg string, err error) {
	l.write(ERROR, msg, []LogField{Field("error", err)})
}

// DebugWithFields logs a debug message with structured fields
func (l *Logger) DebugWithFields(msg string, fields ...LogField) {
	l.write(DEBUG, msg, fields)
}

// InfoWithFields logs an info message with structured fields
func (l *Logger) InfoWithFields(msg string, fields ...LogField) {
	l.write(INFO, msg, fields)
}

// WarnWithFields logs a warning message with structured fields
func (l *Logger) WarnWithFields(msg string, fields ...LogField) {
	l.write(WARN, msg, fields)
}

// ErrorWithFields logs an error message with structured fields
func (l *Logger) ErrorWithFields(msg string, fields ...LogField) {
	l.write(ERROR, msg, fields)
}

// WithField adds a structured field to the logger
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(Field(key, value))
}

// WithFields adds multiple structured fields to the logger
func (l *Logger) WithFields(fields ...LogField) *Logger {
	next := &Logger{name: l.name, fields: cloneFields(l.fields)}
	for _, f := range fields {
		next.fields[f.Key] = f.Value
	}
	return next
}

func (l *Logger) write(level LogLevel, msg string, extra []LogField) {
	if !l.shouldLog(level) {
		return
	}
	z, _ := backend()

	merged := cloneFields(l.fields)
	for _, f := range extra {
		merged[f.Key] = f.Value
	}
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	zf := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zf = append(zf, zap.Any(k, merged[k]))
	}

	named := z.Named(l.name)
	switch level {
	case DEBUG:
		named.Debug(msg, zf...)
	case INFO:
		named.Info(msg, zf...)
	case WARN:
		named.Warn(msg, zf...)
	default:
		named.Error(msg, zf...)
	}
}

func cloneFields(src map[string]interface{}) map[string]interface{} {
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
