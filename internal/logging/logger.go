// Package logging provides categorized logging for repopack.
// Every category shares one zap core; entries carry a "category" field so a
// verbose run can be filtered per subsystem. Until Initialize is called all
// loggers are silent, which keeps library use of the internal packages quiet.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot     Category = "boot"     // Startup, config loading
	CategoryPackager Category = "packager" // Pipeline orchestration
	CategoryAI       Category = "ai"       // Relevance analysis bridge
	CategoryFiles    Category = "files"    // Discovery, collection, transformation
	CategorySecurity Category = "security" // Suspicious content scanning
	CategoryOutput   Category = "output"   // Artifact rendering and writing
	CategoryMetrics  Category = "metrics"  // Token and character accounting
	CategoryTactile  Category = "tactile"  // Subprocess execution
	CategoryCLI      Category = "cli"      // Command line actions
	CategoryWatch    Category = "watch"    // Filesystem watch mode
)

// Options configures the shared logger.
type Options struct {
	// Verbose lowers the level from warn to debug.
	Verbose bool
	// JSON switches the console encoder for the JSON encoder.
	JSON bool
	// Writer receives log output. Defaults to stderr.
	Writer io.Writer
}

// Logger is a printf-style logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	baseMu  sync.RWMutex
	base    = zap.NewNop()
	loggers = make(map[Category]*Logger)
)

// Initialize builds the shared zap core. Safe to call more than once; the
// latest call wins.
func Initialize(opts Options) error {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encoder := zapcore.NewConsoleEncoder(encCfg)
	if opts.JSON {
		prodCfg := zap.NewProductionEncoderConfig()
		prodCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(prodCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	SetCore(core)
	return nil
}

// SetCore replaces the shared core. Tests use it with zaptest/observer.
func SetCore(core zapcore.Core) {
	baseMu.Lock()
	defer baseMu.Unlock()
	base = zap.New(core)
	loggers = make(map[Category]*Logger)
}

// Sync flushes buffered entries.
func Sync() {
	baseMu.RLock()
	l := base
	baseMu.RUnlock()
	_ = l.Sync()
}

// Zap exposes the underlying logger for callers that want structured fields.
func Zap() *zap.Logger {
	baseMu.RLock()
	defer baseMu.RUnlock()
	return base
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	baseMu.RLock()
	if l, ok := loggers[category]; ok {
		baseMu.RUnlock()
		return l
	}
	baseMu.RUnlock()

	baseMu.Lock()
	defer baseMu.Unlock()

	// Double-check after acquiring write lock
	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{
		category: category,
		sugar:    base.With(zap.String("category", string(category))).Sugar(),
	}
	loggers[category] = l
	return l
}

// With returns a logger that attaches the given key-value pairs to every entry.
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.With(args...)}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// =============================================================================
// CONVENIENCE HELPERS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

// BootDebug logs debug to the boot category
func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

// Packager logs to the packager category
func Packager(format string, args ...interface{}) {
	Get(CategoryPackager).Info(format, args...)
}

// PackagerDebug logs debug to the packager category
func PackagerDebug(format string, args ...interface{}) {
	Get(CategoryPackager).Debug(format, args...)
}

// PackagerWarn logs a warning to the packager category
func PackagerWarn(format string, args ...interface{}) {
	Get(CategoryPackager).Warn(format, args...)
}

// AI logs to the ai category
func AI(format string, args ...interface{}) {
	Get(CategoryAI).Info(format, args...)
}

// AIDebug logs debug to the ai category
func AIDebug(format string, args ...interface{}) {
	Get(CategoryAI).Debug(format, args...)
}

// AIWarn logs a warning to the ai category
func AIWarn(format string, args ...interface{}) {
	Get(CategoryAI).Warn(format, args...)
}

// FilesDebug logs debug to the files category
func FilesDebug(format string, args ...interface{}) {
	Get(CategoryFiles).Debug(format, args...)
}

// FilesWarn logs a warning to the files category
func FilesWarn(format string, args ...interface{}) {
	Get(CategoryFiles).Warn(format, args...)
}

// SecurityDebug logs debug to the security category
func SecurityDebug(format string, args ...interface{}) {
	Get(CategorySecurity).Debug(format, args...)
}

// OutputDebug logs debug to the output category
func OutputDebug(format string, args ...interface{}) {
	Get(CategoryOutput).Debug(format, args...)
}

// MetricsDebug logs debug to the metrics category
func MetricsDebug(format string, args ...interface{}) {
	Get(CategoryMetrics).Debug(format, args...)
}

// MetricsWarn logs a warning to the metrics category
func MetricsWarn(format string, args ...interface{}) {
	Get(CategoryMetrics).Warn(format, args...)
}

// Tactile logs to the tactile category
func Tactile(format string, args ...interface{}) {
	Get(CategoryTactile).Info(format, args...)
}

// TactileDebug logs debug to the tactile category
func TactileDebug(format string, args ...interface{}) {
	Get(CategoryTactile).Debug(format, args...)
}

// TactileWarn logs a warning to the tactile category
func TactileWarn(format string, args ...interface{}) {
	Get(CategoryTactile).Warn(format, args...)
}

// TactileError logs an error to the tactile category
func TactileError(format string, args ...interface{}) {
	Get(CategoryTactile).Error(format, args...)
}

// CLIDebug logs debug to the cli category
func CLIDebug(format string, args ...interface{}) {
	Get(CategoryCLI).Debug(format, args...)
}

// WatchDebug logs debug to the watch category
func WatchDebug(format string, args ...interface{}) {
	Get(CategoryWatch).Debug(format, args...)
}

// =============================================================================
// TIMERS
// =============================================================================

// Timer measures the duration of an operation
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
