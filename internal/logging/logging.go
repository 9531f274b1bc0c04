// Package logging provides config-gated categorized file logging for
// wantbot. Each category writes to its own file under the configured log
// directory; when logging is disabled every call is a silent no-op so the
// hot command path pays nothing for it.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names one logging subsystem.
type Category string

const (
	CategoryBoot    Category = "boot"    // startup and shutdown
	CategoryCommand Category = "command" // text -> operation parsing
	CategoryCatalog Category = "catalog" // catalog lookups, cache hits/misses
	CategoryPacer   Category = "pacer"   // outbound call scheduling
	CategoryStore   Category = "store"   // want-list mutations
	CategoryRender  Category = "render"  // summary rendering
	CategoryGateway Category = "gateway" // command dispatch
)

// Level gates which messages are written.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Options configures the logging subsystem.
type Options struct {
	Enabled    bool
	Dir        string
	Level      Level
	Categories map[string]bool // nil means all categories enabled
}

// Logger writes to one category's log file. The zero value is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu      sync.RWMutex
	opts    Options
	loggers = make(map[Category]*Logger)
)

// Configure applies logging options. Call once at startup, before any
// logging; calling again replaces the options but leaves already-open
// files in place until CloseAll.
func Configure(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	opts = o
	if !o.Enabled {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("logging enabled but no directory configured")
	}
	return os.MkdirAll(o.Dir, 0755)
}

// Enabled reports whether the category currently logs anything.
func Enabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabledLocked(category)
}

func enabledLocked(category Category) bool {
	if !opts.Enabled {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	on, known := opts.Categories[string(category)]
	return !known || on
}

// Get returns the logger for a category, creating its file on first use.
// Disabled categories get a no-op logger.
func Get(category Category) *Logger {
	mu.RLock()
	if !enabledLocked(category) || opts.Dir == "" {
		mu.RUnlock()
		return &Logger{category: category}
	}
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	path := filepath.Join(opts.Dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// CloseAll closes every open log file. Call at shutdown.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

func (l *Logger) write(level Level, tag, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	mu.RLock()
	min := opts.Level
	mu.RUnlock()
	if level < min {
		return
	}
	l.logger.Printf("[%s] %s", tag, fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "INFO", format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "WARN", format, args...)
}

// Error logs an error. Errors are never level-gated.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "ERROR", format, args...)
}

// Convenience helpers, no-ops when the category is disabled.

func Boot(format string, args ...interface{})    { Get(CategoryBoot).Info(format, args...) }
func Command(format string, args ...interface{}) { Get(CategoryCommand).Info(format, args...) }
func Catalog(format string, args ...interface{}) { Get(CategoryCatalog).Info(format, args...) }
func Pacer(format string, args ...interface{})   { Get(CategoryPacer).Info(format, args...) }
func Store(format string, args ...interface{})   { Get(CategoryStore).Info(format, args...) }
func Render(format string, args ...interface{})  { Get(CategoryRender).Info(format, args...) }
func Gateway(format string, args ...interface{}) { Get(CategoryGateway).Info(format, args...) }

func CommandDebug(format string, args ...interface{}) { Get(CategoryCommand).Debug(format, args...) }
func CatalogDebug(format string, args ...interface{}) { Get(CategoryCatalog).Debug(format, args...) }
func PacerDebug(format string, args ...interface{})   { Get(CategoryPacer).Debug(format, args...) }
func StoreDebug(format string, args ...interface{})   { Get(CategoryStore).Debug(format, args...) }
func GatewayDebug(format string, args ...interface{}) { Get(CategoryGateway).Debug(format, args...) }
