package log

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	mterrors "github.com/knsamati/modeltune/pkg/errors"
)

// zerologLogger adapts a zerolog.Logger to the Logger interface.
type zerologLogger struct {
	zl zerolog.Logger
}

// zerologProvider is the default LoggerProvider backed by zerolog writing
// JSON records to stderr.
type zerologProvider struct {
	mu    sync.RWMutex
	level zerolog.Level
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = newZerologProvider()
)

func init() {
	// Route library warnings (convergence, coverage) through the structured
	// logger so they carry the same fields as everything else.
	mterrors.SetZerologWarnFunc(func(warning error) {
		GetLogger().Warn(warning.Error(), ErrorTypeKey, typeName(warning))
	})
}

func typeName(err error) string {
	switch err.(type) {
	case *mterrors.ConvergenceWarning:
		return "ConvergenceWarning"
	case *mterrors.CoverageWarning:
		return "CoverageWarning"
	case *mterrors.UndefinedMetricWarning:
		return "UndefinedMetricWarning"
	default:
		return "Warning"
	}
}

func newZerologProvider() *zerologProvider {
	return &zerologProvider{level: zerolog.InfoLevel}
}

// GetLogger returns the default logger from the current provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level on the current provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}

// SetProvider replaces the process-wide provider. Intended for tests.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

func (p *zerologProvider) base() zerolog.Logger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return zerolog.New(os.Stderr).Level(p.level).With().Timestamp().Logger()
}

// GetLogger implements LoggerProvider.
func (p *zerologProvider) GetLogger() Logger {
	return &zerologLogger{zl: p.base()}
}

// GetLoggerWithName implements LoggerProvider.
func (p *zerologProvider) GetLoggerWithName(name string) Logger {
	return &zerologLogger{zl: p.base().With().Str(ComponentKey, name).Logger()}
}

// SetLevel implements LoggerProvider.
func (p *zerologProvider) SetLevel(level Level) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = toZerologLevel(level)
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (l *zerologLogger) Debug(msg string, fields ...any) { l.emit(l.zl.Debug(), msg, fields) }
func (l *zerologLogger) Info(msg string, fields ...any)  { l.emit(l.zl.Info(), msg, fields) }
func (l *zerologLogger) Warn(msg string, fields ...any)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *zerologLogger) Error(msg string, fields ...any) { l.emit(l.zl.Error(), msg, fields) }

// With implements Logger.With.
func (l *zerologLogger) With(fields ...any) Logger {
	ctx := l.zl.With()
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ctx = ctx.Interface(key, fields[i+1])
	}
	return &zerologLogger{zl: ctx.Logger()}
}

// Enabled implements Logger.Enabled.
func (l *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= l.zl.GetLevel()
}

func (l *zerologLogger) emit(e *zerolog.Event, msg string, fields []any) {
	if e == nil {
		return
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case error:
			// Typed errors marshal their structured fields; others fall
			// back to the message string.
			if obj, ok := v.(zerolog.LogObjectMarshaler); ok {
				e = e.Object(key, obj)
			} else {
				e = e.AnErr(key, v)
			}
		case zerolog.LogObjectMarshaler:
			e = e.Object(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	e.Msg(msg)
}
