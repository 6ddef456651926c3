package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// TestLogger captures log output in memory for assertions. It implements
// Logger; records are written as one JSON object per line so tests can
// decode and inspect individual entries.
type TestLogger struct {
	mu     sync.Mutex
	buffer *bytes.Buffer
	level  Level
	fields map[string]any
}

// NewTestLogger returns a TestLogger capturing at the given minimum level
// together with the buffer holding its output.
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	return &TestLogger{
		buffer: buffer,
		level:  level,
		fields: make(map[string]any),
	}, buffer
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.write(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.write(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.write(LevelWarn, msg, fields) }
func (t *TestLogger) Error(msg string, fields ...any) { t.write(LevelError, msg, fields) }

// With implements Logger.With.
func (t *TestLogger) With(fields ...any) Logger {
	t.mu.Lock()
	defer t.mu.Unlock()
	child := &TestLogger{
		buffer: t.buffer,
		level:  t.level,
		fields: make(map[string]any, len(t.fields)+len(fields)/2),
	}
	for k, v := range t.fields {
		child.fields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			child.fields[key] = fields[i+1]
		}
	}
	return child
}

// Enabled implements Logger.Enabled.
func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

// Entries decodes every captured record.
func (t *TestLogger) Entries() []map[string]any {
	t.mu.Lock()
	defer t.mu.Unlock()
	var entries []map[string]any
	for _, line := range strings.Split(t.buffer.String(), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Contains reports whether any captured record has the given message.
func (t *TestLogger) Contains(msg string) bool {
	for _, e := range t.Entries() {
		if e["message"] == msg {
			return true
		}
	}
	return false
}

func (t *TestLogger) write(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	entry := make(map[string]any, len(t.fields)+len(fields)/2+2)
	for k, v := range t.fields {
		entry[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		if err, isErr := fields[i+1].(error); isErr {
			entry[key] = err.Error()
		} else {
			entry[key] = fields[i+1]
		}
	}
	entry["level"] = level.String()
	entry["message"] = msg

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(t.buffer, `{"level":%q,"message":%q}`+"\n", level.String(), msg)
		return
	}
	t.buffer.Write(data)
	t.buffer.WriteByte('\n')
}

// TestProvider is a LoggerProvider handing out a single shared TestLogger.
// Install it with SetProvider to capture all library logging in a test.
type TestProvider struct {
	Logger *TestLogger
}

// NewTestProvider creates a TestProvider capturing at debug level.
func NewTestProvider() *TestProvider {
	logger, _ := NewTestLogger(LevelDebug)
	return &TestProvider{Logger: logger}
}

// GetLogger implements LoggerProvider.
func (p *TestProvider) GetLogger() Logger { return p.Logger }

// GetLoggerWithName implements LoggerProvider.
func (p *TestProvider) GetLoggerWithName(name string) Logger {
	return p.Logger.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.
func (p *TestProvider) SetLevel(level Level) { p.Logger.level = level }
