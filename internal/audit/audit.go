// Copyright (c) 2025 The H3TAG developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package audit implements the fire-and-forget audit sink of spec §6:
// every failure path in the storage layer and direct voting engine
// emits a structured event here, and logging it must never fail the
// caller. Grounded on the teacher's package-level slog.Logger
// convention, with events additionally durable-logged to a rotating
// file via jrick/logrotate the way a long-running node would want its
// audit trail to survive a restart.
package audit

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}

// Severity classifies an audit event's urgency.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Event is the structured record described by spec §6's audit
// interface.
type Event struct {
	Type      string                 `json:"type"`
	Action    string                 `json:"action"`
	Severity  Severity               `json:"severity"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Logger is the audit collaborator consumed by the storage layer,
// block validator and direct voting engine.
type Logger interface {
	LogEvent(e Event)
}

// FileLogger writes every event as a JSON line to a rotating log file
// and mirrors it through the package's structured logger. LogEvent
// never returns an error and never panics: a write failure is itself
// logged and otherwise swallowed, matching the "must not fail the
// caller" contract of spec §6.
type FileLogger struct {
	mu  sync.Mutex
	out io.Writer
}

// NewFileLogger opens (or creates) path as a size-rotated log file.
// maxSizeBytes and maxRolls follow jrick/logrotate's own semantics; a
// maxSizeBytes of 0 disables rotation.
func NewFileLogger(path string, maxSizeBytes int64, maxRolls int) (*FileLogger, error) {
	r, err := rotator.New(path, maxSizeBytes, false, maxRolls)
	if err != nil {
		return nil, err
	}
	return &FileLogger{out: r}, nil
}

// LogEvent appends e as a JSON line and mirrors it to the structured
// logger at a level derived from e.Severity.
func (l *FileLogger) LogEvent(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	switch e.Severity {
	case SeverityCritical:
		log.Errorf("audit: %s/%s from %s: %v", e.Type, e.Action, e.Source, e.Details)
	case SeverityWarning:
		log.Warnf("audit: %s/%s from %s: %v", e.Type, e.Action, e.Source, e.Details)
	default:
		log.Infof("audit: %s/%s from %s", e.Type, e.Action, e.Source)
	}

	data, err := json.Marshal(e)
	if err != nil {
		log.Errorf("audit: failed to marshal event: %v", err)
		return
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(data); err != nil {
		log.Errorf("audit: failed to write event: %v", err)
	}
}

// Close releases the underlying rotator, if any.
func (l *FileLogger) Close() error {
	if closer, ok := l.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NopLogger discards every event; useful in tests and as a safe
// zero-value default for components constructed without an audit
// collaborator.
type NopLogger struct{}

// LogEvent implements Logger by doing nothing.
func (NopLogger) LogEvent(Event) {}
