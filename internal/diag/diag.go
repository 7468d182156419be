// Package diag collects diagnostics reported while discovering, resolving,
// and synthesizing retained fields.
package diag

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"go.uber.org/zap"
)

// Severity is the level of a Diagnostic.
type Severity int

const (
	Note Severity = iota
	Warning
	Error
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is one reported message.
type Diagnostic struct {
	Severity Severity
	Message  string
	// Pos is the source location. It is the zero value when unknown.
	Pos token.Position
}

// String formats the diagnostic the way the go tool formats compile errors.
func (d Diagnostic) String() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// Errorf reports an error at pos.
func Errorf(s Sink, pos token.Position, format string, args ...any) {
	s.Report(Diagnostic{Severity: Error, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Warnf reports a warning at pos.
func Warnf(s Sink, pos token.Position, format string, args ...any) {
	s.Report(Diagnostic{Severity: Warning, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Notef reports a note at pos.
func Notef(s Sink, pos token.Position, format string, args ...any) {
	s.Report(Diagnostic{Severity: Note, Message: fmt.Sprintf(format, args...), Pos: pos})
}

// Collector accumulates diagnostics and forwards each one to an optional
// downstream sink.
type Collector struct {
	Next  Sink
	items []Diagnostic
}

// NewCollector returns a Collector forwarding to next, which may be nil.
func NewCollector(next Sink) *Collector {
	return &Collector{Next: next}
}

func (c *Collector) Report(d Diagnostic) {
	c.items = append(c.items, d)
	if c.Next != nil {
		c.Next.Report(d)
	}
}

// All returns every diagnostic in report order.
func (c *Collector) All() []Diagnostic {
	return append([]Diagnostic(nil), c.items...)
}

// Count returns the number of diagnostics of the given severity.
func (c *Collector) Count(s Severity) int {
	n := 0
	for _, d := range c.items {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// HasErrors reports whether any error has been collected.
func (c *Collector) HasErrors() bool {
	return c.Count(Error) > 0
}

// Err returns a combined error of all collected errors, or nil.
func (c *Collector) Err() error {
	var parts []string
	for _, d := range c.items {
		if d.Severity == Error {
			parts = append(parts, d.String())
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return errors.New(strings.Join(parts, "; "))
}

// LogSink writes diagnostics to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

// NewLogSink returns a LogSink. A nil logger discards everything.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{Logger: logger}
}

func (s *LogSink) Report(d Diagnostic) {
	var fields []zap.Field
	if d.Pos.IsValid() {
		fields = append(fields, zap.String("pos", d.Pos.String()))
	}
	switch d.Severity {
	case Error:
		s.Logger.Error(d.Message, fields...)
	case Warning:
		s.Logger.Warn(d.Message, fields...)
	default:
		s.Logger.Info(d.Message, fields...)
	}
}
