package diag

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCollector_CountsAndForwards(t *testing.T) {
	var forwarded []Diagnostic
	c := NewCollector(sinkFunc(func(d Diagnostic) { forwarded = append(forwarded, d) }))

	pos := token.Position{Filename: "a.go", Line: 3, Column: 2}
	Errorf(c, pos, "field %s: unsupported", "X")
	Warnf(c, token.Position{}, "careful")
	Notef(c, token.Position{}, "%d error(s)", 1)

	assert.True(t, c.HasErrors())
	assert.Equal(t, 1, c.Count(Error))
	assert.Equal(t, 1, c.Count(Warning))
	assert.Equal(t, 1, c.Count(Note))
	assert.Len(t, forwarded, 3)
	assert.Equal(t, c.All(), forwarded)

	err := c.Err()
	require.Error(t, err)
	assert.Equal(t, "a.go:3:2: error: field X: unsupported", err.Error())
}

func TestCollector_NoErrors(t *testing.T) {
	c := NewCollector(nil)
	Warnf(c, token.Position{}, "only a warning")

	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Severity: Note, Message: "hello"}
	assert.Equal(t, "note: hello", d.String())
}

func TestLogSink_LevelsAndPosition(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewLogSink(zap.New(core))

	s.Report(Diagnostic{Severity: Error, Message: "bad", Pos: token.Position{Filename: "x.go", Line: 1, Column: 1}})
	s.Report(Diagnostic{Severity: Warning, Message: "meh"})
	s.Report(Diagnostic{Severity: Note, Message: "fyi"})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "x.go:1:1", entries[0].ContextMap()["pos"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.NotContains(t, entries[2].ContextMap(), "pos")
}

func TestNewLogSink_NilLogger(t *testing.T) {
	s := NewLogSink(nil)
	s.Report(Diagnostic{Severity: Error, Message: "dropped"})
}

type sinkFunc func(Diagnostic)

func (f sinkFunc) Report(d Diagnostic) { f(d) }
