package cli

import (
	"testing"

	"github.com/seitarof/retaingen/internal/generator"
	"github.com/seitarof/retaingen/internal/parser"
)

type discardWriter struct{}

func (discardWriter) Write(_ string, _ []byte) error { return nil }

func BenchmarkRunnerRun_EndToEnd(b *testing.B) {
	runner := NewRunner(
		parser.New(nil),
		generator.New(generator.NewGoimportsFormatter(), discardWriter{}),
		nil,
		nil,
	)
	cfg := &Config{
		Patterns: []string{testdataPath + "inherit"},
		Filename: DefaultFilename,
		Suffix:   "Retainer",
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := runner.Run(cfg); err != nil {
			b.Fatal(err)
		}
	}
}
