package cli

import (
	"fmt"
	"go/token"
	"io"
	"sort"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/generator"
	"github.com/seitarof/retaingen/internal/hierarchy"
	"github.com/seitarof/retaingen/internal/model"
	"github.com/seitarof/retaingen/internal/parser"
	"github.com/seitarof/retaingen/internal/resolver"
	"github.com/seitarof/retaingen/internal/synth"
)

// Runner orchestrates parser/hierarchy/resolver/synth/generator layers.
type Runner interface {
	Run(cfg *Config) error
}

type runnerImpl struct {
	source    parser.Source
	generator generator.Generator
	logger    *zap.Logger
	dump      io.Writer
}

// NewRunner creates a default runner implementation. Model dumps requested
// with --dump are written to dump.
func NewRunner(src parser.Source, g generator.Generator, logger *zap.Logger, dump io.Writer) Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dump == nil {
		dump = io.Discard
	}
	return &runnerImpl{source: src, generator: g, logger: logger, dump: dump}
}

// Run executes a single generation cycle. Nothing is written when any
// stage reports an error diagnostic.
func (r *runnerImpl) Run(cfg *Config) error {
	registry, err := cfg.Registry()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	sink := diag.NewCollector(diag.NewLogSink(r.logger))

	found, err := r.source.Discover(cfg.Patterns...)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	for _, d := range found.Diagnostics {
		sink.Report(d)
	}
	if n := found.ErrorCount(); n > 0 {
		diag.Notef(sink, token.Position{}, "%d error(s) occurred, no files are generated", n)
		return fmt.Errorf("discovery reported %d error(s)", n)
	}

	models := hierarchy.Build(found.Fields, found.Packages, cfg.Suffix)
	hierarchy.Link(models, found.Hierarchy)
	sorted := models.Sorted()
	if cfg.DumpModels {
		dumpModels(r.dump, sorted)
	}

	s := synth.New(resolver.New(registry, resolver.DefaultAnalyzers()...), resolver.NewEngine(), sink)
	byPkg := map[string]*generator.Unit{}
	for _, m := range sorted {
		c, err := s.Synthesize(m)
		if err != nil {
			return fmt.Errorf("synthesize: %w", err)
		}
		u, ok := byPkg[m.Class.PkgPath]
		if !ok {
			u = newUnit(found.Packages, m)
			byPkg[m.Class.PkgPath] = u
		}
		u.Companions = append(u.Companions, c)
	}

	if n := sink.Count(diag.Error); n > 0 {
		diag.Notef(sink, token.Position{}, "%d error(s) occurred, no files are generated", n)
		return fmt.Errorf("resolution reported %d error(s)", n)
	}
	if len(byPkg) == 0 {
		r.logger.Info("no retained fields found", zap.Strings("patterns", cfg.Patterns))
		return nil
	}

	units := make([]generator.Unit, 0, len(byPkg))
	for _, u := range byPkg {
		units = append(units, *u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].PkgPath < units[j].PkgPath })

	if err := r.generator.Generate(cfg, units); err != nil {
		return fmt.Errorf("generate: %w", err)
	}
	r.logger.Info("companions generated",
		zap.Int("packages", len(units)),
		zap.Int("classes", len(sorted)),
		zap.String("file", cfg.OutputFilename()),
	)
	return nil
}

func newUnit(pkgs map[string]model.PackageInfo, m *model.ClassModel) *generator.Unit {
	info := pkgs[m.Class.PkgPath]
	name := info.Name
	if name == "" {
		name = m.PkgName
	}
	return &generator.Unit{PkgName: name, PkgPath: m.Class.PkgPath, Dir: info.Dir}
}

func dumpModels(w io.Writer, models []*model.ClassModel) {
	cs := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
		MaxDepth:                5,
	}
	for _, m := range models {
		fmt.Fprintf(w, "# %s\n", m.Class)
		cs.Fdump(w, m)
	}
}
