package generator

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/seitarof/retaingen/internal/synth"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// Generator writes companion types to Go source files.
type Generator interface {
	Generate(cfg Config, units []Unit) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
}

// Formatter formats generated Go code and organizes imports.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

// Unit is one generated file: the companions of a single package.
type Unit struct {
	PkgName    string
	PkgPath    string
	Dir        string
	Companions []synth.Companion
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type goimportsFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Package    string
	Imports    []string
	Companions []synth.Companion
}

type rendered struct {
	filename string
	data     []byte
}

// New creates a code generator.
func New(f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, tmpl: tmpl}
}

// NewGoimportsFormatter creates a formatter backed by goimports.
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

// Generate renders and formats every unit before writing any of them, so a
// failure leaves no partial output behind.
func (g *generatorImpl) Generate(cfg Config, units []Unit) error {
	if len(units) == 0 {
		return fmt.Errorf("no companions to generate")
	}

	files := make([]rendered, 0, len(units))
	for _, u := range units {
		if len(u.Companions) == 0 {
			continue
		}
		filename := cfg.OutputFilename()
		if u.Dir != "" {
			filename = filepath.Join(u.Dir, filename)
		}

		var buf bytes.Buffer
		if err := g.tmpl.ExecuteTemplate(&buf, "retain.go.tmpl", buildTemplateData(u)); err != nil {
			return fmt.Errorf("template %s: %w", u.PkgPath, err)
		}
		formatted, err := g.formatter.Format(filename, buf.Bytes())
		if err != nil {
			return fmt.Errorf("format %s: %w", filename, err)
		}
		files = append(files, rendered{filename: filename, data: formatted})
	}

	for _, f := range files {
		if err := g.writer.Write(f.filename, f.data); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}

func buildTemplateData(u Unit) templateData {
	importsSet := map[string]struct{}{}
	companions := make([]synth.Companion, len(u.Companions))
	copy(companions, u.Companions)
	sort.SliceStable(companions, func(i, j int) bool {
		return companions[i].Name < companions[j].Name
	})

	for _, c := range companions {
		for _, path := range c.Imports {
			if path != u.PkgPath {
				importsSet[path] = struct{}{}
			}
		}
	}

	importsList := make([]string, 0, len(importsSet))
	for path := range importsSet {
		importsList = append(importsList, path)
	}
	sort.Strings(importsList)

	return templateData{
		Package:    u.PkgName,
		Imports:    importsList,
		Companions: companions,
	}
}
