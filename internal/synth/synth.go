// Package synth assembles the Save and Restore method bodies of a companion
// type from the per-field analyses of one class model.
package synth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/model"
	"github.com/seitarof/retaingen/internal/resolver"
)

// Companion is everything the emitter needs to write one companion type.
type Companion struct {
	// Source is the struct the companion saves and restores.
	Source  model.ClassID
	Name    string
	PkgPath string
	PkgName string
	// Super is the ancestor companion the type embeds, or nil for the root
	// of a chain.
	Super   *SuperCall
	Save    []string
	Restore []string
	Imports []string
}

// SuperCall describes the embedded ancestor companion and how to reach the
// ancestor struct from the source struct.
type SuperCall struct {
	// Type is the ancestor companion's type expression.
	Type string
	// Field is the name of the embedded field, the companion's bare name.
	Field string
	// Path is the selector path from the source struct to the ancestor,
	// such as "Mid.Base".
	Path string
}

// Synthesizer builds companions.
type Synthesizer struct {
	resolver resolver.Resolver
	engine   *resolver.Engine
	sink     diag.Sink
}

// New returns a Synthesizer. Resolution failures are reported to sink.
func New(r resolver.Resolver, en *resolver.Engine, sink diag.Sink) *Synthesizer {
	if en == nil {
		en = resolver.NewEngine()
	}
	return &Synthesizer{resolver: r, engine: en, sink: sink}
}

// Synthesize builds the companion of m. A field whose type cannot be
// resolved is reported and left out; the rest of the class is still
// synthesized. An internal error stops the class and is returned.
func (s *Synthesizer) Synthesize(m *model.ClassModel) (Companion, error) {
	c := Companion{
		Source:  m.Class,
		Name:    m.Companion.Name,
		PkgPath: m.Class.PkgPath,
		PkgName: m.PkgName,
	}
	imports := map[string]struct{}{resolver.RuntimePkgPath: {}}

	if m.Ancestor != nil {
		c.Super = superCall(m)
		c.Save = append(c.Save, ancestorCall(c.Super, "Save", resolver.SourceVar))
		c.Restore = append(c.Restore, ancestorCall(c.Super, "Restore", resolver.DestVar))
		if p := m.Ancestor.Companion.PkgPath; p != m.Class.PkgPath {
			imports[p] = struct{}{}
		}
	}

	for _, f := range m.Fields {
		match, err := s.resolver.ResolveField(f)
		if err != nil {
			diag.Errorf(s.sink, f.Pos, "field %s.%s: %v", m.Class.Name, f.Name, err)
			continue
		}
		save, err := s.engine.Transform(f, match, resolver.Save)
		if err != nil {
			diag.Errorf(s.sink, f.Pos, "field %s.%s: %v", m.Class.Name, f.Name, err)
			return Companion{}, fmt.Errorf("synthesize %s: %w", m.Class, err)
		}
		restore, err := s.engine.Transform(f, match, resolver.Restore)
		if err != nil {
			diag.Errorf(s.sink, f.Pos, "field %s.%s: %v", m.Class.Name, f.Name, err)
			return Companion{}, fmt.Errorf("synthesize %s: %w", m.Class, err)
		}
		c.Save = append(c.Save, save.Fragments()...)
		c.Restore = append(c.Restore, restore.Fragments()...)
		for _, p := range save.Imports {
			imports[p] = struct{}{}
		}
		for _, p := range restore.Imports {
			imports[p] = struct{}{}
		}
	}

	c.Imports = make([]string, 0, len(imports))
	for p := range imports {
		c.Imports = append(c.Imports, p)
	}
	sort.Strings(c.Imports)
	return c, nil
}

func superCall(m *model.ClassModel) *SuperCall {
	anc := m.Ancestor.Companion
	typ := anc.Name
	if anc.PkgPath != m.Class.PkgPath {
		typ = m.Ancestor.PkgName + "." + anc.Name
	}
	return &SuperCall{
		Type:  typ,
		Field: anc.Name,
		Path:  strings.Join(m.AncestorPath, "."),
	}
}

func ancestorCall(sc *SuperCall, method, recv string) string {
	return "r." + sc.Field + "." + method + "(&" + recv + "." + sc.Path + ", " + resolver.StoreVar + ")"
}
