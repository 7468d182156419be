package resolver

import (
	"github.com/seitarof/retaingen/internal/model"
)

// Resolver picks a strategy for a retained field.
type Resolver interface {
	ResolveField(f *model.FieldDescriptor) (*Match, error)
}

// Analyzer handles one family of type shapes.
//
// Accepts decides applicability from the shape alone. Once an analyzer
// accepts a type, the chain commits to it: a failure in Resolve is final.
type Analyzer interface {
	Name() string
	Accepts(t *model.TypeRef) bool
	Resolve(s *Scope, t *model.TypeRef) (*Match, error)
	Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error)
}

// Chain tries analyzers in priority order. Converters registered for a
// signature take priority over every analyzer at every nesting level.
type Chain struct {
	analyzers []Analyzer
	registry  Registry
}

// New builds a chain. A nil registry has no entries.
func New(registry Registry, analyzers ...Analyzer) *Chain {
	if registry == nil {
		registry = emptyRegistry{}
	}
	return &Chain{analyzers: analyzers, registry: registry}
}

// ResolveField resolves f. An explicit converter on the field is used
// verbatim and the chain is not consulted.
func (c *Chain) ResolveField(f *model.FieldDescriptor) (*Match, error) {
	if f.Converter != nil {
		return converterMatch(f.Type, *f.Converter), nil
	}
	return c.Resolve(f.Type)
}

// Resolve resolves t in a fresh scope.
func (c *Chain) Resolve(t *model.TypeRef) (*Match, error) {
	s := &Scope{chain: c, path: map[string]struct{}{}}
	return s.Resolve(t)
}

// Scope is one top-level resolution. It tracks the signatures on the
// current path so self-referential types fail instead of recursing forever.
type Scope struct {
	chain *Chain
	path  map[string]struct{}
}

// Resolve resolves t, a type nested inside the type the scope started from.
func (s *Scope) Resolve(t *model.TypeRef) (*Match, error) {
	if t == nil {
		return nil, unsupported("<nil>", "missing type information", nil)
	}
	sig := t.Signature()
	if ref, ok := s.chain.registry.Lookup(sig); ok {
		return converterMatch(t, ref), nil
	}
	if _, ok := s.path[sig]; ok {
		return nil, unsupported(sig, "recursive", ErrCycle)
	}
	s.path[sig] = struct{}{}
	defer delete(s.path, sig)

	for _, a := range s.chain.analyzers {
		if a.Accepts(t) {
			return a.Resolve(s, t)
		}
	}
	return nil, unsupported(sig, "no analyzer accepts "+t.Under().Kind.String()+" types", nil)
}

func converterMatch(t *model.TypeRef, ref model.ConverterRef) *Match {
	return &Match{Kind: KindConverter, Type: t, Converter: &ref}
}
