package resolver

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/seitarof/retaingen/internal/model"
)

// RuntimePkgPath is the import path of the runtime package generated code uses.
const RuntimePkgPath = "github.com/seitarof/retaingen/retain"

// Identifiers bound by the generated method signatures.
const (
	SourceVar = "src"
	DestVar   = "dst"
	StoreVar  = "store"
)

// Direction selects save or restore code.
type Direction int

const (
	Save Direction = iota
	Restore
)

func (d Direction) String() string {
	if d == Restore {
		return "restore"
	}
	return "save"
}

// Target is where a value lives: Access is an addressable Go expression and
// Key a Go expression evaluating to its store key.
type Target struct {
	Access string
	Key    string
}

// Analysis is the code for one field in one direction. Preamble and
// Epilogue statements sit outside any loop the body opens, so they run once.
type Analysis struct {
	Preamble []string
	Body     []string
	Epilogue []string
	Imports  []string
}

// Fragments returns preamble, body, and epilogue in emission order.
func (a Analysis) Fragments() []string {
	out := make([]string, 0, len(a.Preamble)+len(a.Body)+len(a.Epilogue))
	out = append(out, a.Preamble...)
	out = append(out, a.Body...)
	return append(out, a.Epilogue...)
}

func (a *Analysis) merge(o Analysis) {
	a.Preamble = append(a.Preamble, o.Preamble...)
	a.Body = append(a.Body, o.Body...)
	a.Epilogue = append(a.Epilogue, o.Epilogue...)
}

// Key returns the store key of f. A hidden field is qualified with its
// class name so it does not collide with the ancestor field it shadows.
func Key(f *model.FieldDescriptor) string {
	if f.Hidden {
		return f.Class.Name + "." + f.Name
	}
	return f.Name
}

// Engine turns resolved matches into code.
type Engine struct{}

// NewEngine returns an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Transform emits the code that moves f between the struct and the store in
// direction dir. Any failure, including a panic inside an analyzer, is
// returned as an *InternalError.
func (en *Engine) Transform(f *model.FieldDescriptor, m *Match, dir Direction) (a Analysis, err error) {
	if m == nil {
		return Analysis{}, &InternalError{Field: f.Name, Analyzer: "none", Err: fmt.Errorf("nil match")}
	}
	defer func() {
		if r := recover(); r != nil {
			a = Analysis{}
			err = &InternalError{Field: f.Name, Analyzer: m.AnalyzerName(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	e := newEmitter(f)
	recv := SourceVar
	if dir == Restore {
		recv = DestVar
	}
	tgt := Target{Access: recv + "." + f.Name, Key: strconv.Quote(Key(f))}

	a, err = e.Emit(m, tgt, dir)
	if err != nil {
		return Analysis{}, &InternalError{Field: f.Name, Analyzer: m.AnalyzerName(), Err: err}
	}
	a.Imports = e.importList()
	return a, nil
}

// Emitter carries per-field emission state: the generating package, fresh
// local names, and the imports the emitted code needs.
type Emitter struct {
	pkgPath  string
	counters map[string]int
	imports  map[string]struct{}
}

func newEmitter(f *model.FieldDescriptor) *Emitter {
	return &Emitter{
		pkgPath:  f.Class.PkgPath,
		counters: map[string]int{},
		imports:  map[string]struct{}{},
	}
}

// Emit emits m at tgt. Analyzers call it for nested matches.
func (e *Emitter) Emit(m *Match, tgt Target, dir Direction) (Analysis, error) {
	if m == nil {
		return Analysis{}, fmt.Errorf("nil match")
	}
	if m.Kind == KindConverter {
		return e.emitConverter(m, tgt, dir)
	}
	if m.Analyzer == nil {
		return Analysis{}, fmt.Errorf("%s match without analyzer", m.Kind)
	}
	return m.Analyzer.Emit(e, m, tgt, dir)
}

// Fresh returns a new local name with the given prefix: i0, i1, ...
func (e *Emitter) Fresh(prefix string) string {
	n := e.counters[prefix]
	e.counters[prefix] = n + 1
	return prefix + strconv.Itoa(n)
}

// Use records import paths needed by emitted code.
func (e *Emitter) Use(paths ...string) {
	for _, p := range paths {
		if p != "" && p != e.pkgPath {
			e.imports[p] = struct{}{}
		}
	}
}

// TypeExpr returns the expression of t and records its imports.
func (e *Emitter) TypeExpr(t *model.TypeRef) string {
	e.Use(t.Imports...)
	return t.Expr
}

// Runtime returns a qualified identifier from the runtime package.
func (e *Emitter) Runtime(name string) string {
	e.Use(RuntimePkgPath)
	return "retain." + name
}

func (e *Emitter) importList() []string {
	out := make([]string, 0, len(e.imports))
	for p := range e.imports {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (e *Emitter) emitConverter(m *Match, tgt Target, dir Direction) (Analysis, error) {
	if m.Converter == nil {
		return Analysis{}, fmt.Errorf("converter match without converter")
	}
	e.Use(m.Converter.PkgPath)
	conv := "new(" + m.Converter.Expr(e.pkgPath) + ")"
	if dir == Save {
		return Analysis{Body: []string{conv + ".Save(" + StoreVar + ", " + tgt.Key + ", " + tgt.Access + ")"}}, nil
	}
	return Analysis{Body: []string{block(
		"if v, ok := "+conv+".Restore("+StoreVar+", "+tgt.Key+"); ok",
		tgt.Access+" = v",
	)}}, nil
}

func block(head string, body ...string) string {
	return head + " {\n" + strings.Join(body, "\n") + "\n}"
}
