package resolver

import (
	"fmt"
	"strconv"

	"github.com/seitarof/retaingen/internal/model"
)

// DefaultAnalyzers returns built-in analyzers in priority order.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		&PrimitiveAnalyzer{},
		&PointerAnalyzer{},
		&StructAnalyzer{},
		&SliceAnalyzer{},
		&ArrayAnalyzer{},
		&MapAnalyzer{},
		&EnumAnalyzer{},
	}
}

type storeKind struct {
	method string
	goType string
}

var basicKinds = map[string]storeKind{
	"bool":       {"Bool", "bool"},
	"int":        {"Int64", "int64"},
	"int8":       {"Int64", "int64"},
	"int16":      {"Int64", "int64"},
	"int32":      {"Int64", "int64"},
	"rune":       {"Int64", "int64"},
	"int64":      {"Int64", "int64"},
	"uint":       {"Uint64", "uint64"},
	"uint8":      {"Uint64", "uint64"},
	"byte":       {"Uint64", "uint64"},
	"uint16":     {"Uint64", "uint64"},
	"uint32":     {"Uint64", "uint64"},
	"uint64":     {"Uint64", "uint64"},
	"uintptr":    {"Uint64", "uint64"},
	"float32":    {"Float64", "float64"},
	"float64":    {"Float64", "float64"},
	"complex64":  {"Complex128", "complex128"},
	"complex128": {"Complex128", "complex128"},
	"string":     {"String", "string"},
}

// PrimitiveAnalyzer: values with a direct store operation. Covers basic
// types, named types over them other than integer enums, []byte,
// time.Time, and time.Duration.
type PrimitiveAnalyzer struct{}

func (a *PrimitiveAnalyzer) Name() string { return "primitive" }

func (a *PrimitiveAnalyzer) Accepts(t *model.TypeRef) bool {
	if isTime(t) || isDuration(t) || isByteSlice(t) {
		return true
	}
	u := t.Under()
	if u.Kind != model.TypeKindBasic {
		return false
	}
	if _, ok := basicKinds[u.Name]; !ok {
		return false
	}
	return !isEnum(t)
}

func (a *PrimitiveAnalyzer) Resolve(_ *Scope, t *model.TypeRef) (*Match, error) {
	return &Match{Kind: KindPrimitive, Analyzer: a, Type: t}, nil
}

func (a *PrimitiveAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	t := m.Type
	switch {
	case isTime(t):
		return emitTime(e, tgt, dir), nil
	case isByteSlice(t):
		if dir == Save {
			return Analysis{Body: []string{StoreVar + ".PutBytes(" + tgt.Key + ", " + tgt.Access + ")"}}, nil
		}
		return Analysis{Body: []string{block(
			"if v, ok := "+StoreVar+".GetBytes("+tgt.Key+"); ok",
			tgt.Access+" = v",
		)}}, nil
	}

	kind, ok := basicKinds[t.Under().Name]
	if !ok {
		return Analysis{}, fmt.Errorf("no store operation for %s", t.Signature())
	}
	expr := e.TypeExpr(t)
	if dir == Save {
		value := tgt.Access
		if expr != kind.goType {
			value = kind.goType + "(" + tgt.Access + ")"
		}
		return Analysis{Body: []string{StoreVar + ".Put" + kind.method + "(" + tgt.Key + ", " + value + ")"}}, nil
	}
	value := "v"
	if expr != kind.goType {
		value = expr + "(v)"
	}
	return Analysis{Body: []string{block(
		"if v, ok := "+StoreVar+".Get"+kind.method+"("+tgt.Key+"); ok",
		tgt.Access+" = "+value,
	)}}, nil
}

func emitTime(e *Emitter, tgt Target, dir Direction) Analysis {
	e.Use("time")
	if dir == Save {
		return Analysis{Body: []string{StoreVar + ".PutString(" + tgt.Key + ", " + tgt.Access + ".Format(time.RFC3339Nano))"}}
	}
	return Analysis{Body: []string{block(
		"if s, ok := "+StoreVar+".GetString("+tgt.Key+"); ok",
		block("if v, err := time.Parse(time.RFC3339Nano, s); err == nil", tgt.Access+" = v"),
	)}}
}

// PointerAnalyzer: *T. A presence marker records non-nil pointers; the
// element is stored under the pointer's own key. When the element is itself
// a pointer it moves one level down, to retain.Member(key, "*"), so every
// level keeps its own marker.
type PointerAnalyzer struct{}

func (a *PointerAnalyzer) Name() string { return "pointer" }

func (a *PointerAnalyzer) Accepts(t *model.TypeRef) bool {
	return t.Under().Kind == model.TypeKindPointer
}

func (a *PointerAnalyzer) Resolve(s *Scope, t *model.TypeRef) (*Match, error) {
	elem, err := s.Resolve(t.Under().Elem)
	if err != nil {
		return nil, unsupported(t.Signature(), "pointer element", err)
	}
	return &Match{Kind: KindStructural, Analyzer: a, Type: t, Children: []*Match{elem}}, nil
}

func (a *PointerAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	if len(m.Children) != 1 {
		return Analysis{}, fmt.Errorf("pointer match has %d children", len(m.Children))
	}
	present := e.Runtime("Present") + "(" + tgt.Key + ")"
	elemKey := tgt.Key
	if m.Type.Under().Elem.Under().Kind == model.TypeKindPointer {
		elemKey = e.Runtime("Member") + "(" + tgt.Key + ", " + strconv.Quote("*") + ")"
	}
	inner, err := e.Emit(m.Children[0], Target{Access: "(*" + tgt.Access + ")", Key: elemKey}, dir)
	if err != nil {
		return Analysis{}, err
	}

	out := Analysis{Preamble: inner.Preamble, Epilogue: inner.Epilogue}
	if dir == Save {
		body := append([]string{StoreVar + ".PutBool(" + present + ", true)"}, inner.Body...)
		out.Body = []string{block("if "+tgt.Access+" != nil", body...)}
		return out, nil
	}
	elem := e.TypeExpr(m.Type.Under().Elem)
	body := append([]string{tgt.Access + " = new(" + elem + ")"}, inner.Body...)
	out.Body = []string{block("if set, _ := "+StoreVar+".GetBool("+present+"); set", body...)}
	return out, nil
}

// StructAnalyzer: named or anonymous structs. Every accessible member is
// resolved through the chain and stored under a member key.
type StructAnalyzer struct{}

func (a *StructAnalyzer) Name() string { return "struct" }

func (a *StructAnalyzer) Accepts(t *model.TypeRef) bool {
	return t.Under().Kind == model.TypeKindStruct
}

func (a *StructAnalyzer) Resolve(s *Scope, t *model.TypeRef) (*Match, error) {
	members := t.Under().Members
	if len(members) == 0 {
		return nil, unsupported(t.Signature(), "struct has no accessible members", nil)
	}
	children := make([]*Match, 0, len(members))
	for _, mem := range members {
		child, err := s.Resolve(mem.Type)
		if err != nil {
			return nil, unsupported(t.Signature(), "member "+mem.Name, err)
		}
		children = append(children, child)
	}
	return &Match{Kind: KindStructural, Analyzer: a, Type: t, Children: children}, nil
}

func (a *StructAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	members := m.Type.Under().Members
	if len(members) != len(m.Children) {
		return Analysis{}, fmt.Errorf("struct match has %d children for %d members", len(m.Children), len(members))
	}
	var out Analysis
	for i, mem := range members {
		inner, err := e.Emit(m.Children[i], Target{
			Access: tgt.Access + "." + mem.Name,
			Key:    e.Runtime("Member") + "(" + tgt.Key + ", " + strconv.Quote(mem.Name) + ")",
		}, dir)
		if err != nil {
			return Analysis{}, err
		}
		out.merge(inner)
	}
	return out, nil
}

// SliceAnalyzer: []T. The length is stored under retain.Len and each
// element under retain.Index. A nil slice stores nothing.
type SliceAnalyzer struct{}

func (a *SliceAnalyzer) Name() string { return "slice" }

func (a *SliceAnalyzer) Accepts(t *model.TypeRef) bool {
	return t.Under().Kind == model.TypeKindSlice
}

func (a *SliceAnalyzer) Resolve(s *Scope, t *model.TypeRef) (*Match, error) {
	elem, err := s.Resolve(t.Under().Elem)
	if err != nil {
		return nil, unsupported(t.Signature(), "element", err)
	}
	return &Match{Kind: KindContainer, Analyzer: a, Type: t, Children: []*Match{elem}}, nil
}

func (a *SliceAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	if len(m.Children) != 1 {
		return Analysis{}, fmt.Errorf("slice match has %d children", len(m.Children))
	}
	i := e.Fresh("i")
	lenKey := e.Runtime("Len") + "(" + tgt.Key + ")"
	inner, err := e.Emit(m.Children[0], Target{
		Access: tgt.Access + "[" + i + "]",
		Key:    e.Runtime("Index") + "(" + tgt.Key + ", " + i + ")",
	}, dir)
	if err != nil {
		return Analysis{}, err
	}

	out := Analysis{Preamble: inner.Preamble, Epilogue: inner.Epilogue}
	loop := block("for "+i+" := range "+tgt.Access, inner.Body...)
	if dir == Save {
		out.Body = []string{block("if "+tgt.Access+" != nil",
			StoreVar+".PutInt64("+lenKey+", int64(len("+tgt.Access+")))",
			loop,
		)}
		return out, nil
	}
	n := e.Fresh("n")
	out.Body = []string{block("if "+n+", ok := "+StoreVar+".GetInt64("+lenKey+"); ok && "+n+" >= 0",
		tgt.Access+" = make("+e.TypeExpr(m.Type)+", "+n+")",
		loop,
	)}
	return out, nil
}

// ArrayAnalyzer: [N]T. Elements are stored under retain.Index.
type ArrayAnalyzer struct{}

func (a *ArrayAnalyzer) Name() string { return "array" }

func (a *ArrayAnalyzer) Accepts(t *model.TypeRef) bool {
	return t.Under().Kind == model.TypeKindArray
}

func (a *ArrayAnalyzer) Resolve(s *Scope, t *model.TypeRef) (*Match, error) {
	elem, err := s.Resolve(t.Under().Elem)
	if err != nil {
		return nil, unsupported(t.Signature(), "element", err)
	}
	return &Match{Kind: KindContainer, Analyzer: a, Type: t, Children: []*Match{elem}}, nil
}

func (a *ArrayAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	if len(m.Children) != 1 {
		return Analysis{}, fmt.Errorf("array match has %d children", len(m.Children))
	}
	i := e.Fresh("i")
	inner, err := e.Emit(m.Children[0], Target{
		Access: tgt.Access + "[" + i + "]",
		Key:    e.Runtime("Index") + "(" + tgt.Key + ", " + i + ")",
	}, dir)
	if err != nil {
		return Analysis{}, err
	}
	return Analysis{
		Preamble: inner.Preamble,
		Body:     []string{block("for "+i+" := range "+tgt.Access, inner.Body...)},
		Epilogue: inner.Epilogue,
	}, nil
}

// MapAnalyzer: map[K]V. The entry count is stored under retain.Len and the
// i-th entry under retain.MapKey and retain.MapValue. Children are the key
// match followed by the value match.
type MapAnalyzer struct{}

func (a *MapAnalyzer) Name() string { return "map" }

func (a *MapAnalyzer) Accepts(t *model.TypeRef) bool {
	return t.Under().Kind == model.TypeKindMap
}

func (a *MapAnalyzer) Resolve(s *Scope, t *model.TypeRef) (*Match, error) {
	u := t.Under()
	key, err := s.Resolve(u.Key)
	if err != nil {
		return nil, unsupported(t.Signature(), "key", err)
	}
	value, err := s.Resolve(u.Elem)
	if err != nil {
		return nil, unsupported(t.Signature(), "value", err)
	}
	return &Match{Kind: KindContainer, Analyzer: a, Type: t, Children: []*Match{key, value}}, nil
}

func (a *MapAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	if len(m.Children) != 2 {
		return Analysis{}, fmt.Errorf("map match has %d children", len(m.Children))
	}
	u := m.Type.Under()
	i, k, v := e.Fresh("i"), e.Fresh("k"), e.Fresh("v")
	lenKey := e.Runtime("Len") + "(" + tgt.Key + ")"

	keyCode, err := e.Emit(m.Children[0], Target{
		Access: k,
		Key:    e.Runtime("MapKey") + "(" + tgt.Key + ", " + i + ")",
	}, dir)
	if err != nil {
		return Analysis{}, err
	}
	valueCode, err := e.Emit(m.Children[1], Target{
		Access: v,
		Key:    e.Runtime("MapValue") + "(" + tgt.Key + ", " + i + ")",
	}, dir)
	if err != nil {
		return Analysis{}, err
	}

	var out Analysis
	out.Preamble = append(append(out.Preamble, keyCode.Preamble...), valueCode.Preamble...)
	out.Epilogue = append(append(out.Epilogue, keyCode.Epilogue...), valueCode.Epilogue...)

	if dir == Save {
		body := append(append([]string{}, keyCode.Body...), valueCode.Body...)
		body = append(body, i+"++")
		out.Body = []string{block("if "+tgt.Access+" != nil",
			StoreVar+".PutInt64("+lenKey+", int64(len("+tgt.Access+")))",
			i+" := 0",
			block("for "+k+", "+v+" := range "+tgt.Access, body...),
		)}
		return out, nil
	}

	n := e.Fresh("n")
	body := []string{
		"var " + k + " " + e.TypeExpr(u.Key),
		"var " + v + " " + e.TypeExpr(u.Elem),
	}
	body = append(body, keyCode.Body...)
	body = append(body, valueCode.Body...)
	body = append(body, tgt.Access+"["+k+"] = "+v)
	out.Body = []string{block("if "+n+", ok := "+StoreVar+".GetInt64("+lenKey+"); ok && "+n+" >= 0",
		tgt.Access+" = make("+e.TypeExpr(m.Type)+", "+n+")",
		block("for "+i+" := 0; "+i+" < int("+n+"); "+i+"++", body...),
	)}
	return out, nil
}

// EnumAnalyzer: named integer types with declared constants, stored by
// constant name. A value outside the declared set is stored as a number.
type EnumAnalyzer struct{}

func (a *EnumAnalyzer) Name() string { return "enum" }

func (a *EnumAnalyzer) Accepts(t *model.TypeRef) bool {
	return isEnum(t)
}

func (a *EnumAnalyzer) Resolve(_ *Scope, t *model.TypeRef) (*Match, error) {
	return &Match{Kind: KindEnum, Analyzer: a, Type: t}, nil
}

func (a *EnumAnalyzer) Emit(e *Emitter, m *Match, tgt Target, dir Direction) (Analysis, error) {
	consts := m.Type.Enum
	if len(consts) == 0 {
		return Analysis{}, fmt.Errorf("enum %s has no constants", m.Type.Signature())
	}
	kind, ok := basicKinds[m.Type.Under().Name]
	if !ok {
		return Analysis{}, fmt.Errorf("no store operation for %s", m.Type.Signature())
	}
	e.Use(m.Type.Imports...)
	cases := make([]string, 0, 2*len(consts)+2)
	if dir == Save {
		for _, c := range consts {
			cases = append(cases, "case "+c.Expr+":", StoreVar+".PutString("+tgt.Key+", "+strconv.Quote(c.Name)+")")
		}
		cases = append(cases, "default:", StoreVar+".Put"+kind.method+"("+tgt.Key+", "+kind.goType+"("+tgt.Access+"))")
		return Analysis{Body: []string{block("switch "+tgt.Access, cases...)}}, nil
	}
	for _, c := range consts {
		cases = append(cases, "case "+strconv.Quote(c.Name)+":", tgt.Access+" = "+c.Expr)
	}
	return Analysis{Body: []string{
		block("if s, ok := "+StoreVar+".GetString("+tgt.Key+"); ok", block("switch s", cases...)) +
			" else " +
			block("if v, ok := "+StoreVar+".Get"+kind.method+"("+tgt.Key+"); ok", tgt.Access+" = "+m.Type.Expr+"(v)"),
	}}, nil
}

func isEnum(t *model.TypeRef) bool {
	if !t.IsNamed() || len(t.Enum) == 0 {
		return false
	}
	u := t.Under()
	if u.Kind != model.TypeKindBasic {
		return false
	}
	kind, ok := basicKinds[u.Name]
	return ok && (kind.method == "Int64" || kind.method == "Uint64")
}

func isTime(t *model.TypeRef) bool {
	return t.IsNamed() && t.PkgPath == "time" && t.Name == "Time"
}

func isDuration(t *model.TypeRef) bool {
	return t.IsNamed() && t.PkgPath == "time" && t.Name == "Duration"
}

func isByteSlice(t *model.TypeRef) bool {
	u := t.Under()
	if u.Kind != model.TypeKindSlice || u.Elem == nil || u.Elem.Kind != model.TypeKindBasic {
		return false
	}
	return u.Elem.Name == "byte" || u.Elem.Name == "uint8"
}
