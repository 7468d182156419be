package model

import (
	"strconv"
	"strings"
)

// TypeKind is coarse-grained type category.
type TypeKind int

const (
	TypeKindBasic TypeKind = iota
	TypeKindNamed
	TypeKindPointer
	TypeKindSlice
	TypeKindArray
	TypeKindMap
	TypeKindStruct
	TypeKindInterface
	TypeKindOther
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindBasic:
		return "basic"
	case TypeKindNamed:
		return "named"
	case TypeKindPointer:
		return "pointer"
	case TypeKindSlice:
		return "slice"
	case TypeKindArray:
		return "array"
	case TypeKindMap:
		return "map"
	case TypeKindStruct:
		return "struct"
	case TypeKindInterface:
		return "interface"
	default:
		return "other"
	}
}

// TypeRef is the declared type signature of a field or of a nested element.
//
// Named types do not expand their underlying type in Signature, so a graph
// built for a recursive type such as `type Tree []Tree` has a finite
// identity even though Underlying points back into the graph.
type TypeRef struct {
	Kind TypeKind
	// Name is the basic type name, or the bare declared name of a named type.
	Name    string
	PkgPath string
	PkgName string
	// Expr is the Go type expression relative to the generating package.
	Expr string
	// Imports lists the package paths referenced by Expr.
	Imports []string

	Args       []*TypeRef
	Elem       *TypeRef
	Key        *TypeRef
	Len        int64
	Underlying *TypeRef
	Members    []Member
	Enum       []EnumConst
}

// Member is one accessible struct member.
type Member struct {
	Name string
	Type *TypeRef
}

// EnumConst is one declared constant of a named value type.
type EnumConst struct {
	// Name is the constant's declared name; it is the stored value.
	Name string
	// Expr references the constant from the generating package.
	Expr string
}

// Under returns the underlying type of a named type, or t itself.
func (t *TypeRef) Under() *TypeRef {
	if t == nil {
		return nil
	}
	if t.Kind == TypeKindNamed && t.Underlying != nil {
		return t.Underlying
	}
	return t
}

// IsNamed reports whether t is a declared (named) type.
func (t *TypeRef) IsNamed() bool {
	return t != nil && t.Kind == TypeKindNamed
}

// QualifiedName returns "pkgpath.Name" for named types and Name otherwise.
func (t *TypeRef) QualifiedName() string {
	if t.PkgPath == "" {
		return t.Name
	}
	return t.PkgPath + "." + t.Name
}

// Signature returns the canonical identity of t.
func (t *TypeRef) Signature() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeKindNamed:
		if len(t.Args) == 0 {
			return t.QualifiedName()
		}
		args := make([]string, 0, len(t.Args))
		for _, a := range t.Args {
			args = append(args, a.Signature())
		}
		return t.QualifiedName() + "[" + strings.Join(args, ",") + "]"
	case TypeKindPointer:
		return "*" + t.Elem.Signature()
	case TypeKindSlice:
		return "[]" + t.Elem.Signature()
	case TypeKindArray:
		return "[" + strconv.FormatInt(t.Len, 10) + "]" + t.Elem.Signature()
	case TypeKindMap:
		return "map[" + t.Key.Signature() + "]" + t.Elem.Signature()
	case TypeKindStruct:
		var b strings.Builder
		b.WriteString("struct{")
		for i, m := range t.Members {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(m.Name)
			b.WriteString(" ")
			b.WriteString(m.Type.Signature())
		}
		b.WriteString("}")
		return b.String()
	default:
		if t.Name != "" {
			return t.Name
		}
		return t.Kind.String()
	}
}

func (t *TypeRef) String() string {
	return t.Signature()
}

// Basic returns a basic type such as int or string.
func Basic(name string) *TypeRef {
	return &TypeRef{Kind: TypeKindBasic, Name: name, Expr: name}
}

// Named returns a named type declared in pkgPath. Expr is qualified with the
// last path element unless local is true.
func Named(pkgPath, name string, under *TypeRef, local bool) *TypeRef {
	pkgName := pkgPath
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		pkgName = pkgPath[i+1:]
	}
	t := &TypeRef{
		Kind:       TypeKindNamed,
		Name:       name,
		PkgPath:    pkgPath,
		PkgName:    pkgName,
		Expr:       name,
		Underlying: under,
	}
	if !local && pkgPath != "" {
		t.Expr = pkgName + "." + name
		t.Imports = []string{pkgPath}
	}
	return t
}

// PointerTo returns *elem.
func PointerTo(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeKindPointer, Elem: elem, Expr: "*" + elem.Expr, Imports: elem.Imports}
}

// SliceOf returns []elem.
func SliceOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeKindSlice, Elem: elem, Expr: "[]" + elem.Expr, Imports: elem.Imports}
}

// ArrayOf returns [n]elem.
func ArrayOf(n int64, elem *TypeRef) *TypeRef {
	return &TypeRef{
		Kind:    TypeKindArray,
		Len:     n,
		Elem:    elem,
		Expr:    "[" + strconv.FormatInt(n, 10) + "]" + elem.Expr,
		Imports: elem.Imports,
	}
}

// MapOf returns map[key]elem.
func MapOf(key, elem *TypeRef) *TypeRef {
	return &TypeRef{
		Kind:    TypeKindMap,
		Key:     key,
		Elem:    elem,
		Expr:    "map[" + key.Expr + "]" + elem.Expr,
		Imports: append(append([]string{}, key.Imports...), elem.Imports...),
	}
}

// StructOf returns an anonymous struct with the given members.
func StructOf(members ...Member) *TypeRef {
	parts := make([]string, 0, len(members))
	var imports []string
	for _, m := range members {
		parts = append(parts, m.Name+" "+m.Type.Expr)
		imports = append(imports, m.Type.Imports...)
	}
	return &TypeRef{
		Kind:    TypeKindStruct,
		Members: members,
		Expr:    "struct{ " + strings.Join(parts, "; ") + " }",
		Imports: imports,
	}
}
