// Package model holds the data shared by every stage of retaingen: the
// retained fields reported by the symbol source, the per-class models built
// from them, and the embedding hierarchy used to link those models.
package model

import (
	"fmt"
	"go/token"
	"strings"
)

// ClassID identifies a package-scope struct type.
type ClassID struct {
	PkgPath string
	Name    string
}

func (id ClassID) String() string {
	if id.PkgPath == "" {
		return id.Name
	}
	return id.PkgPath + "." + id.Name
}

// Less orders class IDs by package path, then name.
func (id ClassID) Less(other ClassID) bool {
	if id.PkgPath != other.PkgPath {
		return id.PkgPath < other.PkgPath
	}
	return id.Name < other.Name
}

// ConverterRef names a user supplied converter type.
type ConverterRef struct {
	PkgPath string
	PkgName string
	Name    string
}

// ParseConverterRef parses "Name" or "import/path.Name". A bare name refers to
// a type declared in pkgPath.
func ParseConverterRef(s, pkgPath string) (ConverterRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ConverterRef{}, fmt.Errorf("empty converter reference")
	}
	i := strings.LastIndex(s, ".")
	if i < 0 {
		if !isIdent(s) {
			return ConverterRef{}, fmt.Errorf("invalid converter name %q", s)
		}
		return ConverterRef{PkgPath: pkgPath, PkgName: lastElem(pkgPath), Name: s}, nil
	}
	path, name := s[:i], s[i+1:]
	if path == "" || !isIdent(name) || strings.HasSuffix(path, "/") {
		return ConverterRef{}, fmt.Errorf("invalid converter reference %q", s)
	}
	return ConverterRef{PkgPath: path, PkgName: lastElem(path), Name: name}, nil
}

func (c ConverterRef) String() string {
	if c.PkgPath == "" {
		return c.Name
	}
	return c.PkgPath + "." + c.Name
}

// Expr returns the converter's type expression as seen from pkgPath.
func (c ConverterRef) Expr(pkgPath string) string {
	if c.PkgPath == "" || c.PkgPath == pkgPath {
		return c.Name
	}
	return c.PkgName + "." + c.Name
}

// FieldDescriptor is one retained struct field.
type FieldDescriptor struct {
	Class     ClassID
	Name      string
	Type      *TypeRef
	Converter *ConverterRef
	Skip      bool
	// Hidden is set once while linking, when an ancestor retains a field of
	// the same name.
	Hidden bool
	Pos    token.Position
}

// ClassModel is one struct that has retained fields.
type ClassModel struct {
	Class     ClassID
	PkgName   string
	Companion ClassID
	Fields    []*FieldDescriptor
	// Ancestor is the nearest ancestor that has a model of its own. It is
	// nil for the root of a companion chain.
	Ancestor *ClassModel
	// AncestorPath lists the embedded field names leading from Class to
	// Ancestor.Class.
	AncestorPath []string
}

// FieldNames returns the names of the model's own fields in order.
func (m *ClassModel) FieldNames() []string {
	names := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		names = append(names, f.Name)
	}
	return names
}

// SuperLink is one step of the embedding chain: Class embeds Field of type
// Super.
type SuperLink struct {
	Super ClassID
	Field string
}

// Hierarchy answers superclass queries over the real embedding chain,
// including structs that have no retained fields.
type Hierarchy interface {
	Superclass(id ClassID) (SuperLink, bool)
}

// HierarchyMap is a Hierarchy backed by a map.
type HierarchyMap map[ClassID]SuperLink

func (h HierarchyMap) Superclass(id ClassID) (SuperLink, bool) {
	link, ok := h[id]
	return link, ok
}

// PackageInfo describes a package that declares retained fields.
type PackageInfo struct {
	Path string
	Name string
	Dir  string
}

func lastElem(pkgPath string) string {
	if i := strings.LastIndex(pkgPath, "/"); i >= 0 {
		return pkgPath[i+1:]
	}
	return pkgPath
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
