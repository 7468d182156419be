// Package hierarchy builds one ClassModel per struct with retained fields
// and links each model to the nearest ancestor that has one too.
//
// Building and linking are separate passes: every model must exist before
// any link is resolved, because discovery order says nothing about which
// classes embed which.
package hierarchy

import (
	"sort"

	"github.com/seitarof/retaingen/internal/model"
)

// DefaultSuffix is appended to a class name to name its companion.
const DefaultSuffix = "Retainer"

// Models indexes class models by class.
type Models map[model.ClassID]*model.ClassModel

// Sorted returns the models ordered by class.
func (ms Models) Sorted() []*model.ClassModel {
	out := make([]*model.ClassModel, 0, len(ms))
	for _, m := range ms {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class.Less(out[j].Class) })
	return out
}

// Build groups fields by class. Skipped fields are dropped. Fields are put in
// a stable order (class, then source position, then name) so output does
// not depend on the order the symbol source reported them in.
func Build(fields []*model.FieldDescriptor, pkgs map[string]model.PackageInfo, suffix string) Models {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	kept := make([]*model.FieldDescriptor, 0, len(fields))
	for _, f := range fields {
		if f == nil || f.Skip {
			continue
		}
		kept = append(kept, f)
	}
	sort.SliceStable(kept, func(i, j int) bool { return fieldLess(kept[i], kept[j]) })

	models := make(Models)
	for _, f := range kept {
		m, ok := models[f.Class]
		if !ok {
			m = &model.ClassModel{
				Class:     f.Class,
				PkgName:   packageName(pkgs, f.Class.PkgPath),
				Companion: model.ClassID{PkgPath: f.Class.PkgPath, Name: f.Class.Name + suffix},
			}
			models[f.Class] = m
		}
		m.Fields = append(m.Fields, f)
	}
	return models
}

// Link sets Ancestor, AncestorPath, and the hidden flags of every model.
//
// Each model walks the real embedding chain upward. The first class on the
// chain that has a model becomes the ancestor; intermediate classes without
// retained fields are skipped. Every model found on the chain, not only the
// nearest one, takes part in hiding.
func Link(models Models, h model.Hierarchy) {
	for _, m := range models.Sorted() {
		ancestors, path := chain(models, h, m)
		if len(ancestors) > 0 {
			m.Ancestor = ancestors[0]
			m.AncestorPath = path
		}
		hidden := ComputeHiddenFields(m, ancestors)
		for _, f := range m.Fields {
			if _, ok := hidden[f.Name]; ok {
				f.Hidden = true
			}
		}
	}
}

// ComputeHiddenFields returns the names of m's own fields that an ancestor
// also retains. Hiding is by name only; types are not compared.
func ComputeHiddenFields(m *model.ClassModel, ancestors []*model.ClassModel) map[string]struct{} {
	hidden := make(map[string]struct{})
	if len(ancestors) == 0 {
		return hidden
	}
	inherited := make(map[string]struct{})
	for _, a := range ancestors {
		for _, f := range a.Fields {
			inherited[f.Name] = struct{}{}
		}
	}
	for _, f := range m.Fields {
		if _, ok := inherited[f.Name]; ok {
			hidden[f.Name] = struct{}{}
		}
	}
	return hidden
}

// chain returns the modeled ancestors of m, nearest first, and the embedded
// field path from m to the nearest one.
func chain(models Models, h model.Hierarchy, m *model.ClassModel) ([]*model.ClassModel, []string) {
	var (
		ancestors []*model.ClassModel
		path      []string
		nearest   []string
	)
	seen := map[model.ClassID]struct{}{m.Class: {}}
	id := m.Class
	for {
		link, ok := h.Superclass(id)
		if !ok {
			break
		}
		if _, dup := seen[link.Super]; dup {
			break
		}
		seen[link.Super] = struct{}{}
		path = append(path, link.Field)
		if a, ok := models[link.Super]; ok {
			if nearest == nil {
				nearest = append([]string(nil), path...)
			}
			ancestors = append(ancestors, a)
		}
		id = link.Super
	}
	return ancestors, nearest
}

func fieldLess(a, b *model.FieldDescriptor) bool {
	if a.Class != b.Class {
		return a.Class.Less(b.Class)
	}
	if a.Pos.Filename != b.Pos.Filename {
		return a.Pos.Filename < b.Pos.Filename
	}
	if a.Pos.Offset != b.Pos.Offset {
		return a.Pos.Offset < b.Pos.Offset
	}
	if a.Pos.Line != b.Pos.Line {
		return a.Pos.Line < b.Pos.Line
	}
	return a.Name < b.Name
}

func packageName(pkgs map[string]model.PackageInfo, pkgPath string) string {
	if info, ok := pkgs[pkgPath]; ok && info.Name != "" {
		return info.Name
	}
	for i := len(pkgPath) - 1; i >= 0; i-- {
		if pkgPath[i] == '/' {
			return pkgPath[i+1:]
		}
	}
	return pkgPath
}
