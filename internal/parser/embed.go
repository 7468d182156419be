package parser

import (
	"go/token"
	"go/types"
	"reflect"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/model"
)

// recordChain records the embedding chain starting at named. Each struct
// links to the struct of its first value embed; the walk follows the chain
// into other packages and stops at a struct that is already recorded.
func recordChain(h model.HierarchyMap, named *types.Named) {
	seen := map[model.ClassID]bool{}
	for named != nil {
		id := classID(named)
		if _, done := h[id]; done || seen[id] {
			return
		}
		seen[id] = true

		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			return
		}
		super, field := firstEmbed(st)
		if super == nil {
			return
		}
		h[id] = model.SuperLink{Super: classID(super), Field: field}
		named = super
	}
}

// firstEmbed returns the first embedded field that is a named struct held by
// value. Pointer embeds, interfaces and instantiated generic types do not
// count.
func firstEmbed(st *types.Struct) (*types.Named, string) {
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		named, ok := types.Unalias(f.Type()).(*types.Named)
		if !ok || named.TypeArgs().Len() > 0 || named.TypeParams().Len() > 0 {
			continue
		}
		if _, ok := named.Underlying().(*types.Struct); !ok {
			continue
		}
		return named, f.Name()
	}
	return nil, ""
}

// checkNestedTags reports retain tags on fields of anonymous struct types
// reachable from t without passing through a named type.
func checkNestedTags(sink diag.Sink, fset *token.FileSet, t types.Type) {
	switch v := types.Unalias(t).(type) {
	case *types.Pointer:
		checkNestedTags(sink, fset, v.Elem())
	case *types.Slice:
		checkNestedTags(sink, fset, v.Elem())
	case *types.Array:
		checkNestedTags(sink, fset, v.Elem())
	case *types.Map:
		checkNestedTags(sink, fset, v.Key())
		checkNestedTags(sink, fset, v.Elem())
	case *types.Struct:
		for i := 0; i < v.NumFields(); i++ {
			f := v.Field(i)
			if _, tagged := reflect.StructTag(v.Tag(i)).Lookup(TagKey); tagged {
				diag.Errorf(sink, fset.Position(f.Pos()), "field %s of an anonymous struct type cannot be retained", f.Name())
			}
			checkNestedTags(sink, fset, f.Type())
		}
	}
}
