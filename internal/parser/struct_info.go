package parser

import (
	"go/constant"
	"go/types"
	"sort"

	"github.com/seitarof/retaingen/internal/model"
)

// typeConverter builds model.TypeRef graphs for one generating package.
// Results are cached by type string, and named types are cached before
// their underlying type is converted, so recursive types terminate.
type typeConverter struct {
	pkg   *types.Package
	cache map[string]*model.TypeRef
}

func newTypeConverter(pkg *types.Package) *typeConverter {
	return &typeConverter{pkg: pkg, cache: map[string]*model.TypeRef{}}
}

func (c *typeConverter) convert(t types.Type) *model.TypeRef {
	t = types.Unalias(t)
	key := types.TypeString(t, nil)
	if ref, ok := c.cache[key]; ok {
		return ref
	}

	switch v := t.(type) {
	case *types.Basic:
		ref := model.Basic(v.Name())
		if v.Kind() == types.UnsafePointer || v.Info()&types.IsUntyped != 0 {
			ref.Kind = model.TypeKindOther
		}
		c.cache[key] = ref
		return ref
	case *types.Named:
		return c.convertNamed(key, v)
	case *types.Pointer:
		ref := c.begin(key, model.TypeKindPointer, t)
		ref.Elem = c.convert(v.Elem())
		return ref
	case *types.Slice:
		ref := c.begin(key, model.TypeKindSlice, t)
		ref.Elem = c.convert(v.Elem())
		return ref
	case *types.Array:
		ref := c.begin(key, model.TypeKindArray, t)
		ref.Len = v.Len()
		ref.Elem = c.convert(v.Elem())
		return ref
	case *types.Map:
		ref := c.begin(key, model.TypeKindMap, t)
		ref.Key = c.convert(v.Key())
		ref.Elem = c.convert(v.Elem())
		return ref
	case *types.Struct:
		ref := c.begin(key, model.TypeKindStruct, t)
		ref.Members = c.members(v)
		return ref
	case *types.Interface:
		ref := c.begin(key, model.TypeKindInterface, t)
		ref.Name = ref.Expr
		return ref
	default:
		ref := c.begin(key, model.TypeKindOther, t)
		ref.Name = ref.Expr
		return ref
	}
}

// begin creates and caches a TypeRef for t before its parts are converted.
func (c *typeConverter) begin(key string, kind model.TypeKind, t types.Type) *model.TypeRef {
	expr, imports := c.expr(t)
	ref := &model.TypeRef{Kind: kind, Expr: expr, Imports: imports}
	c.cache[key] = ref
	return ref
}

func (c *typeConverter) convertNamed(key string, v *types.Named) *model.TypeRef {
	obj := v.Obj()
	if obj.Pkg() != nil && !c.local(obj.Pkg()) && !obj.Exported() {
		ref := c.begin(key, model.TypeKindOther, v)
		ref.Name = "unexported type " + types.TypeString(v, nil)
		return ref
	}

	ref := c.begin(key, model.TypeKindNamed, v)
	ref.Name = obj.Name()
	if obj.Pkg() != nil {
		ref.PkgPath = obj.Pkg().Path()
		ref.PkgName = obj.Pkg().Name()
	}
	if args := v.TypeArgs(); args != nil {
		for i := 0; i < args.Len(); i++ {
			ref.Args = append(ref.Args, c.convert(args.At(i)))
		}
	}
	ref.Underlying = c.convert(v.Underlying())
	if b, ok := v.Underlying().(*types.Basic); ok && b.Info()&types.IsConstType != 0 {
		ref.Enum = c.enumConsts(v)
	}
	return ref
}

func (c *typeConverter) members(st *types.Struct) []model.Member {
	var out []model.Member
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		if f.Name() == "_" {
			continue
		}
		if !f.Exported() && (f.Pkg() == nil || !c.local(f.Pkg())) {
			continue
		}
		out = append(out, model.Member{Name: f.Name(), Type: c.convert(f.Type())})
	}
	return out
}

// enumConsts returns the constants of type named in declaration order,
// keeping the first name for each distinct value.
func (c *typeConverter) enumConsts(named *types.Named) []model.EnumConst {
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return nil
	}
	var consts []*types.Const
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		k, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(k.Type(), named) {
			continue
		}
		if !c.local(pkg) && !k.Exported() {
			continue
		}
		consts = append(consts, k)
	}
	sort.SliceStable(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })

	seen := map[string]bool{}
	out := make([]model.EnumConst, 0, len(consts))
	for _, k := range consts {
		if k.Val().Kind() == constant.Unknown {
			continue
		}
		id := k.Val().ExactString()
		if seen[id] {
			continue
		}
		seen[id] = true
		expr := k.Name()
		if !c.local(pkg) {
			expr = pkg.Name() + "." + k.Name()
		}
		out = append(out, model.EnumConst{Name: k.Name(), Expr: expr})
	}
	return out
}

func (c *typeConverter) expr(t types.Type) (string, []string) {
	var imports []string
	seen := map[string]bool{}
	s := types.TypeString(t, func(p *types.Package) string {
		if c.local(p) {
			return ""
		}
		if !seen[p.Path()] {
			seen[p.Path()] = true
			imports = append(imports, p.Path())
		}
		return p.Name()
	})
	sort.Strings(imports)
	return s, imports
}

func (c *typeConverter) local(p *types.Package) bool {
	return p != nil && c.pkg != nil && p.Path() == c.pkg.Path()
}
