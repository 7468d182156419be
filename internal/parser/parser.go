package parser

import (
	"fmt"
	"go/types"
	"path/filepath"
	"reflect"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/model"
)

// Source discovers retained fields and the embedding hierarchy of a set of
// packages.
type Source interface {
	Discover(patterns ...string) (*Discovery, error)
}

// Discovery is the result of one Discover call.
type Discovery struct {
	Fields      []*model.FieldDescriptor
	Hierarchy   model.HierarchyMap
	Packages    map[string]model.PackageInfo
	Diagnostics []diag.Diagnostic
}

// ErrorCount returns the number of error diagnostics.
func (d *Discovery) ErrorCount() int {
	n := 0
	for _, dg := range d.Diagnostics {
		if dg.Severity == diag.Error {
			n++
		}
	}
	return n
}

// Option configures a Source.
type Option func(*packagesSource)

// WithDir sets the directory patterns are resolved in.
func WithDir(dir string) Option {
	return func(s *packagesSource) { s.dir = dir }
}

type packagesSource struct {
	logger *zap.Logger
	dir    string
	cache  map[string]*types.Package
}

// New returns a Source backed by golang.org/x/tools/go/packages.
func New(logger *zap.Logger, opts ...Option) Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &packagesSource{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedSyntax |
	packages.NeedTypesInfo |
	packages.NeedModule

func (s *packagesSource) Discover(patterns ...string) (*Discovery, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{Mode: loadMode, Dir: s.dir}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages %v: %w", patterns, err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, fmt.Errorf("packages %v have compilation errors", patterns)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages match %v", patterns)
	}

	s.cache = map[string]*types.Package{}
	d := &Discovery{
		Hierarchy: model.HierarchyMap{},
		Packages:  map[string]model.PackageInfo{},
	}
	sink := diag.NewCollector(nil)
	for _, pkg := range pkgs {
		if pkg.Types == nil || pkg.Types.Scope() == nil {
			return nil, fmt.Errorf("type info unavailable for package %q", pkg.PkgPath)
		}
		s.cache[pkg.PkgPath] = pkg.Types
		s.discoverPackage(d, sink, pkg)
	}
	d.Diagnostics = sink.All()
	return d, nil
}

func (s *packagesSource) discoverPackage(d *Discovery, sink diag.Sink, pkg *packages.Package) {
	info := model.PackageInfo{Path: pkg.PkgPath, Name: pkg.Name}
	if len(pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(pkg.GoFiles[0])
	}
	d.Packages[pkg.PkgPath] = info
	s.logger.Debug("package loaded", zap.String("package", pkg.PkgPath), zap.String("dir", info.Dir))

	conv := newTypeConverter(pkg.Types)
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		st, ok := named.Underlying().(*types.Struct)
		if !ok {
			continue
		}
		recordChain(d.Hierarchy, named)
		s.discoverStruct(d, sink, pkg, conv, named, st)
	}
}

func (s *packagesSource) discoverStruct(
	d *Discovery,
	sink diag.Sink,
	pkg *packages.Package,
	conv *typeConverter,
	named *types.Named,
	st *types.Struct,
) {
	class := classID(named)
	generic := named.TypeParams().Len() > 0

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		pos := pkg.Fset.Position(f.Pos())
		checkNestedTags(sink, pkg.Fset, f.Type())

		tag, tagged := reflect.StructTag(st.Tag(i)).Lookup(TagKey)
		if !tagged {
			continue
		}
		opts, err := ParseTag(tag)
		if err != nil {
			diag.Errorf(sink, pos, "field %s.%s: %v", class.Name, f.Name(), err)
			continue
		}
		switch {
		case generic:
			diag.Errorf(sink, pos, "field %s.%s: generic type %s cannot have retained fields", class.Name, f.Name(), class.Name)
			continue
		case f.Embedded():
			diag.Errorf(sink, pos, "embedded field %s.%s cannot be retained", class.Name, f.Name())
			continue
		case f.Name() == "_":
			diag.Errorf(sink, pos, "blank field in %s cannot be retained", class.Name)
			continue
		}

		desc := &model.FieldDescriptor{
			Class: class,
			Name:  f.Name(),
			Type:  conv.convert(f.Type()),
			Skip:  opts.Skip,
			Pos:   pos,
		}
		if opts.Converter != "" && !opts.Skip {
			ref, err := s.lookupConverter(pkg.Types, opts.Converter, f.Type())
			if err != nil {
				diag.Errorf(sink, pos, "field %s.%s: %v", class.Name, f.Name(), err)
				continue
			}
			desc.Converter = ref
		}
		d.Fields = append(d.Fields, desc)
		s.logger.Debug("field marked",
			zap.String("class", class.String()),
			zap.String("field", f.Name()),
			zap.Bool("skip", opts.Skip),
			zap.String("converter", converterString(desc.Converter)),
		)
	}
}

// lookupConverter resolves a converter reference from pkg. The named type
// must provide Save and Restore for the field type through *T.
func (s *packagesSource) lookupConverter(pkg *types.Package, name string, field types.Type) (*model.ConverterRef, error) {
	ref, err := model.ParseConverterRef(name, pkg.Path())
	if err != nil {
		return nil, err
	}
	owner, err := s.converterPackage(pkg, ref.PkgPath)
	if err != nil {
		return nil, fmt.Errorf("unknown converter %s: %w", ref, err)
	}
	ref.PkgName = owner.Name()

	tn, ok := owner.Scope().Lookup(ref.Name).(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("unknown converter %s", ref)
	}
	if owner != pkg && !tn.Exported() {
		return nil, fmt.Errorf("converter %s is not exported", ref)
	}
	if named, ok := types.Unalias(tn.Type()).(*types.Named); ok && named.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("converter %s is generic", ref)
	}
	if err := checkConverterMethods(tn.Type(), field); err != nil {
		return nil, fmt.Errorf("converter %s: %w", ref, err)
	}
	return &ref, nil
}

func (s *packagesSource) converterPackage(pkg *types.Package, path string) (*types.Package, error) {
	if path == pkg.Path() {
		return pkg, nil
	}
	for _, imp := range pkg.Imports() {
		if imp.Path() == path {
			return imp, nil
		}
	}
	if cached, ok := s.cache[path]; ok {
		return cached, nil
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes, Dir: s.dir}
	pkgs, err := packages.Load(cfg, path)
	if err != nil {
		return nil, fmt.Errorf("load package %q: %w", path, err)
	}
	if len(pkgs) == 0 || len(pkgs[0].Errors) > 0 || pkgs[0].Types == nil {
		return nil, fmt.Errorf("package %q cannot be loaded", path)
	}
	s.cache[path] = pkgs[0].Types
	return pkgs[0].Types, nil
}

func checkConverterMethods(t types.Type, field types.Type) error {
	ms := types.NewMethodSet(types.NewPointer(t))

	save := methodSignature(ms, "Save")
	if save == nil {
		return fmt.Errorf("missing method Save")
	}
	if save.Params().Len() != 3 || save.Results().Len() != 0 || !types.Identical(save.Params().At(2).Type(), field) {
		return fmt.Errorf("Save must have the form Save(retain.Store, string, %s)", types.TypeString(field, nil))
	}

	restore := methodSignature(ms, "Restore")
	if restore == nil {
		return fmt.Errorf("missing method Restore")
	}
	if restore.Params().Len() != 2 || restore.Results().Len() != 2 || !types.Identical(restore.Results().At(0).Type(), field) {
		return fmt.Errorf("Restore must have the form Restore(retain.Store, string) (%s, bool)", types.TypeString(field, nil))
	}
	return nil
}

func methodSignature(ms *types.MethodSet, name string) *types.Signature {
	sel := ms.Lookup(nil, name)
	if sel == nil {
		return nil
	}
	fn, ok := sel.Obj().(*types.Func)
	if !ok {
		return nil
	}
	sig, _ := fn.Type().(*types.Signature)
	return sig
}

func classID(named *types.Named) model.ClassID {
	obj := named.Obj()
	id := model.ClassID{Name: obj.Name()}
	if obj.Pkg() != nil {
		id.PkgPath = obj.Pkg().Path()
	}
	return id
}

func converterString(ref *model.ConverterRef) string {
	if ref == nil {
		return ""
	}
	return ref.String()
}
