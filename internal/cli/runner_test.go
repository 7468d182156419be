package cli

import (
	"bytes"
	"errors"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/generator"
	"github.com/seitarof/retaingen/internal/model"
	"github.com/seitarof/retaingen/internal/parser"
)

const appPkg = "example.com/app"

type mockSource struct {
	discovery *parser.Discovery
	err       error
	patterns  []string
}

func (m *mockSource) Discover(patterns ...string) (*parser.Discovery, error) {
	m.patterns = patterns
	return m.discovery, m.err
}

type mockGenerator struct {
	callCount int
	units     []generator.Unit
	err       error
}

func (m *mockGenerator) Generate(_ generator.Config, units []generator.Unit) error {
	m.callCount++
	m.units = units
	return m.err
}

func TestRunner_Run_GeneratesOneUnitPerPackage(t *testing.T) {
	src := &mockSource{discovery: &parser.Discovery{
		Fields: []*model.FieldDescriptor{
			field("example.com/lib", "Entity", "ID", model.Basic("int64")),
			field(appPkg, "User", "ID", model.Basic("int64")),
			field(appPkg, "User", "Email", model.Basic("string")),
			field(appPkg, "Audit", "Note", model.Basic("string")),
		},
		Hierarchy: model.HierarchyMap{
			{PkgPath: appPkg, Name: "User"}: {Super: model.ClassID{PkgPath: "example.com/lib", Name: "Entity"}, Field: "Entity"},
		},
		Packages: map[string]model.PackageInfo{
			appPkg:            {Path: appPkg, Name: "app", Dir: "/src/app"},
			"example.com/lib": {Path: "example.com/lib", Name: "lib", Dir: "/src/lib"},
		},
	}}
	gen := &mockGenerator{}

	r := NewRunner(src, gen, nil, nil)
	cfg := &Config{Patterns: []string{"./..."}, Filename: DefaultFilename, Suffix: "Retainer"}
	require.NoError(t, r.Run(cfg))

	assert.Equal(t, []string{"./..."}, src.patterns)
	require.Equal(t, 1, gen.callCount)
	require.Len(t, gen.units, 2)

	app := gen.units[0]
	assert.Equal(t, appPkg, app.PkgPath)
	assert.Equal(t, "/src/app", app.Dir)
	require.Len(t, app.Companions, 2)
	assert.Equal(t, "AuditRetainer", app.Companions[0].Name)

	user := app.Companions[1]
	assert.Equal(t, "UserRetainer", user.Name)
	require.NotNil(t, user.Super)
	assert.Equal(t, "lib.EntityRetainer", user.Super.Type)
	assert.Equal(t, "r.EntityRetainer.Save(&src.Entity, store)", user.Save[0])
	assert.Contains(t, user.Save, `store.PutInt64("User.ID", src.ID)`)

	assert.Equal(t, "example.com/lib", gen.units[1].PkgPath)
	assert.Equal(t, "lib", gen.units[1].PkgName)
}

func TestRunner_Run_DiscoveryErrorsSuppressOutput(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	src := &mockSource{discovery: &parser.Discovery{
		Fields: []*model.FieldDescriptor{field(appPkg, "User", "Name", model.Basic("string"))},
		Diagnostics: []diag.Diagnostic{
			{Severity: diag.Error, Message: "embedded field User.Base cannot be retained", Pos: token.Position{Filename: "user.go", Line: 3}},
			{Severity: diag.Error, Message: "blank field in User cannot be retained", Pos: token.Position{Filename: "user.go", Line: 4}},
		},
	}}
	gen := &mockGenerator{}

	err := NewRunner(src, gen, zap.New(core), nil).Run(&Config{Filename: DefaultFilename})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Zero(t, gen.callCount)

	assert.Equal(t, 2, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	notes := logs.FilterMessage("2 error(s) occurred, no files are generated").All()
	require.Len(t, notes, 1)
	assert.Equal(t, zapcore.InfoLevel, notes[0].Level)
}

func TestRunner_Run_ResolutionErrorsSuppressOutput(t *testing.T) {
	chanType := &model.TypeRef{Kind: model.TypeKindOther, Name: "chan int", Expr: "chan int"}
	src := &mockSource{discovery: &parser.Discovery{
		Fields: []*model.FieldDescriptor{
			field(appPkg, "Worker", "Jobs", chanType),
			field(appPkg, "Worker", "Name", model.Basic("string")),
		},
		Packages: map[string]model.PackageInfo{appPkg: {Path: appPkg, Name: "app"}},
	}}
	gen := &mockGenerator{}
	core, logs := observer.New(zapcore.DebugLevel)

	err := NewRunner(src, gen, zap.New(core), nil).Run(&Config{Filename: DefaultFilename})
	require.Error(t, err)
	assert.Zero(t, gen.callCount)

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "field Worker.Jobs: unsupported type chan int")
}

func TestRunner_Run_UsesConfiguredConverters(t *testing.T) {
	loc := model.Named("time", "Location", model.StructOf(), false)
	src := &mockSource{discovery: &parser.Discovery{
		Fields:   []*model.FieldDescriptor{field(appPkg, "Clock", "Zone", model.PointerTo(loc))},
		Packages: map[string]model.PackageInfo{appPkg: {Path: appPkg, Name: "app"}},
	}}
	gen := &mockGenerator{}
	cfg := &Config{
		Filename: DefaultFilename,
		Suffix:   "Retainer",
		Converters: []ConverterMapping{
			{Type: "time.Location", Converter: "example.com/conv.Location"},
		},
	}

	require.NoError(t, NewRunner(src, gen, nil, nil).Run(cfg))
	require.Len(t, gen.units, 1)
	c := gen.units[0].Companions[0]
	assert.Contains(t, strings.Join(c.Save, "\n"), `new(conv.Location).Save(store, "Zone", (*src.Zone))`)
	assert.Contains(t, c.Imports, "example.com/conv")
}

func TestRunner_Run_NoRetainedFields(t *testing.T) {
	gen := &mockGenerator{}
	src := &mockSource{discovery: &parser.Discovery{}}

	require.NoError(t, NewRunner(src, gen, nil, nil).Run(&Config{Filename: DefaultFilename}))
	assert.Zero(t, gen.callCount)
}

func TestRunner_Run_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	err := NewRunner(&mockSource{err: boom}, &mockGenerator{}, nil, nil).Run(&Config{})
	assert.ErrorIs(t, err, boom)

	src := &mockSource{discovery: &parser.Discovery{
		Fields: []*model.FieldDescriptor{field(appPkg, "User", "Name", model.Basic("string"))},
	}}
	err = NewRunner(src, &mockGenerator{err: boom}, nil, nil).Run(&Config{Filename: DefaultFilename})
	assert.ErrorIs(t, err, boom)

	err = NewRunner(src, &mockGenerator{}, nil, nil).Run(&Config{
		Converters: []ConverterMapping{{Type: "time.Time", Converter: "Bare"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestRunner_Run_DumpModels(t *testing.T) {
	var buf bytes.Buffer
	src := &mockSource{discovery: &parser.Discovery{
		Fields: []*model.FieldDescriptor{field(appPkg, "User", "Name", model.Basic("string"))},
	}}

	require.NoError(t, NewRunner(src, &mockGenerator{}, nil, &buf).Run(&Config{Filename: DefaultFilename, DumpModels: true}))
	assert.Contains(t, buf.String(), "# example.com/app.User")
	assert.Contains(t, buf.String(), "UserRetainer")
}

func field(pkgPath, class, name string, typ *model.TypeRef) *model.FieldDescriptor {
	return &model.FieldDescriptor{
		Class: model.ClassID{PkgPath: pkgPath, Name: class},
		Name:  name,
		Type:  typ,
	}
}
