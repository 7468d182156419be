package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seitarof/retaingen/internal/diag"
	"github.com/seitarof/retaingen/internal/model"
)

const testdataPath = "github.com/seitarof/retaingen/testdata/"

func TestDiscover_Inherit(t *testing.T) {
	pkgPath := testdataPath + "inherit"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)
	require.Empty(t, d.Diagnostics)

	info, ok := d.Packages[pkgPath]
	require.True(t, ok)
	assert.Equal(t, "inherit", info.Name)
	assert.Equal(t, "inherit", filepath.Base(info.Dir))

	base := fieldsOf(d, pkgPath, "Base")
	assert.Equal(t, []string{"Created", "ID", "Name"}, sortedNames(base))

	derived := fieldsOf(d, pkgPath, "Derived")
	assert.Equal(t,
		[]string{"Labels", "Name", "Origin", "Path", "Scratch", "Secret", "Shade", "Timeout"},
		sortedNames(derived),
	)
	assert.Nil(t, byName(derived, "Ignored"))
	assert.True(t, byName(derived, "Secret").Skip)
	assert.True(t, byName(derived, "Scratch").Skip)
	assert.False(t, byName(derived, "Name").Skip)

	name := byName(derived, "Name")
	assert.Equal(t, model.ClassID{PkgPath: pkgPath, Name: "Derived"}, name.Class)
	assert.Equal(t, "types.go", filepath.Base(name.Pos.Filename))
	assert.Greater(t, name.Pos.Line, 0)
}

func TestDiscover_TypeRefs(t *testing.T) {
	pkgPath := testdataPath + "inherit"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)
	derived := fieldsOf(d, pkgPath, "Derived")

	shade := byName(derived, "Shade").Type
	assert.Equal(t, model.TypeKindNamed, shade.Kind)
	assert.Equal(t, "Color", shade.Expr)
	assert.Equal(t, []model.EnumConst{
		{Name: "Red", Expr: "Red"},
		{Name: "Green", Expr: "Green"},
		{Name: "Blue", Expr: "Blue"},
	}, shade.Enum)

	origin := byName(derived, "Origin").Type
	require.Equal(t, model.TypeKindPointer, origin.Kind)
	assert.Equal(t, "*Point", origin.Expr)
	point := origin.Elem.Under()
	require.Equal(t, model.TypeKindStruct, point.Kind)
	assert.Equal(t, []string{"X", "Y"}, memberNames(point))

	labels := byName(derived, "Labels").Type
	require.Equal(t, model.TypeKindMap, labels.Kind)
	assert.Equal(t, "string", labels.Key.Name)

	timeout := byName(derived, "Timeout").Type
	assert.Equal(t, "time.Duration", timeout.Expr)
	assert.Equal(t, []string{"time"}, timeout.Imports)
	assert.Equal(t, "time", timeout.PkgPath)

	created := byName(fieldsOf(d, pkgPath, "Base"), "Created").Type
	assert.Equal(t, "time.Time", created.QualifiedName())
}

func TestDiscover_RecordsChainThroughUnannotatedStruct(t *testing.T) {
	pkgPath := testdataPath + "inherit"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)

	link, ok := d.Hierarchy.Superclass(model.ClassID{PkgPath: pkgPath, Name: "Derived"})
	require.True(t, ok)
	assert.Equal(t, model.SuperLink{Super: model.ClassID{PkgPath: pkgPath, Name: "Mid"}, Field: "Mid"}, link)

	link, ok = d.Hierarchy.Superclass(model.ClassID{PkgPath: pkgPath, Name: "Mid"})
	require.True(t, ok)
	assert.Equal(t, "Base", link.Field)

	_, ok = d.Hierarchy.Superclass(model.ClassID{PkgPath: pkgPath, Name: "Base"})
	assert.False(t, ok)
}

func TestDiscover_CrossPackageChain(t *testing.T) {
	d, err := New(nil).Discover(testdataPath+"crosspkg/app", testdataPath+"crosspkg/lib")
	require.NoError(t, err)
	require.Empty(t, d.Diagnostics)

	user := model.ClassID{PkgPath: testdataPath + "crosspkg/app", Name: "User"}
	link, ok := d.Hierarchy.Superclass(user)
	require.True(t, ok)
	assert.Equal(t, model.ClassID{PkgPath: testdataPath + "crosspkg/lib", Name: "Entity"}, link.Super)
	assert.Equal(t, "Entity", link.Field)

	assert.Len(t, fieldsOf(d, testdataPath+"crosspkg/lib", "Entity"), 2)
	assert.Len(t, fieldsOf(d, user.PkgPath, "User"), 2)
	assert.Equal(t, "lib", d.Packages[testdataPath+"crosspkg/lib"].Name)
}

func TestDiscover_Converter(t *testing.T) {
	pkgPath := testdataPath + "converter"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)
	require.Empty(t, d.Diagnostics)

	when := byName(fieldsOf(d, pkgPath, "Event"), "When")
	require.NotNil(t, when.Converter)
	assert.Equal(t, model.ConverterRef{PkgPath: pkgPath, PkgName: "converter", Name: "UnixTime"}, *when.Converter)
	assert.Nil(t, byName(fieldsOf(d, pkgPath, "Event"), "Name").Converter)
}

func TestDiscover_ReportsDiscoveryErrors(t *testing.T) {
	d, err := New(nil).Discover(testdataPath + "invalid")
	require.NoError(t, err)

	var messages []string
	for _, dg := range d.Diagnostics {
		assert.Equal(t, diag.Error, dg.Severity)
		assert.NotEmpty(t, dg.Pos.Filename)
		messages = append(messages, dg.Message)
	}
	joined := strings.Join(messages, "\n")

	assert.Equal(t, 6, d.ErrorCount())
	assert.Contains(t, joined, "embedded field Embeds.Base cannot be retained")
	assert.Contains(t, joined, "blank field in Blank cannot be retained")
	assert.Contains(t, joined, "generic type Box cannot have retained fields")
	assert.Contains(t, joined, `field BadTag.Name: unknown option "bogus"`)
	assert.Contains(t, joined, "field Unknown.When: unknown converter")
	assert.Contains(t, joined, "field X of an anonymous struct type cannot be retained")

	ids := map[string]bool{}
	for _, f := range d.Fields {
		ids[f.Class.Name] = true
	}
	assert.Equal(t, map[string]bool{"Base": true}, ids)
}

func TestDiscover_LogsMarkedFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	_, err := New(zap.New(core)).Discover(testdataPath + "unsupported")
	require.NoError(t, err)

	marked := logs.FilterMessage("field marked").All()
	require.Len(t, marked, 2)
	fields := marked[0].ContextMap()
	assert.Equal(t, testdataPath+"unsupported.Worker", fields["class"])
	assert.Equal(t, 1, logs.FilterMessage("package loaded").Len())
}

func TestDiscover_UnsupportedTypeIsOther(t *testing.T) {
	pkgPath := testdataPath + "unsupported"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)

	jobs := byName(fieldsOf(d, pkgPath, "Worker"), "Jobs")
	assert.Equal(t, model.TypeKindOther, jobs.Type.Kind)
	assert.Equal(t, "chan int", jobs.Type.Expr)
}

func TestDiscover_RecursiveTypeTerminates(t *testing.T) {
	pkgPath := testdataPath + "cyclic"
	d, err := New(nil).Discover(pkgPath)
	require.NoError(t, err)

	trees := byName(fieldsOf(d, pkgPath, "Forest"), "Trees").Type
	require.Equal(t, model.TypeKindNamed, trees.Kind)
	assert.Same(t, trees, trees.Underlying.Elem)
}

func TestDiscover_MissingPackage(t *testing.T) {
	_, err := New(nil).Discover(testdataPath + "doesnotexist")
	require.Error(t, err)
}

func fieldsOf(d *Discovery, pkgPath, class string) []*model.FieldDescriptor {
	var out []*model.FieldDescriptor
	for _, f := range d.Fields {
		if f.Class.PkgPath == pkgPath && f.Class.Name == class {
			out = append(out, f)
		}
	}
	return out
}

func byName(fields []*model.FieldDescriptor, name string) *model.FieldDescriptor {
	for _, f := range fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func sortedNames(fields []*model.FieldDescriptor) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

func memberNames(t *model.TypeRef) []string {
	names := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		names = append(names, m.Name)
	}
	return names
}
