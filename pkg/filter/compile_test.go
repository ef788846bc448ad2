package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allocview/internal/locator"
	"github.com/allocview/pkg/model"
)

func testResolver() Resolver {
	return locator.NewStatic(map[string]string{
		"/proj/file.go":    "mypkg",
		"/proj/other.go":   "otherpkg",
		"/go/src/runtime/malloc.go": model.LabelRuntime,
		"/go/src/fmt/print.go":      model.LabelGo,
		"/mod/dep/dep.go":           model.LabelExternal,
	})
}

func projectFrame(fn string, line int) model.StackFrame {
	return model.StackFrame{File: "/proj/file.go", Line: line, Function: "example.com/mypkg." + fn}
}

func runtimeFrame(fn string) model.StackFrame {
	return model.StackFrame{File: "/go/src/runtime/malloc.go", Line: 1, Function: "runtime." + fn}
}

func record(size uint64, typ string, frames ...model.StackFrame) *model.AllocationRecord {
	return &model.AllocationRecord{Size: size, Type: typ, Stack: frames}
}

func TestCompile_Empty(t *testing.T) {
	f, err := Compile("", testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 5)))
	assert.False(t, f.Match(rec, runtimeFrame("mallocgc")))
	assert.False(t, f.IsEverything())
}

func TestCompile_PackageMatcher(t *testing.T) {
	f, err := Compile("@mypkg", testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 5)))
	assert.False(t, f.Match(rec, model.StackFrame{File: "/proj/other.go", Line: 3, Function: "x"}))

	// Bare @ matches any in-project frame.
	any, err := Compile("@", testResolver())
	require.NoError(t, err)
	assert.True(t, any.Match(rec, projectFrame("run", 5)))
	assert.True(t, any.Match(rec, model.StackFrame{File: "/proj/other.go", Line: 3, Function: "x"}))
	assert.False(t, any.Match(rec, runtimeFrame("mallocgc")))
	assert.False(t, any.Match(rec, model.StackFrame{File: "/go/src/fmt/print.go", Line: 1, Function: "fmt.Sprintf"}))
}

func TestCompile_QuotedPackageMatcher(t *testing.T) {
	f, err := Compile(`"@mypkg"`, testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 5)))
	assert.False(t, f.Match(rec, model.StackFrame{File: "/proj/other.go", Line: 3, Function: "x"}))
}

func TestCompile_FileMatcher(t *testing.T) {
	f, err := Compile(`"file.go"`, testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 5)))
	// Plain strings match the base name only, not the full path.
	assert.False(t, f.Match(rec, model.StackFrame{File: "/proj/other.go", Line: 3, Function: "x"}))

	full, err := Compile(`"/proj/file.go"`, testResolver())
	require.NoError(t, err)
	assert.False(t, full.Match(rec, projectFrame("run", 5)))
}

func TestCompile_ScenarioB_FileWithLineRange(t *testing.T) {
	f, err := Compile(`"file.go":10:20`, testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 15)))
	assert.True(t, f.Match(rec, projectFrame("run", 10)))
	assert.True(t, f.Match(rec, projectFrame("run", 20)))
	assert.False(t, f.Match(rec, projectFrame("run", 25)))
	assert.False(t, f.Match(rec, projectFrame("run", 0)))
}

func TestCompile_FileWithLineList(t *testing.T) {
	f, err := Compile(`"file.go":10,12,14`, testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 12)))
	assert.False(t, f.Match(rec, projectFrame("run", 13)))
}

func TestCompile_RegexMatcher(t *testing.T) {
	f, err := Compile(`/proj.*\.go/`, testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 5)))
	assert.False(t, f.Match(rec, runtimeFrame("mallocgc")))
}

func TestCompile_FunctionMatcher(t *testing.T) {
	f, err := Compile(":iterate", testResolver())
	require.NoError(t, err)

	rec := record(8, "object")
	assert.True(t, f.Match(rec, projectFrame("iterate", 5)))
	assert.False(t, f.Match(rec, projectFrame("other", 5)))
}

func TestCompile_SizeMatcher(t *testing.T) {
	f, err := Compile("32", testResolver())
	require.NoError(t, err)

	frame := projectFrame("run", 5)
	assert.True(t, f.Match(record(32, "object"), frame))
	assert.False(t, f.Match(record(33, "object"), frame))
	// Size matchers are scoped to project frames.
	assert.False(t, f.Match(record(32, "object"), runtimeFrame("mallocgc")))

	ranged, err := Compile("16-64", testResolver())
	require.NoError(t, err)
	assert.True(t, ranged.Match(record(48, "object"), frame))
	assert.False(t, ranged.Match(record(128, "object"), frame))
}

func TestCompile_TypeMatcher(t *testing.T) {
	f, err := Compile("slice", testResolver())
	require.NoError(t, err)

	frame := projectFrame("run", 5)
	assert.True(t, f.Match(record(8, "slice", frame), frame))
	assert.True(t, f.Match(record(8, "slice[byte]", frame), frame))
	assert.True(t, f.Match(record(8, "slice.small", frame), frame))
	assert.False(t, f.Match(record(8, "slicex", frame), frame))
	assert.False(t, f.Match(record(8, "map", frame), frame))
	assert.False(t, f.Match(record(8, "slice", frame), runtimeFrame("mallocgc")))
}

func TestCompile_TypeWithSize(t *testing.T) {
	f, err := Compile("slice=1024", testResolver())
	require.NoError(t, err)

	frame := projectFrame("run", 5)
	assert.True(t, f.Match(record(1024, "slice"), frame))
	assert.False(t, f.Match(record(512, "slice"), frame))
	assert.False(t, f.Match(record(1024, "map"), frame))
}

func TestCompile_ScenarioA(t *testing.T) {
	f, err := Compile(`"@mypkg" && :iterate && !32`, testResolver())
	require.NoError(t, err)

	frame := projectFrame("iterate", 7)
	assert.True(t, f.Match(record(40, "object"), frame))
	assert.False(t, f.Match(record(32, "object"), frame))
	assert.False(t, f.Match(record(40, "object"), projectFrame("other", 7)))
}

func TestCompile_ConnectiveAlgebra(t *testing.T) {
	r := testResolver()
	fAnd, err := Compile("@mypkg && :iterate", r)
	require.NoError(t, err)
	fOr, err := Compile("@mypkg || :iterate", r)
	require.NoError(t, err)
	left, err := Compile("@mypkg", r)
	require.NoError(t, err)
	right, err := Compile(":iterate", r)
	require.NoError(t, err)

	frames := []model.StackFrame{
		projectFrame("iterate", 1),
		projectFrame("other", 2),
		{File: "/proj/other.go", Line: 3, Function: "example.com/otherpkg.iterate"},
		runtimeFrame("mallocgc"),
	}
	rec := record(16, "object")
	for _, frame := range frames {
		l, rr := left.Match(rec, frame), right.Match(rec, frame)
		assert.Equal(t, l && rr, fAnd.Match(rec, frame), "AND on %v", frame)
		assert.Equal(t, l || rr, fOr.Match(rec, frame), "OR on %v", frame)
	}
}

func TestCompile_NegationScopedToProjectFrames(t *testing.T) {
	r := testResolver()
	f, err := Compile("!:iterate", r)
	require.NoError(t, err)

	rec := record(16, "object")
	assert.True(t, f.Match(rec, projectFrame("other", 1)))
	assert.False(t, f.Match(rec, projectFrame("iterate", 1)))
	// Negation never resurfaces frames the default predicate excludes.
	assert.False(t, f.Match(rec, runtimeFrame("mallocgc")))
	assert.False(t, f.Match(rec, model.StackFrame{File: "/go/src/fmt/print.go", Line: 1, Function: "fmt.Sprintf"}))
}

func TestCompile_UnrecognizedAtomFallsThrough(t *testing.T) {
	f, err := Compile("???", testResolver())
	require.NoError(t, err)

	rec := record(16, "object")
	assert.True(t, f.Match(rec, projectFrame("run", 1)))
	assert.False(t, f.Match(rec, runtimeFrame("mallocgc")))
}

func TestCompile_SyntaxErrors(t *testing.T) {
	cases := []string{
		"@mypkg &&",
		"&& @mypkg",
		"(@mypkg",
		"@mypkg)",
		"@mypkg & :iterate",
		"@mypkg | :iterate",
		"!",
	}
	for _, src := range cases {
		_, err := Compile(src, testResolver())
		assert.Error(t, err, "expression %q", src)
	}
}

func TestEverything(t *testing.T) {
	f := Everything()
	assert.True(t, f.IsEverything())
	assert.True(t, f.Match(record(1, "object"), runtimeFrame("mallocgc")))
}

func TestBottom(t *testing.T) {
	assert.True(t, Bottom(runtimeFrame("mallocgc")))
	assert.True(t, Bottom(runtimeFrame("makeslice")))
	assert.True(t, Bottom(model.StackFrame{Function: "github.com/allocview/pkg/profiling.(*Sampler).Run"}))
	assert.False(t, Bottom(projectFrame("run", 1)))
	assert.False(t, Bottom(model.StackFrame{Function: "runtime.gopark"}))
}

func TestParseNumSet(t *testing.T) {
	set, ok := parseNumSet("32")
	require.True(t, ok)
	assert.True(t, set.contains(32))
	assert.False(t, set.contains(31))

	set, ok = parseNumSet("16-64,128")
	require.True(t, ok)
	assert.True(t, set.contains(16))
	assert.True(t, set.contains(64))
	assert.True(t, set.contains(128))
	assert.False(t, set.contains(65))

	for _, bad := range []string{"", "a", "64-16", "1,,2", "-5"} {
		_, ok := parseNumSet(bad)
		assert.False(t, ok, "input %q", bad)
	}
}
