package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStackFrame_ShortFunction(t *testing.T) {
	cases := []struct {
		name     string
		function string
		want     string
	}{
		{"plain", "main.run", "run"},
		{"pathological package path", "github.com/acme/buf.(*Writer).Grow", "(*Writer).Grow"},
		{"runtime", "runtime.makeslice", "makeslice"},
		{"no package", "iterate", "iterate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := StackFrame{Function: tc.function}
			assert.Equal(t, tc.want, f.ShortFunction())
		})
	}
}

func TestStackFrame_FuncPackage(t *testing.T) {
	assert.Equal(t, "github.com/acme/buf",
		StackFrame{Function: "github.com/acme/buf.(*Writer).Grow"}.FuncPackage())
	assert.Equal(t, "runtime", StackFrame{Function: "runtime.makeslice"}.FuncPackage())
	assert.Equal(t, "", StackFrame{Function: "iterate"}.FuncPackage())
}

func TestStackFrame_BaseFileAndLocation(t *testing.T) {
	f := StackFrame{File: "/proj/pkg/a.go", Line: 12, Function: "x"}
	assert.Equal(t, "a.go", f.BaseFile())
	assert.Equal(t, SourceLocation{File: "/proj/pkg/a.go", Line: 12}, f.Location())
}

func TestSourceLocation_IsComparableKey(t *testing.T) {
	groups := map[SourceLocation]int{}
	groups[SourceLocation{File: "a.go", Line: 5}]++
	groups[SourceLocation{File: "a.go", Line: 5}]++
	groups[SourceLocation{File: "a.go", Line: 6}]++

	assert.Equal(t, 2, groups[SourceLocation{File: "a.go", Line: 5}])
	assert.Len(t, groups, 2)
	assert.Equal(t, "a.go:5", SourceLocation{File: "a.go", Line: 5}.String())
}

func TestSnapshot_TotalBytes(t *testing.T) {
	snap := &Snapshot{Records: []AllocationRecord{
		{Size: 10}, {Size: 20}, {Size: 30},
	}}
	assert.Equal(t, uint64(60), snap.TotalBytes())
	assert.Equal(t, uint64(0), (&Snapshot{}).TotalBytes())
}
