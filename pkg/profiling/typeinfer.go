package profiling

import (
	"strings"

	"github.com/allocview/pkg/model"
)

// Coarse type tags inferred from the runtime allocator entry point that
// performed the allocation. Heap samples carry no Go type information,
// so the allocating function is the best available signal.
const (
	TypeSlice  = "slice"
	TypeMap    = "map"
	TypeChan   = "chan"
	TypeString = "string"
	TypeIface  = "iface"
	TypeObject = "object"
)

var allocFuncTypes = map[string]string{
	"runtime.makeslice":         TypeSlice,
	"runtime.makeslicecopy":     TypeSlice,
	"runtime.growslice":         TypeSlice,
	"runtime.rawbyteslice":      TypeSlice,
	"runtime.stringtoslicebyte": TypeSlice,
	"runtime.makemap":           TypeMap,
	"runtime.makemap_small":     TypeMap,
	"runtime.mapassign":         TypeMap,
	"runtime.makechan":          TypeChan,
	"runtime.rawstring":         TypeString,
	"runtime.concatstrings":     TypeString,
	"runtime.slicebytetostring": TypeString,
	"runtime.convTstring":       TypeString,
	"runtime.convT":             TypeIface,
	"runtime.convTslice":        TypeIface,
	"runtime.newobject":         TypeObject,
	"runtime.newarray":          TypeObject,
	"runtime.mallocgc":          TypeObject,
}

// InferType derives a coarse type tag from a captured stack, ordered
// oldest-frame-first. It scans from the newest frame down for a known
// allocator entry point.
func InferType(stack []model.StackFrame) string {
	for i := len(stack) - 1; i >= 0; i-- {
		name := stack[i].Function
		if tag, ok := allocFuncTypes[name]; ok {
			return tag
		}
		if strings.HasPrefix(name, "runtime.mapassign") {
			return TypeMap
		}
		if strings.HasPrefix(name, "runtime.convT") {
			return TypeIface
		}
	}
	return TypeObject
}
