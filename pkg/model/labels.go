package model

// Sentinel package labels assigned by source resolution to frames that
// fall outside the project. In-project frames get the package directory
// relative to a project root as their label.
const (
	// LabelRuntime marks files belonging to the Go runtime package.
	LabelRuntime = "runtime"
	// LabelGo marks standard library files outside the runtime.
	LabelGo = "(go)"
	// LabelExternal marks uninstrumented dependency code (module cache,
	// vendored sources, cgo shims).
	LabelExternal = "(external)"
)
