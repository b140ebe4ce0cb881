package render

import (
	"maps"
	"slices"
)

// Runtime variable names.
const (
	VarIndex         = ":i"
	VarFilter        = ":filter"
	VarTag           = ":tag"
	VarFile          = ":file"
	VarBasename      = ":basename"
	VarCaption       = ":caption"
	VarWidth         = ":width"
	VarHeight        = ":height"
	VarFileResized   = ":fileResized"
	VarWidthResized  = ":widthResized"
	VarHeightResized = ":heightResized"
	VarPagelistCount = ":pagelistCount"
	VarFilelistCount = ":filelistCount"
)

var runtimeVars = map[string]bool{
	VarIndex:         true,
	VarFilter:        true,
	VarTag:           true,
	VarFile:          true,
	VarBasename:      true,
	VarCaption:       true,
	VarWidth:         true,
	VarHeight:        true,
	VarFileResized:   true,
	VarWidthResized:  true,
	VarHeightResized: true,
}

// Shelf is a snapshot of the runtime variables.
type Shelf map[string]string

// Runtime is the store of loop and file variables of a render. Runtime
// keys shadow page fields of the same name.
type Runtime struct {
	vars     map[string]string
	computed map[string]func() string
}

// NewRuntime returns an empty runtime. computed values are evaluated on
// every Get.
func NewRuntime(computed map[string]func() string) *Runtime {
	if computed == nil {
		computed = map[string]func() string{}
	}
	return &Runtime{vars: map[string]string{}, computed: computed}
}

// IsRuntimeVar reports whether key is owned by the runtime.
func (r *Runtime) IsRuntimeVar(key string) bool {
	if runtimeVars[key] {
		return true
	}
	_, ok := r.computed[key]
	return ok
}

// Get returns the value of key, or "".
func (r *Runtime) Get(key string) string {
	v, _ := r.Lookup(key)
	return v
}

// Lookup returns the value of key and whether it is set.
func (r *Runtime) Lookup(key string) (string, bool) {
	if fn, ok := r.computed[key]; ok {
		return fn(), true
	}
	v, ok := r.vars[key]
	return v, ok
}

// Set assigns a runtime variable. Computed keys can not be set.
func (r *Runtime) Set(key, value string) {
	if _, ok := r.computed[key]; ok {
		return
	}
	r.vars[key] = value
}

// Shelve snapshots all runtime variables.
func (r *Runtime) Shelve() Shelf {
	return maps.Clone(r.vars)
}

// Unshelve replaces all runtime variables with a snapshot.
func (r *Runtime) Unshelve(s Shelf) {
	r.vars = maps.Clone(s)
	if r.vars == nil {
		r.vars = map[string]string{}
	}
}

// Keys returns the sorted names of the variables currently set.
func (r *Runtime) Keys() []string {
	return slices.Sorted(maps.Keys(r.vars))
}
