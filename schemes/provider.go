package schemes

import "sync/atomic"

// Provider supplies the current allow-list of URI scheme patterns, one
// regular expression per line. Renderers query it for every link and image
// so that runtime changes are picked up immediately.
type Provider interface {
	Get() string
}

// Static is a fixed pattern list.
type Static string

// Get returns the pattern list.
func (s Static) Get() string {
	return string(s)
}

// Func adapts a function to the Provider interface.
type Func func() string

// Get calls f.
func (f Func) Get() string {
	if f == nil {
		return ""
	}
	return f()
}

// Dynamic is a Provider whose value can be replaced at runtime. It is safe
// for concurrent use.
type Dynamic struct {
	value atomic.Pointer[string]
}

// NewDynamic creates a Dynamic provider holding patterns.
func NewDynamic(patterns string) *Dynamic {
	d := &Dynamic{}
	d.Set(patterns)
	return d
}

// Set replaces the pattern list.
func (d *Dynamic) Set(patterns string) {
	d.value.Store(&patterns)
}

// Get returns the current pattern list.
func (d *Dynamic) Get() string {
	if v := d.value.Load(); v != nil {
		return *v
	}
	return ""
}
