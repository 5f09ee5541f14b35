// Package hooks resolves the lifecycle callbacks of a form from an explicit
// registry. Forms name their callbacks through data attributes; the names are
// looked up in the registry handed to the controller, never in a global
// namespace.
package hooks

import (
	"context"
	"strings"
	"sync"

	"github.com/goliatone/go-fetchforms/pkg/dom"
)

// Attribute names carrying callback names on a form.
const (
	AttrDone       = "data-fetch-done"
	AttrFail       = "data-fetch-fail"
	AttrAlways     = "data-fetch-always"
	AttrBeforeSend = "data-fetch-before-send"
)

// ResultFunc receives the decoded body, or the transport error on failure.
type ResultFunc func(ctx context.Context, value any)

// BeforeSendFunc runs right before a request leaves.
type BeforeSendFunc func(ctx context.Context)

// Callbacks are the four optional lifecycle callbacks of one form.
type Callbacks struct {
	OnDone       ResultFunc
	OnFail       ResultFunc
	OnAlways     ResultFunc
	OnBeforeSend BeforeSendFunc
}

// Done invokes OnDone when set.
func (c Callbacks) Done(ctx context.Context, value any) {
	if c.OnDone != nil {
		c.OnDone(ctx, value)
	}
}

// Fail invokes OnFail when set.
func (c Callbacks) Fail(ctx context.Context, value any) {
	if c.OnFail != nil {
		c.OnFail(ctx, value)
	}
}

// Always invokes OnAlways when set.
func (c Callbacks) Always(ctx context.Context, value any) {
	if c.OnAlways != nil {
		c.OnAlways(ctx, value)
	}
}

// BeforeSend invokes OnBeforeSend when set.
func (c Callbacks) BeforeSend(ctx context.Context) {
	if c.OnBeforeSend != nil {
		c.OnBeforeSend(ctx)
	}
}

// Registry stores named callbacks. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	results    map[string]ResultFunc
	beforeSend map[string]BeforeSendFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		results:    make(map[string]ResultFunc),
		beforeSend: make(map[string]BeforeSendFunc),
	}
}

// Handle registers a result callback (done, fail or always) under name.
func (r *Registry) Handle(name string, fn ResultFunc) *Registry {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[name] = fn
	return r
}

// HandleBeforeSend registers a before-send callback under name.
func (r *Registry) HandleBeforeSend(name string, fn BeforeSendFunc) *Registry {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return r
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforeSend[name] = fn
	return r
}

// Resolve reads the callback names from the form attributes. Unknown or
// missing names resolve to nil callbacks.
func (r *Registry) Resolve(form *dom.Form) Callbacks {
	if r == nil || form == nil {
		return Callbacks{}
	}

	lookup := func(attr string) ResultFunc {
		name, ok := form.Attr(attr)
		if !ok {
			return nil
		}
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.results[strings.TrimSpace(name)]
	}

	cb := Callbacks{
		OnDone:   lookup(AttrDone),
		OnFail:   lookup(AttrFail),
		OnAlways: lookup(AttrAlways),
	}
	if name, ok := form.Attr(AttrBeforeSend); ok {
		r.mu.RLock()
		cb.OnBeforeSend = r.beforeSend[strings.TrimSpace(name)]
		r.mu.RUnlock()
	}
	return cb
}
