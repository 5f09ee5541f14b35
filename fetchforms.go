// Package fetchforms replaces native form submissions with asynchronous
// requests. It parses an HTML document, takes over the submit events of the
// forms matching a selector, normalises their fields into one payload, sends
// it and renders the response back into the document.
//
// The subpackages carry the pieces: dom (document and control state), field
// (classification), payload (wire encoding), submit (controller), render
// (response feedback) and hooks (named callbacks).
package fetchforms

import (
	"io"

	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/hooks"
	"github.com/goliatone/go-fetchforms/pkg/submit"
)

// Controller aliases submit.Controller.
type Controller = submit.Controller

// Option aliases submit.Option.
type Option = submit.Option

// Result aliases submit.Result.
type Result = submit.Result

// Callbacks aliases hooks.Registry so callers can register named callbacks
// without importing the hooks package.
type Callbacks = hooks.Registry

// NewController exposes the controller constructor from the top-level module.
func NewController(options ...Option) (*Controller, error) {
	return submit.New(options...)
}

// NewCallbacks returns an empty callback registry.
func NewCallbacks() *Callbacks {
	return hooks.NewRegistry()
}

// Attach builds a controller and takes over the matching forms of doc. It is
// the simplest entry point for callers holding a parsed document.
func Attach(doc *dom.Document, options ...Option) (*Controller, []*dom.Form, error) {
	c, err := submit.New(options...)
	if err != nil {
		return nil, nil, err
	}
	forms, err := c.Attach(doc)
	if err != nil {
		return nil, nil, err
	}
	return c, forms, nil
}

// Load parses markup and attaches a controller to it in one step.
func Load(r io.Reader, baseURL string, options ...Option) (*dom.Document, *Controller, error) {
	doc, err := dom.Parse(r, baseURL)
	if err != nil {
		return nil, nil, err
	}
	c, _, err := Attach(doc, options...)
	if err != nil {
		return nil, nil, err
	}
	return doc, c, nil
}
