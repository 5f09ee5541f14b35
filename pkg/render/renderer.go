// Package render turns settled submissions into document feedback: error
// slots, form reset, lifecycle callbacks and the per-form notification event.
package render

import (
	"context"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/hooks"
)

// Renderer applies response outcomes to a document.
type Renderer struct {
	slotAttr       string
	templateSource string
	template       *pongo2.Template
	policy         *bluemonday.Policy
	logger         *zap.Logger
}

// New constructs a renderer with the default slot attribute, message template
// and sanitising policy.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		slotAttr:       DefaultSlotAttr,
		templateSource: DefaultMessageTemplate,
		logger:         zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.policy == nil {
		r.policy = messageSanitizer()
	}

	tpl, err := compileMessageTemplate(r.templateSource)
	if err != nil {
		return nil, err
	}
	r.template = tpl
	r.logger = r.logger.Named("render")
	return r, nil
}

// SlotAttr reports the attribute identifying error slots.
func (r *Renderer) SlotAttr() string { return r.slotAttr }

// Success clears every error slot of the document, resets the form, calls
// OnDone, notifies listeners of "<kebab-id>-submit" when the form has an id,
// and finally calls OnAlways.
func (r *Renderer) Success(ctx context.Context, form *dom.Form, body any, cb hooks.Callbacks) {
	for _, slot := range form.Document().Slots(r.slotAttr) {
		slot.ClearChildren()
	}
	form.Reset()

	cb.Done(ctx, body)

	if name := EventName(form.ID()); name != "" {
		form.Dispatch(&dom.Event{Type: name, Detail: body})
		r.logger.Debug("notification dispatched", zap.String("event", name))
	}

	cb.Always(ctx, body)
}

// Failure clears the form's error slots, renders the reported field messages
// into matching slots, calls OnFail and finally OnAlways.
func (r *Renderer) Failure(ctx context.Context, form *dom.Form, body any, cb hooks.Callbacks) {
	for _, slot := range form.Slots(r.slotAttr) {
		slot.ClearChildren()
	}

	for _, fe := range FieldErrors(body) {
		slot := form.Slot(r.slotAttr, fe.Field)
		if slot == nil {
			r.logger.Debug("no error slot for field", zap.String("field", fe.Field))
			continue
		}
		for _, message := range fe.Messages {
			markup, err := r.messageMarkup(fe.Field, message)
			if err != nil {
				r.logger.Warn("render field message", zap.String("field", fe.Field), zap.Error(err))
				continue
			}
			if err := slot.PrependHTML(markup); err != nil {
				r.logger.Warn("insert field message", zap.String("field", fe.Field), zap.Error(err))
			}
		}
	}

	cb.Fail(ctx, body)
	cb.Always(ctx, body)
}

// TransportError reports a request that produced no usable response. The
// document is left untouched.
func (r *Renderer) TransportError(ctx context.Context, err error, cb hooks.Callbacks) {
	cb.Fail(ctx, err)
	cb.Always(ctx, nil)
}
