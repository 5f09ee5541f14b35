package render

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	// DefaultSlotAttr marks error-annotation slots; its value names the field.
	DefaultSlotAttr = "data-fetch-errors"
	// DefaultMessageTemplate wraps each message inserted into a slot.
	DefaultMessageTemplate = "<div>{{ message }}</div>"
)

// Option customises the renderer.
type Option func(*Renderer)

// WithSlotAttr overrides the attribute identifying error slots.
func WithSlotAttr(attr string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(attr); trimmed != "" {
			r.slotAttr = trimmed
		}
	}
}

// WithMessageTemplate overrides the pongo2 template used for each message.
// The template receives "message" and "field".
func WithMessageTemplate(source string) Option {
	return func(r *Renderer) {
		if trimmed := strings.TrimSpace(source); trimmed != "" {
			r.templateSource = trimmed
		}
	}
}

// WithPolicy overrides the sanitising policy applied to rendered markup.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
