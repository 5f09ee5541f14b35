package submit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-fetchforms/pkg/codec"
	"github.com/goliatone/go-fetchforms/pkg/hooks"
	"github.com/goliatone/go-fetchforms/pkg/render"
	"github.com/goliatone/go-fetchforms/pkg/token"
)

const (
	// DefaultSelector matches the forms the controller takes over.
	DefaultSelector = "form[data-fetch]"
	// DefaultDisableDuration is how long a submitter stays disabled.
	DefaultDisableDuration = 1500 * time.Millisecond
	// AttrToken opts a form into anti-abuse tokens.
	AttrToken = "data-fetch-recaptcha"
)

// Config is the process-wide configuration resolved once by New.
type Config struct {
	Selector        string
	DisableDuration time.Duration
	Token           *token.Config
}

// Option customises the controller.
type Option func(*Controller)

// WithSelector overrides the CSS selector used by Attach.
func WithSelector(selector string) Option {
	return func(c *Controller) {
		if trimmed := strings.TrimSpace(selector); trimmed != "" {
			c.cfg.Selector = trimmed
		}
	}
}

// WithDisableDuration sets how long the submitter stays disabled after a
// request leaves. Negative durations are ignored.
func WithDisableDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.cfg.DisableDuration = d
		}
	}
}

// WithToken enables anti-abuse token settings.
func WithToken(cfg token.Config) Option {
	return func(c *Controller) {
		copied := cfg
		c.cfg.Token = &copied
	}
}

// WithTokenProvider sets the external token provider.
func WithTokenProvider(provider token.Provider) Option {
	return func(c *Controller) {
		c.tokens = provider
	}
}

// WithCallbacks supplies the registry the form callback names resolve against.
func WithCallbacks(registry *hooks.Registry) Option {
	return func(c *Controller) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		if client != nil {
			c.client = client
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Controller) {
		for key, value := range headers {
			if strings.TrimSpace(key) == "" {
				continue
			}
			c.headers.Set(key, value)
		}
	}
}

// WithRenderer overrides the response renderer.
func WithRenderer(renderer *render.Renderer) Option {
	return func(c *Controller) {
		if renderer != nil {
			c.renderer = renderer
		}
	}
}

// WithCodecs overrides the response decoders.
func WithCodecs(codecs *codec.Registry) Option {
	return func(c *Controller) {
		if codecs != nil {
			c.codecs = codecs
		}
	}
}

// WithScheduler overrides the timer used to re-enable submitters.
func WithScheduler(scheduler Scheduler) Option {
	return func(c *Controller) {
		if scheduler != nil {
			c.scheduler = scheduler
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBaseContext sets the context used by listener-driven submissions.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
