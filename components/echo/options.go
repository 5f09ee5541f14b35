package echo

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const defaultMaxMemory = 32 << 20

// GuardFunc can reject a request before it is echoed.
type GuardFunc func(r *http.Request) error

// ValidatorFunc inspects submitted fields and returns messages per field.
// A nil or empty result accepts the submission.
type ValidatorFunc func(fields url.Values) map[string][]string

type Options struct {
	GetPath   string
	PostPath  string
	MaxMemory int64
	CORS      bool
	Guard     GuardFunc
	Validator ValidatorFunc
	Logger    *zap.Logger
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		GetPath:   "/test/get",
		PostPath:  "/test/post",
		MaxMemory: defaultMaxMemory,
		CORS:      true,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.GetPath == "" {
		opts.GetPath = "/test/get"
	}
	if opts.PostPath == "" {
		opts.PostPath = "/test/post"
	}
	if opts.MaxMemory <= 0 {
		opts.MaxMemory = defaultMaxMemory
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return opts
}

func WithGetPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.GetPath = path
	}
}

func WithPostPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.PostPath = path
	}
}

func WithMaxMemory(n int64) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxMemory = n
	}
}

// WithCORS toggles the permissive cross-origin headers.
func WithCORS(enabled bool) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.CORS = enabled
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithValidator(validator ValidatorFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Validator = validator
	}
}

// WithRequired is a validator shortcut that reports "required" for every
// listed field submitted empty or missing.
func WithRequired(fields ...string) OptionFn {
	names := append([]string(nil), fields...)
	return WithValidator(func(values url.Values) map[string][]string {
		out := map[string][]string{}
		for _, name := range names {
			if values.Get(name) == "" {
				out[name] = append(out[name], "required")
			}
		}
		return out
	})
}

func WithLogger(logger *zap.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}
