// Package submit drives fetch-data forms: it takes over their submit events,
// builds the payload, sends one HTTP request per submission and hands the
// settled response to the renderer.
package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-fetchforms/pkg/codec"
	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/field"
	"github.com/goliatone/go-fetchforms/pkg/hooks"
	"github.com/goliatone/go-fetchforms/pkg/payload"
	"github.com/goliatone/go-fetchforms/pkg/render"
	"github.com/goliatone/go-fetchforms/pkg/token"
)

const acceptHeader = "application/json, application/msgpack;q=0.9, */*;q=0.1"

// Controller owns the submission lifecycle of every attached form.
type Controller struct {
	cfg       Config
	client    *http.Client
	tokens    token.Provider
	registry  *hooks.Registry
	renderer  *render.Renderer
	codecs    *codec.Registry
	scheduler Scheduler
	headers   http.Header
	logger    *zap.Logger
	baseCtx   context.Context

	wg sync.WaitGroup
}

// New constructs a controller. Token settings are normalised once here, so
// version and site key warnings surface at startup.
func New(options ...Option) (*Controller, error) {
	c := &Controller{
		cfg: Config{
			Selector:        DefaultSelector,
			DisableDuration: DefaultDisableDuration,
		},
		client:    http.DefaultClient,
		registry:  hooks.NewRegistry(),
		codecs:    codec.NewRegistry(),
		scheduler: timerScheduler{},
		headers:   make(http.Header),
		logger:    zap.NewNop(),
		baseCtx:   context.Background(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = c.logger.Named("submit")

	if c.cfg.Token != nil {
		normalized := token.Normalize(*c.cfg.Token, c.logger)
		c.cfg.Token = &normalized
	}

	if c.renderer == nil {
		renderer, err := render.New(render.WithLogger(c.logger))
		if err != nil {
			return nil, fmt.Errorf("submit: renderer: %w", err)
		}
		c.renderer = renderer
	}
	return c, nil
}

// Config returns the resolved configuration.
func (c *Controller) Config() Config {
	cfg := c.cfg
	if cfg.Token != nil {
		copied := *cfg.Token
		cfg.Token = &copied
	}
	return cfg
}

// Attach registers a submit listener on every form of doc matching the
// configured selector and returns the forms taken over. Matches that are not
// forms are skipped.
func (c *Controller) Attach(doc *dom.Document) ([]*dom.Form, error) {
	if doc == nil {
		return nil, errors.New("submit: document is required")
	}
	matches, err := doc.QueryAll(c.cfg.Selector)
	if err != nil {
		return nil, fmt.Errorf("submit: attach: %w", err)
	}

	forms := make([]*dom.Form, 0, len(matches))
	for _, el := range matches {
		form, err := doc.FormFor(el)
		if err != nil {
			c.logger.Debug("selector matched a non-form element", zap.String("tag", el.Tag()))
			continue
		}
		form.AddEventListener(dom.EventSubmit, c.listener(form))
		forms = append(forms, form)
	}
	c.logger.Debug("forms attached", zap.Int("count", len(forms)), zap.String("selector", c.cfg.Selector))
	return forms, nil
}

func (c *Controller) listener(form *dom.Form) dom.Listener {
	return func(ev *dom.Event) {
		ev.PreventDefault()
		submitter := ev.Submitter

		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			if _, err := c.Submit(c.baseCtx, form, submitter); err != nil {
				c.logger.Error("submission rejected", zap.String("form", form.ID()), zap.Error(err))
			}
		}()
	}
}

// Wait blocks until every listener-driven submission has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Submit runs one submission of form as if submitter had activated it.
// Outcomes, including transport errors and abandoned token acquisition, are
// reported through the Result; the error is reserved for invalid input such as
// a missing form or a submitter that does not belong to it.
func (c *Controller) Submit(ctx context.Context, form *dom.Form, submitter *dom.Element) (Result, error) {
	if ctx == nil {
		return Result{}, ErrContextMissing
	}
	if form == nil {
		return Result{}, ErrFormRequired
	}

	started := time.Now()
	res := Result{
		ID:     uuid.NewString(),
		Trace:  []State{StateIdle},
		Method: form.Method(),
	}
	logger := c.logger.With(zap.String("submission", res.ID), zap.String("form", form.ID()))

	entries, err := form.Entries(submitter)
	if err != nil {
		return res, fmt.Errorf("submit: collect entries: %w", err)
	}
	cb := c.registry.Resolve(form)
	fields := field.Classify(entries, field.FormResolver(form))
	body := payload.Build(fields)
	res.Payload = body

	if submitter != nil {
		submitter.Disable()
	}
	res.Trace = append(res.Trace, StatePrepared)

	if wantsToken(form) {
		res.Trace = append(res.Trace, StateTokenPending)
		value, err := c.acquireToken(ctx, logger)
		if err != nil {
			if submitter != nil {
				submitter.Enable()
			}
			res.Outcome = OutcomeAbandoned
			res.Err = err
			res.Elapsed = time.Since(started)
			return res, nil
		}
		body.Add(token.FieldName, value)
	}

	logger.Debug("payload prepared", zap.String("method", res.Method), zap.Strings("pairs", describePairs(body)))

	req, reqErr := c.buildRequest(ctx, form, res.Method, body)
	if req != nil {
		res.URL = req.URL.String()
	}

	if submitter != nil {
		c.scheduler.AfterFunc(c.cfg.DisableDuration, submitter.Enable)
		cb.BeforeSend(ctx)
	}

	if reqErr != nil {
		return c.settleTransport(ctx, res, started, fmt.Errorf("%w: %w", ErrRequestFailed, reqErr), cb, logger), nil
	}

	res.Trace = append(res.Trace, StateDispatched)
	resp, err := c.client.Do(req)
	if err != nil {
		return c.settleTransport(ctx, res, started, fmt.Errorf("%w: %w", ErrRequestFailed, err), cb, logger), nil
	}
	defer resp.Body.Close()

	res.Status = resp.StatusCode
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.settleTransport(ctx, res, started, StatusError{Code: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}, cb, logger), nil
	}
	decoded, err := c.codecs.Decode(resp.Header.Get("Content-Type"), raw)
	if err != nil {
		return c.settleTransport(ctx, res, started, StatusError{Code: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrUndecodable, err)}, cb, logger), nil
	}

	res.Body = decoded
	res.Trace = append(res.Trace, StateSettled)
	res.Elapsed = time.Since(started)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		res.Outcome = OutcomeSuccess
		c.renderer.Success(ctx, form, decoded, cb)
	} else {
		res.Outcome = OutcomeFailure
		c.renderer.Failure(ctx, form, decoded, cb)
	}

	logger.Debug("submission settled",
		zap.Stringer("outcome", res.Outcome),
		zap.Int("status", res.Status),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res, nil
}

func (c *Controller) settleTransport(ctx context.Context, res Result, started time.Time, err error, cb hooks.Callbacks, logger *zap.Logger) Result {
	res.Outcome = OutcomeTransportError
	res.Err = err
	res.Trace = append(res.Trace, StateSettled)
	res.Elapsed = time.Since(started)

	logger.Warn("submission failed", zap.Error(err))
	c.renderer.TransportError(ctx, err, cb)
	return res
}

func (c *Controller) buildRequest(ctx context.Context, form *dom.Form, method string, body *payload.Payload) (*http.Request, error) {
	target, err := form.Action()
	if err != nil {
		return nil, err
	}

	var req *http.Request
	if payload.IsReadMethod(method) {
		req, err = http.NewRequestWithContext(ctx, method, payload.AppendQuery(target, body.Query()), nil)
		if err != nil {
			return nil, err
		}
	} else {
		encoded, contentType, err := body.Multipart()
		if err != nil {
			return nil, err
		}
		req, err = http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
	}

	req.Header.Set("Accept", acceptHeader)
	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return req, nil
}

func (c *Controller) acquireToken(ctx context.Context, logger *zap.Logger) (string, error) {
	if c.tokens == nil {
		logger.Warn("reCAPTCHA objects couldn't be found. Have the scripts been loaded?")
		return "", ErrNoTokenSource
	}
	var siteKey string
	if c.cfg.Token != nil {
		siteKey = c.cfg.Token.SiteKey
	}
	value, err := c.tokens.Token(ctx, siteKey, token.Action)
	if err != nil {
		logger.Warn("token provider failed", zap.String("site_key", siteKey), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrNoTokenSource, err)
	}
	if value == "" {
		logger.Warn("token provider returned an empty token", zap.String("site_key", siteKey))
		return "", fmt.Errorf("%w: empty token", ErrNoTokenSource)
	}
	return value, nil
}

// wantsToken reports whether the form opted into token acquisition. The
// attribute is boolean-style; only an explicit "false" opts out.
func wantsToken(form *dom.Form) bool {
	value, ok := form.Attr(AttrToken)
	if !ok {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(value), "false")
}

func describePairs(body *payload.Payload) []string {
	pairs := body.Pairs()
	out := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		out = append(out, pair.Name+"="+pair.Value.String())
	}
	return out
}
