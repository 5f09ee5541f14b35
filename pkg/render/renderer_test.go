package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/hooks"
	"github.com/goliatone/go-fetchforms/pkg/render"
)

const signupPage = `<!doctype html><html><body>
<div data-fetch-errors="banner"><p>outside</p></div>
<form id="UserLogin" action="/login" method="post">
  <input name="email" value="">
  <div data-fetch-errors="email"><div>old email error</div></div>
  <div data-fetch-errors="password"><div>old password error</div></div>
</form>
<form id="other"><div data-fetch-errors="email"><div>other form</div></div></form>
</body></html>`

type recorder struct {
	calls []string
	last  map[string]any
}

func (r *recorder) callbacks() hooks.Callbacks {
	r.last = map[string]any{}
	return hooks.Callbacks{
		OnDone:   r.record("done"),
		OnFail:   r.record("fail"),
		OnAlways: r.record("always"),
	}
}

func (r *recorder) record(name string) hooks.ResultFunc {
	return func(_ context.Context, v any) {
		r.calls = append(r.calls, name)
		r.last[name] = v
	}
}

func setup(t *testing.T) (*dom.Document, *dom.Form, *dom.Form) {
	t.Helper()
	doc, err := dom.ParseString(signupPage, "http://example.test/")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	forms := doc.Forms()
	return doc, forms[0], forms[1]
}

func newRenderer(t *testing.T, opts ...render.Option) *render.Renderer {
	t.Helper()
	r, err := render.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestSuccess_ClearsSlotsResetsAndNotifies(t *testing.T) {
	doc, form, _ := setup(t)
	r := newRenderer(t)

	email := form.Named("email")[0]
	if err := email.SetValue("ada@example.test"); err != nil {
		t.Fatalf("set value: %v", err)
	}

	var events []any
	form.AddEventListener("user-login-submit", func(ev *dom.Event) { events = append(events, ev.Detail) })

	rec := &recorder{}
	body := map[string]any{"ok": true}
	r.Success(context.Background(), form, body, rec.callbacks())

	for _, slot := range doc.Slots(render.DefaultSlotAttr) {
		if slot.ChildCount() != 0 {
			t.Fatalf("expected slot cleared, got %q", slot.InnerHTML())
		}
	}
	if v := email.Value(); v != "" {
		t.Fatalf("expected form reset, email = %q", v)
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(events))
	}
	if got := events[0].(map[string]any)["ok"]; got != true {
		t.Fatalf("expected notification detail to carry the body")
	}
	if want := []string{"done", "always"}; len(rec.calls) != 2 || rec.calls[0] != want[0] || rec.calls[1] != want[1] {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
}

func TestSuccess_NoIDNoNotification(t *testing.T) {
	doc, err := dom.ParseString(`<form><div data-fetch-errors="x"></div></form>`, "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	form := doc.Forms()[0]
	r := newRenderer(t)

	fired := 0
	form.AddEventListener("-submit", func(*dom.Event) { fired++ })
	r.Success(context.Background(), form, map[string]any{}, hooks.Callbacks{})

	if fired != 0 {
		t.Fatalf("expected no notification for a form without id")
	}
}

func TestFailure_RendersOnlyMatchingSlots(t *testing.T) {
	doc, form, other := setup(t)
	r := newRenderer(t)

	rec := &recorder{}
	body := map[string]any{"errors": map[string]any{
		"email":   map[string]any{"messages": []any{"required"}},
		"unknown": map[string]any{"messages": []any{"ignored"}},
	}}
	r.Failure(context.Background(), form, body, rec.callbacks())

	email := form.Slot(render.DefaultSlotAttr, "email")
	if got, want := email.InnerHTML(), "<div>required</div>"; got != want {
		t.Fatalf("email slot = %q, want %q", got, want)
	}
	if got := form.Slot(render.DefaultSlotAttr, "password").ChildCount(); got != 0 {
		t.Fatalf("expected password slot cleared, has %d children", got)
	}
	if got, want := other.Slot(render.DefaultSlotAttr, "email").InnerHTML(), "<div>other form</div>"; got != want {
		t.Fatalf("other form slot touched: %q", got)
	}
	banner := doc.Slots(render.DefaultSlotAttr)[0]
	if got, want := banner.InnerHTML(), "<p>outside</p>"; got != want {
		t.Fatalf("document slot outside the form touched: %q", got)
	}
	if len(rec.calls) != 2 || rec.calls[0] != "fail" || rec.calls[1] != "always" {
		t.Fatalf("calls = %v, want [fail always]", rec.calls)
	}
}

func TestFailure_MessagesPrependedAndEscaped(t *testing.T) {
	_, form, _ := setup(t)
	r := newRenderer(t)

	body := map[string]any{"responseJSON": map[string]any{"errors": map[string]any{
		"email": map[string]any{"messages": []any{"first", "<script>alert(1)</script>second"}},
	}}}
	r.Failure(context.Background(), form, body, hooks.Callbacks{})

	got := form.Slot(render.DefaultSlotAttr, "email").InnerHTML()
	want := "<div>&lt;script&gt;alert(1)&lt;/script&gt;second</div><div>first</div>"
	if got != want {
		t.Fatalf("slot = %q, want %q", got, want)
	}
}

func TestFailure_CustomTemplate(t *testing.T) {
	_, form, _ := setup(t)
	r := newRenderer(t, render.WithMessageTemplate(`<p class="error" data-field="{{ field }}">{{ message }}</p>`))

	body := map[string]any{"errors": map[string]any{"email": map[string]any{"messages": []any{"required"}}}}
	r.Failure(context.Background(), form, body, hooks.Callbacks{})

	got := form.Slot(render.DefaultSlotAttr, "email").InnerHTML()
	if want := `<p class="error">required</p>`; got != want {
		t.Fatalf("slot = %q, want %q", got, want)
	}
}

func TestTransportError_LeavesDocumentAlone(t *testing.T) {
	doc, _, _ := setup(t)
	before := doc.HTML()
	r := newRenderer(t)

	rec := &recorder{}
	boom := errors.New("connection refused")
	r.TransportError(context.Background(), boom, rec.callbacks())

	if doc.HTML() != before {
		t.Fatalf("expected document untouched")
	}
	if rec.last["fail"] != boom {
		t.Fatalf("expected fail callback to receive the error")
	}
	if v, ok := rec.last["always"]; !ok || v != nil {
		t.Fatalf("expected always callback with nil value, got %v", v)
	}
}
