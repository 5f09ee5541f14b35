// Package prompt fills the controls of a form interactively before it is
// submitted. Prompts run through a Driver; the default one is backed by
// survey.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/field"
)

// FileReader loads the bytes of a path answered at a file prompt.
type FileReader func(path string) ([]byte, error)

// Filler prompts for every fillable field of a form and writes the answers
// into the live control state.
type Filler struct {
	driver   Driver
	readFile FileReader
	logger   *zap.Logger
}

// Option configures the filler.
type Option func(*Filler)

// WithDriver overrides the prompt driver.
func WithDriver(driver Driver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithFileReader overrides how file prompt answers are loaded.
func WithFileReader(fn FileReader) Option {
	return func(f *Filler) {
		if fn != nil {
			f.readFile = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Filler) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New constructs a filler using the survey driver unless overridden.
func New(options ...Option) *Filler {
	f := &Filler{
		driver:   NewSurveyDriver(),
		readFile: os.ReadFile,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.logger = f.logger.Named("prompt")
	return f
}

// Fill announces the form, then prompts for each field in tree order and
// returns the names it asked about. Submit controls, hidden inputs, buttons
// and disabled controls are left alone.
func (f *Filler) Fill(ctx context.Context, form *dom.Form) ([]string, error) {
	if ctx == nil {
		return nil, errors.New("prompt: context is required")
	}
	if form == nil {
		return nil, errors.New("prompt: form is required")
	}
	if f.driver == nil {
		return nil, ErrNoDriver
	}
	if err := f.driver.Announce(ctx, title(form)); err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var asked []string
	for _, el := range form.Controls() {
		name := el.Name()
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		group := fillable(form.Named(name))
		if len(group) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return asked, err
		}
		if err := f.fillGroup(ctx, name, group); err != nil {
			return asked, fmt.Errorf("prompt: field %q: %w", name, err)
		}
		asked = append(asked, name)
	}
	f.logger.Debug("form filled", zap.String("form", form.ID()), zap.Strings("fields", asked))
	return asked, nil
}

func title(form *dom.Form) string {
	target := "(no action)"
	if action, err := form.Action(); err == nil && action != nil && action.String() != "" {
		target = action.String()
	}
	if id := form.ID(); id != "" {
		return fmt.Sprintf("Form %q: %s %s", id, form.Method(), target)
	}
	return fmt.Sprintf("Form: %s %s", form.Method(), target)
}

func fillable(controls []*dom.Element) []*dom.Element {
	out := make([]*dom.Element, 0, len(controls))
	for _, el := range controls {
		if el.Disabled() {
			continue
		}
		switch el.Tag() {
		case "button":
			continue
		case "input":
			switch el.Type() {
			case "hidden", "submit", "image", "reset", "button":
				continue
			}
		}
		out = append(out, el)
	}
	return out
}

// questionFor describes el: its label, placeholder or title as help, current
// value and length constraints.
func questionFor(name string, el *dom.Element) Question {
	q := Question{
		Name:      name,
		Label:     el.Label(),
		Default:   el.Value(),
		Required:  el.HasAttr("required"),
		MinLength: intAttr(el, "minlength"),
		MaxLength: intAttr(el, "maxlength"),
	}
	if help, ok := el.Attr("placeholder"); ok {
		q.Help = help
	} else if help, ok := el.Attr("title"); ok {
		q.Help = help
	}
	return q
}

func intAttr(el *dom.Element, name string) int {
	raw, ok := el.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (f *Filler) fillGroup(ctx context.Context, name string, group []*dom.Element) error {
	switch field.Describe(group[0]).Kind {
	case field.KindRadio:
		return f.fillRadios(ctx, name, ofType(group, "radio"))
	case field.KindCheckbox:
		if len(group) == 1 {
			return f.fillToggle(ctx, name, group[0])
		}
		return f.fillCheckboxes(ctx, name, ofType(group, "checkbox"))
	case field.KindMultiSelect:
		return f.fillSelect(ctx, name, group[0], true)
	case field.KindMultiFile:
		return f.fillFiles(ctx, name, group[0], true)
	}

	for _, el := range group {
		if err := f.fillPlain(ctx, name, el); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) fillPlain(ctx context.Context, name string, el *dom.Element) error {
	q := questionFor(name, el)
	var (
		value string
		err   error
	)
	switch {
	case el.Tag() == "select":
		return f.fillSelect(ctx, name, el, false)
	case el.Tag() == "textarea":
		value, err = f.driver.Paragraph(ctx, q)
	case el.Type() == "file":
		return f.fillFiles(ctx, name, el, false)
	case el.Type() == "password":
		value, err = f.driver.Secret(ctx, q)
	case el.Type() == "checkbox" || el.Type() == "radio":
		// mixed group; the first control decided the prompt
		return nil
	default:
		value, err = f.driver.Text(ctx, q)
	}
	if err != nil {
		return err
	}
	return el.SetValue(value)
}

func (f *Filler) fillToggle(ctx context.Context, name string, el *dom.Element) error {
	on, err := f.driver.Toggle(ctx, questionFor(name, el), el.Checked())
	if err != nil {
		return err
	}
	return el.SetChecked(on)
}

// checkChoices turns a radio or checkbox group into choices labelled by each
// control's own label.
func checkChoices(group []*dom.Element) []dom.Choice {
	out := make([]dom.Choice, len(group))
	for i, el := range group {
		out[i] = dom.Choice{Value: checkValue(el), Label: el.Label(), Selected: el.Checked()}
	}
	return out
}

func (f *Filler) fillRadios(ctx context.Context, name string, radios []*dom.Element) error {
	value, err := f.driver.Choose(ctx, Question{Name: name}, checkChoices(radios))
	if err != nil {
		return err
	}
	for _, el := range radios {
		if checkValue(el) == value {
			return el.SetChecked(true)
		}
	}
	return nil
}

func (f *Filler) fillCheckboxes(ctx context.Context, name string, boxes []*dom.Element) error {
	values, err := f.driver.ChooseMany(ctx, Question{Name: name}, checkChoices(boxes))
	if err != nil {
		return err
	}
	picked := make(map[string]bool, len(values))
	for _, v := range values {
		picked[v] = true
	}
	for _, el := range boxes {
		if err := el.SetChecked(picked[checkValue(el)]); err != nil {
			return err
		}
	}
	return nil
}

func (f *Filler) fillSelect(ctx context.Context, name string, el *dom.Element, multiple bool) error {
	var choices []dom.Choice
	for _, c := range el.Choices() {
		if !c.Disabled {
			choices = append(choices, c)
		}
	}
	if len(choices) == 0 {
		return nil
	}
	q := questionFor(name, el)

	if multiple {
		values, err := f.driver.ChooseMany(ctx, q, choices)
		if err != nil {
			return err
		}
		return el.SetSelected(values...)
	}
	value, err := f.driver.Choose(ctx, q, choices)
	if err != nil {
		return err
	}
	return el.SetSelected(value)
}

func (f *Filler) fillFiles(ctx context.Context, name string, el *dom.Element, multiple bool) error {
	paths, err := f.driver.Paths(ctx, questionFor(name, el), multiple)
	if err != nil {
		return err
	}

	files := make([]dom.File, 0, len(paths))
	for _, path := range paths {
		data, err := f.readFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, dom.File{
			Name:        filepath.Base(path),
			ContentType: contentType(path),
			Data:        data,
		})
	}
	if len(files) == 0 {
		return nil
	}
	return el.AttachFiles(files...)
}

func ofType(group []*dom.Element, typ string) []*dom.Element {
	out := make([]*dom.Element, 0, len(group))
	for _, el := range group {
		if el.Tag() == "input" && el.Type() == typ {
			out = append(out, el)
		}
	}
	return out
}

func checkValue(el *dom.Element) string {
	if v, ok := el.Attr("value"); ok {
		return v
	}
	return "on"
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
