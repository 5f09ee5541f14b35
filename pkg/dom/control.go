package dom

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// File is a file attached to a file input.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Value is a single entry value: text, or a file when File is set.
type Value struct {
	Text string
	File *File
}

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Text: s} }

// FileValue wraps a file.
func FileValue(f File) Value { return Value{File: &f} }

// IsFile reports whether the value carries binary content.
func (v Value) IsFile() bool { return v.File != nil }

// String returns the text, or the file name for file values.
func (v Value) String() string {
	if v.File != nil {
		return v.File.Name
	}
	return v.Text
}

type controlState struct {
	value    *string
	checked  *bool
	selected *bool
	files    []File
}

// Value returns the current value of a control: the typed value for inputs
// and textareas, the first selected option for selects.
func (e *Element) Value() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	switch e.node.Data {
	case "select":
		for _, opt := range e.doc.selectedOptionsLocked(e.node) {
			return optionValue(opt)
		}
		return ""
	case "option":
		return optionValue(e.node)
	default:
		return e.doc.valueLocked(e.node)
	}
}

// SetValue sets the current value of an input or textarea. For selects it
// selects the option carrying value.
func (e *Element) SetValue(value string) error {
	switch e.node.Data {
	case "select":
		return e.SetSelected(value)
	case "input", "textarea":
	default:
		return fmt.Errorf("%w: <%s>", ErrNotControl, e.node.Data)
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	v := value
	e.doc.stateFor(e.node).value = &v
	return nil
}

// Checked reports the current checkedness of a checkbox or radio.
func (e *Element) Checked() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.doc.checkedLocked(e.node)
}

// SetChecked changes the checkedness of a checkbox or radio. Checking a radio
// unchecks the other radios of its group.
func (e *Element) SetChecked(checked bool) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	typ := controlType(e.node)
	if e.node.Data != "input" || (typ != "checkbox" && typ != "radio") {
		return fmt.Errorf("%w: <%s type=%q> cannot be checked", ErrNotControl, e.node.Data, typ)
	}

	if typ == "radio" && checked {
		name := attr(e.node, "name")
		owner := e.doc.formOwnerLocked(e.node)
		for _, n := range e.doc.controlsLocked(owner) {
			if n == e.node || n.Data != "input" || controlType(n) != "radio" {
				continue
			}
			if name != "" && attr(n, "name") == name {
				off := false
				e.doc.stateFor(n).checked = &off
			}
		}
	}

	c := checked
	e.doc.stateFor(e.node).checked = &c
	return nil
}

// SetSelected selects the options whose value is in values and deselects the
// rest. Single selects keep only the first match.
func (e *Element) SetSelected(values ...string) error {
	if e.node.Data != "select" {
		return fmt.Errorf("%w: <%s> has no options", ErrNotControl, e.node.Data)
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	wanted := make(map[string]struct{}, len(values))
	for _, v := range values {
		wanted[v] = struct{}{}
	}
	multiple := hasAttr(e.node, "multiple")
	picked := false

	for _, opt := range options(e.node) {
		_, ok := wanted[optionValue(opt)]
		selected := ok && (multiple || !picked)
		if selected {
			picked = true
		}
		s := selected
		e.doc.stateFor(opt).selected = &s
	}
	return nil
}

// AttachFiles replaces the files of a file input.
func (e *Element) AttachFiles(files ...File) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.Data != "input" || controlType(e.node) != "file" {
		return fmt.Errorf("%w: <%s> does not accept files", ErrNotControl, e.node.Data)
	}
	if len(files) > 1 && !hasAttr(e.node, "multiple") {
		return ErrTooManyFiles
	}
	e.doc.stateFor(e.node).files = append([]File(nil), files...)
	return nil
}

// Files returns the files attached to a file input.
func (e *Element) Files() []File {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if st, ok := e.doc.state[e.node]; ok {
		return append([]File(nil), st.files...)
	}
	return nil
}

// Choice is one option of a select.
type Choice struct {
	Value    string
	Label    string
	Selected bool
	Disabled bool
}

// Choices returns the options of a select in tree order with their live
// selectedness. The label is the option's label attribute, else its text.
func (e *Element) Choices() []Choice {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if e.node.Data != "select" {
		return nil
	}
	selected := make(map[*html.Node]bool)
	for _, opt := range e.doc.selectedOptionsLocked(e.node) {
		selected[opt] = true
	}

	var out []Choice
	for _, opt := range options(e.node) {
		out = append(out, Choice{
			Value:    optionValue(opt),
			Label:    optionLabel(opt),
			Selected: selected[opt],
			Disabled: hasAttr(opt, "disabled"),
		})
	}
	return out
}

func (d *Document) valueLocked(n *html.Node) string {
	if st, ok := d.state[n]; ok && st.value != nil {
		return *st.value
	}
	if n.Data == "textarea" {
		return textContent(n)
	}
	return attr(n, "value")
}

func (d *Document) checkedLocked(n *html.Node) bool {
	if st, ok := d.state[n]; ok && st.checked != nil {
		return *st.checked
	}
	return hasAttr(n, "checked")
}

func (d *Document) optionSelectedLocked(n *html.Node) bool {
	if st, ok := d.state[n]; ok && st.selected != nil {
		return *st.selected
	}
	return hasAttr(n, "selected")
}

// selectedOptionsLocked applies the selectedness rules of a select: a single
// select keeps its last selected option, or falls back to the first enabled
// option when nothing is selected.
func (d *Document) selectedOptionsLocked(sel *html.Node) []*html.Node {
	opts := options(sel)
	if hasAttr(sel, "multiple") {
		var out []*html.Node
		for _, opt := range opts {
			if d.optionSelectedLocked(opt) {
				out = append(out, opt)
			}
		}
		return out
	}

	var last *html.Node
	for _, opt := range opts {
		if d.optionSelectedLocked(opt) {
			last = opt
		}
	}
	if last != nil {
		return []*html.Node{last}
	}
	for _, opt := range opts {
		if !hasAttr(opt, "disabled") {
			return []*html.Node{opt}
		}
	}
	return nil
}

func options(sel *html.Node) []*html.Node {
	var out []*html.Node
	walk(sel, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "option" {
			out = append(out, n)
		}
		return true
	})
	return out
}

func optionValue(opt *html.Node) string {
	if v, ok := lookupAttr(opt, "value"); ok {
		return v
	}
	return strings.Join(strings.Fields(textContent(opt)), " ")
}

func optionLabel(opt *html.Node) string {
	if v := strings.TrimSpace(attr(opt, "label")); v != "" {
		return v
	}
	return strings.Join(strings.Fields(textContent(opt)), " ")
}
