package dom

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// Form is a form element.
type Form struct {
	*Element
}

// Entry is one (name, value) pair of a form's entry list.
type Entry struct {
	Name  string
	Value Value
}

var listedTags = map[string]struct{}{
	"input":    {},
	"button":   {},
	"select":   {},
	"textarea": {},
}

// Controls returns the form-associated controls in tree order: descendants
// without a form attribute plus elements elsewhere whose form attribute names
// this form.
func (f *Form) Controls() []*Element {
	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()
	return f.doc.wrapAll(f.doc.controlsLocked(f.node))
}

// Owns reports whether el is one of the form's controls.
func (f *Form) Owns(el *Element) bool {
	if el == nil || el.doc != f.doc {
		return false
	}
	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()
	return f.doc.formOwnerLocked(el.node) == f.node
}

// Named returns the form's controls whose name attribute equals name.
func (f *Form) Named(name string) []*Element {
	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()

	var out []*Element
	for _, n := range f.doc.controlsLocked(f.node) {
		if v, ok := lookupAttr(n, "name"); ok && v == name {
			out = append(out, f.doc.wrap(n))
		}
	}
	return out
}

// Method returns the HTTP method declared by the form. A missing or unknown
// method means GET.
func (f *Form) Method() string {
	raw, _ := f.Attr("method")
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case http.MethodPost:
		return http.MethodPost
	case http.MethodPut:
		return http.MethodPut
	case http.MethodPatch:
		return http.MethodPatch
	case http.MethodDelete:
		return http.MethodDelete
	case http.MethodHead:
		return http.MethodHead
	default:
		return http.MethodGet
	}
}

// Action returns the form target resolved against the document base URL. An
// empty action targets the document itself.
func (f *Form) Action() (*url.URL, error) {
	raw, _ := f.Attr("action")
	raw = strings.TrimSpace(raw)
	base := f.doc.BaseURL()

	if raw == "" {
		if base == nil {
			return &url.URL{}, nil
		}
		return base, nil
	}

	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("dom: form action %q: %w", raw, err)
	}
	if base == nil {
		return target, nil
	}
	return base.ResolveReference(target), nil
}

// Reset discards the live state of every control so values, checkedness,
// selections and files return to their markup defaults.
func (f *Form) Reset() {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()

	for _, n := range f.doc.controlsLocked(f.node) {
		delete(f.doc.state, n)
		if n.Data == "select" {
			for _, opt := range options(n) {
				delete(f.doc.state, opt)
			}
		}
	}
}

// Entries constructs the form's entry list. submitter may be nil; when set it
// must be a submit button owned by the form and its name/value is included.
func (f *Form) Entries(submitter *Element) ([]Entry, error) {
	f.doc.mu.RLock()
	defer f.doc.mu.RUnlock()

	if submitter != nil {
		if submitter.doc != f.doc || f.doc.formOwnerLocked(submitter.node) != f.node || !isSubmitButton(submitter.node) {
			return nil, ErrInvalidSubmitter
		}
	}

	var entries []Entry
	for _, n := range f.doc.controlsLocked(f.node) {
		if hasDatalistAncestor(n) || isDisabled(n) {
			continue
		}
		if isButton(n) && (submitter == nil || submitter.node != n) {
			continue
		}

		name := attr(n, "name")
		typ := controlType(n)

		if n.Data == "input" && typ == "image" {
			prefix := ""
			if name != "" {
				prefix = name + "."
			}
			entries = append(entries,
				Entry{Name: prefix + "x", Value: TextValue("0")},
				Entry{Name: prefix + "y", Value: TextValue("0")},
			)
			continue
		}
		if name == "" {
			continue
		}

		switch {
		case n.Data == "select":
			for _, opt := range f.doc.selectedOptionsLocked(n) {
				if hasAttr(opt, "disabled") {
					continue
				}
				entries = append(entries, Entry{Name: name, Value: TextValue(optionValue(opt))})
			}
		case n.Data == "input" && (typ == "checkbox" || typ == "radio"):
			if !f.doc.checkedLocked(n) {
				continue
			}
			value, ok := lookupAttr(n, "value")
			if !ok {
				value = "on"
			}
			entries = append(entries, Entry{Name: name, Value: TextValue(value)})
		case n.Data == "input" && typ == "file":
			var files []File
			if st, ok := f.doc.state[n]; ok {
				files = st.files
			}
			if len(files) == 0 {
				entries = append(entries, Entry{Name: name, Value: FileValue(File{ContentType: "application/octet-stream"})})
				continue
			}
			for _, file := range files {
				entries = append(entries, Entry{Name: name, Value: FileValue(file)})
			}
		default:
			entries = append(entries, Entry{Name: name, Value: TextValue(f.doc.valueLocked(n))})
		}
	}
	return entries, nil
}

func (d *Document) controlsLocked(form *html.Node) []*html.Node {
	if form == nil {
		return nil
	}
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if _, ok := listedTags[n.Data]; ok && d.formOwnerLocked(n) == form {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (d *Document) formOwnerLocked(n *html.Node) *html.Node {
	if id, ok := lookupAttr(n, "form"); ok {
		owner := d.elementByIDLocked(id)
		if owner != nil && owner.Data == "form" {
			return owner
		}
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "form" {
			return p
		}
	}
	return nil
}

func isButton(n *html.Node) bool {
	if n.Data == "button" {
		return true
	}
	if n.Data != "input" {
		return false
	}
	switch controlType(n) {
	case "submit", "image", "reset", "button":
		return true
	}
	return false
}

func isSubmitButton(n *html.Node) bool {
	switch n.Data {
	case "button":
		return controlType(n) == "submit"
	case "input":
		typ := controlType(n)
		return typ == "submit" || typ == "image"
	}
	return false
}

func isDisabled(n *html.Node) bool {
	if hasAttr(n, "disabled") {
		return true
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "fieldset" && hasAttr(p, "disabled") {
			return true
		}
	}
	return false
}

func hasDatalistAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "datalist" {
			return true
		}
	}
	return false
}
