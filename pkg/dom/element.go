package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Element wraps a node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Document returns the owning document.
func (e *Element) Document() *Document { return e.doc }

// Node exposes the underlying node. Callers must not mutate it directly.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the lowercase tag name.
func (e *Element) Tag() string { return e.node.Data }

// Is reports whether both wrappers point at the same node.
func (e *Element) Is(other *Element) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.node == other.node
}

// Attr returns the attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return lookupAttr(e.node, name)
}

// HasAttr reports whether the attribute is present, whatever its value.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Name returns the name attribute.
func (e *Element) Name() string {
	name, _ := e.Attr("name")
	return name
}

// Type returns the normalised type of input and button elements. Inputs with
// a missing or unknown type report "text"; buttons report "submit" unless
// declared "button" or "reset".
func (e *Element) Type() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return controlType(e.node)
}

// IsSubmitButton reports whether the element can act as a form submitter:
// an input of type submit or image, or a button whose type is submit.
func (e *Element) IsSubmitButton() bool {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return isSubmitButton(e.node)
}

// Label returns the text of the control's label: a label whose for attribute
// names the control's id, else the label wrapping it. Nested select and
// textarea content is left out. Empty when the control is unlabelled.
func (e *Element) Label() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	if id := attr(e.node, "id"); id != "" {
		var found *html.Node
		walk(e.doc.root, func(n *html.Node) bool {
			if n.Type == html.ElementNode && n.Data == "label" && attr(n, "for") == id {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return labelText(found)
		}
	}
	for p := e.node.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "label" {
			return labelText(p)
		}
	}
	return ""
}

// Multiple reports whether the multiple attribute is present.
func (e *Element) Multiple() bool {
	return e.HasAttr("multiple")
}

// Disabled reports whether the disabled attribute is present.
func (e *Element) Disabled() bool {
	return e.HasAttr("disabled")
}

// Disable marks the element non-interactive.
func (e *Element) Disable() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, "disabled", "disabled")
}

// Enable removes the disabled attribute.
func (e *Element) Enable() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	removeAttr(e.node, "disabled")
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return textContent(e.node)
}

// InnerHTML renders the element's children.
func (e *Element) InnerHTML() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// ChildCount returns the number of direct children, text nodes included.
func (e *Element) ChildCount() int {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	count := 0
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// ClearChildren removes every child node.
func (e *Element) ClearChildren() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// PrependHTML parses markup in the context of the element and inserts the
// resulting nodes, in order, before the current first child.
func (e *Element) PrependHTML(markup string) error {
	parent := &html.Node{Type: html.ElementNode, Data: e.node.Data, DataAtom: e.node.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(markup), parent)
	if err != nil {
		return err
	}

	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	first := e.node.FirstChild
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		e.node.InsertBefore(n, first)
	}
	return nil
}

// Slots returns descendants carrying attr.
func (e *Element) Slots(attrName string) []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.doc.wrapAll(findWithAttr(e.node, ".//*", attrName))
}

// Slot returns the first descendant whose attr equals value, or nil.
func (e *Element) Slot(attrName, value string) *Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()

	for _, n := range findWithAttr(e.node, ".//*", attrName) {
		if attr(n, attrName) == value {
			return e.doc.wrap(n)
		}
	}
	return nil
}

func controlType(n *html.Node) string {
	raw := strings.ToLower(strings.TrimSpace(attr(n, "type")))
	switch n.Data {
	case "input":
		if _, ok := inputTypes[raw]; ok {
			return raw
		}
		return "text"
	case "button":
		if raw == "button" || raw == "reset" {
			return raw
		}
		return "submit"
	default:
		return raw
	}
}

var inputTypes = map[string]struct{}{
	"hidden": {}, "text": {}, "search": {}, "tel": {}, "url": {}, "email": {},
	"password": {}, "date": {}, "month": {}, "week": {}, "time": {},
	"datetime-local": {}, "number": {}, "range": {}, "color": {},
	"checkbox": {}, "radio": {}, "file": {}, "submit": {}, "image": {},
	"reset": {}, "button": {},
}

func labelText(label *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.Data == "select" || n.Data == "textarea") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(label)
	return strings.Join(strings.Fields(sb.String()), " ")
}
