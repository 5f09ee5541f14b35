package dom

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page plus the live state of its form controls.
// All access to the node tree goes through the document lock.
type Document struct {
	mu        sync.RWMutex
	root      *html.Node
	baseURL   *url.URL
	state     map[*html.Node]*controlState
	listeners map[*html.Node]map[string][]Listener
}

// Parse reads markup from r. baseURL is used to resolve form actions; it may
// be empty, in which case actions are used as written.
func Parse(r io.Reader, baseURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}

	doc := &Document{
		root:      root,
		state:     make(map[*html.Node]*controlState),
		listeners: make(map[*html.Node]map[string][]Listener),
	}

	if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
		base, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("dom: base url: %w", err)
		}
		doc.baseURL = base
	}
	return doc, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup, baseURL string) (*Document, error) {
	return Parse(strings.NewReader(markup), baseURL)
}

// ParseFile loads markup from disk.
func ParseFile(path, baseURL string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dom: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, baseURL)
}

// BaseURL returns the URL the document was loaded from, or nil.
func (d *Document) BaseURL() *url.URL {
	if d.baseURL == nil {
		return nil
	}
	copied := *d.baseURL
	return &copied
}

// QueryAll returns every element matching the CSS selector in tree order.
func (d *Document) QueryAll(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid selector %q: %w", selector, err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	nodes := sel.MatchAll(d.root)
	return d.wrapAll(nodes), nil
}

// Query returns the first element matching the CSS selector, or nil.
func (d *Document) Query(selector string) (*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: invalid selector %q: %w", selector, err)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.wrap(sel.MatchFirst(d.root)), nil
}

// ElementByID returns the element carrying id, or nil.
func (d *Document) ElementByID(id string) *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrap(d.elementByIDLocked(id))
}

// Forms returns every form element in tree order.
func (d *Document) Forms() []*Form {
	d.mu.RLock()
	defer d.mu.RUnlock()

	nodes := htmlquery.Find(d.root, "//form")
	forms := make([]*Form, 0, len(nodes))
	for _, node := range nodes {
		forms = append(forms, &Form{Element: d.wrap(node)})
	}
	return forms
}

// FormFor returns el as a form when it is one.
func (d *Document) FormFor(el *Element) (*Form, error) {
	if el == nil {
		return nil, ErrNotForm
	}
	if el.doc != d {
		return nil, ErrForeignElement
	}
	if el.node.Type != html.ElementNode || el.node.Data != "form" {
		return nil, ErrNotForm
	}
	return &Form{Element: el}, nil
}

// Slots returns every element in the document carrying attr, regardless of
// its value.
func (d *Document) Slots(attr string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.wrapAll(findWithAttr(d.root, "//*", attr))
}

// HTML renders the document markup. Live control state is not serialised.
func (d *Document) HTML() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

func (d *Document) wrap(node *html.Node) *Element {
	if node == nil {
		return nil
	}
	return &Element{doc: d, node: node}
}

func (d *Document) wrapAll(nodes []*html.Node) []*Element {
	out := make([]*Element, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, d.wrap(node))
	}
	return out
}

func (d *Document) elementByIDLocked(id string) *html.Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *Document) stateFor(n *html.Node) *controlState {
	st, ok := d.state[n]
	if !ok {
		st = &controlState{}
		d.state[n] = st
	}
	return st
}

// findWithAttr evaluates base (an XPath node-set expression such as "//*" or
// ".//*") restricted to elements carrying attr.
func findWithAttr(ctx *html.Node, base, attrName string) []*html.Node {
	expr := fmt.Sprintf("%s[@%s]", base, attrName)
	nodes, err := htmlquery.QueryAll(ctx, expr)
	if err != nil {
		return nil
	}
	return nodes
}

// walk visits nodes in tree order until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	value, _ := lookupAttr(n, key)
	return value
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := lookupAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			continue
		}
		out = append(out, a)
	}
	n.Attr = out
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}
