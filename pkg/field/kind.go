// Package field resolves the shape of named form fields and classifies their
// raw entries as scalar or sequence values.
package field

import (
	"github.com/goliatone/go-fetchforms/pkg/dom"
)

// Kind is the closed set of control shapes the classifier distinguishes.
type Kind int

const (
	// KindPlain covers every control not listed below.
	KindPlain Kind = iota
	// KindSubmit is a submit input or a button whose type is not "button".
	KindSubmit
	// KindRadio is a radio input.
	KindRadio
	// KindCheckbox is a checkbox input.
	KindCheckbox
	// KindMultiSelect is a select carrying the multiple attribute.
	KindMultiSelect
	// KindMultiFile is a file input carrying the multiple attribute.
	KindMultiFile
)

func (k Kind) String() string {
	switch k {
	case KindSubmit:
		return "submit"
	case KindRadio:
		return "radio"
	case KindCheckbox:
		return "checkbox"
	case KindMultiSelect:
		return "multi-select"
	case KindMultiFile:
		return "multi-file"
	default:
		return "plain"
	}
}

// Descriptor describes one control carrying a field name.
type Descriptor struct {
	Name     string
	Kind     Kind
	Tag      string
	Type     string
	Multiple bool
}

// Group is every descriptor sharing a name, in tree order.
type Group []Descriptor

// Describe derives the descriptor of a single element.
func Describe(el *dom.Element) Descriptor {
	d := Descriptor{
		Name:     el.Name(),
		Tag:      el.Tag(),
		Multiple: el.Multiple(),
	}
	switch d.Tag {
	case "input", "button":
		d.Type = el.Type()
	}
	d.Kind = kindOf(d)
	return d
}

func kindOf(d Descriptor) Kind {
	switch d.Tag {
	case "input":
		switch d.Type {
		case "submit":
			return KindSubmit
		case "radio":
			return KindRadio
		case "checkbox":
			return KindCheckbox
		case "file":
			if d.Multiple {
				return KindMultiFile
			}
		}
	case "button":
		if d.Type != "button" {
			return KindSubmit
		}
	case "select":
		if d.Multiple {
			return KindMultiSelect
		}
	}
	return KindPlain
}

// Resolver returns the descriptor group for a field name.
type Resolver interface {
	Resolve(name string) Group
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(name string) Group

// Resolve implements Resolver.
func (fn ResolverFunc) Resolve(name string) Group { return fn(name) }

// FormResolver resolves descriptors from the controls of a form.
func FormResolver(form *dom.Form) Resolver {
	return ResolverFunc(func(name string) Group {
		controls := form.Named(name)
		group := make(Group, 0, len(controls))
		for _, el := range controls {
			group = append(group, Describe(el))
		}
		return group
	})
}
