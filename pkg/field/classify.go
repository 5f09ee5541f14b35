package field

import (
	"github.com/goliatone/go-fetchforms/pkg/dom"
)

// Shape tells whether a field carries one value or an ordered list.
type Shape int

const (
	Scalar Shape = iota
	Sequence
)

func (s Shape) String() string {
	if s == Sequence {
		return "sequence"
	}
	return "scalar"
}

// Value is a classified field value. Scalar values hold exactly one item.
type Value struct {
	Shape Shape
	Items []dom.Value
}

// Named pairs a field name with its classified value.
type Named struct {
	Name  string
	Value Value
}

// ShapeOf applies the classification rules to a descriptor group.
func ShapeOf(group Group) Shape {
	if len(group) > 1 {
		switch group[0].Kind {
		case KindSubmit, KindRadio:
			// one submitter fires, one radio is checked
			return Scalar
		default:
			return Sequence
		}
	}

	if len(group) == 1 {
		switch group[0].Kind {
		case KindMultiSelect, KindMultiFile:
			return Sequence
		case KindSubmit, KindRadio, KindCheckbox, KindPlain:
			return Scalar
		}
	}
	return Scalar
}

// ClassifyValues shapes the raw values collected for a field.
func ClassifyValues(group Group, raw []dom.Value) Value {
	if ShapeOf(group) == Sequence {
		return Value{Shape: Sequence, Items: append([]dom.Value(nil), raw...)}
	}
	if len(raw) == 0 {
		return Value{Shape: Scalar}
	}
	return Value{Shape: Scalar, Items: []dom.Value{raw[0]}}
}

// Classify groups entries by name in order of first appearance, resolves each
// name once and classifies its values.
func Classify(entries []dom.Entry, resolver Resolver) []Named {
	order := make([]string, 0, len(entries))
	raw := make(map[string][]dom.Value, len(entries))
	for _, e := range entries {
		if _, seen := raw[e.Name]; !seen {
			order = append(order, e.Name)
		}
		raw[e.Name] = append(raw[e.Name], e.Value)
	}

	out := make([]Named, 0, len(order))
	for _, name := range order {
		var group Group
		if resolver != nil {
			group = resolver.Resolve(name)
		}
		out = append(out, Named{Name: name, Value: ClassifyValues(group, raw[name])})
	}
	return out
}
