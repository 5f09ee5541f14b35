// Package payload flattens classified form fields into the ordered pairs
// sent on the wire and encodes them as query strings or multipart bodies.
package payload

import (
	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/field"
)

// Pair is one wire entry.
type Pair struct {
	Name  string
	Value dom.Value
}

// Payload is an ordered multiset of pairs.
type Payload struct {
	pairs []Pair
}

// Build expands classified fields into pairs: one per scalar, one per item of
// a sequence, keeping field and item order.
func Build(fields []field.Named) *Payload {
	p := &Payload{}
	for _, f := range fields {
		switch f.Value.Shape {
		case field.Sequence:
			for _, item := range f.Value.Items {
				p.pairs = append(p.pairs, Pair{Name: f.Name, Value: item})
			}
		default:
			var item dom.Value
			if len(f.Value.Items) > 0 {
				item = f.Value.Items[0]
			}
			p.pairs = append(p.pairs, Pair{Name: f.Name, Value: item})
		}
	}
	return p
}

// Add appends a text pair.
func (p *Payload) Add(name, value string) {
	p.pairs = append(p.pairs, Pair{Name: name, Value: dom.TextValue(value)})
}

// Pairs returns a copy of the pairs.
func (p *Payload) Pairs() []Pair {
	if p == nil {
		return nil
	}
	return append([]Pair(nil), p.pairs...)
}

// Len returns the number of pairs.
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.pairs)
}

// Get returns the first value for name.
func (p *Payload) Get(name string) (dom.Value, bool) {
	if p == nil {
		return dom.Value{}, false
	}
	for _, pair := range p.pairs {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return dom.Value{}, false
}

// GetAll returns every value for name in order.
func (p *Payload) GetAll(name string) []dom.Value {
	if p == nil {
		return nil
	}
	var out []dom.Value
	for _, pair := range p.pairs {
		if pair.Name == name {
			out = append(out, pair.Value)
		}
	}
	return out
}

// Group is the values of one name, as recovered by Regroup.
type Group struct {
	Name  string
	Items []dom.Value
}

// Regroup collects pairs by name in order of first appearance.
func (p *Payload) Regroup() []Group {
	if p == nil {
		return nil
	}
	index := make(map[string]int)
	var out []Group
	for _, pair := range p.pairs {
		i, ok := index[pair.Name]
		if !ok {
			i = len(out)
			index[pair.Name] = i
			out = append(out, Group{Name: pair.Name})
		}
		out[i].Items = append(out[i].Items, pair.Value)
	}
	return out
}
