package render

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-fetchforms/pkg/codec"
)

// FieldError is the list of messages a response reported for one field.
type FieldError struct {
	Field    string
	Messages []string
}

// FieldErrors extracts the per-field messages of a failure body. The map is
// read from "errors", falling back to "responseJSON.errors". Each entry is
// expected to look like {"messages": [...]}; entries without a message list
// are skipped. Results are sorted by field name.
func FieldErrors(body any) []FieldError {
	raw, ok := codec.Lookup(body, "errors")
	if !ok || !truthy(raw) {
		raw, ok = codec.Lookup(body, "responseJSON", "errors")
		if !ok {
			return nil
		}
	}

	byField, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	out := make([]FieldError, 0, len(byField))
	for name, entry := range byField {
		list, ok := codec.Lookup(entry, "messages")
		if !ok {
			continue
		}
		items, ok := list.([]any)
		if !ok {
			continue
		}
		messages := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			if s, ok := item.(string); ok {
				messages = append(messages, s)
				continue
			}
			messages = append(messages, fmt.Sprint(item))
		}
		out = append(out, FieldError{Field: name, Messages: messages})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
