package main

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-fetchforms/pkg/dom"
)

// assignment is every value given for one field name, in flag order.
type assignment struct {
	name   string
	values []string
}

func parseAssignments(raw []string) ([]assignment, error) {
	var out []assignment
	index := map[string]int{}
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, want name=value", item)
		}
		if i, seen := index[name]; seen {
			out[i].values = append(out[i].values, value)
			continue
		}
		index[name] = len(out)
		out = append(out, assignment{name: name, values: []string{value}})
	}
	return out, nil
}

// applyValues writes assignments into the live state of form. Checkboxes and
// radios are checked when their value is listed, selects select the listed
// options and other controls take the values in order. Unknown names are an
// error unless lenient is set.
func applyValues(form *dom.Form, assignments []assignment, lenient bool) error {
	for _, a := range assignments {
		controls := form.Named(a.name)
		if len(controls) == 0 {
			if lenient {
				continue
			}
			return fmt.Errorf("form %q has no field %q", form.ID(), a.name)
		}

		first := controls[0]
		switch {
		case first.Tag() == "input" && (first.Type() == "checkbox" || first.Type() == "radio"):
			for _, el := range controls {
				if err := el.SetChecked(contains(a.values, checkValue(el))); err != nil {
					return err
				}
			}
		case first.Tag() == "select":
			if err := first.SetSelected(a.values...); err != nil {
				return err
			}
		default:
			for i, el := range controls {
				if i >= len(a.values) {
					break
				}
				if err := el.SetValue(a.values[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// applyFiles attaches the files named by path to the first file input of each
// field.
func applyFiles(form *dom.Form, attachments []assignment, readFile func(string) ([]byte, error), lenient bool) error {
	for _, a := range attachments {
		var input *dom.Element
		for _, el := range form.Named(a.name) {
			if el.Tag() == "input" && el.Type() == "file" {
				input = el
				break
			}
		}
		if input == nil {
			if lenient {
				continue
			}
			return fmt.Errorf("form %q has no file field %q", form.ID(), a.name)
		}

		files := make([]dom.File, 0, len(a.values))
		for _, path := range a.values {
			data, err := readFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			contentType := mime.TypeByExtension(filepath.Ext(path))
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			files = append(files, dom.File{Name: filepath.Base(path), ContentType: contentType, Data: data})
		}
		if err := input.AttachFiles(files...); err != nil {
			return fmt.Errorf("field %q: %w", a.name, err)
		}
	}
	return nil
}

func checkValue(el *dom.Element) string {
	if v, ok := el.Attr("value"); ok {
		return v
	}
	return "on"
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
