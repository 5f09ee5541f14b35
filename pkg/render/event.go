package render

import (
	"regexp"
	"strings"
)

var (
	lowerUpper = regexp.MustCompile(`([a-z])([A-Z])`)
	separators = regexp.MustCompile(`[\s_]+`)
)

// EventSuffix is appended to the kebab-cased form id.
const EventSuffix = "-submit"

// EventName derives the notification event of a form id: a hyphen goes
// between a lowercase letter and a following uppercase letter, runs of
// whitespace or underscores become a hyphen, and the result is lowercased.
// An empty id has no event.
func EventName(id string) string {
	if id == "" {
		return ""
	}
	name := lowerUpper.ReplaceAllString(id, "$1-$2")
	name = separators.ReplaceAllString(name, "-")
	return strings.ToLower(name) + EventSuffix
}
