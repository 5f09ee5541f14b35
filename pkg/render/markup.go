package render

import (
	"fmt"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// messageSanitizer allows the user-generated-content subset so custom
// templates can style messages without injecting scripts.
func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class", "role", "aria-live").Globally()
		messagePolicy = policy
	})
	return messagePolicy
}

func compileMessageTemplate(source string) (*pongo2.Template, error) {
	tpl, err := pongo2.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("render: compile message template: %w", err)
	}
	return tpl, nil
}

func (r *Renderer) messageMarkup(fieldName, message string) (string, error) {
	out, err := r.template.Execute(pongo2.Context{
		"message": message,
		"field":   fieldName,
	})
	if err != nil {
		return "", fmt.Errorf("render: execute message template: %w", err)
	}
	return strings.TrimSpace(r.policy.Sanitize(out)), nil
}
