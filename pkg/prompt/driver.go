package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-fetchforms/pkg/dom"
)

// Question is one prompt derived from a form control.
type Question struct {
	Name      string
	Label     string
	Help      string
	Default   string
	Required  bool
	MinLength int
	MaxLength int
}

func (q Question) message() string {
	if q.Label != "" {
		return q.Label
	}
	return q.Name
}

// Driver asks the questions of one form. Choice prompts answer with option
// values, not labels.
type Driver interface {
	Announce(ctx context.Context, title string) error
	Text(ctx context.Context, q Question) (string, error)
	Secret(ctx context.Context, q Question) (string, error)
	Paragraph(ctx context.Context, q Question) (string, error)
	Toggle(ctx context.Context, q Question, on bool) (bool, error)
	Choose(ctx context.Context, q Question, choices []dom.Choice) (string, error)
	ChooseMany(ctx context.Context, q Question, choices []dom.Choice) ([]string, error)
	Paths(ctx context.Context, q Question, multiple bool) ([]string, error)
}

type surveyDriver struct {
	out io.Writer
}

// NewSurveyDriver returns the terminal driver backed by survey.
func NewSurveyDriver() Driver {
	return &surveyDriver{out: os.Stdout}
}

func (d *surveyDriver) Announce(ctx context.Context, title string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, title)
	return err
}

func (d *surveyDriver) Text(ctx context.Context, q Question) (string, error) {
	return ask(ctx, &survey.Input{Message: q.message(), Help: q.Help, Default: q.Default}, q)
}

func (d *surveyDriver) Secret(ctx context.Context, q Question) (string, error) {
	answer, err := ask(ctx, &survey.Password{Message: q.message(), Help: q.Help}, q)
	if err == nil && answer == "" {
		answer = q.Default
	}
	return answer, err
}

func (d *surveyDriver) Paragraph(ctx context.Context, q Question) (string, error) {
	return ask(ctx, &survey.Multiline{Message: q.message(), Help: q.Help, Default: q.Default}, q)
}

func (d *surveyDriver) Toggle(ctx context.Context, q Question, on bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer := on
	if err := survey.AskOne(&survey.Confirm{Message: q.message(), Help: q.Help, Default: on}, &answer); err != nil {
		return false, translateSurveyErr(err)
	}
	return answer, nil
}

func (d *surveyDriver) Choose(ctx context.Context, q Question, choices []dom.Choice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	shown := displayNames(choices)
	prompt := &survey.Select{
		Message:     q.message(),
		Help:        q.Help,
		Options:     shown,
		Description: describeValue(choices),
	}
	for i, c := range choices {
		if c.Selected {
			prompt.Default = shown[i]
			break
		}
	}

	var answer string
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", translateSurveyErr(err)
	}
	for i, name := range shown {
		if name == answer {
			return choices[i].Value, nil
		}
	}
	return "", nil
}

func (d *surveyDriver) ChooseMany(ctx context.Context, q Question, choices []dom.Choice) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	shown := displayNames(choices)
	var defaults []string
	for i, c := range choices {
		if c.Selected {
			defaults = append(defaults, shown[i])
		}
	}
	prompt := &survey.MultiSelect{
		Message:     q.message(),
		Help:        q.Help,
		Options:     shown,
		Description: describeValue(choices),
	}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}

	var answers []string
	if err := survey.AskOne(prompt, &answers); err != nil {
		return nil, translateSurveyErr(err)
	}
	picked := make(map[string]bool, len(answers))
	for _, a := range answers {
		picked[a] = true
	}
	var values []string
	for i, name := range shown {
		if picked[name] {
			values = append(values, choices[i].Value)
		}
	}
	return values, nil
}

// Paths asks for file paths with completion from the working directory. A
// multiple input keeps asking until a blank answer.
func (d *surveyDriver) Paths(ctx context.Context, q Question, multiple bool) ([]string, error) {
	var paths []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		message := q.message()
		if multiple {
			message += " (blank to finish)"
		}
		var answer string
		prompt := &survey.Input{Message: message, Help: q.Help, Suggest: suggestPaths}
		if err := survey.AskOne(prompt, &answer); err != nil {
			return nil, translateSurveyErr(err)
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return paths, nil
		}
		paths = append(paths, answer)
		if !multiple {
			return paths, nil
		}
	}
}

func ask(ctx context.Context, p survey.Prompt, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var answer string
	if err := survey.AskOne(p, &answer, validators(q)...); err != nil {
		return "", translateSurveyErr(err)
	}
	return answer, nil
}

// validators mirrors the control's required, minlength and maxlength
// attributes. Length limits apply to non-empty answers only.
func validators(q Question) []survey.AskOpt {
	var opts []survey.AskOpt
	if q.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if q.MinLength > 0 {
		opts = append(opts, survey.WithValidator(unlessEmpty(survey.MinLength(q.MinLength))))
	}
	if q.MaxLength > 0 {
		opts = append(opts, survey.WithValidator(unlessEmpty(survey.MaxLength(q.MaxLength))))
	}
	return opts
}

func unlessEmpty(v survey.Validator) survey.Validator {
	return func(ans interface{}) error {
		if s, ok := ans.(string); ok && s == "" {
			return nil
		}
		return v(ans)
	}
}

func suggestPaths(toComplete string) []string {
	matches, _ := filepath.Glob(toComplete + "*")
	return matches
}

// displayNames returns the option labels, made unique so answers map back to
// a single choice.
func displayNames(choices []dom.Choice) []string {
	counts := make(map[string]int, len(choices))
	for _, c := range choices {
		counts[labelOf(c)]++
	}
	out := make([]string, len(choices))
	for i, c := range choices {
		name := labelOf(c)
		if counts[name] > 1 {
			name = fmt.Sprintf("%s [%s]", name, c.Value)
		}
		out[i] = name
	}
	return out
}

func labelOf(c dom.Choice) string {
	if c.Label != "" {
		return c.Label
	}
	return c.Value
}

func describeValue(choices []dom.Choice) func(string, int) string {
	return func(_ string, index int) string {
		if index < 0 || index >= len(choices) {
			return ""
		}
		if c := choices[index]; c.Label != "" && c.Label != c.Value {
			return c.Value
		}
		return ""
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
