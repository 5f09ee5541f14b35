package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-fetchforms/pkg/config"
	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/submit"
	"github.com/goliatone/go-fetchforms/pkg/token"
)

type submitFlags struct {
	base       string
	formID     string
	submitter  string
	configPath string
	token      string
	set        []string
	files      []string
	all        bool
	timeout    time.Duration
}

func (f *submitFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.base, "base", "", "Base URL the page is served from; form actions resolve against it")
	flags.StringVar(&f.formID, "form", "", "Id of the form to submit (first matching form if empty)")
	flags.StringVar(&f.submitter, "submitter", "", "CSS selector of the submit button to activate")
	flags.StringVar(&f.configPath, "config", "", "YAML configuration file")
	flags.StringVar(&f.token, "token", "", "Fixed anti-abuse token for forms that ask for one")
	flags.StringArrayVar(&f.set, "set", nil, "Field assignment name=value (repeatable)")
	flags.StringArrayVar(&f.files, "file", nil, "File attachment name=path (repeatable)")
	flags.BoolVar(&f.all, "all", false, "Submit every matching form concurrently")
	flags.DurationVar(&f.timeout, "timeout", 0, "Abort submissions after this long (0 = no limit)")
}

func newSubmitCmd(state *cliState) *cobra.Command {
	flags := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "submit <page.html>",
		Short: "Submit forms of an HTML page and print the settled results",
		Example: `  fetchforms-cli submit page.html --base http://localhost:3002/ --set q=go
  fetchforms-cli submit page.html --base http://localhost:3002/ --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, state, flags, args[0], nil)
		},
	}
	flags.register(cmd)
	return cmd
}

// prepareFunc runs on each target form before it is submitted.
type prepareFunc func(ctx context.Context, form *dom.Form) error

func runSubmit(cmd *cobra.Command, state *cliState, flags *submitFlags, path string, prepare prepareFunc) error {
	ctx := cmd.Context()
	if flags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flags.timeout)
		defer cancel()
	}

	doc, err := dom.ParseFile(path, flags.base)
	if err != nil {
		return err
	}
	controller, err := newController(state, flags)
	if err != nil {
		return err
	}
	forms, err := controller.Attach(doc)
	if err != nil {
		return err
	}
	targets, err := pickForms(forms, flags)
	if err != nil {
		return err
	}

	assignments, err := parseAssignments(flags.set)
	if err != nil {
		return err
	}
	attachments, err := parseAssignments(flags.files)
	if err != nil {
		return err
	}
	for _, form := range targets {
		if err := applyValues(form, assignments, flags.all); err != nil {
			return err
		}
		if err := applyFiles(form, attachments, os.ReadFile, flags.all); err != nil {
			return err
		}
		if prepare != nil {
			if err := prepare(ctx, form); err != nil {
				return err
			}
		}
	}

	results := make([]submit.Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, form := range targets {
		g.Go(func() error {
			submitter, err := pickSubmitter(doc, form, flags.submitter)
			if err != nil {
				return err
			}
			res, err := controller.Submit(gctx, form, submitter)
			if err != nil {
				return fmt.Errorf("form %q: %w", form.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return writeResults(cmd.OutOrStdout(), targets, results)
}

func newController(state *cliState, flags *submitFlags) (*submit.Controller, error) {
	opts := []submit.Option{submit.WithLogger(state.logger)}
	if flags.configPath != "" {
		file, err := config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
		fromFile, err := file.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, fromFile...)
	}
	if flags.token != "" {
		opts = append(opts, submit.WithTokenProvider(token.Static(flags.token)))
	}
	return submit.New(opts...)
}

func pickForms(forms []*dom.Form, flags *submitFlags) ([]*dom.Form, error) {
	if len(forms) == 0 {
		return nil, errors.New("no form matches the selector")
	}
	if flags.all {
		return forms, nil
	}
	if flags.formID == "" {
		return forms[:1], nil
	}
	for _, form := range forms {
		if form.ID() == flags.formID {
			return []*dom.Form{form}, nil
		}
	}
	return nil, fmt.Errorf("no matching form with id %q", flags.formID)
}

// pickSubmitter resolves the submitter: the selector when given, otherwise
// the form's first submit control, as implicit submission would.
func pickSubmitter(doc *dom.Document, form *dom.Form, selector string) (*dom.Element, error) {
	if selector != "" {
		matches, err := doc.QueryAll(selector)
		if err != nil {
			return nil, err
		}
		for _, el := range matches {
			if form.Owns(el) {
				return el, nil
			}
		}
		return nil, fmt.Errorf("no submitter %q in form %q", selector, form.ID())
	}
	for _, el := range form.Controls() {
		if el.Disabled() {
			continue
		}
		if el.IsSubmitButton() {
			return el, nil
		}
	}
	return nil, nil
}

type resultView struct {
	ID      string   `json:"id"`
	Form    string   `json:"form,omitempty"`
	Outcome string   `json:"outcome"`
	Method  string   `json:"method"`
	URL     string   `json:"url,omitempty"`
	Status  int      `json:"status,omitempty"`
	Body    any      `json:"body,omitempty"`
	Error   string   `json:"error,omitempty"`
	Trace   []string `json:"trace"`
	Elapsed string   `json:"elapsed"`
}

func writeResults(w io.Writer, forms []*dom.Form, results []submit.Result) error {
	views := make([]resultView, 0, len(results))
	for i, res := range results {
		view := resultView{
			ID:      res.ID,
			Form:    forms[i].ID(),
			Outcome: res.Outcome.String(),
			Method:  res.Method,
			URL:     res.URL,
			Status:  res.Status,
			Body:    res.Body,
			Elapsed: res.Elapsed.String(),
		}
		if res.Err != nil {
			view.Error = res.Err.Error()
		}
		for _, st := range res.Trace {
			view.Trace = append(view.Trace, st.String())
		}
		views = append(views, view)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}
