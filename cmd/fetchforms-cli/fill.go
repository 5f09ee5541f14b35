package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-fetchforms/pkg/dom"
	"github.com/goliatone/go-fetchforms/pkg/prompt"
)

func newFillCmd(state *cliState) *cobra.Command {
	flags := &submitFlags{}
	cmd := &cobra.Command{
		Use:   "fill <page.html>",
		Short: "Prompt for the fields of a form, then submit it",
		Long: `fill asks for every fillable field of the selected form in the terminal,
starting from the values given with --set, and submits the form once all
answers are in.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filler := prompt.New(prompt.WithLogger(state.logger))
			prepare := func(ctx context.Context, form *dom.Form) error {
				asked, err := filler.Fill(ctx, form)
				if err != nil {
					return err
				}
				state.logger.Debug("fields filled", zap.String("form", form.ID()), zap.Int("count", len(asked)))
				return nil
			}
			return runSubmit(cmd, state, flags, args[0], prepare)
		},
	}
	flags.register(cmd)
	return cmd
}
