package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/edugen/edugen/graph"
	"github.com/edugen/edugen/workflow"
	"github.com/spf13/cobra"
)

var verbose bool

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Run the workflow once and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return ask(cmd, strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every round to stderr")
}

func ask(cmd *cobra.Command, prompt string) error {
	ctx := cmd.Context()
	shutdown, err := setupTelemetry(nil, trace)
	if err != nil {
		return err
	}
	defer shutdown(context.Background()) //nolint:errcheck

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	wf, err := a.workflow()
	if err != nil {
		return err
	}

	var final graph.State
	for event, err := range wf.Stream(ctx, prompt) {
		if err != nil {
			return err
		}
		switch event.Phase {
		case graph.PhasePending:
			if verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "round %d: %s\n", event.Round, strings.Join(event.Frontier, ", "))
			}
		case graph.PhaseTerminal:
			final = event.State
		}
	}
	response, err := workflow.FinalResponse(final)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), response)
	return nil
}
