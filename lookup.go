package main

import (
	"context"
	"encoding/json"
	"fmt"
	"innbot/internal/core/domain"
	"innbot/internal/core/domain/command"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLookupCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup <tax-id>...",
		Short: "Look up companies by tax ID and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per tax ID.")

	return cmd
}

func runLookup(ctx context.Context, out io.Writer, input string, asJSON bool) error {
	batch, err := domain.ParseIdentifiers(input)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	enc := json.NewEncoder(out)

	return p.lookup.LookupAll(ctx, batch, func(_ context.Context, outcome domain.LookupOutcome) error {
		if asJSON {
			return enc.Encode(outcome)
		}
		_, err := fmt.Fprintf(out, "%s\n\n", command.FormatOutcome(outcome))
		return err
	})
}
