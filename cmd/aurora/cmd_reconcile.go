package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/reconcile"
)

// newReconcileCommand runs the pure pairwise reconciliation on two
// envelope files. It never opens the database.
func newReconcileCommand(a *app) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "reconcile <left.json> <right.json>",
		Short: "Reconcile two envelopes and print the outcome",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := readEnvelope(args[0])
			if err != nil {
				return err
			}
			right, err := readEnvelope(args[1])
			if err != nil {
				return err
			}

			var out reconcile.Outcome
			if strict {
				if out, err = reconcile.CheckedPair(left, right); err != nil {
					return err
				}
			} else {
				out = reconcile.Pair(left, right)
			}

			if a.opts.jsonOut {
				a.printJSON(out)
				return nil
			}
			side := "left"
			if out.Winner.ID == right.ID && out.Winner.ID != left.ID {
				side = "right"
			}
			a.printf("relation: %s\n", out.Relation)
			a.printf("winner:   %s (%s, createdAt=%s)\n", out.Winner.ID, side, formatMillis(out.Winner.CreatedAt))
			a.printf("merged:   %s\n", out.MergedClock)
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "refuse envelopes from different conversations")
	return cmd
}

func readEnvelope(path string) (model.Envelope, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Envelope{}, err
	}
	env, err := model.ParseEnvelope(data)
	if err != nil {
		return model.Envelope{}, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// formatMillis renders epoch milliseconds as UTC RFC 3339.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339Nano)
}
