package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/frontier"
	"github.com/daviddao/aurora/pkg/store"
)

func newHeadsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "heads <conversation>",
		Short: "Show the causal frontier and stored head of a conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			recs, err := s.ListConversation(ctx, args[0])
			if err != nil {
				return err
			}
			status := frontier.ComputeStatus(store.Envelopes(recs))

			head, err := s.GetHead(ctx, args[0])
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}

			if a.opts.jsonOut {
				a.printJSON(map[string]any{"conversation": args[0], "frontier": status, "head": head})
				return nil
			}
			if len(status.Heads) == 0 {
				a.printf("no events\n")
				return nil
			}
			if status.Converged {
				a.printf("converged (1 head)\n")
			} else {
				a.printf("diverged (%d concurrent heads)\n", len(status.Heads))
			}
			for _, h := range status.Heads {
				marker := ""
				if h.ID == status.Canonical.ID {
					marker = " <-- canonical"
				}
				a.printf("  %s %s createdAt=%s%s\n", h.ID, h.VectorClock, formatMillis(h.CreatedAt), marker)
			}
			a.printf("clock: %s\n", status.Clock)
			if head != nil {
				a.printf("stored head: %s %s\n", head.EventID, head.Clock)
			}
			return nil
		},
	}
}
