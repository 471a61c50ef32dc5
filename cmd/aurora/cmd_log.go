package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/reconcile"
	"github.com/daviddao/aurora/pkg/store"
)

func newLogCommand(a *app) *cobra.Command {
	var arrival bool

	cmd := &cobra.Command{
		Use:   "log <conversation>",
		Short: "Print a conversation in canonical causal order",
		Long: `Print every stored event of a conversation.

The default order is canonical: causal predecessors first, concurrent
events ordered by createdAt then id. Every replica holding the same set
of events prints the same order. --arrival prints local arrival order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			recs, err := s.ListConversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			events := store.Envelopes(recs)
			if !arrival {
				if events, err = reconcile.Linearize(events); err != nil {
					return err
				}
			}

			if a.opts.jsonOut {
				a.printJSON(map[string]any{"conversation": args[0], "events": events, "count": len(events)})
				return nil
			}
			if len(events) == 0 {
				a.printf("no events\n")
				return nil
			}
			for _, e := range events {
				a.printEvent(e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&arrival, "arrival", false, "local arrival order instead of canonical order")
	return cmd
}

// printEvent prints one event on a single line.
func (a *app) printEvent(e model.Envelope) {
	body := truncate(e.Payload.Body, 120)
	if e.Encrypted {
		body = "[encrypted]"
	}
	a.printf("[%s] %s %s: %s  %s (%s)\n",
		formatMillis(e.CreatedAt), e.ID[:8], e.SenderID, body, e.VectorClock, e.DeliveryState)
}
