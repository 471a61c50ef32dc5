package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/store"
)

func newDeliverCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deliver <event-id> <state>",
		Short: "Record a delivery state (sent, delivered, read, failed)",
		Long: `Move a stored event to a new delivery state.

States advance pending -> sent -> delivered -> read and may skip steps.
failed is reachable from pending or sent only. Re-applying the current
state is accepted. A refused transition exits 2.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := model.ParseDeliveryState(args[1])
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			if err := s.SetDeliveryState(cmd.Context(), args[0], state); err != nil {
				if errors.Is(err, store.ErrInvalidTransition) {
					return withCode(exitConflict, err)
				}
				return err
			}
			if a.opts.jsonOut {
				a.printJSON(map[string]any{"event_id": args[0], "delivery_state": state})
				return nil
			}
			a.printf("%s -> %s\n", args[0], state)
			return nil
		},
	}
}
