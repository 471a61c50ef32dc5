package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newTickCommand advances the local replica clock without producing an
// event, marking the replica as seen.
func newTickCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Advance the local replica clock by one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			replica, err := a.requireReplica()
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			vc, err := s.TickReplica(cmd.Context(), replica)
			if err != nil {
				return err
			}
			a.log.Debug("clock advanced", zap.String("replica", replica), zap.Stringer("clock", vc))
			if a.opts.jsonOut {
				a.printJSON(map[string]any{"replica": replica, "clock": vc})
				return nil
			}
			a.printf("%s %s\n", replica, vc)
			return nil
		},
	}
}
