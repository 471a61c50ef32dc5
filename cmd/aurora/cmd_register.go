package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/config"
)

func newRegisterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <replica>",
		Short: "Register a replica with a fresh vector clock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			r, err := s.RegisterReplica(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.opts.jsonOut {
				a.printJSON(r)
				return nil
			}
			a.printf("registered replica %q (clock=%s)\n", r.ID, r.Clock)
			cmd.PrintErrf("hint: export %s=%s\n", config.EnvReplica, r.ID)
			return nil
		},
	}
}
