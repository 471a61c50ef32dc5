package main

import (
	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/config"
)

// newRootCommand builds the command tree. The returned app must be closed
// after Execute.
func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "aurora",
		Short: "aurora - causally ordered message log",
		Long: `aurora keeps a local replica of a conversation log.

Every event carries the vector clock of the device that produced it.
Incoming envelopes are validated, reconciled against the conversation
head (causality first, then createdAt, then id) and stored in SQLite.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.opts.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	pf.StringVar(&a.opts.db, "db", config.DefaultDB, "SQLite database path (env "+config.EnvDB+")")
	pf.StringVar(&a.opts.replica, "replica", "", "local replica ID (env "+config.EnvReplica+")")
	pf.StringVar(&a.opts.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.BoolVar(&a.opts.jsonOut, "json", false, "JSON output")

	// Setup
	cmd.AddCommand(newInitCommand(a))
	cmd.AddCommand(newRegisterCommand(a))

	// Operations
	cmd.AddCommand(newTickCommand(a))
	cmd.AddCommand(newSendCommand(a))
	cmd.AddCommand(newIngestCommand(a))
	cmd.AddCommand(newReconcileCommand(a))
	cmd.AddCommand(newDeliverCommand(a))

	// Inspection
	cmd.AddCommand(newLogCommand(a))
	cmd.AddCommand(newHeadsCommand(a))
	cmd.AddCommand(newWatchCommand(a))
	cmd.AddCommand(newStatusCommand(a))

	return cmd, a
}
