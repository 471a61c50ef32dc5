package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/ingest"
)

func newIngestCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [file|-]",
		Short: "Validate and apply JSON-lines envelopes from a file or stdin",
		Long: `Read one envelope per line, validate each, and apply the valid ones
to the log. Conversations are processed concurrently (bounded by the
configured workers); each conversation keeps its input order.

When --replica is set, the replica clock absorbs every accepted event.
Exits 1 if any line was rejected.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			raws, err := ingest.ReadJSONLines(r)
			if err != nil {
				return err
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}
			in := ingest.New(s, a.log,
				ingest.WithWorkers(a.cfg.Workers),
				ingest.WithReplica(a.cfg.Replica),
			)
			results, err := in.IngestBatch(cmd.Context(), raws)
			if err != nil {
				return err
			}

			var applied, duplicates, rejected int
			for _, res := range results {
				switch {
				case res.Rejected:
					rejected++
				case res.Apply != nil && !res.Apply.Inserted:
					duplicates++
				default:
					applied++
				}
			}

			if a.opts.jsonOut {
				a.printJSON(map[string]any{
					"results":    results,
					"applied":    applied,
					"duplicates": duplicates,
					"rejected":   rejected,
				})
			} else {
				for _, res := range results {
					if res.Rejected {
						a.printf("line %d: rejected: %s\n", res.Index+1, rejection(res))
					}
				}
				a.printf("ingested %d envelope(s): %d applied, %d duplicate, %d rejected\n",
					len(results), applied, duplicates, rejected)
			}
			if rejected > 0 {
				return withCode(exitError, fmt.Errorf("%d envelope(s) rejected", rejected))
			}
			return nil
		},
	}
}

func rejection(res ingest.Result) string {
	if res.Field == "" {
		return res.Reason
	}
	return res.Field + ": " + res.Reason
}
