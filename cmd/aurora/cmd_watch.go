package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daviddao/aurora/pkg/store"
)

func newWatchCommand(a *app) *cobra.Command {
	var (
		interval time.Duration
		since    int64
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream events as they are stored",
		Long: `Poll the log and print events as they arrive, until interrupted.
With --json each event is printed as one JSON object per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if !cmd.Flags().Changed("since") {
				since = s.MaxSeq(ctx)
			}
			cmd.PrintErrf("watching %s from seq %d (poll every %s, ctrl-c to stop)\n", a.cfg.DB, since, interval)
			a.watch(ctx, s, since, interval)
			cmd.PrintErrln("stopped")
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "poll interval")
	cmd.Flags().Int64Var(&since, "since", 0, "start after this sequence number (default: current end of log)")
	return cmd
}

// watch polls for records after cursor until ctx is done and returns the
// last sequence number printed.
func (a *app) watch(ctx context.Context, s store.StoreInterface, cursor int64, interval time.Duration) int64 {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return cursor
		case <-ticker.C:
			recs, err := s.ListEventsSince(ctx, cursor, 100)
			if err != nil {
				if ctx.Err() != nil {
					return cursor
				}
				a.log.Warn("watch poll failed", zap.Error(err))
				continue
			}
			for _, rec := range recs {
				if a.opts.jsonOut {
					b, _ := json.Marshal(rec)
					a.printf("%s\n", b)
				} else {
					a.printf("#%d ", rec.Seq)
					a.printEvent(rec.Event)
				}
				cursor = rec.Seq
			}
		}
	}
}
