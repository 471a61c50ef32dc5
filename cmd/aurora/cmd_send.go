package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

type sendOptions struct {
	sender    string
	mentions  []string
	replyTo   string
	encrypted bool
}

// newSendCommand composes an envelope on the local replica. The envelope
// carries the ticked replica clock, so it causally follows everything the
// replica has seen; the tick is stored only together with the event. The
// envelope is printed as one JSON line, ready to be piped into
// "aurora ingest" on another replica.
func newSendCommand(a *app) *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send <conversation> <message...>",
		Short: "Compose, store and print a new envelope",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			replica, err := a.requireReplica()
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			sender := opts.sender
			if sender == "" {
				sender = replica
			}
			env, res, err := s.SendEvent(cmd.Context(), replica, func(vc clock.VectorClock) (model.Envelope, error) {
				return model.Compose(model.ComposeParams{
					ConversationID: args[0],
					SenderID:       sender,
					Clock:          vc,
					Body:           strings.Join(args[1:], " "),
					Mentions:       opts.mentions,
					ReplyTo:        opts.replyTo,
					Encrypted:      opts.encrypted,
				})
			})
			if err != nil {
				return err
			}
			a.log.Debug("envelope sent",
				zap.String("event", env.ID),
				zap.String("conversation", env.ConversationID),
				zap.String("head", res.Head.EventID),
			)

			if a.opts.jsonOut {
				a.printJSON(map[string]any{"envelope": env, "head": res.Head})
				return nil
			}
			line, err := json.Marshal(env)
			if err != nil {
				return err
			}
			a.printf("%s\n", line)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.sender, "sender", "", "sender user ID (default: the replica ID)")
	f.StringSliceVar(&opts.mentions, "mention", nil, "mentioned user ID (repeatable)")
	f.StringVar(&opts.replyTo, "reply-to", "", "event ID this message replies to")
	f.BoolVar(&opts.encrypted, "encrypted", false, "mark the payload as end-to-end encrypted")
	return cmd
}
