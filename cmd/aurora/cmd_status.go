package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/daviddao/aurora/pkg/frontier"
	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/store"
)

// conversationInfo summarizes one conversation for status output.
type conversationInfo struct {
	ID        string      `json:"id"`
	Events    int         `json:"events"`
	Heads     int         `json:"heads"`
	Converged bool        `json:"converged"`
	Canonical string      `json:"canonical,omitempty"`
	Head      *model.Head `json:"head,omitempty"`
}

type replicaInfo struct {
	model.Replica
	Presence string `json:"presence"`
}

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show replicas and the state of every conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			replicas, err := s.ListReplicas(ctx)
			if err != nil {
				return err
			}
			infos := make([]replicaInfo, len(replicas))
			for i, r := range replicas {
				infos[i] = replicaInfo{Replica: r, Presence: replicaPresence(r, time.Now())}
			}

			convIDs, err := s.ListConversations(ctx)
			if err != nil {
				return err
			}
			heads, err := s.ListHeads(ctx)
			if err != nil {
				return err
			}
			byConv := make(map[string]model.Head, len(heads))
			for _, h := range heads {
				byConv[h.ConversationID] = h
			}
			convs := make([]conversationInfo, 0, len(convIDs))
			for _, id := range convIDs {
				recs, err := s.ListConversation(ctx, id)
				if err != nil {
					return err
				}
				convs = append(convs, summarize(id, store.Envelopes(recs), byConv))
			}

			if a.opts.jsonOut {
				a.printJSON(map[string]any{
					"replica":       a.cfg.Replica,
					"replicas":      infos,
					"conversations": convs,
					"events":        s.CountEvents(ctx),
				})
				return nil
			}

			a.printf("replicas:\n")
			if len(infos) == 0 {
				a.printf("  none\n")
			}
			for _, ri := range infos {
				marker := ""
				if ri.ID == a.cfg.Replica {
					marker = " <-- you"
				}
				a.printf("  %s %-20s clock=%s last_seen=%s%s\n",
					presenceIndicator(ri.Presence), ri.ID, ri.Clock,
					ri.LastSeen.Local().Format("15:04:05"), marker)
			}
			if len(convs) == 0 {
				a.printf("conversations: none\n")
				return nil
			}
			a.printf("conversations:\n")
			for _, c := range convs {
				state := "converged"
				if !c.Converged {
					state = "diverged"
				}
				a.printf("  %-20s events=%-4d heads=%d %s canonical=%s\n",
					c.ID, c.Events, c.Heads, state, c.Canonical)
			}
			return nil
		},
	}
}

func summarize(id string, events []model.Envelope, heads map[string]model.Head) conversationInfo {
	st := frontier.ComputeStatus(events)
	info := conversationInfo{
		ID:        id,
		Events:    len(events),
		Heads:     len(st.Heads),
		Converged: st.Converged,
	}
	if st.Canonical != nil {
		info.Canonical = st.Canonical.ID
	}
	if h, ok := heads[id]; ok {
		info.Head = &h
	}
	return info
}

// replicaPresence classifies a replica by its last_seen time.
//   - "online"  seen within 2 minutes
//   - "idle"    seen within 10 minutes
//   - "offline" not seen for 10+ minutes
func replicaPresence(r model.Replica, now time.Time) string {
	since := now.Sub(r.LastSeen)
	switch {
	case since < 2*time.Minute:
		return "online"
	case since < 10*time.Minute:
		return "idle"
	default:
		return "offline"
	}
}

// presenceIndicator returns a short text indicator for display.
func presenceIndicator(presence string) string {
	switch presence {
	case "online":
		return "[+]"
	case "idle":
		return "[~]"
	default:
		return "[-]"
	}
}
