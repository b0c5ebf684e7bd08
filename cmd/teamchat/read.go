package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/agentworkforce/teamchat/internal/teamstore"
	"github.com/spf13/cobra"
)

var (
	readAgent  string
	readUnread bool
	readLimit  int
	readCursor string
	readJSON   bool
	readFollow bool
)

var readCmd = &cobra.Command{
	Use:   "read <team>",
	Short: "Read an agent's inbox, newest first, with cursor pagination",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		result, err := store.Read(team, readAgent, teamstore.ReadOptions{
			Unread: readUnread,
			Limit:  readLimit,
			Cursor: readCursor,
		})
		if err != nil {
			if readJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if readJSON {
			emitJSON(result.Envelopes, result.NextCursor)
		} else {
			for _, env := range result.Envelopes {
				emitText("[%s] %s -> %s type=%s id=%s task_id=%s", env.CreatedAt, env.From, env.To, env.Type, env.ID, env.TaskID)
			}
			if result.NextCursor != "" {
				emitText("(more available; next cursor: %s)", result.NextCursor)
			}
		}
		if readFollow && !readJSON {
			return followInbox(team, readAgent)
		}
		return nil
	},
}

// followInbox implements the `read --follow` enrichment: after the
// initial page, block on new inbox writes via fsnotify and stream them
// until interrupted. It starts from the inbox's current size so the
// initial page is never repeated.
func followInbox(team, agent string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	knownOffset := store.InboxSize(team, agent)

	out := make(chan teamstore.Envelope, 16)
	done := make(chan error, 1)
	go func() {
		done <- store.FollowInbox(ctx, team, agent, knownOffset, out)
	}()

	for {
		select {
		case env, ok := <-out:
			if !ok {
				return <-done
			}
			emitText("[%s] %s -> %s type=%s id=%s task_id=%s", env.CreatedAt, env.From, env.To, env.Type, env.ID, env.TaskID)
		case err := <-done:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

func init() {
	readCmd.Flags().StringVar(&readAgent, "agent", "", "agent whose inbox to read (required)")
	readCmd.Flags().BoolVar(&readUnread, "unread", false, "only show unacked messages")
	readCmd.Flags().IntVar(&readLimit, "limit", 20, "maximum envelopes to return")
	readCmd.Flags().StringVar(&readCursor, "cursor", "", "resume after this message id")
	readCmd.Flags().BoolVar(&readJSON, "json", false, "emit structured JSON output")
	readCmd.Flags().BoolVar(&readFollow, "follow", false, "after the initial page, stream newly appended envelopes")
	readCmd.MarkFlagRequired("agent")
}
