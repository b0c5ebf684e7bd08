package main

import (
	"github.com/agentworkforce/teamchat/internal/teamstore"
	"github.com/spf13/cobra"
)

var (
	traceTraceID string
	traceLimit   int
	traceCursor  string
	traceJSON    bool
)

var traceCmd = &cobra.Command{
	Use:   "trace <team>",
	Short: "Trace every event for a trace id, in chronological order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		result, err := store.Trace(team, traceTraceID, teamstore.TraceOptions{
			Limit:  traceLimit,
			Cursor: traceCursor,
		})
		if err != nil {
			if traceJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if traceJSON {
			emitJSON(result.Events, result.NextCursor)
			return nil
		}
		for _, ev := range result.Events {
			emitText("[%s] %s subject=%s id=%s", ev.Ts, ev.Kind, ev.SubjectID, ev.ID)
		}
		if result.NextCursor != "" {
			emitText("(more available; next cursor: %s)", result.NextCursor)
		}
		return nil
	},
}

func init() {
	traceCmd.Flags().StringVar(&traceTraceID, "trace-id", "", "trace id to follow (required)")
	// limit=0 means unbounded, chronological order, matching the original
	// CLI's --limit 0 default meaning (SPEC_FULL.md 4).
	traceCmd.Flags().IntVar(&traceLimit, "limit", 0, "maximum events to return (0 = unbounded)")
	traceCmd.Flags().StringVar(&traceCursor, "cursor", "", "resume after this event id")
	traceCmd.Flags().BoolVar(&traceJSON, "json", false, "emit structured JSON output")
	traceCmd.MarkFlagRequired("trace-id")
}
