package main

import "github.com/spf13/cobra"

var (
	ackAgent     string
	ackMessageID string
	ackTraceID   string
	ackJSON      bool
)

var ackCmd = &cobra.Command{
	Use:   "ack <team>",
	Short: "Acknowledge receipt of a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		rec, err := store.Ack(team, ackMessageID, ackAgent, ackTraceID)
		if err != nil {
			if ackJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if ackJSON {
			emitJSON(rec, "")
			return nil
		}
		emitText("acked %s by %s at %s", rec.MessageID, rec.AckedBy, rec.AckedAt)
		return nil
	},
}

func init() {
	ackCmd.Flags().StringVar(&ackAgent, "agent", "", "acknowledging agent id (required)")
	ackCmd.Flags().StringVar(&ackMessageID, "message-id", "", "message id to acknowledge (required)")
	ackCmd.Flags().StringVar(&ackTraceID, "trace-id", "", "trace id for correlated operations")
	ackCmd.Flags().BoolVar(&ackJSON, "json", false, "emit structured JSON output")
	ackCmd.MarkFlagRequired("agent")
	ackCmd.MarkFlagRequired("message-id")
}
