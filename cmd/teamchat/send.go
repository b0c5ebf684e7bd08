package main

import (
	"encoding/json"

	"github.com/agentworkforce/teamchat/internal/teamstore"
	"github.com/spf13/cobra"
)

var (
	sendFrom            string
	sendTo              string
	sendType            string
	sendMessageID       string
	sendPayload         string
	sendRequireAck      bool
	sendCooldownSeconds int
	sendCooldownKey     string
	sendTraceID         string
	sendTaskID          string
	sendPriority        int
	sendJSON            bool
)

var sendCmd = &cobra.Command{
	Use:   "send <team>",
	Short: "Send an envelope to an agent's inbox",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		payload := map[string]any{}
		if sendPayload != "" {
			if err := json.Unmarshal([]byte(sendPayload), &payload); err != nil {
				return &teamstore.SchemaError{Reason: "invalid --payload JSON: " + err.Error()}
			}
		}
		env := teamstore.Envelope{
			ID:              sendMessageID,
			Type:            sendType,
			From:            sendFrom,
			To:              sendTo,
			Payload:         payload,
			TaskID:          sendTaskID,
			TraceID:         sendTraceID,
			Priority:        sendPriority,
			RequireAck:      sendRequireAck,
			CooldownKey:     sendCooldownKey,
			CooldownSeconds: sendCooldownSeconds,
		}
		result, suppressed, err := store.Send(team, env)
		if err != nil {
			if sendJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if sendJSON {
			emitJSON(map[string]any{"message_id": result.ID, "suppressed": suppressed}, "")
			return nil
		}
		if suppressed {
			emitText("send suppressed (duplicate or cooldown): %s", result.ID)
		} else {
			emitText("sent %s to %s (id=%s)", result.Type, result.To, result.ID)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendFrom, "from", "", "sending agent id (required)")
	sendCmd.Flags().StringVar(&sendTo, "to", "", "recipient agent id (required)")
	sendCmd.Flags().StringVar(&sendType, "type", "", "message type (required)")
	sendCmd.Flags().StringVar(&sendMessageID, "message-id", "", "message id (required)")
	sendCmd.Flags().StringVar(&sendPayload, "payload", "", "JSON payload object (required)")
	sendCmd.Flags().StringVar(&sendTaskID, "task-id", "", "associated task id")
	sendCmd.Flags().StringVar(&sendTraceID, "trace-id", "", "trace id for correlated operations")
	sendCmd.Flags().IntVar(&sendPriority, "priority", 0, "message priority")
	sendCmd.Flags().BoolVar(&sendRequireAck, "require-ack", false, "register with the delivery guard")
	sendCmd.Flags().IntVar(&sendCooldownSeconds, "cooldown-seconds", 0, "cooldown window in seconds")
	sendCmd.Flags().StringVar(&sendCooldownKey, "cooldown-key", "", "cooldown suppression key")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "emit structured JSON output")
	for _, f := range []string{"from", "to", "type", "message-id", "payload"} {
		sendCmd.MarkFlagRequired(f)
	}
}
