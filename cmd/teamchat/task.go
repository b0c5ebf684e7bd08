package main

import (
	"github.com/agentworkforce/teamchat/internal/teamstore"
	"github.com/spf13/cobra"
)

var (
	taskFrom     string
	taskTo       string
	taskTaskID   string
	taskSubject  string
	taskDetails  string
	taskTraceID  string
	taskStatus   string
	taskNote     string
	taskJSON     bool
)

var taskAssignCmd = &cobra.Command{
	Use:   "task-assign <team>",
	Short: "Assign a task to an agent (convenience wrapper over send + task snapshot merge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		env := teamstore.Envelope{
			Type:    "task_assign",
			From:    taskFrom,
			To:      taskTo,
			TaskID:  taskTaskID,
			TraceID: taskTraceID,
			Payload: map[string]any{
				"subject":  taskSubject,
				"details":  taskDetails,
				"assignee": taskTo,
				"reporter": taskFrom,
			},
		}
		result, _, err := store.Send(team, env)
		if err != nil {
			if taskJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if taskJSON {
			emitJSON(map[string]any{"message_id": result.ID, "task_id": result.TaskID}, "")
			return nil
		}
		emitText("assigned task %s to %s (message id=%s)", result.TaskID, result.To, result.ID)
		return nil
	},
}

var taskUpdateCmd = &cobra.Command{
	Use:   "task-update <team>",
	Short: "Post a status update for a task (convenience wrapper over send + task snapshot merge)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		env := teamstore.Envelope{
			Type:    "task_update",
			From:    taskFrom,
			To:      taskTo,
			TaskID:  taskTaskID,
			TraceID: taskTraceID,
			Payload: map[string]any{
				"status":  taskStatus,
				"details": taskNote,
			},
		}
		result, _, err := store.Send(team, env)
		if err != nil {
			if taskJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if taskJSON {
			emitJSON(map[string]any{"message_id": result.ID, "task_id": result.TaskID}, "")
			return nil
		}
		emitText("updated task %s to status %q (message id=%s)", result.TaskID, taskStatus, result.ID)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{taskAssignCmd, taskUpdateCmd} {
		c.Flags().StringVar(&taskFrom, "from", "", "sending agent id (required)")
		c.Flags().StringVar(&taskTo, "to", "", "assignee agent id (required)")
		c.Flags().StringVar(&taskTaskID, "task-id", "", "task id (required)")
		c.Flags().StringVar(&taskTraceID, "trace-id", "", "trace id for correlated operations")
		c.Flags().BoolVar(&taskJSON, "json", false, "emit structured JSON output")
		c.MarkFlagRequired("from")
		c.MarkFlagRequired("to")
		c.MarkFlagRequired("task-id")
	}
	taskAssignCmd.Flags().StringVar(&taskSubject, "subject", "", "task subject (required)")
	taskAssignCmd.Flags().StringVar(&taskDetails, "details", "", "task details")
	taskAssignCmd.MarkFlagRequired("subject")

	taskUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "new task status (required)")
	taskUpdateCmd.Flags().StringVar(&taskNote, "note", "", "status update note")
	taskUpdateCmd.MarkFlagRequired("status")
}
