package main

import (
	"github.com/spf13/cobra"
)

var (
	statusJSON         bool
	statusStaleMinutes int
)

var statusCmd = &cobra.Command{
	Use:   "status <team>",
	Short: "Report aggregate counters and stale task/message detection for a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		staleMinutes := statusStaleMinutes
		if !cmd.Flags().Changed("stale-minutes") {
			staleMinutes = staleMinutesFromEnv()
		}
		report, err := store.Status(team, staleMinutes)
		if err != nil {
			if statusJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if statusJSON {
			emitJSON(report, "")
			return nil
		}
		emitText("team=%s members=%d messages=%d unread=%d acked=%d tasks=%d dead_lettered=%d",
			report.Team, len(report.Members), report.MessagesTotal, report.UnreadTotal,
			report.AckedTotal, report.TasksTotal, report.DeadLettered)
		if len(report.StaleTasks) > 0 {
			emitText("stale tasks (>%dm): %v", report.StaleMinutes, report.StaleTasks)
		}
		if len(report.StaleMessages) > 0 {
			emitText("stale messages (>%dm): %v", report.StaleMinutes, report.StaleMessages)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit structured JSON output")
	statusCmd.Flags().IntVar(&statusStaleMinutes, "stale-minutes", 60, "staleness window in minutes")
}
