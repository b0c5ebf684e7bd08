package main

import "github.com/spf13/cobra"

var rehydrateJSON bool

var rehydrateCmd = &cobra.Command{
	Use:   "rehydrate <team>",
	Short: "Rebuild indexes and task snapshots deterministically from the append-only logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		report, err := store.Rehydrate(team)
		if err != nil {
			if rehydrateJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if rehydrateJSON {
			emitJSON(report, "")
			return nil
		}
		emitText("rehydrated %s: messages=%d events=%d tasks=%d acks=%d malformed=%d",
			team, report.MessagesIndexed, report.EventsIndexed, report.TasksRebuilt, report.AcksRebuilt, report.MalformedLines)
		return nil
	},
}

func init() {
	rehydrateCmd.Flags().BoolVar(&rehydrateJSON, "json", false, "emit structured JSON output")
}
