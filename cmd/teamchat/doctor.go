package main

import (
	"errors"

	"github.com/spf13/cobra"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnostics for a team's stored state",
}

var doctorCheckCmd = &cobra.Command{
	Use:   "check <team>",
	Short: "Run a read-only consistency report over logs, indexes, and acks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		report, err := store.DoctorCheck(team)
		if err != nil {
			if doctorJSON {
				emitJSONError(err)
				return nil
			}
			return err
		}
		if doctorJSON {
			emitJSON(report, "")
		} else {
			emitText("team=%s overall_status=%s", report.Team, report.OverallStatus)
			for _, c := range report.Checks {
				emitText("  [%s] %s: %s", c.Status, c.Name, c.Detail)
			}
			for _, r := range report.Recommendations {
				emitText("  recommendation: %s", r)
			}
		}
		if report.OverallStatus != "ok" {
			return errors.New("doctor check reported inconsistencies")
		}
		return nil
	},
}

func init() {
	doctorCmd.AddCommand(doctorCheckCmd)
	doctorCheckCmd.Flags().BoolVar(&doctorJSON, "json", false, "emit structured JSON output")
}
