package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var initMembers string

var initCmd = &cobra.Command{
	Use:   "init <team>",
	Short: "Create the directory skeleton for a team and seed empty indexes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		team := args[0]
		var members []string
		for _, m := range strings.Split(initMembers, ",") {
			m = strings.TrimSpace(m)
			if m != "" {
				members = append(members, m)
			}
		}
		meta, err := store.Init(team, members)
		if err != nil {
			return err
		}
		emitText("initialized team %q with %d member(s)", meta.Team, len(meta.Members))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initMembers, "members", "", "comma-separated member agent ids (required)")
	initCmd.MarkFlagRequired("members")
}
