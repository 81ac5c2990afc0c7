package cmd

import (
	"fmt"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Inspect site members",
}

var membersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every member of the site",
	RunE: func(cmd *cobra.Command, args []string) error {
		missingOnly, _ := cmd.Flags().GetBool("missing-avatar")

		members, err := api.ListMembers()
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		if missingOnly {
			members = api.MissingAvatars(members)
		}
		if members == nil {
			members = []api.Member{}
		}

		rows := make([][]string, 0, len(members))
		for _, m := range members {
			avatar := "-"
			if m.HasAvatar {
				avatar = "yes"
			}
			rows = append(rows, []string{m.ID, m.Name, m.Email, avatar})
		}
		if err := output.PrintList(members, []string{"ID", "NAME", "EMAIL", "AVATAR"}, rows); err != nil {
			return err
		}
		if !output.JSON() {
			output.PrintInfo("%d members", len(members))
		}
		return nil
	},
}

func init() {
	membersCmd.AddCommand(membersListCmd)
	membersListCmd.Flags().Bool("missing-avatar", false, "Only show members without a profile photo")
}
