package cmd

import (
	"errors"
	"fmt"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var avatarsCmd = &cobra.Command{
	Use:   "avatars",
	Short: "Backfill Gravatar profile photos",
}

var avatarsApplyCmd = &cobra.Command{
	Use:   "apply [member-id...]",
	Short: "Set Gravatar photos for the given members",
	Long: `Set Gravatar photos for the given member IDs. With --all-missing the
CLI first lists the site's members and applies photos to everyone
without one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		allMissing, _ := cmd.Flags().GetBool("all-missing")

		ids := args
		if allMissing {
			members, err := api.ListMembers()
			if err != nil {
				return fmt.Errorf("failed to list members: %w", err)
			}
			for _, m := range api.MissingAvatars(members) {
				ids = append(ids, m.ID)
			}
		}
		if len(ids) == 0 {
			if allMissing {
				output.PrintInfo("Every member already has a profile photo")
				return nil
			}
			return errors.New("provide member IDs or --all-missing")
		}

		results, err := api.ApplyAvatars(ids)
		if err != nil {
			return fmt.Errorf("failed to apply avatars: %w", err)
		}
		return printAvatarResults(results)
	},
}

func printAvatarResults(results *api.AvatarResults) error {
	if output.JSON() {
		return output.PrintJSON(results)
	}
	output.PrintSuccess("✓ Updated %d members", len(results.Success))
	if len(results.Failed) == 0 {
		return nil
	}
	output.PrintWarning("%d members were not updated", len(results.Failed))
	rows := make([][]string, 0, len(results.Failed))
	for _, f := range results.Failed {
		rows = append(rows, []string{f.MemberID, f.Error})
	}
	return output.PrintList(results.Failed, []string{"MEMBER", "REASON"}, rows)
}

func init() {
	avatarsCmd.AddCommand(avatarsApplyCmd)
	avatarsApplyCmd.Flags().Bool("all-missing", false, "Apply to every member without a profile photo")
}
