package cmd

import (
	"fmt"
	"time"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent avatars set, members blocked and messages flagged",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		entries, err := api.RecentActivity(limit)
		if err != nil {
			return fmt.Errorf("failed to load activity: %w", err)
		}
		if len(entries) == 0 && !output.JSON() {
			output.PrintInfo("No activity yet")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.CreatedAt.Local().Format(time.DateTime), e.Kind, e.MemberID, e.Detail})
		}
		return output.PrintList(entries, []string{"WHEN", "KIND", "MEMBER", "DETAIL"}, rows)
	},
}

func init() {
	activityCmd.Flags().IntP("limit", "l", 50, "Number of entries to show")
}
