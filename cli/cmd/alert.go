package cmd

import (
	"fmt"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var alertCmd = &cobra.Command{
	Use:   "alert",
	Short: "Fake member alert emails",
}

var alertTestCmd = &cobra.Command{
	Use:   "test <member-email> [admin-email]",
	Short: "Send a fake member alert to check delivery and templates",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		admin := ""
		if len(args) > 1 {
			admin = args[1]
		}
		msg, err := api.SendTestAlert(args[0], admin)
		if err != nil {
			return fmt.Errorf("alert not sent: %w", err)
		}
		output.PrintSuccess("✓ %s", msg)
		return nil
	},
}

func init() {
	alertCmd.AddCommand(alertTestCmd)
}
