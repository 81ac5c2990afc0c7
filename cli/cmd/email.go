package cmd

import (
	"fmt"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var emailCmd = &cobra.Command{
	Use:   "email",
	Short: "Disposable email lookups",
}

var emailCheckCmd = &cobra.Command{
	Use:   "check <email|domain>",
	Short: "Check whether an address or domain is disposable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := api.CheckEmail(args[0])
		if err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if output.JSON() {
			return output.PrintJSON(res)
		}

		switch {
		case res.Error != "":
			output.PrintWarning("lookup failed for %s: %s", res.Domain, res.Error)
		case res.IsFake:
			output.PrintError("%s is a disposable email domain", res.Domain)
		default:
			output.PrintSuccess("✓ %s looks legitimate", res.Domain)
		}
		return nil
	},
}

func init() {
	emailCmd.AddCommand(emailCheckCmd)
}
