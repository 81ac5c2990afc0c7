package cmd

import (
	"fmt"

	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version and the API it talks to",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if output.GetOutputFormat() == output.FormatJSON {
			_ = output.PrintJSON(map[string]string{
				"version": client.Version,
				"api":     config.GetString("api.base_url"),
			})
			return
		}
		fmt.Fprintf(output.Writer, "MemberGuard CLI v%s\n", client.Version)
		if verbose {
			fmt.Fprintf(output.Writer, "API: %s\n", config.GetString("api.base_url"))
		}
	},
}
