package cmd

import (
	"sort"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the server and its dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		health, err := api.GetHealth()
		if health == nil {
			return err
		}
		if output.JSON() {
			if printErr := output.PrintJSON(health); printErr != nil {
				return printErr
			}
			return err
		}

		names := make([]string, 0, len(health.Dependencies))
		for name := range health.Dependencies {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if status := health.Dependencies[name]; status == "ok" {
				output.PrintSuccess("✓ %s", name)
			} else {
				output.PrintError("%s: %s", name, status)
			}
		}
		if err == nil {
			output.PrintSuccess("%s is %s", health.Service, health.Status)
		}
		return err
	},
}
