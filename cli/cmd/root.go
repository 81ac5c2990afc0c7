package cmd

import (
	"fmt"
	"os"

	"github.com/certifiedcode/memberguard/cli/pkg/client"
	"github.com/certifiedcode/memberguard/cli/pkg/config"
	"github.com/certifiedcode/memberguard/cli/pkg/logger"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
	instance   string
)

var rootCmd = &cobra.Command{
	Use:   "memberguard-cli",
	Short: "MemberGuard CLI - manage a site's member protection from the terminal",
	Long: `MemberGuard CLI drives the MemberGuard dashboard API: flip feature
toggles, list members, backfill Gravatar photos, check email domains,
send test alerts and read the activity log.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if !output.ValidateOutputFormat(outputFmt) {
			return fmt.Errorf("invalid --output %q: use text, json or table", outputFmt)
		}
		config.Set("output.format", outputFmt)
		if apiURL != "" {
			config.Set("api.base_url", apiURL)
		}
		if instance != "" {
			config.Set("instance.token", instance)
		}
		client.Reset()
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/memberguard/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().StringVar(&instance, "instance", "", "Dashboard token or signed instance (overrides instance.token)")

	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(avatarsCmd)
	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
