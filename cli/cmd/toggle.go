package cmd

import (
	"fmt"
	"strings"

	"github.com/certifiedcode/memberguard/cli/pkg/api"
	"github.com/certifiedcode/memberguard/cli/pkg/output"
	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Read or flip feature toggles",
	Long:  "Features: " + strings.Join(api.Features, ", "),
}

var toggleGetCmd = &cobra.Command{
	Use:   "get <feature>",
	Short: "Show whether a feature is enabled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := api.GetToggle(args[0])
		if err != nil {
			return fmt.Errorf("failed to read toggle: %w", err)
		}
		return printToggle(args[0], enabled)
	},
}

var toggleSetCmd = &cobra.Command{
	Use:   "set <feature> <on|off>",
	Short: "Enable or disable a feature",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := parseOnOff(args[1])
		if err != nil {
			return err
		}
		stored, err := api.SetToggle(args[0], enabled)
		if err != nil {
			return fmt.Errorf("failed to update toggle: %w", err)
		}
		return printToggle(args[0], stored)
	},
}

func printToggle(feature string, enabled bool) error {
	if output.JSON() {
		return output.PrintJSON(map[string]interface{}{"feature": feature, "isEnabled": enabled})
	}
	fmt.Fprintf(output.Writer, "%s: %s\n", feature, output.OnOff(enabled))
	return nil
}

func parseOnOff(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "true", "enable", "enabled", "1":
		return true, nil
	case "off", "false", "disable", "disabled", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", value)
}

func init() {
	toggleCmd.AddCommand(toggleGetCmd)
	toggleCmd.AddCommand(toggleSetCmd)
}
