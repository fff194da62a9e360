package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powertray/powertray/internal/startup"
)

func init() {
	rootCmd.AddCommand(startupCmd)
}

var startupCmd = &cobra.Command{
	Use:       "startup <on|off|show>",
	Short:     "Manage launch at login",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "show"},
	RunE:      runStartup,
}

func runStartup(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "show":
		if startup.Enabled() {
			fmt.Println("Start at login: on")
		} else {
			fmt.Println("Start at login: off")
		}
		return nil
	case "on", "off":
		enable := args[0] == "on"
		if err := setStartup(cmd, enable); err != nil {
			return err
		}
		fmt.Printf("Start at login: %s\n", args[0])
		return nil
	default:
		return fmt.Errorf("expected on, off, or show, got %q", args[0])
	}
}

// setStartup goes through the daemon when one is running so its menu
// checkmark updates immediately; otherwise it edits the login entry
// directly.
func setStartup(cmd *cobra.Command, enable bool) error {
	ctx := cmd.Context()
	c, err := apiClient()
	if err != nil {
		return err
	}
	if c.Ping(ctx) {
		return c.SetStartup(ctx, enable)
	}
	return startup.SetEnabled(enable)
}
