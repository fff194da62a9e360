package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/powertray/powertray/internal/api"
	"github.com/powertray/powertray/internal/daemon"
	"github.com/powertray/powertray/internal/powerplan"
	"github.com/powertray/powertray/internal/settings"
	"github.com/powertray/powertray/internal/startup"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active plan and AFK settings",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := apiClient()
	if err != nil {
		return err
	}

	if c.Ping(ctx) {
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(st, true)
		return nil
	}

	// No daemon: read the OS and the settings database directly.
	st, err := offlineStatus()
	if err != nil {
		return err
	}
	printStatus(st, false)
	return nil
}

func offlineStatus() (api.Status, error) {
	var st api.Status

	dir := powerplan.System()
	plans, err := dir.ListPlans()
	if err != nil {
		return st, err
	}
	active, err := dir.ActivePlan()
	if err == nil {
		st.ActivePlanID = active
		st.ActivePlanName, _ = powerplan.NameOf(plans, active)
	}

	store, err := settings.Open(daemon.Home())
	if err == nil {
		defer store.Close()
		if cfg, err := store.Load(); err == nil {
			st.AfkTimeoutMinutes = cfg.TimeoutMinutes
			st.AfkTargetPlan = cfg.TargetPlan
		}
	}
	st.StartupEnabled = startup.Enabled()
	return st, nil
}

func printStatus(st api.Status, live bool) {
	if live {
		fmt.Println("Daemon: running")
	} else {
		fmt.Println("Daemon: not running")
	}
	fmt.Printf("Active plan: %s\n", nameOrID(st.ActivePlanName, st.ActivePlanID))

	if st.AfkTimeoutMinutes == 0 {
		fmt.Println("AFK switch: off")
	} else {
		fmt.Printf("AFK switch: after %d min -> %s\n", st.AfkTimeoutMinutes, st.AfkTargetPlan)
		if live {
			fmt.Printf("AFK applied: %v (idle %ds)\n", st.AfkApplied, st.IdleSeconds)
		}
	}
	fmt.Printf("Start at login: %v\n", st.StartupEnabled)
}

func nameOrID(name string, id uuid.UUID) string {
	if name != "" {
		return name
	}
	if id == uuid.Nil {
		return "unknown"
	}
	return id.String()
}
