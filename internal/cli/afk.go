package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/powertray/powertray/internal/afk"
	"github.com/powertray/powertray/internal/daemon"
	"github.com/powertray/powertray/internal/settings"
)

func init() {
	afkCmd.AddCommand(afkOffCmd)
	afkCmd.AddCommand(afkTimeoutCmd)
	afkCmd.AddCommand(afkTargetCmd)
	rootCmd.AddCommand(afkCmd)
}

var afkCmd = &cobra.Command{
	Use:   "afk",
	Short: "Configure the away-from-keyboard auto-switch",
}

var afkOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable the AFK switch (restores the previous plan if applied)",
	RunE:  runAfkOff,
}

var afkTimeoutCmd = &cobra.Command{
	Use:   "timeout <minutes>",
	Short: fmt.Sprintf("Set the AFK timeout (%s)", timeoutChoices()),
	Args:  cobra.ExactArgs(1),
	RunE:  runAfkTimeout,
}

var afkTargetCmd = &cobra.Command{
	Use:   "target <plan>",
	Short: "Set the plan to switch to when away",
	Args:  cobra.ExactArgs(1),
	RunE:  runAfkTarget,
}

func timeoutChoices() string {
	var opts []string
	for _, m := range afk.TimeoutOptions {
		if m == 0 {
			continue
		}
		opts = append(opts, strconv.Itoa(m))
	}
	return strings.Join(opts, ", ")
}

func runAfkOff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := apiClient()
	if err != nil {
		return err
	}
	if c.Ping(ctx) {
		if err := c.AfkOff(ctx); err != nil {
			return err
		}
	} else if err := updateStoredAfk(func(cfg *afk.Config) { cfg.TimeoutMinutes = 0 }); err != nil {
		return err
	}
	fmt.Println("AFK switch disabled")
	return nil
}

func runAfkTimeout(cmd *cobra.Command, args []string) error {
	minutes, err := strconv.Atoi(args[0])
	if err != nil || minutes <= 0 || !afk.ValidTimeout(minutes) {
		return fmt.Errorf("timeout must be one of: %s", timeoutChoices())
	}

	ctx := cmd.Context()
	c, err := apiClient()
	if err != nil {
		return err
	}
	if c.Ping(ctx) {
		if err := c.SetAfkTimeout(ctx, minutes); err != nil {
			return err
		}
	} else if err := updateStoredAfk(func(cfg *afk.Config) { cfg.TimeoutMinutes = minutes }); err != nil {
		return err
	}
	fmt.Printf("AFK timeout set to %d min\n", minutes)
	return nil
}

func runAfkTarget(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	plans, c, err := daemonPlans(ctx)
	if err != nil {
		return err
	}
	id, err := resolvePlan(plans, args[0])
	if err != nil {
		return err
	}

	if c != nil {
		if err := c.SetAfkTarget(ctx, id); err != nil {
			return err
		}
	} else if err := updateStoredAfk(func(cfg *afk.Config) { cfg.TargetPlan = id }); err != nil {
		return err
	}

	for _, p := range plans {
		if p.ID == id {
			fmt.Printf("AFK target set to %s\n", p.Name)
			return nil
		}
	}
	fmt.Printf("AFK target set to %s\n", id)
	return nil
}

// updateStoredAfk edits the persisted AFK settings directly. Only used
// when no daemon holds the settings database.
func updateStoredAfk(edit func(*afk.Config)) error {
	store, err := settings.Open(daemon.Home())
	if err != nil {
		return err
	}
	defer store.Close()

	cfg, err := store.Load()
	if err != nil {
		return err
	}
	edit(&cfg)
	return store.Save(cfg)
}
