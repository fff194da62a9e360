package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powertray/powertray/internal/powerplan"
)

func init() {
	rootCmd.AddCommand(setCmd)
}

var setCmd = &cobra.Command{
	Use:   "set <plan>",
	Short: "Activate a power plan",
	Long: `Activate a power plan by position (from 'powertray list'), by
identifier, or by name.`,
	Args: cobra.ExactArgs(1),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
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
		if err := c.Activate(ctx, id); err != nil {
			return err
		}
	} else {
		if err := powerplan.System().SetActivePlan(id); err != nil {
			return err
		}
	}

	for _, p := range plans {
		if p.ID == id {
			fmt.Printf("Activated %s\n", p.Name)
			return nil
		}
	}
	fmt.Printf("Activated %s\n", id)
	return nil
}
