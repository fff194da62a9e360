package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List power plans",
	RunE:    runList,
}

func runList(cmd *cobra.Command, args []string) error {
	plans, _, err := daemonPlans(cmd.Context())
	if err != nil {
		return err
	}
	if len(plans) == 0 {
		fmt.Println("No power plans found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, " \t#\tNAME\tID")
	for i, p := range plans {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", checkmark(p.Active), i+1, p.Name, p.ID)
	}
	return w.Flush()
}
