package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/powertray/powertray/internal/daemon"
	"github.com/powertray/powertray/internal/singleinstance"
)

func init() {
	runCmd.Flags().StringVar(&runHost, "host", "", "Host to listen on (overrides config)")
	runCmd.Flags().IntVar(&runPort, "port", 0, "Port to listen on (overrides config)")
	runCmd.Flags().BoolVar(&runFake, "fake", false, "Use an in-memory plan directory")
	runCmd.Flags().BoolVar(&runMetrics, "metrics", false, "Expose Prometheus metrics on /metrics")
	rootCmd.AddCommand(runCmd)
}

var (
	runHost    string
	runPort    int
	runFake    bool
	runMetrics bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the powertray daemon",
	Long:  `Run the daemon: the AFK engine, the plan poller, and the control API.`,
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if runHost != "" {
		cfg.API.Host = runHost
	}
	if runPort > 0 {
		cfg.API.Port = runPort
	}
	if runFake {
		cfg.Plans.Fake = true
	}
	if runMetrics {
		cfg.Telemetry.Prometheus = true
	}

	d, err := daemon.NewWithConfig(cfg)
	if err != nil {
		// A second instance is not an error: report and leave the
		// running one alone.
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			fmt.Println("powertray is already running")
			return nil
		}
		return err
	}
	defer d.Close()

	return d.Serve(context.Background())
}
