package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/relab/synod/internal/config"
	"github.com/relab/synod/logging"
	"github.com/relab/synod/sim"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the same simulation with many seeds.",
	Long: `The sweep command runs one simulation for each of '--seeds' consecutive seeds,
starting at '--seed', and checks that the proposers agree in every run.
It prints statistics about the number of ticks and attempts, and fails if
any run was unsafe or violated the protocol.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, err := config.NewViper()
		checkf("configuration error: %v", err)
		checkf("sweep failed: %v", runSweep(cmd.Context(), cfg, cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	config.RegisterSweepFlags(sweepCmd.Flags())
	cobra.CheckErr(viper.BindPFlags(sweepCmd.Flags()))
}

func runSweep(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.New("sweep")
	var opts []sim.SweepOption
	if cfg.Workers > 0 {
		opts = append(opts, sim.WithWorkers(cfg.Workers))
	}
	if cfg.Progress > 0 {
		opts = append(opts, sim.WithSimOptions(sim.WithProgress(cfg.Progress)))
	}

	logger.Infof("sweeping %d seeds: %v", cfg.Seeds, cfg)
	report, err := sim.Sweep(ctx, cfg.SimConfig(), cfg.SweepSeeds(), logger, opts...)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, report.String()); err != nil {
		return err
	}
	if unsafe := report.Unsafe(); len(unsafe) > 0 {
		fmt.Fprintf(out, "unsafe seeds: %v\n", unsafe)
	}
	return report.Err()
}
