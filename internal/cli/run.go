package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/relab/synod/internal/config"
	"github.com/relab/synod/internal/profiling"
	"github.com/relab/synod/logging"
	"github.com/relab/synod/metrics"
	"github.com/relab/synod/metrics/plotting"
	"github.com/relab/synod/sim"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation.",
	Long: `The run command runs one simulation until every proposer believes that
consensus has been reached, and prints what each proposer believes and which
acceptors accepted the chosen epoch. The run fails if two proposers disagree.

Use '--trace' to record every scheduler event and '--plot' to draw the epochs
that each proposer tried.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, err := config.NewViper()
		checkf("configuration error: %v", err)
		checkf("simulation failed: %v", runSimulation(cmd.Context(), cfg, cmd.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	config.RegisterRunFlags(runCmd.Flags())
	cobra.CheckErr(viper.BindPFlags(runCmd.Flags()))
}

func runSimulation(ctx context.Context, cfg *config.Config, out io.Writer) (err error) {
	stopProfilers, err := startProfiling(cfg)
	if err != nil {
		return fmt.Errorf("failed to start profilers: %w", err)
	}
	defer func() { err = multierr.Append(err, stopProfilers()) }()

	logger := logging.New("sim")
	var opts []sim.Option
	if cfg.Progress > 0 {
		opts = append(opts, sim.WithProgress(cfg.Progress))
	}

	if cfg.Trace != "" {
		tw, terr := openTrace(cfg.Trace, cfg.TraceFormat)
		if terr != nil {
			return terr
		}
		defer func() { err = multierr.Append(err, tw.Close()) }()
		opts = append(opts, sim.WithObserver(tw))
	}

	s, err := sim.New(cfg.SimConfig(), logger, opts...)
	if err != nil {
		return err
	}
	logger.Infof("starting simulation: %v", cfg)
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}
	if err := res.Report(out); err != nil {
		return err
	}

	if cfg.Plot != "" {
		collector := s.Collector()
		p := plotting.NewEpochPlot()
		for _, id := range collector.Proposers() {
			p.AddHistory(id, collector.EpochHistory(id))
		}
		if err := p.Save(cfg.Plot); err != nil {
			return err
		}
	}
	return res.Check()
}

func openTrace(path, format string) (*metrics.TraceWriter, error) {
	f, err := metrics.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	tw, err := metrics.NewTraceWriter(file, f)
	if err != nil {
		file.Close()
		return nil, err
	}
	return tw, nil
}

func startProfiling(cfg *config.Config) (stop func() error, err error) {
	opts := profiling.Options{
		Dir:       cfg.Output,
		CPU:       cfg.CPUProfile,
		Mem:       cfg.MemProfile,
		ExecTrace: cfg.ExecTrace,
		Fgprof:    cfg.FgprofProfile,
	}
	if cfg.Output == "" || !opts.Enabled() {
		return func() error { return nil }, nil
	}
	return profiling.StartProfilers(opts)
}
