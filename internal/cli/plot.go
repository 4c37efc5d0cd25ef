package cli

import (
	"fmt"
	"os"

	"github.com/relab/synod/metrics"
	"github.com/relab/synod/metrics/plotting"
	"github.com/spf13/cobra"
)

var plotFormat string

var plotCmd = &cobra.Command{
	Use:   "plot <trace file> <image file>",
	Short: "Plot the epochs recorded in a trace.",
	Long: `The plot command reads a trace written by 'synod run --trace' and plots the
epoch of every attempt of each proposer against the tick at which it started.
The image format is chosen from the extension of the image file.`,
	Args: cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		return plotTrace(args[0], plotFormat, args[1])
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVar(&plotFormat, "format", "proto", "format of the trace file (proto or json)")
}

func plotTrace(tracePath, format, imagePath string) error {
	f, err := metrics.ParseFormat(format)
	if err != nil {
		return err
	}
	file, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer file.Close()

	p := plotting.NewEpochPlot()
	if err := plotting.ReadTrace(file, f, p); err != nil {
		return err
	}
	return p.Save(imagePath)
}
