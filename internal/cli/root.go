// Package cli implements the synod command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/relab/synod/internal/config"
	"github.com/relab/synod/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "synod",
		Short: "A simulator for single-decree Paxos.",
		Long: `synod simulates single-decree Paxos with proposers and acceptors that run
on a shared logical clock. A scheduler picks one process at random in each
tick, so every seed gives a different interleaving of the processes.

To run a single simulation, use the 'synod run' command.
To check the outcome of many seeds, use the 'synod sweep' command.
The flags of every command can also be set in $HOME/.synod.yaml or with
environment variables such as SYNOD_PROPOSERS.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.synod.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "sets the log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringSlice("log-pkgs", []string{}, "set the log level on a per-package basis.")

	config.RegisterSimFlags(rootCmd.PersistentFlags())
	cobra.CheckErr(viper.BindPFlags(rootCmd.PersistentFlags()))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".synod" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".synod")
	}

	viper.SetEnvPrefix("synod")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	cobra.CheckErr(setLogLevels(viper.GetString("log-level"), viper.GetStringSlice("log-pkgs")))
}

// setLogLevels sets the global log level and the levels given as package:level pairs.
func setLogLevels(level string, packageLevels []string) error {
	if _, err := logging.ParseLevel(level); err != nil {
		return err
	}
	logging.SetLogLevel(level)
	for _, packageLevel := range packageLevels {
		parts := strings.Split(packageLevel, ":")
		if len(parts) != 2 {
			return fmt.Errorf("log-pkgs flag must be a comma-separated list of package:level strings, got %q", packageLevel)
		}
		if _, err := logging.ParseLevel(parts[1]); err != nil {
			return err
		}
		logging.SetPackageLogLevel(parts[0], parts[1])
	}
	return nil
}
