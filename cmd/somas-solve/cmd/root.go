package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/somasolver/somas/pkg/utils"
)

var (
	verbose    bool
	configPath string

	logger utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "somas-solve",
	Short: "Static offset memory allocation for shared tensors",
	Long: `somas-solve assigns non-overlapping byte offsets to a set of tensors
given their lifetime intervals, minimizing peak memory usage.

It runs a portfolio of sorting, fitting, and packing strategies in parallel
and keeps the strategy that produced the smallest upper bound.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml)")

	binName := BinName()
	rootCmd.Example = `  # Solve a tensor lifetime CSV and write the offset table alongside it
  ` + binName + ` solve ./tensors.csv

  # Skip post-placement verification and cap the worker pool
  ` + binName + ` solve ./tensors.csv --verify=false --workers 8`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
