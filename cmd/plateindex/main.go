// Command plateindex indexes the image files written by a plate imaging
// instrument and renders contrast stretched previews of single images.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"plateindex/internal/logging"
	"plateindex/pkg/config"
)

var version = "0.1.0-dev"

// app carries state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	logFormat  string

	cfg    *config.Config
	logger *logging.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "plateindex: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "plateindex",
		Short: "Index plate microscopy images by well, field and channel",
		Long: `plateindex walks a data directory of instrument images named like
MFGTMP_220411120001_A01f00d0.TIF, extracts the well column and row, the
field and the channel from every name, and writes the result as a CSV
index with the columns column,row,field,channel,rel_fp.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "YAML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text|json")

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Build the image index of a data directory",
		Args:  cobra.NoArgs,
		RunE:  a.runIndex,
	}
	indexCmd.Flags().String("data-dir", "", "Directory holding the image files (default from config)")
	indexCmd.Flags().String("output-file", "", "CSV file to write (default from config)")
	indexCmd.Flags().String("extension", "", "Case-sensitive image file extension")
	indexCmd.Flags().Bool("strict", false, "Abort on the first malformed file name")
	indexCmd.Flags().String("metrics-file", "", "Write prometheus metrics to this textfile")

	showCmd := &cobra.Command{
		Use:   "show [index.csv]",
		Short: "Load a persisted image index and summarise it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runShow,
	}
	showCmd.Flags().Bool("rows", false, "Print every row")

	stretchCmd := &cobra.Command{
		Use:   "stretch <image>",
		Short: "Contrast stretch one image and write a preview",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runStretch,
	}
	stretchCmd.Flags().String("output-dir", ".", "Directory for the preview image")
	stretchCmd.Flags().Float64("percentile", 0, "Upper percentile of the stretch (default from config)")
	stretchCmd.Flags().String("format", "", "Preview format: png|jpg|tif|bmp (default from config)")

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with default values",
		Args:  cobra.MaximumNArgs(1),
		RunE:  a.runConfigInit,
	}
	configCmd.AddCommand(configInitCmd)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plateindex %s\n", version)
		},
	}

	rootCmd.AddCommand(indexCmd, showCmd, stretchCmd, configCmd, versionCmd)
	return rootCmd
}

// setup loads the configuration and builds the logger before any subcommand runs.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Output.Verbose = true
	}
	if a.logFormat != "" {
		cfg.Output.LogFormat = a.logFormat
	}

	logger, err := logging.New(logging.Options{
		Format:  cfg.Output.LogFormat,
		Verbose: cfg.Output.Verbose,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}
