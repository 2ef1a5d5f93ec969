package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"plateindex/pkg/config"
	"plateindex/pkg/imageio"
	"plateindex/pkg/indexing"
	"plateindex/pkg/metrics"
	"plateindex/pkg/visualization"
)

func (a *app) runIndex(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		a.cfg.Index.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("output-file") {
		a.cfg.Index.OutputFile, _ = flags.GetString("output-file")
	}
	if flags.Changed("extension") {
		a.cfg.Index.Extension, _ = flags.GetString("extension")
	}
	if flags.Changed("strict") {
		a.cfg.Index.Strict, _ = flags.GetBool("strict")
	}
	if flags.Changed("metrics-file") {
		a.cfg.Output.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	m := metrics.New()
	builder := indexing.NewBuilder(&indexing.Params{
		DataDir:    a.cfg.Index.DataDir,
		OutputFile: a.cfg.Index.OutputFile,
		Extension:  a.cfg.Index.Extension,
		Strict:     a.cfg.Index.Strict,
	}, indexing.WithLogger(a.logger), indexing.WithMetrics(m))

	res, runErr := builder.Process()
	a.writeMetrics(m)
	if runErr != nil {
		return fmt.Errorf("indexing failed: %w", runErr)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d images into %s\n", res.Index.Len(), a.cfg.Index.OutputFile)
	if len(res.Failures) > 0 {
		fmt.Fprintf(out, "Skipped %d files with unexpected names:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(out, "  %s: %v\n", f.Path, f.Err)
		}
	}
	return nil
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	path := a.cfg.Index.OutputFile
	if len(args) == 1 {
		path = args[0]
	}

	loaded, err := indexing.LoadIndex(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d rows\n", path, loaded.Len())
	for i, name := range loaded.Columns {
		fmt.Fprintf(out, "  %-8s %s\n", name, loaded.Kinds[i])
	}

	idx, err := indexing.FromTable(loaded)
	if err != nil {
		// still a valid table, just not an image index
		a.logger.Warn("table is not an image index", "error", err)
		return nil
	}

	summary := idx.Summary()
	fmt.Fprintf(out, "Wells (%d): %s\n", len(summary.Wells), strings.Join(summary.Wells, " "))
	fmt.Fprintf(out, "Fields: %v\n", summary.Fields)
	fmt.Fprintf(out, "Channels: %v\n", summary.Channels)

	if showRows, _ := cmd.Flags().GetBool("rows"); showRows {
		for _, r := range idx.Records {
			fmt.Fprintln(out, strings.Join(r.Values(), "\t"))
		}
	}
	return nil
}

func (a *app) runStretch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("percentile") {
		a.cfg.Stretch.Percentile, _ = flags.GetFloat64("percentile")
	}
	if flags.Changed("format") {
		a.cfg.Stretch.PreviewFormat, _ = flags.GetString("format")
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	outputDir, _ := flags.GetString("output-dir")

	m := metrics.New()
	defer a.writeMetrics(m)

	pixels, err := imageio.Load(args[0])
	if err != nil {
		return err
	}

	stretcher := &visualization.Stretcher{Percentile: a.cfg.Stretch.Percentile}
	stretched, err := stretcher.Apply(pixels)
	m.Stretched(err)
	if err != nil {
		return fmt.Errorf("stretching %s: %w", args[0], err)
	}

	preview := visualization.PreviewName(args[0], outputDir, strings.ToLower(a.cfg.Stretch.PreviewFormat))
	if err := visualization.SavePreview(stretched, preview); err != nil {
		return err
	}

	rows, cols := stretched.Dims()
	a.logger.Debug("stretched image", "path", args[0], "rows", rows, "cols", cols)
	fmt.Fprintf(cmd.OutOrStdout(), "Preview saved to: %s\n", preview)
	return nil
}

func (a *app) writeMetrics(m *metrics.Metrics) {
	if a.cfg.Output.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(a.cfg.Output.MetricsFile); err != nil {
		a.logger.Warn("could not write metrics", "error", err)
	}
}

func (a *app) runConfigInit(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if len(args) == 1 {
		path = args[0]
	}
	if err := config.CreateDefaultConfigFile(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
	return nil
}
