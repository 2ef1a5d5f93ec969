// Package indexing builds the image index of a plate data directory.
//
// A build walks the data directory for image files, parses the plate
// coordinates out of every file name and collects one record per file. The
// finished index is written as a flat CSV table only after the whole walk
// has completed, so a failed run never leaves a partial index behind.
package indexing

import (
	"errors"
	"fmt"
	"time"

	"plateindex/internal/logging"
	"plateindex/internal/models"
	"plateindex/pkg/discovery"
	"plateindex/pkg/filename"
	"plateindex/pkg/metrics"
)

// Params holds the index build parameters.
type Params struct {
	// DataDir is the directory walked for image files (data_dir).
	DataDir string

	// OutputFile is the CSV written by Process (output_file).
	OutputFile string

	// Extension selects image files; matching is case-sensitive.
	// Empty means ".TIF".
	Extension string

	// Strict makes the first malformed file name abort the build.
	// Otherwise malformed names are reported in Result.Failures.
	Strict bool
}

// Failure is a file that was discovered but could not be indexed.
type Failure struct {
	Path string
	Err  error
}

// Result is the outcome of a build.
type Result struct {
	Index    *Index
	Failures []Failure
}

// Builder drives the walk and parse steps.
type Builder struct {
	params  *Params
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for progress and skipped files.
func WithLogger(l *logging.Logger) Option {
	return func(b *Builder) { b.logger = logging.OrNop(l) }
}

// WithMetrics records build activity into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(b *Builder) { b.metrics = m }
}

// NewBuilder creates a builder for params.
func NewBuilder(params *Params, opts ...Option) *Builder {
	b := &Builder{
		params: params,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) extension() string {
	if b.params.Extension == "" {
		return ".TIF"
	}
	return b.params.Extension
}

// Build walks the data directory and parses every image file name.
// Walk errors always abort. Malformed names abort only in strict mode.
func (b *Builder) Build() (*Result, error) {
	res := &Result{Index: &Index{}}

	for path, err := range discovery.Walk(b.params.DataDir, b.extension()) {
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", b.params.DataDir, err)
		}
		b.metrics.Discovered()

		fields, err := filename.Parse(path)
		if err != nil {
			if b.params.Strict || !errors.Is(err, filename.ErrFormatMismatch) {
				return nil, err
			}
			b.metrics.Skipped()
			b.logger.Warn("skipping image", "path", path, "error", err)
			res.Failures = append(res.Failures, Failure{Path: path, Err: err})
			continue
		}

		b.metrics.Indexed()
		b.logger.Debug("indexed image", "path", path, "well", fields.WellPosition.String(),
			"field", fields.Field, "channel", fields.Channel)
		res.Index.Records = append(res.Index.Records, models.ImageRecord{
			ImageFields:  fields,
			RelativePath: path,
		})
	}

	return res, nil
}

// Process builds the index and writes it to the output file.
func (b *Builder) Process() (*Result, error) {
	start := time.Now()
	b.logger.Info("building image index", "dataDir", b.params.DataDir, "extension", b.extension(),
		"strict", b.params.Strict)

	res, err := b.process()
	b.metrics.RunFinished(err, time.Since(start))
	if err != nil {
		return nil, err
	}

	b.logger.Info("image index written", "output", b.params.OutputFile, "rows", res.Index.Len(),
		"skipped", len(res.Failures), "elapsed", time.Since(start))
	return res, nil
}

func (b *Builder) process() (*Result, error) {
	if b.params.OutputFile == "" {
		return nil, errors.New("no output file configured")
	}

	res, err := b.Build()
	if err != nil {
		return nil, err
	}

	if err := res.Index.Write(b.params.OutputFile); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}
	return res, nil
}
