// Package pipeline runs the vocabulary counting pass: every file yielded by
// an enumerator is tokenized and folded into one Accumulator, and a
// snapshot is recorded at each file boundary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yoanbernabeu/counttype/logging"
	"github.com/yoanbernabeu/counttype/scanner"
	"github.com/yoanbernabeu/counttype/tokenizer"
	"github.com/yoanbernabeu/counttype/vocab"
)

// ErrDone is returned by Run on a Driver that already ran. A new run needs
// a fresh Driver, Accumulator and logger.
var ErrDone = errors.New("pipeline: driver already ran")

// Enumerator yields the files of a run, in processing order.
type Enumerator interface {
	Scan() (files []string, skipped []scanner.Skipped, err error)
}

// BoundaryLogger records the per-file snapshots and the final dump.
// *stats.RunLogger implements it.
type BoundaryLogger interface {
	RecordBoundary(typeCount int) error
	Finalize(ctx context.Context, counts map[string]int) error
	Close() error
}

// State is the lifecycle of a Driver.
type State int

const (
	Running State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "running"
}

// Boundary describes the totals right after one file was folded in.
type Boundary struct {
	Index    int    // 0-based position in the run
	Total    int    // number of files in the run
	Path     string
	Words    int // tokens read from this file
	NewTypes int // types first seen in this file
	Types    int // cumulative
	Err      error
}

// RunStats summarizes a finished run.
type RunStats struct {
	FilesProcessed int
	FilesFailed    int
	FilesSkipped   int
	Types          int
	Words          int
	Duration       time.Duration
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used for per-file errors and skips.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.log = l }
}

// WithBoundaryHook registers fn to be called after every recorded boundary.
func WithBoundaryHook(fn func(Boundary)) Option {
	return func(d *Driver) { d.onBoundary = fn }
}

// WithTokenizerOptions passes options to every Tokenizer the driver opens.
func WithTokenizerOptions(opts ...tokenizer.Option) Option {
	return func(d *Driver) { d.tokenizerOpts = opts }
}

// Driver owns one run. It is single use and not safe for concurrent use.
type Driver struct {
	source Enumerator
	acc    *vocab.Accumulator
	logger BoundaryLogger

	log           *slog.Logger
	onBoundary    func(Boundary)
	tokenizerOpts []tokenizer.Option
	state         State
}

// New creates a Driver in the Running state.
func New(source Enumerator, acc *vocab.Accumulator, logger BoundaryLogger, opts ...Option) *Driver {
	d := &Driver{
		source: source,
		acc:    acc,
		logger: logger,
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// State returns the current lifecycle state.
func (d *Driver) State() State { return d.state }

// Run processes every file of the enumerator, then finalizes the logger.
// Per-file read errors are logged and counted; the file still gets its
// boundary. Logger errors abort the run. The context is checked between
// files only.
func (d *Driver) Run(ctx context.Context) (*RunStats, error) {
	if d.state == Done {
		return nil, ErrDone
	}
	defer func() { d.state = Done }()

	start := time.Now()
	stats := &RunStats{}

	files, skipped, err := d.source.Scan()
	if err != nil {
		_ = d.logger.Close()
		return nil, fmt.Errorf("failed to scan files: %w", err)
	}
	stats.FilesSkipped = len(skipped)
	for _, skip := range skipped {
		d.log.Debug("skipped", "path", skip.Path, "reason", string(skip.Reason))
	}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			_ = d.logger.Close()
			return d.finish(stats, start), err
		}

		b := d.fold(path)
		b.Index = i
		b.Total = len(files)
		if b.Err != nil {
			d.log.Warn("failed to read file", "path", path, "error", b.Err)
			stats.FilesFailed++
		}

		if err := d.logger.RecordBoundary(b.Types); err != nil {
			_ = d.logger.Close()
			return d.finish(stats, start), fmt.Errorf("failed to record boundary for %s: %w", path, err)
		}
		stats.FilesProcessed++
		if d.onBoundary != nil {
			d.onBoundary(b)
		}
	}

	if err := d.logger.Finalize(ctx, d.acc.View()); err != nil {
		return d.finish(stats, start), fmt.Errorf("failed to write vocabulary: %w", err)
	}
	return d.finish(stats, start), nil
}

// fold tokenizes path into the accumulator. A read error truncates the
// file's contribution; tokens already folded stay counted.
func (d *Driver) fold(path string) Boundary {
	b := Boundary{Path: path}

	tok := tokenizer.Open(path, d.tokenizerOpts...)
	defer tok.Close()
	for tok.Next() {
		b.Words++
		if d.acc.Observe(tok.Token()) {
			b.NewTypes++
		}
	}
	b.Err = tok.Err()
	b.Types = d.acc.TypeCount()
	return b
}

func (d *Driver) finish(stats *RunStats, start time.Time) *RunStats {
	stats.Types = d.acc.TypeCount()
	stats.Words = d.acc.WordCount()
	stats.Duration = time.Since(start)
	return stats
}
