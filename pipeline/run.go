package pipeline

import (
	"github.com/yoanbernabeu/counttype/scanner"
	"github.com/yoanbernabeu/counttype/stats"
	"github.com/yoanbernabeu/counttype/store"
	"github.com/yoanbernabeu/counttype/tokenizer"
	"github.com/yoanbernabeu/counttype/vocab"
)

// RunConfig describes one counting run over a directory.
type RunConfig struct {
	Dir          string
	Output       string // snapshot log base name
	Vocab        string // vocabulary dump base name
	Timing       bool
	Scanner      scanner.Options
	MaxLineBytes int
}

// Outputs returns every file a run with this configuration writes: the
// count log, the time log and the vocabulary dump. The time log is listed
// even when timing is off, since an earlier timed run may have left one.
func (c RunConfig) Outputs() []string {
	return []string{
		stats.CountLogPath(c.Output),
		stats.TimeLogPath(c.Output),
		store.DumpPath(c.Vocab),
	}
}

// Prepare validates the directory and opens the run's destinations, in
// that order: a missing directory fails before any output file exists.
// The returned Driver owns a fresh Accumulator and RunLogger, and its scan
// never yields the run's own outputs.
func Prepare(cfg RunConfig, opts ...Option) (*Driver, *stats.RunLogger, error) {
	if err := scanner.Verify(cfg.Dir); err != nil {
		return nil, nil, err
	}

	logger, err := stats.NewRunLogger(stats.Options{
		Base:   cfg.Output,
		Timing: cfg.Timing,
		Store:  store.NewJSONStore(store.DumpPath(cfg.Vocab)),
	})
	if err != nil {
		return nil, nil, err
	}

	scanOpts := cfg.Scanner
	scanOpts.Exclude = append(append([]string(nil), cfg.Scanner.Exclude...), cfg.Outputs()...)

	all := append([]Option{WithTokenizerOptions(tokenizer.WithMaxLineBytes(cfg.MaxLineBytes))}, opts...)
	d := New(scanner.New(cfg.Dir, scanOpts), vocab.New(), logger, all...)
	return d, logger, nil
}
