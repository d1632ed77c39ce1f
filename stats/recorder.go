package stats

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/yoanbernabeu/counttype/store"
)

// Options configures a RunLogger.
type Options struct {
	// Base is the snapshot log base name, see CountLogPath and TimeLogPath.
	Base string

	// Timing enables the elapsed-time log.
	Timing bool

	// Store receives the vocabulary dump on Finalize.
	Store store.VocabularyStore

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// RunLogger owns the snapshot sequences of one run and their on-disk logs.
// The type-count log is locked exclusively for the lifetime of the logger
// so two runs can never interleave lines in the same destination.
type RunLogger struct {
	countPath string
	timePath  string

	countLog *os.File
	timeLog  *os.File
	store    store.VocabularyStore

	now   func() time.Time
	start time.Time

	counts []int
	times  []float64
	line   []byte
	closed bool
}

// NewRunLogger opens (and truncates) the snapshot logs and starts the run
// clock. Any failure is a *DestinationError naming the file.
func NewRunLogger(opts Options) (*RunLogger, error) {
	if opts.Base == "" {
		opts.Base = DefaultOutput
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("stats: no vocabulary store configured")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	l := &RunLogger{
		countPath: CountLogPath(opts.Base),
		store:     opts.Store,
		now:       now,
	}

	countLog, err := openLocked(l.countPath)
	if err != nil {
		return nil, err
	}
	l.countLog = countLog

	if opts.Timing {
		l.timePath = TimeLogPath(opts.Base)
		timeLog, err := os.OpenFile(l.timePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			l.release()
			return nil, &DestinationError{Dest: l.timePath, Op: "open", Err: err}
		}
		l.timeLog = timeLog
	}

	l.start = now()
	return l, nil
}

// openLocked opens path for writing, takes the run lock, and only then
// truncates, so a concurrent run's log is never clobbered.
func openLocked(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &DestinationError{Dest: path, Op: "open", Err: err}
	}
	if err := flockExclusive(f); err != nil {
		f.Close()
		return nil, &DestinationError{Dest: path, Op: "lock", Err: err}
	}
	if err := f.Truncate(0); err != nil {
		_ = funlock(f)
		f.Close()
		return nil, &DestinationError{Dest: path, Op: "open", Err: err}
	}
	return f, nil
}

// CountLogPath returns the type-count log this logger writes.
func (l *RunLogger) CountLogPath() string { return l.countPath }

// TimeLogPath returns the time log, or "" when timing is disabled.
func (l *RunLogger) TimeLogPath() string { return l.timePath }

// DumpPath returns the vocabulary dump destination.
func (l *RunLogger) DumpPath() string { return l.store.Path() }

// Timing reports whether elapsed times are recorded.
func (l *RunLogger) Timing() bool { return l.timePath != "" }

// RecordBoundary appends one snapshot: the cumulative type count after a
// file, and the cumulative elapsed seconds since construction when timing
// is on. Callers must invoke it once per file, in processing order.
func (l *RunLogger) RecordBoundary(typeCount int) error {
	if l.closed {
		return ErrFinalized
	}
	if typeCount < 0 {
		return fmt.Errorf("stats: negative type count %d", typeCount)
	}

	l.line = strconv.AppendInt(l.line[:0], int64(typeCount), 10)
	l.line = append(l.line, '\n')
	if _, err := l.countLog.Write(l.line); err != nil {
		return &DestinationError{Dest: l.countPath, Op: "write", Err: err}
	}
	l.counts = append(l.counts, typeCount)

	if l.timeLog == nil {
		return nil
	}
	elapsed := max(l.now().Sub(l.start).Seconds(), 0)
	l.line = strconv.AppendFloat(l.line[:0], elapsed, 'f', TimePrecision, 64)
	l.line = append(l.line, '\n')
	if _, err := l.timeLog.Write(l.line); err != nil {
		return &DestinationError{Dest: l.timePath, Op: "write", Err: err}
	}
	l.times = append(l.times, elapsed)
	return nil
}

// Counts returns the type-count snapshots recorded so far.
func (l *RunLogger) Counts() []int {
	return append([]int(nil), l.counts...)
}

// Times returns the elapsed-time snapshots, nil when timing is disabled.
func (l *RunLogger) Times() []float64 {
	if l.timePath == "" {
		return nil
	}
	return append([]float64{}, l.times...)
}

// Finalize persists the vocabulary and closes the logs. It must be called
// exactly once, after the last boundary.
func (l *RunLogger) Finalize(ctx context.Context, counts map[string]int) error {
	if l.closed {
		return ErrFinalized
	}
	if err := l.store.Persist(ctx, counts); err != nil {
		l.release()
		return &DestinationError{Dest: l.store.Path(), Op: "write", Err: err}
	}
	return l.release()
}

// Close releases the logs without writing the vocabulary dump.
func (l *RunLogger) Close() error {
	if l.closed {
		return nil
	}
	return l.release()
}

func (l *RunLogger) release() error {
	l.closed = true
	var firstErr error
	if l.timeLog != nil {
		if err := l.timeLog.Close(); err != nil {
			firstErr = &DestinationError{Dest: l.timePath, Op: "close", Err: err}
		}
	}
	if l.countLog != nil {
		_ = funlock(l.countLog)
		if err := l.countLog.Close(); err != nil && firstErr == nil {
			firstErr = &DestinationError{Dest: l.countPath, Op: "close", Err: err}
		}
	}
	return firstErr
}
