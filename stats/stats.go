package stats

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultOutput is the default base name of the snapshot logs.
const DefaultOutput = "count_type"

// CountLogExt is appended to the base name for the type-count log.
const CountLogExt = ".log"

// TimeLogSuffix is appended to the base name for the elapsed-time log.
const TimeLogSuffix = "_time.log"

// TimePrecision is the number of decimals written for elapsed seconds.
const TimePrecision = 6

var (
	// ErrLocked is returned when another run holds the snapshot log.
	ErrLocked = errors.New("destination is in use by another run")

	// ErrFinalized is returned when a RunLogger is used after Finalize or Close.
	ErrFinalized = errors.New("run logger already finalized")
)

// DestinationError reports a failure to open or write one of the run's
// output files. It is always fatal for the run.
type DestinationError struct {
	Dest string // file name of the failing destination
	Op   string // open | lock | write | close
	Err  error
}

func (e *DestinationError) Error() string {
	return fmt.Sprintf("stats: %s %s: %v", e.Op, e.Dest, e.Err)
}

func (e *DestinationError) Unwrap() error { return e.Err }

// Summary is the aggregated view of a run's snapshot logs.
type Summary struct {
	Files        int      `json:"files"`
	FinalTypes   int      `json:"final_types"`
	TypesPerFile float64  `json:"types_per_file"`
	MaxGrowth    int      `json:"max_growth"`
	MaxGrowthAt  int      `json:"max_growth_at"` // file index, -1 when empty
	Stalled      int      `json:"stalled_files"` // files that added no new type
	TotalSeconds *float64 `json:"total_seconds"`
	FilesPerSec  *float64 `json:"files_per_second"`
}

// Row is one file boundary in the history view.
type Row struct {
	Index   int      `json:"index"`
	Types   int      `json:"types"`
	Growth  int      `json:"growth"`
	Seconds *float64 `json:"seconds,omitempty"`
}

// CountLogPath returns the type-count log path for base.
func CountLogPath(base string) string {
	return strings.TrimSuffix(base, CountLogExt) + CountLogExt
}

// TimeLogPath returns the elapsed-time log path for base.
func TimeLogPath(base string) string {
	return strings.TrimSuffix(base, CountLogExt) + TimeLogSuffix
}
