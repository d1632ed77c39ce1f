package stats

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ReadSeries reads a single-column numeric log: one value per row, rows
// split on spaces, only the first non-empty field is used. Empty rows are
// skipped.
func ReadSeries(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stats: open %s: %w", path, err)
	}
	defer f.Close()

	series, err := ParseSeries(f)
	if err != nil {
		return series, fmt.Errorf("stats: read %s: %w", path, err)
	}
	return series, nil
}

// ParseSeries is ReadSeries over an arbitrary reader.
func ParseSeries(r io.Reader) ([]float64, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = ' '
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var series []float64
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return series, nil
		}
		if err != nil {
			return series, err
		}
		head := firstField(record)
		if head == "" {
			continue
		}
		v, err := strconv.ParseFloat(head, 64)
		if err != nil {
			line, _ := reader.FieldPos(0)
			return series, fmt.Errorf("line %d: %w", line, err)
		}
		series = append(series, v)
	}
}

func firstField(record []string) string {
	for _, field := range record {
		if f := strings.TrimSpace(field); f != "" {
			return f
		}
	}
	return ""
}

// ReadRun loads the type-count log for base and, when present, its time
// log. A missing time log is not an error: times is nil.
func ReadRun(base string) (counts, times []float64, err error) {
	counts, err = ReadSeries(CountLogPath(base))
	if err != nil {
		return nil, nil, err
	}
	times, err = ReadSeries(TimeLogPath(base))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return counts, nil, nil
		}
		return nil, nil, err
	}
	if len(times) != len(counts) {
		return nil, nil, fmt.Errorf("stats: %s has %d rows but %s has %d",
			TimeLogPath(base), len(times), CountLogPath(base), len(counts))
	}
	return counts, times, nil
}

// Summarize aggregates a type-count series and its optional time series.
// TotalSeconds and FilesPerSec are set only when times is non-nil.
func Summarize(counts, times []float64) Summary {
	s := Summary{Files: len(counts), MaxGrowthAt: -1}

	prev := 0
	for i, c := range counts {
		cur := int(math.Round(c))
		growth := cur - prev
		if growth > s.MaxGrowth || s.MaxGrowthAt < 0 {
			s.MaxGrowth = growth
			s.MaxGrowthAt = i
		}
		if growth == 0 {
			s.Stalled++
		}
		prev = cur
	}
	s.FinalTypes = prev
	if s.Files > 0 {
		s.TypesPerFile = float64(s.FinalTypes) / float64(s.Files)
	}

	if times != nil {
		total := 0.0
		if len(times) > 0 {
			total = times[len(times)-1]
		}
		s.TotalSeconds = &total
		if total > 0 {
			rate := float64(s.Files) / total
			s.FilesPerSec = &rate
		}
	}
	return s
}

// History returns per-file rows in processing order. When limit > 0 and
// the run has more files, rows are sampled evenly and the last file is
// always included.
func History(counts, times []float64, limit int) []Row {
	rows := make([]Row, len(counts))
	prev := 0
	for i, c := range counts {
		cur := int(math.Round(c))
		rows[i] = Row{Index: i, Types: cur, Growth: cur - prev}
		if i < len(times) {
			sec := times[i]
			rows[i].Seconds = &sec
		}
		prev = cur
	}
	if limit <= 0 || len(rows) <= limit {
		return rows
	}

	sampled := make([]Row, 0, limit)
	step := float64(len(rows)-1) / float64(max(limit-1, 1))
	for k := 0; k < limit; k++ {
		idx := int(math.Round(float64(k) * step))
		if limit == 1 {
			idx = len(rows) - 1
		}
		sampled = append(sampled, rows[idx])
	}
	return sampled
}
