package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoanbernabeu/counttype/pipeline"
	"github.com/yoanbernabeu/counttype/scanner"
	"github.com/yoanbernabeu/counttype/stats"
	"github.com/yoanbernabeu/counttype/store"
	"github.com/yoanbernabeu/counttype/vocab"
)

// ---- helpers ----

type run struct {
	dir    string
	out    string
	vocab  string
	driver *pipeline.Driver
	logger *stats.RunLogger
}

// corpus writes files (name → content) into a fresh directory.
func corpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func prepare(t *testing.T, dir string, timing bool, opts ...pipeline.Option) *run {
	t.Helper()
	outDir := t.TempDir()
	r := &run{
		dir:   dir,
		out:   filepath.Join(outDir, "count_type"),
		vocab: filepath.Join(outDir, "vocabulary"),
	}
	d, logger, err := pipeline.Prepare(pipeline.RunConfig{
		Dir:          dir,
		Output:       r.out,
		Vocab:        r.vocab,
		Timing:       timing,
		MaxLineBytes: 1024,
	}, opts...)
	require.NoError(t, err)
	r.driver, r.logger = d, logger
	return r
}

func (r *run) dump(t *testing.T) map[string]int {
	t.Helper()
	got, err := store.NewJSONStore(store.DumpPath(r.vocab)).Load(context.Background())
	require.NoError(t, err)
	return got
}

func (r *run) countLog(t *testing.T) []float64 {
	t.Helper()
	series, err := stats.ReadSeries(stats.CountLogPath(r.out))
	require.NoError(t, err)
	return series
}

// staticSource enumerates a fixed list of paths.
type staticSource []string

func (s staticSource) Scan() ([]string, []scanner.Skipped, error) { return s, nil, nil }

// failingLogger fails on the Nth boundary.
type failingLogger struct {
	failAt    int
	calls     int
	closed    bool
	finalized bool
}

var errDisk = errors.New("disk full")

func (l *failingLogger) RecordBoundary(int) error {
	l.calls++
	if l.calls == l.failAt {
		return &stats.DestinationError{Dest: "count_type.log", Op: "write", Err: errDisk}
	}
	return nil
}

func (l *failingLogger) Finalize(context.Context, map[string]int) error {
	l.finalized = true
	return nil
}

func (l *failingLogger) Close() error {
	l.closed = true
	return nil
}

// ---- scenarios ----

func TestRun_SingleFile(t *testing.T) {
	r := prepare(t, corpus(t, map[string]string{"one.txt": "a a b"}), false)

	res, err := r.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 2, "b": 1}, r.dump(t))
	assert.Equal(t, []float64{2}, r.countLog(t))
	assert.Equal(t, 3, res.Words)
	assert.Equal(t, 2, res.Types)
	assert.Equal(t, 1, res.FilesProcessed)
}

func TestRun_TwoFilesInOrder(t *testing.T) {
	r := prepare(t, corpus(t, map[string]string{
		"1.txt": "x y",
		"2.txt": "y z",
	}), false)

	_, err := r.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3}, r.countLog(t))
	assert.Equal(t, map[string]int{"x": 1, "y": 2, "z": 1}, r.dump(t))
}

func TestRun_EmptyDirectory(t *testing.T) {
	r := prepare(t, t.TempDir(), true)

	res, err := r.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, r.countLog(t))
	times, err := stats.ReadSeries(stats.TimeLogPath(r.out))
	require.NoError(t, err)
	assert.Empty(t, times)
	assert.Empty(t, r.dump(t))
	assert.Equal(t, 0, res.FilesProcessed)
}

func TestRun_UnreadableFileMidRun(t *testing.T) {
	dir := corpus(t, map[string]string{"a.txt": "x y", "c.txt": "z"})
	paths := staticSource{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"), // vanished between enumeration and read
		filepath.Join(dir, "c.txt"),
	}

	outDir := t.TempDir()
	logger, err := stats.NewRunLogger(stats.Options{
		Base:  filepath.Join(outDir, "count_type"),
		Store: store.NewJSONStore(filepath.Join(outDir, "vocabulary.json")),
	})
	require.NoError(t, err)

	var failed []pipeline.Boundary
	d := pipeline.New(paths, vocab.New(), logger, pipeline.WithBoundaryHook(func(b pipeline.Boundary) {
		if b.Err != nil {
			failed = append(failed, b)
		}
	}))

	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 3}, logger.Counts())
	assert.Equal(t, 3, res.FilesProcessed)
	assert.Equal(t, 1, res.FilesFailed)
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].Index)
	assert.ErrorIs(t, failed[0].Err, os.ErrNotExist)
}

func TestRun_ZeroTokenFileRepeatsSnapshot(t *testing.T) {
	r := prepare(t, corpus(t, map[string]string{
		"a.txt": "p q",
		"b.txt": "   \n\t\n",
		"c.txt": "",
	}), false)

	_, err := r.driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2, 2}, r.countLog(t))
}

// ---- properties ----

func TestRun_SnapshotsMatchFilesAndNeverDecrease(t *testing.T) {
	r := prepare(t, corpus(t, map[string]string{
		"01.txt": "the quick brown fox",
		"02.txt": "jumps over the lazy dog",
		"03.txt": "the the the",
		"04.txt": "",
		"05.txt": "Dog dog DOG",
	}), true)

	res, err := r.driver.Run(context.Background())
	require.NoError(t, err)

	counts := r.logger.Counts()
	times := r.logger.Times()
	require.Len(t, counts, 5)
	require.Len(t, times, 5)
	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i], counts[i-1])
		assert.GreaterOrEqual(t, times[i], times[i-1])
	}
	assert.Equal(t, res.Types, counts[len(counts)-1])
	assert.Equal(t, 4+5+3+0+3, res.Words)
}

func TestRun_Deterministic(t *testing.T) {
	dir := corpus(t, map[string]string{
		"a.txt": "alpha beta\ngamma alpha",
		"b.txt": "delta beta",
		"c.txt": "epsilon",
	})

	first := prepare(t, dir, false)
	_, err := first.driver.Run(context.Background())
	require.NoError(t, err)

	second := prepare(t, dir, false)
	_, err = second.driver.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.dump(t), second.dump(t))
	assert.Equal(t, first.countLog(t), second.countLog(t))
}

func TestRun_OutputsInsideCorpusNotCounted(t *testing.T) {
	dir := corpus(t, map[string]string{"a.txt": "a a b"})
	out := filepath.Join(dir, "count_type")
	vocabBase := filepath.Join(dir, "vocabulary")

	for i := 0; i < 2; i++ {
		d, _, err := pipeline.Prepare(pipeline.RunConfig{
			Dir:    dir,
			Output: out,
			Vocab:  vocabBase,
			Timing: true,
		})
		require.NoError(t, err)

		res, err := d.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.FilesProcessed, "run %d", i)

		r := &run{out: out, vocab: vocabBase}
		assert.Equal(t, []float64{2}, r.countLog(t), "run %d", i)
		assert.Equal(t, map[string]int{"a": 2, "b": 1}, r.dump(t), "run %d", i)
	}
}

func TestRun_InvalidUTF8FileKeepsDumpLossless(t *testing.T) {
	dir := corpus(t, map[string]string{"a.txt": "hello world"})
	latin1 := filepath.Join(dir, "b.txt")
	bad := []byte("caf\xe9 caf\xe8 hello")
	require.NoError(t, os.WriteFile(latin1, bad, 0o644))

	r := prepare(t, dir, false)
	d := pipeline.New(staticSource{filepath.Join(dir, "a.txt"), latin1}, vocab.New(), r.logger)
	res, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.FilesFailed)
	assert.Equal(t, []float64{2, 2}, r.countLog(t))
	dump := r.dump(t)
	assert.Equal(t, map[string]int{"hello": 1, "world": 1}, dump)
	assert.Len(t, dump, res.Types)
}

// ---- lifecycle and failures ----

func TestRun_SecondRunRejected(t *testing.T) {
	r := prepare(t, corpus(t, map[string]string{"a.txt": "a"}), false)

	assert.Equal(t, pipeline.Running, r.driver.State())
	_, err := r.driver.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, pipeline.Done, r.driver.State())

	_, err = r.driver.Run(context.Background())
	assert.ErrorIs(t, err, pipeline.ErrDone)
}

func TestRun_DestinationErrorAborts(t *testing.T) {
	dir := corpus(t, map[string]string{"a.txt": "a", "b.txt": "b", "c.txt": "c"})
	logger := &failingLogger{failAt: 2}
	d := pipeline.New(scanner.New(dir, scanner.Options{}), vocab.New(), logger)

	res, err := d.Run(context.Background())

	var destErr *stats.DestinationError
	require.ErrorAs(t, err, &destErr)
	assert.Equal(t, "count_type.log", destErr.Dest)
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, 2, logger.calls, "no file is processed after the failure")
	assert.Equal(t, 1, res.FilesProcessed)
	assert.True(t, logger.closed)
	assert.False(t, logger.finalized)
}

func TestRun_CancelledBetweenFiles(t *testing.T) {
	dir := corpus(t, map[string]string{"a.txt": "a", "b.txt": "b"})
	logger := &failingLogger{}
	ctx, cancel := context.WithCancel(context.Background())

	d := pipeline.New(scanner.New(dir, scanner.Options{}), vocab.New(), logger,
		pipeline.WithBoundaryHook(func(pipeline.Boundary) { cancel() }))

	res, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.FilesProcessed)
	assert.False(t, logger.finalized)
	assert.True(t, logger.closed)
}

func TestRun_BoundaryHookTotals(t *testing.T) {
	var seen []pipeline.Boundary
	r := prepare(t, corpus(t, map[string]string{"a.txt": "a b a", "b.txt": "b c"}), false,
		pipeline.WithBoundaryHook(func(b pipeline.Boundary) { seen = append(seen, b) }))

	_, err := r.driver.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, pipeline.Boundary{Index: 0, Total: 2, Path: filepath.Join(r.dir, "a.txt"), Words: 3, NewTypes: 2, Types: 2}, seen[0])
	assert.Equal(t, pipeline.Boundary{Index: 1, Total: 2, Path: filepath.Join(r.dir, "b.txt"), Words: 2, NewTypes: 1, Types: 3}, seen[1])
}

func TestPrepare_MissingDirectoryWritesNothing(t *testing.T) {
	outDir := t.TempDir()
	_, _, err := pipeline.Prepare(pipeline.RunConfig{
		Dir:    filepath.Join(t.TempDir(), "absent"),
		Output: filepath.Join(outDir, "count_type"),
		Vocab:  filepath.Join(outDir, "vocabulary"),
		Timing: true,
	})
	require.ErrorIs(t, err, scanner.ErrNotDirectory)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no output may be produced on configuration errors")
}
