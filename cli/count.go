package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/logging"
	"github.com/yoanbernabeu/counttype/pipeline"
	"github.com/yoanbernabeu/counttype/scanner"
	"github.com/yoanbernabeu/counttype/stats"
)

var (
	countTime        bool
	countOutput      string
	countVocab       string
	countIgnore      []string
	countNoGitignore bool
	countProgress    bool
	countWatch       bool
	countQuiet       bool
)

var countCmd = &cobra.Command{
	Use:   "count <directory>",
	Short: "Count token types across the text files of a directory",
	Long: `Count the token types of every text file directly inside <directory>.

The command will:
- Skip subdirectories, ignored paths and files whose content is binary
- Read the remaining files in name order and split them on whitespace
- Append the cumulative type count after each file to <output>.log
- With --time, append the cumulative elapsed seconds to <output>_time.log
- Write the final vocabulary (word -> count) to <vocab>.json

Unreadable files are reported and still get a row in the logs. Failing
to write any output stops the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runCount,
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.Flags().BoolVar(&countTime, "time", false, "Also record cumulative elapsed time in <output>_time.log")
	countCmd.Flags().StringVarP(&countOutput, "output", "o", stats.DefaultOutput, "Base name of the snapshot logs")
	countCmd.Flags().StringVar(&countVocab, "vocab", "vocabulary", "Base name of the vocabulary dump")
	countCmd.Flags().StringArrayVar(&countIgnore, "ignore", nil, "Gitignore-style pattern to skip (can be repeated)")
	countCmd.Flags().BoolVar(&countNoGitignore, "no-gitignore", false, "Do not honor the directory's .gitignore")
	countCmd.Flags().BoolVar(&countProgress, "progress", false, "Show a progress bar (default: when stderr is a terminal)")
	countCmd.Flags().BoolVarP(&countWatch, "watch", "w", false, "Recount from scratch whenever the directory changes")
	countCmd.Flags().BoolVarP(&countQuiet, "quiet", "q", false, "Do not print the run summary")
}

func runCount(cmd *cobra.Command, args []string) error {
	runCfg := runConfigFromFlags(cmd, args[0])
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if countWatch {
		return watchAndCount(ctx, cmd, runCfg)
	}
	_, err := countOnce(ctx, cmd, runCfg)
	return err
}

// runConfigFromFlags merges the loaded configuration with the flags the
// user actually set.
func runConfigFromFlags(cmd *cobra.Command, dir string) pipeline.RunConfig {
	runCfg := pipeline.RunConfig{
		Dir:          dir,
		Output:       cfg.Output,
		Vocab:        cfg.Vocab,
		Timing:       cfg.Time,
		MaxLineBytes: cfg.MaxLineBytes,
		Scanner: scanner.Options{
			Ignore:       append([]string(nil), cfg.Ignore...),
			UseGitignore: cfg.Gitignore,
		},
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		runCfg.Output = countOutput
	}
	if flags.Changed("vocab") {
		runCfg.Vocab = countVocab
	}
	if flags.Changed("time") {
		runCfg.Timing = countTime
	}
	if flags.Changed("ignore") {
		runCfg.Scanner.Ignore = append(runCfg.Scanner.Ignore, countIgnore...)
	}
	if flags.Changed("no-gitignore") {
		runCfg.Scanner.UseGitignore = !countNoGitignore
	}
	return runCfg
}

// countOnce performs one complete run with a fresh accumulator and logger.
func countOnce(ctx context.Context, cmd *cobra.Command, runCfg pipeline.RunConfig) (*pipeline.RunStats, error) {
	runLog := logging.WithRun(logger).With("dir", runCfg.Dir)
	opts := []pipeline.Option{pipeline.WithLogger(runLog)}

	var bar *progressBar
	if showProgress(cmd) {
		bar = newProgressBar(cmd.ErrOrStderr())
		opts = append(opts, pipeline.WithBoundaryHook(bar.update))
	}

	driver, runLogger, err := pipeline.Prepare(runCfg, opts...)
	if err != nil {
		return nil, err
	}

	res, err := driver.Run(ctx)
	bar.finish()
	if err != nil {
		return res, err
	}

	runLog.Debug("run complete",
		"files", res.FilesProcessed,
		"failed", res.FilesFailed,
		"types", res.Types,
		"words", res.Words,
		"duration", res.Duration)

	if !countQuiet {
		printRunSummary(cmd.OutOrStdout(), res, runLogger)
	}
	return res, nil
}

func showProgress(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("progress") {
		return countProgress
	}
	f, ok := cmd.ErrOrStderr().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printRunSummary renders the end-of-run report using lipgloss styles.
func printRunSummary(w io.Writer, res *pipeline.RunStats, runLogger *stats.RunLogger) {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(18)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	content := headerStyle.Render("counttype run") + "\n\n"
	content += labelStyle.Render("Files processed") + valueStyle.Render(formatInt(res.FilesProcessed)) + "\n"
	if res.FilesFailed > 0 {
		content += labelStyle.Render("Files failed") + valueStyle.Render(formatInt(res.FilesFailed)) + "\n"
	}
	if res.FilesSkipped > 0 {
		content += labelStyle.Render("Files skipped") + valueStyle.Render(formatInt(res.FilesSkipped)) + "\n"
	}
	content += labelStyle.Render("Types") + valueStyle.Render(formatInt(res.Types)) + "\n"
	content += labelStyle.Render("Words") + valueStyle.Render(formatInt(res.Words)) + "\n"
	content += labelStyle.Render("Duration") + valueStyle.Render(res.Duration.Round(time.Millisecond).String()) + "\n\n"

	content += dimStyle.Render("types  "+runLogger.CountLogPath()) + "\n"
	if runLogger.Timing() {
		content += dimStyle.Render("time   "+runLogger.TimeLogPath()) + "\n"
	}
	content += dimStyle.Render("vocab  " + runLogger.DumpPath())

	fmt.Fprintln(w, content)
}
