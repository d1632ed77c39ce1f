package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/stats"
)

var (
	statsJSON    bool
	statsHistory bool
	statsLimit   int
)

var statsCmd = &cobra.Command{
	Use:   "stats [output]",
	Short: "Summarize the snapshot logs of a run",
	Long: `Display a summary of a previous count run, read back from its
snapshot logs (<output>.log and, when present, <output>_time.log).

The report shows how many files were processed, how many types were
found, how fast the vocabulary grew and, for timed runs, how long the
run took. [output] defaults to the configured output base name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&statsJSON, "json", "j", false, "Output results in JSON format")
	statsCmd.Flags().BoolVar(&statsHistory, "history", false, "Show per-file history breakdown")
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "l", 20, "Max rows shown with --history")
}

func runStats(cmd *cobra.Command, args []string) error {
	base := cfg.Output
	if len(args) == 1 {
		base = args[0]
	}

	counts, times, err := stats.ReadRun(base)
	if err != nil {
		return fmt.Errorf("failed to read snapshot logs: %w", err)
	}

	out := cmd.OutOrStdout()
	summary := stats.Summarize(counts, times)

	if statsJSON {
		return outputStatsJSON(out, summary, counts, times)
	}

	if len(counts) == 0 {
		fmt.Fprintln(out, "No files recorded in "+stats.CountLogPath(base)+".")
		return nil
	}
	return outputStatsHuman(out, base, summary, counts, times)
}

// outputStatsJSON renders the summary (and optional history) as JSON.
func outputStatsJSON(w io.Writer, summary stats.Summary, counts, times []float64) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if !statsHistory {
		return enc.Encode(summary)
	}

	out := struct {
		Summary stats.Summary `json:"summary"`
		History []stats.Row   `json:"history"`
	}{
		Summary: summary,
		History: stats.History(counts, times, statsLimit),
	}
	return enc.Encode(out)
}

// outputStatsHuman renders the summary using lipgloss styles.
func outputStatsHuman(w io.Writer, base string, summary stats.Summary, counts, times []float64) error {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2)

	content := headerStyle.Render("counttype stats: "+base) + "\n\n"

	content += labelStyle.Render("Files") + valueStyle.Render(formatInt(summary.Files)) + "\n"
	content += labelStyle.Render("Types") + valueStyle.Render(formatInt(summary.FinalTypes)) + "\n"
	content += labelStyle.Render("Types per file") + valueStyle.Render(fmt.Sprintf("%.2f", summary.TypesPerFile)) + "\n"
	content += labelStyle.Render("Largest jump") +
		valueStyle.Render(fmt.Sprintf("+%s", formatInt(summary.MaxGrowth))) +
		dimStyle.Render(fmt.Sprintf("  (file #%d)", summary.MaxGrowthAt)) + "\n"
	content += labelStyle.Render("Files adding nothing") + valueStyle.Render(formatInt(summary.Stalled)) + "\n"

	if summary.TotalSeconds != nil {
		content += labelStyle.Render("Total time") + valueStyle.Render(fmt.Sprintf("%.3fs", *summary.TotalSeconds)) + "\n"
	}
	if summary.FilesPerSec != nil {
		content += labelStyle.Render("Throughput") + valueStyle.Render(fmt.Sprintf("%.1f files/s", *summary.FilesPerSec)) + "\n"
	}

	content += "\n" + dimStyle.Render("Growth  ") + valueStyle.Render(sparkline(counts, 48))

	fmt.Fprintln(w, boxStyle.Render(content))

	if statsHistory {
		printHistoryTable(w, counts, times, dimStyle, valueStyle)
	}
	return nil
}

func printHistoryTable(w io.Writer, counts, times []float64, dimStyle, valueStyle lipgloss.Style) {
	rows := stats.History(counts, times, statsLimit)

	colIndex := lipgloss.NewStyle().Width(8)
	colTypes := lipgloss.NewStyle().Width(12)
	colGrowth := lipgloss.NewStyle().Width(10)
	colTime := lipgloss.NewStyle().Width(12)

	header := dimStyle.Render(
		colIndex.Render("File") +
			colTypes.Render("Types") +
			colGrowth.Render("New") +
			colTime.Render("Elapsed"),
	)
	sep := dimStyle.Render(fmt.Sprintf("%-8s%-12s%-10s%-12s", "──────", "──────────", "────────", "──────────"))
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, sep)

	for _, r := range rows {
		elapsed := "-"
		if r.Seconds != nil {
			elapsed = fmt.Sprintf("%.3fs", *r.Seconds)
		}
		row := colIndex.Render(fmt.Sprintf("%d", r.Index)) +
			colTypes.Render(formatInt(r.Types)) +
			colGrowth.Render("+"+formatInt(r.Growth)) +
			colTime.Render(elapsed)
		fmt.Fprintln(w, valueStyle.Render(row))
	}
}

var sparkTicks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws series with block characters, bucketing it down to at
// most width cells by taking each bucket's last value.
func sparkline(series []float64, width int) string {
	if len(series) == 0 || width <= 0 {
		return ""
	}
	cells := min(len(series), width)
	values := make([]float64, cells)
	for i := range values {
		end := (i+1)*len(series)/cells - 1
		values[i] = series[end]
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	for _, v := range values {
		idx := len(sparkTicks) - 1
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkTicks)-1))
		}
		b.WriteRune(sparkTicks[idx])
	}
	return b.String()
}

func formatInt(n int) string {
	if n < 0 {
		return "-" + formatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	result := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
