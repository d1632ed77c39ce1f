package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
	"github.com/yoanbernabeu/counttype/store"
	"github.com/yoanbernabeu/counttype/vocab"
)

var (
	topLimit   int
	topJSON    bool
	topTOON    bool
	topCompact bool
)

// TopEntryJSON is one ranked vocabulary entry in JSON and TOON output.
type TopEntryJSON struct {
	Rank  int     `json:"rank"`
	Token string  `json:"token"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // percent of all words
}

// TopEntryCompactJSON is the minimal form, without rank and share.
type TopEntryCompactJSON struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

var topCmd = &cobra.Command{
	Use:   "top [vocabulary.json]",
	Short: "Show the most frequent words of a vocabulary dump",
	Long: `Rank the words of a vocabulary dump written by count, most frequent
first. Ties are ordered alphabetically.

[vocabulary.json] defaults to the configured vocab base name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTop,
}

func init() {
	rootCmd.AddCommand(topCmd)
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 10, "Number of words to show (0 for all)")
	topCmd.Flags().BoolVarP(&topJSON, "json", "j", false, "Output results in JSON format")
	topCmd.Flags().BoolVarP(&topTOON, "toon", "t", false, "Output results in TOON format")
	topCmd.Flags().BoolVarP(&topCompact, "compact", "c", false, "Output token and count only (requires --json or --toon)")
	topCmd.MarkFlagsMutuallyExclusive("json", "toon")
}

func runTop(cmd *cobra.Command, args []string) error {
	if topCompact && !topJSON && !topTOON {
		return fmt.Errorf("--compact flag requires --json or --toon flag")
	}

	path := store.DumpPath(cfg.Vocab)
	if len(args) == 1 {
		path = args[0]
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	counts, err := store.NewJSONStore(path).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	ranked := vocab.Rank(counts, topLimit)
	out := cmd.OutOrStdout()

	if topJSON || topTOON {
		var output string
		switch {
		case topJSON && topCompact:
			output, err = captureTopCompactJSON(ranked)
		case topJSON:
			output, err = captureTopJSON(ranked, total)
		case topCompact:
			output, err = captureTopCompactTOON(ranked)
		default:
			output, err = captureTopTOON(ranked, total)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(out, output)
		return nil
	}

	if len(ranked) == 0 {
		fmt.Fprintln(out, "Vocabulary is empty.")
		return nil
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "%d types, %s words in %s\n\n", len(counts), formatInt(total), path)
	for i, f := range ranked {
		fmt.Fprintf(&buf, "%4d │ %10s │ %6.2f%% │ %s\n", i+1, formatInt(f.Count), share(f.Count, total), f.Token)
	}
	fmt.Fprint(out, buf.String())
	return nil
}

func share(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func topEntries(ranked []vocab.Frequency, total int) []TopEntryJSON {
	entries := make([]TopEntryJSON, len(ranked))
	for i, f := range ranked {
		entries[i] = TopEntryJSON{
			Rank:  i + 1,
			Token: f.Token,
			Count: f.Count,
			Share: share(f.Count, total),
		}
	}
	return entries
}

func compactEntries(ranked []vocab.Frequency) []TopEntryCompactJSON {
	entries := make([]TopEntryCompactJSON, len(ranked))
	for i, f := range ranked {
		entries[i] = TopEntryCompactJSON{Token: f.Token, Count: f.Count}
	}
	return entries
}

// captureTopJSON returns JSON-encoded entries as a string.
func captureTopJSON(ranked []vocab.Frequency, total int) (string, error) {
	return encodeJSON(topEntries(ranked, total))
}

// captureTopCompactJSON returns compact JSON-encoded entries as a string.
func captureTopCompactJSON(ranked []vocab.Frequency) (string, error) {
	return encodeJSON(compactEntries(ranked))
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// captureTopTOON returns TOON-encoded entries as a string.
func captureTopTOON(ranked []vocab.Frequency, total int) (string, error) {
	output, err := gotoon.Encode(topEntries(ranked, total))
	if err != nil {
		return "", fmt.Errorf("failed to encode TOON: %w", err)
	}
	return output + "\n", nil
}

// captureTopCompactTOON returns compact TOON-encoded entries as a string.
func captureTopCompactTOON(ranked []vocab.Frequency) (string, error) {
	output, err := gotoon.Encode(compactEntries(ranked))
	if err != nil {
		return "", fmt.Errorf("failed to encode TOON: %w", err)
	}
	return output + "\n", nil
}
