// Package vocab holds the running word frequency table of a counting run.
package vocab

import "sort"

// Frequency is one vocabulary entry.
type Frequency struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Accumulator owns the token → count mapping and the running totals.
// It only grows: there is no removal. An Accumulator belongs to one run and
// is not safe for concurrent use.
type Accumulator struct {
	counts map[string]int
	words  int
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{counts: make(map[string]int)}
}

// Observe counts one occurrence of token and reports whether it was the
// first one, i.e. whether the type count advanced.
func (a *Accumulator) Observe(token string) bool {
	a.words++
	n := a.counts[token]
	a.counts[token] = n + 1
	return n == 0
}

// TypeCount returns the number of distinct tokens seen so far.
func (a *Accumulator) TypeCount() int { return len(a.counts) }

// WordCount returns the number of Observe calls so far.
func (a *Accumulator) WordCount() int { return a.words }

// Count returns the occurrences of token, 0 if never observed.
func (a *Accumulator) Count(token string) int { return a.counts[token] }

// Counts returns a copy of the vocabulary.
func (a *Accumulator) Counts() map[string]int {
	out := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

// View returns the live vocabulary without copying it. The map is shared
// with the Accumulator and must not be modified; it is meant for the final
// dump, where a copy would double the run's peak memory.
func (a *Accumulator) View() map[string]int { return a.counts }

// Top returns the n most frequent entries, ties broken by token order.
// n <= 0 returns every entry.
func (a *Accumulator) Top(n int) []Frequency {
	return Rank(a.counts, n)
}

// Rank sorts counts by descending frequency (then ascending token) and
// keeps the first n entries. n <= 0 keeps all of them.
func Rank(counts map[string]int, n int) []Frequency {
	freqs := make([]Frequency, 0, len(counts))
	for token, count := range counts {
		freqs = append(freqs, Frequency{Token: token, Count: count})
	}
	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Count != freqs[j].Count {
			return freqs[i].Count > freqs[j].Count
		}
		return freqs[i].Token < freqs[j].Token
	})
	if n > 0 && len(freqs) > n {
		freqs = freqs[:n]
	}
	return freqs
}
