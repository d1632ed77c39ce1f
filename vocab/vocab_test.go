package vocab_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoanbernabeu/counttype/vocab"
)

func TestObserve_FirstObservation(t *testing.T) {
	acc := vocab.New()

	assert.True(t, acc.Observe("a"))
	assert.False(t, acc.Observe("a"))
	assert.True(t, acc.Observe("b"))

	assert.Equal(t, 2, acc.TypeCount())
	assert.Equal(t, 3, acc.WordCount())
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, acc.Counts())
}

func TestObserve_TotalsMatchInput(t *testing.T) {
	alphabet := []string{"x", "y", "z", "X", "x.", "", "日本"}
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 50; round++ {
		acc := vocab.New()
		distinct := map[string]struct{}{}
		n := rng.Intn(200)
		for i := 0; i < n; i++ {
			tok := alphabet[rng.Intn(len(alphabet))]
			_, seen := distinct[tok]
			require.Equal(t, !seen, acc.Observe(tok), "novelty of %q", tok)
			distinct[tok] = struct{}{}
		}

		assert.Equal(t, n, acc.WordCount())
		assert.Equal(t, len(distinct), acc.TypeCount())

		sum := 0
		for tok, c := range acc.Counts() {
			assert.GreaterOrEqual(t, c, 1, "count of %q", tok)
			sum += c
		}
		assert.Equal(t, acc.WordCount(), sum)
	}
}

func TestCounts_ReturnsCopy(t *testing.T) {
	acc := vocab.New()
	acc.Observe("a")

	snapshot := acc.Counts()
	snapshot["a"] = 99
	snapshot["b"] = 1

	assert.Equal(t, 1, acc.Count("a"))
	assert.Equal(t, 0, acc.Count("b"))
	assert.Equal(t, 1, acc.TypeCount())
}

func TestTop_OrderAndLimit(t *testing.T) {
	acc := vocab.New()
	for _, tok := range []string{"b", "a", "c", "a", "b", "d", "a"} {
		acc.Observe(tok)
	}

	assert.Equal(t, []vocab.Frequency{
		{Token: "a", Count: 3},
		{Token: "b", Count: 2},
	}, acc.Top(2))

	all := acc.Top(0)
	require.Len(t, all, 4)
	assert.Equal(t, "c", all[2].Token)
	assert.Equal(t, "d", all[3].Token)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, vocab.Rank(nil, 10))
}
