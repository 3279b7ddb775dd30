package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stufently/avia-search-bot/internal/fuzzy"
)

func TestRatio(t *testing.T) {
	require.Equal(t, 1.0, fuzzy.Ratio("мая", "мая"))
	require.InDelta(t, 0.667, fuzzy.Ratio("мвя", "мая"), 0.01)
	require.Equal(t, 0.0, fuzzy.Ratio("ъъъ", "май"))
}

// TestBest_tiesKeepEarliest verifies candidate order decides ties, so
// results never depend on map iteration or scoring quirks.
func TestBest_tiesKeepEarliest(t *testing.T) {
	best, score := fuzzy.Best("аа", []string{"аб", "ба", "ав"})

	require.Equal(t, "аб", best)
	require.InDelta(t, 0.5, score, 0.001)
}

func TestBest_empty(t *testing.T) {
	best, score := fuzzy.Best("мая", nil)

	require.Equal(t, "", best)
	require.Equal(t, 0.0, score)
}
