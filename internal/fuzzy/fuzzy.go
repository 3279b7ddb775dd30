// Package fuzzy provides the similarity measure shared by month and
// city matching, so both correct typos the same way.
package fuzzy

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Ratio returns an edit-distance based similarity between a and b in
// [0, 1], where 1 means equal. Comparison is case-sensitive; callers
// lowercase their inputs first.
func Ratio(a, b string) float64 {
	return strutil.Similarity(a, b, metrics.NewLevenshtein())
}

// Best returns the candidate most similar to term along with its
// score. Candidates are scanned in order and ties keep the earliest,
// so callers control precedence by ordering the slice. An empty
// candidate list returns ("", 0).
func Best(term string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if s := Ratio(term, c); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, bestScore
}
