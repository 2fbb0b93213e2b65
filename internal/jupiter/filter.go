package jupiter

import "strings"

// MinScoreFilter keeps mints whose organic score meets the threshold.
func MinScoreFilter(minScore float64) func(MintInformation) bool {
	return func(m MintInformation) bool {
		return m.OrganicScore >= minScore
	}
}

// RelaxedScoreFilter keeps mints that meet the threshold, and additionally
// admits mints whose symbol matches the query exactly (case-insensitive)
// at half the threshold. Well-known tickers often score below noisy
// near-duplicates; the exact-symbol rule recovers them without promoting
// a still-ambiguous set to a single winner.
func RelaxedScoreFilter(query string, minScore float64) func(MintInformation) bool {
	strict := MinScoreFilter(minScore)
	return func(m MintInformation) bool {
		if strict(m) {
			return true
		}
		return strings.EqualFold(m.Symbol, query) && m.OrganicScore >= minScore/2
	}
}

// Filter returns the mints that satisfy keep, preserving order.
func Filter(mints []MintInformation, keep func(MintInformation) bool) []MintInformation {
	out := make([]MintInformation, 0, len(mints))
	for _, m := range mints {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}
