package search

import (
	"math"

	"github.com/mihirdhamankar/searchlite/internal/index"
)

// scorer computes the per-term contribution of a posting to a document's
// score. Scores exist only for the duration of a query.
type scorer func(frequency, docFreq int) float64

// newScorer returns the scoring function for the index's ranking mode.
// tf scores by raw within-document frequency; tf-idf weights it by
// ln(N/df) with the natural logarithm.
func newScorer(idx *index.Index) scorer {
	switch idx.Options().Mode {
	case index.ModeTFIDF:
		n := float64(idx.N())
		return func(frequency, docFreq int) float64 {
			if docFreq == 0 {
				return 0
			}
			return float64(frequency) * math.Log(n/float64(docFreq))
		}
	default:
		return func(frequency, _ int) float64 {
			return float64(frequency)
		}
	}
}
