package search

import (
	"sort"

	"github.com/mihirdhamankar/searchlite/internal/index"
)

// RankedOptions tunes the approximate term-at-a-time optimizations. Both
// are off by default; with both off, TAAT and DAAT return identical
// results for the same query.
type RankedOptions struct {
	// Thresholding drops accumulators scoring below
	// ThresholdFraction of the current maximum after each term.
	// Trades recall for speed and can change the final top-k.
	Thresholding      bool
	ThresholdFraction float64

	// EarlyStop stops consuming terms once the accumulator holds at
	// least EarlyStopMultiplier times k candidates.
	EarlyStop           bool
	EarlyStopMultiplier int
}

// DefaultRankedOptions carries the conventional tuning constants.
func DefaultRankedOptions() RankedOptions {
	return RankedOptions{
		ThresholdFraction:   0.1,
		EarlyStopMultiplier: 2,
	}
}

// Hit is one scored document, still under internal ids.
type Hit struct {
	DocID uint32
	Score float64
}

// EvalTAAT runs term-at-a-time ranked retrieval: one accumulator map,
// filled term by term, then sorted for the top k.
func EvalTAAT(idx *index.Index, terms []string, k int, opts RankedOptions) []Hit {
	if k <= 0 || len(terms) == 0 {
		return nil
	}
	score := newScorer(idx)
	acc := make(map[uint32]float64)
	maxScore := 0.0

	for _, term := range terms {
		list := idx.Lookup(term)
		if list == nil {
			continue
		}
		df := len(list)
		for _, p := range list {
			acc[p.DocID] += score(p.Frequency(), df)
			if acc[p.DocID] > maxScore {
				maxScore = acc[p.DocID]
			}
		}

		if opts.Thresholding && maxScore > 0 {
			cutoff := maxScore * opts.ThresholdFraction
			for docID, s := range acc {
				if s < cutoff {
					delete(acc, docID)
				}
			}
		}
		if opts.EarlyStop && len(acc) >= opts.EarlyStopMultiplier*k {
			break
		}
	}

	hits := make([]Hit, 0, len(acc))
	for docID, s := range acc {
		hits = append(hits, Hit{DocID: docID, Score: s})
	}
	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// sortHits orders by score descending, document id ascending on ties.
func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocID < hits[j].DocID
	})
}
