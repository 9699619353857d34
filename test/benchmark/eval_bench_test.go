package benchmark

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/search"
)

func syntheticIndex(b *testing.B, mode index.Mode, numDocs int) *index.Index {
	b.Helper()
	rng := rand.New(rand.NewSource(99))
	vocabulary := make([]string, 200)
	for i := range vocabulary {
		vocabulary[i] = fmt.Sprintf("term%03d", i)
	}

	docs := make([]index.Document, numDocs)
	for i := range docs {
		n := 5 + rng.Intn(40)
		terms := make([]string, n)
		for j := range terms {
			// Zipf-ish skew: low term ids occur far more often.
			terms[j] = vocabulary[int(rng.ExpFloat64()*20)%len(vocabulary)]
		}
		docs[i] = index.Document{ID: fmt.Sprintf("doc-%06d", i), Terms: terms}
	}

	idx, err := index.Build(index.Options{Mode: mode}, docs)
	if err != nil {
		b.Fatal(err)
	}
	return idx
}

func BenchmarkRankedEvaluation(b *testing.B) {
	idx := syntheticIndex(b, index.ModeTFIDF, 10000)
	queries := [][]string{
		{"term001"},
		{"term001", "term005"},
		{"term001", "term005", "term050", "term120"},
	}

	for qi, terms := range queries {
		b.Run(fmt.Sprintf("taat/terms_%d", len(queries[qi])), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				search.EvalTAAT(idx, terms, 10, search.RankedOptions{})
			}
		})
		b.Run(fmt.Sprintf("daat/terms_%d", len(queries[qi])), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				search.EvalDAAT(idx, terms, 10)
			}
		})
	}
}

func BenchmarkTAATApproximations(b *testing.B) {
	idx := syntheticIndex(b, index.ModeTFIDF, 10000)
	terms := []string{"term001", "term005", "term050", "term120"}

	variants := map[string]search.RankedOptions{
		"exact":     {},
		"threshold": {Thresholding: true, ThresholdFraction: 0.1},
		"earlystop": {EarlyStop: true, EarlyStopMultiplier: 2},
		"both": {
			Thresholding: true, ThresholdFraction: 0.1,
			EarlyStop: true, EarlyStopMultiplier: 2,
		},
	}
	for name, opts := range variants {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				search.EvalTAAT(idx, terms, 10, opts)
			}
		})
	}
}

func BenchmarkBooleanQuery(b *testing.B) {
	idx := syntheticIndex(b, index.ModeBoolean, 10000)
	s := search.New(idx, search.DefaultRankedOptions(), nil)
	queries := []string{
		"term001 AND term005",
		"term001 OR term005",
		"(term001 OR term005) AND NOT term050",
	}
	for _, q := range queries {
		b.Run(q, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Search(context.Background(), q, 0, search.StrategyTAAT); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
