package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/mihirdhamankar/searchlite/internal/index"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

func buildIndex(t *testing.T, opts index.Options, docs []index.Document) *index.Index {
	t.Helper()
	idx, err := index.Build(opts, docs)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return idx
}

func booleanFixture(t *testing.T, opt index.Optimization) *index.Index {
	t.Helper()
	return buildIndex(t,
		index.Options{Mode: index.ModeBoolean, Optimization: opt},
		[]index.Document{
			index.FromText("doc1", "cat dog"),
			index.FromText("doc2", "dog bird"),
			index.FromText("doc3", "cat bird dog"),
		})
}

func TestBooleanOperators(t *testing.T) {
	for _, opt := range []index.Optimization{index.OptNone, index.OptSkipPointers} {
		t.Run(opt.String(), func(t *testing.T) {
			idx := booleanFixture(t, opt)
			s := New(idx, DefaultRankedOptions(), nil)

			tests := []struct {
				query string
				want  []string
			}{
				{"cat AND dog", []string{"doc1", "doc3"}},
				{"cat OR bird", []string{"doc1", "doc2", "doc3"}},
				{"NOT dog", nil},
				{"NOT cat", []string{"doc2"}},
				{"cat AND NOT bird", []string{"doc1"}},
				{"(cat OR bird) AND dog", []string{"doc1", "doc2", "doc3"}},
				{"fish", nil},
				{"cat AND fish", nil},
			}
			for _, tt := range tests {
				results, err := s.Search(context.Background(), tt.query, 0, StrategyTAAT)
				if err != nil {
					t.Fatalf("Search(%q): %v", tt.query, err)
				}
				got := docIDsOf(results)
				if !equalStrings(got, tt.want) {
					t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
				}
			}
		})
	}
}

func TestPhraseQueries(t *testing.T) {
	idx := buildIndex(t, index.Options{Mode: index.ModeBoolean}, []index.Document{
		index.FromText("doc1", "the quick brown fox"),
		index.FromText("doc2", "brown then quick fox"),
	})
	s := New(idx, DefaultRankedOptions(), nil)

	results, err := s.Search(context.Background(), "PHRASE(quick brown)", 0, StrategyTAAT)
	if err != nil {
		t.Fatalf("phrase search: %v", err)
	}
	if got := docIDsOf(results); !equalStrings(got, []string{"doc1"}) {
		t.Errorf("PHRASE(quick brown) = %v, want [doc1]", got)
	}

	results, err = s.Search(context.Background(), "PHRASE(brown quick)", 0, StrategyTAAT)
	if err != nil {
		t.Fatalf("phrase search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("PHRASE(brown quick) = %v, want no matches", docIDsOf(results))
	}
}

func TestBooleanSyntaxErrorSurfaces(t *testing.T) {
	s := New(booleanFixture(t, index.OptNone), DefaultRankedOptions(), nil)
	_, err := s.Search(context.Background(), "cat AND", 0, StrategyTAAT)
	if !errors.Is(err, apperrors.ErrQuerySyntax) {
		t.Fatalf("got %v, want ErrQuerySyntax", err)
	}
}

func TestTFIDFScore(t *testing.T) {
	idx := buildIndex(t, index.Options{Mode: index.ModeTFIDF}, []index.Document{
		index.FromText("doc1", "cat cat mouse"),
		index.FromText("doc2", "mouse bird"),
		index.FromText("doc3", "bird bird"),
	})
	s := New(idx, DefaultRankedOptions(), nil)

	results, err := s.Search(context.Background(), "cat", 10, StrategyTAAT)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != "doc1" {
		t.Fatalf("results = %v, want single hit on doc1", results)
	}
	// cat appears twice in doc1 and in 1 of 3 documents: 2 * ln(3).
	want := 2 * math.Log(3)
	if math.Abs(results[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", results[0].Score, want)
	}
}

func TestTermFreqScore(t *testing.T) {
	idx := buildIndex(t, index.Options{Mode: index.ModeTermFreq}, []index.Document{
		index.FromText("doc1", "cat cat cat"),
		index.FromText("doc2", "cat mouse"),
	})
	s := New(idx, DefaultRankedOptions(), nil)

	results, err := s.Search(context.Background(), "cat", 10, StrategyDAAT)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].DocID != "doc1" || results[0].Score != 3 {
		t.Errorf("first hit = %+v, want doc1 with score 3", results[0])
	}
	if results[1].DocID != "doc2" || results[1].Score != 1 {
		t.Errorf("second hit = %+v, want doc2 with score 1", results[1])
	}
}

func TestRankedTieBreakByDocID(t *testing.T) {
	idx := buildIndex(t, index.Options{Mode: index.ModeTermFreq}, []index.Document{
		index.FromText("doc-b", "cat"),
		index.FromText("doc-a", "cat"),
		index.FromText("doc-c", "cat"),
	})
	for _, strategy := range []Strategy{StrategyTAAT, StrategyDAAT} {
		hits := evalRanked(idx, []string{"cat"}, 2, strategy)
		// Equal scores fall back to ascending internal id: ingest order.
		if len(hits) != 2 || hits[0].DocID != 0 || hits[1].DocID != 1 {
			t.Errorf("%s: hits = %+v, want internal docs [0 1]", strategy, hits)
		}
	}
}

func TestTAATAndDAATAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	vocabulary := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}

	docs := make([]index.Document, 40)
	for i := range docs {
		n := 1 + rng.Intn(12)
		terms := make([]string, n)
		for j := range terms {
			terms[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		docs[i] = index.Document{ID: fmt.Sprintf("doc-%02d", i), Terms: terms}
	}

	for _, mode := range []index.Mode{index.ModeTermFreq, index.ModeTFIDF} {
		idx := buildIndex(t, index.Options{Mode: mode}, docs)
		queries := [][]string{
			{"alpha"},
			{"alpha", "beta"},
			{"gamma", "delta", "epsilon"},
			{"zeta", "alpha", "zeta"},
			{"missing"},
		}
		for _, terms := range queries {
			for _, k := range []int{1, 5, 50} {
				// No approximations: the two orders must agree exactly.
				taat := EvalTAAT(idx, terms, k, RankedOptions{})
				daat := EvalDAAT(idx, terms, k)
				if len(taat) != len(daat) {
					t.Fatalf("mode %s terms %v k=%d: taat %d hits, daat %d",
						mode, terms, k, len(taat), len(daat))
				}
				for i := range taat {
					if taat[i].DocID != daat[i].DocID ||
						math.Abs(taat[i].Score-daat[i].Score) > 1e-9 {
						t.Errorf("mode %s terms %v k=%d hit %d: taat %+v, daat %+v",
							mode, terms, k, i, taat[i], daat[i])
					}
				}
			}
		}
	}
}

func TestTAATEarlyStop(t *testing.T) {
	docs := make([]index.Document, 20)
	for i := range docs {
		terms := []string{"first"}
		if i >= 10 {
			terms = []string{"second"}
		}
		docs[i] = index.Document{ID: fmt.Sprintf("doc-%02d", i), Terms: terms}
	}
	idx := buildIndex(t, index.Options{Mode: index.ModeTermFreq}, docs)

	opts := RankedOptions{EarlyStop: true, EarlyStopMultiplier: 2}
	hits := EvalTAAT(idx, []string{"first", "second"}, 3, opts)

	// 10 accumulators after the first term reaches 2*k=6, so the second
	// term is never processed.
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	for _, hit := range hits {
		if hit.DocID >= 10 {
			t.Errorf("hit on doc %d: second term should not have been scored", hit.DocID)
		}
	}
}

func TestTAATThresholding(t *testing.T) {
	docs := []index.Document{
		{ID: "strong", Terms: repeat("cat", 50)},
		{ID: "weak", Terms: []string{"cat"}},
	}
	idx := buildIndex(t, index.Options{Mode: index.ModeTermFreq}, docs)

	opts := RankedOptions{Thresholding: true, ThresholdFraction: 0.1}
	hits := EvalTAAT(idx, []string{"cat"}, 10, opts)

	// weak scores 1 against a max of 50; the 0.1 cutoff drops it.
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %+v", len(hits), hits)
	}
	if hits[0].DocID != 0 {
		t.Errorf("surviving hit = %+v, want internal doc 0", hits[0])
	}
}

func TestSearchHonorsCancelledContext(t *testing.T) {
	s := New(booleanFixture(t, index.OptNone), DefaultRankedOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Search(ctx, "cat", 0, StrategyTAAT); !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}

func evalRanked(idx *index.Index, terms []string, k int, strategy Strategy) []Hit {
	if strategy == StrategyDAAT {
		return EvalDAAT(idx, terms, k)
	}
	return EvalTAAT(idx, terms, k, RankedOptions{})
}

func docIDsOf(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func repeat(term string, n int) []string {
	terms := make([]string, n)
	for i := range terms {
		terms[i] = term
	}
	return terms
}
