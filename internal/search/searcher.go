package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/search/parser"
	"github.com/mihirdhamankar/searchlite/internal/tokenizer"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
	"github.com/mihirdhamankar/searchlite/pkg/logger"
	"github.com/mihirdhamankar/searchlite/pkg/metrics"
)

// Strategy selects the ranked evaluation order.
type Strategy string

const (
	StrategyTAAT Strategy = "taat"
	StrategyDAAT Strategy = "daat"
)

// ParseStrategy maps a request parameter to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "taat", "":
		return StrategyTAAT, nil
	case "daat":
		return StrategyDAAT, nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", apperrors.ErrConfiguration, s)
	}
}

// Result is one query hit under external document ids. Score is zero in
// boolean mode.
type Result struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score,omitempty"`
}

// Searcher answers queries against one loaded index. The index is frozen,
// so a single Searcher is safe for concurrent use.
type Searcher struct {
	idx     *index.Index
	ranked  RankedOptions
	metrics *metrics.Metrics
	log     *slog.Logger
}

// New wraps a built or loaded index. metrics may be nil.
func New(idx *index.Index, ranked RankedOptions, m *metrics.Metrics) *Searcher {
	return &Searcher{
		idx:     idx,
		ranked:  ranked,
		metrics: m,
		log:     logger.WithComponent("searcher"),
	}
}

// Index exposes the underlying index for stats endpoints.
func (s *Searcher) Index() *index.Index {
	return s.idx
}

// Search evaluates a query string. In boolean mode the query is parsed as
// a boolean expression; in ranked modes it is tokenized into a term list
// and evaluated with the requested strategy.
func (s *Searcher) Search(ctx context.Context, query string, k int, strategy Strategy) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrTimeout, err)
	}
	start := time.Now()

	var (
		results []Result
		err     error
	)
	if s.idx.Options().Mode.Ranked() {
		results, err = s.searchRanked(query, k, strategy)
	} else {
		results, err = s.searchBoolean(query, k)
	}
	if err != nil {
		s.observe(strategy, "error", start, 0)
		return nil, err
	}

	s.observe(strategy, "success", start, len(results))
	s.log.Debug("query evaluated",
		"mode", s.idx.Options().Mode.String(),
		"strategy", string(strategy),
		"hits", len(results),
		"duration", time.Since(start))
	return results, nil
}

func (s *Searcher) searchBoolean(query string, k int) ([]Result, error) {
	node, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	docIDs, err := EvalBoolean(s.idx, normalizeNode(node))
	if err != nil {
		return nil, err
	}
	if k > 0 && len(docIDs) > k {
		docIDs = docIDs[:k]
	}
	results := make([]Result, 0, len(docIDs))
	for _, id := range docIDs {
		external, ok := s.idx.ExternalID(id)
		if !ok {
			return nil, fmt.Errorf("internal document id %d has no external id", id)
		}
		results = append(results, Result{DocID: external})
	}
	return results, nil
}

func (s *Searcher) searchRanked(query string, k int, strategy Strategy) ([]Result, error) {
	terms := tokenizer.Terms(query)
	var hits []Hit
	switch strategy {
	case StrategyDAAT:
		hits = EvalDAAT(s.idx, terms, k)
	default:
		hits = EvalTAAT(s.idx, terms, k, s.ranked)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		external, ok := s.idx.ExternalID(hit.DocID)
		if !ok {
			return nil, fmt.Errorf("internal document id %d has no external id", hit.DocID)
		}
		results = append(results, Result{DocID: external, Score: hit.Score})
	}
	return results, nil
}

// normalizeNode stems query leaves so they match the document pipeline.
func normalizeNode(node parser.Node) parser.Node {
	switch n := node.(type) {
	case parser.Term:
		return parser.Term{Value: tokenizer.Normalize(n.Value)}
	case parser.Phrase:
		terms := make([]string, len(n.Terms))
		for i, t := range n.Terms {
			terms[i] = tokenizer.Normalize(t)
		}
		return parser.Phrase{Terms: terms}
	case parser.And:
		return parser.And{Left: normalizeNode(n.Left), Right: normalizeNode(n.Right)}
	case parser.Or:
		return parser.Or{Left: normalizeNode(n.Left), Right: normalizeNode(n.Right)}
	case parser.Not:
		return parser.Not{Expr: normalizeNode(n.Expr)}
	default:
		return node
	}
}

func (s *Searcher) observe(strategy Strategy, outcome string, start time.Time, hits int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(string(strategy), outcome).Inc()
	s.metrics.SearchLatency.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	if outcome == "success" {
		s.metrics.SearchResultsCount.Observe(float64(hits))
	}
}
