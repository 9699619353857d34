// Package service is the HTTP surface over a loaded index: the search
// endpoint, cache administration, and index stats.
package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mihirdhamankar/searchlite/internal/search"
	"github.com/mihirdhamankar/searchlite/internal/search/cache"
	apperrors "github.com/mihirdhamankar/searchlite/pkg/errors"
	"github.com/mihirdhamankar/searchlite/pkg/logger"
)

// SearchResponse is the /search payload.
type SearchResponse struct {
	Query    string          `json:"query"`
	Strategy string          `json:"strategy,omitempty"`
	Total    int             `json:"total"`
	Results  []search.Result `json:"results"`
	CacheHit bool            `json:"cache_hit"`
}

// Handler serves search requests. cache may be nil when redis is
// disabled or unreachable; requests then always evaluate.
type Handler struct {
	searcher        *search.Searcher
	cache           *cache.QueryCache
	defaultK        int
	maxK            int
	defaultStrategy search.Strategy
	logger          *slog.Logger
}

func NewHandler(s *search.Searcher, queryCache *cache.QueryCache, defaultK, maxK int, defaultStrategy search.Strategy) *Handler {
	return &Handler{
		searcher:        s,
		cache:           queryCache,
		defaultK:        defaultK,
		maxK:            maxK,
		defaultStrategy: defaultStrategy,
		logger:          logger.WithComponent("search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	k := h.defaultK
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		if parsed > h.maxK {
			parsed = h.maxK
		}
		k = parsed
	}

	strategy := h.defaultStrategy
	if param := r.URL.Query().Get("strategy"); param != "" {
		parsed, err := search.ParseStrategy(param)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "strategy must be taat or daat")
			return
		}
		strategy = parsed
	}

	var (
		results  []search.Result
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		results, cacheHit, err = h.cache.GetOrCompute(ctx, query, k, strategy, func() ([]search.Result, error) {
			return h.searcher.Search(ctx, query, k, strategy)
		})
	} else {
		results, err = h.searcher.Search(ctx, query, k, strategy)
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Error("search failed", "query", query, "error", err)
		}
		h.writeError(w, status, err.Error())
		return
	}

	log.Info("search completed",
		"query", query,
		"returned", len(results),
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	if results == nil {
		results = []search.Result{}
	}
	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:    query,
		Strategy: string(strategy),
		Total:    len(results),
		Results:  results,
		CacheHit: cacheHit,
	})
}

// Stats reports the loaded index's identity and sizes.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	idx := h.searcher.Index()
	opts := idx.Options()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"mode":         opts.Mode.String(),
		"compression":  opts.Compression.String(),
		"optimization": opts.Optimization.String(),
		"documents":    idx.N(),
		"terms":        idx.TermCount(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":   hits,
		"misses": misses,
		"total":  hits + misses,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
