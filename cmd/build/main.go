package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mihirdhamankar/searchlite/internal/corpus"
	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/store"
	"github.com/mihirdhamankar/searchlite/pkg/config"
	"github.com/mihirdhamankar/searchlite/pkg/logger"
	"github.com/mihirdhamankar/searchlite/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	corpusPath := flag.String("corpus", "", "path to JSON-lines corpus file")
	mode := flag.String("mode", "", "ranking mode override: boolean, tf, tfidf")
	compression := flag.String("compression", "", "compression override: raw, varbyte, deflate")
	optimization := flag.String("optimization", "", "optimization override: none, skip")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if *corpusPath == "" {
		slog.Error("missing required -corpus flag")
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Index.Mode = *mode
	}
	if *compression != "" {
		cfg.Index.Compression = *compression
	}
	if *optimization != "" {
		cfg.Index.Optimization = *optimization
	}

	opts, err := index.OptionsFromConfig(cfg.Index.Mode, cfg.Index.Compression, cfg.Index.Optimization)
	if err != nil {
		slog.Error("invalid index configuration", "error", err)
		os.Exit(1)
	}

	m := metrics.New()
	start := time.Now()

	docs, err := corpus.LoadFile(*corpusPath)
	if err != nil {
		slog.Error("failed to load corpus", "path", *corpusPath, "error", err)
		os.Exit(1)
	}
	slog.Info("corpus loaded", "documents", len(docs), "duration", time.Since(start))

	idx, err := index.Build(opts, docs)
	if err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	s, err := store.Open(cfg.Store, cfg.Postgres)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := idx.Persist(s); err != nil {
		slog.Error("persist failed", "error", err)
		os.Exit(1)
	}

	m.DocsIndexedTotal.Add(float64(idx.N()))
	m.BuildDuration.Observe(time.Since(start).Seconds())
	m.IndexDocuments.Set(float64(idx.N()))
	m.IndexTerms.Set(float64(idx.TermCount()))
	scheme := opts.Compression.String()
	err = s.Iter("term:", func(key string, value []byte) error {
		m.PostingsBytes.WithLabelValues(scheme).Observe(float64(len(value)))
		return nil
	})
	if err != nil {
		slog.Warn("failed to measure persisted records", "error", err)
	}

	slog.Info("index built",
		"mode", opts.Mode.String(),
		"compression", opts.Compression.String(),
		"optimization", opts.Optimization.String(),
		"backend", cfg.Store.Backend,
		"documents", idx.N(),
		"terms", idx.TermCount(),
		"duration", time.Since(start),
	)
}
