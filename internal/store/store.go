// Package store abstracts how a persisted index is kept: a flat single-file
// blob, an embedded key-value database (bbolt or badger), or a PostgreSQL
// table. The index core only needs the key-value contract below.
package store

import (
	"fmt"

	"github.com/mihirdhamankar/searchlite/pkg/config"
)

// Store is the persistence contract the index core writes through. Get
// returns (nil, nil) for an absent key; absence is valid input for readers,
// not an error.
type Store interface {
	Put(key string, value []byte) error
	Get(key string) ([]byte, error)
	// Iter visits every key with the given prefix. Order is unspecified.
	Iter(prefix string, fn func(key string, value []byte) error) error
	// Flush makes all previous Puts durable.
	Flush() error
	Close() error
}

// Backend names for config and factory selection.
const (
	BackendFile     = "file"
	BackendBolt     = "bolt"
	BackendBadger   = "badger"
	BackendPostgres = "postgres"
)

// Open constructs the backend selected by cfg.Backend.
func Open(cfg config.StoreConfig, pg config.PostgresConfig) (Store, error) {
	switch cfg.Backend {
	case BackendFile, "":
		return OpenFile(cfg.Path)
	case BackendBolt:
		return OpenBolt(cfg.Path)
	case BackendBadger:
		return OpenBadger(cfg.Path)
	case BackendPostgres:
		return OpenPostgres(pg, cfg.Table)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
