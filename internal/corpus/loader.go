// Package corpus reads JSON-lines document files and tokenizes them into
// the index's ingest shape.
package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mihirdhamankar/searchlite/internal/index"
)

// Record is one corpus line: an external document id plus its text
// fields. Title and content are tokenized together, title first.
type Record struct {
	DocID   string `json:"doc_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// LoadFile reads a JSON-lines corpus from disk. Documents keep their file
// order, so internal ids follow line numbers.
func LoadFile(path string) ([]index.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads records from r and tokenizes them in parallel, preserving
// input order.
func Load(r io.Reader) ([]index.Document, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", line, err)
		}
		if rec.DocID == "" {
			return nil, fmt.Errorf("corpus line %d: missing doc_id", line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	docs := make([]index.Document, len(records))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rec := range records {
		g.Go(func() error {
			docs[i] = index.FromText(rec.DocID, rec.Title+" "+rec.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
