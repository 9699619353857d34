// Package index builds, persists, and loads the inverted index. A built
// index maps each term to a posting list of (document, positions) pairs;
// document frequencies are derived from position counts and never stored.
package index

import (
	"fmt"
	"sort"

	"github.com/mihirdhamankar/searchlite/internal/postings"
	"github.com/mihirdhamankar/searchlite/internal/tokenizer"
)

// Document is one unit of ingest: an external identifier and its
// normalised term stream, in order.
type Document struct {
	ID    string
	Terms []string
}

// FromText tokenizes raw text into a Document.
func FromText(id, text string) Document {
	return Document{ID: id, Terms: tokenizer.Terms(text)}
}

type termEntry struct {
	list  postings.List
	skips postings.SkipList
}

// Index is an immutable in-memory inverted index. Internal document ids
// are dense uint32s assigned in ingest order; external string ids are
// kept in a side table.
type Index struct {
	opts    Options
	terms   map[string]*termEntry
	docIDs  []string
	idTable map[string]uint32
}

// Build constructs an index over docs with the given options. Duplicate
// external ids are rejected.
func Build(opts Options, docs []Document) (*Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	idx := &Index{
		opts:    opts,
		terms:   make(map[string]*termEntry),
		idTable: make(map[string]uint32, len(docs)),
	}
	builders := make(map[string]*postings.Builder)

	for _, doc := range docs {
		if _, dup := idx.idTable[doc.ID]; dup {
			return nil, fmt.Errorf("duplicate document id %q", doc.ID)
		}
		internal := uint32(len(idx.docIDs))
		idx.idTable[doc.ID] = internal
		idx.docIDs = append(idx.docIDs, doc.ID)

		byTerm := make(map[string][]uint32)
		for pos, term := range doc.Terms {
			byTerm[term] = append(byTerm[term], uint32(pos))
		}

		terms := make([]string, 0, len(byTerm))
		for term := range byTerm {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		for _, term := range terms {
			b := builders[term]
			if b == nil {
				b = &postings.Builder{}
				builders[term] = b
			}
			if err := b.Add(internal, byTerm[term]); err != nil {
				return nil, fmt.Errorf("term %q: %w", term, err)
			}
		}
	}

	for term, b := range builders {
		entry := &termEntry{list: b.Freeze()}
		if opts.Optimization == OptSkipPointers {
			entry.skips = postings.BuildSkips(entry.list)
		}
		idx.terms[term] = entry
	}
	return idx, nil
}

// Options returns the identity tuple the index was built with.
func (idx *Index) Options() Options {
	return idx.opts
}

// N is the number of indexed documents.
func (idx *Index) N() int {
	return len(idx.docIDs)
}

// TermCount is the number of distinct terms.
func (idx *Index) TermCount() int {
	return len(idx.terms)
}

// Lookup returns the posting list for a term, or nil when the term is
// absent. Absence is not an error.
func (idx *Index) Lookup(term string) postings.List {
	entry := idx.terms[term]
	if entry == nil {
		return nil
	}
	return entry.list
}

// Skips returns the skip pointers for a term, nil when the index was not
// built with skip pointers or the list is too short to carry any.
func (idx *Index) Skips(term string) postings.SkipList {
	entry := idx.terms[term]
	if entry == nil {
		return nil
	}
	return entry.skips
}

// DocFreq is the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	entry := idx.terms[term]
	if entry == nil {
		return 0
	}
	return len(entry.list)
}

// ExternalID translates an internal document id back to the ingest-time
// identifier.
func (idx *Index) ExternalID(internal uint32) (string, bool) {
	if int(internal) >= len(idx.docIDs) {
		return "", false
	}
	return idx.docIDs[internal], true
}

// InternalID translates an external identifier to its dense internal id.
func (idx *Index) InternalID(external string) (uint32, bool) {
	id, ok := idx.idTable[external]
	return id, ok
}
