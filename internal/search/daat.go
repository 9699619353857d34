package search

import (
	"container/heap"

	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/postings"
)

// EvalDAAT runs document-at-a-time ranked retrieval: a multi-way merge
// over the terms' posting lists by document id, scoring each document
// completely before moving on, with a fixed-size min-heap holding the
// current top k.
func EvalDAAT(idx *index.Index, terms []string, k int) []Hit {
	if k <= 0 || len(terms) == 0 {
		return nil
	}
	score := newScorer(idx)

	type cursor struct {
		list postings.List
		df   int
		pos  int
	}
	cursors := make([]*cursor, 0, len(terms))
	for _, term := range terms {
		list := idx.Lookup(term)
		if list == nil {
			continue
		}
		cursors = append(cursors, &cursor{list: list, df: len(list)})
	}
	if len(cursors) == 0 {
		return nil
	}

	top := &topK{limit: k}
	heap.Init(top)

	for {
		// Next document is the smallest id any cursor points at.
		next := uint32(0)
		found := false
		for _, c := range cursors {
			if c.pos >= len(c.list) {
				continue
			}
			if id := c.list[c.pos].DocID; !found || id < next {
				next = id
				found = true
			}
		}
		if !found {
			break
		}

		total := 0.0
		for _, c := range cursors {
			if c.pos < len(c.list) && c.list[c.pos].DocID == next {
				total += score(c.list[c.pos].Frequency(), c.df)
				c.pos++
			}
		}
		top.offer(Hit{DocID: next, Score: total})
	}

	hits := make([]Hit, len(top.hits))
	copy(hits, top.hits)
	sortHits(hits)
	return hits
}

// topK is a min-heap of at most limit hits, ordered so the weakest hit
// (lowest score, highest document id on ties) sits at the root and is the
// first evicted.
type topK struct {
	hits  []Hit
	limit int
}

func (t *topK) Len() int { return len(t.hits) }

func (t *topK) Less(i, j int) bool {
	if t.hits[i].Score != t.hits[j].Score {
		return t.hits[i].Score < t.hits[j].Score
	}
	return t.hits[i].DocID > t.hits[j].DocID
}

func (t *topK) Swap(i, j int) { t.hits[i], t.hits[j] = t.hits[j], t.hits[i] }

func (t *topK) Push(x any) { t.hits = append(t.hits, x.(Hit)) }

func (t *topK) Pop() any {
	last := t.hits[len(t.hits)-1]
	t.hits = t.hits[:len(t.hits)-1]
	return last
}

func (t *topK) offer(h Hit) {
	if len(t.hits) < t.limit {
		heap.Push(t, h)
		return
	}
	root := t.hits[0]
	if h.Score > root.Score || (h.Score == root.Score && h.DocID < root.DocID) {
		t.hits[0] = h
		heap.Fix(t, 0)
	}
}
