// Package search evaluates queries against a built index: boolean
// expression trees in boolean mode, ranked term lists in tf and tf-idf
// modes with a choice of term-at-a-time or document-at-a-time order.
package search

import (
	"fmt"

	"github.com/mihirdhamankar/searchlite/internal/index"
	"github.com/mihirdhamankar/searchlite/internal/postings"
	"github.com/mihirdhamankar/searchlite/internal/search/parser"
)

// EvalBoolean evaluates a parsed expression tree and returns the matching
// internal document ids in ascending order. Unknown terms contribute empty
// sets, never errors.
func EvalBoolean(idx *index.Index, node parser.Node) ([]uint32, error) {
	switch n := node.(type) {
	case parser.Term:
		return idx.Lookup(n.Value).DocIDs(), nil
	case parser.Phrase:
		return evalPhrase(idx, n.Terms), nil
	case parser.And:
		return evalAnd(idx, n)
	case parser.Or:
		left, err := EvalBoolean(idx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := EvalBoolean(idx, n.Right)
		if err != nil {
			return nil, err
		}
		return unionSorted(left, right), nil
	case parser.Not:
		inner, err := EvalBoolean(idx, n.Expr)
		if err != nil {
			return nil, err
		}
		return complement(inner, idx.N()), nil
	default:
		return nil, fmt.Errorf("unknown query node %T", node)
	}
}

// evalAnd intersects the two operands. When both are plain terms and the
// index carries skip pointers, the skip-accelerated path is used.
func evalAnd(idx *index.Index, n parser.And) ([]uint32, error) {
	lt, lok := n.Left.(parser.Term)
	rt, rok := n.Right.(parser.Term)
	if lok && rok {
		la, lb := idx.Lookup(lt.Value), idx.Lookup(rt.Value)
		sa, sb := idx.Skips(lt.Value), idx.Skips(rt.Value)
		if sa != nil || sb != nil {
			return postings.IntersectWithSkips(la, lb, sa, sb), nil
		}
	}

	left, err := EvalBoolean(idx, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := EvalBoolean(idx, n.Right)
	if err != nil {
		return nil, err
	}
	return intersectSorted(left, right), nil
}

// evalPhrase keeps the documents where the terms occur at consecutive
// positions, in order.
func evalPhrase(idx *index.Index, terms []string) []uint32 {
	lists := make([]postings.List, len(terms))
	for i, term := range terms {
		lists[i] = idx.Lookup(term)
		if len(lists[i]) == 0 {
			return nil
		}
	}

	candidates := lists[0].DocIDs()
	for _, list := range lists[1:] {
		candidates = intersectSorted(candidates, list.DocIDs())
		if len(candidates) == 0 {
			return nil
		}
	}

	var matched []uint32
	for _, docID := range candidates {
		if phraseMatchesAt(lists, docID) {
			matched = append(matched, docID)
		}
	}
	return matched
}

// phraseMatchesAt reports whether docID contains the phrase: a run of
// positions p, p+1, ..., p+k-1 across the k term lists.
func phraseMatchesAt(lists []postings.List, docID uint32) bool {
	first, ok := lists[0].Find(docID)
	if !ok {
		return false
	}
	for _, start := range first.Positions {
		run := true
		for offset := 1; offset < len(lists); offset++ {
			p, ok := lists[offset].Find(docID)
			if !ok || !containsPosition(p.Positions, start+uint32(offset)) {
				run = false
				break
			}
		}
		if run {
			return true
		}
	}
	return false
}

func containsPosition(positions []uint32, want uint32) bool {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := (lo + hi) / 2
		if positions[mid] < want {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo < len(positions) && positions[lo] == want
}

func intersectSorted(a, b []uint32) []uint32 {
	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func unionSorted(a, b []uint32) []uint32 {
	out := make([]uint32, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// complement returns every id in [0, n) absent from the sorted input.
func complement(sorted []uint32, n int) []uint32 {
	var out []uint32
	next := 0
	for id := uint32(0); id < uint32(n); id++ {
		if next < len(sorted) && sorted[next] == id {
			next++
			continue
		}
		out = append(out, id)
	}
	return out
}
