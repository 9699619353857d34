// Package postings holds the posting-list data structures: the build-phase
// accumulator, the frozen read-only list, and skip-pointer support for
// accelerated Boolean intersection.
package postings

// Posting records one term's occurrences in one document. Positions are
// token offsets, strictly increasing; the term frequency is their count.
type Posting struct {
	DocID     uint32
	Positions []uint32
}

// Frequency returns the term frequency in the posting's document.
func (p Posting) Frequency() int {
	return len(p.Positions)
}

// List is all postings for one term, ordered by ascending document id.
// Lists are append-only during build and read-only once frozen; concurrent
// readers need no locking after the freeze.
type List []Posting

// DocIDs returns the sorted document-id sequence of the list.
func (l List) DocIDs() []uint32 {
	ids := make([]uint32, len(l))
	for i, p := range l {
		ids[i] = p.DocID
	}
	return ids
}

// Find returns the posting for docID, if present.
func (l List) Find(docID uint32) (Posting, bool) {
	lo, hi := 0, len(l)
	for lo < hi {
		mid := (lo + hi) / 2
		if l[mid].DocID < docID {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(l) && l[lo].DocID == docID {
		return l[lo], true
	}
	return Posting{}, false
}
