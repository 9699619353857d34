package postings

import "fmt"

// Builder is the growable per-term accumulator used during the build phase.
// It only appends, and a single Freeze call turns it into an immutable List;
// the frozen type exposes no mutation, which is what enforces the
// no-mutation-after-freeze invariant.
type Builder struct {
	list   List
	frozen bool
}

// Add appends a posting for docID with its position list. Documents must be
// added in ascending id order; positions must be strictly increasing.
func (b *Builder) Add(docID uint32, positions []uint32) error {
	if b.frozen {
		return fmt.Errorf("posting list is frozen")
	}
	if n := len(b.list); n > 0 && b.list[n-1].DocID >= docID {
		return fmt.Errorf("document %d added out of order after %d", docID, b.list[n-1].DocID)
	}
	if len(positions) == 0 {
		return fmt.Errorf("document %d has no positions", docID)
	}
	for i := 1; i < len(positions); i++ {
		if positions[i] <= positions[i-1] {
			return fmt.Errorf("document %d positions are not strictly increasing", docID)
		}
	}
	b.list = append(b.list, Posting{DocID: docID, Positions: positions})
	return nil
}

// Len returns the number of postings accumulated so far.
func (b *Builder) Len() int {
	return len(b.list)
}

// Freeze finalizes the builder and returns the immutable list. Further Add
// calls fail.
func (b *Builder) Freeze() List {
	b.frozen = true
	return b.list
}
