package postings

import "math"

// SkipEntry is a shortcut embedded in a posting list: a jump from index From
// to index To, carrying the target's document id so the traversal can decide
// whether the jump is safe without touching the target posting.
type SkipEntry struct {
	From  int
	To    int
	DocID uint32
}

// SkipList is the auxiliary skip-pointer array for one frozen posting list.
type SkipList []SkipEntry

// SkipInterval returns the skip spacing for a list of length n: sqrt spacing
// with a minimum of 2. Lists shorter than 3 entries get no skips.
func SkipInterval(n int) int {
	if n < 3 {
		return 0
	}
	interval := int(math.Sqrt(float64(n)))
	if interval < 2 {
		return 2
	}
	return interval
}

// BuildSkips computes the skip entries for a frozen list. The spacing is
// fixed at freeze time and never recomputed afterwards.
func BuildSkips(list List) SkipList {
	interval := SkipInterval(len(list))
	if interval == 0 {
		return nil
	}
	var skips SkipList
	for i := 0; i+interval < len(list); i += interval {
		skips = append(skips, SkipEntry{
			From:  i,
			To:    i + interval,
			DocID: list[i+interval].DocID,
		})
	}
	return skips
}

// at returns the skip entry anchored at index i, if any.
func (s SkipList) at(i int) (SkipEntry, bool) {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid].From < i {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(s) && s[lo].From == i {
		return s[lo], true
	}
	return SkipEntry{}, false
}

// IntersectWithSkips merges two sorted posting lists using their skip
// pointers and returns the intersected document ids in ascending order.
// A skip is followed only when its target document id does not overshoot
// the id sought in the other list.
func IntersectWithSkips(a, b List, sa, sb SkipList) []uint32 {
	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		da, db := a[i].DocID, b[j].DocID
		switch {
		case da == db:
			out = append(out, da)
			i++
			j++
		case da < db:
			if e, ok := sa.at(i); ok && e.DocID <= db {
				i = e.To
			} else {
				i++
			}
		default:
			if e, ok := sb.at(j); ok && e.DocID <= da {
				j = e.To
			} else {
				j++
			}
		}
	}
	return out
}
