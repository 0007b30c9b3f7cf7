// Package debug holds inspection tooling for arranged paint sessions:
// structural checks used by tests and the CLI, and PNG scene snapshots.
package debug

import (
	"fmt"
	"sort"

	"github.com/valerio/go-isopaint/isopaint"
)

// BucketRefs collects every drawable currently sitting in a quadrant
// bucket. Call it before Arrange: the merge rewrites the bucket lists'
// links into the draw-order chain.
func BucketRefs(s *isopaint.Session) []isopaint.Ref {
	var out []isopaint.Ref
	if s.QuadrantBackIndex == isopaint.EmptyQuadrant {
		return out
	}
	for qi := s.QuadrantBackIndex; qi <= s.QuadrantFrontIndex; qi++ {
		for ref := s.Quadrants[qi]; ref != isopaint.None; ref = s.Drawable(ref).Next {
			out = append(out, ref)
		}
	}
	return out
}

// CheckConservation verifies the arranged chain holds exactly the
// primitives captured from the input buckets, no duplicates, no losses.
func CheckConservation(input []isopaint.Ref, s *isopaint.Session) error {
	output := s.Arranged()
	if len(output) != len(input) {
		return fmt.Errorf("chain has %d primitives, input had %d", len(output), len(input))
	}

	sorted := func(refs []isopaint.Ref) []isopaint.Ref {
		out := append([]isopaint.Ref(nil), refs...)
		sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
		return out
	}
	in, got := sorted(input), sorted(output)
	for i := range in {
		if in[i] != got[i] {
			return fmt.Errorf("primitive multiset mismatch at rank %d: input %d, chain %d", i, in[i], got[i])
		}
	}
	return nil
}

// CheckMonotonic verifies quadrant indices are weakly increasing along
// the chain. This holds after the merge and before the reorder pass
// perturbs adjacent buckets.
func CheckMonotonic(s *isopaint.Session) error {
	chain := s.Arranged()
	for i := 1; i < len(chain); i++ {
		prev := s.Drawable(chain[i-1]).QuadrantIndex
		cur := s.Drawable(chain[i]).QuadrantIndex
		if cur < prev {
			return fmt.Errorf("bucket order drops from %d to %d at position %d", prev, cur, i)
		}
	}
	return nil
}

// CheckLocality verifies no primitive trails a primitive from two or more
// buckets ahead of its own.
//
// Typical scenes satisfy this, but it is a diagnostic rather than a hard
// invariant of the pass: relocations at one boundary can shift where the
// next boundary's window anchors, and a dense cascade of overlaps across
// several consecutive buckets can push a primitive past the two-bucket
// distance. The CLI reports a failure here as a warning.
func CheckLocality(s *isopaint.Session) error {
	chain := s.Arranged()
	maxSeen := uint16(0)
	for i, ref := range chain {
		qi := s.Drawable(ref).QuadrantIndex
		if maxSeen >= 2 && qi <= maxSeen-2 {
			return fmt.Errorf("bucket %d primitive at position %d trails bucket %d", qi, i, maxSeen)
		}
		if qi > maxSeen {
			maxSeen = qi
		}
	}
	return nil
}
