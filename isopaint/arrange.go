package isopaint

import "fmt"

// Reorder-pass marker bits, kept in the session's scratch table keyed by
// slot index. A node is promoted through these states at most a bounded
// number of times per bucket boundary, which is what keeps the pass
// near-linear.
const (
	// quadrantFlagIdentical marks an unresolved candidate: the node still
	// has to serve as a pivot for one comparison scan.
	quadrantFlagIdentical = 1 << 0
	// quadrantFlagNext marks a node from the boundary's successor bucket,
	// the only nodes a pivot is allowed to pull forward.
	quadrantFlagNext = 1 << 1
	// quadrantFlagBigger marks the first node beyond the two-bucket
	// window; every scan stops when it reaches one.
	quadrantFlagBigger = 1 << 7
)

// arrangeStructsHelper runs one local reorder step for the two-bucket
// window starting at quadrantIndex.
//
// psNext is the cursor returned by the previous step (the sentinel head on
// the first step). flag is OR-ed into the marker of same-bucket nodes: the
// first step of a frame passes quadrantFlagNext so nodes within the lowest
// bucket compare against each other, later steps pass 0 because those
// nodes were already settled as the previous window's successors.
//
// The step works in three stages:
//
//  1. Advance the cursor until the successor's bucket reaches
//     quadrantIndex. The node reached anchors this window and is returned
//     as the cursor for the next step, so repeated calls walk the chain
//     once overall instead of rescanning from the head.
//  2. Walk the window marking each node: beyond quadrantIndex+1 is a stop
//     marker, quadrantIndex+1 is a pull-forward candidate, quadrantIndex
//     gets the caller's flag. Marking overwrites whatever a previous
//     window left in the scratch table.
//  3. Repeatedly take the first node still marked identical as the pivot,
//     clear its bit, and scan the rest of the window. Every successor
//     bucket node whose box overlaps the pivot's (per the rotation's
//     predicate) is spliced out and reinserted right after the node that
//     preceded the pivot, pulling it ahead of everything the pivot still
//     has to settle against. The stage ends when a full scan from the
//     anchor finds no identical bit before the stop marker.
func (s *Session) arrangeStructsHelper(psNext Ref, quadrantIndex uint16, flag uint8, rotation Rotation) Ref {
	var ps Ref
	for {
		ps = psNext
		psNext = s.entries[psNext].PS.Next
		if psNext == None {
			return ps
		}
		if quadrantIndex <= s.entries[psNext].PS.QuadrantIndex {
			break
		}
	}

	// Anchor of this window, also the cursor handed to the next step.
	psCache := ps
	psTemp := ps

	node := ps
	for {
		node = s.entries[node].PS.Next
		if node == None {
			break
		}
		qi := s.entries[node].PS.QuadrantIndex
		if qi > quadrantIndex+1 {
			s.quadrantFlags[node] = quadrantFlagBigger
			break
		} else if qi == quadrantIndex+1 {
			s.quadrantFlags[node] = quadrantFlagNext | quadrantFlagIdentical
		} else if qi == quadrantIndex {
			s.quadrantFlags[node] = flag | quadrantFlagIdentical
		}
	}
	ps = psTemp

	for {
		for {
			psNext = s.entries[ps].PS.Next
			if psNext == None {
				return psCache
			}
			if s.quadrantFlags[psNext]&quadrantFlagBigger != 0 {
				return psCache
			}
			if s.quadrantFlags[psNext]&quadrantFlagIdentical != 0 {
				break
			}
			ps = psNext
		}

		s.quadrantFlags[psNext] &^= quadrantFlagIdentical
		psTemp = ps

		initial := s.entries[psNext].PS.Bounds

		for {
			ps = psNext
			psNext = s.entries[psNext].PS.Next
			if psNext == None {
				break
			}
			if s.quadrantFlags[psNext]&quadrantFlagBigger != 0 {
				break
			}
			if s.quadrantFlags[psNext]&quadrantFlagNext == 0 {
				continue
			}

			if CheckBoundingBox(rotation, initial, s.entries[psNext].PS.Bounds) {
				// Splice psNext out and reinsert it right after the
				// pivot's anchor.
				s.entries[ps].PS.Next = s.entries[psNext].PS.Next
				after := s.entries[psTemp].PS.Next
				s.entries[psTemp].PS.Next = psNext
				s.entries[psNext].PS.Next = after
				psNext = ps
			}
		}

		ps = psTemp
	}
}

// mergeQuadrants splices every occupied bucket's list onto the sentinel
// head, buckets in ascending order, preserving each bucket's internal
// order. Links are rewritten in place; after the merge the bucket heads in
// Quadrants still point at their first entries but the Next links form one
// chain. A session with no occupied bucket ends up with the sentinel
// alone.
func (s *Session) mergeQuadrants() {
	ps := headRef
	s.entries[ps].PS.Next = None

	quadrantIndex := s.QuadrantBackIndex
	if quadrantIndex == EmptyQuadrant {
		return
	}
	for {
		psNext := s.Quadrants[quadrantIndex]
		if psNext != None {
			s.entries[ps].PS.Next = psNext
			for {
				ps = psNext
				psNext = s.entries[psNext].PS.Next
				if psNext == None {
					break
				}
			}
		}
		quadrantIndex++
		if quadrantIndex > s.QuadrantFrontIndex {
			break
		}
	}
}

// Arrange computes the final back-to-front draw order for the session's
// primitives under the given rotation.
//
// It merges the quadrant buckets into one chain, then runs the local
// reorder step once per bucket boundary from the lowest occupied bucket
// upwards, feeding each step's cursor into the next. The result is read
// with Arranged (or by walking Next from the head); attached decals and
// text overlays ride along untouched.
//
// The reorder is a bounded local correction, not a topological depth
// sort: a primitive only ever moves relative to its own and the adjacent
// bucket, and chains of three or more mutually overlapping primitives
// spanning more than two buckets can stay under-corrected. That matches
// the renderer this order has to stay compatible with.
//
// Arrange consumes the chain destructively. Re-running it on an already
// arranged session is not meaningful; arrange a fresh copy instead. An
// empty session (QuadrantBackIndex == EmptyQuadrant) is a no-op.
func (s *Session) Arrange(rotation Rotation) error {
	if !rotation.Valid() {
		return fmt.Errorf("invalid rotation %d, want 0-3", rotation)
	}

	s.mergeQuadrants()
	if s.QuadrantBackIndex == EmptyQuadrant {
		return nil
	}

	psCache := s.arrangeStructsHelper(headRef, uint16(s.QuadrantBackIndex), quadrantFlagNext, rotation)

	quadrantIndex := s.QuadrantBackIndex
	for quadrantIndex+1 < s.QuadrantFrontIndex {
		quadrantIndex++
		psCache = s.arrangeStructsHelper(psCache, uint16(quadrantIndex), 0, rotation)
	}
	return nil
}
