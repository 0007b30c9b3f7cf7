package isopaint

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxPaintEntries is the pool capacity of a session. All three entry
	// variants are allocated from the same pool.
	MaxPaintEntries = 4000
	// MaxPaintQuadrants bounds the quadrant bucket index.
	MaxPaintQuadrants = 512
)

// EmptyQuadrant is the value of QuadrantBackIndex when no bucket is
// occupied. Arrange treats a session in this state as a defined no-op.
const EmptyQuadrant = uint32(math.MaxUint32)

// headRef is the pool slot reserved for the sentinel chain head. The
// sentinel is never a real drawable and is excluded from all output.
const headRef Ref = 0

// ErrPoolExhausted is returned when a frame tries to allocate more than
// MaxPaintEntries entries.
var ErrPoolExhausted = errors.New("paint entry pool exhausted")

// Session is the per-frame working set: the entry pool, the quadrant
// bucket index, and the sentinel head the merged chain hangs off.
//
// A Session contains no pointers or slices, so copying one by assignment
// produces an independent duplicate with all internal links intact. The
// benchmark and the visualizer rely on this to re-arrange fresh copies of
// a master session.
//
// The arrange hot path does not allocate: every entry is a pool slot and
// all links are rewritten in place.
type Session struct {
	// Quadrants holds the head ref of each bucket's list, None if empty.
	Quadrants [MaxPaintQuadrants]Ref
	// QuadrantBackIndex and QuadrantFrontIndex are the lowest and highest
	// occupied bucket numbers. Back is EmptyQuadrant when nothing has
	// been added since the last Reset.
	QuadrantBackIndex  uint32
	QuadrantFrontIndex uint32

	entries [MaxPaintEntries]PaintEntry
	count   uint32

	stringHead Ref
	stringTail Ref

	// quadrantFlags is reorder-pass scratch keyed by slot index. Its
	// contents have no meaning outside a single Arrange call.
	quadrantFlags [MaxPaintEntries]uint8
}

// NewSession returns a reset session ready for a frame.
func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset prepares the session for a new frame. Slot 0 becomes the sentinel
// head; previously allocated entries are abandoned in place.
func (s *Session) Reset() {
	s.count = 1
	s.entries[headRef] = PaintEntry{Kind: KindDrawable}
	head := &s.entries[headRef].PS
	head.Attached = None
	head.Children = None
	head.Next = None

	for i := range s.Quadrants {
		s.Quadrants[i] = None
	}
	s.QuadrantBackIndex = EmptyQuadrant
	s.QuadrantFrontIndex = 0
	s.stringHead = None
	s.stringTail = None
}

func (s *Session) alloc(kind EntryKind) (Ref, error) {
	if s.count >= MaxPaintEntries {
		return None, ErrPoolExhausted
	}
	ref := Ref(s.count)
	s.count++
	s.entries[ref] = PaintEntry{Kind: kind}
	return ref, nil
}

// AllocPaintStruct claims a pool slot for a drawable primitive. The caller
// fills in bounds, screen position and quadrant index before handing the
// ref to AddToQuadrant.
func (s *Session) AllocPaintStruct() (Ref, error) {
	ref, err := s.alloc(KindDrawable)
	if err != nil {
		return None, err
	}
	ps := &s.entries[ref].PS
	ps.Attached = None
	ps.Children = None
	ps.Next = None
	return ref, nil
}

// AllocAttached claims a pool slot for an attached decal.
func (s *Session) AllocAttached() (Ref, error) {
	ref, err := s.alloc(KindAttached)
	if err != nil {
		return None, err
	}
	s.entries[ref].AP.Next = None
	return ref, nil
}

// AllocString claims a pool slot for a text overlay.
func (s *Session) AllocString() (Ref, error) {
	ref, err := s.alloc(KindString)
	if err != nil {
		return None, err
	}
	s.entries[ref].TS.Next = None
	return ref, nil
}

// EntryCount returns the number of allocated entries, sentinel included.
func (s *Session) EntryCount() int {
	return int(s.count)
}

// Kind returns the variant tag of a slot, KindNone for out-of-range refs.
func (s *Session) Kind(ref Ref) EntryKind {
	if ref < 0 || uint32(ref) >= s.count {
		return KindNone
	}
	return s.entries[ref].Kind
}

// Drawable returns the drawable record in a slot. The ref must come from
// AllocPaintStruct; passing any other ref is a contract violation.
func (s *Session) Drawable(ref Ref) *PaintStruct {
	return &s.entries[ref].PS
}

// Decal returns the attached-decal record in a slot.
func (s *Session) Decal(ref Ref) *AttachedPaint {
	return &s.entries[ref].AP
}

// Text returns the text-overlay record in a slot.
func (s *Session) Text(ref Ref) *PaintString {
	return &s.entries[ref].TS
}

// AddToQuadrant pushes a drawable onto the bucket list selected by its
// quadrant index and widens the occupied bucket range. Buckets are LIFO:
// the traversal stage paints back-to-front within a bucket, so the last
// primitive added is scanned first.
func (s *Session) AddToQuadrant(ref Ref) error {
	ps := s.Drawable(ref)
	qi := uint32(ps.QuadrantIndex)
	if qi >= MaxPaintQuadrants {
		return fmt.Errorf("quadrant index %d out of range [0, %d)", qi, MaxPaintQuadrants)
	}
	ps.Next = s.Quadrants[qi]
	s.Quadrants[qi] = ref

	if qi < s.QuadrantBackIndex {
		s.QuadrantBackIndex = qi
	}
	if qi > s.QuadrantFrontIndex {
		s.QuadrantFrontIndex = qi
	}
	return nil
}

// Attach appends a decal to a drawable's attached list. The compositor
// renders decals immediately after their host; the arrange pass carries
// the list along untouched.
func (s *Session) Attach(host, decal Ref) {
	ps := s.Drawable(host)
	if ps.Attached == None {
		ps.Attached = decal
		return
	}
	tail := ps.Attached
	for s.Decal(tail).Next != None {
		tail = s.Decal(tail).Next
	}
	s.Decal(tail).Next = decal
}

// AppendString adds a text overlay to the session's string list.
func (s *Session) AppendString(ref Ref) {
	if s.stringHead == None {
		s.stringHead = ref
	} else {
		s.Text(s.stringTail).Next = ref
	}
	s.stringTail = ref
}

// StringHead returns the first text overlay, None if there are none.
func (s *Session) StringHead() Ref {
	return s.stringHead
}

// Arranged returns the refs of the working chain in order, sentinel
// excluded. Before Arrange this is whatever merge state the chain is in;
// after Arrange it is the final back-to-front draw order.
func (s *Session) Arranged() []Ref {
	var out []Ref
	for ref := s.entries[headRef].PS.Next; ref != None; ref = s.entries[ref].PS.Next {
		out = append(out, ref)
	}
	return out
}
