package isopaint

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addDrawable allocates a drawable, fills it in, and pushes it onto its
// quadrant bucket.
func addDrawable(t *testing.T, s *Session, quadrant uint16, bounds BoundBox) Ref {
	t.Helper()
	ref, err := s.AllocPaintStruct()
	require.NoError(t, err)
	ps := s.Drawable(ref)
	ps.QuadrantIndex = quadrant
	ps.Bounds = bounds
	require.NoError(t, s.AddToQuadrant(ref))
	return ref
}

func TestArrangeEmptySession(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Arrange(Rotation0))
	assert.Empty(t, s.Arranged())
}

func TestArrangeInvalidRotation(t *testing.T) {
	s := NewSession()
	addDrawable(t, s, 1, BoundBox{0, 0, 0, 4, 4, 4})

	assert.Error(t, s.Arrange(Rotation(4)))
	assert.Error(t, s.Arrange(Rotation(255)))
}

func TestArrangeSinglePrimitive(t *testing.T) {
	s := NewSession()
	ref := addDrawable(t, s, 9, BoundBox{0, 0, 0, 4, 4, 4})

	require.NoError(t, s.Arrange(Rotation0))
	assert.Equal(t, []Ref{ref}, s.Arranged())
}

func TestMergeQuadrantsMonotonic(t *testing.T) {
	s := NewSession()
	rng := rand.New(rand.NewSource(41))
	for i := 0; i < 200; i++ {
		addDrawable(t, s, uint16(rng.Intn(30)), BoundBox{0, 0, 0, 1, 1, 1})
	}

	s.mergeQuadrants()

	chain := s.Arranged()
	require.Len(t, chain, 200)
	for i := 1; i < len(chain); i++ {
		prev := s.Drawable(chain[i-1]).QuadrantIndex
		cur := s.Drawable(chain[i]).QuadrantIndex
		assert.LessOrEqual(t, prev, cur,
			"merged chain must be weakly increasing at position %d", i)
	}
}

func TestMergeQuadrantsKeepsBucketOrder(t *testing.T) {
	s := NewSession()
	a := addDrawable(t, s, 4, BoundBox{})
	b := addDrawable(t, s, 4, BoundBox{})
	c := addDrawable(t, s, 2, BoundBox{})

	s.mergeQuadrants()

	// Bucket 4 is LIFO (b pushed after a), bucket 2 comes first.
	assert.Equal(t, []Ref{c, b, a}, s.Arranged())
}

// A successor-bucket primitive whose box sits beneath the pivot's must be
// spliced out and reinserted at the window anchor, ahead of unrelated
// primitives scanned before it.
func TestArrangePullsOverlappingNeighborForward(t *testing.T) {
	s := NewSession()

	// A occupies z 5..10, B sits beneath it at z 0..5 in the next bucket.
	a := addDrawable(t, s, 5, BoundBox{0, 0, 5, 10, 10, 10})
	b := addDrawable(t, s, 6, BoundBox{0, 0, 0, 10, 10, 5})
	// C is spatially unrelated and pushed last, so the merged bucket-6
	// list scans C before B.
	c := addDrawable(t, s, 6, BoundBox{100, 100, 0, 110, 110, 10})

	require.True(t, CheckBoundingBox(Rotation0, s.Drawable(a).Bounds, s.Drawable(b).Bounds))

	require.NoError(t, s.Arrange(Rotation0))

	// B is pulled to the head of the window, ahead of both A and C.
	assert.Equal(t, []Ref{b, a, c}, s.Arranged())
}

// Without an overlap the merged order survives untouched.
func TestArrangeNoOverlapKeepsMergeOrder(t *testing.T) {
	s := NewSession()
	a := addDrawable(t, s, 5, BoundBox{0, 0, 0, 4, 4, 4})
	b := addDrawable(t, s, 6, BoundBox{200, 200, 0, 204, 204, 4})

	require.NoError(t, s.Arrange(Rotation0))
	assert.Equal(t, []Ref{a, b}, s.Arranged())
}

// The same scene must order differently under a rotation whose predicate
// sees the overlap from the other side.
func TestArrangeRotationChangesOrder(t *testing.T) {
	build := func() (*Session, Ref, Ref) {
		s := NewSession()
		a := addDrawable(t, s, 5, BoundBox{0, 0, 0, 10, 10, 10})
		b := addDrawable(t, s, 6, BoundBox{11, 0, 0, 20, 10, 10})
		return s, a, b
	}

	s0, a0, b0 := build()
	require.NoError(t, s0.Arrange(Rotation0))
	assert.Equal(t, []Ref{a0, b0}, s0.Arranged(), "rotation 0 sees no overlap")

	s1, a1, b1 := build()
	require.NoError(t, s1.Arrange(Rotation1))
	assert.Equal(t, []Ref{b1, a1}, s1.Arranged(), "rotation 1 must pull b forward")
}

// Every primitive that went into a bucket comes out of the chain exactly
// once, for any input and rotation.
func TestArrangeConservation(t *testing.T) {
	for rot := Rotation0; rot <= Rotation3; rot++ {
		rng := rand.New(rand.NewSource(1234))
		s := NewSession()

		var want []Ref
		for i := 0; i < 500; i++ {
			x := uint16(rng.Intn(600))
			y := uint16(rng.Intn(600))
			z := uint16(rng.Intn(40))
			bounds := BoundBox{
				X: x, Y: y, Z: z,
				XEnd: x + uint16(rng.Intn(32)),
				YEnd: y + uint16(rng.Intn(32)),
				ZEnd: z + uint16(rng.Intn(24)),
			}
			want = append(want, addDrawable(t, s, uint16((x+y)/32), bounds))
		}

		require.NoError(t, s.Arrange(rot))

		got := s.Arranged()
		require.Len(t, got, len(want), "rotation %d", rot)

		sortRefs := func(refs []Ref) []Ref {
			out := append([]Ref(nil), refs...)
			sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
			return out
		}
		assert.Equal(t, sortRefs(want), sortRefs(got), "rotation %d", rot)
	}
}

// Two structurally identical sessions arrange to the same order.
func TestArrangeDeterminism(t *testing.T) {
	build := func() *Session {
		rng := rand.New(rand.NewSource(99))
		s := NewSession()
		for i := 0; i < 300; i++ {
			x := uint16(rng.Intn(400))
			y := uint16(rng.Intn(400))
			z := uint16(rng.Intn(30))
			addDrawable(t, s, uint16((x+y)/32), BoundBox{
				X: x, Y: y, Z: z,
				XEnd: x + uint16(rng.Intn(32)),
				YEnd: y + uint16(rng.Intn(32)),
				ZEnd: z + uint16(rng.Intn(16)),
			})
		}
		return s
	}

	for rot := Rotation0; rot <= Rotation3; rot++ {
		s1, s2 := build(), build()
		require.NoError(t, s1.Arrange(rot))
		require.NoError(t, s2.Arrange(rot))
		assert.Equal(t, s1.Arranged(), s2.Arranged(), "rotation %d", rot)
	}
}

// Arrange carries decal lists along with their hosts without touching
// them.
func TestArrangeCarriesAttachedLists(t *testing.T) {
	s := NewSession()
	a := addDrawable(t, s, 5, BoundBox{0, 0, 5, 10, 10, 10})
	b := addDrawable(t, s, 6, BoundBox{0, 0, 0, 10, 10, 5})

	decal, err := s.AllocAttached()
	require.NoError(t, err)
	s.Attach(b, decal)

	require.NoError(t, s.Arrange(Rotation0))

	assert.Equal(t, []Ref{b, a}, s.Arranged())
	assert.Equal(t, decal, s.Drawable(b).Attached, "decal list must survive the splice")
	assert.Equal(t, None, s.Drawable(a).Attached)
}

// A bucket range with interior gaps still merges and reorders cleanly.
func TestArrangeSparseBuckets(t *testing.T) {
	s := NewSession()
	a := addDrawable(t, s, 2, BoundBox{0, 0, 0, 4, 4, 4})
	b := addDrawable(t, s, 10, BoundBox{50, 50, 0, 54, 54, 4})
	c := addDrawable(t, s, 17, BoundBox{90, 90, 0, 94, 94, 4})

	require.NoError(t, s.Arrange(Rotation2))
	assert.Equal(t, []Ref{a, b, c}, s.Arranged())
}
