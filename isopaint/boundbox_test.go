package isopaint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckBoundingBox(t *testing.T) {
	// Boxes are (X, Y, Z, XEnd, YEnd, ZEnd). Expected values are one bool
	// per rotation, 0 through 3.
	tests := []struct {
		name     string
		initial  BoundBox
		current  BoundBox
		expected [4]bool
	}{
		{
			name:     "current stacked beneath initial",
			initial:  BoundBox{0, 0, 6, 10, 10, 10},
			current:  BoundBox{0, 0, 0, 10, 10, 5},
			expected: [4]bool{true, false, false, false},
		},
		{
			name:     "current strictly past initial on x",
			initial:  BoundBox{0, 0, 0, 10, 10, 10},
			current:  BoundBox{11, 0, 0, 20, 10, 10},
			expected: [4]bool{false, true, false, false},
		},
		{
			name:     "current strictly past initial on x and y",
			initial:  BoundBox{0, 0, 0, 10, 10, 10},
			current:  BoundBox{11, 11, 0, 20, 20, 10},
			expected: [4]bool{false, false, true, false},
		},
		{
			name:     "current strictly past initial on y only",
			initial:  BoundBox{0, 0, 0, 10, 10, 10},
			current:  BoundBox{0, 11, 0, 10, 20, 10},
			expected: [4]bool{false, false, false, true},
		},
		{
			// current starts inside initial's extent on every axis, so
			// the containment exclusion suppresses the match under every
			// rotation.
			name:     "mutual overlap on all axes is excluded",
			initial:  BoundBox{0, 0, 0, 10, 10, 10},
			current:  BoundBox{5, 5, 5, 15, 15, 15},
			expected: [4]bool{false, false, false, false},
		},
		{
			name:     "contained box is excluded",
			initial:  BoundBox{0, 0, 0, 4, 4, 4},
			current:  BoundBox{1, 1, 1, 3, 3, 3},
			expected: [4]bool{false, false, false, false},
		},
		{
			name:     "fully disjoint below on z",
			initial:  BoundBox{0, 0, 20, 10, 10, 30},
			current:  BoundBox{0, 0, 0, 10, 10, 10},
			expected: [4]bool{true, false, false, false},
		},
		{
			// Shared edge: initial's top equals current's bottom. The >=
			// on the positive test and the strict < on the exclusion make
			// this a match for rotation 0.
			name:     "shared z edge ties toward reorder",
			initial:  BoundBox{0, 0, 5, 10, 10, 10},
			current:  BoundBox{0, 0, 0, 10, 10, 5},
			expected: [4]bool{true, false, false, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for rot := Rotation0; rot <= Rotation3; rot++ {
				got := CheckBoundingBox(rot, tt.initial, tt.current)
				assert.Equal(t, tt.expected[rot], got, "rotation %d", rot)
			}
		})
	}
}

// The predicate is direction-sensitive: swapping the argument roles must
// not simply negate the result.
func TestCheckBoundingBoxAsymmetric(t *testing.T) {
	a := BoundBox{0, 0, 5, 10, 10, 10}
	b := BoundBox{0, 0, 0, 10, 10, 5}

	assert.True(t, CheckBoundingBox(Rotation0, a, b))
	assert.False(t, CheckBoundingBox(Rotation0, b, a),
		"reversed arguments must use the reversed tie-break")
}

// At least two rotations must disagree for boxes that only overlap along
// one screen diagonal.
func TestCheckBoundingBoxRotationSensitivity(t *testing.T) {
	initial := BoundBox{0, 0, 0, 10, 10, 10}
	current := BoundBox{11, 0, 0, 20, 10, 10}

	results := make(map[bool]int)
	for rot := Rotation0; rot <= Rotation3; rot++ {
		results[CheckBoundingBox(rot, initial, current)]++
	}
	assert.Len(t, results, 2, "rotations must not all agree for diagonal overlap")
}

func TestCheckBoundingBoxInvalidRotation(t *testing.T) {
	a := BoundBox{0, 0, 5, 10, 10, 10}
	b := BoundBox{0, 0, 0, 10, 10, 5}
	assert.False(t, CheckBoundingBox(Rotation(7), a, b))
}

func TestRotationValid(t *testing.T) {
	assert.True(t, Rotation0.Valid())
	assert.True(t, Rotation3.Valid())
	assert.False(t, Rotation(4).Valid())
	assert.False(t, Rotation(255).Valid())
}
