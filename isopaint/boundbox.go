package isopaint

// CheckBoundingBox reports whether, under the given rotation, the current
// box must be drawn before the initial box can be considered settled.
// initial is always the box that sits earlier in the chain; the predicate
// is deliberately asymmetric in its arguments.
//
// Each rotation flips which side of the x/y extents counts as "behind",
// and each positive test is paired with a full-containment exclusion whose
// inequalities are the strict complements for that same rotation. The four
// variants are not interchangeable and must not be collapsed into a
// rotation-independent test: the tie-break direction on the shared-edge
// cases is what keeps adjacent sprites from flickering across rotations.
func CheckBoundingBox(rotation Rotation, initial, current BoundBox) bool {
	switch rotation {
	case Rotation0:
		return initial.ZEnd >= current.Z && initial.YEnd >= current.Y && initial.XEnd >= current.X &&
			!(initial.Z < current.ZEnd && initial.Y < current.YEnd && initial.X < current.XEnd)
	case Rotation1:
		return initial.ZEnd >= current.Z && initial.YEnd >= current.Y && initial.XEnd < current.X &&
			!(initial.Z < current.ZEnd && initial.Y < current.YEnd && initial.X >= current.XEnd)
	case Rotation2:
		return initial.ZEnd >= current.Z && initial.YEnd < current.Y && initial.XEnd < current.X &&
			!(initial.Z < current.ZEnd && initial.Y >= current.YEnd && initial.X >= current.XEnd)
	case Rotation3:
		return initial.ZEnd >= current.Z && initial.YEnd < current.Y && initial.XEnd >= current.X &&
			!(initial.Z < current.ZEnd && initial.Y >= current.YEnd && initial.X < current.XEnd)
	}
	return false
}
