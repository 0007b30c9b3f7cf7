package isopaint

// Ref is an index into a session's entry pool. Links between entries are
// stored as refs rather than pointers so a whole session stays a plain
// value that can be duplicated by assignment.
type Ref int32

// None marks the absence of a linked entry.
const None Ref = -1

// Rotation is one of the four 90-degree camera orientations. It selects
// which screen axis counts as nearer/farther when two bounding boxes are
// compared, so each rotation has its own overlap predicate.
type Rotation uint8

const (
	Rotation0 Rotation = iota
	Rotation1
	Rotation2
	Rotation3
)

// Valid reports whether r is one of the four supported orientations.
func (r Rotation) Valid() bool {
	return r <= Rotation3
}

// BoundBox is an axis-aligned 3D extent in world-projected coordinates,
// inclusive of both corners. Coordinates are 16-bit unsigned, matching the
// renderer's world units.
type BoundBox struct {
	X, Y, Z          uint16
	XEnd, YEnd, ZEnd uint16
}

// EntryKind tags which variant occupies a pool slot.
type EntryKind uint8

const (
	KindNone EntryKind = iota
	KindDrawable
	KindAttached
	KindString
)

// PaintStruct is a drawable primitive, the unit the arrange pass orders.
type PaintStruct struct {
	ImageID uint32
	// ColourImageID doubles as the tertiary colour when the image is not
	// masked; the two uses share the slot and are mutually exclusive.
	ColourImageID uint32
	Bounds        BoundBox
	// X, Y is the screen position used by the compositor. The arrange
	// pass never reads it.
	X, Y          uint16
	QuadrantIndex uint16
	Flags         uint8
	SpriteType    uint8
	MapX, MapY    uint16
	// Source is an opaque back-reference to the map element (or sprite)
	// this primitive was painted for. Carried, never interpreted.
	Source uint32

	// Attached heads this drawable's decal list. Decals are rendered
	// right after their host and are never reordered.
	Attached Ref
	Children Ref
	// Next is the working chain link. It holds the quadrant bucket list
	// before arrange and the final draw order afterwards.
	Next Ref
}

// AttachedPaint is a secondary decal rendered on top of its host drawable.
type AttachedPaint struct {
	ImageID       uint32
	ColourImageID uint32
	X, Y          uint16
	Flags         uint8
	Next          Ref
}

// PaintString is a text overlay rendered after all drawables.
type PaintString struct {
	StringID uint16
	X, Y     uint16
	Args     [4]uint32
	YOffsets uint32
	Next     Ref
}

// PaintEntry is one pool slot. Kind selects which variant is live; the
// others are left zeroed.
type PaintEntry struct {
	Kind EntryKind
	PS   PaintStruct
	AP   AttachedPaint
	TS   PaintString
}
