// Package fixture serializes paint sessions to a line-based text format
// so scenes can be captured once and replayed by the CLI, benchmarks and
// tests. A fixture stores the un-arranged session: quadrant bucket
// contents, attached decals and text overlays, plus the rotation the
// scene was built for.
package fixture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/valerio/go-isopaint/isopaint"
)

const header = "# isopaint session fixture v1"

// Save writes the session in fixture form. The session must not have been
// arranged yet: saving walks the quadrant bucket lists, which Arrange
// rewrites into the draw-order chain.
//
// Buckets are emitted tail-first because loading replays AddToQuadrant,
// whose LIFO push then rebuilds each list in its original order.
func Save(w io.Writer, s *isopaint.Session, rotation isopaint.Rotation) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, header)
	fmt.Fprintf(bw, "rotation %d\n", rotation)

	if s.QuadrantBackIndex != isopaint.EmptyQuadrant {
		for qi := s.QuadrantBackIndex; qi <= s.QuadrantFrontIndex; qi++ {
			var bucket []isopaint.Ref
			for ref := s.Quadrants[qi]; ref != isopaint.None; ref = s.Drawable(ref).Next {
				bucket = append(bucket, ref)
			}
			for i := len(bucket) - 1; i >= 0; i-- {
				writeDrawable(bw, s, bucket[i])
			}
		}
	}

	for ref := s.StringHead(); ref != isopaint.None; ref = s.Text(ref).Next {
		ts := s.Text(ref)
		fmt.Fprintf(bw, "string id=%d screen=%d,%d args=%d,%d,%d,%d yoffsets=%d\n",
			ts.StringID, ts.X, ts.Y,
			ts.Args[0], ts.Args[1], ts.Args[2], ts.Args[3], ts.YOffsets)
	}

	return bw.Flush()
}

func writeDrawable(w io.Writer, s *isopaint.Session, ref isopaint.Ref) {
	ps := s.Drawable(ref)
	b := ps.Bounds
	fmt.Fprintf(w, "drawable image=%d colour=%d bounds=%d,%d,%d,%d,%d,%d screen=%d,%d quadrant=%d flags=%d sprite=%d map=%d,%d source=%d\n",
		ps.ImageID, ps.ColourImageID,
		b.X, b.Y, b.Z, b.XEnd, b.YEnd, b.ZEnd,
		ps.X, ps.Y, ps.QuadrantIndex, ps.Flags, ps.SpriteType,
		ps.MapX, ps.MapY, ps.Source)
	for d := ps.Attached; d != isopaint.None; d = s.Decal(d).Next {
		ap := s.Decal(d)
		fmt.Fprintf(w, "attach image=%d colour=%d screen=%d,%d flags=%d\n",
			ap.ImageID, ap.ColourImageID, ap.X, ap.Y, ap.Flags)
	}
}

// Load parses a fixture and rebuilds the session it describes, returning
// the rotation the scene was saved with.
func Load(r io.Reader) (*isopaint.Session, isopaint.Rotation, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !sc.Scan() {
		return nil, 0, fmt.Errorf("empty fixture")
	}
	if strings.TrimSpace(sc.Text()) != header {
		return nil, 0, fmt.Errorf("bad fixture header %q", sc.Text())
	}

	if !sc.Scan() {
		return nil, 0, fmt.Errorf("missing rotation line")
	}
	var rotValue uint8
	if _, err := fmt.Sscanf(sc.Text(), "rotation %d", &rotValue); err != nil {
		return nil, 0, fmt.Errorf("bad rotation line %q: %w", sc.Text(), err)
	}
	rotation := isopaint.Rotation(rotValue)
	if !rotation.Valid() {
		return nil, 0, fmt.Errorf("invalid rotation %d, want 0-3", rotValue)
	}

	s := isopaint.NewSession()
	lastDrawable := isopaint.None
	line := 2

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		directive, rest, _ := strings.Cut(text, " ")
		fields, err := parseFields(rest)
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}

		switch directive {
		case "drawable":
			lastDrawable, err = loadDrawable(s, fields)
		case "attach":
			if lastDrawable == isopaint.None {
				return nil, 0, fmt.Errorf("line %d: attach before any drawable", line)
			}
			err = loadAttach(s, lastDrawable, fields)
		case "string":
			err = loadString(s, fields)
		default:
			return nil, 0, fmt.Errorf("line %d: unknown directive %q", line, directive)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}

	return s, rotation, nil
}

// WriteFile saves a fixture to disk.
func WriteFile(path string, s *isopaint.Session, rotation isopaint.Rotation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Save(f, s, rotation); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a fixture from disk.
func ReadFile(path string) (*isopaint.Session, isopaint.Rotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return Load(f)
}

type fieldMap map[string]string

func parseFields(rest string) (fieldMap, error) {
	fields := fieldMap{}
	for _, tok := range strings.Fields(rest) {
		key, value, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, fmt.Errorf("malformed field %q", tok)
		}
		fields[key] = value
	}
	return fields, nil
}

func (f fieldMap) uint(key string, bits int) (uint64, error) {
	value, ok := f[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

func (f fieldMap) uintList(key string, bits, count int) ([]uint64, error) {
	value, ok := f[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	parts := strings.Split(value, ",")
	if len(parts) != count {
		return nil, fmt.Errorf("field %q: want %d values, got %d", key, count, len(parts))
	}
	out := make([]uint64, count)
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, bits)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		out[i] = n
	}
	return out, nil
}

func loadDrawable(s *isopaint.Session, fields fieldMap) (isopaint.Ref, error) {
	ref, err := s.AllocPaintStruct()
	if err != nil {
		return isopaint.None, err
	}
	ps := s.Drawable(ref)

	image, err := fields.uint("image", 32)
	if err != nil {
		return isopaint.None, err
	}
	colour, err := fields.uint("colour", 32)
	if err != nil {
		return isopaint.None, err
	}
	bounds, err := fields.uintList("bounds", 16, 6)
	if err != nil {
		return isopaint.None, err
	}
	screen, err := fields.uintList("screen", 16, 2)
	if err != nil {
		return isopaint.None, err
	}
	quadrant, err := fields.uint("quadrant", 16)
	if err != nil {
		return isopaint.None, err
	}
	flags, err := fields.uint("flags", 8)
	if err != nil {
		return isopaint.None, err
	}
	sprite, err := fields.uint("sprite", 8)
	if err != nil {
		return isopaint.None, err
	}
	mapPos, err := fields.uintList("map", 16, 2)
	if err != nil {
		return isopaint.None, err
	}
	source, err := fields.uint("source", 32)
	if err != nil {
		return isopaint.None, err
	}

	ps.ImageID = uint32(image)
	ps.ColourImageID = uint32(colour)
	ps.Bounds = isopaint.BoundBox{
		X: uint16(bounds[0]), Y: uint16(bounds[1]), Z: uint16(bounds[2]),
		XEnd: uint16(bounds[3]), YEnd: uint16(bounds[4]), ZEnd: uint16(bounds[5]),
	}
	ps.X, ps.Y = uint16(screen[0]), uint16(screen[1])
	ps.QuadrantIndex = uint16(quadrant)
	ps.Flags = uint8(flags)
	ps.SpriteType = uint8(sprite)
	ps.MapX, ps.MapY = uint16(mapPos[0]), uint16(mapPos[1])
	ps.Source = uint32(source)

	if err := s.AddToQuadrant(ref); err != nil {
		return isopaint.None, err
	}
	return ref, nil
}

func loadAttach(s *isopaint.Session, host isopaint.Ref, fields fieldMap) error {
	ref, err := s.AllocAttached()
	if err != nil {
		return err
	}
	ap := s.Decal(ref)

	image, err := fields.uint("image", 32)
	if err != nil {
		return err
	}
	colour, err := fields.uint("colour", 32)
	if err != nil {
		return err
	}
	screen, err := fields.uintList("screen", 16, 2)
	if err != nil {
		return err
	}
	flags, err := fields.uint("flags", 8)
	if err != nil {
		return err
	}

	ap.ImageID = uint32(image)
	ap.ColourImageID = uint32(colour)
	ap.X, ap.Y = uint16(screen[0]), uint16(screen[1])
	ap.Flags = uint8(flags)

	s.Attach(host, ref)
	return nil
}

func loadString(s *isopaint.Session, fields fieldMap) error {
	ref, err := s.AllocString()
	if err != nil {
		return err
	}
	ts := s.Text(ref)

	id, err := fields.uint("id", 16)
	if err != nil {
		return err
	}
	screen, err := fields.uintList("screen", 16, 2)
	if err != nil {
		return err
	}
	args, err := fields.uintList("args", 32, 4)
	if err != nil {
		return err
	}
	yOffsets, err := fields.uint("yoffsets", 32)
	if err != nil {
		return err
	}

	ts.StringID = uint16(id)
	ts.X, ts.Y = uint16(screen[0]), uint16(screen[1])
	for i := range ts.Args {
		ts.Args[i] = uint32(args[i])
	}
	ts.YOffsets = uint32(yOffsets)

	s.AppendString(ref)
	return nil
}
