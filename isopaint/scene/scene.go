// Package scene builds synthetic isometric scenes for tests, benchmarks
// and the CLI. It stands in for the game's map traversal stage: it fills
// a paint session with bucketed drawables the same way the real painter
// would, but from a seeded generator instead of map data.
package scene

import (
	"fmt"
	"math/rand"

	"github.com/valerio/go-isopaint/isopaint"
)

// TileSize is the world-unit edge length of one map tile. One quadrant
// bucket spans one tile of screen-diagonal depth.
const TileSize = 32

// Config controls scene generation. The same config always produces the
// same session.
type Config struct {
	// TilesX, TilesY is the map extent in tiles.
	TilesX, TilesY int
	// Seed drives all randomized choices.
	Seed int64
	// Rotation orients the camera; it selects the depth axis used for
	// bucketing and is the rotation the scene should be arranged with.
	Rotation isopaint.Rotation
	// Density is the expected number of scenery boxes per tile on top of
	// the ground box. Zero means ground only.
	Density float64
}

// DefaultConfig is a mid-sized park-like scene.
var DefaultConfig = Config{
	TilesX:   24,
	TilesY:   24,
	Seed:     1,
	Rotation: isopaint.Rotation0,
	Density:  1.5,
}

// rotatedDepth returns the screen-diagonal depth of a world position
// under the given rotation. The depth axis flips with the camera so that
// "farther from the viewer" always means a smaller value.
func rotatedDepth(rotation isopaint.Rotation, x, y, maxX, maxY int) int {
	switch rotation {
	case isopaint.Rotation0:
		return x + y
	case isopaint.Rotation1:
		return (maxX - x) + y
	case isopaint.Rotation2:
		return (maxX - x) + (maxY - y)
	default:
		return x + (maxY - y)
	}
}

// quadrantFor buckets a world position by its rotated depth, one bucket
// per tile, clamped to the quadrant index range.
func quadrantFor(rotation isopaint.Rotation, x, y, maxX, maxY int) uint16 {
	depth := rotatedDepth(rotation, x, y, maxX, maxY) / TileSize
	if depth < 0 {
		depth = 0
	}
	if depth >= isopaint.MaxPaintQuadrants {
		depth = isopaint.MaxPaintQuadrants - 1
	}
	return uint16(depth)
}

// Generate builds a populated session: every tile gets a flat ground box,
// plus density-controlled stacked scenery with the occasional attached
// decal and text overlay. Primitives are bucketed by rotated depth, so
// the session is ready for Arrange with cfg.Rotation.
func Generate(cfg Config) (*isopaint.Session, error) {
	if cfg.TilesX <= 0 || cfg.TilesY <= 0 {
		return nil, fmt.Errorf("invalid map extent %dx%d", cfg.TilesX, cfg.TilesY)
	}
	if !cfg.Rotation.Valid() {
		return nil, fmt.Errorf("invalid rotation %d, want 0-3", cfg.Rotation)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s := isopaint.NewSession()

	maxX := cfg.TilesX * TileSize
	maxY := cfg.TilesY * TileSize

	for ty := 0; ty < cfg.TilesY; ty++ {
		for tx := 0; tx < cfg.TilesX; tx++ {
			wx := tx * TileSize
			wy := ty * TileSize

			groundZ := rng.Intn(3) * 2
			if err := addBox(s, cfg, wx, wy, 0, TileSize, TileSize, groundZ, maxX, maxY, rng); err != nil {
				return nil, err
			}

			// Stacked scenery on top of the ground box.
			n := poissonish(rng, cfg.Density)
			z := groundZ
			for i := 0; i < n; i++ {
				inset := rng.Intn(TileSize / 2)
				size := TileSize - 2*inset
				if size < 4 {
					size = 4
				}
				height := 4 + rng.Intn(28)
				if err := addBox(s, cfg, wx+inset, wy+inset, z, size, size, height, maxX, maxY, rng); err != nil {
					return nil, err
				}
				z += height
			}
		}
	}

	return s, nil
}

// poissonish approximates a Poisson draw with mean lambda; the exact
// distribution does not matter, only determinism and a sensible spread.
func poissonish(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	n := int(lambda)
	if rng.Float64() < lambda-float64(n) {
		n++
	}
	if n > 0 && rng.Float64() < 0.25 {
		n += rng.Intn(2)*2 - 1 // jitter by one either way
		if n < 0 {
			n = 0
		}
	}
	return n
}

func addBox(s *isopaint.Session, cfg Config, wx, wy, wz, sx, sy, sz, maxX, maxY int, rng *rand.Rand) error {
	ref, err := s.AllocPaintStruct()
	if err != nil {
		return err
	}
	ps := s.Drawable(ref)
	ps.ImageID = rng.Uint32() & 0x7FFFF
	ps.Bounds = isopaint.BoundBox{
		X:    uint16(wx),
		Y:    uint16(wy),
		Z:    uint16(wz),
		XEnd: uint16(wx + sx),
		YEnd: uint16(wy + sy),
		ZEnd: uint16(wz + sz),
	}
	ps.MapX = uint16(wx / TileSize)
	ps.MapY = uint16(wy / TileSize)
	ps.X, ps.Y = project(cfg.Rotation, wx, wy, wz)
	ps.QuadrantIndex = quadrantFor(cfg.Rotation, wx, wy, maxX, maxY)
	ps.Source = rng.Uint32()
	if err := s.AddToQuadrant(ref); err != nil {
		return err
	}

	if rng.Float64() < 0.15 {
		decal, err := s.AllocAttached()
		if err != nil {
			return err
		}
		ap := s.Decal(decal)
		ap.ImageID = rng.Uint32() & 0x7FFFF
		ap.X, ap.Y = ps.X, ps.Y
		s.Attach(ref, decal)
	}

	if rng.Float64() < 0.02 {
		str, err := s.AllocString()
		if err != nil {
			return err
		}
		ts := s.Text(str)
		ts.StringID = uint16(rng.Intn(1 << 12))
		ts.X, ts.Y = ps.X, ps.Y
		s.AppendString(str)
	}

	return nil
}

// project maps world coordinates to screen coordinates under a rotation.
// Screen y grows downward; z lifts a point up the screen.
func project(rotation isopaint.Rotation, x, y, z int) (uint16, uint16) {
	var sx, sy int
	switch rotation {
	case isopaint.Rotation0:
		sx, sy = y-x, (y+x)/2-z
	case isopaint.Rotation1:
		sx, sy = -y-x, (y-x)/2-z
	case isopaint.Rotation2:
		sx, sy = -y+x, (-y-x)/2-z
	default:
		sx, sy = y+x, (x-y)/2-z
	}
	return uint16(sx), uint16(sy)
}
