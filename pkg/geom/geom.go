// Package geom provides the integer bounding-box primitives used by the
// floorplanner.
//
// All coordinates are int64 database units. Boxes are axis aligned and
// described by their lower-left (Left, Bottom) and upper-right (Right, Top)
// corners. A box whose Right equals Left (or Top equals Bottom) is degenerate
// but still valid; only inverted boxes are rejected by [Box.Valid].
package geom

import "fmt"

// Point is a location in database units.
type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Box is an axis-aligned bounding box.
type Box struct {
	Left   int64 `json:"left"`
	Bottom int64 `json:"bottom"`
	Right  int64 `json:"right"`
	Top    int64 `json:"top"`
}

// NewBox returns the box spanning the two corners in any order.
func NewBox(x0, y0, x1, y1 int64) Box {
	return Box{Left: min(x0, x1), Bottom: min(y0, y1), Right: max(x0, x1), Top: max(y0, y1)}
}

func (b Box) String() string {
	return fmt.Sprintf("[%d,%d]-[%d,%d]", b.Left, b.Bottom, b.Right, b.Top)
}

// Valid reports whether the box is not inverted.
func (b Box) Valid() bool { return b.Left <= b.Right && b.Bottom <= b.Top }

// Width returns Right - Left.
func (b Box) Width() int64 { return b.Right - b.Left }

// Height returns Top - Bottom.
func (b Box) Height() int64 { return b.Top - b.Bottom }

// Center2 returns twice the center point, which keeps the result integral.
func (b Box) Center2() Point {
	return Point{X: b.Left + b.Right, Y: b.Bottom + b.Top}
}

// Contains reports whether p lies inside b or on its boundary.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Left && p.X <= b.Right && p.Y >= b.Bottom && p.Y <= b.Top
}

// OverlapsX reports whether the horizontal extents of a and b overlap.
//
// The test is strict for boxes with width: abutting boxes (a.Right ==
// b.Left) do not overlap. A zero-width box overlaps when it lies within the
// other's closed horizontal extent.
func (b Box) OverlapsX(o Box) bool {
	lo, hi := max(b.Left, o.Left), min(b.Right, o.Right)
	if b.Width() == 0 || o.Width() == 0 {
		return lo <= hi
	}
	return lo < hi
}

// OverlapsY reports whether the closed vertical extents of a and b intersect.
func (b Box) OverlapsY(o Box) bool {
	return max(b.Bottom, o.Bottom) <= min(b.Top, o.Top)
}

// Union returns the smallest box containing both b and o.
func (b Box) Union(o Box) Box {
	return Box{
		Left:   min(b.Left, o.Left),
		Bottom: min(b.Bottom, o.Bottom),
		Right:  max(b.Right, o.Right),
		Top:    max(b.Top, o.Top),
	}
}

// Intersect returns the intersection of b and o and whether it is non-empty
// (touching boxes yield a degenerate, non-empty intersection).
func (b Box) Intersect(o Box) (Box, bool) {
	r := Box{
		Left:   max(b.Left, o.Left),
		Bottom: max(b.Bottom, o.Bottom),
		Right:  min(b.Right, o.Right),
		Top:    min(b.Top, o.Top),
	}
	return r, r.Valid()
}

// Manhattan returns |a.X-b.X| + |a.Y-b.Y|.
func Manhattan(a, b Point) int64 {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Bounds returns the union of all boxes, or the zero box when boxes is empty.
func Bounds(boxes []Box) Box {
	if len(boxes) == 0 {
		return Box{}
	}
	r := boxes[0]
	for _, b := range boxes[1:] {
		r = r.Union(b)
	}
	return r
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
