package floorplan

import (
	"fmt"

	"github.com/matzehuels/topfloor/pkg/geom"
)

// Side is the cell side a slot sits on.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "L"
	case SideRight:
		return "R"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "L":
		*s = SideLeft
	case "R":
		*s = SideRight
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// Slot is a candidate pin location on a cell side. A side of height H has
// H / ResourcePerLength tracks; track t sits at the middle of its band.
type Slot struct {
	Cell  int
	Side  Side
	Track int
	Pos   geom.Point
}

func (s Slot) String() string { return fmt.Sprintf("%d.%s%d", s.Cell, s.Side, s.Track) }

// cellSlots lists the slots of a cell, left side first, bottom to top.
func cellSlots(cell int, box geom.Box, r int64) []Slot {
	tracks := int(box.Height() / r)
	slots := make([]Slot, 0, 2*tracks)
	for _, side := range []Side{SideLeft, SideRight} {
		x := box.Left
		if side == SideRight {
			x = box.Right
		}
		for t := range tracks {
			slots = append(slots, Slot{
				Cell:  cell,
				Side:  side,
				Track: t,
				Pos:   geom.Point{X: x, Y: box.Bottom + int64(t)*r + r/2},
			})
		}
	}
	return slots
}
