package level

import "bsprender/internal/fixed"

// ThingFlags are the visual flags the sprite renderer reads.
type ThingFlags uint32

const (
	// ThingShadow draws the thing with the fuzz effect.
	ThingShadow ThingFlags = 1 << iota
	// ThingFullBright ignores sector light.
	ThingFullBright
)

// Thing is a positioned, animated map object as the renderer sees it.
type Thing struct {
	X, Y, Z fixed.Fixed
	Angle   fixed.Angle
	Sprite  int
	Frame   int
	Flags   ThingFlags
	// Translation selects a player color table, 0 for none.
	Translation int
	Type        int

	SubSector *SubSector
}

// LinkThing places t into the sector under its position. A thing that is
// already linked is moved.
func (l *Level) LinkThing(t *Thing) {
	if t.SubSector != nil {
		l.UnlinkThing(t)
	}
	t.SubSector = l.PointInSubsector(t.X, t.Y)
	sec := t.SubSector.Sector
	sec.Things = append(sec.Things, t)
}

// UnlinkThing removes t from its sector list.
func (l *Level) UnlinkThing(t *Thing) {
	if t.SubSector == nil {
		return
	}
	sec := t.SubSector.Sector
	for i, o := range sec.Things {
		if o == t {
			sec.Things = append(sec.Things[:i], sec.Things[i+1:]...)
			break
		}
	}
	t.SubSector = nil
}

// LinkThings links every thing in l.Things.
func (l *Level) LinkThings() {
	for _, t := range l.Things {
		l.LinkThing(t)
	}
}
