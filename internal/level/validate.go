package level

import (
	"errors"
	"fmt"
)

var ErrEmptyLevel = errors.New("level has no subsectors")

// Validate checks the references the renderer follows without bounds
// checks of its own.
func (l *Level) Validate() error {
	if len(l.SubSectors) == 0 {
		return ErrEmptyLevel
	}
	for i := range l.Nodes {
		for side, c := range l.Nodes[i].Children {
			if c.IsSubSector() {
				if c.Index() >= len(l.SubSectors) {
					return fmt.Errorf("node %d child %d: subsector %d out of range", i, side, c.Index())
				}
			} else if c.Index() >= i {
				// children always precede their parent
				return fmt.Errorf("node %d child %d: node %d out of range", i, side, c.Index())
			}
		}
	}
	for i, ss := range l.SubSectors {
		if ss.Sector == nil {
			return fmt.Errorf("subsector %d has no sector", i)
		}
		if ss.NumSegs <= 0 || ss.FirstSeg < 0 || ss.FirstSeg+ss.NumSegs > len(l.Segs) {
			return fmt.Errorf("subsector %d: segs [%d, +%d) out of range", i, ss.FirstSeg, ss.NumSegs)
		}
	}
	for i, s := range l.Segs {
		if s.V1 == nil || s.V2 == nil || s.Side == nil || s.Line == nil || s.FrontSector == nil {
			return fmt.Errorf("seg %d has unresolved references", i)
		}
	}
	return nil
}
