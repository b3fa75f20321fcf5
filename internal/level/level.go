// Package level holds the map geometry the renderer walks: vertices, sectors,
// sides, lines, wall segments, subsectors and the BSP node tree. All
// coordinates are 16.16 fixed point.
package level

import "bsprender/internal/fixed"

// NoTexture marks an absent wall texture on a side.
const NoTexture = 0

// Bounding box indices, in map units with y growing north.
const (
	BoxTop = iota
	BoxBottom
	BoxLeft
	BoxRight
)

// LineFlags mirror the linedef flag bits the renderer reads.
type LineFlags uint16

const (
	LineBlocking LineFlags = 1 << iota
	LineBlockMonsters
	LineTwoSided
	LineDontPegTop
	LineDontPegBottom
	LineSecret
	LineSoundBlock
	LineDontDraw
	LineMapped
)

type Vertex struct {
	X, Y fixed.Fixed
}

type Sector struct {
	FloorHeight   fixed.Fixed
	CeilingHeight fixed.Fixed
	FloorPic      int
	CeilingPic    int
	LightLevel    int
	Special       int
	Tag           int

	// ValidCount equals the renderer's frame counter once the sector's
	// things have been registered in the current frame.
	ValidCount int
	Things     []*Thing
}

type Side struct {
	TextureOffset fixed.Fixed
	RowOffset     fixed.Fixed
	TopTexture    int
	BottomTexture int
	MidTexture    int
	Sector        *Sector
}

type Line struct {
	V1, V2      *Vertex
	Dx, Dy      fixed.Fixed
	Flags       LineFlags
	Special     int
	Tag         int
	Sides       [2]*Side
	FrontSector *Sector
	BackSector  *Sector
}

// Seg is a directed piece of a line, the unit the wall rasterizer draws.
// The front side is on the right of V1->V2.
type Seg struct {
	V1, V2      *Vertex
	Offset      fixed.Fixed
	Angle       fixed.Angle
	Side        *Side
	Line        *Line
	FrontSector *Sector
	BackSector  *Sector
}

// SubSector is a convex BSP leaf: a run of Segs in one sector.
type SubSector struct {
	Sector   *Sector
	FirstSeg int
	NumSegs  int
}

// Node is a BSP partition. Child 0 is on the front (right) side of the
// partition line.
type Node struct {
	X, Y     fixed.Fixed
	Dx, Dy   fixed.Fixed
	BBox     [2][4]fixed.Fixed
	Children [2]Child
}

// Level is immutable during rendering except for the per-frame Sector
// ValidCount marks and the Line mapped flag.
type Level struct {
	Name       string
	Vertices   []Vertex
	Sectors    []Sector
	Sides      []Side
	Lines      []Line
	Segs       []Seg
	SubSectors []SubSector
	Nodes      []Node
	Things     []*Thing
}

// Root returns the child that starts a BSP walk. A level without nodes is a
// single subsector.
func (l *Level) Root() Child {
	if len(l.Nodes) == 0 {
		return SubSectorChild(0)
	}
	return NodeChild(len(l.Nodes) - 1)
}

// SubSectorSegs returns the segs of subsector i.
func (l *Level) SubSectorSegs(i int) []Seg {
	ss := &l.SubSectors[i]
	return l.Segs[ss.FirstSeg : ss.FirstSeg+ss.NumSegs]
}
