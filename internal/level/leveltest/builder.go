// Package leveltest builds small synthetic levels for renderer tests.
package leveltest

import (
	"bsprender/internal/fixed"
	"bsprender/internal/level"
)

// SectorSpec describes a sector in map units.
type SectorSpec struct {
	Floor, Ceiling       int
	FloorPic, CeilingPic int
	Light                int
}

// Tex lists the textures of one side.
type Tex struct {
	Top, Mid, Bottom int
}

// SegRef names a seg by line and side.
type SegRef struct {
	Line int
	Back bool
}

type lineSpec struct {
	x1, y1, x2, y2 int
	front, back    int
	frontTex       Tex
	backTex        Tex
	flags          level.LineFlags
}

type nodeSpec struct {
	x, y, dx, dy int
	children     [2]level.Child
	boxes        [2][4]int
}

// Builder accumulates geometry by index and resolves pointers in Build.
type Builder struct {
	sectors    []SectorSpec
	lines      []lineSpec
	subsectors [][]SegRef
	subSectors []int
	nodes      []nodeSpec
	things     []level.Thing
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) AddSector(s SectorSpec) int {
	b.sectors = append(b.sectors, s)
	return len(b.sectors) - 1
}

// AddLine adds a line from (x1, y1) to (x2, y2). back is -1 for a one-sided
// line.
func (b *Builder) AddLine(x1, y1, x2, y2, front, back int, frontTex, backTex Tex) int {
	ls := lineSpec{x1: x1, y1: y1, x2: x2, y2: y2, front: front, back: back, frontTex: frontTex, backTex: backTex}
	if back >= 0 {
		ls.flags |= level.LineTwoSided
	}
	b.lines = append(b.lines, ls)
	return len(b.lines) - 1
}

// SetLineFlags ors extra flags into line i.
func (b *Builder) SetLineFlags(i int, f level.LineFlags) {
	b.lines[i].flags |= f
}

func (b *Builder) AddSubSector(sector int, segs ...SegRef) level.Child {
	b.subsectors = append(b.subsectors, segs)
	b.subSectors = append(b.subSectors, sector)
	return level.SubSectorChild(len(b.subsectors) - 1)
}

// AddNode adds a partition from (x, y) along (dx, dy). Boxes are
// top, bottom, left, right.
func (b *Builder) AddNode(x, y, dx, dy int, front, back level.Child, frontBox, backBox [4]int) level.Child {
	b.nodes = append(b.nodes, nodeSpec{x: x, y: y, dx: dx, dy: dy,
		children: [2]level.Child{front, back}, boxes: [2][4]int{frontBox, backBox}})
	return level.NodeChild(len(b.nodes) - 1)
}

func (b *Builder) AddThing(t level.Thing) {
	b.things = append(b.things, t)
}

// Build resolves the level and links its things.
func (b *Builder) Build() *level.Level {
	l := &level.Level{Name: "TEST"}
	l.Sectors = make([]level.Sector, len(b.sectors))
	for i, s := range b.sectors {
		l.Sectors[i] = level.Sector{
			FloorHeight:   fixed.FromInt(s.Floor),
			CeilingHeight: fixed.FromInt(s.Ceiling),
			FloorPic:      s.FloorPic,
			CeilingPic:    s.CeilingPic,
			LightLevel:    s.Light,
		}
	}

	l.Vertices = make([]level.Vertex, 0, 2*len(b.lines))
	l.Lines = make([]level.Line, len(b.lines))
	l.Sides = make([]level.Side, 0, 2*len(b.lines))
	for i, ls := range b.lines {
		l.Vertices = append(l.Vertices,
			level.Vertex{X: fixed.FromInt(ls.x1), Y: fixed.FromInt(ls.y1)},
			level.Vertex{X: fixed.FromInt(ls.x2), Y: fixed.FromInt(ls.y2)})
		l.Sides = append(l.Sides, side(ls.frontTex, &l.Sectors[ls.front]))
		ln := &l.Lines[i]
		ln.V1 = &l.Vertices[2*i]
		ln.V2 = &l.Vertices[2*i+1]
		ln.Dx = ln.V2.X - ln.V1.X
		ln.Dy = ln.V2.Y - ln.V1.Y
		ln.Flags = ls.flags
		ln.FrontSector = &l.Sectors[ls.front]
		if ls.back >= 0 {
			l.Sides = append(l.Sides, side(ls.backTex, &l.Sectors[ls.back]))
			ln.BackSector = &l.Sectors[ls.back]
		}
	}
	// sides were appended in line order; resolve after the slice is final
	si := 0
	for i, ls := range b.lines {
		l.Lines[i].Sides[0] = &l.Sides[si]
		si++
		if ls.back >= 0 {
			l.Lines[i].Sides[1] = &l.Sides[si]
			si++
		}
	}

	for i, refs := range b.subsectors {
		first := len(l.Segs)
		for _, r := range refs {
			l.Segs = append(l.Segs, seg(&l.Lines[r.Line], r.Back))
		}
		l.SubSectors = append(l.SubSectors, level.SubSector{
			Sector:   &l.Sectors[b.subSectors[i]],
			FirstSeg: first,
			NumSegs:  len(refs),
		})
	}

	for _, n := range b.nodes {
		node := level.Node{
			X: fixed.FromInt(n.x), Y: fixed.FromInt(n.y),
			Dx: fixed.FromInt(n.dx), Dy: fixed.FromInt(n.dy),
			Children: n.children,
		}
		for s := 0; s < 2; s++ {
			for k := 0; k < 4; k++ {
				node.BBox[s][k] = fixed.FromInt(n.boxes[s][k])
			}
		}
		l.Nodes = append(l.Nodes, node)
	}

	for i := range b.things {
		t := b.things[i]
		l.Things = append(l.Things, &t)
	}
	l.LinkThings()
	return l
}

func side(t Tex, sec *level.Sector) level.Side {
	return level.Side{TopTexture: t.Top, MidTexture: t.Mid, BottomTexture: t.Bottom, Sector: sec}
}

func seg(ln *level.Line, back bool) level.Seg {
	s := level.Seg{Line: ln, V1: ln.V1, V2: ln.V2, Side: ln.Sides[0],
		FrontSector: ln.FrontSector, BackSector: ln.BackSector}
	if back {
		s.V1, s.V2 = ln.V2, ln.V1
		s.Side = ln.Sides[1]
		s.FrontSector, s.BackSector = ln.BackSector, ln.FrontSector
	}
	s.Angle = fixed.PointToAngle2(s.V1.X, s.V1.Y, s.V2.X, s.V2.Y)
	return s
}
