package wad

import (
	"fmt"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
)

type binVertex struct {
	X, Y int16
}

type binSector struct {
	FloorHeight   int16
	CeilingHeight int16
	FloorPic      String8
	CeilingPic    String8
	LightLevel    int16
	Special       int16
	Tag           int16
}

type binSide struct {
	TextureOffset int16
	RowOffset     int16
	TopTexture    String8
	BottomTexture String8
	MidTexture    String8
	Sector        int16
}

type binLine struct {
	V1, V2  uint16
	Flags   int16
	Special int16
	Tag     int16
	Sides   [2]int16 // -1 for none
}

type binSeg struct {
	V1, V2 uint16
	Angle  int16
	Line   uint16
	Side   int16
	Offset int16
}

type binSubSector struct {
	NumSegs  uint16
	FirstSeg uint16
}

type binNode struct {
	X, Y     int16
	Dx, Dy   int16
	BBox     [2][4]int16
	Children [2]uint16
}

type binThing struct {
	X, Y    int16
	Angle   int16
	Type    int16
	Options int16
}

// Start is a player start position.
type Start struct {
	X, Y  fixed.Fixed
	Angle fixed.Angle
}

// Map is a level read from the archive.
type Map struct {
	*level.Level
	Start    Start
	HasStart bool
}

// mapLumps are the lumps of a level in directory order after the marker.
var mapLumps = [...]string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SEGS", "SSECTORS", "NODES", "SECTORS"}

// ReadLevel reads the named level. LoadAssets must have been called so
// texture, flat and sprite names can be resolved.
func (w *WAD) ReadLevel(name string) (*Map, error) {
	logger.Printf("Reading level %s ...", name)
	marker, ok := w.levels[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoLevel, name)
	}
	if w.textureNums == nil || w.flatNums == nil {
		return nil, fmt.Errorf("wad: level %s: assets not loaded", name)
	}
	lumps := make(map[string]*LumpInfo, len(mapLumps))
	for i, want := range mapLumps {
		n := marker + 1 + i
		if n >= len(w.lumpInfos) || w.lumpInfos[n].Name != want {
			return nil, fmt.Errorf("level %s: %w: %s", name, ErrLumpNotFound, want)
		}
		lumps[want] = &w.lumpInfos[n]
	}

	l := &level.Level{Name: name}
	m := &Map{Level: l}
	err := w.readVertexes(l, lumps["VERTEXES"])
	if err == nil {
		err = w.readSectors(l, lumps["SECTORS"])
	}
	if err == nil {
		err = w.readSides(l, lumps["SIDEDEFS"])
	}
	if err == nil {
		err = w.readLines(l, lumps["LINEDEFS"])
	}
	if err == nil {
		err = w.readSegs(l, lumps["SEGS"])
	}
	if err == nil {
		err = w.readSubSectors(l, lumps["SSECTORS"])
	}
	if err == nil {
		err = w.readNodes(l, lumps["NODES"])
	}
	if err == nil {
		err = w.readThings(m, lumps["THINGS"])
	}
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	logger.Printf("Read level %s: %d sectors, %d segs, %d nodes, %d things",
		name, len(l.Sectors), len(l.Segs), len(l.Nodes), len(l.Things))
	return m, nil
}

func (w *WAD) readVertexes(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binVertex](w, li)
	if err != nil {
		return err
	}
	l.Vertices = make([]level.Vertex, len(bin))
	for i, v := range bin {
		l.Vertices[i] = level.Vertex{X: fixed.FromInt(int(v.X)), Y: fixed.FromInt(int(v.Y))}
	}
	return nil
}

func (w *WAD) readSectors(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binSector](w, li)
	if err != nil {
		return err
	}
	l.Sectors = make([]level.Sector, len(bin))
	for i, s := range bin {
		floor, ok := w.flatNums[s.FloorPic.String()]
		if !ok {
			return fmt.Errorf("sector %d: unknown flat %s", i, s.FloorPic)
		}
		ceiling, ok := w.flatNums[s.CeilingPic.String()]
		if !ok {
			return fmt.Errorf("sector %d: unknown flat %s", i, s.CeilingPic)
		}
		l.Sectors[i] = level.Sector{
			FloorHeight:   fixed.FromInt(int(s.FloorHeight)),
			CeilingHeight: fixed.FromInt(int(s.CeilingHeight)),
			FloorPic:      floor,
			CeilingPic:    ceiling,
			LightLevel:    int(s.LightLevel),
			Special:       int(s.Special),
			Tag:           int(s.Tag),
		}
	}
	return nil
}

// textureNum resolves a side texture name. Unknown names draw as nothing,
// with a log line.
func (w *WAD) textureNum(name String8) int {
	s := name.String()
	if s == "" || s == NoTextureName {
		return level.NoTexture
	}
	id, ok := w.textureNums[s]
	if !ok {
		logger.Printf("Err: unknown texture %s", s)
		return level.NoTexture
	}
	return id
}

func (w *WAD) readSides(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binSide](w, li)
	if err != nil {
		return err
	}
	l.Sides = make([]level.Side, len(bin))
	for i, s := range bin {
		if int(s.Sector) < 0 || int(s.Sector) >= len(l.Sectors) {
			return fmt.Errorf("side %d: sector %d out of range", i, s.Sector)
		}
		l.Sides[i] = level.Side{
			TextureOffset: fixed.FromInt(int(s.TextureOffset)),
			RowOffset:     fixed.FromInt(int(s.RowOffset)),
			TopTexture:    w.textureNum(s.TopTexture),
			BottomTexture: w.textureNum(s.BottomTexture),
			MidTexture:    w.textureNum(s.MidTexture),
			Sector:        &l.Sectors[s.Sector],
		}
	}
	return nil
}

func (w *WAD) readLines(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binLine](w, li)
	if err != nil {
		return err
	}
	l.Lines = make([]level.Line, len(bin))
	for i, b := range bin {
		if int(b.V1) >= len(l.Vertices) || int(b.V2) >= len(l.Vertices) {
			return fmt.Errorf("line %d: vertex out of range", i)
		}
		ln := &l.Lines[i]
		ln.V1 = &l.Vertices[b.V1]
		ln.V2 = &l.Vertices[b.V2]
		ln.Dx = ln.V2.X - ln.V1.X
		ln.Dy = ln.V2.Y - ln.V1.Y
		ln.Flags = level.LineFlags(b.Flags) &^ level.LineMapped
		ln.Special = int(b.Special)
		ln.Tag = int(b.Tag)
		for s, n := range b.Sides {
			if n < 0 {
				continue
			}
			if int(n) >= len(l.Sides) {
				return fmt.Errorf("line %d: side %d out of range", i, n)
			}
			ln.Sides[s] = &l.Sides[n]
		}
		if ln.Sides[0] == nil {
			return fmt.Errorf("line %d has no front side", i)
		}
		ln.FrontSector = ln.Sides[0].Sector
		if ln.Sides[1] != nil {
			ln.BackSector = ln.Sides[1].Sector
		}
	}
	return nil
}

func (w *WAD) readSegs(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binSeg](w, li)
	if err != nil {
		return err
	}
	l.Segs = make([]level.Seg, len(bin))
	for i, b := range bin {
		if int(b.V1) >= len(l.Vertices) || int(b.V2) >= len(l.Vertices) || int(b.Line) >= len(l.Lines) {
			return fmt.Errorf("seg %d: reference out of range", i)
		}
		if b.Side != 0 && b.Side != 1 {
			return fmt.Errorf("seg %d: bad side %d", i, b.Side)
		}
		ln := &l.Lines[b.Line]
		side := ln.Sides[b.Side]
		if side == nil {
			return fmt.Errorf("seg %d: line %d has no side %d", i, b.Line, b.Side)
		}
		s := &l.Segs[i]
		s.V1 = &l.Vertices[b.V1]
		s.V2 = &l.Vertices[b.V2]
		s.Angle = fixed.Angle(uint16(b.Angle)) << 16
		s.Offset = fixed.FromInt(int(b.Offset))
		s.Line = ln
		s.Side = side
		s.FrontSector = side.Sector
		if ln.Flags&level.LineTwoSided != 0 {
			if back := ln.Sides[b.Side^1]; back != nil {
				s.BackSector = back.Sector
			}
		}
	}
	return nil
}

func (w *WAD) readSubSectors(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binSubSector](w, li)
	if err != nil {
		return err
	}
	l.SubSectors = make([]level.SubSector, len(bin))
	for i, b := range bin {
		first, n := int(b.FirstSeg), int(b.NumSegs)
		if n == 0 || first+n > len(l.Segs) {
			return fmt.Errorf("subsector %d: segs [%d, +%d) out of range", i, first, n)
		}
		l.SubSectors[i] = level.SubSector{
			Sector:   l.Segs[first].Side.Sector,
			FirstSeg: first,
			NumSegs:  n,
		}
	}
	return nil
}

func (w *WAD) readNodes(l *level.Level, li *LumpInfo) error {
	bin, err := readRecords[binNode](w, li)
	if err != nil {
		return err
	}
	l.Nodes = make([]level.Node, len(bin))
	for i, b := range bin {
		n := &l.Nodes[i]
		n.X = fixed.FromInt(int(b.X))
		n.Y = fixed.FromInt(int(b.Y))
		n.Dx = fixed.FromInt(int(b.Dx))
		n.Dy = fixed.FromInt(int(b.Dy))
		for s := 0; s < 2; s++ {
			for k := 0; k < 4; k++ {
				n.BBox[s][k] = fixed.FromInt(int(b.BBox[s][k]))
			}
			n.Children[s] = level.Child(b.Children[s])
		}
	}
	return nil
}

// readThings keeps the single-player things of the hardest skill that have
// a known sprite, and records the player 1 start.
func (w *WAD) readThings(m *Map, li *LumpInfo) error {
	bin, err := readRecords[binThing](w, li)
	if err != nil {
		return err
	}
	l := m.Level
	for _, b := range bin {
		x, y := fixed.FromInt(int(b.X)), fixed.FromInt(int(b.Y))
		angle := fixed.Ang45 * fixed.Angle(int(b.Angle)/45)
		if int(b.Type) == PlayerStart {
			m.Start = Start{X: x, Y: y, Angle: angle}
			m.HasStart = true
			continue
		}
		if b.Options&optMultiplayer != 0 || b.Options&optSkillHard == 0 {
			continue
		}
		info, ok := thingTypes[int(b.Type)]
		if !ok {
			continue
		}
		sprite, ok := w.spriteNums[info.sprite]
		if !ok {
			logger.Printf("Err: thing type %d: sprite %s not found", b.Type, info.sprite)
			continue
		}
		l.Things = append(l.Things, &level.Thing{
			X:      x,
			Y:      y,
			Angle:  angle,
			Sprite: sprite,
			Flags:  info.flags,
			Type:   int(b.Type),
		})
	}
	if len(l.SubSectors) == 0 {
		return level.ErrEmptyLevel
	}
	l.LinkThings()
	for _, t := range l.Things {
		t.Z = t.SubSector.Sector.FloorHeight
	}
	return nil
}
