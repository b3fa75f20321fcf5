package leveltest

import "bsprender/internal/level"

// WallTexture is the texture id fixtures put on solid walls.
const WallTexture = 1

// Box is a single square room of side 2*half centered on the origin with
// solid walls on all four sides.
func Box(half int, s SectorSpec) *level.Level {
	b := NewBuilder()
	sec := b.AddSector(s)
	wall := Tex{Mid: WallTexture}
	// clockwise so the interior is on the right of every line
	n := b.AddLine(-half, half, half, half, sec, -1, wall, Tex{})
	e := b.AddLine(half, half, half, -half, sec, -1, wall, Tex{})
	so := b.AddLine(half, -half, -half, -half, sec, -1, wall, Tex{})
	w := b.AddLine(-half, -half, -half, half, sec, -1, wall, Tex{})
	b.AddSubSector(sec, SegRef{Line: n}, SegRef{Line: e}, SegRef{Line: so}, SegRef{Line: w})
	return b.Build()
}

// TwoRooms joins west room a (x in [-w, 0]) and east room b (x in [0, w])
// through a two-sided line on x = 0. Both rooms span y in [-h, h]. The
// west side of the shared line carries shared as its textures.
func TwoRooms(w, h int, a, bs SectorSpec, shared Tex) *level.Level {
	return twoRooms(NewBuilder(), w, h, a, bs, shared)
}

// TwoRoomsBuilder is TwoRooms but returns the builder so callers can add
// things before Build.
func TwoRoomsBuilder(w, h int, a, bs SectorSpec, shared Tex) (*Builder, func() *level.Level) {
	b := NewBuilder()
	return b, func() *level.Level { return twoRooms(b, w, h, a, bs, shared) }
}

func twoRooms(b *Builder, w, h int, a, bs SectorSpec, shared Tex) *level.Level {
	west := b.AddSector(a)
	east := b.AddSector(bs)
	wall := Tex{Mid: WallTexture}

	an := b.AddLine(-w, h, 0, h, west, -1, wall, Tex{})
	mid := b.AddLine(0, h, 0, -h, west, east, shared, shared)
	as := b.AddLine(0, -h, -w, -h, west, -1, wall, Tex{})
	aw := b.AddLine(-w, -h, -w, h, west, -1, wall, Tex{})

	bn := b.AddLine(0, h, w, h, east, -1, wall, Tex{})
	be := b.AddLine(w, h, w, -h, east, -1, wall, Tex{})
	bso := b.AddLine(w, -h, 0, -h, east, -1, wall, Tex{})

	westSS := b.AddSubSector(west, SegRef{Line: an}, SegRef{Line: mid}, SegRef{Line: as}, SegRef{Line: aw})
	eastSS := b.AddSubSector(east, SegRef{Line: bn}, SegRef{Line: be}, SegRef{Line: bso}, SegRef{Line: mid, Back: true})

	// partition runs north along x = 0, so east is the front side
	b.AddNode(0, -h, 0, 2*h, eastSS, westSS,
		[4]int{h, -h, 0, w}, [4]int{h, -h, -w, 0})
	return b.Build()
}
