package wad

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
	"bsprender/internal/render"
)

type testLump struct {
	name string
	data []byte
}

// archive assembles a WAD image from lumps.
type archive struct {
	lumps []testLump
}

func (a *archive) add(name string, data []byte) { a.lumps = append(a.lumps, testLump{name, data}) }

func (a *archive) addRecords(name string, records any) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, records); err != nil {
		panic(err)
	}
	a.add(name, buf.Bytes())
}

func (a *archive) bytes(magic string) []byte {
	var body bytes.Buffer
	offsets := make([]int32, len(a.lumps))
	for i, l := range a.lumps {
		offsets[i] = int32(12 + body.Len())
		body.Write(l.data)
	}
	var out bytes.Buffer
	out.WriteString(magic)
	binary.Write(&out, binary.LittleEndian, int32(len(a.lumps)))
	binary.Write(&out, binary.LittleEndian, int32(12+body.Len()))
	out.Write(body.Bytes())
	for i, l := range a.lumps {
		binary.Write(&out, binary.LittleEndian, binLumpInfo{Filepos: offsets[i], Size: int32(len(l.data)), Name: name8(l.name)})
	}
	return out.Bytes()
}

func name8(s string) String8 {
	var n String8
	copy(n[:], s)
	return n
}

// patchLump encodes a w x h picture with one post per column of color c.
func patchLump(w, h int, c byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, binPatchHeader{Width: int16(w), Height: int16(h), LeftOffset: int16(w / 2), TopOffset: int16(h)})
	colStart := 8 + 4*w
	colSize := 3 + h + 1 + 1
	for x := 0; x < w; x++ {
		binary.Write(&buf, binary.LittleEndian, int32(colStart+x*colSize))
	}
	for x := 0; x < w; x++ {
		buf.Write([]byte{0, byte(h), 0})
		for y := 0; y < h; y++ {
			buf.WriteByte(c)
		}
		buf.Write([]byte{0, 0xff})
	}
	return buf.Bytes()
}

func textureLump(names ...string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(names)))
	entry := binary.Size(binTextureHeader{}) + binary.Size(binTexturePatch{})
	for i := range names {
		binary.Write(&buf, binary.LittleEndian, int32(4+4*len(names)+i*entry))
	}
	for _, n := range names {
		binary.Write(&buf, binary.LittleEndian, binTextureHeader{Name: name8(n), Width: 8, Height: 16, NumPatches: 1})
		binary.Write(&buf, binary.LittleEndian, binTexturePatch{})
	}
	return buf.Bytes()
}

func testArchive() *archive {
	a := &archive{}

	pal := make([]byte, 768)
	for i := range pal {
		pal[i] = byte(i / 3)
	}
	a.add("PLAYPAL", pal)
	cm := make([]byte, 34*256)
	for i := range cm {
		cm[i] = byte(i)
	}
	a.add("COLORMAP", cm)

	a.addRecords("PNAMES", struct {
		Count uint32
		Names [1]String8
	}{1, [1]String8{name8("wall")}})
	a.add("WALL", patchLump(8, 16, 10))
	a.add("TEXTURE1", textureLump("WALL", "SKY1"))

	flat := bytes.Repeat([]byte{40}, 4096)
	a.add("F_START", nil)
	a.add("FLOOR4_8", flat)
	a.add("F_SKY1", flat)
	a.add("F_END", nil)

	a.add("S_START", nil)
	a.add("BAR1A0", patchLump(4, 8, 70))
	a.add("TROOA1", patchLump(4, 8, 71))
	a.add("TROOA2A8", patchLump(4, 8, 72))
	a.add("TROOA3A7", patchLump(4, 8, 73))
	a.add("TROOA4A6", patchLump(4, 8, 74))
	a.add("TROOA5", patchLump(4, 8, 75))
	a.add("S_END", nil)

	// one square room, 256 units across
	a.add("E1M1", nil)
	a.addRecords("THINGS", []binThing{
		{X: -64, Y: 0, Angle: 0, Type: PlayerStart, Options: 7},
		{X: 64, Y: 0, Angle: 90, Type: 2035, Options: 7},
		{X: 64, Y: 32, Type: 2035, Options: 7 | optMultiplayer},
		{X: 64, Y: -32, Type: 2035, Options: 1},
		{X: 0, Y: 64, Type: 9999, Options: 7},
	})
	a.addRecords("LINEDEFS", []binLine{
		{V1: 0, V2: 1, Flags: 1, Sides: [2]int16{0, -1}},
		{V1: 1, V2: 2, Flags: 1, Sides: [2]int16{1, -1}},
		{V1: 2, V2: 3, Flags: 1, Sides: [2]int16{2, -1}},
		{V1: 3, V2: 0, Flags: 1, Sides: [2]int16{3, -1}},
	})
	wall := binSide{MidTexture: name8("WALL"), TopTexture: name8("-"), BottomTexture: name8("-")}
	odd := wall
	odd.MidTexture = name8("NOSUCH")
	a.addRecords("SIDEDEFS", []binSide{wall, wall, wall, odd})
	a.addRecords("VERTEXES", []binVertex{{-128, 128}, {128, 128}, {128, -128}, {-128, -128}})
	a.addRecords("SEGS", []binSeg{
		{V1: 0, V2: 1, Angle: 0, Line: 0},
		{V1: 1, V2: 2, Angle: -16384, Line: 1},
		{V1: 2, V2: 3, Angle: -32768, Line: 2},
		{V1: 3, V2: 0, Angle: 16384, Line: 3},
	})
	a.addRecords("SSECTORS", []binSubSector{{NumSegs: 4, FirstSeg: 0}})
	a.add("NODES", nil)
	a.addRecords("SECTORS", []binSector{{
		FloorHeight: 8, CeilingHeight: 128,
		FloorPic: name8("FLOOR4_8"), CeilingPic: name8("F_SKY1"), LightLevel: 160,
	}})
	return a
}

func openTest(t *testing.T) *WAD {
	t.Helper()
	w, err := New(bytes.NewReader(testArchive().bytes("IWAD")))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func loadTest(t *testing.T) (*WAD, *render.Assets) {
	t.Helper()
	w := openTest(t)
	a, err := w.LoadAssets(context.Background())
	if err != nil {
		t.Fatalf("LoadAssets: %v", err)
	}
	return w, a
}

func TestNewRejectsBadMagic(t *testing.T) {
	_, err := New(bytes.NewReader(testArchive().bytes("XWAD")))
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("New() error = %v, want ErrBadMagic", err)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wad")
	if err := os.WriteFile(path, testArchive().bytes("PWAD"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer w.Close()
	if got := w.LevelNames(); len(got) != 1 || got[0] != "E1M1" {
		t.Errorf("LevelNames = %v, want [E1M1]", got)
	}
	if _, err := Open(filepath.Join(t.TempDir(), "missing.wad")); err == nil {
		t.Error("Open of a missing file succeeded")
	}
}

func TestLoadAssets(t *testing.T) {
	w, a := loadTest(t)

	if got := a.Palette[5]; got.R != 5 || got.G != 5 || got.B != 5 || got.A != 0xff {
		t.Errorf("palette[5] = %v", got)
	}
	if len(a.Colormaps) != 34 {
		t.Errorf("colormaps = %d, want 34", len(a.Colormaps))
	}

	id, ok := w.TextureNum("wall")
	if !ok || id != 1 {
		t.Fatalf("TextureNum(wall) = %d, %v", id, ok)
	}
	tex := a.Textures[id]
	if tex.Width != 8 || tex.Height != 16 {
		t.Errorf("WALL is %dx%d, want 8x16", tex.Width, tex.Height)
	}
	for _, p := range tex.Column(3) {
		if p != 10 {
			t.Fatalf("WALL column pixel = %d, want 10", p)
		}
	}
	if a.SkyTexture != 2 {
		t.Errorf("SkyTexture = %d, want 2", a.SkyTexture)
	}

	if got, _ := w.FlatNum("F_SKY1"); a.SkyFlat != got || got == 0 {
		t.Errorf("SkyFlat = %d, want %d", a.SkyFlat, got)
	}
	if len(a.Flats) != 3 || a.Flats[0] != nil {
		t.Errorf("flats = %d with reserved slot %v", len(a.Flats), a.Flats[0])
	}
}

func TestSpriteRotations(t *testing.T) {
	w, a := loadTest(t)

	bar, ok := w.SpriteNum("BAR1")
	if !ok {
		t.Fatal("BAR1 not loaded")
	}
	f := a.Sprites[bar].Frames[0]
	if f.Rotate {
		t.Error("BAR1A0 marked as rotating")
	}
	for r, p := range f.Patches {
		if p == nil || f.Flip[r] {
			t.Errorf("BAR1 rotation %d: patch %v flip %v", r, p, f.Flip[r])
		}
	}

	troo, _ := w.SpriteNum("TROO")
	f = a.Sprites[troo].Frames[0]
	if !f.Rotate {
		t.Fatal("TROOA not rotating")
	}
	tests := []struct {
		rot  int
		name string
		flip bool
	}{
		{0, "TROOA1", false},
		{1, "TROOA2A8", false},
		{7, "TROOA2A8", true},
		{5, "TROOA4A6", true},
		{4, "TROOA5", false},
	}
	for _, tt := range tests {
		if p := f.Patches[tt.rot]; p == nil || p.Name != tt.name || f.Flip[tt.rot] != tt.flip {
			t.Errorf("rotation %d = %v flip %v, want %s flip %v", tt.rot, p, f.Flip[tt.rot], tt.name, tt.flip)
		}
	}
}

func TestMissingRotationRejected(t *testing.T) {
	a := testArchive()
	for i, l := range a.lumps {
		if l.name == "TROOA5" {
			a.lumps = append(a.lumps[:i], a.lumps[i+1:]...)
			break
		}
	}
	w, err := New(bytes.NewReader(a.bytes("IWAD")))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.LoadAssets(context.Background()); err == nil {
		t.Error("LoadAssets accepted a sprite with a missing rotation")
	}
}

func TestReadLevel(t *testing.T) {
	w, _ := loadTest(t)
	m, err := w.ReadLevel("E1M1")
	if err != nil {
		t.Fatalf("ReadLevel: %v", err)
	}

	if len(m.Lines) != 4 || len(m.Segs) != 4 || len(m.Nodes) != 0 {
		t.Fatalf("lines %d segs %d nodes %d", len(m.Lines), len(m.Segs), len(m.Nodes))
	}
	if m.Vertices[1].X != fixed.FromInt(128) {
		t.Errorf("vertex 1 x = %v", m.Vertices[1].X.Float())
	}
	if m.Segs[1].Angle != fixed.Ang270 {
		t.Errorf("seg 1 angle = %#x, want %#x", m.Segs[1].Angle, fixed.Ang270)
	}
	if m.Segs[2].Angle != fixed.Ang180 {
		t.Errorf("seg 2 angle = %#x, want %#x", m.Segs[2].Angle, fixed.Ang180)
	}
	if m.Sides[3].MidTexture != level.NoTexture {
		t.Errorf("unknown texture resolved to %d", m.Sides[3].MidTexture)
	}
	if m.Sides[0].TopTexture != level.NoTexture {
		t.Errorf("\"-\" resolved to %d", m.Sides[0].TopTexture)
	}
	if m.Lines[0].Flags&level.LineBlocking == 0 {
		t.Error("line flags lost")
	}

	if !m.HasStart || m.Start.X != fixed.FromInt(-64) {
		t.Errorf("player start = %+v (found %v)", m.Start, m.HasStart)
	}
	if len(m.Things) != 1 {
		t.Fatalf("things = %d, want 1 single-player barrel", len(m.Things))
	}
	th := m.Things[0]
	if th.Z != fixed.FromInt(8) {
		t.Errorf("thing z = %v, want the floor", th.Z.Float())
	}
	if th.Angle != fixed.Ang90 {
		t.Errorf("thing angle = %#x, want %#x", th.Angle, fixed.Ang90)
	}
	if len(m.Sectors[0].Things) != 1 {
		t.Error("thing not linked into its sector")
	}
}

func TestReadLevelErrors(t *testing.T) {
	w := openTest(t)
	if _, err := w.ReadLevel("E1M1"); err == nil {
		t.Error("ReadLevel before LoadAssets succeeded")
	}
	if _, err := w.LoadAssets(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := w.ReadLevel("E9M9"); !errors.Is(err, ErrNoLevel) {
		t.Errorf("ReadLevel(E9M9) = %v, want ErrNoLevel", err)
	}
}

func TestDecodePatchTruncated(t *testing.T) {
	good := patchLump(4, 8, 1)
	tests := []struct {
		name string
		lump []byte
	}{
		{"header only", good[:8]},
		{"missing terminator", good[:len(good)-1]},
		{"zero width", []byte{0, 0, 8, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodePatch("BAD", tt.lump); err == nil {
				t.Error("decodePatch accepted a bad lump")
			}
		})
	}
}

func TestSkyTexture(t *testing.T) {
	w := &WAD{textureNums: map[string]int{"SKY1": 1, "SKY2": 2, "SKY3": 3}}
	tests := []struct {
		level string
		want  int
	}{
		{"E1M1", 1},
		{"E2M5", 2},
		{"E3M9", 3},
		{"MAP01", 1},
		{"MAP12", 2},
		{"MAP21", 3},
		{"SOMEMAP", 1},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got, _ := w.SkyTexture(tt.level); got != tt.want {
				t.Errorf("SkyTexture(%s) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestRenderLoadedLevel(t *testing.T) {
	w, a := loadTest(t)
	m, err := w.ReadLevel("E1M1")
	if err != nil {
		t.Fatal(err)
	}
	r, err := render.New(a, m.Level, render.DefaultLimits(), render.MaxBlocks, 0)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	v := &render.Viewer{X: m.Start.X, Y: m.Start.Y, Z: fixed.FromInt(49), Angle: m.Start.Angle}
	fb := make([]byte, render.ScreenWidth*render.ScreenHeight)
	stats, err := r.RenderFrame(v, fb)
	if err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if stats.VisSprites != 1 {
		t.Errorf("VisSprites = %d, want the barrel", stats.VisSprites)
	}
	found := false
	for y := 0; y < render.ScreenHeight; y++ {
		if fb[y*render.ScreenWidth+160] == 70 {
			found = true
			break
		}
	}
	if !found {
		t.Error("barrel not drawn in the center column")
	}
}
