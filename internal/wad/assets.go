package wad

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"image/color"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"bsprender/internal/render"
)

const (
	SkyFlatName = "F_SKY1"
	// NoTextureName marks an empty side texture slot.
	NoTextureName = "-"
)

// borderFlats are tried in order for the background around a reduced view.
var borderFlats = []string{"FLOOR7_2", "GRNROCK"}

type binTextureHeader struct {
	Name       String8
	Masked     int32
	Width      int16
	Height     int16
	ColumnDir  int32
	NumPatches int16
}

type binTexturePatch struct {
	OriginX  int16
	OriginY  int16
	Patch    int16
	StepDir  int16
	Colormap int16
}

type textureDef struct {
	name    string
	width   int
	height  int
	patches []binTexturePatch
}

// LoadAssets reads the palette, colormaps, wall textures, flats and sprites.
// Texture and flat id 0 stay empty so that 0 can mean "no texture". The
// name tables it builds are used by ReadLevel.
func (w *WAD) LoadAssets(ctx context.Context) (*render.Assets, error) {
	a := &render.Assets{Translations: render.DefaultTranslations()}

	if err := w.readPalette(a); err != nil {
		return nil, err
	}
	if err := w.readColormaps(a); err != nil {
		return nil, err
	}
	if err := w.readTextures(ctx, a); err != nil {
		return nil, err
	}
	if err := w.readFlats(a); err != nil {
		return nil, err
	}
	if err := w.readSprites(a); err != nil {
		return nil, err
	}

	var ok bool
	if a.SkyFlat, ok = w.flatNums[SkyFlatName]; !ok {
		return nil, fmt.Errorf("%w: flat %s", ErrLumpNotFound, SkyFlatName)
	}
	if a.SkyTexture, ok = w.textureNums["SKY1"]; !ok {
		return nil, fmt.Errorf("%w: texture SKY1", ErrLumpNotFound)
	}
	for _, name := range borderFlats {
		if id, ok := w.flatNums[name]; ok {
			a.BorderFlat = id
			break
		}
	}
	return a, a.Validate()
}

// SkyTexture returns the sky texture id for a level: one sky per episode,
// or per map range in MAPxx games.
func (w *WAD) SkyTexture(levelName string) (int, bool) {
	sky := "SKY1"
	var e, m int
	switch {
	case len(levelName) == 4 && levelName[0] == 'E' && levelName[2] == 'M':
		if e = int(levelName[1] - '0'); e >= 1 && e <= 4 {
			sky = fmt.Sprintf("SKY%d", e)
		}
	case strings.HasPrefix(levelName, "MAP"):
		if _, err := fmt.Sscanf(levelName, "MAP%d", &m); err == nil {
			switch {
			case m >= 21:
				sky = "SKY3"
			case m >= 12:
				sky = "SKY2"
			}
		}
	}
	id, ok := w.textureNums[sky]
	return id, ok
}

// TextureNum returns the id of a wall texture by name.
func (w *WAD) TextureNum(name string) (int, bool) {
	id, ok := w.textureNums[strings.ToUpper(name)]
	return id, ok
}

// FlatNum returns the id of a flat by name.
func (w *WAD) FlatNum(name string) (int, bool) {
	id, ok := w.flatNums[strings.ToUpper(name)]
	return id, ok
}

// SpriteNum returns the index of a four-letter sprite name.
func (w *WAD) SpriteNum(name string) (int, bool) {
	id, ok := w.spriteNums[strings.ToUpper(name)]
	return id, ok
}

func (w *WAD) readPalette(a *render.Assets) error {
	logger.Println("Loading PLAYPAL ...")
	lump, err := w.ReadLump("PLAYPAL")
	if err != nil {
		return err
	}
	if len(lump) < 256*3 {
		return fmt.Errorf("PLAYPAL: %d bytes", len(lump))
	}
	for i := range a.Palette {
		a.Palette[i] = color.RGBA{R: lump[i*3], G: lump[i*3+1], B: lump[i*3+2], A: 0xff}
	}
	return nil
}

func (w *WAD) readColormaps(a *render.Assets) error {
	logger.Println("Loading COLORMAP ...")
	lump, err := w.ReadLump("COLORMAP")
	if err != nil {
		return err
	}
	n := len(lump) / 256
	if n < render.NumColormaps {
		return fmt.Errorf("COLORMAP: %d maps, need %d", n, render.NumColormaps)
	}
	a.Colormaps = make([]render.Colormap, n)
	for i := range a.Colormaps {
		copy(a.Colormaps[i][:], lump[i*256:])
	}
	return nil
}

func (w *WAD) readPatchNames() error {
	logger.Println("Loading patch names ...")
	lump, err := w.ReadLump("PNAMES")
	if err != nil {
		return err
	}
	r := bytes.NewReader(lump)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return fmt.Errorf("PNAMES: %w", err)
	}
	if int(count) > r.Len()/8 {
		return fmt.Errorf("PNAMES: %d names in %d bytes", count, len(lump))
	}
	names := make([]String8, count)
	if err := binary.Read(r, binary.LittleEndian, names); err != nil {
		return fmt.Errorf("PNAMES: %w", err)
	}
	w.patchNames = make([]string, count)
	for i, n := range names {
		w.patchNames[i] = n.String()
	}
	return nil
}

// readPatches decodes every patch named in PNAMES. A missing patch is
// logged and left nil; textures skip it.
func (w *WAD) readPatches(ctx context.Context) ([]*render.Patch, error) {
	logger.Println("Loading patch pictures ...")
	patches := make([]*render.Patch, len(w.patchNames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range w.patchNames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, ok := w.lumpNums[name]; !ok {
				logger.Printf("Err: patch %s not found", name)
				return nil
			}
			p, err := w.ReadPatch(name)
			if err != nil {
				return err
			}
			patches[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return patches, nil
}

func (w *WAD) readTextureDefs(name string) ([]textureDef, error) {
	lump, err := w.ReadLump(name)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(lump)
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if count < 0 || int(count) > r.Len()/4 {
		return nil, fmt.Errorf("%s: bad texture count %d", name, count)
	}
	offsets := make([]int32, count)
	if err := binary.Read(r, binary.LittleEndian, offsets); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	defs := make([]textureDef, 0, count)
	for _, off := range offsets {
		if off < 0 || int(off) >= len(lump) {
			return nil, fmt.Errorf("%s: texture offset %d out of range", name, off)
		}
		tr := bytes.NewReader(lump[off:])
		var h binTextureHeader
		if err := binary.Read(tr, binary.LittleEndian, &h); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		def := textureDef{
			name:    h.Name.String(),
			width:   int(h.Width),
			height:  int(h.Height),
			patches: make([]binTexturePatch, h.NumPatches),
		}
		if err := binary.Read(tr, binary.LittleEndian, def.patches); err != nil {
			return nil, fmt.Errorf("%s: texture %s: %w", name, def.name, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// readTextures composes TEXTURE1 and TEXTURE2. Composition is independent
// per texture so it runs on all CPUs.
func (w *WAD) readTextures(ctx context.Context, a *render.Assets) error {
	logger.Println("Loading textures ...")
	if err := w.readPatchNames(); err != nil {
		return err
	}
	patches, err := w.readPatches(ctx)
	if err != nil {
		return err
	}

	var defs []textureDef
	for _, name := range []string{"TEXTURE1", "TEXTURE2"} {
		if _, ok := w.lumpNums[name]; !ok {
			continue
		}
		d, err := w.readTextureDefs(name)
		if err != nil {
			return err
		}
		logger.Printf("Loading %s: %d textures", name, len(d))
		defs = append(defs, d...)
	}
	if len(defs) == 0 {
		return fmt.Errorf("%w: TEXTURE1", ErrLumpNotFound)
	}

	a.Textures = make([]*render.Texture, len(defs)+1)
	w.textureNums = make(map[string]int, len(defs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, def := range defs {
		if _, dup := w.textureNums[def.name]; !dup {
			w.textureNums[def.name] = i + 1
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tps := make([]render.TexturePatch, 0, len(def.patches))
			for _, p := range def.patches {
				if p.Patch < 0 || int(p.Patch) >= len(patches) {
					return fmt.Errorf("texture %s: patch %d out of range", def.name, p.Patch)
				}
				tps = append(tps, render.TexturePatch{
					OriginX: int(p.OriginX),
					OriginY: int(p.OriginY),
					Patch:   patches[p.Patch],
				})
			}
			a.Textures[i+1] = render.NewTexture(def.name, def.width, def.height, tps)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Printf("Loaded %d textures", len(defs))
	return nil
}

func (w *WAD) readFlats(a *render.Assets) error {
	logger.Println("Loading flats ...")
	lumps, err := w.between("F_START", "F_END")
	if err != nil {
		return err
	}
	a.Flats = make([]*render.Flat, 1, len(lumps)+1)
	w.flatNums = make(map[string]int, len(lumps))
	for _, li := range lumps {
		data, err := w.readLump(li)
		if err != nil {
			return err
		}
		if len(data) < render.FlatSize*render.FlatSize {
			logger.Printf("Err: flat %s is %d bytes", li.Name, len(data))
			continue
		}
		w.flatNums[li.Name] = len(a.Flats)
		a.Flats = append(a.Flats, &render.Flat{Name: li.Name, Pixels: data[:render.FlatSize*render.FlatSize]})
	}
	logger.Printf("Loaded %d flats", len(a.Flats)-1)
	return nil
}

// readSprites groups the sprite lumps by their four-letter name. A lump
// name is NNNNFR or NNNNFRFR: frame letter F from 'A' and rotation R, where
// 0 is used for every view angle and 1 to 8 go counterclockwise from the
// front. The optional second pair reuses the picture mirrored.
func (w *WAD) readSprites(a *render.Assets) error {
	logger.Println("Loading sprites ...")
	lumps, err := w.between("S_START", "S_END")
	if err != nil {
		return err
	}

	defs := make(map[string][]render.SpriteFrame)
	for _, li := range lumps {
		name := li.Name
		if len(name) < 6 {
			logger.Printf("Err: bad sprite lump name %s", name)
			continue
		}
		patch, err := w.ReadPatch(name)
		if err != nil {
			logger.Printf("Err: %v", err)
			continue
		}
		frames := defs[name[:4]]
		frames = installSprite(frames, name[4], name[5], patch, false)
		if len(name) >= 8 {
			frames = installSprite(frames, name[6], name[7], patch, true)
		}
		defs[name[:4]] = frames
	}

	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	a.Sprites = make([]render.SpriteDef, len(names))
	w.spriteNums = make(map[string]int, len(names))
	for i, name := range names {
		if err := checkFrames(name, defs[name]); err != nil {
			return err
		}
		a.Sprites[i] = render.SpriteDef{Name: name, Frames: defs[name]}
		w.spriteNums[name] = i
	}
	logger.Printf("Loaded %d sprites", len(names))
	return nil
}

func installSprite(frames []render.SpriteFrame, frameCh, rotCh byte, p *render.Patch, flip bool) []render.SpriteFrame {
	frame := int(frameCh) - 'A'
	if frame < 0 || frame >= 29 {
		logger.Printf("Err: bad sprite frame %c in %s", frameCh, p.Name)
		return frames
	}
	for len(frames) <= frame {
		frames = append(frames, render.SpriteFrame{})
	}
	sf := &frames[frame]
	if rotCh == '0' {
		sf.Rotate = false
		for r := range sf.Patches {
			sf.Patches[r] = p
			sf.Flip[r] = flip
		}
		return frames
	}
	rot := int(rotCh) - '1'
	if rot < 0 || rot > 7 {
		logger.Printf("Err: bad sprite rotation %c in %s", rotCh, p.Name)
		return frames
	}
	sf.Rotate = true
	sf.Patches[rot] = p
	sf.Flip[rot] = flip
	return frames
}

// checkFrames rejects frames the renderer could not draw from every angle.
func checkFrames(name string, frames []render.SpriteFrame) error {
	for f, sf := range frames {
		for r, p := range sf.Patches {
			if p != nil {
				continue
			}
			if !sf.Rotate && r == 0 {
				return fmt.Errorf("sprite %s frame %c: no patches", name, 'A'+f)
			}
			if sf.Rotate {
				return fmt.Errorf("sprite %s frame %c: missing rotation %d", name, 'A'+f, r+1)
			}
		}
	}
	return nil
}
