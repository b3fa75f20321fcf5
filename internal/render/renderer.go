// Package render draws a first-person view of a BSP level into a 320x200
// paletted framebuffer using 16.16 fixed-point arithmetic. Walls are drawn
// front to back as vertical columns, floors and ceilings as horizontal
// spans, and sprites last, clipped against the walls in front of them.
package render

import (
	"fmt"

	"bsprender/internal/fixed"
	"bsprender/internal/level"
)

// Limits cap the per-frame scratch arenas.
type Limits struct {
	VisPlanes  int `yaml:"visplanes"`
	DrawSegs   int `yaml:"drawsegs"`
	Openings   int `yaml:"openings"`
	VisSprites int `yaml:"vissprites"`
}

// DefaultLimits are the classic engine capacities.
func DefaultLimits() Limits {
	return Limits{
		VisPlanes:  128,
		DrawSegs:   256,
		Openings:   ScreenWidth * 64,
		VisSprites: 128,
	}
}

// PSprite is a weapon overlay drawn on top of the view.
type PSprite struct {
	Sprite     int
	Frame      int
	FullBright bool
	// SX and SY are screen offsets in 320x200 units.
	SX, SY fixed.Fixed
}

// Viewer is the camera state for one frame.
type Viewer struct {
	X, Y fixed.Fixed
	// Z is the eye height.
	Z     fixed.Fixed
	Angle fixed.Angle
	// ExtraLight brightens every sector, as after a weapon flash.
	ExtraLight int
	// FixedColormap overrides all lighting when non-zero.
	FixedColormap int
	// Invisible draws the overlays with the shadow effect.
	Invisible bool
	PSprites  []PSprite
}

// FrameStats describe the scratch usage of the last frame.
type FrameStats struct {
	Nodes          int
	SubSectors     int
	Segs           int
	DrawSegs       int
	DroppedSegs    int
	VisPlanes      int
	Openings       int
	VisSprites     int
	DroppedSprites int
}

// frameState is reset at the start of every frame.
type frameState struct {
	viewX, viewY, viewZ fixed.Fixed
	viewAngle           fixed.Angle
	viewSin, viewCos    fixed.Fixed
	extraLight          int
	fixedColormap       *Colormap
	viewer              *Viewer

	frameCount int
	validCount int

	ceilingClip [ScreenWidth]int16
	floorClip   [ScreenWidth]int16

	solidSegs []clipRange
	bsp       bspState

	drawSegs *Arena[drawSeg]

	visPlanes    *Arena[visPlane]
	floorPlane   *visPlane
	ceilingPlane *visPlane

	openings    []int16
	lastOpening int
	openingsOut bool

	visSprites     *Arena[visSprite]
	overflowSprite visSprite
	sortedHead     visSprite

	planes planeState
	masked maskedState

	stats FrameStats
}

// Renderer owns every table and scratch buffer needed to draw frames of one
// level. It is not safe for concurrent use.
type Renderer struct {
	assets *Assets
	level  *level.Level
	limits Limits

	setSizeNeeded bool
	setBlocks     int
	setDetail     int

	view   viewTables
	lights lightTables
	screen canvas

	frameState
}

// New prepares a renderer for lvl. The view size starts at blocks and
// detail, as passed to SetViewSize.
func New(assets *Assets, lvl *level.Level, limits Limits, blocks, detail int) (*Renderer, error) {
	if assets == nil {
		return nil, ErrMissingAssets
	}
	if lvl == nil {
		return nil, ErrNoLevel
	}
	if err := assets.Validate(); err != nil {
		return nil, err
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("level %s: %w", lvl.Name, err)
	}
	if limits.VisPlanes <= 0 || limits.DrawSegs <= 0 || limits.Openings <= 0 || limits.VisSprites <= 0 {
		return nil, fmt.Errorf("render: bad limits %+v", limits)
	}

	r := &Renderer{assets: assets, level: lvl, limits: limits}
	r.drawSegs = NewArena[drawSeg](limits.DrawSegs)
	r.visPlanes = NewArena[visPlane](limits.VisPlanes)
	r.visSprites = NewArena[visSprite](limits.VisSprites)
	r.openings = make([]int16, limits.Openings)
	r.solidSegs = make([]clipRange, 0, ScreenWidth/2+2)
	r.screen.fuzzMap = &assets.Colormaps[FuzzColormap]

	r.initLightTables()
	if err := r.SetViewSize(blocks, detail); err != nil {
		return nil, err
	}
	r.executeSetViewSize()
	logger.Printf("renderer ready for %s: %d nodes, %d subsectors, %d segs",
		lvl.Name, len(lvl.Nodes), len(lvl.SubSectors), len(lvl.Segs))
	return r, nil
}

// Level returns the level being drawn.
func (r *Renderer) Level() *level.Level { return r.level }

// Assets returns the renderer's read-only asset set.
func (r *Renderer) Assets() *Assets { return r.assets }

// RenderFrame draws the view from v into fb, a ScreenWidth*ScreenHeight
// paletted buffer. A returned *FatalError means the frame is incomplete and
// must not be shown.
func (r *Renderer) RenderFrame(v *Viewer, fb []byte) (stats FrameStats, err error) {
	if len(fb) < ScreenWidth*ScreenHeight {
		return stats, fmt.Errorf("%w: %d bytes", ErrShortBuffer, len(fb))
	}
	defer recoverFatal(&err)

	if r.setSizeNeeded {
		r.executeSetViewSize()
	}
	r.screen.pix = fb
	if r.view.scaledViewWidth < ScreenWidth || r.view.viewHeight < ScreenHeight {
		r.fillBorder()
	}

	r.setupFrame(v)
	r.clearClipSegs()
	r.clearDrawSegs()
	r.clearPlanes()
	r.clearSprites()

	r.renderBSPNode(r.level.Root())
	r.checkArenas()
	r.drawPlanes()
	r.drawMasked()

	r.stats.DrawSegs = r.drawSegs.Len()
	r.stats.VisPlanes = r.visPlanes.Len()
	r.stats.Openings = r.lastOpening
	r.stats.VisSprites = r.visSprites.Len()
	return r.stats, nil
}

func (r *Renderer) setupFrame(v *Viewer) {
	r.viewer = v
	r.viewX = v.X
	r.viewY = v.Y
	r.viewZ = v.Z
	r.viewAngle = v.Angle
	r.extraLight = v.ExtraLight
	r.viewSin = v.Angle.Sin()
	r.viewCos = v.Angle.Cos()

	r.fixedColormap = nil
	if v.FixedColormap > 0 && v.FixedColormap < len(r.assets.Colormaps) {
		r.fixedColormap = &r.assets.Colormaps[v.FixedColormap]
		for i := range r.lights.scaleLightFixed {
			r.lights.scaleLightFixed[i] = r.fixedColormap
		}
	}

	r.frameCount++
	r.validCount++
	r.stats = FrameStats{}
}

// checkArenas fails the frame if wall rasterization ran out of openings.
// Visplane exhaustion fails at the allocation itself and draw segments
// degrade softly.
func (r *Renderer) checkArenas() {
	if r.openingsOut {
		fatalf("drawPlanes", "opening overflow (%d)", len(r.openings))
	}
}

// fillBorder tiles the border flat around a reduced view and clears the
// status bar area.
func (r *Renderer) fillBorder() {
	fb := r.screen.pix
	var src []byte
	if id := r.assets.BorderFlat; id > 0 && id < len(r.assets.Flats) && r.assets.Flats[id] != nil {
		src = r.assets.Flats[id].Pixels
	}
	top := (ScreenHeight - StatusBarHeight - r.view.viewHeight) >> 1
	left := (ScreenWidth - r.view.scaledViewWidth) >> 1
	for y := 0; y < ScreenHeight; y++ {
		row := fb[y*ScreenWidth : (y+1)*ScreenWidth]
		inRows := y >= top && y < top+r.view.viewHeight
		for x := range row {
			if inRows && x >= left && x < left+r.view.scaledViewWidth {
				continue
			}
			if src == nil || y >= ScreenHeight-StatusBarHeight {
				row[x] = 0
				continue
			}
			row[x] = src[(y&63)<<6+x&63]
		}
	}
}
