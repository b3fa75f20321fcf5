package render

import (
	"bsprender/internal/fixed"
	"bsprender/internal/mathutil"
)

const (
	LightLevels   = 16
	lightSegShift = 4

	maxLightScale   = 48
	lightScaleShift = 12

	maxLightZ   = 128
	lightZShift = 20

	distMap = 2
)

// lightTables select a colormap by sector light and by either wall/sprite
// scale or plane distance.
type lightTables struct {
	scaleLight      [LightLevels][maxLightScale]*Colormap
	scaleLightFixed [maxLightScale]*Colormap
	zLight          [LightLevels][maxLightZ]*Colormap
}

// initLightTables fills the distance table used by floors and ceilings. It
// does not depend on the view size.
func (r *Renderer) initLightTables() {
	for i := 0; i < LightLevels; i++ {
		startMap := ((LightLevels - 1 - i) * 2) * NumColormaps / LightLevels
		for j := 0; j < maxLightZ; j++ {
			scale := fixed.Div(fixed.FromInt(ScreenWidth/2), fixed.Fixed((j+1)<<lightZShift))
			scale >>= lightScaleShift
			level := colormapIndex(startMap - int(scale)/distMap)
			r.lights.zLight[i][j] = &r.assets.Colormaps[level]
		}
	}
}

// initScaleLight fills the scale table used by walls and sprites. Lower
// detail and narrower views get the same brightness at the same distance.
func (r *Renderer) initScaleLight() {
	v := &r.view
	for i := 0; i < LightLevels; i++ {
		startMap := ((LightLevels - 1 - i) * 2) * NumColormaps / LightLevels
		for j := 0; j < maxLightScale; j++ {
			level := startMap - j*ScreenWidth/(v.viewWidth<<v.detailShift)/distMap
			r.lights.scaleLight[i][j] = &r.assets.Colormaps[colormapIndex(level)]
		}
	}
}

// lightRow returns the scale light row for a sector light level with the
// frame's extra light and an optional contrast adjustment.
func (r *Renderer) lightRow(lightLevel, adjust int) *[maxLightScale]*Colormap {
	if r.fixedColormap != nil {
		return &r.lights.scaleLightFixed
	}
	n := lightLevel>>lightSegShift + r.extraLight + adjust
	return &r.lights.scaleLight[mathutil.Clamp(n, 0, LightLevels-1)]
}

// zLightRow is the plane equivalent of lightRow.
func (r *Renderer) zLightRow(lightLevel int) *[maxLightZ]*Colormap {
	n := lightLevel>>lightSegShift + r.extraLight
	return &r.lights.zLight[mathutil.Clamp(n, 0, LightLevels-1)]
}

func scaleIndex(scale fixed.Fixed, shift uint) int {
	return mathutil.Min(int(scale>>shift), maxLightScale-1)
}

func zIndex(distance fixed.Fixed) int {
	return mathutil.Min(int(distance>>lightZShift), maxLightZ-1)
}
