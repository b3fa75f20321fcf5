package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	ebitext "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// UISystem draws the overlay on top of the scaled view
type UISystem struct {
	game *BSPGame
}

func NewUISystem(game *BSPGame) *UISystem {
	return &UISystem{game: game}
}

// Draw draws the HUD when enabled
func (ui *UISystem) Draw(screen *ebiten.Image) {
	if !ui.game.showHUD {
		return
	}
	ui.drawStats(screen)
}

// hudLines formats the counters shown in the corner.
func (ui *UISystem) hudLines() []string {
	s := ui.game.lastStats
	limits := ui.game.config.GetLimits()
	blocks, detail := ui.game.renderer.ViewSize()
	v := ui.game.viewer
	perf := ui.game.monitor.GetDetailedStats()
	return []string{
		fmt.Sprintf("FPS: %.1f  TPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()),
		fmt.Sprintf("pos %d,%d  angle %d", v.X.Int(), v.Y.Int(), int(uint64(v.Angle)*360>>32)),
		fmt.Sprintf("view %d  detail %d", blocks, detail),
		fmt.Sprintf("segs %d  drawsegs %d/%d", s.Segs, s.DrawSegs, limits.DrawSegs),
		fmt.Sprintf("planes %d/%d  openings %d/%d", s.VisPlanes, limits.VisPlanes, s.Openings, limits.Openings),
		fmt.Sprintf("sprites %d/%d  dropped %d", s.VisSprites, limits.VisSprites, s.DroppedSegs+s.DroppedSprites),
		fmt.Sprintf("frame %.1fms  avg %.1fms  render %.1fms",
			perf["last_frame_time_ms"], perf["avg_frame_time_ms"], perf["last_render_time_ms"]),
		fmt.Sprintf("peak planes %v  drawsegs %v  openings %v  sprites %v",
			perf["peak_visplanes"], perf["peak_drawsegs"], perf["peak_openings"], perf["peak_vissprites"]),
	}
}

// drawStats draws the counters in the top-left corner
func (ui *UISystem) drawStats(screen *ebiten.Image) {
	lines := ui.hudLines()
	face := basicfont.Face7x13
	lineHeight := 16
	padding := 6

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, font.MeasureString(face, line).Round())
	}
	barWidth := maxWidth + padding*2
	barHeight := len(lines)*lineHeight + padding*2
	vector.DrawFilledRect(screen, 10, 10, float32(barWidth), float32(barHeight), color.RGBA{0, 0, 0, 120}, false)

	for i, line := range lines {
		baseline := 10 + padding + i*lineHeight + face.Ascent
		ebitext.Draw(screen, line, face, 10+padding, baseline, color.White)
	}
}
