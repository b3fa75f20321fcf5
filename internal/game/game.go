// Package game runs the renderer in an ebiten window. The viewer flies
// freely through the level; there is no simulation beyond that.
package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"bsprender/internal/config"
	"bsprender/internal/fixed"
	"bsprender/internal/graphics"
	"bsprender/internal/level"
	"bsprender/internal/render"
	"bsprender/internal/threading/monitoring"
)

// BSPGame implements ebiten.Game.
type BSPGame struct {
	config   *config.Config
	renderer *render.Renderer
	level    *level.Level
	frame    *graphics.Frame
	viewer   render.Viewer
	gameLoop *GameLoop

	monitor   *monitoring.PerformanceMonitor
	lastStats render.FrameStats
	// err is a renderer failure. Update returns it to stop the game.
	err error

	showHUD          bool
	perfDebugEnabled bool
	screenshots      int
}

// NewBSPGame places the viewer at (x, y) facing angle. weapon is drawn as
// the overlay; pass nil for none.
func NewBSPGame(cfg *config.Config, r *render.Renderer, x, y fixed.Fixed, angle fixed.Angle, weapon []render.PSprite) *BSPGame {
	g := &BSPGame{
		config:   cfg,
		renderer: r,
		level:    r.Level(),
		frame:    graphics.NewFrame(r.Assets().Palette),
		viewer: render.Viewer{
			X:             x,
			Y:             y,
			Angle:         angle,
			FixedColormap: cfg.View.FixedColormap,
			PSprites:      weapon,
		},
		monitor:          monitoring.NewPerformanceMonitor(cfg.GetLimits()),
		showHUD:          true,
		perfDebugEnabled: cfg.Debug.PerfLog,
	}
	g.settleViewer()
	g.gameLoop = NewGameLoop(g)
	return g
}

// Viewer returns the current camera.
func (g *BSPGame) Viewer() render.Viewer { return g.viewer }

// Frame returns the framebuffer of the last rendered view.
func (g *BSPGame) Frame() *graphics.Frame { return g.frame }

// settleViewer puts the eye at the view height above the floor under it.
func (g *BSPGame) settleViewer() {
	ss := g.level.PointInSubsector(g.viewer.X, g.viewer.Y)
	g.viewer.Z = ss.Sector.FloorHeight + fixed.FromInt(g.config.View.ViewHeight)
}

// Turn rotates the viewer counterclockwise by deg degrees.
func (g *BSPGame) Turn(deg int) {
	g.viewer.Angle += fixed.Angle(int32(deg)) * (fixed.Ang45 / 45)
}

// Move steps the viewer forward and to the right, in map units.
func (g *BSPGame) Move(forward, right int) {
	a := g.viewer.Angle
	g.viewer.X += fixed.Mul(fixed.FromInt(forward), a.Cos()) + fixed.Mul(fixed.FromInt(right), a.Sin())
	g.viewer.Y += fixed.Mul(fixed.FromInt(forward), a.Sin()) - fixed.Mul(fixed.FromInt(right), a.Cos())
	g.settleViewer()
}

// RenderView draws one frame into the framebuffer. A renderer failure is
// kept and ends the game on the next Update.
func (g *BSPGame) RenderView() error {
	stats, err := g.renderer.RenderFrame(&g.viewer, g.frame.Pixels)
	if err != nil {
		g.err = err
		return err
	}
	g.lastStats = stats
	return nil
}

func (g *BSPGame) Update() error {
	return g.gameLoop.Update()
}

func (g *BSPGame) Draw(screen *ebiten.Image) {
	g.gameLoop.Draw(screen)
}

func (g *BSPGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.gameLoop.Layout(outsideWidth, outsideHeight)
}
