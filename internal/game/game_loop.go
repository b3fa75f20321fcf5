package game

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// GameLoop manages the main update and render cycle
type GameLoop struct {
	game         *BSPGame
	inputHandler *InputHandler
	ui           *UISystem

	perfLastLog time.Time
}

// NewGameLoop creates a new game loop manager
func NewGameLoop(game *BSPGame) *GameLoop {
	return &GameLoop{
		game:         game,
		inputHandler: NewInputHandler(game),
		ui:           NewUISystem(game),
	}
}

// Update handles input for one tick. A renderer failure from the last
// frame is returned so ebiten.RunGame stops with it.
func (gl *GameLoop) Update() error {
	if gl.game.err != nil {
		return gl.game.err
	}
	gl.inputHandler.HandleInput()
	gl.maybeLogPerf()
	return gl.game.err
}

// Draw renders the view and presents it scaled to the window
func (gl *GameLoop) Draw(screen *ebiten.Image) {
	if gl.game.err != nil {
		return
	}
	frameTimer := gl.game.monitor.StartFrame()
	defer frameTimer.EndFrame()

	start := time.Now()
	if err := gl.game.RenderView(); err != nil {
		// never present a partial frame
		return
	}
	gl.game.monitor.RecordRender(time.Since(start), gl.game.lastStats)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	img := gl.game.frame.Image()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(img.Bounds().Dx()), float64(sh)/float64(img.Bounds().Dy()))
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)

	gl.ui.Draw(screen)
}

// Layout returns the window size from the config
func (gl *GameLoop) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return gl.game.config.GetWindowSize()
}
