package game

import (
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"bsprender/internal/game/keytracker"
	"bsprender/internal/render"
)

// InputHandler handles keyboard input
type InputHandler struct {
	game          *BSPGame
	shrinkTracker keytracker.KeyStateTracker
	growTracker   keytracker.KeyStateTracker
	detailTracker keytracker.KeyStateTracker
	shotTracker   keytracker.KeyStateTracker
	hudTracker    keytracker.KeyStateTracker
	perfTracker   keytracker.KeyStateTracker
}

// NewInputHandler creates a new input handler
func NewInputHandler(game *BSPGame) *InputHandler {
	return &InputHandler{game: game}
}

// HandleInput processes all input for the current tick
func (ih *InputHandler) HandleInput() {
	ih.handleMovementInput()
	ih.handleViewInput()
}

func (ih *InputHandler) handleMovementInput() {
	cfg := ih.game.config
	speed := cfg.GetMoveSpeed()
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		speed *= 2
	}

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		ih.game.Turn(cfg.GetTurnSpeed())
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		ih.game.Turn(-cfg.GetTurnSpeed())
	}

	forward, right := 0, 0
	if ebiten.IsKeyPressed(ebiten.KeyUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		forward += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		forward -= speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		right += speed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		right -= speed
	}
	if forward != 0 || right != 0 {
		ih.game.Move(forward, right)
	}
}

func (ih *InputHandler) handleViewInput() {
	r := ih.game.renderer
	blocks, detail := r.ViewSize()

	switch {
	case ih.shrinkTracker.IsKeyJustPressed(ebiten.KeyMinus):
		ih.setViewSize(blocks-1, detail)
	case ih.growTracker.IsKeyJustPressed(ebiten.KeyEqual):
		ih.setViewSize(blocks+1, detail)
	case ih.detailTracker.IsKeyJustPressed(ebiten.KeyF5):
		ih.setViewSize(blocks, detail^1)
	}

	if ih.shotTracker.IsKeyJustPressed(ebiten.KeyF12) {
		ih.game.screenshots++
		path := fmt.Sprintf("shot%03d.png", ih.game.screenshots)
		if err := ih.game.frame.SavePNG(path, ih.game.config.Display.Scale); err != nil {
			log.Printf("Screenshot failed: %v", err)
		} else {
			log.Printf("Saved %s", path)
		}
	}
	if ih.hudTracker.IsKeyJustPressed(ebiten.KeyTab) {
		ih.game.showHUD = !ih.game.showHUD
	}
	if ih.perfTracker.IsKeyJustPressed(ebiten.KeyF11) {
		ih.game.perfDebugEnabled = !ih.game.perfDebugEnabled
	}
}

// setViewSize ignores sizes outside the renderer's range.
func (ih *InputHandler) setViewSize(blocks, detail int) {
	if blocks < render.MinBlocks || blocks > render.MaxBlocks {
		return
	}
	if err := ih.game.renderer.SetViewSize(blocks, detail); err != nil {
		log.Printf("Err: %v", err)
	}
}
