// Package keytracker reports key presses once per press, for toggles that
// must not repeat while the key is held.
package keytracker

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// KeyStateTracker tracks the previous state of one key.
type KeyStateTracker struct {
	prevPressed bool
}

// IsKeyJustPressed returns true if the key was up last tick and is down now.
func (k *KeyStateTracker) IsKeyJustPressed(key ebiten.Key) bool {
	return k.update(ebiten.IsKeyPressed(key))
}

func (k *KeyStateTracker) update(pressed bool) bool {
	justPressed := pressed && !k.prevPressed
	k.prevPressed = pressed
	return justPressed
}
