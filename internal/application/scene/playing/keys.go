package playing

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tickhook/internal/application/replay"
)

// stickFull is the stick deflection produced by a held stick key
const stickFull = 32767

// KeyMap maps keyboard keys to controller buttons
type KeyMap map[ebiten.Key]uint64

// DefaultKeys is the keyboard layout of the demo host
var DefaultKeys = KeyMap{
	ebiten.KeyArrowLeft:  replay.ButtonLeft,
	ebiten.KeyArrowRight: replay.ButtonRight,
	ebiten.KeyArrowUp:    replay.ButtonUp,
	ebiten.KeyArrowDown:  replay.ButtonDown,
	ebiten.KeyZ:          replay.ButtonA,
	ebiten.KeyX:          replay.ButtonB,
	ebiten.KeyC:          replay.ButtonX,
	ebiten.KeyV:          replay.ButtonY,
	ebiten.KeyEnter:      replay.ButtonPlus,
	ebiten.KeyBackspace:  replay.ButtonMinus,
}

// Keyboard reads controller input from pressed keys. A and D drive the
// left stick horizontally.
type Keyboard struct {
	Keys    KeyMap
	Pressed func(ebiten.Key) bool
}

// NewKeyboard creates a keyboard reader over ebiten's key state
func NewKeyboard() *Keyboard {
	return &Keyboard{Keys: DefaultKeys, Pressed: ebiten.IsKeyPressed}
}

// Read returns the controller state for this frame
func (k *Keyboard) Read() replay.Input {
	var in replay.Input
	for key, bit := range k.Keys {
		if k.Pressed(key) {
			in.Buttons |= bit
		}
	}
	if k.Pressed(ebiten.KeyA) {
		in.StickX -= stickFull
	}
	if k.Pressed(ebiten.KeyD) {
		in.StickX += stickFull
	}
	return in
}
