// Package game provides the main loop manager that handles Scene transitions.
package game

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/tickhook/internal/application/scene"
)

// Game implements ebiten.Game and manages Scene transitions. Each Update is
// one host frame at a fixed 60Hz step.
type Game struct {
	current scene.Scene
	screenW int
	screenH int
	dt      float64
	frames  uint64
	done    bool
}

// New creates a new Game with the given initial scene.
// The initial scene's OnEnter is called immediately.
func New(initialScene scene.Scene, screenW, screenH int) *Game {
	g := &Game{
		current: initialScene,
		screenW: screenW,
		screenH: screenH,
		dt:      1.0 / 60.0,
	}
	g.current.OnEnter()
	return g
}

// Update updates the current scene and handles scene transitions.
// A scene returning scene.ErrQuit ends the game with ebiten.Termination
// after the scene's OnExit has run.
func (g *Game) Update() error {
	if g.done {
		return ebiten.Termination
	}

	next, err := g.current.Update(g.dt)
	g.frames++
	if errors.Is(err, scene.ErrQuit) {
		g.done = true
		g.current.OnExit()
		return ebiten.Termination
	}
	if err != nil {
		return err
	}

	if next != nil {
		g.current.OnExit()
		g.current = next
		g.current.OnEnter()
	}
	return nil
}

// Draw renders the current scene.
func (g *Game) Draw(screen *ebiten.Image) {
	g.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.screenW, g.screenH
}

// Frames returns the number of updates run
func (g *Game) Frames() uint64 {
	return g.frames
}

// Done reports whether the current scene asked to quit
func (g *Game) Done() bool {
	return g.done
}
