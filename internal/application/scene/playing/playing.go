// Package playing provides the demo host's gameplay scene.
package playing

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/younwookim/tickhook/internal/application/demo"
	"github.com/younwookim/tickhook/internal/application/replay"
	"github.com/younwookim/tickhook/internal/application/scene"
)

// Colors for rendering
var (
	colorBG     = color.RGBA{26, 26, 46, 255}
	colorEditor = color.RGBA{40, 40, 60, 255}
	colorGround = color.RGBA{80, 80, 100, 255}
	colorWater  = color.RGBA{60, 110, 200, 140}
	colorGoal   = color.RGBA{255, 215, 0, 255}
	colorPlayer = color.RGBA{100, 200, 100, 255}
	colorDead   = color.RGBA{200, 50, 50, 255}
	colorPanel  = color.RGBA{0, 0, 0, 160}
)

const (
	playerW = 12
	playerH = 20
)

// Playing runs the demo host one frame per update
type Playing struct {
	host    *demo.Host
	input   func() replay.Input
	overlay func() string
	screenW int
	screenH int
	debug   bool
	exited  func()
}

// Options configure the scene
type Options struct {
	// Input reads the physical controller; the keyboard when nil
	Input func() replay.Input
	// Overlay returns extra text drawn in the debug panel
	Overlay func() string
	// OnExit runs when the scene is left
	OnExit func()
	ScreenW int
	ScreenH int
}

// New creates a gameplay scene over host
func New(host *demo.Host, opts Options) *Playing {
	input := opts.Input
	if input == nil {
		input = NewKeyboard().Read
	}
	return &Playing{
		host:    host,
		input:   input,
		overlay: opts.Overlay,
		screenW: opts.ScreenW,
		screenH: opts.ScreenH,
		debug:   true,
		exited:  opts.OnExit,
	}
}

// Update runs one host frame (implements scene.Scene)
func (p *Playing) Update(_ float64) (scene.Scene, error) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return nil, scene.ErrQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		p.debug = !p.debug
	}

	p.host.Frame(p.input())
	return nil, nil
}

// OnEnter implements scene.Scene
func (p *Playing) OnEnter() {}

// OnExit implements scene.Scene
func (p *Playing) OnExit() {
	if p.exited != nil {
		p.exited()
	}
}

// Draw renders the course, the player and the debug panel
func (p *Playing) Draw(screen *ebiten.Image) {
	if p.host.Phase() == demo.PhaseEditor {
		screen.Fill(colorEditor)
	} else {
		screen.Fill(colorBG)
	}

	camX := p.cameraX()
	stage := p.host.Stage()
	for _, w := range stage.Water {
		ebitenutil.DrawRect(screen, float64(w.X0)-camX, 0, float64(w.X1-w.X0), float64(p.screenH), colorWater)
	}
	for _, g := range stage.Ground {
		ebitenutil.DrawRect(screen, float64(g.X0)-camX, float64(g.Y), float64(g.X1-g.X0), float64(p.screenH)-float64(g.Y), colorGround)
	}
	ebitenutil.DrawRect(screen, float64(stage.GoalX)-camX, 0, 4, float64(p.screenH), colorGoal)

	if p.host.Phase() == demo.PhasePlay {
		p.drawPlayer(screen, camX)
	}
	if p.debug {
		p.drawPanel(screen)
	}
}

func (p *Playing) drawPlayer(screen *ebiten.Image, camX float64) {
	b := p.host.Body()
	c := colorPlayer
	if s := p.host.State(); s == demo.StateDeath || s == demo.StateDeathEnd {
		c = colorDead
	}
	x := float64(b.X) - camX - playerW/2
	y := float64(b.Y) - playerH
	ebitenutil.DrawRect(screen, x, y, playerW, playerH, c)
}

func (p *Playing) drawPanel(screen *ebiten.Image) {
	ebitenutil.DrawRect(screen, 0, 0, float64(p.screenW), 64, colorPanel)
	ebitenutil.DebugPrint(screen, p.PanelText())
}

// PanelText is the debug panel contents
func (p *Playing) PanelText() string {
	b := p.host.Body()
	text := fmt.Sprintf("frame %d phase %d state %d  x=%.1f y=%.1f vx=%.2f vy=%.2f\ninput %s  saves %d",
		p.host.Frames(), p.host.Phase(), p.host.State(), b.X, b.Y, b.VX, b.VY,
		replay.FormatButtons(p.host.Effective().Buttons), p.host.Saves())
	if p.overlay != nil {
		text += "\n" + p.overlay()
	}
	if p.host.Phase() == demo.PhaseEditor {
		text += "\nEnter: play | C: save course | Esc: quit"
	} else {
		text += "\narrows/A/D: move | Z: jump | Backspace: editor | Tab: panel"
	}
	return text
}

// cameraX keeps the player centred, clamped to the stage
func (p *Playing) cameraX() float64 {
	cam := float64(p.host.Body().X) - float64(p.screenW)/2
	maxCam := float64(p.host.Stage().Width) - float64(p.screenW)
	if cam > maxCam {
		cam = maxCam
	}
	if cam < 0 {
		cam = 0
	}
	return cam
}
