package replay

// Player plays a script back with hold-last-value semantics
type Player struct {
	script *Script
	cursor int
	held   Input
	active bool
}

// NewPlayer creates an active player positioned at the first keyframe
func NewPlayer(s *Script) *Player {
	return &Player{
		script: s,
		active: s != nil && len(s.Keyframes) > 0,
	}
}

// Advance consumes every keyframe due at or before tick and returns the held
// input. Calling it again for the same tick consumes nothing further. ok is
// false once playback has ended.
//
// Playback ends permanently when every keyframe has been consumed and the
// held buttons are released, or when the script's end tick is reached.
func (p *Player) Advance(tick uint32) (held Input, ok bool) {
	if !p.active {
		return Input{}, false
	}

	kfs := p.script.Keyframes
	for p.cursor < len(kfs) && kfs[p.cursor].Tick <= tick {
		p.held = kfs[p.cursor].Input
		p.cursor++
	}

	if p.script.HasEnd && tick >= p.script.End {
		p.stop()
		return Input{}, true
	}
	if p.cursor >= len(kfs) && p.held.Buttons == 0 {
		held = p.held
		p.stop()
		return held, true
	}
	return p.held, true
}

func (p *Player) stop() {
	p.active = false
	p.held = Input{}
}

// Held returns the currently held input
func (p *Player) Held() Input {
	return p.held
}

// Active reports whether the player still overrides input
func (p *Player) Active() bool {
	return p.active
}

// Cursor returns the number of keyframes consumed so far
func (p *Player) Cursor() int {
	return p.cursor
}

// TotalKeyframes returns the number of keyframes in the script
func (p *Player) TotalKeyframes() int {
	if p.script == nil {
		return 0
	}
	return len(p.script.Keyframes)
}
