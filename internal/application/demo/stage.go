package demo

// Movement tuning, in pixels per frame
const (
	Gravity     float32 = 0.5
	TerminalVel float32 = 8
	WalkSpeed   float32 = 2.5
	JumpSpeed   float32 = 9
	Accel       float32 = 0.5
)

// Segment is a stretch of solid ground from X0 to X1 at height Y
type Segment struct {
	X0, X1, Y float32
}

// Span is a horizontal range
type Span struct {
	X0, X1 float32
}

// Stage is the course geometry. Y grows downward.
type Stage struct {
	Ground []Segment
	Water  []Span
	SpawnX float32
	SpawnY float32
	GoalX  float32
	KillY  float32
	Width  float32
}

// DefaultStage is a short course with two pits and a pool
func DefaultStage() *Stage {
	return &Stage{
		Ground: []Segment{
			{X0: 0, X1: 300, Y: 200},
			{X0: 360, X1: 700, Y: 200},
			{X0: 740, X1: 1000, Y: 170},
		},
		Water:  []Span{{X0: 500, X1: 600}},
		SpawnX: 40,
		SpawnY: 200,
		GoalX:  960,
		KillY:  320,
		Width:  1000,
	}
}

// groundAt returns the ground height under x, or false over a pit
func (s *Stage) groundAt(x float32) (float32, bool) {
	for _, g := range s.Ground {
		if x >= g.X0 && x <= g.X1 {
			return g.Y, true
		}
	}
	return 0, false
}

// InWater reports whether x is over water
func (s *Stage) InWater(x float32) bool {
	for _, w := range s.Water {
		if x >= w.X0 && x <= w.X1 {
			return true
		}
	}
	return false
}

// Body is the player's physics body; X and Y are the feet position
type Body struct {
	X, Y        float32
	VX, VY      float32
	OnGround    bool
	FacingRight bool
}

// Step advances the body one frame. move is -1, 0 or 1.
func (b *Body) Step(s *Stage, move int, jump bool) {
	target := float32(move) * WalkSpeed
	switch {
	case b.VX < target:
		b.VX = min(b.VX+Accel, target)
	case b.VX > target:
		b.VX = max(b.VX-Accel, target)
	}
	if move > 0 {
		b.FacingRight = true
	} else if move < 0 {
		b.FacingRight = false
	}

	if jump && b.OnGround {
		b.VY = -JumpSpeed
		b.OnGround = false
	}
	b.VY = min(b.VY+Gravity, TerminalVel)

	nx := b.X + b.VX
	if nx < 0 {
		nx, b.VX = 0, 0
	}
	if nx > s.Width {
		nx, b.VX = s.Width, 0
	}
	// a step up into a higher segment is a wall
	if gy, ok := s.groundAt(nx); ok && gy < b.Y-1 {
		nx, b.VX = b.X, 0
	}
	b.X = nx

	ny := b.Y + b.VY
	b.OnGround = false
	if gy, ok := s.groundAt(b.X); ok && b.Y <= gy && ny >= gy {
		ny, b.VY = gy, 0
		b.OnGround = true
	}
	b.Y = ny
}
