package game

// Bird gameplay constants. Positions are in logical pixels; the physics
// runs at the fixed gameplay tick rate.
const (
	BirdX      = 230.0
	BirdStartY = 350.0
	BirdWidth  = 48.0
	BirdHeight = 34.0

	flapVelocity = -9.5
	maxRotation  = 25.0
	rotationVel  = 20.0
)

// Bird is a player, human or network controlled. All birds fly in the same
// screen column; only their vertical state differs.
type Bird struct {
	Y     float64
	Vel   float64
	Tilt  float64
	Alive bool

	ticksSinceFlap int
	flapStartY     float64
}

// NewBird spawns a bird at the start position.
func NewBird() *Bird {
	return &Bird{
		Y:          BirdStartY,
		Alive:      true,
		flapStartY: BirdStartY,
	}
}

// Flap starts an upward impulse.
func (b *Bird) Flap() {
	b.Vel = flapVelocity
	b.ticksSinceFlap = 0
	b.flapStartY = b.Y
}

// Move advances the bird by one tick: ballistic displacement since the last
// flap, capped downward at 16 px and boosted slightly while rising, plus
// the tilt animation (nose up while climbing, diving toward -90 otherwise).
func (b *Bird) Move() {
	b.ticksSinceFlap++
	t := float64(b.ticksSinceFlap)
	d := b.Vel*t + 1.5*t*t
	if d >= 16 {
		d = 16
	}
	if d < 0 {
		d -= 2
	}
	b.Y += d

	if d < 0 || b.Y < b.flapStartY+50 {
		if b.Tilt < maxRotation {
			b.Tilt = maxRotation
		}
	} else if b.Tilt > -90 {
		b.Tilt -= rotationVel
	}
}
