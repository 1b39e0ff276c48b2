package game

import "math/rand"

// Pipe gameplay constants.
const (
	PipeWidth  = 104.0
	PipeGap    = 150.0
	PipeSpeed  = 5.0
	PipeSpawnX = 700.0

	pipeGapTopMin = 50
	pipeGapTopMax = 350
)

// Pipe is a pair of obstacles with a vertical gap between them.
type Pipe struct {
	X      float64
	GapTop float64
	Passed bool
}

// NewPipe creates a pipe at x with a randomly placed gap.
func NewPipe(x float64, rng *rand.Rand) *Pipe {
	return &Pipe{
		X:      x,
		GapTop: float64(pipeGapTopMin + rng.Intn(pipeGapTopMax-pipeGapTopMin)),
	}
}

// GapBottom returns the y coordinate of the lower pipe's top edge.
func (p *Pipe) GapBottom() float64 {
	return p.GapTop + PipeGap
}

// Move advances the pipe toward the bird.
func (p *Pipe) Move() {
	p.X -= PipeSpeed
}

// OffScreen reports whether the pipe has scrolled past the left edge.
func (p *Pipe) OffScreen() bool {
	return p.X+PipeWidth < 0
}

// Collides checks the bird's box against both pipe halves. The bird box is
// inset by 2 px to stay close to the pixel-mask feel of the original art.
func (p *Pipe) Collides(b *Bird) bool {
	const inset = 2.0
	bx0 := BirdX + inset
	bx1 := BirdX + BirdWidth - inset
	by0 := b.Y + inset
	by1 := b.Y + BirdHeight - inset

	if bx1 <= p.X || bx0 >= p.X+PipeWidth {
		return false
	}
	return by0 < p.GapTop || by1 > p.GapBottom()
}
