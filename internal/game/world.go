package game

import "math/rand"

// Window and timing constants shared with the presentation layer.
const (
	WinWidth  = 576
	WinHeight = 800
	TPS       = 30
)

// StepEvents reports what happened during a single world tick.
type StepEvents struct {
	PipePassed bool
	Crashed    []int // indices into the birds slice passed to Step
}

// World is the headless simulation: pipes, ground and score. Birds are
// owned by the caller so one world can host a whole training cohort or a
// single player.
type World struct {
	Pipes  []*Pipe
	Ground *Ground
	Score  int
	Frame  int

	rng *rand.Rand
}

// NewWorld creates a world with the first pipe in place. The seed fixes
// the pipe sequence, so identical seeds produce identical courses.
func NewWorld(seed int64) *World {
	rng := rand.New(rand.NewSource(seed))
	return &World{
		Pipes:  []*Pipe{NewPipe(PipeSpawnX, rng)},
		Ground: NewGround(),
		rng:    rng,
	}
}

// NextPipe returns the nearest pipe the birds still have to clear.
func (w *World) NextPipe() *Pipe {
	for _, p := range w.Pipes {
		if p.X+PipeWidth >= BirdX {
			return p
		}
	}
	return w.Pipes[len(w.Pipes)-1]
}

// Step advances the world one tick: moves every living bird and the
// obstacles, resolves collisions and scoring, and spawns/removes pipes.
func (w *World) Step(birds []*Bird) StepEvents {
	var events StepEvents
	w.Frame++

	for _, b := range birds {
		if b.Alive {
			b.Move()
		}
	}

	addPipe := false
	remaining := w.Pipes[:0]
	for _, p := range w.Pipes {
		p.Move()
		for i, b := range birds {
			if b.Alive && p.Collides(b) {
				b.Alive = false
				events.Crashed = append(events.Crashed, i)
			}
		}
		if !p.Passed && BirdX > p.X+PipeWidth {
			p.Passed = true
			addPipe = true
		}
		if !p.OffScreen() {
			remaining = append(remaining, p)
		}
	}
	w.Pipes = remaining

	if addPipe {
		w.Score++
		events.PipePassed = true
		w.Pipes = append(w.Pipes, NewPipe(WinWidth+100, w.rng))
	}

	for i, b := range birds {
		if b.Alive && (b.Y+BirdHeight >= GroundY || b.Y < 0) {
			b.Alive = false
			events.Crashed = append(events.Crashed, i)
		}
	}

	w.Ground.Move()
	return events
}
