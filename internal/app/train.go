package app

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/Dipendra367/FlappyBirdAI/internal/game"
	"github.com/Dipendra367/FlappyBirdAI/internal/render"
)

// Steps per frame while fast-forward is on.
const fastForwardSteps = 8

// TrainGame visualises a training session: each generation's cohort is
// handed over by the trainer, stepped on the frame clock, and returned when
// every bird is down.
type TrainGame struct {
	renderer *render.Renderer
	session  *game.Session
	log      *zap.SugaredLogger

	cohort   *game.Cohort
	fast     bool
	paused   bool
	finished bool
	result   game.SessionResult
}

// NewTrainGame wraps a running session in a window.
func NewTrainGame(session *game.Session, log *zap.SugaredLogger) *TrainGame {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TrainGame{
		renderer: render.NewRenderer(),
		session:  session,
		log:      log,
	}
}

// Result returns the session outcome. Valid after the game loop exits.
func (g *TrainGame) Result() game.SessionResult {
	return g.result
}

func (g *TrainGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		if !g.finished {
			g.session.Close()
			g.result = g.session.Result()
			g.finished = true
		}
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.fast = !g.fast
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}

	if g.finished || g.paused {
		return nil
	}

	if g.cohort == nil {
		select {
		case cohort, ok := <-g.session.Cohorts():
			if !ok {
				g.result = g.session.Result()
				g.finished = true
				return nil
			}
			g.cohort = cohort
		default:
			// Evolution is still reproducing; skip this frame.
			return nil
		}
	}

	steps := 1
	if g.fast {
		steps = fastForwardSteps
	}
	for i := 0; i < steps; i++ {
		if g.cohort.Step() {
			g.session.CohortDone()
			g.cohort = nil
			break
		}
	}
	return nil
}

func (g *TrainGame) Draw(screen *ebiten.Image) {
	if g.cohort == nil {
		g.renderer.DrawBackground(screen)
		if g.finished {
			lines := []string{"Training complete"}
			if g.result.Best != nil {
				lines = append(lines, fmt.Sprintf("Best fitness %.1f", g.result.Best.Fitness))
			}
			lines = append(lines, "Esc to quit")
			g.renderer.DrawCenteredBanner(screen, lines)
		}
		return
	}

	g.renderer.DrawWorld(screen, g.cohort.World)

	// The first living bird is drawn solid, the rest faded, so the flock
	// stays readable.
	leader := true
	for _, b := range g.cohort.Birds {
		if !b.Alive {
			continue
		}
		if leader {
			g.renderer.DrawBird(screen, b)
			leader = false
		} else {
			g.renderer.DrawBirdFaded(screen, b)
		}
	}

	g.renderer.DrawScore(screen, fmt.Sprintf("Score: %d", g.cohort.Score()))
	g.renderer.DrawStats(screen, []string{
		fmt.Sprintf("Gen: %d", g.cohort.Generation),
		fmt.Sprintf("Alive: %d/%d", g.cohort.Alive(), len(g.cohort.Birds)),
		"F fast-forward, Space pause",
	})

	if g.paused {
		g.renderer.DrawCenteredBanner(screen, []string{"Paused", "Space to resume"})
	}
}

func (g *TrainGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return game.WinWidth, game.WinHeight
}
