// Package app wires the game simulation to the ebiten main loop.
package app

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/Dipendra367/FlappyBirdAI/internal/game"
	"github.com/Dipendra367/FlappyBirdAI/internal/render"
	"github.com/Dipendra367/FlappyBirdAI/neat/nn"
)

// PlayGame is the single-bird loop. With a nil network the player flies the
// bird; with a network attached it replays a trained genome.
type PlayGame struct {
	renderer *render.Renderer
	world    *game.World
	bird     *game.Bird
	net      *nn.FeedForwardNetwork
	log      *zap.SugaredLogger

	seed    int64
	attempt int64
	over    bool
}

// NewPlayGame creates a manually controlled game.
func NewPlayGame(seed int64, log *zap.SugaredLogger) *PlayGame {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PlayGame{
		renderer: render.NewRenderer(),
		world:    game.NewWorld(seed),
		bird:     game.NewBird(),
		log:      log,
		seed:     seed,
	}
}

// NewReplayGame creates a game flown by the given network.
func NewReplayGame(net *nn.FeedForwardNetwork, seed int64, log *zap.SugaredLogger) *PlayGame {
	g := NewPlayGame(seed, log)
	g.net = net
	return g
}

func (g *PlayGame) restart() {
	g.attempt++
	g.world = game.NewWorld(g.seed + g.attempt)
	g.bird = game.NewBird()
	g.over = false
}

func (g *PlayGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	if g.over {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.restart()
		}
		return nil
	}

	if g.net != nil {
		pipe := g.world.NextPipe()
		out, err := g.net.Activate([]float64{
			g.bird.Y,
			abs(g.bird.Y - pipe.GapTop),
			abs(g.bird.Y - pipe.GapBottom()),
		})
		if err != nil {
			return fmt.Errorf("network activation failed: %w", err)
		}
		if out[0] > 0.5 {
			g.bird.Flap()
		}
	} else if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.bird.Flap()
	}

	g.world.Step([]*game.Bird{g.bird})
	if !g.bird.Alive {
		g.over = true
		g.log.Infow("game over", "score", g.world.Score, "frames", g.world.Frame)
	}
	return nil
}

func (g *PlayGame) Draw(screen *ebiten.Image) {
	g.renderer.DrawWorld(screen, g.world)
	g.renderer.DrawBird(screen, g.bird)
	g.renderer.DrawScore(screen, fmt.Sprintf("Score: %d", g.world.Score))

	if g.over {
		g.renderer.DrawCenteredBanner(screen, []string{
			fmt.Sprintf("Game over - score %d", g.world.Score),
			"R to restart, Esc to quit",
		})
	}
}

func (g *PlayGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return game.WinWidth, game.WinHeight
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Run opens the window and runs an ebiten game until it terminates.
func Run(title string, tps int, g ebiten.Game) error {
	if tps <= 0 {
		tps = game.TPS
	}
	ebiten.SetWindowSize(game.WinWidth, game.WinHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}
