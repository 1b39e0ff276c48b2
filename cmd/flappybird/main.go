package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Dipendra367/FlappyBirdAI/internal/app"
	"github.com/Dipendra367/FlappyBirdAI/internal/game"
	"github.com/Dipendra367/FlappyBirdAI/neat"
	"github.com/Dipendra367/FlappyBirdAI/neat/nn"
)

func main() {
	a := &cli.App{
		Name:  "flappybird",
		Usage: "Flappy Bird with NEAT-evolved pilots",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "random seed for the pipe course and evolution",
				Value: 42,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging",
			},
		},
		Commands: []*cli.Command{
			playCommand(),
			trainCommand(),
			replayCommand(),
		},
	}

	if err := a.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(ctx *cli.Context) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	if ctx.Bool("debug") {
		cfg = zap.NewDevelopmentConfig()
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return log.Sugar(), nil
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "fly the bird yourself (space/up to flap)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "tps",
				Usage: "simulation ticks per second",
				Value: game.TPS,
			},
		},
		Action: func(ctx *cli.Context) error {
			log, err := newLogger(ctx)
			if err != nil {
				return err
			}
			defer log.Sync()

			g := app.NewPlayGame(ctx.Int64("seed"), log)
			return app.Run("Flappy Bird", ctx.Int("tps"), g)
		},
	}
}

func trainCommand() *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "evolve pilots with NEAT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "NEAT configuration file",
				Value: "configs/flappy-config",
			},
			&cli.IntFlag{
				Name:  "generations",
				Usage: "maximum number of generations",
				Value: 50,
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "train without a window",
			},
			&cli.IntFlag{
				Name:  "score-cap",
				Usage: "end a generation once this many pipes are cleared (0 disables)",
				Value: game.DefaultScoreCap,
			},
			&cli.StringFlag{
				Name:  "winner",
				Usage: "file to save the best genome to",
				Value: "winner.gz",
			},
			&cli.StringFlag{
				Name:  "checkpoint-dir",
				Usage: "directory for periodic population checkpoints (empty disables)",
			},
			&cli.IntFlag{
				Name:  "checkpoint-every",
				Usage: "generations between checkpoints",
				Value: 10,
			},
			&cli.StringFlag{
				Name:  "resume",
				Usage: "checkpoint file to resume from",
			},
		},
		Action: runTrain,
	}
}

func runTrain(ctx *cli.Context) error {
	log, err := newLogger(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()

	seed := ctx.Int64("seed")
	configPath := ctx.String("config")

	var pop *neat.Population
	if resume := ctx.String("resume"); resume != "" {
		pop, err = neat.LoadCheckpoint(resume, configPath, seed)
		if err != nil {
			return fmt.Errorf("failed to resume from checkpoint: %w", err)
		}
		log.Infow("resumed from checkpoint", "path", resume, "generation", pop.Generation)
	} else {
		config, err := neat.LoadConfig(configPath)
		if err != nil {
			return err
		}
		pop, err = neat.NewPopulation(config, seed)
		if err != nil {
			return err
		}
	}
	pop.AddReporter(game.NewZapReporter(log))

	scoreCap := ctx.Int("score-cap")
	if scoreCap <= 0 && ctx.Bool("headless") {
		return fmt.Errorf("headless training requires a positive score cap, or a perfect bird never lands")
	}
	trainer := game.NewTrainer(pop, scoreCap, log)

	checkpointDir := ctx.String("checkpoint-dir")
	checkpointEvery := ctx.Int("checkpoint-every")
	afterGen := func(generation int) error {
		if checkpointDir == "" || checkpointEvery <= 0 || generation%checkpointEvery != 0 {
			return nil
		}
		if err := os.MkdirAll(checkpointDir, 0o755); err != nil {
			return fmt.Errorf("failed to create checkpoint directory: %w", err)
		}
		path := filepath.Join(checkpointDir, fmt.Sprintf("checkpoint-%d.gz", generation))
		if err := pop.SaveCheckpoint(path); err != nil {
			return fmt.Errorf("failed to save checkpoint: %w", err)
		}
		log.Infow("checkpoint saved", "path", path, "generation", generation)
		return nil
	}

	var best *neat.Genome
	if ctx.Bool("headless") {
		best, err = trainer.Run(ctx.Int("generations"), afterGen)
	} else {
		session := trainer.StartSession(ctx.Int("generations"))
		tg := app.NewTrainGame(session, log)
		if runErr := app.Run("Flappy Bird - training", game.TPS, tg); runErr != nil {
			return runErr
		}
		result := tg.Result()
		best, err = result.Best, result.Err
	}
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("training produced no best genome")
	}

	log.Infow("training finished",
		"best_genome", best.Key,
		"fitness", best.Fitness,
		"nodes", len(best.Nodes),
		"connections", len(best.Connections),
	)

	winnerPath := ctx.String("winner")
	if winnerPath != "" {
		if err := neat.SaveGenome(best, winnerPath); err != nil {
			return fmt.Errorf("failed to save winner: %w", err)
		}
		log.Infow("winner saved", "path", winnerPath)
	}
	return nil
}

func replayCommand() *cli.Command {
	return &cli.Command{
		Name:  "replay",
		Usage: "watch a saved genome fly",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "winner",
				Usage: "saved genome file",
				Value: "winner.gz",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "NEAT configuration file the genome was trained with",
				Value: "configs/flappy-config",
			},
			&cli.IntFlag{
				Name:  "tps",
				Usage: "simulation ticks per second",
				Value: game.TPS,
			},
		},
		Action: func(ctx *cli.Context) error {
			log, err := newLogger(ctx)
			if err != nil {
				return err
			}
			defer log.Sync()

			config, err := neat.LoadConfig(ctx.String("config"))
			if err != nil {
				return err
			}
			genome, err := neat.LoadGenome(ctx.String("winner"), &config.Genome)
			if err != nil {
				return err
			}
			net, err := nn.CreateFeedForwardNetwork(genome)
			if err != nil {
				return fmt.Errorf("failed to build network from genome %d: %w", genome.Key, err)
			}

			g := app.NewReplayGame(net, ctx.Int64("seed"), log)
			return app.Run("Flappy Bird - replay", ctx.Int("tps"), g)
		},
	}
}
