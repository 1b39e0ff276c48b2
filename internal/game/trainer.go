package game

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Dipendra367/FlappyBirdAI/neat"
	"github.com/Dipendra367/FlappyBirdAI/neat/nn"
)

// Fitness shaping constants. Birds earn a trickle for staying alive, a
// bonus for each pipe cleared, and a penalty for crashing.
const (
	fitnessPerTick  = 0.1
	fitnessPerPipe  = 5.0
	crashPenalty    = 1.0
	flapThreshold   = 0.5
	DefaultScoreCap = 100
)

// Cohort is one generation's birds flying the same course. Each bird is
// driven by the phenotype of one genome; fitness accumulates directly on
// the genomes as the cohort is stepped.
type Cohort struct {
	World      *World
	Birds      []*Bird
	Generation int

	genomes  []*neat.Genome
	nets     []*nn.FeedForwardNetwork
	scoreCap int
	finished bool
}

// NewCohort builds a cohort from a generation's genomes. Genomes whose
// phenotype cannot be built (a cycle slipped past the feed-forward guard,
// say) start dead with zero fitness rather than failing the generation.
func NewCohort(genomes map[int]*neat.Genome, generation int, seed int64, scoreCap int) *Cohort {
	keys := make([]int, 0, len(genomes))
	for k := range genomes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	c := &Cohort{
		World:      NewWorld(seed),
		Generation: generation,
		scoreCap:   scoreCap,
	}
	for _, k := range keys {
		g := genomes[k]
		g.Fitness = 0
		b := NewBird()
		net, err := nn.CreateFeedForwardNetwork(g)
		if err != nil {
			b.Alive = false
		}
		c.genomes = append(c.genomes, g)
		c.nets = append(c.nets, net)
		c.Birds = append(c.Birds, b)
	}
	return c
}

// Alive returns the number of birds still flying.
func (c *Cohort) Alive() int {
	n := 0
	for _, b := range c.Birds {
		if b.Alive {
			n++
		}
	}
	return n
}

// Score returns the number of pipes the cohort has cleared.
func (c *Cohort) Score() int {
	return c.World.Score
}

// Finished reports whether the cohort's run is over: every bird dead or
// the score cap reached.
func (c *Cohort) Finished() bool {
	return c.finished
}

// Step advances the cohort one tick: each living bird's network decides
// whether to flap from its position relative to the next gap, then the
// world moves and fitness is settled. Returns true when the run is over.
func (c *Cohort) Step() bool {
	if c.finished {
		return true
	}

	pipe := c.World.NextPipe()
	for i, b := range c.Birds {
		if !b.Alive || c.nets[i] == nil {
			continue
		}
		c.genomes[i].Fitness += fitnessPerTick
		out, err := c.nets[i].Activate([]float64{
			b.Y,
			abs(b.Y - pipe.GapTop),
			abs(b.Y - pipe.GapBottom()),
		})
		if err != nil {
			b.Alive = false
			continue
		}
		if out[0] > flapThreshold {
			b.Flap()
		}
	}

	events := c.World.Step(c.Birds)
	for _, i := range events.Crashed {
		c.genomes[i].Fitness -= crashPenalty
	}
	if events.PipePassed {
		for i, b := range c.Birds {
			if b.Alive {
				c.genomes[i].Fitness += fitnessPerPipe
			}
		}
	}

	if c.Alive() == 0 || (c.scoreCap > 0 && c.World.Score >= c.scoreCap) {
		c.finished = true
	}
	return c.finished
}

// RunToCompletion steps the cohort until it finishes. Used for headless
// training, where there is no frame clock to pace the simulation.
func (c *Cohort) RunToCompletion() {
	for !c.Step() {
	}
}

// finishAbandoned runs an abandoned cohort to completion headless. With no
// score cap an evolved bird can fly forever, so the cap is bounded first;
// this keeps closing the training window from hanging the evolution
// goroutine.
func (c *Cohort) finishAbandoned(fallbackCap int) {
	if c.scoreCap <= 0 {
		c.scoreCap = fallbackCap
	}
	c.RunToCompletion()
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Trainer drives NEAT evolution with the flappy cohort as the fitness
// function.
type Trainer struct {
	Pop      *neat.Population
	ScoreCap int
	Log      *zap.SugaredLogger
}

// NewTrainer wraps a population for training. A zero scoreCap disables the
// cap, letting a perfect bird fly forever (do not do this headless).
func NewTrainer(pop *neat.Population, scoreCap int, log *zap.SugaredLogger) *Trainer {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Trainer{Pop: pop, ScoreCap: scoreCap, Log: log}
}

// EvalGenomes is the headless FitnessFunc: it flies one cohort to
// completion and leaves fitness on the genomes.
func (t *Trainer) EvalGenomes(genomes map[int]*neat.Genome) error {
	cohort := NewCohort(genomes, t.Pop.Generation, t.Pop.RNG().Int63(), t.ScoreCap)
	cohort.RunToCompletion()
	t.Log.Debugw("cohort flown",
		"generation", t.Pop.Generation,
		"score", cohort.Score(),
		"frames", cohort.World.Frame,
	)
	return nil
}

// Run evolves for up to the given number of generations headless, calling
// afterGen (if non-nil) after each one. It returns the winning genome if
// the fitness threshold was reached, otherwise the best genome seen.
func (t *Trainer) Run(generations int, afterGen func(generation int) error) (*neat.Genome, error) {
	for i := 0; i < generations; i++ {
		winner, err := t.Pop.RunGeneration(t.EvalGenomes)
		if err != nil {
			return t.Pop.BestGenome, err
		}
		if afterGen != nil {
			if err := afterGen(t.Pop.Generation); err != nil {
				return t.Pop.BestGenome, err
			}
		}
		if winner != nil {
			return winner, nil
		}
	}
	return t.Pop.BestGenome, nil
}

// SessionResult carries the outcome of a windowed training session.
type SessionResult struct {
	Best *neat.Genome
	Err  error
}

// Session runs evolution on a background goroutine while handing each
// generation's cohort to a renderer. The renderer steps the cohort at its
// own pace and signals completion; the evolution side blocks in between,
// so the two never touch a cohort concurrently.
type Session struct {
	cohorts chan *Cohort
	done    chan struct{}
	result  chan SessionResult
}

// StartSession begins windowed training for up to the given number of
// generations. The trainer's fitness function pushes each cohort on the
// channel and waits for CohortDone before reproducing.
func (t *Trainer) StartSession(generations int) *Session {
	s := &Session{
		cohorts: make(chan *Cohort),
		done:    make(chan struct{}),
		result:  make(chan SessionResult, 1),
	}

	eval := func(genomes map[int]*neat.Genome) error {
		cohort := NewCohort(genomes, t.Pop.Generation, t.Pop.RNG().Int63(), t.ScoreCap)
		select {
		case s.cohorts <- cohort:
		case <-s.done:
			cohort.finishAbandoned(DefaultScoreCap)
			return nil
		}
		<-s.done
		if !cohort.Finished() {
			// The window closed mid-generation; finish headless so the
			// genomes still get full fitness.
			cohort.finishAbandoned(DefaultScoreCap)
		}
		return nil
	}

	go func() {
		defer close(s.cohorts)
		var best *neat.Genome
		var err error
		for i := 0; i < generations; i++ {
			var winner *neat.Genome
			winner, err = t.Pop.RunGeneration(eval)
			if err != nil || winner != nil {
				best = winner
				break
			}
		}
		if best == nil {
			best = t.Pop.BestGenome
		}
		s.result <- SessionResult{Best: best, Err: err}
	}()

	return s
}

// Cohorts yields each generation's cohort in turn. The channel closes when
// evolution ends.
func (s *Session) Cohorts() <-chan *Cohort {
	return s.cohorts
}

// CohortDone tells the evolution side the current cohort has been stepped
// to completion (or abandoned).
func (s *Session) CohortDone() {
	s.done <- struct{}{}
}

// Close abandons the session. Pending generations finish headless under a
// bounded score cap so Result cannot block forever.
func (s *Session) Close() {
	close(s.done)
}

// Result blocks until evolution finishes and returns the outcome.
func (s *Session) Result() SessionResult {
	return <-s.result
}

// ZapReporter logs evolution progress through a structured logger.
type ZapReporter struct {
	neat.BaseReporter
	Log *zap.SugaredLogger
}

// NewZapReporter creates a reporter writing to the given logger.
func NewZapReporter(log *zap.SugaredLogger) *ZapReporter {
	return &ZapReporter{Log: log}
}

func (r *ZapReporter) StartGeneration(generation int) {
	r.Log.Infow("generation start", "generation", generation)
}

func (r *ZapReporter) PostEvaluate(generation int, population map[int]*neat.Genome, best *neat.Genome) {
	fitnesses := make([]float64, 0, len(population))
	for _, g := range population {
		fitnesses = append(fitnesses, g.Fitness)
	}
	fields := []interface{}{
		"generation", generation,
		"population", len(population),
		"mean_fitness", neat.Mean(fitnesses),
	}
	if best != nil {
		fields = append(fields,
			"best_fitness", best.Fitness,
			"best_genome", best.Key,
			"best_size", fmt.Sprintf("%dn/%dc", len(best.Nodes), len(best.Connections)),
		)
	}
	r.Log.Infow("generation evaluated", fields...)
}

func (r *ZapReporter) PostSpeciate(generation int, species *neat.SpeciesSet) {
	r.Log.Infow("population speciated", "generation", generation, "species", len(species.Species))
}

func (r *ZapReporter) SpeciesStagnant(speciesID int, species *neat.Species) {
	r.Log.Infow("species stagnant", "species", speciesID, "members", len(species.Members))
}

func (r *ZapReporter) CompleteExtinction(generation int) {
	r.Log.Warnw("population extinct", "generation", generation)
}

func (r *ZapReporter) FoundSolution(generation int, best *neat.Genome) {
	r.Log.Infow("fitness threshold reached", "generation", generation, "best_genome", best.Key, "fitness", best.Fitness)
}
