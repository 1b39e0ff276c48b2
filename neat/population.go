package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// FitnessFunc evaluates one generation. Implementations must set the
// Fitness field of every genome in the map.
type FitnessFunc func(genomes map[int]*Genome) error

// Population holds the state of a NEAT evolution run. All randomness flows
// through the population's RNG, so runs are reproducible from the seed.
type Population struct {
	Config       *Config
	Population   map[int]*Genome
	SpeciesSet   *SpeciesSet
	Reproduction *Reproduction
	Stagnation   *Stagnation
	Generation   int
	BestGenome   *Genome

	rng       *rand.Rand
	reporters ReporterSet
}

// NewPopulation creates a population with an initial generation of genomes.
func NewPopulation(config *Config, seed int64) (*Population, error) {
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}

	rng := rand.New(rand.NewSource(seed))
	reproduction := NewReproduction(&config.Reproduction, stagnation)
	initial := reproduction.CreateNewPopulation(&config.Genome, config.Neat.PopSize, rng)

	return &Population{
		Config:       config,
		Population:   initial,
		SpeciesSet:   NewSpeciesSet(&config.SpeciesSet),
		Reproduction: reproduction,
		Stagnation:   stagnation,
		rng:          rng,
	}, nil
}

// AddReporter registers a reporter for evolution progress events.
func (p *Population) AddReporter(r Reporter) {
	p.reporters.Add(r)
}

// RNG exposes the population's random source so callers (for example
// fitness evaluators that need world randomness) can share the same stream.
func (p *Population) RNG() *rand.Rand {
	return p.rng
}

// RunGeneration executes one generation: evaluate, check termination,
// speciate, reproduce. It returns the winning genome when the fitness
// criterion crosses the configured threshold, otherwise nil.
func (p *Population) RunGeneration(fitnessFunc FitnessFunc) (*Genome, error) {
	p.Generation++
	p.reporters.startGeneration(p.Generation)

	if err := fitnessFunc(p.Population); err != nil {
		return nil, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	currentBest := p.findBestGenome()
	if currentBest != nil && (p.BestGenome == nil || currentBest.Fitness > p.BestGenome.Fitness) {
		p.BestGenome = currentBest
	}
	p.reporters.postEvaluate(p.Generation, p.Population, currentBest)

	if !p.Config.Neat.NoFitnessTermination {
		if fc := p.fitnessCriterion(); fc >= p.Config.Neat.FitnessThreshold && p.BestGenome != nil {
			p.reporters.foundSolution(p.Generation, p.BestGenome)
			return p.BestGenome, nil
		}
	}

	if len(p.Population) == 0 {
		if !p.resetOnExtinction() {
			return p.BestGenome, fmt.Errorf("population extinct in generation %d", p.Generation)
		}
		return nil, nil
	}

	p.SpeciesSet.Speciate(p.Config, p.Population, p.Generation)
	p.reporters.postSpeciate(p.Generation, p.SpeciesSet)

	newPopulation := p.Reproduction.Reproduce(p.Config, p.SpeciesSet, p.Config.Neat.PopSize, p.Generation, p.rng, &p.reporters)
	if len(newPopulation) == 0 {
		if !p.resetOnExtinction() {
			return p.BestGenome, fmt.Errorf("population extinct in generation %d", p.Generation)
		}
		return nil, nil
	}
	p.Population = newPopulation

	p.reporters.endGeneration(p.Generation, p.Population, p.SpeciesSet)
	return nil, nil
}

// resetOnExtinction replaces the population with a fresh one when the
// config allows it; it reports the extinction either way.
func (p *Population) resetOnExtinction() bool {
	p.reporters.completeExtinction(p.Generation)
	if !p.Config.Neat.ResetOnExtinction {
		return false
	}
	p.Population = p.Reproduction.CreateNewPopulation(&p.Config.Genome, p.Config.Neat.PopSize, p.rng)
	p.SpeciesSet = NewSpeciesSet(&p.Config.SpeciesSet)
	return true
}

// fitnessCriterion folds the current population's fitnesses with the
// configured criterion (max, min or mean).
func (p *Population) fitnessCriterion() float64 {
	fitnesses := make([]float64, 0, len(p.Population))
	for _, g := range p.Population {
		fitnesses = append(fitnesses, g.Fitness)
	}
	switch strings.ToLower(p.Config.Neat.FitnessCriterion) {
	case "min":
		return MinFloat(fitnesses)
	case "mean":
		return Mean(fitnesses)
	default:
		return MaxFloat(fitnesses)
	}
}

func (p *Population) findBestGenome() *Genome {
	var best *Genome
	maxFitness := math.Inf(-1)
	for _, g := range p.Population {
		if g.Fitness > maxFitness || (g.Fitness == maxFitness && best != nil && g.Key < best.Key) {
			maxFitness = g.Fitness
			best = g
		}
	}
	return best
}
