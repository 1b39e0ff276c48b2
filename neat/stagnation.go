package neat

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Stagnation tracks per-species fitness history and flags species that have
// stopped improving.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64
}

// NewStagnation creates a stagnation manager from the config.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[strings.ToLower(config.SpeciesFitnessFunc)]
	if !ok {
		return nil, fmt.Errorf("invalid species_fitness_func in config: %s", config.SpeciesFitnessFunc)
	}
	return &Stagnation{Config: config, SpeciesFitnessFunc: fn}, nil
}

// StagnationInfo is the verdict for a single species.
type StagnationInfo struct {
	SpeciesID  int
	Species    *Species
	IsStagnant bool
}

// Update recomputes each species' fitness, appends it to the history and
// marks species stagnant when they have not improved for max_stagnation
// generations. The top species_elitism species by fitness are always spared.
func (s *Stagnation) Update(speciesSet *SpeciesSet, generation int) []StagnationInfo {
	if len(speciesSet.Species) == 0 {
		return nil
	}

	type entry struct {
		id int
		sp *Species
	}
	entries := make([]entry, 0, len(speciesSet.Species))
	for sid, sp := range speciesSet.Species {
		previousMax := math.Inf(-1)
		if len(sp.FitnessHistory) > 0 {
			previousMax = MaxFloat(sp.FitnessHistory)
		}

		fitnesses := sp.GetFitnesses()
		if len(fitnesses) == 0 {
			sp.Fitness = math.Inf(-1)
		} else {
			sp.Fitness = s.SpeciesFitnessFunc(fitnesses)
		}
		sp.FitnessHistory = append(sp.FitnessHistory, sp.Fitness)
		sp.AdjustedFitness = 0

		if sp.Fitness > previousMax {
			sp.LastImproved = generation
		}
		entries = append(entries, entry{sid, sp})
	}

	// Least fit first, so the elite species sit at the tail.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sp.Fitness != entries[j].sp.Fitness {
			return entries[i].sp.Fitness < entries[j].sp.Fitness
		}
		return entries[i].id < entries[j].id
	})

	result := make([]StagnationInfo, len(entries))
	numSpecies := len(entries)
	for i, e := range entries {
		stagnant := generation-e.sp.LastImproved >= s.Config.MaxStagnation
		if numSpecies-i <= s.Config.SpeciesElitism {
			stagnant = false
		}
		result[i] = StagnationInfo{SpeciesID: e.id, Species: e.sp, IsStagnant: stagnant}
	}
	return result
}
