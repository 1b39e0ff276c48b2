package neat

import (
	"math"
	"math/rand"
	"sort"
)

// Reproduction creates new generations, either from scratch or through
// crossover and mutation of the fittest members of each species.
type Reproduction struct {
	Config        *ReproductionConfig
	NextGenomeKey int
	Ancestors     map[int][]int
	Stagnation    *Stagnation
}

// NewReproduction creates a reproduction manager.
func NewReproduction(config *ReproductionConfig, stagnation *Stagnation) *Reproduction {
	return &Reproduction{
		Config:        config,
		NextGenomeKey: 1,
		Ancestors:     make(map[int][]int),
		Stagnation:    stagnation,
	}
}

func (r *Reproduction) nextKey() int {
	key := r.NextGenomeKey
	r.NextGenomeKey++
	return key
}

// CreateNewPopulation builds an initial population of freshly configured genomes.
func (r *Reproduction) CreateNewPopulation(genomeConfig *GenomeConfig, popSize int, rng *rand.Rand) map[int]*Genome {
	genomes := make(map[int]*Genome, popSize)
	for i := 0; i < popSize; i++ {
		key := r.nextKey()
		g := NewGenome(key, genomeConfig)
		g.ConfigureNew(rng)
		genomes[key] = g
		r.Ancestors[key] = nil
	}
	return genomes
}

// Reproduce builds the next generation. Stagnant species are dropped, the
// survivors receive spawn slots proportional to their shared fitness, elites
// carry over unchanged and the rest of each slot is filled by mutated
// offspring of randomly paired parents from the species' top fraction.
func (r *Reproduction) Reproduce(config *Config, speciesSet *SpeciesSet, popSize, generation int, rng *rand.Rand, reporters *ReporterSet) map[int]*Genome {
	stagnationInfo := r.Stagnation.Update(speciesSet, generation)

	var allFitnesses []float64
	var remaining []*Species
	for _, info := range stagnationInfo {
		if info.IsStagnant {
			if reporters != nil {
				reporters.speciesStagnant(info.SpeciesID, info.Species)
			}
			continue
		}
		fitnesses := info.Species.GetFitnesses()
		if len(fitnesses) == 0 {
			continue
		}
		allFitnesses = append(allFitnesses, fitnesses...)
		remaining = append(remaining, info.Species)
	}
	if len(remaining) == 0 {
		return map[int]*Genome{}
	}

	// Fitness sharing: min-max normalise the species mean fitnesses.
	minFitness := MinFloat(allFitnesses)
	maxFitness := MaxFloat(allFitnesses)
	fitnessRange := math.Max(1.0, maxFitness-minFitness)

	adjustedSum := 0.0
	for _, sp := range remaining {
		sp.AdjustedFitness = (sp.Fitness - minFitness) / fitnessRange
		adjustedSum += sp.AdjustedFitness
	}

	previousSizes := make([]int, len(remaining))
	adjusted := make([]float64, len(remaining))
	for i, sp := range remaining {
		previousSizes[i] = len(sp.Members)
		adjusted[i] = sp.AdjustedFitness
	}
	spawnMinSize := maxInt(r.Config.MinSpeciesSize, r.Config.Elitism)
	spawnAmounts := computeSpawnAmounts(adjusted, adjustedSum, previousSizes, popSize, spawnMinSize, rng)

	newPopulation := make(map[int]*Genome)
	newAncestors := make(map[int][]int)

	for i, sp := range remaining {
		spawn := maxInt(spawnAmounts[i], r.Config.Elitism)
		if spawn <= 0 {
			continue
		}

		oldMembers := make([]*Genome, 0, len(sp.Members))
		for _, g := range sp.Members {
			oldMembers = append(oldMembers, g)
		}
		sort.Slice(oldMembers, func(a, b int) bool {
			if oldMembers[a].Fitness != oldMembers[b].Fitness {
				return oldMembers[a].Fitness > oldMembers[b].Fitness
			}
			return oldMembers[a].Key < oldMembers[b].Key
		})

		for j := 0; j < r.Config.Elitism && j < len(oldMembers) && spawn > 0; j++ {
			elite := oldMembers[j]
			newPopulation[elite.Key] = elite
			newAncestors[elite.Key] = []int{elite.Key}
			spawn--
		}
		if spawn <= 0 {
			continue
		}

		cutoff := int(math.Ceil(r.Config.SurvivalThreshold * float64(len(oldMembers))))
		cutoff = maxInt(cutoff, 2)
		if cutoff > len(oldMembers) {
			cutoff = len(oldMembers)
		}
		parents := oldMembers[:cutoff]
		if len(parents) == 0 {
			continue
		}

		for j := 0; j < spawn; j++ {
			parent1 := parents[rng.Intn(len(parents))]
			parent2 := parents[rng.Intn(len(parents))]

			childKey := r.nextKey()
			child := NewGenome(childKey, &config.Genome)
			child.ConfigureCrossover(parent1, parent2, rng)
			child.Mutate(rng)

			newPopulation[childKey] = child
			newAncestors[childKey] = []int{parent1.Key, parent2.Key}
		}
	}
	r.Ancestors = newAncestors
	return newPopulation
}

// computeSpawnAmounts allocates offspring slots per species: proportional to
// adjusted fitness, dampened toward the previous size, then normalised so
// the total matches popSize as closely as the per-species minimum allows.
func computeSpawnAmounts(adjustedFitnesses []float64, adjustedSum float64, previousSizes []int, popSize, minSpeciesSize int, rng *rand.Rand) []int {
	spawnAmounts := make([]int, len(adjustedFitnesses))
	for i, af := range adjustedFitnesses {
		ps := previousSizes[i]
		var s float64
		if adjustedSum > 0 {
			s = af / adjustedSum * float64(popSize)
		} else {
			s = float64(minSpeciesSize)
		}
		s = math.Max(float64(minSpeciesSize), s)

		d := (s - float64(ps)) * 0.5
		c := int(math.Round(d))
		spawn := ps
		if c != 0 {
			spawn += c
		} else if d > 0 {
			spawn++
		} else if d < 0 {
			spawn--
		}
		spawnAmounts[i] = maxInt(minSpeciesSize, spawn)
	}

	totalSpawn := 0
	for _, sa := range spawnAmounts {
		totalSpawn += sa
	}
	if totalSpawn == 0 {
		for i := range spawnAmounts {
			spawnAmounts[i] = minSpeciesSize
		}
		totalSpawn = len(spawnAmounts) * minSpeciesSize
		if totalSpawn == 0 {
			return spawnAmounts
		}
	}

	norm := float64(popSize) / float64(totalSpawn)
	final := make([]int, len(spawnAmounts))
	currentTotal := 0
	for i, sa := range spawnAmounts {
		final[i] = maxInt(minSpeciesSize, int(math.Round(float64(sa)*norm)))
		currentTotal += final[i]
	}

	// Distribute rounding leftovers over randomly ordered species.
	diff := popSize - currentTotal
	if diff != 0 {
		indices := rng.Perm(len(final))
		for _, idx := range indices {
			if diff == 0 {
				break
			}
			if diff > 0 {
				final[idx]++
				diff--
			} else if final[idx] > minSpeciesSize {
				final[idx]--
				diff++
			}
		}
	}
	return final
}
