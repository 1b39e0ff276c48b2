package neat

import (
	"math"
	"sort"
)

// Species groups genetically similar genomes.
type Species struct {
	Key             int
	Created         int
	LastImproved    int
	Representative  *Genome
	Members         map[int]*Genome
	Fitness         float64
	AdjustedFitness float64
	FitnessHistory  []float64
}

// NewSpecies creates a species first seen in the given generation.
func NewSpecies(key, generation int) *Species {
	return &Species{
		Key:          key,
		Created:      generation,
		LastImproved: generation,
		Members:      make(map[int]*Genome),
	}
}

// Update replaces the species' representative and membership.
func (s *Species) Update(representative *Genome, members map[int]*Genome) {
	s.Representative = representative
	s.Members = members
}

// GetFitnesses returns the fitness values of all members.
func (s *Species) GetFitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Members))
	for _, g := range s.Members {
		fitnesses = append(fitnesses, g.Fitness)
	}
	return fitnesses
}

// genomePair is an unordered pair of genome keys, normalised so the smaller
// key comes first.
type genomePair struct {
	a, b int
}

func makeGenomePair(k1, k2 int) genomePair {
	if k1 > k2 {
		k1, k2 = k2, k1
	}
	return genomePair{a: k1, b: k2}
}

// distanceCache memoizes compatibility distances within one speciation pass.
type distanceCache struct {
	distances map[genomePair]float64
	hits      int
	misses    int
}

func newDistanceCache() *distanceCache {
	return &distanceCache{distances: make(map[genomePair]float64)}
}

func (dc *distanceCache) distance(g1, g2 *Genome) float64 {
	key := makeGenomePair(g1.Key, g2.Key)
	if d, ok := dc.distances[key]; ok {
		dc.hits++
		return d
	}
	dc.misses++
	d := g1.Distance(g2)
	dc.distances[key] = d
	return d
}

// SpeciesSet manages the species partition of a population.
type SpeciesSet struct {
	Species         map[int]*Species
	GenomeToSpecies map[int]int
	Indexer         int
	Config          *SpeciesSetConfig
}

// NewSpeciesSet creates an empty species set.
func NewSpeciesSet(config *SpeciesSetConfig) *SpeciesSet {
	return &SpeciesSet{
		Species:         make(map[int]*Species),
		GenomeToSpecies: make(map[int]int),
		Indexer:         1,
		Config:          config,
	}
}

// Speciate partitions the population by compatibility distance. Each
// existing species first claims the unspeciated genome closest to its old
// representative as its new representative; remaining genomes join the
// nearest species within the compatibility threshold or found a new one.
func (ss *SpeciesSet) Speciate(config *Config, population map[int]*Genome, generation int) {
	if len(population) == 0 {
		ss.Species = make(map[int]*Species)
		ss.GenomeToSpecies = make(map[int]int)
		return
	}

	threshold := ss.Config.CompatibilityThreshold
	cache := newDistanceCache()

	unspeciated := make(map[int]*Genome, len(population))
	for k, v := range population {
		unspeciated[k] = v
	}
	newRepresentatives := make(map[int]*Genome)
	newMembers := make(map[int][]int)

	speciesIDs := make([]int, 0, len(ss.Species))
	for sid := range ss.Species {
		speciesIDs = append(speciesIDs, sid)
	}
	sort.Ints(speciesIDs)

	for _, sid := range speciesIDs {
		if len(unspeciated) == 0 {
			break
		}
		s := ss.Species[sid]
		if s.Representative == nil {
			continue
		}
		var closest *Genome
		minDist := math.Inf(1)
		for _, g := range unspeciated {
			d := cache.distance(s.Representative, g)
			if d < minDist || (d == minDist && closest != nil && g.Key < closest.Key) {
				minDist = d
				closest = g
			}
		}
		if closest == nil {
			continue
		}
		newRepresentatives[sid] = closest
		newMembers[sid] = []int{closest.Key}
		delete(unspeciated, closest.Key)
	}

	remaining := make([]*Genome, 0, len(unspeciated))
	for _, g := range unspeciated {
		remaining = append(remaining, g)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Key < remaining[j].Key })

	for _, g := range remaining {
		bestSpecies := -1
		minDist := math.Inf(1)
		repIDs := make([]int, 0, len(newRepresentatives))
		for sid := range newRepresentatives {
			repIDs = append(repIDs, sid)
		}
		sort.Ints(repIDs)
		for _, sid := range repIDs {
			d := cache.distance(newRepresentatives[sid], g)
			if d < threshold && d < minDist {
				minDist = d
				bestSpecies = sid
			}
		}
		if bestSpecies != -1 {
			newMembers[bestSpecies] = append(newMembers[bestSpecies], g.Key)
		} else {
			sid := ss.Indexer
			ss.Indexer++
			newRepresentatives[sid] = g
			newMembers[sid] = []int{g.Key}
		}
	}

	newSpeciesMap := make(map[int]*Species)
	newGenomeToSpecies := make(map[int]int)
	for sid, representative := range newRepresentatives {
		members := newMembers[sid]
		if len(members) == 0 {
			continue
		}
		s := ss.Species[sid]
		if s == nil {
			s = NewSpecies(sid, generation)
		}
		memberMap := make(map[int]*Genome, len(members))
		for _, gid := range members {
			memberMap[gid] = population[gid]
			newGenomeToSpecies[gid] = sid
		}
		s.Update(representative, memberMap)
		newSpeciesMap[sid] = s
	}

	ss.Species = newSpeciesMap
	ss.GenomeToSpecies = newGenomeToSpecies
}

// GetSpeciesID returns the species ID a genome belongs to.
func (ss *SpeciesSet) GetSpeciesID(genomeID int) (int, bool) {
	sid, ok := ss.GenomeToSpecies[genomeID]
	return sid, ok
}

// GetSpecies returns the Species a genome belongs to.
func (ss *SpeciesSet) GetSpecies(genomeID int) (*Species, bool) {
	sid, ok := ss.GenomeToSpecies[genomeID]
	if !ok {
		return nil, false
	}
	s, ok := ss.Species[sid]
	return s, ok
}
