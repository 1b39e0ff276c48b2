package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStagnationSpecies(key int, members map[int]*Genome) *Species {
	s := NewSpecies(key, 0)
	s.Members = members
	return s
}

func memberWithFitness(key int, fitness float64) map[int]*Genome {
	g := &Genome{Key: key, Fitness: fitness}
	return map[int]*Genome{key: g}
}

func TestNewStagnationRejectsBadFunc(t *testing.T) {
	_, err := NewStagnation(&StagnationConfig{SpeciesFitnessFunc: "nope", MaxStagnation: 5})
	assert.Error(t, err)
}

func TestStagnationMarksOldSpecies(t *testing.T) {
	config := &StagnationConfig{SpeciesFitnessFunc: "max", MaxStagnation: 3, SpeciesElitism: 0}
	stagnation, err := NewStagnation(config)
	require.NoError(t, err)

	ss := NewSpeciesSet(&SpeciesSetConfig{})
	ss.Species[1] = newStagnationSpecies(1, memberWithFitness(10, 5))

	// The species never improves past generation 1.
	for generation := 1; generation <= 4; generation++ {
		infos := stagnation.Update(ss, generation)
		require.Len(t, infos, 1)
		if generation < 4 {
			assert.False(t, infos[0].IsStagnant, "generation %d", generation)
		} else {
			assert.True(t, infos[0].IsStagnant)
		}
	}
}

func TestStagnationResetsOnImprovement(t *testing.T) {
	config := &StagnationConfig{SpeciesFitnessFunc: "max", MaxStagnation: 2, SpeciesElitism: 0}
	stagnation, err := NewStagnation(config)
	require.NoError(t, err)

	ss := NewSpeciesSet(&SpeciesSetConfig{})
	sp := newStagnationSpecies(1, memberWithFitness(10, 5))
	ss.Species[1] = sp

	stagnation.Update(ss, 1)
	stagnation.Update(ss, 2)

	// Improvement in generation 3 resets the clock.
	sp.Members[10].Fitness = 9
	infos := stagnation.Update(ss, 3)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].IsStagnant)
	assert.Equal(t, 3, sp.LastImproved)

	infos = stagnation.Update(ss, 4)
	assert.False(t, infos[0].IsStagnant)
	infos = stagnation.Update(ss, 5)
	assert.True(t, infos[0].IsStagnant)
}

func TestStagnationSparesEliteSpecies(t *testing.T) {
	config := &StagnationConfig{SpeciesFitnessFunc: "max", MaxStagnation: 1, SpeciesElitism: 2}
	stagnation, err := NewStagnation(config)
	require.NoError(t, err)

	ss := NewSpeciesSet(&SpeciesSetConfig{})
	ss.Species[1] = newStagnationSpecies(1, memberWithFitness(10, 1))
	ss.Species[2] = newStagnationSpecies(2, memberWithFitness(20, 5))
	ss.Species[3] = newStagnationSpecies(3, memberWithFitness(30, 9))

	stagnation.Update(ss, 1)
	infos := stagnation.Update(ss, 2)
	require.Len(t, infos, 3)

	// All three stopped improving, but the two fittest are protected.
	byID := make(map[int]bool, 3)
	for _, info := range infos {
		byID[info.SpeciesID] = info.IsStagnant
	}
	assert.True(t, byID[1])
	assert.False(t, byID[2])
	assert.False(t, byID[3])
}
