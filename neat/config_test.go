package neat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
[NEAT]
fitness_criterion     = max
fitness_threshold     = 100
pop_size              = 30
reset_on_extinction   = true

[DefaultGenome]
activation_default      = tanh
activation_mutate_rate  = 0.0
activation_options      = tanh
aggregation_default     = sum
aggregation_mutate_rate = 0.0
aggregation_options     = sum
bias_init_mean          = 0.0
bias_init_stdev         = 1.0
bias_max_value          = 30.0
bias_min_value          = -30.0
bias_mutate_power       = 0.5
bias_mutate_rate        = 0.7
bias_replace_rate       = 0.1
compatibility_disjoint_coefficient = 1.0
compatibility_weight_coefficient   = 0.5
conn_add_prob           = 0.5
conn_delete_prob        = 0.5
enabled_default         = true
enabled_mutate_rate     = 0.01
feed_forward            = true
initial_connection      = full_direct
node_add_prob           = 0.2
node_delete_prob        = 0.2
num_hidden              = 0
num_inputs              = 3
num_outputs             = 1
response_init_mean      = 1.0
response_init_stdev     = 0.0
response_max_value      = 30.0
response_min_value      = -30.0
response_mutate_power   = 0.0
response_mutate_rate    = 0.0
response_replace_rate   = 0.0
weight_init_mean        = 0.0
weight_init_stdev       = 1.0
weight_max_value        = 30
weight_min_value        = -30
weight_mutate_power     = 0.5
weight_mutate_rate      = 0.8
weight_replace_rate     = 0.1

[DefaultSpeciesSet]
compatibility_threshold = 3.0

[DefaultStagnation]
species_fitness_func = max
max_stagnation       = 20
species_elitism      = 2

[DefaultReproduction]
elitism            = 2
survival_threshold = 0.2
`

// writeConfigFile drops INI content into a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// loadValidConfig is the shared fixture used by the genome and population
// tests.
func loadValidConfig(t *testing.T) *Config {
	t.Helper()
	config, err := LoadConfig(writeConfigFile(t, validConfig))
	require.NoError(t, err)
	return config
}

func TestLoadConfig(t *testing.T) {
	config := loadValidConfig(t)

	assert.Equal(t, 30, config.Neat.PopSize)
	assert.Equal(t, "max", config.Neat.FitnessCriterion)
	assert.Equal(t, 100.0, config.Neat.FitnessThreshold)
	assert.True(t, config.Neat.ResetOnExtinction)

	assert.Equal(t, 3, config.Genome.NumInputs)
	assert.Equal(t, 1, config.Genome.NumOutputs)
	assert.True(t, config.Genome.FeedForward)
	assert.Equal(t, "full_direct", config.Genome.InitialConnection)
	assert.Equal(t, 0.8, config.Genome.WeightMutateRate)

	assert.Equal(t, 2, config.Reproduction.Elitism)
	assert.Equal(t, 3.0, config.SpeciesSet.CompatibilityThreshold)
	assert.Equal(t, 20, config.Stagnation.MaxStagnation)
	assert.Equal(t, 2, config.Stagnation.SpeciesElitism)
}

func TestLoadConfigDerivedKeys(t *testing.T) {
	config := loadValidConfig(t)

	assert.Equal(t, []int{-1, -2, -3}, config.Genome.InputKeys)
	assert.Equal(t, []int{0}, config.Genome.OutputKeys)
	assert.Equal(t, 1, config.Genome.NodeKeyIndex)

	assert.Equal(t, 1, config.Genome.NextNodeKey())
	assert.Equal(t, 2, config.Genome.NextNodeKey())
}

func TestLoadConfigDefaults(t *testing.T) {
	minimal := `
[NEAT]
fitness_criterion = mean
pop_size          = 10

[DefaultGenome]
activation_options      = sigmoid
aggregation_options     = sum
bias_max_value          = 30.0
bias_min_value          = -30.0
response_max_value      = 30.0
response_min_value      = -30.0
weight_max_value        = 30
weight_min_value        = -30
num_inputs              = 2
num_outputs             = 1

[DefaultSpeciesSet]
compatibility_threshold = 3.0

[DefaultStagnation]

[DefaultReproduction]
`
	config, err := LoadConfig(writeConfigFile(t, minimal))
	require.NoError(t, err)

	assert.Equal(t, "gaussian", config.Genome.BiasInitType)
	assert.Equal(t, "unconnected", config.Genome.InitialConnection)
	assert.Equal(t, "true", config.Genome.EnabledDefault)
	assert.Equal(t, 1, config.Reproduction.MinSpeciesSize)
	assert.Equal(t, 0.2, config.Reproduction.SurvivalThreshold)
	assert.Equal(t, "mean", config.Stagnation.SpeciesFitnessFunc)
	assert.Equal(t, 15, config.Stagnation.MaxStagnation)
}

func TestLoadConfigExplicitZeros(t *testing.T) {
	// A written-out zero is a choice, not an omission: survival_threshold = 0
	// (keep only the best parent) must survive loading instead of being
	// bumped to the 0.2 default.
	withZero := replaceLine(validConfig, "survival_threshold = 0.2", "survival_threshold = 0")
	config, err := LoadConfig(writeConfigFile(t, withZero))
	require.NoError(t, err)
	assert.Equal(t, 0.0, config.Reproduction.SurvivalThreshold)

	// Explicit zeros for the positive-only integers are rejected outright
	// rather than silently replaced.
	_, err = LoadConfig(writeConfigFile(t, replaceLine(validConfig,
		"max_stagnation       = 20", "max_stagnation       = 0")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_stagnation")

	_, err = LoadConfig(writeConfigFile(t, validConfig+"\nmin_species_size = 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_species_size")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s string) string
		errPart string
	}{
		{
			name:    "unknown activation",
			mutate:  func(s string) string { return replaceLine(s, "activation_options      = tanh", "activation_options      = frobnicate") },
			errPart: "activation",
		},
		{
			name:    "bad fitness criterion",
			mutate:  func(s string) string { return replaceLine(s, "fitness_criterion     = max", "fitness_criterion     = best") },
			errPart: "fitness_criterion",
		},
		{
			name:    "probability out of range",
			mutate:  func(s string) string { return replaceLine(s, "conn_add_prob           = 0.5", "conn_add_prob           = 1.5") },
			errPart: "conn_add_prob",
		},
		{
			name:    "partial without fraction",
			mutate:  func(s string) string { return replaceLine(s, "initial_connection      = full_direct", "initial_connection      = partial_direct") },
			errPart: "fraction",
		},
		{
			name:    "inverted weight bounds",
			mutate:  func(s string) string { return replaceLine(s, "weight_min_value        = -30", "weight_min_value        = 60") },
			errPart: "weight_max_value",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.mutate(validConfig)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestParseInitialConnection(t *testing.T) {
	connType, fraction, err := parseInitialConnection("full_direct")
	require.NoError(t, err)
	assert.Equal(t, "full_direct", connType)
	assert.Equal(t, 1.0, fraction)

	connType, fraction, err = parseInitialConnection("partial_direct 0.4")
	require.NoError(t, err)
	assert.Equal(t, "partial_direct", connType)
	assert.Equal(t, 0.4, fraction)

	_, _, err = parseInitialConnection("partial_direct")
	assert.Error(t, err)

	_, _, err = parseInitialConnection("partial_direct 1.4")
	assert.Error(t, err)

	_, _, err = parseInitialConnection("")
	assert.Error(t, err)
}

func replaceLine(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
