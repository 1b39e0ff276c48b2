package neat

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the NEAT algorithm.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	Stagnation   StagnationConfig
}

// NeatConfig holds parameters for the top-level evolution loop.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size"`
	FitnessCriterion     string  `ini:"fitness_criterion"` // "max", "min" or "mean"
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	ResetOnExtinction    bool    `ini:"reset_on_extinction"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
}

// GenomeConfig holds parameters governing genome structure and mutation.
type GenomeConfig struct {
	NumInputs                        int     `ini:"num_inputs"`
	NumOutputs                       int     `ini:"num_outputs"`
	NumHidden                        int     `ini:"num_hidden"`
	FeedForward                      bool    `ini:"feed_forward"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`
	ConnAddProb                      float64 `ini:"conn_add_prob"`
	ConnDeleteProb                   float64 `ini:"conn_delete_prob"`
	NodeAddProb                      float64 `ini:"node_add_prob"`
	NodeDeleteProb                   float64 `ini:"node_delete_prob"`
	SingleStructuralMutation         bool    `ini:"single_structural_mutation"`
	InitialConnection                string  `ini:"initial_connection"`

	BiasInitMean    float64 `ini:"bias_init_mean"`
	BiasInitStdev   float64 `ini:"bias_init_stdev"`
	BiasInitType    string  `ini:"bias_init_type"`
	BiasReplaceRate float64 `ini:"bias_replace_rate"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power"`
	BiasMaxValue    float64 `ini:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value"`

	ResponseInitMean    float64 `ini:"response_init_mean"`
	ResponseInitStdev   float64 `ini:"response_init_stdev"`
	ResponseInitType    string  `ini:"response_init_type"`
	ResponseReplaceRate float64 `ini:"response_replace_rate"`
	ResponseMutateRate  float64 `ini:"response_mutate_rate"`
	ResponseMutatePower float64 `ini:"response_mutate_power"`
	ResponseMaxValue    float64 `ini:"response_max_value"`
	ResponseMinValue    float64 `ini:"response_min_value"`

	ActivationDefault    string   `ini:"activation_default"`
	ActivationOptions    []string `ini:"activation_options" delim:" "`
	ActivationMutateRate float64  `ini:"activation_mutate_rate"`

	AggregationDefault    string   `ini:"aggregation_default"`
	AggregationOptions    []string `ini:"aggregation_options" delim:" "`
	AggregationMutateRate float64  `ini:"aggregation_mutate_rate"`

	WeightInitMean    float64 `ini:"weight_init_mean"`
	WeightInitStdev   float64 `ini:"weight_init_stdev"`
	WeightInitType    string  `ini:"weight_init_type"`
	WeightReplaceRate float64 `ini:"weight_replace_rate"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate"`
	WeightMutatePower float64 `ini:"weight_mutate_power"`
	WeightMaxValue    float64 `ini:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value"`

	EnabledDefault        string  `ini:"enabled_default"`
	EnabledMutateRate     float64 `ini:"enabled_mutate_rate"`
	EnabledRateToTrueAdd  float64 `ini:"enabled_rate_to_true_add"`
	EnabledRateToFalseAdd float64 `ini:"enabled_rate_to_false_add"`

	// Derived fields, populated by LoadConfig. Input node keys are negative,
	// output keys run 0..NumOutputs-1, hidden keys are allocated from
	// NodeKeyIndex upward.
	InputKeys    []int
	OutputKeys   []int
	NodeKeyIndex int
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	Elitism           int     `ini:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold"`
	MinSpeciesSize    int     `ini:"min_species_size"`
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold"`
}

// StagnationConfig holds parameters related to species stagnation.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation"`
	SpeciesElitism     int    `ini:"species_elitism"`
}

// LoadConfig loads configuration parameters from a neat-python style INI file.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %q: %w", filePath, err)
	}

	config := &Config{}
	sections := []struct {
		name string
		dst  interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"DefaultStagnation", &config.Stagnation},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.applyDefaults(cfg)

	// Derived node key layout.
	config.Genome.InputKeys = make([]int, config.Genome.NumInputs)
	for i := 0; i < config.Genome.NumInputs; i++ {
		config.Genome.InputKeys[i] = -(i + 1)
	}
	config.Genome.OutputKeys = make([]int, config.Genome.NumOutputs)
	for i := 0; i < config.Genome.NumOutputs; i++ {
		config.Genome.OutputKeys[i] = i
	}
	config.Genome.NodeKeyIndex = config.Genome.NumOutputs

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults(cfg *ini.File) {
	g := &c.Genome
	for _, s := range []*string{
		&g.BiasInitType, &g.ResponseInitType, &g.ActivationDefault,
		&g.AggregationDefault, &g.WeightInitType, &g.EnabledDefault,
		&g.InitialConnection, &c.Neat.FitnessCriterion,
		&c.Stagnation.SpeciesFitnessFunc,
	} {
		*s = strings.TrimSpace(*s)
	}
	for i, opt := range g.ActivationOptions {
		g.ActivationOptions[i] = strings.TrimSpace(opt)
	}
	for i, opt := range g.AggregationOptions {
		g.AggregationOptions[i] = strings.TrimSpace(opt)
	}

	if g.BiasInitType == "" {
		g.BiasInitType = "gaussian"
	}
	if g.ResponseInitType == "" {
		g.ResponseInitType = "gaussian"
	}
	if g.ActivationDefault == "" {
		g.ActivationDefault = "random"
	}
	if g.AggregationDefault == "" {
		g.AggregationDefault = "random"
	}
	if g.WeightInitType == "" {
		g.WeightInitType = "gaussian"
	}
	if g.EnabledDefault == "" {
		g.EnabledDefault = "true"
	}
	if g.InitialConnection == "" {
		g.InitialConnection = "unconnected"
	}
	// Numeric defaults key off the file rather than the mapped value, so an
	// explicit zero is honored (and then judged by validate) instead of
	// being silently rewritten.
	repro := cfg.Section("DefaultReproduction")
	if !repro.HasKey("min_species_size") {
		c.Reproduction.MinSpeciesSize = 1
	}
	if !repro.HasKey("survival_threshold") {
		c.Reproduction.SurvivalThreshold = 0.2
	}
	if c.Stagnation.SpeciesFitnessFunc == "" {
		c.Stagnation.SpeciesFitnessFunc = "mean"
	}
	if !cfg.Section("DefaultStagnation").HasKey("max_stagnation") {
		c.Stagnation.MaxStagnation = 15
	}
}

func (c *Config) validate() error {
	g := &c.Genome
	if g.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if g.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if len(g.ActivationOptions) == 0 {
		return fmt.Errorf("config error: activation_options must be specified")
	}
	if len(g.AggregationOptions) == 0 {
		return fmt.Errorf("config error: aggregation_options must be specified")
	}
	for _, name := range g.ActivationOptions {
		if _, err := GetActivation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	for _, name := range g.AggregationOptions {
		if _, err := GetAggregation(name); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	if g.CompatibilityDisjointCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_disjoint_coefficient cannot be negative")
	}
	if g.CompatibilityWeightCoefficient < 0 {
		return fmt.Errorf("config error: compatibility_weight_coefficient cannot be negative")
	}
	probs := []struct {
		name  string
		value float64
	}{
		{"conn_add_prob", g.ConnAddProb},
		{"conn_delete_prob", g.ConnDeleteProb},
		{"node_add_prob", g.NodeAddProb},
		{"node_delete_prob", g.NodeDeleteProb},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", p.name)
		}
	}
	if g.BiasMaxValue < g.BiasMinValue {
		return fmt.Errorf("config error: bias_max_value cannot be less than bias_min_value")
	}
	if g.ResponseMaxValue < g.ResponseMinValue {
		return fmt.Errorf("config error: response_max_value cannot be less than response_min_value")
	}
	if g.WeightMaxValue < g.WeightMinValue {
		return fmt.Errorf("config error: weight_max_value cannot be less than weight_min_value")
	}
	if c.Reproduction.SurvivalThreshold < 0 || c.Reproduction.SurvivalThreshold > 1 {
		return fmt.Errorf("config error: survival_threshold must be between 0 and 1")
	}
	if c.Reproduction.MinSpeciesSize <= 0 {
		return fmt.Errorf("config error: min_species_size must be positive")
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.Stagnation.MaxStagnation <= 0 {
		return fmt.Errorf("config error: max_stagnation must be positive")
	}

	switch strings.ToLower(c.Neat.FitnessCriterion) {
	case "max", "min", "mean":
	default:
		return fmt.Errorf("config error: invalid fitness_criterion %q, must be one of 'max', 'min', 'mean'", c.Neat.FitnessCriterion)
	}

	connType, _, err := parseInitialConnection(g.InitialConnection)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	switch connType {
	case "unconnected", "fs_neat_nohidden", "fs_neat", "fs_neat_hidden",
		"full_nodirect", "full", "full_direct",
		"partial_nodirect", "partial", "partial_direct":
	default:
		return fmt.Errorf("config error: invalid initial_connection type %q", connType)
	}

	if _, ok := StatFunctions[strings.ToLower(c.Stagnation.SpeciesFitnessFunc)]; !ok {
		return fmt.Errorf("config error: invalid species_fitness_func %q", c.Stagnation.SpeciesFitnessFunc)
	}
	return nil
}

// NextNodeKey returns a fresh node key. Keys are unique positive integers
// starting after the output node keys.
func (gc *GenomeConfig) NextNodeKey() int {
	key := gc.NodeKeyIndex
	gc.NodeKeyIndex++
	return key
}

// parseInitialConnection splits an initial_connection value into its base
// type and, for the partial variants, the connection fraction.
func parseInitialConnection(value string) (string, float64, error) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return "", 0, fmt.Errorf("empty initial_connection")
	}
	connType := fields[0]
	fraction := 1.0
	if strings.HasPrefix(connType, "partial") {
		if len(fields) < 2 {
			return "", 0, fmt.Errorf("initial_connection %q requires a fraction argument", connType)
		}
		f, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return "", 0, fmt.Errorf("invalid initial_connection fraction %q: %w", fields[1], err)
		}
		if f < 0 || f > 1 {
			return "", 0, fmt.Errorf("initial_connection fraction must be between 0 and 1, got %v", f)
		}
		fraction = f
	}
	return connType, fraction, nil
}
