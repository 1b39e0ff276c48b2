package neat

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// NodeGene represents a neuron in the network genome. Input nodes have no
// gene: only outputs and hidden nodes carry bias/response/activation data.
type NodeGene struct {
	Key         int
	Bias        float64
	Response    float64
	Activation  string
	Aggregation string
}

// NewNodeGene creates a NodeGene with attributes drawn from the config.
func NewNodeGene(key int, config *GenomeConfig, rng *rand.Rand) *NodeGene {
	ng := &NodeGene{
		Key:         key,
		Activation:  initStringAttribute(config.ActivationDefault, config.ActivationOptions, rng),
		Aggregation: initStringAttribute(config.AggregationDefault, config.AggregationOptions, rng),
	}
	ng.Bias = initFloatAttribute(config.BiasInitMean, config.BiasInitStdev, config.BiasInitType, config.BiasMinValue, config.BiasMaxValue, rng)
	ng.Response = initFloatAttribute(config.ResponseInitMean, config.ResponseInitStdev, config.ResponseInitType, config.ResponseMinValue, config.ResponseMaxValue, rng)
	return ng
}

func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(key=%d, bias=%.3f, response=%.3f, activation=%s, aggregation=%s)",
		ng.Key, ng.Bias, ng.Response, ng.Activation, ng.Aggregation)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// Mutate perturbs or replaces the gene's attributes per the config rates.
func (ng *NodeGene) Mutate(config *GenomeConfig, rng *rand.Rand) {
	ng.Bias = mutateFloatAttribute(ng.Bias, floatAttributeParams{
		MutateRate:  config.BiasMutateRate,
		ReplaceRate: config.BiasReplaceRate,
		MutatePower: config.BiasMutatePower,
		InitMean:    config.BiasInitMean,
		InitStdev:   config.BiasInitStdev,
		InitType:    config.BiasInitType,
		MinValue:    config.BiasMinValue,
		MaxValue:    config.BiasMaxValue,
	}, rng)
	ng.Response = mutateFloatAttribute(ng.Response, floatAttributeParams{
		MutateRate:  config.ResponseMutateRate,
		ReplaceRate: config.ResponseReplaceRate,
		MutatePower: config.ResponseMutatePower,
		InitMean:    config.ResponseInitMean,
		InitStdev:   config.ResponseInitStdev,
		InitType:    config.ResponseInitType,
		MinValue:    config.ResponseMinValue,
		MaxValue:    config.ResponseMaxValue,
	}, rng)
	ng.Activation = mutateStringAttribute(ng.Activation, config.ActivationMutateRate, config.ActivationOptions, rng)
	ng.Aggregation = mutateStringAttribute(ng.Aggregation, config.AggregationMutateRate, config.AggregationOptions, rng)
}

// Distance measures the attribute difference between two node genes,
// scaled by the compatibility weight coefficient.
func (ng *NodeGene) Distance(other *NodeGene, config *GenomeConfig) float64 {
	d := math.Abs(ng.Bias-other.Bias) + math.Abs(ng.Response-other.Response)
	if ng.Activation != other.Activation {
		d += 1.0
	}
	if ng.Aggregation != other.Aggregation {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover builds a child gene inheriting each attribute from either
// parent with equal probability. The receiver is the fitter parent.
func (ng *NodeGene) Crossover(other *NodeGene, rng *rand.Rand) *NodeGene {
	child := ng.Copy()
	if rng.Float64() < 0.5 {
		child.Bias = other.Bias
	}
	if rng.Float64() < 0.5 {
		child.Response = other.Response
	}
	if rng.Float64() < 0.5 {
		child.Activation = other.Activation
	}
	if rng.Float64() < 0.5 {
		child.Aggregation = other.Aggregation
	}
	return child
}

// ConnectionKey uniquely identifies a connection gene. The (in, out) pair
// doubles as the innovation number: structurally identical connections in
// different genomes always share a key.
type ConnectionKey struct {
	InNodeID  int
	OutNodeID int
}

// ConnectionGene represents a weighted link between two nodes.
type ConnectionGene struct {
	Key     ConnectionKey
	Weight  float64
	Enabled bool
}

// NewConnectionGene creates a ConnectionGene with attributes drawn from the config.
func NewConnectionGene(key ConnectionKey, config *GenomeConfig, rng *rand.Rand) *ConnectionGene {
	cg := &ConnectionGene{
		Key:     key,
		Enabled: initBoolAttribute(config.EnabledDefault, rng),
	}
	cg.Weight = initFloatAttribute(config.WeightInitMean, config.WeightInitStdev, config.WeightInitType, config.WeightMinValue, config.WeightMaxValue, rng)
	return cg
}

func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(%d->%d, weight=%.3f, enabled=%t)",
		cg.Key.InNodeID, cg.Key.OutNodeID, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// Mutate perturbs the weight and may flip the enabled flag. The genome is
// needed so that re-enabling a connection can be cycle-checked in
// feed-forward mode.
func (cg *ConnectionGene) Mutate(genome *Genome, config *GenomeConfig, rng *rand.Rand) {
	cg.Weight = mutateFloatAttribute(cg.Weight, floatAttributeParams{
		MutateRate:  config.WeightMutateRate,
		ReplaceRate: config.WeightReplaceRate,
		MutatePower: config.WeightMutatePower,
		InitMean:    config.WeightInitMean,
		InitStdev:   config.WeightInitStdev,
		InitType:    config.WeightInitType,
		MinValue:    config.WeightMinValue,
		MaxValue:    config.WeightMaxValue,
	}, rng)

	rate := config.EnabledMutateRate
	if cg.Enabled {
		rate += config.EnabledRateToFalseAdd
	} else {
		rate += config.EnabledRateToTrueAdd
	}
	if rate > 0 && rng.Float64() < rate {
		next := rng.Float64() < 0.5
		if !cg.Enabled && next && config.FeedForward &&
			createsCycle(genome, cg.Key.InNodeID, cg.Key.OutNodeID) {
			return
		}
		cg.Enabled = next
	}
}

// Distance measures the attribute difference between two connection genes,
// scaled by the compatibility weight coefficient.
func (cg *ConnectionGene) Distance(other *ConnectionGene, config *GenomeConfig) float64 {
	d := math.Abs(cg.Weight - other.Weight)
	if cg.Enabled != other.Enabled {
		d += 1.0
	}
	return d * config.CompatibilityWeightCoefficient
}

// Crossover builds a child gene inheriting each attribute from either
// parent with equal probability. The receiver is the fitter parent.
func (cg *ConnectionGene) Crossover(other *ConnectionGene, rng *rand.Rand) *ConnectionGene {
	child := cg.Copy()
	if rng.Float64() < 0.5 {
		child.Weight = other.Weight
	}
	if rng.Float64() < 0.5 {
		child.Enabled = other.Enabled
	}
	return child
}

// floatAttributeParams bundles the config values driving a float
// attribute's mutation, mirroring neat-python's FloatAttribute.
type floatAttributeParams struct {
	MutateRate  float64
	ReplaceRate float64
	MutatePower float64
	InitMean    float64
	InitStdev   float64
	InitType    string
	MinValue    float64
	MaxValue    float64
}

func initFloatAttribute(mean, stdev float64, initType string, minVal, maxVal float64, rng *rand.Rand) float64 {
	var val float64
	switch strings.ToLower(initType) {
	case "uniform":
		lo := math.Max(minVal, mean-2*stdev)
		hi := math.Min(maxVal, mean+2*stdev)
		if hi < lo {
			hi = lo
		}
		val = rng.Float64()*(hi-lo) + lo
	default: // gaussian / normal
		val = rng.NormFloat64()*stdev + mean
	}
	return clamp(val, minVal, maxVal)
}

func mutateFloatAttribute(value float64, p floatAttributeParams, rng *rand.Rand) float64 {
	r := rng.Float64()
	if r < p.MutateRate {
		return clamp(value+rng.NormFloat64()*p.MutatePower, p.MinValue, p.MaxValue)
	}
	if r < p.MutateRate+p.ReplaceRate {
		return initFloatAttribute(p.InitMean, p.InitStdev, p.InitType, p.MinValue, p.MaxValue, rng)
	}
	return value
}

func initBoolAttribute(defaultVal string, rng *rand.Rand) bool {
	switch strings.ToLower(strings.TrimSpace(defaultVal)) {
	case "true", "yes", "on", "1":
		return true
	case "random", "none":
		return rng.Float64() < 0.5
	default:
		return false
	}
}

func initStringAttribute(defaultVal string, options []string, rng *rand.Rand) string {
	if len(options) == 0 {
		return ""
	}
	switch strings.ToLower(defaultVal) {
	case "random", "none", "":
		return options[rng.Intn(len(options))]
	}
	for _, opt := range options {
		if opt == defaultVal {
			return defaultVal
		}
	}
	// Default not among the options; fall back to a random one.
	return options[rng.Intn(len(options))]
}

func mutateStringAttribute(value string, mutateRate float64, options []string, rng *rand.Rand) string {
	if len(options) <= 1 || mutateRate <= 0 || rng.Float64() >= mutateRate {
		return value
	}
	others := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != value {
			others = append(others, opt)
		}
	}
	if len(others) == 0 {
		return value
	}
	return others[rng.Intn(len(others))]
}
