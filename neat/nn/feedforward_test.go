package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dipendra367/FlappyBirdAI/neat"
)

// buildGenome assembles a genome by hand so tests control every weight.
func buildGenome(config *neat.GenomeConfig, nodes []int, conns map[neat.ConnectionKey]float64) *neat.Genome {
	g := neat.NewGenome(1, config)
	for _, key := range nodes {
		g.Nodes[key] = &neat.NodeGene{
			Key:         key,
			Bias:        0,
			Response:    1,
			Activation:  "identity",
			Aggregation: "sum",
		}
	}
	for key, weight := range conns {
		g.Connections[key] = &neat.ConnectionGene{Key: key, Weight: weight, Enabled: true}
	}
	return g
}

func testGenomeConfig(numInputs, numOutputs int) *neat.GenomeConfig {
	config := &neat.GenomeConfig{FeedForward: true}
	for i := 0; i < numInputs; i++ {
		config.InputKeys = append(config.InputKeys, -(i + 1))
	}
	for i := 0; i < numOutputs; i++ {
		config.OutputKeys = append(config.OutputKeys, i)
	}
	return config
}

func TestActivateDirect(t *testing.T) {
	config := testGenomeConfig(2, 1)
	g := buildGenome(config, []int{0}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 0}: 2.0,
		{InNodeID: -2, OutNodeID: 0}: -1.0,
	})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{3, 5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.InDelta(t, 2*3+(-1)*5, out[0], 1e-9)
}

func TestActivateHiddenChain(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0, 5}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 5}: 0.5,
		{InNodeID: 5, OutNodeID: 0}:  4.0,
	})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{8})
	require.NoError(t, err)
	assert.InDelta(t, 8*0.5*4.0, out[0], 1e-9)
}

func TestActivateBiasAndResponse(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 0}: 1.0,
	})
	g.Nodes[0].Bias = 2
	g.Nodes[0].Response = 3

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{4})
	require.NoError(t, err)
	// identity((sum + bias) * response)
	assert.InDelta(t, (4+2)*3, out[0], 1e-9)
}

func TestActivateIgnoresDisabledConnections(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 0}: 7.0,
	})
	g.Connections[neat.ConnectionKey{InNodeID: -1, OutNodeID: 0}].Enabled = false

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{9})
	require.NoError(t, err)
	// No enabled inputs: the node aggregates nothing.
	assert.Zero(t, out[0])
}

func TestActivateTanh(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 0}: 100.0,
	})
	g.Nodes[0].Activation = "tanh"

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	out, err := net.Activate([]float64{1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out[0], 1e-9)
}

func TestCreateRejectsCycle(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0, 5, 6}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 5}: 1.0,
		{InNodeID: 5, OutNodeID: 6}:  1.0,
		{InNodeID: 6, OutNodeID: 5}:  1.0,
		{InNodeID: 6, OutNodeID: 0}:  1.0,
	})

	_, err := CreateFeedForwardNetwork(g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCreateRejectsRecurrentConfig(t *testing.T) {
	config := testGenomeConfig(1, 1)
	config.FeedForward = false
	g := buildGenome(config, []int{0}, nil)

	_, err := CreateFeedForwardNetwork(g)
	assert.Error(t, err)
}

func TestCreateRejectsUnknownActivation(t *testing.T) {
	config := testGenomeConfig(1, 1)
	g := buildGenome(config, []int{0}, nil)
	g.Nodes[0].Activation = "frobnicate"

	_, err := CreateFeedForwardNetwork(g)
	assert.Error(t, err)
}

func TestActivateInputLengthMismatch(t *testing.T) {
	config := testGenomeConfig(2, 1)
	g := buildGenome(config, []int{0}, map[neat.ConnectionKey]float64{
		{InNodeID: -1, OutNodeID: 0}: 1.0,
	})

	net, err := CreateFeedForwardNetwork(g)
	require.NoError(t, err)

	_, err = net.Activate([]float64{1})
	assert.Error(t, err)
	_, err = net.Activate([]float64{1, 2, 3})
	assert.Error(t, err)
}
