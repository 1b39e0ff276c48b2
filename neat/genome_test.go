package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenome(t *testing.T, config *Config, seed int64) (*Genome, *rand.Rand) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	g := NewGenome(1, &config.Genome)
	g.ConfigureNew(rng)
	return g, rng
}

func TestConfigureNewFullDirect(t *testing.T) {
	config := loadValidConfig(t)
	g, _ := newTestGenome(t, config, 1)

	require.Len(t, g.Nodes, 1, "only the output node carries a gene")
	assert.Contains(t, g.Nodes, 0)

	require.Len(t, g.Connections, 3)
	for _, in := range config.Genome.InputKeys {
		key := ConnectionKey{InNodeID: in, OutNodeID: 0}
		conn, ok := g.Connections[key]
		require.True(t, ok, "missing connection %v", key)
		assert.True(t, conn.Enabled)
	}
}

func TestConfigureNewUnconnected(t *testing.T) {
	config := loadValidConfig(t)
	config.Genome.InitialConnection = "unconnected"
	g, _ := newTestGenome(t, config, 1)

	assert.Len(t, g.Nodes, 1)
	assert.Empty(t, g.Connections)
}

func TestConfigureNewFullNoDirect(t *testing.T) {
	config := loadValidConfig(t)
	config.Genome.InitialConnection = "full_nodirect"
	config.Genome.NumHidden = 2
	g, _ := newTestGenome(t, config, 1)

	require.Len(t, g.Nodes, 3, "one output plus two hidden")

	// 3 inputs x 2 hidden + 2 hidden x 1 output.
	assert.Len(t, g.Connections, 8)
	for key := range g.Connections {
		assert.False(t, key.InNodeID < 0 && key.OutNodeID == 0,
			"nodirect layout must not wire inputs straight to outputs, got %v", key)
	}
}

func TestConfigureNewPartial(t *testing.T) {
	config := loadValidConfig(t)
	config.Genome.InitialConnection = "partial_direct 0.5"
	counts := make(map[int]int)
	for seed := int64(0); seed < 20; seed++ {
		g, _ := newTestGenome(t, config, seed)
		counts[len(g.Connections)]++
	}
	// With fraction 0.5 the genome count must vary and stay within 0..3.
	assert.Greater(t, len(counts), 1, "partial connection counts should vary across seeds")
	for n := range counts {
		assert.LessOrEqual(t, n, 3)
	}
}

func TestMutateAddNodeSplitsConnection(t *testing.T) {
	config := loadValidConfig(t)
	g, rng := newTestGenome(t, config, 2)
	before := len(g.Connections)

	g.mutateAddNode(rng)

	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Connections, before+2)

	var disabled *ConnectionGene
	for _, conn := range g.Connections {
		if !conn.Enabled {
			require.Nil(t, disabled, "exactly one connection should be disabled")
			disabled = conn
		}
	}
	require.NotNil(t, disabled)

	// The split is bridged by in->new with weight 1 and new->out carrying
	// the old weight.
	newKey := 1
	inConn := g.Connections[ConnectionKey{InNodeID: disabled.Key.InNodeID, OutNodeID: newKey}]
	require.NotNil(t, inConn)
	assert.Equal(t, 1.0, inConn.Weight)
	outConn := g.Connections[ConnectionKey{InNodeID: newKey, OutNodeID: disabled.Key.OutNodeID}]
	require.NotNil(t, outConn)
	assert.Equal(t, disabled.Weight, outConn.Weight)
}

func TestMutateDeleteNode(t *testing.T) {
	config := loadValidConfig(t)
	g, rng := newTestGenome(t, config, 3)

	// No hidden nodes yet; outputs must survive.
	assert.False(t, g.mutateDeleteNode(rng))
	assert.Len(t, g.Nodes, 1)

	g.mutateAddNode(rng)
	require.Len(t, g.Nodes, 2)

	assert.True(t, g.mutateDeleteNode(rng))
	assert.Len(t, g.Nodes, 1)
	assert.Contains(t, g.Nodes, 0)
	for key := range g.Connections {
		assert.NotEqual(t, 1, key.InNodeID)
		assert.NotEqual(t, 1, key.OutNodeID)
	}
}

func TestMutateDeleteConnection(t *testing.T) {
	config := loadValidConfig(t)
	g, rng := newTestGenome(t, config, 4)
	before := len(g.Connections)

	g.mutateDeleteConnection(rng)
	assert.Len(t, g.Connections, before-1)
}

func TestMutateAddConnectionRespectsFeedForward(t *testing.T) {
	config := loadValidConfig(t)
	g, rng := newTestGenome(t, config, 5)
	g.mutateAddNode(rng)

	for i := 0; i < 50; i++ {
		g.mutateAddConnection(rng)
	}
	for key := range g.Connections {
		assert.False(t, key.OutNodeID < 0, "connections must never target an input node")
		assert.NotEqual(t, key.InNodeID, key.OutNodeID)
	}
	// The enabled graph must still be acyclic.
	for key, conn := range g.Connections {
		if conn.Enabled {
			assert.False(t, createsCycleIgnoring(g, key), "enabled connection %v closes a cycle", key)
		}
	}
}

// createsCycleIgnoring checks whether the given connection participates in a
// cycle by removing it and asking if re-adding it would close one.
func createsCycleIgnoring(g *Genome, key ConnectionKey) bool {
	conn := g.Connections[key]
	delete(g.Connections, key)
	defer func() { g.Connections[key] = conn }()
	return createsCycle(g, key.InNodeID, key.OutNodeID)
}

func TestCreatesCycle(t *testing.T) {
	config := loadValidConfig(t)
	g := NewGenome(1, &config.Genome)
	rng := rand.New(rand.NewSource(1))
	g.Nodes[0] = NewNodeGene(0, g.Config, rng)
	g.Nodes[1] = NewNodeGene(1, g.Config, rng)
	g.Nodes[2] = NewNodeGene(2, g.Config, rng)
	g.addConnection(-1, 1, rng)
	g.addConnection(1, 2, rng)
	g.addConnection(2, 0, rng)
	for _, c := range g.Connections {
		c.Enabled = true
	}

	assert.True(t, createsCycle(g, 2, 1))
	assert.True(t, createsCycle(g, 0, 1))
	assert.True(t, createsCycle(g, 1, 1))
	assert.False(t, createsCycle(g, 1, 0))
	assert.False(t, createsCycle(g, -2, 2))
}

func TestCrossoverInheritsFromFitterParent(t *testing.T) {
	config := loadValidConfig(t)
	rng := rand.New(rand.NewSource(6))

	p1 := NewGenome(1, &config.Genome)
	p1.ConfigureNew(rng)
	p1.Fitness = 10
	p1.mutateAddNode(rng)

	p2 := NewGenome(2, &config.Genome)
	p2.ConfigureNew(rng)
	p2.Fitness = 1

	child := NewGenome(3, &config.Genome)
	child.ConfigureCrossover(p1, p2, rng)

	// Structure comes from the fitter parent, including its disjoint genes.
	assert.Len(t, child.Nodes, len(p1.Nodes))
	assert.Len(t, child.Connections, len(p1.Connections))
	for key := range child.Connections {
		assert.Contains(t, p1.Connections, key)
	}

	// Parent order must not matter.
	child2 := NewGenome(4, &config.Genome)
	child2.ConfigureCrossover(p2, p1, rng)
	assert.Len(t, child2.Connections, len(p1.Connections))
}

func TestDistance(t *testing.T) {
	config := loadValidConfig(t)
	g1, rng := newTestGenome(t, config, 7)

	assert.Zero(t, g1.Distance(g1))

	g2 := NewGenome(2, &config.Genome)
	g2.Config = g1.Config
	for k, n := range g1.Nodes {
		g2.Nodes[k] = n.Copy()
	}
	for k, c := range g1.Connections {
		g2.Connections[k] = c.Copy()
	}
	assert.Zero(t, g1.Distance(g2))
	assert.Equal(t, g1.Distance(g2), g2.Distance(g1))

	// A weight change moves the distance by |dw| * coefficient / matching.
	for _, c := range g2.Connections {
		c.Weight += 2
	}
	assert.InDelta(t, 2*config.Genome.CompatibilityWeightCoefficient, g1.Distance(g2), 1e-9)

	// Disjoint genes contribute via the disjoint coefficient.
	g2.mutateAddNode(rng)
	assert.Greater(t, g1.Distance(g2), 0.0)
}

func TestGenomeMutateKeepsOutputs(t *testing.T) {
	config := loadValidConfig(t)
	g, rng := newTestGenome(t, config, 8)

	for i := 0; i < 100; i++ {
		g.Mutate(rng)
	}
	for _, out := range config.Genome.OutputKeys {
		assert.Contains(t, g.Nodes, out)
	}
	for key := range g.Connections {
		assert.GreaterOrEqual(t, key.OutNodeID, 0)
	}
}

func TestSingleStructuralMutation(t *testing.T) {
	config := loadValidConfig(t)
	config.Genome.SingleStructuralMutation = true
	config.Genome.NodeAddProb = 1.0
	config.Genome.ConnAddProb = 1.0
	config.Genome.NodeDeleteProb = 1.0
	config.Genome.ConnDeleteProb = 1.0

	g, rng := newTestGenome(t, config, 9)
	nodesBefore := len(g.Nodes)
	connsBefore := len(g.Connections)

	g.Mutate(rng)

	// With every probability at 1 but single_structural_mutation set, only
	// the add-node mutation fires: one extra node, net two extra connections.
	assert.Len(t, g.Nodes, nodesBefore+1)
	assert.Len(t, g.Connections, connsBefore+2)
}
