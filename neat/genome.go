package neat

import (
	"fmt"
	"math/rand"
	"sort"
)

// Genome encodes an individual: node genes plus connection genes keyed by
// their (in, out) innovation pair.
type Genome struct {
	Key         int
	Nodes       map[int]*NodeGene
	Connections map[ConnectionKey]*ConnectionGene
	Fitness     float64
	Config      *GenomeConfig
}

// NewGenome creates an empty Genome with the given key.
func NewGenome(key int, config *GenomeConfig) *Genome {
	return &Genome{
		Key:         key,
		Nodes:       make(map[int]*NodeGene),
		Connections: make(map[ConnectionKey]*ConnectionGene),
		Config:      config,
	}
}

// ConfigureNew initializes a fresh genome: output and hidden nodes plus the
// initial connection topology selected by the config.
func (g *Genome) ConfigureNew(rng *rand.Rand) {
	for _, key := range g.Config.OutputKeys {
		g.Nodes[key] = NewNodeGene(key, g.Config, rng)
	}
	for i := 0; i < g.Config.NumHidden; i++ {
		key := g.Config.NextNodeKey()
		g.Nodes[key] = NewNodeGene(key, g.Config, rng)
	}
	g.setupInitialConnections(rng)
}

func (g *Genome) hiddenKeys() []int {
	outputs := make(map[int]bool, len(g.Config.OutputKeys))
	for _, key := range g.Config.OutputKeys {
		outputs[key] = true
	}
	var hidden []int
	for key := range g.Nodes {
		if !outputs[key] {
			hidden = append(hidden, key)
		}
	}
	sort.Ints(hidden)
	return hidden
}

func (g *Genome) addConnection(in, out int, rng *rand.Rand) {
	key := ConnectionKey{InNodeID: in, OutNodeID: out}
	g.Connections[key] = NewConnectionGene(key, g.Config, rng)
}

func (g *Genome) setupInitialConnections(rng *rand.Rand) {
	connType, fraction, err := parseInitialConnection(g.Config.InitialConnection)
	if err != nil {
		// Validated at config load; an invalid value here is a programming error.
		panic(fmt.Sprintf("invalid initial_connection %q: %v", g.Config.InitialConnection, err))
	}

	inputs := g.Config.InputKeys
	outputs := g.Config.OutputKeys
	hidden := g.hiddenKeys()

	maybe := func(in, out int) {
		if fraction >= 1.0 || rng.Float64() < fraction {
			g.addConnection(in, out, rng)
		}
	}

	switch connType {
	case "unconnected":

	case "fs_neat_nohidden", "fs_neat":
		// FS-NEAT starts with a single randomly chosen input wired to the
		// outputs; evolution selects the useful features from there.
		in := inputs[rng.Intn(len(inputs))]
		for _, out := range outputs {
			g.addConnection(in, out, rng)
		}

	case "fs_neat_hidden":
		// Like fs_neat, but the chosen input also feeds the hidden nodes.
		in := inputs[rng.Intn(len(inputs))]
		for _, h := range hidden {
			g.addConnection(in, h, rng)
		}
		for _, out := range outputs {
			g.addConnection(in, out, rng)
		}

	case "full_nodirect", "full", "partial_nodirect", "partial":
		// Inputs to hidden and hidden to outputs. When no hidden nodes
		// exist this degenerates to direct input-output wiring, matching
		// neat-python's fallback.
		if len(hidden) == 0 {
			for _, in := range inputs {
				for _, out := range outputs {
					maybe(in, out)
				}
			}
			break
		}
		for _, in := range inputs {
			for _, h := range hidden {
				maybe(in, h)
			}
		}
		for _, h := range hidden {
			for _, out := range outputs {
				maybe(h, out)
			}
		}

	case "full_direct", "partial_direct":
		for _, in := range inputs {
			for _, h := range hidden {
				maybe(in, h)
			}
			for _, out := range outputs {
				maybe(in, out)
			}
		}
		for _, h := range hidden {
			for _, out := range outputs {
				maybe(h, out)
			}
		}
	}
}

// ConfigureCrossover fills the genome with genes combined from two parents.
// Homologous genes mix attributes; disjoint and excess genes are taken from
// the fitter parent only.
func (g *Genome) ConfigureCrossover(parent1, parent2 *Genome, rng *rand.Rand) {
	if parent1.Fitness < parent2.Fitness {
		parent1, parent2 = parent2, parent1
	}
	g.Config = parent1.Config

	nodeKeys := make([]int, 0, len(parent1.Nodes))
	for key := range parent1.Nodes {
		nodeKeys = append(nodeKeys, key)
	}
	sort.Ints(nodeKeys)
	for _, key := range nodeKeys {
		node1 := parent1.Nodes[key]
		if node2, ok := parent2.Nodes[key]; ok {
			g.Nodes[key] = node1.Crossover(node2, rng)
		} else {
			g.Nodes[key] = node1.Copy()
		}
	}
	for _, key := range sortedConnectionKeys(parent1.Connections) {
		conn1 := parent1.Connections[key]
		if conn2, ok := parent2.Connections[key]; ok {
			g.Connections[key] = conn1.Crossover(conn2, rng)
		} else {
			g.Connections[key] = conn1.Copy()
		}
	}
}

// Mutate applies structural and attribute mutations. When
// single_structural_mutation is set at most one structural change happens
// per call.
func (g *Genome) Mutate(rng *rand.Rand) {
	single := g.Config.SingleStructuralMutation
	mutated := false

	if rng.Float64() < g.Config.NodeAddProb {
		g.mutateAddNode(rng)
		mutated = true
	}
	if (!single || !mutated) && rng.Float64() < g.Config.ConnAddProb {
		g.mutateAddConnection(rng)
		mutated = true
	}
	if (!single || !mutated) && rng.Float64() < g.Config.NodeDeleteProb {
		if g.mutateDeleteNode(rng) {
			mutated = true
		}
	}
	if (!single || !mutated) && rng.Float64() < g.Config.ConnDeleteProb {
		g.mutateDeleteConnection(rng)
	}

	// Iterate in key order: pulling from the RNG in map order would make
	// runs with the same seed diverge.
	nodeKeys := make([]int, 0, len(g.Nodes))
	for key := range g.Nodes {
		nodeKeys = append(nodeKeys, key)
	}
	sort.Ints(nodeKeys)
	for _, key := range nodeKeys {
		g.Nodes[key].Mutate(g.Config, rng)
	}
	for _, key := range sortedConnectionKeys(g.Connections) {
		g.Connections[key].Mutate(g, g.Config, rng)
	}
}

// mutateAddNode splits a random connection: the original is disabled and
// replaced by in->new (weight 1) and new->out (original weight).
func (g *Genome) mutateAddNode(rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}
	keys := sortedConnectionKeys(g.Connections)
	split := g.Connections[keys[rng.Intn(len(keys))]]
	split.Enabled = false

	nodeKey := g.Config.NextNodeKey()
	g.Nodes[nodeKey] = NewNodeGene(nodeKey, g.Config, rng)

	in := NewConnectionGene(ConnectionKey{InNodeID: split.Key.InNodeID, OutNodeID: nodeKey}, g.Config, rng)
	in.Weight = 1.0
	in.Enabled = true
	g.Connections[in.Key] = in

	out := NewConnectionGene(ConnectionKey{InNodeID: nodeKey, OutNodeID: split.Key.OutNodeID}, g.Config, rng)
	out.Weight = split.Weight
	out.Enabled = true
	g.Connections[out.Key] = out
}

// mutateAddConnection adds a connection between two currently unconnected
// nodes, rejecting pairs that would target an input node or create a cycle
// in feed-forward mode.
func (g *Genome) mutateAddConnection(rng *rand.Rand) {
	inputs := make(map[int]bool, len(g.Config.InputKeys))
	for _, key := range g.Config.InputKeys {
		inputs[key] = true
	}

	possibleIn := make([]int, 0, len(g.Config.InputKeys)+len(g.Nodes))
	possibleIn = append(possibleIn, g.Config.InputKeys...)
	possibleOut := make([]int, 0, len(g.Nodes))
	for key := range g.Nodes {
		if !inputs[key] {
			possibleIn = append(possibleIn, key)
		}
		possibleOut = append(possibleOut, key)
	}
	if len(possibleIn) == 0 || len(possibleOut) == 0 {
		return
	}
	sort.Ints(possibleIn)
	sort.Ints(possibleOut)

	const maxAttempts = 20
	for i := 0; i < maxAttempts; i++ {
		in := possibleIn[rng.Intn(len(possibleIn))]
		out := possibleOut[rng.Intn(len(possibleOut))]
		key := ConnectionKey{InNodeID: in, OutNodeID: out}
		if _, exists := g.Connections[key]; exists {
			continue
		}
		if g.Config.FeedForward && createsCycle(g, in, out) {
			continue
		}
		g.Connections[key] = NewConnectionGene(key, g.Config, rng)
		return
	}
}

// mutateDeleteNode removes a random hidden node together with every
// connection touching it. Output nodes are never deleted.
func (g *Genome) mutateDeleteNode(rng *rand.Rand) bool {
	hidden := g.hiddenKeys()
	if len(hidden) == 0 {
		return false
	}
	victim := hidden[rng.Intn(len(hidden))]
	for key := range g.Connections {
		if key.InNodeID == victim || key.OutNodeID == victim {
			delete(g.Connections, key)
		}
	}
	delete(g.Nodes, victim)
	return true
}

// mutateDeleteConnection removes a random connection gene.
func (g *Genome) mutateDeleteConnection(rng *rand.Rand) {
	if len(g.Connections) == 0 {
		return
	}
	keys := sortedConnectionKeys(g.Connections)
	delete(g.Connections, keys[rng.Intn(len(keys))])
}

// Distance computes the NEAT compatibility distance: disjoint gene count
// scaled by the disjoint coefficient plus the mean attribute distance of
// matching genes.
func (g *Genome) Distance(other *Genome) float64 {
	disjoint := 0
	attrDistSum := 0.0
	matching := 0

	for key, conn1 := range g.Connections {
		if conn2, ok := other.Connections[key]; ok {
			attrDistSum += conn1.Distance(conn2, g.Config)
			matching++
		} else {
			disjoint++
		}
	}
	for key := range other.Connections {
		if _, ok := g.Connections[key]; !ok {
			disjoint++
		}
	}

	n := float64(maxInt(len(g.Connections), len(other.Connections)))
	if n < 1.0 {
		n = 1.0
	}
	d := g.Config.CompatibilityDisjointCoefficient * float64(disjoint) / n
	if matching > 0 {
		d += attrDistSum / float64(matching)
	}
	return d
}

// createsCycle reports whether adding the in->out connection would make the
// enabled-connection graph cyclic.
func createsCycle(genome *Genome, inNode, outNode int) bool {
	if inNode == outNode {
		return true
	}
	visited := make(map[int]bool)
	queue := []int{outNode}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == inNode {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		for key, conn := range genome.Connections {
			if conn.Enabled && key.InNodeID == current {
				queue = append(queue, key.OutNodeID)
			}
		}
	}
	return false
}

func sortedConnectionKeys(conns map[ConnectionKey]*ConnectionGene) []ConnectionKey {
	keys := make([]ConnectionKey, 0, len(conns))
	for key := range conns {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].InNodeID != keys[j].InNodeID {
			return keys[i].InNodeID < keys[j].InNodeID
		}
		return keys[i].OutNodeID < keys[j].OutNodeID
	})
	return keys
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
