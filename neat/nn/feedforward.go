// Package nn builds runnable phenotype networks from NEAT genomes.
package nn

import (
	"fmt"
	"sort"

	"github.com/Dipendra367/FlappyBirdAI/neat"
)

// node is a network node prepared for activation: resolved functions plus
// the keys of its incoming enabled connections.
type node struct {
	Key           int
	Bias          float64
	Response      float64
	ActivationFn  neat.ActivationType
	AggregationFn neat.AggregationType
	InputKeys     []neat.ConnectionKey
}

// FeedForwardNetwork is an acyclic phenotype built from a genome. Nodes are
// evaluated in topological order, so Activate runs in a single pass.
type FeedForwardNetwork struct {
	inputKeys   []int
	outputKeys  []int
	evalOrder   []int
	nodes       map[int]node
	connections map[neat.ConnectionKey]float64
}

// CreateFeedForwardNetwork builds a network from the genome's enabled
// connections. The genome must be configured as feed-forward.
func CreateFeedForwardNetwork(g *neat.Genome) (*FeedForwardNetwork, error) {
	if g.Config == nil {
		return nil, fmt.Errorf("genome %d has no config", g.Key)
	}
	if !g.Config.FeedForward {
		return nil, fmt.Errorf("cannot build a feed-forward network from a genome configured with feed_forward=false")
	}

	nodes := make(map[int]node, len(g.Nodes))
	for key, gn := range g.Nodes {
		actFn, err := neat.GetActivation(gn.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", key, err)
		}
		aggFn, err := neat.GetAggregation(gn.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", key, err)
		}
		nodes[key] = node{
			Key:           key,
			Bias:          gn.Bias,
			Response:      gn.Response,
			ActivationFn:  actFn,
			AggregationFn: aggFn,
		}
	}

	connections := make(map[neat.ConnectionKey]float64)
	incoming := make(map[int][]neat.ConnectionKey)
	nodeKeys := make(map[int]bool, len(nodes))
	for key := range nodes {
		nodeKeys[key] = true
	}
	for _, ik := range g.Config.InputKeys {
		nodeKeys[ik] = true
	}
	for key, gc := range g.Connections {
		if !gc.Enabled {
			continue
		}
		connections[key] = gc.Weight
		incoming[key.OutNodeID] = append(incoming[key.OutNodeID], key)
		nodeKeys[key.InNodeID] = true
		nodeKeys[key.OutNodeID] = true
	}
	for key, n := range nodes {
		inputs := incoming[key]
		sort.Slice(inputs, func(i, j int) bool {
			if inputs[i].InNodeID != inputs[j].InNodeID {
				return inputs[i].InNodeID < inputs[j].InNodeID
			}
			return inputs[i].OutNodeID < inputs[j].OutNodeID
		})
		n.InputKeys = inputs
		nodes[key] = n
	}

	evalOrder, err := topologicalOrder(nodeKeys, connections)
	if err != nil {
		return nil, err
	}

	// Inputs are seeded directly; drop them from the evaluation pass.
	inputSet := make(map[int]bool, len(g.Config.InputKeys))
	for _, ik := range g.Config.InputKeys {
		inputSet[ik] = true
	}
	filtered := evalOrder[:0]
	for _, key := range evalOrder {
		if !inputSet[key] {
			filtered = append(filtered, key)
		}
	}

	return &FeedForwardNetwork{
		inputKeys:   g.Config.InputKeys,
		outputKeys:  g.Config.OutputKeys,
		evalOrder:   filtered,
		nodes:       nodes,
		connections: connections,
	}, nil
}

// topologicalOrder runs Kahn's algorithm over the enabled-connection graph.
// Keys are processed in sorted order so the result is deterministic.
func topologicalOrder(nodeKeys map[int]bool, connections map[neat.ConnectionKey]float64) ([]int, error) {
	inDegree := make(map[int]int, len(nodeKeys))
	graph := make(map[int][]int, len(nodeKeys))
	all := make([]int, 0, len(nodeKeys))
	for key := range nodeKeys {
		all = append(all, key)
		inDegree[key] = 0
	}
	sort.Ints(all)

	for key := range connections {
		graph[key.InNodeID] = append(graph[key.InNodeID], key.OutNodeID)
		inDegree[key.OutNodeID]++
	}

	var queue []int
	for _, key := range all {
		if inDegree[key] == 0 {
			queue = append(queue, key)
		}
	}

	order := make([]int, 0, len(all))
	for len(queue) > 0 {
		sort.Ints(queue)
		u := queue[0]
		queue = queue[1:]
		order = append(order, u)

		neighbors := graph[u]
		sort.Ints(neighbors)
		for _, v := range neighbors {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
	}
	if len(order) != len(all) {
		return nil, fmt.Errorf("topological sort failed: cycle in connection graph (%d of %d nodes ordered)", len(order), len(all))
	}
	return order, nil
}

// Activate computes the network outputs for one set of inputs.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputKeys) {
		return nil, fmt.Errorf("expected %d inputs, got %d", len(net.inputKeys), len(inputs))
	}

	values := make(map[int]float64, len(net.nodes)+len(inputs))
	for i, ik := range net.inputKeys {
		values[ik] = inputs[i]
	}

	var buf []float64
	for _, key := range net.evalOrder {
		n := net.nodes[key]
		buf = buf[:0]
		for _, connKey := range n.InputKeys {
			buf = append(buf, values[connKey.InNodeID]*net.connections[connKey])
		}
		aggregated := n.AggregationFn(buf)
		values[key] = n.ActivationFn((aggregated + n.Bias) * n.Response)
	}

	outputs := make([]float64, len(net.outputKeys))
	for i, ok := range net.outputKeys {
		// An output with no enabled incoming connections was never
		// evaluated; the zero value is the intended default.
		outputs[i] = values[ok]
	}
	return outputs, nil
}
