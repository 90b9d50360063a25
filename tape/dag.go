package tape

import (
	"fmt"
	"slices"

	"qtermtape/ops"
)

// DAGNode is one tape operation in the dependency graph.
// Dependencies are the nodes that must run first because they act on a
// shared wire.
type DAGNode struct {
	ID           string        // Unique identifier for this node
	Index        int           // Position in the source tape
	Op           ops.Operation // The recorded operation
	Layer        int           // Drawing column (as soon as possible)
	Dependencies []string      // IDs of nodes that must execute before this one
}

// CircuitDAG is the wire-dependency view of a tape.
type CircuitDAG struct {
	Nodes     map[string]*DAGNode // All nodes by ID
	NumWires  int                 // Number of wires in the circuit
	rootNodes []string            // Node IDs with no dependencies
}

// NewCircuitDAG creates a new empty CircuitDAG.
func NewCircuitDAG() *CircuitDAG {
	return &CircuitDAG{
		Nodes:     make(map[string]*DAGNode),
		rootNodes: []string{},
	}
}

// generateNodeID creates a unique ID for a node from its tape position.
func generateNodeID(name string, index int) string {
	return fmt.Sprintf("%s_%d", name, index)
}

// FromTape builds the dependency graph of t. Every node depends on the
// previous node touching each of its wires.
func FromTape(t *Tape) *CircuitDAG {
	dag := NewCircuitDAG()
	dag.NumWires = t.NumWires()

	lastOnWire := make(map[int]string)
	// Drawing layers reserve the whole span of a multi-wire operation so
	// connectors never cross another gate.
	nextLayer := make(map[int]int)

	for i, op := range t.operations {
		wires := op.Wires()
		node := &DAGNode{
			ID:    generateNodeID(op.Name(), i),
			Index: i,
			Op:    op,
		}

		depSet := make(map[string]bool)
		for _, w := range wires {
			if lastID, ok := lastOnWire[w]; ok && !depSet[lastID] {
				depSet[lastID] = true
				node.Dependencies = append(node.Dependencies, lastID)
			}
		}
		slices.Sort(node.Dependencies)

		lo, hi := wires.Min(), wires.Max()
		for w := lo; w <= hi && lo >= 0; w++ {
			node.Layer = max(node.Layer, nextLayer[w])
		}
		for w := lo; w <= hi && lo >= 0; w++ {
			nextLayer[w] = node.Layer + 1
		}

		dag.AddNode(node)
		for _, w := range wires {
			lastOnWire[w] = node.ID
		}
	}
	return dag
}

// AddNode adds a node to the DAG.
func (dag *CircuitDAG) AddNode(node *DAGNode) {
	if node.ID == "" {
		node.ID = generateNodeID(node.Op.Name(), node.Index)
	}
	dag.Nodes[node.ID] = node
	dag.updateRootNodes()

	if n := node.Op.Wires().Max() + 1; n > dag.NumWires {
		dag.NumWires = n
	}
}

// RemoveNode removes a node and drops it from every dependency list.
func (dag *CircuitDAG) RemoveNode(nodeID string) {
	delete(dag.Nodes, nodeID)
	for _, node := range dag.Nodes {
		node.Dependencies = slices.DeleteFunc(node.Dependencies, func(dep string) bool {
			return dep == nodeID
		})
	}
	dag.updateRootNodes()
}

// updateRootNodes recalculates the list of nodes with no dependencies.
func (dag *CircuitDAG) updateRootNodes() {
	dag.rootNodes = dag.rootNodes[:0]
	for id, node := range dag.Nodes {
		if len(node.Dependencies) == 0 {
			dag.rootNodes = append(dag.rootNodes, id)
		}
	}
	slices.Sort(dag.rootNodes)
}

// Roots returns the IDs of nodes without dependencies.
func (dag *CircuitDAG) Roots() []string {
	return slices.Clone(dag.rootNodes)
}

// sortedNodes returns all nodes ordered by tape index.
func (dag *CircuitDAG) sortedNodes() []*DAGNode {
	nodes := make([]*DAGNode, 0, len(dag.Nodes))
	for _, node := range dag.Nodes {
		nodes = append(nodes, node)
	}
	slices.SortFunc(nodes, func(a, b *DAGNode) int { return a.Index - b.Index })
	return nodes
}

// TopologicalSort returns nodes in an order that respects dependencies.
// Ties are broken by tape index, so a DAG built from a tape sorts back into
// that tape's order.
func (dag *CircuitDAG) TopologicalSort() []*DAGNode {
	visited := make(map[string]bool)
	result := make([]*DAGNode, 0, len(dag.Nodes))

	var visit func(nodeID string)
	visit = func(nodeID string) {
		if visited[nodeID] {
			return
		}
		visited[nodeID] = true

		node, ok := dag.Nodes[nodeID]
		if !ok {
			return
		}
		for _, depID := range node.Dependencies {
			visit(depID)
		}
		result = append(result, node)
	}

	for _, node := range dag.sortedNodes() {
		visit(node.ID)
	}
	return result
}

// GetNodesOnWire returns the nodes acting on wire, in tape order.
func (dag *CircuitDAG) GetNodesOnWire(wire int) []*DAGNode {
	var result []*DAGNode
	for _, node := range dag.sortedNodes() {
		if node.Op.Wires().Contains(wire) {
			result = append(result, node)
		}
	}
	return result
}

// WireOrder returns the names of the operations on wire, in order.
func (dag *CircuitDAG) WireOrder(wire int) []string {
	nodes := dag.GetNodesOnWire(wire)
	names := make([]string, len(nodes))
	for i, node := range nodes {
		names[i] = node.Op.Name()
	}
	return names
}

// MaxLayer returns the largest layer index, or -1 for an empty DAG.
func (dag *CircuitDAG) MaxLayer() int {
	maxLayer := -1
	for _, node := range dag.Nodes {
		maxLayer = max(maxLayer, node.Layer)
	}
	return maxLayer
}

// Layers groups nodes by drawing column.
func (dag *CircuitDAG) Layers() [][]*DAGNode {
	layers := make([][]*DAGNode, dag.MaxLayer()+1)
	for _, node := range dag.sortedNodes() {
		layers[node.Layer] = append(layers[node.Layer], node)
	}
	return layers
}

// Depth returns the number of drawing layers.
func (dag *CircuitDAG) Depth() int {
	return dag.MaxLayer() + 1
}
