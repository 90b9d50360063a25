package tape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermtape/ops"
)

func TestDAGParallelGates(t *testing.T) {
	tp := New([]ops.Operation{
		ops.Hadamard(0),
		ops.Hadamard(1),
		ops.CNOT(0, 1),
		ops.PauliX(2),
	}, nil)

	dag := FromTape(tp)
	require.Len(t, dag.Nodes, 4)
	assert.Equal(t, 3, dag.NumWires)

	h0 := dag.Nodes["Hadamard_0"]
	h1 := dag.Nodes["Hadamard_1"]
	cx := dag.Nodes["CNOT_2"]
	x2 := dag.Nodes["PauliX_3"]

	assert.Equal(t, h0.Layer, h1.Layer, "parallel gates share a layer")
	assert.Greater(t, cx.Layer, h0.Layer)
	assert.Equal(t, 0, x2.Layer)
	assert.Equal(t, []string{"Hadamard_0", "Hadamard_1"}, cx.Dependencies)
	assert.Equal(t, []string{"Hadamard_0", "Hadamard_1", "PauliX_3"}, dag.Roots())
}

func TestDAGSpanReservesLayers(t *testing.T) {
	// The CNOT spans wire 1, so the gate on wire 1 is pushed past it.
	tp := New([]ops.Operation{ops.CNOT(0, 2), ops.PauliX(1)}, nil)
	dag := FromTape(tp)

	assert.Equal(t, 0, dag.Nodes["CNOT_0"].Layer)
	assert.Equal(t, 1, dag.Nodes["PauliX_1"].Layer)
	assert.Empty(t, dag.Nodes["PauliX_1"].Dependencies)
	assert.Equal(t, 2, dag.Depth())
}

func TestDAGTopologicalSortFollowsTape(t *testing.T) {
	tp := New([]ops.Operation{
		ops.RX(0.1, 1), ops.Hadamard(0), ops.CZ(0, 1), ops.RY(0.2, 0), ops.T(1),
	}, nil)
	dag := FromTape(tp)

	sorted := dag.TopologicalSort()
	require.Len(t, sorted, 5)
	for i, node := range sorted {
		assert.Equal(t, i, node.Index)
	}
}

func TestDAGWireOrder(t *testing.T) {
	tp := New([]ops.Operation{
		ops.Hadamard(0), ops.RX(0.1, 1), ops.CNOT(0, 1), ops.RZ(0.3, 0),
	}, nil)
	dag := FromTape(tp)

	assert.Equal(t, []string{ops.NameHadamard, ops.NameCNOT, ops.NameRZ}, dag.WireOrder(0))
	assert.Equal(t, []string{ops.NameRX, ops.NameCNOT}, dag.WireOrder(1))
	assert.Empty(t, dag.WireOrder(7))
}

func TestDAGRemoveNode(t *testing.T) {
	tp := New([]ops.Operation{ops.Hadamard(0), ops.PauliX(0)}, nil)
	dag := FromTape(tp)
	require.Equal(t, []string{"Hadamard_0"}, dag.Roots())

	dag.RemoveNode("Hadamard_0")
	assert.Len(t, dag.Nodes, 1)
	assert.Empty(t, dag.Nodes["PauliX_1"].Dependencies)
	assert.Equal(t, []string{"PauliX_1"}, dag.Roots())
}

func TestDAGLayers(t *testing.T) {
	tp := New([]ops.Operation{ops.Hadamard(0), ops.Hadamard(1), ops.CNOT(0, 1)}, nil)
	layers := FromTape(tp).Layers()
	require.Len(t, layers, 2)
	assert.Len(t, layers[0], 2)
	assert.Len(t, layers[1], 1)

	assert.Empty(t, FromTape(New(nil, nil)).Layers())
}
