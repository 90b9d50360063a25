package templates

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermtape/ops"
	"qtermtape/sim"
	"qtermtape/tape"
	"qtermtape/transforms"
)

func TestGroverOperatorDecomposition(t *testing.T) {
	g, err := NewGroverOperator(ops.Wires{0, 1, 2}, ops.Wires{3})
	require.NoError(t, err)

	list := g.Decomposition()
	var names []string
	for _, op := range list {
		names = append(names, op.Name())
	}
	assert.Equal(t, []string{
		ops.NameHadamard, ops.NameHadamard,
		ops.NamePauliZ,
		ops.NameMultiControlledX,
		ops.NamePauliZ,
		ops.NameHadamard, ops.NameHadamard,
	}, names)

	mcx, ok := list[3].(ops.Gate)
	require.True(t, ok)
	assert.Equal(t, ops.Wires{0, 1, 2}, mcx.Wires())
	assert.Equal(t, "00", mcx.ControlValues())
	assert.Equal(t, ops.Wires{3}, mcx.WorkWires())

	assert.Equal(t, ops.Wires{2}, list[2].Wires())
	assert.Equal(t, ops.Wires{0}, list[5].Wires())
}

func TestGroverOperatorWorkWiresOnTape(t *testing.T) {
	g, err := NewGroverOperator(ops.Wires{0, 1}, ops.Wires{4})
	require.NoError(t, err)
	tp := tape.New([]ops.Operation{g}, nil)
	assert.Equal(t, ops.Wires{0, 1, 4}, tp.Wires())
}

func TestGroverOperatorErrors(t *testing.T) {
	_, err := NewGroverOperator(ops.Wires{0}, nil)
	require.ErrorIs(t, err, ErrTemplateWires)

	_, err = NewGroverOperator(ops.Wires{0, 0}, nil)
	require.ErrorIs(t, err, ErrTemplateWires)

	_, err = NewGroverOperator(ops.Wires{0, 1}, ops.Wires{1})
	require.ErrorIs(t, err, ErrTemplateWires)
}

func TestGroverOperatorZeroValue(t *testing.T) {
	var g GroverOperator
	assert.NotPanics(t, func() {
		assert.Empty(t, g.Decomposition())
	})
	expanded, err := tape.New([]ops.Operation{g}, nil).Expand()
	require.NoError(t, err)
	assert.Equal(t, 0, expanded.Len())
}

// groverSearch marks |111> with a CCZ oracle and runs the diffusion
// operator iterations times.
func groverSearch(t *testing.T, iterations int) []float64 {
	t.Helper()
	wires := ops.Wires{0, 1, 2}
	diffusion, err := NewGroverOperator(wires, nil)
	require.NoError(t, err)

	tp := tape.Record(func(r *tape.Recorder) {
		for _, w := range wires {
			r.Apply(ops.Hadamard(w))
		}
		for i := 0; i < iterations; i++ {
			r.Apply(ops.Hadamard(2))
			r.Apply(ops.Toffoli(0, 1, 2))
			r.Apply(ops.Hadamard(2))
			r.Apply(diffusion)
		}
		r.Measure(ops.ProbsOf(wires...))
	})

	probs, err := sim.Probabilities(tp)
	require.NoError(t, err)
	return probs
}

func TestGroverSearchAmplifiesMarkedState(t *testing.T) {
	probs := groverSearch(t, 1)
	require.Len(t, probs, 8)
	for i := 0; i < 7; i++ {
		assert.InDelta(t, 0.03125, probs[i], 1e-9)
	}
	assert.InDelta(t, 0.78125, probs[7], 1e-9)

	probs = groverSearch(t, 2)
	assert.InDelta(t, 0.9453125, probs[7], 1e-9)
	assert.InDelta(t, 0.0078125, probs[0], 1e-9)
}

func TestQFTDecomposition(t *testing.T) {
	q, err := NewQFT(ops.Wires{0, 1, 2})
	require.NoError(t, err)

	list := q.Decomposition()
	require.Len(t, list, 7)

	type step struct {
		name  string
		wires ops.Wires
		param float64
	}
	want := []step{
		{ops.NameHadamard, ops.Wires{0}, 0},
		{ops.NameControlledPhaseShift, ops.Wires{1, 0}, math.Pi / 2},
		{ops.NameControlledPhaseShift, ops.Wires{2, 0}, math.Pi / 4},
		{ops.NameHadamard, ops.Wires{1}, 0},
		{ops.NameControlledPhaseShift, ops.Wires{2, 1}, math.Pi / 2},
		{ops.NameHadamard, ops.Wires{2}, 0},
		{ops.NameSWAP, ops.Wires{0, 2}, 0},
	}
	for i, op := range list {
		assert.Equal(t, want[i].name, op.Name(), "op %d", i)
		assert.Equal(t, want[i].wires, op.Wires(), "op %d", i)
		if want[i].name == ops.NameControlledPhaseShift {
			assert.InDelta(t, want[i].param, op.Params()[0], 1e-15, "op %d", i)
		}
	}
}

func TestQFTMatrix(t *testing.T) {
	const n = 3
	dim := 1 << n
	q, err := NewQFT(ops.Wires{0, 1, 2})
	require.NoError(t, err)

	for k := 0; k < dim; k++ {
		tp := tape.Record(func(r *tape.Recorder) {
			for w := 0; w < n; w++ {
				if k&(1<<(n-1-w)) != 0 {
					r.Apply(ops.PauliX(w))
				}
			}
			r.Apply(q)
		})
		state, err := sim.Run(tp, n)
		require.NoError(t, err)

		for j := 0; j < dim; j++ {
			want := cmplx.Exp(complex(0, 2*math.Pi*float64(j*k)/float64(dim))) / complex(math.Sqrt(float64(dim)), 0)
			assert.InDelta(t, 0, cmplx.Abs(state.Amplitudes[j]-want), 1e-12, "k=%d j=%d", k, j)
		}
	}
}

func TestQFTAdjoint(t *testing.T) {
	for n := 1; n <= 4; n++ {
		wires := make(ops.Wires, n)
		for i := range wires {
			wires[i] = i
		}
		q, err := NewQFT(wires)
		require.NoError(t, err)
		adj := q.Adjoint()
		assert.Equal(t, "Adjoint(QFT)", adj.Name())
		assert.Equal(t, NameQFT, adj.Adjoint().Name())

		ok, err := sim.Equivalent(tape.New([]ops.Operation{q, adj}, nil), tape.New(nil, nil), 1e-9)
		require.NoError(t, err)
		assert.True(t, ok, "n=%d", n)

		fwd, inv := q.Decomposition(), adj.Decomposition()
		require.Len(t, inv, len(fwd))
		for i := range fwd {
			f, b := fwd[i], inv[len(inv)-1-i]
			assert.Equal(t, f.Name(), b.Name())
			assert.Equal(t, f.Wires(), b.Wires())
			for p := range f.Params() {
				assert.Equal(t, -f.Params()[p], b.Params()[p])
			}
		}
	}
}

func TestQFTErrors(t *testing.T) {
	_, err := NewQFT(nil)
	require.ErrorIs(t, err, ErrTemplateWires)
	_, err = NewQFT(ops.Wires{1, 1})
	require.ErrorIs(t, err, ErrTemplateWires)
}

func TestFusionPreservesExpandedTemplates(t *testing.T) {
	q, err := NewQFT(ops.Wires{0, 1, 2})
	require.NoError(t, err)
	g, err := NewGroverOperator(ops.Wires{0, 1, 2}, nil)
	require.NoError(t, err)

	in := tape.New([]ops.Operation{
		ops.RX(0.3, 0), ops.RY(0.2, 1), q, ops.T(2), ops.S(2), g, ops.RZ(0.7, 1), ops.PauliX(1),
	}, nil)

	expanded, err := in.Expand()
	require.NoError(t, err)
	fused, err := transforms.SingleQubitFusion(expanded, transforms.DefaultFusionOptions())
	require.NoError(t, err)
	assert.Less(t, fused.Len(), expanded.Len())

	ok, err := sim.Equivalent(in, fused, 1e-9)
	require.NoError(t, err)
	assert.True(t, ok)
}
