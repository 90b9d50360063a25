package ops

import (
	"encoding/json"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// equalUpToPhase compares two 2x2 unitaries ignoring a global phase.
func equalUpToPhase(a, b [2][2]complex128, tol float64) bool {
	// Tr(A^dagger B) has modulus 2 exactly when B = e^{i phi} A.
	var tr complex128
	for i := range 2 {
		for j := range 2 {
			tr += cmplx.Conj(a[i][j]) * b[i][j]
		}
	}
	return math.Abs(cmplx.Abs(tr)-2) < tol
}

func TestRotAnglesMatchMatrices(t *testing.T) {
	gates := []Gate{
		Identity(0), PauliX(0), PauliY(0), PauliZ(0), S(0), T(0), SX(0),
		RX(0.3, 0), RY(-1.2, 0), RZ(2.5, 0), PhaseShift(0.7, 0),
		Rot(0.1, 0.2, 0.3, 0),
	}

	for _, g := range gates {
		t.Run(g.Name(), func(t *testing.T) {
			angles, ok := RotAngles(g)
			require.True(t, ok)
			require.Len(t, angles, 3)

			m, ok := MatrixOf(g)
			require.True(t, ok)
			rot := RotMatrix(angles[0], angles[1], angles[2])
			assert.True(t, equalUpToPhase(m, rot, 1e-12), "%s matrix differs from Rot%v", g.Name(), angles)
		})
	}
}

func TestRotAnglesUnsupported(t *testing.T) {
	for _, op := range []Operation{Hadamard(0), CNOT(0, 1), SWAP(0, 1), CRX(0.1, 0, 1), Toffoli(0, 1, 2)} {
		_, ok := RotAngles(op)
		assert.False(t, ok, op.Name())
	}
}

func TestNew(t *testing.T) {
	g, err := New(NameRX, Wires{2}, 0.5)
	require.NoError(t, err)
	assert.Equal(t, NameRX, g.Name())
	assert.Equal(t, Wires{2}, g.Wires())
	assert.Equal(t, []float64{0.5}, g.Params())

	_, err = New("Bogus", Wires{0})
	assert.ErrorIs(t, err, ErrUnknownGate)

	_, err = New(NameCNOT, Wires{0})
	assert.ErrorIs(t, err, ErrWireCount)

	_, err = New(NameCNOT, Wires{1, 1})
	assert.ErrorIs(t, err, ErrWireCount)

	_, err = New(NameRot, Wires{0}, 1, 2)
	assert.ErrorIs(t, err, ErrParamCount)

	mcx, err := New(NameMultiControlledX, Wires{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, "111", mcx.ControlValues())
}

func TestGateIsImmutable(t *testing.T) {
	g := Rot(0.1, 0.2, 0.3, 0)
	p := g.Params()
	p[0] = 99
	w := g.Wires()
	w[0] = 5

	assert.Equal(t, []float64{0.1, 0.2, 0.3}, g.Params())
	assert.Equal(t, Wires{0}, g.Wires())
}

func TestMultiControlledX(t *testing.T) {
	g, err := MultiControlledX(Wires{0, 1}, 2, "01", Wires{3})
	require.NoError(t, err)
	assert.Equal(t, Wires{0, 1, 2}, g.Wires())
	assert.Equal(t, "01", g.ControlValues())
	assert.Equal(t, Wires{3}, g.WorkWires())

	c, ok := ControlledOf(g)
	require.True(t, ok)
	assert.Equal(t, Wires{0, 1}, c.Controls)
	assert.Equal(t, []bool{false, true}, c.Values)
	assert.Equal(t, 2, c.Target)

	_, err = MultiControlledX(Wires{0, 1}, 2, "0", nil)
	assert.Error(t, err)
	_, err = MultiControlledX(Wires{0, 1}, 2, "0x", nil)
	assert.Error(t, err)
	_, err = MultiControlledX(Wires{0, 1}, 2, "", Wires{1})
	assert.ErrorIs(t, err, ErrWireCount)
	_, err = MultiControlledX(nil, 2, "", nil)
	assert.ErrorIs(t, err, ErrWireCount)
}

func TestAdjoint(t *testing.T) {
	tests := []struct {
		gate Gate
		want Gate
	}{
		{RX(0.4, 0), RX(-0.4, 0)},
		{Rot(0.1, 0.2, 0.3, 1), Rot(-0.3, -0.2, -0.1, 1)},
		{S(0), PhaseShift(-math.Pi/2, 0)},
		{Hadamard(0), Hadamard(0)},
		{ControlledPhaseShift(0.5, 0, 1), ControlledPhaseShift(-0.5, 0, 1)},
	}
	for _, tt := range tests {
		got, err := tt.gate.Adjoint()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := SX(0).Adjoint()
	assert.ErrorIs(t, err, ErrNoAdjoint)
}

func TestRotAdjointIsInverse(t *testing.T) {
	g := Rot(0.4, 1.1, -0.7, 0)
	inv, err := g.Adjoint()
	require.NoError(t, err)

	m, _ := g.Matrix()
	mi, _ := inv.Matrix()
	var prod [2][2]complex128
	for i := range 2 {
		for j := range 2 {
			for k := range 2 {
				prod[i][j] += mi[i][k] * m[k][j]
			}
		}
	}
	assert.True(t, equalUpToPhase(prod, matI, 1e-12))
}

func TestWires(t *testing.T) {
	w := Wires{0, 2}
	assert.True(t, w.Equal(Wires{0, 2}))
	assert.False(t, w.Equal(Wires{2, 0}))
	assert.True(t, w.Intersects(Wires{2, 3}))
	assert.False(t, w.Intersects(Wires{1, 3}))
	assert.False(t, Wires{}.Intersects(w))
	assert.Equal(t, 2, w.Max())
	assert.Equal(t, -1, Wires{}.Max())
	assert.Equal(t, "[0, 2]", w.String())
}

func TestGateJSON(t *testing.T) {
	b, err := json.Marshal(RX(0.5, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"RX","wires":[1],"params":[0.5]}`, string(b))

	b, err = json.Marshal(SampleOf(0, 1))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"sample","wires":[0,1]}`, string(b))

	b, err = json.Marshal(ExpvalOf(PauliZ(0)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"expval","observable":"PauliZ","wires":[0]}`, string(b))
}

func TestMeasurementString(t *testing.T) {
	assert.Equal(t, "expval(PauliX[0])", ExpvalOf(PauliX(0)).String())
	assert.Equal(t, "probs[0, 1]", ProbsOf(0, 1).String())
}
