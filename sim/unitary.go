package sim

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"qtermtape/tape"
)

// Unitary returns the matrix of the operations of t on numWires wires as a
// list of columns: column k is the state reached from basis state |k>.
// numWires <= 0 uses t.NumWires(). Measurements are ignored.
func Unitary(t *tape.Tape, numWires int) ([][]complex128, error) {
	if numWires <= 0 {
		numWires = t.NumWires()
	}
	if numWires > MaxWires {
		return nil, fmt.Errorf("%d wires: %w", numWires, ErrTooManyWires)
	}
	dim := 1 << numWires
	list := t.Operations()
	columns := make([][]complex128, dim)
	for k := 0; k < dim; k++ {
		state := &StateVector{Amplitudes: make([]complex128, dim), NumQubits: numWires}
		state.Amplitudes[k] = 1
		for _, op := range list {
			if err := state.Apply(op); err != nil {
				return nil, err
			}
		}
		columns[k] = state.Amplitudes
	}
	return columns, nil
}

// Fidelity returns |Tr(U†V)| / dim for the unitaries of a and b on a shared
// register. It is 1 exactly when the two agree up to a global phase.
func Fidelity(a, b *tape.Tape) (float64, error) {
	n := max(a.NumWires(), b.NumWires(), 1)
	u, err := Unitary(a, n)
	if err != nil {
		return 0, err
	}
	v, err := Unitary(b, n)
	if err != nil {
		return 0, err
	}
	var trace complex128
	for k := range u {
		trace += cmplxs.Dot(u[k], v[k])
	}
	return cmplx.Abs(trace) / float64(len(u)), nil
}

// Equivalent reports whether a and b implement the same unitary up to a
// global phase, within atol on the fidelity.
func Equivalent(a, b *tape.Tape, atol float64) (bool, error) {
	f, err := Fidelity(a, b)
	if err != nil {
		return false, err
	}
	return math.Abs(1-f) <= atol, nil
}
