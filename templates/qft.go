package templates

import (
	"fmt"
	"math"

	"qtermtape/ops"
)

// QFT is the quantum Fourier transform on its wires, with the first wire as
// the most significant bit:
//
//	QFT|k> = 2^(-n/2) sum_j exp(2 pi i jk / 2^n) |j>
type QFT struct {
	wires   ops.Wires
	inverse bool
}

// NewQFT builds the transform on one or more distinct wires.
func NewQFT(wires ops.Wires) (QFT, error) {
	if len(wires) == 0 {
		return QFT{}, fmt.Errorf("%s needs at least 1 wire: %w", NameQFT, ErrTemplateWires)
	}
	if !wires.Unique() {
		return QFT{}, fmt.Errorf("%s on wires %v: %w", NameQFT, wires, ErrTemplateWires)
	}
	return QFT{wires: wires.Clone()}, nil
}

func (q QFT) Name() string {
	if q.inverse {
		return "Adjoint(" + NameQFT + ")"
	}
	return NameQFT
}

func (q QFT) Wires() ops.Wires  { return q.wires.Clone() }
func (q QFT) Params() []float64 { return nil }

// Adjoint returns the inverse transform.
func (q QFT) Adjoint() QFT {
	return QFT{wires: q.wires.Clone(), inverse: !q.inverse}
}

// Decomposition returns Hadamards with a ladder of controlled phase shifts,
// followed by SWAPs that reverse the wire order. The inverse runs the same
// gates backwards with negated phases.
func (q QFT) Decomposition() []ops.Operation {
	if q.inverse {
		return q.inverseDecomposition()
	}
	n := len(q.wires)
	var list []ops.Operation
	for i, w := range q.wires {
		list = append(list, ops.Hadamard(w))
		for k := 1; i+k < n; k++ {
			list = append(list, ops.ControlledPhaseShift(math.Pi/math.Exp2(float64(k)), q.wires[i+k], w))
		}
	}
	for i := 0; i < n/2; i++ {
		list = append(list, ops.SWAP(q.wires[i], q.wires[n-1-i]))
	}
	return list
}

func (q QFT) inverseDecomposition() []ops.Operation {
	n := len(q.wires)
	var list []ops.Operation
	for i := n/2 - 1; i >= 0; i-- {
		list = append(list, ops.SWAP(q.wires[i], q.wires[n-1-i]))
	}
	for i := n - 1; i >= 0; i-- {
		w := q.wires[i]
		for k := n - 1 - i; k >= 1; k-- {
			list = append(list, ops.ControlledPhaseShift(-math.Pi/math.Exp2(float64(k)), q.wires[i+k], w))
		}
		list = append(list, ops.Hadamard(w))
	}
	return list
}

func (q QFT) String() string {
	return fmt.Sprintf("%s, wires=%s", q.Name(), q.wires)
}
