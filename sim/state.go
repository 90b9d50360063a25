// Package sim is a small state-vector simulator used to check that tape
// rewrites preserve the circuit unitary.
//
// Wire 0 is the most significant bit of a basis-state index.
package sim

import (
	"errors"
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"

	"qtermtape/ops"
	"qtermtape/tape"
)

// MaxWires bounds the size of simulated registers.
const MaxWires = 12

// maxDepth bounds nested decompositions.
const maxDepth = 16

var (
	// ErrUnsupported is returned for operations without a matrix, controlled
	// form or decomposition.
	ErrUnsupported = errors.New("sim: unsupported operation")
	// ErrTooManyWires is returned for registers larger than MaxWires.
	ErrTooManyWires = errors.New("sim: too many wires")
	// ErrWireRange is returned for wires outside the register.
	ErrWireRange = errors.New("sim: wire out of range")
)

type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// NewStateVector returns |0...0> on numQubits wires.
func NewStateVector(numQubits int) (*StateVector, error) {
	if numQubits < 0 || numQubits > MaxWires {
		return nil, fmt.Errorf("%d wires: %w", numQubits, ErrTooManyWires)
	}
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}, nil
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

func (s *StateVector) bit(wire int) int {
	return 1 << (s.NumQubits - 1 - wire)
}

func (s *StateVector) checkWires(wires ops.Wires) error {
	for _, w := range wires {
		if w < 0 || w >= s.NumQubits {
			return fmt.Errorf("wire %d of %d: %w", w, s.NumQubits, ErrWireRange)
		}
	}
	return nil
}

// Apply applies op to the state. Composite operations are applied through
// their decomposition.
func (s *StateVector) Apply(op ops.Operation) error {
	return s.apply(op, 0)
}

func (s *StateVector) apply(op ops.Operation, depth int) error {
	if err := s.checkWires(op.Wires()); err != nil {
		return fmt.Errorf("%s: %w", op.Name(), err)
	}
	if m, ok := ops.MatrixOf(op); ok && len(op.Wires()) == 1 {
		s.apply1(m, op.Wires()[0])
		return nil
	}
	if c, ok := ops.ControlledOf(op); ok {
		s.applyControlled(c)
		return nil
	}
	if op.Name() == ops.NameSWAP {
		w := op.Wires()
		s.applySWAP(w[0], w[1])
		return nil
	}
	if d, ok := op.(ops.Decomposer); ok {
		if depth >= maxDepth {
			return fmt.Errorf("%s: %w", op.Name(), tape.ErrExpandDepth)
		}
		for _, sub := range d.Decomposition() {
			if err := s.apply(sub, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%s: %w", op.Name(), ErrUnsupported)
}

// apply1 applies a 2x2 matrix to one wire.
func (s *StateVector) apply1(m [2][2]complex128, q int) {
	bit := s.bit(q)
	for i := range s.Amplitudes {
		if i&bit == 0 {
			j := i | bit
			a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
			s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
		}
	}
}

// applyControlled applies c.Base to c.Target on the basis states where every
// control wire holds its control value.
func (s *StateVector) applyControlled(c ops.Controlled) {
	var mask, want int
	for k, w := range c.Controls {
		b := s.bit(w)
		mask |= b
		if c.Values[k] {
			want |= b
		}
	}
	tBit := s.bit(c.Target)
	m := c.Base
	for i := range s.Amplitudes {
		if i&tBit != 0 || i&mask != want {
			continue
		}
		j := i | tBit
		a0, a1 := s.Amplitudes[i], s.Amplitudes[j]
		s.Amplitudes[i] = m[0][0]*a0 + m[0][1]*a1
		s.Amplitudes[j] = m[1][0]*a0 + m[1][1]*a1
	}
}

func (s *StateVector) applySWAP(q1, q2 int) {
	bit1 := s.bit(q1)
	bit2 := s.bit(q2)
	for i := range s.Amplitudes {
		if i&bit1 != 0 && i&bit2 == 0 {
			j := (i &^ bit1) | bit2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// Probabilities returns the probability of every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, amp := range s.Amplitudes {
		probs[i] = real(amp * cmplx.Conj(amp))
	}
	return probs
}

type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// QubitProbabilities returns the marginal distribution of every wire.
func (s *StateVector) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.NumQubits)
	for i, p := range s.Probabilities() {
		for q := 0; q < s.NumQubits; q++ {
			if i&s.bit(q) != 0 {
				probs[q].Prob1 += p
			} else {
				probs[q].Prob0 += p
			}
		}
	}
	return probs
}

// Norm returns the Euclidean norm of the state.
func (s *StateVector) Norm() float64 {
	return cmplxs.Norm(s.Amplitudes, 2)
}

// Run simulates t on numWires wires starting from |0...0>. numWires <= 0
// uses t.NumWires().
func Run(t *tape.Tape, numWires int) (*StateVector, error) {
	if numWires <= 0 {
		numWires = t.NumWires()
	}
	state, err := NewStateVector(numWires)
	if err != nil {
		return nil, err
	}
	for _, op := range t.Operations() {
		if err := state.Apply(op); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// Probabilities simulates t and returns the probability of every basis
// state.
func Probabilities(t *tape.Tape) ([]float64, error) {
	state, err := Run(t, 0)
	if err != nil {
		return nil, err
	}
	return state.Probabilities(), nil
}
