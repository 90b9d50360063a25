// Package tape records quantum circuits as ordered lists of operations
// followed by measurements.
//
// Usage:
//
//	t := tape.Record(func(r *tape.Recorder) {
//		r.Apply(ops.Hadamard(0))
//		r.Apply(ops.CNOT(0, 1))
//		r.Measure(ops.ProbsOf(0, 1))
//	})
//
// Operation order is execution order on shared wires. A Tape is never
// mutated after recording; transforms produce new tapes.
package tape

import (
	"errors"
	"fmt"
	"slices"

	"qtermtape/ops"
)

// maxExpandDepth bounds nested decompositions.
const maxExpandDepth = 16

// ErrExpandDepth is returned when decompositions nest too deeply.
var ErrExpandDepth = errors.New("tape: decomposition depth exceeded")

// workWirer is implemented by operations that borrow auxiliary wires.
type workWirer interface {
	WorkWires() ops.Wires
}

// Tape is an ordered recording of circuit operations and measurements.
type Tape struct {
	operations   []ops.Operation
	measurements []ops.Measurement
}

// New builds a tape from operations and measurements.
func New(operations []ops.Operation, measurements []ops.Measurement) *Tape {
	return &Tape{
		operations:   slices.Clone(operations),
		measurements: slices.Clone(measurements),
	}
}

// Operations returns the operations in order.
func (t *Tape) Operations() []ops.Operation {
	return slices.Clone(t.operations)
}

// Measurements returns the measurements in order.
func (t *Tape) Measurements() []ops.Measurement {
	return slices.Clone(t.measurements)
}

// Len returns the number of operations.
func (t *Tape) Len() int { return len(t.operations) }

// Clone returns a shallow copy; operations are immutable so sharing is safe.
func (t *Tape) Clone() *Tape {
	return New(t.operations, t.measurements)
}

// Wires returns every wire the tape touches, sorted.
func (t *Tape) Wires() ops.Wires {
	seen := make(map[int]bool)
	var wires ops.Wires
	add := func(ws ops.Wires) {
		for _, w := range ws {
			if !seen[w] {
				seen[w] = true
				wires = append(wires, w)
			}
		}
	}
	for _, op := range t.operations {
		add(op.Wires())
		if ww, ok := op.(workWirer); ok {
			add(ww.WorkWires())
		}
	}
	for _, m := range t.measurements {
		add(m.Wires())
	}
	slices.Sort(wires)
	return wires
}

// NumWires returns one more than the largest wire index used.
func (t *Tape) NumWires() int {
	return t.Wires().Max() + 1
}

// Expand replaces every operation implementing ops.Decomposer by its
// decomposition, recursively.
func (t *Tape) Expand() (*Tape, error) {
	r := NewRecorder()
	r.StartRecording()
	for _, op := range t.operations {
		if err := expandInto(r, op, 0); err != nil {
			return nil, err
		}
	}
	for _, m := range t.measurements {
		r.Measure(m)
	}
	return r.Tape(), nil
}

func expandInto(r *Recorder, op ops.Operation, depth int) error {
	d, ok := op.(ops.Decomposer)
	if !ok {
		r.Apply(op)
		return nil
	}
	if depth >= maxExpandDepth {
		return fmt.Errorf("expanding %s: %w", op.Name(), ErrExpandDepth)
	}
	for _, sub := range d.Decomposition() {
		if err := expandInto(r, sub, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Transform rewrites a tape into a new one.
type Transform func(*Tape) (*Tape, error)

// Pipeline chains transforms left to right.
func Pipeline(transforms ...Transform) Transform {
	return func(t *Tape) (*Tape, error) {
		cur := t
		for i, tr := range transforms {
			next, err := tr(cur)
			if err != nil {
				return nil, fmt.Errorf("transform %d: %w", i, err)
			}
			cur = next
		}
		return cur, nil
	}
}

// CountByName returns how many operations carry each name.
func (t *Tape) CountByName() map[string]int {
	counts := make(map[string]int)
	for _, op := range t.operations {
		counts[op.Name()]++
	}
	return counts
}
