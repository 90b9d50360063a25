// Package templates provides composite operations that expand into gate
// sequences when a tape is expanded or simulated.
package templates

import (
	"errors"
	"fmt"
	"strings"

	"qtermtape/ops"
)

const (
	NameGroverOperator = "GroverOperator"
	NameQFT            = "QFT"
)

// ErrTemplateWires is returned for an invalid template wire set.
var ErrTemplateWires = errors.New("templates: invalid wires")

// GroverOperator is the Grover diffusion operator 2|s><s| - I on its wires,
// where |s> is the uniform superposition.
//
// It expands to a Hadamard layer on all but the last wire, a Z on the last
// wire, a MultiControlledX with all-zero control values targeting the last
// wire, another Z and another Hadamard layer. Together the Z gates and the
// MultiControlledX act as a multi-controlled Z.
type GroverOperator struct {
	wires     ops.Wires
	workWires ops.Wires
}

// NewGroverOperator builds the diffusion operator on wires, which must hold at
// least two distinct wires. workWires are passed to the MultiControlledX.
func NewGroverOperator(wires, workWires ops.Wires) (GroverOperator, error) {
	if len(wires) < 2 {
		return GroverOperator{}, fmt.Errorf("%s needs at least 2 wires, got %d: %w", NameGroverOperator, len(wires), ErrTemplateWires)
	}
	if !wires.Unique() {
		return GroverOperator{}, fmt.Errorf("%s on wires %v: %w", NameGroverOperator, wires, ErrTemplateWires)
	}
	if workWires.Intersects(wires) {
		return GroverOperator{}, fmt.Errorf("%s work wires %v overlap %v: %w", NameGroverOperator, workWires, wires, ErrTemplateWires)
	}
	return GroverOperator{wires: wires.Clone(), workWires: workWires.Clone()}, nil
}

func (g GroverOperator) Name() string         { return NameGroverOperator }
func (g GroverOperator) Wires() ops.Wires     { return g.wires.Clone() }
func (g GroverOperator) Params() []float64    { return nil }
func (g GroverOperator) WorkWires() ops.Wires { return g.workWires.Clone() }

// Decomposition returns the gate sequence of the operator. The zero value
// has no wires and decomposes to nothing.
func (g GroverOperator) Decomposition() []ops.Operation {
	n := len(g.wires)
	if n < 2 {
		return nil
	}
	controls := g.wires[:n-1]
	target := g.wires[n-1]

	list := make([]ops.Operation, 0, 2*n+1)
	for _, w := range controls {
		list = append(list, ops.Hadamard(w))
	}
	list = append(list, ops.PauliZ(target))

	mcx, err := ops.MultiControlledX(controls, target, strings.Repeat("0", n-1), g.workWires)
	if err != nil {
		return nil
	}
	list = append(list, mcx, ops.PauliZ(target))

	for _, w := range controls {
		list = append(list, ops.Hadamard(w))
	}
	return list
}

func (g GroverOperator) String() string {
	return fmt.Sprintf("%s, wires=%s", NameGroverOperator, g.wires)
}
