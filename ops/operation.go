// Package ops defines the operations a circuit tape is built from: gates,
// their wires and parameters, and the measurements that close a circuit.
//
// Operations are immutable once created. Optional capabilities (rotation
// angles, single-qubit matrices, decompositions) are expressed as small
// interfaces and queried with the helpers in this file, so that "not
// supported" is an ordinary result rather than an error.
package ops

// Operation is a named gate instance acting on an ordered set of wires.
type Operation interface {
	Name() string
	Wires() Wires
	Params() []float64
}

// RotationAngler is implemented by operations that can report themselves as
// a general single-qubit rotation Rot(phi, theta, omega). The boolean is
// false when this particular instance has no such form.
type RotationAngler interface {
	SingleQubitRotAngles() ([]float64, bool)
}

// Matrixer is implemented by single-qubit operations with a 2x2 matrix.
type Matrixer interface {
	Matrix() ([2][2]complex128, bool)
}

// Decomposer is implemented by composite operations such as templates.
type Decomposer interface {
	Decomposition() []Operation
}

// Controlled describes an operation as a single-qubit matrix applied to a
// target wire when every control wire holds its control value.
type Controlled struct {
	Controls Wires
	Values   []bool
	Target   int
	Base     [2][2]complex128
}

// Controller is implemented by controlled multi-qubit gates.
type Controller interface {
	Controlled() (Controlled, bool)
}

// RotAngles returns the Euler angles of op when it supports the rotation
// form, and false otherwise.
func RotAngles(op Operation) ([]float64, bool) {
	ra, ok := op.(RotationAngler)
	if !ok {
		return nil, false
	}
	return ra.SingleQubitRotAngles()
}

// MatrixOf returns the 2x2 matrix of a single-qubit op.
func MatrixOf(op Operation) ([2][2]complex128, bool) {
	mx, ok := op.(Matrixer)
	if !ok {
		return [2][2]complex128{}, false
	}
	return mx.Matrix()
}

// ControlledOf returns the controlled form of op.
func ControlledOf(op Operation) (Controlled, bool) {
	c, ok := op.(Controller)
	if !ok {
		return Controlled{}, false
	}
	return c.Controlled()
}
