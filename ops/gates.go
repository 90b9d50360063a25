package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strconv"
	"strings"
)

// Gate names.
const (
	NameIdentity             = "Identity"
	NameHadamard             = "Hadamard"
	NamePauliX               = "PauliX"
	NamePauliY               = "PauliY"
	NamePauliZ               = "PauliZ"
	NameS                    = "S"
	NameT                    = "T"
	NameSX                   = "SX"
	NameRX                   = "RX"
	NameRY                   = "RY"
	NameRZ                   = "RZ"
	NamePhaseShift           = "PhaseShift"
	NameRot                  = "Rot"
	NameCNOT                 = "CNOT"
	NameCY                   = "CY"
	NameCZ                   = "CZ"
	NameSWAP                 = "SWAP"
	NameCRX                  = "CRX"
	NameCRY                  = "CRY"
	NameCRZ                  = "CRZ"
	NameControlledPhaseShift = "ControlledPhaseShift"
	NameToffoli              = "Toffoli"
	NameMultiControlledX     = "MultiControlledX"
)

var (
	ErrUnknownGate = errors.New("unknown gate")
	ErrWireCount   = errors.New("wrong number of wires")
	ErrParamCount  = errors.New("wrong number of parameters")
	ErrNoAdjoint   = errors.New("gate has no exact adjoint")
)

// anyWires marks gates that accept a variable number of wires.
const anyWires = -1

type gateSpec struct {
	numWires  int
	numParams int
	// rotAngles is nil for gates without a single-qubit rotation form.
	rotAngles func(p []float64) []float64
	// matrix is set for single-qubit gates, base for controlled ones.
	matrix func(p []float64) [2][2]complex128
	base   func(p []float64) [2][2]complex128
	// adjoint is nil for gates without an exact adjoint.
	adjoint func(g Gate) Gate
}

var gateSpecs = map[string]gateSpec{
	NameIdentity: {numWires: 1, rotAngles: constAngles(0, 0, 0), matrix: constMatrix(matI), adjoint: selfAdjoint},
	NameHadamard: {numWires: 1, matrix: constMatrix(matH), adjoint: selfAdjoint},
	NamePauliX:   {numWires: 1, rotAngles: constAngles(math.Pi/2, math.Pi, -math.Pi/2), matrix: constMatrix(matX), adjoint: selfAdjoint},
	NamePauliY:   {numWires: 1, rotAngles: constAngles(0, math.Pi, 0), matrix: constMatrix(matY), adjoint: selfAdjoint},
	NamePauliZ:   {numWires: 1, rotAngles: constAngles(math.Pi, 0, 0), matrix: constMatrix(matZ), adjoint: selfAdjoint},
	NameS: {numWires: 1, rotAngles: constAngles(math.Pi/2, 0, 0), matrix: constMatrix(phaseMatrix(math.Pi / 2)),
		adjoint: func(g Gate) Gate { return PhaseShift(-math.Pi/2, g.wires[0]) }},
	NameT: {numWires: 1, rotAngles: constAngles(math.Pi/4, 0, 0), matrix: constMatrix(phaseMatrix(math.Pi / 4)),
		adjoint: func(g Gate) Gate { return PhaseShift(-math.Pi/4, g.wires[0]) }},
	NameSX: {numWires: 1, rotAngles: constAngles(math.Pi/2, math.Pi/2, -math.Pi/2), matrix: constMatrix(matSX)},
	NameRX: {numWires: 1, numParams: 1,
		rotAngles: func(p []float64) []float64 { return []float64{math.Pi / 2, p[0], -math.Pi / 2} },
		matrix:    func(p []float64) [2][2]complex128 { return rxMatrix(p[0]) }, adjoint: negateParams},
	NameRY: {numWires: 1, numParams: 1,
		rotAngles: func(p []float64) []float64 { return []float64{0, p[0], 0} },
		matrix:    func(p []float64) [2][2]complex128 { return ryMatrix(p[0]) }, adjoint: negateParams},
	NameRZ: {numWires: 1, numParams: 1,
		rotAngles: func(p []float64) []float64 { return []float64{p[0], 0, 0} },
		matrix:    func(p []float64) [2][2]complex128 { return rzMatrix(p[0]) }, adjoint: negateParams},
	NamePhaseShift: {numWires: 1, numParams: 1,
		rotAngles: func(p []float64) []float64 { return []float64{p[0], 0, 0} },
		matrix:    func(p []float64) [2][2]complex128 { return phaseMatrix(p[0]) }, adjoint: negateParams},
	NameRot: {numWires: 1, numParams: 3,
		rotAngles: func(p []float64) []float64 { return []float64{p[0], p[1], p[2]} },
		matrix:    func(p []float64) [2][2]complex128 { return RotMatrix(p[0], p[1], p[2]) },
		adjoint: func(g Gate) Gate {
			return Rot(-g.params[2], -g.params[1], -g.params[0], g.wires[0])
		}},
	NameCNOT:                 {numWires: 2, base: constMatrix(matX), adjoint: selfAdjoint},
	NameCY:                   {numWires: 2, base: constMatrix(matY), adjoint: selfAdjoint},
	NameCZ:                   {numWires: 2, base: constMatrix(matZ), adjoint: selfAdjoint},
	NameSWAP:                 {numWires: 2, adjoint: selfAdjoint},
	NameCRX:                  {numWires: 2, numParams: 1, base: func(p []float64) [2][2]complex128 { return rxMatrix(p[0]) }, adjoint: negateParams},
	NameCRY:                  {numWires: 2, numParams: 1, base: func(p []float64) [2][2]complex128 { return ryMatrix(p[0]) }, adjoint: negateParams},
	NameCRZ:                  {numWires: 2, numParams: 1, base: func(p []float64) [2][2]complex128 { return rzMatrix(p[0]) }, adjoint: negateParams},
	NameControlledPhaseShift: {numWires: 2, numParams: 1, base: func(p []float64) [2][2]complex128 { return phaseMatrix(p[0]) }, adjoint: negateParams},
	NameToffoli:              {numWires: 3, base: constMatrix(matX), adjoint: selfAdjoint},
	NameMultiControlledX:     {numWires: anyWires, base: constMatrix(matX), adjoint: selfAdjoint},
}

// Known reports whether name is a supported gate.
func Known(name string) bool {
	_, ok := gateSpecs[name]
	return ok
}

// Gate is an immutable gate instance.
type Gate struct {
	name   string
	wires  Wires
	params []float64

	// Only set for MultiControlledX.
	controlValues []bool
	workWires     Wires
}

// New validates and builds a gate by name.
func New(name string, wires Wires, params ...float64) (Gate, error) {
	spec, ok := gateSpecs[name]
	if !ok {
		return Gate{}, fmt.Errorf("%q: %w", name, ErrUnknownGate)
	}
	if name == NameMultiControlledX {
		if len(wires) < 2 {
			return Gate{}, fmt.Errorf("%s needs at least 2 wires, got %d: %w", name, len(wires), ErrWireCount)
		}
		return MultiControlledX(wires[:len(wires)-1], wires[len(wires)-1], "", nil)
	}
	if len(wires) != spec.numWires {
		return Gate{}, fmt.Errorf("%s needs %d wires, got %d: %w", name, spec.numWires, len(wires), ErrWireCount)
	}
	if !wires.Unique() {
		return Gate{}, fmt.Errorf("%s on wires %v: %w", name, wires, ErrWireCount)
	}
	if len(params) != spec.numParams {
		return Gate{}, fmt.Errorf("%s needs %d parameters, got %d: %w", name, spec.numParams, len(params), ErrParamCount)
	}
	return newGate(name, wires, params...), nil
}

func newGate(name string, wires Wires, params ...float64) Gate {
	g := Gate{name: name, wires: wires.Clone()}
	if len(params) > 0 {
		g.params = append([]float64(nil), params...)
	}
	return g
}

// Name returns the gate name.
func (g Gate) Name() string { return g.name }

// Wires returns a copy of the gate's wires.
func (g Gate) Wires() Wires { return g.wires.Clone() }

// Params returns a copy of the gate's parameters.
func (g Gate) Params() []float64 {
	if g.params == nil {
		return nil
	}
	return append([]float64(nil), g.params...)
}

// ControlValues returns the control values of a MultiControlledX as a bit
// string, or "" for other gates.
func (g Gate) ControlValues() string {
	if g.controlValues == nil {
		return ""
	}
	var sb strings.Builder
	for _, v := range g.controlValues {
		if v {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// WorkWires returns the auxiliary wires of a MultiControlledX.
func (g Gate) WorkWires() Wires { return g.workWires.Clone() }

// SingleQubitRotAngles returns (phi, theta, omega) with
// Rot(phi, theta, omega) = RZ(omega) RY(theta) RZ(phi).
func (g Gate) SingleQubitRotAngles() ([]float64, bool) {
	spec := gateSpecs[g.name]
	if spec.rotAngles == nil {
		return nil, false
	}
	return spec.rotAngles(g.params), true
}

// Matrix returns the 2x2 matrix of a single-qubit gate.
func (g Gate) Matrix() ([2][2]complex128, bool) {
	spec := gateSpecs[g.name]
	if spec.matrix == nil {
		return [2][2]complex128{}, false
	}
	return spec.matrix(g.params), true
}

// Controlled returns the controlled form of a controlled gate. The last wire
// is the target.
func (g Gate) Controlled() (Controlled, bool) {
	spec := gateSpecs[g.name]
	if spec.base == nil {
		return Controlled{}, false
	}
	n := len(g.wires)
	values := g.controlValues
	if values == nil {
		values = make([]bool, n-1)
		for i := range values {
			values[i] = true
		}
	}
	return Controlled{
		Controls: g.wires[:n-1].Clone(),
		Values:   append([]bool(nil), values...),
		Target:   g.wires[n-1],
		Base:     spec.base(g.params),
	}, true
}

// Adjoint returns the inverse gate.
func (g Gate) Adjoint() (Gate, error) {
	spec := gateSpecs[g.name]
	if spec.adjoint == nil {
		return Gate{}, fmt.Errorf("%s: %w", g.name, ErrNoAdjoint)
	}
	return spec.adjoint(g), nil
}

func (g Gate) String() string {
	var sb strings.Builder
	sb.WriteString(g.name)
	if len(g.params) > 0 {
		sb.WriteByte('(')
		for i, p := range g.params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		}
		sb.WriteByte(')')
	}
	sb.WriteString(", wires=")
	sb.WriteString(g.wires.String())
	return sb.String()
}

// MarshalJSON encodes the gate as {"name", "wires", "params"}.
func (g Gate) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name          string    `json:"name"`
		Wires         Wires     `json:"wires"`
		Params        []float64 `json:"params,omitempty"`
		ControlValues string    `json:"control_values,omitempty"`
	}{g.name, g.wires, g.params, g.ControlValues()})
}

// ──────────────────────────── Constructors ────────────────────────────

func Identity(wire int) Gate { return newGate(NameIdentity, Wires{wire}) }
func Hadamard(wire int) Gate { return newGate(NameHadamard, Wires{wire}) }
func PauliX(wire int) Gate   { return newGate(NamePauliX, Wires{wire}) }
func PauliY(wire int) Gate   { return newGate(NamePauliY, Wires{wire}) }
func PauliZ(wire int) Gate   { return newGate(NamePauliZ, Wires{wire}) }
func S(wire int) Gate        { return newGate(NameS, Wires{wire}) }
func T(wire int) Gate        { return newGate(NameT, Wires{wire}) }
func SX(wire int) Gate       { return newGate(NameSX, Wires{wire}) }

func RX(theta float64, wire int) Gate         { return newGate(NameRX, Wires{wire}, theta) }
func RY(theta float64, wire int) Gate         { return newGate(NameRY, Wires{wire}, theta) }
func RZ(theta float64, wire int) Gate         { return newGate(NameRZ, Wires{wire}, theta) }
func PhaseShift(phi float64, wire int) Gate   { return newGate(NamePhaseShift, Wires{wire}, phi) }
func Rot(phi, theta, omega float64, wire int) Gate {
	return newGate(NameRot, Wires{wire}, phi, theta, omega)
}

func CNOT(control, target int) Gate { return newGate(NameCNOT, Wires{control, target}) }
func CY(control, target int) Gate   { return newGate(NameCY, Wires{control, target}) }
func CZ(control, target int) Gate   { return newGate(NameCZ, Wires{control, target}) }
func SWAP(a, b int) Gate            { return newGate(NameSWAP, Wires{a, b}) }

func CRX(theta float64, control, target int) Gate {
	return newGate(NameCRX, Wires{control, target}, theta)
}
func CRY(theta float64, control, target int) Gate {
	return newGate(NameCRY, Wires{control, target}, theta)
}
func CRZ(theta float64, control, target int) Gate {
	return newGate(NameCRZ, Wires{control, target}, theta)
}
func ControlledPhaseShift(phi float64, control, target int) Gate {
	return newGate(NameControlledPhaseShift, Wires{control, target}, phi)
}

func Toffoli(c0, c1, target int) Gate { return newGate(NameToffoli, Wires{c0, c1, target}) }

// MultiControlledX flips target when every control wire matches its control
// value. controlValues is a bit string with one character per control; ""
// means all ones. workWires must not overlap the gate's wires.
func MultiControlledX(controls Wires, target int, controlValues string, workWires Wires) (Gate, error) {
	if len(controls) == 0 {
		return Gate{}, fmt.Errorf("%s needs at least one control: %w", NameMultiControlledX, ErrWireCount)
	}
	wires := append(controls.Clone(), target)
	if !wires.Unique() {
		return Gate{}, fmt.Errorf("%s on wires %v: %w", NameMultiControlledX, wires, ErrWireCount)
	}
	if workWires.Intersects(wires) {
		return Gate{}, fmt.Errorf("%s work wires %v overlap %v: %w", NameMultiControlledX, workWires, wires, ErrWireCount)
	}
	if controlValues == "" {
		controlValues = strings.Repeat("1", len(controls))
	}
	if len(controlValues) != len(controls) {
		return Gate{}, fmt.Errorf("%s: %d control values for %d controls", NameMultiControlledX, len(controlValues), len(controls))
	}
	values := make([]bool, len(controlValues))
	for i, ch := range controlValues {
		switch ch {
		case '0':
		case '1':
			values[i] = true
		default:
			return Gate{}, fmt.Errorf("%s: control values must be 0 or 1, got %q", NameMultiControlledX, controlValues)
		}
	}
	g := newGate(NameMultiControlledX, wires)
	g.controlValues = values
	g.workWires = workWires.Clone()
	return g, nil
}

// ──────────────────────────── Matrices ────────────────────────────

var (
	matI  = [2][2]complex128{{1, 0}, {0, 1}}
	matH  = [2][2]complex128{{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)}, {complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)}}
	matX  = [2][2]complex128{{0, 1}, {1, 0}}
	matY  = [2][2]complex128{{0, -1i}, {1i, 0}}
	matZ  = [2][2]complex128{{1, 0}, {0, -1}}
	matSX = [2][2]complex128{{0.5 + 0.5i, 0.5 - 0.5i}, {0.5 - 0.5i, 0.5 + 0.5i}}
)

func rxMatrix(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	js := complex(0, -math.Sin(theta/2))
	return [2][2]complex128{{c, js}, {js, c}}
}

func ryMatrix(theta float64) [2][2]complex128 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return [2][2]complex128{{c, -s}, {s, c}}
}

func rzMatrix(theta float64) [2][2]complex128 {
	phase := cmplx.Exp(complex(0, theta/2))
	return [2][2]complex128{{cmplx.Conj(phase), 0}, {0, phase}}
}

func phaseMatrix(phi float64) [2][2]complex128 {
	return [2][2]complex128{{1, 0}, {0, cmplx.Exp(complex(0, phi))}}
}

// RotMatrix returns the matrix of Rot(phi, theta, omega) = RZ(omega) RY(theta) RZ(phi).
func RotMatrix(phi, theta, omega float64) [2][2]complex128 {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	return [2][2]complex128{
		{cmplx.Exp(complex(0, -(phi+omega)/2)) * complex(c, 0), -cmplx.Exp(complex(0, (phi-omega)/2)) * complex(s, 0)},
		{cmplx.Exp(complex(0, -(phi-omega)/2)) * complex(s, 0), cmplx.Exp(complex(0, (phi+omega)/2)) * complex(c, 0)},
	}
}

func constAngles(phi, theta, omega float64) func([]float64) []float64 {
	return func([]float64) []float64 { return []float64{phi, theta, omega} }
}

func constMatrix(m [2][2]complex128) func([]float64) [2][2]complex128 {
	return func([]float64) [2][2]complex128 { return m }
}

func selfAdjoint(g Gate) Gate { return g }

func negateParams(g Gate) Gate {
	out := newGate(g.name, g.wires, g.params...)
	for i := range out.params {
		out.params[i] = -out.params[i]
	}
	return out
}
