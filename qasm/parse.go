// Package qasm reads and writes OpenQASM 2.0 programs as circuit tapes.
//
// Only the unitary subset is supported: gate applications and terminal
// measurements. Measurements become a single Sample measurement over the
// measured wires, in the order they were first measured.
package qasm

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"qtermtape/ops"
	"qtermtape/tape"
)

var (
	// ErrSyntax is returned for malformed statements.
	ErrSyntax = errors.New("qasm: syntax error")
	// ErrUnsupported is returned for valid statements outside the unitary
	// subset, such as reset or classically controlled gates.
	ErrUnsupported = errors.New("qasm: unsupported statement")
)

// Pre-compiled regexps for QASM parsing.
var (
	headerRegex      = regexp.MustCompile(`^(OPENQASM\s+\d+(\.\d+)?|include\s+"[^"]*")$`)
	qregRegex        = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	cregRegex        = regexp.MustCompile(`^creg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	measureRegex     = regexp.MustCompile(`^measure\s+(\w+)(?:\s*\[\s*(\d+)\s*\])?\s*->\s*(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
	barrierRegex     = regexp.MustCompile(`^barrier\b`)
	unsupportedRegex = regexp.MustCompile(`^(reset|if|gate|opaque)\b`)
	gateRegex        = regexp.MustCompile(`^([a-zA-Z_]\w*)\s*(?:\(([^)]*)\))?\s+(.+)$`)
	argRegex         = regexp.MustCompile(`^(\w+)(?:\s*\[\s*(\d+)\s*\])?$`)
)

// gateDef maps a QASM gate name onto an operation constructor.
type gateDef struct {
	qubits int // -1 for any number of at least two
	params int
	build  func(w []int, p []float64) (ops.Operation, error)
}

func fixed(fn func(w []int, p []float64) ops.Operation) func([]int, []float64) (ops.Operation, error) {
	return func(w []int, p []float64) (ops.Operation, error) { return fn(w, p), nil }
}

var gateDefs = map[string]gateDef{
	"id":  {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.Identity(w[0]) })},
	"h":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.Hadamard(w[0]) })},
	"x":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.PauliX(w[0]) })},
	"y":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.PauliY(w[0]) })},
	"z":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.PauliZ(w[0]) })},
	"s":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.S(w[0]) })},
	"t":   {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.T(w[0]) })},
	"sx":  {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.SX(w[0]) })},
	"sdg": {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.PhaseShift(-math.Pi/2, w[0]) })},
	"tdg": {1, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.PhaseShift(-math.Pi/4, w[0]) })},
	"rx":  {1, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.RX(p[0], w[0]) })},
	"ry":  {1, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.RY(p[0], w[0]) })},
	"rz":  {1, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.RZ(p[0], w[0]) })},
	"p":   {1, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.PhaseShift(p[0], w[0]) })},
	"u1":  {1, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.PhaseShift(p[0], w[0]) })},
	// u2(phi, lambda) = u3(pi/2, phi, lambda)
	"u2": {1, 2, fixed(func(w []int, p []float64) ops.Operation { return ops.Rot(p[1], math.Pi/2, p[0], w[0]) })},
	// u3(theta, phi, lambda) = RZ(phi) RY(theta) RZ(lambda) up to phase
	"u3":   {1, 3, fixed(func(w []int, p []float64) ops.Operation { return ops.Rot(p[2], p[0], p[1], w[0]) })},
	"u":    {1, 3, fixed(func(w []int, p []float64) ops.Operation { return ops.Rot(p[2], p[0], p[1], w[0]) })},
	"cx":   {2, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.CNOT(w[0], w[1]) })},
	"CX":   {2, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.CNOT(w[0], w[1]) })},
	"cy":   {2, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.CY(w[0], w[1]) })},
	"cz":   {2, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.CZ(w[0], w[1]) })},
	"swap": {2, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.SWAP(w[0], w[1]) })},
	"crx":  {2, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.CRX(p[0], w[0], w[1]) })},
	"cry":  {2, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.CRY(p[0], w[0], w[1]) })},
	"crz":  {2, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.CRZ(p[0], w[0], w[1]) })},
	"cp":   {2, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.ControlledPhaseShift(p[0], w[0], w[1]) })},
	"cu1":  {2, 1, fixed(func(w []int, p []float64) ops.Operation { return ops.ControlledPhaseShift(p[0], w[0], w[1]) })},
	"ccx":  {3, 0, fixed(func(w []int, _ []float64) ops.Operation { return ops.Toffoli(w[0], w[1], w[2]) })},
	"mcx": {-1, 0, func(w []int, _ []float64) (ops.Operation, error) {
		return ops.MultiControlledX(w[:len(w)-1], w[len(w)-1], "", nil)
	}},
}

// MaxRegisterSize bounds the size of a single qreg or creg.
const MaxRegisterSize = 1024

// register is a declared qreg or creg, laid out after earlier registers.
type register struct {
	offset int
	size   int
}

// parser holds the state of one Parse call.
type parser struct {
	qregs    map[string]register
	cregs    map[string]register
	numQubit int
	numCbit  int

	rec      *tape.Recorder
	measured []int
	seen     map[int]bool
}

// Parse reads an OpenQASM 2.0 program into a tape.
func Parse(src string) (*tape.Tape, error) {
	p := &parser{
		qregs: make(map[string]register),
		cregs: make(map[string]register),
		rec:   tape.NewRecorder(),
		seen:  make(map[int]bool),
	}
	p.rec.StartRecording()

	for lineNo, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := p.statement(stmt); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
		}
	}

	if len(p.measured) > 0 {
		p.rec.Measure(ops.SampleOf(p.measured...))
	}
	return p.rec.Tape(), nil
}

func (p *parser) statement(stmt string) error {
	switch {
	case headerRegex.MatchString(stmt):
		return nil
	case barrierRegex.MatchString(stmt):
		return nil
	case unsupportedRegex.MatchString(stmt):
		return fmt.Errorf("%q: %w", stmt, ErrUnsupported)
	}

	if m := qregRegex.FindStringSubmatch(stmt); m != nil {
		size, err := registerSize(m[1], m[2])
		if err != nil {
			return err
		}
		p.qregs[m[1]] = register{offset: p.numQubit, size: size}
		p.numQubit += size
		return nil
	}
	if m := cregRegex.FindStringSubmatch(stmt); m != nil {
		size, err := registerSize(m[1], m[2])
		if err != nil {
			return err
		}
		p.cregs[m[1]] = register{offset: p.numCbit, size: size}
		p.numCbit += size
		return nil
	}
	if m := measureRegex.FindStringSubmatch(stmt); m != nil {
		return p.measure(m)
	}
	if m := gateRegex.FindStringSubmatch(stmt); m != nil {
		return p.gate(m[1], m[2], m[3])
	}
	return fmt.Errorf("%q: %w", stmt, ErrSyntax)
}

func registerSize(name, digits string) (int, error) {
	size, err := strconv.Atoi(digits)
	if err != nil || size > MaxRegisterSize {
		return 0, fmt.Errorf("register %s[%s] larger than %d: %w", name, digits, MaxRegisterSize, ErrSyntax)
	}
	return size, nil
}

// index parses a register index and checks it against the register size.
func index(name, digits string, reg register) (int, error) {
	idx, err := strconv.Atoi(digits)
	if err != nil || idx >= reg.size {
		return 0, fmt.Errorf("%s[%s] out of range (size %d): %w", name, digits, reg.size, ErrSyntax)
	}
	return idx, nil
}

// qubits resolves one argument to wires: q[i] to one wire, q to the whole
// register.
func (p *parser) qubits(arg string) ([]int, error) {
	m := argRegex.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return nil, fmt.Errorf("argument %q: %w", arg, ErrSyntax)
	}
	reg, ok := p.qregs[m[1]]
	if !ok {
		return nil, fmt.Errorf("unknown qreg %q: %w", m[1], ErrSyntax)
	}
	if m[2] == "" {
		wires := make([]int, reg.size)
		for i := range wires {
			wires[i] = reg.offset + i
		}
		return wires, nil
	}
	idx, err := index(m[1], m[2], reg)
	if err != nil {
		return nil, err
	}
	return []int{reg.offset + idx}, nil
}

func (p *parser) measure(m []string) error {
	arg := m[1]
	if m[2] != "" {
		arg += "[" + m[2] + "]"
	}
	wires, err := p.qubits(arg)
	if err != nil {
		return err
	}
	creg, ok := p.cregs[m[3]]
	if !ok {
		return fmt.Errorf("unknown creg %q: %w", m[3], ErrSyntax)
	}
	if m[4] == "" && creg.size != len(wires) {
		return fmt.Errorf("measure %s -> %s: register sizes differ: %w", m[1], m[3], ErrSyntax)
	}
	if m[4] != "" {
		if _, err := index(m[3], m[4], creg); err != nil {
			return err
		}
	}
	for _, w := range wires {
		if !p.seen[w] {
			p.seen[w] = true
			p.measured = append(p.measured, w)
		}
	}
	return nil
}

func (p *parser) gate(name, paramList, argList string) error {
	def, ok := gateDefs[name]
	if !ok {
		return fmt.Errorf("gate %q: %w", name, ErrUnsupported)
	}

	var params []float64
	if strings.TrimSpace(paramList) != "" {
		for _, part := range strings.Split(paramList, ",") {
			val, err := ParseParam(part)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			params = append(params, val)
		}
	}
	if len(params) != def.params {
		return fmt.Errorf("%s takes %d parameters, got %d: %w", name, def.params, len(params), ErrSyntax)
	}

	args := strings.Split(argList, ",")
	resolved := make([][]int, len(args))
	for i, arg := range args {
		wires, err := p.qubits(arg)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		resolved[i] = wires
	}

	switch {
	case def.qubits == 1 && len(resolved) == 1:
		// h q; applies h to every qubit of q.
		for _, w := range resolved[0] {
			if err := p.apply(name, def, []int{w}, params); err != nil {
				return err
			}
		}
		return nil
	case def.qubits == -1 && len(resolved) < 2:
		return fmt.Errorf("%s needs at least 2 qubits: %w", name, ErrSyntax)
	case def.qubits > 0 && len(resolved) != def.qubits:
		return fmt.Errorf("%s takes %d qubits, got %d: %w", name, def.qubits, len(resolved), ErrSyntax)
	}

	wires := make([]int, len(resolved))
	for i, r := range resolved {
		if len(r) != 1 {
			return fmt.Errorf("%s: register arguments are only supported for single-qubit gates: %w", name, ErrUnsupported)
		}
		wires[i] = r[0]
	}
	return p.apply(name, def, wires, params)
}

func (p *parser) apply(name string, def gateDef, wires []int, params []float64) error {
	if !ops.Wires(wires).Unique() {
		return fmt.Errorf("%s on repeated qubits %v: %w", name, wires, ErrSyntax)
	}
	for _, w := range wires {
		if p.seen[w] {
			return fmt.Errorf("%s on q[%d] after measurement: %w", name, w, ErrUnsupported)
		}
	}
	op, err := def.build(wires, params)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p.rec.Apply(op)
	return nil
}
