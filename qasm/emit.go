package qasm

import (
	"fmt"
	"strings"

	"qtermtape/ops"
	"qtermtape/tape"
)

// qasmNames maps gate names to their qelib1.inc spelling.
var qasmNames = map[string]string{
	ops.NameIdentity:             "id",
	ops.NameHadamard:             "h",
	ops.NamePauliX:               "x",
	ops.NamePauliY:               "y",
	ops.NamePauliZ:               "z",
	ops.NameS:                    "s",
	ops.NameT:                    "t",
	ops.NameSX:                   "sx",
	ops.NameRX:                   "rx",
	ops.NameRY:                   "ry",
	ops.NameRZ:                   "rz",
	ops.NamePhaseShift:           "u1",
	ops.NameCNOT:                 "cx",
	ops.NameCY:                   "cy",
	ops.NameCZ:                   "cz",
	ops.NameSWAP:                 "swap",
	ops.NameCRX:                  "crx",
	ops.NameCRY:                  "cry",
	ops.NameCRZ:                  "crz",
	ops.NameControlledPhaseShift: "cu1",
	ops.NameToffoli:              "ccx",
}

// Emit writes t as an OpenQASM 2.0 program on a single register q.
// Composite operations are written as their decomposition. Sample and
// probability measurements become measure statements into register c; other
// measurement kinds have no QASM form.
func Emit(t *tape.Tape) (string, error) {
	expanded, err := t.Expand()
	if err != nil {
		return "", err
	}
	numQubits := max(expanded.NumWires(), 1)

	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", numQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", numQubits)

	for _, op := range expanded.Operations() {
		if err := writeOp(&sb, op); err != nil {
			return "", err
		}
	}

	for _, m := range expanded.Measurements() {
		if m.Kind != ops.Sample && m.Kind != ops.Probs {
			return "", fmt.Errorf("measurement %s: %w", m, ErrUnsupported)
		}
		wires := m.Wires()
		if len(wires) == 0 {
			wires = expanded.Wires()
		}
		for _, w := range wires {
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", w, w)
		}
	}
	return sb.String(), nil
}

// writeOp writes a single operation's QASM representation.
func writeOp(sb *strings.Builder, op ops.Operation) error {
	wires := op.Wires()
	params := op.Params()

	switch op.Name() {
	case ops.NameRot:
		// Rot(phi, theta, omega) = u3(theta, omega, phi) up to phase.
		fmt.Fprintf(sb, "u3(%s, %s, %s) q[%d];\n",
			FormatParam(params[1]), FormatParam(params[2]), FormatParam(params[0]), wires[0])
		return nil
	case ops.NameMultiControlledX:
		return writeMCX(sb, op)
	}

	name, ok := qasmNames[op.Name()]
	if !ok {
		return fmt.Errorf("operation %s: %w", op.Name(), ErrUnsupported)
	}
	sb.WriteString(name)
	if len(params) > 0 {
		formatted := make([]string, len(params))
		for i, p := range params {
			formatted[i] = FormatParam(p)
		}
		fmt.Fprintf(sb, "(%s)", strings.Join(formatted, ", "))
	}
	writeArgs(sb, wires)
	return nil
}

// writeMCX writes a multi-controlled X, conjugating zero-valued controls
// with x gates.
func writeMCX(sb *strings.Builder, op ops.Operation) error {
	c, ok := ops.ControlledOf(op)
	if !ok {
		return fmt.Errorf("operation %s: %w", op.Name(), ErrUnsupported)
	}
	var flipped []int
	for i, w := range c.Controls {
		if !c.Values[i] {
			flipped = append(flipped, w)
		}
	}
	for _, w := range flipped {
		fmt.Fprintf(sb, "x q[%d];\n", w)
	}

	switch len(c.Controls) {
	case 1:
		sb.WriteString("cx")
	case 2:
		sb.WriteString("ccx")
	default:
		sb.WriteString("mcx")
	}
	writeArgs(sb, append(c.Controls.Clone(), c.Target))

	for _, w := range flipped {
		fmt.Fprintf(sb, "x q[%d];\n", w)
	}
	return nil
}

func writeArgs(sb *strings.Builder, wires ops.Wires) {
	for i, w := range wires {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "q[%d]", w)
	}
	sb.WriteString(";\n")
}
