// Package draw renders tapes as text diagrams, one line per wire.
//
// Operations are placed in as-soon-as-possible columns, so gates on
// disjoint wires share a column:
//
//	0: ──H──╭●──┤ Sample
//	1: ─────╰X──┤ Sample
package draw

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qtermtape/ops"
	"qtermtape/tape"
)

// DefaultDecimals is the parameter precision used when none is configured.
const DefaultDecimals = 2

// shortNames maps gate names to the label drawn on their wire.
var shortNames = map[string]string{
	ops.NameIdentity:             "I",
	ops.NameHadamard:             "H",
	ops.NamePauliX:               "X",
	ops.NamePauliY:               "Y",
	ops.NamePauliZ:               "Z",
	ops.NameS:                    "S",
	ops.NameT:                    "T",
	ops.NameSX:                   "SX",
	ops.NameRX:                   "RX",
	ops.NameRY:                   "RY",
	ops.NameRZ:                   "RZ",
	ops.NamePhaseShift:           "Rϕ",
	ops.NameRot:                  "Rot",
	ops.NameCNOT:                 "X",
	ops.NameCY:                   "Y",
	ops.NameCZ:                   "Z",
	ops.NameCRX:                  "RX",
	ops.NameCRY:                  "RY",
	ops.NameCRZ:                  "RZ",
	ops.NameControlledPhaseShift: "Rϕ",
	ops.NameToffoli:              "X",
	ops.NameMultiControlledX:     "X",
}

// Tape draws t with parameters rounded to decimals places. A negative
// decimals hides parameters.
func Tape(t *tape.Tape, decimals int) string {
	numWires := t.NumWires()
	if numWires == 0 {
		return ""
	}

	layers := tape.FromTape(t).Layers()
	grid := make([][]string, len(layers))
	for col, layer := range layers {
		grid[col] = make([]string, numWires)
		for _, node := range layer {
			placeOp(grid[col], node.Op, decimals)
		}
	}

	widths := make([]int, len(grid))
	for col, cells := range grid {
		for _, cell := range cells {
			widths[col] = max(widths[col], lipgloss.Width(cell))
		}
	}

	meas := measurementLabels(t, numWires)
	labelW := len(strconv.Itoa(numWires - 1))

	var sb strings.Builder
	for w := range numWires {
		fmt.Fprintf(&sb, "%*d: ", labelW, w)
		for col := range grid {
			sb.WriteString("──")
			sb.WriteString(padCenter(grid[col][w], widths[col], "─"))
		}
		sb.WriteString("──┤")
		if len(meas[w]) > 0 {
			sb.WriteString(" ")
			sb.WriteString(strings.Join(meas[w], " "))
		}
		if w < numWires-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// placeOp writes op's symbols into one column of the grid. Wires crossed by
// a multi-wire connector but not acted on get a pass-through.
func placeOp(cells []string, op ops.Operation, decimals int) {
	wires := op.Wires()
	if len(wires) == 0 {
		return
	}
	lo, hi := wires.Min(), wires.Max()
	for w := lo + 1; w < hi; w++ {
		if !wires.Contains(w) && cells[w] == "" {
			cells[w] = "│"
		}
	}

	if len(wires) == 1 {
		cells[wires[0]] = Label(op, decimals)
		return
	}

	if op.Name() == ops.NameSWAP {
		for _, w := range wires {
			cells[w] = bracket(w, lo, hi) + "×"
		}
		return
	}

	if c, ok := ops.ControlledOf(op); ok {
		for i, w := range c.Controls {
			sym := "●"
			if !c.Values[i] {
				sym = "○"
			}
			cells[w] = bracket(w, lo, hi) + sym
		}
		cells[c.Target] = bracket(c.Target, lo, hi) + Label(op, decimals)
		return
	}

	label := Label(op, decimals)
	for _, w := range wires {
		cells[w] = bracket(w, lo, hi) + label
	}
}

// bracket returns the connector drawn before a symbol on wire w of a gate
// spanning lo..hi.
func bracket(w, lo, hi int) string {
	switch w {
	case lo:
		return "╭"
	case hi:
		return "╰"
	default:
		return "├"
	}
}

// Label returns the text drawn for a single-wire operation, or for a
// composite operation on each of its wires.
func Label(op ops.Operation, decimals int) string {
	name, ok := shortNames[op.Name()]
	if !ok {
		name = op.Name()
	}
	return name + formatParams(op.Params(), decimals)
}

func formatParams(params []float64, decimals int) string {
	if len(params) == 0 || decimals < 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strconv.FormatFloat(p, 'f', decimals, 64)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// measurementLabels returns, per wire, the labels of the measurements that
// read it.
func measurementLabels(t *tape.Tape, numWires int) [][]string {
	labels := make([][]string, numWires)
	for _, m := range t.Measurements() {
		var label string
		var wires ops.Wires
		switch m.Kind {
		case ops.Expval, ops.Var:
			obs := shortNames[m.Observable.Name()]
			if obs == "" {
				obs = m.Observable.Name()
			}
			if m.Kind == ops.Expval {
				label = "⟨" + obs + "⟩"
			} else {
				label = "Var[" + obs + "]"
			}
			wires = m.Observable.Wires()
		default:
			label = strings.ToUpper(m.Kind.String()[:1]) + m.Kind.String()[1:]
			wires = m.Wires()
		}
		if len(wires) == 0 {
			for w := range numWires {
				labels[w] = append(labels[w], label)
			}
			continue
		}
		for _, w := range wires {
			if w >= 0 && w < numWires {
				labels[w] = append(labels[w], label)
			}
		}
	}
	return labels
}

// padCenter centres s within width columns, filling with fill.
func padCenter(s string, width int, fill string) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	total := width - n
	left := total / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, total-left)
}
