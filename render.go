package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"qtermtape/draw"
	"qtermtape/tape"
)

// ──────────────────────────── Panel rendering ────────────────────────────

// renderCircuitPanel renders a tape drawing, scrolled to viewStartCol.
// Wire labels stay pinned on the left.
func (m Model) renderCircuitPanel(title string, t *tape.Tape, style lipgloss.Style, width, height int) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(title))
	if t != nil {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d ops, depth %d", t.Len(), tape.FromTape(t).Depth())))
	}
	sb.WriteString("\n")

	if t == nil || t.NumWires() == 0 {
		sb.WriteString(dimStyle.Render("(empty circuit)"))
		return style.Width(width).Height(height).Render(sb.String())
	}

	if m.viewStartCol > 0 {
		fmt.Fprintf(&sb, "%s\n", dimStyle.Render(fmt.Sprintf("◀ showing from column %d", m.viewStartCol)))
	}

	avail := max(width-4, 8)
	for _, line := range strings.Split(draw.Tape(t, m.decimals), "\n") {
		label, wire, ok := strings.Cut(line, ": ")
		if !ok {
			sb.WriteString(line + "\n")
			continue
		}
		label += ": "
		rest := avail - len(label)
		sb.WriteString(qubitLabelStyle.Render(label))
		sb.WriteString(ansi.Cut(wire, m.viewStartCol, m.viewStartCol+rest))
		sb.WriteString("\n")
	}

	return style.Width(width).Height(height).Render(strings.TrimRight(sb.String(), "\n"))
}

// renderStatsPanel renders the fusion summary and status line.
func (m Model) renderStatsPanel(width, height int) string {
	var sb strings.Builder

	if m.original != nil && m.fused != nil {
		fmt.Fprintf(&sb, "Operations: %d → %s", m.original.Len(), gateStyle.Render(fmt.Sprint(m.fused.Len())))
		switch {
		case m.checking:
			sb.WriteString(dimStyle.Render("   Fidelity: checking..."))
		case m.fidelityOK:
			fid := fmt.Sprintf("%.9f", m.fidelity)
			if 1-m.fidelity <= DefaultVerifyTolerance {
				fid = okStyle.Render(fid + " ✓")
			} else {
				fid = errorStyle.Render(fid + " ✗")
			}
			fmt.Fprintf(&sb, "   Fidelity: %s", fid)
		default:
			sb.WriteString(dimStyle.Render(fmt.Sprintf("   Fidelity: not checked above %d wires (use qtape verify)", liveFidelityMaxWires)))
		}
		sb.WriteString("\n")
	}

	exclude := "none"
	if len(m.opts.Exclude) > 0 {
		exclude = strings.Join(m.opts.Exclude, ", ")
	}
	fmt.Fprintf(&sb, "atol: %s   exclude: %s\n",
		activeGateStyle.Render(fmt.Sprintf("%g", m.opts.Atol)), activeGateStyle.Render(exclude))

	switch {
	case m.err != nil:
		sb.WriteString(errorStyle.Render(m.err.Error()))
	case m.statusMsg != "":
		sb.WriteString(activeGateStyle.Render(m.statusMsg))
	}

	return statsStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM editor panel.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Editor"
	if m.focus == focusQASM {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmEditor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Circuits: "))
	sb.WriteString("←→/hl Scroll  Home Start  ")
	sb.WriteString(activeGateStyle.Render("x"))
	sb.WriteString(" Exclude gates  ")
	sb.WriteString(activeGateStyle.Render("a"))
	sb.WriteString(" Set atol\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Switch focus  ^R Reset options  ^S Save fused.qasm  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at
// visible position (x, y). ANSI sequences in both are preserved.
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces visible columns starting at x in bgLine with
// overlay, padding short lines with spaces.
func spliceLineAt(bgLine, overlay string, x int) string {
	if w := ansi.StringWidth(bgLine); w < x {
		bgLine += strings.Repeat(" ", x-w)
	}
	prefix := ansi.Truncate(bgLine, x, "")
	suffix := ansi.TruncateLeft(bgLine, x+ansi.StringWidth(overlay), "")
	return prefix + overlay + suffix
}
