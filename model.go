package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtermtape/qasm"
	"qtermtape/sim"
	"qtermtape/tape"
	"qtermtape/transforms"
)

// exampleQASM is loaded when the TUI starts without a file.
const exampleQASM = `OPENQASM 2.0;
include "qelib1.inc";

qreg q[2];
creg c[2];

h q[0];
rz(pi/4) q[0];
rx(pi/2) q[0];
cx q[0], q[1];
ry(0.3) q[1];
rz(-0.3) q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

// liveFidelityMaxWires caps the circuits checked while editing. Larger
// circuits are left to `qtape verify`.
const liveFidelityMaxWires = 8

// fidelityMsg delivers a background fidelity check for refresh number gen.
type fidelityMsg struct {
	gen      int
	fidelity float64
	err      error
}

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusQASM focus = iota
	focusCircuit
	focusMenu
	focusInputParam
)

// Model is the TUI state: a QASM editor on the left, the recorded and
// fused circuits on the right.
type Model struct {
	qasmEditor   textarea.Model
	focus        focus
	width        int
	height       int
	lastQASM     string
	statusMsg    string // transient status message (e.g. save confirmation)
	viewStartCol int    // first drawing column currently visible

	defaults transforms.FusionOptions
	opts     transforms.FusionOptions
	decimals int

	original   *tape.Tape
	fused      *tape.Tape
	err        error // parse or fusion error of the current editor contents
	fidelity   float64
	fidelityOK bool
	checking   bool    // fidelity check in flight
	gen        int     // bumped on every successful refresh
	startCmd   tea.Cmd // first fidelity check, returned by Init

	// Exclusion picker state
	menuCat  int
	menuItem int

	paramInput string
}

func newModel(src string, cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.SetValue(src)
	ta.Focus()

	m := Model{
		qasmEditor: ta,
		focus:      focusQASM,
		defaults:   cfg.FusionOptions(),
		opts:       cfg.FusionOptions(),
		decimals:   cfg.Draw.Decimals,
	}
	m.startCmd = m.refresh()
	return m
}

// refresh re-parses the editor and re-runs fusion. On error the last good
// circuits stay on screen. The returned command checks the fidelity of the
// new pair off the update loop; it is nil when there is nothing to check.
func (m *Model) refresh() tea.Cmd {
	src := m.qasmEditor.Value()
	m.lastQASM = src

	original, err := qasm.Parse(src)
	if err != nil {
		m.err = err
		return nil
	}
	fused, err := transforms.SingleQubitFusion(original, m.opts)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.original = original
	m.fused = fused

	m.gen++
	m.fidelityOK = false
	m.checking = false
	if max(original.NumWires(), fused.NumWires()) > liveFidelityMaxWires {
		return nil
	}
	m.checking = true
	return checkFidelity(m.gen, original, fused)
}

// checkFidelity compares the unitaries of original and fused.
func checkFidelity(gen int, original, fused *tape.Tape) tea.Cmd {
	return func() tea.Msg {
		f, err := sim.Fidelity(original, fused)
		return fidelityMsg{gen: gen, fidelity: f, err: err}
	}
}

func (m *Model) parseQASMInput() tea.Cmd {
	if m.qasmEditor.Value() != m.lastQASM {
		return m.refresh()
	}
	return nil
}

// isExcluded reports whether gate name is excluded from fusion.
func (m *Model) isExcluded(name string) bool {
	return slices.Contains(m.opts.Exclude, name)
}

// toggleExclude adds or removes name from the fusion exclusions.
func (m *Model) toggleExclude(name string) tea.Cmd {
	if m.isExcluded(name) {
		m.opts.Exclude = slices.DeleteFunc(slices.Clone(m.opts.Exclude), func(n string) bool { return n == name })
		m.statusMsg = fmt.Sprintf("Fusing %s", name)
	} else {
		m.opts.Exclude = append(slices.Clone(m.opts.Exclude), name)
		m.statusMsg = fmt.Sprintf("Excluded %s", name)
	}
	return m.refresh()
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.startCmd)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case fidelityMsg:
		// Results for circuits that have since changed are dropped.
		if msg.gen == m.gen {
			m.checking = false
			m.fidelity, m.fidelityOK = msg.fidelity, msg.err == nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-6, 20)
		m.qasmEditor.SetWidth(qasmW)
		ctrlH := 6
		editorH := max(msg.Height-ctrlH-8, 4)
		m.qasmEditor.SetHeight(editorH)

	case tea.KeyMsg:
		key := msg.String()
		if m.focus != focusQASM {
			m.statusMsg = ""
		}

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusQASM
				cmds = append(cmds, m.qasmEditor.Focus())
			case "left", "h":
				m.viewStartCol = max(m.viewStartCol-scrollStep, 0)
			case "right", "l":
				m.viewStartCol += scrollStep
			case "home":
				m.viewStartCol = 0
			case "x":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "a":
				m.paramInput = ""
				m.focus = focusInputParam
			case "ctrl+r":
				m.opts = m.defaults
				m.statusMsg = "Fusion options reset"
				cmds = append(cmds, m.refresh())
			case "ctrl+s":
				m.statusMsg = m.saveFused("fused.qasm")
			}

		case focusMenu:
			switch key {
			case "esc", "x":
				m.focus = focusCircuit
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(exclusionMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(exclusionMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter", " ":
				cmds = append(cmds, m.toggleExclude(exclusionMenu[m.menuCat].items[m.menuItem].gateName))
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusCircuit
				m.paramInput = ""
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				atol, err := qasm.ParseParam(m.paramInput)
				if err != nil || atol < 0 {
					m.statusMsg = "Invalid tolerance: use a non-negative number (e.g. 1e-8, 0.01, pi/64)"
					break
				}
				m.opts.Atol = atol
				m.statusMsg = fmt.Sprintf("atol = %g", atol)
				m.paramInput = ""
				m.focus = focusCircuit
				cmds = append(cmds, m.refresh())
			default:
				if len(key) == 1 && strings.ContainsAny(key, "0123456789.-+eEpi*/") {
					m.paramInput += key
				}
			}

		case focusQASM:
			switch key {
			case "tab":
				m.focus = focusCircuit
				m.qasmEditor.Blur()
			default:
				var cmd tea.Cmd
				m.qasmEditor, cmd = m.qasmEditor.Update(msg)
				cmds = append(cmds, cmd, m.parseQASMInput())
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// saveFused writes the fused circuit as QASM and returns a status message.
func (m Model) saveFused(path string) string {
	if m.fused == nil {
		return "Nothing to save"
	}
	src, err := qasm.Emit(m.fused)
	if err != nil {
		return fmt.Sprintf("Save error: %v", err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Sprintf("Save error: %v", err)
	}
	return "Saved " + path
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	qasmWidth := m.width / 3
	rightWidth := m.width - qasmWidth - 4
	controlsHeight := 6
	mainHeight := max(m.height-controlsHeight-2, 12)
	statsHeight := 7
	circuitHeight := max((mainHeight-statsHeight)/2, 4)

	original := m.renderCircuitPanel("Recorded", m.original, originalStyle, rightWidth, circuitHeight)
	fused := m.renderCircuitPanel("Fused", m.fused, fusedStyle, rightWidth, circuitHeight)
	stats := m.renderStatsPanel(rightWidth, statsHeight-2)
	right := lipgloss.JoinVertical(lipgloss.Left, original, fused, stats)

	qasmPanel := m.renderQASMPanel(qasmWidth, lipgloss.Height(right)-2)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, qasmPanel, right)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	}

	return frame
}

// renderParamInput renders the tolerance input overlay.
func (m Model) renderParamInput() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Fusion Tolerance"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "atol: %s_", m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("Current: %g   Examples: 1e-8, 0.01, pi/64", m.opts.Atol)))
	return menuBorderStyle.Render(sb.String())
}
