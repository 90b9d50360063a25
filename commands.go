package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"qtermtape/draw"
	"qtermtape/ops"
	"qtermtape/qasm"
	"qtermtape/sim"
	"qtermtape/tape"
	"qtermtape/templates"
	"qtermtape/transforms"
)

// DefaultVerifyTolerance bounds |1 - fidelity| for verify.
const DefaultVerifyTolerance = 1e-6

// TapeJSON is the JSON form of a tape.
type TapeJSON struct {
	Operations   []ops.Operation   `json:"operations"`
	Measurements []ops.Measurement `json:"measurements"`
}

func newTapeJSON(t *tape.Tape) *TapeJSON {
	return &TapeJSON{Operations: t.Operations(), Measurements: t.Measurements()}
}

// ──────────────────────────── fuse ────────────────────────────

// FuseResult is the output of the fuse command.
type FuseResult struct {
	OpsBefore int       `json:"ops_before"`
	OpsAfter  int       `json:"ops_after"`
	Output    string    `json:"output,omitempty"`
	Tape      *TapeJSON `json:"tape,omitempty"`
}

func (r FuseResult) String() string {
	if r.Tape != nil {
		data, err := json.MarshalIndent(r.Tape, "", "  ")
		if err != nil {
			return err.Error()
		}
		return string(data)
	}
	return strings.TrimRight(r.Output, "\n")
}

var fuseOutputs = []string{"qasm", "text", "json"}

// NewFuseCommand creates the fuse command.
func NewFuseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		atol    float64
		exclude []string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "fuse [file|-]",
		Short: "Fuse single-qubit rotations in a QASM program",
		Long: `Read an OpenQASM 2.0 program, merge every run of adjacent single-qubit
rotations on the same wire into one Rot gate, and print the result.

Fused rotations whose angles are all within --atol of zero are removed.
Gates named by --exclude are never merged and split the runs around them.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			f := rootOpts.formatter(cmd)
			if !slices.Contains(fuseOutputs, output) {
				return f.Error(NewExitError(ExitCommandError, fmt.Sprintf("invalid output %q: must be one of %v", output, fuseOutputs)))
			}

			opts := rootOpts.config.FusionOptions()
			if cmd.Flags().Changed("atol") {
				opts.Atol = atol
			}
			if cmd.Flags().Changed("exclude") {
				opts.Exclude = exclude
			}

			in, err := loadTape(cmd, args)
			if err != nil {
				return f.Error(err)
			}
			fused, err := fuse(in, opts, rootOpts.logger)
			if err != nil {
				return f.Error(err)
			}

			result := FuseResult{OpsBefore: in.Len(), OpsAfter: fused.Len()}
			switch output {
			case "json":
				result.Tape = newTapeJSON(fused)
			case "text":
				result.Output = draw.Tape(fused, rootOpts.config.Draw.Decimals)
			default:
				src, err := qasm.Emit(fused)
				if err != nil {
					return f.Error(WrapExitError(ExitCommandError, "emit QASM", err))
				}
				result.Output = src
			}
			return f.Success(result)
		},
	}

	cmd.Flags().Float64Var(&atol, "atol", transforms.DefaultAtol, "drop fused rotations with all angles within atol of zero")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "gate names never merged (e.g. RZ,PhaseShift)")
	cmd.Flags().StringVarP(&output, "output", "o", "qasm", "result form (qasm|text|json)")

	return cmd
}

// fuse runs the fusion pass and logs the reduction.
func fuse(in *tape.Tape, opts transforms.FusionOptions, logger *slog.Logger) (*tape.Tape, error) {
	opts.Logger = logger
	fused, err := transforms.SingleQubitFusion(in, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "fuse", err)
	}
	logger.Info("fused tape", "ops_before", in.Len(), "ops_after", fused.Len(), "atol", opts.Atol)
	return fused, nil
}

// ──────────────────────────── draw ────────────────────────────

// DrawResult is the output of the draw command.
type DrawResult struct {
	Fused   bool   `json:"fused"`
	Drawing string `json:"drawing"`
}

func (r DrawResult) String() string { return r.Drawing }

// NewDrawCommand creates the draw command.
func NewDrawCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		fused    bool
		decimals int
	)

	cmd := &cobra.Command{
		Use:           "draw [file|-]",
		Short:         "Draw a QASM program as text, one line per wire",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			f := rootOpts.formatter(cmd)

			t, err := loadTape(cmd, args)
			if err != nil {
				return f.Error(err)
			}
			if fused {
				if t, err = fuse(t, rootOpts.config.FusionOptions(), rootOpts.logger); err != nil {
					return f.Error(err)
				}
			}
			if !cmd.Flags().Changed("decimals") {
				decimals = rootOpts.config.Draw.Decimals
			}
			return f.Success(DrawResult{Fused: fused, Drawing: draw.Tape(t, decimals)})
		},
	}

	cmd.Flags().BoolVar(&fused, "fused", false, "draw the circuit after fusion")
	cmd.Flags().IntVar(&decimals, "decimals", draw.DefaultDecimals, "parameter precision (negative hides parameters)")

	return cmd
}

// ──────────────────────────── verify ────────────────────────────

// VerifyResult is the output of the verify command.
type VerifyResult struct {
	Equivalent bool    `json:"equivalent"`
	Fidelity   float64 `json:"fidelity"`
	OpsBefore  int     `json:"ops_before"`
	OpsAfter   int     `json:"ops_after"`
}

func (r VerifyResult) String() string {
	mark, verdict := "✓", "equivalent"
	if !r.Equivalent {
		mark, verdict = "✗", "NOT equivalent"
	}
	return fmt.Sprintf("%s fused circuit is %s (fidelity %.9f, %d → %d operations)",
		mark, verdict, r.Fidelity, r.OpsBefore, r.OpsAfter)
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "verify [file|-]",
		Short: "Check that fusion preserves the circuit unitary",
		Long: `Fuse the program with the configured options and compare the unitaries
of the original and fused circuits by state-vector simulation.

Exits with status 1 when the fidelity differs from 1 by more than --tolerance.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			f := rootOpts.formatter(cmd)

			in, err := loadTape(cmd, args)
			if err != nil {
				return f.Error(err)
			}
			fused, err := fuse(in, rootOpts.config.FusionOptions(), rootOpts.logger)
			if err != nil {
				return f.Error(err)
			}
			fidelity, err := sim.Fidelity(in, fused)
			if err != nil {
				return f.Error(WrapExitError(ExitCommandError, "simulate", err))
			}

			result := VerifyResult{
				Equivalent: math.Abs(1-fidelity) <= tolerance,
				Fidelity:   fidelity,
				OpsBefore:  in.Len(),
				OpsAfter:   fused.Len(),
			}
			if err := f.Success(result); err != nil {
				return err
			}
			if !result.Equivalent {
				return NewExitError(ExitFailure, "fused circuit is not equivalent")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", DefaultVerifyTolerance, "allowed |1 - fidelity|")

	return cmd
}

// ──────────────────────────── template ────────────────────────────

// TemplateResult is the output of the template command.
type TemplateResult struct {
	Template string `json:"template"`
	Wires    int    `json:"wires"`
	Output   string `json:"output"`
}

func (r TemplateResult) String() string { return strings.TrimRight(r.Output, "\n") }

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		numWires int
		inverse  bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "template grover|qft",
		Short: "Print a circuit template as QASM or a drawing",
		Long: `Expand a template on wires 0..N-1 and print it.

grover is the Grover diffusion operator; qft is the quantum Fourier
transform (--inverse for its adjoint).`,
		Args:          cobra.ExactArgs(1),
		ValidArgs:     []string{"grover", "qft"},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			f := rootOpts.formatter(cmd)

			op, err := buildTemplate(args[0], numWires, inverse)
			if err != nil {
				return f.Error(WrapExitError(ExitCommandError, "template", err))
			}
			t, err := tape.New([]ops.Operation{op}, []ops.Measurement{ops.SampleOf()}).Expand()
			if err != nil {
				return f.Error(WrapExitError(ExitCommandError, "expand", err))
			}

			result := TemplateResult{Template: op.Name(), Wires: numWires}
			switch output {
			case "text":
				result.Output = draw.Tape(t, rootOpts.config.Draw.Decimals)
			case "qasm":
				if result.Output, err = qasm.Emit(t); err != nil {
					return f.Error(WrapExitError(ExitCommandError, "emit QASM", err))
				}
			default:
				return f.Error(NewExitError(ExitCommandError, fmt.Sprintf("invalid output %q: must be qasm or text", output)))
			}
			return f.Success(result)
		},
	}

	cmd.Flags().IntVarP(&numWires, "wires", "n", 3, "number of wires")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "use the adjoint (qft only)")
	cmd.Flags().StringVarP(&output, "output", "o", "qasm", "result form (qasm|text)")

	return cmd
}

func buildTemplate(name string, numWires int, inverse bool) (ops.Operation, error) {
	wires := make(ops.Wires, max(numWires, 0))
	for i := range wires {
		wires[i] = i
	}
	switch name {
	case "grover":
		if inverse {
			return nil, fmt.Errorf("--inverse applies to qft only")
		}
		g, err := templates.NewGroverOperator(wires, nil)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "qft":
		q, err := templates.NewQFT(wires)
		if err != nil {
			return nil, err
		}
		if inverse {
			return q.Adjoint(), nil
		}
		return q, nil
	default:
		return nil, fmt.Errorf("unknown template %q: must be grover or qft", name)
	}
}

// ──────────────────────────── tui ────────────────────────────

// NewTUICommand creates the tui command.
func NewTUICommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui [file]",
		Short:         "Edit QASM and watch the fused circuit update live",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			src := exampleQASM
			if len(args) == 1 {
				var err error
				if src, err = readSource(cmd, args); err != nil {
					return err
				}
			}
			p := tea.NewProgram(newModel(src, rootOpts.config), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return WrapExitError(ExitCommandError, "tui", err)
			}
			return nil
		},
	}
	return cmd
}

// ──────────────────────────── version ────────────────────────────

// VersionResult is the output of the version command.
type VersionResult struct {
	Version string `json:"version"`
}

func (r VersionResult) String() string { return "qtape " + r.Version }

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print the qtape version",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.setup(cmd); err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(VersionResult{Version: version})
		},
	}
}
