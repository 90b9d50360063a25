// Package transforms holds circuit-rewriting passes over tapes.
package transforms

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"qtermtape/ops"
	"qtermtape/qmath"
	"qtermtape/tape"
)

// DefaultAtol is the default tolerance under which a fused rotation is
// treated as the identity.
const DefaultAtol = 1e-8

var (
	// ErrInvalidTolerance is returned for a negative atol.
	ErrInvalidTolerance = errors.New("transforms: atol must be non-negative")
	// ErrMalformedAngles is returned when a gate reports something other than
	// three finite rotation angles.
	ErrMalformedAngles = errors.New("transforms: malformed rotation angles")
)

// FusionOptions configures SingleQubitFusion.
type FusionOptions struct {
	// Atol is the absolute tolerance for dropping a fused rotation: when
	// every fused angle satisfies |angle| <= Atol no gate is emitted.
	Atol float64
	// Exclude lists gate names that are never fused.
	Exclude []string
	// Logger receives a debug record per emitted or dropped rotation.
	// Nil disables logging.
	Logger *slog.Logger
}

// DefaultFusionOptions returns options with the default tolerance and no
// exclusions.
func DefaultFusionOptions() FusionOptions {
	return FusionOptions{Atol: DefaultAtol}
}

// SingleQubitFusion fuses groups of single-qubit operations acting on the
// same wire into one general rotation (Rot).
//
// Only operations that report rotation angles (ops.RotationAngler) take part.
// Walking the tape from the front, each fusible operation absorbs the next
// operations on its wire for as long as they act on exactly the same wires,
// are not excluded and are fusible themselves. Operations on other wires in
// between stay where they are. A fused rotation whose angles are all within
// Atol of zero is dropped. Measurements are copied unchanged.
//
// For example
//
//	0: ──H──Rot(0.1, 0.2, 0.3)──Rot(0.4, 0.5, 0.6)──RZ(0.1)──RZ(0.4)──┤
//
// becomes
//
//	0: ──H──Rot(φ, θ, ω)──┤
//
// where Rot(φ, θ, ω) equals the product of the four rotations up to a
// global phase.
func SingleQubitFusion(t *tape.Tape, opts FusionOptions) (*tape.Tape, error) {
	if opts.Atol < 0 {
		return nil, fmt.Errorf("atol %g: %w", opts.Atol, ErrInvalidTolerance)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		if !ops.Known(name) {
			return nil, fmt.Errorf("exclude %q: %w", name, ops.ErrUnknownGate)
		}
		excluded[name] = true
	}

	rec := tape.NewRecorder()
	rec.StartRecording()
	defer rec.StopRecording()

	// Working copy of the list to traverse.
	list := t.Operations()

	for len(list) > 0 {
		current := list[0]

		if excluded[current.Name()] {
			rec.Apply(current)
			list = list[1:]
			continue
		}

		cumulative, ok, err := rotationAngles(current)
		if err != nil {
			return nil, err
		}
		if !ok {
			rec.Apply(current)
			list = list[1:]
			continue
		}

		wires := current.Wires()
		fused := 1
		next := FindNextGate(wires, list[1:])

		for next >= 0 {
			nextOp := list[next+1]
			if !wires.Equal(nextOp.Wires()) || excluded[nextOp.Name()] {
				break
			}
			nextAngles, ok, err := rotationAngles(nextOp)
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			nextAngles, err = qmath.CastLike(nextAngles, cumulative)
			if err != nil {
				return nil, err
			}
			cumulative, err = FuseRotAngles(cumulative, nextAngles)
			if err != nil {
				return nil, fmt.Errorf("fusing %s into wire %d: %w", nextOp.Name(), wires[0], err)
			}

			list = slices.Delete(list, next+1, next+2)
			fused++
			next = FindNextGate(wires, list[1:])
		}

		identity, err := qmath.AllClose(cumulative, qmath.Zeros(3), 0, opts.Atol)
		if err != nil {
			return nil, err
		}
		if identity {
			logger.Debug("dropped identity rotation", "wire", wires[0], "fused", fused)
		} else {
			rec.Apply(ops.Rot(cumulative[0], cumulative[1], cumulative[2], wires[0]))
			logger.Debug("fused rotation", "wire", wires[0], "fused", fused,
				"phi", cumulative[0], "theta", cumulative[1], "omega", cumulative[2])
		}

		list = list[1:]
	}

	for _, m := range t.Measurements() {
		rec.Measure(m)
	}
	return rec.Tape(), nil
}

// SingleQubitFusionTransform wraps SingleQubitFusion as a tape.Transform.
func SingleQubitFusionTransform(opts FusionOptions) tape.Transform {
	return func(t *tape.Tape) (*tape.Tape, error) {
		return SingleQubitFusion(t, opts)
	}
}

// rotationAngles returns the rotation angles of a single-wire op. Ops that
// act on anything other than exactly one wire opt out of fusion.
func rotationAngles(op ops.Operation) (qmath.Vector, bool, error) {
	if len(op.Wires()) != 1 {
		return nil, false, nil
	}
	angles, ok := ops.RotAngles(op)
	if !ok {
		return nil, false, nil
	}
	v := qmath.Stack(angles...)
	if v.Len() != 3 {
		return nil, false, fmt.Errorf("%s reported %d angles: %w", op.Name(), v.Len(), ErrMalformedAngles)
	}
	if err := qmath.RequireFinite(v); err != nil {
		return nil, false, fmt.Errorf("%s: %w: %w", op.Name(), ErrMalformedAngles, err)
	}
	return v, true, nil
}
