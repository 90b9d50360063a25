package qasm

import (
	"errors"
	"math"
	"strings"
	"testing"

	"qtermtape/ops"
	"qtermtape/sim"
	"qtermtape/tape"
)

func opNames(tp *tape.Tape) []string {
	var names []string
	for _, op := range tp.Operations() {
		names = append(names, op.Name())
	}
	return names
}

func TestParseBell(t *testing.T) {
	src := `OPENQASM 2.0;
include "qelib1.inc";

qreg q[3];
creg c[3];

h q[0];
cx q[0], q[1];
barrier q[0], q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];`

	tp, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	for _, op := range tp.Operations() {
		t.Logf("  %v", op)
	}

	got := strings.Join(opNames(tp), ",")
	if got != "Hadamard,CNOT" {
		t.Fatalf("expected Hadamard,CNOT, got %s", got)
	}
	if w := tp.Operations()[1].Wires(); !w.Equal(ops.Wires{0, 1}) {
		t.Errorf("CNOT wires: got %v", w)
	}

	meas := tp.Measurements()
	if len(meas) != 1 {
		t.Fatalf("expected 1 measurement, got %d", len(meas))
	}
	if meas[0].Kind != ops.Sample || !meas[0].Wires().Equal(ops.Wires{0, 1}) {
		t.Errorf("measurement: got %v", meas[0])
	}
}

func TestParseNamedRegisters(t *testing.T) {
	src := `OPENQASM 2.0;
qreg a[2];
qreg b[1];
creg out[1];
x a[1]; cx a[1], b[0]; // two statements on one line
measure b[0] -> out[0];`

	tp, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	list := tp.Operations()
	if len(list) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(list))
	}
	if w := list[1].Wires(); !w.Equal(ops.Wires{1, 2}) {
		t.Errorf("b[0] should be wire 2 after a[2], got CNOT on %v", w)
	}
	if w := tp.Measurements()[0].Wires(); !w.Equal(ops.Wires{2}) {
		t.Errorf("measured wires: got %v", w)
	}
}

func TestParseRegisterBroadcast(t *testing.T) {
	tp, err := Parse("qreg q[3];\ncreg c[3];\nh q;\nmeasure q -> c;")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := strings.Join(opNames(tp), ","); got != "Hadamard,Hadamard,Hadamard" {
		t.Errorf("got %s", got)
	}
	if w := tp.Measurements()[0].Wires(); !w.Equal(ops.Wires{0, 1, 2}) {
		t.Errorf("measured wires: got %v", w)
	}
}

func TestParseGateMapping(t *testing.T) {
	tests := []struct {
		stmt   string
		name   string
		wires  ops.Wires
		params []float64
	}{
		{"u3(0.2, 0.3, 0.1) q[0];", ops.NameRot, ops.Wires{0}, []float64{0.1, 0.2, 0.3}},
		{"u2(0.3, 0.1) q[0];", ops.NameRot, ops.Wires{0}, []float64{0.1, math.Pi / 2, 0.3}},
		{"u1(pi/8) q[1];", ops.NamePhaseShift, ops.Wires{1}, []float64{math.Pi / 8}},
		{"p(-pi) q[1];", ops.NamePhaseShift, ops.Wires{1}, []float64{-math.Pi}},
		{"sdg q[0];", ops.NamePhaseShift, ops.Wires{0}, []float64{-math.Pi / 2}},
		{"cu1(pi/4) q[1], q[0];", ops.NameControlledPhaseShift, ops.Wires{1, 0}, []float64{math.Pi / 4}},
		{"crx(pi/4) q[0], q[1];", ops.NameCRX, ops.Wires{0, 1}, []float64{math.Pi / 4}},
		{"ccx q[0], q[1], q[2];", ops.NameToffoli, ops.Wires{0, 1, 2}, nil},
		{"mcx q[0], q[1], q[2], q[3];", ops.NameMultiControlledX, ops.Wires{0, 1, 2, 3}, nil},
		{"CX q[2], q[3];", ops.NameCNOT, ops.Wires{2, 3}, nil},
		{"swap q[0], q[3];", ops.NameSWAP, ops.Wires{0, 3}, nil},
	}

	for _, tt := range tests {
		tp, err := Parse("qreg q[4];\n" + tt.stmt)
		if err != nil {
			t.Errorf("%s: %v", tt.stmt, err)
			continue
		}
		if tp.Len() != 1 {
			t.Errorf("%s: expected 1 operation, got %d", tt.stmt, tp.Len())
			continue
		}
		op := tp.Operations()[0]
		if op.Name() != tt.name || !op.Wires().Equal(tt.wires) {
			t.Errorf("%s: got %s on %v, want %s on %v", tt.stmt, op.Name(), op.Wires(), tt.name, tt.wires)
		}
		got := op.Params()
		if len(got) != len(tt.params) {
			t.Errorf("%s: params %v, want %v", tt.stmt, got, tt.params)
			continue
		}
		for i := range got {
			if math.Abs(got[i]-tt.params[i]) > 1e-12 {
				t.Errorf("%s: param %d = %g, want %g", tt.stmt, i, got[i], tt.params[i])
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
		line    string
	}{
		{"unknown gate", "qreg q[1];\nfoo q[0];", ErrUnsupported, "line 2"},
		{"reset", "qreg q[1];\nreset q[0];", ErrUnsupported, "line 2"},
		{"classical control", "qreg q[1];\ncreg c[1];\nif (c==1) x q[0];", ErrUnsupported, "line 3"},
		{"gate after measure", "qreg q[1];\ncreg c[1];\nmeasure q[0] -> c[0];\nx q[0];", ErrUnsupported, "line 4"},
		{"out of range", "qreg q[2];\nh q[2];", ErrSyntax, "line 2"},
		{"unknown register", "qreg q[2];\nh r[0];", ErrSyntax, "line 2"},
		{"bad parameter", "qreg q[1];\nrx(pi+) q[0];", ErrSyntax, "line 2"},
		{"missing parameter", "qreg q[1];\nrx q[0];", ErrSyntax, "line 2"},
		{"wrong arity", "qreg q[2];\ncx q[0];", ErrSyntax, "line 2"},
		{"repeated qubit", "qreg q[2];\ncx q[0], q[0];", ErrSyntax, "line 2"},
		{"garbage", "qreg q[2];\n???", ErrSyntax, "line 2"},
		{"oversized qreg", "qreg q[99999999999999999999];\nh q;", ErrSyntax, "line 1"},
		{"qreg over limit", "qreg q[1025];", ErrSyntax, "line 1"},
		{"oversized creg", "qreg q[1];\ncreg c[99999999999999999999];", ErrSyntax, "line 2"},
		{"oversized index", "qreg q[2];\nh q[99999999999999999999];", ErrSyntax, "line 2"},
		{"oversized creg index", "qreg q[1];\ncreg c[1];\nmeasure q[0] -> c[99999999999999999999];", ErrSyntax, "line 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q should mention %q", err, tt.line)
			}
		})
	}
}

func TestRoundTripQASM(t *testing.T) {
	in := tape.New([]ops.Operation{
		ops.Hadamard(0),
		ops.RX(math.Pi/2, 1),
		ops.Rot(0.1, 0.2, 0.3, 2),
		ops.PhaseShift(-math.Pi/4, 0),
		ops.CRZ(3*math.Pi/4, 0, 1),
		ops.CY(2, 0),
		ops.Toffoli(0, 1, 2),
	}, []ops.Measurement{ops.SampleOf(2, 0)})

	src, err := Emit(in)
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	t.Logf("Round-trip QASM output:\n%s", src)

	out, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if out.Len() != in.Len() {
		t.Fatalf("expected %d operations, got %d", in.Len(), out.Len())
	}
	for i, op := range in.Operations() {
		back := out.Operations()[i]
		if back.Name() != op.Name() || !back.Wires().Equal(op.Wires()) {
			t.Errorf("op %d: got %v, want %v", i, back, op)
			continue
		}
		for j, p := range op.Params() {
			if math.Abs(back.Params()[j]-p) > 1e-12 {
				t.Errorf("op %d param %d: got %g, want %g", i, j, back.Params()[j], p)
			}
		}
	}
	if w := out.Measurements()[0].Wires(); !w.Equal(ops.Wires{2, 0}) {
		t.Errorf("measured wires: got %v", w)
	}
}

func TestEmitZeroControlMCXIsEquivalent(t *testing.T) {
	mcx, err := ops.MultiControlledX(ops.Wires{0, 1, 2}, 3, "010", nil)
	if err != nil {
		t.Fatal(err)
	}
	in := tape.New([]ops.Operation{ops.Hadamard(0), ops.Hadamard(2), mcx}, nil)

	src, err := Emit(in)
	if err != nil {
		t.Fatalf("Emit error: %v", err)
	}
	if !strings.Contains(src, "x q[0];\nx q[2];\nmcx q[0], q[1], q[2], q[3];\nx q[0];\nx q[2];\n") {
		t.Errorf("unexpected MCX emission:\n%s", src)
	}

	out, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ok, err := sim.Equivalent(in, out, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("re-parsed program is not equivalent")
	}
}

func TestEmitErrors(t *testing.T) {
	_, err := Emit(tape.New([]ops.Operation{ops.Hadamard(0)}, []ops.Measurement{ops.ExpvalOf(ops.PauliZ(0))}))
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("expval: expected ErrUnsupported, got %v", err)
	}
}
