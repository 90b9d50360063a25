package ops

import (
	"encoding/json"
	"fmt"
)

// MeasurementKind is the statistic a measurement returns.
type MeasurementKind int

const (
	Expval MeasurementKind = iota
	Var
	Sample
	Probs
	State
)

func (k MeasurementKind) String() string {
	switch k {
	case Expval:
		return "expval"
	case Var:
		return "var"
	case Sample:
		return "sample"
	case Probs:
		return "probs"
	case State:
		return "state"
	default:
		return fmt.Sprintf("MeasurementKind(%d)", int(k))
	}
}

// Measurement closes a circuit. Expval and Var carry an observable; the
// others act on bare wires (no wires means all wires).
type Measurement struct {
	Kind       MeasurementKind
	Observable Operation
	wires      Wires
}

// ExpvalOf returns the expectation value of obs.
func ExpvalOf(obs Operation) Measurement {
	return Measurement{Kind: Expval, Observable: obs}
}

// VarOf returns the variance of obs.
func VarOf(obs Operation) Measurement {
	return Measurement{Kind: Var, Observable: obs}
}

// SampleOf returns computational-basis samples of wires.
func SampleOf(wires ...int) Measurement {
	return Measurement{Kind: Sample, wires: Wires(wires).Clone()}
}

// ProbsOf returns computational-basis probabilities of wires.
func ProbsOf(wires ...int) Measurement {
	return Measurement{Kind: Probs, wires: Wires(wires).Clone()}
}

// StateOf returns the full state vector.
func StateOf() Measurement {
	return Measurement{Kind: State}
}

// Wires returns the measured wires.
func (m Measurement) Wires() Wires {
	if m.Observable != nil {
		return m.Observable.Wires()
	}
	return m.wires.Clone()
}

func (m Measurement) String() string {
	if m.Observable != nil {
		return fmt.Sprintf("%s(%s%v)", m.Kind, m.Observable.Name(), m.Observable.Wires())
	}
	return fmt.Sprintf("%s%v", m.Kind, m.wires)
}

// MarshalJSON encodes the measurement as {"kind", "observable", "wires"}.
func (m Measurement) MarshalJSON() ([]byte, error) {
	var obs string
	if m.Observable != nil {
		obs = m.Observable.Name()
	}
	return json.Marshal(struct {
		Kind       string `json:"kind"`
		Observable string `json:"observable,omitempty"`
		Wires      Wires  `json:"wires"`
	}{m.Kind.String(), obs, m.Wires()})
}
