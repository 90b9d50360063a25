package tape

import "qtermtape/ops"

// Recorder collects operations and measurements into a tape.
type Recorder struct {
	operations   []ops.Operation
	measurements []ops.Measurement
	recording    bool
}

// NewRecorder creates a recorder that is not yet recording.
func NewRecorder() *Recorder {
	return &Recorder{
		operations: make([]ops.Operation, 0, 16),
	}
}

// Record runs fn against a fresh recorder and returns the resulting tape.
func Record(fn func(r *Recorder)) *Tape {
	r := NewRecorder()
	r.StartRecording()
	fn(r)
	r.StopRecording()
	return r.Tape()
}

// StartRecording enables recording.
func (r *Recorder) StartRecording() { r.recording = true }

// StopRecording disables recording.
func (r *Recorder) StopRecording() { r.recording = false }

// IsRecording reports whether Apply and Measure take effect.
func (r *Recorder) IsRecording() bool { return r.recording }

// Apply queues op. Ignored while not recording.
func (r *Recorder) Apply(op ops.Operation) {
	if r.recording {
		r.operations = append(r.operations, op)
	}
}

// Measure queues m. Ignored while not recording.
func (r *Recorder) Measure(m ops.Measurement) {
	if r.recording {
		r.measurements = append(r.measurements, m)
	}
}

// Clear drops everything recorded so far. Recording state is preserved.
func (r *Recorder) Clear() {
	r.operations = r.operations[:0]
	r.measurements = r.measurements[:0]
}

// Tape returns a tape holding what has been recorded.
func (r *Recorder) Tape() *Tape {
	return New(r.operations, r.measurements)
}
