package form

import "maps"

// Phase is the submission lifecycle stage of a form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what a successful remote action hands back, e.g. server-assigned ids.
type Result struct {
	Fields map[string]string `json:"fields,omitempty"`
}

// State is a snapshot of one form instance. Maps are copies owned by the caller.
type State struct {
	Kind   Kind
	Phase  Phase
	Values map[string]string

	// Errors only holds messages of touched fields.
	Errors  map[string]string
	Touched map[string]bool

	// Attempts counts remote submissions dispatched so far.
	Attempts int

	// Result is the outcome of the last successful submission.
	Result *Result
}

// Busy reports whether a submission is in flight, i.e. the primary action is
// disabled and a loading indicator is shown.
func (s State) Busy() bool {
	return s.Phase == PhaseSubmitting
}

// VisibleError returns the error to render under field, which is empty until the field is touched.
func (s State) VisibleError(field string) string {
	if !s.Touched[field] {
		return ""
	}
	return s.Errors[field]
}

func (s State) clone() State {
	out := s
	out.Values = maps.Clone(s.Values)
	out.Errors = maps.Clone(s.Errors)
	out.Touched = maps.Clone(s.Touched)
	if s.Result != nil {
		r := Result{Fields: maps.Clone(s.Result.Fields)}
		out.Result = &r
	}
	return out
}
