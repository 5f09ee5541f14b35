package submit

import (
	"time"

	"github.com/goliatone/go-fetchforms/pkg/payload"
)

// State is a step of the submission lifecycle.
type State int

const (
	StateIdle State = iota
	StatePrepared
	StateTokenPending
	StateDispatched
	StateSettled
)

func (s State) String() string {
	switch s {
	case StatePrepared:
		return "prepared"
	case StateTokenPending:
		return "token-pending"
	case StateDispatched:
		return "dispatched"
	case StateSettled:
		return "settled"
	default:
		return "idle"
	}
}

// Outcome is the terminal result of a submission.
type Outcome int

const (
	// OutcomeAbandoned means no request was sent because no token could be
	// obtained.
	OutcomeAbandoned Outcome = iota
	OutcomeSuccess
	OutcomeFailure
	OutcomeTransportError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeTransportError:
		return "transport-error"
	default:
		return "abandoned"
	}
}

// Result describes a settled submission.
type Result struct {
	ID      string
	Outcome Outcome
	Trace   []State
	Method  string
	URL     string
	Payload *payload.Payload
	Status  int
	Body    any
	Err     error
	Elapsed time.Duration
}

// Final returns the last state reached.
func (r Result) Final() State {
	if len(r.Trace) == 0 {
		return StateIdle
	}
	return r.Trace[len(r.Trace)-1]
}
