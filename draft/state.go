/*
Package draft owns the in-progress route sheet: a multi-step, validated
capture workflow that assembles a sheet.ShiftRecord and hands the
completed record to the persistence collaborator.

PURPOSE:
  The wizard walks Identity -> Vehicle -> Trips -> Expenses -> Summary,
  then submits. Navigation is strictly forward/backward; each forward
  move is gated by the step's validators. Submission is the only
  suspension point: while it is in flight the machine is Submitting and
  rejects navigation; on failure it returns to Summary carrying the
  error with every entered value intact.

KEY CONCEPTS:
  - State: Immutable snapshot value (step + record + submission error)
  - Action: Tagged mutation variants consumed by the pure Apply reducer
  - Draft: The stateful owner wrapping State with the step contract
  - Submitter: The external persistence collaborator interface

DESIGN PRINCIPLES:
  1. Explicit state + pure transitions: every record mutation is an
     Action handled by Apply(State, Action) -> State. The Draft never
     mutates a record in place; undo/redo stays possible and every
     transition is testable in isolation.
  2. Exclusive ownership: nothing outside the Draft mutates the record;
     external reads get deep-copied snapshots.
  3. Rejections never corrupt: a failed validation leaves the state
     exactly as it was.

SEE ALSO:
  - action.go: Action variants and the Apply reducer
  - draft.go: The Draft contract (Advance / Retreat / Reset / Submit)
  - payload.go: Submission payload assembly
*/
package draft

import (
	"errors"

	"github.com/warp/routesheet-engine/sheet"
)

// =============================================================================
// STEPS
// =============================================================================

// Step is one state of the capture workflow.
type Step string

const (
	StepIdentity   Step = "identity"
	StepVehicle    Step = "vehicle"
	StepTrips      Step = "trips"
	StepExpenses   Step = "expenses"
	StepSummary    Step = "summary"
	StepSubmitting Step = "submitting"
	StepSubmitted  Step = "submitted"
)

// captureSteps is the forward/backward navigation order. Submitting and
// Submitted sit outside it: Submitting is entered only from Summary via
// Submit, and Submitted is terminal.
var captureSteps = []Step{StepIdentity, StepVehicle, StepTrips, StepExpenses, StepSummary}

func stepIndex(s Step) int {
	for i, step := range captureSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrAtFirstStep is returned by Retreat on the identity step.
	ErrAtFirstStep = errors.New("already at the first step")

	// ErrAtLastStep is returned by Advance on the summary step; leaving
	// the summary goes through Submit.
	ErrAtLastStep = errors.New("summary is the last step: submit to continue")

	// ErrSubmitting is returned when navigation or edits are attempted
	// while a submission is in flight.
	ErrSubmitting = errors.New("submission in flight")

	// ErrSubmitted is returned for any call on a submitted draft.
	ErrSubmitted = errors.New("draft already submitted")

	// ErrWrongInput is returned when Advance gets an input type that
	// does not belong to the current step.
	ErrWrongInput = errors.New("input does not match the current step")

	// ErrStepsIncomplete is returned by Submit when a capture step has
	// not been completed.
	ErrStepsIncomplete = errors.New("capture steps incomplete")
)

// =============================================================================
// STATE - Immutable workflow snapshot
// =============================================================================

// State is a value: Apply and the Draft produce new States rather than
// mutating one. The zero record comes from NewState.
type State struct {
	Step   Step
	Record sheet.ShiftRecord

	// SubmissionError carries the last submission failure verbatim. Set
	// when a Submit fails back to Summary, cleared on the next Submit.
	SubmissionError string
}

// NewState returns the initial empty state on the identity step.
func NewState() State {
	return State{
		Step: StepIdentity,
		Record: sheet.ShiftRecord{
			StepStatus: make(map[string]sheet.StepStatus),
		},
	}
}

// clone deep-copies the state so reducer output never aliases input.
func (s State) clone() State {
	out := s
	out.Record = s.Record.Clone()
	return out
}

// StepDone reports whether a step has been completed at least once.
func (s State) StepDone(step Step) bool {
	return s.Record.StepStatus[string(step)].IsDone
}
