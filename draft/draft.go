/*
draft.go - The Draft contract: Advance, Retreat, Reset, ledger edits,
live summary, Submit

CONTRACT:
  Advance(stepInput) validates the input for the current step, merges it
  into the record, marks the step done and moves forward; on failure it
  returns a field-keyed error map and stays put. Retreat moves backward
  without discarding anything and never un-sets done flags; a revisited
  step can be re-advanced, overwriting prior values. Reset returns to
  the initial empty record (explicit cancellation only).

GATES:
  - Leaving Trips requires at least one trip in the ledger.
  - Entering Submitting requires every capture step done and every trip
    resolved; offenders are reported by sequence number.

SUBMISSION:
  Submit is the only suspension point. The draft is Submitting while
  the Save call is in flight and rejects navigation and edits. On
  failure it returns to Summary with the error attached verbatim and
  all data intact; retry is a plain second Submit. There is no
  cancellation of an in-flight submission.
*/
package draft

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/reconcile"
	"github.com/warp/routesheet-engine/sheet"
)

// Submitter is the external persistence collaborator. Save persists the
// completed route sheet and returns its permanent identifier.
type Submitter interface {
	Save(ctx context.Context, p Payload) (sheetID string, err error)
}

// Draft exclusively owns one in-progress route sheet. All methods hand
// out snapshots; nothing external can reach the live record.
type Draft struct {
	mu        sync.Mutex
	id        string
	state     State
	plan      pay.Plan
	submitter Submitter
	sheetID   string
}

// New creates an empty draft on the identity step.
func New(plan pay.Plan, submitter Submitter) *Draft {
	return &Draft{
		id:        uuid.NewString(),
		state:     NewState(),
		plan:      plan,
		submitter: submitter,
	}
}

// ID returns the draft's temporary identifier.
func (d *Draft) ID() string { return d.id }

// State returns a deep-copied snapshot of the current state.
func (d *Draft) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// SheetID returns the permanent identifier assigned on submission, or
// "" while the draft is unsubmitted.
func (d *Draft) SheetID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sheetID
}

// =============================================================================
// NAVIGATION
// =============================================================================

// Advance validates stepInput against the current step, merges it and
// moves forward. The trips and expenses steps take a nil input: their
// content arrives through Dispatch, Advance only checks the gate.
func (d *Draft) Advance(stepInput any) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.editable(); err != nil {
		return err
	}

	switch d.state.Step {
	case StepIdentity:
		in, ok := stepInput.(sheet.IdentityInput)
		if !ok {
			return ErrWrongInput
		}
		return d.completeStep(SetIdentity{In: in}, StepVehicle)

	case StepVehicle:
		in, ok := stepInput.(sheet.VehicleInput)
		if !ok {
			return ErrWrongInput
		}
		return d.completeStep(SetVehicle{In: in}, StepTrips)

	case StepTrips:
		if stepInput != nil {
			return ErrWrongInput
		}
		if len(d.state.Record.Trips) == 0 {
			return sheet.ErrNoTrips
		}
		return d.completeStep(nil, StepExpenses)

	case StepExpenses:
		if stepInput != nil {
			return ErrWrongInput
		}
		// Zero expenses is a legitimate shift.
		return d.completeStep(nil, StepSummary)
	}

	return ErrAtLastStep
}

// completeStep applies the optional merge action, marks the current
// step done and moves to next. Caller holds the lock.
func (d *Draft) completeStep(merge Action, next Step) error {
	s := d.state
	var err error
	if merge != nil {
		if s, err = Apply(s, merge); err != nil {
			return err
		}
	}
	if s, err = Apply(s, SetStepStatus{Step: d.state.Step, Done: true}); err != nil {
		return err
	}
	s.Step = next
	d.state = s
	return nil
}

// Retreat moves to the previous step. Entered data and done flags are
// kept; revisiting a step and re-advancing overwrites prior values.
func (d *Draft) Retreat() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.editable(); err != nil {
		return err
	}
	idx := stepIndex(d.state.Step)
	if idx <= 0 {
		return ErrAtFirstStep
	}
	d.state.Step = captureSteps[idx-1]
	return nil
}

// Reset discards everything and returns to the initial empty record.
// Explicit cancellation only.
func (d *Draft) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Step == StepSubmitting {
		return ErrSubmitting
	}
	d.state = NewState()
	d.sheetID = ""
	return nil
}

// =============================================================================
// LEDGER EDITS
// =============================================================================

// Dispatch applies a record mutation through the pure reducer. Edits
// are allowed on any capture step (a user may retreat to trips and fix
// a fare) but not once a submission is in flight or done.
func (d *Draft) Dispatch(a Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.editable(); err != nil {
		return err
	}
	next, err := Apply(d.state, a)
	if err != nil {
		return err
	}
	d.state = next
	return nil
}

func (d *Draft) editable() error {
	switch d.state.Step {
	case StepSubmitting:
		return ErrSubmitting
	case StepSubmitted:
		return ErrSubmitted
	}
	return nil
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary recomputes the reconciliation from the current record. Pure
// and idempotent; callable on every keystroke while the user edits.
func (d *Draft) Summary() reconcile.Result {
	d.mu.Lock()
	rec := d.state.Record.Clone()
	d.mu.Unlock()
	return reconcile.Summarize(rec, d.plan)
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Submit enters Submitting, hands the payload to the persistence
// collaborator and finishes in Submitted, or fails back to Summary with
// the error attached and all data intact.
func (d *Draft) Submit(ctx context.Context) (string, error) {
	d.mu.Lock()

	if err := d.editable(); err != nil {
		d.mu.Unlock()
		return "", err
	}
	if d.state.Step != StepSummary {
		d.mu.Unlock()
		return "", ErrStepsIncomplete
	}
	for _, step := range []Step{StepIdentity, StepVehicle, StepTrips, StepExpenses} {
		if !d.state.StepDone(step) {
			d.mu.Unlock()
			return "", ErrStepsIncomplete
		}
	}
	ledger := sheet.NewTripLedger(d.state.Record.Trips)
	if unresolved := ledger.Unresolved(); len(unresolved) > 0 {
		d.mu.Unlock()
		return "", &sheet.IncompleteTripsError{Sequences: unresolved}
	}

	rec := d.state.Record.Clone()
	payload := BuildPayload(rec, reconcile.Summarize(rec, d.plan))

	d.state.SubmissionError = ""
	d.state.Step = StepSubmitting
	d.mu.Unlock()

	sheetID, err := d.submitter.Save(ctx, payload)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		// Fail back to Summary, error attached, nothing lost.
		d.state.Step = StepSummary
		d.state.SubmissionError = err.Error()
		return "", err
	}
	d.state.Step = StepSubmitted
	d.sheetID = sheetID
	return sheetID, nil
}
