package draft_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/routesheet-engine/draft"
	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/reconcile"
	"github.com/warp/routesheet-engine/sheet"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// fakeSubmitter stands in for the persistence collaborator.
type fakeSubmitter struct {
	fail   error
	saved  []draft.Payload
	during func() // runs while the submission is in flight
}

func (f *fakeSubmitter) Save(_ context.Context, p draft.Payload) (string, error) {
	if f.during != nil {
		f.during()
	}
	if f.fail != nil {
		return "", f.fail
	}
	f.saved = append(f.saved, p)
	return "rs-0001", nil
}

func identityInput() sheet.IdentityInput {
	return sheet.IdentityInput{
		DriverID:             "drv-7",
		ShiftDate:            "2026-03-10",
		StartTime:            "06:00",
		EndTime:              "14:00",
		InterruptionDuration: "00:30",
		CompensationRule:     "MIXED_40_THEN_30",
	}
}

func vehicleInput() sheet.VehicleInput {
	return sheet.VehicleInput{
		VehicleID:   "veh-3",
		PlateNumber: "TXA-904",
		Odometer: sheet.OdometerSet{
			BoardKmStart: 154200, BoardKmEnd: 154410,
			TaxiTotalKmStart: 98100, TaxiTotalKmEnd: 98305,
			TaxiChargedKmStart: 61000, TaxiChargedKmEnd: 61120,
			TaxiPickupsStart: 8100, TaxiPickupsEnd: 8121,
			TaxiFallsStart: 30500, TaxiFallsEnd: 30610,
		},
	}
}

func tripInput(pickup, dropoff, amount string) sheet.TripInput {
	return sheet.TripInput{
		DepartureIndex:  1000,
		PickupIndex:     1002,
		PickupPlace:     pickup,
		PickupTime:      "08:15",
		DropoffIndex:    1010,
		DropoffPlace:    dropoff,
		DropoffTime:     "08:40",
		MeterPrice:      amount,
		AmountCollected: amount,
		PaymentMethod:   "cash",
	}
}

func newDraft(sub draft.Submitter) *draft.Draft {
	if sub == nil {
		sub = &fakeSubmitter{}
	}
	return draft.New(pay.DefaultPlan(), sub)
}

// walkToSummary drives a valid draft up to the summary step.
func walkToSummary(t *testing.T, d *draft.Draft) {
	t.Helper()
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("Gare Centrale", "Aéroport", "100.00")}))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("Aéroport", "Uccle", "80.00")}))
	require.NoError(t, d.Advance(nil))
	require.NoError(t, d.Dispatch(draft.AddExpense{In: sheet.ExpenseInput{
		Category: "fuel", Description: "Plein", Amount: "45,30", PaymentMethod: "cash",
	}}))
	require.NoError(t, d.Advance(nil))
	require.Equal(t, draft.StepSummary, d.State().Step)
}

// =============================================================================
// FORWARD NAVIGATION AND VALIDATION GATING
// =============================================================================

func TestDraft_Advance_HappyPathThroughAllSteps(t *testing.T) {
	d := newDraft(nil)
	walkToSummary(t, d)

	s := d.State()
	for _, step := range []draft.Step{draft.StepIdentity, draft.StepVehicle, draft.StepTrips, draft.StepExpenses} {
		assert.True(t, s.StepDone(step), "step %s should be done", step)
	}
	assert.Equal(t, sheet.DriverID("drv-7"), s.Record.DriverID)
	assert.Equal(t, "TXA-904", s.Record.PlateNumber)
	assert.Len(t, s.Record.Trips, 2)
	assert.Len(t, s.Record.Expenses, 1)
}

func TestDraft_Advance_InvalidIdentity_StaysPut(t *testing.T) {
	// GIVEN: an identity input with no driver and a bad time
	// WHEN: advancing
	// THEN: a field-keyed error map comes back and nothing moves

	d := newDraft(nil)
	in := identityInput()
	in.DriverID = ""
	in.StartTime = "6h"

	err := d.Advance(in)
	require.Error(t, err)

	var fieldErrs sheet.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "driverId")
	assert.Contains(t, fieldErrs, "startTime")

	s := d.State()
	assert.Equal(t, draft.StepIdentity, s.Step)
	assert.False(t, s.StepDone(draft.StepIdentity))
}

func TestDraft_Advance_WrongInputType(t *testing.T) {
	d := newDraft(nil)
	assert.ErrorIs(t, d.Advance(vehicleInput()), draft.ErrWrongInput)
}

func TestDraft_Advance_ZeroTrips_Rejected(t *testing.T) {
	// GIVEN: a draft on the trips step with an empty ledger
	// WHEN: advancing
	// THEN: rejected, and the step's done flag stays false

	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))

	err := d.Advance(nil)
	assert.ErrorIs(t, err, sheet.ErrNoTrips)

	s := d.State()
	assert.Equal(t, draft.StepTrips, s.Step)
	assert.False(t, s.StepDone(draft.StepTrips))
}

func TestDraft_Advance_ZeroExpenses_Allowed(t *testing.T) {
	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("A", "B", "10.00")}))
	require.NoError(t, d.Advance(nil))
	require.NoError(t, d.Advance(nil), "a shift may legitimately have zero expenses")
	assert.Equal(t, draft.StepSummary, d.State().Step)
}

func TestDraft_Advance_AtSummary(t *testing.T) {
	d := newDraft(nil)
	walkToSummary(t, d)
	assert.ErrorIs(t, d.Advance(nil), draft.ErrAtLastStep)
}

// =============================================================================
// BACKWARD NAVIGATION
// =============================================================================

func TestDraft_Retreat_KeepsDataAndDoneFlags(t *testing.T) {
	d := newDraft(nil)
	walkToSummary(t, d)

	require.NoError(t, d.Retreat()) // summary -> expenses
	require.NoError(t, d.Retreat()) // expenses -> trips

	s := d.State()
	assert.Equal(t, draft.StepTrips, s.Step)
	assert.Len(t, s.Record.Trips, 2, "retreat never discards entered data")
	assert.True(t, s.StepDone(draft.StepTrips), "done flags survive retreat")
	assert.True(t, s.StepDone(draft.StepExpenses))
}

func TestDraft_Retreat_AtFirstStep(t *testing.T) {
	d := newDraft(nil)
	assert.ErrorIs(t, d.Retreat(), draft.ErrAtFirstStep)
}

func TestDraft_ReAdvance_OverwritesPriorValues(t *testing.T) {
	// A user retreats to identity, changes the rule, and re-advances.
	d := newDraft(nil)
	walkToSummary(t, d)

	for i := 0; i < 4; i++ {
		require.NoError(t, d.Retreat())
	}
	require.Equal(t, draft.StepIdentity, d.State().Step)

	in := identityInput()
	in.CompensationRule = "FLAT_SALARY"
	in.CompensationRate = "130,00"
	require.NoError(t, d.Advance(in))

	s := d.State()
	assert.Equal(t, pay.RuleFlatSalary, s.Record.CompensationRule)
	require.NotNil(t, s.Record.CompensationRate)
	assert.Equal(t, "130.00", s.Record.CompensationRate.StringFixed(2))
	assert.Len(t, s.Record.Trips, 2, "ledgers untouched by re-advancing identity")
}

func TestDraft_Reset_ReturnsToEmptyRecord(t *testing.T) {
	d := newDraft(nil)
	walkToSummary(t, d)

	require.NoError(t, d.Reset())

	s := d.State()
	assert.Equal(t, draft.StepIdentity, s.Step)
	assert.Empty(t, s.Record.Trips)
	assert.Empty(t, s.Record.DriverID)
	assert.False(t, s.StepDone(draft.StepIdentity))
}

// =============================================================================
// LEDGER EDITS THROUGH THE REDUCER
// =============================================================================

func TestDraft_RemoveLastTrip_ReArmsTheGate(t *testing.T) {
	// GIVEN: the trips step was completed with one trip
	// WHEN: retreating and removing it
	// THEN: the done flag drops back to false and the gate blocks again

	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("A", "B", "10.00")}))
	require.NoError(t, d.Advance(nil))
	require.True(t, d.State().StepDone(draft.StepTrips))

	require.NoError(t, d.Retreat())
	tripID := d.State().Record.Trips[0].ID
	require.NoError(t, d.Dispatch(draft.RemoveTrip{ID: tripID}))

	s := d.State()
	assert.Empty(t, s.Record.Trips)
	assert.False(t, s.StepDone(draft.StepTrips))
	assert.ErrorIs(t, d.Advance(nil), sheet.ErrNoTrips)
}

func TestDraft_Dispatch_RejectionLeavesStateIntact(t *testing.T) {
	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("A", "B", "10.00")}))

	bad := tripInput("C", "D", "not money")
	err := d.Dispatch(draft.AddTrip{In: bad})
	require.Error(t, err)

	assert.Len(t, d.State().Record.Trips, 1, "rejected input must not corrupt stored data")
}

func TestDraft_StateSnapshot_IsImmutable(t *testing.T) {
	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))

	s := d.State()
	s.Record.DriverID = "tampered"
	s.Record.StepStatus[string(draft.StepIdentity)] = sheet.StepStatus{IsDone: false}

	fresh := d.State()
	assert.Equal(t, sheet.DriverID("drv-7"), fresh.Record.DriverID)
	assert.True(t, fresh.StepDone(draft.StepIdentity))
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestDraft_Submit_Success(t *testing.T) {
	sub := &fakeSubmitter{}
	d := newDraft(sub)
	walkToSummary(t, d)

	id, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rs-0001", id)
	assert.Equal(t, draft.StepSubmitted, d.State().Step)
	assert.Equal(t, "rs-0001", d.SheetID())

	require.Len(t, sub.saved, 1)
	p := sub.saved[0]
	assert.Equal(t, "drv-7", p.DriverID)
	assert.Equal(t, "180.00", p.Reconciliation.TotalRevenue.StringFixed(2))
	// 180 at the mixed threshold: high band exactly.
	assert.Equal(t, "72.00", p.Reconciliation.CompensationAmount.StringFixed(2))
	// 180 - 72 - 45.30 cash fuel = 62.70
	assert.Equal(t, "62.70", p.Reconciliation.NetResult.StringFixed(2))
	assert.NotEmpty(t, p.CompensationExplanation)
}

func TestDraft_Submit_BeforeSummary_Rejected(t *testing.T) {
	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	_, err := d.Submit(context.Background())
	assert.ErrorIs(t, err, draft.ErrStepsIncomplete)
}

func TestDraft_Submit_UnresolvedTrips_ListsSequenceNumbers(t *testing.T) {
	// GIVEN: a draft at summary holding two placeholders among three trips
	// WHEN: submitting
	// THEN: blocked with the offending sequence numbers

	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: sheet.TripInput{PickupPlace: "Gare", Placeholder: true}}))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("A", "B", "20.00")}))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: sheet.TripInput{PickupPlace: "Midi", Placeholder: true}}))
	require.NoError(t, d.Advance(nil))
	require.NoError(t, d.Advance(nil))

	_, err := d.Submit(context.Background())
	require.Error(t, err)

	var incomplete *sheet.IncompleteTripsError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []int{1, 3}, incomplete.Sequences)
	assert.Equal(t, draft.StepSummary, d.State().Step, "draft stays editable")
}

func TestDraft_Submit_FailureReturnsToSummaryWithDataIntact(t *testing.T) {
	sub := &fakeSubmitter{fail: errors.New("persistence unavailable: timeout")}
	d := newDraft(sub)
	walkToSummary(t, d)

	_, err := d.Submit(context.Background())
	require.Error(t, err)

	s := d.State()
	assert.Equal(t, draft.StepSummary, s.Step)
	assert.Equal(t, "persistence unavailable: timeout", s.SubmissionError,
		"failure surfaced verbatim")
	assert.Len(t, s.Record.Trips, 2, "no data loss on failure")

	// Retry after the collaborator recovers.
	sub.fail = nil
	id, err := d.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rs-0001", id)
	assert.Empty(t, d.State().SubmissionError, "error cleared on the next attempt")
}

func TestDraft_Submitting_RejectsNavigationAndEdits(t *testing.T) {
	// The fake runs assertions while the submission is in flight.
	var inFlightErrs []error
	sub := &fakeSubmitter{}
	var d *draft.Draft
	sub.during = func() {
		inFlightErrs = append(inFlightErrs,
			d.Advance(nil),
			d.Retreat(),
			d.Reset(),
			d.Dispatch(draft.AddExpense{In: sheet.ExpenseInput{
				Category: "toll", Description: "x", Amount: "5", PaymentMethod: "cash",
			}}),
		)
	}
	d = newDraft(sub)
	walkToSummary(t, d)

	_, err := d.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, inFlightErrs, 4)
	for _, e := range inFlightErrs {
		assert.ErrorIs(t, e, draft.ErrSubmitting)
	}
}

func TestDraft_Submitted_IsTerminal(t *testing.T) {
	d := newDraft(nil)
	walkToSummary(t, d)
	_, err := d.Submit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, d.Advance(nil), draft.ErrSubmitted)
	assert.ErrorIs(t, d.Retreat(), draft.ErrSubmitted)
	_, err = d.Submit(context.Background())
	assert.ErrorIs(t, err, draft.ErrSubmitted)
}

// =============================================================================
// LIVE SUMMARY
// =============================================================================

func TestDraft_Summary_RecomputesLive(t *testing.T) {
	d := newDraft(nil)
	require.NoError(t, d.Advance(identityInput()))
	require.NoError(t, d.Advance(vehicleInput()))
	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("A", "B", "100.00")}))

	first := d.Summary()
	assert.Equal(t, "100.00", first.TotalRevenue.StringFixed(2))

	require.NoError(t, d.Dispatch(draft.AddTrip{In: tripInput("B", "C", "50.00")}))
	second := d.Summary()
	assert.Equal(t, "150.00", second.TotalRevenue.StringFixed(2))

	again := d.Summary()
	assert.Equal(t, second, again, "idempotent on an unchanged draft")
}

// =============================================================================
// ROUND-TRIP
// =============================================================================

func TestPayload_RoundTrip_ReproducesRevenueAndNetResult(t *testing.T) {
	// GIVEN: a submitted payload
	// WHEN: mapped back onto the canonical record and re-aggregated
	// THEN: revenue and net result come out identical

	sub := &fakeSubmitter{}
	d := newDraft(sub)
	walkToSummary(t, d)
	_, err := d.Submit(context.Background())
	require.NoError(t, err)

	p := sub.saved[0]
	rec := p.ToRecord()

	re := reconcile.Summarize(rec, pay.DefaultPlan())
	assert.True(t, re.TotalRevenue.Equal(p.Reconciliation.TotalRevenue))
	assert.True(t, re.NetResult.Equal(p.Reconciliation.NetResult))
}
