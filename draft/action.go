/*
action.go - Tagged mutation variants and the pure reducer

PURPOSE:
  Every mutation of the shift record is a tagged Action consumed by
  Apply, a pure transition function: (State, Action) -> (State, error).
  On error the returned state is the input state unchanged.

ACTIONS:
  SetIdentity / SetVehicle   Merge a validated step input into the record
  AddTrip / UpdateTrip / RemoveTrip
  AddExpense / UpdateExpense / RemoveExpense
  SetStepStatus              Flip a step's done flag

INVARIANTS HELD HERE:
  - Ledger mutations go through the sheet ledgers, so sequence
    contiguity and amount normalization hold for every path.
  - Removing the last trip drops the trips step's done flag; the gate
    back out of the trips step re-arms itself.
*/
package draft

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/money"
	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/sheet"
)

// =============================================================================
// ACTION VARIANTS
// =============================================================================

// Action is a tagged request to transform the draft state.
type Action interface{ isAction() }

type SetIdentity struct{ In sheet.IdentityInput }
type SetVehicle struct{ In sheet.VehicleInput }

type AddTrip struct{ In sheet.TripInput }
type UpdateTrip struct {
	ID string
	In sheet.TripInput
}
type RemoveTrip struct{ ID string }

type AddExpense struct{ In sheet.ExpenseInput }
type UpdateExpense struct {
	ID string
	In sheet.ExpenseInput
}
type RemoveExpense struct{ ID string }

type SetStepStatus struct {
	Step Step
	Done bool
}

func (SetIdentity) isAction()   {}
func (SetVehicle) isAction()    {}
func (AddTrip) isAction()       {}
func (UpdateTrip) isAction()    {}
func (RemoveTrip) isAction()    {}
func (AddExpense) isAction()    {}
func (UpdateExpense) isAction() {}
func (RemoveExpense) isAction() {}
func (SetStepStatus) isAction() {}

// =============================================================================
// APPLY - Pure transition function
// =============================================================================

// Apply consumes one action and returns the next state. It validates
// but does not navigate; step movement lives on the Draft.
func Apply(s State, a Action) (State, error) {
	switch act := a.(type) {
	case SetIdentity:
		return applyIdentity(s, act.In)
	case SetVehicle:
		return applyVehicle(s, act.In)
	case AddTrip:
		return applyTrip(s, func(l *sheet.TripLedger) error {
			_, err := l.Append(act.In)
			return err
		})
	case UpdateTrip:
		return applyTrip(s, func(l *sheet.TripLedger) error {
			_, err := l.Update(act.ID, act.In)
			return err
		})
	case RemoveTrip:
		return applyTrip(s, func(l *sheet.TripLedger) error {
			return l.Remove(act.ID)
		})
	case AddExpense:
		return applyExpense(s, func(l *sheet.ExpenseLedger) error {
			_, err := l.Append(act.In)
			return err
		})
	case UpdateExpense:
		return applyExpense(s, func(l *sheet.ExpenseLedger) error {
			_, err := l.Update(act.ID, act.In)
			return err
		})
	case RemoveExpense:
		return applyExpense(s, func(l *sheet.ExpenseLedger) error {
			return l.Remove(act.ID)
		})
	case SetStepStatus:
		next := s.clone()
		next.Record.StepStatus[string(act.Step)] = sheet.StepStatus{IsDone: act.Done}
		return next, nil
	}
	return s, fmt.Errorf("unhandled action %T", a)
}

func applyIdentity(s State, in sheet.IdentityInput) (State, error) {
	if errs := sheet.ValidateIdentity(in); len(errs) > 0 {
		return s, errs
	}

	next := s.clone()
	rec := &next.Record
	rec.DriverID = sheet.DriverID(in.DriverID)
	rec.ShiftDate = in.ShiftDate
	rec.StartTime = in.StartTime
	rec.EndTime = in.EndTime
	rec.InterruptionDuration = in.InterruptionDuration
	rec.CompensationRule = pay.Rule(in.CompensationRule)
	rec.Note = in.Note

	rec.CompensationRate = nil
	if rec.CompensationRule.RateBased() {
		// Validation guaranteed the rate parses.
		rate, _ := money.ParseNonNegative(in.CompensationRate)
		rec.CompensationRate = &rate
	}
	return next, nil
}

func applyVehicle(s State, in sheet.VehicleInput) (State, error) {
	if errs := sheet.ValidateVehicle(in); len(errs) > 0 {
		return s, errs
	}

	next := s.clone()
	next.Record.VehicleID = sheet.VehicleID(in.VehicleID)
	next.Record.PlateNumber = in.PlateNumber
	next.Record.Odometer = in.Odometer
	return next, nil
}

func applyTrip(s State, op func(*sheet.TripLedger) error) (State, error) {
	next := s.clone()
	ledger := sheet.NewTripLedger(next.Record.Trips)
	if err := op(ledger); err != nil {
		return s, err
	}
	next.Record.Trips = ledger.Trips()

	// An emptied ledger re-arms the trips gate.
	if ledger.Len() == 0 && next.StepDone(StepTrips) {
		next.Record.StepStatus[string(StepTrips)] = sheet.StepStatus{IsDone: false}
	}
	return next, nil
}

func applyExpense(s State, op func(*sheet.ExpenseLedger) error) (State, error) {
	next := s.clone()
	ledger := sheet.NewExpenseLedger(next.Record.Expenses)
	if err := op(ledger); err != nil {
		return s, err
	}
	next.Record.Expenses = ledger.Expenses()
	return next, nil
}

// rateValue is a nil-safe accessor used by payload assembly.
func rateValue(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return *rate
}
