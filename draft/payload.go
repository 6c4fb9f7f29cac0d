/*
payload.go - Submission payload assembly and the boundary mapping

PURPOSE:
  The completed draft is handed to the persistence collaborator as a
  plain structured record. The same shape, which already carries the
  compensation explanation and the payment-method breakdown, is what the
  document renderer consumes; layout is the renderer's problem.

ROUND-TRIP:
  ToRecord maps a payload back onto the canonical record shape. Feeding
  a submitted payload through ToRecord and re-aggregating reproduces the
  same revenue and net result; the store read path and the round-trip
  test both go through it.
*/
package draft

import (
	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/reconcile"
	"github.com/warp/routesheet-engine/sheet"
)

// =============================================================================
// PAYLOAD SHAPES
// =============================================================================

type TripPayload struct {
	SequenceNumber   int             `json:"sequenceNumber"`
	DepartureIndex   int64           `json:"departureIndex"`
	PickupIndex      int64           `json:"pickupIndex"`
	PickupPlace      string          `json:"pickupPlace"`
	PickupTime       string          `json:"pickupTime"`
	DropoffIndex     int64           `json:"dropoffIndex"`
	DropoffPlace     string          `json:"dropoffPlace"`
	DropoffTime      string          `json:"dropoffTime"`
	MeterPrice       decimal.Decimal `json:"meterPrice"`
	AmountCollected  decimal.Decimal `json:"amountCollected"`
	PaymentMethod    string          `json:"paymentMethod"`
	BillingClientRef string          `json:"billingClientRef,omitempty"`
}

type ExpensePayload struct {
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
}

type ReconciliationPayload struct {
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	TotalMeterPrice    decimal.Decimal `json:"totalMeterPrice"`
	TotalExpensesCash  decimal.Decimal `json:"totalExpensesCash"`
	TotalExpensesCard  decimal.Decimal `json:"totalExpensesCard"`
	CompensationAmount decimal.Decimal `json:"compensationAmount"`
	NetResult          decimal.Decimal `json:"netResult"`
}

// Payload is the submission record. It also carries the human-readable
// figures the document renderer needs.
type Payload struct {
	DriverID             string          `json:"driverId"`
	VehicleID            string          `json:"vehicleId"`
	PlateNumber          string          `json:"plateNumber"`
	ShiftDate            string          `json:"shiftDate"`
	StartTime            string          `json:"startTime"`
	EndTime              string          `json:"endTime"`
	InterruptionDuration string          `json:"interruptionDuration"`
	CompensationRule     string          `json:"compensationRule"`
	CompensationRate     decimal.Decimal `json:"compensationRate"`
	Note                 string          `json:"note,omitempty"`

	VehicleOdometer sheet.OdometerSet `json:"vehicleOdometer"`

	Trips    []TripPayload    `json:"trips"`
	Expenses []ExpensePayload `json:"expenses"`

	Reconciliation          ReconciliationPayload      `json:"reconciliation"`
	CompensationExplanation string                     `json:"compensationExplanation"`
	PaymentMethodBreakdown  map[string]decimal.Decimal `json:"paymentMethodBreakdown"`
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// BuildPayload maps the record and its reconciliation into the
// submission shape.
func BuildPayload(rec sheet.ShiftRecord, sum reconcile.Result) Payload {
	trips := make([]TripPayload, len(rec.Trips))
	for i, t := range rec.Trips {
		trips[i] = TripPayload{
			SequenceNumber:   t.SequenceNumber,
			DepartureIndex:   t.DepartureIndex,
			PickupIndex:      t.PickupIndex,
			PickupPlace:      t.PickupPlace,
			PickupTime:       t.PickupTime,
			DropoffIndex:     t.DropoffIndex,
			DropoffPlace:     t.DropoffPlace,
			DropoffTime:      t.DropoffTime,
			MeterPrice:       t.MeterPrice,
			AmountCollected:  t.AmountCollected,
			PaymentMethod:    string(t.PaymentMethod),
			BillingClientRef: t.BillingClientRef,
		}
	}

	expenses := make([]ExpensePayload, len(rec.Expenses))
	for i, e := range rec.Expenses {
		expenses[i] = ExpensePayload{
			Category:      string(e.Category),
			Description:   e.Description,
			Amount:        e.Amount,
			PaymentMethod: string(e.PaymentMethod),
		}
	}

	breakdown := make(map[string]decimal.Decimal, len(sum.PaymentMethodBreakdown))
	for m, v := range sum.PaymentMethodBreakdown {
		breakdown[string(m)] = v
	}

	return Payload{
		DriverID:             string(rec.DriverID),
		VehicleID:            string(rec.VehicleID),
		PlateNumber:          rec.PlateNumber,
		ShiftDate:            rec.ShiftDate,
		StartTime:            rec.StartTime,
		EndTime:              rec.EndTime,
		InterruptionDuration: rec.InterruptionDuration,
		CompensationRule:     string(rec.CompensationRule),
		CompensationRate:     rateValue(rec.CompensationRate),
		Note:                 rec.Note,
		VehicleOdometer:      rec.Odometer,
		Trips:                trips,
		Expenses:             expenses,
		Reconciliation: ReconciliationPayload{
			TotalRevenue:       sum.TotalRevenue,
			TotalMeterPrice:    sum.TotalMeterPrice,
			TotalExpensesCash:  sum.TotalExpensesCash,
			TotalExpensesCard:  sum.TotalExpensesCard,
			CompensationAmount: sum.CompensationAmount,
			NetResult:          sum.NetResult,
		},
		CompensationExplanation: sum.CompensationExplanation,
		PaymentMethodBreakdown:  breakdown,
	}
}

// ToRecord maps a payload back onto the canonical record shape. This is
// the single adapter between the persistence boundary and the core;
// legacy field spellings are handled one layer further out, in the API
// DTOs.
func (p Payload) ToRecord() sheet.ShiftRecord {
	trips := make([]sheet.Trip, len(p.Trips))
	for i, t := range p.Trips {
		trips[i] = sheet.Trip{
			SequenceNumber:   t.SequenceNumber,
			DepartureIndex:   t.DepartureIndex,
			PickupIndex:      t.PickupIndex,
			PickupPlace:      t.PickupPlace,
			PickupTime:       t.PickupTime,
			DropoffIndex:     t.DropoffIndex,
			DropoffPlace:     t.DropoffPlace,
			DropoffTime:      t.DropoffTime,
			MeterPrice:       t.MeterPrice,
			AmountCollected:  t.AmountCollected,
			PaymentMethod:    sheet.PaymentMethod(t.PaymentMethod),
			BillingClientRef: t.BillingClientRef,
		}
	}

	expenses := make([]sheet.Expense, len(p.Expenses))
	for i, e := range p.Expenses {
		expenses[i] = sheet.Expense{
			Category:      sheet.ExpenseCategory(e.Category),
			Description:   e.Description,
			Amount:        e.Amount,
			PaymentMethod: sheet.PaymentMethod(e.PaymentMethod),
		}
	}

	rec := sheet.ShiftRecord{
		DriverID:             sheet.DriverID(p.DriverID),
		VehicleID:            sheet.VehicleID(p.VehicleID),
		PlateNumber:          p.PlateNumber,
		ShiftDate:            p.ShiftDate,
		StartTime:            p.StartTime,
		EndTime:              p.EndTime,
		InterruptionDuration: p.InterruptionDuration,
		CompensationRule:     pay.Rule(p.CompensationRule),
		Note:                 p.Note,
		Odometer:             p.VehicleOdometer,
		Trips:                trips,
		Expenses:             expenses,
		StepStatus:           make(map[string]sheet.StepStatus),
	}
	if rec.CompensationRule.RateBased() {
		rate := p.CompensationRate
		rec.CompensationRate = &rate
	}
	return rec
}
