/*
Package reconcile derives the financial summary of a shift.

PURPOSE:
  Folds the trip and expense ledgers plus the compensation calculator
  output into the figures printed on the route sheet: revenue, meter
  total, expenses by settlement method, driver compensation, and the
  net result for the operator.

DESIGN PRINCIPLES:
  1. Purity: Summarize reads an immutable snapshot and returns a new
     Result. No side effects, no hidden accumulators; calling it twice
     on an unchanged record yields identical results, so the UI can
     recompute live while the user edits.
  2. Meter vs collected: TotalMeterPrice is kept separate from
     TotalRevenue. A gap between them is tips or discounts - reported,
     never an error.
  3. Report, don't block: degraded calculator inputs (unparsable time
     window, unknown rule) surface as flags on the Result.

SEE ALSO:
  - pay: Compensation calculation
  - draft: Invokes Summarize on the summary step and at submission
*/
package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/money"
	"github.com/warp/routesheet-engine/pay"
	"github.com/warp/routesheet-engine/sheet"
)

// Result is the derived reconciliation of one shift. Never persisted on
// its own; recomputed from the record whenever needed.
type Result struct {
	TotalRevenue    decimal.Decimal
	TotalMeterPrice decimal.Decimal

	TotalExpensesCash decimal.Decimal
	TotalExpensesCard decimal.Decimal

	CompensationAmount      decimal.Decimal
	CompensationExplanation string

	// NetResult = TotalRevenue - CompensationAmount
	//           - TotalExpensesCash - TotalExpensesCard
	NetResult decimal.Decimal

	// PaymentMethodBreakdown folds every trip's collected amount into a
	// bucket per settlement method.
	PaymentMethodBreakdown map[sheet.PaymentMethod]decimal.Decimal

	HoursWorked decimal.Decimal

	// Degradation flags. Neither blocks anything; both are surfaced for
	// display.
	IncompleteTimeData bool
	UnknownRule        bool
}

// Summarize aggregates the record's ledgers and the calculator output.
func Summarize(rec sheet.ShiftRecord, plan pay.Plan) Result {
	revenue := decimal.Zero
	meter := decimal.Zero
	breakdown := make(map[sheet.PaymentMethod]decimal.Decimal)

	for _, t := range rec.Trips {
		revenue = revenue.Add(t.AmountCollected)
		meter = meter.Add(t.MeterPrice)
		if t.PaymentMethod != "" {
			breakdown[t.PaymentMethod] = breakdown[t.PaymentMethod].Add(t.AmountCollected)
		}
	}

	cash := decimal.Zero
	card := decimal.Zero
	for _, e := range rec.Expenses {
		switch e.PaymentMethod {
		case sheet.PayCash:
			cash = cash.Add(e.Amount)
		case sheet.PayCard:
			card = card.Add(e.Amount)
		}
	}

	hours, timeOK := pay.HoursWorked(rec.StartTime, rec.EndTime, rec.InterruptionDuration)
	comp := pay.Compute(plan, rec.CompensationRule, rec.CompensationRate, revenue, hours)

	for m, v := range breakdown {
		breakdown[m] = money.Round2(v)
	}

	revenue = money.Round2(revenue)
	cash = money.Round2(cash)
	card = money.Round2(card)

	return Result{
		TotalRevenue:            revenue,
		TotalMeterPrice:         money.Round2(meter),
		TotalExpensesCash:       cash,
		TotalExpensesCard:       card,
		CompensationAmount:      comp.Amount,
		CompensationExplanation: comp.Explanation,
		NetResult:               money.Round2(revenue.Sub(comp.Amount).Sub(cash).Sub(card)),
		PaymentMethodBreakdown:  breakdown,
		HoursWorked:             hours,
		IncompleteTimeData:      !timeOK,
		UnknownRule:             comp.UnknownRule,
	}
}
