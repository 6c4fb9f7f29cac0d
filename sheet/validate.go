/*
validate.go - Declarative field validation for step inputs

PURPOSE:
  One canonical record shape, one validator table. The legacy system
  carried two slightly divergent copies of the capture flow with their
  own ad-hoc checks; here every step input is validated by composing
  small checks (required, clock, date, amount) declared per field, plus
  explicit cross-field rules.

CONTRACT:
  Validators return a FieldErrors map keyed by field name. An empty map
  means the input is accepted. Validation never mutates anything and
  never touches already-stored data.

SEE ALSO:
  - errors.go: FieldErrors
  - draft: calls these at each step boundary
*/
package sheet

import (
	"fmt"
	"time"

	"github.com/warp/routesheet-engine/money"
	"github.com/warp/routesheet-engine/pay"
)

// =============================================================================
// STEP INPUTS
// =============================================================================

// IdentityInput is the first capture step: who drove, when, under which
// pay rule. Monetary and time values arrive as operator-typed strings.
type IdentityInput struct {
	DriverID             string
	ShiftDate            string // "2006-01-02"
	StartTime            string // "HH:MM"
	EndTime              string // "HH:MM", may stay empty until shift close
	InterruptionDuration string // "HH:MM" elapsed
	CompensationRule     string
	CompensationRate     string // required iff the rule is rate-based
	Note                 string
}

// VehicleInput is the second capture step.
type VehicleInput struct {
	VehicleID   string
	PlateNumber string
	Odometer    OdometerSet
}

// TripInput is one fare as typed by the operator. Monetary fields are
// raw strings; the ledger normalizes them before storage.
type TripInput struct {
	DepartureIndex int64
	PickupIndex    int64
	PickupPlace    string
	PickupTime     string
	DropoffIndex   int64
	DropoffPlace   string
	DropoffTime    string

	MeterPrice       string
	AmountCollected  string
	PaymentMethod    string
	BillingClientRef string

	// Placeholder relaxes required-field checks so a fare can be jotted
	// down mid-rush and completed later. Format checks still apply to
	// whatever was typed.
	Placeholder bool
}

// ExpenseInput is one outlay as typed by the operator.
type ExpenseInput struct {
	Category      string
	Description   string
	Amount        string
	PaymentMethod string
}

// =============================================================================
// FIELD CHECKS - small composable rules
// =============================================================================

type check func(value string) string // "" means ok

func required(v string) string {
	if v == "" {
		return "required"
	}
	return ""
}

func clock(v string) string {
	if v == "" {
		return ""
	}
	if _, err := pay.ParseClock(v); err != nil {
		return "must be HH:MM"
	}
	return ""
}

func elapsed(v string) string {
	if v == "" {
		return ""
	}
	if _, err := pay.ParseElapsed(v); err != nil {
		return "must be HH:MM"
	}
	return ""
}

func date(v string) string {
	if v == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		return "must be YYYY-MM-DD"
	}
	return ""
}

func amount(v string) string {
	if v == "" {
		return ""
	}
	if _, err := money.ParseNonNegative(v); err != nil {
		return "must be a non-negative amount"
	}
	return ""
}

// fieldRule binds one field value to its checks.
type fieldRule struct {
	field  string
	value  string
	checks []check
}

func runTable(rules []fieldRule) FieldErrors {
	errs := FieldErrors{}
	for _, r := range rules {
		for _, c := range r.checks {
			if msg := c(r.value); msg != "" {
				errs[r.field] = msg
				break // first failing check per field wins
			}
		}
	}
	return errs
}

// =============================================================================
// STEP VALIDATORS
// =============================================================================

// ValidateIdentity checks the identity step input.
func ValidateIdentity(in IdentityInput) FieldErrors {
	errs := runTable([]fieldRule{
		{"driverId", in.DriverID, []check{required}},
		{"shiftDate", in.ShiftDate, []check{required, date}},
		{"startTime", in.StartTime, []check{required, clock}},
		{"endTime", in.EndTime, []check{clock}},
		{"interruptionDuration", in.InterruptionDuration, []check{elapsed}},
		{"compensationRule", in.CompensationRule, []check{required}},
	})

	rule := pay.Rule(in.CompensationRule)
	if in.CompensationRule != "" && !rule.Known() {
		errs["compensationRule"] = "unknown compensation rule"
	}

	// Rate is required exactly for the rate-based variants and ignored
	// otherwise.
	if rule.Known() {
		if rule.RateBased() {
			if in.CompensationRate == "" {
				errs["compensationRate"] = "required for this rule"
			} else if _, err := money.ParseNonNegative(in.CompensationRate); err != nil {
				errs["compensationRate"] = "must be a non-negative amount"
			}
		}
	}

	// Cross-field: the window must be positive and contain the
	// interruption.
	if errs["startTime"] == "" && errs["endTime"] == "" && in.EndTime != "" {
		start, _ := pay.ParseClock(in.StartTime)
		end, _ := pay.ParseClock(in.EndTime)
		if end <= start {
			errs["endTime"] = "must be after start time"
		} else if errs["interruptionDuration"] == "" && in.InterruptionDuration != "" {
			pause, _ := pay.ParseElapsed(in.InterruptionDuration)
			if pause > end-start {
				errs["interruptionDuration"] = "exceeds the shift window"
			}
		}
	}

	return errs
}

// ValidateVehicle checks the vehicle step input. End readings may not
// run backwards from their start readings.
func ValidateVehicle(in VehicleInput) FieldErrors {
	errs := runTable([]fieldRule{
		{"vehicleId", in.VehicleID, []check{required}},
		{"plateNumber", in.PlateNumber, []check{required}},
	})

	o := in.Odometer
	pairs := []struct {
		field      string
		start, end int64
	}{
		{"boardKm", o.BoardKmStart, o.BoardKmEnd},
		{"taxiTotalKm", o.TaxiTotalKmStart, o.TaxiTotalKmEnd},
		{"taxiChargedKm", o.TaxiChargedKmStart, o.TaxiChargedKmEnd},
		{"taxiPickups", o.TaxiPickupsStart, o.TaxiPickupsEnd},
		{"taxiFalls", o.TaxiFallsStart, o.TaxiFallsEnd},
	}
	for _, p := range pairs {
		if p.start < 0 || p.end < 0 {
			errs[p.field] = "readings cannot be negative"
		} else if p.end < p.start {
			errs[p.field] = "end reading below start reading"
		}
	}
	if o.TaxiRevenueEnd.LessThan(o.TaxiRevenueStart) {
		errs["taxiRevenue"] = "end reading below start reading"
	}

	return errs
}

// ValidateTrip checks one trip input. Placeholder trips skip
// required-field checks but whatever was typed must still be
// well-formed.
func ValidateTrip(in TripInput) FieldErrors {
	rules := []fieldRule{
		{"pickupTime", in.PickupTime, []check{clock}},
		{"dropoffTime", in.DropoffTime, []check{clock}},
		{"meterPrice", in.MeterPrice, []check{amount}},
		{"amountCollected", in.AmountCollected, []check{amount}},
	}
	if !in.Placeholder {
		rules = append(rules,
			fieldRule{"pickupPlace", in.PickupPlace, []check{required}},
			fieldRule{"pickupTime", in.PickupTime, []check{required, clock}},
			fieldRule{"dropoffPlace", in.DropoffPlace, []check{required}},
			fieldRule{"dropoffTime", in.DropoffTime, []check{required, clock}},
			fieldRule{"meterPrice", in.MeterPrice, []check{required, amount}},
			fieldRule{"amountCollected", in.AmountCollected, []check{required, amount}},
			fieldRule{"paymentMethod", in.PaymentMethod, []check{required}},
		)
	}
	errs := runTable(rules)

	if in.PaymentMethod != "" && !TripPaymentMethods[PaymentMethod(in.PaymentMethod)] {
		errs["paymentMethod"] = "unknown payment method"
	}
	switch {
	case PaymentMethod(in.PaymentMethod) == PayInvoice && in.BillingClientRef == "":
		errs["billingClientRef"] = "required for invoiced trips"
	case PaymentMethod(in.PaymentMethod) != PayInvoice && in.BillingClientRef != "":
		errs["billingClientRef"] = "only allowed for invoiced trips"
	}

	if in.DepartureIndex < 0 || in.PickupIndex < 0 || in.DropoffIndex < 0 {
		errs["departureIndex"] = "indexes cannot be negative"
	} else if in.DropoffIndex < in.DepartureIndex {
		errs["dropoffIndex"] = fmt.Sprintf("drop-off index %d below departure index %d",
			in.DropoffIndex, in.DepartureIndex)
	}

	return errs
}

// ValidateExpense checks one expense input.
func ValidateExpense(in ExpenseInput) FieldErrors {
	errs := runTable([]fieldRule{
		{"category", in.Category, []check{required}},
		{"description", in.Description, []check{required}},
		{"amount", in.Amount, []check{required, amount}},
		{"paymentMethod", in.PaymentMethod, []check{required}},
	})

	if in.Category != "" && !ExpenseCategories[ExpenseCategory(in.Category)] {
		errs["category"] = "unknown expense category"
	}
	if in.PaymentMethod != "" && !ExpensePaymentMethods[PaymentMethod(in.PaymentMethod)] {
		errs["paymentMethod"] = "cash, card or transfer only"
	}

	return errs
}
