/*
Package sheet defines the canonical route-sheet domain model and the two
in-memory ledgers a shift draft is built from.

PURPOSE:
  A route sheet records one driver + one vehicle + one working period:
  the shift header, its ordered trips, its expenses, and the odometer and
  taximeter readings taken at shift start and end.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftRecord: The aggregate root a draft builds up step by step
  - Trip: One completed paid fare (ordered, contiguous sequence numbers)
  - Expense: One outlay charged against the shift (unordered)
  - PaymentMethod / ExpenseCategory: Closed enumerations
  - OdometerSet: Start/end reading pairs, reporting only

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every monetary field, no float64
  2. Type Safety: typed string IDs for drivers and vehicles
  3. One canonical shape: legacy field spellings are reconciled in a
     single adapter at the API boundary, never here

SEE ALSO:
  - validate.go: Declarative field validation for each record shape
  - trips.go / expenses.go: The ledgers that own these records
  - draft: The state machine that assembles a ShiftRecord
*/
package sheet

import (
	"github.com/shopspring/decimal"
	"github.com/warp/routesheet-engine/pay"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type DriverID string
type VehicleID string

// =============================================================================
// PAYMENT METHODS
// =============================================================================

// PaymentMethod identifies how a fare or expense was settled.
type PaymentMethod string

const (
	PayCash     PaymentMethod = "cash"
	PayCard     PaymentMethod = "card"
	PayInvoice  PaymentMethod = "invoice" // requires BillingClientRef
	PayTransfer PaymentMethod = "transfer"
	PayAdvance  PaymentMethod = "advance"

	// Institutional accounts settled monthly against a framework contract.
	PaySocialAccount PaymentMethod = "account_social"
	PayCityAccount   PaymentMethod = "account_city"
)

// TripPaymentMethods is the closed set accepted on trips.
var TripPaymentMethods = map[PaymentMethod]bool{
	PayCash:          true,
	PayCard:          true,
	PayInvoice:       true,
	PayTransfer:      true,
	PayAdvance:       true,
	PaySocialAccount: true,
	PayCityAccount:   true,
}

// ExpensePaymentMethods is the subset accepted on expenses.
var ExpensePaymentMethods = map[PaymentMethod]bool{
	PayCash:     true,
	PayCard:     true,
	PayTransfer: true,
}

// =============================================================================
// EXPENSE CATEGORIES
// =============================================================================

type ExpenseCategory string

const (
	ExpenseFuel        ExpenseCategory = "fuel"
	ExpenseToll        ExpenseCategory = "toll"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseCarwash     ExpenseCategory = "carwash"
	ExpenseMisc        ExpenseCategory = "misc"
)

var ExpenseCategories = map[ExpenseCategory]bool{
	ExpenseFuel:        true,
	ExpenseToll:        true,
	ExpenseMaintenance: true,
	ExpenseCarwash:     true,
	ExpenseMisc:        true,
}

// =============================================================================
// TRIP - One completed paid fare
// =============================================================================

// Trip is one fare within a shift. The ID is a temporary identifier
// assigned on ledger append; the store assigns permanent identifiers on
// submission. SequenceNumber is 1-based and kept contiguous by the
// ledger.
type Trip struct {
	ID             string
	SequenceNumber int

	DepartureIndex int64 // odometer at departure toward pickup
	PickupIndex    int64 // odometer at pickup
	PickupPlace    string
	PickupTime     string // "HH:MM"
	DropoffIndex   int64 // odometer at drop-off; >= DepartureIndex
	DropoffPlace   string
	DropoffTime    string // "HH:MM"

	MeterPrice      decimal.Decimal // what the meter showed, >= 0
	AmountCollected decimal.Decimal // what the driver actually took, >= 0
	PaymentMethod   PaymentMethod
	BillingClientRef string // set only when PaymentMethod == PayInvoice

	// Placeholder marks a trip captured incompletely during the shift.
	// Placeholders may sit in the ledger while the draft is edited but
	// must be resolved before submission.
	Placeholder bool
}

// MissingMandatory returns the names of mandatory fields not yet
// populated. A trip with no missing fields and Placeholder cleared is
// ready for submission.
func (t Trip) MissingMandatory() []string {
	var missing []string
	if t.PickupPlace == "" {
		missing = append(missing, "pickupPlace")
	}
	if t.PickupTime == "" {
		missing = append(missing, "pickupTime")
	}
	if t.DropoffPlace == "" {
		missing = append(missing, "dropoffPlace")
	}
	if t.DropoffTime == "" {
		missing = append(missing, "dropoffTime")
	}
	if t.PaymentMethod == "" {
		missing = append(missing, "paymentMethod")
	}
	if t.PaymentMethod == PayInvoice && t.BillingClientRef == "" {
		missing = append(missing, "billingClientRef")
	}
	return missing
}

// Resolved reports whether the trip can go into a submission payload.
func (t Trip) Resolved() bool {
	return !t.Placeholder && len(t.MissingMandatory()) == 0
}

// =============================================================================
// EXPENSE - One outlay during the shift
// =============================================================================

type Expense struct {
	ID          string
	Category    ExpenseCategory
	Description string
	Amount      decimal.Decimal // >= 0
	PaymentMethod PaymentMethod // cash, card or transfer
}

// =============================================================================
// ODOMETER / TAXIMETER READINGS
// =============================================================================

// OdometerSet holds the six paired start/end readings taken from the
// dashboard and the taximeter. Reporting only: compensation math never
// reads these.
type OdometerSet struct {
	BoardKmStart int64 `json:"boardStart"`
	BoardKmEnd   int64 `json:"boardEnd"`

	TaxiTotalKmStart int64 `json:"taxiTotalStart"`
	TaxiTotalKmEnd   int64 `json:"taxiTotalEnd"`

	TaxiChargedKmStart int64 `json:"taxiChargedStart"`
	TaxiChargedKmEnd   int64 `json:"taxiChargedEnd"`

	TaxiPickupsStart int64 `json:"taxiPickupsStart"`
	TaxiPickupsEnd   int64 `json:"taxiPickupsEnd"`

	TaxiFallsStart int64 `json:"taxiFallsStart"`
	TaxiFallsEnd   int64 `json:"taxiFallsEnd"`

	TaxiRevenueStart decimal.Decimal `json:"taxiRevenueStart"`
	TaxiRevenueEnd   decimal.Decimal `json:"taxiRevenueEnd"`
}

// =============================================================================
// STEP STATUS
// =============================================================================

// StepStatus tracks per-step completion used to gate navigation.
type StepStatus struct {
	IsDone bool
}

// =============================================================================
// SHIFT RECORD - Aggregate root
// =============================================================================

// ShiftRecord is the route sheet being assembled by a draft. The draft
// state machine is its exclusive owner; everything handed outside is a
// deep copy.
type ShiftRecord struct {
	// Identity step
	DriverID             DriverID
	ShiftDate            string // "2006-01-02"
	StartTime            string // "HH:MM"
	EndTime              string // "HH:MM", empty until the shift is closed
	InterruptionDuration string // "HH:MM" elapsed, zero when empty
	CompensationRule     pay.Rule
	CompensationRate     *decimal.Decimal // required iff the rule is rate-based
	Note                 string

	// Vehicle step
	VehicleID   VehicleID
	PlateNumber string
	Odometer    OdometerSet

	// Ledgers
	Trips    []Trip
	Expenses []Expense

	// Navigation bookkeeping
	StepStatus map[string]StepStatus
}

// Clone returns a deep copy. Snapshots handed to callers and to the
// pure calculators go through here so nothing outside the draft can
// mutate the record.
func (r ShiftRecord) Clone() ShiftRecord {
	out := r
	if r.CompensationRate != nil {
		rate := *r.CompensationRate
		out.CompensationRate = &rate
	}
	out.Trips = append([]Trip(nil), r.Trips...)
	out.Expenses = append([]Expense(nil), r.Expenses...)
	out.StepStatus = make(map[string]StepStatus, len(r.StepStatus))
	for k, v := range r.StepStatus {
		out.StepStatus[k] = v
	}
	return out
}
