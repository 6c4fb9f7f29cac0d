/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for the draft workflow API. These types
  decouple the domain model from the wire contract and are the ONE
  place where legacy field spellings are accepted: the previous
  front-ends disagreed on trip field names (indexDepart vs
  indexEmbarquement and friends), so the request types carry the legacy
  aliases and normalize them before anything reaches the core.

NAMING CONVENTION:
  - *Request: Request body types from clients
  - *DTO: Response types returned to clients

VALIDATION:
  None here. DTOs are carriers; validation happens in the sheet
  validators at the step boundary, and field-keyed errors are returned
  in ErrorDTO.Fields.
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/draft"
	"github.com/warp/routesheet-engine/reconcile"
	"github.com/warp/routesheet-engine/sheet"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// IdentityRequest is the advance body on the identity step.
type IdentityRequest struct {
	DriverID             string `json:"driverId"`
	ShiftDate            string `json:"shiftDate"`
	StartTime            string `json:"startTime"`
	EndTime              string `json:"endTime"`
	InterruptionDuration string `json:"interruptionDuration"`
	CompensationRule     string `json:"compensationRule"`
	CompensationRate     string `json:"compensationRate"`
	Note                 string `json:"note"`
}

func (r IdentityRequest) toInput() sheet.IdentityInput {
	return sheet.IdentityInput(r)
}

// VehicleRequest is the advance body on the vehicle step.
type VehicleRequest struct {
	VehicleID   string            `json:"vehicleId"`
	PlateNumber string            `json:"plateNumber"`
	Odometer    sheet.OdometerSet `json:"odometer"`
}

func (r VehicleRequest) toInput() sheet.VehicleInput {
	return sheet.VehicleInput(r)
}

// TripRequest is one fare from a client. Canonical names first; the
// legacy aliases below are what the two old capture screens sent.
type TripRequest struct {
	DepartureIndex   *int64 `json:"departureIndex"`
	PickupIndex      *int64 `json:"pickupIndex"`
	PickupPlace      string `json:"pickupPlace"`
	PickupTime       string `json:"pickupTime"`
	DropoffIndex     *int64 `json:"dropoffIndex"`
	DropoffPlace     string `json:"dropoffPlace"`
	DropoffTime      string `json:"dropoffTime"`
	MeterPrice       string `json:"meterPrice"`
	AmountCollected  string `json:"amountCollected"`
	PaymentMethod    string `json:"paymentMethod"`
	BillingClientRef string `json:"billingClientRef"`
	Placeholder      bool   `json:"placeholder"`

	// Legacy aliases. Screen A spoke indexDepart/indexArrivee, screen B
	// indexEmbarquement/indexDebarquement; both reach the same canonical
	// field here and nowhere else.
	LegacyIndexDepart       *int64 `json:"indexDepart,omitempty"`
	LegacyIndexEmbarquement *int64 `json:"indexEmbarquement,omitempty"`
	LegacyIndexArrivee      *int64 `json:"indexArrivee,omitempty"`
	LegacyIndexDebarquement *int64 `json:"indexDebarquement,omitempty"`
	LegacyLieuEmbarquement  string `json:"lieuEmbarquement,omitempty"`
	LegacyHeureEmbarquement string `json:"heureEmbarquement,omitempty"`
	LegacyLieuDebarquement  string `json:"lieuDebarquement,omitempty"`
	LegacyHeureDebarquement string `json:"heureDebarquement,omitempty"`
	LegacyPrixTaximetre     string `json:"prixTaximetre,omitempty"`
	LegacySommePercue       string `json:"sommePercue,omitempty"`
}

// toInput normalizes the request, canonical fields winning over legacy
// aliases when both are present.
func (r TripRequest) toInput() sheet.TripInput {
	in := sheet.TripInput{
		PickupPlace:      firstNonEmpty(r.PickupPlace, r.LegacyLieuEmbarquement),
		PickupTime:       firstNonEmpty(r.PickupTime, r.LegacyHeureEmbarquement),
		DropoffPlace:     firstNonEmpty(r.DropoffPlace, r.LegacyLieuDebarquement),
		DropoffTime:      firstNonEmpty(r.DropoffTime, r.LegacyHeureDebarquement),
		MeterPrice:       firstNonEmpty(r.MeterPrice, r.LegacyPrixTaximetre),
		AmountCollected:  firstNonEmpty(r.AmountCollected, r.LegacySommePercue),
		PaymentMethod:    r.PaymentMethod,
		BillingClientRef: r.BillingClientRef,
		Placeholder:      r.Placeholder,
	}
	in.DepartureIndex = firstInt(r.DepartureIndex, r.LegacyIndexDepart)
	in.PickupIndex = firstInt(r.PickupIndex, r.LegacyIndexEmbarquement)
	in.DropoffIndex = firstInt(r.DropoffIndex, r.LegacyIndexArrivee, r.LegacyIndexDebarquement)
	return in
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...*int64) int64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

// ExpenseRequest is one outlay from a client.
type ExpenseRequest struct {
	Category      string `json:"category"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"paymentMethod"`
}

func (r ExpenseRequest) toInput() sheet.ExpenseInput {
	return sheet.ExpenseInput(r)
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// DraftDTO is the draft state returned to clients.
type DraftDTO struct {
	ID              string          `json:"id"`
	Step            string          `json:"step"`
	StepStatus      map[string]bool `json:"stepStatus"`
	Record          draft.Payload   `json:"record"`
	SubmissionError string          `json:"submissionError,omitempty"`
	Trips           []TripDTO       `json:"trips"`
	Expenses        []ExpenseDTO    `json:"expenses"`
}

// TripDTO carries the ledger's temporary id so clients can update and
// remove records before submission.
type TripDTO struct {
	ID               string          `json:"id"`
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
	Placeholder      bool            `json:"placeholder,omitempty"`
}

type ExpenseDTO struct {
	ID            string          `json:"id"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
}

// SummaryDTO is the live reconciliation.
type SummaryDTO struct {
	TotalRevenue            decimal.Decimal            `json:"totalRevenue"`
	TotalMeterPrice         decimal.Decimal            `json:"totalMeterPrice"`
	TotalExpensesCash       decimal.Decimal            `json:"totalExpensesCash"`
	TotalExpensesCard       decimal.Decimal            `json:"totalExpensesCard"`
	CompensationAmount      decimal.Decimal            `json:"compensationAmount"`
	CompensationExplanation string                     `json:"compensationExplanation"`
	NetResult               decimal.Decimal            `json:"netResult"`
	HoursWorked             decimal.Decimal            `json:"hoursWorked"`
	PaymentMethodBreakdown  map[string]decimal.Decimal `json:"paymentMethodBreakdown"`
	IncompleteTimeData      bool                       `json:"incompleteTimeData,omitempty"`
	UnknownRule             bool                       `json:"unknownRule,omitempty"`
}

// ErrorDTO is the error envelope. Fields carries field-keyed validation
// messages; Sequences carries offending trip numbers on a blocked
// submission.
type ErrorDTO struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	Sequences []int             `json:"sequences,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func draftDTO(d *draft.Draft) DraftDTO {
	s := d.State()
	status := make(map[string]bool, len(s.Record.StepStatus))
	for step, st := range s.Record.StepStatus {
		status[step] = st.IsDone
	}

	trips := make([]TripDTO, len(s.Record.Trips))
	for i, t := range s.Record.Trips {
		trips[i] = TripDTO{
			ID:               t.ID,
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
			Placeholder:      t.Placeholder,
		}
	}

	expenses := make([]ExpenseDTO, len(s.Record.Expenses))
	for i, e := range s.Record.Expenses {
		expenses[i] = ExpenseDTO{
			ID:            e.ID,
			Category:      string(e.Category),
			Description:   e.Description,
			Amount:        e.Amount,
			PaymentMethod: string(e.PaymentMethod),
		}
	}

	return DraftDTO{
		ID:              d.ID(),
		Step:            string(s.Step),
		StepStatus:      status,
		Record:          draft.BuildPayload(s.Record, d.Summary()),
		SubmissionError: s.SubmissionError,
		Trips:           trips,
		Expenses:        expenses,
	}
}

func summaryDTO(r reconcile.Result) SummaryDTO {
	breakdown := make(map[string]decimal.Decimal, len(r.PaymentMethodBreakdown))
	for m, v := range r.PaymentMethodBreakdown {
		breakdown[string(m)] = v
	}
	return SummaryDTO{
		TotalRevenue:            r.TotalRevenue,
		TotalMeterPrice:         r.TotalMeterPrice,
		TotalExpensesCash:       r.TotalExpensesCash,
		TotalExpensesCard:       r.TotalExpensesCard,
		CompensationAmount:      r.CompensationAmount,
		CompensationExplanation: r.CompensationExplanation,
		NetResult:               r.NetResult,
		HoursWorked:             r.HoursWorked,
		PaymentMethodBreakdown:  breakdown,
		IncompleteTimeData:      r.IncompleteTimeData,
		UnknownRule:             r.UnknownRule,
	}
}
