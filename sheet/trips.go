/*
trips.go - Ordered trip ledger with contiguous sequence numbering

PURPOSE:
  Holds the fares of one shift in capture order. The ledger owns two
  invariants:

  1. SEQUENCE NUMBERS: 1-based, contiguous, ascending. Append assigns
     the next number; Remove renumbers everything after the gap. Update
     never renumbers.

  2. NORMALIZED AMOUNTS: monetary input strings are normalized
     (comma or dot separator, whitespace stripped) through money.Parse
     before storage. Non-numeric input is a validation error, never a
     silent zero.

LIFECYCLE:
  Records carry temporary uuid identifiers until the shift submits;
  the store assigns permanent identifiers. The ledger may become empty
  again through explicit removal - the draft then drops the trips
  step's done flag.

SEE ALSO:
  - expenses.go: The unordered counterpart
  - draft: Owns one ledger per draft and snapshots it into the record
*/
package sheet

import (
	"github.com/google/uuid"
)

// TripLedger is the ordered trip collection of one shift draft.
type TripLedger struct {
	trips []Trip
}

// NewTripLedger builds a ledger over a copy of the given trips.
func NewTripLedger(trips []Trip) *TripLedger {
	return &TripLedger{trips: append([]Trip(nil), trips...)}
}

// Trips returns a copy in sequence order.
func (l *TripLedger) Trips() []Trip {
	return append([]Trip(nil), l.trips...)
}

// Len returns the number of trips.
func (l *TripLedger) Len() int { return len(l.trips) }

// Get finds a trip by its temporary id.
func (l *TripLedger) Get(id string) (Trip, bool) {
	for _, t := range l.trips {
		if t.ID == id {
			return t, true
		}
	}
	return Trip{}, false
}

// Append validates and normalizes the input, assigns a temporary id and
// the next contiguous sequence number, and stores the trip.
func (l *TripLedger) Append(in TripInput) (Trip, error) {
	if errs := ValidateTrip(in); len(errs) > 0 {
		return Trip{}, errs
	}
	t, err := tripFromInput(in)
	if err != nil {
		return Trip{}, err
	}
	t.ID = uuid.NewString()
	t.SequenceNumber = len(l.trips) + 1
	l.trips = append(l.trips, t)
	return t, nil
}

// Update replaces the editable fields of an existing trip in place.
// Sequence numbers are untouched.
func (l *TripLedger) Update(id string, in TripInput) (Trip, error) {
	idx := -1
	for i, t := range l.trips {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Trip{}, ErrTripNotFound
	}
	if errs := ValidateTrip(in); len(errs) > 0 {
		return Trip{}, errs
	}
	t, err := tripFromInput(in)
	if err != nil {
		return Trip{}, err
	}
	t.ID = l.trips[idx].ID
	t.SequenceNumber = l.trips[idx].SequenceNumber
	l.trips[idx] = t
	return t, nil
}

// Remove deletes a trip and renumbers the remainder contiguously from 1.
// Removing the last remaining trip is permitted; the ledger can become
// empty only through explicit removal.
func (l *TripLedger) Remove(id string) error {
	idx := -1
	for i, t := range l.trips {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrTripNotFound
	}
	l.trips = append(l.trips[:idx], l.trips[idx+1:]...)
	for i := range l.trips {
		l.trips[i].SequenceNumber = i + 1
	}
	return nil
}

// Unresolved returns the sequence numbers of trips that cannot go into
// a submission payload yet, in order.
func (l *TripLedger) Unresolved() []int {
	var seqs []int
	for _, t := range l.trips {
		if !t.Resolved() {
			seqs = append(seqs, t.SequenceNumber)
		}
	}
	return seqs
}

// tripFromInput converts validated input into a stored trip. Monetary
// strings have already passed the amount check; empty strings (legal on
// placeholders only) store as zero.
func tripFromInput(in TripInput) (Trip, error) {
	t := Trip{
		DepartureIndex:   in.DepartureIndex,
		PickupIndex:      in.PickupIndex,
		PickupPlace:      in.PickupPlace,
		PickupTime:       in.PickupTime,
		DropoffIndex:     in.DropoffIndex,
		DropoffPlace:     in.DropoffPlace,
		DropoffTime:      in.DropoffTime,
		PaymentMethod:    PaymentMethod(in.PaymentMethod),
		BillingClientRef: in.BillingClientRef,
		Placeholder:      in.Placeholder,
	}
	var err error
	if t.MeterPrice, err = parseOptionalAmount(in.MeterPrice); err != nil {
		return Trip{}, FieldErrors{"meterPrice": "must be a non-negative amount"}
	}
	if t.AmountCollected, err = parseOptionalAmount(in.AmountCollected); err != nil {
		return Trip{}, FieldErrors{"amountCollected": "must be a non-negative amount"}
	}
	return t, nil
}
