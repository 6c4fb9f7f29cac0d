package sheet_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/warp/routesheet-engine/sheet"
)

func validIdentity() sheet.IdentityInput {
	return sheet.IdentityInput{
		DriverID:             "drv-7",
		ShiftDate:            "2026-03-10",
		StartTime:            "06:00",
		EndTime:              "14:00",
		InterruptionDuration: "00:30",
		CompensationRule:     "MIXED_40_THEN_30",
	}
}

func TestValidateIdentity_Valid(t *testing.T) {
	assert.Empty(t, sheet.ValidateIdentity(validIdentity()))
}

func TestValidateIdentity_EndTimeOpenUntilShiftClose(t *testing.T) {
	in := validIdentity()
	in.EndTime = ""
	in.InterruptionDuration = ""
	assert.Empty(t, sheet.ValidateIdentity(in), "end time stays empty until the shift closes")
}

func TestValidateIdentity_FieldRules(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*sheet.IdentityInput)
		field  string
	}{
		{"missing driver", func(in *sheet.IdentityInput) { in.DriverID = "" }, "driverId"},
		{"bad date", func(in *sheet.IdentityInput) { in.ShiftDate = "10/03/2026" }, "shiftDate"},
		{"bad start", func(in *sheet.IdentityInput) { in.StartTime = "6h00" }, "startTime"},
		{"end before start", func(in *sheet.IdentityInput) { in.EndTime = "05:00" }, "endTime"},
		{"end equals start", func(in *sheet.IdentityInput) { in.EndTime = "06:00" }, "endTime"},
		{"interruption exceeds window", func(in *sheet.IdentityInput) { in.InterruptionDuration = "09:00" }, "interruptionDuration"},
		{"unknown rule", func(in *sheet.IdentityInput) { in.CompensationRule = "PERCENT_50" }, "compensationRule"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := validIdentity()
			c.mutate(&in)
			errs := sheet.ValidateIdentity(in)
			assert.Contains(t, errs, c.field)
		})
	}
}

func TestValidateIdentity_RateRequiredIffRateBased(t *testing.T) {
	// Rate-based rule without a rate: rejected.
	in := validIdentity()
	in.CompensationRule = "FLAT_SALARY"
	assert.Contains(t, sheet.ValidateIdentity(in), "compensationRate")

	// With a rate: accepted.
	in.CompensationRate = "120,00"
	assert.Empty(t, sheet.ValidateIdentity(in))

	// Percentage rule ignores the rate either way.
	in = validIdentity()
	in.CompensationRule = "PERCENT_40"
	assert.Empty(t, sheet.ValidateIdentity(in))
	in.CompensationRate = "whatever"
	assert.Empty(t, sheet.ValidateIdentity(in), "rate is ignored for revenue-only rules")
}

func TestValidateVehicle_OdometerPairs(t *testing.T) {
	in := sheet.VehicleInput{
		VehicleID:   "veh-3",
		PlateNumber: "TXA-904",
		Odometer: sheet.OdometerSet{
			BoardKmStart: 154200, BoardKmEnd: 154410,
			TaxiTotalKmStart: 98100, TaxiTotalKmEnd: 98305,
			TaxiChargedKmStart: 61000, TaxiChargedKmEnd: 61120,
			TaxiPickupsStart: 8100, TaxiPickupsEnd: 8121,
			TaxiFallsStart: 30500, TaxiFallsEnd: 30610,
			TaxiRevenueStart: decimal.RequireFromString("175400.50"),
			TaxiRevenueEnd:   decimal.RequireFromString("175820.00"),
		},
	}
	assert.Empty(t, sheet.ValidateVehicle(in))

	in.Odometer.BoardKmEnd = 154000
	assert.Contains(t, sheet.ValidateVehicle(in), "boardKm")

	in.Odometer.BoardKmEnd = 154410
	in.Odometer.TaxiRevenueEnd = decimal.RequireFromString("100.00")
	assert.Contains(t, sheet.ValidateVehicle(in), "taxiRevenue")

	in = sheet.VehicleInput{PlateNumber: "TXA-904"}
	assert.Contains(t, sheet.ValidateVehicle(in), "vehicleId")
}

func TestShiftRecord_Clone_IsDeep(t *testing.T) {
	rate := decimal.RequireFromString("120")
	rec := sheet.ShiftRecord{
		DriverID:         "drv-1",
		CompensationRate: &rate,
		Trips:            []sheet.Trip{{ID: "t1", SequenceNumber: 1}},
		StepStatus:       map[string]sheet.StepStatus{"identity": {IsDone: true}},
	}

	clone := rec.Clone()
	clone.Trips[0].SequenceNumber = 99
	*clone.CompensationRate = decimal.RequireFromString("999")
	clone.StepStatus["identity"] = sheet.StepStatus{IsDone: false}

	assert.Equal(t, 1, rec.Trips[0].SequenceNumber)
	assert.Equal(t, "120", rec.CompensationRate.String())
	assert.True(t, rec.StepStatus["identity"].IsDone)
}
