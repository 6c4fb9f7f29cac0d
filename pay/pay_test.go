package pay_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/routesheet-engine/pay"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

// =============================================================================
// RULE DISPATCH
// =============================================================================

func TestCompute_FlatSalary_IsTheRate(t *testing.T) {
	res := pay.Compute(pay.DefaultPlan(), pay.RuleFlatSalary, ptr(d("120")), d("999.99"), d("8"))

	assert.Equal(t, "120.00", res.Amount.StringFixed(2))
	assert.False(t, res.UnknownRule)
	assert.Contains(t, res.Explanation, "flat salary")
}

func TestCompute_FlatSalary_NilRate_Zero(t *testing.T) {
	// A rate-based rule without a rate should never reach the calculator
	// (validation catches it), but the calculator still degrades to zero.
	res := pay.Compute(pay.DefaultPlan(), pay.RuleFlatSalary, nil, d("100"), decimal.Zero)
	assert.True(t, res.Amount.IsZero())
}

func TestCompute_Percentages(t *testing.T) {
	plan := pay.DefaultPlan()

	res40 := pay.Compute(plan, pay.RulePercent40, nil, d("250.00"), decimal.Zero)
	assert.Equal(t, "100.00", res40.Amount.StringFixed(2))

	res30 := pay.Compute(plan, pay.RulePercent30, nil, d("250.00"), decimal.Zero)
	assert.Equal(t, "75.00", res30.Amount.StringFixed(2))
}

// =============================================================================
// MIXED RULE - threshold band arithmetic and the boundary tie-break
// =============================================================================

func TestCompute_Mixed_BelowThreshold(t *testing.T) {
	res := pay.Compute(pay.DefaultPlan(), pay.RuleMixed40Then30, nil, d("150.00"), decimal.Zero)
	assert.Equal(t, "60.00", res.Amount.StringFixed(2))
	assert.Contains(t, res.Explanation, "40% of 150.00")
}

func TestCompute_Mixed_ExactlyAtThreshold_UsesHighBand(t *testing.T) {
	// GIVEN: revenue exactly at the configured threshold (180.00)
	// WHEN: computing the mixed rule
	// THEN: the single high-band branch applies (tie-break is <=, not <)

	res := pay.Compute(pay.DefaultPlan(), pay.RuleMixed40Then30, nil, d("180.00"), decimal.Zero)

	assert.Equal(t, "72.00", res.Amount.StringFixed(2))
	// Branch selection is observable through the explanation: a single
	// band, not the two-band formula with a zero excess.
	assert.Contains(t, res.Explanation, "40% of 180.00 = 72.00")
	assert.NotContains(t, res.Explanation, "+")
}

func TestCompute_Mixed_JustAboveThreshold(t *testing.T) {
	// 180 x 0.40 + 0.01 x 0.30 = 72.003, rounded once at the end.
	res := pay.Compute(pay.DefaultPlan(), pay.RuleMixed40Then30, nil, d("180.01"), decimal.Zero)
	assert.Equal(t, "72.00", res.Amount.StringFixed(2))
	assert.Contains(t, res.Explanation, "30% of 0.01")
}

func TestCompute_Mixed_WellAboveThreshold(t *testing.T) {
	// 180 x 0.40 + 120 x 0.30 = 72 + 36 = 108
	res := pay.Compute(pay.DefaultPlan(), pay.RuleMixed40Then30, nil, d("300.00"), decimal.Zero)
	assert.Equal(t, "108.00", res.Amount.StringFixed(2))
}

func TestCompute_Mixed_ConfigurableThreshold(t *testing.T) {
	plan := pay.DefaultPlan()
	plan.MixedThreshold = d("200")

	res := pay.Compute(plan, pay.RuleMixed40Then30, nil, d("190.00"), decimal.Zero)
	assert.Equal(t, "76.00", res.Amount.StringFixed(2), "190 is below a 200 threshold")
}

// =============================================================================
// HOURLY RULES
// =============================================================================

func TestCompute_Hourly(t *testing.T) {
	plan := pay.DefaultPlan()

	low := pay.Compute(plan, pay.RuleHourlyLow, ptr(d("10")), decimal.Zero, d("7.5"))
	assert.Equal(t, "75.00", low.Amount.StringFixed(2))

	high := pay.Compute(plan, pay.RuleHourlyHigh, ptr(d("12")), decimal.Zero, d("7.5"))
	assert.Equal(t, "90.00", high.Amount.StringFixed(2))
}

func TestCompute_Hourly_ZeroHours_ZeroPay(t *testing.T) {
	// Degraded time window: hours come in as zero, pay is zero, no error.
	res := pay.Compute(pay.DefaultPlan(), pay.RuleHourlyLow, ptr(d("10")), d("500"), decimal.Zero)
	assert.True(t, res.Amount.IsZero())
}

// =============================================================================
// UNKNOWN RULE
// =============================================================================

func TestCompute_UnknownRule_FlaggedNotSilent(t *testing.T) {
	res := pay.Compute(pay.DefaultPlan(), pay.Rule("GUESS"), nil, d("100"), d("8"))

	assert.True(t, res.Amount.IsZero())
	assert.True(t, res.UnknownRule)
	assert.Contains(t, res.Explanation, "unknown rule")
}

// =============================================================================
// HOURS WORKED
// =============================================================================

func TestHoursWorked_WindowMinusInterruption(t *testing.T) {
	// GIVEN: 06:00-14:00 with a 30 minute interruption
	// THEN: 7.5 decimal hours

	hours, ok := pay.HoursWorked("06:00", "14:00", "00:30")
	require.True(t, ok)
	assert.Equal(t, "7.50", hours.StringFixed(2))
}

func TestHoursWorked_NoInterruption(t *testing.T) {
	hours, ok := pay.HoursWorked("08:00", "16:15", "")
	require.True(t, ok)
	assert.Equal(t, "8.25", hours.StringFixed(2))
}

func TestHoursWorked_FlooredAtZero(t *testing.T) {
	// Interruption longer than the window cannot yield negative hours.
	hours, ok := pay.HoursWorked("08:00", "09:00", "02:00")
	require.True(t, ok)
	assert.True(t, hours.IsZero())
}

func TestHoursWorked_MissingOrBadTimes_DegradeToZero(t *testing.T) {
	cases := []struct{ start, end, pause string }{
		{"", "14:00", ""},
		{"06:00", "", ""},
		{"six", "14:00", ""},
		{"06:00", "25:99", ""},
		{"06:00", "14:00", "bad"},
	}
	for _, c := range cases {
		hours, ok := pay.HoursWorked(c.start, c.end, c.pause)
		assert.False(t, ok, "start=%q end=%q pause=%q", c.start, c.end, c.pause)
		assert.True(t, hours.IsZero())
	}
}

func TestHoursWorked_RoundsToTwoDecimals(t *testing.T) {
	// 06:00-14:20 = 8h20 = 8.3333... -> 8.33
	hours, ok := pay.HoursWorked("06:00", "14:20", "")
	require.True(t, ok)
	assert.Equal(t, "8.33", hours.StringFixed(2))
}

// =============================================================================
// RULE METADATA
// =============================================================================

func TestRule_RateBased(t *testing.T) {
	assert.True(t, pay.RuleFlatSalary.RateBased())
	assert.True(t, pay.RuleHourlyLow.RateBased())
	assert.True(t, pay.RuleHourlyHigh.RateBased())
	assert.False(t, pay.RulePercent40.RateBased())
	assert.False(t, pay.RulePercent30.RateBased())
	assert.False(t, pay.RuleMixed40Then30.RateBased())
}

func TestRule_Known(t *testing.T) {
	assert.True(t, pay.RuleMixed40Then30.Known())
	assert.False(t, pay.Rule("GUESS").Known())
}
