package pay

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/routesheet-engine/money"
)

// =============================================================================
// PLAN - Configured calculator parameters
// =============================================================================

// Plan carries the parameters the rules consume. The legacy system
// inlined these as literals; whether they are a regulatory constant or
// tenant configuration is an open product question, so they are
// configuration with the observed values as defaults.
type Plan struct {
	// Mixed-rule revenue threshold. Revenue at or below the threshold
	// is paid at HighShare; only the excess above it at LowShare.
	MixedThreshold decimal.Decimal

	HighShare decimal.Decimal // 0.40
	LowShare  decimal.Decimal // 0.30

	HourlyLowRate  decimal.Decimal // per worked hour
	HourlyHighRate decimal.Decimal // per worked hour
}

// DefaultPlan returns the parameters observed in production.
func DefaultPlan() Plan {
	return Plan{
		MixedThreshold: decimal.NewFromInt(180),
		HighShare:      money.MustParse("0.40"),
		LowShare:       money.MustParse("0.30"),
		HourlyLowRate:  decimal.NewFromInt(10),
		HourlyHighRate: decimal.NewFromInt(12),
	}
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the calculator output: the amount, a breakdown a dispatcher
// can read on the route sheet, and degradation flags.
type Result struct {
	Amount      decimal.Decimal
	Explanation string

	// UnknownRule is set when the rule is not in the closed enumeration.
	// The amount is then zero. Reported, never silently defaulted.
	UnknownRule bool
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute maps (rule, rate, shift facts) to a compensation amount.
//
// All intermediate math keeps full decimal precision; the final amount
// is rounded to two decimals exactly once. rate may be nil for rules
// that do not consume it.
func Compute(plan Plan, rule Rule, rate *decimal.Decimal, totalRevenue, hoursWorked decimal.Decimal) Result {
	switch rule {
	case RuleFlatSalary:
		r := rateOrZero(rate)
		return Result{
			Amount:      money.Round2(r),
			Explanation: fmt.Sprintf("flat salary %s", money.Round2(r).StringFixed(2)),
		}

	case RulePercent40:
		return percentResult(plan.HighShare, totalRevenue)

	case RulePercent30:
		return percentResult(plan.LowShare, totalRevenue)

	case RuleMixed40Then30:
		// Tie-break at the threshold: revenue == threshold takes the
		// single-band branch.
		if totalRevenue.LessThanOrEqual(plan.MixedThreshold) {
			return percentResult(plan.HighShare, totalRevenue)
		}
		excess := totalRevenue.Sub(plan.MixedThreshold)
		amount := plan.MixedThreshold.Mul(plan.HighShare).Add(excess.Mul(plan.LowShare))
		return Result{
			Amount: money.Round2(amount),
			Explanation: fmt.Sprintf("%s%% of %s + %s%% of %s = %s",
				sharePercent(plan.HighShare), plan.MixedThreshold.StringFixed(2),
				sharePercent(plan.LowShare), excess.StringFixed(2),
				money.Round2(amount).StringFixed(2)),
		}

	case RuleHourlyLow:
		return hourlyResult(plan.HourlyLowRate, hoursWorked)

	case RuleHourlyHigh:
		return hourlyResult(plan.HourlyHighRate, hoursWorked)
	}

	return Result{
		Amount:      decimal.Zero,
		Explanation: fmt.Sprintf("unknown rule %q: compensation not computed", string(rule)),
		UnknownRule: true,
	}
}

func percentResult(share, revenue decimal.Decimal) Result {
	amount := revenue.Mul(share)
	return Result{
		Amount: money.Round2(amount),
		Explanation: fmt.Sprintf("%s%% of %s = %s",
			sharePercent(share), revenue.StringFixed(2), money.Round2(amount).StringFixed(2)),
	}
}

func hourlyResult(rate, hours decimal.Decimal) Result {
	amount := hours.Mul(rate)
	return Result{
		Amount: money.Round2(amount),
		Explanation: fmt.Sprintf("%s h x %s/h = %s",
			hours.StringFixed(2), rate.StringFixed(2), money.Round2(amount).StringFixed(2)),
	}
}

func rateOrZero(rate *decimal.Decimal) decimal.Decimal {
	if rate == nil {
		return decimal.Zero
	}
	return *rate
}

func sharePercent(share decimal.Decimal) string {
	return share.Mul(decimal.NewFromInt(100)).StringFixed(0)
}
