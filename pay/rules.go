/*
Package pay computes driver compensation for a shift.

PURPOSE:
  One shift is paid under exactly one rule from a closed enumeration:
  a flat amount, a revenue percentage, a two-band mixed percentage, or
  an hourly rate. Given the rule, the plan parameters and the aggregated
  shift facts (revenue, worked hours), Compute returns the amount and a
  human-readable breakdown.

DESIGN PRINCIPLES:
  1. Purity: Compute never reads or mutates draft state; inputs in,
     result out. Callable repeatedly while the user edits.
  2. End-only rounding: full decimal precision throughout, one Round2
     on the final amount.
  3. Report, don't block: an unknown rule or an unusable time window
     yields a zero amount with an explicit flag, never a panic or a
     blocked submission.

KEY CONCEPTS:
  - Rule: The closed compensation rule enumeration
  - Plan: Configured parameters (mixed threshold, band shares, hourly
    rates). Literals in the legacy system; configuration here.
  - Result: Amount + explanation + degradation flags

SEE ALSO:
  - hours.go: Worked-hours derivation from the shift time window
  - factory: JSON plan configuration
  - reconcile: Folds Result into the shift summary
*/
package pay

// Rule selects the pay formula for a shift.
type Rule string

const (
	RuleFlatSalary    Rule = "FLAT_SALARY"
	RulePercent40     Rule = "PERCENT_40"
	RulePercent30     Rule = "PERCENT_30"
	RuleMixed40Then30 Rule = "MIXED_40_THEN_30"
	RuleHourlyLow     Rule = "HOURLY_LOW"
	RuleHourlyHigh    Rule = "HOURLY_HIGH"
)

// Rules is the closed set of recognized rules.
var Rules = map[Rule]bool{
	RuleFlatSalary:    true,
	RulePercent40:     true,
	RulePercent30:     true,
	RuleMixed40Then30: true,
	RuleHourlyLow:     true,
	RuleHourlyHigh:    true,
}

// Known reports whether r is a recognized rule.
func (r Rule) Known() bool { return Rules[r] }

// RateBased reports whether the shift record must carry a compensation
// rate for this rule. True for the flat salary and the hourly variants;
// the percentage variants consume revenue only.
func (r Rule) RateBased() bool {
	switch r {
	case RuleFlatSalary, RuleHourlyLow, RuleHourlyHigh:
		return true
	}
	return false
}
