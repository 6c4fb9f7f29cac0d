/*
Package factory provides JSON to Go compensation-plan conversion.

PURPOSE:
  The mixed-rule threshold and the band/hourly rates were inline
  literals in the legacy system. Whether they are a regulatory constant
  or tenant configuration is an open product question; keeping them in
  JSON lets operations change them without a code change while the
  defaults stay pinned to the observed values.

JSON SCHEMA:
  {
    "id": "plan-2026",
    "name": "Standard driver plan",
    "mixed_threshold": "180",
    "high_share": "0.40",
    "low_share": "0.30",
    "hourly_low_rate": "10",
    "hourly_high_rate": "12"
  }

  All numbers are JSON strings so they parse losslessly as decimals.
  Omitted fields fall back to the defaults above.

USAGE:
  f := factory.NewPlanFactory()
  plan, err := f.ParsePlan(jsonStr)

SEE ALSO:
  - pay: Plan definition and DefaultPlan
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/routesheet-engine/pay"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PlanJSON is the JSON representation of a compensation plan.
type PlanJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	MixedThreshold string `json:"mixed_threshold,omitempty"`
	HighShare      string `json:"high_share,omitempty"`
	LowShare       string `json:"low_share,omitempty"`
	HourlyLowRate  string `json:"hourly_low_rate,omitempty"`
	HourlyHighRate string `json:"hourly_high_rate,omitempty"`
}

// =============================================================================
// PLAN FACTORY
// =============================================================================

// PlanFactory converts JSON plans to pay.Plan values.
type PlanFactory struct{}

func NewPlanFactory() *PlanFactory {
	return &PlanFactory{}
}

// ParsePlan parses a JSON string into a plan. Missing fields keep the
// default values.
func (f *PlanFactory) ParsePlan(jsonStr string) (pay.Plan, error) {
	var pj PlanJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return pay.Plan{}, fmt.Errorf("failed to parse plan JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PlanJSON to a pay.Plan.
func (f *PlanFactory) FromJSON(pj PlanJSON) (pay.Plan, error) {
	plan := pay.DefaultPlan()

	fields := []struct {
		name  string
		raw   string
		dst   *decimal.Decimal
		share bool
	}{
		{"mixed_threshold", pj.MixedThreshold, &plan.MixedThreshold, false},
		{"high_share", pj.HighShare, &plan.HighShare, true},
		{"low_share", pj.LowShare, &plan.LowShare, true},
		{"hourly_low_rate", pj.HourlyLowRate, &plan.HourlyLowRate, false},
		{"hourly_high_rate", pj.HourlyHighRate, &plan.HourlyHighRate, false},
	}
	for _, fl := range fields {
		if fl.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(fl.raw)
		if err != nil {
			return pay.Plan{}, fmt.Errorf("invalid %s %q: %w", fl.name, fl.raw, err)
		}
		if d.IsNegative() {
			return pay.Plan{}, fmt.Errorf("%s cannot be negative", fl.name)
		}
		if fl.share && d.GreaterThan(decimal.NewFromInt(1)) {
			return pay.Plan{}, fmt.Errorf("%s must be a fraction between 0 and 1", fl.name)
		}
		*fl.dst = d
	}

	if plan.LowShare.GreaterThan(plan.HighShare) {
		return pay.Plan{}, fmt.Errorf("low_share above high_share: the mixed rule would pay more past the threshold")
	}
	return plan, nil
}
