package engine

import (
	"math"
	"strings"
)

// RawInputs is the untrusted payload assembled from the multi-step form.
// Every field is optional; missing or garbage values fall back to defaults.
type RawInputs struct {
	CurrentARR                  *float64 `json:"currentARR"`
	MonthlyMRR                  *float64 `json:"monthlyMRR"`
	MonthlyLeads                *float64 `json:"monthlyLeads"`
	AverageDealValue            *float64 `json:"averageDealValue"`
	LeadResponseTimeHours       *float64 `json:"leadResponseTimeHours"`
	MonthlyFreeSignups          *float64 `json:"monthlyFreeSignups"`
	FreeToPaidConversionRatePct *float64 `json:"freeToPaidConversionRate"`
	FailedPaymentRatePct        *float64 `json:"failedPaymentRate"`
	ManualHoursPerWeek          *float64 `json:"manualHoursPerWeek"`
	HourlyRate                  *float64 `json:"hourlyRate"`
	Industry                    string   `json:"industry"`
	HasProductUsage             *bool    `json:"hasProductUsage"`
	EngagementScore             *float64 `json:"engagementScore"`
}

// CalculatorInputs holds sanitized, bounded values safe for every downstream
// calculation. Sanitization is idempotent: sanitizing an already sanitized
// set of inputs returns identical values.
type CalculatorInputs struct {
	CurrentARR                  float64     `json:"currentARR"`
	MonthlyMRR                  float64     `json:"monthlyMRR"`
	MonthlyLeads                float64     `json:"monthlyLeads"`
	AverageDealValue            float64     `json:"averageDealValue"`
	LeadResponseTimeHours       float64     `json:"leadResponseTimeHours"`
	MonthlyFreeSignups          float64     `json:"monthlyFreeSignups"`
	FreeToPaidConversionRatePct float64     `json:"freeToPaidConversionRate"`
	FailedPaymentRatePct        float64     `json:"failedPaymentRate"`
	ManualHoursPerWeek          float64     `json:"manualHoursPerWeek"`
	HourlyRate                  float64     `json:"hourlyRate"`
	Industry                    IndustryKey `json:"industry"`
	HasProductUsage             bool        `json:"hasProductUsage"`
	EngagementScore             float64     `json:"engagementScore"`
}

// field bounds: default, min, max
var inputBounds = struct {
	arr, mrr, leads, dealValue, responseTime, signups, conversion, failedRate, manualHours, hourlyRate, engagement [3]float64
}{
	arr:          [3]float64{0, 0, 10_000_000_000},
	mrr:          [3]float64{0, 0, 1_000_000_000},
	leads:        [3]float64{0, 0, 1_000_000},
	dealValue:    [3]float64{1000, 100, 10_000_000},
	responseTime: [3]float64{24, 0, 168},
	signups:      [3]float64{0, 0, 10_000_000},
	conversion:   [3]float64{2, 0, 25},
	failedRate:   [3]float64{3, 0, 30},
	manualHours:  [3]float64{0, 0, 80},
	hourlyRate:   [3]float64{75, 25, 500},
	engagement:   [3]float64{0, 0, 100},
}

// SanitizeInputs clamps every raw field into its allowed range.
// Nil, NaN, and infinite values become the field default before clamping.
func SanitizeInputs(raw RawInputs) CalculatorInputs {
	return CalculatorInputs{
		CurrentARR:                  clampField(raw.CurrentARR, inputBounds.arr),
		MonthlyMRR:                  clampField(raw.MonthlyMRR, inputBounds.mrr),
		MonthlyLeads:                clampField(raw.MonthlyLeads, inputBounds.leads),
		AverageDealValue:            clampField(raw.AverageDealValue, inputBounds.dealValue),
		LeadResponseTimeHours:       clampField(raw.LeadResponseTimeHours, inputBounds.responseTime),
		MonthlyFreeSignups:          clampField(raw.MonthlyFreeSignups, inputBounds.signups),
		FreeToPaidConversionRatePct: clampField(raw.FreeToPaidConversionRatePct, inputBounds.conversion),
		FailedPaymentRatePct:        clampField(raw.FailedPaymentRatePct, inputBounds.failedRate),
		ManualHoursPerWeek:          clampField(raw.ManualHoursPerWeek, inputBounds.manualHours),
		HourlyRate:                  clampField(raw.HourlyRate, inputBounds.hourlyRate),
		Industry:                    sanitizeIndustry(raw.Industry),
		HasProductUsage:             raw.HasProductUsage != nil && *raw.HasProductUsage,
		EngagementScore:             clampField(raw.EngagementScore, inputBounds.engagement),
	}
}

// Resanitize re-applies the bounds to already plain inputs. Used when
// recomputing stored submissions whose values may predate a bounds change.
func Resanitize(in CalculatorInputs) CalculatorInputs {
	hasUsage := in.HasProductUsage
	return SanitizeInputs(RawInputs{
		CurrentARR:                  &in.CurrentARR,
		MonthlyMRR:                  &in.MonthlyMRR,
		MonthlyLeads:                &in.MonthlyLeads,
		AverageDealValue:            &in.AverageDealValue,
		LeadResponseTimeHours:       &in.LeadResponseTimeHours,
		MonthlyFreeSignups:          &in.MonthlyFreeSignups,
		FreeToPaidConversionRatePct: &in.FreeToPaidConversionRatePct,
		FailedPaymentRatePct:        &in.FailedPaymentRatePct,
		ManualHoursPerWeek:          &in.ManualHoursPerWeek,
		HourlyRate:                  &in.HourlyRate,
		Industry:                    string(in.Industry),
		HasProductUsage:             &hasUsage,
		EngagementScore:             &in.EngagementScore,
	})
}

func clampField(value *float64, bounds [3]float64) float64 {
	def, min, max := bounds[0], bounds[1], bounds[2]
	if value == nil {
		return def
	}
	v := *value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func sanitizeIndustry(raw string) IndustryKey {
	key := IndustryKey(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case IndustrySaaS, IndustryFintech, IndustryEcommerce, IndustryHealthtech,
		IndustryEdtech, IndustryMartech, IndustryDevtools, IndustryOther:
		return key
	default:
		return IndustryOther
	}
}
