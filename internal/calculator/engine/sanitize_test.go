package engine

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestSanitizeInputsDefaults(t *testing.T) {
	got := SanitizeInputs(RawInputs{})

	if got.CurrentARR != 0 {
		t.Fatalf("expected zero ARR default, got %v", got.CurrentARR)
	}
	if got.AverageDealValue != 1000 {
		t.Fatalf("expected deal value default 1000, got %v", got.AverageDealValue)
	}
	if got.LeadResponseTimeHours != 24 {
		t.Fatalf("expected response time default 24, got %v", got.LeadResponseTimeHours)
	}
	if got.FreeToPaidConversionRatePct != 2 {
		t.Fatalf("expected conversion default 2, got %v", got.FreeToPaidConversionRatePct)
	}
	if got.FailedPaymentRatePct != 3 {
		t.Fatalf("expected failed payment default 3, got %v", got.FailedPaymentRatePct)
	}
	if got.HourlyRate != 75 {
		t.Fatalf("expected hourly rate default 75, got %v", got.HourlyRate)
	}
	if got.Industry != IndustryOther {
		t.Fatalf("expected industry fallback, got %v", got.Industry)
	}
}

func TestSanitizeInputsClampsOutOfRange(t *testing.T) {
	got := SanitizeInputs(RawInputs{
		AverageDealValue:            floatPtr(5),
		LeadResponseTimeHours:       floatPtr(500),
		FreeToPaidConversionRatePct: floatPtr(90),
		FailedPaymentRatePct:        floatPtr(-10),
		ManualHoursPerWeek:          floatPtr(200),
		HourlyRate:                  floatPtr(10_000),
		CurrentARR:                  floatPtr(-5),
	})

	if got.AverageDealValue != 100 {
		t.Fatalf("expected deal value floor 100, got %v", got.AverageDealValue)
	}
	if got.LeadResponseTimeHours != 168 {
		t.Fatalf("expected response time ceiling 168, got %v", got.LeadResponseTimeHours)
	}
	if got.FreeToPaidConversionRatePct != 25 {
		t.Fatalf("expected conversion ceiling 25, got %v", got.FreeToPaidConversionRatePct)
	}
	if got.FailedPaymentRatePct != 0 {
		t.Fatalf("expected failed payment floor 0, got %v", got.FailedPaymentRatePct)
	}
	if got.ManualHoursPerWeek != 80 {
		t.Fatalf("expected manual hours ceiling 80, got %v", got.ManualHoursPerWeek)
	}
	if got.HourlyRate != 500 {
		t.Fatalf("expected hourly rate ceiling 500, got %v", got.HourlyRate)
	}
	if got.CurrentARR != 0 {
		t.Fatalf("expected negative ARR clamped to 0, got %v", got.CurrentARR)
	}
}

func TestSanitizeInputsNonFiniteBecomesDefault(t *testing.T) {
	got := SanitizeInputs(RawInputs{
		CurrentARR:       floatPtr(math.NaN()),
		MonthlyMRR:       floatPtr(math.Inf(1)),
		AverageDealValue: floatPtr(math.Inf(-1)),
		HourlyRate:       floatPtr(math.NaN()),
	})

	if got.CurrentARR != 0 {
		t.Fatalf("expected NaN ARR to become default, got %v", got.CurrentARR)
	}
	if got.MonthlyMRR != 0 {
		t.Fatalf("expected +Inf MRR to become default, got %v", got.MonthlyMRR)
	}
	if got.AverageDealValue != 1000 {
		t.Fatalf("expected -Inf deal value to become default, got %v", got.AverageDealValue)
	}
	if got.HourlyRate != 75 {
		t.Fatalf("expected NaN hourly rate to become default, got %v", got.HourlyRate)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	first := SanitizeInputs(RawInputs{
		CurrentARR:            floatPtr(2_500_000),
		MonthlyMRR:            floatPtr(200_000),
		MonthlyLeads:          floatPtr(150),
		AverageDealValue:      floatPtr(12_000),
		LeadResponseTimeHours: floatPtr(3),
		ManualHoursPerWeek:    floatPtr(20),
		Industry:              "fintech",
	})

	second := Resanitize(first)
	if first != second {
		t.Fatalf("expected sanitize to be idempotent: %+v != %+v", first, second)
	}
}

func TestSanitizeIndustryNormalizesCase(t *testing.T) {
	got := SanitizeInputs(RawInputs{Industry: "  FinTech "})
	if got.Industry != IndustryFintech {
		t.Fatalf("expected fintech, got %v", got.Industry)
	}

	got = SanitizeInputs(RawInputs{Industry: "cryptozoology"})
	if got.Industry != IndustryOther {
		t.Fatalf("expected unknown industry to fall back to other, got %v", got.Industry)
	}
}
