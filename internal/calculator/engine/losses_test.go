package engine

import (
	"testing"
)

func baselineInputs() CalculatorInputs {
	return SanitizeInputs(RawInputs{
		CurrentARR:                  floatPtr(1_000_000),
		MonthlyMRR:                  floatPtr(50_000),
		MonthlyLeads:                floatPtr(100),
		AverageDealValue:            floatPtr(10_000),
		LeadResponseTimeHours:       floatPtr(1),
		MonthlyFreeSignups:          floatPtr(500),
		FreeToPaidConversionRatePct: floatPtr(2),
		FailedPaymentRatePct:        floatPtr(5),
		ManualHoursPerWeek:          floatPtr(10),
		HourlyRate:                  floatPtr(75),
		Industry:                    "saas-software",
	})
}

func TestCalculateLossesBaselineScenario(t *testing.T) {
	in := baselineInputs()
	losses := CalculateLosses(in, DefaultBenchmarks())

	if losses.LeadResponse <= 0 {
		t.Fatalf("expected positive lead response loss, got %v", losses.LeadResponse)
	}
	if losses.LeadResponse > 80_000 {
		t.Fatalf("lead response loss exceeds 8%% ARR cap: %v", losses.LeadResponse)
	}
	if losses.FailedPayment > 60_000 {
		t.Fatalf("failed payment loss exceeds 6%% ARR cap: %v", losses.FailedPayment)
	}
	if losses.SelfServeGap > 120_000 {
		t.Fatalf("self-serve loss exceeds 12%% ARR cap: %v", losses.SelfServeGap)
	}
	if losses.ProcessInefficiency > 50_000 {
		t.Fatalf("process loss exceeds 5%% ARR cap: %v", losses.ProcessInefficiency)
	}
	if losses.Total > 200_000 {
		t.Fatalf("total loss exceeds 20%% ARR cap: %v", losses.Total)
	}
}

func TestLossBreakdownSumsToTotal(t *testing.T) {
	// Inputs chosen to trip every per-category cap and the total cap.
	in := SanitizeInputs(RawInputs{
		CurrentARR:                  floatPtr(400_000),
		MonthlyMRR:                  floatPtr(300_000),
		MonthlyLeads:                floatPtr(900),
		AverageDealValue:            floatPtr(60_000),
		LeadResponseTimeHours:       floatPtr(72),
		MonthlyFreeSignups:          floatPtr(50_000),
		FreeToPaidConversionRatePct: floatPtr(0.5),
		FailedPaymentRatePct:        floatPtr(25),
		ManualHoursPerWeek:          floatPtr(60),
		HourlyRate:                  floatPtr(300),
		Industry:                    "saas-software",
	})

	losses := CalculateLosses(in, DefaultBenchmarks())

	sum := losses.LeadResponse + losses.FailedPayment + losses.SelfServeGap + losses.ProcessInefficiency
	if diff := sum - losses.Total; diff > 0.01 || diff < -0.01 {
		t.Fatalf("categories must sum to total after capping: sum=%v total=%v", sum, losses.Total)
	}
	if losses.Total > in.CurrentARR*0.20+0.01 {
		t.Fatalf("total exceeds 20%% of ARR: %v", losses.Total)
	}
}

func TestZeroARRCapsEveryLossAtZero(t *testing.T) {
	in := baselineInputs()
	in.CurrentARR = 0

	losses := CalculateLosses(in, DefaultBenchmarks())
	if losses.LeadResponse != 0 || losses.FailedPayment != 0 ||
		losses.SelfServeGap != 0 || losses.ProcessInefficiency != 0 {
		t.Fatalf("expected all categories capped at zero with zero ARR, got %+v", losses)
	}
	if losses.Total != 0 {
		t.Fatalf("expected zero total with zero ARR, got %v", losses.Total)
	}
}

func TestZeroResponseTimeMeansNoLeadResponseLoss(t *testing.T) {
	in := baselineInputs()
	in.LeadResponseTimeHours = 0

	losses := CalculateLosses(in, DefaultBenchmarks())
	if losses.LeadResponse != 0 {
		t.Fatalf("expected zero lead response loss at instant response, got %v", losses.LeadResponse)
	}
}

func TestHighConversionRateMeansNoSelfServeGap(t *testing.T) {
	in := baselineInputs()
	in.FreeToPaidConversionRatePct = 20

	if loss := selfServeGapLoss(in, DefaultBenchmarks()); loss != 0 {
		t.Fatalf("expected zero self-serve loss above 15%% conversion, got %v", loss)
	}
}

func TestResponseEffectivenessCurve(t *testing.T) {
	b := DefaultBenchmarks()

	if eff := ResponseEffectiveness(0, 1000, b); eff != 1.0 {
		t.Fatalf("expected full effectiveness at instant response, got %v", eff)
	}
	// 168h is far past every breakpoint; only the floor remains. The floor
	// is reached as 0.40 minus the full tier penalty, so compare within a
	// float64 rounding margin rather than exactly.
	if eff := ResponseEffectiveness(168, 1000, b); eff < 0.35-1e-9 || eff > 0.35+1e-9 {
		t.Fatalf("expected floor effectiveness for week-long response, got %v", eff)
	}

	// Non-increasing across the whole domain.
	prev := 2.0
	for hours := 0.0; hours <= 168; hours += 0.25 {
		eff := ResponseEffectiveness(hours, 10_000, b)
		if eff > prev+1e-9 {
			t.Fatalf("effectiveness increased at %vh: %v > %v", hours, eff, prev)
		}
		prev = eff
	}
}

func TestLeadResponseLossMonotonicInResponseTime(t *testing.T) {
	in := baselineInputs()
	b := DefaultBenchmarks()

	prev := -1.0
	for hours := 0.0; hours <= 24; hours += 0.5 {
		in.LeadResponseTimeHours = hours
		loss := leadResponseLoss(in, b)
		if loss < prev-1e-9 {
			t.Fatalf("lead response loss decreased at %vh: %v < %v", hours, loss, prev)
		}
		prev = loss
	}
}

func TestFailedPaymentLossMonotonicInFailureRate(t *testing.T) {
	in := baselineInputs()
	in.CurrentARR = 0 // tier selection then depends on MRR alone
	b := DefaultBenchmarks()

	prev := -1.0
	for rate := 0.0; rate <= 30; rate++ {
		in.FailedPaymentRatePct = rate
		loss := failedPaymentLoss(in, b)
		if loss < prev-1e-9 {
			t.Fatalf("failed payment loss decreased at rate %v: %v < %v", rate, loss, prev)
		}
		prev = loss
	}
}

func TestProcessLossMonotonicInManualHours(t *testing.T) {
	in := baselineInputs()

	prev := -1.0
	for hours := 0.0; hours <= 80; hours += 4 {
		in.ManualHoursPerWeek = hours
		loss := processInefficiencyLoss(in)
		if loss < prev-1e-9 {
			t.Fatalf("process loss decreased at %v hours: %v < %v", hours, loss, prev)
		}
		prev = loss
	}
}

func TestBetterRecoveryStackLowersFailedPaymentLoss(t *testing.T) {
	b := DefaultBenchmarks()

	basic := baselineInputs()
	basic.CurrentARR = 0
	basic.MonthlyMRR = 40_000 // below every tier threshold

	bestInClass := basic
	bestInClass.MonthlyMRR = 40_000
	bestInClass.CurrentARR = 20_000_000

	basicLoss := failedPaymentLoss(basic, b)
	bestLoss := failedPaymentLoss(bestInClass, b)
	if bestLoss >= basicLoss {
		t.Fatalf("expected best-in-class stack to recover more: basic=%v best=%v", basicLoss, bestLoss)
	}
}

func TestSelfServeGapZeroWithoutSignupsOrMRR(t *testing.T) {
	b := DefaultBenchmarks()

	in := baselineInputs()
	in.MonthlyFreeSignups = 0
	if loss := selfServeGapLoss(in, b); loss != 0 {
		t.Fatalf("expected zero loss without signups, got %v", loss)
	}

	in = baselineInputs()
	in.MonthlyMRR = 0
	if loss := selfServeGapLoss(in, b); loss != 0 {
		t.Fatalf("expected zero loss without MRR, got %v", loss)
	}
}

func TestSelfServeARPUFallback(t *testing.T) {
	in := baselineInputs()
	in.FreeToPaidConversionRatePct = 0 // no current conversions

	// Gap is positive but conversions are zero; the $50 fallback ARPU applies
	// and the result must stay finite and positive.
	loss := selfServeGapLoss(in, DefaultBenchmarks())
	if loss <= 0 {
		t.Fatalf("expected positive loss with fallback ARPU, got %v", loss)
	}
}
