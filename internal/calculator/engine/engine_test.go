package engine

import (
	"encoding/json"
	"testing"
)

func baselineRaw() RawInputs {
	return RawInputs{
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
	}
}

func TestComputeResultsDeterministic(t *testing.T) {
	// Repeated runs guard against iteration-order effects: a sum taken over
	// a ranged map differs in the last bits between runs, which a single
	// pair of calls can miss.
	first := ComputeResults(baselineRaw())
	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for i := 0; i < 200; i++ {
		next := ComputeResults(baselineRaw())
		if next.Recovery[ScenarioOptimistic].TotalRecovery != first.Recovery[ScenarioOptimistic].TotalRecovery {
			t.Fatalf("run %d: optimistic recovery drifted: %v != %v",
				i, next.Recovery[ScenarioOptimistic].TotalRecovery, first.Recovery[ScenarioOptimistic].TotalRecovery)
		}

		nextJSON, err := json.Marshal(next)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(nextJSON) != string(firstJSON) {
			t.Fatalf("run %d: expected identical results for identical inputs", i)
		}
	}
}

func TestComputeResultsZeroInput(t *testing.T) {
	got := ComputeResults(RawInputs{})

	if got.Losses.Total != 0 {
		t.Fatalf("expected zero total loss for empty input, got %v", got.Losses.Total)
	}
	if len(got.Timeline) != 0 {
		t.Fatalf("expected empty timeline for empty input, got %d phases", len(got.Timeline))
	}
	if got.Investment.ImplementationCost != 0 {
		t.Fatalf("expected zero investment for empty input, got %v", got.Investment.ImplementationCost)
	}
	// Score floor: ARR tier minimum, default deal value bucket, industry points.
	if got.LeadScore.Score <= 0 || got.LeadScore.Score > 15 {
		t.Fatalf("unexpected floor score %d", got.LeadScore.Score)
	}
}

func TestComputeResultsConfidenceAppliedToRecovery(t *testing.T) {
	got := ComputeResults(baselineRaw())

	if got.Confidence.Multiplier <= 0 || got.Confidence.Multiplier > 0.90 {
		t.Fatalf("unexpected confidence multiplier %v", got.Confidence.Multiplier)
	}

	// Bounds bracket the adjusted projections.
	conservative := got.Recovery[ScenarioConservative].TotalRecovery
	best := got.Recovery[ScenarioBestCase].TotalRecovery
	if got.Confidence.Bounds.Lower >= conservative {
		t.Fatalf("lower bound %v not below conservative %v", got.Confidence.Bounds.Lower, conservative)
	}
	if got.Confidence.Bounds.Upper <= best {
		t.Fatalf("upper bound %v not above best case %v", got.Confidence.Bounds.Upper, best)
	}
}

func TestComputeResultsScenarioCoverage(t *testing.T) {
	got := ComputeResults(baselineRaw())

	for _, scenario := range []Scenario{ScenarioConservative, ScenarioOptimistic, ScenarioBestCase} {
		projection, ok := got.Recovery[scenario]
		if !ok {
			t.Fatalf("missing scenario %v", scenario)
		}
		if projection.TotalRecovery <= 0 {
			t.Fatalf("expected positive recovery for %v", scenario)
		}
	}

	conservative := got.Recovery[ScenarioConservative].TotalRecovery
	optimistic := got.Recovery[ScenarioOptimistic].TotalRecovery
	if conservative >= optimistic {
		t.Fatalf("conservative %v should trail optimistic %v", conservative, optimistic)
	}
}

func TestComputeResultsRecoveryRamp(t *testing.T) {
	got := ComputeResults(baselineRaw())

	optimistic := got.Recovery[ScenarioOptimistic].TotalRecovery
	if got.RecoveryRamp.Year3 != optimistic {
		t.Fatalf("year three should equal the optimistic total")
	}
	if got.RecoveryRamp.Year1 >= got.RecoveryRamp.Year2 || got.RecoveryRamp.Year2 >= got.RecoveryRamp.Year3 {
		t.Fatalf("ramp must increase year over year: %+v", got.RecoveryRamp)
	}
}

func TestComputeResultsTraceObservesSteps(t *testing.T) {
	var steps []string
	ComputeResults(baselineRaw(), WithTrace(func(step string, values map[string]float64) {
		steps = append(steps, step)
	}))

	if len(steps) == 0 {
		t.Fatal("expected trace callbacks")
	}
	seen := map[string]bool{}
	for _, step := range steps {
		seen[step] = true
	}
	if !seen["sanitize"] || !seen["losses"] {
		t.Fatalf("expected sanitize and losses steps, got %v", steps)
	}
}

func TestComputeResultsWithBenchmarkOverrides(t *testing.T) {
	custom := DefaultBenchmarks()
	saas := custom.Industries[IndustrySaaS]
	saas.ConversionRatePercent = 8
	custom.Industries[IndustrySaaS] = saas

	base := ComputeResults(baselineRaw())
	overridden := ComputeResults(baselineRaw(), WithBenchmarks(custom))

	// A higher benchmark conversion rate widens the self-serve gap.
	if overridden.Losses.SelfServeGap <= base.Losses.SelfServeGap {
		t.Fatalf("expected larger self-serve loss under raised benchmark: %v vs %v",
			overridden.Losses.SelfServeGap, base.Losses.SelfServeGap)
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(1_234_567.89); got != "$1,234,568" {
		t.Fatalf("unexpected format: %q", got)
	}
	if got := FormatCurrency(0); got != "$0" {
		t.Fatalf("unexpected zero format: %q", got)
	}
}
