package engine

import "testing"

func recoveryWith(amounts map[string]float64) RecoveryProjection {
	projection := RecoveryProjection{
		Scenario:   ScenarioOptimistic,
		Categories: make(map[string]CategoryRecovery),
	}
	for category, amount := range amounts {
		projection.Categories[category] = CategoryRecovery{Amount: amount}
		projection.TotalRecovery += amount
	}
	return projection
}

func TestGenerateTimelineIncludesOnlyCategoriesAboveThreshold(t *testing.T) {
	in := baselineInputs() // ARR 1M: thresholds 25K/15K/25K/20K (floors dominate)

	recovery := recoveryWith(map[string]float64{
		CategoryLeadResponse:  60_000, // above 25K
		CategoryFailedPayment: 10_000, // below 15K
		CategorySelfServeGap:  30_000, // above 25K
		CategoryProcess:       5_000,  // below 20K
	})

	phases := GenerateTimeline(recovery, in)
	if len(phases) != 2 {
		t.Fatalf("expected two phases, got %d", len(phases))
	}
	if phases[0].ID != "lead-response" || phases[1].ID != "self-serve" {
		t.Fatalf("unexpected phases: %v, %v", phases[0].ID, phases[1].ID)
	}
}

func TestGenerateTimelineOrderedByStartMonth(t *testing.T) {
	in := baselineInputs()

	recovery := recoveryWith(map[string]float64{
		CategoryProcess:       100_000,
		CategorySelfServeGap:  100_000,
		CategoryFailedPayment: 100_000,
		CategoryLeadResponse:  100_000,
	})

	phases := GenerateTimeline(recovery, in)
	if len(phases) != 4 {
		t.Fatalf("expected four phases, got %d", len(phases))
	}
	for i := 1; i < len(phases); i++ {
		if phases[i].StartMonth < phases[i-1].StartMonth {
			t.Fatalf("phases out of order: %v before %v", phases[i-1].ID, phases[i].ID)
		}
	}
	for _, phase := range phases {
		if len(phase.Actions) == 0 {
			t.Fatalf("phase %v has no actions", phase.ID)
		}
		if phase.EndMonth < phase.StartMonth {
			t.Fatalf("phase %v ends before it starts", phase.ID)
		}
	}
}

func TestGenerateTimelineScalesThresholdWithARR(t *testing.T) {
	in := baselineInputs()
	in.CurrentARR = 20_000_000 // lead response threshold becomes 100K

	recovery := recoveryWith(map[string]float64{
		CategoryLeadResponse: 60_000,
	})

	if phases := GenerateTimeline(recovery, in); len(phases) != 0 {
		t.Fatalf("expected no phases below the ARR-scaled threshold, got %d", len(phases))
	}
}

func TestGenerateTimelineEmptyForZeroRecovery(t *testing.T) {
	phases := GenerateTimeline(recoveryWith(nil), baselineInputs())
	if len(phases) != 0 {
		t.Fatalf("expected empty timeline, got %d phases", len(phases))
	}
}

func TestEstimateInvestmentEmptyPhases(t *testing.T) {
	got := EstimateInvestment(nil, baselineInputs(), DeriveConfidenceFactors(1_000_000), 0, DefaultBenchmarks())
	if got.ImplementationCost != 0 || got.PaybackMonths != 0 {
		t.Fatalf("expected zero projection for empty phases, got %+v", got)
	}
}

func TestEstimateInvestmentCappedByRecovery(t *testing.T) {
	in := baselineInputs()
	factors := DeriveConfidenceFactors(in.CurrentARR)

	recovery := recoveryWith(map[string]float64{
		CategoryLeadResponse:  100_000,
		CategoryFailedPayment: 100_000,
		CategorySelfServeGap:  100_000,
		CategoryProcess:       100_000,
	})
	phases := GenerateTimeline(recovery, in)

	got := EstimateInvestment(phases, in, factors, recovery.TotalRecovery, DefaultBenchmarks())
	if got.ImplementationCost > recovery.TotalRecovery*0.4+0.01 {
		t.Fatalf("implementation cost %v exceeds 40%% of recovery %v", got.ImplementationCost, recovery.TotalRecovery)
	}
	if got.PaybackMonths < 0 || got.PaybackMonths > 24 {
		t.Fatalf("payback months out of range: %d", got.PaybackMonths)
	}
	if got.TotalAnnualInvestment != got.ImplementationCost+got.OngoingAnnualCost {
		t.Fatalf("total investment must be implementation plus ongoing")
	}
}

func TestEstimateInvestmentPaybackIsUnfloorredRound(t *testing.T) {
	in := baselineInputs()
	factors := DeriveConfidenceFactors(in.CurrentARR)

	recovery := recoveryWith(map[string]float64{CategoryLeadResponse: 50_000})
	phases := GenerateTimeline(recovery, in)

	// A recovery far above the implementation cost makes the monthly
	// recovery dwarf the cost, so the rounded payback must reach zero
	// rather than being floored at one month.
	got := EstimateInvestment(phases, in, factors, 100_000_000, DefaultBenchmarks())
	if got.PaybackMonths != 0 {
		t.Fatalf("expected zero-month payback for negligible relative cost, got %d", got.PaybackMonths)
	}
}

func TestEstimateInvestmentComplexityRaisesCost(t *testing.T) {
	in := baselineInputs()
	factors := DeriveConfidenceFactors(in.CurrentARR)

	recovery := recoveryWith(map[string]float64{CategoryLeadResponse: 10_000_000})
	phases := GenerateTimeline(recovery, in)

	saas := EstimateInvestment(phases, in, factors, recovery.TotalRecovery, DefaultBenchmarks())

	in.Industry = IndustryHealthtech // complexity 1.3
	healthtech := EstimateInvestment(phases, in, factors, recovery.TotalRecovery, DefaultBenchmarks())

	if healthtech.ImplementationCost <= saas.ImplementationCost {
		t.Fatalf("expected healthtech implementation above saas: %v vs %v",
			healthtech.ImplementationCost, saas.ImplementationCost)
	}
}
