package engine

import "testing"

func TestProjectRecoveryRejectsUnknownScenario(t *testing.T) {
	losses := CalculateLosses(baselineInputs(), DefaultBenchmarks())
	factors := DeriveConfidenceFactors(1_000_000)

	if _, err := ProjectRecovery(losses, factors, Scenario("wild-guess"), DefaultBenchmarks()); err == nil {
		t.Fatal("expected error for unknown scenario")
	}
}

func TestProjectRecoverySkipsZeroLossCategories(t *testing.T) {
	losses := LossBreakdown{LeadResponse: 100_000, Total: 100_000}
	factors := DeriveConfidenceFactors(5_000_000)

	projection, err := ProjectRecovery(losses, factors, ScenarioOptimistic, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(projection.Categories) != 1 {
		t.Fatalf("expected one category, got %d", len(projection.Categories))
	}
	if _, ok := projection.Categories[CategoryLeadResponse]; !ok {
		t.Fatal("expected lead response category to be present")
	}
}

func TestProjectRecoveryRatesWithinScenarioCaps(t *testing.T) {
	losses := CalculateLosses(baselineInputs(), DefaultBenchmarks())

	cases := []struct {
		scenario Scenario
		maxRate  float64
	}{
		{ScenarioConservative, 0.65},
		{ScenarioOptimistic, 0.80},
		{ScenarioBestCase, 0.80},
	}

	for _, tc := range cases {
		factors := DeriveConfidenceFactors(20_000_000)
		projection, err := ProjectRecovery(losses, factors, tc.scenario, DefaultBenchmarks())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.scenario, err)
		}
		for category, rec := range projection.Categories {
			if rec.RecoveryRate < 0 || rec.RecoveryRate > tc.maxRate {
				t.Fatalf("%s/%s: rate %v outside [0, %v]", tc.scenario, category, rec.RecoveryRate, tc.maxRate)
			}
			if diff := rec.RiskAdjustment - (1 - rec.RecoveryRate); diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("%s/%s: risk adjustment must be 1-rate", tc.scenario, category)
			}
		}
	}
}

func TestBestCaseBeatsOptimisticForConstrainedCompanies(t *testing.T) {
	losses := CalculateLosses(baselineInputs(), DefaultBenchmarks())
	factors := DeriveConfidenceFactors(500_000) // startup: no resources, low change tolerance

	optimistic, err := ProjectRecovery(losses, factors, ScenarioOptimistic, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bestCase, err := ProjectRecovery(losses, factors, ScenarioBestCase, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bestCase.TotalRecovery <= optimistic.TotalRecovery {
		t.Fatalf("expected best case above optimistic for a constrained company: best=%v optimistic=%v",
			bestCase.TotalRecovery, optimistic.TotalRecovery)
	}
}

func TestBestCaseEqualsOptimisticWhenFactorsAlreadyIdeal(t *testing.T) {
	losses := CalculateLosses(baselineInputs(), DefaultBenchmarks())
	// Enterprise-derived factors are already the idealized set.
	factors := DeriveConfidenceFactors(20_000_000)

	optimistic, err := ProjectRecovery(losses, factors, ScenarioOptimistic, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bestCase, err := ProjectRecovery(losses, factors, ScenarioBestCase, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := bestCase.TotalRecovery - optimistic.TotalRecovery; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected best case to equal optimistic at ideal factors: best=%v optimistic=%v",
			bestCase.TotalRecovery, optimistic.TotalRecovery)
	}
}

func TestConservativeBelowOptimistic(t *testing.T) {
	losses := CalculateLosses(baselineInputs(), DefaultBenchmarks())
	factors := DeriveConfidenceFactors(2_000_000)

	conservative, err := ProjectRecovery(losses, factors, ScenarioConservative, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	optimistic, err := ProjectRecovery(losses, factors, ScenarioOptimistic, DefaultBenchmarks())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if conservative.TotalRecovery >= optimistic.TotalRecovery {
		t.Fatalf("expected conservative below optimistic: conservative=%v optimistic=%v",
			conservative.TotalRecovery, optimistic.TotalRecovery)
	}
}

func TestDeriveConfidenceFactorsTiers(t *testing.T) {
	startup := DeriveConfidenceFactors(200_000)
	if startup.CompanySize != "startup" || startup.ResourceAvailable {
		t.Fatalf("unexpected startup factors: %+v", startup)
	}

	scaleup := DeriveConfidenceFactors(3_000_000)
	if scaleup.CompanySize != "scaleup" || scaleup.CurrentMaturity != "intermediate" {
		t.Fatalf("unexpected scaleup factors: %+v", scaleup)
	}

	enterprise := DeriveConfidenceFactors(50_000_000)
	if enterprise.CompanySize != "enterprise" || enterprise.ChangeManagementCapability != "high" {
		t.Fatalf("unexpected enterprise factors: %+v", enterprise)
	}
}
