package engine

import "testing"

func TestScoreConfidenceNoFlags(t *testing.T) {
	losses := LossBreakdown{
		LeadResponse:  80_000,
		FailedPayment: 60_000,
		Total:         140_000,
	}

	got := ScoreConfidence(losses, 2_000_000)
	if got.Level != ConfidenceHigh {
		t.Fatalf("expected high confidence, got %v (flags %v)", got.Level, got.RiskFlags)
	}
	if got.Multiplier != 0.90 {
		t.Fatalf("expected 0.90 multiplier, got %v", got.Multiplier)
	}
}

func TestScoreConfidenceMediumOnEarlyStage(t *testing.T) {
	losses := LossBreakdown{LeadResponse: 50_000, Total: 50_000}

	got := ScoreConfidence(losses, 500_000)
	if got.Level != ConfidenceMedium {
		t.Fatalf("expected medium confidence, got %v (flags %v)", got.Level, got.RiskFlags)
	}
	if got.Multiplier != 0.75 {
		t.Fatalf("expected 0.75 multiplier, got %v", got.Multiplier)
	}
}

func TestScoreConfidenceLowWhenEverythingFlags(t *testing.T) {
	// Small ARR, loss above a quarter of it, dominated by self-serve and process.
	losses := LossBreakdown{
		SelfServeGap:        90_000,
		ProcessInefficiency: 70_000,
		Total:               160_000,
	}

	got := ScoreConfidence(losses, 400_000)
	if got.Level != ConfidenceLow {
		t.Fatalf("expected low confidence, got %v (flags %v)", got.Level, got.RiskFlags)
	}
	if got.Multiplier != 0.60 {
		t.Fatalf("expected 0.60 multiplier, got %v", got.Multiplier)
	}
	if len(got.RiskFlags) != 4 {
		t.Fatalf("expected four risk flags, got %v", got.RiskFlags)
	}
}

func TestScoreConfidenceZeroARRSkipsRatioFlag(t *testing.T) {
	losses := LossBreakdown{ProcessInefficiency: 10_000, Total: 10_000}

	got := ScoreConfidence(losses, 0)
	for _, flag := range got.RiskFlags {
		if flag == "loss-exceeds-quarter-of-arr" {
			t.Fatal("loss ratio flag must not fire without ARR")
		}
	}
}
