package engine

// ConfidenceLevel qualifies how much to trust the projected figures.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceBounds is the plausible range around the projected recovery.
type ConfidenceBounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// ConfidenceAssessment is the output of the confidence scorer.
type ConfidenceAssessment struct {
	Level      ConfidenceLevel  `json:"level"`
	Multiplier float64          `json:"multiplier"`
	RiskFlags  []string         `json:"riskFlags"`
	Bounds     ConfidenceBounds `json:"bounds"`
}

// ScoreConfidence counts risk flags in the loss profile and returns the
// confidence level with its dampening multiplier. Bounds are filled in by
// the engine after the multiplier has been applied to the projections.
func ScoreConfidence(losses LossBreakdown, currentARR float64) ConfidenceAssessment {
	var flags []string

	if currentARR > 0 && losses.Total/currentARR > 0.25 {
		flags = append(flags, "loss-exceeds-quarter-of-arr")
	}
	if currentARR < 1_000_000 {
		flags = append(flags, "early-stage-arr")
	}
	if losses.Total > 0 && losses.SelfServeGap/losses.Total > 0.40 {
		flags = append(flags, "self-serve-dominated")
	}
	if losses.Total > 0 && losses.ProcessInefficiency/losses.Total > 0.30 {
		flags = append(flags, "process-dominated")
	}

	level := ConfidenceLow
	switch len(flags) {
	case 0:
		level = ConfidenceHigh
	case 1, 2:
		level = ConfidenceMedium
	}

	return ConfidenceAssessment{
		Level:      level,
		Multiplier: confidenceMultiplier(level),
		RiskFlags:  flags,
	}
}

func confidenceMultiplier(level ConfidenceLevel) float64 {
	switch level {
	case ConfidenceHigh:
		return 0.90
	case ConfidenceMedium:
		return 0.75
	default:
		return 0.60
	}
}
