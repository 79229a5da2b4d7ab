package engine

import "fmt"

// Scenario selects how aggressive a recovery projection is.
type Scenario string

const (
	ScenarioConservative Scenario = "conservative"
	ScenarioOptimistic   Scenario = "optimistic"
	ScenarioBestCase     Scenario = "best-case"
)

// ConfidenceFactors describe the company's capacity to execute a recovery
// program. They are derived from ARR, not asked of the user.
type ConfidenceFactors struct {
	CompanySize                string `json:"companySize"`     // startup, scaleup, enterprise
	CurrentMaturity            string `json:"currentMaturity"` // basic, intermediate, advanced
	ResourceAvailable          bool   `json:"resourceAvailable"`
	ChangeManagementCapability string `json:"changeManagementCapability"` // low, medium, high
}

// DeriveConfidenceFactors infers execution capacity from company scale.
func DeriveConfidenceFactors(currentARR float64) ConfidenceFactors {
	switch {
	case currentARR > 10_000_000:
		return ConfidenceFactors{
			CompanySize:                "enterprise",
			CurrentMaturity:            "advanced",
			ResourceAvailable:          true,
			ChangeManagementCapability: "high",
		}
	case currentARR > 1_000_000:
		return ConfidenceFactors{
			CompanySize:                "scaleup",
			CurrentMaturity:            "intermediate",
			ResourceAvailable:          true,
			ChangeManagementCapability: "medium",
		}
	default:
		return ConfidenceFactors{
			CompanySize:                "startup",
			CurrentMaturity:            "basic",
			ResourceAvailable:          false,
			ChangeManagementCapability: "low",
		}
	}
}

// CategoryRecovery is the projected recovery for one loss category.
type CategoryRecovery struct {
	Amount         float64 `json:"amount"`
	RecoveryRate   float64 `json:"recoveryRate"`
	RiskAdjustment float64 `json:"riskAdjustment"`
	Difficulty     string  `json:"difficulty"`
	TimelineMonths int     `json:"timelineMonths"`
}

// RecoveryProjection is the per-scenario projected recovery.
type RecoveryProjection struct {
	Scenario      Scenario                    `json:"scenario"`
	Categories    map[string]CategoryRecovery `json:"categories"`
	TotalRecovery float64                     `json:"totalRecovery"`
}

// simultaneousInitiativesPenalty reflects that running all recovery tracks
// at once dilutes each one.
const simultaneousInitiativesPenalty = 0.90

// ProjectRecovery computes the projected recovery for one scenario.
// The best-case scenario substitutes idealized execution factors, keeping
// only the caller's company size. The only error is an unknown scenario.
func ProjectRecovery(losses LossBreakdown, confidence ConfidenceFactors, scenario Scenario, b Benchmarks) (RecoveryProjection, error) {
	var scenarioMultiplier, maxRate float64
	factors := confidence

	switch scenario {
	case ScenarioConservative:
		scenarioMultiplier, maxRate = 0.85, 0.65
	case ScenarioOptimistic:
		scenarioMultiplier, maxRate = 1.0, 0.80
	case ScenarioBestCase:
		scenarioMultiplier, maxRate = 1.0, 0.80
		factors.ResourceAvailable = true
		factors.ChangeManagementCapability = "high"
		factors.CurrentMaturity = "advanced"
	default:
		return RecoveryProjection{}, fmt.Errorf("unknown recovery scenario %q", scenario)
	}

	projection := RecoveryProjection{
		Scenario:   scenario,
		Categories: make(map[string]CategoryRecovery),
	}

	// Fixed order: summing TotalRecovery over map iteration would make the
	// last float64 bits depend on iteration order.
	byCategory := lossByCategory(losses)
	for _, category := range lossCategoryOrder {
		loss := byCategory[category]
		if loss <= 0 {
			continue
		}

		profile := b.RecoveryMatrix[category]
		rate := profile.Recoverability
		rate *= multiplierOrDefault(b.CompanySizeMultiplier, factors.CompanySize)
		rate *= multiplierOrDefault(b.ChangeManagementMultiplier, factors.ChangeManagementCapability)
		rate *= scenarioMultiplier
		rate *= difficultyPenalty(profile.Difficulty)
		if !factors.ResourceAvailable {
			rate *= 0.80
		}
		rate *= multiplierOrDefault(b.MaturityMultiplier, factors.CurrentMaturity)
		rate *= simultaneousInitiativesPenalty
		rate = clampFloat(rate, 0, maxRate)

		projection.Categories[category] = CategoryRecovery{
			Amount:         loss * rate,
			RecoveryRate:   rate,
			RiskAdjustment: 1 - rate,
			Difficulty:     profile.Difficulty,
			TimelineMonths: profile.TimelineMonths,
		}
		projection.TotalRecovery += loss * rate
	}

	return projection, nil
}

var lossCategoryOrder = []string{
	CategoryLeadResponse,
	CategoryFailedPayment,
	CategorySelfServeGap,
	CategoryProcess,
}

func lossByCategory(losses LossBreakdown) map[string]float64 {
	return map[string]float64{
		CategoryLeadResponse:  losses.LeadResponse,
		CategoryFailedPayment: losses.FailedPayment,
		CategorySelfServeGap:  losses.SelfServeGap,
		CategoryProcess:       losses.ProcessInefficiency,
	}
}

func difficultyPenalty(difficulty string) float64 {
	switch difficulty {
	case "low":
		return 1.0
	case "high":
		return 0.75
	default:
		return 0.90
	}
}

func multiplierOrDefault(table map[string]float64, key string) float64 {
	if m, ok := table[key]; ok {
		return m
	}
	return 1.0
}
