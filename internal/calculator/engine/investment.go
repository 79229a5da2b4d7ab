package engine

import "math"

// InvestmentProjection estimates what executing the timeline costs.
type InvestmentProjection struct {
	ImplementationCost    float64 `json:"implementationCost"`
	OngoingAnnualCost     float64 `json:"ongoingAnnualCost"`
	TotalAnnualInvestment float64 `json:"totalAnnualInvestment"`
	PaybackMonths         int     `json:"paybackMonths"`
}

// workType captures the consulting profile a phase requires.
type workType struct {
	dailyRate float64
	teamSize  float64
}

var workTypeByPhase = map[string]workType{
	"lead-response":      {dailyRate: 800, teamSize: 1.5},  // quick optimization
	"payment-recovery":   {dailyRate: 950, teamSize: 2.0},  // tool implementation
	"self-serve":         {dailyRate: 1200, teamSize: 2.5}, // technical development
	"process-automation": {dailyRate: 1400, teamSize: 2.0}, // complex automation
}

const (
	// fteFactor reflects that the team is not dedicated full time.
	fteFactor = 0.6

	// implementationCostCapRatio keeps cost below 40% of projected recovery.
	implementationCostCapRatio = 0.4

	ongoingCostRatio = 0.15
	maxPaybackMonths = 24
)

var toolingBudgetBySize = map[string]float64{
	"startup":    15_000,
	"scaleup":    35_000,
	"enterprise": 75_000,
}

var subscriptionBySize = map[string]float64{
	"startup":    6_000,
	"scaleup":    14_000,
	"enterprise": 30_000,
}

// EstimateInvestment prices the generated phases and derives the payback
// period against the projected total recovery. An empty phase list yields
// a zero projection.
func EstimateInvestment(phases []TimelinePhase, in CalculatorInputs, confidence ConfidenceFactors, totalRecovery float64, b Benchmarks) InvestmentProjection {
	if len(phases) == 0 {
		return InvestmentProjection{}
	}

	complexity := b.IndustryFor(in.Industry).ComplexityFactor
	if complexity <= 0 {
		complexity = 1.0
	}

	implementation := 0.0
	for _, phase := range phases {
		profile, ok := workTypeByPhase[phase.ID]
		if !ok {
			profile = workType{dailyRate: 1000, teamSize: 2.0}
		}

		totalWeeks := 0.0
		for _, action := range phase.Actions {
			totalWeeks += action.Weeks
		}

		implementation += profile.dailyRate * profile.teamSize * fteFactor * 5 * totalWeeks
	}

	implementation *= complexity
	implementation += toolingBudgetBySize[confidence.CompanySize]

	if totalRecovery > 0 && implementation > totalRecovery*implementationCostCapRatio {
		implementation = totalRecovery * implementationCostCapRatio
	}

	ongoing := implementation*ongoingCostRatio + subscriptionBySize[confidence.CompanySize]

	// Rounded months, capped at 24. A cost below half a month of recovery
	// rounds to zero, meaning payback within the first month.
	payback := 0
	if totalRecovery > 0 {
		payback = int(math.Round(implementation / (totalRecovery / 12)))
		if payback > maxPaybackMonths {
			payback = maxPaybackMonths
		}
	}

	return InvestmentProjection{
		ImplementationCost:    implementation,
		OngoingAnnualCost:     ongoing,
		TotalAnnualInvestment: implementation + ongoing,
		PaybackMonths:         payback,
	}
}
