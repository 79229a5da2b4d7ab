package engine

import "math"

// LeadScoreInput carries the signals the lead scorer reads. It is decoupled
// from CalculatorInputs so the scorer can run against stored submissions.
type LeadScoreInput struct {
	CurrentARR       float64
	TotalLoss        float64
	MonthlyLeads     float64
	AverageDealValue float64
	Industry         IndustryKey
	HasProductUsage  bool
	EngagementScore  float64
}

// LeadScoreResult is the 0-100 score with its factor breakdown.
type LeadScoreResult struct {
	Score   int                `json:"score"`
	Factors map[string]float64 `json:"factors"`
}

// ScoreLead computes a sales-priority score from additive point buckets.
// Each bucket is independently capped; the sum is capped at 100.
func ScoreLead(in LeadScoreInput, b Benchmarks) LeadScoreResult {
	factors := map[string]float64{}
	sum := 0.0

	add := func(key string, value float64) {
		if value != 0 {
			factors[key] = value
		}
		sum += value
	}

	add("arr_tier", scoreARRTier(in.CurrentARR))
	add("loss_magnitude", scoreLossTier(in.TotalLoss))
	add("lead_volume", scoreLeadVolume(in.MonthlyLeads))
	add("deal_value", scoreDealValue(in.AverageDealValue))
	add("industry", scoreIndustry(in.Industry, b))

	if in.HasProductUsage {
		add("product_usage", 15)
	}
	switch {
	case in.EngagementScore > 70:
		add("engagement", 10)
	case in.EngagementScore > 40:
		add("engagement", 5)
	}

	score := int(math.Round(sum))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return LeadScoreResult{Score: score, Factors: factors}
}

// scoreARRTier rewards company scale. Max 40 points.
func scoreARRTier(arr float64) float64 {
	switch {
	case arr >= 10_000_000:
		return 40
	case arr >= 5_000_000:
		return 32
	case arr >= 1_000_000:
		return 25
	case arr >= 500_000:
		return 15
	case arr >= 100_000:
		return 8
	default:
		return 3
	}
}

// scoreLossTier rewards the size of the identified leak. Max 30 points.
func scoreLossTier(totalLoss float64) float64 {
	switch {
	case totalLoss >= 1_000_000:
		return 30
	case totalLoss >= 500_000:
		return 24
	case totalLoss >= 250_000:
		return 18
	case totalLoss >= 100_000:
		return 12
	case totalLoss >= 25_000:
		return 6
	default:
		return 0
	}
}

// scoreLeadVolume rewards pipeline activity. Max 15 points.
func scoreLeadVolume(monthlyLeads float64) float64 {
	switch {
	case monthlyLeads >= 500:
		return 15
	case monthlyLeads >= 200:
		return 12
	case monthlyLeads >= 100:
		return 9
	case monthlyLeads >= 50:
		return 6
	case monthlyLeads >= 10:
		return 3
	default:
		return 0
	}
}

// scoreDealValue rewards deal size. Max 10 points.
func scoreDealValue(dealValue float64) float64 {
	switch {
	case dealValue >= 50_000:
		return 10
	case dealValue >= 25_000:
		return 8
	case dealValue >= 10_000:
		return 6
	case dealValue >= 5_000:
		return 4
	case dealValue >= 1_000:
		return 2
	default:
		return 1
	}
}

// scoreIndustry scales the industry multiplier to at most 5 points.
func scoreIndustry(industry IndustryKey, b Benchmarks) float64 {
	multiplier := b.IndustryFor(industry).Multiplier
	points := math.Round(multiplier / 1.3 * 5)
	if points > 5 {
		return 5
	}
	if points < 0 {
		return 0
	}
	return points
}
