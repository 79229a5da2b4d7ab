package engine

// LossBreakdown holds annualized revenue loss estimates per category.
// Categories always sum to Total, including after the total cap is applied.
type LossBreakdown struct {
	LeadResponse        float64 `json:"leadResponse"`
	FailedPayment       float64 `json:"failedPayment"`
	SelfServeGap        float64 `json:"selfServeGap"`
	ProcessInefficiency float64 `json:"processInefficiency"`
	Total               float64 `json:"total"`
}

// Per-category caps as fractions of ARR. The caps keep a single pathological
// input from dominating the headline number.
const (
	leadResponseCapPct  = 0.08
	failedPaymentCapPct = 0.06
	selfServeCapPct     = 0.12
	processCapPct       = 0.05
	totalLossCapPct     = 0.20
)

// CalculateLosses computes the four loss categories from sanitized inputs.
// Each category is capped at its share of ARR and the total at 20% of ARR,
// with categories scaled proportionally. The caps apply unconditionally:
// with ARR of zero every cap is zero and so is every loss.
func CalculateLosses(in CalculatorInputs, b Benchmarks) LossBreakdown {
	losses := LossBreakdown{
		LeadResponse:        leadResponseLoss(in, b),
		FailedPayment:       failedPaymentLoss(in, b),
		SelfServeGap:        selfServeGapLoss(in, b),
		ProcessInefficiency: processInefficiencyLoss(in),
	}

	losses.LeadResponse = minFloat(losses.LeadResponse, in.CurrentARR*leadResponseCapPct)
	losses.FailedPayment = minFloat(losses.FailedPayment, in.CurrentARR*failedPaymentCapPct)
	losses.SelfServeGap = minFloat(losses.SelfServeGap, in.CurrentARR*selfServeCapPct)
	losses.ProcessInefficiency = minFloat(losses.ProcessInefficiency, in.CurrentARR*processCapPct)

	losses.Total = losses.LeadResponse + losses.FailedPayment + losses.SelfServeGap + losses.ProcessInefficiency

	if losses.Total > in.CurrentARR*totalLossCapPct {
		scale := in.CurrentARR * totalLossCapPct / losses.Total
		losses.LeadResponse *= scale
		losses.FailedPayment *= scale
		losses.SelfServeGap *= scale
		losses.ProcessInefficiency *= scale
		losses.Total = in.CurrentARR * totalLossCapPct
	}

	return losses
}

// ResponseEffectiveness maps lead response time to the fraction of lead value
// retained. The curve is piecewise linear, continuous, and non-increasing:
// instant response keeps everything, responses beyond four hours keep 40%.
// A tier penalty applies when response time exceeds the deal-size optimum.
func ResponseEffectiveness(responseTimeHours, dealValue float64, b Benchmarks) float64 {
	if responseTimeHours <= 0 {
		return 1.0
	}

	minutes := responseTimeHours * 60
	base := baseEffectiveness(minutes)

	tier := b.TierForDealValue(dealValue)
	if minutes > tier.OptimalResponseMin {
		penalty := minFloat(0.05, (minutes-tier.OptimalResponseMin)/240*0.05)
		base -= penalty
	}

	return clampFloat(base, 0.35, 1.0)
}

func baseEffectiveness(minutes float64) float64 {
	switch {
	case minutes <= 5:
		return 1.0
	case minutes <= 30:
		return lerp(1.0, 0.85, (minutes-5)/25)
	case minutes <= 60:
		return lerp(0.85, 0.70, (minutes-30)/30)
	case minutes <= 240:
		return lerp(0.70, 0.40, (minutes-60)/180)
	default:
		return 0.40
	}
}

// leadResponseLoss estimates annual revenue lost to slow lead follow-up.
func leadResponseLoss(in CalculatorInputs, b Benchmarks) float64 {
	if in.MonthlyLeads <= 0 {
		return 0
	}
	effectiveness := ResponseEffectiveness(in.LeadResponseTimeHours, in.AverageDealValue, b)
	lostPerMonth := in.MonthlyLeads * in.AverageDealValue * (1 - effectiveness)
	return lostPerMonth * 12
}

// failedPaymentLoss estimates annual revenue lost to unrecovered payment
// failures. The assumed recovery stack scales with company size.
func failedPaymentLoss(in CalculatorInputs, b Benchmarks) float64 {
	if in.MonthlyMRR <= 0 {
		return 0
	}

	system := b.RecoverySystems[recoveryTier(in)]
	failedPerMonth := in.MonthlyMRR * (in.FailedPaymentRatePct / 100)
	unrecovered := failedPerMonth * (1 - system.RecoveryRate) * (1 - system.RetrySuccess)
	return unrecovered * 12
}

func recoveryTier(in CalculatorInputs) string {
	switch {
	case in.CurrentARR >= 10_000_000 || in.MonthlyMRR >= 500_000:
		return "best-in-class"
	case in.CurrentARR >= 1_000_000 || in.MonthlyMRR >= 50_000:
		return "advanced"
	default:
		return "basic"
	}
}

// selfServeGapLoss estimates annual revenue lost to below-benchmark
// free-to-paid conversion. Companies already converting near or above the
// industry benchmark have no gap.
func selfServeGapLoss(in CalculatorInputs, b Benchmarks) float64 {
	if in.MonthlyFreeSignups <= 0 || in.MonthlyMRR <= 0 {
		return 0
	}
	if in.FreeToPaidConversionRatePct >= 15 {
		return 0
	}

	industry := b.IndustryFor(in.Industry)
	benchmark := minFloat(industry.ConversionRatePercent, 8)
	gap := clampFloat(benchmark-in.FreeToPaidConversionRatePct, 0, 5)
	if gap == 0 {
		return 0
	}

	// ARPU inferred from current paid base, bounded to keep outliers sane.
	conversions := in.MonthlyFreeSignups * (in.FreeToPaidConversionRatePct / 100)
	arpu := 50.0
	if conversions > 0 {
		arpu = clampFloat(in.MonthlyMRR/conversions, 20, 200)
	}

	loss := in.MonthlyFreeSignups * (gap / 100) * arpu * 12

	// Model bound only; the ARR cap is applied in CalculateLosses.
	return minFloat(loss, 12*in.MonthlyMRR)
}

// processInefficiencyLoss estimates the annual cost of manual work, plus an
// opportunity cost component for what that time could have produced.
func processInefficiencyLoss(in CalculatorInputs) float64 {
	if in.ManualHoursPerWeek <= 0 {
		return 0
	}
	direct := in.ManualHoursPerWeek * 52 * in.HourlyRate * 0.70
	opportunity := direct * 0.32
	return direct + opportunity
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
