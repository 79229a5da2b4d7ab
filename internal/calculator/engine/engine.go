// Package engine is the single source of truth for the revenue leak
// estimation model: input sanitization, loss calculation, recovery
// projection, confidence assessment, lead scoring, and timeline and
// investment planning. Everything in this package is pure; callers pass
// inputs and read results.
package engine

// Version tracks the estimation model for stored results and backfills.
// Bump this when changing model logic significantly.
const Version = "2026-v3"

// TraceFunc receives intermediate values per computation step. Used by the
// admin recompute endpoint to explain a stored result.
type TraceFunc func(step string, values map[string]float64)

type options struct {
	trace      TraceFunc
	benchmarks Benchmarks
}

// Option configures a ComputeResults call.
type Option func(*options)

// WithTrace registers a callback that observes intermediate values.
func WithTrace(fn TraceFunc) Option {
	return func(o *options) { o.trace = fn }
}

// WithBenchmarks substitutes the benchmark tables, e.g. YAML overrides.
func WithBenchmarks(b Benchmarks) Option {
	return func(o *options) { o.benchmarks = b }
}

// RecoveryRamp is the expected realization of the optimistic recovery over
// the first three years: partial in year one while phases land, most of it
// in year two, full run rate from year three.
type RecoveryRamp struct {
	Year1 float64 `json:"year1"`
	Year2 float64 `json:"year2"`
	Year3 float64 `json:"year3"`
}

// UnifiedCalculationResult bundles every engine output for one submission.
type UnifiedCalculationResult struct {
	EngineVersion string                          `json:"engineVersion"`
	Inputs        CalculatorInputs                `json:"inputs"`
	Losses        LossBreakdown                   `json:"losses"`
	Confidence    ConfidenceAssessment            `json:"confidence"`
	Factors       ConfidenceFactors               `json:"factors"`
	Recovery      map[Scenario]RecoveryProjection `json:"recovery"`
	RecoveryRamp  RecoveryRamp                    `json:"recoveryRamp"`
	LeadScore     LeadScoreResult                 `json:"leadScore"`
	Timeline      []TimelinePhase                 `json:"timeline"`
	Investment    InvestmentProjection            `json:"investment"`
}

// ComputeResults runs the full estimation pipeline. It never returns an
// error: sanitization guarantees downstream validity and every calculator
// degrades to zero on degenerate input.
func ComputeResults(raw RawInputs, opts ...Option) UnifiedCalculationResult {
	o := options{benchmarks: DefaultBenchmarks()}
	for _, opt := range opts {
		opt(&o)
	}
	b := o.benchmarks

	inputs := SanitizeInputs(raw)
	trace(o.trace, "sanitize", map[string]float64{
		"currentARR":   inputs.CurrentARR,
		"monthlyMRR":   inputs.MonthlyMRR,
		"monthlyLeads": inputs.MonthlyLeads,
	})

	losses := CalculateLosses(inputs, b)
	trace(o.trace, "losses", map[string]float64{
		"leadResponse":        losses.LeadResponse,
		"failedPayment":       losses.FailedPayment,
		"selfServeGap":        losses.SelfServeGap,
		"processInefficiency": losses.ProcessInefficiency,
		"total":               losses.Total,
	})

	factors := DeriveConfidenceFactors(inputs.CurrentARR)
	confidence := ScoreConfidence(losses, inputs.CurrentARR)

	recovery := make(map[Scenario]RecoveryProjection, 3)
	for _, scenario := range []Scenario{ScenarioConservative, ScenarioOptimistic, ScenarioBestCase} {
		projection, err := ProjectRecovery(losses, factors, scenario, b)
		if err != nil {
			// Unreachable for the fixed scenario set.
			continue
		}
		applyConfidenceMultiplier(&projection, confidence.Multiplier)
		recovery[scenario] = projection
		trace(o.trace, "recovery."+string(scenario), map[string]float64{
			"totalRecovery": projection.TotalRecovery,
		})
	}

	confidence.Bounds = ConfidenceBounds{
		Lower: recovery[ScenarioConservative].TotalRecovery * 0.75,
		Upper: recovery[ScenarioBestCase].TotalRecovery * 1.15,
	}

	optimisticTotal := recovery[ScenarioOptimistic].TotalRecovery

	leadScore := ScoreLead(LeadScoreInput{
		CurrentARR:       inputs.CurrentARR,
		TotalLoss:        losses.Total,
		MonthlyLeads:     inputs.MonthlyLeads,
		AverageDealValue: inputs.AverageDealValue,
		Industry:         inputs.Industry,
		HasProductUsage:  inputs.HasProductUsage,
		EngagementScore:  inputs.EngagementScore,
	}, b)

	timeline := GenerateTimeline(recovery[ScenarioOptimistic], inputs)
	investment := EstimateInvestment(timeline, inputs, factors, optimisticTotal, b)

	return UnifiedCalculationResult{
		EngineVersion: Version,
		Inputs:        inputs,
		Losses:        losses,
		Confidence:    confidence,
		Factors:       factors,
		Recovery:      recovery,
		RecoveryRamp: RecoveryRamp{
			Year1: optimisticTotal * 0.25,
			Year2: optimisticTotal * 0.70,
			Year3: optimisticTotal,
		},
		LeadScore:  leadScore,
		Timeline:   timeline,
		Investment: investment,
	}
}

func applyConfidenceMultiplier(projection *RecoveryProjection, multiplier float64) {
	for key, category := range projection.Categories {
		category.Amount *= multiplier
		projection.Categories[key] = category
	}
	projection.TotalRecovery *= multiplier
}

func trace(fn TraceFunc, step string, values map[string]float64) {
	if fn != nil {
		fn(step, values)
	}
}
