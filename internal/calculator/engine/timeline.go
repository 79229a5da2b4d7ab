package engine

import "sort"

// TimelineAction is a single concrete step inside a phase.
type TimelineAction struct {
	Title string  `json:"title"`
	Weeks float64 `json:"weeks"`
	Owner string  `json:"owner"`
}

// TimelinePhase is an implementation phase tied to one loss category.
type TimelinePhase struct {
	ID                string           `json:"id"`
	Category          string           `json:"category"`
	Name              string           `json:"name"`
	StartMonth        int              `json:"startMonth"`
	EndMonth          int              `json:"endMonth"`
	ProjectedRecovery float64          `json:"projectedRecovery"`
	Actions           []TimelineAction `json:"actions"`
}

// phaseThreshold gates phase inclusion: a category only earns a phase when
// its projected recovery clears max(ARR x ratio, floor dollars).
type phaseThreshold struct {
	ratio float64
	floor float64
}

var phaseTemplates = []struct {
	id         string
	category   string
	name       string
	startMonth int
	endMonth   int
	threshold  phaseThreshold
	actions    []TimelineAction
}{
	{
		id: "lead-response", category: CategoryLeadResponse,
		name: "Lead Response Acceleration", startMonth: 1, endMonth: 3,
		threshold: phaseThreshold{ratio: 0.005, floor: 25_000},
		actions: []TimelineAction{
			{Title: "Instrument lead routing and response-time tracking", Weeks: 2, Owner: "RevOps"},
			{Title: "Deploy automated lead assignment with SLA alerts", Weeks: 4, Owner: "Sales Ops"},
			{Title: "Roll out speed-to-lead playbook to the sales team", Weeks: 3, Owner: "Sales"},
		},
	},
	{
		id: "payment-recovery", category: CategoryFailedPayment,
		name: "Payment Recovery Program", startMonth: 2, endMonth: 5,
		threshold: phaseThreshold{ratio: 0.003, floor: 15_000},
		actions: []TimelineAction{
			{Title: "Audit decline codes and current retry schedule", Weeks: 2, Owner: "Finance"},
			{Title: "Configure smart dunning with card updater", Weeks: 4, Owner: "Engineering"},
			{Title: "Launch pre-dunning notices and grace periods", Weeks: 3, Owner: "Customer Success"},
		},
	},
	{
		id: "self-serve", category: CategorySelfServeGap,
		name: "Self-Serve Conversion Uplift", startMonth: 4, endMonth: 6,
		threshold: phaseThreshold{ratio: 0.005, floor: 25_000},
		actions: []TimelineAction{
			{Title: "Map activation funnel and drop-off points", Weeks: 3, Owner: "Product"},
			{Title: "Redesign onboarding to the first value moment", Weeks: 5, Owner: "Product"},
			{Title: "Add usage-triggered upgrade prompts", Weeks: 4, Owner: "Growth"},
		},
	},
	{
		id: "process-automation", category: CategoryProcess,
		name: "Process Automation", startMonth: 6, endMonth: 10,
		threshold: phaseThreshold{ratio: 0.004, floor: 20_000},
		actions: []TimelineAction{
			{Title: "Inventory manual workflows by hours spent", Weeks: 2, Owner: "Operations"},
			{Title: "Automate top three workflows end to end", Weeks: 6, Owner: "Engineering"},
			{Title: "Train the team and retire the manual paths", Weeks: 3, Owner: "Operations"},
		},
	},
}

// GenerateTimeline builds the implementation phases for categories whose
// projected recovery clears the inclusion threshold. Phases come back
// ordered by start month. An empty slice means nothing clears the bar.
func GenerateTimeline(recovery RecoveryProjection, in CalculatorInputs) []TimelinePhase {
	phases := make([]TimelinePhase, 0, len(phaseTemplates))

	for _, tpl := range phaseTemplates {
		category, ok := recovery.Categories[tpl.category]
		if !ok {
			continue
		}

		threshold := tpl.threshold.floor
		if in.CurrentARR > 0 {
			threshold = maxFloat(in.CurrentARR*tpl.threshold.ratio, tpl.threshold.floor)
		}
		if category.Amount <= threshold {
			continue
		}

		actions := make([]TimelineAction, len(tpl.actions))
		copy(actions, tpl.actions)

		phases = append(phases, TimelinePhase{
			ID:                tpl.id,
			Category:          tpl.category,
			Name:              tpl.name,
			StartMonth:        tpl.startMonth,
			EndMonth:          tpl.endMonth,
			ProjectedRecovery: category.Amount,
			Actions:           actions,
		})
	}

	sort.SliceStable(phases, func(i, j int) bool {
		return phases[i].StartMonth < phases[j].StartMonth
	})

	return phases
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
