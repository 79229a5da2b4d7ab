package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// IndustryKey identifies an industry benchmark profile.
type IndustryKey string

const (
	IndustrySaaS       IndustryKey = "saas-software"
	IndustryFintech    IndustryKey = "fintech"
	IndustryEcommerce  IndustryKey = "ecommerce"
	IndustryHealthtech IndustryKey = "healthtech"
	IndustryEdtech     IndustryKey = "edtech"
	IndustryMartech    IndustryKey = "martech"
	IndustryDevtools   IndustryKey = "devtools"
	IndustryOther      IndustryKey = "other"
)

// DealSizeTier defines response-time expectations for a deal value bracket.
type DealSizeTier struct {
	Name               string  `yaml:"name"`
	MinDealValue       float64 `yaml:"minDealValue"`
	MaxDealValue       float64 `yaml:"maxDealValue"` // 0 means unbounded
	OptimalResponseMin float64 `yaml:"optimalResponseMinutes"`
}

// IndustryBenchmark holds per-industry conversion and complexity data.
type IndustryBenchmark struct {
	DisplayName           string  `yaml:"displayName"`
	ConversionRatePercent float64 `yaml:"conversionRatePercent"`
	Multiplier            float64 `yaml:"multiplier"`
	ComplexityFactor      float64 `yaml:"complexityFactor"`
}

// RecoverySystem describes how well a dunning/recovery stack performs.
type RecoverySystem struct {
	RecoveryRate float64 `yaml:"recoveryRate"`
	RetrySuccess float64 `yaml:"retrySuccess"`
}

// RecoveryProfile describes how recoverable a loss category is.
type RecoveryProfile struct {
	Recoverability float64  `yaml:"recoverability"`
	Difficulty     string   `yaml:"difficulty"` // low, medium, high
	TimelineMonths int      `yaml:"timelineMonths"`
	Dependencies   []string `yaml:"dependencies"`
	RiskFactors    []string `yaml:"riskFactors"`
}

// Benchmarks is the full benchmark table set used by the engine.
// All rates are fractions unless the field name says Percent.
type Benchmarks struct {
	DealSizeTiers   []DealSizeTier                    `yaml:"dealSizeTiers"`
	Industries      map[IndustryKey]IndustryBenchmark `yaml:"industries"`
	RecoverySystems map[string]RecoverySystem         `yaml:"recoverySystems"`
	RecoveryMatrix  map[string]RecoveryProfile        `yaml:"recoveryMatrix"`

	CompanySizeMultiplier      map[string]float64 `yaml:"companySizeMultiplier"`
	ChangeManagementMultiplier map[string]float64 `yaml:"changeManagementMultiplier"`
	MaturityMultiplier         map[string]float64 `yaml:"maturityMultiplier"`
}

// Loss category keys used across the recovery matrix, timeline, and results.
const (
	CategoryLeadResponse  = "leadResponse"
	CategoryFailedPayment = "failedPayment"
	CategorySelfServeGap  = "selfServeGap"
	CategoryProcess       = "processInefficiency"
)

// DefaultBenchmarks returns the built-in benchmark tables.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		DealSizeTiers: []DealSizeTier{
			{Name: "SMB", MinDealValue: 0, MaxDealValue: 5000, OptimalResponseMin: 5},
			{Name: "Mid-Market", MinDealValue: 5000, MaxDealValue: 25000, OptimalResponseMin: 15},
			{Name: "Enterprise", MinDealValue: 25000, MaxDealValue: 0, OptimalResponseMin: 30},
		},
		Industries: map[IndustryKey]IndustryBenchmark{
			IndustrySaaS:       {DisplayName: "SaaS / Software", ConversionRatePercent: 3.5, Multiplier: 1.2, ComplexityFactor: 1.0},
			IndustryFintech:    {DisplayName: "Fintech", ConversionRatePercent: 2.8, Multiplier: 1.3, ComplexityFactor: 1.25},
			IndustryEcommerce:  {DisplayName: "E-commerce", ConversionRatePercent: 2.2, Multiplier: 1.0, ComplexityFactor: 0.95},
			IndustryHealthtech: {DisplayName: "Healthtech", ConversionRatePercent: 2.5, Multiplier: 1.1, ComplexityFactor: 1.3},
			IndustryEdtech:     {DisplayName: "Edtech", ConversionRatePercent: 2.0, Multiplier: 0.9, ComplexityFactor: 1.0},
			IndustryMartech:    {DisplayName: "Martech", ConversionRatePercent: 3.0, Multiplier: 1.1, ComplexityFactor: 1.0},
			IndustryDevtools:   {DisplayName: "Developer Tools", ConversionRatePercent: 4.0, Multiplier: 1.15, ComplexityFactor: 1.0},
			IndustryOther:      {DisplayName: "Other", ConversionRatePercent: 2.5, Multiplier: 1.0, ComplexityFactor: 1.0},
		},
		RecoverySystems: map[string]RecoverySystem{
			"basic":         {RecoveryRate: 0.30, RetrySuccess: 0.25},
			"advanced":      {RecoveryRate: 0.55, RetrySuccess: 0.40},
			"best-in-class": {RecoveryRate: 0.70, RetrySuccess: 0.55},
		},
		RecoveryMatrix: map[string]RecoveryProfile{
			CategoryLeadResponse: {
				Recoverability: 0.65,
				Difficulty:     "medium",
				TimelineMonths: 3,
				Dependencies:   []string{"routing rules", "rep coverage"},
				RiskFactors:    []string{"adoption by sales team"},
			},
			CategoryFailedPayment: {
				Recoverability: 0.70,
				Difficulty:     "low",
				TimelineMonths: 2,
				Dependencies:   []string{"billing provider integration"},
				RiskFactors:    []string{"card decline mix"},
			},
			CategorySelfServeGap: {
				Recoverability: 0.55,
				Difficulty:     "high",
				TimelineMonths: 6,
				Dependencies:   []string{"onboarding redesign", "product analytics"},
				RiskFactors:    []string{"product-market fit sensitivity", "cross-team coordination"},
			},
			CategoryProcess: {
				Recoverability: 0.60,
				Difficulty:     "medium",
				TimelineMonths: 4,
				Dependencies:   []string{"workflow tooling"},
				RiskFactors:    []string{"process change resistance"},
			},
		},
		CompanySizeMultiplier: map[string]float64{
			"startup":    0.85,
			"scaleup":    1.0,
			"enterprise": 1.10,
		},
		ChangeManagementMultiplier: map[string]float64{
			"low":    0.80,
			"medium": 1.0,
			"high":   1.10,
		},
		MaturityMultiplier: map[string]float64{
			"basic":        0.90,
			"intermediate": 1.0,
			"advanced":     1.10,
		},
	}
}

// LoadBenchmarks returns the defaults overlaid with YAML overrides from path.
// An empty path returns the defaults unchanged.
func LoadBenchmarks(path string) (Benchmarks, error) {
	b := DefaultBenchmarks()
	if path == "" {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("read benchmarks file: %w", err)
	}

	if err := yaml.Unmarshal(data, &b); err != nil {
		return b, fmt.Errorf("parse benchmarks file: %w", err)
	}

	if err := b.validate(); err != nil {
		return b, err
	}

	return b, nil
}

func (b Benchmarks) validate() error {
	if len(b.DealSizeTiers) == 0 {
		return fmt.Errorf("benchmarks: no deal size tiers")
	}
	if _, ok := b.Industries[IndustryOther]; !ok {
		return fmt.Errorf("benchmarks: missing fallback industry %q", IndustryOther)
	}
	for _, key := range []string{CategoryLeadResponse, CategoryFailedPayment, CategorySelfServeGap, CategoryProcess} {
		profile, ok := b.RecoveryMatrix[key]
		if !ok {
			return fmt.Errorf("benchmarks: missing recovery profile %q", key)
		}
		if profile.Recoverability <= 0 || profile.Recoverability > 1 {
			return fmt.Errorf("benchmarks: recoverability out of range for %q", key)
		}
	}
	return nil
}

// IndustryFor returns the benchmark for an industry, falling back to "other".
func (b Benchmarks) IndustryFor(key IndustryKey) IndustryBenchmark {
	if bench, ok := b.Industries[key]; ok {
		return bench
	}
	return b.Industries[IndustryOther]
}

// TierForDealValue returns the deal size tier matching the given deal value.
// Values below every range, which only happens on unsanitized input, fall
// back to the lowest tier.
func (b Benchmarks) TierForDealValue(dealValue float64) DealSizeTier {
	for _, tier := range b.DealSizeTiers {
		if dealValue >= tier.MinDealValue && (tier.MaxDealValue == 0 || dealValue < tier.MaxDealValue) {
			return tier
		}
	}
	return b.DealSizeTiers[0]
}
