package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning holds every game-dynamics constant. All probabilities are in
// [0,1] and are rolled against the round's seeded RNG, never a global
// source.
type Tuning struct {
	CalendarStepDays  int `yaml:"calendar_step_days"`
	MaxPrimaryActions int `yaml:"max_primary_actions"`

	Fundraise FundraiseTuning `yaml:"fundraise"`
	Research  ResearchTuning  `yaml:"research"`
	Capital   CapitalTuning   `yaml:"capital"`
	Espionage EspionageTuning `yaml:"espionage"`
	Poach     PoachTuning     `yaml:"poach"`
	Influence InfluenceTuning `yaml:"influence"`
	Leak      LeakTuning      `yaml:"leak"`
	Events    EventTuning     `yaml:"events"`
}

type FundraiseTuning struct {
	SuccessRate float64 `yaml:"success_rate"`
	Efficiency  float64 `yaml:"efficiency"`
}

type ResearchTuning struct {
	// Progress per round is (1/duration) * (1 + min(human/HumanScale, MaxBonus)).
	HumanScale float64 `yaml:"human_scale"`
	MaxBonus   float64 `yaml:"max_bonus"`
	// RefundFraction of unspent committed resources returned on cancel.
	RefundFraction float64 `yaml:"refund_fraction"`
}

type CapitalTuning struct {
	InvestEfficiency float64 `yaml:"invest_efficiency"`
	DivestEfficiency float64 `yaml:"divest_efficiency"`
}

type EspionageTuning struct {
	// Success probability is BaseRate + (MaxRate-BaseRate) * logistic(diff/CapabilityScale)
	// where diff = attacker tech capability - target counter-intel.
	BaseRate        float64 `yaml:"base_rate"`
	MaxRate         float64 `yaml:"max_rate"`
	CapabilityScale float64 `yaml:"capability_scale"`
	MaxFindings     int     `yaml:"max_findings"`
	// RevealTargeting tells the target they were spied on (not by whom
	// it was ordered unless this is on).
	RevealTargeting bool `yaml:"reveal_targeting"`
}

type PoachTuning struct {
	SuccessRate  float64 `yaml:"success_rate"`
	TransferRate float64 `yaml:"transfer_rate"`
	TransferCap  float64 `yaml:"transfer_cap"`
}

type InfluenceTuning struct {
	BackfireRate float64 `yaml:"backfire_rate"`
}

type LeakTuning struct {
	// Probability per character per round of a private fact surfacing.
	Probability float64 `yaml:"probability"`
	// NudgeProbability: given a leak, chance it shifts the PublicView
	// instead of only producing a public event.
	NudgeProbability float64 `yaml:"nudge_probability"`
}

type EventTuning struct {
	Probability float64 `yaml:"probability"`
}

// Default mirrors configs/tuning.yaml.
func Default() Tuning {
	return Tuning{
		CalendarStepDays:  90,
		MaxPrimaryActions: 1,
		Fundraise:         FundraiseTuning{SuccessRate: 0.7, Efficiency: 0.8},
		Research:          ResearchTuning{HumanScale: 100, MaxBonus: 0.5, RefundFraction: 0.5},
		Capital:           CapitalTuning{InvestEfficiency: 0.9, DivestEfficiency: 0.7},
		Espionage:         EspionageTuning{BaseRate: 0.1, MaxRate: 0.8, CapabilityScale: 20, MaxFindings: 3, RevealTargeting: true},
		Poach:             PoachTuning{SuccessRate: 0.35, TransferRate: 0.1, TransferCap: 5},
		Influence:         InfluenceTuning{BackfireRate: 0.1},
		Leak:              LeakTuning{Probability: 0.05, NudgeProbability: 0.5},
		Events:            EventTuning{Probability: 0.1},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.CalendarStepDays <= 0 {
		return fmt.Errorf("tuning: calendar_step_days must be positive")
	}
	if t.MaxPrimaryActions < 0 {
		return fmt.Errorf("tuning: max_primary_actions must not be negative")
	}
	if t.Research.RefundFraction < 0 || t.Research.RefundFraction > 1 {
		return fmt.Errorf("tuning: refund_fraction out of [0,1]")
	}
	for name, p := range map[string]float64{
		"fundraise.success_rate":  t.Fundraise.SuccessRate,
		"espionage.base_rate":     t.Espionage.BaseRate,
		"espionage.max_rate":      t.Espionage.MaxRate,
		"poach.success_rate":      t.Poach.SuccessRate,
		"influence.backfire_rate": t.Influence.BackfireRate,
		"leak.probability":        t.Leak.Probability,
		"leak.nudge_probability":  t.Leak.NudgeProbability,
		"events.probability":      t.Events.Probability,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("tuning: %s out of [0,1]", name)
		}
	}
	if t.Espionage.MaxRate < t.Espionage.BaseRate {
		return fmt.Errorf("tuning: espionage.max_rate below base_rate")
	}
	return nil
}
