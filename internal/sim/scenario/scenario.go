package scenario

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"statecraft.ai/internal/sim/game"
)

// Scenario is the static seed data for one game: the character roster,
// the legal research topics and the random-event templates. The engine
// treats all of it as opaque input.
type Scenario struct {
	Name      string         `yaml:"name"`
	StartDate string         `yaml:"start_date"` // YYYY-MM-DD
	Context   string         `yaml:"context,omitempty"`
	Topics    []string       `yaml:"topics,omitempty"`
	Events    []string       `yaml:"events,omitempty"`
	Roster    []CharacterDef `yaml:"characters"`

	// Digest is the sha256 of the raw file, pinned into WELCOME so
	// agents can tell scenarios apart.
	Digest string `yaml:"-"`
}

type CharacterDef struct {
	Name string `yaml:"name"`

	Objectives   string            `yaml:"objectives"`
	Strategy     string            `yaml:"strategy"`
	Budget       map[string]int64  `yaml:"budget"`
	Assets       game.AssetBalance `yaml:"assets"`
	CounterIntel float64           `yaml:"counter_intel"`

	StatedObjectives string   `yaml:"stated_objectives"`
	StatedStrategy   string   `yaml:"stated_strategy"`
	PublicArtifacts  []string `yaml:"public_artifacts,omitempty"`
}

func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	sum := sha256.Sum256(raw)
	sc.Digest = hex.EncodeToString(sum[:])

	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if len(sc.Roster) == 0 {
		return nil, fmt.Errorf("scenario %s: empty roster", path)
	}
	if _, err := sc.startDate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) startDate() (time.Time, error) {
	if sc.StartDate == "" {
		return time.Time{}, fmt.Errorf("missing start_date")
	}
	d, err := time.Parse("2006-01-02", sc.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	return d.UTC(), nil
}

// BuildState constructs the round-0 GameState. Roster order is the
// engine's stable resolution order for the whole game.
func (sc *Scenario) BuildState() (*game.GameState, error) {
	start, err := sc.startDate()
	if err != nil {
		return nil, err
	}
	s := game.NewGameState(start)
	s.Topics = append([]string(nil), sc.Topics...)
	for _, def := range sc.Roster {
		c, err := game.NewCharacter(def.Name,
			game.PrivateInfo{
				TrueObjectives: def.Objectives,
				TrueStrategy:   def.Strategy,
				Budget:         cloneBudget(def.Budget),
				Assets:         def.Assets,
				CounterIntel:   def.CounterIntel,
			},
			game.PublicView{
				StatedObjectives: def.StatedObjectives,
				StatedStrategy:   def.StatedStrategy,
				PublicArtifacts:  append([]string(nil), def.PublicArtifacts...),
			})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		if err := s.AddCharacter(c); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return s, nil
}

func cloneBudget(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
