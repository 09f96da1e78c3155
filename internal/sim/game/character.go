package game

import (
	"fmt"
	"sort"
	"time"
)

// Message is a private note between two characters. Delivered only to
// the addressee's inbox and immutable afterwards.
type Message struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Round int    `json:"round"`
	Body  string `json:"body"`
}

// PrivateInfo is the ground truth for a character. It is never copied
// into another character's view; the only paths out are espionage
// findings, leaks and the character's own disclosures.
type PrivateInfo struct {
	TrueObjectives string `json:"true_objectives"`
	TrueStrategy   string `json:"true_strategy"`

	// Budget is keyed by calendar year ("2026"). Spend comes out of the
	// year the game clock is currently in.
	Budget map[string]int64 `json:"budget"`

	Assets AssetBalance `json:"assets"`

	// CounterIntel is a 0..100 posture score working against espionage.
	CounterIntel float64 `json:"counter_intel"`

	ActiveProjects   []*ResearchProject `json:"active_projects"`
	MessagesReceived []Message          `json:"messages_received"`
}

// PublicView is what every other character can see. It is updated only
// by explicit lobby/market effects and leaks, never synced from
// PrivateInfo.
type PublicView struct {
	StatedObjectives string   `json:"stated_objectives"`
	StatedStrategy   string   `json:"stated_strategy"`
	PublicArtifacts  []string `json:"public_artifacts"`
}

// Character is one strategic party. Identity is the name; characters
// are created at game start and never destroyed mid-game.
type Character struct {
	Name    string      `json:"name"`
	Private PrivateInfo `json:"private"`
	Public  PublicView  `json:"public"`
}

// NewCharacter validates the private/public split at construction time:
// committed resources across active projects must not exceed declared
// assets, and every project must itself be well-formed.
func NewCharacter(name string, priv PrivateInfo, pub PublicView) (*Character, error) {
	if name == "" {
		return nil, fmt.Errorf("character: empty name")
	}
	if priv.Assets.Negative() {
		return nil, fmt.Errorf("character %s: negative assets", name)
	}
	if priv.Budget == nil {
		priv.Budget = map[string]int64{}
	}
	committed := AssetBalance{}
	for _, p := range priv.ActiveProjects {
		if p.EstimatedDurationRounds <= 0 {
			return nil, fmt.Errorf("character %s: project %s has non-positive duration", name, p.ID)
		}
		if p.Active() {
			committed = committed.Add(p.Committed)
		}
	}
	if !priv.Assets.Covers(committed) {
		return nil, fmt.Errorf("character %s: committed resources exceed declared assets", name)
	}
	sort.Strings(pub.PublicArtifacts)
	return &Character{Name: name, Private: priv, Public: pub}, nil
}

// CommittedAssets sums the resources held by active projects.
func (c *Character) CommittedAssets() AssetBalance {
	var sum AssetBalance
	for _, p := range c.Private.ActiveProjects {
		if p.Active() {
			sum = sum.Add(p.Committed)
		}
	}
	return sum
}

// AvailableAssets is total assets minus committed resources. This is
// the balance new commitments are validated against.
func (c *Character) AvailableAssets() AssetBalance {
	return c.Private.Assets.Sub(c.CommittedAssets())
}

// Project returns the project with the given id, active or not.
func (c *Character) Project(id string) *ResearchProject {
	for _, p := range c.Private.ActiveProjects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// BudgetFor returns the budget for the year the given date falls in.
func (c *Character) BudgetFor(date time.Time) int64 {
	return c.Private.Budget[budgetPeriod(date)]
}

func budgetPeriod(date time.Time) string {
	return fmt.Sprintf("%04d", date.Year())
}

// AddArtifact keeps PublicArtifacts a sorted set.
func (v *PublicView) AddArtifact(s string) {
	i := sort.SearchStrings(v.PublicArtifacts, s)
	if i < len(v.PublicArtifacts) && v.PublicArtifacts[i] == s {
		return
	}
	v.PublicArtifacts = append(v.PublicArtifacts, "")
	copy(v.PublicArtifacts[i+1:], v.PublicArtifacts[i:])
	v.PublicArtifacts[i] = s
}
