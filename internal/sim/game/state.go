package game

import (
	"fmt"
	"time"
)

// PublicEvent is one entry in the append-only, globally visible log.
type PublicEvent struct {
	Round       int    `json:"round"`
	Description string `json:"description"`
}

// RoundRecord is the per-round history entry kept on the state: the
// digest pins the post-round state for determinism checks, the note is
// the gamemaster's terse global summary of the round.
type RoundRecord struct {
	Round  int       `json:"round"`
	Date   time.Time `json:"date"`
	Digest string    `json:"digest"`
	Note   string    `json:"note"`
}

// GameState is the single mutable aggregate. The resolution engine owns
// it for the duration of one ProcessRound call; the round controller
// holds the long-lived reference between calls. Order fixes the stable
// character iteration order for the whole game.
type GameState struct {
	CurrentRound int       `json:"current_round"`
	CurrentDate  time.Time `json:"current_date"`

	Order      []string              `json:"order"`
	Characters map[string]*Character `json:"characters"`

	// Topics, when non-empty, restricts valid research project topics.
	// Opaque scenario seed data.
	Topics []string `json:"topics,omitempty"`

	PublicEvents []PublicEvent `json:"public_events"`
	History      []RoundRecord `json:"history"`
}

func NewGameState(startDate time.Time) *GameState {
	return &GameState{
		CurrentDate: startDate,
		Characters:  map[string]*Character{},
	}
}

// AddCharacter registers a character. Names are unique and stable for
// the whole game; registration order is the engine's resolution order.
func (s *GameState) AddCharacter(c *Character) error {
	if _, ok := s.Characters[c.Name]; ok {
		return fmt.Errorf("duplicate character %q", c.Name)
	}
	s.Characters[c.Name] = c
	s.Order = append(s.Order, c.Name)
	return nil
}

// InOrder returns characters in registration order.
func (s *GameState) InOrder() []*Character {
	out := make([]*Character, 0, len(s.Order))
	for _, name := range s.Order {
		out = append(out, s.Characters[name])
	}
	return out
}

func (s *GameState) Has(name string) bool {
	_, ok := s.Characters[name]
	return ok
}

// TopicAllowed reports whether a research topic is valid under the
// scenario's topic list. An empty list allows any topic.
func (s *GameState) TopicAllowed(topic string) bool {
	if len(s.Topics) == 0 {
		return true
	}
	for _, t := range s.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// EventsSince returns the public events appended at or after the given
// index. Used for per-round deltas.
func (s *GameState) EventsSince(idx int) []PublicEvent {
	if idx < 0 || idx > len(s.PublicEvents) {
		return nil
	}
	return s.PublicEvents[idx:]
}

// Clone deep-copies the whole state. Resolution is atomic: the engine
// mutates a clone and hands it back only when the full pipeline and the
// invariant check succeed.
func (s *GameState) Clone() *GameState {
	n := &GameState{
		CurrentRound: s.CurrentRound,
		CurrentDate:  s.CurrentDate,
		Order:        append([]string(nil), s.Order...),
		Characters:   make(map[string]*Character, len(s.Characters)),
		Topics:       append([]string(nil), s.Topics...),
		PublicEvents: append([]PublicEvent(nil), s.PublicEvents...),
		History:      append([]RoundRecord(nil), s.History...),
	}
	for name, c := range s.Characters {
		cc := &Character{
			Name: c.Name,
			Private: PrivateInfo{
				TrueObjectives:   c.Private.TrueObjectives,
				TrueStrategy:     c.Private.TrueStrategy,
				Budget:           make(map[string]int64, len(c.Private.Budget)),
				Assets:           c.Private.Assets,
				CounterIntel:     c.Private.CounterIntel,
				ActiveProjects:   make([]*ResearchProject, 0, len(c.Private.ActiveProjects)),
				MessagesReceived: append([]Message(nil), c.Private.MessagesReceived...),
			},
			Public: PublicView{
				StatedObjectives: c.Public.StatedObjectives,
				StatedStrategy:   c.Public.StatedStrategy,
				PublicArtifacts:  append([]string(nil), c.Public.PublicArtifacts...),
			},
		}
		for period, amt := range c.Private.Budget {
			cc.Private.Budget[period] = amt
		}
		for _, p := range c.Private.ActiveProjects {
			pc := *p
			cc.Private.ActiveProjects = append(cc.Private.ActiveProjects, &pc)
		}
		n.Characters[name] = cc
	}
	return n
}

// ConsistencyViolation means an invariant would be broken by the round
// being resolved. It indicates a validation bug, not a game event, and
// fails the whole round.
type ConsistencyViolation struct {
	Character string
	Detail    string
}

func (e *ConsistencyViolation) Error() string {
	if e.Character == "" {
		return "consistency violation: " + e.Detail
	}
	return fmt.Sprintf("consistency violation for %s: %s", e.Character, e.Detail)
}

// CheckInvariants verifies the cross-cutting state invariants: no
// negative balances or budgets, committed never exceeding totals,
// progress inside [0,1] with status agreeing, and message addressing.
func (s *GameState) CheckInvariants() error {
	for _, name := range s.Order {
		c := s.Characters[name]
		if c == nil {
			return &ConsistencyViolation{Character: name, Detail: "in order but missing from map"}
		}
		if c.Private.Assets.Negative() {
			return &ConsistencyViolation{Character: name, Detail: "negative asset balance"}
		}
		if c.Private.Assets.TechnicalCapability > MaxTechnicalCapability {
			return &ConsistencyViolation{Character: name, Detail: "technical capability above scale"}
		}
		if c.AvailableAssets().Negative() {
			return &ConsistencyViolation{Character: name, Detail: "committed resources exceed assets"}
		}
		for period, amt := range c.Private.Budget {
			if amt < 0 {
				return &ConsistencyViolation{Character: name, Detail: "negative budget for " + period}
			}
		}
		for _, p := range c.Private.ActiveProjects {
			if p.Progress < 0 || p.Progress > 1 {
				return &ConsistencyViolation{Character: name, Detail: fmt.Sprintf("project %s progress %.3f out of range", p.ID, p.Progress)}
			}
			if p.Status == ProjectCompleted && p.Progress < 1 {
				return &ConsistencyViolation{Character: name, Detail: fmt.Sprintf("project %s completed below full progress", p.ID)}
			}
		}
		for _, m := range c.Private.MessagesReceived {
			if !s.Has(m.To) || !s.Has(m.From) {
				return &ConsistencyViolation{Character: name, Detail: "message references unknown character"}
			}
		}
	}
	if len(s.Order) != len(s.Characters) {
		return &ConsistencyViolation{Detail: "order and character map disagree"}
	}
	return nil
}
