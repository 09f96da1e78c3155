package game

import (
	"fmt"

	"statecraft.ai/internal/protocol"
)

// Rejection is the pre-pipeline answer to a structurally or
// economically infeasible action. It is surfaced to the submitting
// character in place of an effect and never touches anyone else's
// round.
type Rejection struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func reject(code, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks whether the character can even attempt the action
// against its current state. A nil return means the action enters the
// round; probabilistic failure later in the pipeline is a game outcome,
// not a rejection.
func Validate(a Action, c *Character, s *GameState) *Rejection {
	switch a.Kind {
	case ActNoOp:
		return nil

	case ActFundraise:
		if a.Fundraise == nil || a.Fundraise.Amount <= 0 {
			return reject(protocol.ErrBadRequest, "fundraise requires a positive amount")
		}
		return nil

	case ActCreateProject:
		p := a.CreateProject
		if p == nil {
			return reject(protocol.ErrBadRequest, "create_research_project requires project details")
		}
		if p.ProjectID == "" || p.Topic == "" {
			return reject(protocol.ErrBadRequest, "create_research_project requires id and topic")
		}
		if p.EstimatedDurationRounds <= 0 {
			return reject(protocol.ErrBadRequest, "project %s: duration must be positive", p.ProjectID)
		}
		if !s.TopicAllowed(p.Topic) {
			return reject(protocol.ErrInvalidTarget, "topic %q is not in the scenario topic list", p.Topic)
		}
		if c.Project(p.ProjectID) != nil {
			return reject(protocol.ErrConflict, "project id %s already used", p.ProjectID)
		}
		if p.Committed.Negative() {
			return reject(protocol.ErrBadRequest, "project %s: negative committed resources", p.ProjectID)
		}
		if !c.AvailableAssets().Covers(p.Committed) {
			return reject(protocol.ErrNoResource, "insufficient available resources for project %s", p.ProjectID)
		}
		return nil

	case ActCancelProject:
		if a.CancelProject == nil || a.CancelProject.ProjectID == "" {
			return reject(protocol.ErrBadRequest, "cancel_research_project requires a project id")
		}
		p := c.Project(a.CancelProject.ProjectID)
		if p == nil {
			return reject(protocol.ErrInvalidTarget, "project %s not owned by %s", a.CancelProject.ProjectID, c.Name)
		}
		if !p.Active() {
			return reject(protocol.ErrConflict, "project %s is %s, not active", p.ID, p.Status)
		}
		return nil

	case ActInvestCapital:
		if a.Invest == nil || a.Invest.Amount <= 0 {
			return reject(protocol.ErrBadRequest, "invest_capital requires a positive amount")
		}
		if c.BudgetFor(s.CurrentDate) < a.Invest.Amount {
			return reject(protocol.ErrNoResource, "insufficient budget to invest %d", a.Invest.Amount)
		}
		return nil

	case ActDivestCapital:
		if a.Divest == nil || a.Divest.Amount <= 0 {
			return reject(protocol.ErrBadRequest, "divest_capital requires a positive amount")
		}
		if c.AvailableAssets().Capital < a.Divest.Amount {
			return reject(protocol.ErrNoResource, "divesting %d exceeds available capital", a.Divest.Amount)
		}
		return nil

	case ActEspionage:
		if a.Espionage == nil || a.Espionage.Target == "" {
			return reject(protocol.ErrBadRequest, "espionage requires a target")
		}
		if a.Espionage.Target == c.Name {
			return reject(protocol.ErrInvalidTarget, "espionage cannot target self")
		}
		if !s.Has(a.Espionage.Target) {
			return reject(protocol.ErrInvalidTarget, "unknown espionage target %q", a.Espionage.Target)
		}
		return nil

	case ActPoachTalent:
		if a.Poach == nil || a.Poach.Target == "" {
			return reject(protocol.ErrBadRequest, "poach_talent requires a target")
		}
		if a.Poach.Target == c.Name {
			return reject(protocol.ErrInvalidTarget, "poaching cannot target self")
		}
		if !s.Has(a.Poach.Target) {
			return reject(protocol.ErrInvalidTarget, "unknown poaching target %q", a.Poach.Target)
		}
		return nil

	case ActLobby:
		if a.Lobby == nil || a.Lobby.Claim == "" {
			return reject(protocol.ErrBadRequest, "lobby requires a claim")
		}
		return nil

	case ActMarket:
		if a.Market == nil || a.Market.Claim == "" {
			return reject(protocol.ErrBadRequest, "market requires a claim")
		}
		return nil

	case ActSendMessage:
		return validateMessage(a.Message, c, s)
	}

	return reject(protocol.ErrBadRequest, "unknown action kind %q", a.Kind)
}

// ValidateMessage checks a message submission; messages ride alongside
// the primary action and are validated with the same contract.
func ValidateMessage(m MessageAction, c *Character, s *GameState) *Rejection {
	return validateMessage(&m, c, s)
}

func validateMessage(m *MessageAction, c *Character, s *GameState) *Rejection {
	if m == nil || m.To == "" {
		return reject(protocol.ErrBadRequest, "message requires a recipient")
	}
	if m.To == c.Name {
		return reject(protocol.ErrInvalidTarget, "message cannot target self")
	}
	if !s.Has(m.To) {
		return reject(protocol.ErrInvalidTarget, "unknown recipient %q", m.To)
	}
	if m.Body == "" {
		return reject(protocol.ErrBadRequest, "message requires a body")
	}
	return nil
}
