package ws

import (
	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
)

// ToSubmission maps a wire ACT onto the engine's action model. It is a
// pure shape conversion: feasibility (balances, targets, topic legality)
// is the engine's job, so a well-formed but impossible action still
// converts and gets rejected with a coded result at resolution.
func ToSubmission(act protocol.ActMsg) engine.Submission {
	var sub engine.Submission
	for _, req := range act.Actions {
		sub.Primary = append(sub.Primary, toAction(req))
	}
	for _, m := range act.Messages {
		sub.Messages = append(sub.Messages, game.MessageAction{To: m.To, Body: m.Body})
	}
	return sub
}

func toAction(req protocol.ActionReq) game.Action {
	a := game.Action{Kind: game.ActionKind(req.Kind)}
	switch a.Kind {
	case game.ActFundraise:
		if req.Fundraise != nil {
			a.Fundraise = &game.FundraiseAction{Amount: req.Fundraise.Amount, Pitch: req.Fundraise.Pitch}
		}
	case game.ActCreateProject:
		if req.CreateProject != nil {
			a.CreateProject = &game.CreateProjectAction{
				ProjectID: req.CreateProject.ProjectID,
				Topic:     req.CreateProject.Topic,
				Committed: game.AssetBalance{
					TechnicalCapability: req.CreateProject.CommittedTechnical,
					Capital:             req.CreateProject.CommittedCapital,
					Human:               req.CreateProject.CommittedHuman,
				},
				EstimatedDurationRounds: req.CreateProject.EstimatedDurationRounds,
			}
		}
	case game.ActCancelProject:
		if req.CancelProject != nil {
			a.CancelProject = &game.CancelProjectAction{ProjectID: req.CancelProject.ProjectID}
		}
	case game.ActInvestCapital:
		if req.Invest != nil {
			a.Invest = &game.CapitalAction{Amount: req.Invest.Amount}
		}
	case game.ActDivestCapital:
		if req.Divest != nil {
			a.Divest = &game.CapitalAction{Amount: req.Divest.Amount}
		}
	case game.ActEspionage:
		if req.Espionage != nil {
			a.Espionage = &game.EspionageAction{Target: req.Espionage.Target, FocusArea: req.Espionage.FocusArea}
		}
	case game.ActPoachTalent:
		if req.Poach != nil {
			a.Poach = &game.PoachAction{Target: req.Poach.Target}
		}
	case game.ActLobby:
		if req.Lobby != nil {
			a.Lobby = &game.InfluenceAction{Claim: req.Lobby.Claim}
		}
	case game.ActMarket:
		if req.Market != nil {
			a.Market = &game.InfluenceAction{Claim: req.Market.Claim}
		}
	}
	// Unknown kinds and missing detail objects pass through unchanged;
	// validation rejects them with E_BAD_REQUEST.
	return a
}
