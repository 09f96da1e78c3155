package ws

import (
	"testing"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/game"
)

func TestToSubmissionMapsEveryKind(t *testing.T) {
	act := protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Round:           3,
		Character:       "Alpha",
		Actions: []protocol.ActionReq{
			{Kind: "FUNDRAISE", Fundraise: &protocol.FundraiseReq{Amount: 500, Pitch: "series B"}},
			{Kind: "CREATE_RESEARCH_PROJECT", CreateProject: &protocol.ProjectReq{
				ProjectID: "p1", Topic: "topic-a",
				CommittedCapital: 800, CommittedTechnical: 2.5, CommittedHuman: 4,
				EstimatedDurationRounds: 3,
			}},
			{Kind: "ESPIONAGE", Espionage: &protocol.EspionageReq{Target: "Beta", FocusArea: "projects"}},
			{Kind: "LOBBY", Lobby: &protocol.ClaimReq{Claim: "go slower"}},
			{Kind: "NO_OP"},
		},
		Messages: []protocol.MessageReq{{To: "Beta", Body: "hello"}},
	}

	sub := ToSubmission(act)
	if len(sub.Primary) != 5 {
		t.Fatalf("got %d primary actions", len(sub.Primary))
	}

	f := sub.Primary[0]
	if f.Kind != game.ActFundraise || f.Fundraise == nil || f.Fundraise.Amount != 500 {
		t.Fatalf("fundraise = %+v", f)
	}
	p := sub.Primary[1]
	if p.Kind != game.ActCreateProject || p.CreateProject == nil {
		t.Fatalf("project = %+v", p)
	}
	if c := p.CreateProject.Committed; c.Capital != 800 || c.TechnicalCapability != 2.5 || c.Human != 4 {
		t.Fatalf("committed = %+v", c)
	}
	e := sub.Primary[2]
	if e.Kind != game.ActEspionage || e.Espionage == nil || e.Espionage.Target != "Beta" {
		t.Fatalf("espionage = %+v", e)
	}
	l := sub.Primary[3]
	if l.Kind != game.ActLobby || l.Lobby == nil || l.Lobby.Claim != "go slower" {
		t.Fatalf("lobby = %+v", l)
	}
	if sub.Primary[4].Kind != game.ActNoOp {
		t.Fatalf("noop = %+v", sub.Primary[4])
	}

	if len(sub.Messages) != 1 || sub.Messages[0].To != "Beta" {
		t.Fatalf("messages = %+v", sub.Messages)
	}
}

func TestToSubmissionPreservesUnknownKindForValidation(t *testing.T) {
	sub := ToSubmission(protocol.ActMsg{Actions: []protocol.ActionReq{{Kind: "EXPLODE"}}})
	if len(sub.Primary) != 1 {
		t.Fatalf("primary = %+v", sub.Primary)
	}
	a := sub.Primary[0]
	if string(a.Kind) != "EXPLODE" {
		t.Fatalf("kind = %q, want EXPLODE passed through", a.Kind)
	}
	// All detail pointers stay nil so the engine rejects it cleanly.
	if a.Fundraise != nil || a.CreateProject != nil || a.Espionage != nil {
		t.Fatalf("detail populated for unknown kind: %+v", a)
	}
}

func TestToSubmissionMissingDetailStaysNil(t *testing.T) {
	sub := ToSubmission(protocol.ActMsg{Actions: []protocol.ActionReq{{Kind: "FUNDRAISE"}}})
	a := sub.Primary[0]
	if a.Kind != game.ActFundraise || a.Fundraise != nil {
		t.Fatalf("action = %+v, want kind set and detail nil", a)
	}
}
