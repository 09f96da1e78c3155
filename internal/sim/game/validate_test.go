package game

import (
	"testing"
	"time"

	"statecraft.ai/internal/protocol"
)

func twoPartyState(t *testing.T) (*GameState, *Character) {
	t.Helper()
	s := NewGameState(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Topics = []string{"topic-a", "topic-b"}

	alpha, err := NewCharacter("Alpha", PrivateInfo{
		Budget: map[string]int64{"2026": 1000},
		Assets: AssetBalance{TechnicalCapability: 40, Capital: 2000, Human: 10},
	}, PublicView{})
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	beta, err := NewCharacter("Beta", PrivateInfo{
		Assets: AssetBalance{TechnicalCapability: 30, Capital: 1500, Human: 8},
	}, PublicView{})
	if err != nil {
		t.Fatalf("beta: %v", err)
	}
	if err := s.AddCharacter(alpha); err != nil {
		t.Fatal(err)
	}
	if err := s.AddCharacter(beta); err != nil {
		t.Fatal(err)
	}
	return s, alpha
}

func TestValidateRejectionCodes(t *testing.T) {
	s, alpha := twoPartyState(t)

	cases := []struct {
		name string
		a    Action
		code string // empty means accepted
	}{
		{"noop", NoOp(), ""},
		{"fundraise ok", Action{Kind: ActFundraise, Fundraise: &FundraiseAction{Amount: 100}}, ""},
		{"fundraise zero", Action{Kind: ActFundraise, Fundraise: &FundraiseAction{Amount: 0}}, protocol.ErrBadRequest},
		{"fundraise no detail", Action{Kind: ActFundraise}, protocol.ErrBadRequest},
		{"espionage self", Action{Kind: ActEspionage, Espionage: &EspionageAction{Target: "Alpha"}}, protocol.ErrInvalidTarget},
		{"espionage unknown", Action{Kind: ActEspionage, Espionage: &EspionageAction{Target: "Nobody"}}, protocol.ErrInvalidTarget},
		{"espionage ok", Action{Kind: ActEspionage, Espionage: &EspionageAction{Target: "Beta"}}, ""},
		{"poach self", Action{Kind: ActPoachTalent, Poach: &PoachAction{Target: "Alpha"}}, protocol.ErrInvalidTarget},
		{"invest over budget", Action{Kind: ActInvestCapital, Invest: &CapitalAction{Amount: 5000}}, protocol.ErrNoResource},
		{"invest ok", Action{Kind: ActInvestCapital, Invest: &CapitalAction{Amount: 500}}, ""},
		{"divest over assets", Action{Kind: ActDivestCapital, Divest: &CapitalAction{Amount: 99999}}, protocol.ErrNoResource},
		{"project bad topic", Action{Kind: ActCreateProject, CreateProject: &CreateProjectAction{
			ProjectID: "p1", Topic: "forbidden", Committed: AssetBalance{Capital: 100}, EstimatedDurationRounds: 3,
		}}, protocol.ErrInvalidTarget},
		{"project too expensive", Action{Kind: ActCreateProject, CreateProject: &CreateProjectAction{
			ProjectID: "p1", Topic: "topic-a", Committed: AssetBalance{Capital: 9999}, EstimatedDurationRounds: 3,
		}}, protocol.ErrNoResource},
		{"project ok", Action{Kind: ActCreateProject, CreateProject: &CreateProjectAction{
			ProjectID: "p1", Topic: "topic-a", Committed: AssetBalance{Capital: 500}, EstimatedDurationRounds: 3,
		}}, ""},
		{"cancel unknown", Action{Kind: ActCancelProject, CancelProject: &CancelProjectAction{ProjectID: "nope"}}, protocol.ErrInvalidTarget},
		{"lobby empty claim", Action{Kind: ActLobby, Lobby: &InfluenceAction{}}, protocol.ErrBadRequest},
		{"unknown kind", Action{Kind: ActionKind("EXPLODE")}, protocol.ErrBadRequest},
	}

	for _, tc := range cases {
		rej := Validate(tc.a, alpha, s)
		if tc.code == "" {
			if rej != nil {
				t.Errorf("%s: unexpected rejection %s (%s)", tc.name, rej.Code, rej.Reason)
			}
			continue
		}
		if rej == nil {
			t.Errorf("%s: expected rejection %s, got accept", tc.name, tc.code)
			continue
		}
		if rej.Code != tc.code {
			t.Errorf("%s: code = %s, want %s", tc.name, rej.Code, tc.code)
		}
		if !protocol.IsKnownCode(rej.Code) {
			t.Errorf("%s: code %s not in known set", tc.name, rej.Code)
		}
	}
}

func TestValidateDuplicateProjectID(t *testing.T) {
	s, alpha := twoPartyState(t)
	alpha.Private.ActiveProjects = append(alpha.Private.ActiveProjects,
		mustProject(t, "p1", AssetBalance{Capital: 100}, 3))

	a := Action{Kind: ActCreateProject, CreateProject: &CreateProjectAction{
		ProjectID: "p1", Topic: "topic-a", Committed: AssetBalance{Capital: 100}, EstimatedDurationRounds: 3,
	}}
	rej := Validate(a, alpha, s)
	if rej == nil || rej.Code != protocol.ErrConflict {
		t.Fatalf("rejection = %+v, want %s", rej, protocol.ErrConflict)
	}
}

func TestValidateMessage(t *testing.T) {
	s, alpha := twoPartyState(t)

	if rej := ValidateMessage(MessageAction{To: "Beta", Body: "hello"}, alpha, s); rej != nil {
		t.Fatalf("valid message rejected: %+v", rej)
	}
	if rej := ValidateMessage(MessageAction{To: "Alpha", Body: "hi"}, alpha, s); rej == nil || rej.Code != protocol.ErrInvalidTarget {
		t.Fatalf("self message: %+v, want %s", rej, protocol.ErrInvalidTarget)
	}
	if rej := ValidateMessage(MessageAction{To: "Beta"}, alpha, s); rej == nil || rej.Code != protocol.ErrBadRequest {
		t.Fatalf("empty body: %+v, want %s", rej, protocol.ErrBadRequest)
	}
}
