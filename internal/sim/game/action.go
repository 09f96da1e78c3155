package game

// ActionKind tags the closed set of primary actions. The engine
// switches exhaustively over these; an unknown kind is a validation
// failure, never a silent no-op.
type ActionKind string

const (
	ActFundraise     ActionKind = "FUNDRAISE"
	ActCreateProject ActionKind = "CREATE_RESEARCH_PROJECT"
	ActCancelProject ActionKind = "CANCEL_RESEARCH_PROJECT"
	ActInvestCapital ActionKind = "INVEST_CAPITAL"
	ActDivestCapital ActionKind = "DIVEST_CAPITAL"
	ActEspionage     ActionKind = "ESPIONAGE"
	ActPoachTalent   ActionKind = "POACH_TALENT"
	ActLobby         ActionKind = "LOBBY"
	ActMarket        ActionKind = "MARKET"
	ActSendMessage   ActionKind = "SEND_MESSAGE"
	ActNoOp          ActionKind = "NO_OP"
)

// Action is a tagged variant: Kind selects exactly one of the detail
// pointers. Wire adapters build these; Validate checks feasibility
// against the submitting character's current state before the pipeline
// runs.
type Action struct {
	Kind ActionKind `json:"kind"`

	Fundraise     *FundraiseAction     `json:"fundraise,omitempty"`
	CreateProject *CreateProjectAction `json:"create_project,omitempty"`
	CancelProject *CancelProjectAction `json:"cancel_project,omitempty"`
	Invest        *CapitalAction       `json:"invest,omitempty"`
	Divest        *CapitalAction       `json:"divest,omitempty"`
	Espionage     *EspionageAction     `json:"espionage,omitempty"`
	Poach         *PoachAction         `json:"poach,omitempty"`
	Lobby         *InfluenceAction     `json:"lobby,omitempty"`
	Market        *InfluenceAction     `json:"market,omitempty"`
	Message       *MessageAction       `json:"message,omitempty"`
}

type FundraiseAction struct {
	Amount int64  `json:"amount"`
	Pitch  string `json:"pitch,omitempty"`
}

type CreateProjectAction struct {
	ProjectID               string       `json:"project_id"`
	Topic                   string       `json:"topic"`
	Committed               AssetBalance `json:"committed"`
	EstimatedDurationRounds int          `json:"estimated_duration_rounds"`
}

type CancelProjectAction struct {
	ProjectID string `json:"project_id"`
}

type CapitalAction struct {
	Amount int64 `json:"amount"`
}

type EspionageAction struct {
	Target    string `json:"target"`
	FocusArea string `json:"focus_area,omitempty"`
}

type PoachAction struct {
	Target string `json:"target"`
}

type InfluenceAction struct {
	Claim string `json:"claim"`
}

type MessageAction struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func NoOp() Action { return Action{Kind: ActNoOp} }
