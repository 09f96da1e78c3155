package protocol

import "encoding/json"

// HELLO (client -> server)
type HelloMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	CharacterName   string     `json:"character_name"`
	Auth            *HelloAuth `json:"auth,omitempty"`
}

type HelloAuth struct {
	Token string `json:"token,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Character       string     `json:"character"`
	GameParams      GameParams `json:"game_params"`
	ScenarioDigest  string     `json:"scenario_digest"`
}

type GameParams struct {
	Rounds            int    `json:"rounds"`
	CalendarStepDays  int    `json:"calendar_step_days"`
	MaxPrimaryActions int    `json:"max_primary_actions"`
	RoundTimeoutMs    int    `json:"round_timeout_ms"`
	StartDate         string `json:"start_date"`
}

// BRIEF (server -> client): the per-character round summary plus the
// deadline for the next ACT. Round 0 carries only the opening context.
type BriefMsg struct {
	Type            string          `json:"type"`
	ProtocolVersion string          `json:"protocol_version"`
	Round           int             `json:"round"`
	Character       string          `json:"character"`
	Summary         json.RawMessage `json:"summary,omitempty"`
	DeadlineMs      int             `json:"deadline_ms,omitempty"`
}

// ACT (client -> server): at most the configured number of primary
// actions plus any number of private messages, for the round named in
// the latest BRIEF.
type ActMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Round           int          `json:"round"`
	Character       string       `json:"character"`
	Actions         []ActionReq  `json:"actions,omitempty"`
	Messages        []MessageReq `json:"messages,omitempty"`
}

// ActionReq is the wire form of one primary action. Kind selects which
// detail object applies; the transport adapter converts to the engine's
// action model and the engine validates feasibility.
type ActionReq struct {
	Kind string `json:"kind"`

	Fundraise     *FundraiseReq `json:"fundraise,omitempty"`
	CreateProject *ProjectReq   `json:"create_project,omitempty"`
	CancelProject *CancelReq    `json:"cancel_project,omitempty"`
	Invest        *AmountReq    `json:"invest,omitempty"`
	Divest        *AmountReq    `json:"divest,omitempty"`
	Espionage     *EspionageReq `json:"espionage,omitempty"`
	Poach         *PoachReq     `json:"poach,omitempty"`
	Lobby         *ClaimReq     `json:"lobby,omitempty"`
	Market        *ClaimReq     `json:"market,omitempty"`
}

type FundraiseReq struct {
	Amount int64  `json:"amount"`
	Pitch  string `json:"pitch,omitempty"`
}

type ProjectReq struct {
	ProjectID               string  `json:"project_id"`
	Topic                   string  `json:"topic"`
	CommittedCapital        int64   `json:"committed_capital"`
	CommittedTechnical      float64 `json:"committed_technical_capability"`
	CommittedHuman          float64 `json:"committed_human"`
	EstimatedDurationRounds int     `json:"estimated_duration_rounds"`
}

type CancelReq struct {
	ProjectID string `json:"project_id"`
}

type AmountReq struct {
	Amount int64 `json:"amount"`
}

type EspionageReq struct {
	Target    string `json:"target"`
	FocusArea string `json:"focus_area,omitempty"`
}

type PoachReq struct {
	Target string `json:"target"`
}

type ClaimReq struct {
	Claim string `json:"claim"`
}

type MessageReq struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// ACK (server -> client)
type AckMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	AckFor          string `json:"ack_for"`
	Accepted        bool   `json:"accepted"`
	Code            string `json:"code,omitempty"`
	Message         string `json:"message,omitempty"`
	Round           int    `json:"round,omitempty"`
}
