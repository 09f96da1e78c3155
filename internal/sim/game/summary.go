package game

import "time"

// ActionResult reports one primary action's outcome to its submitter.
// OK covers intent: a validated espionage attempt that rolled a failure
// has OK=false with an empty code, a rejected action carries the
// rejection code.
type ActionResult struct {
	Kind   ActionKind `json:"kind"`
	OK     bool       `json:"ok"`
	Code   string     `json:"code,omitempty"`
	Detail string     `json:"detail"`
}

// EspionageReport is delivered only to the attacker. Findings are the
// bounded slice of the target's private info revealed on success.
type EspionageReport struct {
	Target    string   `json:"target"`
	FocusArea string   `json:"focus_area,omitempty"`
	Success   bool     `json:"success"`
	Findings  []string `json:"findings,omitempty"`
}

type ProjectUpdate struct {
	ProjectID string        `json:"project_id"`
	Topic     string        `json:"topic"`
	Progress  float64       `json:"progress"`
	Status    ProjectStatus `json:"status"`
}

// Summary is the per-character, access-controlled digest of one round.
// It never contains another character's private info unless an explicit
// espionage or leak effect revealed it this round.
type Summary struct {
	Character string    `json:"character"`
	Round     int       `json:"round"`
	Date      time.Time `json:"date"`

	ActionResults    []ActionResult    `json:"action_results,omitempty"`
	NewMessages      []Message         `json:"new_messages,omitempty"`
	EspionageReports []EspionageReport `json:"espionage_reports,omitempty"`
	TargetedBy       []string          `json:"targeted_by,omitempty"`
	ProjectUpdates   []ProjectUpdate   `json:"project_updates,omitempty"`
	PublicEvents     []PublicEvent     `json:"public_events,omitempty"`

	// OtherPublicViews mirrors every other character's PublicView as of
	// the end of the round.
	OtherPublicViews map[string]PublicView `json:"other_public_views,omitempty"`

	// Digest is a terse natural-language-ready recap of what this
	// character is entitled to see.
	Digest string `json:"digest"`
}
