package engine

import "statecraft.ai/internal/sim/game"

// RecordedSubmission pins one character's input for the round log.
type RecordedSubmission struct {
	Character  string     `json:"character"`
	Submission Submission `json:"submission"`
}

// RoundLogEntry is one JSONL record per resolved round: enough to
// replay the round (inputs + seed) and to verify it (digest).
type RoundLogEntry struct {
	Round       int                  `json:"round"`
	Date        string               `json:"date"`
	Seed        int64                `json:"seed"`
	Submissions []RecordedSubmission `json:"submissions,omitempty"`
	Events      []game.PublicEvent   `json:"events,omitempty"`
	Digest      string               `json:"digest"`
}

// SummaryLogEntry is one JSONL record per character per round.
type SummaryLogEntry struct {
	Round     int           `json:"round"`
	Character string        `json:"character"`
	Summary   *game.Summary `json:"summary"`
}
