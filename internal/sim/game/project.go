package game

import "fmt"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// ResearchProject is a multi-round commitment of resources. Committed
// resources are held out of the owner's available balance until the
// project completes or is cancelled. Progress only ever moves forward;
// crossing 1.0 flips the status to completed and the project stops
// advancing but stays in the owner's history.
type ResearchProject struct {
	ID                      string        `json:"id"`
	Topic                   string        `json:"topic"`
	Committed               AssetBalance  `json:"committed"`
	Progress                float64       `json:"progress"`
	EstimatedDurationRounds int           `json:"estimated_duration_rounds"`
	Status                  ProjectStatus `json:"status"`
	StartedRound            int           `json:"started_round"`
}

func NewResearchProject(id, topic string, committed AssetBalance, durationRounds, startedRound int) (*ResearchProject, error) {
	if id == "" {
		return nil, fmt.Errorf("research project: empty id")
	}
	if topic == "" {
		return nil, fmt.Errorf("research project %s: empty topic", id)
	}
	if durationRounds <= 0 {
		return nil, fmt.Errorf("research project %s: duration %d rounds, must be positive", id, durationRounds)
	}
	if committed.Negative() {
		return nil, fmt.Errorf("research project %s: negative committed resources", id)
	}
	return &ResearchProject{
		ID:                      id,
		Topic:                   topic,
		Committed:               committed,
		EstimatedDurationRounds: durationRounds,
		Status:                  ProjectActive,
		StartedRound:            startedRound,
	}, nil
}

func (p *ResearchProject) Active() bool { return p.Status == ProjectActive }

// Unspent is the fraction of committed resources not yet consumed by
// progress. Cancellation refunds a tunable fraction of this.
func (p *ResearchProject) Unspent() AssetBalance {
	remaining := 1.0 - p.Progress
	if remaining < 0 {
		remaining = 0
	}
	return p.Committed.Scale(remaining)
}
