package runner

import (
	"context"
	"fmt"
	"math/rand"

	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
)

// ScriptedAgent is a deterministic rule-based player used by the batch
// sim and by tests: it fundraises when capital budget is thin, starts
// and finishes research projects, and occasionally spies on or messages
// a rival. Given the same seed and the same briefs it always produces
// the same submissions.
type ScriptedAgent struct {
	name   string
	rivals []string
	topics []string
	rng    *rand.Rand

	nextProject int
	active      string
}

func NewScriptedAgent(name string, rivals, topics []string, seed int64) *ScriptedAgent {
	return &ScriptedAgent{
		name:   name,
		rivals: append([]string(nil), rivals...),
		topics: append([]string(nil), topics...),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (a *ScriptedAgent) Name() string { return a.name }

func (a *ScriptedAgent) Propose(ctx context.Context, brief *Brief) (engine.Submission, error) {
	if err := ctx.Err(); err != nil {
		return engine.Submission{}, err
	}

	a.observe(brief)

	var sub engine.Submission
	sub.Primary = []game.Action{a.primary(brief)}

	if len(a.rivals) > 0 && a.rng.Float64() < 0.25 {
		to := a.rivals[a.rng.Intn(len(a.rivals))]
		sub.Messages = append(sub.Messages, game.MessageAction{
			To:   to,
			Body: fmt.Sprintf("round %d: open to coordinating on shared research", brief.Round),
		})
	}
	return sub, nil
}

// observe clears the active project marker once the summary reports it
// finished or cancelled.
func (a *ScriptedAgent) observe(brief *Brief) {
	if brief.Summary == nil || a.active == "" {
		return
	}
	for _, up := range brief.Summary.ProjectUpdates {
		if up.ProjectID == a.active && up.Status != game.ProjectActive {
			a.active = ""
		}
	}
}

func (a *ScriptedAgent) primary(brief *Brief) game.Action {
	roll := a.rng.Float64()
	switch {
	case a.active == "" && len(a.topics) > 0 && roll < 0.5:
		a.nextProject++
		id := fmt.Sprintf("%s-proj-%d", a.name, a.nextProject)
		a.active = id
		return game.Action{
			Kind: game.ActCreateProject,
			CreateProject: &game.CreateProjectAction{
				ProjectID: id,
				Topic:     a.topics[a.rng.Intn(len(a.topics))],
				Committed: game.AssetBalance{
					TechnicalCapability: 2,
					Capital:             100,
					Human:               1,
				},
				EstimatedDurationRounds: 3,
			},
		}
	case roll < 0.7:
		return game.Action{Kind: game.ActFundraise, Fundraise: &game.FundraiseAction{Amount: 500}}
	case len(a.rivals) > 0 && roll < 0.85:
		target := a.rivals[a.rng.Intn(len(a.rivals))]
		return game.Action{
			Kind:      game.ActEspionage,
			Espionage: &game.EspionageAction{Target: target, FocusArea: "projects"},
		}
	default:
		return game.NoOp()
	}
}
