package engine

import (
	"fmt"

	"statecraft.ai/internal/sim/game"
)

// advanceResearch adds resource-proportional progress to every active
// project. Crossing 1.0 completes the project and consumes its
// commitment; completed projects are kept in history but never advance
// again, and completion grants no mechanical benefit beyond status.
func (r *round) advanceResearch() {
	for _, name := range r.state.Order {
		c := r.state.Characters[name]
		for _, p := range c.Private.ActiveProjects {
			if !p.Active() {
				continue
			}
			bonus := p.Committed.Human / r.gm.tun.Research.HumanScale
			if bonus > r.gm.tun.Research.MaxBonus {
				bonus = r.gm.tun.Research.MaxBonus
			}
			rate := (1.0 / float64(p.EstimatedDurationRounds)) * (1 + bonus)
			p.Progress += rate
			if p.Progress >= 1.0 {
				p.Progress = 1.0
				p.Status = game.ProjectCompleted
				c.Private.Assets = c.Private.Assets.Sub(p.Committed).ClampTech()
				r.addResult(name, game.ActionResult{
					Kind: game.ActCreateProject, OK: true,
					Detail: fmt.Sprintf("project %s (%s) completed", p.ID, p.Topic),
				})
			}
			r.projects[name] = append(r.projects[name], game.ProjectUpdate{
				ProjectID: p.ID, Topic: p.Topic, Progress: p.Progress, Status: p.Status,
			})
		}
	}
}
