package engine

import (
	"fmt"
	"unicode/utf8"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/game"
)

// applyPrimary walks characters in registration order and applies each
// accepted primary action. The stable order is what makes contention
// over shared resources (poaching the same pool) deterministic:
// first-in-order wins, later attempts fail gracefully and are reported.
func (r *round) applyPrimary(accepted map[string]Submission) {
	for _, name := range r.state.Order {
		c := r.state.Characters[name]
		for _, a := range accepted[name].Primary {
			r.applyAction(c, a)
		}
	}
}

func (r *round) applyAction(c *game.Character, a game.Action) {
	switch a.Kind {
	case game.ActNoOp:
		r.addResult(c.Name, game.ActionResult{Kind: a.Kind, OK: true, Detail: "no action taken"})

	case game.ActFundraise:
		r.applyFundraise(c, a.Fundraise)

	case game.ActCreateProject:
		r.applyCreateProject(c, a.CreateProject)

	case game.ActCancelProject:
		r.applyCancelProject(c, a.CancelProject)

	case game.ActInvestCapital:
		r.applyInvest(c, a.Invest)

	case game.ActDivestCapital:
		r.applyDivest(c, a.Divest)

	case game.ActEspionage:
		// Queued now, resolved in the espionage step so results can
		// feed the leak model afterwards.
		r.espionage = append(r.espionage, espionageAttempt{
			Attacker:  c.Name,
			Target:    a.Espionage.Target,
			FocusArea: a.Espionage.FocusArea,
		})

	case game.ActPoachTalent:
		r.applyPoach(c, a.Poach)

	case game.ActLobby:
		r.applyInfluence(c, a.Lobby, true)

	case game.ActMarket:
		r.applyInfluence(c, a.Market, false)

	case game.ActSendMessage:
		// Already delivered in the message step; nothing left to do.

	default:
		// Validation guarantees a known kind; reaching here is a bug.
		r.addResult(c.Name, game.ActionResult{
			Kind: a.Kind, Code: protocol.ErrInternal,
			Detail: fmt.Sprintf("unhandled action kind %q", a.Kind),
		})
	}
}

func (r *round) applyFundraise(c *game.Character, f *game.FundraiseAction) {
	if r.rng.Float64() >= r.gm.tun.Fundraise.SuccessRate {
		r.addResult(c.Name, game.ActionResult{
			Kind:   game.ActFundraise,
			Detail: fmt.Sprintf("fundraising round for %d found no backers", f.Amount),
		})
		return
	}
	raised := int64(float64(f.Amount) * r.gm.tun.Fundraise.Efficiency)
	period := r.period()
	c.Private.Budget[period] += raised
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActFundraise, OK: true,
		Detail: fmt.Sprintf("raised %d into the %s budget", raised, period),
	})
}

func (r *round) applyCreateProject(c *game.Character, p *game.CreateProjectAction) {
	proj, err := game.NewResearchProject(p.ProjectID, p.Topic, p.Committed, p.EstimatedDurationRounds, r.state.CurrentRound)
	if err != nil {
		r.addResult(c.Name, game.ActionResult{Kind: game.ActCreateProject, Code: protocol.ErrBadRequest, Detail: err.Error()})
		return
	}
	c.Private.ActiveProjects = append(c.Private.ActiveProjects, proj)
	r.projects[c.Name] = append(r.projects[c.Name], game.ProjectUpdate{
		ProjectID: proj.ID, Topic: proj.Topic, Progress: 0, Status: game.ProjectActive,
	})
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActCreateProject, OK: true,
		Detail: fmt.Sprintf("project %s (%s) started, %d rounds estimated", proj.ID, proj.Topic, proj.EstimatedDurationRounds),
	})
}

// applyCancelProject releases the project's commitment and returns the
// refund fraction of the unspent part; the rest is forfeited from the
// owner's total assets. A cancelled project never re-enters active.
func (r *round) applyCancelProject(c *game.Character, cp *game.CancelProjectAction) {
	p := c.Project(cp.ProjectID)
	if p == nil || !p.Active() {
		r.addResult(c.Name, game.ActionResult{
			Kind: game.ActCancelProject, Code: protocol.ErrInvalidTarget,
			Detail: fmt.Sprintf("no active project %s", cp.ProjectID),
		})
		return
	}
	refund := p.Unspent().Scale(r.gm.tun.Research.RefundFraction)
	forfeited := p.Committed.Sub(refund)
	p.Status = game.ProjectCancelled
	c.Private.Assets = c.Private.Assets.Sub(forfeited).ClampTech()
	r.projects[c.Name] = append(r.projects[c.Name], game.ProjectUpdate{
		ProjectID: p.ID, Topic: p.Topic, Progress: p.Progress, Status: game.ProjectCancelled,
	})
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActCancelProject, OK: true,
		Detail: fmt.Sprintf("project %s cancelled at %.0f%%, refunded %d capital", p.ID, p.Progress*100, refund.Capital),
	})
}

func (r *round) applyInvest(c *game.Character, a *game.CapitalAction) {
	period := r.period()
	if c.Private.Budget[period] < a.Amount {
		r.addResult(c.Name, game.ActionResult{
			Kind: game.ActInvestCapital, Code: protocol.ErrNoResource,
			Detail: fmt.Sprintf("budget %d cannot cover investment of %d", c.Private.Budget[period], a.Amount),
		})
		return
	}
	c.Private.Budget[period] -= a.Amount
	gained := int64(float64(a.Amount) * r.gm.tun.Capital.InvestEfficiency)
	c.Private.Assets.Capital += gained
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActInvestCapital, OK: true,
		Detail: fmt.Sprintf("invested %d, capital assets up %d", a.Amount, gained),
	})
}

func (r *round) applyDivest(c *game.Character, a *game.CapitalAction) {
	if c.AvailableAssets().Capital < a.Amount {
		r.addResult(c.Name, game.ActionResult{
			Kind: game.ActDivestCapital, Code: protocol.ErrNoResource,
			Detail: fmt.Sprintf("available capital cannot cover divestment of %d", a.Amount),
		})
		return
	}
	c.Private.Assets.Capital -= a.Amount
	gained := int64(float64(a.Amount) * r.gm.tun.Capital.DivestEfficiency)
	period := r.period()
	c.Private.Budget[period] += gained
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActDivestCapital, OK: true,
		Detail: fmt.Sprintf("divested %d capital for %d budget", a.Amount, gained),
	})
}

func (r *round) applyPoach(c *game.Character, p *game.PoachAction) {
	target := r.state.Characters[p.Target]
	if r.poachDrained[p.Target] {
		r.addResult(c.Name, game.ActionResult{
			Kind: game.ActPoachTalent, Code: protocol.ErrNoResource,
			Detail: fmt.Sprintf("%s's poachable talent is already exhausted this round", p.Target),
		})
		return
	}
	if r.rng.Float64() >= r.gm.tun.Poach.SuccessRate {
		r.addResult(c.Name, game.ActionResult{
			Kind:   game.ActPoachTalent,
			Detail: fmt.Sprintf("poaching attempt on %s failed", p.Target),
		})
		return
	}
	avail := target.AvailableAssets().Human
	transfer := avail * r.gm.tun.Poach.TransferRate
	if transfer > r.gm.tun.Poach.TransferCap {
		transfer = r.gm.tun.Poach.TransferCap
	}
	if transfer > avail {
		transfer = avail
	}
	if transfer <= 0 {
		r.addResult(c.Name, game.ActionResult{
			Kind: game.ActPoachTalent, Code: protocol.ErrNoResource,
			Detail: fmt.Sprintf("%s has no poachable talent left", p.Target),
		})
		return
	}
	target.Private.Assets.Human -= transfer
	c.Private.Assets.Human += transfer
	r.poachDrained[p.Target] = true
	r.addResult(c.Name, game.ActionResult{
		Kind: game.ActPoachTalent, OK: true,
		Detail: fmt.Sprintf("poached %.1f headcount from %s", transfer, p.Target),
	})
}

// applyInfluence handles lobby (stated objectives shift) and market
// (public artifact) campaigns. Both carry a seeded backfire chance; a
// backfire is a negative PublicView shift plus a public event, never an
// error.
func (r *round) applyInfluence(c *game.Character, a *game.InfluenceAction, lobby bool) {
	kind := game.ActMarket
	if lobby {
		kind = game.ActLobby
	}
	if r.rng.Float64() < r.gm.tun.Influence.BackfireRate {
		c.Public.AddArtifact("disputed claim: " + truncate(a.Claim, 60))
		r.appendEvent(fmt.Sprintf("%s's campaign backfired: %s", c.Name, truncate(a.Claim, 80)))
		r.addResult(c.Name, game.ActionResult{
			Kind: kind, Detail: "campaign backfired publicly",
		})
		return
	}
	if lobby {
		c.Public.StatedObjectives = a.Claim
		r.appendEvent(fmt.Sprintf("%s lobbies policymakers: %s", c.Name, truncate(a.Claim, 80)))
	} else {
		c.Public.AddArtifact(a.Claim)
		r.appendEvent(fmt.Sprintf("%s launches a marketing push: %s", c.Name, truncate(a.Claim, 80)))
	}
	r.addResult(c.Name, game.ActionResult{Kind: kind, OK: true, Detail: "campaign landed"})
}

func (r *round) appendEvent(desc string) {
	r.state.PublicEvents = append(r.state.PublicEvents, game.PublicEvent{
		Round:       r.state.CurrentRound,
		Description: desc,
	})
}

func (r *round) period() string {
	return fmt.Sprintf("%04d", r.state.CurrentDate.Year())
}

// truncate cuts at a rune boundary so multi-byte claims stay valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
