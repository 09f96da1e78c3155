package engine

import (
	"fmt"
	"math"
	"sort"

	"statecraft.ai/internal/sim/game"
)

// resolveEspionage rolls every attempt queued this round. Success
// probability is a logistic on the capability differential between the
// attacker's technical capability and the target's counter-intel
// posture. On success a bounded, randomly selected slice of the
// target's private info goes to the attacker only; nothing enters the
// public log. Whether the target learns it was spied on is a policy
// toggle.
func (r *round) resolveEspionage() {
	for _, att := range r.espionage {
		attacker := r.state.Characters[att.Attacker]
		target := r.state.Characters[att.Target]

		p := r.successProbability(attacker, target)
		success := r.rng.Float64() < p

		report := game.EspionageReport{
			Target:    att.Target,
			FocusArea: att.FocusArea,
			Success:   success,
		}
		if success {
			report.Findings = r.pickFindings(target)
		}
		r.reports[att.Attacker] = append(r.reports[att.Attacker], report)

		detail := fmt.Sprintf("espionage on %s failed", att.Target)
		if success {
			detail = fmt.Sprintf("espionage on %s succeeded, %d findings", att.Target, len(report.Findings))
		}
		r.addResult(att.Attacker, game.ActionResult{Kind: game.ActEspionage, OK: success, Detail: detail})

		if r.gm.tun.Espionage.RevealTargeting {
			r.targetedBy[att.Target] = append(r.targetedBy[att.Target], att.Attacker)
		}
	}
}

func (r *round) successProbability(attacker, target *game.Character) float64 {
	t := r.gm.tun.Espionage
	diff := attacker.Private.Assets.TechnicalCapability - target.Private.CounterIntel
	logistic := 1.0 / (1.0 + math.Exp(-diff/t.CapabilityScale))
	return t.BaseRate + (t.MaxRate-t.BaseRate)*logistic
}

// pickFindings selects up to MaxFindings facts from the target's
// private info, seeded so runs replay identically.
func (r *round) pickFindings(target *game.Character) []string {
	facts := privateFacts(target, r.period())
	max := r.gm.tun.Espionage.MaxFindings
	if max <= 0 || max > len(facts) {
		max = len(facts)
	}
	idx := r.rng.Perm(len(facts))[:max]
	sort.Ints(idx)
	out := make([]string, 0, max)
	for _, i := range idx {
		out = append(out, facts[i])
	}
	return out
}

// privateFacts renders the leakable slice of a character's PrivateInfo
// as standalone statements. The same list feeds espionage findings and
// the rumor/press leak model.
func privateFacts(c *game.Character, period string) []string {
	facts := []string{
		fmt.Sprintf("%s's true objectives: %s", c.Name, c.Private.TrueObjectives),
		fmt.Sprintf("%s's true strategy: %s", c.Name, c.Private.TrueStrategy),
		fmt.Sprintf("%s holds a %s budget of about %d", c.Name, period, c.Private.Budget[period]),
		fmt.Sprintf("%s's assets: tech %.1f, capital %d, headcount %.1f",
			c.Name, c.Private.Assets.TechnicalCapability, c.Private.Assets.Capital, c.Private.Assets.Human),
	}
	for _, p := range c.Private.ActiveProjects {
		if p.Active() {
			facts = append(facts, fmt.Sprintf("%s is running project %s on %s (%.0f%% complete)",
				c.Name, p.ID, p.Topic, p.Progress*100))
		}
	}
	return facts
}
