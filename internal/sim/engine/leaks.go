package engine

import (
	"fmt"
	"unicode/utf8"
)

// propagateLeaks models rumor and press leakage, decoupled from
// deliberate lobbying or marketing. Each round every character's
// private facts have a small seeded chance of surfacing: either as a
// public event or as a nudge of the PublicView toward the private
// truth. The two views are never synced automatically; this is the
// only undirected path between them.
func (r *round) propagateLeaks() {
	for _, name := range r.state.Order {
		if r.rng.Float64() >= r.gm.tun.Leak.Probability {
			continue
		}
		c := r.state.Characters[name]
		if r.rng.Float64() < r.gm.tun.Leak.NudgeProbability {
			c.Public.StatedObjectives = partialReveal(c.Private.TrueObjectives)
			r.appendEvent(fmt.Sprintf("press reporting casts doubt on %s's stated objectives", name))
			continue
		}
		facts := privateFacts(c, r.period())
		fact := facts[r.rng.Intn(len(facts))]
		r.appendEvent("leaked intelligence: " + fact)
	}
}

// partialReveal exposes roughly the first half of the private text, so
// a leak narrows the gap without closing it. The cut backs off to a
// rune boundary to keep the revealed text valid UTF-8.
func partialReveal(s string) string {
	if len(s) <= 16 {
		return s
	}
	cut := len(s) / 2
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// injectRandomEvent inserts at most one scenario-supplied exogenous
// shock per round, chosen from the template list the engine treats as
// an opaque sequence.
func (r *round) injectRandomEvent() {
	if len(r.gm.eventTemplates) == 0 {
		return
	}
	if r.rng.Float64() >= r.gm.tun.Events.Probability {
		return
	}
	tmpl := r.gm.eventTemplates[r.rng.Intn(len(r.gm.eventTemplates))]
	r.appendEvent(tmpl)
}
