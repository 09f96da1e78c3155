package engine

import (
	"fmt"
	"strings"

	"statecraft.ai/internal/sim/game"
)

// buildSummaries assembles the per-character, access-controlled view of
// the round. A summary only ever contains the character's own private
// deltas, the public event delta, and whatever another character's
// private info an explicit espionage or leak effect revealed to them
// this round.
func (r *round) buildSummaries() map[string]*game.Summary {
	delta := r.state.EventsSince(r.eventsStart)
	out := make(map[string]*game.Summary, len(r.state.Order))
	for _, name := range r.state.Order {
		s := &game.Summary{
			Character:        name,
			Round:            r.state.CurrentRound,
			Date:             r.state.CurrentDate,
			ActionResults:    r.results[name],
			NewMessages:      r.newMessages[name],
			EspionageReports: r.reports[name],
			TargetedBy:       r.targetedBy[name],
			ProjectUpdates:   collapseUpdates(r.projects[name]),
			PublicEvents:     append([]game.PublicEvent(nil), delta...),
			OtherPublicViews: map[string]game.PublicView{},
		}
		for _, other := range r.state.Order {
			if other == name {
				continue
			}
			o := r.state.Characters[other]
			s.OtherPublicViews[other] = game.PublicView{
				StatedObjectives: o.Public.StatedObjectives,
				StatedStrategy:   o.Public.StatedStrategy,
				PublicArtifacts:  append([]string(nil), o.Public.PublicArtifacts...),
			}
		}
		out[name] = s
	}
	return out
}

// collapseUpdates keeps the last update per project, preserving first
// appearance order (a project created and advanced in the same round
// reports once).
func collapseUpdates(in []game.ProjectUpdate) []game.ProjectUpdate {
	if len(in) == 0 {
		return nil
	}
	last := map[string]game.ProjectUpdate{}
	order := make([]string, 0, len(in))
	for _, u := range in {
		if _, seen := last[u.ProjectID]; !seen {
			order = append(order, u.ProjectID)
		}
		last[u.ProjectID] = u
	}
	out := make([]game.ProjectUpdate, 0, len(order))
	for _, id := range order {
		out = append(out, last[id])
	}
	return out
}

// characterDigest renders the terse natural-language recap an agent
// gets as next-round context.
func (r *round) characterDigest(s *game.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d (%s):", s.Round, s.Date.Format("2006-01-02"))
	if len(s.ActionResults) == 0 {
		b.WriteString(" no actions resolved.")
	}
	for _, res := range s.ActionResults {
		b.WriteString(" " + res.Detail + ".")
	}
	for _, rep := range s.EspionageReports {
		for _, f := range rep.Findings {
			b.WriteString(" Intel: " + f + ".")
		}
	}
	for _, who := range s.TargetedBy {
		fmt.Fprintf(&b, " Counter-intel traced an espionage attempt back to %s.", who)
	}
	for _, u := range s.ProjectUpdates {
		fmt.Fprintf(&b, " Project %s is %s at %.0f%%.", u.ProjectID, u.Status, u.Progress*100)
	}
	if n := len(s.NewMessages); n == 1 {
		b.WriteString(" 1 new message.")
	} else if n > 1 {
		fmt.Fprintf(&b, " %d new messages.", n)
	}
	for _, ev := range s.PublicEvents {
		b.WriteString(" Public: " + ev.Description + ".")
	}
	return b.String()
}

// roundNote is the global history entry: every character's outcomes in
// resolution order. It goes into GameState.History, not to agents.
func (r *round) roundNote() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Round %d (%s)", r.state.CurrentRound, r.state.CurrentDate.Format("2006-01-02"))
	for _, name := range r.state.Order {
		results := r.results[name]
		if len(results) == 0 {
			continue
		}
		fmt.Fprintf(&b, " | %s:", name)
		for _, res := range results {
			b.WriteString(" " + res.Detail + ";")
		}
	}
	for _, ev := range r.state.EventsSince(r.eventsStart) {
		b.WriteString(" | event: " + ev.Description)
	}
	return b.String()
}
