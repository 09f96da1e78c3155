// Package engine is the authoritative round-resolution core (the
// gamemaster). It consumes a game state plus the round's submitted
// actions and produces the next state, per-character summaries and the
// public event delta. All randomness comes from a single seeded source
// threaded through the call, so a run is reproducible bit for bit.
package engine

import (
	"fmt"
	"math/rand"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/game"
	"statecraft.ai/internal/sim/tuning"
)

// Submission is one character's input for a round: at most the
// configured number of primary actions plus any number of private
// messages. Missing submissions are treated as NoOp by the caller.
type Submission struct {
	Primary  []game.Action        `json:"primary,omitempty"`
	Messages []game.MessageAction `json:"messages,omitempty"`
}

// Gamemaster resolves rounds. It holds only static configuration; all
// mutable state lives in the GameState handed through ProcessRound, so
// one Gamemaster can serve many independent runs.
type Gamemaster struct {
	tun            tuning.Tuning
	eventTemplates []string
}

func New(tun tuning.Tuning, eventTemplates []string) *Gamemaster {
	return &Gamemaster{tun: tun, eventTemplates: append([]string(nil), eventTemplates...)}
}

func (gm *Gamemaster) Tuning() tuning.Tuning { return gm.tun }

// round carries the working set of one resolution call. Everything in
// here is discarded if the pipeline fails; only the cloned state
// escapes, and only on success.
type round struct {
	gm    *Gamemaster
	state *game.GameState
	rng   *rand.Rand

	eventsStart int

	results     map[string][]game.ActionResult
	newMessages map[string][]game.Message
	reports     map[string][]game.EspionageReport
	targetedBy  map[string][]string
	projects    map[string][]game.ProjectUpdate

	espionage []espionageAttempt

	// poachDrained marks targets whose poachable talent is exhausted
	// for this round: first-in-order wins, later attempts fail.
	poachDrained map[string]bool
}

type espionageAttempt struct {
	Attacker  string
	Target    string
	FocusArea string
}

// ProcessRound runs the fixed eight-step pipeline on a clone of prev.
// On any consistency violation the clone is discarded and prev remains
// valid, so resolution is atomic from the caller's point of view.
// Deterministic for a fixed (prev, subs, seed).
func (gm *Gamemaster) ProcessRound(prev *game.GameState, subs map[string]Submission, seed int64) (*game.GameState, map[string]*game.Summary, []game.PublicEvent, error) {
	for name := range subs {
		if !prev.Has(name) {
			return nil, nil, nil, fmt.Errorf("submission from unknown character %q", name)
		}
	}

	r := &round{
		gm:           gm,
		state:        prev.Clone(),
		rng:          rand.New(rand.NewSource(seed)),
		results:      map[string][]game.ActionResult{},
		newMessages:  map[string][]game.Message{},
		reports:      map[string][]game.EspionageReport{},
		targetedBy:   map[string][]string{},
		projects:     map[string][]game.ProjectUpdate{},
		poachDrained: map[string]bool{},
	}
	r.eventsStart = len(r.state.PublicEvents)

	// Structurally or economically infeasible actions are rejected
	// before the pipeline runs, against the pre-round state.
	accepted := r.validate(prev, subs)

	// 1. Advance time.
	r.state.CurrentRound++
	r.state.CurrentDate = r.state.CurrentDate.AddDate(0, 0, gm.tun.CalendarStepDays)

	// 2. Deliver messages.
	r.deliverMessages(accepted)

	// 3. Apply primary actions in registration order.
	r.applyPrimary(accepted)

	// 4. Advance research projects.
	r.advanceResearch()

	// 5. Resolve espionage.
	r.resolveEspionage()

	// 6. Propagate information leaks.
	r.propagateLeaks()

	// 7. Inject random events.
	r.injectRandomEvent()

	// 8. Generate summaries.
	summaries := r.buildSummaries()

	if err := r.state.CheckInvariants(); err != nil {
		return nil, nil, nil, err
	}
	if got, want := r.state.CurrentRound, prev.CurrentRound+1; got != want {
		return nil, nil, nil, &game.ConsistencyViolation{Detail: fmt.Sprintf("round advanced to %d, want %d", got, want)}
	}

	digest := StateDigest(r.state)
	r.state.History = append(r.state.History, game.RoundRecord{
		Round:  r.state.CurrentRound,
		Date:   r.state.CurrentDate,
		Digest: digest,
		Note:   r.roundNote(),
	})
	for _, s := range summaries {
		s.Digest = r.characterDigest(s)
	}

	delta := append([]game.PublicEvent(nil), r.state.EventsSince(r.eventsStart)...)
	return r.state, summaries, delta, nil
}

// validate splits each submission into accepted actions and recorded
// rejections. Rejections are per-submitter; they never affect anyone
// else's round.
func (r *round) validate(prev *game.GameState, subs map[string]Submission) map[string]Submission {
	accepted := make(map[string]Submission, len(subs))
	for _, name := range prev.Order {
		sub, ok := subs[name]
		if !ok {
			continue
		}
		c := prev.Characters[name]
		var keep Submission
		for i, a := range sub.Primary {
			if i >= r.gm.tun.MaxPrimaryActions && a.Kind != game.ActNoOp {
				r.addResult(name, game.ActionResult{
					Kind: a.Kind, Code: protocol.ErrRateLimit,
					Detail: fmt.Sprintf("primary action cap is %d per round", r.gm.tun.MaxPrimaryActions),
				})
				continue
			}
			if rej := game.Validate(a, c, prev); rej != nil {
				r.addResult(name, game.ActionResult{Kind: a.Kind, Code: rej.Code, Detail: rej.Reason})
				continue
			}
			keep.Primary = append(keep.Primary, a)
		}
		for _, m := range sub.Messages {
			if rej := game.ValidateMessage(m, c, prev); rej != nil {
				r.addResult(name, game.ActionResult{Kind: game.ActSendMessage, Code: rej.Code, Detail: rej.Reason})
				continue
			}
			keep.Messages = append(keep.Messages, m)
		}
		accepted[name] = keep
	}
	return accepted
}

func (r *round) addResult(name string, res game.ActionResult) {
	r.results[name] = append(r.results[name], res)
}

// deliverMessages appends each validated message to the recipient's
// inbox. Never fails: bad targets were rejected during validation.
func (r *round) deliverMessages(accepted map[string]Submission) {
	for _, from := range r.state.Order {
		for _, m := range accepted[from].Messages {
			msg := game.Message{From: from, To: m.To, Round: r.state.CurrentRound, Body: m.Body}
			rc := r.state.Characters[m.To]
			rc.Private.MessagesReceived = append(rc.Private.MessagesReceived, msg)
			r.newMessages[m.To] = append(r.newMessages[m.To], msg)
			r.addResult(from, game.ActionResult{
				Kind: game.ActSendMessage, OK: true,
				Detail: "message delivered to " + m.To,
			})
		}
	}
}
