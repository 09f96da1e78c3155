package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/runner"
)

// session is one live connection bound to a character. out feeds the
// connection's writer goroutine; acts carries decoded submissions from
// the reader loop to whichever Propose is waiting.
type session struct {
	character string
	out       chan []byte
	acts      chan actDelivery
}

type actDelivery struct {
	round int
	sub   engine.Submission
}

// Hub tracks which roster characters are claimed by live connections.
// A character can be held by at most one connection at a time; a fresh
// HELLO for a taken character is refused, and a dropped connection
// frees the seat for reconnection mid-game.
type Hub struct {
	mu       sync.Mutex
	roster   map[string]bool
	sessions map[string]*session
}

func NewHub(roster []string) *Hub {
	h := &Hub{
		roster:   make(map[string]bool, len(roster)),
		sessions: make(map[string]*session),
	}
	for _, name := range roster {
		h.roster[name] = true
	}
	return h
}

// claim binds a session to a character. The returned code is empty on
// success, otherwise a protocol error code for the ACK.
func (h *Hub) claim(character string, s *session) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.roster[character] {
		return protocol.ErrUnknownCharacter
	}
	if _, taken := h.sessions[character]; taken {
		return protocol.ErrCharacterTaken
	}
	h.sessions[character] = s
	return ""
}

func (h *Hub) release(character string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[character] == s {
		delete(h.sessions, character)
	}
}

// Connected lists characters with a live session, sorted.
func (h *Hub) Connected() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.sessions))
	for name := range h.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) session(character string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[character]
}

// Agents returns one remote agent per roster character. Agents survive
// reconnects: each Propose looks up the character's current session.
func (h *Hub) Agents() map[string]runner.Agent {
	agents := make(map[string]runner.Agent, len(h.roster))
	for name := range h.roster {
		agents[name] = &remoteAgent{hub: h, character: name}
	}
	return agents
}

// remoteAgent bridges the round controller to a websocket client: it
// pushes a BRIEF and blocks until the matching ACT arrives or the
// round deadline cancels the wait.
type remoteAgent struct {
	hub       *Hub
	character string
}

func (a *remoteAgent) Name() string { return a.character }

func (a *remoteAgent) Propose(ctx context.Context, brief *runner.Brief) (engine.Submission, error) {
	s := a.hub.session(a.character)
	if s == nil {
		return engine.Submission{}, fmt.Errorf("character %q not connected", a.character)
	}

	var summary json.RawMessage
	if brief.Summary != nil {
		b, err := json.Marshal(brief.Summary)
		if err != nil {
			return engine.Submission{}, err
		}
		summary = b
	}
	msg := protocol.BriefMsg{
		Type:            protocol.TypeBrief,
		ProtocolVersion: protocol.Version,
		Round:           brief.Round,
		Character:       a.character,
		Summary:         summary,
		DeadlineMs:      int(time.Until(brief.Deadline).Milliseconds()),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return engine.Submission{}, err
	}

	select {
	case s.out <- b:
	case <-ctx.Done():
		return engine.Submission{}, ctx.Err()
	}

	for {
		select {
		case d := <-s.acts:
			if d.round != brief.Round {
				continue
			}
			return d.sub, nil
		case <-ctx.Done():
			return engine.Submission{}, ctx.Err()
		}
	}
}
