package game

import (
	"testing"
	"time"
)

func TestCloneIsolation(t *testing.T) {
	s, alpha := twoPartyState(t)
	alpha.Private.ActiveProjects = append(alpha.Private.ActiveProjects,
		mustProject(t, "p1", AssetBalance{Capital: 100}, 3))

	clone := s.Clone()
	cc := clone.Characters["Alpha"]
	cc.Private.Assets.Capital = 1
	cc.Private.Budget["2026"] = 1
	cc.Private.ActiveProjects[0].Progress = 0.9
	cc.Public.AddArtifact("new artifact")
	clone.PublicEvents = append(clone.PublicEvents, PublicEvent{Round: 1, Description: "x"})

	if alpha.Private.Assets.Capital != 2000 {
		t.Fatalf("original capital mutated: %d", alpha.Private.Assets.Capital)
	}
	if alpha.Private.Budget["2026"] != 1000 {
		t.Fatalf("original budget mutated: %d", alpha.Private.Budget["2026"])
	}
	if alpha.Private.ActiveProjects[0].Progress != 0 {
		t.Fatalf("original project mutated: %v", alpha.Private.ActiveProjects[0].Progress)
	}
	if len(alpha.Public.PublicArtifacts) != 0 {
		t.Fatalf("original artifacts mutated: %v", alpha.Public.PublicArtifacts)
	}
	if len(s.PublicEvents) != 0 {
		t.Fatalf("original events mutated: %v", s.PublicEvents)
	}
}

func TestCheckInvariants(t *testing.T) {
	s, alpha := twoPartyState(t)
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("fresh state: %v", err)
	}

	alpha.Private.Assets.Capital = -1
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("negative capital not caught")
	}
	alpha.Private.Assets.Capital = 2000

	alpha.Private.Budget["2026"] = -5
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("negative budget not caught")
	}
	alpha.Private.Budget["2026"] = 1000

	p := mustProject(t, "p1", AssetBalance{Capital: 100}, 3)
	p.Progress = 0.5
	p.Status = ProjectCompleted
	alpha.Private.ActiveProjects = append(alpha.Private.ActiveProjects, p)
	if err := s.CheckInvariants(); err == nil {
		t.Fatal("completed project below full progress not caught")
	}
	p.Progress = 1.0
	if err := s.CheckInvariants(); err != nil {
		t.Fatalf("valid completed project: %v", err)
	}
}

func TestTopicAllowed(t *testing.T) {
	s := NewGameState(time.Now())
	if !s.TopicAllowed("anything") {
		t.Fatal("empty topic list must allow any topic")
	}
	s.Topics = []string{"a", "b"}
	if s.TopicAllowed("c") {
		t.Fatal("topic outside list allowed")
	}
	if !s.TopicAllowed("b") {
		t.Fatal("listed topic refused")
	}
}

func TestEventsSince(t *testing.T) {
	s := NewGameState(time.Now())
	s.PublicEvents = []PublicEvent{{Round: 1, Description: "a"}, {Round: 2, Description: "b"}}
	if got := s.EventsSince(1); len(got) != 1 || got[0].Description != "b" {
		t.Fatalf("EventsSince(1) = %v", got)
	}
	if got := s.EventsSince(5); got != nil {
		t.Fatalf("out of range index returned %v", got)
	}
}
