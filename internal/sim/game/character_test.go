package game

import (
	"testing"
	"time"
)

func mustProject(t *testing.T, id string, committed AssetBalance, duration int) *ResearchProject {
	t.Helper()
	p, err := NewResearchProject(id, "topic-a", committed, duration, 0)
	if err != nil {
		t.Fatalf("project %s: %v", id, err)
	}
	return p
}

func TestNewCharacterRejectsOvercommit(t *testing.T) {
	p, err := NewResearchProject("p1", "topic-a", AssetBalance{Capital: 500}, 3, 0)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	_, err = NewCharacter("Alpha", PrivateInfo{
		Assets:         AssetBalance{Capital: 400},
		ActiveProjects: []*ResearchProject{p},
	}, PublicView{})
	if err == nil {
		t.Fatal("expected error: committed 500 exceeds assets 400")
	}
}

func TestAvailableAssetsExcludesCommitted(t *testing.T) {
	c, err := NewCharacter("Alpha", PrivateInfo{
		Assets: AssetBalance{TechnicalCapability: 50, Capital: 1000, Human: 20},
		ActiveProjects: []*ResearchProject{
			mustProject(t, "p1", AssetBalance{Capital: 800, Human: 5}, 4),
		},
	}, PublicView{})
	if err != nil {
		t.Fatalf("character: %v", err)
	}

	avail := c.AvailableAssets()
	if avail.Capital != 200 {
		t.Fatalf("available capital = %d, want 200", avail.Capital)
	}
	if avail.Human != 15 {
		t.Fatalf("available human = %v, want 15", avail.Human)
	}

	// Terminal projects release their commitment.
	c.Private.ActiveProjects[0].Status = ProjectCancelled
	if got := c.AvailableAssets().Capital; got != 1000 {
		t.Fatalf("available capital after cancel = %d, want 1000", got)
	}
}

func TestBudgetForUsesCalendarYear(t *testing.T) {
	c, err := NewCharacter("Alpha", PrivateInfo{
		Budget: map[string]int64{"2026": 5000, "2027": 7000},
	}, PublicView{})
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	dec := time.Date(2026, 12, 30, 0, 0, 0, 0, time.UTC)
	jan := dec.AddDate(0, 0, 90)
	if got := c.BudgetFor(dec); got != 5000 {
		t.Fatalf("2026 budget = %d, want 5000", got)
	}
	if got := c.BudgetFor(jan); got != 7000 {
		t.Fatalf("2027 budget = %d, want 7000", got)
	}
}

func TestAddArtifactKeepsSortedSet(t *testing.T) {
	var v PublicView
	v.AddArtifact("charlie")
	v.AddArtifact("alpha")
	v.AddArtifact("bravo")
	v.AddArtifact("alpha") // duplicate
	want := []string{"alpha", "bravo", "charlie"}
	if len(v.PublicArtifacts) != len(want) {
		t.Fatalf("artifacts = %v, want %v", v.PublicArtifacts, want)
	}
	for i := range want {
		if v.PublicArtifacts[i] != want[i] {
			t.Fatalf("artifacts = %v, want %v", v.PublicArtifacts, want)
		}
	}
}
