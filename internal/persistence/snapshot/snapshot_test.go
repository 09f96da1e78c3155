package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
	"statecraft.ai/internal/sim/tuning"
)

func seedState(t *testing.T) *game.GameState {
	t.Helper()
	s := game.NewGameState(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Topics = []string{"topic-a"}
	for _, name := range []string{"Alpha", "Beta"} {
		c, err := game.NewCharacter(name, game.PrivateInfo{
			TrueObjectives: name + " true goals",
			TrueStrategy:   name + " true plan",
			Budget:         map[string]int64{"2026": 4000},
			Assets:         game.AssetBalance{TechnicalCapability: 45, Capital: 8000, Human: 25},
			CounterIntel:   35,
		}, game.PublicView{StatedObjectives: name + " public goals"})
		if err != nil {
			t.Fatal(err)
		}
		if err := s.AddCharacter(c); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// play runs a fixed submission script against the state.
func play(t *testing.T, gm *engine.Gamemaster, s *game.GameState, from, to int, seedBase int64) *game.GameState {
	t.Helper()
	for round := from; round <= to; round++ {
		subs := map[string]engine.Submission{
			"Alpha": {Primary: []game.Action{{
				Kind: game.ActCreateProject,
				CreateProject: &game.CreateProjectAction{
					ProjectID: "p" + string(rune('0'+round)), Topic: "topic-a",
					Committed:               game.AssetBalance{Capital: 200},
					EstimatedDurationRounds: 4,
				},
			}}},
			"Beta": {
				Primary:  []game.Action{{Kind: game.ActFundraise, Fundraise: &game.FundraiseAction{Amount: 300}}},
				Messages: []game.MessageAction{{To: "Alpha", Body: "checking in"}},
			},
		}
		var err error
		s, _, _, err = gm.ProcessRound(s, subs, seedBase+int64(round))
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
	}
	return s
}

func TestExportRestoreRoundTrip(t *testing.T) {
	gm := engine.New(tuning.Default(), []string{"a shock"})
	s := play(t, gm, seedState(t), 1, 3, 100)

	snap := Export("run-1", 42, s)
	if snap.Header.Version != 1 || snap.Header.Round != 3 || snap.Seed != 42 {
		t.Fatalf("header = %+v seed = %d", snap.Header, snap.Seed)
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got, want := engine.StateDigest(restored), engine.StateDigest(s); got != want {
		t.Fatalf("digest mismatch after round trip:\n  %s\n  %s", got, want)
	}
	if len(restored.History) != len(s.History) {
		t.Fatalf("history length %d, want %d", len(restored.History), len(s.History))
	}
}

func TestWriteReadSnapshotFile(t *testing.T) {
	gm := engine.New(tuning.Default(), nil)
	s := play(t, gm, seedState(t), 1, 2, 500)

	path := filepath.Join(t.TempDir(), "snapshots", "round-00002.snap.zst")
	snap := Export("run-2", 7, s)
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Header != snap.Header {
		t.Fatalf("header = %+v, want %+v", got.Header, snap.Header)
	}
	restored, err := Restore(got)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if engine.StateDigest(restored) != engine.StateDigest(s) {
		t.Fatal("file round trip changed the state digest")
	}
}

// A run resumed from a mid-game snapshot must be indistinguishable from
// one that never stopped, given the same per-round seeds.
func TestResumeEqualsContinuousRun(t *testing.T) {
	gm := engine.New(tuning.Default(), []string{"a shock"})

	continuous := play(t, gm, seedState(t), 1, 4, 9000)

	half := play(t, gm, seedState(t), 1, 2, 9000)
	resumed, err := Restore(Export("run-3", 0, half))
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	resumed = play(t, gm, resumed, 3, 4, 9000)

	if got, want := engine.StateDigest(resumed), engine.StateDigest(continuous); got != want {
		t.Fatalf("resumed run diverged from continuous run:\n  %s\n  %s", got, want)
	}
}
