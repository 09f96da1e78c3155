package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"statecraft.ai/internal/sim/game"
)

type Header struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id"`
	Round   int    `json:"round"`
}

// SnapshotV1 round-trips every field of the game state, including the
// full private/public split and research project status, so a resumed
// run resolves identically to an uninterrupted one.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Seed        int64  `json:"seed"`
	CurrentDate string `json:"current_date"` // RFC3339

	Order  []string      `json:"order"`
	Topics []string      `json:"topics,omitempty"`
	Roster []CharacterV1 `json:"roster"`

	PublicEvents []PublicEventV1 `json:"public_events,omitempty"`
	History      []RoundRecordV1 `json:"history,omitempty"`
}

type CharacterV1 struct {
	Name string `json:"name"`

	TrueObjectives string           `json:"true_objectives"`
	TrueStrategy   string           `json:"true_strategy"`
	Budget         map[string]int64 `json:"budget"`
	Assets         AssetsV1         `json:"assets"`
	CounterIntel   float64          `json:"counter_intel"`
	Projects       []ProjectV1      `json:"projects,omitempty"`
	Messages       []MessageV1      `json:"messages,omitempty"`

	StatedObjectives string   `json:"stated_objectives"`
	StatedStrategy   string   `json:"stated_strategy"`
	PublicArtifacts  []string `json:"public_artifacts,omitempty"`
}

type AssetsV1 struct {
	TechnicalCapability float64 `json:"technical_capability"`
	Capital             int64   `json:"capital"`
	Human               float64 `json:"human"`
}

type ProjectV1 struct {
	ID           string   `json:"id"`
	Topic        string   `json:"topic"`
	Committed    AssetsV1 `json:"committed"`
	Progress     float64  `json:"progress"`
	Duration     int      `json:"estimated_duration_rounds"`
	Status       string   `json:"status"`
	StartedRound int      `json:"started_round"`
}

type MessageV1 struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Round int    `json:"round"`
	Body  string `json:"body"`
}

type PublicEventV1 struct {
	Round       int    `json:"round"`
	Description string `json:"description"`
}

type RoundRecordV1 struct {
	Round  int    `json:"round"`
	Date   string `json:"date"`
	Digest string `json:"digest"`
	Note   string `json:"note"`
}

// Export captures the state at the end of a round.
func Export(runID string, seed int64, s *game.GameState) SnapshotV1 {
	snap := SnapshotV1{
		Header:      Header{Version: 1, RunID: runID, Round: s.CurrentRound},
		Seed:        seed,
		CurrentDate: s.CurrentDate.Format(time.RFC3339),
		Order:       append([]string(nil), s.Order...),
		Topics:      append([]string(nil), s.Topics...),
	}
	for _, name := range s.Order {
		c := s.Characters[name]
		cv := CharacterV1{
			Name:             c.Name,
			TrueObjectives:   c.Private.TrueObjectives,
			TrueStrategy:     c.Private.TrueStrategy,
			Budget:           map[string]int64{},
			Assets:           assetsV1(c.Private.Assets),
			CounterIntel:     c.Private.CounterIntel,
			StatedObjectives: c.Public.StatedObjectives,
			StatedStrategy:   c.Public.StatedStrategy,
			PublicArtifacts:  append([]string(nil), c.Public.PublicArtifacts...),
		}
		for period, amt := range c.Private.Budget {
			cv.Budget[period] = amt
		}
		for _, p := range c.Private.ActiveProjects {
			cv.Projects = append(cv.Projects, ProjectV1{
				ID: p.ID, Topic: p.Topic, Committed: assetsV1(p.Committed),
				Progress: p.Progress, Duration: p.EstimatedDurationRounds,
				Status: string(p.Status), StartedRound: p.StartedRound,
			})
		}
		for _, m := range c.Private.MessagesReceived {
			cv.Messages = append(cv.Messages, MessageV1(m))
		}
		snap.Roster = append(snap.Roster, cv)
	}
	for _, ev := range s.PublicEvents {
		snap.PublicEvents = append(snap.PublicEvents, PublicEventV1(ev))
	}
	for _, rec := range s.History {
		snap.History = append(snap.History, RoundRecordV1{
			Round: rec.Round, Date: rec.Date.Format(time.RFC3339),
			Digest: rec.Digest, Note: rec.Note,
		})
	}
	return snap
}

// Restore rebuilds a GameState from a snapshot.
func Restore(snap SnapshotV1) (*game.GameState, error) {
	date, err := time.Parse(time.RFC3339, snap.CurrentDate)
	if err != nil {
		return nil, fmt.Errorf("snapshot current_date: %w", err)
	}
	s := game.NewGameState(date)
	s.CurrentRound = snap.Header.Round
	s.Topics = append([]string(nil), snap.Topics...)
	for _, cv := range snap.Roster {
		priv := game.PrivateInfo{
			TrueObjectives: cv.TrueObjectives,
			TrueStrategy:   cv.TrueStrategy,
			Budget:         map[string]int64{},
			Assets:         assetsFromV1(cv.Assets),
			CounterIntel:   cv.CounterIntel,
		}
		for period, amt := range cv.Budget {
			priv.Budget[period] = amt
		}
		for _, pv := range cv.Projects {
			priv.ActiveProjects = append(priv.ActiveProjects, &game.ResearchProject{
				ID: pv.ID, Topic: pv.Topic, Committed: assetsFromV1(pv.Committed),
				Progress: pv.Progress, EstimatedDurationRounds: pv.Duration,
				Status: game.ProjectStatus(pv.Status), StartedRound: pv.StartedRound,
			})
		}
		for _, mv := range cv.Messages {
			priv.MessagesReceived = append(priv.MessagesReceived, game.Message(mv))
		}
		c, err := game.NewCharacter(cv.Name, priv, game.PublicView{
			StatedObjectives: cv.StatedObjectives,
			StatedStrategy:   cv.StatedStrategy,
			PublicArtifacts:  append([]string(nil), cv.PublicArtifacts...),
		})
		if err != nil {
			return nil, fmt.Errorf("snapshot roster: %w", err)
		}
		if err := s.AddCharacter(c); err != nil {
			return nil, fmt.Errorf("snapshot roster: %w", err)
		}
	}
	if len(snap.Order) != len(s.Order) {
		return nil, fmt.Errorf("snapshot order/roster mismatch")
	}
	for i, name := range snap.Order {
		if s.Order[i] != name {
			return nil, fmt.Errorf("snapshot order/roster mismatch at %d", i)
		}
	}
	for _, ev := range snap.PublicEvents {
		s.PublicEvents = append(s.PublicEvents, game.PublicEvent(ev))
	}
	for _, rec := range snap.History {
		date, err := time.Parse(time.RFC3339, rec.Date)
		if err != nil {
			return nil, fmt.Errorf("snapshot history: %w", err)
		}
		s.History = append(s.History, game.RoundRecord{
			Round: rec.Round, Date: date, Digest: rec.Digest, Note: rec.Note,
		})
	}
	return s, nil
}

func assetsV1(b game.AssetBalance) AssetsV1 {
	return AssetsV1{TechnicalCapability: b.TechnicalCapability, Capital: b.Capital, Human: b.Human}
}

func assetsFromV1(v AssetsV1) game.AssetBalance {
	return game.AssetBalance{TechnicalCapability: v.TechnicalCapability, Capital: v.Capital, Human: v.Human}
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 256*1024)
	defer bw.Flush()

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	// Header line is informational; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	return snap, nil
}
