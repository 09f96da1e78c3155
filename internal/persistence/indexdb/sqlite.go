package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
)

// SQLiteIndex is a secondary index over resolved rounds, public events
// and snapshot metadata, for post-hoc analysis across many seeded runs.
// Writes go through a single goroutine so the sim loop never blocks on
// the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqRun reqKind = iota + 1
	reqRound
	reqEvent
	reqSnapshot
)

type req struct {
	kind reqKind

	run      runRow
	round    roundRow
	event    eventRow
	snapshot snapshotRow

	done chan struct{}
}

type runRow struct {
	RunID    string
	Seed     int64
	Scenario string
	Digest   string
}

type roundRow struct {
	RunID  string
	Round  int
	Date   string
	Seed   int64
	Digest string
	Events int
}

type eventRow struct {
	RunID       string
	Round       int
	Seq         int
	Description string
}

type snapshotRow struct {
	RunID      string
	Round      int
	Path       string
	Characters int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// Buffered so bursty event writes don't stall the round loop.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a fair
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			scenario TEXT NOT NULL,
			scenario_digest TEXT NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS rounds (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			date TEXT NOT NULL,
			seed INTEGER NOT NULL,
			digest TEXT NOT NULL,
			events INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, round)
		);`,
		`CREATE TABLE IF NOT EXISTS public_events (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			description TEXT NOT NULL,
			PRIMARY KEY (run_id, round, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			path TEXT NOT NULL,
			characters INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, round)
		);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqRun:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO runs (run_id, seed, scenario, scenario_digest, started_at) VALUES (?,?,?,?,?)`,
				r.run.RunID, r.run.Seed, r.run.Scenario, r.run.Digest, nowUTC(),
			)
		case reqRound:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO rounds (run_id, round, date, seed, digest, events, recorded_at) VALUES (?,?,?,?,?,?,?)`,
				r.round.RunID, r.round.Round, r.round.Date, r.round.Seed, r.round.Digest, r.round.Events, nowUTC(),
			)
		case reqEvent:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO public_events (run_id, round, seq, description) VALUES (?,?,?,?)`,
				r.event.RunID, r.event.Round, r.event.Seq, r.event.Description,
			)
		case reqSnapshot:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO snapshots (run_id, round, path, characters, recorded_at) VALUES (?,?,?,?,?)`,
				r.snapshot.RunID, r.snapshot.Round, r.snapshot.Path, r.snapshot.Characters, nowUTC(),
			)
		}
		if r.done != nil {
			close(r.done)
		}
	}
}

func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

func (s *SQLiteIndex) enqueue(r req) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		// Index is best-effort: drop rather than stall the sim.
	}
}

func (s *SQLiteIndex) InsertRun(runID string, seed int64, scenario, scenarioDigest string) {
	s.enqueue(req{kind: reqRun, run: runRow{RunID: runID, Seed: seed, Scenario: scenario, Digest: scenarioDigest}})
}

func (s *SQLiteIndex) AppendRound(runID string, entry engine.RoundLogEntry) {
	s.enqueue(req{kind: reqRound, round: roundRow{
		RunID: runID, Round: entry.Round, Date: entry.Date,
		Seed: entry.Seed, Digest: entry.Digest, Events: len(entry.Events),
	}})
}

func (s *SQLiteIndex) AppendEvents(runID string, round int, events []game.PublicEvent) {
	for i, ev := range events {
		s.enqueue(req{kind: reqEvent, event: eventRow{
			RunID: runID, Round: round, Seq: i, Description: ev.Description,
		}})
	}
}

func (s *SQLiteIndex) RecordSnapshot(runID string, round int, path string, characters int) {
	s.enqueue(req{kind: reqSnapshot, snapshot: snapshotRow{
		RunID: runID, Round: round, Path: path, Characters: characters,
	}})
}

// Flush waits for all queued writes to land. Intended for tests and
// shutdown paths.
func (s *SQLiteIndex) Flush() {
	if s.closed.Load() {
		return
	}
	// A sentinel through the same channel serializes behind pending
	// writes.
	done := make(chan struct{})
	s.ch <- req{done: done}
	<-done
}

// RoundDigest reads back a stored round digest.
func (s *SQLiteIndex) RoundDigest(runID string, round int) (string, error) {
	var digest string
	err := s.db.QueryRow(`SELECT digest FROM rounds WHERE run_id = ? AND round = ?`, runID, round).Scan(&digest)
	return digest, err
}

// EventCount reads back the number of indexed public events for a run.
func (s *SQLiteIndex) EventCount(runID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM public_events WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
