package runner

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"statecraft.ai/internal/persistence/indexdb"
	runlog "statecraft.ai/internal/persistence/log"
	"statecraft.ai/internal/persistence/snapshot"
	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
	"statecraft.ai/internal/sim/scenario"
)

type ControllerConfig struct {
	RunID  string
	Seed   int64
	Rounds int

	// RoundTimeout bounds how long the controller waits for agent
	// submissions each round before falling back to NoOp.
	RoundTimeout time.Duration

	// SnapshotEvery writes a snapshot after every Nth round; 0 disables
	// periodic snapshots (a final one is still written).
	SnapshotEvery int

	// RunDir is the root for round logs, summaries and snapshots.
	// Empty disables file output.
	RunDir string

	// ResumeFrom restores state from a snapshot file instead of
	// building it from the scenario roster.
	ResumeFrom string
}

// Controller drives one run: it briefs agents, collects submissions at
// a deadline barrier, hands them to the gamemaster and persists the
// results. It owns the state; agents only ever see their summaries.
type Controller struct {
	cfg    ControllerConfig
	gm     *engine.Gamemaster
	sc     *scenario.Scenario
	agents map[string]Agent
	logger *stdlog.Logger

	state     *game.GameState
	summaries map[string]*game.Summary

	rounds  *runlog.RoundLogger
	sumLog  *runlog.SummaryLogger
	index   *indexdb.SQLiteIndex
	snapDir string
}

func NewController(cfg ControllerConfig, gm *engine.Gamemaster, sc *scenario.Scenario, agents map[string]Agent, index *indexdb.SQLiteIndex, logger *stdlog.Logger) (*Controller, error) {
	if cfg.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", cfg.Rounds)
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
	}

	var state *game.GameState
	if cfg.ResumeFrom != "" {
		snap, err := snapshot.ReadSnapshot(cfg.ResumeFrom)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		state, err = snapshot.Restore(snap)
		if err != nil {
			return nil, fmt.Errorf("resume: %w", err)
		}
		if cfg.RunID == "" {
			cfg.RunID = snap.Header.RunID
		}
	} else {
		var err error
		state, err = sc.BuildState()
		if err != nil {
			return nil, err
		}
	}

	for _, name := range state.Order {
		if _, ok := agents[name]; !ok {
			logger.Printf("[runner] run=%s character=%q has no agent, will NoOp every round", cfg.RunID, name)
		}
	}

	c := &Controller{
		cfg:    cfg,
		gm:     gm,
		sc:     sc,
		agents: agents,
		logger: logger,
		state:  state,
		index:  index,
	}
	if cfg.RunDir != "" {
		c.rounds = runlog.NewRoundLogger(cfg.RunDir)
		c.sumLog = runlog.NewSummaryLogger(cfg.RunDir)
		c.snapDir = filepath.Join(cfg.RunDir, "snapshots")
	}
	return c, nil
}

func (c *Controller) State() *game.GameState { return c.state }

// Run executes rounds until the configured count is reached or ctx is
// cancelled. It returns the final state; the caller can digest it for
// cross-run comparison.
func (c *Controller) Run(ctx context.Context) (*game.GameState, error) {
	defer c.closeLogs()

	if c.index != nil {
		c.index.InsertRun(c.cfg.RunID, c.cfg.Seed, c.sc.Name, c.sc.Digest)
	}

	for c.state.CurrentRound < c.cfg.Rounds {
		if err := ctx.Err(); err != nil {
			return c.state, err
		}
		round := c.state.CurrentRound + 1

		subs := c.collect(ctx, round)
		seed := c.cfg.Seed + int64(round)

		next, summaries, events, err := c.gm.ProcessRound(c.state, subs, seed)
		if err != nil {
			return c.state, fmt.Errorf("round %d: %w", round, err)
		}

		if err := c.persist(round, seed, subs, summaries, events, next); err != nil {
			return c.state, err
		}

		c.state = next
		c.summaries = summaries
		c.logger.Printf("[runner] run=%s round=%d date=%s events=%d",
			c.cfg.RunID, round, next.CurrentDate.Format("2006-01-02"), len(events))
	}

	if c.snapDir != "" {
		if err := c.writeSnapshot(c.state.CurrentRound, c.state); err != nil {
			return c.state, err
		}
	}
	return c.state, nil
}

// collect runs every agent's Propose concurrently and gathers results
// until the round deadline. Characters with no agent, a failed agent or
// a missed deadline get a NoOp submission.
func (c *Controller) collect(ctx context.Context, round int) map[string]engine.Submission {
	deadline := time.Now().Add(c.cfg.RoundTimeout)
	cctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	type proposal struct {
		name string
		sub  engine.Submission
		err  error
	}
	ch := make(chan proposal, len(c.agents))
	var pending int
	for _, name := range c.state.Order {
		ag, ok := c.agents[name]
		if !ok {
			continue
		}
		pending++
		go func(name string, ag Agent) {
			brief := &Brief{
				Round:     round,
				Character: name,
				Context:   c.sc.Context,
				Topics:    c.state.Topics,
				Summary:   c.summaries[name],
				Deadline:  deadline,
			}
			sub, err := ag.Propose(cctx, brief)
			select {
			case ch <- proposal{name: name, sub: sub, err: err}:
			case <-cctx.Done():
			}
		}(name, ag)
	}

	subs := make(map[string]engine.Submission, len(c.state.Order))
	for pending > 0 {
		select {
		case p := <-ch:
			pending--
			if p.err != nil {
				c.logger.Printf("[runner] run=%s round=%d character=%q propose failed: %v", c.cfg.RunID, round, p.name, p.err)
				continue
			}
			subs[p.name] = p.sub
		case <-cctx.Done():
			pending = 0
		}
	}

	for _, name := range c.state.Order {
		if _, ok := subs[name]; !ok {
			subs[name] = engine.Submission{Primary: []game.Action{game.NoOp()}}
		}
	}
	return subs
}

func (c *Controller) persist(round int, seed int64, subs map[string]engine.Submission, summaries map[string]*game.Summary, events []game.PublicEvent, next *game.GameState) error {
	digest := ""
	if n := len(next.History); n > 0 {
		digest = next.History[n-1].Digest
	}

	if c.rounds != nil {
		recorded := make([]engine.RecordedSubmission, 0, len(subs))
		for _, name := range next.Order {
			recorded = append(recorded, engine.RecordedSubmission{Character: name, Submission: subs[name]})
		}
		entry := engine.RoundLogEntry{
			Round:       round,
			Date:        next.CurrentDate.Format("2006-01-02"),
			Seed:        seed,
			Submissions: recorded,
			Events:      events,
			Digest:      digest,
		}
		if err := c.rounds.WriteRound(entry); err != nil {
			return fmt.Errorf("round log: %w", err)
		}
		if c.index != nil {
			c.index.AppendRound(c.cfg.RunID, entry)
			c.index.AppendEvents(c.cfg.RunID, round, events)
		}
	}
	if c.sumLog != nil {
		for _, name := range next.Order {
			if err := c.sumLog.WriteSummary(engine.SummaryLogEntry{Round: round, Character: name, Summary: summaries[name]}); err != nil {
				return fmt.Errorf("summary log: %w", err)
			}
		}
	}
	if c.snapDir != "" && c.cfg.SnapshotEvery > 0 && round%c.cfg.SnapshotEvery == 0 {
		if err := c.writeSnapshot(round, next); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) writeSnapshot(round int, s *game.GameState) error {
	path := filepath.Join(c.snapDir, fmt.Sprintf("round-%05d.snap.zst", round))
	snap := snapshot.Export(c.cfg.RunID, c.cfg.Seed, s)
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if c.index != nil {
		c.index.RecordSnapshot(c.cfg.RunID, round, path, len(s.Order))
	}
	return nil
}

func (c *Controller) closeLogs() {
	if c.rounds != nil {
		_ = c.rounds.Close()
	}
	if c.sumLog != nil {
		_ = c.sumLog.Close()
	}
}
