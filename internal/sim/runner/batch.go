package runner

import (
	"context"
	stdlog "log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"statecraft.ai/internal/persistence/indexdb"
	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/game"
	"statecraft.ai/internal/sim/scenario"
	"statecraft.ai/internal/sim/tuning"
)

// AgentFactory builds the agent roster for one run. It is called once
// per seed so stochastic agents can be reseeded per run.
type AgentFactory func(sc *scenario.Scenario, seed int64) map[string]Agent

type BatchConfig struct {
	Scenario *scenario.Scenario
	Tuning   tuning.Tuning

	Rounds int
	Seeds  []int64

	// Workers bounds concurrent runs; 0 means one worker.
	Workers int

	// BaseDir is the parent for per-run output dirs; empty disables
	// file output.
	BaseDir string

	RoundTimeout  time.Duration
	SnapshotEvery int

	NewAgents AgentFactory
	Index     *indexdb.SQLiteIndex
	Logger    *stdlog.Logger
}

type BatchResult struct {
	RunID       string
	Seed        int64
	Rounds      int
	FinalDigest string
	Err         error
}

// RunBatch plays the scenario once per seed across a worker pool. Runs
// are fully independent: each gets its own run ID, output dir, agents
// and state, so results are comparable across seeds.
func RunBatch(ctx context.Context, cfg BatchConfig) []BatchResult {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = stdlog.New(os.Stderr, "", stdlog.LstdFlags)
	}
	gm := engine.New(cfg.Tuning, cfg.Scenario.Events)

	jobs := make(chan int, len(cfg.Seeds))
	results := make([]BatchResult, len(cfg.Seeds))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = runOne(ctx, cfg, gm, cfg.Seeds[i], logger)
			}
		}()
	}
	for i := range cfg.Seeds {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func runOne(ctx context.Context, cfg BatchConfig, gm *engine.Gamemaster, seed int64, logger *stdlog.Logger) BatchResult {
	runID := uuid.NewString()
	res := BatchResult{RunID: runID, Seed: seed}

	var agents map[string]Agent
	if cfg.NewAgents != nil {
		agents = cfg.NewAgents(cfg.Scenario, seed)
	}

	cc := ControllerConfig{
		RunID:         runID,
		Seed:          seed,
		Rounds:        cfg.Rounds,
		RoundTimeout:  cfg.RoundTimeout,
		SnapshotEvery: cfg.SnapshotEvery,
	}
	if cfg.BaseDir != "" {
		cc.RunDir = filepath.Join(cfg.BaseDir, runID)
	}

	ctrl, err := NewController(cc, gm, cfg.Scenario, agents, cfg.Index, logger)
	if err != nil {
		res.Err = err
		return res
	}

	final, err := ctrl.Run(ctx)
	res.Err = err
	if final != nil {
		res.Rounds = final.CurrentRound
		res.FinalDigest = lastDigest(final)
	}
	return res
}

func lastDigest(s *game.GameState) string {
	if n := len(s.History); n > 0 {
		return s.History[n-1].Digest
	}
	return ""
}

// ScriptedRoster is the default AgentFactory: one ScriptedAgent per
// roster character, each seeded from the run seed plus its order index.
func ScriptedRoster(sc *scenario.Scenario, seed int64) map[string]Agent {
	names := make([]string, 0, len(sc.Roster))
	for _, def := range sc.Roster {
		names = append(names, def.Name)
	}
	agents := make(map[string]Agent, len(names))
	for i, name := range names {
		rivals := make([]string, 0, len(names)-1)
		for _, other := range names {
			if other != name {
				rivals = append(rivals, other)
			}
		}
		agents[name] = NewScriptedAgent(name, rivals, sc.Topics, seed+int64(i)*7919)
	}
	return agents
}
