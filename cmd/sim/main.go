package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"statecraft.ai/internal/persistence/indexdb"
	"statecraft.ai/internal/sim/runner"
	"statecraft.ai/internal/sim/scenario"
	"statecraft.ai/internal/sim/tuning"
)

// Headless batch driver: plays a scenario once per seed with scripted
// agents and prints the final digest of each run. Two runs of the same
// seed must print the same digest.
func main() {
	var (
		scenarioPath = flag.String("scenario", "./configs/scenarios/ai_race.yaml", "scenario file")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "tuning file")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		rounds       = flag.Int("rounds", 20, "rounds per run")
		seed         = flag.Int64("seed", 1337, "first seed")
		runs         = flag.Int("runs", 1, "number of runs (seeds seed..seed+runs-1)")
		workers      = flag.Int("workers", 4, "concurrent runs")
		snapEvery    = flag.Int("snapshot_every", 0, "write a snapshot every N rounds (0 disables)")
		disableDB    = flag.Bool("disable_db", false, "disable the run index db")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[sim] ", log.LstdFlags|log.Lmicroseconds)

	tune, err := tuning.Load(*tuningPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", *tuningPath)
			tune = tuning.Default()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	sc, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	seeds := make([]int64, *runs)
	for i := range seeds {
		seeds[i] = *seed + int64(i)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results := runner.RunBatch(ctx, runner.BatchConfig{
		Scenario:      sc,
		Tuning:        tune,
		Rounds:        *rounds,
		Seeds:         seeds,
		Workers:       *workers,
		BaseDir:       filepath.Join(*dataDir, "runs"),
		RoundTimeout:  10 * time.Second,
		SnapshotEvery: *snapEvery,
		NewAgents:     runner.ScriptedRoster,
		Index:         idx,
		Logger:        logger,
	})

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Printf("run=%s seed=%d FAILED: %v", r.RunID, r.Seed, r.Err)
			continue
		}
		logger.Printf("run=%s seed=%d rounds=%d digest=%s", r.RunID, r.Seed, r.Rounds, r.FinalDigest)
	}
	if idx != nil {
		idx.Flush()
	}
	logger.Printf("%d/%d runs ok in %s", len(results)-failed, len(results), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
