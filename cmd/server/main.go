package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"statecraft.ai/internal/persistence/indexdb"
	"statecraft.ai/internal/protocol"
	"statecraft.ai/internal/sim/engine"
	"statecraft.ai/internal/sim/runner"
	"statecraft.ai/internal/sim/scenario"
	"statecraft.ai/internal/sim/tuning"
	"statecraft.ai/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		scenarioPath = flag.String("scenario", "./configs/scenarios/ai_race.yaml", "scenario file")
		tuningPath   = flag.String("tuning", "./configs/tuning.yaml", "tuning file")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		runID        = flag.String("run", "", "run id (default: random)")
		seed         = flag.Int64("seed", 1337, "run seed")
		rounds       = flag.Int("rounds", 20, "rounds to play")
		timeoutMs    = flag.Int("round_timeout_ms", 60000, "per-round submission deadline")
		snapEvery    = flag.Int("snapshot_every", 5, "write a snapshot every N rounds (0 disables)")
		resumeFrom   = flag.String("snapshot", "", "path to snapshot to resume from (optional)")
		disableDB    = flag.Bool("disable_db", false, "disable the run index db")
		waitConnect  = flag.Duration("wait_connect", 2*time.Minute, "how long to wait for the full roster to connect before starting anyway")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

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

	id := strings.TrimSpace(*runID)
	if id == "" {
		id = uuid.NewString()
	}
	runDir := filepath.Join(*dataDir, "runs", id)
	_ = os.MkdirAll(runDir, 0o755)

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}

	roster := make([]string, 0, len(sc.Roster))
	for _, def := range sc.Roster {
		roster = append(roster, def.Name)
	}

	wsSrv, err := ws.NewServer(ws.ServerConfig{
		Roster: roster,
		Params: protocol.GameParams{
			Rounds:            *rounds,
			CalendarStepDays:  tune.CalendarStepDays,
			MaxPrimaryActions: tune.MaxPrimaryActions,
			RoundTimeoutMs:    *timeoutMs,
			StartDate:         sc.StartDate,
		},
		ScenarioDigest: sc.Digest,
		SchemaDir:      "./schemas",
	}, logger)
	if err != nil {
		logger.Fatalf("ws server: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprintf(rw, "# HELP statecraft_connected_characters Characters with a live session.\n")
		fmt.Fprintf(rw, "# TYPE statecraft_connected_characters gauge\n")
		fmt.Fprintf(rw, "statecraft_connected_characters{run=%q} %d\n", id, len(wsSrv.Hub().Connected()))
	})
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("ListenAndServe: %v", err)
		}
	}()
	logger.Printf("listening on %s run=%s scenario=%s", *addr, id, sc.Name)

	waitForRoster(ctx, wsSrv.Hub(), len(roster), *waitConnect, logger)
	if ctx.Err() != nil {
		return
	}

	gm := engine.New(tune, sc.Events)
	ctrl, err := runner.NewController(runner.ControllerConfig{
		RunID:         id,
		Seed:          *seed,
		Rounds:        *rounds,
		RoundTimeout:  time.Duration(*timeoutMs) * time.Millisecond,
		SnapshotEvery: *snapEvery,
		RunDir:        runDir,
		ResumeFrom:    strings.TrimSpace(*resumeFrom),
	}, gm, sc, wsSrv.Hub().Agents(), idx, logger)
	if err != nil {
		logger.Fatalf("controller: %v", err)
	}

	final, err := ctrl.Run(ctx)
	if err != nil && err != context.Canceled {
		logger.Fatalf("run: %v", err)
	}
	if final != nil {
		logger.Printf("run=%s finished after round %d", id, final.CurrentRound)
	}
	if idx != nil {
		idx.Flush()
	}
}

// waitForRoster blocks until every character has connected, the grace
// period passes, or shutdown. Absent characters play NoOp.
func waitForRoster(ctx context.Context, hub *ws.Hub, want int, grace time.Duration, logger *log.Logger) {
	deadline := time.Now().Add(grace)
	for {
		got := len(hub.Connected())
		if got >= want {
			logger.Printf("all %d characters connected", want)
			return
		}
		if time.Now().After(deadline) {
			logger.Printf("starting with %d/%d characters connected", got, want)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(500 * time.Millisecond):
		}
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
