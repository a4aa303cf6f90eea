package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"overseer.ai/internal/persistence/indexdb"
	persistlog "overseer.ai/internal/persistence/log"
	"overseer.ai/internal/sim/capsets"
	"overseer.ai/internal/sim/tuning"
	"overseer.ai/internal/sim/world"
	"overseer.ai/internal/transport/ws"
)

func main() {
	// .env is optional; flags and real env win.
	_ = godotenv.Load()

	var (
		addr       = flag.String("addr", envOr("OVERSEER_ADDR", ":8080"), "debug http listen address (empty to disable)")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 1337, "world seed")
		configDir  = flag.String("configs", envOr("OVERSEER_CONFIGS", "./configs"), "config directory")
		dataDir    = flag.String("data", envOr("OVERSEER_DATA", "./data"), "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		agents     = flag.Int("agents", 64, "demo agents to seed")
		ticks      = flag.Uint64("ticks", 0, "stop after N ticks (0 = run until signal)")
		disableDB  = flag.Bool("disable_db", false, "disable the dispatch index db")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[simd] ", log.LstdFlags|log.Lmicroseconds)

	caps, err := capsets.Load(*configDir)
	if err != nil {
		logger.Fatalf("load capability sets: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	w, err := world.New(world.Config{ID: *worldID, Seed: *seed}, tune, caps, logger)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	traceLog := persistlog.NewTraceLogger(worldDir)
	defer traceLog.Close()
	w.AddTraceSink(traceLog)

	if !*disableDB {
		idx, err := indexdb.Open(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertModules(w.Engine().Descriptors()); err != nil {
			logger.Fatalf("record modules: %v", err)
		}
		w.AddTraceSink(idx)
	}

	w.SeedDemo(*agents, caps.TypeIDs)
	logger.Printf("world %s seeded: %d agents, capability digest %s", *worldID, *agents, caps.Digest[:12])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *addr != "" {
		obs := ws.NewServer(logger)
		w.SetStatsBroadcast(obs.Broadcast)

		mux := http.NewServeMux()
		mux.Handle("/v1/observe", obs.Handler())
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		srv := &http.Server{Addr: *addr, Handler: mux}
		go func() {
			logger.Printf("debug http on %s", *addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("http: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	interval := time.Second / time.Duration(tune.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Printf("running at %d Hz", tune.TickRateHz)
	for {
		select {
		case <-ctx.Done():
			logger.Printf("stopped at tick %d", w.Now())
			return
		case <-ticker.C:
			w.Step()
			if *ticks > 0 && w.Now() >= *ticks {
				logger.Printf("done: %d ticks", w.Now())
				return
			}
		}
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
