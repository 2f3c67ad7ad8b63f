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

	"dungeonsync.gg/internal/levels"
	"dungeonsync.gg/internal/persistence/indexdb"
	persistlog "dungeonsync.gg/internal/persistence/log"
	"dungeonsync.gg/internal/session"
	"dungeonsync.gg/internal/settings"
	"dungeonsync.gg/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", "", "http listen address (overrides settings)")
		settingsPath = flag.String("settings", "./configs/settings.yaml", "settings path")
		levelsPath   = flag.String("levels", "", "levels path (overrides settings)")
		levelKey     = flag.String("level", "", "level slug/id to seed items from (overrides settings)")
		dataDir      = flag.String("data", "", "runtime data directory (overrides settings)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite read-model index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := settings.Load(*settingsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("settings not found (%s); using defaults", *settingsPath)
			cfg = settings.Defaults()
		} else {
			logger.Fatalf("load settings: %v", err)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *levelsPath != "" {
		cfg.LevelsPath = *levelsPath
	}
	if *levelKey != "" {
		cfg.Level = *levelKey
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *disableDB {
		cfg.DisableDB = true
	}
	_ = os.MkdirAll(cfg.DataDir, 0o755)

	sess := session.New(session.Config{
		DefaultMaxPlayers: cfg.DefaultMaxPlayers,
		SpawnPosition:     cfg.SpawnPosition,
	}, log.New(os.Stdout, "[session] ", log.LstdFlags|log.Lmicroseconds))

	seedItems(sess, cfg, logger)

	// JSONL journals (compressed). Always on; cheap and append-only.
	eventLog := persistlog.NewEventLogger(cfg.DataDir)
	defer eventLog.Close()
	rollLog := persistlog.NewRollLogger(cfg.DataDir)
	defer rollLog.Close()

	// Optional: sqlite read-model index. Fans out behind the journals.
	if cfg.DisableDB {
		sess.SetEventLogger(eventLog)
		sess.SetRollLogger(rollLog)
		logger.Printf("sqlite index disabled")
	} else {
		idx, err := indexdb.OpenSQLite(filepath.Join(cfg.DataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		sess.SetEventLogger(teeEvents{eventLog, idx})
		sess.SetRollLogger(teeRolls{rollLog, idx})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := sess.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("session loop: %v", err)
		}
	}()

	hub := ws.NewHub()
	wsrv := ws.NewServer(sess, hub, cfg.OutQueueSize, log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsrv.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Printf("shutting down")

	_ = srv.Shutdown(context.Background())
	sess.Stop()
}

func seedItems(sess *session.Session, cfg settings.Settings, logger *log.Logger) {
	if strings.TrimSpace(cfg.LevelsPath) == "" {
		return
	}
	lvls, err := levels.Load(cfg.LevelsPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("levels not found (%s); starting with no items", cfg.LevelsPath)
			return
		}
		logger.Fatalf("load levels: %v", err)
	}

	var seed []levels.Item
	if cfg.Level != "" {
		lvl, ok := levels.Find(lvls, cfg.Level)
		if !ok {
			logger.Fatalf("level not found: %s", cfg.Level)
		}
		seed = lvl.Items
	} else {
		for _, lvl := range lvls {
			seed = append(seed, lvl.Items...)
		}
	}

	items := make([]session.WorldItem, 0, len(seed))
	for _, it := range seed {
		items = append(items, session.WorldItem{
			ID:       it.ID,
			Type:     it.Type,
			Position: it.Position,
			Rotation: it.Rotation,
			State:    it.State,
		})
	}
	sess.SeedItems(items)
	logger.Printf("seeded %d world items", len(items))
}

// teeEvents fans an event entry out to the JSONL journal and the index.
type teeEvents struct {
	journal *persistlog.EventLogger
	index   *indexdb.SQLiteIndex
}

func (t teeEvents) WriteEvent(e session.EventEntry) error {
	_ = t.index.WriteEvent(e)
	return t.journal.WriteEvent(e)
}

type teeRolls struct {
	journal *persistlog.RollLogger
	index   *indexdb.SQLiteIndex
}

func (t teeRolls) WriteRoll(e session.RollEntry) error {
	_ = t.index.WriteRoll(e)
	return t.journal.WriteRoll(e)
}
