package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brkrs/brkgo/internal/config"
	"github.com/brkrs/brkgo/internal/core/event"
	coresys "github.com/brkrs/brkgo/internal/core/system"
	"github.com/brkrs/brkgo/internal/data"
	"github.com/brkrs/brkgo/internal/feed"
	"github.com/brkrs/brkgo/internal/geom"
	"github.com/brkrs/brkgo/internal/persist"
	"github.com/brkrs/brkgo/internal/scripting"
	"github.com/brkrs/brkgo/internal/system"
	"github.com/brkrs/brkgo/internal/world"
)

// contactQueueSize bounds the contact notifications buffered per tick when
// contacts arrive from a live physics step instead of a replay.
const contactQueueSize = 1024

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               brkgo  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      brick lifecycle frame pipeline       \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/game.toml"
	if p := os.Getenv("BRKGO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Data
	printSection("data")

	table, err := data.LoadBrickTable(cfg.Data.BrickTable)
	if err != nil {
		return fmt.Errorf("load brick table: %w", err)
	}
	printStat("brick types", table.Count())

	levels, err := data.LoadLevelDir(cfg.Data.LevelDir)
	if err != nil {
		return fmt.Errorf("load levels: %w", err)
	}
	printStat("levels", levels.Count())

	first := levels.Get(cfg.Game.StartLevel)
	if first == nil {
		first = levels.First()
	}
	if first == nil {
		return fmt.Errorf("no levels found in %s", cfg.Data.LevelDir)
	}

	var replay *data.Replay
	if cfg.Data.Replay != "" {
		replay, err = data.LoadReplay(cfg.Data.Replay)
		if err != nil {
			return fmt.Errorf("load replay: %w", err)
		}
		printStat("replay frames", len(replay.Frames))
	}

	// 3a. Lua hooks
	lua, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()
	printOK("lua scripts loaded")
	fmt.Println()

	// 4. Session store (optional)
	var recorder system.SessionRecorder
	if cfg.Database.DSN != "" {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("postgres connected")

		if err := persist.RunMigrations(dbCtx, db.Pool, log); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("migrations applied")

		repo := persist.NewSessionRepo(db)
		if best, err := repo.Best(dbCtx); err == nil {
			printStat("best score", int(best))
		}
		session, err := repo.Start(dbCtx, first.Number, cfg.Game.Seed)
		if err != nil {
			return fmt.Errorf("start session: %w", err)
		}
		recorder = session
		fmt.Println()
	}

	// 5. World and pipeline
	// materials belong to the physics step that feeds contacts; the pipeline never reads them
	log.Debug("physics materials",
		zap.Any("ball", cfg.Physics.Ball), zap.Any("paddle", cfg.Physics.Paddle), zap.Any("brick", cfg.Physics.Brick))
	ws := world.NewState(cfg.Game.Lives, cfg.Game.MilestoneInterval, log)
	bus := event.NewBus()

	var (
		source system.ContactSource
		cursor *data.ReplayCursor
	)
	if replay != nil {
		cursor = data.NewReplayCursor(replay, ws)
		source = cursor
	} else {
		source = system.NewContactQueue(contactQueueSize)
	}

	seed := cfg.Game.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	lua.SetRand(rng)

	deps := system.Deps{
		World:           ws,
		Bus:             bus,
		Source:          source,
		Table:           table,
		Levels:          levels,
		Rng:             rng,
		DefaultGravity:  geom.V(cfg.Game.DefaultGravity[0], cfg.Game.DefaultGravity[1], cfg.Game.DefaultGravity[2]),
		CompletionDelay: cfg.Game.CompletionDelay,
		RespawnDelay:    cfg.Game.RespawnDelay,
		Merkaba: system.MerkabaTuning{
			Delay:            cfg.Merkaba.SpawnDelay,
			AngleVarianceDeg: cfg.Merkaba.AngleVarianceDeg,
			MinSpeed:         cfg.Merkaba.MinSpeed,
		},
		MilestoneLives: cfg.Game.MilestoneLives,
		Recorder:       recorder,
		Log:            log,
	}
	if lua.HasHook("brick_points") {
		deps.Points = lua
	}
	if lua.HasHook("queer_gravity") {
		deps.Gravity = lua
	}

	runner := coresys.NewRunner()
	rec := system.RegisterPipeline(runner, deps)

	// 6. Event feed (optional)
	if cfg.Feed.Enabled {
		hub := feed.NewHub(cfg.Feed, log)
		bus.Tap(hub.Publish)
		go func() {
			if err := hub.ListenAndServe(ctx, cfg.Feed.BindAddress); err != nil {
				log.Error("feed stopped", zap.Error(err))
			}
		}()
	}

	bus.Tap(func(frame uint64, ev any) {
		switch e := ev.(type) {
		case event.LevelCompleted:
			log.Info("level completed", zap.Uint64("frame", frame), zap.Uint32("level", e.Number), zap.Uint32("score", e.Score))
		case event.GameOver:
			log.Info("game over", zap.Uint64("frame", frame), zap.Uint32("score", e.Score))
		}
	})

	metrics := ws.LoadLevel(first)

	printSection("ready")
	printReady(fmt.Sprintf("level %d (%d bricks)", first.Number, ws.RemainingBricks()))
	if metrics.Adjusted() {
		printReady("level matrix normalized")
	}
	printReady(fmt.Sprintf("%d systems, tick %s", len(runner.Systems()), cfg.Game.TickRate))
	fmt.Println()

	// 7. Game loop
	ticker := time.NewTicker(cfg.Game.TickRate)
	defer ticker.Stop()

	var ticks uint64
	reason := "shutdown"
loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Game.TickRate)
			ticks++
			if r, done := finished(ws, cursor, ticks, cfg.Game.MaxTicks); done {
				reason = r
				break loop
			}
		case <-ctx.Done():
			log.Info("shutdown signal received")
			break loop
		}
	}

	if rec != nil {
		rec.Finish(reason)
	}
	if cursor != nil && cursor.Skipped() > 0 {
		log.Warn("replay contacts skipped", zap.Int("count", cursor.Skipped()))
	}
	log.Info("session ended",
		zap.String("reason", reason),
		zap.Uint64("ticks", ticks),
		zap.Uint32("score", ws.Score.Current),
		zap.Int("lives", ws.Lives.Lives),
		zap.Uint32("level", ws.Level.Number),
	)
	return nil
}

// finished reports whether the loop should stop and why.
func finished(ws *world.State, cursor *data.ReplayCursor, ticks, maxTicks uint64) (string, bool) {
	switch {
	case ws.Lives.Lives == 0:
		return "game_over", true
	case ws.Level.Completed && !ws.Level.Active:
		return "levels_cleared", true
	case maxTicks > 0 && ticks >= maxTicks:
		return "max_ticks", true
	case cursor != nil && cursor.Done() && ws.Spawns.Len() == 0 && !ws.Level.Completing && !ws.Respawn.Pending:
		return "replay_end", true
	}
	return "", false
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
