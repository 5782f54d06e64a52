package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/enemyai/api/rest"
	"github.com/kasuganosora/enemyai/api/sse"
	apows "github.com/kasuganosora/enemyai/api/ws"
	"github.com/kasuganosora/enemyai/audit"
	"github.com/kasuganosora/enemyai/bus"
	"github.com/kasuganosora/enemyai/config"
	dbadapter "github.com/kasuganosora/enemyai/db"
	"github.com/kasuganosora/enemyai/game/world"
	mw "github.com/kasuganosora/enemyai/middleware"
	"github.com/kasuganosora/enemyai/model"
	"github.com/kasuganosora/enemyai/scheduler"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	publishTimeout  = time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		auditSvc.Stop(ctx)
	}()

	// ---- Event bus ----
	pubsub, err := bus.New(cfg.Bus)
	if err != nil {
		log.Fatalf("bus: %v", err)
	}
	defer pubsub.Close()
	logger.Info("Bus initialized", zap.Bool("redis", cfg.Bus.RedisAddr != ""))

	// ---- Arena ----
	arena := world.NewArena(cfg, logger)
	spawner := world.NewSpawner(arena, cfg.Game.Spawns, logger)
	logger.Info("Arena populated", zap.Int("monsters", spawner.SpawnAll()))

	arena.OnEvent(func(ev world.CombatEvent) {
		auditSvc.Log(audit.EntryFromEvent(ev))

		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Error("encode combat event", zap.Error(err))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pubsub.Publish(ctx, bus.ChannelCombat, string(payload)); err != nil {
			logger.Warn("publish combat event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		}
	})

	go arena.Run()
	defer arena.Stop()

	// ---- Periodic Scheduler Tasks ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker("respawn_check", time.Duration(cfg.Game.RespawnCheckS)*time.Second, func() {
		if n := spawner.CheckRespawns(); n > 0 {
			logger.Debug("respawned", zap.Int("count", n))
		}
	})
	sched.AddTicker("arena_stats", time.Duration(cfg.Game.StatsIntervalS)*time.Second, func() {
		st := arena.Stats()
		logger.Info("arena stats",
			zap.Float64("game_time", st.Time),
			zap.Int("alive", st.Alive),
			zap.Int("dead", st.Dead),
			zap.Any("by_state", st.ByState),
			zap.Int("player_hp", st.PlayerHP),
			zap.Int64("audit_dropped", auditSvc.Dropped()),
		)
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := mw.NewRateLimiter(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst)
	defer limiter.Stop()

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/health", "/ws", "/sse/events"), mw.Recovery(logger))
	r.Use(limiter.Middleware())

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "game_time": arena.Now()})
	})

	// ---- REST API routes ----
	arenaH := apirest.NewArenaHandler(arena, logger)
	eventsH := apirest.NewEventsHandler(db, logger)

	api := r.Group("/api")
	{
		api.GET("/snapshot", arenaH.Snapshot)
		api.GET("/stats", arenaH.Stats)
		api.GET("/monsters", arenaH.ListMonsters)
		api.GET("/monsters/:id", arenaH.GetMonster)
		api.POST("/monsters/:id/damage", arenaH.DamageMonster)
		api.GET("/player", arenaH.GetPlayer)
		api.PUT("/player/position", arenaH.MovePlayer)
		api.GET("/events", eventsH.List)
		api.GET("/tasks", apirest.Tasks(sched))
	}

	// ---- WebSocket watch ----
	wsH := apows.NewHandler(arena, pubsub, cfg.Security.AllowedOrigins, logger)
	r.GET("/ws", wsH.ServeWS)

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, logger)
	r.GET("/sse/events", sseH.ServeEvents)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		// SSE streams end when the process is asked to stop
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
}
