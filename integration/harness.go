package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apirest "github.com/kasuganosora/enemyai/api/rest"
	"github.com/kasuganosora/enemyai/api/sse"
	apows "github.com/kasuganosora/enemyai/api/ws"
	"github.com/kasuganosora/enemyai/audit"
	"github.com/kasuganosora/enemyai/bus"
	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/world"
	mw "github.com/kasuganosora/enemyai/middleware"
	"github.com/kasuganosora/enemyai/scheduler"
	"github.com/kasuganosora/enemyai/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with every subsystem wired together.
type TestServer struct {
	DB      *gorm.DB
	PubSub  bus.PubSub
	Arena   *world.Arena
	Spawner *world.Spawner
	Audit   *audit.Service
	Sched   *scheduler.Scheduler
	Server  *httptest.Server
	URL     string // http://127.0.0.1:<port>
	WSURL   string // ws://127.0.0.1:<port>/ws
}

// NewTestServer creates a fully wired server for integration testing. It mirrors the
// dependency wiring in main.go. tweak, if non-nil, adjusts the config before the arena
// is built; the arena loop is running when this returns.
func NewTestServer(t *testing.T, tweak func(*config.Config)) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Game.LogicTickMs = 10
	cfg.Game.PhysicsTickMs = 5
	cfg.Game.Obstacles = nil
	cfg.Game.Spawns = nil
	cfg.Security.RateLimitRPS = 1000
	cfg.Security.RateLimitBurst = 2000
	if tweak != nil {
		tweak(cfg)
	}
	require.NoError(t, cfg.Validate())

	// ---- Infrastructure ----
	db := testutil.SetupTestDB(t)
	pubsub := testutil.SetupTestBus(t)
	logger := zap.NewNop()

	auditSvc := audit.New(db, logger)

	// ---- Arena ----
	arena := world.NewArena(cfg, logger)
	spawner := world.NewSpawner(arena, cfg.Game.Spawns, logger)
	spawner.SpawnAll()
	arena.OnEvent(func(ev world.CombatEvent) {
		auditSvc.Log(audit.EntryFromEvent(ev))
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		_ = pubsub.Publish(context.Background(), bus.ChannelCombat, string(payload))
	})
	go arena.Run()

	sched := scheduler.New(logger)

	// ---- Gin HTTP Server ----
	limiter := mw.NewRateLimiter(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(limiter.Middleware())

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

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

	wsH := apows.NewHandler(arena, pubsub, cfg.Security.AllowedOrigins, logger)
	r.GET("/ws", wsH.ServeWS)
	sseH := sse.NewHandler(pubsub, logger)
	r.GET("/sse/events", sseH.ServeEvents)

	server := httptest.NewServer(r)
	ts := &TestServer{
		DB:      db,
		PubSub:  pubsub,
		Arena:   arena,
		Spawner: spawner,
		Audit:   auditSvc,
		Sched:   sched,
		Server:  server,
		URL:     server.URL,
		WSURL:   "ws" + strings.TrimPrefix(server.URL, "http") + "/ws",
	}
	t.Cleanup(func() {
		server.Close()
		sched.Stop()
		arena.Stop()
		limiter.Stop()
		auditSvc.Stop(context.Background())
	})
	return ts
}

// Do sends a JSON request and returns the status code and raw body.
func (ts *TestServer) Do(t *testing.T, method, path string, body interface{}) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

// GetJSON fetches path, requires 200 and decodes the body into v.
func (ts *TestServer) GetJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	code, body := ts.Do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, code, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

// WSClient is a thin test wrapper around a websocket connection.
type WSClient struct {
	t    *testing.T
	Conn *websocket.Conn
}

// ConnectWS dials the watch endpoint.
func (ts *TestServer) ConnectWS(t *testing.T) *WSClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.WSURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &WSClient{t: t, Conn: conn}
}

// Send writes one packet.
func (c *WSClient) Send(typ string, payload interface{}) {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.Conn.WriteJSON(apows.Packet{Type: typ, Payload: raw}))
}

// RecvType reads packets until one of type typ arrives or timeout passes.
func (c *WSClient) RecvType(typ string, timeout time.Duration) apows.Packet {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		require.NoError(c.t, c.Conn.SetReadDeadline(deadline))
		var pkt apows.Packet
		err := c.Conn.ReadJSON(&pkt)
		require.NoError(c.t, err, fmt.Sprintf("waiting for %q", typ))
		if pkt.Type == typ {
			return pkt
		}
	}
}
