package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kasuganosora/enemyai/bus"
	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/kasuganosora/enemyai/game/world"
	"go.uber.org/zap"
)

const (
	writeDeadline  = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 50 * time.Second
	sendBuf        = 64
	maxMessageSize = 4096

	defaultSnapshotEvery = 500 * time.Millisecond
)

// Packet is the envelope for every websocket message in both directions.
type Packet struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type movePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type damagePayload struct {
	MonsterID string `json:"monster_id"`
	Amount    int    `json:"amount"`
}

// Handler serves a live arena watch: snapshots on a timer, combat events as they
// happen, and a couple of commands to poke the arena.
type Handler struct {
	arena         *world.Arena
	pubsub        bus.PubSub
	upgrader      websocket.Upgrader
	snapshotEvery time.Duration
	logger        *zap.Logger
}

// NewHandler creates a websocket Handler. An empty allowed list accepts any origin.
func NewHandler(arena *world.Arena, pubsub bus.PubSub, allowed []string, logger *zap.Logger) *Handler {
	h := &Handler{
		arena:         arena,
		pubsub:        pubsub,
		snapshotEvery: defaultSnapshotEvery,
		logger:        logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowed) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// session is one watching connection.
type session struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

func (s *session) close() { s.once.Do(func() { close(s.done) }) }

// send queues data without blocking; a slow watcher loses packets.
func (s *session) send(pkt Packet) {
	data, err := json.Marshal(pkt)
	if err != nil {
		return
	}
	select {
	case s.sendCh <- data:
	case <-s.done:
	default:
		s.logger.Warn("ws send buffer full, dropping packet", zap.String("type", pkt.Type))
	}
}

func (s *session) sendJSON(typ string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("ws encode payload", zap.String("type", typ), zap.Error(err))
		return
	}
	s.send(Packet{Type: typ, Payload: raw})
}

func (s *session) sendError(msg string) {
	s.sendJSON("error", gin.H{"error": msg})
}

// ServeWS handles GET /ws.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, unsub, err := h.pubsub.Subscribe(ctx, bus.ChannelCombat)
	if err != nil {
		h.logger.Error("ws subscribe failed", zap.Error(err))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
		conn.Close()
		return
	}
	defer unsub()

	s := &session{conn: conn, sendCh: make(chan []byte, sendBuf), done: make(chan struct{}), logger: h.logger}
	s.sendJSON("snapshot", h.arena.Snapshot())

	go h.writePump(s, events)
	h.readPump(s)
}

// writePump owns all writes to the connection.
func (h *Handler) writePump(s *session, events <-chan *bus.Message) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	snap := time.NewTicker(h.snapshotEvery)
	defer snap.Stop()
	defer s.conn.Close()

	write := func(mt int, data []byte) bool {
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
		if err := s.conn.WriteMessage(mt, data); err != nil {
			h.logger.Debug("ws write error", zap.Error(err))
			s.close()
			return false
		}
		return true
	}

	for {
		select {
		case data := <-s.sendCh:
			if !write(websocket.TextMessage, data) {
				return
			}
		case msg, ok := <-events:
			if !ok {
				s.close()
				return
			}
			data, err := json.Marshal(Packet{Type: "combat", Payload: json.RawMessage(msg.Payload)})
			if err != nil {
				h.logger.Warn("ws dropping non-JSON combat payload", zap.Error(err))
				continue
			}
			if !write(websocket.TextMessage, data) {
				return
			}
		case <-snap.C:
			s.sendJSON("snapshot", h.arena.Snapshot())
		case <-ping.C:
			if !write(websocket.PingMessage, nil) {
				return
			}
		case <-s.done:
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// readPump reads commands until the connection closes.
func (h *Handler) readPump(s *session) {
	defer s.close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("ws unexpected close", zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		h.dispatch(s, raw)
	}
}

func (h *Handler) dispatch(s *session, raw []byte) {
	var pkt Packet
	if err := json.Unmarshal(raw, &pkt); err != nil {
		s.sendError("malformed packet")
		return
	}
	switch pkt.Type {
	case "snapshot":
		s.sendJSON("snapshot", h.arena.Snapshot())

	case "move_player":
		var p movePayload
		if err := json.Unmarshal(pkt.Payload, &p); err != nil {
			s.sendError("malformed move_player payload")
			return
		}
		if err := h.arena.SetPlayerPosition(physics.V(p.X, p.Y)); err != nil {
			s.sendError(err.Error())
			return
		}
		s.sendJSON("player", h.arena.Player())

	case "damage":
		var p damagePayload
		if err := json.Unmarshal(pkt.Payload, &p); err != nil {
			s.sendError("malformed damage payload")
			return
		}
		m, err := h.arena.DamageMonster(p.MonsterID, p.Amount)
		if err != nil {
			s.sendError(err.Error())
			return
		}
		s.sendJSON("monster", m)

	default:
		s.sendError("unknown packet type: " + pkt.Type)
	}
}
