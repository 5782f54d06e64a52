package sse

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/bus"
	"go.uber.org/zap"
)

const keepaliveEvery = 30 * time.Second

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub    bus.PubSub
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler.
func NewHandler(pubsub bus.PubSub, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, keepalive: keepaliveEvery, logger: logger}
}

// ServeEvents handles GET /sse/events?kind=attack.
// It streams live combat events from the bus. An optional kind filter is matched
// against the "kind" field of each payload.
func (h *Handler) ServeEvents(c *gin.Context) {
	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, bus.ChannelCombat)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "subscribe failed"})
		return
	}
	defer unsub()

	kind := c.Query("kind")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			if kind != "" && !payloadHasKind(msg.Payload, kind) {
				continue
			}
			fmt.Fprintf(c.Writer, "event: combat\ndata: %s\n\n", msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
