package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	eventsDefaultLimit = 50
	eventsMaxLimit     = 200
)

// EventsHandler serves persisted combat events.
type EventsHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(db *gorm.DB, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{db: db, logger: logger}
}

// List returns combat events, newest first.
// GET /api/events?monster_id=&kind=&limit=50
func (h *EventsHandler) List(c *gin.Context) {
	limit := eventsDefaultLimit
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = min(l, eventsMaxLimit)
	}

	q := h.db.WithContext(c.Request.Context()).Model(&model.CombatEvent{})
	if id := c.Query("monster_id"); id != "" {
		q = q.Where("monster_id = ?", id)
	}
	if kind := c.Query("kind"); kind != "" {
		q = q.Where("kind = ?", kind)
	}

	var events []model.CombatEvent
	if err := q.Order("id DESC").Limit(limit).Find(&events).Error; err != nil {
		h.logger.Error("query combat events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
