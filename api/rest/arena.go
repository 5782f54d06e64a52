package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/kasuganosora/enemyai/game/world"
	"go.uber.org/zap"
)

// ArenaHandler exposes the live arena for inspection and poking.
type ArenaHandler struct {
	arena  *world.Arena
	logger *zap.Logger
}

// NewArenaHandler creates an ArenaHandler.
func NewArenaHandler(arena *world.Arena, logger *zap.Logger) *ArenaHandler {
	return &ArenaHandler{arena: arena, logger: logger}
}

// Snapshot returns the player and every monster.
// GET /api/snapshot
func (h *ArenaHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.arena.Snapshot())
}

// Stats returns alive/dead counts per AI state.
// GET /api/stats
func (h *ArenaHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.arena.Stats())
}

// ListMonsters returns every monster snapshot.
// GET /api/monsters
func (h *ArenaHandler) ListMonsters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"monsters": h.arena.Monsters()})
}

// GetMonster returns one monster.
// GET /api/monsters/:id
func (h *ArenaHandler) GetMonster(c *gin.Context) {
	m, ok := h.arena.Monster(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "monster not found"})
		return
	}
	c.JSON(http.StatusOK, m)
}

type damageRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// DamageMonster hurts or kills a monster.
// POST /api/monsters/:id/damage  {"amount": 10}
func (h *ArenaHandler) DamageMonster(c *gin.Context) {
	var req damageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := h.arena.DamageMonster(c.Param("id"), req.Amount)
	switch {
	case errors.Is(err, world.ErrMonsterNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, world.ErrMonsterDead):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "monster": m})
	case errors.Is(err, world.ErrInvalidDamage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		h.logger.Error("damage monster", zap.String("id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.logger.Debug("monster damaged via api",
			zap.String("id", m.ID),
			zap.Int("amount", req.Amount),
			zap.Int("hp", m.HP))
		c.JSON(http.StatusOK, m)
	}
}

// GetPlayer returns the target's snapshot.
// GET /api/player
func (h *ArenaHandler) GetPlayer(c *gin.Context) {
	c.JSON(http.StatusOK, h.arena.Player())
}

type positionRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

// MovePlayer teleports the target.
// PUT /api/player/position  {"x": 3, "y": 4}
func (h *ArenaHandler) MovePlayer(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.arena.SetPlayerPosition(physics.V(*req.X, *req.Y)); err != nil {
		if errors.Is(err, world.ErrOutOfBounds) || errors.Is(err, world.ErrBlocked) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("move player", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, h.arena.Player())
}
