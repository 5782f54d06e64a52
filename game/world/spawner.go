package world

import (
	"math/rand"
	"sync"
	"time"

	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

const placementAttempts = 8

// Spawner keeps each configured spawn group at its target count. Corpses hold their slot
// until the group's respawn delay has passed on the game clock.
type Spawner struct {
	arena   *Arena
	configs []config.SpawnConfig
	rng     *rand.Rand
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewSpawner creates a Spawner for arena.
func NewSpawner(arena *Arena, configs []config.SpawnConfig, logger *zap.Logger) *Spawner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spawner{
		arena:   arena,
		configs: configs,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  logger,
	}
}

// SpawnAll fills every group (called once at startup). Returns how many monsters spawned.
func (sp *Spawner) SpawnAll() int {
	return sp.CheckRespawns()
}

// CheckRespawns clears expired corpses and refills their groups.
// Should be called periodically from the scheduler.
func (sp *Spawner) CheckRespawns() int {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	n := 0
	for i, cfg := range sp.configs {
		n += sp.spawnGroup(i+1, cfg)
	}
	return n
}

func (sp *Spawner) spawnGroup(idx int, cfg config.SpawnConfig) int {
	a := sp.arena
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	present := 0
	var expired []string
	for _, id := range a.order {
		m := a.monsters[id]
		if m.SpawnIdx != idx {
			continue
		}
		if m.dead() && now-m.diedAt >= cfg.Respawn.Seconds() {
			expired = append(expired, id)
			continue
		}
		present++
	}
	for _, id := range expired {
		a.removeMonsterLocked(id)
	}

	spawned := 0
	for i := present; i < cfg.Count; i++ {
		a.addMonsterLocked(MonsterSpec{
			Name:     cfg.Name,
			Pos:      sp.placement(cfg),
			HP:       cfg.HP,
			Radius:   cfg.Radius,
			SpawnIdx: idx,
		})
		spawned++
	}
	if spawned > 0 {
		sp.logger.Info("monsters spawned",
			zap.String("group", cfg.Name),
			zap.Int("count", spawned),
			zap.Int("removed", len(expired)))
	}
	return spawned
}

// placement picks a free point within Spread of the group center. Caller holds the arena lock.
func (sp *Spawner) placement(cfg config.SpawnConfig) physics.Vec2 {
	center := physics.V(cfg.X, cfg.Y)
	radius := cfg.Radius
	if radius <= 0 {
		radius = 0.4
	}
	if cfg.Spread <= 0 {
		return center
	}
	for i := 0; i < placementAttempts; i++ {
		off := physics.V(sp.rng.Float64()*2-1, sp.rng.Float64()*2-1).Scale(cfg.Spread)
		p := center.Add(off)
		if sp.arena.canOccupy(p, radius, 0) {
			return p
		}
	}
	sp.logger.Warn("no free spawn point, using group center", zap.String("group", cfg.Name))
	return center
}
