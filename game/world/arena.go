package world

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

const eventQueueSize = 512

var (
	ErrMonsterNotFound = errors.New("monster not found")
	ErrMonsterDead     = errors.New("monster is already dead")
	ErrInvalidDamage   = errors.New("damage must be positive")
	ErrOutOfBounds     = errors.New("position is outside the arena")
	ErrBlocked         = errors.New("position is blocked by an obstacle")
)

// Arena is one play field: static obstacles, one player and the monsters hunting it.
// Logic ticks and physics steps run at independent rates on the Run goroutine; every
// other method may be called concurrently.
type Arena struct {
	aiCfg           ai.Config
	logicInterval   time.Duration
	physicsInterval time.Duration
	width, height   float64
	clipDurations   map[string]float64

	space    *physics.Space
	steering *ai.Steering
	tree     *ai.BehaviorTree
	clock    *Clock
	player   *Player
	monsters map[string]*Monster
	order    []string

	handlers []EventHandler
	eventQ   chan CombatEvent

	mu     sync.RWMutex
	stopCh chan struct{}
	logger *zap.Logger
}

// Snapshot is the whole arena as seen by the inspector API.
type Snapshot struct {
	Time     float64       `json:"time"`
	Player   PlayerView    `json:"player"`
	Monsters []MonsterView `json:"monsters"`
}

// Stats is a cheap summary for periodic logging.
type Stats struct {
	Time     float64        `json:"time"`
	Alive    int            `json:"alive"`
	Dead     int            `json:"dead"`
	ByState  map[string]int `json:"by_state"`
	PlayerHP int            `json:"player_hp"`
}

// NewArena builds the arena described by cfg. It does not start the loop.
func NewArena(cfg *config.Config, logger *zap.Logger) *Arena {
	if logger == nil {
		logger = zap.NewNop()
	}
	aiCfg := cfg.ToAIConfig()
	space := physics.NewSpace()
	a := &Arena{
		aiCfg:           aiCfg,
		logicInterval:   time.Duration(cfg.Game.LogicTickMs) * time.Millisecond,
		physicsInterval: time.Duration(cfg.Game.PhysicsTickMs) * time.Millisecond,
		width:           cfg.Game.Width,
		height:          cfg.Game.Height,
		clipDurations:   clipSeconds(cfg.AI.ClipDurations),
		space:           space,
		steering:        ai.NewSteering(space, aiCfg.Steering),
		tree:            ai.NewEnemyTree(),
		clock:           &Clock{},
		monsters:        make(map[string]*Monster),
		eventQ:          make(chan CombatEvent, eventQueueSize),
		stopCh:          make(chan struct{}),
		logger:          logger,
	}
	for _, o := range cfg.Game.Obstacles {
		space.AddRect(physics.LayerObstacle, physics.RectAt(o.X, o.Y, o.W, o.H))
	}

	pc := cfg.Game.Player
	radius := pc.Radius
	if radius <= 0 {
		radius = 0.4
	}
	hp := pc.HP
	if hp <= 0 {
		hp = 100
	}
	pos := physics.V(pc.X, pc.Y)
	a.player = &Player{
		pos:      pos,
		radius:   radius,
		hp:       hp,
		maxHP:    hp,
		collider: space.AddCircle(physics.LayerPlayer, pos, radius),
	}
	return a
}

// Run drives logic ticks and physics steps until Stop. Call in a goroutine.
func (a *Arena) Run() {
	logic := time.NewTicker(a.logicInterval)
	defer logic.Stop()
	phys := time.NewTicker(a.physicsInterval)
	defer phys.Stop()
	dt := a.physicsInterval.Seconds()

	a.logger.Info("arena loop started",
		zap.Duration("logic_interval", a.logicInterval),
		zap.Duration("physics_interval", a.physicsInterval))
	for {
		select {
		case <-phys.C:
			a.PhysicsStep(dt)
		case <-logic.C:
			a.LogicTick()
		case ev := <-a.eventQ:
			a.dispatch(ev)
		case <-a.stopCh:
			a.drainEvents()
			a.logger.Info("arena loop stopped")
			return
		}
	}
}

// Stop signals the loop to exit. Safe to call more than once.
func (a *Arena) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}
}

// OnEvent registers h for every combat event raised after this call.
func (a *Arena) OnEvent(h EventHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, h)
}

// LogicTick runs one behavior update for every monster.
func (a *Arena) LogicTick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range a.order {
		a.monsters[id].brain.Update()
	}
}

// PhysicsStep advances the clock by dt seconds and integrates each monster's Movement.
// Blocked moves slide along whichever axis is still free. Movement itself is left alone.
func (a *Arena) PhysicsStep(dt float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clock.Advance(dt)
	speed := a.aiCfg.MoveSpeed
	for _, id := range a.order {
		m := a.monsters[id]
		if m.dead() || m.ctx.Movement.IsZero(1e-9) {
			continue
		}
		a.slide(m, m.ctx.Movement.Scale(speed*dt))
	}
}

func (a *Arena) slide(m *Monster, delta physics.Vec2) {
	for _, step := range []physics.Vec2{delta, {X: delta.X}, {Y: delta.Y}} {
		if step.IsZero(1e-12) {
			continue
		}
		next := m.pos.Add(step)
		if a.canOccupy(next, m.radius, m.collider) {
			m.pos = next
			a.space.MoveCircle(m.collider, next)
			return
		}
	}
}

func (a *Arena) canOccupy(pos physics.Vec2, radius float64, self physics.ColliderID) bool {
	if a.width > 0 && (pos.X-radius < 0 || pos.X+radius > a.width) {
		return false
	}
	if a.height > 0 && (pos.Y-radius < 0 || pos.Y+radius > a.height) {
		return false
	}
	return !a.space.CircleBlocked(pos, radius, physics.LayerObstacle, self)
}

// AddMonster places a monster and wires its AI to the arena.
func (a *Arena) AddMonster(spec MonsterSpec) *Monster {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addMonsterLocked(spec)
}

func (a *Arena) addMonsterLocked(spec MonsterSpec) *Monster {
	if spec.HP <= 0 {
		spec.HP = 1
	}
	if spec.Radius <= 0 {
		spec.Radius = 0.4
	}
	m := &Monster{
		ID:       uuid.NewString(),
		Name:     spec.Name,
		SpawnIdx: spec.SpawnIdx,
		pos:      spec.Pos,
		radius:   spec.Radius,
		flipX:    a.aiCfg.DefaultFacingLeft,
		hp:       spec.HP,
		maxHP:    spec.HP,
		clock:    a.clock,
	}
	m.collider = a.space.AddCircle(physics.LayerMonster, spec.Pos, spec.Radius)
	m.anim = NewClipPlayer(a.clock, a.clipDurations)

	logger := a.logger.With(zap.String("monster_id", m.ID), zap.String("monster", m.Name))
	ctx := ai.NewContext(a.aiCfg, logger)
	ctx.Self = m
	ctx.Target = a.player
	ctx.Physics = a.space
	ctx.Steering = a.steering
	ctx.Animation = ai.NewAnimationGate(m.anim, a.aiCfg, logger)
	ctx.Clock = a.clock
	ctx.Events = ai.EventSinkFunc(func(ev ai.Event) { a.enqueue(newCombatEvent(m, ev)) })
	m.ctx = ctx
	m.brain = ai.NewBrain(ctx, a.tree)

	a.monsters[m.ID] = m
	a.order = append(a.order, m.ID)
	logger.Debug("monster added", zap.Float64("x", spec.Pos.X), zap.Float64("y", spec.Pos.Y))
	return m
}

// RemoveMonster drops a monster and its collider.
func (a *Arena) RemoveMonster(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.removeMonsterLocked(id)
}

func (a *Arena) removeMonsterLocked(id string) bool {
	m, ok := a.monsters[id]
	if !ok {
		return false
	}
	a.space.Remove(m.collider)
	delete(a.monsters, id)
	for i, oid := range a.order {
		if oid == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

func (a *Arena) enqueue(ev CombatEvent) {
	select {
	case a.eventQ <- ev:
	default:
		a.logger.Warn("event queue full, dropping event",
			zap.String("kind", string(ev.Kind)), zap.String("monster_id", ev.MonsterID))
	}
}

func (a *Arena) dispatch(ev CombatEvent) {
	a.mu.RLock()
	handlers := make([]EventHandler, len(a.handlers))
	copy(handlers, a.handlers)
	a.mu.RUnlock()
	for _, h := range handlers {
		a.safeCall(h, ev)
	}
}

func (a *Arena) safeCall(h EventHandler, ev CombatEvent) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("event handler panic", zap.Any("panic", r), zap.String("kind", string(ev.Kind)))
		}
	}()
	h(ev)
}

func (a *Arena) drainEvents() {
	for {
		select {
		case ev := <-a.eventQ:
			a.dispatch(ev)
		default:
			return
		}
	}
}

// Now is the current game time in seconds.
func (a *Arena) Now() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.clock.Now()
}

// Snapshot copies the visible state under a read lock.
func (a *Arena) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{Time: a.clock.Now(), Player: a.player.view(), Monsters: a.monsterViewsLocked()}
}

// Monsters returns every monster, dead ones included, in spawn order.
func (a *Arena) Monsters() []MonsterView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monsterViewsLocked()
}

func (a *Arena) monsterViewsLocked() []MonsterView {
	out := make([]MonsterView, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.monsters[id].view())
	}
	return out
}

// Monster returns one monster's snapshot.
func (a *Arena) Monster(id string) (MonsterView, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.monsters[id]
	if !ok {
		return MonsterView{}, false
	}
	return m.view(), true
}

// Player returns the player's snapshot.
func (a *Arena) Player() PlayerView {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.player.view()
}

// SetPlayerPosition teleports the player.
func (a *Arena) SetPlayerPosition(pos physics.Vec2) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if (a.width > 0 && (pos.X < 0 || pos.X > a.width)) || (a.height > 0 && (pos.Y < 0 || pos.Y > a.height)) {
		return ErrOutOfBounds
	}
	if a.space.CircleBlocked(pos, a.player.radius, physics.LayerObstacle, a.player.collider) {
		return ErrBlocked
	}
	a.player.pos = pos
	a.space.MoveCircle(a.player.collider, pos)
	return nil
}

// DamageMonster hits a monster: it is hurt, or dies when HP reaches zero.
func (a *Arena) DamageMonster(id string, amount int) (MonsterView, error) {
	if amount <= 0 {
		return MonsterView{}, ErrInvalidDamage
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	m, ok := a.monsters[id]
	if !ok {
		return MonsterView{}, ErrMonsterNotFound
	}
	if m.dead() {
		return m.view(), ErrMonsterDead
	}
	m.takeDamage(amount)
	return m.view(), nil
}

// Stats counts monsters per state.
func (a *Arena) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s := Stats{Time: a.clock.Now(), ByState: make(map[string]int), PlayerHP: a.player.hp}
	for _, m := range a.monsters {
		if m.dead() {
			s.Dead++
		} else {
			s.Alive++
		}
		s.ByState[m.ctx.State.String()]++
	}
	return s
}
