package ai

import (
	"math"
	"math/rand"
	"time"

	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MonsterState enumerates the high-level AI states of a monster.
type MonsterState int

const (
	StateIdle MonsterState = iota
	StateChase
	StateAttack
	StateHurt
	StateDead
)

func (s MonsterState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChase:
		return "chase"
	case StateAttack:
		return "attack"
	case StateHurt:
		return "hurt"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Clock reports monotonically increasing game time in seconds.
type Clock interface {
	Now() float64
}

// Body is the agent's own transform: where it is and which way its sprite is mirrored.
type Body interface {
	Position() physics.Vec2
	SetFlipX(flip bool)
}

// Target is the read-mostly handle to whatever the agent hunts. It is owned by the target
// and may be shared by many agents.
type Target interface {
	Position() physics.Vec2
	ColliderID() physics.ColliderID
	TakeDamage(amount int)
}

// Raycaster answers line-of-sight probes.
type Raycaster interface {
	Raycast(origin, dir physics.Vec2, maxDistance float64, mask physics.Layer) (physics.Hit, bool)
}

// PhysicsQuery is the broad-phase and raycast side of the physics engine.
type PhysicsQuery interface {
	Raycaster
	OverlapCircleAll(center physics.Vec2, radius float64, mask physics.Layer) []physics.ColliderID
}

// Steerer picks a movement direction around local obstacles.
type Steerer interface {
	IsPathClear(origin, direction physics.Vec2) bool
	DirectionToTarget(selfPos, targetPos physics.Vec2) physics.Vec2
}

// Context is the per-agent blackboard passed to every node during a tick. It lives as long
// as the agent and is only touched from that agent's logic tick.
type Context struct {
	Config Config
	State  MonsterState

	IsDead      bool
	IsHurt      bool
	IsAttacking bool
	IsChasing   bool

	LastAttackTime    float64
	HurtAnimStartTime float64

	// Movement is the desired direction written by exactly one action per tick and read by
	// the physics step. Physics must never write it.
	Movement              physics.Vec2
	LastMovementDirection physics.Vec2

	OscillationDetectionStartTime float64
	HorizontalDirectionChanges    int
	LastHorizontalDirection       int // -1, 0 or 1
	IsOscillating                 bool

	Self      Body
	Target    Target
	Physics   PhysicsQuery
	Steering  Steerer
	Animation *AnimationGate
	Clock     Clock
	Events    EventSink
	Rand      *rand.Rand
	Logger    *zap.Logger

	debugLimiter *rate.Limiter
}

// NewContext creates a blackboard with cfg and empty handles. Callers wire the
// collaborators they have before the first tick.
func NewContext(cfg Config, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{
		Config: cfg,
		State:  StateIdle,
		// a fresh agent may strike immediately
		LastAttackTime: -cfg.AttackCooldown,
		Rand:           rand.New(rand.NewSource(time.Now().UnixNano())),
		Logger:         logger,
		debugLimiter:   rate.NewLimiter(rate.Every(250*time.Millisecond), 4),
	}
}

// CurrentAnimationState is the clip name the agent last asked to play.
func (ctx *Context) CurrentAnimationState() string {
	if ctx.Animation == nil {
		return ""
	}
	return ctx.Animation.Current()
}

func (ctx *Context) now() float64 {
	if ctx.Clock == nil {
		return 0
	}
	return ctx.Clock.Now()
}

func (ctx *Context) log() *zap.Logger {
	if ctx.Logger == nil {
		return zap.NewNop()
	}
	return ctx.Logger
}

// trace emits a throttled debug line when the agent's debug flag is on.
func (ctx *Context) trace(msg string, fields ...zap.Field) {
	if !ctx.Config.Debug {
		return
	}
	if ctx.debugLimiter != nil && !ctx.debugLimiter.Allow() {
		return
	}
	ctx.log().Debug(msg, fields...)
}

func (ctx *Context) selfPosition() (physics.Vec2, bool) {
	if ctx.Self == nil {
		return physics.Vec2{}, false
	}
	return ctx.Self.Position(), true
}

func (ctx *Context) distanceToTarget() float64 {
	pos, ok := ctx.selfPosition()
	if !ok {
		return math.Inf(1)
	}
	return DistanceTo(pos, ctx.Target)
}

func (ctx *Context) targetInAttackRange() bool {
	pos, ok := ctx.selfPosition()
	if !ok || ctx.Target == nil {
		return false
	}
	return InAttackRange(pos, ctx.Target.Position(), ctx.Config.AttackRange, ctx.Physics, ctx.Target.ColliderID())
}

func (ctx *Context) targetInDetectionRange() bool {
	pos, ok := ctx.selfPosition()
	if !ok || ctx.Target == nil {
		return false
	}
	return InDetectionRange(pos, ctx.Target.Position(), ctx.Config.DetectionRange)
}

func (ctx *Context) playAnimation(clip string) {
	if ctx.Animation == nil || clip == "" {
		return
	}
	if ctx.Animation.Current() == clip && ctx.Animation.IsPlaying(clip) {
		return
	}
	ctx.Animation.Play(clip)
}

func (ctx *Context) resetOscillation() {
	ctx.OscillationDetectionStartTime = 0
	ctx.HorizontalDirectionChanges = 0
	ctx.LastHorizontalDirection = 0
	ctx.IsOscillating = false
}

func statusField(s Status) zap.Field { return zap.Stringer("status", s) }
