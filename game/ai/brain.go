package ai

import (
	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

// Brain is the owner-side driver for one agent: it pairs the agent's Context with a
// (possibly shared) tree and keeps the hurt and dead states out of the tree.
type Brain struct {
	ctx  *Context
	tree *BehaviorTree
	last Status
}

// NewBrain binds ctx to tree.
func NewBrain(ctx *Context, tree *BehaviorTree) *Brain {
	return &Brain{ctx: ctx, tree: tree, last: StatusFailure}
}

// Context returns the agent's blackboard.
func (b *Brain) Context() *Context { return b.ctx }

// LastStatus is the result of the most recent Update.
func (b *Brain) LastStatus() Status { return b.last }

// Update runs one logic tick. A dead agent is not ticked and reports Failure. A hurt agent
// waits out its hurt clip and reports Running until the wait finishes.
func (b *Brain) Update() Status {
	ctx := b.ctx
	switch {
	case ctx.IsDead:
		b.last = StatusFailure
	case ctx.IsHurt:
		b.last = b.pollHurt()
	default:
		b.last = b.tree.Tick(ctx)
	}
	return b.last
}

func (b *Brain) pollHurt() Status {
	ctx := b.ctx
	if ctx.Animation == nil {
		ctx.IsHurt = false
		return StatusSuccess
	}
	wait := ctx.Animation.PollHurt(ctx.HurtAnimStartTime, ctx.now())
	if !wait.Finished() {
		return StatusRunning
	}
	if wait == HurtTimedOut {
		ctx.emit(Event{Kind: EventHurtTimeout, Clip: ctx.Config.HurtClip})
	}
	ctx.IsHurt = false
	ctx.State = StateIdle
	return StatusSuccess
}

// Hurt interrupts whatever the agent was doing and starts the hurt wait. Ignored when dead.
func (b *Brain) Hurt(damage int) {
	ctx := b.ctx
	if ctx.IsDead {
		return
	}
	b.interrupt()
	ctx.IsHurt = true
	ctx.State = StateHurt
	ctx.HurtAnimStartTime = ctx.now()
	if ctx.Animation != nil {
		ctx.Animation.PlayHurt()
	}
	ctx.log().Debug("agent hurt", zap.Int("damage", damage))
	ctx.emit(Event{Kind: EventHurt, Damage: damage, Clip: ctx.Config.HurtClip})
}

// Die stops the agent for good. The owner stops ticking it from now on.
func (b *Brain) Die() {
	ctx := b.ctx
	if ctx.IsDead {
		return
	}
	b.interrupt()
	ctx.IsDead = true
	ctx.IsHurt = false
	ctx.State = StateDead
	if ctx.Animation != nil {
		ctx.Animation.Play(ctx.Config.DeathClip)
	}
	ctx.emit(Event{Kind: EventDeath, Clip: ctx.Config.DeathClip})
}

func (b *Brain) interrupt() {
	ctx := b.ctx
	ctx.IsAttacking = false
	ctx.IsChasing = false
	ctx.Movement = physics.Vec2{}
	ctx.resetOscillation()
}
