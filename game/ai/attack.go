package ai

import (
	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

// Attack runs the melee attack state machine.
//
// On commit the damage lands immediately and the node reports Running; later ticks only
// wait for the attack clip to finish and then report Success. Damage is therefore dealt
// when the swing starts, not on an impact frame.
func Attack() Node { return &ActionNode{Name: "Attack", Fn: attack} }

func attack(ctx *Context) Status {
	if ctx.IsAttacking {
		if ctx.Animation != nil && ctx.Animation.IsAttackAnimationPlaying() {
			return StatusRunning
		}
		ctx.IsAttacking = false
		return StatusSuccess
	}

	if !ctx.targetInAttackRange() {
		return StatusFailure
	}
	if ctx.Target == nil || ctx.Self == nil {
		ctx.log().Warn("Attack: missing self or target")
		return StatusFailure
	}

	ctx.IsAttacking = true
	ctx.IsChasing = false
	ctx.State = StateAttack
	ctx.Movement = physics.Vec2{}

	clip := ctx.Config.AttackClips[0]
	if ctx.Rand != nil && ctx.Rand.Intn(2) == 1 {
		clip = ctx.Config.AttackClips[1]
	}
	if ctx.Animation != nil {
		ctx.Animation.Play(clip)
	} else {
		ctx.log().Warn("Attack: no animation gate, attack resolves next tick")
	}

	ctx.Target.TakeDamage(ctx.Config.AttackDamage)
	ctx.LastAttackTime = ctx.now()
	ctx.trace("attack committed", zap.String("clip", clip), zap.Int("damage", ctx.Config.AttackDamage))
	ctx.emit(Event{Kind: EventAttack, Damage: ctx.Config.AttackDamage, Clip: clip})
	return StatusRunning
}
