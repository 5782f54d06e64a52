package ai

import (
	"math"

	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

// FacePlayer mirrors the sprite toward the target. When the target sits right on top of
// the agent it keeps the last movement facing, or the configured default.
func FacePlayer() Node { return &ActionNode{Name: "FacePlayer", Fn: facePlayer} }

func facePlayer(ctx *Context) Status {
	if ctx.Self == nil || ctx.Target == nil {
		ctx.log().Warn("FacePlayer: missing self or target")
		return StatusFailure
	}
	dx := ctx.Target.Position().X - ctx.Self.Position().X
	switch {
	case math.Abs(dx) >= nearZero:
		ctx.Self.SetFlipX(dx < 0)
	case ctx.LastMovementDirection.X != 0:
		ctx.Self.SetFlipX(ctx.LastMovementDirection.X < 0)
	default:
		ctx.Self.SetFlipX(ctx.Config.DefaultFacingLeft)
	}
	return StatusSuccess
}

// FaceMovementDirection mirrors the sprite along Movement.X while the agent is moving.
func FaceMovementDirection() Node {
	return &ActionNode{Name: "FaceMovementDirection", Fn: faceMovementDirection}
}

func faceMovementDirection(ctx *Context) Status {
	if ctx.Self == nil {
		ctx.log().Warn("FaceMovementDirection: missing self")
		return StatusFailure
	}
	if ctx.Movement.Len() > ctx.Config.MovementThreshold && ctx.Movement.X != 0 {
		ctx.Self.SetFlipX(ctx.Movement.X < 0)
	}
	return StatusSuccess
}

// StopMovement zeroes Movement.
func StopMovement() Node {
	return &ActionNode{Name: "StopMovement", Fn: func(ctx *Context) Status {
		ctx.Movement = physics.Vec2{}
		return StatusSuccess
	}}
}

// Idle zeroes Movement, drops the chase and plays the idle clip.
func Idle() Node { return &ActionNode{Name: "Idle", Fn: idle} }

func idle(ctx *Context) Status {
	ctx.Movement = physics.Vec2{}
	return settle(ctx)
}

// Settle drops the chase and plays the idle clip without touching Movement, for branches
// where Movement was already written this tick.
func Settle() Node { return &ActionNode{Name: "Settle", Fn: settle} }

func settle(ctx *Context) Status {
	if ctx.IsChasing {
		ctx.trace("chase dropped")
	}
	ctx.IsChasing = false
	ctx.State = StateIdle
	ctx.playAnimation(ctx.Config.IdleClip)
	return StatusSuccess
}

// BeginChase marks the agent as chasing and plays the run clip. It does not move anything:
// Movement is written by CalculateDirectionToPlayer.
func BeginChase() Node {
	return &ActionNode{Name: "BeginChase", Fn: func(ctx *Context) Status {
		if !ctx.IsChasing {
			ctx.trace("chase started", zap.Float64("distance", ctx.distanceToTarget()))
		}
		ctx.IsChasing = true
		ctx.State = StateChase
		ctx.playAnimation(ctx.Config.RunClip)
		return StatusSuccess
	}}
}

// MoveTowardPlayer gates on the agent actually having somewhere to go.
func MoveTowardPlayer() Node {
	return &ActionNode{Name: "MoveTowardPlayer", Fn: func(ctx *Context) Status {
		if ctx.Movement.Len() > ctx.Config.MovementThreshold {
			return StatusSuccess
		}
		return StatusFailure
	}}
}
