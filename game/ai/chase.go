package ai

import (
	"math"

	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

// CalculateDirectionToPlayer writes the chase direction into Movement.
//
// While the target is almost directly above or below the agent, any obstacle or rounding
// noise can flip the chosen horizontal sign every tick and the agent flaps left and right
// in place. Those flips are counted; once OscillationThreshold of them land inside
// OscillationWindow the agent commits to a purely vertical approach.
func CalculateDirectionToPlayer() Node {
	return &ActionNode{Name: "CalculateDirectionToPlayer", Fn: calculateDirectionToPlayer}
}

func calculateDirectionToPlayer(ctx *Context) Status {
	if ctx.Self == nil || ctx.Target == nil {
		ctx.log().Warn("CalculateDirectionToPlayer: missing self or target")
		return StatusFailure
	}
	selfPos := ctx.Self.Position()
	targetPos := ctx.Target.Position()
	offset := targetPos.Sub(selfPos)
	if offset.Len() < nearZero {
		ctx.Movement = physics.Vec2{}
		ctx.IsOscillating = false
		return StatusSuccess
	}

	perpendicular := math.Abs(offset.X) < ctx.Config.PerpendicularBand

	direct := offset.Normalize()
	dir := direct
	if ctx.Config.UsePathfinding && ctx.Steering != nil {
		if steered := ctx.Steering.DirectionToTarget(selfPos, targetPos); steered.Len() > nearZero {
			dir = steered.Normalize()
		}
	}

	if perpendicular {
		dir = ctx.trackOscillation(selfPos, offset, dir)
	} else {
		ctx.resetOscillation()
	}

	ctx.Movement = dir
	ctx.LastMovementDirection = dir
	return StatusSuccess
}

// trackOscillation updates the flip counter for this tick's raw direction and returns the
// direction to actually use.
func (ctx *Context) trackOscillation(selfPos, offset, dir physics.Vec2) physics.Vec2 {
	now := ctx.now()
	h := horizontalSign(dir.X, ctx.Config.HorizontalDeadzone)

	if h != 0 && ctx.LastHorizontalDirection != 0 && h != ctx.LastHorizontalDirection {
		if !ctx.IsOscillating && ctx.HorizontalDirectionChanges > 0 &&
			now-ctx.OscillationDetectionStartTime > ctx.Config.OscillationWindow {
			// stale window: this flip opens a new one
			ctx.HorizontalDirectionChanges = 0
		}
		ctx.HorizontalDirectionChanges++
		if ctx.HorizontalDirectionChanges == 1 {
			ctx.OscillationDetectionStartTime = now
		}
		if !ctx.IsOscillating &&
			ctx.HorizontalDirectionChanges >= ctx.Config.OscillationThreshold &&
			now-ctx.OscillationDetectionStartTime <= ctx.Config.OscillationWindow {
			ctx.IsOscillating = true
			ctx.log().Info("oscillation detected, forcing vertical approach",
				zap.Int("changes", ctx.HorizontalDirectionChanges),
				zap.Float64("window_s", now-ctx.OscillationDetectionStartTime))
			ctx.emit(Event{Kind: EventOscillation})
		}
	} else if ctx.HorizontalDirectionChanges > 0 &&
		ctx.HorizontalDirectionChanges < ctx.Config.OscillationThreshold &&
		now-ctx.OscillationDetectionStartTime > ctx.Config.OscillationWindow {
		ctx.HorizontalDirectionChanges = 0
		ctx.IsOscillating = false
	}
	if h != 0 {
		ctx.LastHorizontalDirection = h
	}

	if !ctx.IsOscillating {
		return dir
	}
	return ctx.breakOscillation(selfPos, offset)
}

// breakOscillation heads straight up or down toward the target, or along a shallow diagonal
// when the vertical is blocked.
func (ctx *Context) breakOscillation(selfPos, offset physics.Vec2) physics.Vec2 {
	vy := 1.0
	if offset.Y < 0 {
		vy = -1.0
	}
	vertical := physics.V(0, vy)
	if ctx.Steering == nil || ctx.Steering.IsPathClear(selfPos, vertical) {
		return vertical
	}
	dx := ctx.Config.ShallowDiagonalX
	for _, cand := range []physics.Vec2{physics.V(-dx, vy).Normalize(), physics.V(dx, vy).Normalize()} {
		if ctx.Steering.IsPathClear(selfPos, cand) {
			return cand
		}
	}
	return vertical
}

func horizontalSign(x, deadzone float64) int {
	switch {
	case x > deadzone:
		return 1
	case x < -deadzone:
		return -1
	default:
		return 0
	}
}
