package ai

import (
	"math"

	"github.com/kasuganosora/enemyai/game/physics"
)

// nearZero is the distance below which two points count as overlapping.
const nearZero = 0.01

// overlapPrefilter bounds how far outside the radius the broad-phase check is attempted.
const overlapPrefilter = 1.2

// InAttackRange reports whether targetPos is within radius of selfPos. Exact overlap is
// always in range. When the target is only slightly outside the radius and q is non-nil,
// a broad-phase query around self also counts the target's collider touching the circle.
func InAttackRange(selfPos, targetPos physics.Vec2, radius float64, q PhysicsQuery, target physics.ColliderID) bool {
	d := selfPos.Dist(targetPos)
	if d <= radius || d < nearZero {
		return true
	}
	if q == nil || d > radius*overlapPrefilter {
		return false
	}
	for _, id := range q.OverlapCircleAll(selfPos, radius, physics.LayerAll) {
		if id == target {
			return true
		}
	}
	return false
}

// InDetectionRange is a plain distance check.
func InDetectionRange(selfPos, targetPos physics.Vec2, radius float64) bool {
	return selfPos.Dist(targetPos) <= radius
}

// DistanceTo returns the distance to target, or +Inf when there is no target.
func DistanceTo(selfPos physics.Vec2, target Target) float64 {
	if target == nil {
		return math.Inf(1)
	}
	return selfPos.Dist(target.Position())
}
