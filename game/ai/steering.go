package ai

import (
	"math"

	"github.com/kasuganosora/enemyai/game/physics"
)

const (
	clearAlignmentWeight   = 2.0
	partialAlignmentWeight = 1.0
)

// Steering is a greedy 8-way (by default) local obstacle-avoidance search. It keeps no
// memory between calls and re-scans every time the direct path is blocked.
type Steering struct {
	rays Raycaster
	cfg  SteeringConfig
}

// NewSteering creates a Steering module probing rays against the given physics.
func NewSteering(rays Raycaster, cfg SteeringConfig) *Steering {
	if cfg.Candidates <= 0 {
		cfg.Candidates = 8
	}
	if cfg.Mask == physics.LayerNone {
		cfg.Mask = physics.LayerObstacle
	}
	return &Steering{rays: rays, cfg: cfg}
}

// IsPathClear casts a fixed-length ray along direction from origin.
func (s *Steering) IsPathClear(origin, direction physics.Vec2) bool {
	return s.clearWithin(origin, direction, s.cfg.RayLength)
}

func (s *Steering) clearWithin(origin, direction physics.Vec2, length float64) bool {
	if s.rays == nil || length <= 0 {
		return true
	}
	_, hit := s.rays.Raycast(origin, direction, length, s.cfg.Mask)
	return !hit
}

// DirectionToTarget returns a unit direction toward targetPos that avoids nearby obstacles,
// or the zero vector if nothing usable was found.
func (s *Steering) DirectionToTarget(selfPos, targetPos physics.Vec2) physics.Vec2 {
	toTarget := targetPos.Sub(selfPos)
	dist := toTarget.Len()
	if dist < nearZero {
		return physics.Vec2{}
	}
	direct := toTarget.Scale(1 / dist)
	// obstacles behind the target don't block the direct path
	if s.clearWithin(selfPos, direct, math.Min(s.cfg.RayLength, dist)) {
		return direct
	}

	var best physics.Vec2
	bestScore := math.Inf(-1)
	step := 2 * math.Pi / float64(s.cfg.Candidates)
	for i := 0; i < s.cfg.Candidates; i++ {
		cand := physics.FromAngle(step * float64(i))
		align := cand.Dot(direct)
		hit, blocked := s.rays.Raycast(selfPos, cand, s.cfg.RayLength, s.cfg.Mask)

		var score float64
		switch {
		case !blocked:
			end := selfPos.Add(cand.Scale(s.cfg.RayLength))
			score = clearAlignmentWeight*align - end.Dist(targetPos)
		case hit.Distance > s.cfg.MinClearance:
			score = partialAlignmentWeight*align - hit.Point.Dist(targetPos)
		default:
			continue
		}
		if score > bestScore {
			bestScore = score
			best = cand
		}
	}
	return best.Normalize()
}
