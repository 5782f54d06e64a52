package ai

import (
	"testing"

	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnemyTree_IdleChaseAttack(t *testing.T) {
	h := newHarness(t)
	space := physics.NewSpace()
	h.target.id = space.AddCircle(physics.LayerPlayer, physics.V(10, 0), 0.4)
	h.ctx.Physics = space
	tree := NewEnemyTree()

	// out of detection range
	assert.Equal(t, StatusSuccess, tree.Tick(h.ctx))
	assert.Equal(t, StateIdle, h.ctx.State)
	assert.True(t, h.ctx.Movement.IsZero(1e-12))

	// detected
	h.target.pos = physics.V(3, 0)
	assert.Equal(t, StatusSuccess, tree.Tick(h.ctx))
	assert.Equal(t, StateChase, h.ctx.State)
	assert.InDelta(t, 1.0, h.ctx.Movement.X, 1e-9)
	assert.False(t, h.body.flip)
	assert.Empty(t, h.target.damage)

	// in range: swing
	h.target.pos = physics.V(-1, 0)
	h.clock.t = 1
	require.Equal(t, StatusRunning, tree.Tick(h.ctx))
	assert.Equal(t, StateAttack, h.ctx.State)
	assert.True(t, h.body.flip)
	assert.Equal(t, []int{10}, h.target.damage)
	clip := h.ctx.CurrentAnimationState()

	h.clock.t = 1.2
	assert.Equal(t, StatusRunning, tree.Tick(h.ctx))
	assert.Len(t, h.target.damage, 1)

	h.player.finish(clip)
	assert.Equal(t, StatusSuccess, tree.Tick(h.ctx))
	assert.False(t, h.ctx.IsAttacking)

	// cooling down: hold position
	h.ctx.Movement = physics.V(1, 0)
	h.clock.t = 2
	assert.Equal(t, StatusSuccess, tree.Tick(h.ctx))
	assert.True(t, h.ctx.Movement.IsZero(1e-12))
	assert.Len(t, h.target.damage, 1)

	h.clock.t = 2.5
	assert.Equal(t, StatusRunning, tree.Tick(h.ctx))
	assert.Len(t, h.target.damage, 2)
}

func TestEnemyTree_DeadStandsStill(t *testing.T) {
	h := newHarness(t)
	h.ctx.IsDead = true
	h.ctx.Movement = physics.V(1, 0)
	h.target.pos = physics.V(1, 0)

	assert.Equal(t, StatusSuccess, NewEnemyTree().Tick(h.ctx))
	assert.True(t, h.ctx.Movement.IsZero(1e-12))
	assert.Empty(t, h.target.damage)
}

func TestEnemyTree_SharedBetweenAgents(t *testing.T) {
	tree := NewEnemyTree()
	a, b := newHarness(t), newHarness(t)
	a.target.pos = physics.V(3, 0)
	b.target.pos = physics.V(1, 0)

	tree.Tick(a.ctx)
	tree.Tick(b.ctx)
	assert.Equal(t, StateChase, a.ctx.State)
	assert.Equal(t, StateAttack, b.ctx.State)
	assert.Empty(t, a.target.damage)
	assert.Len(t, b.target.damage, 1)
}

func TestEnemyTree_OverlapRangeViaPhysics(t *testing.T) {
	h := newHarness(t)
	space := physics.NewSpace()
	h.target.pos = physics.V(1.3, 0)
	h.target.id = space.AddCircle(physics.LayerPlayer, h.target.pos, 0.5)
	h.ctx.Physics = space

	assert.Equal(t, StatusRunning, NewEnemyTree().Tick(h.ctx))
	assert.Len(t, h.target.damage, 1)
}

func TestEnemyTree_NowhereToGoKeepsComputedMovement(t *testing.T) {
	h := newHarness(t)
	h.ctx.Config.MovementThreshold = 2
	h.ctx.IsChasing = true
	h.target.pos = physics.V(3, 0)

	assert.Equal(t, StatusSuccess, NewEnemyTree().Tick(h.ctx))
	assert.Equal(t, StateIdle, h.ctx.State)
	assert.False(t, h.ctx.IsChasing)
	// Movement is the direction CalculateDirectionToPlayer wrote, not Idle's zero vector.
	assert.InDelta(t, 1.0, h.ctx.Movement.X, 1e-9)
}
