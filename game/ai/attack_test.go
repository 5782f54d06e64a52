package ai

import (
	"math/rand"
	"testing"

	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttack_CommitDamagesOnce(t *testing.T) {
	h := newHarness(t)
	h.target.pos = physics.V(1, 0)
	h.clock.t = 3
	h.ctx.Movement = physics.V(1, 0)
	h.ctx.IsChasing = true
	node := Attack()

	require.Equal(t, StatusRunning, node.Tick(h.ctx))
	assert.Equal(t, []int{10}, h.target.damage)
	assert.True(t, h.ctx.IsAttacking)
	assert.False(t, h.ctx.IsChasing)
	assert.Equal(t, StateAttack, h.ctx.State)
	assert.True(t, h.ctx.Movement.IsZero(1e-12))
	assert.Equal(t, 3.0, h.ctx.LastAttackTime)
	clip := h.ctx.CurrentAnimationState()
	assert.Contains(t, []string{"attack_1", "attack_2"}, clip)
	require.Len(t, h.events.events, 1)
	assert.Equal(t, EventAttack, h.events.events[0].Kind)
	assert.Equal(t, 10, h.events.events[0].Damage)

	// mid-swing ticks never re-apply damage
	h.clock.t = 3.2
	assert.Equal(t, StatusRunning, node.Tick(h.ctx))
	assert.Equal(t, StatusRunning, node.Tick(h.ctx))
	assert.Len(t, h.target.damage, 1)

	h.player.finish(clip)
	assert.Equal(t, StatusSuccess, node.Tick(h.ctx))
	assert.False(t, h.ctx.IsAttacking)
	assert.Len(t, h.target.damage, 1)
	assert.Equal(t, 3.0, h.ctx.LastAttackTime)
}

func TestAttack_OutOfRange(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StatusFailure, Attack().Tick(h.ctx))
	assert.Empty(t, h.target.damage)
	assert.False(t, h.ctx.IsAttacking)
}

func TestAttack_NoTarget(t *testing.T) {
	h := newHarness(t)
	h.ctx.Target = nil
	assert.Equal(t, StatusFailure, Attack().Tick(h.ctx))
}

func TestAttack_PicksEitherClip(t *testing.T) {
	seen := map[string]bool{}
	for seed := int64(0); seed < 64 && len(seen) < 2; seed++ {
		h := newHarness(t)
		h.ctx.Rand = rand.New(rand.NewSource(seed))
		h.target.pos = physics.V(0.5, 0)
		Attack().Tick(h.ctx)
		seen[h.ctx.CurrentAnimationState()] = true
	}
	assert.Equal(t, map[string]bool{"attack_1": true, "attack_2": true}, seen)
}

func TestAttack_WithoutAnimationResolvesNextTick(t *testing.T) {
	h := newHarness(t)
	h.ctx.Animation = nil
	h.target.pos = physics.V(1, 0)
	node := Attack()
	assert.Equal(t, StatusRunning, node.Tick(h.ctx))
	assert.Equal(t, StatusSuccess, node.Tick(h.ctx))
	assert.Len(t, h.target.damage, 1)
}
