package world

import (
	"testing"
	"time"

	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Game.Obstacles = nil
	cfg.Game.Spawns = nil
	return cfg
}

func newTestArena(t *testing.T, cfg *config.Config) *Arena {
	t.Helper()
	if cfg == nil {
		cfg = testConfig(t)
	}
	return NewArena(cfg, zap.NewNop())
}

func TestArena_ChaseMovesTowardPlayer(t *testing.T) {
	a := newTestArena(t, nil)
	m := a.AddMonster(MonsterSpec{Name: "slime", Pos: physics.V(15, 15), HP: 30})

	a.LogicTick()
	move := m.ctx.Movement
	assert.InDelta(t, 1.0, move.X, 1e-9)

	for i := 0; i < 10; i++ {
		a.PhysicsStep(0.1)
		assert.Equal(t, move, m.ctx.Movement, "physics must not write Movement")
	}
	assert.InDelta(t, 17.5, m.pos.X, 1e-9)
	assert.InDelta(t, 15.0, m.pos.Y, 1e-9)

	v, ok := a.Monster(m.ID)
	require.True(t, ok)
	assert.Equal(t, "chase", v.State)
	assert.Equal(t, "run", v.Animation)
	assert.False(t, v.FacingLeft)
	center, ok := a.space.CircleCenter(m.collider)
	require.True(t, ok)
	assert.InDelta(t, 17.5, center.X, 1e-9)
}

func TestArena_AttackCycle(t *testing.T) {
	a := newTestArena(t, nil)
	var got []CombatEvent
	a.OnEvent(func(ev CombatEvent) { got = append(got, ev) })
	m := a.AddMonster(MonsterSpec{Name: "goblin", Pos: physics.V(19, 15), HP: 30})

	a.LogicTick()
	assert.Equal(t, 490, a.Player().HP)
	assert.True(t, m.ctx.IsAttacking)

	a.drainEvents()
	require.Len(t, got, 1)
	assert.Equal(t, ai.EventAttack, got[0].Kind)
	assert.Equal(t, m.ID, got[0].MonsterID)
	assert.Equal(t, "goblin", got[0].MonsterName)
	assert.Equal(t, 10, got[0].Damage)
	assert.InDelta(t, 19.0, got[0].X, 1e-9)

	// the swing is still playing
	a.LogicTick()
	assert.Equal(t, 490, a.Player().HP)

	a.PhysicsStep(1.0)
	a.LogicTick()
	assert.False(t, m.ctx.IsAttacking)

	// cooling down
	a.LogicTick()
	assert.Equal(t, 490, a.Player().HP)

	a.PhysicsStep(0.5)
	a.LogicTick()
	assert.Equal(t, 480, a.Player().HP)
	assert.Equal(t, 2, a.Player().Hits)
}

func TestArena_SlidesAlongObstacle(t *testing.T) {
	cfg := testConfig(t)
	cfg.Game.Obstacles = []config.ObstacleConfig{{X: 16, Y: 10, W: 1, H: 10}}
	a := newTestArena(t, cfg)
	m := a.AddMonster(MonsterSpec{Pos: physics.V(15.5, 15), Radius: 0.4})

	m.ctx.Movement = physics.V(1, 1).Normalize()
	a.PhysicsStep(0.1)
	assert.InDelta(t, 15.5, m.pos.X, 1e-9)
	assert.InDelta(t, 15+0.25*physics.V(1, 1).Normalize().Y, m.pos.Y, 1e-9)
}

func TestArena_StaysInBounds(t *testing.T) {
	a := newTestArena(t, nil)
	m := a.AddMonster(MonsterSpec{Pos: physics.V(0.5, 15), Radius: 0.4})
	m.ctx.Movement = physics.V(-1, 0)
	a.PhysicsStep(1)
	assert.InDelta(t, 0.5, m.pos.X, 1e-9)
}

func TestArena_DeadMonstersDoNotMove(t *testing.T) {
	a := newTestArena(t, nil)
	m := a.AddMonster(MonsterSpec{Pos: physics.V(10, 10), HP: 1})
	_, err := a.DamageMonster(m.ID, 1)
	require.NoError(t, err)

	m.ctx.Movement = physics.V(1, 0)
	a.PhysicsStep(1)
	assert.InDelta(t, 10.0, m.pos.X, 1e-9)
}

func TestArena_DamageMonster(t *testing.T) {
	a := newTestArena(t, nil)
	var kinds []ai.EventKind
	a.OnEvent(func(ev CombatEvent) { kinds = append(kinds, ev.Kind) })
	m := a.AddMonster(MonsterSpec{Name: "slime", Pos: physics.V(15, 15), HP: 30})
	a.LogicTick()
	require.True(t, m.ctx.IsChasing)

	v, err := a.DamageMonster(m.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 20, v.HP)
	assert.Equal(t, "hurt", v.State)
	assert.Equal(t, "hurt", v.Animation)

	// hurt: the tree is skipped and the monster stands still
	a.LogicTick()
	assert.True(t, m.ctx.Movement.IsZero(1e-12))

	a.PhysicsStep(0.5)
	a.LogicTick()
	assert.False(t, m.ctx.IsHurt)
	a.LogicTick()
	assert.True(t, m.ctx.IsChasing)

	v, err = a.DamageMonster(m.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, v.HP)
	assert.Equal(t, "dead", v.State)

	_, err = a.DamageMonster(m.ID, 5)
	assert.ErrorIs(t, err, ErrMonsterDead)
	_, err = a.DamageMonster("nope", 5)
	assert.ErrorIs(t, err, ErrMonsterNotFound)
	_, err = a.DamageMonster(m.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidDamage)

	a.drainEvents()
	assert.Equal(t, []ai.EventKind{ai.EventHurt, ai.EventDeath}, kinds)
}

func TestArena_SetPlayerPosition(t *testing.T) {
	cfg := testConfig(t)
	cfg.Game.Obstacles = []config.ObstacleConfig{{X: 5, Y: 5, W: 2, H: 2}}
	a := newTestArena(t, cfg)

	assert.ErrorIs(t, a.SetPlayerPosition(physics.V(-1, 5)), ErrOutOfBounds)
	assert.ErrorIs(t, a.SetPlayerPosition(physics.V(6, 6)), ErrBlocked)
	require.NoError(t, a.SetPlayerPosition(physics.V(3, 4)))

	p := a.Player()
	assert.Equal(t, 3.0, p.X)
	assert.Equal(t, 4.0, p.Y)
	center, _ := a.space.CircleCenter(a.player.collider)
	assert.Equal(t, physics.V(3, 4), center)
}

func TestArena_SnapshotAndStats(t *testing.T) {
	a := newTestArena(t, nil)
	a.AddMonster(MonsterSpec{Name: "a", Pos: physics.V(5, 5)})
	b := a.AddMonster(MonsterSpec{Name: "b", Pos: physics.V(6, 5), HP: 1})
	_, err := a.DamageMonster(b.ID, 1)
	require.NoError(t, err)
	a.PhysicsStep(0.25)

	snap := a.Snapshot()
	assert.Equal(t, 0.25, snap.Time)
	require.Len(t, snap.Monsters, 2)
	assert.Equal(t, "a", snap.Monsters[0].Name)
	assert.Equal(t, 500, snap.Player.HP)

	st := a.Stats()
	assert.Equal(t, 1, st.Alive)
	assert.Equal(t, 1, st.Dead)
	assert.Equal(t, 1, st.ByState["dead"])

	assert.True(t, a.RemoveMonster(b.ID))
	assert.False(t, a.RemoveMonster(b.ID))
	assert.Len(t, a.Monsters(), 1)
}

func TestArena_HandlerPanicDoesNotStopOthers(t *testing.T) {
	a := newTestArena(t, nil)
	a.OnEvent(func(CombatEvent) { panic("boom") })
	n := 0
	a.OnEvent(func(CombatEvent) { n++ })
	m := a.AddMonster(MonsterSpec{Pos: physics.V(5, 5), HP: 10})

	_, err := a.DamageMonster(m.ID, 1)
	require.NoError(t, err)
	a.drainEvents()
	assert.Equal(t, 1, n)
}

func TestArena_RunAndStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Game.LogicTickMs = 5
	cfg.Game.PhysicsTickMs = 5
	a := newTestArena(t, cfg)
	m := a.AddMonster(MonsterSpec{Pos: physics.V(15, 15)})

	done := make(chan struct{})
	go func() {
		a.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool {
		v, _ := a.Monster(m.ID)
		return v.X > 15.2
	}, 2*time.Second, 10*time.Millisecond)

	a.Stop()
	a.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("arena loop did not stop")
	}
}
