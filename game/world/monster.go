package world

import (
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/physics"
)

// Monster is the runtime state of a live monster: its body in the physics space and
// the AI blackboard that drives it.
type Monster struct {
	ID       string
	Name     string
	SpawnIdx int

	pos      physics.Vec2
	radius   float64
	flipX    bool
	hp       int
	maxHP    int
	diedAt   float64
	collider physics.ColliderID

	ctx   *ai.Context
	brain *ai.Brain
	anim  *ClipPlayer
	clock *Clock
}

// MonsterSpec describes one monster to place in the arena.
type MonsterSpec struct {
	Name     string
	Pos      physics.Vec2
	HP       int
	Radius   float64
	SpawnIdx int // 1-based spawn group; 0 for monsters placed by hand
}

// MonsterView is the JSON snapshot of a monster.
type MonsterView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	HP          int     `json:"hp"`
	MaxHP       int     `json:"max_hp"`
	State       string  `json:"state"`
	Animation   string  `json:"animation"`
	FacingLeft  bool    `json:"facing_left"`
	MoveX       float64 `json:"move_x"`
	MoveY       float64 `json:"move_y"`
	Oscillating bool    `json:"oscillating"`
}

// Position implements ai.Body.
func (m *Monster) Position() physics.Vec2 { return m.pos }

// SetFlipX implements ai.Body.
func (m *Monster) SetFlipX(flip bool) { m.flipX = flip }

func (m *Monster) dead() bool { return m.ctx.IsDead }

// takeDamage applies damage and hands the reaction to the brain: hurt, or death at zero HP.
func (m *Monster) takeDamage(amount int) {
	m.hp -= amount
	if m.hp <= 0 {
		m.hp = 0
		m.diedAt = m.clock.Now()
		m.brain.Die()
		return
	}
	m.brain.Hurt(amount)
}

func (m *Monster) view() MonsterView {
	return MonsterView{
		ID:          m.ID,
		Name:        m.Name,
		X:           m.pos.X,
		Y:           m.pos.Y,
		HP:          m.hp,
		MaxHP:       m.maxHP,
		State:       m.ctx.State.String(),
		Animation:   m.ctx.CurrentAnimationState(),
		FacingLeft:  m.flipX,
		MoveX:       m.ctx.Movement.X,
		MoveY:       m.ctx.Movement.Y,
		Oscillating: m.ctx.IsOscillating,
	}
}
