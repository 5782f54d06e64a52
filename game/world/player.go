package world

import "github.com/kasuganosora/enemyai/game/physics"

// Player is the single target every monster in the arena hunts.
type Player struct {
	pos      physics.Vec2
	radius   float64
	hp       int
	maxHP    int
	hits     int
	collider physics.ColliderID
}

// PlayerView is the JSON snapshot of the player.
type PlayerView struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	HP    int     `json:"hp"`
	MaxHP int     `json:"max_hp"`
	Hits  int     `json:"hits"`
	Down  bool    `json:"down"`
}

func (p *Player) Position() physics.Vec2          { return p.pos }
func (p *Player) ColliderID() physics.ColliderID { return p.collider }

// TakeDamage lowers HP, never below zero. A downed player still counts hits.
func (p *Player) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	p.hits++
	p.hp -= amount
	if p.hp < 0 {
		p.hp = 0
	}
}

func (p *Player) view() PlayerView {
	return PlayerView{X: p.pos.X, Y: p.pos.Y, HP: p.hp, MaxHP: p.maxHP, Hits: p.hits, Down: p.hp == 0}
}
