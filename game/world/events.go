package world

import "github.com/kasuganosora/enemyai/game/ai"

// CombatEvent is an AI event tagged with the monster that raised it.
type CombatEvent struct {
	MonsterID   string       `json:"monster_id"`
	MonsterName string       `json:"monster_name"`
	Kind        ai.EventKind `json:"kind"`
	At          float64      `json:"at"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Damage      int          `json:"damage,omitempty"`
	Clip        string       `json:"clip,omitempty"`
}

// EventHandler receives combat events on the arena goroutine, outside the arena lock.
type EventHandler func(CombatEvent)

func newCombatEvent(m *Monster, ev ai.Event) CombatEvent {
	return CombatEvent{
		MonsterID:   m.ID,
		MonsterName: m.Name,
		Kind:        ev.Kind,
		At:          ev.At,
		X:           ev.Position.X,
		Y:           ev.Position.Y,
		Damage:      ev.Damage,
		Clip:        ev.Clip,
	}
}
