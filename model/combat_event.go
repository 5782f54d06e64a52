package model

import (
	"time"

	"gorm.io/datatypes"
)

// CombatEvent records one notable AI decision: an attack commit, an oscillation break,
// a hurt, a hurt timeout or a death.
type CombatEvent struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string         `gorm:"index:idx_combat_trace;size:36;not null" json:"trace_id"`
	MonsterID string         `gorm:"index:idx_combat_monster;size:36;not null" json:"monster_id"`
	Monster   string         `gorm:"size:64" json:"monster"`
	Kind      string         `gorm:"index:idx_combat_kind;size:32;not null" json:"kind"`
	Damage    int            `json:"damage"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	GameTime  float64        `json:"game_time"`
	Detail    datatypes.JSON `json:"detail"`
	CreatedAt time.Time      `gorm:"index:idx_combat_created;autoCreateTime:milli" json:"created_at"`
}
