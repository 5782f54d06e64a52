package ai

import "github.com/kasuganosora/enemyai/game/physics"

// Config holds the per-agent tunables. It is copied into the Context at creation and
// treated as immutable afterwards. Times are in game-clock seconds.
type Config struct {
	AttackRange    float64
	DetectionRange float64
	AttackCooldown float64
	AttackDamage   int
	MoveSpeed      float64
	UsePathfinding bool
	Debug          bool

	AttackClips [2]string
	HurtClip    string
	IdleClip    string
	RunClip     string
	DeathClip   string

	// MovementThreshold is the Movement length below which the agent counts as standing still.
	MovementThreshold float64
	// PerpendicularBand is the |dx| below which the target counts as directly above/below.
	PerpendicularBand float64
	// HorizontalDeadzone is the |x| below which a direction's horizontal sign classifies as 0.
	HorizontalDeadzone   float64
	OscillationThreshold int
	OscillationWindow    float64
	// ShallowDiagonalX is the horizontal component of the fallback diagonals tried when the
	// forced vertical direction is blocked.
	ShallowDiagonalX float64

	HurtGrace   float64
	HurtTimeout float64

	DefaultFacingLeft bool
	ObstacleMask      physics.Layer

	Steering SteeringConfig
}

// SteeringConfig tunes the local obstacle-avoidance search.
type SteeringConfig struct {
	RayLength    float64
	Candidates   int
	MinClearance float64
	Mask         physics.Layer
}

// DefaultConfig returns the stock melee-enemy tuning.
func DefaultConfig() Config {
	return Config{
		AttackRange:          1.2,
		DetectionRange:       6,
		AttackCooldown:       1.5,
		AttackDamage:         10,
		MoveSpeed:            2.5,
		UsePathfinding:       true,
		AttackClips:          [2]string{"attack_1", "attack_2"},
		HurtClip:             "hurt",
		IdleClip:             "idle",
		RunClip:              "run",
		DeathClip:            "death",
		MovementThreshold:    0.1,
		PerpendicularBand:    0.3,
		HorizontalDeadzone:   0.1,
		OscillationThreshold: 4,
		OscillationWindow:    1.0,
		ShallowDiagonalX:     0.3,
		HurtGrace:            0.1,
		HurtTimeout:          2.0,
		ObstacleMask:         physics.LayerObstacle,
		Steering: SteeringConfig{
			RayLength:    1.5,
			Candidates:   8,
			MinClearance: 0.4,
			Mask:         physics.LayerObstacle,
		},
	}
}
