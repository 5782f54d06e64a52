package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Mode)
	assert.Equal(t, 50, cfg.Game.LogicTickMs)
	assert.Len(t, cfg.Game.Obstacles, 2)
	require.Len(t, cfg.Game.Spawns, 2)
	assert.Equal(t, "slime", cfg.Game.Spawns[0].Name)
	assert.Equal(t, 10*time.Second, cfg.Game.Spawns[0].Respawn)
	assert.Equal(t, 600*time.Millisecond, cfg.AI.ClipDurations["attack_1"])
	assert.Empty(t, cfg.Security.AllowedOrigins)
	assert.Equal(t, 100, cfg.Security.RateLimitBurst)

	assert.Equal(t, ai.DefaultConfig(), cfg.ToAIConfig())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
game:
  spawns:
    - { name: bat, x: 1, y: 2, count: 4, hp: 5, radius: 0.2, respawn: 3s }
ai:
  attack_range: 2
  attack_cooldown: 750ms
  use_pathfinding: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	require.Len(t, cfg.Game.Spawns, 1)
	assert.Equal(t, 4, cfg.Game.Spawns[0].Count)

	a := cfg.ToAIConfig()
	assert.Equal(t, 2.0, a.AttackRange)
	assert.Equal(t, 0.75, a.AttackCooldown)
	assert.False(t, a.UsePathfinding)
	// untouched keys keep their defaults
	assert.Equal(t, 6.0, a.DetectionRange)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ENEMYAI_SERVER_PORT", "9191")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Mode)
	assert.Len(t, cfg.Game.Obstacles, 3)
}

func TestValidate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.AI.AttackRange = 10
	assert.ErrorContains(t, bad.Validate(), "exceeds detection_range")

	bad = *cfg
	bad.AI.SteeringCandidates = 0
	assert.ErrorContains(t, bad.Validate(), "steering_candidates")

	bad = *cfg
	bad.Game.PhysicsTickMs = 0
	assert.ErrorContains(t, bad.Validate(), "tick intervals")

	bad = *cfg
	bad.Database.Mode = "embedded_xml"
	assert.ErrorContains(t, bad.Validate(), "unknown mode")

	bad = *cfg
	bad.AI.AttackClips = []string{"only"}
	assert.ErrorContains(t, bad.Validate(), "attack_clips")
}

func TestValidate_ClipsNeedDurations(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	bad := *cfg
	bad.AI.AttackClips = []string{"slash", "stab"}
	bad.AI.HurtClip = "flinch"
	err = bad.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `"slash"`)
	assert.ErrorContains(t, err, `"stab"`)
	assert.ErrorContains(t, err, `"flinch"`)

	bad = *cfg
	bad.AI.ClipDurations = map[string]time.Duration{"attack_1": time.Second, "attack_2": 0, "hurt": time.Second, "death": time.Second}
	assert.ErrorContains(t, bad.Validate(), `"attack_2"`)

	bad = *cfg
	bad.AI.ClipDurations = map[string]time.Duration{
		"slash": 500 * time.Millisecond, "stab": 500 * time.Millisecond,
		"flinch": 300 * time.Millisecond, "death": time.Second,
	}
	bad.AI.AttackClips = []string{"slash", "stab"}
	bad.AI.HurtClip = "flinch"
	assert.NoError(t, bad.Validate())
}
