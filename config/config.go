package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/physics"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Bus      BusConfig      `mapstructure:"bus"`
	Game     GameConfig     `mapstructure:"game"`
	AI       AIConfig       `mapstructure:"ai"`
	Security SecurityConfig `mapstructure:"security"`
}

type ServerConfig struct {
	Port  int  `mapstructure:"port"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Mode         string        `mapstructure:"mode"` // memory | sqlite | mysql
	SQLitePath   string        `mapstructure:"sqlite_path"`
	MySQLDSN     string        `mapstructure:"mysql_dsn"`
	MySQLMaxOpen int           `mapstructure:"mysql_max_open"`
	MySQLMaxIdle int           `mapstructure:"mysql_max_idle"`
	MySQLMaxLife time.Duration `mapstructure:"mysql_max_life"`
}

// BusConfig selects the combat event bus. An empty RedisAddr keeps it in-process.
type BusConfig struct {
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	LocalBuf      int    `mapstructure:"local_buf"`
}

type GameConfig struct {
	LogicTickMs    int              `mapstructure:"logic_tick_ms"`
	PhysicsTickMs  int              `mapstructure:"physics_tick_ms"`
	RespawnCheckS  int              `mapstructure:"respawn_check_s"`
	StatsIntervalS int              `mapstructure:"stats_interval_s"`
	Width          float64          `mapstructure:"width"`
	Height         float64          `mapstructure:"height"`
	Obstacles      []ObstacleConfig `mapstructure:"obstacles"`
	Spawns         []SpawnConfig    `mapstructure:"spawns"`
	Player         PlayerConfig     `mapstructure:"player"`
}

// ObstacleConfig is a static wall; X/Y is the lower-left corner.
type ObstacleConfig struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	W float64 `mapstructure:"w"`
	H float64 `mapstructure:"h"`
}

// SpawnConfig places Count monsters of one kind around (X, Y).
type SpawnConfig struct {
	Name    string        `mapstructure:"name"`
	X       float64       `mapstructure:"x"`
	Y       float64       `mapstructure:"y"`
	Count   int           `mapstructure:"count"`
	Spread  float64       `mapstructure:"spread"`
	HP      int           `mapstructure:"hp"`
	Radius  float64       `mapstructure:"radius"`
	Respawn time.Duration `mapstructure:"respawn"`
}

type PlayerConfig struct {
	X      float64 `mapstructure:"x"`
	Y      float64 `mapstructure:"y"`
	HP     int     `mapstructure:"hp"`
	Radius float64 `mapstructure:"radius"`
}

// AIConfig holds the enemy tunables. Durations are converted to seconds by ToAIConfig.
type AIConfig struct {
	AttackRange          float64       `mapstructure:"attack_range"`
	DetectionRange       float64       `mapstructure:"detection_range"`
	AttackCooldown       time.Duration `mapstructure:"attack_cooldown"`
	AttackDamage         int           `mapstructure:"attack_damage"`
	MoveSpeed            float64       `mapstructure:"move_speed"`
	UsePathfinding       bool          `mapstructure:"use_pathfinding"`
	Debug                bool          `mapstructure:"debug"`
	AttackClips          []string      `mapstructure:"attack_clips"`
	HurtClip             string        `mapstructure:"hurt_clip"`
	IdleClip             string        `mapstructure:"idle_clip"`
	RunClip              string        `mapstructure:"run_clip"`
	DeathClip            string        `mapstructure:"death_clip"`
	MovementThreshold    float64       `mapstructure:"movement_threshold"`
	PerpendicularBand    float64       `mapstructure:"perpendicular_band"`
	HorizontalDeadzone   float64       `mapstructure:"horizontal_deadzone"`
	OscillationThreshold int           `mapstructure:"oscillation_threshold"`
	OscillationWindow    time.Duration `mapstructure:"oscillation_window"`
	ShallowDiagonalX     float64       `mapstructure:"shallow_diagonal_x"`
	HurtGrace            time.Duration `mapstructure:"hurt_grace"`
	HurtTimeout          time.Duration `mapstructure:"hurt_timeout"`
	SteeringRayLength    float64       `mapstructure:"steering_ray_length"`
	SteeringCandidates   int           `mapstructure:"steering_candidates"`
	SteeringMinClearance float64       `mapstructure:"steering_min_clearance"`
	DefaultFacingLeft    bool          `mapstructure:"default_facing_left"`

	// ClipDurations feeds the simulated clip player; unknown clips loop forever, so the
	// attack, hurt and death clips must be listed.
	ClipDurations map[string]time.Duration `mapstructure:"clip_durations"`
}

type SecurityConfig struct {
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // empty allows any websocket origin
}

// Load reads config from the given YAML file path. An empty path uses defaults and
// ENEMYAI_* environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ENEMYAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.debug", false)

	v.SetDefault("database.mode", "memory")
	v.SetDefault("database.sqlite_path", "./data/combat.db")
	v.SetDefault("database.mysql_max_open", 20)
	v.SetDefault("database.mysql_max_idle", 5)
	v.SetDefault("database.mysql_max_life", "1h")

	v.SetDefault("bus.redis_addr", "")
	v.SetDefault("bus.redis_db", 0)
	v.SetDefault("bus.local_buf", 256)

	v.SetDefault("game.logic_tick_ms", 50)
	v.SetDefault("game.physics_tick_ms", 20)
	v.SetDefault("game.respawn_check_s", 1)
	v.SetDefault("game.stats_interval_s", 30)
	v.SetDefault("game.width", 40)
	v.SetDefault("game.height", 30)
	v.SetDefault("game.player.x", 20)
	v.SetDefault("game.player.y", 15)
	v.SetDefault("game.player.hp", 500)
	v.SetDefault("game.player.radius", 0.4)
	v.SetDefault("game.obstacles", []map[string]any{
		{"x": 14, "y": 10, "w": 1, "h": 10},
		{"x": 25, "y": 10, "w": 1, "h": 10},
	})
	v.SetDefault("game.spawns", []map[string]any{
		{"name": "slime", "x": 8, "y": 15, "count": 3, "spread": 2, "hp": 30, "radius": 0.35, "respawn": "10s"},
		{"name": "goblin", "x": 32, "y": 15, "count": 2, "spread": 2, "hp": 50, "radius": 0.4, "respawn": "15s"},
	})

	d := ai.DefaultConfig()
	v.SetDefault("ai.attack_range", d.AttackRange)
	v.SetDefault("ai.detection_range", d.DetectionRange)
	v.SetDefault("ai.attack_cooldown", "1.5s")
	v.SetDefault("ai.attack_damage", d.AttackDamage)
	v.SetDefault("ai.move_speed", d.MoveSpeed)
	v.SetDefault("ai.use_pathfinding", d.UsePathfinding)
	v.SetDefault("ai.debug", false)
	v.SetDefault("ai.attack_clips", []string{d.AttackClips[0], d.AttackClips[1]})
	v.SetDefault("ai.hurt_clip", d.HurtClip)
	v.SetDefault("ai.idle_clip", d.IdleClip)
	v.SetDefault("ai.run_clip", d.RunClip)
	v.SetDefault("ai.death_clip", d.DeathClip)
	v.SetDefault("ai.clip_durations", map[string]any{
		"attack_1": "600ms",
		"attack_2": "800ms",
		"hurt":     "400ms",
		"death":    "1s",
	})
	v.SetDefault("ai.movement_threshold", d.MovementThreshold)
	v.SetDefault("ai.perpendicular_band", d.PerpendicularBand)
	v.SetDefault("ai.horizontal_deadzone", d.HorizontalDeadzone)
	v.SetDefault("ai.oscillation_threshold", d.OscillationThreshold)
	v.SetDefault("ai.oscillation_window", "1s")
	v.SetDefault("ai.shallow_diagonal_x", d.ShallowDiagonalX)
	v.SetDefault("ai.hurt_grace", "100ms")
	v.SetDefault("ai.hurt_timeout", "2s")
	v.SetDefault("ai.steering_ray_length", d.Steering.RayLength)
	v.SetDefault("ai.steering_candidates", d.Steering.Candidates)
	v.SetDefault("ai.steering_min_clearance", d.Steering.MinClearance)
	v.SetDefault("ai.default_facing_left", d.DefaultFacingLeft)

	v.SetDefault("security.rate_limit_rps", 50)
	v.SetDefault("security.rate_limit_burst", 100)
	v.SetDefault("security.allowed_origins", []string{})
}

// Validate rejects settings the arena cannot run with.
func (c *Config) Validate() error {
	var errs []error
	a := c.AI
	if a.AttackRange < 0 || a.DetectionRange < 0 {
		errs = append(errs, errors.New("ai: ranges must not be negative"))
	}
	if a.AttackRange > a.DetectionRange {
		errs = append(errs, fmt.Errorf("ai: attack_range %.2f exceeds detection_range %.2f", a.AttackRange, a.DetectionRange))
	}
	if a.SteeringCandidates < 1 {
		errs = append(errs, errors.New("ai: steering_candidates must be at least 1"))
	}
	if len(a.AttackClips) != 2 {
		errs = append(errs, fmt.Errorf("ai: attack_clips needs exactly 2 names, got %d", len(a.AttackClips)))
	}
	for _, clip := range a.finiteClips() {
		if a.ClipDurations[clip] <= 0 {
			errs = append(errs, fmt.Errorf("ai: clip %q needs a positive clip_durations entry", clip))
		}
	}
	if c.Game.LogicTickMs <= 0 || c.Game.PhysicsTickMs <= 0 {
		errs = append(errs, errors.New("game: tick intervals must be positive"))
	}
	switch c.Database.Mode {
	case "memory", "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("database: unknown mode %q", c.Database.Mode))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// finiteClips are the clips the AI waits on to finish.
func (a AIConfig) finiteClips() []string {
	clips := append([]string{}, a.AttackClips...)
	clips = append(clips, a.HurtClip, a.DeathClip)
	out := clips[:0]
	for _, c := range clips {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// ToAIConfig converts the ai section into the behavior package's tunables.
func (c *Config) ToAIConfig() ai.Config {
	a := c.AI
	out := ai.DefaultConfig()
	out.AttackRange = a.AttackRange
	out.DetectionRange = a.DetectionRange
	out.AttackCooldown = a.AttackCooldown.Seconds()
	out.AttackDamage = a.AttackDamage
	out.MoveSpeed = a.MoveSpeed
	out.UsePathfinding = a.UsePathfinding
	out.Debug = a.Debug
	if len(a.AttackClips) == 2 {
		out.AttackClips = [2]string{a.AttackClips[0], a.AttackClips[1]}
	}
	out.HurtClip = a.HurtClip
	out.IdleClip = a.IdleClip
	out.RunClip = a.RunClip
	out.DeathClip = a.DeathClip
	out.MovementThreshold = a.MovementThreshold
	out.PerpendicularBand = a.PerpendicularBand
	out.HorizontalDeadzone = a.HorizontalDeadzone
	out.OscillationThreshold = a.OscillationThreshold
	out.OscillationWindow = a.OscillationWindow.Seconds()
	out.ShallowDiagonalX = a.ShallowDiagonalX
	out.HurtGrace = a.HurtGrace.Seconds()
	out.HurtTimeout = a.HurtTimeout.Seconds()
	out.DefaultFacingLeft = a.DefaultFacingLeft
	out.Steering = ai.SteeringConfig{
		RayLength:    a.SteeringRayLength,
		Candidates:   a.SteeringCandidates,
		MinClearance: a.SteeringMinClearance,
		Mask:         physics.LayerObstacle,
	}
	return out
}
