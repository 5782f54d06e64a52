package ai

import "go.uber.org/zap"

// AnimationPlayer is the external clip player. The AI only asks for clips by name and
// polls whether they finished.
type AnimationPlayer interface {
	Play(clip string)
	IsClipActiveAndUnfinished(clip string) bool
	CurrentNormalizedTime(clip string) float64
}

// HurtWait is the result of one poll of the hurt-animation wait.
type HurtWait int

const (
	// HurtWaiting: still inside the grace delay, or the clip has not started yet.
	HurtWaiting HurtWait = iota
	// HurtPlaying: the hurt clip is active and unfinished.
	HurtPlaying
	// HurtDone: the hurt clip finished.
	HurtDone
	// HurtTimedOut: the hurt clip never became active; treated as done.
	HurtTimedOut
)

func (w HurtWait) String() string {
	switch w {
	case HurtWaiting:
		return "waiting"
	case HurtPlaying:
		return "playing"
	case HurtDone:
		return "done"
	case HurtTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Finished reports whether the wait is over, either normally or by timeout.
func (w HurtWait) Finished() bool { return w == HurtDone || w == HurtTimedOut }

// AnimationGate records which clip the agent last requested and answers "is it still
// playing" questions against the external player. One gate per agent.
type AnimationGate struct {
	player      AnimationPlayer
	current     string
	attackClips [2]string
	hurtClip    string
	hurtGrace   float64
	hurtTimeout float64
	hurtSeen    bool
	logger      *zap.Logger
}

// NewAnimationGate creates a gate over player using the clip names and hurt timings in cfg.
func NewAnimationGate(player AnimationPlayer, cfg Config, logger *zap.Logger) *AnimationGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnimationGate{
		player:      player,
		attackClips: cfg.AttackClips,
		hurtClip:    cfg.HurtClip,
		hurtGrace:   cfg.HurtGrace,
		hurtTimeout: cfg.HurtTimeout,
		logger:      logger,
	}
}

// Current returns the clip name last passed to Play.
func (g *AnimationGate) Current() string { return g.current }

// Play records name as current and asks the player to start it.
func (g *AnimationGate) Play(name string) {
	g.current = name
	if g.player != nil {
		g.player.Play(name)
	}
}

// IsPlaying reports whether name is the active clip and has not finished.
func (g *AnimationGate) IsPlaying(name string) bool {
	if g.player == nil || name == "" {
		return false
	}
	return g.player.IsClipActiveAndUnfinished(name)
}

// IsAttackAnimationPlaying checks both attack clips.
func (g *AnimationGate) IsAttackAnimationPlaying() bool {
	return g.IsPlaying(g.attackClips[0]) || g.IsPlaying(g.attackClips[1])
}

// PlayHurt restarts the hurt clip and the wait bookkeeping.
func (g *AnimationGate) PlayHurt() {
	g.hurtSeen = false
	g.Play(g.hurtClip)
}

// PollHurt advances the hurt wait that started at start. It never blocks: callers poll it
// once per tick until the result is Finished. A clip that never becomes active ends the
// wait after the timeout so a missing resource cannot stall the agent.
func (g *AnimationGate) PollHurt(start, now float64) HurtWait {
	elapsed := now - start
	if elapsed < g.hurtGrace {
		return HurtWaiting
	}
	if g.IsPlaying(g.hurtClip) {
		g.hurtSeen = true
		return HurtPlaying
	}
	if g.hurtSeen || g.hurtClipCompleted() {
		g.clearHurt()
		return HurtDone
	}
	if elapsed >= g.hurtTimeout {
		g.logger.Warn("hurt animation never became active, continuing",
			zap.String("clip", g.hurtClip),
			zap.Float64("waited_s", elapsed))
		g.clearHurt()
		return HurtTimedOut
	}
	return HurtWaiting
}

func (g *AnimationGate) hurtClipCompleted() bool {
	if g.player == nil || g.current != g.hurtClip {
		return false
	}
	return g.player.CurrentNormalizedTime(g.hurtClip) >= 1
}

func (g *AnimationGate) clearHurt() {
	g.hurtSeen = false
	if g.current == g.hurtClip {
		g.current = ""
	}
}
