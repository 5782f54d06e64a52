package world

import "time"

// ClipPlayer simulates a sprite animator: one clip at a time, each with a fixed length
// on the game clock. Clips without a known length loop and never finish.
type ClipPlayer struct {
	clock     *Clock
	durations map[string]float64
	clip      string
	startedAt float64
}

// NewClipPlayer creates a player reading time from clock.
func NewClipPlayer(clock *Clock, durations map[string]float64) *ClipPlayer {
	return &ClipPlayer{clock: clock, durations: durations}
}

func clipSeconds(in map[string]time.Duration) map[string]float64 {
	out := make(map[string]float64, len(in))
	for name, d := range in {
		out[name] = d.Seconds()
	}
	return out
}

// Play restarts the player on clip.
func (p *ClipPlayer) Play(clip string) {
	p.clip = clip
	p.startedAt = p.clock.Now()
}

// Clip is the clip currently loaded.
func (p *ClipPlayer) Clip() string { return p.clip }

func (p *ClipPlayer) IsClipActiveAndUnfinished(clip string) bool {
	if clip == "" || clip != p.clip {
		return false
	}
	d := p.durations[clip]
	return d <= 0 || p.clock.Now()-p.startedAt < d
}

// CurrentNormalizedTime is elapsed/length for the loaded clip. It keeps growing past 1
// once the clip has finished, and is 0 for looping or inactive clips.
func (p *ClipPlayer) CurrentNormalizedTime(clip string) float64 {
	if clip != p.clip {
		return 0
	}
	d := p.durations[clip]
	if d <= 0 {
		return 0
	}
	return (p.clock.Now() - p.startedAt) / d
}
