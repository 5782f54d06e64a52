package ai

import (
	"math/rand"
	"testing"

	"github.com/kasuganosora/enemyai/game/physics"
	"go.uber.org/zap"
)

type fakeClock struct{ t float64 }

func (c *fakeClock) Now() float64 { return c.t }

type fakeBody struct {
	pos       physics.Vec2
	flip      bool
	flipCalls int
}

func (b *fakeBody) Position() physics.Vec2 { return b.pos }
func (b *fakeBody) SetFlipX(flip bool)     { b.flip = flip; b.flipCalls++ }

type fakeTarget struct {
	pos    physics.Vec2
	id     physics.ColliderID
	damage []int
}

func (t *fakeTarget) Position() physics.Vec2          { return t.pos }
func (t *fakeTarget) ColliderID() physics.ColliderID { return t.id }
func (t *fakeTarget) TakeDamage(amount int)           { t.damage = append(t.damage, amount) }

// fakePlayer plays one clip at a time; clips run until finish is called.
type fakePlayer struct {
	active   string
	finished map[string]bool
	played   []string
}

func newFakePlayer() *fakePlayer { return &fakePlayer{finished: map[string]bool{}} }

func (p *fakePlayer) Play(clip string) {
	p.active = clip
	p.finished[clip] = false
	p.played = append(p.played, clip)
}

func (p *fakePlayer) IsClipActiveAndUnfinished(clip string) bool {
	return p.active == clip && !p.finished[clip]
}

func (p *fakePlayer) CurrentNormalizedTime(clip string) float64 {
	if p.active == clip && p.finished[clip] {
		return 1
	}
	return 0
}

func (p *fakePlayer) finish(clip string) { p.finished[clip] = true }

// scriptedSteerer returns its directions in a loop and treats blocked() directions as obstructed.
type scriptedSteerer struct {
	dirs    []physics.Vec2
	i       int
	blocked func(dir physics.Vec2) bool
}

func (s *scriptedSteerer) IsPathClear(_, dir physics.Vec2) bool {
	return s.blocked == nil || !s.blocked(dir)
}

func (s *scriptedSteerer) DirectionToTarget(_, _ physics.Vec2) physics.Vec2 {
	if len(s.dirs) == 0 {
		return physics.Vec2{}
	}
	d := s.dirs[s.i%len(s.dirs)]
	s.i++
	return d
}

type recordedEvents struct{ events []Event }

func (r *recordedEvents) Record(ev Event) { r.events = append(r.events, ev) }

func (r *recordedEvents) count(kind EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

type harness struct {
	ctx    *Context
	body   *fakeBody
	target *fakeTarget
	clock  *fakeClock
	player *fakePlayer
	events *recordedEvents
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.UsePathfinding = false
	h := &harness{
		body:   &fakeBody{},
		target: &fakeTarget{pos: physics.V(10, 0), id: 7},
		clock:  &fakeClock{},
		player: newFakePlayer(),
		events: &recordedEvents{},
	}
	ctx := NewContext(cfg, zap.NewNop())
	ctx.Self = h.body
	ctx.Target = h.target
	ctx.Clock = h.clock
	ctx.Animation = NewAnimationGate(h.player, cfg, zap.NewNop())
	ctx.Events = h.events
	ctx.Rand = rand.New(rand.NewSource(1))
	h.ctx = ctx
	return h
}

// countingLeaf returns a fixed status and counts how often it ran.
func countingLeaf(status Status, calls *int) Node {
	return &ActionNode{Name: status.String(), Fn: func(*Context) Status {
		*calls++
		return status
	}}
}
