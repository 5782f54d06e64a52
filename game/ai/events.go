package ai

import "github.com/kasuganosora/enemyai/game/physics"

// EventKind names a notable decision the agent made.
type EventKind string

const (
	EventAttack      EventKind = "attack"
	EventOscillation EventKind = "oscillation"
	EventHurt        EventKind = "hurt"
	EventHurtTimeout EventKind = "hurt_timeout"
	EventDeath       EventKind = "death"
)

// Event is reported to the agent's EventSink. At is game-clock seconds.
type Event struct {
	Kind     EventKind
	At       float64
	Position physics.Vec2
	Damage   int
	Clip     string
}

// EventSink receives agent events. Implementations must not block the tick.
type EventSink interface {
	Record(ev Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) Record(ev Event) { f(ev) }

func (ctx *Context) emit(ev Event) {
	if ctx.Events == nil {
		return
	}
	ev.At = ctx.now()
	if pos, ok := ctx.selfPosition(); ok {
		ev.Position = pos
	}
	ctx.Events.Record(ev)
}
