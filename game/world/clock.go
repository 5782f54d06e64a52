package world

// Clock is the arena's game time in seconds. It only moves when the physics step
// advances it, so every timer in the AI runs on simulated time.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64 { return c.now }

// Advance moves time forward by dt seconds. Negative steps are ignored.
func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}
