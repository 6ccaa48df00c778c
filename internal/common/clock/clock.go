package clock

import "time"

// Clock supplies the current time. Lifecycle sweeps and revenue cutoffs
// depend on "now", so it is injected rather than read from the wall clock
// directly, letting tests pin a fixed instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// System returns a Clock backed by the wall clock, normalized to UTC.
func System() Clock { return systemClock{} }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock { return fixedClock{t: t.UTC()} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
