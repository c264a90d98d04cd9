package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock stamps generated pages and summaries. Tests and the validator freeze
// it so repeated runs produce byte-identical output.
var clock = clockwork.NewRealClock()

// SetClock swaps the generation time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current generation time in UTC.
func Now() time.Time {
	return clock.Now().UTC()
}
