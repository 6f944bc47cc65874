package sync

import "time"

// Clock abstracts wall time so tests can freeze modification stamps
// and backoff deadlines. Production uses SystemClock;
// testutil.Clock implements the same interface.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock reads the real wall clock.
var SystemClock Clock = systemClock{}
