// Package clock provides the injectable monotonic clock the decoder
// reads for the §4.5 200 ms EnsembleUpdated rate limit, so tests can
// drive it deterministically instead of racing real wall-clock time.
package clock

import "time"

// Clock reports the current time in milliseconds since an unspecified
// epoch. Only differences between calls are meaningful.
type Clock interface {
	NowMillis() int64
}

// realClock wraps time.Now for production use.
type realClock struct{}

func (realClock) NowMillis() int64 { return time.Now().UnixMilli() }

// Real returns the production clock backed by time.Now.
func Real() Clock { return realClock{} }

// Manual is a Clock a test can advance by hand.
type Manual struct {
	millis int64
}

// NewManual creates a Manual clock starting at startMillis.
func NewManual(startMillis int64) *Manual {
	return &Manual{millis: startMillis}
}

// NowMillis returns the current simulated time.
func (m *Manual) NowMillis() int64 { return m.millis }

// Advance moves the simulated clock forward by ms milliseconds.
func (m *Manual) Advance(ms int64) { m.millis += ms }
