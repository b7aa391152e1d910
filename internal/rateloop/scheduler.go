// Package rateloop implements the main-loop tick counter and the rate
// divider predicate that gates the attitude and position stages.
package rateloop

import "github.com/arobi/stabilizer/internal/model"

// Scheduler owns the monotonic tick counter for one flight. Initial tick is
// 1, not 0, so a sub-rate only fires on the first loop iteration if its
// divisor divides 1 — effectively never, except for main itself. This keeps
// the position loop from firing against an uninitialized estimator.
type Scheduler struct {
	cfg  model.RateLoopConfig
	tick uint64
}

// New constructs a Scheduler for the given rate configuration.
func New(cfg model.RateLoopConfig) *Scheduler {
	return &Scheduler{cfg: cfg, tick: 1}
}

// Tick returns the current tick index.
func (s *Scheduler) Tick() uint64 { return s.tick }

// Config returns the rate configuration the scheduler was built with.
func (s *Scheduler) Config() model.RateLoopConfig { return s.cfg }

// ShouldRunAttitude reports whether the attitude stage fires this tick.
func (s *Scheduler) ShouldRunAttitude() bool {
	return ShouldRun(uint64(s.cfg.AttitudeDivisor()), s.tick)
}

// ShouldRunPosition reports whether the position stage fires this tick.
func (s *Scheduler) ShouldRunPosition() bool {
	return ShouldRun(uint64(s.cfg.PositionDivisor()), s.tick)
}

// Advance increments the tick counter. Call exactly once per main-loop
// iteration, after actuation.
func (s *Scheduler) Advance() {
	s.tick++
}

// ShouldRun is the purely functional rate-divider predicate: true iff tick is
// divisible by the divisor (main_hz / sub_rate_hz).
func ShouldRun(divisor, tick uint64) bool {
	if divisor == 0 {
		return false
	}
	return tick%divisor == 0
}
