// Package safety implements the emergency-stop gate of §4.5: a countdown
// latch that, once tripped, forces the actuation stage to bypass normal
// distribution and stop all motors regardless of any other input (I5, P7).
package safety

import (
	"github.com/sirupsen/logrus"

	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/model"
)

// Gate owns the emergency-stop countdown and latch, and applies it at the
// actuation boundary.
type Gate struct {
	distributor collab.PowerDistributor
	logger      *logrus.Logger

	timeout int64 // main-loop ticks remaining; < 0 means disarmed
	latched bool
}

// NewGate constructs a disarmed Gate (timeout negative, not latched).
func NewGate(distributor collab.PowerDistributor, logger *logrus.Logger) *Gate {
	if logger == nil {
		logger = logrus.New()
	}
	return &Gate{distributor: distributor, logger: logger, timeout: -1}
}

// Latched reports whether the emergency stop is currently engaged.
func (g *Gate) Latched() bool { return g.latched }

// SetTimeout arms a countdown of n main-loop ticks; reaching 0 latches the
// stop. Setting a timeout also clears any existing latch (§4.5: "may set the
// timeout, which also clears the latch").
func (g *Gate) SetTimeout(n int64) {
	g.timeout = n
	g.latched = false
}

// Set immediately latches the emergency stop, bypassing the countdown.
func (g *Gate) Set() {
	g.latched = true
}

// Clear lifts the latch and disarms the countdown. Together with SetTimeout
// (which also lifts the latch) it is the only way to recover from a latched
// emergency stop (§7, §9's open-question decision: no automatic recovery).
func (g *Gate) Clear() {
	g.latched = false
	g.timeout = -1
}

// Tick decrements the armed countdown once per main-loop iteration; call
// exactly once per tick before Apply. Reaching exactly 0 latches the stop.
func (g *Gate) Tick() {
	if g.timeout < 0 {
		return
	}
	g.timeout--
	if g.timeout == 0 {
		g.latched = true
		g.logger.Warn("emergency stop timeout elapsed, latching")
	}
}

// Apply runs the actuation stage: on a latched stop, Control is zeroed and
// the distributor is told to stop all motors instead of distributing the
// cascaded controller's output (I5, P7). Returns the realized motor
// commands either way.
func (g *Gate) Apply(c *model.Control) [4]float64 {
	if g.latched {
		c.Zero()
		return g.distributor.Stop()
	}
	return g.distributor.Distribute(*c)
}
