// Package pidctl implements a small, dependency-free PID controller used by
// the default position/attitude/rate sub-controllers. Gains are accepted as
// configuration; this package does not auto-tune them.
package pidctl

import "sync"

// Config holds the tunable gains and output/integrator limits for one PID
// loop instance.
type Config struct {
	Kp, Ki, Kd float64
	// IntegratorLimit clamps the accumulated integral term (anti-windup).
	// Zero means unbounded.
	IntegratorLimit float64
	// OutputLimit clamps the final output. Zero means unbounded.
	OutputLimit float64
}

// PID is a single-axis, discrete-time PID controller with anti-windup
// clamping on the integral term.
type PID struct {
	mu sync.Mutex

	cfg Config

	integrator   float64
	prevError    float64
	hasPrevError bool
}

// New constructs a PID controller with the given configuration.
func New(cfg Config) *PID {
	return &PID{cfg: cfg}
}

// SetConfig replaces the gains/limits without resetting integrator state.
func (p *PID) SetConfig(cfg Config) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg = cfg
}

// Update runs one discrete step: error = desired - measured, dt in seconds.
// Returns the controller output.
func (p *PID) Update(desired, measured, dt float64) float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := desired - measured

	p.integrator += p.cfg.Ki * err * dt
	if p.cfg.IntegratorLimit > 0 {
		p.integrator = clamp(p.integrator, -p.cfg.IntegratorLimit, p.cfg.IntegratorLimit)
	}

	var deriv float64
	if p.hasPrevError && dt > 0 {
		deriv = (err - p.prevError) / dt
	}
	p.prevError = err
	p.hasPrevError = true

	out := p.cfg.Kp*err + p.integrator + p.cfg.Kd*deriv
	if p.cfg.OutputLimit > 0 {
		out = clamp(out, -p.cfg.OutputLimit, p.cfg.OutputLimit)
	}
	return out
}

// Reset clears the integrator and derivative history. Through the
// sub-controllers, the orchestrator triggers it on thrust-zero (I4) for every
// loop, and for the outer roll/pitch loop on each attitude tick in which that
// axis is in Velocity mode.
func (p *PID) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.integrator = 0
	p.prevError = 0
	p.hasPrevError = false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
