// Package failsafe implements the three-state descent state machine of
// §4.4: IDLE -> ACTIVE -> TERMINATED. Lifted out of the orchestrator's
// flag-checking into one owned value with a single tick entry point, per
// §9's design note.
package failsafe

import (
	"github.com/sirupsen/logrus"

	"github.com/arobi/stabilizer/internal/model"
)

// State is the descent state machine's state.
type State int

const (
	IDLE State = iota
	ACTIVE
	TERMINATED
)

func (s State) String() string {
	switch s {
	case IDLE:
		return "idle"
	case ACTIVE:
		return "active"
	case TERMINATED:
		return "terminated"
	default:
		return "unknown"
	}
}

// Output is what one ACTIVE tick produces for the orchestrator to apply.
type Output struct {
	AttitudeDesired model.Attitude
	ActuatorThrust  float64
	// DisableXYZ is true once TERMINATED: the orchestrator must force
	// mode.{x,y,z} := Disabled.
	DisableXYZ bool
}

// Descent owns the latch and landing-tick counter. Once ACTIVE, it stays
// ACTIVE until TERMINATED regardless of further state.Failsafe readings
// (I6, P4): re-arming requires an external Reset (emergency-stop recovery).
type Descent struct {
	cfg        model.FailsafeConfig
	positionHz float64
	state      State
	ticks      uint64
	logger     *logrus.Logger
}

// New constructs a Descent state machine in IDLE. positionHz is the
// position-stage rate, used to convert LandingTimeS into a tick budget.
func New(cfg model.FailsafeConfig, positionHz int, logger *logrus.Logger) *Descent {
	if logger == nil {
		logger = logrus.New()
	}
	return &Descent{cfg: cfg, positionHz: float64(positionHz), logger: logger}
}

// State returns the current state.
func (d *Descent) State() State { return d.state }

// Active reports whether activateFailsafe should read true this tick: once
// latched ACTIVE (or TERMINATED), it stays latched (P4).
func (d *Descent) Active() bool {
	return d.state == ACTIVE || d.state == TERMINATED
}

// Engage transitions IDLE -> ACTIVE. Calling it while already ACTIVE or
// TERMINATED is a no-op — the latch never re-arms itself (I6).
func (d *Descent) Engage() {
	if d.state != IDLE {
		return
	}
	d.state = ACTIVE
	d.ticks = 0
	d.logger.Warn("failsafe descent engaged")
}

// Tick runs one position-rate step of the ACTIVE descent. currentThrust is
// the Control.Thrust value from the previous projection (used only for the
// thrust_step comparison, matching the source's "computed but never
// assigned back" decreasedThrust quirk — see below).
func (d *Descent) Tick(currentThrust float64) Output {
	if d.state != ACTIVE {
		return Output{}
	}

	out := Output{
		AttitudeDesired: model.Attitude{Roll: d.cfg.RollBase, Pitch: d.cfg.PitchBase},
	}

	// The counter reflects the number of ACTIVE ticks elapsed including
	// this one, so the Nth tick's own decision can terminate on exactly
	// the Nth tick (matches the landing-time budget in position-rate
	// ticks: at landing_time_s * position_hz + 1 the descent ends).
	d.ticks++

	// NOTE (preserved source quirk, flagged open question in spec §9):
	// decreased is computed and compared against zero to decide
	// termination, but is never assigned back into the thrust output.
	// The descent therefore holds at LandingThrust for its entire
	// duration instead of ramping down; this looks like a bug in the
	// original firmware but the spec asks to preserve it verbatim rather
	// than "fix" it here.
	decreased := currentThrust - d.cfg.ThrustStep

	maxTicks := uint64(d.cfg.LandingTimeS * d.positionHz)
	if decreased < 0 || (maxTicks > 0 && d.ticks > maxTicks) {
		d.state = TERMINATED
		out.ActuatorThrust = 0
		out.DisableXYZ = true
		d.logger.WithField("ticks", d.ticks).Warn("failsafe descent terminated")
		return out
	}

	out.ActuatorThrust = d.cfg.LandingThrust
	return out
}

// Reset re-arms the latch from TERMINATED back to IDLE. Per (I6) and §9's
// open question, this must only ever be called as part of an explicit
// emergency-stop reset — the descent never re-arms itself.
func (d *Descent) Reset() {
	d.state = IDLE
	d.ticks = 0
}

// LandingThrust returns the currently configured descent thrust (§6's
// controller.landingThrust parameter).
func (d *Descent) LandingThrust() float64 { return d.cfg.LandingThrust }

// SetLandingThrust updates the descent thrust at runtime, matching the
// original firmware's PARAM_ADD(PARAM_FLOAT, landingThrust, ...) surface.
func (d *Descent) SetLandingThrust(v float64) { d.cfg.LandingThrust = v }

// LandingTimeS returns the currently configured landing-time budget in
// seconds (§6's controller.landingTime parameter).
func (d *Descent) LandingTimeS() float64 { return d.cfg.LandingTimeS }

// SetLandingTimeS updates the landing-time budget at runtime.
func (d *Descent) SetLandingTimeS(v float64) { d.cfg.LandingTimeS = v }
