// Package orchestrator wires the rate scheduler, setpoint resolver, position
// and attitude sub-controllers, and the failsafe descent machine into the
// cascaded pipeline of §4.3: the hard part of the core. One Core value is
// constructed at task start and driven once per main-loop tick; it owns no
// goroutines and performs no I/O, matching the "no suspension inside the
// controller pipeline" constraint of §5.
package orchestrator

import (
	"github.com/sirupsen/logrus"

	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/failsafe"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/rateloop"
	"github.com/arobi/stabilizer/internal/setpoint"
)

// Config is the orchestrator's own tunables, separate from the rate
// divisors (owned by the scheduler) and the sub-controller gains (owned by
// whoever constructs them).
type Config struct {
	TiltCompEnabled bool
}

// Core is the single owned value the design notes in §9 call for: no
// process-wide statics, every piece of mutable pipeline state lives here or
// inside the sub-controllers it drives.
type Core struct {
	cfg       Config
	scheduler *rateloop.Scheduler
	resolver  *setpoint.Resolver
	descent   *failsafe.Descent
	position  collab.PositionController
	attitude  collab.AttitudeController
	logger    *logrus.Logger

	attitudeDesired model.Attitude
	rateDesired     collab.RatePID
	actuatorThrust  float64
	control         model.Control

	// forceDisableXYZ latches once the descent machine disables all three
	// position axes on termination (§4.4); it is sticky across ticks until
	// an external emergency-stop reset clears it via Reset.
	forceDisableXYZ bool
}

// New constructs a Core. dt is the attitude-stage sample period (1/attitude_hz)
// passed through to attitude.Init.
func New(cfg Config, scheduler *rateloop.Scheduler, resolver *setpoint.Resolver, descent *failsafe.Descent, position collab.PositionController, attitude collab.AttitudeController, dt float64, logger *logrus.Logger) *Core {
	if logger == nil {
		logger = logrus.New()
	}
	attitude.Init(dt)
	return &Core{
		cfg:       cfg,
		scheduler: scheduler,
		resolver:  resolver,
		descent:   descent,
		position:  position,
		attitude:  attitude,
		logger:    logger,
	}
}

// ActivateFailsafe reports whether the descent machine currently owns the
// controller (§4.4, P4): true from the tick the latch engages until
// termination and reset.
func (c *Core) ActivateFailsafe() bool {
	return c.descent.Active()
}

// AttitudeDesired returns the attitude reference the position/resolver
// stages last produced, for the telemetry surface (§6).
func (c *Core) AttitudeDesired() model.Attitude {
	return c.attitudeDesired
}

// RateDesired returns the per-axis rate reference the attitude stage last
// produced, for the telemetry surface (§6).
func (c *Core) RateDesired() collab.RatePID {
	return c.rateDesired
}

// ActuatorThrust returns the pre-tilt-compensation thrust reference the
// position (or failsafe) stage last produced, for the telemetry surface (§6).
func (c *Core) ActuatorThrust() float64 {
	return c.actuatorThrust
}

// Tick runs one main-loop iteration's worth of cascaded control and returns
// the resulting Control vector. The caller is responsible for the emergency
// gate, actuation, and advancing the scheduler afterward (§5's stage
// ordering keeps those outside this package).
func (c *Core) Tick(sp model.Setpoint, state model.State) model.Control {
	mode := sp.Mode
	if c.forceDisableXYZ {
		mode.X, mode.Y, mode.Z = model.Disabled, model.Disabled, model.Disabled
	}

	if c.scheduler.ShouldRunPosition() {
		c.runPositionStage(mode, sp, state)
	}

	if c.scheduler.ShouldRunAttitude() {
		c.runAttitudeStage(mode, sp, state)
	}

	c.projectThrust(mode, sp, state)

	return c.control
}

func (c *Core) runPositionStage(mode model.AxisModes, sp model.Setpoint, state model.State) {
	switch mode.Z {
	case model.Absolute:
		if state.Failsafe {
			c.descent.Engage()
		}
		if c.descent.Active() {
			out := c.descent.Tick(c.control.Thrust)
			c.attitudeDesired.Roll = out.AttitudeDesired.Roll
			c.attitudeDesired.Pitch = out.AttitudeDesired.Pitch
			c.actuatorThrust = out.ActuatorThrust
			if out.DisableXYZ {
				c.forceDisableXYZ = true
				c.logger.Warn("failsafe descent disabled position axes")
			}
			return
		}
		out := c.position.Step(sp, state)
		c.actuatorThrust = out.ActuatorThrust
		c.attitudeDesired.Roll = out.AttitudeDesired.Roll
		c.attitudeDesired.Pitch = out.AttitudeDesired.Pitch
	case model.Velocity:
		out := c.position.StepVelocity(sp, state)
		c.actuatorThrust = out.ActuatorThrust
		c.attitudeDesired.Roll = out.AttitudeDesired.Roll
		c.attitudeDesired.Pitch = out.AttitudeDesired.Pitch
	case model.Disabled:
		// Thrust comes from the raw setpoint at the projection stage (I3);
		// nothing to do here.
	}
}

func (c *Core) runAttitudeStage(mode model.AxisModes, sp model.Setpoint, state model.State) {
	spWithMode := sp
	spWithMode.Mode = mode
	c.attitudeDesired = c.resolver.Resolve(spWithMode, c.attitudeDesired)

	rateDesired := c.attitude.CorrectAttitudePID(state.Attitude, c.attitudeDesired)

	if mode.Roll == model.Velocity {
		rateDesired.Roll = sp.AttitudeRate.Roll
		c.attitude.ResetRollAttitudePID()
	}
	if mode.Pitch == model.Velocity {
		rateDesired.Pitch = sp.AttitudeRate.Pitch
		c.attitude.ResetPitchAttitudePID()
	}

	// Gyro-pitch sign inversion: body-frame positive pitch-rate disagrees
	// with positive nose-up (§4.3, §9). Load-bearing; do not move this into
	// the sub-controller.
	measured := collab.RatePID{
		Roll:  state.AngularVel.X,
		Pitch: -state.AngularVel.Y,
		Yaw:   state.AngularVel.Z,
	}
	c.attitude.CorrectRatePID(measured, rateDesired)
	c.rateDesired = rateDesired

	roll, pitch, yaw := c.attitude.GetActuatorOutput()
	c.control.Roll = roll
	c.control.Pitch = pitch
	c.control.Yaw = -yaw // actuator yaw convention
}

func (c *Core) projectThrust(mode model.AxisModes, sp model.Setpoint, state model.State) {
	actuatorThrust := c.actuatorThrust
	if mode.Z == model.Disabled {
		actuatorThrust = float64(sp.Thrust)
	}

	if c.cfg.TiltCompEnabled {
		tiltcomp := state.Tiltcomp
		if tiltcomp < model.Epsilon {
			tiltcomp = model.Epsilon
		}
		c.control.Thrust = model.Clamp(actuatorThrust/tiltcomp, 0, model.ThrustMax)
	} else {
		c.control.Thrust = model.Clamp(actuatorThrust, 0, model.ThrustMax)
	}

	if c.control.IsZeroThrust() {
		c.control.Zero()
		c.position.ResetAll()
		c.attitude.ResetAll()
		c.resolver.SnapYaw(state.Attitude.Yaw)
		c.attitudeDesired.Yaw = state.Attitude.Yaw
	}
}

// Reset re-arms the orchestrator's sticky failsafe-disable latch. Must only
// be called as part of an external emergency-stop reset (I6).
func (c *Core) Reset() {
	c.forceDisableXYZ = false
	c.descent.Reset()
}
