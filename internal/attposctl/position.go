package attposctl

import (
	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/pidctl"
)

// PositionGains configures the position/velocity outer loop's three axes,
// plus the thrust PID that converts altitude error into actuator thrust.
type PositionGains struct {
	X, Y     pidctl.Config // produce desired roll/pitch tilt (degrees)
	Thrust   pidctl.Config // Z axis, produces actuatorThrust
	BaseThrust float64     // hover feed-forward, raw-thrust units
	Dt       float64
}

// Position is the default PositionController: a simple cascaded P loop on
// X/Y producing attitude tilt, and a PID on Z producing thrust.
type Position struct {
	cfg PositionGains

	x, y, z *pidctl.PID
}

// NewPosition constructs a Position controller from the given gains.
func NewPosition(cfg PositionGains) *Position {
	return &Position{
		cfg: cfg,
		x:   pidctl.New(cfg.X),
		y:   pidctl.New(cfg.Y),
		z:   pidctl.New(cfg.Thrust),
	}
}

// Step runs the absolute-position outer loop.
func (p *Position) Step(sp model.Setpoint, state model.State) collab.PositionControllerOutput {
	pitchTilt := p.x.Update(sp.Position.X, state.Position.X, p.cfg.Dt)
	rollTilt := -p.y.Update(sp.Position.Y, state.Position.Y, p.cfg.Dt)
	thrust := p.cfg.BaseThrust + p.z.Update(sp.Position.Z, state.Position.Z, p.cfg.Dt)

	return collab.PositionControllerOutput{
		ActuatorThrust:  model.Clamp(thrust, 0, model.ThrustMax),
		AttitudeDesired: model.Attitude{Roll: rollTilt, Pitch: pitchTilt},
	}
}

// StepVelocity runs the velocity-reference outer loop.
func (p *Position) StepVelocity(sp model.Setpoint, state model.State) collab.PositionControllerOutput {
	pitchTilt := p.x.Update(sp.Velocity.X, state.Velocity.X, p.cfg.Dt)
	rollTilt := -p.y.Update(sp.Velocity.Y, state.Velocity.Y, p.cfg.Dt)
	thrust := p.cfg.BaseThrust + p.z.Update(sp.Velocity.Z, state.Velocity.Z, p.cfg.Dt)

	return collab.PositionControllerOutput{
		ActuatorThrust:  model.Clamp(thrust, 0, model.ThrustMax),
		AttitudeDesired: model.Attitude{Roll: rollTilt, Pitch: pitchTilt},
	}
}

// ResetAll clears every axis' PID integrator — called on thrust-zero (I4).
func (p *Position) ResetAll() {
	p.x.Reset()
	p.y.Reset()
	p.z.Reset()
}
