// Package sim provides an in-process mock of every collaborator interface
// the core consumes, grounded on
// Valkyrie/internal/simulation/interface.go's "mock simulator for unit
// tests" idea — without that file's simulator-backend machinery (X-Plane,
// JSBSim, Monte Carlo), which exists to drive an external flight sim this
// core has no equivalent of. No physics engine is reimplemented: State
// advances by feeding back the previous tick's Control, just enough to
// drive the orchestrator end to end for `cmd/stabilizer -sim` and
// integration tests.
package sim

import (
	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/model"
)

// Config tunes the mock's feedback gains.
type Config struct {
	ThrustToClimbRate float64 // m/s of climb per unit of (thrust - hover thrust)
	HoverThrust       float64
	Dt                float64
}

// DefaultConfig returns sane defaults for a 36000-unit hover thrust.
func DefaultConfig() Config {
	return Config{ThrustToClimbRate: 1.0 / 10000.0, HoverThrust: 36000, Dt: 0.002}
}

// Mock is a single value satisfying SensorSource, Estimator,
// ExternalPositionSource, and SituationAwareness, all backed by one owned
// State that advances from the previous Control.
type Mock struct {
	cfg        Config
	calibrated bool
	state      model.State
	sensors    collab.SensorData
}

// New constructs a Mock starting level at the origin, tiltcomp == 1.
func New(cfg Config) *Mock {
	return &Mock{
		cfg:        cfg,
		calibrated: true,
		state:      model.State{Tiltcomp: 1.0},
	}
}

// SetCalibrated overrides the calibration gate, for tests exercising the
// "spins on the delay primitive until calibrated" boot behavior (§7).
func (m *Mock) SetCalibrated(c bool) { m.calibrated = c }

// Calibrated implements collab.SensorSource.
func (m *Mock) Calibrated() bool { return m.calibrated }

// Acquire implements collab.SensorSource: derives a synthetic sensor
// snapshot from the current mock state.
func (m *Mock) Acquire(tick uint64) (collab.SensorData, error) {
	m.sensors = collab.SensorData{
		Accel:     m.state.Acceleration,
		Gyro:      model.Vector3{X: m.state.AngularVel.X, Y: m.state.AngularVel.Y, Z: m.state.AngularVel.Z},
		BaroAlt:   m.state.Position.Z,
		Timestamp: tick,
	}
	return m.sensors, nil
}

// Step implements the complementary-filter half of collab.Estimator: it
// returns the current mock State unchanged; only Update advances it.
func (m *Mock) Step(sensors collab.SensorData, tick uint64) (model.State, error) {
	return m.state, nil
}

// Update implements the Kalman half of collab.Estimator, advancing State
// from the previous tick's Control. motorCmds is accepted to satisfy the
// interface and is not used.
func (m *Mock) Update(sensors collab.SensorData, prevControl model.Control, motorCmds [4]float64) (model.State, error) {
	climbRate := (prevControl.Thrust - m.cfg.HoverThrust) * m.cfg.ThrustToClimbRate
	m.state.Velocity.Z = climbRate
	m.state.Position.Z += climbRate * m.cfg.Dt
	m.state.Attitude.Roll += float64(prevControl.Roll) * 0.00001
	m.state.Attitude.Pitch += float64(prevControl.Pitch) * 0.00001
	m.state.Attitude.Yaw = model.WrapDegrees(m.state.Attitude.Yaw - float64(prevControl.Yaw)*0.00001)
	m.state.Tiltcomp = 1.0
	return m.state, nil
}

// Get implements collab.ExternalPositionSource: the mock never overlays an
// external fix, so it always reports "no overlay available."
func (m *Mock) Get(state model.State) (model.Vector3, bool) {
	return model.Vector3{}, false
}

// UpdateSetpoint implements collab.SituationAwareness as a no-op: the mock
// never overrides the commanded setpoint.
func (m *Mock) UpdateSetpoint(sp model.Setpoint, sensors collab.SensorData, state model.State) model.Setpoint {
	return sp
}

// InjectFailsafe forces state.Failsafe true on the next Acquire/Update
// cycle, for driving the descent state machine in integration tests.
func (m *Mock) InjectFailsafe() {
	m.state.Failsafe = true
}

// State returns the mock's current owned state, for test assertions.
func (m *Mock) State() model.State { return m.state }
