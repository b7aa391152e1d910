// Package collab defines the collaborator contracts the stabilization core
// consumes (§6). These are the boundary to everything explicitly out of
// scope: sensor acquisition, state estimation, command-link reception, and
// power distribution. Concrete adapters live alongside this file; the core
// itself only ever depends on the interfaces.
package collab

import "github.com/arobi/stabilizer/internal/model"

// SensorSource acquires raw sensor data and gates entry into the control
// loop until calibration completes.
type SensorSource interface {
	Acquire(tick uint64) (SensorData, error)
	Calibrated() bool
}

// SensorData is the per-tick raw sensor snapshot. Its internal shape is an
// external concern (estimator input); the core only forwards it.
type SensorData struct {
	Accel     model.Vector3
	Gyro      model.Vector3
	Mag       model.Vector3
	BaroAlt   float64
	Timestamp uint64
}

// Estimator updates the fused State from the latest sensor snapshot and
// control history. Only one of the two methods is used depending on the
// build-time estimator choice (complementary vs. Kalman); both are declared
// so either adapter satisfies the interface set the core depends on.
type Estimator interface {
	// Step runs a complementary-filter style update.
	Step(sensors SensorData, tick uint64) (model.State, error)
	// Update runs a Kalman-style update that also consumes the previous
	// control output and realized motor commands.
	Update(sensors SensorData, prevControl model.Control, motorCmds [4]float64) (model.State, error)
}

// ExternalPositionSource overlays an externally supplied position (e.g.
// motion capture) onto the fused state.
type ExternalPositionSource interface {
	Get(state model.State) (model.Vector3, bool)
}

// Commander yields the currently active setpoint, degrading modes toward
// safe defaults on command-link timeout.
type Commander interface {
	GetSetpoint(state model.State) (model.Setpoint, error)
}

// SituationAwareness may override the setpoint on detected conditions (e.g.
// vehicle tumble).
type SituationAwareness interface {
	UpdateSetpoint(sp model.Setpoint, sensors SensorData, state model.State) model.Setpoint
}

// PositionControllerOutput is the result of one position-stage evaluation.
type PositionControllerOutput struct {
	ActuatorThrust  float64
	AttitudeDesired model.Attitude
}

// PositionController runs the slow outer loop (absolute position or
// velocity reference) and produces a thrust/attitude reference for the
// attitude stage.
type PositionController interface {
	Step(sp model.Setpoint, state model.State) PositionControllerOutput
	StepVelocity(sp model.Setpoint, state model.State) PositionControllerOutput
	ResetAll()
}

// RatePID is the (roll, pitch, yaw) triple used at the attitude/rate
// boundary.
type RatePID struct {
	Roll, Pitch, Yaw float64
}

// AttitudeController runs the medium-rate outer attitude P/PI loop and the
// fast inner rate PID loop.
type AttitudeController interface {
	Init(dt float64)

	// CorrectAttitudePID computes rateDesired from measured/desired attitude.
	CorrectAttitudePID(measured, desired model.Attitude) RatePID

	// CorrectRatePID runs the inner loop given measured (already
	// sign-adjusted by the caller) and desired rates.
	CorrectRatePID(measured, desired RatePID)

	// GetActuatorOutput reads the most recent rate-PID output.
	GetActuatorOutput() (roll, pitch, yaw int16)

	ResetRollAttitudePID()
	ResetPitchAttitudePID()
	ResetAll()
}

// PowerDistributor maps the final Control vector to motor commands, or
// forces all motors to stop.
type PowerDistributor interface {
	Distribute(c model.Control) [4]float64
	Stop() [4]float64
}
