// Package attposctl provides the default PositionController and
// AttitudeController implementations: the cascaded PID sub-controllers the
// orchestrator drives. Per the design note that sub-controllers "hold their
// own PID state inside their own owned values," these are concrete, owned
// by whoever constructs them (normally the orchestrator's caller), and
// accept gains as configuration — gain tuning itself is out of scope.
package attposctl

import (
	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/pidctl"
)

// AttitudeGains configures the six PID loops (outer roll/pitch/yaw,
// inner roll/pitch/yaw).
type AttitudeGains struct {
	OuterRoll, OuterPitch, OuterYaw pidctl.Config
	InnerRoll, InnerPitch, InnerYaw pidctl.Config
}

// Attitude is the default AttitudeController.
type Attitude struct {
	dt float64

	outerRoll, outerPitch, outerYaw *pidctl.PID
	innerRoll, innerPitch, innerYaw *pidctl.PID

	lastRoll, lastPitch, lastYaw int16
}

// NewAttitude constructs an Attitude controller from the given gains.
func NewAttitude(gains AttitudeGains) *Attitude {
	return &Attitude{
		outerRoll:  pidctl.New(gains.OuterRoll),
		outerPitch: pidctl.New(gains.OuterPitch),
		outerYaw:   pidctl.New(gains.OuterYaw),
		innerRoll:  pidctl.New(gains.InnerRoll),
		innerPitch: pidctl.New(gains.InnerPitch),
		innerYaw:   pidctl.New(gains.InnerYaw),
	}
}

// Init sets the loop's sample period.
func (a *Attitude) Init(dt float64) {
	a.dt = dt
}

// CorrectAttitudePID runs the outer P/PI loop producing per-axis rate
// references. The gyro-pitch sign convention is the caller's
// responsibility (§4.3): this method only ever sees attitude degrees.
func (a *Attitude) CorrectAttitudePID(measured, desired model.Attitude) collab.RatePID {
	return collab.RatePID{
		Roll:  a.outerRoll.Update(desired.Roll, measured.Roll, a.dt),
		Pitch: a.outerPitch.Update(desired.Pitch, measured.Pitch, a.dt),
		Yaw:   a.outerYaw.Update(desired.Yaw, measured.Yaw, a.dt),
	}
}

// CorrectRatePID runs the inner rate loop and stashes the actuator-domain
// output for GetActuatorOutput. The caller is responsible for the
// gyro-pitch sign inversion and the yaw negation (§4.3) before/after calling
// this — those are orchestration conventions, not controller math.
func (a *Attitude) CorrectRatePID(measured, desired collab.RatePID) {
	roll := a.innerRoll.Update(desired.Roll, measured.Roll, a.dt)
	pitch := a.innerPitch.Update(desired.Pitch, measured.Pitch, a.dt)
	yaw := a.innerYaw.Update(desired.Yaw, measured.Yaw, a.dt)

	a.lastRoll = int16(clampInt16(roll))
	a.lastPitch = int16(clampInt16(pitch))
	a.lastYaw = int16(clampInt16(yaw))
}

// GetActuatorOutput returns the most recent rate-PID output.
func (a *Attitude) GetActuatorOutput() (roll, pitch, yaw int16) {
	return a.lastRoll, a.lastPitch, a.lastYaw
}

// ResetRollAttitudePID clears only the outer roll loop's integrator — used
// when mode.roll switches to Velocity to prevent windup from destabilizing
// a later return to Absolute mode (§4.3).
func (a *Attitude) ResetRollAttitudePID() {
	a.outerRoll.Reset()
}

// ResetPitchAttitudePID mirrors ResetRollAttitudePID for pitch.
func (a *Attitude) ResetPitchAttitudePID() {
	a.outerPitch.Reset()
}

// ResetAll clears every PID loop's integrator — called on thrust-zero (I4).
func (a *Attitude) ResetAll() {
	a.outerRoll.Reset()
	a.outerPitch.Reset()
	a.outerYaw.Reset()
	a.innerRoll.Reset()
	a.innerPitch.Reset()
	a.innerYaw.Reset()
}

func clampInt16(v float64) float64 {
	const maxI16 = 32767
	if v > maxI16 {
		return maxI16
	}
	if v < -maxI16 {
		return -maxI16
	}
	return v
}
