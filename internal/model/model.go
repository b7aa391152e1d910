// Package model defines the plain value records shared by the stabilization
// core: attitude, rates, setpoints, estimated state and the actuator-facing
// control vector. The core owns one instance of each for the lifetime of the
// task; nothing here outlives a tick except PID integrator state, which lives
// inside the sub-controllers (see internal/pidctl, internal/attposctl).
package model

import "math"

// Epsilon is the minimum tilt-compensation denominator. Clamping below this
// at the estimator boundary keeps thrust projection from blowing up to NaN.
const Epsilon = 0.1

// ThrustMax bounds Control.Thrust.
const ThrustMax = 65535.0

// Vector3 is a generic 3-axis value in meters or m/s depending on context.
type Vector3 struct {
	X, Y, Z float64
}

// Attitude holds roll/pitch/yaw in degrees. Yaw wraps into [-180, 180]; roll
// and pitch saturate at the controller's configured bounds (I1).
type Attitude struct {
	Roll, Pitch, Yaw float64
}

// AngularRate holds roll/pitch/yaw rates in degrees/second.
type AngularRate struct {
	Roll, Pitch, Yaw float64
}

// AxisMode is the per-axis control mode.
type AxisMode int

const (
	// Disabled passes the manual command through untouched.
	Disabled AxisMode = iota
	// Absolute is a closed-loop position/attitude reference.
	Absolute
	// Velocity is a closed-loop velocity/rate reference.
	Velocity
)

func (m AxisMode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Absolute:
		return "absolute"
	case Velocity:
		return "velocity"
	default:
		return "unknown"
	}
}

// AxisModes is a tagged variant over the six controlled axes. Using named
// fields (rather than a map or parallel booleans) keeps the (I2)/(I3)
// override logic in the orchestrator exhaustive and compiler-checked.
type AxisModes struct {
	X, Y, Z          AxisMode
	Roll, Pitch, Yaw AxisMode
}

// Setpoint is the commanded reference for one tick.
type Setpoint struct {
	Position     Vector3
	Velocity     Vector3
	Attitude     Attitude
	AttitudeRate AngularRate
	Thrust       uint16
	Mode         AxisModes
}

// State is the latest fused vehicle state.
type State struct {
	Position     Vector3
	Velocity     Vector3
	Acceleration Vector3
	Attitude     Attitude
	AngularVel   Vector3 // deg/s, body frame

	// Tiltcomp is cos(angle between body-z and world-up), clamped to >= Epsilon.
	Tiltcomp float64

	// Failsafe is the estimator's declared failure signal. Observing this
	// true once latches the failsafe descent state machine (I6).
	Failsafe bool
}

// ClampTiltcomp enforces the epsilon floor an estimator boundary must
// guarantee (§7: division-by-near-zero in tilt compensation).
func (s *State) ClampTiltcomp() {
	if s.Tiltcomp < Epsilon {
		s.Tiltcomp = Epsilon
	}
}

// Control is the actuator-facing output of the cascaded controller.
type Control struct {
	Thrust             float64 // [0, ThrustMax]
	Roll, Pitch, Yaw   int16   // actuator-domain signed commands
}

// IsZeroThrust reports whether the projected thrust is exactly zero, the
// trigger for (I4)'s integrator reset and yaw-snap.
func (c Control) IsZeroThrust() bool {
	return c.Thrust == 0
}

// Zero clears all control axes (I5: emergency stop; I4: thrust-zero reset).
func (c *Control) Zero() {
	c.Thrust = 0
	c.Roll = 0
	c.Pitch = 0
	c.Yaw = 0
}

// RateLoopConfig is the compile-time-checked rate-divisor triple. Construct
// only via NewRateLoopConfig so a misconfigured (non-integer-divisor) triple
// is rejected at construction rather than discovered at runtime (§9).
type RateLoopConfig struct {
	MainHz     int
	AttitudeHz int
	PositionHz int
}

// NewRateLoopConfig validates main_hz % attitude_hz == 0 and
// attitude_hz % position_hz == 0.
func NewRateLoopConfig(mainHz, attitudeHz, positionHz int) (RateLoopConfig, error) {
	cfg := RateLoopConfig{MainHz: mainHz, AttitudeHz: attitudeHz, PositionHz: positionHz}
	if mainHz <= 0 || attitudeHz <= 0 || positionHz <= 0 {
		return RateLoopConfig{}, errRate("all rates must be positive")
	}
	if mainHz%attitudeHz != 0 {
		return RateLoopConfig{}, errRate("main_hz must be an integer multiple of attitude_hz")
	}
	if attitudeHz%positionHz != 0 {
		return RateLoopConfig{}, errRate("attitude_hz must be an integer multiple of position_hz")
	}
	return cfg, nil
}

// AttitudeDivisor is main_hz / attitude_hz.
func (c RateLoopConfig) AttitudeDivisor() int { return c.MainHz / c.AttitudeHz }

// PositionDivisor is main_hz / position_hz.
func (c RateLoopConfig) PositionDivisor() int { return c.MainHz / c.PositionHz }

type rateConfigError string

func (e rateConfigError) Error() string { return string(e) }

func errRate(msg string) error { return rateConfigError(msg) }

// FailsafeConfig parameterizes the descent state machine (§4.4).
type FailsafeConfig struct {
	LandingThrust float64 // raw-thrust units, default 36000
	LandingTimeS  float64 // seconds, default 5.0
	RollBase      float64 // degrees, default 2.0
	PitchBase     float64 // degrees, default 0.0
	ThrustStep    float64 // default 200
}

// DefaultFailsafeConfig returns the §6 parameter-surface defaults.
func DefaultFailsafeConfig() FailsafeConfig {
	return FailsafeConfig{
		LandingThrust: 36000,
		LandingTimeS:  5.0,
		RollBase:      2.0,
		PitchBase:     0.0,
		ThrustStep:    200,
	}
}

// WrapDegrees wraps a value into [-180, 180] by repeated addition/subtraction
// of 360, matching the yaw-wrap behavior required by (I1)/(P2).
func WrapDegrees(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg < -180 {
		deg += 360
	}
	return deg
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
