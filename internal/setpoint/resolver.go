// Package setpoint resolves the yaw reference and axis overrides that feed
// the attitude stage (§4.2), and implements the optional test-mode setpoint
// oscillator (§4.6).
package setpoint

import "github.com/arobi/stabilizer/internal/model"

// Resolver holds the yaw-desired integrator state across attitude ticks.
type Resolver struct {
	yawDesired float64
	attitudeHz int
}

// New constructs a Resolver. attitudeHz parameterizes the velocity-yaw
// integration step (§4.2's open question: the divisor is 1/attitude_hz, not
// a hardcoded 500).
func New(attitudeHz int) *Resolver {
	return &Resolver{attitudeHz: attitudeHz}
}

// Resolve computes the yaw reference and applies the roll/pitch
// disabled-mode override. It must run at attitude rate, once per attitude
// tick. attitudeDesired carries the position controller's roll/pitch output
// (or the zero value if the position stage did not run this tick); it is
// overwritten here per (I2) when mode.x or mode.y is Disabled.
func (r *Resolver) Resolve(sp model.Setpoint, attitudeDesired model.Attitude) model.Attitude {
	if sp.Mode.Yaw == model.Velocity {
		if r.attitudeHz > 0 {
			r.yawDesired -= sp.AttitudeRate.Yaw / float64(r.attitudeHz)
		}
		r.yawDesired = model.WrapDegrees(r.yawDesired)
	} else {
		r.yawDesired = sp.Attitude.Yaw
	}
	attitudeDesired.Yaw = r.yawDesired

	// (I2): disabled x or y means roll/pitch come from the raw setpoint,
	// not from whatever the position controller computed this tick.
	if sp.Mode.X == model.Disabled || sp.Mode.Y == model.Disabled {
		attitudeDesired.Roll = sp.Attitude.Roll
		attitudeDesired.Pitch = sp.Attitude.Pitch
	}

	return attitudeDesired
}

// SnapYaw forces the yaw-desired integrator to a measured value, used by
// (I4)'s thrust-zero reset.
func (r *Resolver) SnapYaw(measuredYaw float64) {
	r.yawDesired = measuredYaw
}

// YawDesired returns the current yaw-desired integrator value.
func (r *Resolver) YawDesired() float64 {
	return r.yawDesired
}

// Oscillator implements the optional diagnostic Y-axis square-wave
// setpoint, §4.6. It must not affect any other axis.
type Oscillator struct {
	enabled    bool
	frequency  uint32 // ticks between toggles
	current    float64
	armed      bool
	tickAtLast uint64
}

// NewOscillator constructs a disabled oscillator with the given toggle
// frequency (in ticks).
func NewOscillator(frequency uint32) *Oscillator {
	return &Oscillator{frequency: frequency}
}

// SetEnabled toggles the oscillator. Disabling re-arms baseline tracking.
func (o *Oscillator) SetEnabled(enabled bool) {
	if enabled && !o.enabled {
		o.armed = false
	}
	o.enabled = enabled
}

// Enabled reports whether the oscillator is currently active, for the
// setpoint.enable telemetry/parameter binding (§6).
func (o *Oscillator) Enabled() bool { return o.enabled }

// Frequency returns the configured toggle period in ticks, for the
// setpoint.frequency telemetry/parameter binding (§6).
func (o *Oscillator) Frequency() uint32 { return o.frequency }

// SetFrequency updates the toggle period at runtime.
func (o *Oscillator) SetFrequency(frequency uint32) { o.frequency = frequency }

// Apply overwrites sp.Position.Y with the square-wave reference when
// enabled, or tracks the observed value as the baseline when disabled.
func (o *Oscillator) Apply(sp *model.Setpoint, tick uint64) {
	if !o.enabled {
		o.current = sp.Position.Y
		o.armed = false
		return
	}
	if !o.armed {
		// First tick after enabling: hold at the last observed baseline.
		o.armed = true
		o.tickAtLast = tick
	} else if o.frequency > 0 && tick-o.tickAtLast >= uint64(o.frequency) {
		o.current = -o.current
		o.tickAtLast = tick
	}
	sp.Position.Y = o.current
}
