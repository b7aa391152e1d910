package orchestrator

import (
	"testing"

	"github.com/arobi/stabilizer/internal/attposctl"
	"github.com/arobi/stabilizer/internal/failsafe"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/pidctl"
	"github.com/arobi/stabilizer/internal/rateloop"
	"github.com/arobi/stabilizer/internal/setpoint"
)

func newCore(t *testing.T, tiltComp bool) *Core {
	t.Helper()
	rc, err := model.NewRateLoopConfig(100, 100, 100)
	if err != nil {
		t.Fatalf("NewRateLoopConfig: %v", err)
	}
	sched := rateloop.New(rc)
	resolver := setpoint.New(rc.AttitudeHz)
	descent := failsafe.New(model.DefaultFailsafeConfig(), rc.PositionHz, nil)

	position := attposctl.NewPosition(attposctl.PositionGains{
		X: pidctl.Config{Kp: 2}, Y: pidctl.Config{Kp: 2}, Thrust: pidctl.Config{Kp: 100},
		BaseThrust: 36000, Dt: 0.01,
	})
	attitude := attposctl.NewAttitude(attposctl.AttitudeGains{
		OuterRoll: pidctl.Config{Kp: 5}, OuterPitch: pidctl.Config{Kp: 5}, OuterYaw: pidctl.Config{Kp: 5},
		InnerRoll: pidctl.Config{Kp: 50}, InnerPitch: pidctl.Config{Kp: 50}, InnerYaw: pidctl.Config{Kp: 50},
	})

	return New(Config{TiltCompEnabled: tiltComp}, sched, resolver, descent, position, attitude, 0.01, nil)
}

func allAbsolute() model.AxisModes {
	return model.AxisModes{X: model.Absolute, Y: model.Absolute, Z: model.Absolute, Roll: model.Absolute, Pitch: model.Absolute, Yaw: model.Absolute}
}

// S1: hover hold at setpoint converges to small roll/pitch/yaw control and
// thrust equal to the position controller's hover output.
func TestCore_S1_HoverHold(t *testing.T) {
	c := newCore(t, true)
	sp := model.Setpoint{Position: model.Vector3{Z: 1}, Mode: allAbsolute()}
	state := model.State{Position: model.Vector3{Z: 1}, Tiltcomp: 1.0}

	var ctrl model.Control
	for i := 0; i < 10; i++ {
		ctrl = c.Tick(sp, state)
	}

	const deadband = 50
	if abs16(ctrl.Roll) > deadband || abs16(ctrl.Pitch) > deadband || abs16(ctrl.Yaw) > deadband {
		t.Errorf("control = %+v, want roll/pitch/yaw within deadband", ctrl)
	}
	if ctrl.Thrust != 36000 {
		t.Errorf("Thrust = %v, want 36000 (hover base thrust, zero error)", ctrl.Thrust)
	}
}

// S2: manual thrust passes through exactly when mode.z is Disabled.
func TestCore_S2_ManualThrustPassthrough(t *testing.T) {
	c := newCore(t, true)
	mode := model.AxisModes{Z: model.Disabled}
	sp := model.Setpoint{Thrust: 30000, Mode: mode}
	state := model.State{Tiltcomp: 1.0}

	for i := 0; i < 5; i++ {
		ctrl := c.Tick(sp, state)
		if ctrl.Thrust != 30000 {
			t.Errorf("tick %d: Thrust = %v, want 30000", i, ctrl.Thrust)
		}
	}
}

// S6: velocity override on roll replaces rateDesired.roll and resets the
// roll attitude PID's integrator within the same attitude tick.
func TestCore_S6_VelocityOverrideResetsRollIntegrator(t *testing.T) {
	c := newCore(t, true)
	// Give the outer roll loop an integral term so a sustained attitude
	// error actually accumulates something for the override to clear.
	c.attitude = attposctl.NewAttitude(attposctl.AttitudeGains{
		OuterRoll: pidctl.Config{Kp: 5, Ki: 1}, OuterPitch: pidctl.Config{Kp: 5}, OuterYaw: pidctl.Config{Kp: 5},
		InnerRoll: pidctl.Config{Kp: 50}, InnerPitch: pidctl.Config{Kp: 50}, InnerYaw: pidctl.Config{Kp: 50},
	})
	c.attitude.Init(0.01)
	mode := allAbsolute()
	// mode.Z Disabled takes thrust straight from sp.Thrust; a non-zero value
	// keeps the (I4) thrust-zero reset from clearing every PID each tick.
	mode.Z = model.Disabled
	// mode.X Disabled triggers the (I2) override so attitudeDesired.Roll
	// tracks the raw setpoint (45) every tick, producing a sustained roll
	// error to build up the outer-loop integrator.
	mode.X = model.Disabled
	sp := model.Setpoint{Attitude: model.Attitude{Roll: 45}, Thrust: 30000, Mode: mode}
	state := model.State{Tiltcomp: 1.0}

	// Build up the roll integrator: 20 ticks * Ki(1) * 45 * dt(0.01) = 9.
	for i := 0; i < 20; i++ {
		c.Tick(sp, state)
	}

	mode.Roll = model.Velocity
	sp.Mode = mode
	sp.AttitudeRate.Roll = 10
	c.Tick(sp, state)
	if got := c.RateDesired().Roll; got != 10 {
		t.Errorf("rateDesired.Roll = %v, want 10 (velocity override)", got)
	}

	// Return to Absolute roll with zero attitude error: the outer roll loop's
	// output is then its integrator alone, which must have been cleared by
	// the override rather than carried over from the earlier large error.
	mode.Roll = model.Absolute
	sp.Mode = mode
	sp.Attitude.Roll = 0
	c.Tick(sp, state)
	if got := c.RateDesired().Roll; got != 0 {
		t.Errorf("rateDesired.Roll = %v, want 0 (integrator reset by velocity override)", got)
	}
}

// P3: thrust-zero resets PID integrators and snaps yaw-desired to measured.
func TestCore_P3_ThrustZeroResetsAndSnapsYaw(t *testing.T) {
	c := newCore(t, false)
	mode := model.AxisModes{Z: model.Disabled}
	sp := model.Setpoint{Thrust: 0, Mode: mode}
	state := model.State{Attitude: model.Attitude{Yaw: 77}, Tiltcomp: 1.0}

	ctrl := c.Tick(sp, state)
	if !ctrl.IsZeroThrust() {
		t.Fatal("setup: expected zero thrust")
	}
	if ctrl.Roll != 0 || ctrl.Pitch != 0 || ctrl.Yaw != 0 {
		t.Errorf("control = %+v, want all zero", ctrl)
	}

	// Verify the resolver's internal yaw-desired was snapped to the measured
	// yaw (77), not left at the setpoint yaw (0) it resolved this tick.
	if got := c.resolver.YawDesired(); got != 77 {
		t.Errorf("resolver yaw-desired after reset = %v, want 77", got)
	}
}

// P1 (partial): all axes disabled produces zero roll/pitch/yaw and thrust
// equal to raw setpoint thrust.
func TestCore_P1_AllDisabledIsPassthrough(t *testing.T) {
	c := newCore(t, false)
	sp := model.Setpoint{Thrust: 12345}
	state := model.State{Tiltcomp: 1.0}

	ctrl := c.Tick(sp, state)
	if ctrl.Roll != 0 || ctrl.Pitch != 0 || ctrl.Yaw != 0 {
		t.Errorf("control = %+v, want roll/pitch/yaw zero", ctrl)
	}
	if ctrl.Thrust != 12345 {
		t.Errorf("Thrust = %v, want 12345", ctrl.Thrust)
	}
}

// S4-shaped: failsafe engagement latches the descent machine and eventually
// forces the position axes disabled.
func TestCore_FailsafeEngageAndTerminate(t *testing.T) {
	c := newCore(t, true)
	sp := model.Setpoint{Position: model.Vector3{Z: 1}, Mode: allAbsolute()}
	state := model.State{Position: model.Vector3{Z: 1}, Tiltcomp: 1.0}

	// Establish a realistic cruise thrust before the estimator declares
	// failsafe, so the descent's thrust_step probe does not terminate on
	// its very first tick (mirrors S4's "mid-flight" precondition).
	for i := 0; i < 5; i++ {
		c.Tick(sp, state)
	}

	state.Failsafe = true
	c.Tick(sp, state)
	if !c.ActivateFailsafe() {
		t.Fatal("expected ActivateFailsafe() true after observing state.Failsafe")
	}

	state.Failsafe = false // latch must hold regardless (P4)
	for i := 0; i < 600; i++ {
		c.Tick(sp, state)
	}
	if !c.forceDisableXYZ {
		t.Error("expected forceDisableXYZ latched after descent termination")
	}
	if !c.ActivateFailsafe() {
		t.Error("expected ActivateFailsafe() to remain true (TERMINATED counts as latched)")
	}
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
