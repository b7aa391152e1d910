package sim

import (
	"testing"

	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/model"
)

var (
	_ collab.SensorSource          = (*Mock)(nil)
	_ collab.Estimator             = (*Mock)(nil)
	_ collab.ExternalPositionSource = (*Mock)(nil)
	_ collab.SituationAwareness    = (*Mock)(nil)
)

func TestMock_ClimbsUnderThrustAboveHover(t *testing.T) {
	m := New(DefaultConfig())
	ctrl := model.Control{Thrust: 46000}

	for i := 0; i < 100; i++ {
		sensors, _ := m.Acquire(uint64(i))
		state, _ := m.Update(sensors, ctrl, [4]float64{})
		m.state = state
	}

	if m.State().Position.Z <= 0 {
		t.Errorf("Position.Z = %v, want > 0 after sustained above-hover thrust", m.State().Position.Z)
	}
}

func TestMock_CalibratedByDefaultUntilCleared(t *testing.T) {
	m := New(DefaultConfig())
	if !m.Calibrated() {
		t.Fatal("expected calibrated by default")
	}
	m.SetCalibrated(false)
	if m.Calibrated() {
		t.Error("expected uncalibrated after SetCalibrated(false)")
	}
}

func TestMock_InjectFailsafeSetsFlag(t *testing.T) {
	m := New(DefaultConfig())
	m.InjectFailsafe()
	if !m.State().Failsafe {
		t.Error("expected Failsafe true after InjectFailsafe")
	}
}
