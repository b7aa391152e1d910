package collab

import (
	"testing"

	"github.com/arobi/stabilizer/internal/model"
)

type stubDistributor struct{}

func (stubDistributor) Distribute(c model.Control) [4]float64 {
	t := c.Thrust / model.ThrustMax
	return [4]float64{t, t, t, t}
}

func (stubDistributor) Stop() [4]float64 { return [4]float64{} }

func TestEnergyTrackingDistributor_DischargesUnderLoad(t *testing.T) {
	e := NewEnergyTrackingDistributor(stubDistributor{}, 1.0, 25.0)
	e.Distribute(model.Control{Thrust: model.ThrustMax})
	reading := e.Energy()
	if reading.BatterySOC >= 1.0 {
		t.Errorf("BatterySOC = %v, want < 1.0 after full-thrust draw", reading.BatterySOC)
	}
	if reading.MotorTempC <= 25.0 {
		t.Errorf("MotorTempC = %v, want > 25.0 after full-thrust draw", reading.MotorTempC)
	}
}

func TestEnergyTrackingDistributor_SOCClampedToZero(t *testing.T) {
	e := NewEnergyTrackingDistributor(stubDistributor{}, 0.0, 25.0)
	e.Distribute(model.Control{Thrust: model.ThrustMax})
	if e.Energy().BatterySOC != 0 {
		t.Errorf("BatterySOC = %v, want clamped to 0", e.Energy().BatterySOC)
	}
}

func TestEnergyTrackingDistributor_ForwardsToInnerDistributor(t *testing.T) {
	e := NewEnergyTrackingDistributor(stubDistributor{}, 1.0, 25.0)
	motors := e.Distribute(model.Control{Thrust: model.ThrustMax})
	for i, m := range motors {
		if m != 1 {
			t.Errorf("motors[%d] = %v, want 1 (forwarded from inner distributor)", i, m)
		}
	}
}
