package collab

import (
	"testing"

	"github.com/arobi/stabilizer/internal/model"
)

func TestMAVLinkPowerDistributor_DistributeMixesQuadX(t *testing.T) {
	d := NewMAVLinkPowerDistributor(DefaultMAVLinkPowerConfig(), nil)
	motors := d.Distribute(model.Control{Thrust: model.ThrustMax})

	for i, m := range motors {
		if m != 1 {
			t.Errorf("motors[%d] = %v, want 1 (full thrust, no moment)", i, m)
		}
	}
	sent, dropped := d.Stats()
	if sent != 1 || dropped != 0 {
		t.Errorf("sent=%d dropped=%d, want 1/0", sent, dropped)
	}
}

func TestMAVLinkPowerDistributor_DistributeClampsNegative(t *testing.T) {
	d := NewMAVLinkPowerDistributor(DefaultMAVLinkPowerConfig(), nil)
	motors := d.Distribute(model.Control{Thrust: 0, Roll: 30000})

	for i, m := range motors {
		if m < 0 || m > 1 {
			t.Errorf("motors[%d] = %v, want within [0,1]", i, m)
		}
	}
}

func TestMAVLinkPowerDistributor_StopZeroesMotors(t *testing.T) {
	d := NewMAVLinkPowerDistributor(DefaultMAVLinkPowerConfig(), nil)
	motors := d.Stop()
	if motors != ([4]float64{0, 0, 0, 0}) {
		t.Errorf("Stop() = %v, want all zero", motors)
	}
}

func TestMAVLinkPowerDistributor_DropsWhenBufferFull(t *testing.T) {
	d := NewMAVLinkPowerDistributor(DefaultMAVLinkPowerConfig(), nil)
	for i := 0; i < 10; i++ {
		d.Distribute(model.Control{Thrust: 1000})
	}
	_, dropped := d.Stats()
	if dropped == 0 {
		t.Error("expected some drops once the 4-deep channel saturates")
	}
}
