// PowerDistributor decorator that surfaces read-only propulsion telemetry
// fields (battery.soc, motor.temperature), shaped after
// Valkyrie/internal/propulsion/electric/{battery,motor}.go's state structs.
// Simulating the battery/motor themselves is out of this core's scope; only
// the telemetry field shape is adapted, fed by whatever the PowerDistributor
// implementation already knows.
package collab

import "github.com/arobi/stabilizer/internal/model"

// EnergyReading is the read-only propulsion snapshot exposed to the
// telemetry registry.
type EnergyReading struct {
	BatterySOC      float64
	MotorTempC      float64
}

// EnergyReader is implemented by a PowerDistributor that can also report
// propulsion health, kept separate from PowerDistributor so that not every
// distributor implementation has to support it.
type EnergyReader interface {
	Energy() EnergyReading
}

// EnergyTrackingDistributor wraps a PowerDistributor with static/derived
// propulsion telemetry for use in simulation and tests, where no real
// battery/motor model is attached.
type EnergyTrackingDistributor struct {
	PowerDistributor
	soc     float64
	tempC   float64
}

// NewEnergyTrackingDistributor wraps an existing distributor.
func NewEnergyTrackingDistributor(inner PowerDistributor, startSOC, startTempC float64) *EnergyTrackingDistributor {
	return &EnergyTrackingDistributor{PowerDistributor: inner, soc: startSOC, tempC: startTempC}
}

// Distribute forwards to the wrapped distributor and derives a simple
// first-order thermal/discharge estimate from commanded thrust, enough to
// drive the telemetry surface without a physics engine.
func (e *EnergyTrackingDistributor) Distribute(c model.Control) [4]float64 {
	motors := e.PowerDistributor.Distribute(c)
	load := (motors[0] + motors[1] + motors[2] + motors[3]) / 4.0
	e.soc = model.Clamp(e.soc-load*0.00001, 0, 1)
	e.tempC = model.Clamp(e.tempC+load*0.05-0.01, 15, 120)
	return motors
}

// Energy implements EnergyReader.
func (e *EnergyTrackingDistributor) Energy() EnergyReading {
	return EnergyReading{BatterySOC: e.soc, MotorTempC: e.tempC}
}
