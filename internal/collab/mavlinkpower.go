// Power distribution adapter. Maps the orchestrator's Control vector to a
// 4-motor mix and queues it on a bounded outbound command channel for the
// MAVLink link layer (nothing in this package drains that channel),
// adapted from Valkyrie/internal/actuators/mavlink.go's command-dispatch
// pattern. Only the distribution concern is kept here: heartbeat, arming,
// and flight-mode string management belong to the MAVLink link itself, not
// to this hard-realtime core.
package collab

import (
	"github.com/sirupsen/logrus"

	"github.com/arobi/stabilizer/internal/model"
)

// MAVLinkPowerConfig configures the quad-X motor mixer and the outbound
// command channel to the link layer.
type MAVLinkPowerConfig struct {
	SimulationMode bool
	// MixScale converts Control.Thrust (0..ThrustMax) plus per-axis
	// actuator commands into a 0..1 motor duty cycle.
	MixScale float64
}

// DefaultMAVLinkPowerConfig returns sane quad-X mixer defaults.
func DefaultMAVLinkPowerConfig() MAVLinkPowerConfig {
	return MAVLinkPowerConfig{MixScale: 1.0 / model.ThrustMax}
}

// MAVLinkPowerDistributor implements PowerDistributor by quad-X mixing and
// forwarding the result to a non-blocking outbound command channel, mirroring
// mavlink.go's "send on buffered channel, drop and log on full" behavior —
// the hard-realtime tick must never block on link I/O.
type MAVLinkPowerDistributor struct {
	cfg    MAVLinkPowerConfig
	logger *logrus.Logger

	motorCmd chan [4]float64

	sent   uint64
	dropped uint64
}

// NewMAVLinkPowerDistributor constructs the adapter.
func NewMAVLinkPowerDistributor(cfg MAVLinkPowerConfig, logger *logrus.Logger) *MAVLinkPowerDistributor {
	if logger == nil {
		logger = logrus.New()
	}
	return &MAVLinkPowerDistributor{
		cfg:      cfg,
		logger:   logger,
		motorCmd: make(chan [4]float64, 4),
	}
}

// Distribute mixes Control into a quad-X motor vector: front-left,
// front-right, rear-left, rear-right, each clamped to [0, 1].
func (d *MAVLinkPowerDistributor) Distribute(c model.Control) [4]float64 {
	t := c.Thrust * d.cfg.MixScale
	roll := float64(c.Roll) * d.cfg.MixScale
	pitch := float64(c.Pitch) * d.cfg.MixScale
	yaw := float64(c.Yaw) * d.cfg.MixScale

	motors := [4]float64{
		t - roll + pitch + yaw, // front-left
		t + roll + pitch - yaw, // front-right
		t - roll - pitch - yaw, // rear-left
		t + roll - pitch + yaw, // rear-right
	}
	for i := range motors {
		motors[i] = model.Clamp(motors[i], 0, 1)
	}

	select {
	case d.motorCmd <- motors:
		d.sent++
	default:
		d.dropped++
		d.logger.Warn("motor command buffer full, dropping sample")
	}

	return motors
}

// Stop forces all motors to zero, used by the emergency-stop gate (I5).
func (d *MAVLinkPowerDistributor) Stop() [4]float64 {
	motors := [4]float64{0, 0, 0, 0}
	select {
	case d.motorCmd <- motors:
	default:
	}
	return motors
}

// Stats returns the send/drop counters for telemetry.
func (d *MAVLinkPowerDistributor) Stats() (sent, dropped uint64) {
	return d.sent, d.dropped
}
