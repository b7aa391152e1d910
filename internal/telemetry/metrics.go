// Prometheus metrics, namespace "stabilizer". Registration pattern grounded
// on Pricilla/internal/metrics/prometheus.go's promauto.New* style; the
// metric set itself is this core's own domain (control outputs, attitude
// desired, failsafe/emergency counters, tick duration), not Pricilla's.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every prometheus collector the core publishes.
type Metrics struct {
	ControlThrust prometheus.Gauge
	ControlRoll   prometheus.Gauge
	ControlPitch  prometheus.Gauge
	ControlYaw    prometheus.Gauge

	AttitudeDesiredRoll  prometheus.Gauge
	AttitudeDesiredPitch prometheus.Gauge
	AttitudeDesiredYaw   prometheus.Gauge

	FailsafeEngagements   prometheus.Counter
	FailsafeActive        prometheus.Gauge
	EmergencyLatchedTotal prometheus.Counter

	TickDuration prometheus.Histogram
}

// NewMetrics registers and returns the metric set against the default
// registry.
func NewMetrics() *Metrics {
	return &Metrics{
		ControlThrust: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "control", Name: "thrust",
			Help: "Current actuator thrust output.",
		}),
		ControlRoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "control", Name: "roll",
			Help: "Current actuator roll command.",
		}),
		ControlPitch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "control", Name: "pitch",
			Help: "Current actuator pitch command.",
		}),
		ControlYaw: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "control", Name: "yaw",
			Help: "Current actuator yaw command.",
		}),
		AttitudeDesiredRoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "attitude", Name: "desired_roll_degrees",
		}),
		AttitudeDesiredPitch: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "attitude", Name: "desired_pitch_degrees",
		}),
		AttitudeDesiredYaw: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "attitude", Name: "desired_yaw_degrees",
		}),
		FailsafeEngagements: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stabilizer", Subsystem: "failsafe", Name: "engagements_total",
			Help: "Number of times the descent state machine has engaged.",
		}),
		FailsafeActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "stabilizer", Subsystem: "failsafe", Name: "active",
			Help: "1 while the descent state machine owns the controller.",
		}),
		EmergencyLatchedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "stabilizer", Subsystem: "safety", Name: "emergency_latched_total",
			Help: "Number of times the emergency-stop gate has latched.",
		}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stabilizer", Subsystem: "loop", Name: "tick_duration_seconds",
			Help:    "Wall-clock duration of one main-loop tick.",
			Buckets: prometheus.ExponentialBuckets(1e-6, 2, 16),
		}),
	}
}

// ObserveTick records the wall-clock duration of one main-loop iteration.
func (m *Metrics) ObserveTick(d time.Duration) {
	m.TickDuration.Observe(d.Seconds())
}
