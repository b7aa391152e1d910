// Command-link adapter. Receives setpoints over one NATS subject and exposes
// them as a Commander, grounded on
// internal/platform/realtime/bridge.go's connect/subscribe/reconnect-handler
// pattern. The subscription handler only ever stores into atomics (the
// setpoint pointer and the receive timestamp), so the hard-realtime tick
// (which calls GetSetpoint) never blocks on or
// races with network I/O (§5: "each collaborator writes its record
// atomically per scalar field").
package collab

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/arobi/stabilizer/internal/model"
)

// NATSCommanderConfig configures the command-link subscriber.
type NATSCommanderConfig struct {
	URL           string
	Subject       string
	ReconnectWait time.Duration
	MaxReconnects int
	// CommandTimeout is how long GetSetpoint tolerates silence before
	// degrading the returned setpoint toward safe defaults (mode.z =
	// Disabled, thrust = 0) per §7.
	CommandTimeout time.Duration
}

// DefaultNATSCommanderConfig returns reasonable defaults.
func DefaultNATSCommanderConfig() NATSCommanderConfig {
	return NATSCommanderConfig{
		URL:            nats.DefaultURL,
		Subject:        "stabilizer.setpoint",
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  60,
		CommandTimeout: 500 * time.Millisecond,
	}
}

// wireSetpoint is the JSON wire shape published on the command-link subject.
type wireSetpoint struct {
	PX, PY, PZ    float64
	VX, VY, VZ    float64
	Roll, Pitch   float64
	Yaw           float64
	RateRoll      float64
	RatePitch     float64
	RateYaw       float64
	Thrust        uint16
	ModeX         int
	ModeY         int
	ModeZ         int
	ModeRoll      int
	ModePitch     int
	ModeYaw       int
}

// NATSCommander implements Commander over a NATS subscription.
type NATSCommander struct {
	cfg    NATSCommanderConfig
	logger *logrus.Logger

	nc  *nats.Conn
	sub *nats.Subscription

	latest    atomic.Pointer[model.Setpoint]
	lastRecvNanos atomic.Int64
}

// NewNATSCommander connects and subscribes. The background handler only
// ever swaps the atomic pointer — it never mutates a shared Setpoint value
// in place.
func NewNATSCommander(cfg NATSCommanderConfig, logger *logrus.Logger) (*NATSCommander, error) {
	if logger == nil {
		logger = logrus.New()
	}
	nc, err := nats.Connect(cfg.URL,
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.WithError(err).Warn("command link disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("command link reconnected")
		}),
	)
	if err != nil {
		return nil, err
	}

	c := &NATSCommander{cfg: cfg, logger: logger, nc: nc}

	sub, err := nc.Subscribe(cfg.Subject, c.onMessage)
	if err != nil {
		nc.Close()
		return nil, err
	}
	c.sub = sub
	return c, nil
}

func (c *NATSCommander) onMessage(msg *nats.Msg) {
	var w wireSetpoint
	if err := json.Unmarshal(msg.Data, &w); err != nil {
		c.logger.WithError(err).Warn("dropping malformed setpoint message")
		return
	}
	sp := &model.Setpoint{
		Position:     model.Vector3{X: w.PX, Y: w.PY, Z: w.PZ},
		Velocity:     model.Vector3{X: w.VX, Y: w.VY, Z: w.VZ},
		Attitude:     model.Attitude{Roll: w.Roll, Pitch: w.Pitch, Yaw: w.Yaw},
		AttitudeRate: model.AngularRate{Roll: w.RateRoll, Pitch: w.RatePitch, Yaw: w.RateYaw},
		Thrust:       w.Thrust,
		Mode: model.AxisModes{
			X:     model.AxisMode(w.ModeX),
			Y:     model.AxisMode(w.ModeY),
			Z:     model.AxisMode(w.ModeZ),
			Roll:  model.AxisMode(w.ModeRoll),
			Pitch: model.AxisMode(w.ModePitch),
			Yaw:   model.AxisMode(w.ModeYaw),
		},
	}
	c.latest.Store(sp)
	c.lastRecvNanos.Store(time.Now().UnixNano())
}

// GetSetpoint returns the latest received setpoint, or a degraded
// (thrust-disabled) setpoint if the command link has been silent longer
// than CommandTimeout.
func (c *NATSCommander) GetSetpoint(state model.State) (model.Setpoint, error) {
	sp := c.latest.Load()
	if sp == nil {
		return degradedSetpoint(state), nil
	}
	last := c.lastRecvNanos.Load()
	if c.cfg.CommandTimeout > 0 && time.Since(time.Unix(0, last)) > c.cfg.CommandTimeout {
		return degradedSetpoint(state), nil
	}
	return *sp, nil
}

// degradedSetpoint is the safe-default reference used on command-link
// timeout: every axis disabled, zero thrust, level attitude.
func degradedSetpoint(state model.State) model.Setpoint {
	return model.Setpoint{
		Attitude: model.Attitude{Yaw: state.Attitude.Yaw},
		Thrust:   0,
		Mode: model.AxisModes{
			X: model.Disabled, Y: model.Disabled, Z: model.Disabled,
			Roll: model.Disabled, Pitch: model.Disabled, Yaw: model.Disabled,
		},
	}
}

// Close unsubscribes and closes the NATS connection.
func (c *NATSCommander) Close() {
	if c.sub != nil {
		_ = c.sub.Unsubscribe()
	}
	if c.nc != nil {
		c.nc.Close()
	}
}
