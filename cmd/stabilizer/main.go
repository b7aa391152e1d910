// stabilizer runs the quadrotor stabilization core as a standalone task:
// it wires the rate scheduler, setpoint resolver, cascaded orchestrator,
// failsafe descent machine, and safety gate into one periodic loop, and
// exposes the parameter/telemetry surface over HTTP and websocket.
//
// Structure (banner, flags, signal handling, graceful shutdown) modeled on
// Valkyrie/cmd/valkyrie/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arobi/stabilizer/internal/collab"
	"github.com/arobi/stabilizer/internal/config"
	"github.com/arobi/stabilizer/internal/failsafe"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/obslog"
	"github.com/arobi/stabilizer/internal/orchestrator"
	"github.com/arobi/stabilizer/internal/attposctl"
	"github.com/arobi/stabilizer/internal/rateloop"
	"github.com/arobi/stabilizer/internal/safety"
	"github.com/arobi/stabilizer/internal/setpoint"
	"github.com/arobi/stabilizer/internal/sim"
	"github.com/arobi/stabilizer/internal/telemetry"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
	gitCommit = "unknown"

	configFile = flag.String("config", "", "YAML configuration file path (optional)")
	simMode    = flag.Bool("sim", false, "run against the in-process mock collaborators instead of real hardware")
	logLevel   = flag.String("log-level", "", "override log level (debug/info/warn/error)")
	httpAddr   = flag.String("http-addr", "", "override HTTP telemetry surface listen address")
)

func main() {
	flag.Parse()
	printBanner()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}

	logger := obslog.New(cfg.LogLevel, cfg.LogOutput)

	rateCfg, err := cfg.RateLoopConfig()
	if err != nil {
		logger.WithError(err).Fatal("invalid rate loop configuration")
	}

	if !*simMode {
		logger.Fatal("non-simulation hardware wiring is not built into this binary; run with -sim")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	mock := sim.New(sim.DefaultConfig())
	for !mock.Calibrated() {
		time.Sleep(10 * time.Millisecond)
	}

	attitudeDt := 1.0 / float64(rateCfg.AttitudeHz)
	positionDt := 1.0 / float64(rateCfg.PositionHz)

	position := attposctl.NewPosition(cfg.PositionGains(positionDt))
	attitude := attposctl.NewAttitude(cfg.AttitudeGains())
	descent := failsafe.New(cfg.FailsafeConfig(), rateCfg.PositionHz, logger)
	resolver := setpoint.New(rateCfg.AttitudeHz)
	scheduler := rateloop.New(rateCfg)
	oscillator := setpoint.NewOscillator(cfg.Oscillator.Frequency)
	oscillator.SetEnabled(cfg.Oscillator.Enabled)

	// healthVoter feeds state.Failsafe from collaborator health signals
	// (§9's redundancy hook), independently of the estimator-declared
	// failsafe; the orchestrator never imports collab.HealthVoter itself.
	healthVoter := collab.NewHealthVoter(0.5)

	core := orchestrator.New(orchestrator.Config{TiltCompEnabled: cfg.TiltCompEnabled}, scheduler, resolver, descent, position, attitude, attitudeDt, logger)

	distributor := collab.NewEnergyTrackingDistributor(mockDistributor{}, 1.0, 25.0)
	gate := safety.NewGate(distributor, logger)

	registry := telemetry.New()
	metrics := telemetry.NewMetrics()
	streamer := telemetry.NewStreamer(64, logger)

	var (
		lastControl  model.Control
		lastState    model.State
		lastSetpoint model.Setpoint
		lastSensors  collab.SensorData
		lastMotors   [4]float64

		wasFailsafe, wasLatched bool
	)

	registry.Register(telemetry.ReadOnly("control.thrust", func() any { return lastControl.Thrust }))
	registry.Register(telemetry.ReadOnly("control.roll", func() any { return lastControl.Roll }))
	registry.Register(telemetry.ReadOnly("control.pitch", func() any { return lastControl.Pitch }))
	registry.Register(telemetry.ReadOnly("control.yaw", func() any { return lastControl.Yaw }))
	registry.Register(telemetry.ReadOnly("controller.activateFailsafe", func() any { return core.ActivateFailsafe() }))
	registry.Register(telemetry.Bool("controller.tiltComp", &cfg.TiltCompEnabled))
	registry.Register(telemetry.Binding{
		Name: "controller.landingThrust",
		Get:  func() any { return descent.LandingThrust() },
		Set: func(v any) bool {
			f, ok := toFloat64(v)
			if !ok {
				return false
			}
			descent.SetLandingThrust(f)
			return true
		},
	})
	registry.Register(telemetry.Binding{
		Name: "controller.landingTime",
		Get:  func() any { return descent.LandingTimeS() },
		Set: func(v any) bool {
			f, ok := toFloat64(v)
			if !ok {
				return false
			}
			descent.SetLandingTimeS(f)
			return true
		},
	})
	registry.Register(telemetry.Binding{
		Name: "controller.actFail",
		Get:  func() any { return core.ActivateFailsafe() },
		Set: func(v any) bool {
			b, ok := v.(bool)
			if !ok {
				return false
			}
			if b {
				descent.Engage()
			}
			return true
		},
	})
	registry.Register(telemetry.Binding{
		Name: "setpoint.enable",
		Get:  func() any { return oscillator.Enabled() },
		Set: func(v any) bool {
			b, ok := v.(bool)
			if !ok {
				return false
			}
			oscillator.SetEnabled(b)
			return true
		},
	})
	registry.Register(telemetry.Binding{
		Name: "setpoint.frequency",
		Get:  func() any { return oscillator.Frequency() },
		Set: func(v any) bool {
			f, ok := toFloat64(v)
			if !ok || f < 0 {
				return false
			}
			oscillator.SetFrequency(uint32(f))
			return true
		},
	})

	registry.Register(telemetry.ReadOnly("attitudeDesired.roll", func() any { return core.AttitudeDesired().Roll }))
	registry.Register(telemetry.ReadOnly("attitudeDesired.pitch", func() any { return core.AttitudeDesired().Pitch }))
	registry.Register(telemetry.ReadOnly("attitudeDesired.yaw", func() any { return core.AttitudeDesired().Yaw }))
	registry.Register(telemetry.ReadOnly("rateDesired.roll", func() any { return core.RateDesired().Roll }))
	registry.Register(telemetry.ReadOnly("rateDesired.pitch", func() any { return core.RateDesired().Pitch }))
	registry.Register(telemetry.ReadOnly("rateDesired.yaw", func() any { return core.RateDesired().Yaw }))
	registry.Register(telemetry.ReadOnly("actuatorThrust", func() any { return core.ActuatorThrust() }))

	registry.Register(telemetry.ReadOnly("state.position.x", func() any { return lastState.Position.X }))
	registry.Register(telemetry.ReadOnly("state.position.y", func() any { return lastState.Position.Y }))
	registry.Register(telemetry.ReadOnly("state.position.z", func() any { return lastState.Position.Z }))
	registry.Register(telemetry.ReadOnly("state.velocity.x", func() any { return lastState.Velocity.X }))
	registry.Register(telemetry.ReadOnly("state.velocity.y", func() any { return lastState.Velocity.Y }))
	registry.Register(telemetry.ReadOnly("state.velocity.z", func() any { return lastState.Velocity.Z }))
	registry.Register(telemetry.ReadOnly("state.attitude.roll", func() any { return lastState.Attitude.Roll }))
	registry.Register(telemetry.ReadOnly("state.attitude.pitch", func() any { return lastState.Attitude.Pitch }))
	registry.Register(telemetry.ReadOnly("state.attitude.yaw", func() any { return lastState.Attitude.Yaw }))

	registry.Register(telemetry.ReadOnly("setpoint.position.x", func() any { return lastSetpoint.Position.X }))
	registry.Register(telemetry.ReadOnly("setpoint.position.y", func() any { return lastSetpoint.Position.Y }))
	registry.Register(telemetry.ReadOnly("setpoint.position.z", func() any { return lastSetpoint.Position.Z }))
	registry.Register(telemetry.ReadOnly("setpoint.attitude.roll", func() any { return lastSetpoint.Attitude.Roll }))
	registry.Register(telemetry.ReadOnly("setpoint.attitude.pitch", func() any { return lastSetpoint.Attitude.Pitch }))
	registry.Register(telemetry.ReadOnly("setpoint.attitude.yaw", func() any { return lastSetpoint.Attitude.Yaw }))
	registry.Register(telemetry.ReadOnly("setpoint.attitudeRate.roll", func() any { return lastSetpoint.AttitudeRate.Roll }))
	registry.Register(telemetry.ReadOnly("setpoint.attitudeRate.pitch", func() any { return lastSetpoint.AttitudeRate.Pitch }))
	registry.Register(telemetry.ReadOnly("setpoint.attitudeRate.yaw", func() any { return lastSetpoint.AttitudeRate.Yaw }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.x", func() any { return lastSetpoint.Mode.X.String() }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.y", func() any { return lastSetpoint.Mode.Y.String() }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.z", func() any { return lastSetpoint.Mode.Z.String() }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.roll", func() any { return lastSetpoint.Mode.Roll.String() }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.pitch", func() any { return lastSetpoint.Mode.Pitch.String() }))
	registry.Register(telemetry.ReadOnly("setpoint.mode.yaw", func() any { return lastSetpoint.Mode.Yaw.String() }))

	registry.Register(telemetry.ReadOnly("acc.x", func() any { return lastSensors.Accel.X }))
	registry.Register(telemetry.ReadOnly("acc.y", func() any { return lastSensors.Accel.Y }))
	registry.Register(telemetry.ReadOnly("acc.z", func() any { return lastSensors.Accel.Z }))
	registry.Register(telemetry.ReadOnly("gyro.x", func() any { return lastSensors.Gyro.X }))
	registry.Register(telemetry.ReadOnly("gyro.y", func() any { return lastSensors.Gyro.Y }))
	registry.Register(telemetry.ReadOnly("gyro.z", func() any { return lastSensors.Gyro.Z }))
	registry.Register(telemetry.ReadOnly("mag.x", func() any { return lastSensors.Mag.X }))
	registry.Register(telemetry.ReadOnly("mag.y", func() any { return lastSensors.Mag.Y }))
	registry.Register(telemetry.ReadOnly("mag.z", func() any { return lastSensors.Mag.Z }))
	registry.Register(telemetry.ReadOnly("baro.asl", func() any { return lastSensors.BaroAlt }))

	registry.Register(telemetry.ReadOnly("motorCmds.1", func() any { return lastMotors[0] }))
	registry.Register(telemetry.ReadOnly("motorCmds.2", func() any { return lastMotors[1] }))
	registry.Register(telemetry.ReadOnly("motorCmds.3", func() any { return lastMotors[2] }))
	registry.Register(telemetry.ReadOnly("motorCmds.4", func() any { return lastMotors[3] }))

	registry.Register(telemetry.ReadOnly("battery.soc", func() any { return distributor.Energy().BatterySOC }))
	registry.Register(telemetry.ReadOnly("motor.temperature", func() any { return distributor.Energy().MotorTempC }))

	router := telemetry.NewRouter(registry, streamer, func() bool {
		return mock.Calibrated() && !gate.Latched()
	})
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("telemetry HTTP surface listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("telemetry HTTP server stopped")
		}
	}()
	go streamer.Run(ctx)

	setpointSrc := model.Setpoint{
		Position: model.Vector3{Z: 1},
		Mode: model.AxisModes{
			X: model.Absolute, Y: model.Absolute, Z: model.Absolute,
			Roll: model.Absolute, Pitch: model.Absolute, Yaw: model.Absolute,
		},
	}

	ticker := time.NewTicker(time.Second / time.Duration(rateCfg.MainHz))
	defer ticker.Stop()

	logger.Info("stabilizer operational")

runLoop:
	for {
		select {
		case <-sigCh:
			logger.Info("shutdown signal received")
			break runLoop
		case <-ticker.C:
			tickStart := time.Now()

			sensors, _ := mock.Acquire(scheduler.Tick())
			state, _ := mock.Update(sensors, lastControl, lastMotors)
			if pos, ok := mock.Get(state); ok {
				state.Position = pos
			}

			// Collaborator health voting (§9's redundancy hook): currently
			// a single reporter (the sensor source's own calibration
			// status); additional reporters register under higher indices
			// as more collaborators are wired in.
			healthVoter.Observe(0, mock.Calibrated())
			if healthVoter.Failsafe() {
				state.Failsafe = true
			}

			sp := mock.UpdateSetpoint(setpointSrc, sensors, state)
			oscillator.Apply(&sp, scheduler.Tick())

			gate.Tick()
			control := core.Tick(sp, state)
			motors := gate.Apply(&control)
			lastControl = control
			lastState = state
			lastSetpoint = sp
			lastSensors = sensors
			lastMotors = motors

			metrics.ControlThrust.Set(control.Thrust)
			metrics.ControlRoll.Set(float64(control.Roll))
			metrics.ControlPitch.Set(float64(control.Pitch))
			metrics.ControlYaw.Set(float64(control.Yaw))
			metrics.AttitudeDesiredRoll.Set(core.AttitudeDesired().Roll)
			metrics.AttitudeDesiredPitch.Set(core.AttitudeDesired().Pitch)
			metrics.AttitudeDesiredYaw.Set(core.AttitudeDesired().Yaw)
			if core.ActivateFailsafe() {
				if !wasFailsafe {
					metrics.FailsafeEngagements.Inc()
				}
				metrics.FailsafeActive.Set(1)
			} else {
				metrics.FailsafeActive.Set(0)
			}
			wasFailsafe = core.ActivateFailsafe()
			if gate.Latched() && !wasLatched {
				metrics.EmergencyLatchedTotal.Inc()
			}
			wasLatched = gate.Latched()
			metrics.ObserveTick(time.Since(tickStart))
			streamer.Publish(registry.Snapshot())

			scheduler.Advance()
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("telemetry HTTP server shutdown error")
	}
	lastControl.Zero()
	distributor.Stop()
	logger.Info("stabilizer shutdown complete")
}

// mockDistributor maps Control straight to a duty-cycle vector with no
// MAVLink link attached, for -sim runs.
type mockDistributor struct{}

func (mockDistributor) Distribute(c model.Control) [4]float64 {
	t := c.Thrust / model.ThrustMax
	return [4]float64{t, t, t, t}
}

func (mockDistributor) Stop() [4]float64 {
	return [4]float64{0, 0, 0, 0}
}

// toFloat64 accepts the numeric shapes a JSON-decoded parameter write can
// arrive as (encoding/json always decodes bare numbers into float64, but a
// caller constructing the value in Go might reasonably pass an int).
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func printBanner() {
	fmt.Printf(`
 ___ _        _    _ _ _
/ __| |_ __ _| |__(_) (_)_______ _ _
\__ \  _/ _` + "`" + ` | '_ \ / | |_ / -_) '_|
|___/\__\__,_|_.__/_|_|_/__\___|_|

quadrotor stabilization core v%s (%s, %s)

`, version, buildTime, gitCommit)
}
