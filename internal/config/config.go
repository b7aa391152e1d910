// Package config loads the stabilization core's startup configuration from
// YAML (via go.yaml.in/yaml/v2, promoted here from the teacher's
// indirect-only dependency to direct use — see DESIGN.md), with flag
// overrides applied on top, matching the `yaml:"..."` struct-tag
// convention already present on Valkyrie/internal/propulsion/electric/motor.go.
package config

import (
	"os"

	"go.yaml.in/yaml/v2"

	"github.com/arobi/stabilizer/internal/attposctl"
	"github.com/arobi/stabilizer/internal/model"
	"github.com/arobi/stabilizer/internal/pidctl"
)

// PIDConfig is the YAML-facing mirror of pidctl.Config.
type PIDConfig struct {
	Kp              float64 `yaml:"kp"`
	Ki              float64 `yaml:"ki"`
	Kd              float64 `yaml:"kd"`
	IntegratorLimit float64 `yaml:"integrator_limit"`
	OutputLimit     float64 `yaml:"output_limit"`
}

func (c PIDConfig) toPIDConfig() pidctl.Config {
	return pidctl.Config{Kp: c.Kp, Ki: c.Ki, Kd: c.Kd, IntegratorLimit: c.IntegratorLimit, OutputLimit: c.OutputLimit}
}

// Config is the root configuration document.
type Config struct {
	RateLoop struct {
		MainHz     int `yaml:"main_hz"`
		AttitudeHz int `yaml:"attitude_hz"`
		PositionHz int `yaml:"position_hz"`
	} `yaml:"rate_loop"`

	Failsafe struct {
		LandingThrust float64 `yaml:"landing_thrust"`
		LandingTimeS  float64 `yaml:"landing_time_s"`
		RollBase      float64 `yaml:"roll_base"`
		PitchBase     float64 `yaml:"pitch_base"`
		ThrustStep    float64 `yaml:"thrust_step"`
	} `yaml:"failsafe"`

	TiltCompEnabled bool `yaml:"tilt_comp_enabled"`

	Position struct {
		X          PIDConfig `yaml:"x"`
		Y          PIDConfig `yaml:"y"`
		Thrust     PIDConfig `yaml:"thrust"`
		BaseThrust float64   `yaml:"base_thrust"`
	} `yaml:"position"`

	Attitude struct {
		OuterRoll  PIDConfig `yaml:"outer_roll"`
		OuterPitch PIDConfig `yaml:"outer_pitch"`
		OuterYaw   PIDConfig `yaml:"outer_yaw"`
		InnerRoll  PIDConfig `yaml:"inner_roll"`
		InnerPitch PIDConfig `yaml:"inner_pitch"`
		InnerYaw   PIDConfig `yaml:"inner_yaw"`
	} `yaml:"attitude"`

	Oscillator struct {
		Enabled   bool   `yaml:"enabled"`
		Frequency uint32 `yaml:"frequency"`
	} `yaml:"oscillator"`

	LogLevel  string `yaml:"log_level"`
	LogOutput string `yaml:"log_output"`
	HTTPAddr  string `yaml:"http_addr"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`
}

// Default returns the §6 parameter-surface defaults plus reasonable ambient
// values, used whenever no config file is given.
func Default() Config {
	var c Config
	c.RateLoop.MainHz, c.RateLoop.AttitudeHz, c.RateLoop.PositionHz = 500, 500, 100
	fs := model.DefaultFailsafeConfig()
	c.Failsafe.LandingThrust = fs.LandingThrust
	c.Failsafe.LandingTimeS = fs.LandingTimeS
	c.Failsafe.RollBase = fs.RollBase
	c.Failsafe.PitchBase = fs.PitchBase
	c.Failsafe.ThrustStep = fs.ThrustStep
	c.TiltCompEnabled = true
	c.Position.BaseThrust = 36000
	c.Oscillator.Frequency = 3000
	c.LogLevel = "info"
	c.LogOutput = "stdout"
	c.HTTPAddr = ":8093"
	c.NATS.URL = "nats://127.0.0.1:4222"
	c.NATS.Subject = "stabilizer.setpoint"
	return c
}

// Load reads and parses a YAML config file, falling back to Default() if
// path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RateLoopConfig builds and validates the model.RateLoopConfig triple.
func (c Config) RateLoopConfig() (model.RateLoopConfig, error) {
	return model.NewRateLoopConfig(c.RateLoop.MainHz, c.RateLoop.AttitudeHz, c.RateLoop.PositionHz)
}

// FailsafeConfig builds the model.FailsafeConfig.
func (c Config) FailsafeConfig() model.FailsafeConfig {
	return model.FailsafeConfig{
		LandingThrust: c.Failsafe.LandingThrust,
		LandingTimeS:  c.Failsafe.LandingTimeS,
		RollBase:      c.Failsafe.RollBase,
		PitchBase:     c.Failsafe.PitchBase,
		ThrustStep:    c.Failsafe.ThrustStep,
	}
}

// PositionGains builds the attposctl.PositionGains, given the
// position-stage sample period.
func (c Config) PositionGains(dt float64) attposctl.PositionGains {
	return attposctl.PositionGains{
		X:          c.Position.X.toPIDConfig(),
		Y:          c.Position.Y.toPIDConfig(),
		Thrust:     c.Position.Thrust.toPIDConfig(),
		BaseThrust: c.Position.BaseThrust,
		Dt:         dt,
	}
}

// AttitudeGains builds the attposctl.AttitudeGains.
func (c Config) AttitudeGains() attposctl.AttitudeGains {
	return attposctl.AttitudeGains{
		OuterRoll:  c.Attitude.OuterRoll.toPIDConfig(),
		OuterPitch: c.Attitude.OuterPitch.toPIDConfig(),
		OuterYaw:   c.Attitude.OuterYaw.toPIDConfig(),
		InnerRoll:  c.Attitude.InnerRoll.toPIDConfig(),
		InnerPitch: c.Attitude.InnerPitch.toPIDConfig(),
		InnerYaw:   c.Attitude.InnerYaw.toPIDConfig(),
	}
}
