package config

import "testing"

func TestDefault_ProducesValidRateLoopConfig(t *testing.T) {
	cfg := Default()
	rc, err := cfg.RateLoopConfig()
	if err != nil {
		t.Fatalf("RateLoopConfig: %v", err)
	}
	if rc.MainHz != 500 || rc.AttitudeHz != 500 || rc.PositionHz != 100 {
		t.Errorf("rc = %+v, want 500/500/100", rc)
	}
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Failsafe.LandingThrust != 36000 {
		t.Errorf("LandingThrust = %v, want 36000", cfg.Failsafe.LandingThrust)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/nonexistent/path/to/config.yaml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestPositionGains_CarriesDt(t *testing.T) {
	cfg := Default()
	gains := cfg.PositionGains(0.01)
	if gains.Dt != 0.01 {
		t.Errorf("Dt = %v, want 0.01", gains.Dt)
	}
	if gains.BaseThrust != 36000 {
		t.Errorf("BaseThrust = %v, want 36000", gains.BaseThrust)
	}
}
