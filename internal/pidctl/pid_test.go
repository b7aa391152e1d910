package pidctl

import "testing"

func TestPID_ProportionalOnly(t *testing.T) {
	p := New(Config{Kp: 2.0})
	out := p.Update(10, 0, 0.01)
	if out != 20 {
		t.Errorf("Update() = %v, want 20", out)
	}
}

func TestPID_IntegratorAccumulates(t *testing.T) {
	p := New(Config{Ki: 1.0})
	p.Update(1, 0, 1.0)
	out := p.Update(1, 0, 1.0)
	if out != 2.0 {
		t.Errorf("Update() = %v, want 2.0 after two steps", out)
	}
}

func TestPID_IntegratorLimitClamps(t *testing.T) {
	p := New(Config{Ki: 1.0, IntegratorLimit: 5.0})
	for i := 0; i < 20; i++ {
		p.Update(1, 0, 1.0)
	}
	out := p.Update(1, 0, 1.0)
	if out > 5.0 {
		t.Errorf("Update() = %v, want <= 5.0 (integrator clamp)", out)
	}
}

func TestPID_OutputLimitClamps(t *testing.T) {
	p := New(Config{Kp: 100.0, OutputLimit: 10.0})
	out := p.Update(5, 0, 0.01)
	if out != 10.0 {
		t.Errorf("Update() = %v, want 10.0 (output clamp)", out)
	}
}

func TestPID_ResetClearsState(t *testing.T) {
	p := New(Config{Ki: 1.0})
	p.Update(1, 0, 1.0)
	p.Reset()
	out := p.Update(0, 0, 1.0)
	if out != 0 {
		t.Errorf("Update() after Reset() = %v, want 0", out)
	}
}

func TestPID_DerivativeRequiresPriorSample(t *testing.T) {
	p := New(Config{Kd: 1.0})
	out := p.Update(10, 0, 0.1)
	if out != 0 {
		t.Errorf("first Update() with only Kd = %v, want 0 (no prior error)", out)
	}
}
