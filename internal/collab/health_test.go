package collab

import "testing"

func TestHealthVoter_DefaultThresholdIsMajority(t *testing.T) {
	v := NewHealthVoter(0)
	v.Observe(0, false)
	v.Observe(1, false)
	v.Observe(2, true)
	if !v.Failsafe() {
		t.Error("expected failsafe with 1/3 healthy reporters")
	}
}

func TestHealthVoter_HealthyWhenAboveThreshold(t *testing.T) {
	v := NewHealthVoter(0.5)
	v.Observe(0, true)
	v.Observe(1, true)
	v.Observe(2, false)
	if v.Failsafe() {
		t.Error("expected no failsafe with 2/3 healthy reporters")
	}
}

func TestHealthVoter_NoObservationsIsHealthy(t *testing.T) {
	v := NewHealthVoter(0.5)
	if v.Failsafe() {
		t.Error("expected no failsafe before any observation")
	}
}

func TestHealthVoter_ObserveReplacesSameReporter(t *testing.T) {
	v := NewHealthVoter(0.5)
	v.Observe(0, false)
	v.Observe(0, true)
	if v.Failsafe() {
		t.Error("expected the later observation for reporter 0 to win")
	}
}
