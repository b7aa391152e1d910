package telemetry

import "testing"

func TestRegistry_Float64RoundTrip(t *testing.T) {
	var thrust float64 = 36000
	r := New()
	r.Register(Float64("controller.landingThrust", &thrust))

	got, ok := r.Get("controller.landingThrust")
	if !ok || got.(float64) != 36000 {
		t.Fatalf("Get = %v, %v, want 36000, true", got, ok)
	}

	if !r.Set("controller.landingThrust", 40000.0) {
		t.Fatal("Set returned false")
	}
	if thrust != 40000 {
		t.Errorf("thrust = %v, want 40000 after Set", thrust)
	}
}

func TestRegistry_SetRejectsWrongType(t *testing.T) {
	var v float64
	r := New()
	r.Register(Float64("x", &v))
	if r.Set("x", "not a float") {
		t.Error("Set accepted wrong type")
	}
}

func TestRegistry_ReadOnlyRejectsSet(t *testing.T) {
	r := New()
	r.Register(ReadOnly("actuatorThrust", func() any { return 12345.0 }))
	if r.Set("actuatorThrust", 1.0) {
		t.Error("Set succeeded on a read-only binding")
	}
	got, ok := r.Get("actuatorThrust")
	if !ok || got.(float64) != 12345.0 {
		t.Errorf("Get = %v, %v, want 12345.0, true", got, ok)
	}
}

func TestRegistry_UnknownNameFails(t *testing.T) {
	r := New()
	if _, ok := r.Get("nonexistent"); ok {
		t.Error("Get succeeded for unregistered name")
	}
	if r.Set("nonexistent", 1.0) {
		t.Error("Set succeeded for unregistered name")
	}
}

func TestRegistry_SnapshotIncludesAllBindings(t *testing.T) {
	var a, b float64 = 1, 2
	r := New()
	r.Register(Float64("a", &a))
	r.Register(Float64("b", &b))

	snap := r.Snapshot()
	if len(snap) != 2 || snap["a"] != 1.0 || snap["b"] != 2.0 {
		t.Errorf("Snapshot = %v, want {a:1, b:2}", snap)
	}
}
