package safety

import (
	"testing"

	"github.com/arobi/stabilizer/internal/model"
)

type fakeDistributor struct {
	distributed model.Control
	distributeN int
	stopN       int
}

func (f *fakeDistributor) Distribute(c model.Control) [4]float64 {
	f.distributed = c
	f.distributeN++
	return [4]float64{0.5, 0.5, 0.5, 0.5}
}

func (f *fakeDistributor) Stop() [4]float64 {
	f.stopN++
	return [4]float64{0, 0, 0, 0}
}

// P7: emergency dominance — once latched, every motor command is zero
// regardless of the control vector handed in.
func TestGate_P7_EmergencyDominance(t *testing.T) {
	fd := &fakeDistributor{}
	g := NewGate(fd, nil)
	g.Set()

	c := model.Control{Thrust: 40000, Roll: 100, Pitch: -200, Yaw: 300}
	motors := g.Apply(&c)

	if motors != [4]float64{0, 0, 0, 0} {
		t.Errorf("motors = %v, want all zero", motors)
	}
	if fd.stopN != 1 || fd.distributeN != 0 {
		t.Errorf("stopN=%d distributeN=%d, want 1/0", fd.stopN, fd.distributeN)
	}
	if !c.IsZeroThrust() || c.Roll != 0 || c.Pitch != 0 || c.Yaw != 0 {
		t.Errorf("control not zeroed: %+v", c)
	}
}

func TestGate_UnlatchedDistributesNormally(t *testing.T) {
	fd := &fakeDistributor{}
	g := NewGate(fd, nil)

	c := model.Control{Thrust: 40000}
	g.Apply(&c)

	if fd.distributeN != 1 || fd.stopN != 0 {
		t.Errorf("distributeN=%d stopN=%d, want 1/0", fd.distributeN, fd.stopN)
	}
}

func TestGate_TimeoutLatchesAtZero(t *testing.T) {
	fd := &fakeDistributor{}
	g := NewGate(fd, nil)
	g.SetTimeout(3)

	for i := 0; i < 3; i++ {
		if g.Latched() {
			t.Fatalf("latched too early at i=%d", i)
		}
		g.Tick()
	}
	if !g.Latched() {
		t.Error("expected latched after countdown reaches 0")
	}
}

func TestGate_SetTimeoutClearsExistingLatch(t *testing.T) {
	fd := &fakeDistributor{}
	g := NewGate(fd, nil)
	g.Set()
	if !g.Latched() {
		t.Fatal("setup: expected latched")
	}
	g.SetTimeout(5)
	if g.Latched() {
		t.Error("SetTimeout should clear an existing latch")
	}
}

func TestGate_ClearRequiresExternalCall(t *testing.T) {
	fd := &fakeDistributor{}
	g := NewGate(fd, nil)
	g.Set()
	g.Tick() // ticking alone must not clear the latch
	if !g.Latched() {
		t.Error("latch cleared without an explicit Clear() call")
	}
	g.Clear()
	if g.Latched() {
		t.Error("expected unlatched after Clear()")
	}
}
