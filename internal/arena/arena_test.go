package arena

import "testing"

// TestHighWaterNeverExceedsCompileTimeBound is spec.md §8 invariant 8:
// the arena's high-water mark never exceeds its compile-time bound,
// across a sequence of alloc/reset cycles mimicking per-sample reuse.
func TestHighWaterNeverExceedsCompileTimeBound(t *testing.T) {
	a := NewVertexArena()
	for sample := 0; sample < 1000; sample++ {
		a.Reset()
		a.Alloc(MaxVertices / 2)
		a.Alloc(MaxVertices / 2)
		if a.HighWater() > MaxVertices {
			t.Fatalf("high-water mark %d exceeds compile-time bound %d", a.HighWater(), MaxVertices)
		}
	}
}

func TestResetRewindsOffsetNotHighWater(t *testing.T) {
	a := NewVertexArena()
	a.Alloc(10)
	a.Reset()
	if a.HighWater() != 10 {
		t.Errorf("expected Reset to preserve the high-water mark, got %d", a.HighWater())
	}
	a.Alloc(5)
	if got := a.HighWater(); got != 10 {
		t.Errorf("expected high-water mark to stay at the prior peak of 10, got %d", got)
	}
}

func TestAllocPanicsPastBound(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected Alloc to panic when exceeding MaxVertices")
		}
	}()
	a := NewVertexArena()
	a.Alloc(MaxVertices + 1)
}

func TestAllocReturnsFreshCapacityAfterReset(t *testing.T) {
	a := NewVertexArena()
	s := a.Alloc(3)
	if len(s) != 0 || cap(s) != 3 {
		t.Errorf("expected zero-length, 3-capacity slice, got len=%d cap=%d", len(s), cap(s))
	}
	a.Reset()
	s2 := a.Alloc(MaxVertices)
	if cap(s2) != MaxVertices {
		t.Errorf("expected a full-width allocation to succeed right after Reset, got cap=%d", cap(s2))
	}
}
