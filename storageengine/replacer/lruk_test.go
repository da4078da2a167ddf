package replacer

import "testing"

// TestScenarioThree reproduces §8 scenario 3: K=2, frames 1,2,3, access
// sequence 1,2,3,1,2,1. Frame 3 is only accessed once (infinite
// K-distance, history list) so it's evicted first even though 1 and 2
// were accessed more recently — then frame 2 follows by cache-list LRU.
func TestScenarioThree(t *testing.T) {
	r := New(2)
	for _, f := range []FrameID{1, 2, 3} {
		r.RecordAccess(f)
		r.SetEvictable(f, true)
	}
	for _, f := range []FrameID{1, 2, 1} {
		r.RecordAccess(f)
	}

	victim, ok := r.Evict()
	if !ok || victim != 3 {
		t.Fatalf("first Evict() = (%d, %v), want (3, true)", victim, ok)
	}

	victim, ok = r.Evict()
	if !ok || victim != 2 {
		t.Fatalf("second Evict() = (%d, %v), want (2, true)", victim, ok)
	}
}

func TestEvictSkipsNonEvictable(t *testing.T) {
	r := New(2)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(1, false)
	r.SetEvictable(2, true)

	victim, ok := r.Evict()
	if !ok || victim != 2 {
		t.Fatalf("Evict() = (%d, %v), want (2, true)", victim, ok)
	}
}

func TestEvictReturnsFalseWhenNothingEvictable(t *testing.T) {
	r := New(2)
	r.RecordAccess(1)
	if _, ok := r.Evict(); ok {
		t.Fatalf("Evict() on all-non-evictable replacer returned ok=true")
	}
}

func TestSetEvictableTracksSize(t *testing.T) {
	r := New(2)
	r.RecordAccess(1)
	r.RecordAccess(2)

	if r.Size() != 0 {
		t.Fatalf("Size() = %d before any SetEvictable, want 0", r.Size())
	}

	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	if r.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", r.Size())
	}

	r.SetEvictable(1, false)
	if r.Size() != 1 {
		t.Fatalf("Size() = %d after unmarking frame 1, want 1", r.Size())
	}

	// Redundant calls must not double count.
	r.SetEvictable(1, false)
	if r.Size() != 1 {
		t.Fatalf("Size() = %d after redundant SetEvictable, want 1", r.Size())
	}
}

func TestRemoveNonEvictableIsProgrammerError(t *testing.T) {
	r := New(2)
	r.RecordAccess(1)
	if err := r.Remove(1); err != ErrNotEvictable {
		t.Fatalf("Remove(non-evictable) = %v, want ErrNotEvictable", err)
	}
}

func TestRemoveEvictableSucceeds(t *testing.T) {
	r := New(2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)
	if err := r.Remove(1); err != nil {
		t.Fatalf("Remove(evictable): %v", err)
	}
	if r.Size() != 0 {
		t.Fatalf("Size() = %d after Remove, want 0", r.Size())
	}
}

func TestKEqualsOneBehavesAsPureLRU(t *testing.T) {
	r := New(1)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	r.RecordAccess(1) // frame 1 now more recently used

	victim, ok := r.Evict()
	if !ok || victim != 2 {
		t.Fatalf("Evict() = (%d, %v), want (2, true)", victim, ok)
	}
}
