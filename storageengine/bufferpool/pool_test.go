package bufferpool

import (
	"path/filepath"
	"testing"

	"CoreStore/storageengine/disk"
)

func newTestPool(t *testing.T, poolSize int) (*Pool, *disk.Manager) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := disk.Open(path)
	if err != nil {
		t.Fatalf("disk.Open: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return New(poolSize, 2, 2, d, nil), d
}

// TestScenarioOnePoolExhaustion reproduces §8 scenario 1: pool_size=3,
// pin three new pages, then ask for a fourth with nothing unpinned and
// nothing evictable — NewPage must report exhaustion, not panic or
// silently evict a pinned frame.
func TestScenarioOnePoolExhaustion(t *testing.T) {
	p, _ := newTestPool(t, 3)

	for i := 0; i < 3; i++ {
		id, pg := p.NewPage()
		if pg == nil {
			t.Fatalf("NewPage() #%d returned nil, want a page", i)
		}
		_ = id
	}

	id, pg := p.NewPage()
	if pg != nil {
		t.Fatalf("NewPage() on exhausted pool = (%d, non-nil), want nil page", id)
	}
}

// TestScenarioTwoEvictThenFetch reproduces §8 scenario 2: pool_size=3,
// fill the pool, unpin one page, request a new page (forcing eviction
// of the unpinned frame), unpin the new page so a frame can be evicted
// again, then fetch the evicted page back from disk and confirm its
// contents survived the round trip.
func TestScenarioTwoEvictThenFetch(t *testing.T) {
	p, _ := newTestPool(t, 3)

	ids := make([]int32, 3)
	for i := 0; i < 3; i++ {
		id, pg := p.NewPage()
		if pg == nil {
			t.Fatalf("NewPage() #%d returned nil", i)
		}
		pg.Data[0] = byte(i + 1)
		ids[i] = id
	}

	// Unpin page 0 (victim candidate) and flag it dirty so eviction
	// must flush it before the frame is reused.
	if !p.UnpinPage(ids[0], true) {
		t.Fatalf("UnpinPage(%d) = false, want true", ids[0])
	}

	newID, pg := p.NewPage()
	if pg == nil {
		t.Fatalf("NewPage() after unpin returned nil, want eviction to free a frame")
	}
	if newID == ids[0] {
		t.Fatalf("NewPage() reused page id %d, want a fresh id", newID)
	}

	// Every frame is pinned again; release the new page so the fetch
	// below has a frame to evict.
	if !p.UnpinPage(newID, false) {
		t.Fatalf("UnpinPage(%d) = false, want true", newID)
	}

	fetched := p.FetchPage(ids[0])
	if fetched == nil {
		t.Fatalf("FetchPage(%d) after eviction returned nil", ids[0])
	}
	if fetched.Data[0] != 1 {
		t.Fatalf("FetchPage(%d).Data[0] = %d, want 1 (evicted page must flush dirty data)", ids[0], fetched.Data[0])
	}
}

func TestUnpinUnknownPageFails(t *testing.T) {
	p, _ := newTestPool(t, 2)
	if p.UnpinPage(999, false) {
		t.Fatalf("UnpinPage(unknown) = true, want false")
	}
}

func TestDeletePinnedPageFails(t *testing.T) {
	p, _ := newTestPool(t, 2)
	id, pg := p.NewPage()
	if pg == nil {
		t.Fatalf("NewPage() returned nil")
	}
	if p.DeletePage(id) {
		t.Fatalf("DeletePage(pinned) = true, want false")
	}
}

func TestDeleteUnpinnedPageSucceeds(t *testing.T) {
	p, _ := newTestPool(t, 2)
	id, pg := p.NewPage()
	if pg == nil {
		t.Fatalf("NewPage() returned nil")
	}
	p.UnpinPage(id, false)
	if !p.DeletePage(id) {
		t.Fatalf("DeletePage(unpinned) = false, want true")
	}
	if _, ok := p.dir.Find(id); ok {
		t.Fatalf("page %d still present in directory after DeletePage", id)
	}
}

// TestScenarioSixDeleteNotResident reproduces §8 scenario 6: deleting
// a page id that was never fetched into the pool succeeds trivially
// and still deallocates the on-disk id for reuse.
func TestScenarioSixDeleteNotResident(t *testing.T) {
	p, d := newTestPool(t, 2)

	neverFetched := d.AllocatePage()
	if !p.DeletePage(neverFetched) {
		t.Fatalf("DeletePage(never-fetched) = false, want true")
	}

	reused := d.AllocatePage()
	if reused != neverFetched {
		t.Fatalf("AllocatePage() after delete = %d, want reused id %d", reused, neverFetched)
	}
}

func TestFlushAllPagesClearsDirtyFlag(t *testing.T) {
	p, _ := newTestPool(t, 2)
	id, pg := p.NewPage()
	pg.Data[0] = 42
	p.UnpinPage(id, true)

	p.FlushAllPages()

	frameID, _ := p.dir.Find(id)
	if p.frames[frameID].IsDirty {
		t.Fatalf("page %d still dirty after FlushAllPages", id)
	}
}
