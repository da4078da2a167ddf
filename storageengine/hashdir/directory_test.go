package hashdir

import "testing"

// identityHash makes directory growth deterministic for the literal
// scenario in the specification: hash(k) = k.
func identityHash(key int32) uint64 {
	if key < 0 {
		return uint64(-key)
	}
	return uint64(key)
}

func TestFindAfterInsert(t *testing.T) {
	d := New(2, identityHash)
	d.Insert(7, 100)
	v, ok := d.Find(7)
	if !ok || v != 100 {
		t.Fatalf("Find(7) = (%d, %v), want (100, true)", v, ok)
	}
}

func TestRemoveThenFindMisses(t *testing.T) {
	d := New(2, identityHash)
	d.Insert(7, 100)
	if !d.Remove(7) {
		t.Fatalf("Remove(7) = false, want true")
	}
	if _, ok := d.Find(7); ok {
		t.Fatalf("Find(7) after remove = found, want miss")
	}
}

func TestInsertOverwritesExisting(t *testing.T) {
	d := New(2, identityHash)
	d.Insert(7, 100)
	d.Insert(7, 200)
	v, ok := d.Find(7)
	if !ok || v != 200 {
		t.Fatalf("Find(7) = (%d, %v), want (200, true)", v, ok)
	}
}

// TestSplitScenario reproduces §8 scenario 4: bucket_size=2, keys
// 0, 4, 8 inserted with hash(k)=k. Inserting 8 overflows the bucket
// holding 0 and 4; all three share their two low bits, so the directory
// keeps doubling until bit 2 separates 4 from 0 and 8. All three keys
// must remain findable and at least two buckets must exist.
func TestSplitScenario(t *testing.T) {
	d := New(2, identityHash)
	d.Insert(0, 0)
	d.Insert(4, 4)
	d.Insert(8, 8)

	for _, k := range []int32{0, 4, 8} {
		v, ok := d.Find(k)
		if !ok || v != k {
			t.Fatalf("Find(%d) = (%d, %v), want (%d, true)", k, v, ok, k)
		}
	}

	if d.NumBuckets() < 2 {
		t.Fatalf("NumBuckets() = %d, want >= 2", d.NumBuckets())
	}
}

func TestLocalDepthNeverExceedsGlobalDepth(t *testing.T) {
	d := New(1, identityHash)
	for i := int32(0); i < 50; i++ {
		d.Insert(i*8, i) // all share low 3 bits: forces repeated splitting
	}
	for i := int32(0); i < 50; i++ {
		depth, err := d.LocalDepth(i * 8)
		if err != nil {
			t.Fatalf("LocalDepth: %v", err)
		}
		if depth > d.GlobalDepth() {
			t.Fatalf("local depth %d exceeds global depth %d", depth, d.GlobalDepth())
		}
	}
}

func TestManyKeysAllFindable(t *testing.T) {
	d := New(3, DefaultHash)
	const n = 500
	for i := int32(0); i < n; i++ {
		d.Insert(i, i*10)
	}
	for i := int32(0); i < n; i++ {
		v, ok := d.Find(i)
		if !ok || v != i*10 {
			t.Fatalf("Find(%d) = (%d, %v), want (%d, true)", i, v, ok, i*10)
		}
	}
}
