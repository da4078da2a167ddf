// Package hashdir implements the concurrent extendible hash table used
// by the buffer pool as its page_id -> frame_id lookup directory.
//
// The directory grows by doubling: when a bucket overflows and cannot
// split locally (its local depth has caught up with the global depth),
// the whole directory vector doubles so the overflowing bucket can be
// split into two at the next depth. Buckets are shared by however many
// directory slots hash to them; sharing is sound because every public
// operation is serialized by one mutex.
package hashdir

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// HashFunc maps a key to a 64-bit hash. Production code uses xxHash;
// tests may inject hash(k) = k to make directory growth deterministic.
type HashFunc func(key int32) uint64

// DefaultHash hashes the 4 little-endian bytes of key through xxHash.
func DefaultHash(key int32) uint64 {
	var buf [4]byte
	buf[0] = byte(key)
	buf[1] = byte(key >> 8)
	buf[2] = byte(key >> 16)
	buf[3] = byte(key >> 24)
	return xxhash.Sum64(buf[:])
}

type entry struct {
	key   int32
	value int32
}

type bucket struct {
	localDepth int
	items      []entry
}

func (b *bucket) find(key int32) (int32, bool) {
	for _, e := range b.items {
		if e.key == key {
			return e.value, true
		}
	}
	return 0, false
}

func (b *bucket) set(key, value int32) {
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return
		}
	}
	b.items = append(b.items, entry{key, value})
}

func (b *bucket) remove(key int32) bool {
	for i, e := range b.items {
		if e.key == key {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}
	return false
}

// Directory is a concurrent extendible hash table mapping int32 keys
// (page ids) to int32 values (frame ids).
type Directory struct {
	mu          sync.Mutex
	globalDepth int
	dir         []*bucket
	bucketSize  int
	numBuckets  int
	hash        HashFunc
}

// New creates an empty directory with one bucket at global depth 0.
func New(bucketSize int, hash HashFunc) *Directory {
	if bucketSize <= 0 {
		bucketSize = 1
	}
	if hash == nil {
		hash = DefaultHash
	}
	b := &bucket{localDepth: 0}
	return &Directory{
		globalDepth: 0,
		dir:         []*bucket{b},
		bucketSize:  bucketSize,
		numBuckets:  1,
		hash:        hash,
	}
}

func (d *Directory) slot(key int32) int {
	mask := uint64(1)<<uint(d.globalDepth) - 1
	return int(d.hash(key) & mask)
}

// Find returns the value mapped to key, if present.
func (d *Directory) Find(key int32) (int32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.dir[d.slot(key)]
	return b.find(key)
}

// Remove deletes key from the directory, reporting whether it was present.
func (d *Directory) Remove(key int32) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	b := d.dir[d.slot(key)]
	return b.remove(key)
}

// Insert maps key to value, overwriting any existing mapping. It grows
// the directory (and splits buckets) as needed to make room.
func (d *Directory) Insert(key int32, value int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.insertLocked(key, value)
}

func (d *Directory) insertLocked(key, value int32) {
	idx := d.slot(key)
	b := d.dir[idx]

	// Overwrite in place if already present.
	for i := range b.items {
		if b.items[i].key == key {
			b.items[i].value = value
			return
		}
	}

	if len(b.items) < d.bucketSize {
		b.items = append(b.items, entry{key, value})
		return
	}

	d.split(idx)
	// The target bucket may have split again if every item in it hashed
	// identically modulo the new depth; retry until it fits.
	d.insertLocked(key, value)
}

// split grows the directory (if the overflowing bucket's local depth has
// caught up with global depth) and divides the bucket at dirIdx into two
// buckets at one deeper local depth, redistributing its items by the new
// high bit of their hash.
func (d *Directory) split(dirIdx int) {
	old := d.dir[dirIdx]

	if old.localDepth == d.globalDepth {
		// Double the directory: every slot's mirror at +2^globalDepth
		// points at the same bucket as before.
		d.dir = append(d.dir, d.dir...)
		d.globalDepth++
	}

	oldDepth := old.localDepth
	newDepth := oldDepth + 1
	splitBit := uint64(1) << uint(oldDepth)

	zero := &bucket{localDepth: newDepth}
	one := &bucket{localDepth: newDepth}
	for _, e := range old.items {
		if d.hash(e.key)&splitBit == 0 {
			zero.items = append(zero.items, e)
		} else {
			one.items = append(one.items, e)
		}
	}

	for i := range d.dir {
		if d.dir[i] == old {
			if uint64(i)&splitBit == 0 {
				d.dir[i] = zero
			} else {
				d.dir[i] = one
			}
		}
	}

	d.numBuckets++
}

// GlobalDepth returns the current number of directory bits in use.
func (d *Directory) GlobalDepth() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.globalDepth
}

// NumBuckets returns the number of distinct buckets currently allocated.
func (d *Directory) NumBuckets() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.numBuckets
}

// LocalDepth returns the local depth of the bucket key currently hashes
// to, for diagnostics and tests. Returns an error if the directory is
// empty (never happens in practice; New always seeds one bucket).
func (d *Directory) LocalDepth(key int32) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.dir) == 0 {
		return 0, fmt.Errorf("hashdir: empty directory")
	}
	return d.dir[d.slot(key)].localDepth, nil
}
