// Package bufferpool implements the buffer pool manager: a fixed-size
// array of in-memory page frames backed by the disk manager, indexed by
// an extendible hash directory (page_id -> frame_id) and evicted by an
// LRU-K replacer. One coarse mutex serializes every operation; the lock
// order when a caller must also touch the directory or replacer is
// always buffer_pool -> {directory, replacer}.
package bufferpool

import (
	"fmt"
	"sync"

	"CoreStore/internal/corelog"
	"CoreStore/storageengine/disk"
	"CoreStore/storageengine/hashdir"
	"CoreStore/storageengine/page"
	"CoreStore/storageengine/replacer"
)

// Pool owns the frame array and coordinates the directory, replacer,
// and disk manager to present pages to callers by page id.
type Pool struct {
	mu sync.Mutex

	frames   []*page.Page
	freeList []int32 // frame ids not holding any page

	dir      *hashdir.Directory
	replacer *replacer.Replacer
	disk     *disk.Manager
	log      *corelog.Logger
}

// New creates a pool of poolSize frames, backed by disk and using
// bucketSize-sized buckets and a K-distance of replacerK for eviction.
func New(poolSize, bucketSize, replacerK int, d *disk.Manager, log *corelog.Logger) *Pool {
	frames := make([]*page.Page, poolSize)
	free := make([]int32, poolSize)
	for i := 0; i < poolSize; i++ {
		frames[i] = page.New()
		free[i] = int32(i)
	}
	return &Pool{
		frames:   frames,
		freeList: free,
		dir:      hashdir.New(bucketSize, hashdir.DefaultHash),
		replacer: replacer.New(replacerK),
		disk:     d,
		log:      log.With("BufferPool"),
	}
}

// victimFrame returns a free frame id, evicting one via the replacer
// if the free list is empty. Returns false if no frame is available
// (every frame is pinned) — resource exhaustion.
func (p *Pool) victimFrame() (int32, bool) {
	if n := len(p.freeList); n > 0 {
		id := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return id, true
	}

	frameID, ok := p.replacer.Evict()
	if !ok {
		return 0, false
	}

	victim := p.frames[frameID]
	if victim.IsDirty {
		if err := p.disk.WritePage(victim.ID, victim); err != nil {
			p.log.Errorf("flush victim frame %d (page %d): %v", frameID, victim.ID, err)
		}
	}
	p.dir.Remove(victim.ID)
	victim.Reset()
	return frameID, true
}

// NewPage allocates a fresh page on disk and pins it into a frame,
// returning its page id and contents. Returns (InvalidID, nil) if
// every frame is pinned and none can be evicted.
func (p *Pool) NewPage() (int32, *page.Page) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.victimFrame()
	if !ok {
		p.log.Warnf("NewPage: pool exhausted")
		return page.InvalidID, nil
	}

	pageID := p.disk.AllocatePage()
	pg := p.frames[frameID]
	pg.ID = pageID
	pg.PinCount = 1
	pg.IsDirty = false

	p.dir.Insert(pageID, frameID)
	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)

	return pageID, pg
}

// FetchPage pins and returns the page with the given id, reading it
// from disk on a miss. Returns nil if the page cannot be brought in
// because the pool is exhausted.
func (p *Pool) FetchPage(pageID int32) *page.Page {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frameID, ok := p.dir.Find(pageID); ok {
		pg := p.frames[frameID]
		pg.PinCount++
		p.replacer.RecordAccess(frameID)
		p.replacer.SetEvictable(frameID, false)
		return pg
	}

	frameID, ok := p.victimFrame()
	if !ok {
		p.log.Warnf("FetchPage(%d): pool exhausted", pageID)
		return nil
	}

	pg := p.frames[frameID]
	if err := p.disk.ReadPage(pageID, pg); err != nil {
		p.log.Errorf("FetchPage(%d): %v", pageID, err)
		p.freeList = append(p.freeList, frameID)
		return nil
	}
	pg.PinCount = 1

	p.dir.Insert(pageID, frameID)
	p.replacer.RecordAccess(frameID)
	p.replacer.SetEvictable(frameID, false)

	return pg
}

// UnpinPage decrements the pin count of pageID, marking it dirty if
// isDirty is true. Once the pin count reaches zero the frame becomes
// eligible for eviction. Returns false if the page is not in the pool
// or is already unpinned.
func (p *Pool) UnpinPage(pageID int32, isDirty bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.dir.Find(pageID)
	if !ok {
		return false
	}
	pg := p.frames[frameID]
	if pg.PinCount <= 0 {
		return false
	}

	if isDirty {
		pg.IsDirty = true
	}
	pg.PinCount--
	if pg.PinCount == 0 {
		p.replacer.SetEvictable(frameID, true)
	}
	return true
}

// FlushPage writes pageID to disk regardless of its dirty flag and
// clears the flag on success. Returns false if the page is not resident.
func (p *Pool) FlushPage(pageID int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.dir.Find(pageID)
	if !ok {
		return false
	}
	pg := p.frames[frameID]
	if err := p.disk.WritePage(pageID, pg); err != nil {
		p.log.Errorf("FlushPage(%d): %v", pageID, err)
		return false
	}
	pg.IsDirty = false
	return true
}

// FlushAllPages writes every resident page to disk.
func (p *Pool) FlushAllPages() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pg := range p.frames {
		if pg.ID == page.InvalidID {
			continue
		}
		if err := p.disk.WritePage(pg.ID, pg); err != nil {
			p.log.Errorf("FlushAllPages: page %d: %v", pg.ID, err)
			continue
		}
		pg.IsDirty = false
	}
}

// DeletePage removes pageID from the pool, writing it out first if it
// is dirty, and deallocates it on disk. Returns false if the page is
// currently pinned; a missing page is treated as already deleted and
// returns true.
func (p *Pool) DeletePage(pageID int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	frameID, ok := p.dir.Find(pageID)
	if !ok {
		p.disk.DeallocatePage(pageID)
		return true
	}
	pg := p.frames[frameID]
	if pg.PinCount > 0 {
		return false
	}

	if pg.IsDirty {
		if err := p.disk.WritePage(pageID, pg); err != nil {
			p.log.Errorf("DeletePage(%d): flush: %v", pageID, err)
		}
	}
	p.dir.Remove(pageID)
	if err := p.replacer.Remove(frameID); err != nil {
		p.log.Errorf("DeletePage(%d): replacer.Remove: %v", pageID, err)
	}
	p.disk.DeallocatePage(pageID)
	pg.Reset()
	p.freeList = append(p.freeList, frameID)
	return true
}

// ErrPoolExhausted is available to callers that prefer an error over a
// nil page for resource exhaustion. Nothing in this module returns it;
// the index layer reports exhaustion with its own wrapped errors.
var ErrPoolExhausted = fmt.Errorf("bufferpool: no free frame and nothing evictable")
