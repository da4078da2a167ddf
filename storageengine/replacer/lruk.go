// Package replacer implements the LRU-K eviction policy: among
// evictable frames, evict the one whose K-th most recent access is
// furthest in the past. A frame seen fewer than K times has infinite
// backward distance and is always preferred over one that has reached
// K accesses, with ties broken FIFO; frames that have reached K
// accesses break ties LRU.
package replacer

import (
	"container/list"
	"fmt"
	"sync"
)

// FrameID identifies a slot in the buffer pool's frame array.
type FrameID = int32

// ErrNotEvictable is returned by Remove when asked to remove a frame
// that has not been marked evictable — a programmer error, since the
// buffer pool should never ask the replacer to drop a pinned frame.
var ErrNotEvictable = fmt.Errorf("replacer: frame is not evictable")

type frameEntry struct {
	id          FrameID
	accessCount int
	evictable   bool
	inHistory   bool
	elem        *list.Element
}

// Replacer tracks access history for every frame the buffer pool has
// touched and selects eviction victims by the LRU-K policy.
type Replacer struct {
	mu          sync.Mutex
	k           int
	currentSize int
	entries     map[FrameID]*frameEntry
	historyList *list.List // FIFO: front = oldest first-access, frames with count < k
	cacheList   *list.List // LRU: front = least recently used, frames with count >= k
}

// New creates a replacer with the given K-distance parameter.
func New(k int) *Replacer {
	if k < 1 {
		k = 1
	}
	return &Replacer{
		k:           k,
		entries:     make(map[FrameID]*frameEntry),
		historyList: list.New(),
		cacheList:   list.New(),
	}
}

// RecordAccess registers an access to frameID, advancing its access
// count and moving it between the history and cache lists as it crosses
// the K threshold. It does not change evictability.
func (r *Replacer) RecordAccess(frameID FrameID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[frameID]
	if !ok {
		e = &frameEntry{id: frameID}
		r.entries[frameID] = e
	}
	e.accessCount++

	switch {
	case e.accessCount < r.k:
		if e.elem == nil {
			e.elem = r.historyList.PushBack(frameID)
			e.inHistory = true
		}
	case e.accessCount == r.k:
		if e.inHistory {
			r.historyList.Remove(e.elem)
			e.inHistory = false
		}
		e.elem = r.cacheList.PushBack(frameID)
	default:
		if e.elem != nil && !e.inHistory {
			r.cacheList.MoveToBack(e.elem)
		} else {
			e.elem = r.cacheList.PushBack(frameID)
		}
	}
}

// SetEvictable marks frameID as evictable or not, adjusting the
// replacer's evictable-frame count. Unknown frames are ignored.
func (r *Replacer) SetEvictable(frameID FrameID, evictable bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[frameID]
	if !ok {
		return
	}
	if e.evictable == evictable {
		return
	}
	e.evictable = evictable
	if evictable {
		r.currentSize++
	} else {
		r.currentSize--
	}
}

// Evict selects and removes the highest-priority evictable frame:
// the oldest entry in the history list (infinite K-distance), or if
// none is evictable, the least-recently-used entry in the cache list.
func (r *Replacer) Evict() (FrameID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for elem := r.historyList.Front(); elem != nil; elem = elem.Next() {
		frameID := elem.Value.(FrameID)
		if e := r.entries[frameID]; e.evictable {
			r.historyList.Remove(elem)
			delete(r.entries, frameID)
			r.currentSize--
			return frameID, true
		}
	}

	for elem := r.cacheList.Front(); elem != nil; elem = elem.Next() {
		frameID := elem.Value.(FrameID)
		if e := r.entries[frameID]; e.evictable {
			r.cacheList.Remove(elem)
			delete(r.entries, frameID)
			r.currentSize--
			return frameID, true
		}
	}

	return 0, false
}

// Remove unlinks frameID from the replacer. frameID must be evictable;
// removing a non-evictable (pinned) frame is a programmer error.
// Removing an unknown frame is a silent no-op, matching the buffer
// pool's "nothing to do" convention for already-absent state.
func (r *Replacer) Remove(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[frameID]
	if !ok {
		return nil
	}
	if !e.evictable {
		return ErrNotEvictable
	}

	if e.inHistory {
		r.historyList.Remove(e.elem)
	} else {
		r.cacheList.Remove(e.elem)
	}
	delete(r.entries, frameID)
	r.currentSize--
	return nil
}

// Size returns the number of currently evictable frames.
func (r *Replacer) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentSize
}
