package bptree

import (
	"bytes"
	"fmt"
	"sync"

	"CoreStore/internal/corelog"
	"CoreStore/storageengine/bufferpool"
	"CoreStore/storageengine/header"
	"CoreStore/storageengine/page"
)

// Tree is a disk-resident B+-tree index over unique []byte keys. All
// structural operations (insert and the splits it triggers) are
// mutually exclusive; the specification does not require concurrent
// readers during a write, so Tree serializes everything behind one
// mutex rather than latch-crabbing level by level.
type Tree struct {
	mu sync.Mutex

	name            string
	pool            *bufferpool.Pool
	catalog         *header.Catalog
	cmp             Comparator
	leafMaxSize     int
	internalMaxSize int
	rootPageID      int32
	log             *corelog.Logger
}

// Open loads (or creates the bookkeeping for) the named index. The
// root page itself is allocated lazily on the first Insert.
func Open(pool *bufferpool.Pool, catalog *header.Catalog, name string, leafMaxSize, internalMaxSize int, cmp Comparator, log *corelog.Logger) (*Tree, error) {
	if cmp == nil {
		cmp = bytes.Compare
	}
	t := &Tree{
		name:            name,
		pool:            pool,
		catalog:         catalog,
		cmp:             cmp,
		leafMaxSize:     leafMaxSize,
		internalMaxSize: internalMaxSize,
		rootPageID:      page.InvalidID,
		log:             log.With("BPlusTree"),
	}

	root, ok, err := catalog.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("bptree: open %q: %w", name, err)
	}
	if ok {
		t.rootPageID = root
		t.log.Infof("opened index %q root=%d", name, root)
	} else {
		t.log.Infof("opened new index %q (no root yet)", name)
	}
	return t, nil
}

// RootPageID reports the tree's current root, or page.InvalidID if empty.
func (t *Tree) RootPageID() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rootPageID
}

func (t *Tree) fetchNode(pageID int32) (*node, error) {
	pg := t.pool.FetchPage(pageID)
	if pg == nil {
		return nil, fmt.Errorf("bptree: fetch page %d: buffer pool exhausted", pageID)
	}
	n, err := decodeNode(pageID, pg.Data[:])
	if err != nil {
		t.pool.UnpinPage(pageID, false)
		return nil, err
	}
	return n, nil
}

// writeNode encodes n back into its buffer pool frame. Caller still
// owns the pin and must unpin (dirty) separately.
func (t *Tree) writeNode(n *node) error {
	pg := t.pool.FetchPage(n.pageID)
	if pg == nil {
		return fmt.Errorf("bptree: write node %d: buffer pool exhausted", n.pageID)
	}
	defer t.pool.UnpinPage(n.pageID, false)

	buf, err := encodeNode(n)
	if err != nil {
		return err
	}
	copy(pg.Data[:], buf)
	return nil
}

func (t *Tree) allocateNode(nt NodeType, maxSize int) (*node, error) {
	pageID, pg := t.pool.NewPage()
	if pg == nil {
		return nil, fmt.Errorf("bptree: allocate node: buffer pool exhausted")
	}
	var n *node
	if nt == Leaf {
		n = newLeaf(pageID, maxSize)
	} else {
		n = newInternal(pageID, maxSize)
	}
	if err := t.writeNode(n); err != nil {
		t.pool.UnpinPage(pageID, false)
		t.pool.DeletePage(pageID)
		return nil, err
	}
	return n, nil
}

func (t *Tree) saveRoot(pageID int32) error {
	t.rootPageID = pageID
	return t.catalog.Upsert(t.name, pageID)
}

// GetValue looks up key, returning its value and true if present.
func (t *Tree) GetValue(key []byte) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rootPageID == page.InvalidID {
		return nil, false, nil
	}

	leaf, err := t.findLeaf(t.rootPageID, key)
	if err != nil {
		return nil, false, err
	}
	defer t.pool.UnpinPage(leaf.pageID, false)

	idx := exactMatch(leaf.keys, key, t.cmp)
	if idx < 0 {
		return nil, false, nil
	}
	return leaf.values[idx], true, nil
}

// findLeaf descends from the given page id to the leaf that would
// contain key, unpinning every internal node it passes through and
// returning the leaf still pinned. Each step re-fetches the child by
// its page id directly from the directory entry just read — never
// from a cached pointer taken before the fetch — so a parent mutated
// concurrently with the descent can never steer us to a stale child.
func (t *Tree) findLeaf(pageID int32, key []byte) (*node, error) {
	for {
		n, err := t.fetchNode(pageID)
		if err != nil {
			return nil, err
		}
		if n.nodeType == Leaf {
			return n, nil
		}
		childIdx := descendChild(n, key, t.cmp)
		if childIdx >= len(n.children) {
			t.pool.UnpinPage(pageID, false)
			return nil, fmt.Errorf("bptree: internal node %d has no child at slot %d", pageID, childIdx)
		}
		nextID := n.children[childIdx]
		t.pool.UnpinPage(pageID, false)
		pageID = nextID
	}
}
