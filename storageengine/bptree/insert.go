package bptree

import (
	"fmt"

	"CoreStore/storageengine/page"
)

// Insert adds (key, value). Returns false (no mutation) if key is
// already present.
func (t *Tree) Insert(key, value []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rootPageID == page.InvalidID {
		root, err := t.allocateNode(Leaf, t.leafMaxSize)
		if err != nil {
			return false, fmt.Errorf("bptree: insert: allocate root: %w", err)
		}
		root.keys = append(root.keys, key)
		root.values = append(root.values, value)
		if err := t.writeNode(root); err != nil {
			t.pool.UnpinPage(root.pageID, false)
			return false, err
		}
		t.pool.UnpinPage(root.pageID, true)
		if err := t.saveRoot(root.pageID); err != nil {
			return false, fmt.Errorf("bptree: insert: save root: %w", err)
		}
		return true, nil
	}

	leaf, err := t.findLeaf(t.rootPageID, key)
	if err != nil {
		return false, err
	}

	idx := exactMatch(leaf.keys, key, t.cmp)
	if idx >= 0 {
		t.pool.UnpinPage(leaf.pageID, false)
		return false, nil
	}

	pos := lowerBound(leaf.keys, key, t.cmp)
	leaf.insertPairAt(pos, key, value)

	if err := t.writeNode(leaf); err != nil {
		t.pool.UnpinPage(leaf.pageID, false)
		return false, err
	}

	if leaf.size() < t.leafMaxSize {
		t.pool.UnpinPage(leaf.pageID, true)
		return true, nil
	}

	if err := t.splitLeaf(leaf); err != nil {
		return false, err
	}
	return true, nil
}

// splitLeaf moves the upper half of leaf's entries into a fresh
// sibling, splices the sibling into the next-page chain, and promotes
// the sibling's first key into leaf's parent. leaf is still pinned
// from the caller; this function unpins it before returning.
func (t *Tree) splitLeaf(leaf *node) error {
	mid := leaf.size() / 2

	sibling, err := t.allocateNode(Leaf, t.leafMaxSize)
	if err != nil {
		t.pool.UnpinPage(leaf.pageID, true)
		return fmt.Errorf("bptree: splitLeaf: allocate sibling: %w", err)
	}

	sibling.keys = append(sibling.keys, leaf.keys[mid:]...)
	sibling.values = append(sibling.values, leaf.values[mid:]...)
	sibling.nextPageID = leaf.nextPageID
	sibling.parentPageID = leaf.parentPageID

	leaf.keys = leaf.keys[:mid]
	leaf.values = leaf.values[:mid]
	leaf.nextPageID = sibling.pageID

	sepKey := sibling.keys[0]

	if err := t.writeNode(sibling); err != nil {
		t.pool.UnpinPage(sibling.pageID, false)
		t.pool.UnpinPage(leaf.pageID, true)
		return err
	}
	if err := t.writeNode(leaf); err != nil {
		t.pool.UnpinPage(sibling.pageID, true)
		t.pool.UnpinPage(leaf.pageID, false)
		return err
	}

	leafPageID, leafParent := leaf.pageID, leaf.parentPageID
	siblingPageID := sibling.pageID
	t.pool.UnpinPage(sibling.pageID, true)
	t.pool.UnpinPage(leaf.pageID, true)
	t.log.Debugf("split leaf %d -> sibling %d, sep=%v", leafPageID, siblingPageID, sepKey)

	if leafPageID == t.rootPageID {
		return t.createRoot(leafPageID, sepKey, siblingPageID)
	}
	return t.insertIntoParent(leafParent, leafPageID, sepKey, siblingPageID)
}

// insertIntoParent inserts (sepKey, rightPageID) into parentPageID
// immediately after the slot whose child is leftPageID, splitting the
// parent (and recursing upward) if it overflows.
func (t *Tree) insertIntoParent(parentPageID, leftPageID int32, sepKey []byte, rightPageID int32) error {
	parent, err := t.fetchNode(parentPageID)
	if err != nil {
		return fmt.Errorf("bptree: insertIntoParent: fetch parent %d: %w", parentPageID, err)
	}

	idx := parent.childIndex(leftPageID)
	if idx < 0 {
		t.pool.UnpinPage(parentPageID, false)
		return fmt.Errorf("bptree: insertIntoParent: child %d not found in parent %d", leftPageID, parentPageID)
	}
	parent.insertChildAt(idx+1, sepKey, rightPageID)

	right, err := t.fetchNode(rightPageID)
	if err == nil {
		right.parentPageID = parentPageID
		if werr := t.writeNode(right); werr != nil {
			t.pool.UnpinPage(rightPageID, false)
			t.pool.UnpinPage(parentPageID, false)
			return werr
		}
		t.pool.UnpinPage(rightPageID, true)
	}

	if err := t.writeNode(parent); err != nil {
		t.pool.UnpinPage(parentPageID, false)
		return err
	}

	if parent.size() <= t.internalMaxSize {
		t.pool.UnpinPage(parentPageID, true)
		return nil
	}

	t.pool.UnpinPage(parentPageID, true)
	return t.splitInternal(parentPageID)
}

// splitInternal re-fetches node (to work from its just-written state),
// promotes its middle separator key, and moves the upper half of its
// children to a fresh sibling.
func (t *Tree) splitInternal(pageID int32) error {
	n, err := t.fetchNode(pageID)
	if err != nil {
		return fmt.Errorf("bptree: splitInternal: fetch %d: %w", pageID, err)
	}

	mid := n.size() / 2
	promoteKey := n.keys[mid]

	sibling, err := t.allocateNode(Internal, t.internalMaxSize)
	if err != nil {
		t.pool.UnpinPage(pageID, false)
		return fmt.Errorf("bptree: splitInternal: allocate sibling: %w", err)
	}

	// The sibling's slot 0 key is an unused placeholder; mid's key moves
	// up to the parent rather than staying with either side.
	sibling.keys = append(sibling.keys, nil)
	sibling.keys = append(sibling.keys, n.keys[mid+1:]...)
	sibling.children = append(sibling.children, n.children[mid:]...)
	sibling.parentPageID = n.parentPageID

	for _, childID := range sibling.children {
		child, err := t.fetchNode(childID)
		if err != nil {
			t.pool.UnpinPage(sibling.pageID, false)
			t.pool.UnpinPage(pageID, false)
			return fmt.Errorf("bptree: splitInternal: fetch child %d: %w", childID, err)
		}
		child.parentPageID = sibling.pageID
		werr := t.writeNode(child)
		t.pool.UnpinPage(childID, werr == nil)
		if werr != nil {
			t.pool.UnpinPage(sibling.pageID, false)
			t.pool.UnpinPage(pageID, false)
			return werr
		}
	}

	n.keys = n.keys[:mid]
	n.children = n.children[:mid]

	if err := t.writeNode(sibling); err != nil {
		t.pool.UnpinPage(sibling.pageID, false)
		t.pool.UnpinPage(pageID, false)
		return err
	}
	if err := t.writeNode(n); err != nil {
		t.pool.UnpinPage(sibling.pageID, true)
		t.pool.UnpinPage(pageID, false)
		return err
	}

	leftPageID, parentPageID := n.pageID, n.parentPageID
	siblingPageID := sibling.pageID
	t.pool.UnpinPage(sibling.pageID, true)
	t.pool.UnpinPage(pageID, true)

	if leftPageID == t.rootPageID {
		return t.createRoot(leftPageID, promoteKey, siblingPageID)
	}
	return t.insertIntoParent(parentPageID, leftPageID, promoteKey, siblingPageID)
}

// createRoot allocates a fresh internal root with leftPageID and
// rightPageID as its two children, separated by promoteKey.
func (t *Tree) createRoot(leftPageID int32, promoteKey []byte, rightPageID int32) error {
	root, err := t.allocateNode(Internal, t.internalMaxSize)
	if err != nil {
		return fmt.Errorf("bptree: createRoot: allocate: %w", err)
	}

	root.keys = append(root.keys, nil, promoteKey)
	root.children = append(root.children, leftPageID, rightPageID)

	for _, childID := range []int32{leftPageID, rightPageID} {
		child, err := t.fetchNode(childID)
		if err != nil {
			t.pool.UnpinPage(root.pageID, false)
			return fmt.Errorf("bptree: createRoot: fetch child %d: %w", childID, err)
		}
		child.parentPageID = root.pageID
		werr := t.writeNode(child)
		t.pool.UnpinPage(childID, werr == nil)
		if werr != nil {
			t.pool.UnpinPage(root.pageID, false)
			return werr
		}
	}

	if err := t.writeNode(root); err != nil {
		t.pool.UnpinPage(root.pageID, false)
		return err
	}
	t.pool.UnpinPage(root.pageID, true)
	t.log.Infof("new root %d (children %d, %d)", root.pageID, leftPageID, rightPageID)

	return t.saveRoot(root.pageID)
}
