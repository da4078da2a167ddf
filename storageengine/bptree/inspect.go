package bptree

import (
	"fmt"
	"io"

	"CoreStore/storageengine/page"
)

// InspectTo writes a human-readable, breadth-first dump of the tree's
// structure to w: every internal node's separators and children, every
// leaf's keys, for debugging a tree by hand.
func (t *Tree) InspectTo(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(w, "index %q: root=%d\n", t.name, t.rootPageID)
	if t.rootPageID == page.InvalidID {
		fmt.Fprintln(w, "  (empty)")
		return nil
	}

	queue := []int32{t.rootPageID}
	level := 0
	for len(queue) > 0 {
		fmt.Fprintf(w, "  level %d:\n", level)
		var next []int32
		for _, pageID := range queue {
			n, err := t.fetchNode(pageID)
			if err != nil {
				fmt.Fprintf(w, "    [page %d] read error: %v\n", pageID, err)
				continue
			}
			if n.nodeType == Leaf {
				fmt.Fprintf(w, "    [page %d] LEAF size=%d next=%d keys=%v\n",
					pageID, n.size(), n.nextPageID, n.keys)
			} else {
				fmt.Fprintf(w, "    [page %d] INTERNAL size=%d children=%v keys=%v\n",
					pageID, n.size(), n.children, n.keys[1:])
				next = append(next, n.children...)
			}
			t.pool.UnpinPage(pageID, false)
		}
		queue = next
		level++
	}
	return nil
}
