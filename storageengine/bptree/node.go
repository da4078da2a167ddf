// Package bptree implements the disk-resident B+-tree index: point
// lookup and insert-with-split over unique keys, with no deletion,
// merge, redistribution, or range scan. All node access goes through
// the buffer pool; every fetch is paired with exactly one unpin.
package bptree

import "CoreStore/storageengine/page"

// NodeType distinguishes a leaf page from an internal page.
type NodeType uint8

const (
	Internal NodeType = iota
	Leaf
)

// Comparator orders two opaque keys, matching bytes.Compare's contract.
type Comparator func(a, b []byte) int

// node is the in-memory form of one B+-tree page.
//
// For an internal node of size n: children has length n and keys has
// length n, with keys[0] an unused placeholder — children occupy
// slots 0..n-1, separator keys occupy slots 1..n-1, matching the
// specification's slot convention exactly.
//
// For a leaf node of size n: keys and values both have length n,
// paired by index.
type node struct {
	pageID       int32
	nodeType     NodeType
	parentPageID int32
	maxSize      int

	keys     [][]byte
	values   [][]byte // leaf only
	children []int32  // internal only

	nextPageID int32 // leaf only, sibling chain
}

func (n *node) size() int {
	if n.nodeType == Leaf {
		return len(n.keys)
	}
	return len(n.children)
}

func (n *node) isFull() bool {
	if n.nodeType == Leaf {
		return n.size() >= n.maxSize
	}
	return n.size() > n.maxSize
}

func newLeaf(pageID int32, maxSize int) *node {
	return &node{
		pageID:       pageID,
		nodeType:     Leaf,
		parentPageID: page.InvalidID,
		maxSize:      maxSize,
		nextPageID:   page.InvalidID,
	}
}

func newInternal(pageID int32, maxSize int) *node {
	return &node{
		pageID:       pageID,
		nodeType:     Internal,
		parentPageID: page.InvalidID,
		maxSize:      maxSize,
	}
}

// childIndex returns the slot in an internal node's children array that
// holds childPageID, or -1 if absent.
func (n *node) childIndex(childPageID int32) int {
	for i, c := range n.children {
		if c == childPageID {
			return i
		}
	}
	return -1
}

// insertChildAt splices (sepKey, childPageID) into an internal node at slot
// idx: the separator key occupies keys[idx] and the child occupies
// children[idx], pushing everything from idx onward one slot to the right.
func (n *node) insertChildAt(idx int, sepKey []byte, childPageID int32) {
	n.keys = append(n.keys, nil)
	copy(n.keys[idx+1:], n.keys[idx:])
	n.keys[idx] = sepKey

	n.children = append(n.children, 0)
	copy(n.children[idx+1:], n.children[idx:])
	n.children[idx] = childPageID
}

// insertPairAt splices (key, value) into a leaf at slot idx.
func (n *node) insertPairAt(idx int, key, value []byte) {
	n.keys = append(n.keys, nil)
	copy(n.keys[idx+1:], n.keys[idx:])
	n.keys[idx] = key

	n.values = append(n.values, nil)
	copy(n.values[idx+1:], n.values[idx:])
	n.values[idx] = value
}

// lowerBound returns the smallest index i such that keys[i] >= key
// (standard binary search lower bound), used for leaf insert position.
func lowerBound(keys [][]byte, key []byte, cmp Comparator) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(keys[mid], key) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// exactMatch returns the index of key in keys if present, else -1.
func exactMatch(keys [][]byte, key []byte, cmp Comparator) int {
	i := lowerBound(keys, key, cmp)
	if i < len(keys) && cmp(keys[i], key) == 0 {
		return i
	}
	return -1
}

// descendChild picks the child slot for key in an internal node: the
// greatest slot i with keys[i] <= key, or slot 0 if every separator
// (slots 1..n-1) exceeds key. Binary search over the sorted separators,
// matching the teacher's own lowerBound/binarySearch idiom.
func descendChild(n *node, key []byte, cmp Comparator) int {
	lo, hi := 1, len(n.keys)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if cmp(n.keys[mid], key) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo - 1
}
