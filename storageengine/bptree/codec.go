package bptree

import (
	"encoding/binary"
	"fmt"

	"CoreStore/storageengine/disk"
)

// Page layout (all within disk.UsableSize bytes; the trailing checksum
// bytes belong to the disk layer and are never touched here):
//
//	byte 0:     node type (0 = internal, 1 = leaf)
//	bytes 1-4:  parent page id (int32)
//	bytes 5-8:  max size (int32)
//	bytes 9-12: size n (int32)
//	leaf only, bytes 13-16: next page id (int32), entries start at 17
//	internal only: entries start at 13
//
// Entry encoding, repeated n times:
//
//	leaf:     uint16 key length, key bytes, uint16 value length, value bytes
//	internal: int32 child page id, uint16 key length, key bytes (slot 0's key is length 0)

const (
	offType       = 0
	offParent     = 1
	offMaxSize    = 5
	offSize       = 9
	offLeafNext   = 13
	leafHeaderLen = 17
	intHeaderLen  = 13
)

func encodeNode(n *node) ([]byte, error) {
	buf := make([]byte, headerLen(n))
	if n.nodeType == Leaf {
		buf[offType] = byte(Leaf)
	} else {
		buf[offType] = byte(Internal)
	}
	putInt32(buf[offParent:], n.parentPageID)
	putInt32(buf[offMaxSize:], int32(n.maxSize))
	putInt32(buf[offSize:], int32(n.size()))

	if n.nodeType == Leaf {
		putInt32(buf[offLeafNext:], n.nextPageID)
		for i := range n.keys {
			buf = appendBytes(buf, n.keys[i])
			buf = appendBytes(buf, n.values[i])
		}
	} else {
		for i := range n.children {
			var childBuf [4]byte
			putInt32(childBuf[:], n.children[i])
			buf = append(buf, childBuf[:]...)
			buf = appendBytes(buf, n.keys[i])
		}
	}

	if len(buf) > disk.UsableSize {
		return nil, fmt.Errorf("bptree: encoded node %d (%d bytes) exceeds usable page size %d", n.pageID, len(buf), disk.UsableSize)
	}
	return buf, nil
}

func decodeNode(pageID int32, data []byte) (*node, error) {
	if len(data) < intHeaderLen {
		return nil, fmt.Errorf("bptree: page %d too short to decode", pageID)
	}

	nt := NodeType(data[offType])
	n := &node{
		pageID:       pageID,
		nodeType:     nt,
		parentPageID: getInt32(data[offParent:]),
		maxSize:      int(getInt32(data[offMaxSize:])),
	}
	count := int(getInt32(data[offSize:]))

	off := intHeaderLen
	if nt == Leaf {
		n.nextPageID = getInt32(data[offLeafNext:])
		off = leafHeaderLen
		n.keys = make([][]byte, 0, count)
		n.values = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			var key, val []byte
			key, off = readBytes(data, off)
			val, off = readBytes(data, off)
			n.keys = append(n.keys, key)
			n.values = append(n.values, val)
		}
	} else {
		n.children = make([]int32, 0, count)
		n.keys = make([][]byte, 0, count)
		for i := 0; i < count; i++ {
			child := getInt32(data[off:])
			off += 4
			var key []byte
			key, off = readBytes(data, off)
			n.children = append(n.children, child)
			n.keys = append(n.keys, key)
		}
	}

	return n, nil
}

func headerLen(n *node) int {
	if n.nodeType == Leaf {
		return leafHeaderLen
	}
	return intHeaderLen
}

func appendBytes(buf []byte, b []byte) []byte {
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(b)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, b...)
}

func readBytes(data []byte, off int) ([]byte, int) {
	n := int(binary.LittleEndian.Uint16(data[off : off+2]))
	off += 2
	b := make([]byte, n)
	copy(b, data[off:off+n])
	return b, off + n
}

func putInt32(b []byte, v int32) {
	binary.LittleEndian.PutUint32(b, uint32(v))
}

func getInt32(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}
