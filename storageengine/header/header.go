// Package header implements the index catalog stored on the
// well-known header page: a simple index_name -> root_page_id map
// that lets the engine recover every B+ tree's root after a restart
// without a separate catalog file.
//
// The header page is a buffer-pool page like any other; its trailing
// checksum bytes are owned by the disk layer (see storageengine/disk),
// so the catalog's own encoding is budgeted against disk.UsableSize,
// not the full page size.
package header

import (
	"encoding/binary"
	"fmt"

	"CoreStore/storageengine/bufferpool"
	"CoreStore/storageengine/disk"
	"CoreStore/storageengine/page"
)

// Catalog reads and writes the index_name -> root_page_id map kept on
// the header page.
type Catalog struct {
	pool *bufferpool.Pool
}

// New wraps pool; the header page is assumed to already exist (the
// disk manager stamps a blank one the first time a data file is created).
func New(pool *bufferpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

// entry layout: uint16 name length, name bytes, int32 root page id.
// The page layout is: uint16 entry count, followed by that many entries.

// Lookup returns the root page id registered for indexName, if any.
func (c *Catalog) Lookup(indexName string) (int32, bool, error) {
	pg := c.pool.FetchPage(page.HeaderID)
	if pg == nil {
		return 0, false, fmt.Errorf("header: fetch header page: pool exhausted")
	}
	defer c.pool.UnpinPage(page.HeaderID, false)

	entries, err := decode(pg.Data[:])
	if err != nil {
		return 0, false, err
	}
	for _, e := range entries {
		if e.name == indexName {
			return e.rootPageID, true, nil
		}
	}
	return 0, false, nil
}

// Upsert inserts or updates the root page id for indexName.
func (c *Catalog) Upsert(indexName string, rootPageID int32) error {
	pg := c.pool.FetchPage(page.HeaderID)
	if pg == nil {
		return fmt.Errorf("header: fetch header page: pool exhausted")
	}
	defer c.pool.UnpinPage(page.HeaderID, true)

	entries, err := decode(pg.Data[:])
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].name == indexName {
			entries[i].rootPageID = rootPageID
			found = true
			break
		}
	}
	if !found {
		entries = append(entries, catalogEntry{name: indexName, rootPageID: rootPageID})
	}

	buf, err := encode(entries)
	if err != nil {
		return err
	}
	copy(pg.Data[:], buf)
	return nil
}

type catalogEntry struct {
	name       string
	rootPageID int32
}

func decode(data []byte) ([]catalogEntry, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("header: page too short")
	}
	count := binary.LittleEndian.Uint16(data[0:2])
	if count == 0 {
		return nil, nil
	}

	entries := make([]catalogEntry, 0, count)
	off := 2
	for i := uint16(0); i < count; i++ {
		if off+2 > len(data) {
			return nil, fmt.Errorf("header: truncated entry %d", i)
		}
		nameLen := int(binary.LittleEndian.Uint16(data[off : off+2]))
		off += 2
		if off+nameLen+4 > len(data) {
			return nil, fmt.Errorf("header: truncated entry %d", i)
		}
		name := string(data[off : off+nameLen])
		off += nameLen
		rootPageID := int32(binary.LittleEndian.Uint32(data[off : off+4]))
		off += 4
		entries = append(entries, catalogEntry{name: name, rootPageID: rootPageID})
	}
	return entries, nil
}

func encode(entries []catalogEntry) ([]byte, error) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(len(entries)))

	for _, e := range entries {
		entryBuf := make([]byte, 2+len(e.name)+4)
		binary.LittleEndian.PutUint16(entryBuf[0:2], uint16(len(e.name)))
		copy(entryBuf[2:2+len(e.name)], e.name)
		binary.LittleEndian.PutUint32(entryBuf[2+len(e.name):], uint32(e.rootPageID))
		buf = append(buf, entryBuf...)
	}

	if len(buf) > disk.UsableSize {
		return nil, fmt.Errorf("header: catalog too large for header page (%d > %d bytes)", len(buf), disk.UsableSize)
	}
	return buf, nil
}
