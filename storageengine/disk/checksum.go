package disk

import (
	"encoding/binary"
	"fmt"

	"CoreStore/storageengine/page"

	"golang.org/x/crypto/blake2b"
)

// checksumSize is the width of the trailing BLAKE2b-derived checksum
// stored in every page. The remaining bytes are the page body available
// to callers (header records, B+ tree nodes, ...).
const checksumSize = 8

// UsableSize is how many bytes of a page body are available to callers
// once the trailing checksum is reserved.
const UsableSize = page.Size - checksumSize

// stampChecksum computes BLAKE2b-256 over buf's body and writes the
// first 8 bytes of the digest into buf's trailing checksum slot.
func stampChecksum(buf []byte) {
	body := buf[:UsableSize]
	sum := blake2b.Sum256(body)
	copy(buf[UsableSize:], sum[:checksumSize])
}

// verifyChecksum recomputes the checksum over buf's body and compares it
// against the trailing slot, returning an error on mismatch.
func verifyChecksum(buf []byte) error {
	body := buf[:UsableSize]
	sum := blake2b.Sum256(body)
	want := binary.LittleEndian.Uint64(sum[:checksumSize])
	got := binary.LittleEndian.Uint64(buf[UsableSize:])
	if want != got {
		return fmt.Errorf("checksum mismatch: corrupt page (want %x, got %x)", want, got)
	}
	return nil
}
