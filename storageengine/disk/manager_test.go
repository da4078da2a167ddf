package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"CoreStore/storageengine/page"
)

func tempManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	m, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m, path
}

func TestAllocateWriteRead(t *testing.T) {
	m, _ := tempManager(t)

	id := m.AllocatePage()
	if id != 1 {
		t.Fatalf("expected first allocated id to be 1 (0 is the header page), got %d", id)
	}

	p := page.New()
	p.ID = id
	copy(p.Data[:], []byte("hello disk manager"))

	if err := m.WritePage(id, p); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	readBack := page.New()
	if err := m.ReadPage(id, readBack); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}

	if !bytes.HasPrefix(readBack.Data[:], []byte("hello disk manager")) {
		t.Fatalf("data mismatch: got %q", readBack.Data[:20])
	}
}

func TestChecksumCatchesCorruption(t *testing.T) {
	m, path := tempManager(t)

	id := m.AllocatePage()
	p := page.New()
	p.ID = id
	copy(p.Data[:], []byte("intact"))
	if err := m.WritePage(id, p); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	m.Close()

	// Flip a byte in the body directly on disk, bypassing the manager.
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := f.WriteAt([]byte{0xFF}, int64(id)*page.Size); err != nil {
		t.Fatalf("corrupt write: %v", err)
	}
	f.Close()

	m2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen manager: %v", err)
	}
	defer m2.Close()

	corrupted := page.New()
	if err := m2.ReadPage(id, corrupted); err == nil {
		t.Fatalf("expected checksum mismatch error, got nil")
	}
}

func TestDeallocateReusesPageID(t *testing.T) {
	m, _ := tempManager(t)

	a := m.AllocatePage()
	m.DeallocatePage(a)
	b := m.AllocatePage()
	if b != a {
		t.Fatalf("expected deallocated id %d to be reused, got %d", a, b)
	}
}

func TestOpenLocksFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.db")

	m1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m1.Close()

	if _, err := Open(path); err == nil {
		t.Fatalf("expected second Open of the same file to fail while locked")
	}
}
