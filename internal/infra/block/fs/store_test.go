package fs

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"orchard/internal/block/core"
)

func TestStore_PatchPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Driver() != core.DriverFilesystem || s.Root() != dir {
		t.Fatalf("unexpected driver/root")
	}
	if _, ok, err := s.GetData(ctx, 1); err != nil || ok {
		t.Fatalf("expected missing block: %v %v", ok, err)
	}
	if err := s.PatchData(ctx, 1, []byte("gene"), 0); err != nil {
		t.Fatalf("patch: %v", err)
	}
	if err := s.PatchData(ctx, 1, []byte("!"), 10); err != nil {
		t.Fatalf("patch: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	data, ok, err := reopened.GetData(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if len(data) != core.BlockSize {
		t.Fatalf("expected full block, got %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], []byte("gene")) || data[4] != core.ErasedByte || data[10] != '!' {
		t.Fatalf("unexpected contents % x", data[:12])
	}
	if _, err := os.Stat(filepath.Join(dir, "block-00000001.bin")); err != nil {
		t.Fatalf("expected block file: %v", err)
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestStore_OutOfBoundsLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	err = s.PatchData(context.Background(), 2, make([]byte, core.BlockSize+1), 0)
	if !errors.Is(err, core.ErrOutOfBounds) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
	if _, ok, _ := s.GetData(context.Background(), 2); ok {
		t.Fatalf("block should not exist")
	}
}

func TestStore_ReadErrorSurfaces(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// a directory where the block file should be cannot be read
	if err := os.Mkdir(filepath.Join(dir, "block-00000003.bin"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, _, err := s.GetData(context.Background(), 3); err == nil {
		t.Fatalf("expected read error")
	}
	if err := s.PatchData(context.Background(), 3, []byte{1}, 0); err == nil {
		t.Fatalf("expected patch error")
	}
}

func TestNew_DefaultRoot(t *testing.T) {
	wd, _ := os.Getwd()
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	s, err := New("")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Root() != "./blockdata" {
		t.Fatalf("unexpected default root %q", s.Root())
	}
}
