package iomgr

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreateWindowDisjointWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staging.tmp")
	const total = 64

	if err := Truncate(path, total); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	w1, err := CreateWindow(path, 0, 32)
	if err != nil {
		t.Fatalf("CreateWindow(0): %v", err)
	}
	for i := range w1.Bytes() {
		w1.Bytes()[i] = 'a'
	}
	if err := w1.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := w1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w2, err := CreateWindow(path, 32, 32)
	if err != nil {
		t.Fatalf("CreateWindow(32): %v", err)
	}
	for i := range w2.Bytes() {
		w2.Bytes()[i] = 'b'
	}
	if err := w2.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != total {
		t.Fatalf("got %d bytes, want %d", len(got), total)
	}
	for i := 0; i < 32; i++ {
		if got[i] != 'a' {
			t.Fatalf("byte %d = %q, want 'a'", i, got[i])
		}
	}
	for i := 32; i < 64; i++ {
		if got[i] != 'b' {
			t.Fatalf("byte %d = %q, want 'b'", i, got[i])
		}
	}
}

func TestTruncateCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "new.tmp")
	if err := Truncate(path, 1024); err != nil {
		t.Fatalf("Truncate: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size() != 1024 {
		t.Fatalf("size = %d, want 1024", fi.Size())
	}
}
