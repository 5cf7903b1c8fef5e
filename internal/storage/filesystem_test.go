package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestFileSystem_StoreAndRead(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	data := []byte("pdf bytes")
	stored, err := fs.Store(context.Background(), data, "req-1.pdf",
		map[string]string{"request_id": "req-1"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.ID != "req-1.pdf" {
		t.Errorf("id = %q", stored.ID)
	}
	if stored.Size != int64(len(data)) {
		t.Errorf("size = %d, want %d", stored.Size, len(data))
	}

	read, err := fs.Read("req-1.pdf")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(read, data) {
		t.Error("read bytes differ from stored bytes")
	}
}

func TestFileSystem_MetadataSidecar(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	_, err = fs.Store(context.Background(), []byte("x"), "a.png",
		map[string]string{"kind": "preview"})
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	info, err := fs.GetFileInfo(context.Background(), "a.png")
	if err != nil {
		t.Fatalf("get info: %v", err)
	}
	if info.Metadata["kind"] != "preview" {
		t.Errorf("metadata lost: %+v", info.Metadata)
	}
}

func TestFileSystem_Missing(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	if _, err := fs.GetFileInfo(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get info: expected ErrNotFound, got %v", err)
	}
	if _, err := fs.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("read: expected ErrNotFound, got %v", err)
	}
}

func TestFileSystem_IsAvailable(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if !fs.IsAvailable() {
		t.Error("fresh store should be available")
	}
}
