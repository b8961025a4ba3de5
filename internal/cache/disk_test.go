package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskStore_BasicOperations(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 3)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	defer store.Close()

	if err := store.SetItem("mykisan_market:rice", `{"data":1}`); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	got, ok, err := store.GetItem("mykisan_market:rice")
	if err != nil || !ok {
		t.Fatalf("GetItem = %q, %v, %v", got, ok, err)
	}
	if got != `{"data":1}` {
		t.Errorf("value mismatch: got %s", got)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 1 || keys[0] != "mykisan_market:rice" {
		t.Errorf("unexpected keys: %v", keys)
	}

	if err := store.RemoveItem("mykisan_market:rice"); err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if _, ok, _ := store.GetItem("mykisan_market:rice"); ok {
		t.Error("key still exists after remove")
	}

	// Removing twice is fine
	if err := store.RemoveItem("mykisan_market:rice"); err != nil {
		t.Errorf("second RemoveItem failed: %v", err)
	}
}

func TestDiskStore_CompressesLargeValues(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 3)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	defer store.Close()

	value := strings.Repeat("wheat prices are rising. ", 200)
	if err := store.SetItem("big", value); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}

	info, err := os.Stat(store.filePath("big"))
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Size() >= int64(len(value)) {
		t.Errorf("expected compressed file smaller than %d, got %d", len(value), info.Size())
	}

	got, ok, err := store.GetItem("big")
	if err != nil || !ok {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got != value {
		t.Error("decompressed value mismatch")
	}
}

func TestDiskStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first, err := NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	c := New(first)
	if err := c.Set("schemes:pm-kisan", []string{"PM-KISAN"}, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	_ = first.Close()

	second, err := NewDiskStore(dir, 3)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	defer second.Close()

	var got []string
	if !New(second).GetInto("schemes:pm-kisan", &got) {
		t.Fatal("expected value to survive a restart")
	}
	if len(got) != 1 || got[0] != "PM-KISAN" {
		t.Errorf("unexpected value: %v", got)
	}
}

func TestDiskStore_IgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, 0)
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	defer store.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "zz"+itemExt), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	keys, err := store.Keys()
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}

func TestNewDiskStore_EmptyPath(t *testing.T) {
	if _, err := NewDiskStore("", 0); err == nil {
		t.Error("expected error for empty path")
	}
}
