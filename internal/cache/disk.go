package cache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

const (
	itemExt = ".item"

	// Payloads above this size are zstd-compressed on disk.
	compressThreshold = 1024

	markerRaw  byte = 'r'
	markerZstd byte = 'z'
)

// DiskStore implements Store with one file per key inside a directory.
// Values persist across restarts. Large values are compressed with zstd.
type DiskStore struct {
	basePath string

	// Compression
	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.Mutex
}

// NewDiskStore creates a disk store rooted at basePath. compressionLevel
// follows zstd levels (1-22); 0 disables compression.
func NewDiskStore(basePath string, compressionLevel int) (*DiskStore, error) {
	if basePath == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	// Create cache directory if it doesn't exist
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	ds := &DiskStore{basePath: basePath}

	if compressionLevel > 0 {
		var err error
		ds.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}

	// The decoder is always present so compressed files written with a
	// different setting can still be read.
	var err error
	ds.decoder, err = zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return ds, nil
}

// Path returns the directory holding the store files.
func (ds *DiskStore) Path() string {
	return ds.basePath
}

// GetItem implements Store.
func (ds *DiskStore) GetItem(key string) (string, bool, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	data, err := os.ReadFile(ds.filePath(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache file: %w", err)
	}
	if len(data) == 0 {
		return "", true, nil
	}

	switch data[0] {
	case markerRaw:
		return string(data[1:]), true, nil
	case markerZstd:
		decompressed, err := ds.decoder.DecodeAll(data[1:], nil)
		if err != nil {
			// Hand back something undecodable; the cache treats it as corrupt.
			return string(data[1:]), true, nil
		}
		return string(decompressed), true, nil
	default:
		return string(data), true, nil
	}
}

// SetItem implements Store.
func (ds *DiskStore) SetItem(key, value string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	raw := []byte(value)
	out := make([]byte, 0, len(raw)+1)

	// Only keep the compressed form if it is actually smaller
	if ds.encoder != nil && len(raw) > compressThreshold {
		compressed := ds.encoder.EncodeAll(raw, nil)
		if len(compressed) < len(raw) {
			out = append(out, markerZstd)
			out = append(out, compressed...)
			return ds.writeFile(ds.filePath(key), out)
		}
	}

	out = append(out, markerRaw)
	out = append(out, raw...)
	return ds.writeFile(ds.filePath(key), out)
}

// RemoveItem implements Store.
func (ds *DiskStore) RemoveItem(key string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	err := os.Remove(ds.filePath(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Keys implements Store.
func (ds *DiskStore) Keys() ([]string, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	entries, err := os.ReadDir(ds.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache directory: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, itemExt) {
			continue
		}
		decoded, err := hex.DecodeString(strings.TrimSuffix(name, itemExt))
		if err != nil {
			continue
		}
		keys = append(keys, string(decoded))
	}
	sort.Strings(keys)
	return keys, nil
}

// Close releases the zstd coders.
func (ds *DiskStore) Close() error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.encoder != nil {
		_ = ds.encoder.Close()
		ds.encoder = nil
	}
	if ds.decoder != nil {
		ds.decoder.Close()
	}
	return nil
}

// File names are the hex encoding of the key so Keys can recover them.
func (ds *DiskStore) filePath(key string) string {
	return filepath.Join(ds.basePath, hex.EncodeToString([]byte(key))+itemExt)
}

func (ds *DiskStore) writeFile(path string, data []byte) error {
	// Write to temp file first, then rename (atomic on most systems)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	_, err = file.Write(data)
	closeErr := file.Close()

	if err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to write cache file: %w", closeErr)
	}

	return os.Rename(tempPath, path)
}

var _ Store = (*DiskStore)(nil)
