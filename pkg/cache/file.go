package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// FileCache stores checkpoints as files in a directory, for CLI usage.
// Each entry carries its own expiration.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value from the cache. Corrupt or expired entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set stores a value in the cache. The write goes through a temporary file
// so readers never see a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

// Close does nothing for file cache.
func (c *FileCache) Close() error { return nil }

// path spreads entries over 256 subdirectories by key hash.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
