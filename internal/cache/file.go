package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const fileName = "profiles.json"

type fileEntry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

// FileCache keeps entries in a single JSON file and drops them after ttl.
type FileCache struct {
	mu       sync.Mutex
	filePath string
	ttl      time.Duration
	entries  map[string]fileEntry
	log      *zap.Logger
	now      func() time.Time
}

// NewFileCache creates or loads a cache under dir.
func NewFileCache(dir string, ttl time.Duration, log *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	fc := &FileCache{
		filePath: filepath.Join(dir, fileName),
		ttl:      ttl,
		entries:  make(map[string]fileEntry),
		log:      log.With(zap.String("component", "file_cache")),
		now:      time.Now,
	}
	fc.load()
	return fc, nil
}

func (fc *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	e, ok := fc.entries[key]
	if !ok || fc.expired(e) {
		return nil, false, nil
	}
	return []byte(e.Value), true, nil
}

// Set stores a JSON value in compact form and rewrites the file.
func (fc *FileCache) Set(_ context.Context, key string, value []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return fmt.Errorf("cache value for %q is not valid JSON: %w", key, err)
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	fc.entries[key] = fileEntry{Key: key, Value: buf.Bytes(), Timestamp: fc.now().UnixMilli()}
	return fc.save()
}

func (fc *FileCache) expired(e fileEntry) bool {
	return fc.ttl > 0 && fc.now().UnixMilli()-e.Timestamp > fc.ttl.Milliseconds()
}

// load reads the cache from disk, skipping expired entries.
func (fc *FileCache) load() {
	data, err := os.ReadFile(fc.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			fc.log.Warn("failed to read cache file", zap.Error(err))
		}
		return
	}

	var entries []fileEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		fc.log.Warn("failed to parse cache file", zap.Error(err))
		return
	}

	loaded := 0
	for _, e := range entries {
		if fc.expired(e) {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, e.Value); err != nil {
			continue
		}
		e.Value = buf.Bytes()
		fc.entries[e.Key] = e
		loaded++
	}
	fc.log.Debug("cache loaded", zap.Int("entries", loaded), zap.Int("expired", len(entries)-loaded))
}

// save writes to a temp file then renames it over the old one.
func (fc *FileCache) save() error {
	entries := make([]fileEntry, 0, len(fc.entries))
	for _, e := range fc.entries {
		if !fc.expired(e) {
			entries = append(entries, e)
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := fc.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, fc.filePath); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
