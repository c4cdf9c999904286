package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gvidela/limitereal/limit"
)

// FileCache keeps a best-effort copy of the profile record in a local JSON
// file. It implements limit.ProfileRepo so it can stand in when the
// primary store is unreachable.
type FileCache struct {
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Get reads the cached profile or returns limit.ErrNotFound when no cache
// file exists yet.
func (c *FileCache) Get(ctx context.Context) (limit.Profile, error) {
	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return limit.Profile{}, limit.ErrNotFound
	}
	if err != nil {
		return limit.Profile{}, fmt.Errorf("read cache file: %w", err)
	}

	var doc profileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return limit.Profile{}, fmt.Errorf("unmarshal cache file: %w", err)
	}

	return doc.toProfile(), nil
}

// Save writes the profile atomically: temp file in the same directory, then
// rename over the target.
func (c *FileCache) Save(ctx context.Context, p limit.Profile) error {
	data, err := json.MarshalIndent(docFromProfile(p), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), c.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
