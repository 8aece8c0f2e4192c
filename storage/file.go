package storage

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/natefinch/atomic"
)

// FileStore keeps one JSON object per client in a directory. Files are
// replaced atomically so a crash never leaves a half-written document.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	readFile func(string) ([]byte, error)
}

// errCorrupt marks a client file that exists but is not a JSON object.
var errCorrupt = errors.New("corrupt client file")

// NewFileStore uses dir, creating it when needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: file directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir: %w", err)
	}
	return &FileStore{dir: dir, readFile: os.ReadFile}, nil
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

// path hex-encodes the client ID so it can never escape the directory.
func (f *FileStore) path(client string) string {
	return filepath.Join(f.dir, hex.EncodeToString([]byte(client))+".json")
}

func (f *FileStore) load(client string) (map[string]string, error) {
	data, err := f.readFile(f.path(client))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w %s: %v", errCorrupt, f.path(client), err)
	}
	return values, nil
}

// Get returns the stored value of key for client. A file that cannot be
// decoded holds no keys; the next Set replaces it.
func (f *FileStore) Get(_ context.Context, client, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load(client)
	if errors.Is(err, errCorrupt) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %s: %w", key, err)
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set writes key for client. A client file that cannot be decoded is
// replaced rather than blocking every future write; any other read error
// is returned and the file is left alone.
func (f *FileStore) Set(_ context.Context, client, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load(client)
	switch {
	case errors.Is(err, errCorrupt):
		values = map[string]string{}
	case err != nil:
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	values[key] = value
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("storage: encode client state: %w", err)
	}
	if err := atomic.WriteFile(f.path(client), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("storage: set %s: %w", key, err)
	}
	return nil
}

// Keys lists the keys stored for client, sorted.
func (f *FileStore) Keys(_ context.Context, client string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load(client)
	if errors.Is(err, errCorrupt) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: keys: %w", err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
