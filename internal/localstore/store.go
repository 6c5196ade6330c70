package localstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Well-known keys. The connection layer is the only writer of both.
const (
	KeySupabaseConfig = "planning.supabaseConfig"
	KeyCurrentUsers   = "planning.currentUsers"
)

// Store is a durable JSON key-value file store. It stands in for the
// browser's localStorage: a single shared persistence point across restarts.
// All failures are best-effort: logged and degraded to absent-value
// semantics, never surfaced to callers.
type Store struct {
	mu   sync.Mutex
	path string
}

// New creates a Store backed by the file at path.
// PRE: path is a writable location (the file need not exist yet)
// POST: Returns a ready-to-use store
func New(path string) *Store {
	return &Store{path: path}
}

// Get unmarshals the value stored under key into v.
// PRE: v is a non-nil pointer
// POST: Returns true when the key was present and decoded; false otherwise
func (s *Store) Get(key string, v any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.readAll()
	raw, ok := data[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		slog.Error("localstore_decode_failed", "key", key, "error", err)
		return false
	}
	return true
}

// Put stores v under key, overwriting any previous value.
// PRE: v is JSON-marshalable
// POST: Value is persisted best-effort; failures are logged
func (s *Store) Put(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("localstore_encode_failed", "key", key, "error", err)
		return
	}
	data := s.readAll()
	data[key] = raw
	s.writeAll(data)
}

// Delete removes the value stored under key.
// PRE: key is non-empty
// POST: Key is absent from the store
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.readAll()
	if _, ok := data[key]; !ok {
		return
	}
	delete(data, key)
	s.writeAll(data)
}

// readAll loads the whole file. Missing or corrupt files yield an empty map.
func (s *Store) readAll() map[string]json.RawMessage {
	data := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("localstore_read_failed", "path", s.path, "error", err)
		}
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Error("localstore_parse_failed", "path", s.path, "error", err)
		return make(map[string]json.RawMessage)
	}
	return data
}

// writeAll persists the whole file atomically (write temp, then rename).
func (s *Store) writeAll(data map[string]json.RawMessage) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("localstore_encode_failed", "path", s.path, "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		slog.Error("localstore_mkdir_failed", "path", s.path, "error", err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		slog.Error("localstore_write_failed", "path", s.path, "error", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		slog.Error("localstore_rename_failed", "path", s.path, "error", err)
	}
}
