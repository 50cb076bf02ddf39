// Package settings persists per-plugin key/value records.
//
// Each plugin identifier owns one TOML file under the store directory. Two
// top-level keys are reserved: "enabled" holds the persisted enabled flag
// and "settings" holds the plugin's flat key/value table. Any other keys a
// record carries are preserved verbatim across rewrites.
//
// Reads never hard-fail: a missing directory, missing file, unreadable
// record, or missing key resolves to the caller's default. Writes merge one
// key into the record and persist the whole file synchronously before
// returning.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Reserved top-level keys in a settings record.
const (
	keyEnabled  = "enabled"
	keySettings = "settings"
)

// CorruptError reports a settings record that could not be decoded. The
// store treats the record as empty and keeps going; startup must not be
// blocked by one broken file.
type CorruptError struct {
	Identifier string
	Path       string
	Err        error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("settings record for %q corrupt at %s: %v", e.Identifier, e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Store reads and writes per-plugin settings records.
//
// Operations on different identifiers run concurrently; operations on the
// same identifier are serialized so the merge-then-write sequence cannot
// lose updates. Store locks are independent of any caller lock, so lifecycle
// hooks may call Get and Set freely.
type Store struct {
	dir string
	fs  FileSystem
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	onCorrupt func(*CorruptError)
}

// Option configures a Store.
type Option func(*Store)

// WithFileSystem substitutes the backing file system.
func WithFileSystem(fs FileSystem) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithCorruptHandler registers a callback invoked whenever a record fails to
// decode. The record is still treated as empty; the callback exists so the
// owner can surface the condition.
func WithCorruptHandler(fn func(*CorruptError)) Option {
	return func(s *Store) {
		s.onCorrupt = fn
	}
}

// NewStore creates a store rooted at dir. The directory is created lazily on
// the first write, never on a read.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:   dir,
		fs:    DefaultFS(),
		log:   zerolog.Nop(),
		locks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record path for an identifier.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".toml")
}

// lockFor returns the mutex serializing operations for one identifier.
func (s *Store) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Get returns the value stored under key for the identifier, or def when the
// record or key is absent. Get never fails and never creates a file.
func (s *Store) Get(id, key string, def any) any {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec := s.load(id)
	tbl, ok := rec[keySettings].(map[string]any)
	if !ok {
		return def
	}
	v, ok := tbl[key]
	if !ok {
		return def
	}
	return v
}

// GetString returns a string setting, or def when absent or mistyped.
func (s *Store) GetString(id, key, def string) string {
	if v, ok := s.Get(id, key, def).(string); ok {
		return v
	}
	return def
}

// GetBool returns a boolean setting, or def when absent or mistyped.
func (s *Store) GetBool(id, key string, def bool) bool {
	if v, ok := s.Get(id, key, def).(bool); ok {
		return v
	}
	return def
}

// GetInt returns an integer setting, or def when absent or mistyped. TOML
// integers decode as int64; float values with no fraction are accepted.
func (s *Store) GetInt(id, key string, def int64) int64 {
	switch v := s.Get(id, key, def).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		if v == float64(int64(v)) {
			return int64(v)
		}
	}
	return def
}

// GetFloat returns a float setting, or def when absent or mistyped.
func (s *Store) GetFloat(id, key string, def float64) float64 {
	switch v := s.Get(id, key, def).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return def
}

// Set merges one key into the identifier's settings table and persists the
// record before returning. Other keys, including ones this build does not
// recognize, are preserved.
func (s *Store) Set(id, key string, value any) error {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec := s.load(id)
	tbl, ok := rec[keySettings].(map[string]any)
	if !ok {
		tbl = make(map[string]any)
		rec[keySettings] = tbl
	}
	tbl[key] = value

	return s.save(id, rec)
}

// Settings returns a copy of the identifier's settings table.
func (s *Store) Settings(id string) map[string]any {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec := s.load(id)
	tbl, ok := rec[keySettings].(map[string]any)
	if !ok {
		return map[string]any{}
	}
	out := make(map[string]any, len(tbl))
	for k, v := range tbl {
		out[k] = v
	}
	return out
}

// Enabled returns the persisted enabled flag for the identifier. Absent or
// mistyped records read as false.
func (s *Store) Enabled(id string) bool {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec := s.load(id)
	v, _ := rec[keyEnabled].(bool)
	return v
}

// SetEnabled persists the enabled flag for the identifier.
func (s *Store) SetEnabled(id string, enabled bool) error {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	rec := s.load(id)
	rec[keyEnabled] = enabled

	return s.save(id, rec)
}

// ClearEnabled drops the persisted enabled flag, retaining the settings
// table. When nothing but the flag was stored the record file is removed
// entirely. Used when a plugin's source file vanishes so no orphaned enabled
// state survives.
func (s *Store) ClearEnabled(id string) error {
	l := s.lockFor(id)
	l.Lock()
	defer l.Unlock()

	if _, err := s.fs.Stat(s.Path(id)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat settings record: %w", err)
	}

	rec := s.load(id)
	delete(rec, keyEnabled)

	if recordEmpty(rec) {
		if err := s.fs.Remove(s.Path(id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove settings record: %w", err)
		}
		return nil
	}
	return s.save(id, rec)
}

// load reads and decodes the record for an identifier. The caller must hold
// the identifier's lock. A missing file yields an empty record; a corrupt
// file yields an empty record plus a warning and the corrupt callback.
func (s *Store) load(id string) map[string]any {
	data, err := s.fs.ReadFile(s.Path(id))
	if err != nil {
		return make(map[string]any)
	}

	var rec map[string]any
	if err := toml.Unmarshal(data, &rec); err != nil {
		ce := &CorruptError{Identifier: id, Path: s.Path(id), Err: err}
		s.log.Warn().Str("plugin", id).Str("path", ce.Path).Err(err).
			Msg("settings record unreadable, treating as empty")
		if s.onCorrupt != nil {
			s.onCorrupt(ce)
		}
		return make(map[string]any)
	}
	if rec == nil {
		rec = make(map[string]any)
	}
	return rec
}

// save encodes and writes the full record through a temp file rename. The
// caller must hold the identifier's lock.
func (s *Store) save(id string, rec map[string]any) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}

	data, err := toml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode settings record for %q: %w", id, err)
	}

	path := s.Path(id)
	tmp := path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings record for %q: %w", id, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings record for %q: %w", id, err)
	}
	return nil
}

// recordEmpty reports whether a record carries nothing worth keeping.
func recordEmpty(rec map[string]any) bool {
	for k, v := range rec {
		if k == keySettings {
			if tbl, ok := v.(map[string]any); ok && len(tbl) == 0 {
				continue
			}
		}
		return false
	}
	return true
}
