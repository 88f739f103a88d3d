// Package prefs is a small typed preference store persisted as YAML. It
// backs both the machine-wide local state and per-profile preferences.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store holds registered preferences with defaults, persisted values and
// a transient layer that is never written to disk.
type Store struct {
	path string

	mu        sync.Mutex
	defaults  map[string]interface{}
	values    map[string]interface{}
	transient *Transient
}

// Transient overrides values for the lifetime of the process only.
type Transient struct {
	mu     sync.Mutex
	values map[string]interface{}
}

// New returns an empty store backed by path, replacing whatever is there
// on the next Save.
func New(path string) *Store {
	return &Store{
		path:      path,
		defaults:  make(map[string]interface{}),
		values:    make(map[string]interface{}),
		transient: &Transient{values: make(map[string]interface{})},
	}
}

// Load reads the store at path. A missing file yields an empty store that
// will be created by Save.
func Load(path string) (*Store, error) {
	s := New(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading preferences %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &s.values); err != nil {
			return nil, fmt.Errorf("parsing preferences %s: %w", path, err)
		}
		if s.values == nil {
			s.values = make(map[string]interface{})
		}
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// RegisterString declares a string preference and its default.
func (s *Store) RegisterString(name, def string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[name] = def
}

// RegisterBool declares a boolean preference and its default.
func (s *Store) RegisterBool(name string, def bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults[name] = def
}

// IsRegistered reports whether name has been declared.
func (s *Store) IsRegistered(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.defaults[name]
	return ok
}

// GetString returns the transient, persisted or default value in that order.
// A value of the wrong type is ignored.
func (s *Store) GetString(name string) string {
	v := s.lookup(name)
	str, _ := v.(string)
	return str
}

// GetBool returns the transient, persisted or default value in that order.
func (s *Store) GetBool(name string) bool {
	v := s.lookup(name)
	b, _ := v.(bool)
	return b
}

// SetString stores a persisted string value.
func (s *Store) SetString(name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// SetBool stores a persisted boolean value.
func (s *Store) SetBool(name string, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}

// Transient returns the in-memory override layer.
func (s *Store) Transient() *Transient { return s.transient }

// SetBool overrides name until the process exits.
func (t *Transient) SetBool(name string, value bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[name] = value
}

// SetString overrides name until the process exits.
func (t *Transient) SetString(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[name] = value
}

func (t *Transient) get(name string) (interface{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[name]
	return v, ok
}

func (s *Store) lookup(name string) interface{} {
	if v, ok := s.transient.get(name); ok {
		return v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	def, registered := s.defaults[name]
	if v, ok := s.values[name]; ok {
		if !registered || sameType(v, def) {
			return v
		}
	}
	return def
}

func sameType(a, b interface{}) bool {
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	default:
		return false
	}
}

// Save writes the persisted values atomically (temp file + rename).
// Transient values are not written.
func (s *Store) Save() error {
	s.mu.Lock()
	data, err := yaml.Marshal(s.values)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing preferences: %w", err)
	}
	return nil
}
