// Package store is the layered configuration host: it merges parsed env
// maps from multiple sources with last-registered-wins semantics and
// exposes them under a case-insensitive, colon-separated key namespace.
package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
)

// SourceID identifies a registered source so a reload can replace exactly
// the layer that changed.
type SourceID = uuid.UUID

type layer struct {
	id     SourceID
	name   string
	values map[string]dotenv.Entry // normalized key -> entry
}

// Store holds registered sources in registration order. Later sources win
// per key. Reads and reloads may run concurrently.
type Store struct {
	mu     sync.RWMutex
	layers []*layer
}

func New() *Store {
	return &Store{}
}

// Register adds a parsed map as the highest-precedence layer and returns
// its handle. Keys with absent values still shadow lower layers; Lookup
// reports the distinction.
func (s *Store) Register(name string, m *dotenv.Map) SourceID {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := &layer{id: uuid.New(), name: name, values: flatten(m)}
	s.layers = append(s.layers, l)
	return l.id
}

// Update replaces the values of a previously registered source in place,
// keeping its precedence position.
func (s *Store) Update(id SourceID, m *dotenv.Map) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range s.layers {
		if l.id == id {
			l.values = flatten(m)
			return nil
		}
	}
	return fmt.Errorf("unknown source %s", id)
}

// Get resolves a key against all layers, last registered source first.
// Lookup is case-insensitive and accepts either FOO__BAR or foo:bar forms.
// An absent value resolves to "".
func (s *Store) Get(key string) (string, bool) {
	v, _, ok := s.Lookup(key)
	return v, ok
}

// Lookup is Get plus the absent-value distinction: hasValue is false when
// the winning layer committed the key without a value (KEY=).
func (s *Store) Lookup(key string) (value string, hasValue, ok bool) {
	norm := NormalizeKey(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.layers) - 1; i >= 0; i-- {
		if e, ok := s.layers[i].values[norm]; ok {
			return e.Value, e.HasValue, true
		}
	}
	return "", false, false
}

// Keys returns the merged, normalized key set in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var keys []string
	for _, l := range s.layers {
		for k := range l.values {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// Sources returns the registered source names in precedence order, lowest
// first.
func (s *Store) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.layers))
	for i, l := range s.layers {
		names[i] = l.name
	}
	return names
}

// NormalizeKey lowercases a key and maps the double-underscore env-style
// separator to the hierarchical colon form: CONNECTIONSTRINGS__DB and
// connectionstrings:db address the same entry.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.ReplaceAll(key, "__", ":"))
}

func flatten(m *dotenv.Map) map[string]dotenv.Entry {
	values := make(map[string]dotenv.Entry, m.Len())
	for _, e := range m.Entries() {
		values[NormalizeKey(e.Key)] = e
	}
	return values
}
