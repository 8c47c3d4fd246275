// Package diskvstore persists selection state as one small file per key.
package diskvstore

import (
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/user/blocksched/pkg/ports"
)

// Store implements ports.KeyValueStore on a diskv directory.
type Store struct {
	d      *diskv.Diskv
	prefix string
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace keeps the keys of one dataset apart from another's.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		if ns != "" {
			s.prefix = sanitize(ns) + "."
		}
	}
}

// New opens a store rooted at dir. The directory is created on first write.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			CacheSizeMax: 64 * 1024,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value under key. Unreadable entries read as missing.
func (s *Store) Get(key string) (string, bool) {
	k := s.prefix + key
	if !s.d.Has(k) {
		return "", false
	}
	v, err := s.d.Read(k)
	if err != nil {
		return "", false
	}
	return string(v), true
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	return s.d.Write(s.prefix+key, []byte(value))
}

// sanitize maps a namespace to a single safe file name component.
func sanitize(ns string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, ns)
}

var _ ports.KeyValueStore = (*Store)(nil)
