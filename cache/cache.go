// SPDX-License-Identifier: MIT

// Package cache memoizes expensive results keyed by call signature.
//
// A Store keeps results in memory and, when given a directory, on disk as
// msgpack files. Concurrent callers asking for the same key share one
// computation (singleflight), so every key has at most one writer.
// Disk writes go to a temporary file renamed into place.
//
// A nil *Store is a valid pass-through: Do simply calls compute.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/katalvlaran/eventcluster/internal/log"
)

// ErrKey indicates arguments that cannot be encoded into a key.
var ErrKey = errors.New("cache: cannot encode key")

const fileExt = ".msgpack"

// Store is a memory (and optionally disk) backed memo table.
type Store struct {
	dir    string
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	mem   map[string][]byte
	group singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Store. An empty dir keeps results in memory only.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{dir: dir, logger: log.GetSugaredLogger(), mem: make(map[string][]byte)}
	for _, o := range opts {
		o(s)
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create %s: %w", dir, err)
		}
	}
	return s, nil
}

// Dir returns the backing directory ("" for memory only).
func (s *Store) Dir() string { return s.dir }

// Key derives a stable key from a namespace and call arguments.
func Key(namespace string, args ...any) (string, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(append([]any{namespace}, args...)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrKey, err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return namespace + "-" + hex.EncodeToString(sum[:12]), nil
}

// Do returns the cached value for key, computing and storing it on a miss.
// Errors from compute are returned and never cached.
func Do[T any](s *Store, key string, compute func() (T, error)) (T, error) {
	if s == nil {
		return compute()
	}

	var zero T
	if raw, ok := s.load(key); ok {
		var v T
		if err := msgpack.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		s.logger.Warnw("discarding unreadable cache entry", "key", key)
	}

	res, err, shared := s.group.Do(key, func() (any, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		raw, err := msgpack.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("cache: encode %s: %w", key, err)
		}
		if err := s.store(key, raw); err != nil {
			s.logger.Warnw("cache write failed", "key", key, "error", err)
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	if shared {
		s.logger.Debugw("shared in-flight computation", "key", key)
	}

	return res.(T), nil
}

// Has reports whether key is cached.
func (s *Store) Has(key string) bool {
	_, ok := s.load(key)
	return ok
}

// Purge drops every entry from memory and disk.
func (s *Store) Purge() error {
	s.mu.Lock()
	s.mem = make(map[string][]byte)
	s.mu.Unlock()
	if s.dir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+fileExt))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

func (s *Store) load(key string) ([]byte, bool) {
	s.mu.RLock()
	raw, ok := s.mem[key]
	s.mu.RUnlock()
	if ok || s.dir == "" {
		return raw, ok
	}

	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	s.mem[key] = raw
	s.mu.Unlock()
	return raw, true
}

func (s *Store) store(key string, raw []byte) error {
	s.mu.Lock()
	s.mem[key] = raw
	s.mu.Unlock()
	if s.dir == "" {
		return nil
	}

	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, s.path(key)); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
