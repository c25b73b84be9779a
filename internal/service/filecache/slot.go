package filecache

import (
	"os"
	"sync"
	"time"
)

// Slot holds the last value derived from one file, valid while the file's
// path and modification time are unchanged. Concurrent misses may each run
// the loader; the last one to finish wins.
type Slot[T any] struct {
	mu      sync.RWMutex
	value   T
	path    string
	modTime time.Time
	loaded  bool
}

// LoadFunc derives a value from the file at path.
type LoadFunc[T any] func(path string) (T, error)

// Get returns the cached value when path and mtime match, otherwise runs load
// and caches its result. hit reports whether the cache answered.
func (s *Slot[T]) Get(path string, load LoadFunc[T]) (value T, hit bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		var zero T
		return zero, false, err
	}
	modTime := info.ModTime()

	if v, ok := s.lookup(path, modTime); ok {
		return v, true, nil
	}

	v, err := load(path)
	if err != nil {
		var zero T
		return zero, false, err
	}
	s.store(path, modTime, v)
	return v, false, nil
}

// Peek returns the cached value without touching the file system.
func (s *Slot[T]) Peek() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.loaded
}

// Invalidate drops the cached value so the next Get re-reads the file.
func (s *Slot[T]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.path = ""
	s.modTime = time.Time{}
	s.loaded = false
}

func (s *Slot[T]) lookup(path string, modTime time.Time) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loaded && s.path == path && s.modTime.Equal(modTime) {
		return s.value, true
	}
	var zero T
	return zero, false
}

func (s *Slot[T]) store(path string, modTime time.Time, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = v
	s.path = path
	s.modTime = modTime
	s.loaded = true
}
