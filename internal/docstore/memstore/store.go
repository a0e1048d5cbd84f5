// Package memstore is an in-process docstore.Store used by tests and the
// demo binary. It provides the same semantics the engine expects from the
// managed backend: atomic field transforms, per-subscription ordered
// snapshot delivery, and optimistic per-document transactions.
package memstore

import (
	"context"
	"sync"
	"time"

	"glimpse/internal/docstore"

	"github.com/google/uuid"
)

const transactMaxRetries = 32

type entry struct {
	data       map[string]any
	version    int64
	updateTime time.Time
}

// Store is a mutex-guarded document store with live subscriptions.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*entry
	subs  map[string]map[*subscriber]struct{}
	clock func() time.Time
}

// New returns an empty Store using the wall clock for server timestamps.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Store whose server timestamps come from clock.
// Tests use this to make creation order deterministic.
func NewWithClock(clock func() time.Time) *Store {
	return &Store{
		docs:  make(map[string]*entry),
		subs:  make(map[string]map[*subscriber]struct{}),
		clock: clock,
	}
}

var _ docstore.Store = (*Store)(nil)

func (s *Store) Get(_ context.Context, path string) (*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[path]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return s.snapshotLocked(path, e), nil
}

func (s *Store) Set(_ context.Context, path string, data map[string]any, merge bool) error {
	s.mu.Lock()
	now := s.clock()
	e, exists := s.docs[path]
	if !exists || !merge {
		e = &entry{data: make(map[string]any)}
		if exists {
			e.version = s.docs[path].version
		}
		s.docs[path] = e
	}
	docstore.ApplyFields(e.data, data, now)
	e.version++
	e.updateTime = now
	s.notifyLocked(docstore.CollectionOf(path))
	s.mu.Unlock()
	return nil
}

func (s *Store) Update(_ context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.docs[path]
	if !ok {
		return docstore.ErrNotFound
	}
	now := s.clock()
	docstore.ApplyFields(e.data, fields, now)
	e.version++
	e.updateTime = now
	s.notifyLocked(docstore.CollectionOf(path))
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection+"/"+id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[path]; !ok {
		return nil
	}
	delete(s.docs, path)
	s.notifyLocked(docstore.CollectionOf(path))
	return nil
}

func (s *Store) Query(_ context.Context, q docstore.Query) ([]*docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluateLocked(q), nil
}

func (s *Store) Count(_ context.Context, q docstore.Query) (int64, error) {
	q.Limit = 0
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.evaluateLocked(q))), nil
}

func (s *Store) Transact(ctx context.Context, path string, fn func(doc *docstore.Document) (map[string]any, error)) error {
	for attempt := 0; attempt < transactMaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.mu.RLock()
		e, ok := s.docs[path]
		if !ok {
			s.mu.RUnlock()
			return docstore.ErrNotFound
		}
		doc := s.snapshotLocked(path, e)
		s.mu.RUnlock()

		fields, err := fn(doc)
		if err != nil {
			return err
		}
		if fields == nil {
			return nil
		}

		s.mu.Lock()
		current, ok := s.docs[path]
		if !ok {
			s.mu.Unlock()
			return docstore.ErrNotFound
		}
		if current.version != doc.Version {
			s.mu.Unlock()
			continue
		}
		now := s.clock()
		docstore.ApplyFields(current.data, fields, now)
		current.version++
		current.updateTime = now
		s.notifyLocked(docstore.CollectionOf(path))
		s.mu.Unlock()
		return nil
	}
	return docstore.ErrConflict
}

// evaluateLocked gathers the collection's documents and applies q.
func (s *Store) evaluateLocked(q docstore.Query) []*docstore.Document {
	var docs []*docstore.Document
	for path, e := range s.docs {
		if docstore.CollectionOf(path) != q.Collection {
			continue
		}
		docs = append(docs, s.snapshotLocked(path, e))
	}
	return docstore.Evaluate(q, docs)
}

func (s *Store) snapshotLocked(path string, e *entry) *docstore.Document {
	return &docstore.Document{
		ID:         docstore.IDOf(path),
		Path:       path,
		Data:       copyData(e.data),
		Version:    e.version,
		UpdateTime: e.updateTime,
	}
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if arr, ok := v.([]any); ok {
			cp := make([]any, len(arr))
			copy(cp, arr)
			out[k] = cp
			continue
		}
		out[k] = v
	}
	return out
}
