package memstore

import (
	"context"
	"sync"

	"glimpse/internal/docstore"
)

// subscriber queues snapshots for one subscription. Snapshots are
// evaluated under the store lock in mutation order and drained by a
// dedicated goroutine, so the handler sees them strictly in that order
// without the store ever blocking on a slow consumer.
type subscriber struct {
	query   docstore.Query
	handler docstore.SnapshotHandler

	mu      sync.Mutex
	pending [][]*docstore.Document
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func (s *Store) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotHandler) (docstore.CancelFunc, error) {
	sub := &subscriber{
		query:   q,
		handler: fn,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	set, ok := s.subs[q.Collection]
	if !ok {
		set = make(map[*subscriber]struct{})
		s.subs[q.Collection] = set
	}
	set[sub] = struct{}{}
	sub.enqueue(s.evaluateLocked(q))
	s.mu.Unlock()

	go sub.drain()

	cancel := func() {
		s.mu.Lock()
		if set, ok := s.subs[q.Collection]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(s.subs, q.Collection)
			}
		}
		s.mu.Unlock()
		sub.close()
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				cancel()
			case <-sub.done:
			}
		}()
	}

	return cancel, nil
}

// notifyLocked re-evaluates every subscription on collection and queues
// the fresh snapshot. Caller holds the write lock.
func (s *Store) notifyLocked(collection string) {
	for sub := range s.subs[collection] {
		sub.enqueue(s.evaluateLocked(sub.query))
	}
}

func (sub *subscriber) enqueue(snapshot []*docstore.Document) {
	sub.mu.Lock()
	sub.pending = append(sub.pending, snapshot)
	sub.mu.Unlock()
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *subscriber) drain() {
	for {
		select {
		case <-sub.done:
			return
		case <-sub.wake:
		}
		for {
			sub.mu.Lock()
			if len(sub.pending) == 0 {
				sub.mu.Unlock()
				break
			}
			snapshot := sub.pending[0]
			sub.pending = sub.pending[1:]
			sub.mu.Unlock()

			select {
			case <-sub.done:
				return
			default:
			}
			sub.handler(snapshot)
		}
	}
}

func (sub *subscriber) close() {
	sub.once.Do(func() { close(sub.done) })
}
