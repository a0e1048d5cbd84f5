// Package redisstore implements docstore.Store on Redis. Documents are
// JSON envelopes keyed by path, collection membership lives in a set per
// collection, writes go through WATCH/MULTI so field transforms and
// version bumps are atomic, and change notification rides pub/sub.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"glimpse/internal/docstore"
	"glimpse/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const transactMaxRetries = 8

type envelope struct {
	Version    int64          `json:"v"`
	UpdateTime time.Time      `json:"t"`
	Data       map[string]any `json:"d"`
}

// Store is a Redis-backed document store.
type Store struct {
	rdb   *redis.Client
	clock func() time.Time
}

// New returns a Store over an existing Redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, clock: time.Now}
}

var _ docstore.Store = (*Store)(nil)

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.StoreBackendErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			observability.StoreBackendErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// Connect dials Redis at addr, which may be a plain host:port or a
// redis:// URL, and verifies the connection.
func Connect(addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func docKey(path string) string { return "doc:" + path }

func colKey(collection string) string { return "col:" + collection }

func chanName(collection string) string { return "docs:" + collection }

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	raw, err := s.rdb.Get(ctx, docKey(path)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, docstore.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(path, raw)
}

func (s *Store) Set(ctx context.Context, path string, data map[string]any, merge bool) error {
	return s.mutate(ctx, path, func(env *envelope) (*envelope, error) {
		if env == nil || !merge {
			next := &envelope{Data: make(map[string]any)}
			if env != nil {
				next.Version = env.Version
			}
			env = next
		}
		return env, nil
	}, data)
}

func (s *Store) Update(ctx context.Context, path string, fields map[string]any) error {
	return s.mutate(ctx, path, func(env *envelope) (*envelope, error) {
		if env == nil {
			return nil, docstore.ErrNotFound
		}
		return env, nil
	}, fields)
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection+"/"+id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	collection := docstore.CollectionOf(path)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(path))
		pipe.SRem(ctx, colKey(collection), path)
		pipe.Publish(ctx, chanName(collection), path)
		return nil
	})
	return err
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]*docstore.Document, error) {
	paths, err := s.rdb.SMembers(ctx, colKey(q.Collection)).Result()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, nil
	}

	keys := make([]string, len(paths))
	for i, p := range paths {
		keys[i] = docKey(p)
	}
	raws, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([]*docstore.Document, 0, len(raws))
	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			// Index entry for a document that no longer exists.
			continue
		}
		doc, err := decode(paths[i], str)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docstore.Evaluate(q, docs), nil
}

func (s *Store) Count(ctx context.Context, q docstore.Query) (int64, error) {
	q.Limit = 0
	docs, err := s.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (s *Store) Transact(ctx context.Context, path string, fn func(doc *docstore.Document) (map[string]any, error)) error {
	key := docKey(path)
	collection := docstore.CollectionOf(path)

	for attempt := 0; attempt < transactMaxRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				return docstore.ErrNotFound
			}
			if err != nil {
				return err
			}
			doc, err := decode(path, raw)
			if err != nil {
				return err
			}

			fields, err := fn(doc)
			if err != nil {
				return err
			}
			if fields == nil {
				return nil
			}

			now := s.clock()
			env := envelope{Version: doc.Version, UpdateTime: now, Data: doc.Data}
			docstore.ApplyFields(env.Data, fields, now)
			env.Version++
			payload, err := json.Marshal(env)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				pipe.SAdd(ctx, colKey(collection), path)
				pipe.Publish(ctx, chanName(collection), path)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			observability.TransactRetries.Inc()
			continue
		}
		return err
	}
	return docstore.ErrConflict
}

// mutate reads the envelope at path (nil if absent), lets prepare swap or
// reject it, then applies fields and commits under WATCH so concurrent
// writers never clobber each other's transforms.
func (s *Store) mutate(ctx context.Context, path string, prepare func(env *envelope) (*envelope, error), fields map[string]any) error {
	key := docKey(path)
	collection := docstore.CollectionOf(path)

	for attempt := 0; attempt < transactMaxRetries; attempt++ {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			var env *envelope
			raw, err := tx.Get(ctx, key).Result()
			switch {
			case errors.Is(err, redis.Nil):
				env = nil
			case err != nil:
				return err
			default:
				var e envelope
				if err := json.Unmarshal([]byte(raw), &e); err != nil {
					return err
				}
				env = &e
			}

			env, err = prepare(env)
			if err != nil {
				return err
			}

			now := s.clock()
			docstore.ApplyFields(env.Data, fields, now)
			env.Version++
			env.UpdateTime = now
			payload, err := json.Marshal(env)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, payload, 0)
				pipe.SAdd(ctx, colKey(collection), path)
				pipe.Publish(ctx, chanName(collection), path)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			observability.TransactRetries.Inc()
			continue
		}
		return err
	}
	return docstore.ErrConflict
}

// Subscribe re-evaluates q and invokes fn on every change published for
// q's collection. The subscriber goroutine recovers from handler panics
// the same way the pub/sub consumers elsewhere in this codebase do.
func (s *Store) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotHandler) (docstore.CancelFunc, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sub := s.rdb.Subscribe(ctx, chanName(q.Collection))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	initial, err := s.Query(ctx, q)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}

	observability.ActiveSubscriptions.Inc()
	done := make(chan struct{})
	ch := sub.Channel()

	go func() {
		defer observability.ActiveSubscriptions.Dec()
		defer func() { _ = sub.Close() }()

		deliver := func(docs []*docstore.Document) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("PANIC in snapshot handler: %v", r)
				}
			}()
			observability.SnapshotsDelivered.Inc()
			fn(docs)
		}

		deliver(initial)
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				docs, err := s.Query(ctx, q)
				if err != nil {
					log.Printf("subscription re-query failed: %v", err)
					continue
				}
				deliver(docs)
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { close(done) })
	}
	return cancel, nil
}

func decode(path, raw string) (*docstore.Document, error) {
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, err
	}
	return &docstore.Document{
		ID:         docstore.IDOf(path),
		Path:       path,
		Data:       env.Data,
		Version:    env.Version,
		UpdateTime: env.UpdateTime,
	}, nil
}
