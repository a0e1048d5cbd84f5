// Package docstore defines the contract the engine requires from its
// backing document database: keyed documents grouped into collections,
// partial updates with field-level atomic transforms, simple equality
// queries, live snapshot subscriptions, and an optimistic per-document
// transaction primitive.
//
// The engine never talks to a concrete backend directly; everything goes
// through Store. Implementations live in the memstore and redisstore
// subpackages.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get, Update, Delete and Transact when the
// addressed document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// ErrConflict is returned by Transact when the document changed underneath
// the transaction more times than the implementation was willing to retry.
var ErrConflict = errors.New("docstore: transaction conflict")

// Document is a point-in-time copy of a stored document. Data is owned by
// the receiver; implementations hand out copies, never shared maps.
type Document struct {
	ID         string
	Path       string
	Data       map[string]any
	Version    int64
	UpdateTime time.Time
}

// Cond is a single equality filter. Only "==" is supported, which is all
// the engine's queries need.
type Cond struct {
	Field string
	Value any
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Where      []Cond
	OrderBy    string
	Desc       bool
	Limit      int
}

// SnapshotHandler receives the full re-evaluated result set of a
// subscription's query. Handlers for one subscription are invoked strictly
// in the order the underlying changes were observed; no ordering holds
// across different subscriptions.
type SnapshotHandler func(docs []*Document)

// CancelFunc releases a subscription. Calling it more than once is safe.
type CancelFunc func()

// Store is the document database contract.
//
// Field maps passed to Set, Update and Transact may contain transform
// sentinels (Increment, ArrayUnion, ArrayRemove, DeleteField,
// ServerTimestamp) which are applied atomically on the server side.
type Store interface {
	// Get performs a point read. Returns ErrNotFound for absent documents.
	Get(ctx context.Context, path string) (*Document, error)

	// Set writes a document. With merge=false the document is replaced;
	// with merge=true the given fields are merged into any existing data.
	Set(ctx context.Context, path string, data map[string]any, merge bool) error

	// Update applies partial fields to an existing document. Returns
	// ErrNotFound if the document does not exist.
	Update(ctx context.Context, path string, fields map[string]any) error

	// Add creates a document with a generated id under collection and
	// returns the new id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)

	// Delete removes a document. Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, path string) error

	// Query returns the documents matching q.
	Query(ctx context.Context, q Query) ([]*Document, error)

	// Count returns the number of documents matching q, ignoring q.Limit.
	Count(ctx context.Context, q Query) (int64, error)

	// Subscribe registers fn for q. The initial result set is delivered
	// as the first snapshot; afterwards fn is invoked with the full
	// re-evaluated result set every time a document in q's collection
	// changes. The subscription lives until the CancelFunc is called or
	// ctx is cancelled.
	Subscribe(ctx context.Context, q Query, fn SnapshotHandler) (CancelFunc, error)

	// Transact runs fn against the current document at path and applies
	// the returned fields atomically, but only if the document's version
	// is unchanged since the read. On a version conflict the read-apply
	// cycle is retried; persistent contention surfaces as ErrConflict.
	// An error returned by fn aborts the transaction unchanged.
	Transact(ctx context.Context, path string, fn func(doc *Document) (map[string]any, error)) error
}
