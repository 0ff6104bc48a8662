// Package store defines the document-store gateway contract the rest of the
// application is written against: collections of schemaless documents with
// point reads, predicate queries, live query subscriptions, and atomic
// multi-document transactions.
//
// Two implementations exist: memstore (in-process, used by tests and local
// development) and postgres (jsonb documents with LISTEN/NOTIFY-driven live
// queries). Services never depend on either implementation directly.
package store

import (
	"context"
	"time"
)

// Document is a single stored document. Data holds the document fields;
// CreatedAt and UpdatedAt are assigned by the store, never by callers.
type Document struct {
	Data      map[string]any
	Path      string
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Condition is an equality predicate over a document field.
type Condition struct {
	Field string
	Value any
}

// Query selects documents from one collection path, optionally filtered and
// ordered. An empty OrderBy orders by creation time.
type Query struct {
	Path    string
	OrderBy string
	Where   []Condition
	Desc    bool
}

// Snapshot is one emission of a live query: the entire matching result set,
// not a diff. A non-nil Err is terminal for its subscription.
type Snapshot struct {
	Err  error
	Docs []Document
}

// Subscription is a live query registration. Updates delivers the full
// current result set on every change to the underlying collection until
// Cancel is called or a terminal error snapshot is delivered, after which
// the channel is closed.
type Subscription interface {
	Updates() <-chan Snapshot

	// Cancel releases the store-side listener. It is synchronous: once it
	// returns, no further snapshot will be delivered. Safe to call twice.
	Cancel()
}

// Tx is the handle passed to a transaction function. All reads observe a
// consistent state and all writes commit atomically or not at all. Reads
// performed through Tx participate in conflict detection.
type Tx interface {
	Get(path, id string) (*Document, error)
	Set(path, id string, data map[string]any)
	Update(path, id string, ops ...Op)
	Delete(path, id string)
}

// Store is the gateway contract. All methods honor ctx cancellation.
type Store interface {
	// Get reads one document, returning ErrNotFound when it does not exist.
	Get(ctx context.Context, path, id string) (*Document, error)

	// List runs q once and returns the matching documents.
	List(ctx context.Context, q Query) ([]Document, error)

	// Create writes a new document under a freshly allocated id and returns
	// the id. CreatedAt is server-assigned.
	Create(ctx context.Context, path string, data map[string]any) (string, error)

	// Set writes a document wholesale under a caller-chosen id, creating it
	// if absent.
	Set(ctx context.Context, path, id string, data map[string]any) error

	// SetMerge merges the given fields into a document, creating it if
	// absent. Union ops merge into existing array values.
	SetMerge(ctx context.Context, path, id string, ops ...Op) error

	// Update applies field ops to an existing document, returning
	// ErrNotFound when it does not exist.
	Update(ctx context.Context, path, id string, ops ...Op) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, path, id string) error

	// Watch registers a live query. The first snapshot reflects the current
	// result set and is delivered asynchronously.
	Watch(ctx context.Context, q Query) (Subscription, error)

	// RunTransaction executes fn atomically, retrying it from scratch when a
	// concurrent transaction conflicts. fn may be invoked multiple times and
	// must be side-effect free apart from Tx writes. Returning an error from
	// fn aborts the transaction without writing.
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error

	Close() error
}
