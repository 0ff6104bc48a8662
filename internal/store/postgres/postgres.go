// Package postgres implements the store gateway contract on PostgreSQL.
// Documents live in a single jsonb table; transactions run SERIALIZABLE with
// transparent retry on serialization failures, and live queries are driven
// by a NOTIFY trigger consumed through pq.Listener.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"Vented/internal/store"
)

// notifyChannel is the Postgres NOTIFY channel the documents trigger fires
// on. Payload is the collection path of the changed document.
const notifyChannel = "document_changes"

// Store implements store.Store over a PostgreSQL connection.
type Store struct {
	db       *sql.DB
	logger   *slog.Logger
	listener *pq.Listener

	mu       sync.Mutex
	watchers map[int]*watcher
	nextID   int
	closed   bool
}

// New creates a gateway over db. dsn is used to open the LISTEN connection
// for live queries; migrations must already have been applied.
func New(db *sql.DB, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:       db,
		logger:   logger,
		watchers: make(map[int]*watcher),
	}

	s.listener = pq.NewListener(dsn, 100*time.Millisecond, 10*time.Second, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("document listener event", "event", ev, "error", err)
		}
	})
	if err := s.listener.Listen(notifyChannel); err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}
	go s.dispatchNotifications()

	return s, nil
}

func (s *Store) Get(ctx context.Context, path, id string) (*store.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data, created_at, updated_at FROM documents WHERE path = $1 AND id = $2`,
		path, id)
	return scanDoc(row, path, id)
}

func scanDoc(row *sql.Row, path, id string) (*store.Document, error) {
	var raw []byte
	doc := store.Document{Path: path, ID: id}
	if err := row.Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, translate(err)
	}
	if err := json.Unmarshal(raw, &doc.Data); err != nil {
		return nil, fmt.Errorf("failed to decode document %s/%s: %w", path, id, err)
	}
	return &doc, nil
}

func (s *Store) List(ctx context.Context, q store.Query) ([]store.Document, error) {
	query, args := buildListQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	docs := make([]store.Document, 0)
	for rows.Next() {
		var raw []byte
		doc := store.Document{Path: q.Path}
		if err := rows.Scan(&doc.ID, &raw, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, translate(err)
		}
		if err := json.Unmarshal(raw, &doc.Data); err != nil {
			return nil, fmt.Errorf("failed to decode document %s/%s: %w", q.Path, doc.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// buildListQuery compiles a store.Query to SQL. Equality predicates compare
// jsonb text projections; ordering falls back to created_at when no field is
// named. Timestamp fields are stored as RFC 3339 strings, which sort
// chronologically as text.
func buildListQuery(q store.Query) (string, []any) {
	var b strings.Builder
	args := []any{q.Path}
	b.WriteString(`SELECT id, data, created_at, updated_at FROM documents WHERE path = $1`)
	for _, c := range q.Where {
		args = append(args, fmt.Sprintf("%v", c.Value))
		fmt.Fprintf(&b, ` AND data->>%s = $%d`, pq.QuoteLiteral(c.Field), len(args))
	}
	if q.OrderBy == "" {
		b.WriteString(` ORDER BY created_at`)
	} else {
		fmt.Fprintf(&b, ` ORDER BY data->>%s`, pq.QuoteLiteral(q.OrderBy))
	}
	if q.Desc {
		b.WriteString(` DESC`)
	}
	b.WriteString(`, id`)
	return b.String(), args
}

func (s *Store) Create(ctx context.Context, path string, data map[string]any) (string, error) {
	id := newID()
	if err := s.Set(ctx, path, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Set(ctx context.Context, path, id string, data map[string]any) error {
	return s.RunTransaction(ctx, func(tx store.Tx) error {
		tx.Set(path, id, data)
		return nil
	})
}

func (s *Store) SetMerge(ctx context.Context, path, id string, ops ...store.Op) error {
	return s.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(path, id)
		if err != nil && !store.IsNotFound(err) {
			return err
		}
		data := map[string]any{}
		if doc != nil {
			data = doc.Data
		}
		store.ApplyOps(data, ops, time.Now().UTC())
		tx.Set(path, id, data)
		return nil
	})
}

func (s *Store) Update(ctx context.Context, path, id string, ops ...store.Op) error {
	return s.RunTransaction(ctx, func(tx store.Tx) error {
		if _, err := tx.Get(path, id); err != nil {
			return err
		}
		tx.Update(path, id, ops...)
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, path, id string) error {
	return s.RunTransaction(ctx, func(tx store.Tx) error {
		tx.Delete(path, id)
		return nil
	})
}

func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	watchers := make([]*watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w.fail(store.ErrUnavailable)
	}
	return s.listener.Close()
}

// translate maps driver errors onto the gateway error taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "28": // invalid_authorization_specification
			return fmt.Errorf("%w: %v", store.ErrPermissionDenied, err)
		case "08", "53", "57": // connection / resource failures
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
		return err
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return err
}

// isSerializationFailure reports whether err is a conflict Postgres asks the
// client to retry: serialization_failure (40001) or deadlock_detected (40P01).
func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// withTxRetry runs fn in a SERIALIZABLE transaction, retrying with fibonacci
// backoff while Postgres reports serialization conflicts.
func (s *Store) withTxRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	backoff := retry.WithMaxRetries(8, retry.NewFibonacci(5*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return translate(err)
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if isSerializationFailure(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			if isSerializationFailure(err) {
				return retry.RetryableError(err)
			}
			return translate(err)
		}
		return nil
	})
	if err != nil && isSerializationFailure(err) {
		return store.ErrTxRetryExhausted
	}
	return err
}
