package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"Vented/internal/store"
)

func newID() string {
	return uuid.NewString()
}

// pgTx adapts a SERIALIZABLE *sql.Tx to the gateway's Tx interface. The
// interface's write methods carry no error return, so failures stick to the
// transaction and abort it at commit time.
type pgTx struct {
	tx  *sql.Tx
	ctx context.Context
	err error
}

func (t *pgTx) Get(path, id string) (*store.Document, error) {
	if t.err != nil {
		return nil, t.err
	}
	row := t.tx.QueryRowContext(t.ctx,
		`SELECT data, created_at, updated_at FROM documents WHERE path = $1 AND id = $2`,
		path, id)
	return scanDoc(row, path, id)
}

func (t *pgTx) Set(path, id string, data map[string]any) {
	if t.err != nil {
		return
	}
	raw, err := json.Marshal(normalize(data))
	if err != nil {
		t.err = fmt.Errorf("failed to encode document %s/%s: %w", path, id, err)
		return
	}
	now := time.Now().UTC()
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO documents (path, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (path, id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		path, id, raw, now)
	if err != nil {
		t.err = err
	}
}

func (t *pgTx) Update(path, id string, ops ...store.Op) {
	if t.err != nil {
		return
	}
	doc, err := t.Get(path, id)
	if err != nil {
		t.err = err
		return
	}
	store.ApplyOps(doc.Data, ops, time.Now().UTC())
	t.Set(path, id, doc.Data)
}

func (t *pgTx) Delete(path, id string) {
	if t.err != nil {
		return
	}
	if _, err := t.tx.ExecContext(t.ctx, `DELETE FROM documents WHERE path = $1 AND id = $2`, path, id); err != nil {
		t.err = err
	}
}

// RunTransaction executes fn against a SERIALIZABLE transaction, retrying on
// serialization conflicts. An error returned by fn aborts without writing.
func (s *Store) RunTransaction(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.withTxRetry(ctx, func(sqlTx *sql.Tx) error {
		t := &pgTx{tx: sqlTx, ctx: ctx}
		if err := fn(t); err != nil {
			return err
		}
		return t.err
	})
}

// normalize rewrites values that do not survive a jsonb round trip into the
// forms the store helpers coerce from: times become RFC 3339 strings.
func normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		return normalize(val)
	case map[string]int64:
		m := make(map[string]any, len(val))
		for k, n := range val {
			m[k] = n
		}
		return m
	default:
		return v
	}
}
