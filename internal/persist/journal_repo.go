package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/core/event"
)

// Change is one journaled field change.
type Change struct {
	ID        int64
	Session   string
	Entity    string
	EntityID  string
	Field     string
	Old       string
	New       string
	CreatedAt time.Time
}

// JournalRepo records entity field changes. Changes arriving from the bus are
// buffered and written in one transaction per Flush.
type JournalRepo struct {
	db      *DB
	session string
	pending []Change
	now     func() time.Time
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db, session: uuid.NewString(), now: time.Now}
}

// Session returns the id stamped on every change written by this repo.
func (r *JournalRepo) Session() string { return r.session }

// Pending returns the number of buffered, unwritten changes.
func (r *JournalRepo) Pending() int { return len(r.pending) }

// Attach subscribes the journal to entity events on bus.
func (r *JournalRepo) Attach(bus *event.Bus) {
	event.Subscribe(bus, func(e event.FieldChanged) {
		r.Add(Change{Entity: string(e.Entity), EntityID: e.ID, Field: e.Field, Old: e.Old, New: e.New})
	})
	event.Subscribe(bus, func(e event.PalCloned) {
		r.Add(Change{Entity: string(event.EntityPal), EntityID: e.Clone, Field: "ClonedFrom", New: e.Source})
	})
	event.Subscribe(bus, func(e event.PalDeleted) {
		r.Add(Change{Entity: string(event.EntityPal), EntityID: e.ID, Field: "Deleted", New: "true"})
	})
}

// Add buffers a change for the next Flush.
func (r *JournalRepo) Add(c Change) {
	c.Session = r.session
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.now()
	}
	r.pending = append(r.pending, c)
}

// Flush writes all buffered changes. The buffer is kept on failure so the
// caller can retry.
func (r *JournalRepo) Flush(ctx context.Context) (int, error) {
	if len(r.pending) == 0 {
		return 0, nil
	}
	if err := r.WriteChanges(ctx, r.pending); err != nil {
		return 0, err
	}
	n := len(r.pending)
	r.pending = r.pending[:0]
	r.db.log.Debug("編輯日誌已寫入", zap.Int("changes", n), zap.String("session", r.session))
	return n, nil
}

// WriteChanges atomically writes a batch of changes in a single transaction.
func (r *JournalRepo) WriteChanges(ctx context.Context, changes []Change) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		session := c.Session
		if session == "" {
			session = r.session
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO field_changes (session, entity, entity_id, field, old_value, new_value, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			session, c.Entity, c.EntityID, c.Field, c.Old, c.New, c.CreatedAt.UnixMilli(),
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit()
}

// History returns every change recorded for one entity, oldest first.
func (r *JournalRepo) History(ctx context.Context, entity event.EntityKind, id string) ([]Change, error) {
	return r.query(ctx,
		`SELECT id, session, entity, entity_id, field, old_value, new_value, created_at
		 FROM field_changes WHERE entity = ? AND entity_id = ? ORDER BY id`,
		string(entity), id)
}

// SessionChanges returns the changes written under session, oldest first.
func (r *JournalRepo) SessionChanges(ctx context.Context, session string) ([]Change, error) {
	return r.query(ctx,
		`SELECT id, session, entity, entity_id, field, old_value, new_value, created_at
		 FROM field_changes WHERE session = ? ORDER BY id`,
		session)
}

func (r *JournalRepo) query(ctx context.Context, q string, args ...any) ([]Change, error) {
	rows, err := r.db.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("journal query: %w", err)
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var c Change
		var ms int64
		if err := rows.Scan(&c.ID, &c.Session, &c.Entity, &c.EntityID, &c.Field, &c.Old, &c.New, &ms); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		c.CreatedAt = time.UnixMilli(ms)
		out = append(out, c)
	}
	return out, rows.Err()
}
