package persist

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// SnapshotKind tells whether a snapshot was taken on load or on save.
type SnapshotKind string

const (
	SnapshotLoad SnapshotKind = "load"
	SnapshotSave SnapshotKind = "save"
)

// Snapshot describes one save file as it was read or written.
type Snapshot struct {
	ID        int64
	Session   string
	Kind      SnapshotKind
	Path      string
	Size      int
	Rounds    int
	Digest    string
	CreatedAt time.Time
}

// Digest returns the hex blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type SnapshotRepo struct {
	db      *DB
	session string
}

func NewSnapshotRepo(db *DB, session string) *SnapshotRepo {
	return &SnapshotRepo{db: db, session: session}
}

// Record stores a snapshot of data read from or written to path.
func (r *SnapshotRepo) Record(ctx context.Context, kind SnapshotKind, path string, data []byte, rounds int) (Snapshot, error) {
	s := Snapshot{
		Session:   r.session,
		Kind:      kind,
		Path:      path,
		Size:      len(data),
		Rounds:    rounds,
		Digest:    Digest(data),
		CreatedAt: time.Now(),
	}
	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO snapshots (session, kind, path, size, rounds, digest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Session, string(s.Kind), s.Path, s.Size, s.Rounds, s.Digest, s.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot insert: %w", err)
	}
	s.ID, _ = res.LastInsertId()
	return s, nil
}

// LastSave returns the most recent save snapshot for path, or nil if paledit
// never wrote it.
func (r *SnapshotRepo) LastSave(ctx context.Context, path string) (*Snapshot, error) {
	var s Snapshot
	var kind string
	var ms int64
	err := r.db.SQL.QueryRowContext(ctx,
		`SELECT id, session, kind, path, size, rounds, digest, created_at
		 FROM snapshots WHERE path = ? AND kind = ? ORDER BY id DESC LIMIT 1`,
		path, string(SnapshotSave),
	).Scan(&s.ID, &s.Session, &kind, &s.Path, &s.Size, &s.Rounds, &s.Digest, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot query: %w", err)
	}
	s.Kind = SnapshotKind(kind)
	s.CreatedAt = time.UnixMilli(ms)
	return &s, nil
}

// ModifiedSinceSave reports whether data differs from the last save paledit
// wrote to path. A path with no save snapshot is never reported as modified.
func (r *SnapshotRepo) ModifiedSinceSave(ctx context.Context, path string, data []byte) (bool, error) {
	last, err := r.LastSave(ctx, path)
	if err != nil || last == nil {
		return false, err
	}
	return last.Digest != Digest(data), nil
}
