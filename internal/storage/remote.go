package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"focusflow/internal/tasks"
)

var ErrConflict = errors.New("remote tasks changed since last sync")

// ConflictError lists the records whose remote version moved underneath us.
type ConflictError struct {
	IDs []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConflict, strings.Join(e.IDs, ", "))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// RemoteStore syncs one user's collection with the remote_tasks table.
// Each row carries a version; writes only land on the version last seen.
type RemoteStore struct {
	db     *sql.DB
	userID int64
	now    func() time.Time

	mu       sync.Mutex
	versions map[string]int64
	payloads map[string]string
}

func NewRemoteStore(db *sql.DB, userID int64) *RemoteStore {
	return &RemoteStore{
		db:       db,
		userID:   userID,
		now:      time.Now,
		versions: map[string]int64{},
		payloads: map[string]string{},
	}
}

func (r *RemoteStore) UserID() int64 { return r.userID }

// Load returns the user's records, most recently modified first.
func (r *RemoteStore) Load(ctx context.Context) ([]tasks.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, payload, version
		FROM remote_tasks
		WHERE user_id = $1
		ORDER BY updated_at DESC, id
	`, r.userID)
	if err != nil {
		return nil, fmt.Errorf("query remote tasks: %w", err)
	}
	defer rows.Close()

	versions := map[string]int64{}
	payloads := map[string]string{}
	out := []tasks.Task{}
	for rows.Next() {
		var id, payload string
		var version int64
		if err := rows.Scan(&id, &payload, &version); err != nil {
			return nil, fmt.Errorf("scan remote task: %w", err)
		}
		versions[id] = version
		var t tasks.Task
		if err := json.Unmarshal([]byte(payload), &t); err != nil {
			log.Printf("[WARN] remote task %s skipped: %v", id, err)
			continue
		}
		t.ID = id
		payloads[id] = payload
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remote tasks: %w", err)
	}

	r.mu.Lock()
	r.versions = versions
	r.payloads = payloads
	r.mu.Unlock()
	return out, nil
}

// Push writes the whole collection in one transaction. Unchanged records
// are skipped. If any record was modified or created remotely since the
// last Load/Push, nothing is written and a *ConflictError is returned.
func (r *RemoteStore) Push(ctx context.Context, ts []tasks.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := r.now().UnixMilli()
	versions := make(map[string]int64, len(ts))
	payloads := make(map[string]string, len(ts))
	local := make(map[string]bool, len(ts))
	var conflicts []string

	for _, t := range ts {
		local[t.ID] = true
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("json marshal %s: %w", t.ID, err)
		}
		payload := string(b)
		seen := r.versions[t.ID]
		if p, ok := r.payloads[t.ID]; ok && p == payload {
			versions[t.ID] = seen
			payloads[t.ID] = payload
			continue
		}

		res, err := tx.ExecContext(ctx, `
			INSERT INTO remote_tasks (user_id, id, payload, version, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, id) DO UPDATE
			SET payload = excluded.payload, version = excluded.version, updated_at = excluded.updated_at
			WHERE remote_tasks.version = $6
		`, r.userID, t.ID, payload, seen+1, now, seen)
		if err != nil {
			return fmt.Errorf("upsert remote task %s: %w", t.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			conflicts = append(conflicts, t.ID)
			continue
		}
		versions[t.ID] = seen + 1
		payloads[t.ID] = payload
	}

	for id, seen := range r.versions {
		if local[id] {
			continue
		}
		res, err := tx.ExecContext(ctx, `
			DELETE FROM remote_tasks
			WHERE user_id = $1 AND id = $2 AND version = $3
		`, r.userID, id, seen)
		if err != nil {
			return fmt.Errorf("delete remote task %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n > 0 {
			continue
		}
		// Zero rows: already gone is fine, a newer version is a conflict.
		var exists int
		err = tx.QueryRowContext(ctx, `
			SELECT 1 FROM remote_tasks WHERE user_id = $1 AND id = $2
		`, r.userID, id).Scan(&exists)
		if err == nil {
			conflicts = append(conflicts, id)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check remote task %s: %w", id, err)
		}
	}

	if len(conflicts) > 0 {
		return &ConflictError{IDs: conflicts}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.versions = versions
	r.payloads = payloads
	return nil
}

// DeleteAll removes every remote record of the user.
func (r *RemoteStore) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.db.ExecContext(ctx, `DELETE FROM remote_tasks WHERE user_id = $1`, r.userID); err != nil {
		return fmt.Errorf("delete remote tasks: %w", err)
	}
	r.versions = map[string]int64{}
	r.payloads = map[string]string{}
	return nil
}
