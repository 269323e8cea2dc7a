package api

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	"focusflow/internal/storage"
	"focusflow/internal/tasks"
)

const hydrateTimeout = 10 * time.Second

// Workspace is one user's task collection and its sync pipeline.
type Workspace struct {
	Store *tasks.Store
	Sync  *storage.Syncer

	once sync.Once
}

// Workspaces hands out a lazily hydrated Workspace per user. The remote
// table is the durable copy; nothing is kept on local disk.
type Workspaces struct {
	db       *sql.DB
	debounce time.Duration
	now      func() time.Time

	mu     sync.Mutex
	byUser map[int64]*Workspace
}

func NewWorkspaces(db *sql.DB, debounce time.Duration) *Workspaces {
	return &Workspaces{
		db:       db,
		debounce: debounce,
		now:      time.Now,
		byUser:   map[int64]*Workspace{},
	}
}

// Today is the reference date for stats and due indicators.
func (ws *Workspaces) Today() tasks.Date {
	return tasks.DateOf(ws.now())
}

func (ws *Workspaces) Get(ctx context.Context, userID int64) *Workspace {
	ws.mu.Lock()
	w, ok := ws.byUser[userID]
	if !ok {
		store := tasks.NewStore()
		w = &Workspace{
			Store: store,
			Sync:  storage.NewSyncer(store, nil, storage.NewRemoteStore(ws.db, userID), ws.debounce),
		}
		ws.byUser[userID] = w
	}
	ws.mu.Unlock()

	w.once.Do(func() {
		// The workspace outlives this request.
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hydrateTimeout)
		defer cancel()
		if err := w.Sync.Hydrate(hctx); err != nil {
			log.Printf("[WARN] hydrate user %d: %v", userID, err)
		}
	})
	return w
}

// Drop forgets a user's workspace without pushing pending changes.
func (ws *Workspaces) Drop(userID int64) {
	ws.mu.Lock()
	w, ok := ws.byUser[userID]
	delete(ws.byUser, userID)
	ws.mu.Unlock()
	if ok {
		w.Sync.Discard()
	}
}

// Close flushes every workspace with a pending push.
func (ws *Workspaces) Close(ctx context.Context) {
	ws.mu.Lock()
	all := make(map[int64]*Workspace, len(ws.byUser))
	for id, w := range ws.byUser {
		all[id] = w
	}
	ws.mu.Unlock()

	for id, w := range all {
		if err := w.Sync.Close(ctx); err != nil {
			log.Printf("[WARN] flush user %d: %v", id, err)
		}
	}
}
