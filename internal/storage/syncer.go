package storage

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"focusflow/internal/tasks"
)

// DefaultDebounce is the quiet period before a remote push.
const DefaultDebounce = time.Second

type Status string

const (
	StatusLocal     Status = "local"
	StatusSynced    Status = "synced"
	StatusPending   Status = "pending"
	StatusLocalOnly Status = "local-only"
	StatusConflict  Status = "conflict"
)

// Local is the durable on-device copy.
type Local interface {
	Load() []tasks.Task
	Save([]tasks.Task) error
}

// Remote is the optional server-side copy.
type Remote interface {
	Load(ctx context.Context) ([]tasks.Task, error)
	Push(ctx context.Context, ts []tasks.Task) error
}

// SyncState is what Status reports.
type SyncState struct {
	Status    Status    `json:"status"`
	LastError string    `json:"lastError,omitempty"`
	LastSync  time.Time `json:"lastSync,omitzero"`
	Conflicts []string  `json:"conflicts,omitempty"`
}

// Syncer observes a Store: every change is saved locally right away and
// pushed to the remote after a quiet period. Either side may be nil.
type Syncer struct {
	store    *tasks.Store
	local    Local
	remote   Remote
	debounce *Debouncer
	timeout  time.Duration

	// saveMu orders local writes; savedRev is the newest revision on disk.
	saveMu   sync.Mutex
	savedRev uint64

	// pushMu serializes pushes with Discard.
	pushMu    sync.Mutex
	discarded bool

	mu        sync.Mutex
	latest    []tasks.Task
	latestRev uint64
	state     SyncState
}

func NewSyncer(store *tasks.Store, local Local, remote Remote, delay time.Duration) *Syncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	s := &Syncer{
		store:    store,
		local:    local,
		remote:   remote,
		debounce: NewDebouncer(delay),
		timeout:  10 * time.Second,
		state:    SyncState{Status: StatusLocal},
	}
	store.Subscribe(s.onChange)
	return s
}

// Hydrate seeds the store once at startup: the local copy first, then the
// remote copy replaces it if the remote has any records. A remote failure
// leaves the local data in place and is returned for logging only.
func (s *Syncer) Hydrate(ctx context.Context) error {
	if s.local != nil {
		s.store.Replace(s.local.Load())
	}
	if s.remote == nil {
		return nil
	}
	remote, err := s.remote.Load(ctx)
	if err != nil {
		s.setState(StatusLocalOnly, err, nil)
		return err
	}
	if len(remote) > 0 {
		rev, snap := s.store.Replace(remote)
		s.saveLocal(rev, snap)
	}
	s.setState(StatusSynced, nil, nil)
	return nil
}

func (s *Syncer) onChange(rev uint64, snapshot []tasks.Task) {
	s.saveLocal(rev, snapshot)
	if s.remote == nil {
		return
	}
	s.mu.Lock()
	s.setLatestLocked(rev, snapshot)
	if s.state.Status != StatusConflict {
		s.state.Status = StatusPending
	}
	s.mu.Unlock()
	s.debounce.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.push(ctx)
	})
}

// saveLocal writes snapshot unless a newer revision is already saved.
func (s *Syncer) saveLocal(rev uint64, snapshot []tasks.Task) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if rev <= s.savedRev {
		return
	}
	s.savedRev = rev
	if s.local == nil {
		return
	}
	if err := s.local.Save(snapshot); err != nil {
		log.Printf("[WARN] local save: %v", err)
	}
}

func (s *Syncer) setLatestLocked(rev uint64, snapshot []tasks.Task) {
	if rev < s.latestRev {
		return
	}
	s.latest = snapshot
	s.latestRev = rev
}

func (s *Syncer) push(ctx context.Context) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if s.discarded {
		return nil
	}

	s.mu.Lock()
	snapshot := s.latest
	s.mu.Unlock()
	if snapshot == nil {
		snapshot = s.store.Snapshot()
	}

	err := s.remote.Push(ctx, snapshot)
	var conflict *ConflictError
	switch {
	case err == nil:
		s.setState(StatusSynced, nil, nil)
	case errors.As(err, &conflict):
		log.Printf("[WARN] remote sync rejected: %v", err)
		s.setState(StatusConflict, err, conflict.IDs)
	default:
		log.Printf("[WARN] remote sync failed: %v", err)
		s.setState(StatusLocalOnly, err, nil)
	}
	return err
}

// Flush pushes a pending change immediately instead of waiting out the
// debounce. It is a no-op when nothing is pending.
func (s *Syncer) Flush(ctx context.Context) error {
	if s.remote == nil || !s.debounce.Cancel() {
		return nil
	}
	return s.push(ctx)
}

// Push sends the current collection regardless of pending state.
func (s *Syncer) Push(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	s.debounce.Cancel()
	rev, snap := s.store.Revision()
	s.mu.Lock()
	s.setLatestLocked(rev, snap)
	s.mu.Unlock()
	return s.push(ctx)
}

// Pull discards local state in favor of the remote copy, even when the
// remote is empty. This is how a conflict is resolved.
func (s *Syncer) Pull(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}
	s.debounce.Cancel()
	remote, err := s.remote.Load(ctx)
	if err != nil {
		s.setState(StatusLocalOnly, err, nil)
		return err
	}
	rev, snap := s.store.Replace(remote)
	s.saveLocal(rev, snap)
	s.mu.Lock()
	s.latest = nil
	s.latestRev = rev
	s.mu.Unlock()
	s.setState(StatusSynced, nil, nil)
	return nil
}

// Discard drops a pending push and disables later ones, e.g. when the
// account is being deleted. A push already in flight finishes first.
func (s *Syncer) Discard() {
	s.debounce.Cancel()
	s.pushMu.Lock()
	s.discarded = true
	s.pushMu.Unlock()
}

// Close flushes any pending push.
func (s *Syncer) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

func (s *Syncer) Status() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Conflicts = append([]string(nil), s.state.Conflicts...)
	return st
}

func (s *Syncer) setState(status Status, err error, conflicts []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Status = status
	s.state.Conflicts = conflicts
	if err != nil {
		s.state.LastError = err.Error()
		return
	}
	s.state.LastError = ""
	s.state.LastSync = time.Now()
}
