package tasks

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Listener observes the collection after every effective mutation. It
// receives a private snapshot and runs on the mutating goroutine, so
// concurrent mutations may deliver out of order: rev increases with every
// change and tells the listener which snapshot is newest.
type Listener func(rev uint64, snapshot []Task)

// Store is the ordered in-memory task collection. It owns every Task;
// callers only ever see copies.
type Store struct {
	mu        sync.RWMutex
	tasks     []Task
	rev       uint64
	newID     func() string
	listeners []Listener
}

type Option func(*Store)

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		tasks: []Task{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers l for change notifications.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns a copy of the collection in insertion order.
func (s *Store) Snapshot() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Revision returns the snapshot together with the revision it belongs to.
func (s *Store) Revision() (uint64, []Task) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev, s.snapshotLocked()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return Task{}, false
}

// Create appends a new, uncompleted task built from d.
func (s *Store) Create(d Draft) Task {
	var created Task
	s.mutate(func() bool {
		created = d.build(s.uniqueIDLocked(""))
		s.tasks = append(s.tasks, created)
		return true
	})
	return created
}

// Update merges p into the task. Unknown ids are ignored.
func (s *Store) Update(id string, p Patch) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		p.apply(&s.tasks[i])
		return true
	})
}

// ToggleCompletion flips the completed flag. Unknown ids are ignored.
func (s *Store) ToggleCompletion(id string) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks[i].Completed = !s.tasks[i].Completed
		return true
	})
}

// MoveToDate sets the start date and leaves the end date alone.
func (s *Store) MoveToDate(id string, d Date) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks[i].StartDate = d
		return true
	})
}

// Delete removes the task. Unknown ids are ignored.
func (s *Store) Delete(id string) bool {
	return s.mutate(func() bool {
		i := s.indexLocked(id)
		if i < 0 {
			return false
		}
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
		return true
	})
}

// ClearCompleted removes every completed task and reports how many went.
func (s *Store) ClearCompleted() int {
	removed := 0
	s.mutate(func() bool {
		kept := make([]Task, 0, len(s.tasks))
		for _, t := range s.tasks {
			if t.Completed {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		s.tasks = kept
		return removed > 0
	})
	return removed
}

// Append adds records to the end of the collection, as an import does.
// Records with a missing or already-used id get a fresh one; blank titles
// get the placeholder. The stored copies are returned.
func (s *Store) Append(records []Task) []Task {
	var added []Task
	s.mutate(func() bool {
		for _, r := range records {
			r.ID = s.uniqueIDLocked(r.ID)
			if strings.TrimSpace(r.Title) == "" {
				r.Title = untitled
			}
			s.tasks = append(s.tasks, r)
			added = append(added, r)
		}
		return len(added) > 0
	})
	return added
}

// Replace swaps the whole collection, e.g. when hydrating from storage.
// Listeners are not notified: the data came from the store being notified.
// The new revision and a copy of the installed collection are returned.
func (s *Store) Replace(records []Task) (uint64, []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]Task, 0, len(records))
	for _, r := range records {
		r.ID = s.uniqueIDLocked(r.ID)
		s.tasks = append(s.tasks, r)
	}
	s.rev++
	return s.rev, s.snapshotLocked()
}

func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	changed := fn()
	var (
		rev       uint64
		snap      []Task
		listeners []Listener
	)
	if changed {
		s.rev++
		rev = s.rev
		if len(s.listeners) > 0 {
			snap = s.snapshotLocked()
			listeners = append(listeners, s.listeners...)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(rev, cloneTasks(snap))
	}
	return changed
}

func (s *Store) snapshotLocked() []Task {
	return cloneTasks(s.tasks)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueIDLocked keeps want if it is non-empty and unused, otherwise it
// generates ids until one is free.
func (s *Store) uniqueIDLocked(want string) string {
	id := strings.TrimSpace(want)
	for id == "" || s.indexLocked(id) >= 0 {
		id = s.newID()
	}
	return id
}

func cloneTasks(in []Task) []Task {
	out := make([]Task, len(in))
	copy(out, in)
	return out
}
