package storage

import (
	"fmt"
	"log"

	"focusflow/internal/tasks"
)

// LocalStore persists the collection as one JSON array under a fixed key.
type LocalStore struct {
	kv  KV
	key string
}

func NewLocalStore(kv KV) *LocalStore {
	return &LocalStore{kv: kv, key: tasks.StorageKey}
}

// NewUserLocalStore scopes the key to one user so several workspaces can
// share a KV.
func NewUserLocalStore(kv KV, userID int64) *LocalStore {
	return &LocalStore{kv: kv, key: fmt.Sprintf("%s_user_%d", tasks.StorageKey, userID)}
}

// Load never fails: missing, unreadable or malformed data is an empty
// collection.
func (l *LocalStore) Load() []tasks.Task {
	b, ok, err := l.kv.Get(l.key)
	if err != nil {
		log.Printf("[WARN] local load %s: %v", l.key, err)
		return []tasks.Task{}
	}
	if !ok {
		return []tasks.Task{}
	}
	out, err := tasks.Decode(b)
	if err != nil {
		log.Printf("[WARN] local data under %s ignored: %v", l.key, err)
	}
	return out
}

func (l *LocalStore) Save(ts []tasks.Task) error {
	b, err := tasks.Encode(ts)
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return l.kv.Set(l.key, b)
}
