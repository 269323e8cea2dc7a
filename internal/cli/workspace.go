package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"focusflow/internal/config"
	"focusflow/internal/db"
	"focusflow/internal/storage"
	"focusflow/internal/tasks"
)

// workspace is the store of one CLI invocation plus its persistence.
type workspace struct {
	cfg     *config.Config
	store   *tasks.Store
	sync    *storage.Syncer
	remote  bool
	closers []func() error
}

func openWorkspace(ctx context.Context, opts *options) (*workspace, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.Storage.DataDir = opts.dataDir
	}
	if opts.backend != "" {
		cfg.Storage.Backend = opts.backend
	}

	w := &workspace{cfg: cfg, store: tasks.NewStore()}

	var kv storage.KV
	switch cfg.Storage.Backend {
	case config.StoreFile:
		kv = storage.NewFileKV(cfg.Storage.DataDir)
	case config.StoreSQLite:
		conn, err := openSQLite(filepath.Join(cfg.Storage.DataDir, "focusflow.db"))
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, conn.Close)
		kv = storage.NewSQLKV(conn)
	default:
		return nil, fmt.Errorf("unknown store backend %q: must be 'file' or 'sqlite'", cfg.Storage.Backend)
	}
	local := storage.NewLocalStore(kv)

	var remote storage.Remote
	if cfg.Sync.UserID != 0 {
		conn, err := db.Connect(cfg.DB.Driver, cfg.ConnString())
		if err == nil {
			err = db.Migrate(conn, cfg.DB.Driver)
			if err != nil {
				conn.Close()
			}
		}
		if err != nil {
			// the local copy is still usable
			log.Printf("[WARN] remote sync unavailable: %v", err)
		} else {
			w.closers = append(w.closers, conn.Close)
			remote = storage.NewRemoteStore(conn, cfg.Sync.UserID)
			w.remote = true
		}
	}

	w.sync = storage.NewSyncer(w.store, local, remote, cfg.Sync.Debounce)
	if err := w.sync.Hydrate(ctx); err != nil {
		log.Printf("[WARN] remote load failed, working locally: %v", err)
	}
	return w, nil
}

func openSQLite(path string) (*sql.DB, error) {
	conn, err := db.Connect(db.DriverSQLite, path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(conn, db.DriverSQLite); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// close pushes whatever the command changed; a CLI process never outlives
// the debounce.
func (w *workspace) close(ctx context.Context) {
	if err := w.sync.Close(ctx); err != nil {
		log.Printf("[WARN] remote sync: %v", err)
	}
	for i := len(w.closers) - 1; i >= 0; i-- {
		w.closers[i]()
	}
}

// withWorkspace wraps a RunE body with open and close.
func withWorkspace(opts *options, fn func(cmd *cobra.Command, args []string, w *workspace) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		w, err := openWorkspace(ctx, opts)
		if err != nil {
			return err
		}
		defer w.close(ctx)
		return fn(cmd, args, w)
	}
}

// resolve finds a task by full id or unique id prefix.
func (w *workspace) resolve(ref string) (tasks.Task, error) {
	if t, ok := w.store.Get(ref); ok {
		return t, nil
	}
	var match []tasks.Task
	for _, t := range w.store.Snapshot() {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return tasks.Task{}, fmt.Errorf("no task matches %q", ref)
	case 1:
		return match[0], nil
	}
	return tasks.Task{}, fmt.Errorf("%q matches %d tasks, use more of the id", ref, len(match))
}
