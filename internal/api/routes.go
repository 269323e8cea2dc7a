package api

import (
	"database/sql"
	"net/http"

	"focusflow/internal/analytics"
	"focusflow/internal/auth"
)

// Routes registers every endpoint on mux.
func Routes(mux *http.ServeMux, dbx *sql.DB, ws *Workspaces, secret []byte) {
	mw := auth.New(secret, dbx)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /auth/register", auth.RegisterHandler(dbx, secret))
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(dbx, secret))
	mux.HandleFunc("POST /auth/logout", auth.LogoutHandler())
	mux.HandleFunc("GET /auth/me", mw.Wrap(auth.MeHandler(dbx)))
	mux.HandleFunc("DELETE /auth/account", mw.Wrap(auth.DeleteAccountHandler(dbx, ws.Drop)))

	mux.HandleFunc("GET /tasks", mw.Wrap(ListTasksHandler(ws)))
	mux.HandleFunc("POST /tasks", mw.Wrap(CreateTaskHandler(ws)))
	mux.HandleFunc("POST /tasks/clear-completed", mw.Wrap(ClearCompletedHandler(ws)))
	mux.HandleFunc("GET /tasks/{id}", mw.Wrap(GetTaskHandler(ws)))
	mux.HandleFunc("PATCH /tasks/{id}", mw.Wrap(UpdateTaskHandler(ws)))
	mux.HandleFunc("DELETE /tasks/{id}", mw.Wrap(DeleteTaskHandler(ws)))
	mux.HandleFunc("POST /tasks/{id}/toggle", mw.Wrap(ToggleTaskHandler(ws)))
	mux.HandleFunc("POST /tasks/{id}/move", mw.Wrap(MoveTaskHandler(ws)))

	mux.HandleFunc("GET /calendar", mw.Wrap(CalendarHandler(ws)))
	mux.HandleFunc("GET /calendar/{date}", mw.Wrap(CalendarDayHandler(ws)))
	mux.HandleFunc("GET /stats", mw.Wrap(StatsHandler(ws)))

	mux.HandleFunc("GET /export", mw.Wrap(ExportHandler(ws)))
	mux.HandleFunc("POST /import", mw.Wrap(ImportHandler(ws)))

	mux.HandleFunc("GET /sync/status", mw.Wrap(SyncStatusHandler(ws)))
	mux.HandleFunc("POST /sync/flush", mw.Wrap(SyncFlushHandler(ws)))
	mux.HandleFunc("POST /sync/pull", mw.Wrap(SyncPullHandler(ws)))

	mux.HandleFunc("POST /analytics/app-opened", mw.Wrap(analytics.AppOpenedHandler(dbx)))
	mux.HandleFunc("POST /analytics/view", mw.Wrap(analytics.ViewOpenedHandler(dbx)))
}
