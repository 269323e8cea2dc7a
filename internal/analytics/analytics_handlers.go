package analytics

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
)

// AppOpenedHandler records that the client started.
func AppOpenedHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			ColdStart bool   `json:"cold_start"`
			From      string `json:"from"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		env := FromRequest(r)
		env.UserID = uid

		props := map[string]any{
			"cold_start": body.ColdStart,
			"from":       body.From,
		}
		if err := Log(r.Context(), dbx, env, EventAppOpened, props, SourceEventKeyFromRequest(r)); err != nil {
			log.Printf("[WARN] analytics: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

// ViewOpenedHandler records a switch between the task list, calendar and
// profile screens.
func ViewOpenedHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			View string `json:"view"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		switch body.View {
		case "tasks", "calendar", "profile":
		default:
			http.Error(w, "unknown view", http.StatusBadRequest)
			return
		}

		env := FromRequest(r)
		env.UserID = uid

		if err := Log(r.Context(), dbx, env, EventViewOpened, map[string]any{"view": body.View}, SourceEventKeyFromRequest(r)); err != nil {
			log.Printf("[WARN] analytics: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}
