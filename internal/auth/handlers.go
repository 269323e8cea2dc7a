package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func RegisterHandler(dbx *sql.DB, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Email == "" || body.Password == "" {
			http.Error(w, "email & password required", http.StatusBadRequest)
			return
		}

		id, err := CreateUser(r.Context(), dbx, body.Email, body.Password)
		switch {
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			log.Printf("[WARN] register: %v", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		token, err := GenerateToken(secret, id)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"user_id": id,
			"token":   token,
		})
	}
}

func LoginHandler(dbx *sql.DB, secret []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body credentials
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		id, err := Authenticate(r.Context(), dbx, body.Email, body.Password)
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid login", http.StatusUnauthorized)
			return
		}
		if err != nil {
			log.Printf("[WARN] login: %v", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		token, err := GenerateToken(secret, id)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": id,
			"token":   token,
		})
	}
}

func MeHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		email, err := Email(r.Context(), dbx, uid)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": uid,
			"email":   email,
		})
	}
}

// LogoutHandler exists for symmetry; tokens are stateless and the client
// simply drops its copy.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// DeleteAccountHandler removes the user. drop, if set, runs first so any
// in-memory state and pending push for the user is gone before the rows are.
func DeleteAccountHandler(dbx *sql.DB, drop func(userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if drop != nil {
			drop(uid)
		}
		if err := DeleteUser(r.Context(), dbx, uid); err != nil {
			log.Printf("[WARN] delete account %d: %v", uid, err)
			http.Error(w, "delete account failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
