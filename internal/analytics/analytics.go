package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Task lifecycle events.
const (
	EventTaskCreated     = "task_created"
	EventTaskUpdated     = "task_updated"
	EventTaskCompleted   = "task_completed"
	EventTaskUncompleted = "task_uncompleted"
	EventTaskMoved       = "task_moved"
	EventTaskDeleted     = "task_deleted"
	EventTasksImported   = "tasks_imported"
	EventTasksCleared    = "tasks_cleared"

	EventAppOpened  = "app_opened"
	EventViewOpened = "view_opened"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int64
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "web", "ios", "android", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(ctxUserIDKey).(int64)
	return uid, ok
}

// SourceEventKeyFromRequest returns the client's idempotency key, if any.
// A repeated key is stored once.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Log inserts one analytics event. Events without a user are dropped.
// Callers log the error and carry on.
func Log(ctx context.Context, db *sql.DB, env Envelope, eventName string, props any, sourceEventKey string) error {
	if eventName == "" || db == nil {
		return nil
	}

	userID := env.UserID
	if userID == 0 {
		uid, ok := UserIDFromContext(ctx)
		if !ok {
			return nil
		}
		userID = uid
	}
	if env.Platform == "" {
		env.Platform = "unknown"
	}

	b, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("analytics props: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale,
			source_event_key,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_event_key) DO NOTHING
	`, eventName, time.Now().UnixMilli(),
		userID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", eventName, err)
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// Count returns how many events of a name a user has.
func Count(ctx context.Context, db *sql.DB, userID int64, eventName string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM analytics_events WHERE user_id = $1 AND event_name = $2
	`, userID, eventName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", eventName, err)
	}
	return n, nil
}

// DeleteUser removes a user's events.
func DeleteUser(ctx context.Context, tx *sql.Tx, userID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM analytics_events WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete analytics_events: %w", err)
	}
	return nil
}
