package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"focusflow/internal/analytics"
	"focusflow/internal/auth"
	"focusflow/internal/storage"
	"focusflow/internal/tasks"
)

const (
	maxImportBytes   = 5 << 20
	maxCalendarRange = 366
)

// TaskView is a task as the list screen shows it.
type TaskView struct {
	tasks.Task
	Due tasks.DueStatus `json:"due"`
}

type TaskList struct {
	Tasks     []TaskView `json:"tasks"`
	Total     int        `json:"total"`
	Completed int        `json:"completed"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WARN] encode response: %v", err)
	}
}

func workspaceFor(w http.ResponseWriter, r *http.Request, ws *Workspaces) (*Workspace, int64, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, 0, false
	}
	return ws.Get(r.Context(), uid), uid, true
}

func (ws *Workspaces) track(r *http.Request, uid int64, event string, props map[string]any) {
	env := analytics.FromRequest(r)
	env.UserID = uid
	if err := analytics.Log(r.Context(), ws.db, env, event, props, analytics.SourceEventKeyFromRequest(r)); err != nil {
		log.Printf("[WARN] analytics %s: %v", event, err)
	}
}

func ListTasksHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		q := r.URL.Query()
		sortKey, err := tasks.ParseSortKey(q.Get("sort"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		all := wsp.Store.Snapshot()
		view := tasks.Apply(all, tasks.Query{
			Category: q.Get("category"),
			Search:   q.Get("q"),
			Sort:     sortKey,
		})

		today := ws.Today()
		out := TaskList{Tasks: make([]TaskView, 0, len(view)), Total: len(all)}
		for _, t := range all {
			if t.Completed {
				out.Completed++
			}
		}
		for _, t := range view {
			out.Tasks = append(out.Tasks, TaskView{Task: t, Due: tasks.DueStatusOf(t, today)})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func CreateTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		var in taskInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		draft, err := in.draft()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		task := wsp.Store.Create(draft)
		ws.track(r, uid, analytics.EventTaskCreated, map[string]any{
			"category": task.Category,
			"priority": task.Priority,
			"has_date": !task.StartDate.IsZero() || !task.EndDate.IsZero(),
		})
		writeJSON(w, http.StatusCreated, task)
	}
}

func GetTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}
		task, found := wsp.Store.Get(r.PathValue("id"))
		if !found {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, TaskView{Task: task, Due: tasks.DueStatusOf(task, ws.Today())})
	}
}

func UpdateTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		var in taskInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		patch, err := in.patch()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id := r.PathValue("id")
		if !wsp.Store.Update(id, patch) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		task, _ := wsp.Store.Get(id)
		ws.track(r, uid, analytics.EventTaskUpdated, map[string]any{"task_id": id})
		writeJSON(w, http.StatusOK, task)
	}
}

func ToggleTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		id := r.PathValue("id")
		if !wsp.Store.ToggleCompletion(id) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		task, _ := wsp.Store.Get(id)
		event := analytics.EventTaskUncompleted
		if task.Completed {
			event = analytics.EventTaskCompleted
		}
		ws.track(r, uid, event, map[string]any{"task_id": id, "category": task.Category.Normalize()})
		writeJSON(w, http.StatusOK, task)
	}
}

func MoveTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		var body struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		d, err := tasks.ParseDate(body.Date)
		if err != nil || d.IsZero() {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		id := r.PathValue("id")
		if !wsp.Store.MoveToDate(id, d) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		task, _ := wsp.Store.Get(id)
		ws.track(r, uid, analytics.EventTaskMoved, map[string]any{"task_id": id, "date": d.String()})
		writeJSON(w, http.StatusOK, task)
	}
}

func DeleteTaskHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		id := r.PathValue("id")
		if !wsp.Store.Delete(id) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		ws.track(r, uid, analytics.EventTaskDeleted, map[string]any{"task_id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearCompletedHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		n := wsp.Store.ClearCompleted()
		if n > 0 {
			ws.track(r, uid, analytics.EventTasksCleared, map[string]any{"count": n})
		}
		writeJSON(w, http.StatusOK, map[string]any{"removed": n})
	}
}

func CalendarHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		idx := tasks.IndexByDate(wsp.Store.Snapshot())
		fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
		if fromStr == "" && toStr == "" {
			writeJSON(w, http.StatusOK, idx)
			return
		}

		from, err1 := tasks.ParseDate(fromStr)
		to, err2 := tasks.ParseDate(toStr)
		if err1 != nil || err2 != nil || from.IsZero() || to.IsZero() {
			http.Error(w, "from and to must both be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		if to.Before(from) || from.DaysUntil(to) > maxCalendarRange {
			http.Error(w, fmt.Sprintf("range must span 0 to %d days", maxCalendarRange), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, idx.Range(from, to))
	}
}

func CalendarDayHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		d, err := tasks.ParseDate(r.PathValue("date"))
		if err != nil || d.IsZero() {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day := tasks.IndexByDate(wsp.Store.Snapshot()).On(d)
		if day == nil {
			day = []tasks.Task{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"date":  d,
			"count": len(day),
			"tasks": day,
		})
	}
}

func StatsHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		ref := ws.Today()
		if s := r.URL.Query().Get("date"); s != "" {
			d, err := tasks.ParseDate(s)
			if err != nil || d.IsZero() {
				http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			ref = d
		}
		writeJSON(w, http.StatusOK, tasks.Compute(wsp.Store.Snapshot(), ref))
	}
}

func ExportHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		b, err := tasks.Export(wsp.Store.Snapshot())
		if err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, tasks.ExportFileName(ws.Today())))
		_, _ = w.Write(b)
	}
}

// ImportHandler validates an uploaded export. Nothing is appended unless
// the request carries confirm=true; without it the response only reports
// how many records would be added.
func ImportHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, uid, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}

		b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
		if err != nil {
			http.Error(w, "import file too large", http.StatusRequestEntityTooLarge)
			return
		}
		records, err := tasks.ParseImport(b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if !strings.EqualFold(r.URL.Query().Get("confirm"), "true") {
			writeJSON(w, http.StatusOK, map[string]any{
				"confirmed": false,
				"count":     len(records),
			})
			return
		}

		added := wsp.Store.Append(records)
		ws.track(r, uid, analytics.EventTasksImported, map[string]any{"count": len(added)})
		writeJSON(w, http.StatusCreated, map[string]any{
			"confirmed": true,
			"count":     len(added),
			"total":     wsp.Store.Len(),
		})
	}
}

func SyncStatusHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, wsp.Sync.Status())
	}
}

func SyncFlushHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}
		writeSyncResult(w, wsp.Sync.Flush(r.Context()), wsp.Sync.Status())
	}
}

// SyncPullHandler replaces the in-memory collection with the remote copy.
func SyncPullHandler(ws *Workspaces) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wsp, _, ok := workspaceFor(w, r, ws)
		if !ok {
			return
		}
		writeSyncResult(w, wsp.Sync.Pull(r.Context()), wsp.Sync.Status())
	}
}

func writeSyncResult(w http.ResponseWriter, err error, st storage.SyncState) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, st)
	case errors.Is(err, storage.ErrConflict):
		writeJSON(w, http.StatusConflict, st)
	default:
		writeJSON(w, http.StatusBadGateway, st)
	}
}
