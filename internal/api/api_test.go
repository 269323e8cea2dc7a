package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"focusflow/internal/analytics"
	"focusflow/internal/auth"
	"focusflow/internal/db"
	"focusflow/internal/storage"
	"focusflow/internal/tasks"
)

var testSecret = []byte("api-test-secret")

type testServer struct {
	t     *testing.T
	db    *sql.DB
	ws    *Workspaces
	mux   *http.ServeMux
	token string
	uid   int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	conn, err := db.Connect(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(conn, db.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	ws := NewWorkspaces(conn, time.Hour)
	ws.now = func() time.Time { return time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC) }
	mux := http.NewServeMux()
	Routes(mux, conn, ws, testSecret)

	uid, err := auth.CreateUser(context.Background(), conn, "kim@example.com", "password1")
	if err != nil {
		t.Fatal(err)
	}
	token, err := auth.GenerateToken(testSecret, uid)
	if err != nil {
		t.Fatal(err)
	}
	return &testServer{t: t, db: conn, ws: ws, mux: mux, token: token, uid: uid}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return v
}

func (s *testServer) create(body string) tasks.Task {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/tasks", body)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}
	return decode[tasks.Task](s.t, rec)
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected health 200, got %d", rec.Code)
	}
}

func TestCreateListFilterSort(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"Write report","category":"work","priority":"low","endDate":"2024-05-14"}`)
	s.create(`{"title":"call mom","category":"personal","priority":"high","notes":"Sunday"}`)
	s.create(`{"title":"  ","category":"wishlist","endDate":"2024-05-16"}`)

	list := decode[TaskList](t, s.do(http.MethodGet, "/tasks", ""))
	if list.Total != 3 || len(list.Tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %+v", list)
	}
	// date sort: dated ascending, dateless last
	if list.Tasks[0].Title != "Write report" || list.Tasks[2].Title != "call mom" {
		t.Errorf("Unexpected date order: %s, %s, %s", list.Tasks[0].Title, list.Tasks[1].Title, list.Tasks[2].Title)
	}
	if list.Tasks[0].Due != tasks.DueOverdue || list.Tasks[1].Due != tasks.DueSoon {
		t.Errorf("Expected overdue then due-soon, got %s, %s", list.Tasks[0].Due, list.Tasks[1].Due)
	}
	if list.Tasks[1].Title != "Untitled task" {
		t.Errorf("Expected placeholder title, got %q", list.Tasks[1].Title)
	}

	list = decode[TaskList](t, s.do(http.MethodGet, "/tasks?category=personal&q=SUNDAY", ""))
	if len(list.Tasks) != 1 || list.Tasks[0].Title != "call mom" {
		t.Errorf("Expected only call mom, got %+v", list.Tasks)
	}

	list = decode[TaskList](t, s.do(http.MethodGet, "/tasks?sort=priority", ""))
	if list.Tasks[0].Priority != tasks.PriorityHigh {
		t.Errorf("Expected high priority first, got %s", list.Tasks[0].Priority)
	}

	if rec := s.do(http.MethodGet, "/tasks?sort=color", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown sort, got %d", rec.Code)
	}
}

func TestUpdateToggleMoveDelete(t *testing.T) {
	s := newTestServer(t)
	task := s.create(`{"title":"Plan trip","category":"personal"}`)
	path := "/tasks/" + task.ID

	rec := s.do(http.MethodPatch, path, `{"title":"Plan summer trip","priority":"high"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	updated := decode[tasks.Task](t, rec)
	if updated.Title != "Plan summer trip" || updated.Priority != tasks.PriorityHigh || updated.Category != tasks.CategoryPersonal {
		t.Errorf("Expected merged update, got %+v", updated)
	}

	toggled := decode[tasks.Task](t, s.do(http.MethodPost, path+"/toggle", ""))
	if !toggled.Completed {
		t.Error("Expected task completed after toggle")
	}

	moved := decode[tasks.Task](t, s.do(http.MethodPost, path+"/move", `{"date":"2024-06-01"}`))
	if moved.StartDate.String() != "2024-06-01" {
		t.Errorf("Expected start date 2024-06-01, got %s", moved.StartDate)
	}
	if rec := s.do(http.MethodPost, path+"/move", `{"date":"June 1st"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad date, got %d", rec.Code)
	}

	if rec := s.do(http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}
	for _, rec := range []*httptest.ResponseRecorder{
		s.do(http.MethodDelete, path, ""),
		s.do(http.MethodPatch, path, `{"title":"x"}`),
		s.do(http.MethodPost, path+"/toggle", ""),
		s.do(http.MethodGet, path, ""),
	} {
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for missing task, got %d", rec.Code)
		}
	}

	n, err := analytics.Count(context.Background(), s.db, s.uid, analytics.EventTaskCompleted)
	if err != nil || n != 1 {
		t.Errorf("Expected 1 task_completed event, got %d (%v)", n, err)
	}
}

func TestRejectsInvalidTaskInput(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"title":"a","category":"bogus"}`,
		`{"title":"a","priority":"urgent"}`,
		`{"title":"a","startDate":"2024-13-45"}`,
		`{"title":"a","endDate":"next week"}`,
	} {
		if rec := s.do(http.MethodPost, "/tasks", body); rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for create %s, got %d: %s", body, rec.Code, rec.Body)
		}
	}
	if list := decode[TaskList](t, s.do(http.MethodGet, "/tasks", "")); list.Total != 0 {
		t.Fatalf("Expected rejected creates to store nothing, got %d tasks", list.Total)
	}

	task := s.create(`{"title":"Review","category":"","priority":"","startDate":"2024-05-20"}`)
	if task.Category != tasks.CategoryWork || task.Priority != tasks.PriorityMedium {
		t.Errorf("Expected blank enums to default, got %s/%s", task.Category, task.Priority)
	}
	path := "/tasks/" + task.ID

	for _, body := range []string{
		`{"category":"nope"}`,
		`{"category":""}`,
		`{"priority":"HIGH"}`,
		`{"endDate":"garbage"}`,
	} {
		if rec := s.do(http.MethodPatch, path, body); rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for update %s, got %d: %s", body, rec.Code, rec.Body)
		}
	}
	got := decode[TaskView](t, s.do(http.MethodGet, path, ""))
	if got.Category != tasks.CategoryWork || got.StartDate.String() != "2024-05-20" {
		t.Errorf("Expected rejected updates to leave the task alone, got %+v", got.Task)
	}

	cleared := decode[tasks.Task](t, s.do(http.MethodPatch, path, `{"startDate":""}`))
	if !cleared.StartDate.IsZero() {
		t.Errorf("Expected empty startDate to clear the date, got %s", cleared.StartDate)
	}
}

func TestClearCompleted(t *testing.T) {
	s := newTestServer(t)
	a := s.create(`{"title":"a"}`)
	s.create(`{"title":"b"}`)
	s.do(http.MethodPost, "/tasks/"+a.ID+"/toggle", "")

	got := decode[map[string]int](t, s.do(http.MethodPost, "/tasks/clear-completed", ""))
	if got["removed"] != 1 {
		t.Errorf("Expected 1 removed, got %d", got["removed"])
	}
	list := decode[TaskList](t, s.do(http.MethodGet, "/tasks", ""))
	if list.Total != 1 || list.Tasks[0].Title != "b" {
		t.Errorf("Expected only b left, got %+v", list.Tasks)
	}
}

func TestCalendarAndStats(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"today","startDate":"2024-05-15"}`)
	s.create(`{"title":"also today","endDate":"2024-05-15"}`)
	s.create(`{"title":"next week","startDate":"2024-05-22"}`)
	s.create(`{"title":"no date"}`)

	day := decode[struct {
		Date  string       `json:"date"`
		Count int          `json:"count"`
		Tasks []tasks.Task `json:"tasks"`
	}](t, s.do(http.MethodGet, "/calendar/2024-05-15", ""))
	if day.Count != 2 || day.Tasks[0].Title != "today" {
		t.Errorf("Expected 2 tasks on 05-15 in order, got %+v", day)
	}

	idx := decode[map[string][]tasks.Task](t, s.do(http.MethodGet, "/calendar?from=2024-05-16&to=2024-05-31", ""))
	if len(idx) != 1 || len(idx["2024-05-22"]) != 1 {
		t.Errorf("Expected only 05-22 in range, got %v", idx)
	}
	if rec := s.do(http.MethodGet, "/calendar?from=2024-05-31&to=2024-05-01", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for inverted range, got %d", rec.Code)
	}

	st := decode[tasks.Stats](t, s.do(http.MethodGet, "/stats", ""))
	if st.ReferenceDate.String() != "2024-05-15" {
		t.Errorf("Expected server today as reference, got %s", st.ReferenceDate)
	}
	if st.Total != 4 || st.PendingCount != 4 || len(st.DailySeries) != 7 {
		t.Errorf("Unexpected stats %+v", st)
	}
	if len(st.Upcoming) != 3 {
		t.Errorf("Expected 3 upcoming (today twice and 05-22), got %d", len(st.Upcoming))
	}

	st = decode[tasks.Stats](t, s.do(http.MethodGet, "/stats?date=2024-05-22", ""))
	if st.DailySeries[6].Total != 1 {
		t.Errorf("Expected 1 task on the 05-22 slot, got %d", st.DailySeries[6].Total)
	}
}

func TestExportImport(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"one","category":"work"}`)
	s.create(`{"title":"two","category":"wishlist"}`)

	rec := s.do(http.MethodGet, "/export", "")
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "focusflow-tasks-2024-05-15.json") {
		t.Errorf("Expected dated file name, got %q", cd)
	}
	exported := rec.Body.String()

	preview := decode[map[string]any](t, s.do(http.MethodPost, "/import", exported))
	if preview["confirmed"] != false || preview["count"] != float64(2) {
		t.Errorf("Expected unconfirmed preview of 2, got %v", preview)
	}
	if list := decode[TaskList](t, s.do(http.MethodGet, "/tasks", "")); list.Total != 2 {
		t.Errorf("Expected preview to add nothing, got %d", list.Total)
	}

	rec = s.do(http.MethodPost, "/import?confirm=true", exported)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body)
	}
	list := decode[TaskList](t, s.do(http.MethodGet, "/tasks?sort=title", ""))
	if list.Total != 4 {
		t.Fatalf("Expected collection doubled to 4, got %d", list.Total)
	}
	seen := map[string]bool{}
	for _, v := range list.Tasks {
		if seen[v.ID] {
			t.Errorf("Expected unique ids after import, %s repeated", v.ID)
		}
		seen[v.ID] = true
	}

	rec = s.do(http.MethodPost, "/import?confirm=true", `{"title":"not an array"}`)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "JSON array") {
		t.Errorf("Expected array error, got %d %s", rec.Code, rec.Body)
	}
	if list := decode[TaskList](t, s.do(http.MethodGet, "/tasks", "")); list.Total != 4 {
		t.Errorf("Expected rejected import to add nothing, got %d", list.Total)
	}
}

func TestSyncFlushAndRehydrate(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"persist me","endDate":"2024-05-20"}`)

	st := decode[storage.SyncState](t, s.do(http.MethodGet, "/sync/status", ""))
	if st.Status != storage.StatusPending {
		t.Errorf("Expected pending before flush, got %s", st.Status)
	}
	rec := s.do(http.MethodPost, "/sync/flush", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 flush, got %d", rec.Code)
	}
	if st := decode[storage.SyncState](t, rec); st.Status != storage.StatusSynced {
		t.Errorf("Expected synced, got %s", st.Status)
	}

	// a fresh process sees the remote copy
	fresh := NewWorkspaces(s.db, time.Hour)
	w := fresh.Get(context.Background(), s.uid)
	snap := w.Store.Snapshot()
	if len(snap) != 1 || snap[0].Title != "persist me" || snap[0].EndDate.String() != "2024-05-20" {
		t.Errorf("Expected hydrated task, got %+v", snap)
	}
}

func TestDeleteAccountDropsWorkspace(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"gone soon"}`)
	s.do(http.MethodPost, "/sync/flush", "")

	if rec := s.do(http.MethodDelete, "/auth/account", ""); rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM remote_tasks WHERE user_id = $1`, s.uid).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected remote tasks removed, got %d", n)
	}
	s.ws.mu.Lock()
	_, still := s.ws.byUser[s.uid]
	s.ws.mu.Unlock()
	if still {
		t.Error("Expected workspace dropped")
	}

	if rec := s.do(http.MethodGet, "/tasks", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for the deleted account's token, got %d", rec.Code)
	}
	s.ws.mu.Lock()
	_, recreated := s.ws.byUser[s.uid]
	s.ws.mu.Unlock()
	if recreated {
		t.Error("Expected no workspace recreated for a deleted account")
	}
}

func TestHydrateIgnoresCancelledRequest(t *testing.T) {
	s := newTestServer(t)
	s.create(`{"title":"survives"}`)
	s.do(http.MethodPost, "/sync/flush", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fresh := NewWorkspaces(s.db, time.Hour)
	w := fresh.Get(ctx, s.uid)

	if snap := w.Store.Snapshot(); len(snap) != 1 || snap[0].Title != "survives" {
		t.Errorf("Expected hydrated task despite cancelled context, got %+v", snap)
	}
	if got := w.Sync.Status().Status; got != storage.StatusSynced {
		t.Errorf("Expected synced, got %s", got)
	}
}
