package stub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/flowday/flowday/internal/apiclient"
	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *Store) {
	t.Helper()
	st, err := NewStore(filepath.Join(t.TempDir(), "stub.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger, _ := test.NewNullLogger()
	srv := httptest.NewServer(NewServer(st, "", logger).Handler())
	t.Cleanup(srv.Close)
	return srv, st
}

func loggedInClient(t *testing.T, srv *httptest.Server, email string) *apiclient.Client {
	t.Helper()
	c := apiclient.New(srv.URL + "/api")
	if _, err := c.Login(context.Background(), email, "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return c
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.Status != "ok" || health.DB != "ok" || health.Version == "" {
		t.Errorf("Unexpected health %+v", health)
	}
}

func TestTasksRequireSession(t *testing.T) {
	srv, _ := newTestServer(t)
	c := apiclient.New(srv.URL + "/api")
	if _, err := c.ListTasks(context.Background()); !errors.Is(err, apiclient.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	c := apiclient.New(srv.URL + "/api")
	_, err := c.Login(context.Background(), "", "")
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %v", err)
	}
}

func TestTaskCRUD(t *testing.T) {
	srv, _ := newTestServer(t)
	c := loggedInClient(t, srv, "ada@example.test")
	ctx := context.Background()

	due := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	created, err := c.CreateTask(ctx, models.TaskInput{
		Title:    "Write report",
		Priority: models.PriorityHigh,
		Category: models.CategoryWork,
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if created.ID == "" || created.Status != models.StatusTodo || created.Category != models.CategoryWork {
		t.Errorf("Unexpected created task %+v", created)
	}

	updated, err := c.UpdateTask(ctx, created.ID, models.StatusPatch(models.StatusDone))
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.Status != models.StatusDone || updated.CompletedAt == nil {
		t.Errorf("Expected done with completedAt, got %+v", updated)
	}

	updated, err = c.UpdateTask(ctx, created.ID, models.TaskPatch{
		Status:       ptr(models.StatusInProgress),
		ClearDueDate: true,
	})
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if updated.CompletedAt != nil || updated.DueDate != nil || updated.Priority != models.PriorityHigh {
		t.Errorf("Expected cleared completedAt and dueDate, got %+v", updated)
	}

	tasks, err := c.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Status != models.StatusInProgress {
		t.Errorf("Unexpected tasks %+v", tasks)
	}

	if err := c.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := c.DeleteTask(ctx, created.ID); !apiclient.IsNotFound(err) {
		t.Errorf("Expected 404 on second delete, got %v", err)
	}
}

func TestUpdateRejectsInvalidEnums(t *testing.T) {
	srv, _ := newTestServer(t)
	c := loggedInClient(t, srv, "ada@example.test")
	created, err := c.CreateTask(context.Background(), models.TaskInput{Title: "T", Priority: models.PriorityLow})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	for _, body := range []string{`{"status":"EXPIRED"}`, `{"priority":"URGENT"}`, `{"category":"CHORES"}`, `{"title":"  "}`} {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/api/task/"+created.ID, strings.NewReader(body))
		for _, ck := range c.Cookies() {
			req.AddCookie(ck)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("Body %s: expected 400, got %d", body, resp.StatusCode)
		}
	}

	if _, err := c.UpdateTask(context.Background(), "missing", models.StatusPatch(models.StatusDone)); !apiclient.IsNotFound(err) {
		t.Errorf("Expected 404 for unknown id, got %v", err)
	}
}

func TestTasksScopedToUser(t *testing.T) {
	srv, _ := newTestServer(t)
	ada := loggedInClient(t, srv, "ada@example.test")
	bob := loggedInClient(t, srv, "bob@example.test")

	created, err := ada.CreateTask(context.Background(), models.TaskInput{Title: "Private"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	tasks, err := bob.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("Expected bob to see no tasks, got %d", len(tasks))
	}
	if err := bob.DeleteTask(context.Background(), created.ID); !apiclient.IsNotFound(err) {
		t.Errorf("Expected 404 deleting another user's task, got %v", err)
	}
}

func TestChat(t *testing.T) {
	srv, _ := newTestServer(t)
	c := loggedInClient(t, srv, "ada@example.test")
	ctx := context.Background()

	msg, err := c.Ask(ctx, "plan my day")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if msg.Response == nil || *msg.Response != AckResponse {
		t.Errorf("Expected canned response, got %+v", msg)
	}
	msgs, err := c.ListMessages(ctx)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("Expected 1 message, got %d (%v)", len(msgs), err)
	}
	if err := c.ClearMessages(ctx); err != nil {
		t.Fatalf("ClearMessages failed: %v", err)
	}
	if msgs, _ := c.ListMessages(ctx); len(msgs) != 0 {
		t.Errorf("Expected empty history, got %d", len(msgs))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	c := loggedInClient(t, srv, "ada@example.test")
	c.CreateTask(context.Background(), models.TaskInput{Title: "Counted"})

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	body := string(data)
	if !strings.Contains(body, `flowday_stub_task_mutations_total{action="create"} 1`) {
		t.Errorf("Expected create mutation counter, got:\n%s", body)
	}
	if !strings.Contains(body, `route="/api/task/create-task"`) {
		t.Errorf("Expected route pattern label, got:\n%s", body)
	}
}

// A drag onto the in-progress column reaches the backend and the reload
// returns the authoritative state.
func TestBoardAgainstStub(t *testing.T) {
	srv, _ := newTestServer(t)
	c := loggedInClient(t, srv, "ada@example.test")
	ctx := context.Background()

	logger, _ := test.NewNullLogger()
	b := board.New(c, board.WithLogger(logger))
	created, err := b.Create(ctx, models.TaskInput{Title: "Drag me"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := b.DragStart(created.ID); err != nil {
		t.Fatalf("DragStart failed: %v", err)
	}
	target := board.ColumnTarget(board.ColumnInProgress)
	res := b.DragEnd(ctx, &target)
	if res.Outcome != board.OutcomeMove || res.Err != nil {
		t.Fatalf("Unexpected drop result %+v", res)
	}

	got, ok := b.Store().Find(created.ID)
	if !ok || got.Status != models.StatusInProgress {
		t.Errorf("Expected reloaded inProgress, got %+v", got)
	}
	remote, _ := c.ListTasks(ctx)
	if len(remote) != 1 || remote[0].Status != models.StatusInProgress {
		t.Errorf("Expected backend to hold inProgress, got %+v", remote)
	}
}

func ptr[T any](v T) *T { return &v }
