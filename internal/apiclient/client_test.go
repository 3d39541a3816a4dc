package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flowday/flowday/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func TestListTasksNormalizes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/task/get-tasks" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"a","title":"A","priority":"LOW","status":"PENDING","category":"WORK"},
			{"id":"b","title":"B","priority":"HIGH","status":"COMPLETED","category":null}
		]`))
	})

	tasks, err := c.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Status != models.StatusTodo || tasks[0].Priority != models.PriorityLow || tasks[0].Category != models.CategoryWork {
		t.Errorf("Task a not normalized: %+v", tasks[0])
	}
	if tasks[1].Status != models.StatusDone || tasks[1].Category != models.CategoryNone {
		t.Errorf("Task b not normalized: %+v", tasks[1])
	}
}

func TestUpdateTaskSendsBackendStatus(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/task/t-1" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("Invalid body %s: %v", data, err)
		}
		w.Write([]byte(`{"id":"t-1","title":"T","priority":"MEDIUM","status":"IN_PROGRESS"}`))
	})

	task, err := c.UpdateTask(context.Background(), "t-1", models.StatusPatch(models.StatusInProgress))
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if got["status"] != "IN_PROGRESS" || len(got) != 1 {
		t.Errorf("Expected body {status: IN_PROGRESS}, got %v", got)
	}
	if task == nil || task.Status != models.StatusInProgress {
		t.Errorf("Unexpected returned task %+v", task)
	}
}

func TestCreateTaskBody(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"n1","title":"New","priority":"HIGH","status":"PENDING","category":"HEALTH"}`))
	})

	task, err := c.CreateTask(context.Background(), models.TaskInput{
		Title:    "New",
		Priority: models.PriorityHigh,
		Category: models.CategoryHealth,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if got["priority"] != "HIGH" || got["category"] != "HEALTH" || got["title"] != "New" {
		t.Errorf("Unexpected create body %v", got)
	}
	if v, ok := got["dueDate"]; !ok || v != nil {
		t.Errorf("Expected dueDate null, got %v", got["dueDate"])
	}
	if task.ID != "n1" || task.Status != models.StatusTodo {
		t.Errorf("Unexpected task %+v", task)
	}
}

func TestErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/task/missing":
			http.Error(w, "task not found", http.StatusNotFound)
		default:
			http.Error(w, "login required", http.StatusUnauthorized)
		}
	})

	err := c.DeleteTask(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("404 must not match ErrUnauthorized")
	}

	_, err = c.ListTasks(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Body != "login required" {
		t.Errorf("Expected API error body, got %v", err)
	}
}

func TestLoginKeepsCookie(t *testing.T) {
	var sawCookie bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/login":
			http.SetCookie(w, &http.Cookie{Name: "flowday_session", Value: "s1", Path: "/"})
			w.Write([]byte(`{"id":"u1","email":"a@b.c"}`))
		case "/api/task/get-tasks":
			if ck, err := r.Cookie("flowday_session"); err == nil && ck.Value == "s1" {
				sawCookie = true
			}
			w.Write([]byte(`[]`))
		}
	})

	user, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("Expected user u1, got %+v", user)
	}
	if len(c.Cookies()) != 1 {
		t.Errorf("Expected 1 cookie in jar, got %d", len(c.Cookies()))
	}
	if _, err := c.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if !sawCookie {
		t.Error("Expected session cookie on follow-up request")
	}
}

func TestListMessages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"m1","message":"hi","response":null,"createdAt":"2026-01-01T10:00:00Z"}]`))
	})
	msgs, err := c.ListMessages(context.Background())
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Response != nil {
		t.Errorf("Unexpected messages %+v", msgs)
	}
}

func TestAskUnwrapsChat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/api/ai/ask" || body["message"] != "plan my day" {
			t.Errorf("Unexpected ask request %s %v", r.URL.Path, body)
		}
		w.Write([]byte(`{"chat":{"id":"m2","message":"plan my day","response":"ok","createdAt":"2026-01-01T10:00:00Z"}}`))
	})
	msg, err := c.Ask(context.Background(), "plan my day")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if msg.ID != "m2" || msg.Response == nil || *msg.Response != "ok" {
		t.Errorf("Unexpected chat %+v", msg)
	}
}
