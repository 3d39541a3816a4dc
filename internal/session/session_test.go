package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/flowday/flowday/internal/apiclient"
	"github.com/flowday/flowday/internal/models"
)

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if _, err := fs.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}

	st := &State{User: models.User{ID: "u1", Email: "a@b.c"}, Cookies: []Cookie{{Name: "flowday_session", Value: "s1"}}}
	if err := fs.Save(st); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	info, err := os.Stat(fs.Path())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.User.ID != "u1" || len(got.Cookies) != 1 || got.Cookies[0].Value != "s1" {
		t.Errorf("Unexpected state %+v", got)
	}

	if err := fs.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if err := fs.Clear(); err != nil {
		t.Errorf("Clear of missing file should succeed, got %v", err)
	}
	if _, err := fs.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession after clear, got %v", err)
	}
}

func newLoginServer(t *testing.T) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/login":
			http.SetCookie(w, &http.Cookie{Name: "flowday_session", Value: "tok", Path: "/"})
			w.Write([]byte(`{"id":"u1","email":"a@b.c","firstName":"Ada"}`))
		default:
			if ck, err := r.Cookie("flowday_session"); err != nil || ck.Value != "tok" {
				http.Error(w, "login required", http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL + "/api")
}

func TestLoginPersistsAndRestores(t *testing.T) {
	store := &MemoryStore{}
	client := newLoginServer(t)
	logger, _ := test.NewNullLogger()

	s := New(store, logger)
	user, err := s.Login(context.Background(), client, "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.DisplayName() != "Ada" || !s.Authenticated() {
		t.Errorf("Unexpected user %+v", user)
	}

	// A fresh process picks the cookie up again.
	fresh := apiclient.New(client.BaseURL())
	restored := New(store, logger)
	if err := restored.Init(fresh); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if restored.User() == nil || restored.User().ID != "u1" {
		t.Fatalf("Expected restored user u1, got %+v", restored.User())
	}
	if _, err := fresh.ListTasks(context.Background()); err != nil {
		t.Errorf("Expected restored cookie to authenticate, got %v", err)
	}
}

func TestHandleErrorLogsOutOnUnauthorized(t *testing.T) {
	store := &MemoryStore{}
	store.Save(&State{User: models.User{ID: "u1"}})
	logger, hook := test.NewNullLogger()

	s := New(store, logger)
	if err := s.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	other := errors.New("boom")
	if got := s.HandleError(other); got != other || !s.Authenticated() {
		t.Error("Non-auth errors must not log out")
	}

	unauthorized := &apiclient.Error{StatusCode: http.StatusUnauthorized}
	if got := s.HandleError(unauthorized); got != unauthorized {
		t.Errorf("Expected error returned unchanged, got %v", got)
	}
	if s.Authenticated() {
		t.Error("Expected logout after 401")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected store cleared, got %v", err)
	}
	if e := hook.LastEntry(); e == nil || e.Message != "session.logout" {
		t.Errorf("Expected session.logout log, got %+v", e)
	}
}

func TestInitWithoutSession(t *testing.T) {
	s := New(&MemoryStore{}, nil)
	if err := s.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if s.Authenticated() || s.User() != nil {
		t.Error("Expected anonymous session")
	}
}
