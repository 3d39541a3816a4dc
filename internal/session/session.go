// Package session keeps the signed-in user and the API session cookie
// across CLI invocations.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/flowday/flowday/internal/apiclient"
	"github.com/flowday/flowday/internal/models"
)

// ErrNotAuthenticated is returned by commands that need a signed-in user.
var ErrNotAuthenticated = errors.New("not logged in")

// Cookie is the persisted form of an HTTP cookie.
type Cookie struct {
	Name    string `json:"name"`
	Value   string `json:"value"`
	Path    string `json:"path,omitempty"`
	Expires int64  `json:"expires,omitempty"`
}

// State is what a Store persists.
type State struct {
	User      models.User `json:"user"`
	Cookies   []Cookie    `json:"cookies,omitempty"`
	CreatedAt int64       `json:"created_at"`
}

// Authenticator signs in against the API and exposes its cookie jar.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Cookies() []*http.Cookie
	SetCookies(cookies []*http.Cookie)
}

// Session is the explicit authentication context handed to commands.
type Session struct {
	store  Store
	logger log.FieldLogger

	mu    sync.RWMutex
	state *State
}

// New creates a session over store. Call Init to read persisted state.
func New(store Store, logger log.FieldLogger) *Session {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Session{store: store, logger: logger}
}

// Init loads persisted state and seeds the client's jar with its cookies.
// A missing session is not an error.
func (s *Session) Init(client Authenticator) error {
	st, err := s.store.Load()
	if errors.Is(err, ErrNoSession) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	if client != nil {
		client.SetCookies(toHTTP(st.Cookies))
	}
	s.logger.WithField("user", st.User.ID).Debug("session.restored")
	return nil
}

// Login signs in and persists the user together with the session cookies.
func (s *Session) Login(ctx context.Context, client Authenticator, email, password string) (*models.User, error) {
	user, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	st := &State{
		User:      *user,
		Cookies:   fromHTTP(client.Cookies()),
		CreatedAt: time.Now().Unix(),
	}
	if err := s.store.Save(st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.logger.WithField("user", user.ID).Info("session.login")
	return user, nil
}

// Logout forgets the user locally.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.state = nil
	s.mu.Unlock()

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.Info("session.logout")
	return nil
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil
	}
	u := s.state.User
	return &u
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != nil
}

// HandleError logs the user out when err is an authentication failure.
// It returns err unchanged so callers can chain it.
func (s *Session) HandleError(err error) error {
	if err == nil || !errors.Is(err, apiclient.ErrUnauthorized) {
		return err
	}
	if !s.Authenticated() {
		return err
	}
	s.logger.WithError(err).Warn("session.expired")
	if lerr := s.Logout(); lerr != nil {
		s.logger.WithError(lerr).Warn("session.logout_failed")
	}
	return err
}

func fromHTTP(cookies []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		pc := Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		if !c.Expires.IsZero() {
			pc.Expires = c.Expires.Unix()
		}
		out = append(out, pc)
	}
	return out
}

func toHTTP(cookies []Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		hc := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		if hc.Path == "" {
			hc.Path = "/"
		}
		if c.Expires != 0 {
			hc.Expires = time.Unix(c.Expires, 0)
		}
		out = append(out, hc)
	}
	return out
}
