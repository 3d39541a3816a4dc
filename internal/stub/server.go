package stub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/flowday/flowday/internal/models"
)

// SessionCookie carries the session token.
const SessionCookie = "flowday_session"

// Version is reported by the health endpoint.
const Version = "0.1.0"

type ctxKey int

const userKey ctxKey = iota

// Server is the stub HTTP API.
type Server struct {
	service *Service
	store   *Store
	metrics *Metrics
	logger  log.FieldLogger
	addr    string
	server  *http.Server
}

// NewServer creates a stub server listening on addr.
func NewServer(store *Store, addr string, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}
	m := NewMetrics()
	return &Server{
		service: NewService(store, m),
		store:   store,
		metrics: m,
		logger:  logger,
		addr:    addr,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(s.requestLogger)
	r.Use(s.metrics.Middleware)

	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/user/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/task/get-tasks", s.listTasks)
			r.Post("/task/create-task", s.createTask)
			r.Put("/task/{id}", s.updateTask)
			r.Delete("/task/{id}", s.deleteTask)

			r.Get("/ai/response", s.listMessages)
			r.Post("/ai/ask", s.ask)
			r.Delete("/ai/messages", s.clearMessages)
		})
	})
	return r
}

// Start serves until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.WithField("addr", s.addr).Info("stub.listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// --- Middleware ---

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.WithFields(log.Fields{
			"req_id":      chimw.GetReqID(r.Context()),
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("stub.request")
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if ck, err := r.Cookie(SessionCookie); err == nil {
			token = ck.Value
		}
		userID, err := s.service.Authenticate(r.Context(), token)
		if err != nil {
			s.writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func userFrom(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

// --- Handlers ---

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status  string `json:"status"`
	DB      string `json:"db"`
	Version string `json:"version"`
	Time    string `json:"time"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		DB:      "ok",
		Version: Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.DB = err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid json"})
		return
	}
	user, token, err := s.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.service.ListTasks(r.Context(), userFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var body models.CreateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid json"})
		return
	}
	task, err := s.service.CreateTask(r.Context(), userFrom(r), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid json"})
		return
	}
	task, err := s.service.UpdateTask(r.Context(), userFrom(r), chi.URLParam(r, "id"), fields)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteTask(r.Context(), userFrom(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.service.ListMessages(r.Context(), userFrom(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Chat *models.ChatMessage `json:"chat"`
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "invalid json"})
		return
	}
	msg, err := s.service.Ask(r.Context(), userFrom(r), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, askResponse{Chat: msg})
}

func (s *Server) clearMessages(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearMessages(r.Context(), userFrom(r)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

type errResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		status = http.StatusUnauthorized
	default:
		s.logger.WithError(err).Error("stub.internal_error")
	}
	writeJSON(w, status, errResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
