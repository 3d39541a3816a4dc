// Package stub is a local stand-in for the Flowday REST backend, used for
// development and end-to-end tests of the client.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flowday/flowday/internal/models"
)

// AckResponse is the canned assistant reply. The stub does no generation.
const AckResponse = "Noted. I have added this to your planning notes."

// Service holds the stub business logic on top of Store.
type Service struct {
	store   *Store
	metrics *Metrics
}

// NewService creates a stub service.
func NewService(s *Store, m *Metrics) *Service {
	return &Service{store: s, metrics: m}
}

// --- Auth ---

// Login accepts any non-empty credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	user, err := s.store.UpsertUser(ctx, email)
	if err != nil {
		return nil, "", err
	}
	token, err := s.store.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a session token to a user id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	return s.store.SessionUser(ctx, token)
}

// --- Tasks ---

func (s *Service) ListTasks(ctx context.Context, userID string) ([]models.BackendTask, error) {
	return s.store.ListTasks(ctx, userID)
}

// CreateTask validates body and stores a new PENDING task.
func (s *Service) CreateTask(ctx context.Context, userID string, body models.CreateBody) (*models.BackendTask, error) {
	title := strings.TrimSpace(body.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	priority := models.EncodePriority(models.PriorityMedium)
	if body.Priority != "" {
		p, err := backendPriority(body.Priority)
		if err != nil {
			return nil, err
		}
		priority = p
	}
	category, err := backendCategory(body.Category)
	if err != nil {
		return nil, err
	}

	bt := &models.BackendTask{
		UserID:      userID,
		Title:       title,
		Description: trimmed(body.Description),
		Priority:    priority,
		Status:      models.BackendPending,
		Category:    category,
		DueDate:     body.DueDate,
	}
	if err := s.store.CreateTask(ctx, bt); err != nil {
		return nil, err
	}
	s.metrics.TaskMutation("create")
	return bt, nil
}

// UpdateTask applies a partial update. Absent fields are untouched; a null
// dueDate, description or category clears it. Moving to COMPLETED stamps
// completedAt and moving away clears it.
func (s *Service) UpdateTask(ctx context.Context, userID, id string, fields map[string]json.RawMessage) (*models.BackendTask, error) {
	bt, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	for key, raw := range fields {
		isNull := string(raw) == "null"
		switch key {
		case "title":
			var v string
			if err := json.Unmarshal(raw, &v); err != nil || strings.TrimSpace(v) == "" {
				return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
			}
			bt.Title = strings.TrimSpace(v)
		case "description":
			var v *string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: description", ErrInvalidInput)
			}
			bt.Description = trimmed(v)
		case "priority":
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: priority", ErrInvalidInput)
			}
			p, err := backendPriority(v)
			if err != nil {
				return nil, err
			}
			bt.Priority = p
		case "status":
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: status", ErrInvalidInput)
			}
			if _, ok := models.LookupBackendStatus(v); !ok {
				return nil, fmt.Errorf("%w: status %q", ErrInvalidInput, v)
			}
			if v != bt.Status {
				bt.CompletedAt = nil
				if v == models.BackendCompleted {
					now := time.Now().UTC()
					bt.CompletedAt = &now
				}
			}
			bt.Status = v
		case "category":
			var v *string
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: category", ErrInvalidInput)
			}
			c, err := backendCategory(v)
			if err != nil {
				return nil, err
			}
			bt.Category = c
		case "dueDate":
			if isNull {
				bt.DueDate = nil
				continue
			}
			var v time.Time
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, fmt.Errorf("%w: dueDate must be RFC 3339", ErrInvalidInput)
			}
			bt.DueDate = &v
		}
	}

	if err := s.store.SaveTask(ctx, bt); err != nil {
		return nil, err
	}
	s.metrics.TaskMutation("update")
	return bt, nil
}

func (s *Service) DeleteTask(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	s.metrics.TaskMutation("delete")
	return nil
}

// --- Chat ---

func (s *Service) ListMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	return s.store.ListMessages(ctx, userID)
}

// Ask stores the question with the canned acknowledgement.
func (s *Service) Ask(ctx context.Context, userID, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	resp := AckResponse
	return s.store.AddMessage(ctx, userID, message, &resp)
}

func (s *Service) ClearMessages(ctx context.Context, userID string) error {
	return s.store.ClearMessages(ctx, userID)
}

func backendPriority(v string) (string, error) {
	p := models.Priority(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority %q", ErrInvalidInput, v)
	}
	return models.EncodePriority(p), nil
}

// backendCategory maps nil or empty to no category.
func backendCategory(v *string) (*string, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	c := models.Category(strings.ToLower(strings.TrimSpace(*v)))
	if !c.Valid() {
		return nil, fmt.Errorf("%w: category %q", ErrInvalidInput, *v)
	}
	enc := models.EncodeCategory(c)
	return &enc, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
