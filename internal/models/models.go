// Package models defines the core domain types for Flowday.
package models

import (
	"strings"
	"time"
)

// Status is the stored progress state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Statuses lists every writable status in board order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the writable statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ParseStatus parses the internal spelling of a status.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.TrimSpace(v))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Priority is the importance of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority parses the internal spelling of a priority.
func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

// Category groups tasks by life area. The zero value means uncategorized.
type Category string

const (
	CategoryNone     Category = ""
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategoryOther    Category = "other"
)

// Valid reports whether c is a known category or empty.
func (c Category) Valid() bool {
	switch c {
	case CategoryNone, CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning, CategoryOther:
		return true
	}
	return false
}

// ParseCategory parses the internal spelling of a category.
func ParseCategory(v string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(v)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Task is a unit of personal work as held by the client.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	Category    Category   `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Validate checks the invariants every stored task must hold.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// Clone returns a deep copy so callers cannot alias the time pointers.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return t
}

// TaskInput carries the fields of a task to be created.
type TaskInput struct {
	Title       string
	Description string
	Priority    Priority
	Category    Category
	DueDate     *time.Time
}

// Validate trims the title and fills defaults before checking enums.
func (in *TaskInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" {
		return ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !in.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
// ClearDueDate sends an explicit null for the due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Priority     *Priority
	Status       *Status
	Category     *Category
	DueDate      *time.Time
	ClearDueDate bool
}

// Empty reports whether the patch would change nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Status == nil && p.Category == nil && p.DueDate == nil && !p.ClearDueDate
}

// Validate checks every field the patch sets.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	if p.Category != nil && !p.Category.Valid() {
		return ErrInvalidCategory
	}
	return nil
}

// StatusPatch builds a patch that only moves a task.
func StatusPatch(s Status) TaskPatch {
	return TaskPatch{Status: &s}
}

// User is the signed-in account as returned by the login endpoint.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns the best human label for the user.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

// ChatMessage is one question/answer exchange with the assistant.
// Response is nil until the assistant has replied.
type ChatMessage struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}
