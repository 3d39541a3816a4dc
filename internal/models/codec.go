package models

import (
	"strings"
	"time"
)

// Backend enum spellings.
const (
	BackendPending    = "PENDING"
	BackendInProgress = "IN_PROGRESS"
	BackendCompleted  = "COMPLETED"
)

var statusToBackend = map[Status]string{
	StatusTodo:       BackendPending,
	StatusInProgress: BackendInProgress,
	StatusDone:       BackendCompleted,
}

var backendToStatus = map[string]Status{
	BackendPending:    StatusTodo,
	BackendInProgress: StatusInProgress,
	BackendCompleted:  StatusDone,
}

// EncodeStatus returns the backend spelling of s, or "" for an invalid status.
func EncodeStatus(s Status) string {
	return statusToBackend[s]
}

// DecodeStatus maps a backend status to the internal one.
// Unknown values fall back to todo, as the server may add states we do not render.
func DecodeStatus(v string) Status {
	if s, ok := backendToStatus[v]; ok {
		return s
	}
	return StatusTodo
}

// LookupBackendStatus is DecodeStatus without the fallback.
func LookupBackendStatus(v string) (Status, bool) {
	s, ok := backendToStatus[v]
	return s, ok
}

// EncodePriority returns the backend spelling of p.
func EncodePriority(p Priority) string {
	if !p.Valid() {
		return ""
	}
	return strings.ToUpper(string(p))
}

// DecodePriority maps a backend priority to the internal one, defaulting to medium.
func DecodePriority(v string) Priority {
	p := Priority(strings.ToLower(v))
	if !p.Valid() {
		return PriorityMedium
	}
	return p
}

// EncodeCategory returns the backend spelling of c. Empty stays empty.
func EncodeCategory(c Category) string {
	return strings.ToUpper(string(c))
}

// DecodeCategory maps a backend category to the internal one; unknown values become empty.
func DecodeCategory(v string) Category {
	c := Category(strings.ToLower(v))
	if !c.Valid() {
		return CategoryNone
	}
	return c
}

// BackendTask is a task record as it travels over the wire.
type BackendTask struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId,omitempty"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Normalize converts a wire record into the internal representation.
func (b BackendTask) Normalize() Task {
	t := Task{
		ID:          b.ID,
		Title:       b.Title,
		Priority:    DecodePriority(b.Priority),
		Status:      DecodeStatus(b.Status),
		DueDate:     b.DueDate,
		CompletedAt: b.CompletedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Description != nil {
		t.Description = *b.Description
	}
	if b.Category != nil {
		t.Category = DecodeCategory(*b.Category)
	}
	return t
}

// FromTask converts an internal task into its wire record.
func FromTask(t Task) BackendTask {
	b := BackendTask{
		ID:          t.ID,
		Title:       t.Title,
		Priority:    EncodePriority(t.Priority),
		Status:      EncodeStatus(t.Status),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Description != "" {
		d := t.Description
		b.Description = &d
	}
	if t.Category != CategoryNone {
		c := EncodeCategory(t.Category)
		b.Category = &c
	}
	return b
}

// CreateBody is the request body of the create endpoint.
type CreateBody struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	Category    *string    `json:"category"`
	DueDate     *time.Time `json:"dueDate"`
}

// EncodeInput builds the create request body for in.
func EncodeInput(in TaskInput) CreateBody {
	body := CreateBody{
		Title:    in.Title,
		Priority: EncodePriority(in.Priority),
		DueDate:  in.DueDate,
	}
	if in.Description != "" {
		d := in.Description
		body.Description = &d
	}
	if in.Category != CategoryNone {
		c := EncodeCategory(in.Category)
		body.Category = &c
	}
	return body
}

// EncodePatch builds the update request body. Only fields set on p are present;
// a cleared due date is sent as null.
func EncodePatch(p TaskPatch) map[string]any {
	body := make(map[string]any)
	if p.Status != nil {
		body["status"] = EncodeStatus(*p.Status)
	}
	if p.Title != nil {
		body["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		body["description"] = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		body["priority"] = EncodePriority(*p.Priority)
	}
	if p.Category != nil {
		body["category"] = EncodeCategory(*p.Category)
	}
	if p.DueDate != nil {
		body["dueDate"] = p.DueDate.UTC().Format(time.RFC3339)
	} else if p.ClearDueDate {
		body["dueDate"] = nil
	}
	return body
}
