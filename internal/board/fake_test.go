package board

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/flowday/flowday/internal/models"
)

var errBackend = errors.New("backend unavailable")

type updateCall struct {
	ID    string
	Patch models.TaskPatch
}

// fakeAPI is an in-memory backend recording every call.
type fakeAPI struct {
	mu        sync.Mutex
	tasks     []models.Task
	listErr   error
	updateErr error
	createErr error
	deleteErr error
	lists     int
	updates   []updateCall
	creates   []models.TaskInput
	deletes   []string
	nextID    int
}

func newFakeAPI(tasks ...models.Task) *fakeAPI {
	return &fakeAPI{tasks: tasks}
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return cloneTasks(f.tasks), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, in models.TaskInput) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	t := models.Task{
		ID:       "new-" + strconv.Itoa(f.nextID),
		Title:    in.Title,
		Priority: in.Priority,
		Status:   models.StatusTodo,
		DueDate:  in.DueDate,
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{ID: id, Patch: patch})
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			if patch.Status != nil {
				f.tasks[i].Status = *patch.Status
			}
			if patch.Title != nil {
				f.tasks[i].Title = *patch.Title
			}
			t := f.tasks[i]
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeAPI) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func (f *fakeAPI) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

func (f *fakeAPI) setTasks(tasks ...models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

// fixedNow is a Wednesday noon, far from any day boundary.
var fixedNow = time.Date(2026, time.March, 11, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := fixedNow.Add(d)
	return &t
}

func task(id string, status models.Status, due *time.Time) models.Task {
	return models.Task{
		ID:       id,
		Title:    "Task " + id,
		Priority: models.PriorityMedium,
		Status:   status,
		DueDate:  due,
	}
}
