package board

import (
	"math"
	"strings"
	"time"

	"github.com/flowday/flowday/internal/models"
)

// Filter narrows the collection before it is bucketed or paginated.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterCompleted Filter = "completed"
)

// Filters lists every filter in cycle order.
var Filters = []Filter{FilterAll, FilterToday, FilterUpcoming, FilterCompleted}

// ParseFilter parses a filter name. An empty name means all.
func ParseFilter(v string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(v)))
	if f == "" {
		return FilterAll, nil
	}
	for _, known := range Filters {
		if f == known {
			return f, nil
		}
	}
	return "", ErrUnknownFilter
}

// Next returns the filter after f in cycle order.
func (f Filter) Next() Filter {
	for i, known := range Filters {
		if known == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Match reports whether t passes the filter at now.
func (f Filter) Match(t models.Task, now time.Time) bool {
	switch f {
	case FilterToday:
		return t.DueDate != nil && sameDay(*t.DueDate, now)
	case FilterUpcoming:
		return t.DueDate != nil && t.DueDate.After(startOfDay(now)) && t.Status != models.StatusDone
	case FilterCompleted:
		return t.Status == models.StatusDone
	default:
		return true
	}
}

// FilterTasks returns the tasks passing f, in collection order.
func FilterTasks(tasks []models.Task, f Filter, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t, now) {
			out = append(out, t)
		}
	}
	return out
}

// Column is a board bucket. Three columns mirror a status; expired is derived.
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "inProgress"
	ColumnExpired    Column = "expired"
	ColumnDone       Column = "done"
)

// BoardColumns lists the columns in display order.
var BoardColumns = []Column{ColumnTodo, ColumnInProgress, ColumnExpired, ColumnDone}

// ParseColumn reports whether id names a column.
func ParseColumn(id string) (Column, bool) {
	for _, c := range BoardColumns {
		if string(c) == id {
			return c, true
		}
	}
	return "", false
}

// Status returns the status a drop on c writes. Expired has none.
func (c Column) Status() (models.Status, bool) {
	switch c {
	case ColumnTodo:
		return models.StatusTodo, true
	case ColumnInProgress:
		return models.StatusInProgress, true
	case ColumnDone:
		return models.StatusDone, true
	}
	return "", false
}

// Title is the column header label.
func (c Column) Title() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnExpired:
		return "Expired"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// IsExpired reports whether t is overdue and not done at now.
func IsExpired(t models.Task, now time.Time) bool {
	return t.Status != models.StatusDone && t.DueDate != nil && t.DueDate.Before(now)
}

// IsOverdue is IsExpired under the name the list view uses.
func IsOverdue(t models.Task, now time.Time) bool {
	return IsExpired(t, now)
}

// ColumnOf assigns t to exactly one column at now.
func ColumnOf(t models.Task, now time.Time) Column {
	switch {
	case t.Status == models.StatusDone:
		return ColumnDone
	case IsExpired(t, now):
		return ColumnExpired
	case t.Status == models.StatusInProgress:
		return ColumnInProgress
	default:
		return ColumnTodo
	}
}

// Buckets holds the four disjoint columns.
type Buckets struct {
	Todo       []models.Task
	InProgress []models.Task
	Expired    []models.Task
	Done       []models.Task
}

// Partition buckets tasks by ColumnOf, keeping collection order inside each column.
func Partition(tasks []models.Task, now time.Time) Buckets {
	var b Buckets
	for _, t := range tasks {
		switch ColumnOf(t, now) {
		case ColumnTodo:
			b.Todo = append(b.Todo, t)
		case ColumnInProgress:
			b.InProgress = append(b.InProgress, t)
		case ColumnExpired:
			b.Expired = append(b.Expired, t)
		case ColumnDone:
			b.Done = append(b.Done, t)
		}
	}
	return b
}

// Get returns the tasks in column c.
func (b Buckets) Get(c Column) []models.Task {
	switch c {
	case ColumnTodo:
		return b.Todo
	case ColumnInProgress:
		return b.InProgress
	case ColumnExpired:
		return b.Expired
	case ColumnDone:
		return b.Done
	}
	return nil
}

// Len is the total across all columns.
func (b Buckets) Len() int {
	return len(b.Todo) + len(b.InProgress) + len(b.Expired) + len(b.Done)
}

// Today summarizes the tasks that belong to the current day.
type Today struct {
	Tasks          []models.Task
	Pending        []models.Task
	Completed      []models.Task
	CompletionRate int
}

// DashboardToday selects tasks due today, counting tasks without a due date
// as today's.
func DashboardToday(tasks []models.Task, now time.Time) Today {
	var d Today
	for _, t := range tasks {
		if t.DueDate != nil && !sameDay(*t.DueDate, now) {
			continue
		}
		d.Tasks = append(d.Tasks, t)
		if t.Status == models.StatusDone {
			d.Completed = append(d.Completed, t)
		} else {
			d.Pending = append(d.Pending, t)
		}
	}
	if len(d.Tasks) > 0 {
		d.CompletionRate = int(math.Round(float64(len(d.Completed)) / float64(len(d.Tasks)) * 100))
	}
	return d
}

// DueLabel formats the due date relative to now.
func DueLabel(t models.Task, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	due := t.DueDate.In(now.Location())
	switch {
	case sameDay(due, now):
		return "Today"
	case sameDay(due, now.AddDate(0, 0, 1)):
		return "Tomorrow"
	case due.Year() != now.Year():
		return due.Format("Jan 2, 2006")
	default:
		return due.Format("Jan 2")
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay compares calendar days in b's location.
func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
