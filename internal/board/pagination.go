package board

import (
	"strings"
	"time"

	"github.com/flowday/flowday/internal/models"
)

// PageSize is the number of tasks per list page.
const PageSize = 10

// Page is one slice of a paginated list. Start and End are zero based
// indexes into the full list, End exclusive.
type Page struct {
	Items      []models.Task
	Number     int
	TotalPages int
	Total      int
	Size       int
	Start      int
	End        int
}

// Paginate slices tasks into pages of size, clamping page into range.
// With no tasks there are zero pages and Number stays 1.
func Paginate(tasks []models.Task, page, size int) Page {
	if size < 1 {
		size = PageSize
	}
	total := len(tasks)
	totalPages := (total + size - 1) / size

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	p := Page{
		Number:     page,
		TotalPages: totalPages,
		Total:      total,
		Size:       size,
	}
	if totalPages == 0 {
		p.Items = []models.Task{}
		return p
	}

	p.Start = (page - 1) * size
	p.End = p.Start + size
	if p.End > total {
		p.End = total
	}
	p.Items = tasks[p.Start:p.End]
	return p
}

// ShowControls reports whether the pager should be rendered.
func (p Page) ShowControls() bool {
	return p.Total > p.Size
}

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Ellipsis marks a gap in the result of PageNumbers.
const Ellipsis = 0

// PageNumbers returns the page buttons to show around current. Gaps are
// reported as Ellipsis.
func PageNumbers(current, total int) []int {
	if total <= 0 {
		return []int{}
	}
	if total <= 7 {
		out := make([]int, total)
		for i := range out {
			out[i] = i + 1
		}
		return out
	}
	switch {
	case current <= 4:
		return []int{1, 2, 3, 4, 5, Ellipsis, total}
	case current >= total-3:
		return []int{1, Ellipsis, total - 4, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}

// ViewMode selects how the board is rendered.
type ViewMode string

const (
	ModeList   ViewMode = "list"
	ModeKanban ViewMode = "kanban"
)

// ParseViewMode parses a view mode name.
func ParseViewMode(v string) (ViewMode, error) {
	switch m := ViewMode(strings.ToLower(strings.TrimSpace(v))); m {
	case ModeList, ModeKanban:
		return m, nil
	case "":
		return ModeList, nil
	}
	return "", ErrUnknownViewMode
}

// Pager tracks the filter, view mode and current page of a view.
// Changing the filter or the mode resets to page 1.
type Pager struct {
	Filter Filter
	Mode   ViewMode
	page   int
}

// NewPager starts on page 1 of all tasks in list mode.
func NewPager() *Pager {
	return &Pager{Filter: FilterAll, Mode: ModeList, page: 1}
}

func (p *Pager) Page() int {
	if p.page < 1 {
		return 1
	}
	return p.page
}

func (p *Pager) SetFilter(f Filter) {
	if f != p.Filter {
		p.Filter = f
		p.page = 1
	}
}

func (p *Pager) SetMode(m ViewMode) {
	if m != p.Mode {
		p.Mode = m
		p.page = 1
	}
}

// ToggleMode flips between list and kanban.
func (p *Pager) ToggleMode() {
	if p.Mode == ModeKanban {
		p.SetMode(ModeList)
		return
	}
	p.SetMode(ModeKanban)
}

// SetPage jumps to n, clamped to [1, totalPages].
func (p *Pager) SetPage(n, totalPages int) {
	if n > totalPages {
		n = totalPages
	}
	if n < 1 {
		n = 1
	}
	p.page = n
}

func (p *Pager) Next(totalPages int) { p.SetPage(p.Page()+1, totalPages) }

func (p *Pager) Prev(totalPages int) { p.SetPage(p.Page()-1, totalPages) }

// View is everything a renderer needs for one frame.
type View struct {
	Filter   Filter
	Mode     ViewMode
	Filtered []models.Task
	Buckets  Buckets
	Page     Page
	Pages    []int
}

// Project derives a view from the collection. It never mutates tasks.
func Project(tasks []models.Task, pager *Pager, now time.Time) View {
	if pager == nil {
		pager = NewPager()
	}
	filtered := FilterTasks(tasks, pager.Filter, now)
	page := Paginate(filtered, pager.Page(), PageSize)
	return View{
		Filter:   pager.Filter,
		Mode:     pager.Mode,
		Filtered: filtered,
		Buckets:  Partition(filtered, now),
		Page:     page,
		Pages:    PageNumbers(page.Number, page.TotalPages),
	}
}
