package board

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/flowday/flowday/internal/models"
)

func manyTasks(n int) []models.Task {
	out := make([]models.Task, n)
	for i := range out {
		out[i] = task(strconv.Itoa(i), models.StatusTodo, nil)
	}
	return out
}

func TestPaginateEmpty(t *testing.T) {
	p := Paginate(nil, 1, PageSize)
	if p.TotalPages != 0 || len(p.Items) != 0 {
		t.Errorf("Expected no pages, got %+v", p)
	}
	if p.ShowControls() {
		t.Error("Expected no page controls for empty list")
	}
	if got := PageNumbers(p.Number, p.TotalPages); len(got) != 0 {
		t.Errorf("Expected empty page list, got %v", got)
	}
}

func TestPaginateLastPage(t *testing.T) {
	tasks := manyTasks(25)
	p := Paginate(tasks, 3, PageSize)
	if p.TotalPages != 3 {
		t.Fatalf("Expected 3 pages, got %d", p.TotalPages)
	}
	if len(p.Items) != 5 || p.Start != 20 || p.End != 25 {
		t.Errorf("Expected items 20..24, got start=%d end=%d len=%d", p.Start, p.End, len(p.Items))
	}
	if p.Items[0].ID != "20" || p.Items[4].ID != "24" {
		t.Errorf("Unexpected page contents %s..%s", p.Items[0].ID, p.Items[4].ID)
	}
	if !p.ShowControls() || !p.HasPrev() || p.HasNext() {
		t.Errorf("Unexpected controls state %+v", p)
	}
}

func TestPaginateClamps(t *testing.T) {
	tasks := manyTasks(12)
	if p := Paginate(tasks, 9, PageSize); p.Number != 2 {
		t.Errorf("Expected clamp to page 2, got %d", p.Number)
	}
	if p := Paginate(tasks, -1, PageSize); p.Number != 1 || len(p.Items) != 10 {
		t.Errorf("Expected clamp to page 1, got %+v", p)
	}
	if p := Paginate(manyTasks(10), 1, PageSize); p.ShowControls() {
		t.Error("Expected no controls for exactly one full page")
	}
}

func TestPageNumbers(t *testing.T) {
	tests := []struct {
		current, total int
		want           []int
	}{
		{1, 5, []int{1, 2, 3, 4, 5}},
		{3, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{2, 10, []int{1, 2, 3, 4, 5, Ellipsis, 10}},
		{4, 10, []int{1, 2, 3, 4, 5, Ellipsis, 10}},
		{5, 10, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{7, 10, []int{1, Ellipsis, 6, 7, 8, 9, 10}},
		{10, 10, []int{1, Ellipsis, 6, 7, 8, 9, 10}},
	}
	for _, tt := range tests {
		if got := PageNumbers(tt.current, tt.total); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("PageNumbers(%d, %d) = %v, want %v", tt.current, tt.total, got, tt.want)
		}
	}
}

func TestPagerResets(t *testing.T) {
	p := NewPager()
	p.SetPage(3, 5)
	p.SetFilter(FilterAll)
	if p.Page() != 3 {
		t.Errorf("Same filter must not reset, got page %d", p.Page())
	}
	p.SetFilter(FilterToday)
	if p.Page() != 1 {
		t.Errorf("Expected reset on filter change, got %d", p.Page())
	}
	p.SetPage(2, 5)
	p.ToggleMode()
	if p.Page() != 1 || p.Mode != ModeKanban {
		t.Errorf("Expected reset on mode change, got page %d mode %s", p.Page(), p.Mode)
	}
	p.Next(2)
	p.Next(2)
	if p.Page() != 2 {
		t.Errorf("Expected Next to clamp at 2, got %d", p.Page())
	}
}

func TestProject(t *testing.T) {
	tasks := append(manyTasks(11), task("done", models.StatusDone, nil))
	p := NewPager()
	p.SetFilter(FilterCompleted)

	v := Project(tasks, p, fixedNow)
	if len(v.Filtered) != 1 || len(v.Buckets.Done) != 1 || v.Page.ShowControls() {
		t.Errorf("Unexpected projected view %+v", v)
	}

	p.SetFilter(FilterAll)
	p.SetPage(2, 2)
	v = Project(tasks, p, fixedNow)
	if v.Page.Number != 2 || len(v.Page.Items) != 2 || !reflect.DeepEqual(v.Pages, []int{1, 2}) {
		t.Errorf("Unexpected second page %+v", v.Page)
	}
}
