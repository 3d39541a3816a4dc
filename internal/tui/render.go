package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
)

const minColumnWidth = 18

func (a *App) renderList(v board.View) string {
	if len(v.Page.Items) == 0 {
		return "\n  " + helpStyle.Render("No tasks here. Press : and type add <title> to create one.") + "\n"
	}

	now := a.board.Now()
	hover, hovering := a.board.Hover()
	lines := make([]string, 0, len(v.Page.Items)+2)
	for i, t := range v.Page.Items {
		col := board.ColumnOf(t, now)
		line := fmt.Sprintf("%s %-40s %-8s %-10s %s",
			columnBadge(col), truncate(t.Title, 40), priorityBadge(t.Priority),
			board.DueLabel(t, now), a.phaseLabel(t.ID))
		isHover := hovering && hover.Kind == board.KindTask && hover.ID == t.ID
		lines = append(lines, a.styleCard(t, i == a.row, isHover).Render(line))
	}

	lines = append(lines, "", a.renderPages(v.Page, v.Pages))
	return strings.Join(lines, "\n")
}

func (a *App) renderPages(p board.Page, pages []int) string {
	summary := fmt.Sprintf("%d-%d of %d", p.Start+1, p.End, p.Total)
	if !p.ShowControls() {
		return pageStyle.Render(summary)
	}
	parts := []string{pageStyle.Render(summary)}
	if p.HasPrev() {
		parts = append(parts, pageStyle.Render("‹ p"))
	}
	for _, n := range pages {
		switch {
		case n == board.Ellipsis:
			parts = append(parts, pageStyle.Render("…"))
		case n == p.Number:
			parts = append(parts, currentPageStyle.Render(strconv.Itoa(n)))
		default:
			parts = append(parts, pageStyle.Render(strconv.Itoa(n)))
		}
	}
	if p.HasNext() {
		parts = append(parts, pageStyle.Render("n ›"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) renderKanban(v board.View) string {
	width := minColumnWidth
	if a.width > 0 {
		if w := a.width/len(board.BoardColumns) - 4; w > width {
			width = w
		}
	}

	hover, hovering := a.board.Hover()
	cols := make([]string, 0, len(board.BoardColumns))
	for ci, c := range board.BoardColumns {
		tasks := v.Buckets.Get(c)

		header := fmt.Sprintf("%s %s (%d)", columnBadge(c), c.Title(), len(tasks))
		if ci == a.col && a.row < 0 {
			header = selectedStyle.Render(header)
		} else {
			header = columnHeaderStyle.Render(header)
		}

		lines := []string{header, ""}
		for ri, t := range tasks {
			isHover := hovering && hover.Kind == board.KindTask && hover.ID == t.ID
			label := truncate(t.Title, width-4)
			if p := a.phaseLabel(t.ID); p != "" {
				label += " " + p
			}
			lines = append(lines, a.styleCard(t, ci == a.col && ri == a.row, isHover).Render(label))
		}
		if len(tasks) == 0 {
			lines = append(lines, helpStyle.Render("empty"))
		}

		style := columnStyle
		if hovering && hover.Kind == board.KindColumn && hover.Column == c {
			style = columnHoverStyle
		}
		cols = append(cols, style.Width(width).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (a *App) styleCard(t models.Task, selected, hovered bool) lipgloss.Style {
	if carried, ok := a.board.Dragging(); ok && carried == t.ID {
		return carriedStyle
	}
	switch {
	case selected:
		return selectedStyle
	case hovered:
		return hoverStyle
	}
	return cardStyle
}

func (a *App) phaseLabel(id string) string {
	switch a.board.Phase(id) {
	case board.PhaseDragging:
		return helpStyle.Render("[carrying]")
	case board.PhaseResolving, board.PhaseCommitting:
		return helpStyle.Render("[saving]")
	}
	return ""
}

func (a *App) renderHeader(v board.View) string {
	header := titleStyle.Render("Flowday")
	header += "  " + helpStyle.Render(fmt.Sprintf("[%s] [%s]", v.Filter, v.Mode))

	user := helpStyle.Render("○ not signed in")
	if a.session != nil {
		if u := a.session.User(); u != nil {
			user = userStyle.Render("● " + u.DisplayName())
		}
	}
	header += "  " + user

	if a.board.Store().Loading() {
		header += "  " + helpStyle.Render("loading…")
	}
	return header
}

func (a *App) renderStatus(v board.View) string {
	var status string
	if id, ok := a.board.Dragging(); ok {
		title := id
		if t, found := a.board.Store().Find(id); found {
			title = t.Title
		}
		status = fmt.Sprintf(" Carrying %q | ←→↑↓:target | space/enter:drop | esc:cancel", truncate(title, 24))
	} else if v.Mode == board.ModeKanban {
		status = fmt.Sprintf(" Tasks: %d | ←→↑↓:nav | space:pick up | x:done | d:delete | tab:filter | v:list | r:reload | ::command | q:quit", len(v.Filtered))
	} else {
		status = fmt.Sprintf(" Tasks: %d | ↑↓:nav | n/p:page | space:pick up | x:done | d:delete | tab:filter | v:kanban | r:reload | ::command | q:quit", len(v.Filtered))
	}
	style := statusBarStyle
	if a.width > 0 {
		style = style.Width(a.width)
	}
	return style.Render(status)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
