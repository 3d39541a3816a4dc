// Package tui provides the interactive terminal board for Flowday.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
	"github.com/flowday/flowday/internal/notify"
	"github.com/flowday/flowday/internal/session"
)

// DefaultTick re-renders often enough for the expired column to follow the clock.
const DefaultTick = 30 * time.Second

// Options wires the app to its collaborators. Board is required.
type Options struct {
	Board        *board.Board
	Session      *session.Session
	Auth         session.Authenticator
	Queue        *notify.Queue
	Logger       log.FieldLogger
	TickInterval time.Duration
}

// App is the main TUI application model.
type App struct {
	ctx     context.Context
	board   *board.Board
	pager   *board.Pager
	session *session.Session
	auth    session.Authenticator
	queue   *notify.Queue
	logger  log.FieldLogger
	tick    time.Duration

	cmdbar *CmdBar

	width, height int
	col, row      int // row -1 is the column header in kanban mode

	message    string
	messageErr bool
}

// New creates a new TUI application.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTick
	}
	return &App{
		ctx:     context.Background(),
		board:   opts.Board,
		pager:   board.NewPager(),
		session: opts.Session,
		auth:    opts.Auth,
		queue:   opts.Queue,
		logger:  opts.Logger,
		tick:    opts.TickInterval,
		cmdbar:  NewCmdBar(),
	}
}

// Run starts the TUI application.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.load(), a.listen(), a.tickCmd())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.cmdbar.Focused() {
			line, cmd := a.cmdbar.Update(msg)
			if line == "" {
				return a, cmd
			}
			return a, a.execute(line)
		}
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.cmdbar.SetWidth(msg.Width)

	case loadedMsg:
		if msg.err != nil {
			a.setError("Load failed", msg.err)
			if a.session != nil {
				a.session.HandleError(msg.err)
			}
		}
		a.clampCursor()

	case committedMsg:
		a.showResult(msg.result)
		a.clampCursor()

	case resultMsg:
		if msg.err != nil {
			a.setError(msg.text, msg.err)
		} else {
			a.setInfo(msg.text)
		}
		a.clampCursor()

	case loginMsg:
		if msg.err != nil {
			a.setError("Login failed", msg.err)
			return a, nil
		}
		a.setInfo("Signed in as " + msg.user.DisplayName())
		return a, a.load()

	case noticeMsg:
		a.message, a.messageErr = msg.notice.String(), msg.notice.Level == notify.LevelError
		return a, a.listen()

	case tickMsg:
		a.clampCursor()
		return a, a.tickCmd()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	_, carrying := a.board.Dragging()

	switch msg.String() {
	case "q":
		if !carrying {
			return tea.Quit
		}

	case ":":
		if carrying {
			return nil
		}
		a.message = ""
		return a.cmdbar.Focus()

	case "esc":
		if carrying {
			a.board.DragCancel()
			a.setInfo("Move cancelled")
		}

	case "up", "k":
		a.moveCursor(0, -1)
	case "down", "j":
		a.moveCursor(0, 1)
	case "left", "h":
		a.moveCursor(-1, 0)
	case "right", "l":
		a.moveCursor(1, 0)

	case " ", "space":
		if carrying {
			return a.drop()
		}
		return a.pickUp()

	case "enter":
		if carrying {
			return a.drop()
		}

	case "tab":
		if !carrying {
			a.pager.SetFilter(a.pager.Filter.Next())
			a.resetCursor()
		}

	case "v":
		if !carrying {
			a.pager.ToggleMode()
			a.resetCursor()
		}

	case "n":
		if v := a.view(); v.Mode == board.ModeList {
			a.pager.Next(v.Page.TotalPages)
			a.clampCursor()
		}
	case "p":
		if v := a.view(); v.Mode == board.ModeList {
			a.pager.Prev(v.Page.TotalPages)
			a.clampCursor()
		}

	case "x":
		if t, ok := a.selected(); ok && !carrying {
			return a.toggle(t.ID)
		}
	case "d":
		if t, ok := a.selected(); ok && !carrying {
			return a.remove(t.ID)
		}
	case "r":
		return a.load()
	}
	return nil
}

// --- Drag and drop ---

func (a *App) pickUp() tea.Cmd {
	t, ok := a.selected()
	if !ok {
		return nil
	}
	if err := a.board.DragStart(t.ID); err != nil {
		a.setError("Cannot pick up", err)
		return nil
	}
	a.board.DragOver(board.TaskTarget(t))
	a.setInfo(fmt.Sprintf("Carrying %q", t.Title))
	return nil
}

func (a *App) drop() tea.Cmd {
	target, ok := a.board.Hover()
	if !ok {
		if target, ok = a.cursorTarget(); !ok {
			a.board.DragCancel()
			a.setInfo("Move cancelled")
			return nil
		}
	}
	res, commit := a.board.Drop(&target)
	a.showResult(res)
	if commit == nil {
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		return committedMsg{result: commit.Run(ctx)}
	}
}

func (a *App) showResult(res board.Result) {
	switch res.Outcome {
	case board.OutcomeMove:
		if res.Err != nil {
			a.setError("Status not updated", res.Err)
			return
		}
		a.setInfo(fmt.Sprintf("Moved to %s", res.To))
	case board.OutcomeUnchanged:
		a.setInfo("Already " + string(res.To))
	case board.OutcomeExpiredNoop:
		a.setInfo("Expired is derived from the due date")
	case board.OutcomeCancelled:
		a.setInfo("Move cancelled")
	case board.OutcomeAbort:
		a.setError("Move aborted", res.Err)
	}
}

// cursorTarget is the drop target under the cursor.
func (a *App) cursorTarget() (board.DropTarget, bool) {
	if a.pager.Mode == board.ModeKanban && a.row < 0 {
		return board.ColumnTarget(board.BoardColumns[a.col]), true
	}
	t, ok := a.selected()
	if !ok {
		if a.pager.Mode == board.ModeKanban {
			return board.ColumnTarget(board.BoardColumns[a.col]), true
		}
		return board.DropTarget{}, false
	}
	return board.TaskTarget(t), true
}

// --- Cursor ---

func (a *App) view() board.View {
	return a.board.Project(a.pager)
}

func (a *App) rows(v board.View) int {
	if v.Mode == board.ModeKanban {
		return len(v.Buckets.Get(board.BoardColumns[a.col]))
	}
	return len(v.Page.Items)
}

func (a *App) selected() (models.Task, bool) {
	v := a.view()
	if a.row < 0 {
		return models.Task{}, false
	}
	if v.Mode == board.ModeKanban {
		tasks := v.Buckets.Get(board.BoardColumns[a.col])
		if a.row < len(tasks) {
			return tasks[a.row], true
		}
		return models.Task{}, false
	}
	if a.row < len(v.Page.Items) {
		return v.Page.Items[a.row], true
	}
	return models.Task{}, false
}

func (a *App) moveCursor(dc, dr int) {
	v := a.view()
	if v.Mode == board.ModeKanban {
		a.col = (a.col + dc + len(board.BoardColumns)) % len(board.BoardColumns)
		a.row += dr
	} else {
		a.row += dr
	}
	a.clampCursor()

	if _, carrying := a.board.Dragging(); carrying {
		if target, ok := a.cursorTarget(); ok {
			a.board.DragOver(target)
		}
	}
}

func (a *App) clampCursor() {
	v := a.view()
	minRow := 0
	if v.Mode == board.ModeKanban {
		minRow = -1
	}
	if n := a.rows(v); a.row >= n {
		a.row = n - 1
	}
	if a.row < minRow {
		a.row = minRow
	}
}

func (a *App) resetCursor() {
	a.col, a.row = 0, 0
	a.clampCursor()
}

// --- Commands ---

func (a *App) execute(line string) tea.Cmd {
	cmd, err := ParseCommand(line)
	if err != nil {
		a.setError("Command", err)
		return nil
	}

	switch cmd.Name {
	case "quit":
		return tea.Quit

	case "add":
		in := models.TaskInput{Title: cmd.Text()}
		ctx := a.ctx
		return func() tea.Msg {
			t, err := a.board.Create(ctx, in)
			if err != nil {
				return resultMsg{text: "Task not created", err: err}
			}
			return resultMsg{text: fmt.Sprintf("Created %q", t.Title)}
		}

	case "move":
		t, ok := a.selected()
		if !ok {
			a.setError("Move", board.ErrTaskNotFound)
			return nil
		}
		if err := a.board.DragStart(t.ID); err != nil {
			a.setError("Move", err)
			return nil
		}
		target := board.RawTarget(cmd.Arg(0))
		res, commit := a.board.Drop(&target)
		a.showResult(res)
		if commit == nil {
			return nil
		}
		ctx := a.ctx
		return func() tea.Msg { return committedMsg{result: commit.Run(ctx)} }

	case "done":
		if t, ok := a.selected(); ok {
			return a.toggle(t.ID)
		}
		a.setError("Done", board.ErrTaskNotFound)

	case "delete":
		if t, ok := a.selected(); ok {
			return a.remove(t.ID)
		}
		a.setError("Delete", board.ErrTaskNotFound)

	case "filter":
		f, err := board.ParseFilter(cmd.Arg(0))
		if err != nil {
			a.setError("Filter", err)
			return nil
		}
		a.pager.SetFilter(f)
		a.resetCursor()

	case "mode":
		m, err := board.ParseViewMode(cmd.Arg(0))
		if err != nil {
			a.setError("Mode", err)
			return nil
		}
		a.pager.SetMode(m)
		a.resetCursor()

	case "page":
		n, _ := strconv.Atoi(cmd.Arg(0))
		a.pager.SetPage(n, a.view().Page.TotalPages)
		a.clampCursor()

	case "reload":
		return a.load()

	case "login":
		return a.login(cmd.Arg(0), cmd.Arg(1))

	case "logout":
		if a.session == nil {
			a.setError("Logout", session.ErrNotAuthenticated)
			return nil
		}
		if err := a.session.Logout(); err != nil {
			a.setError("Logout", err)
			return nil
		}
		a.setInfo("Signed out")

	case "whoami":
		if a.session == nil || a.session.User() == nil {
			a.setInfo("Not signed in")
			return nil
		}
		u := a.session.User()
		a.setInfo(fmt.Sprintf("%s <%s>", u.DisplayName(), u.Email))
	}
	return nil
}

func (a *App) login(email, password string) tea.Cmd {
	if a.session == nil || a.auth == nil {
		a.setError("Login", errors.New("sessions are not configured"))
		return nil
	}
	ctx := a.ctx
	return func() tea.Msg {
		u, err := a.session.Login(ctx, a.auth, email, password)
		return loginMsg{user: u, err: err}
	}
}

func (a *App) toggle(id string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		t, err := a.board.Toggle(ctx, id)
		if err != nil {
			return resultMsg{text: "Status not updated", err: err}
		}
		return resultMsg{text: fmt.Sprintf("%q is now %s", t.Title, t.Status)}
	}
}

func (a *App) remove(id string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if err := a.board.Delete(ctx, id); err != nil {
			return resultMsg{text: "Task not deleted", err: err}
		}
		return resultMsg{text: "Task deleted"}
	}
}

func (a *App) load() tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		applied := a.board.Load(ctx)
		return loadedMsg{applied: applied, err: a.board.Store().LastError()}
	}
}

// listen waits for the next notice on the queue.
func (a *App) listen() tea.Cmd {
	if a.queue == nil {
		return nil
	}
	ch := a.queue.C()
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg{notice: n}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) setInfo(text string) {
	a.message, a.messageErr = text, false
}

func (a *App) setError(text string, err error) {
	if err != nil {
		text = text + ": " + err.Error()
	}
	a.message, a.messageErr = text, true
}

// View implements tea.Model
func (a *App) View() string {
	v := a.view()
	var b strings.Builder

	b.WriteString(a.renderHeader(v) + "\n")
	if a.width > 0 {
		b.WriteString(strings.Repeat("─", a.width) + "\n")
	}

	if v.Mode == board.ModeKanban {
		b.WriteString(a.renderKanban(v))
	} else {
		b.WriteString(a.renderList(v))
	}
	b.WriteString("\n")

	// Message bar
	if a.message != "" {
		style := infoStyle
		if a.messageErr {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(a.message))
	}
	b.WriteString("\n")

	if bar := a.cmdbar.View(a.width); bar != "" {
		b.WriteString(bar + "\n")
	}

	b.WriteString(a.renderStatus(v))
	return b.String()
}
