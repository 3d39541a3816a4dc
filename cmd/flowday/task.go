package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/board"
	"github.com/flowday/flowday/internal/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update task fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskUpdate,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done [task-id]",
	Short: "Toggle a task between done and todo",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [task-id] [target]",
	Short: "Move a task onto a column or another task",
	Long: `Moves a task the way a drag and drop on the board does. The target is
a column (todo, inProgress, done, expired) or the id of another task, in which
case the task takes that task's status.`,
	Args: cobra.ExactArgs(2),
	RunE: runTaskMove,
}

var (
	taskTitle    string
	taskDesc     string
	taskPriority string
	taskCategory string
	taskDue      string
	taskStatus   string
	taskClearDue bool
	listFilter   string
	listPage     int
	listJSON     bool
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskUpdateCmd, taskDeleteCmd, taskDoneCmd, taskMoveCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (low, medium, high)")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "", "Category (work, personal, health, learning, other)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date (YYYY-MM-DD or RFC 3339)")
	taskAddCmd.MarkFlagRequired("title")

	taskListCmd.Flags().StringVar(&listFilter, "filter", "all", "Filter (all, today, upcoming, completed)")
	taskListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	taskListCmd.Flags().BoolVar(&listJSON, "json", false, "Print the page as JSON")

	taskUpdateCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskUpdateCmd.Flags().StringVar(&taskDesc, "desc", "", "New description")
	taskUpdateCmd.Flags().StringVar(&taskPriority, "priority", "", "New priority")
	taskUpdateCmd.Flags().StringVar(&taskCategory, "category", "", "New category")
	taskUpdateCmd.Flags().StringVar(&taskStatus, "status", "", "New status (todo, inProgress, done)")
	taskUpdateCmd.Flags().StringVar(&taskDue, "due", "", "New due date")
	taskUpdateCmd.Flags().BoolVar(&taskClearDue, "clear-due", false, "Remove the due date")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	in := models.TaskInput{Title: taskTitle, Description: taskDesc}
	var err error
	if in.Priority, err = models.ParsePriority(taskPriority); err != nil {
		return err
	}
	if in.Category, err = models.ParseCategory(taskCategory); err != nil {
		return err
	}
	if in.DueDate, err = parseDue(taskDue); err != nil {
		return err
	}

	client, _, err := connect()
	if err != nil {
		return err
	}
	b := board.New(client, board.WithLogger(logger), board.WithNotifier(notifier()))
	task, err := b.Create(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Created task: %s\n", task.ID)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	filter, err := board.ParseFilter(listFilter)
	if err != nil {
		return err
	}
	client, s, err := connect()
	if err != nil {
		return err
	}
	b, err := loadBoard(cmd.Context(), client, s, notifier())
	if err != nil {
		return err
	}

	pager := board.NewPager()
	pager.SetFilter(filter)
	pager.SetPage(listPage, b.Project(pager).Page.TotalPages)
	v := b.Project(pager)

	if listJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v.Page.Items)
	}

	if v.Page.Total == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	now := b.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOLUMN\tPRIORITY\tDUE")
	for _, t := range v.Page.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", truncateID(t.ID), truncate(t.Title, 40),
			board.ColumnOf(t, now).Title(), t.Priority, board.DueLabel(t, now))
	}
	w.Flush()
	if v.Page.ShowControls() {
		fmt.Printf("\nPage %d of %d (%d tasks)\n", v.Page.Number, v.Page.TotalPages, v.Page.Total)
	}
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	b, err := loadBoard(cmd.Context(), client, s, notifier())
	if err != nil {
		return err
	}
	t, err := findTask(b, args[0])
	if err != nil {
		return err
	}

	now := b.Now()
	fmt.Printf("ID:          %s\n", t.ID)
	fmt.Printf("Title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Printf("Description: %s\n", t.Description)
	}
	fmt.Printf("Status:      %s\n", t.Status)
	fmt.Printf("Column:      %s\n", board.ColumnOf(t, now).Title())
	fmt.Printf("Priority:    %s\n", t.Priority)
	if t.Category != models.CategoryNone {
		fmt.Printf("Category:    %s\n", t.Category)
	}
	if t.DueDate != nil {
		fmt.Printf("Due:         %s (%s)\n", board.DueLabel(t, now), t.DueDate.Format(time.RFC3339))
	}
	if t.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", t.CompletedAt.Format(time.RFC3339))
	}
	fmt.Printf("Created:     %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:     %s\n", t.UpdatedAt.Format(time.RFC3339))
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	var patch models.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("title") {
		patch.Title = &taskTitle
	}
	if flags.Changed("desc") {
		patch.Description = &taskDesc
	}
	if flags.Changed("priority") {
		p, err := models.ParsePriority(taskPriority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if flags.Changed("category") {
		c, err := models.ParseCategory(taskCategory)
		if err != nil {
			return err
		}
		patch.Category = &c
	}
	if flags.Changed("status") {
		st, err := models.ParseStatus(taskStatus)
		if err != nil {
			return err
		}
		patch.Status = &st
	}
	if flags.Changed("due") {
		due, err := parseDue(taskDue)
		if err != nil {
			return err
		}
		patch.DueDate = due
	}
	patch.ClearDueDate = taskClearDue

	client, _, err := connect()
	if err != nil {
		return err
	}
	b := board.New(client, board.WithLogger(logger), board.WithNotifier(notifier()))
	t, err := b.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s\n", t.ID)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	client, _, err := connect()
	if err != nil {
		return err
	}
	b := board.New(client, board.WithLogger(logger), board.WithNotifier(notifier()))
	if err := b.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	b, err := loadBoard(cmd.Context(), client, s, notifier())
	if err != nil {
		return err
	}
	t, err := findTask(b, args[0])
	if err != nil {
		return err
	}
	updated, err := b.Toggle(cmd.Context(), t.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s\n", truncateID(updated.ID), updated.Status)
	return nil
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	b, err := loadBoard(cmd.Context(), client, s, notifier())
	if err != nil {
		return err
	}
	t, err := findTask(b, args[0])
	if err != nil {
		return err
	}

	if err := b.DragStart(t.ID); err != nil {
		return err
	}
	target := board.RawTarget(args[1])
	if _, isColumn := board.ParseColumn(args[1]); !isColumn {
		if other, err := findTask(b, args[1]); err == nil {
			target = board.TaskTarget(other)
		}
	}
	res := b.DragEnd(cmd.Context(), &target)

	switch res.Outcome {
	case board.OutcomeMove:
		if res.Err != nil {
			return res.Err
		}
		fmt.Printf("Moved %s from %s to %s\n", truncateID(t.ID), res.From, res.To)
	case board.OutcomeUnchanged:
		fmt.Printf("Task %s is already %s\n", truncateID(t.ID), res.To)
	case board.OutcomeExpiredNoop:
		fmt.Println("Expired is derived from the due date; nothing changed")
	default:
		return fmt.Errorf("move %s: %w", args[1], res.Err)
	}
	return nil
}

// --- Helpers ---

// findTask resolves a full id or a unique id prefix as printed by list.
func findTask(b *board.Board, ref string) (models.Task, error) {
	if t, ok := b.Store().Find(ref); ok {
		return t, nil
	}
	var match []models.Task
	for _, t := range b.Store().Snapshot() {
		if strings.HasPrefix(t.ID, ref) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 1:
		return match[0], nil
	case 0:
		return models.Task{}, fmt.Errorf("task %s: %w", ref, board.ErrTaskNotFound)
	}
	return models.Task{}, fmt.Errorf("task id prefix %q is ambiguous (%d matches)", ref, len(match))
}

// parseDue accepts a calendar date in local time or an RFC 3339 timestamp.
func parseDue(v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", v, time.Local); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC 3339", v)
	}
	return &t, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
