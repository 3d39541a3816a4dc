package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/flowday/flowday/internal/board"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Print the kanban columns",
	RunE:  runBoard,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show what is due today",
	RunE:  runDashboard,
}

var boardFilter string

func init() {
	boardCmd.Flags().StringVar(&boardFilter, "filter", "all", "Filter (all, today, upcoming, completed)")
}

func runBoard(cmd *cobra.Command, args []string) error {
	filter, err := board.ParseFilter(boardFilter)
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
	pager.SetMode(board.ModeKanban)
	v := b.Project(pager)
	now := b.Now()

	for _, c := range board.BoardColumns {
		tasks := v.Buckets.Get(c)
		fmt.Printf("== %s (%d) ==\n", c.Title(), len(tasks))
		for _, t := range tasks {
			fmt.Printf("  %s  %-40s %-6s %s\n", truncateID(t.ID), truncate(t.Title, 40), t.Priority, board.DueLabel(t, now))
		}
		fmt.Println()
	}
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	client, s, err := connect()
	if err != nil {
		return err
	}
	b, err := loadBoard(cmd.Context(), client, s, notifier())
	if err != nil {
		return err
	}

	now := b.Now()
	today := board.DashboardToday(b.Store().Snapshot(), now)
	if u := s.User(); u != nil {
		fmt.Printf("Hello, %s\n", u.DisplayName())
	}
	fmt.Printf("Today, %s\n", now.Format("Monday, Jan 2"))
	fmt.Printf("Due today: %d | Pending: %d | Completed: %d | Completion: %d%%\n\n",
		len(today.Tasks), len(today.Pending), len(today.Completed), today.CompletionRate)

	if len(today.Tasks) == 0 {
		fmt.Println("Nothing due today")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCOLUMN\tPRIORITY")
	for _, t := range today.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncateID(t.ID), truncate(t.Title, 40), board.ColumnOf(t, now).Title(), t.Priority)
	}
	return w.Flush()
}
