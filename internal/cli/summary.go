package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/farmkeeper/internal/keeper"
	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

func newSummaryCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard across all farms",
		Long: `Show farm, crop, and task counts, this month's expenses, tasks due in
the next seven days, and the most recent expenses.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			today := c.Today()
			if date != "" {
				if today, err = types.ParseDate(date); err != nil {
					return usageErrorf("--date: %v", err)
				}
			}
			s, err := c.Summary(cmd.Context(), today)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch a.outputFormat() {
			case formatJSON:
				return writeJSON(out, s)
			case formatYAML:
				return writeYAML(out, s)
			default:
				return renderSummary(out, s)
			}
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "compute the dashboard as of this date (YYYY-MM-DD)")
	return cmd
}

func renderSummary(w io.Writer, s *keeper.Summary) error {
	totals := &table{headers: []string{"Metric", "Value"}}
	totals.add("Farms", strconv.Itoa(s.TotalFarms))
	totals.add("Active crops", strconv.Itoa(s.ActiveCrops))
	totals.add("Pending tasks", strconv.Itoa(s.PendingTasks))
	totals.add("Overdue tasks", strconv.Itoa(s.OverdueTasks))
	totals.add("Expenses this month", fmt.Sprintf("%.2f", s.MonthlyExpenses))
	if err := totals.render(w); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nUpcoming tasks")
	upcoming := &table{headers: []string{"Id", "Title", "Crop", "Due", "Priority"}}
	for _, u := range s.UpcomingTasks {
		upcoming.add(strconv.Itoa(u.Task.ID), u.Task.Title, u.CropName, u.Task.DueDate, u.Task.Priority)
	}
	if err := upcoming.render(w); err != nil {
		return err
	}

	fmt.Fprintln(w, "\nRecent expenses")
	recent := &table{headers: []string{"Id", "Date", "Category", "Amount", "Description"}}
	for _, e := range s.RecentExpenses {
		recent.add(strconv.Itoa(e.ID), e.Date, e.Category, fmt.Sprintf("%.2f", e.Amount), e.Description)
	}
	return recent.render(w)
}
