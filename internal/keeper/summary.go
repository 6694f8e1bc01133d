package keeper

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/farmkeeper/pkg/types"
)

// Dashboard limits.
const (
	UpcomingWindow = 7 * 24 * time.Hour
	UpcomingLimit  = 5
	RecentLimit    = 5
)

// GeneralCropName labels tasks with no crop or whose crop no longer exists.
const GeneralCropName = "General"

// Summary is the dashboard view across all farms.
type Summary struct {
	TotalFarms      int              `json:"totalFarms" yaml:"totalFarms"`
	ActiveCrops     int              `json:"activeCrops" yaml:"activeCrops"`
	PendingTasks    int              `json:"pendingTasks" yaml:"pendingTasks"`
	OverdueTasks    int              `json:"overdueTasks" yaml:"overdueTasks"`
	MonthlyExpenses float64          `json:"monthlyExpenses" yaml:"monthlyExpenses"`
	UpcomingTasks   []UpcomingTask   `json:"upcomingTasks" yaml:"upcomingTasks"`
	RecentExpenses  []*types.Expense `json:"recentExpenses" yaml:"recentExpenses"`
}

// UpcomingTask is an open task due soon, with its crop name resolved.
type UpcomingTask struct {
	Task     *types.Task `json:"task" yaml:"task"`
	CropName string      `json:"cropName" yaml:"cropName"`
}

// Summary loads farms, crops, tasks, and expenses concurrently and computes
// the dashboard as of today. Only the calendar date of today is used.
func (k *Keeper) Summary(ctx context.Context, today time.Time) (*Summary, error) {
	var (
		farms    []*types.Farm
		crops    []*types.Crop
		tasks    []*types.Task
		expenses []*types.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { farms, err = k.Farms.GetAll(gctx); return err })
	g.Go(func() (err error) { crops, err = k.Crops.GetAll(gctx); return err })
	g.Go(func() (err error) { tasks, err = k.Tasks.GetAll(gctx); return err })
	g.Go(func() (err error) { expenses, err = k.Expenses.GetAll(gctx); return err })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	day := truncateDay(today)
	s := &Summary{
		TotalFarms:     len(farms),
		UpcomingTasks:  []UpcomingTask{},
		RecentExpenses: []*types.Expense{},
	}

	cropNames := make(map[int]string, len(crops))
	for _, c := range crops {
		cropNames[c.ID] = c.Name
		if c.Status == types.CropStatusActive {
			s.ActiveCrops++
		}
	}

	type dated struct {
		task *types.Task
		due  time.Time
	}
	var upcoming []dated
	horizon := day.Add(UpcomingWindow)
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		s.PendingTasks++
		due, err := types.ParseDate(t.DueDate)
		if err != nil {
			continue
		}
		if due.Before(day) {
			s.OverdueTasks++
		} else if !due.After(horizon) {
			upcoming = append(upcoming, dated{t, due})
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].due.Before(upcoming[j].due) })
	for i, u := range upcoming {
		if i == UpcomingLimit {
			break
		}
		s.UpcomingTasks = append(s.UpcomingTasks, UpcomingTask{Task: u.task, CropName: cropName(cropNames, u.task.CropID)})
	}

	type spent struct {
		expense *types.Expense
		date    time.Time
		ok      bool
	}
	all := make([]spent, 0, len(expenses))
	for _, e := range expenses {
		d, err := types.ParseDate(e.Date)
		all = append(all, spent{e, d, err == nil})
		if err == nil && d.Year() == day.Year() && d.Month() == day.Month() {
			s.MonthlyExpenses += e.Amount
		}
	}
	// Newest first; undated expenses sort last.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].ok != all[j].ok {
			return all[i].ok
		}
		return all[i].date.After(all[j].date)
	})
	for i, e := range all {
		if i == RecentLimit {
			break
		}
		s.RecentExpenses = append(s.RecentExpenses, e.expense)
	}
	return s, nil
}

func cropName(names map[int]string, cropID *int) string {
	if cropID == nil {
		return GeneralCropName
	}
	if name, ok := names[*cropID]; ok && name != "" {
		return name
	}
	return GeneralCropName
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
