package services

import (
	"context"
	"fmt"
	"time"

	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

// Period names an analytics window.
type Period string

const (
	PeriodToday      Period = "Today"
	PeriodLast3Days  Period = "Last3Days"
	PeriodLast7Days  Period = "Last7Days"
	PeriodLast15Days Period = "Last15Days"
	PeriodLastMonth  Period = "LastMonth"
	PeriodThisMonth  Period = "ThisMonth"
	PeriodAllTime    Period = "AllTime"
)

var ErrInvalidPeriod = apierrors.BadRequest("Invalid analytics filter.")

const day = 24 * time.Hour

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Windows returns the current window of period and the window it is
// compared against, relative to now.
func Windows(period Period, now time.Time) (current, previous Window, err error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	rolling := func(days int) (Window, Window) {
		span := time.Duration(days) * day
		start := now.Add(-span)
		return Window{start, now}, Window{start.Add(-span), start}
	}

	switch period {
	case PeriodToday:
		current = Window{startOfDay, startOfDay.Add(day)}
		previous = Window{startOfDay.Add(-day), startOfDay}
	case PeriodLast3Days:
		current, previous = rolling(3)
	case PeriodLast7Days:
		current, previous = rolling(7)
	case PeriodLast15Days:
		current, previous = rolling(15)
	case PeriodLastMonth:
		lastMonth := startOfMonth.AddDate(0, -1, 0)
		current = Window{lastMonth, startOfMonth}
		previous = Window{lastMonth.AddDate(0, -1, 0), lastMonth}
	case PeriodThisMonth:
		current = Window{startOfMonth, startOfMonth.AddDate(0, 1, 0)}
		previous = Window{startOfMonth.AddDate(0, -1, 0), startOfMonth}
	case PeriodAllTime:
		epoch := time.Unix(0, 0).In(now.Location())
		current = Window{epoch, now}
		previous = Window{epoch, epoch}
	default:
		return Window{}, Window{}, ErrInvalidPeriod
	}
	return current, previous, nil
}

// Counters are the task counts of one window.
type Counters struct {
	TotalTasksCreated int64 `json:"totalTasksCreated"`
	OpenTasks         int64 `json:"openTasks"`
	CompletedTasks    int64 `json:"completedTasks"`
	OverdueTasks      int64 `json:"overdueTasks"`
}

// Comparison describes the change of each counter against the previous window.
type Comparison struct {
	TotalTasksCreated string `json:"totalTasksCreated"`
	OpenTasks         string `json:"openTasks"`
	CompletedTasks    string `json:"completedTasks"`
	OverdueTasks      string `json:"overdueTasks"`
}

// Analytics is the report of one period.
type Analytics struct {
	Period     Period     `json:"period"`
	Current    Counters   `json:"current"`
	Previous   Counters   `json:"previous"`
	Comparison Comparison `json:"comparison"`
}

// AnalyticsService computes period over period task counters.
type AnalyticsService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(taskRepo repository.TaskRepository) *AnalyticsService {
	return &AnalyticsService{
		taskRepo: taskRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AnalyticsService) count(ctx context.Context, w Window, overdueAt time.Time) (Counters, error) {
	var c Counters
	pending := models.TaskStatusPending
	completed := models.TaskStatusCompleted

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.TotalTasksCreated, err = s.taskRepo.CountCreated(gctx, w.Start, w.End, nil)
		return err
	})
	g.Go(func() (err error) {
		c.OpenTasks, err = s.taskRepo.CountCreated(gctx, w.Start, w.End, &pending)
		return err
	})
	g.Go(func() (err error) {
		c.CompletedTasks, err = s.taskRepo.CountCreated(gctx, w.Start, w.End, &completed)
		return err
	})
	g.Go(func() (err error) {
		c.OverdueTasks, err = s.taskRepo.CountOverdue(gctx, overdueAt)
		return err
	})
	if err := g.Wait(); err != nil {
		return Counters{}, fmt.Errorf("failed to count tasks: %w", err)
	}
	return c, nil
}

func compare(label string, current, previous int64) string {
	return fmt.Sprintf("%s: %+d compared to previous period", label, current-previous)
}

// GetAnalytics reports the counters of period and their change against the
// previous window. Overdue counts pending tasks due before now for the
// current window and before the previous window's end for the previous one.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, period Period) (*Analytics, error) {
	now := s.now()
	current, previous, err := Windows(period, now)
	if err != nil {
		return nil, err
	}

	cur, err := s.count(ctx, current, now)
	if err != nil {
		return nil, err
	}
	prev, err := s.count(ctx, previous, previous.End)
	if err != nil {
		return nil, err
	}

	return &Analytics{
		Period:   period,
		Current:  cur,
		Previous: prev,
		Comparison: Comparison{
			TotalTasksCreated: compare("Total Tasks Created", cur.TotalTasksCreated, prev.TotalTasksCreated),
			OpenTasks:         compare("Open Tasks", cur.OpenTasks, prev.OpenTasks),
			CompletedTasks:    compare("Completed Tasks", cur.CompletedTasks, prev.CompletedTasks),
			OverdueTasks:      compare("Overdue Tasks", cur.OverdueTasks, prev.OverdueTasks),
		},
	}, nil
}
