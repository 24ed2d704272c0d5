// Package schedule reads the group timetable and manages personal tasks.
package schedule

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

// API is the authenticated backend transport.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

// ParseDate accepts YYYY-MM-DD, "today" and "tomorrow" relative to now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	d, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", apperrors.ErrInvalidInput, s)
	}
	return d, nil
}

// Day returns the lessons of the user's group on date.
func (s *Service) Day(ctx context.Context, date time.Time) (*api.DaySchedule, error) {
	q := url.Values{"date": {date.Format(time.DateOnly)}}
	var day api.DaySchedule
	if err := s.api.DoJSON(ctx, http.MethodGet, api.RouteSchedule+"?"+q.Encode(), nil, &day); err != nil {
		return nil, apperrors.Wrapf(err, "get schedule")
	}
	return &day, nil
}

func (s *Service) Tasks(ctx context.Context) ([]api.Task, error) {
	var tasks []api.Task
	if err := s.api.DoJSON(ctx, http.MethodGet, api.RouteTasks, nil, &tasks); err != nil {
		return nil, apperrors.Wrapf(err, "list tasks")
	}
	return tasks, nil
}

func (s *Service) CreateTask(ctx context.Context, task api.Task) (*api.Task, error) {
	if err := validateTask(task); err != nil {
		return nil, err
	}
	task.ID = ""
	var created api.Task
	if err := s.api.DoJSON(ctx, http.MethodPost, api.RouteTasks, task, &created); err != nil {
		return nil, apperrors.Wrapf(err, "create task")
	}
	return &created, nil
}

func (s *Service) UpdateTask(ctx context.Context, task api.Task) (*api.Task, error) {
	if task.ID == "" {
		return nil, fmt.Errorf("%w: task id is empty", apperrors.ErrInvalidInput)
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}
	var updated api.Task
	if err := s.api.DoJSON(ctx, http.MethodPut, api.WithID(api.RouteTask, task.ID), task, &updated); err != nil {
		return nil, apperrors.Wrapf(err, "update task %s", task.ID)
	}
	return &updated, nil
}

// CompleteTask marks the task with id done.
func (s *Service) CompleteTask(ctx context.Context, id string) (*api.Task, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(tasks, func(t api.Task) bool { return t.ID == id })
	if i < 0 {
		return nil, fmt.Errorf("task %s: %w", id, apperrors.ErrNotFound)
	}
	task := tasks[i]
	task.Done = true
	return s.UpdateTask(ctx, task)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: task id is empty", apperrors.ErrInvalidInput)
	}
	if err := s.api.DoJSON(ctx, http.MethodDelete, api.WithID(api.RouteTask, id), nil, nil); err != nil {
		return apperrors.Wrapf(err, "delete task %s", id)
	}
	return nil
}

func validateTask(t api.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: task title is empty", apperrors.ErrInvalidInput)
	}
	return nil
}
