package schedule_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/jrsteele09/uniassist/internal/config"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/internal/utils"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/schedule"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/jrsteele09/uniassist/users"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*schedule.Service, *users.Service) {
	t.Helper()
	srv := httptest.NewServer(backendfake.New(config.NewBackend()))
	t.Cleanup(srv.Close)

	store := sessions.NewStore(kv.NewMemoryStore())
	client, err := authclient.New(srv.URL, store)
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "dev:emmy@uni.example")
	require.NoError(t, err)
	return schedule.NewService(client), users.NewService(client, store)
}

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	d, err := schedule.ParseDate("", now)
	require.NoError(t, err)
	require.Equal(t, now, d)

	d, err = schedule.ParseDate("tomorrow", now)
	require.NoError(t, err)
	require.Equal(t, "2026-10-19", d.Format(time.DateOnly))

	d, err = schedule.ParseDate("2026-11-02", now)
	require.NoError(t, err)
	require.Equal(t, time.November, d.Month())

	_, err = schedule.ParseDate("02/11/2026", now)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDay(t *testing.T) {
	ctx := context.Background()
	svc, usersSvc := setup(t)
	_, err := usersSvc.UpdateGroup(ctx, utils.Ptr(654321))
	require.NoError(t, err)

	day, err := svc.Day(ctx, time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, "2026-10-20", day.Date)
	require.Equal(t, 654321, utils.Value(day.Group))
	require.NotEmpty(t, day.Lessons)
}

func TestTasks(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	_, err := svc.CreateTask(ctx, api.Task{Title: ""})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	due := time.Date(2026, 10, 25, 18, 0, 0, 0, time.UTC)
	created, err := svc.CreateTask(ctx, api.Task{Title: "Problem set 4", Due: &due})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.Done)

	done, err := svc.CompleteTask(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, done.Done)
	require.True(t, due.Equal(*done.Due))

	_, err = svc.CompleteTask(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.UpdateTask(ctx, api.Task{Title: "no id"})
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.NoError(t, svc.DeleteTask(ctx, created.ID))
	tasks, err := svc.Tasks(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)
}
