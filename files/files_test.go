package files_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/uniassist/authclient"
	"github.com/jrsteele09/uniassist/backendfake"
	"github.com/jrsteele09/uniassist/files"
	"github.com/jrsteele09/uniassist/internal/config"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
	"github.com/jrsteele09/uniassist/kv"
	"github.com/jrsteele09/uniassist/sessions"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *files.Service {
	t.Helper()
	srv := httptest.NewServer(backendfake.New(config.NewBackend()))
	t.Cleanup(srv.Close)

	client, err := authclient.New(srv.URL, sessions.NewStore(kv.NewMemoryStore()))
	require.NoError(t, err)
	_, err = client.Login(context.Background(), "dev:marie@uni.example")
	require.NoError(t, err)
	return files.NewService(client)
}

func TestFiles(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# Radioactivity\n"), 0o600))

	uploaded, err := svc.UploadFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, "notes.md", uploaded.Name)
	require.EqualValues(t, 16, uploaded.Size)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, uploaded.ID, list[0].ID)

	require.NoError(t, svc.Delete(ctx, uploaded.ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)

	err = svc.Delete(ctx, uploaded.ID)
	var failed *apperrors.RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, http.StatusNotFound, failed.Status)
}

func TestUploadValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Upload(ctx, " ", strings.NewReader("x"))
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	big := strings.NewReader(strings.Repeat("a", files.MaxUploadSize+1))
	_, err = svc.Upload(ctx, "big.txt", big)
	require.ErrorIs(t, err, apperrors.ErrInvalidInput)

	require.ErrorIs(t, svc.Delete(ctx, ""), apperrors.ErrInvalidInput)
}
