// Package files manages the documents in the user's knowledge base.
package files

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/authclient"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

// MaxUploadSize is the largest file the backend accepts.
const MaxUploadSize = 10 << 20

// API is the authenticated backend transport.
type API interface {
	DoJSON(ctx context.Context, method, path string, in, out any) error
	NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error)
	Do(req *http.Request) (*http.Response, error)
}

type Service struct {
	api API
}

func NewService(api API) *Service {
	return &Service{api: api}
}

func (s *Service) List(ctx context.Context) ([]api.File, error) {
	var files []api.File
	if err := s.api.DoJSON(ctx, http.MethodGet, api.RouteFiles, nil, &files); err != nil {
		return nil, apperrors.Wrapf(err, "list files")
	}
	return files, nil
}

// Upload sends content as a multipart form under the "file" field.
func (s *Service) Upload(ctx context.Context, name string, content io.Reader) (*api.File, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: file name is empty", apperrors.ErrInvalidInput)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return nil, apperrors.Wrapf(err, "read %s", name)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("%w: %s is larger than %d MiB", apperrors.ErrInvalidInput, name, MaxUploadSize>>20)
	}

	// Buffered so the transport can replay it after a refresh.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(partHeader(name))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := s.api.NewRequest(ctx, http.MethodPost, api.RouteFiles, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.api.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "upload %s", name)
	}
	var uploaded api.File
	if err := authclient.DecodeResponse(resp, &uploaded); err != nil {
		return nil, apperrors.Wrapf(err, "upload %s", name)
	}
	return &uploaded, nil
}

// UploadFile uploads the file at path under its base name.
func (s *Service) UploadFile(ctx context.Context, path string) (*api.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.Upload(ctx, filepath.Base(path), f)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: file id is empty", apperrors.ErrInvalidInput)
	}
	if err := s.api.DoJSON(ctx, http.MethodDelete, api.WithID(api.RouteFile, id), nil, nil); err != nil {
		return apperrors.Wrapf(err, "delete file %s", id)
	}
	return nil
}

func partHeader(name string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	return h
}
