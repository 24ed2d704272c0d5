package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/uniassist/api"
	apperrors "github.com/jrsteele09/uniassist/internal/errors"
)

const maxErrorBody = 4 << 10

// Do sends req with the stored bearer token. Auth endpoints and other origins
// pass through untouched. A token inside the expiry buffer is refreshed
// first; a 401 triggers one refresh and one retry. When the retry cannot be
// authorized the session is cleared.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	req = c.resolve(req)
	if !c.sameOrigin(req.URL) || api.IsAuthEndpoint(req.URL.Path) {
		return c.raw.Do(req)
	}

	ctx := req.Context()
	// Get clears an undecodable token, so it is never attached.
	current, err := c.sessions.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %w", req.Method, req.URL.Path, apperrors.ErrAuthenticationRequired, err)
	}
	if current == nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, apperrors.ErrAuthenticationRequired)
	}

	token := current.AccessToken
	if current.ExpiresWithin(c.now(), c.expiryBuffer) {
		c.log.Debug().Str("path", req.URL.Path).Msg("Access token expiring, refreshing before request")
		sess, err := c.refreshAfter(ctx, token)
		if err != nil {
			return nil, err
		}
		token = sess.AccessToken
	}

	body, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(req, body, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	c.log.Info().Str("method", req.Method).Str("path", req.URL.Path).Msg("Request unauthorized, refreshing and retrying once")
	sess, err := c.refreshAfter(ctx, token)
	if err != nil {
		return nil, err
	}

	retry, err := c.send(req, body, sess.AccessToken)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		c.forceLogout(ctx, "retry failed")
		return nil, fmt.Errorf("%w: retry %s %s: %w", apperrors.ErrAuthenticationRequired, req.Method, req.URL.Path, err)
	}
	if retry.StatusCode == http.StatusUnauthorized {
		failure := CheckResponse(retry)
		c.forceLogout(ctx, "retry unauthorized")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuthenticationRequired, failure)
	}
	return retry, nil
}

// send issues one attempt of req with a fresh copy of its body.
func (c *Client) send(req *http.Request, body func() (io.ReadCloser, error), token string) (*http.Response, error) {
	r := req.Clone(req.Context())
	if body != nil {
		rc, err := body()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		r.Body = rc
		r.GetBody = body
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return c.raw.Do(r)
}

// forceLogout clears the session after an unrecoverable authorization failure.
func (c *Client) forceLogout(ctx context.Context, reason string) {
	c.log.Warn().Str("reason", reason).Msg("Session could not be recovered, logging out")
	if err := c.sessions.Clear(context.WithoutCancel(ctx)); err != nil {
		c.log.Error().Err(err).Msg("Failed to clear session")
	}
}

// replayableBody returns a factory yielding the request body once per
// attempt, buffering it when the request cannot rewind itself.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		_ = req.Body.Close()
		return req.GetBody, nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

// CheckResponse returns nil for a 2xx response. Otherwise it consumes and
// closes the body and returns a *RequestFailedError. JSON error bodies are
// reduced to their message.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	data = bytes.TrimSpace(data)

	var body api.ErrorResponse
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return &apperrors.RequestFailedError{Status: resp.StatusCode, Body: body.Error}
	}
	return &apperrors.RequestFailedError{Status: resp.StatusCode, Body: string(data)}
}
