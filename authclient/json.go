package authclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// NewRequest builds a request for a backend path. Each request carries a
// fresh X-Request-ID.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// DoJSON sends in as JSON to path through the authenticated transport and
// decodes the reply into out. Either may be nil. Non-2xx replies surface as
// *RequestFailedError.
func (c *Client) DoJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		r, err := jsonBody(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = r
	}

	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	return DecodeResponse(resp, out)
}

// DecodeResponse checks resp and decodes its JSON body into out.
func DecodeResponse(resp *http.Response, out any) error {
	if err := CheckResponse(resp); err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
