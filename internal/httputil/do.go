// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Do executes req and returns the response when the status is 2xx. A
// transport failure becomes a NetworkError; any other status becomes an
// UpstreamError carrying the (truncated) response body. On error the
// response body is already closed.
func Do(ctx context.Context, client *http.Client, req *http.Request, service string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &NetworkError{Service: service, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*maxErrorBody))
		resp.Body.Close()
		return nil, &UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Body:       truncateBody(body),
		}
	}
	return resp, nil
}

// DecodeJSON decodes the response body into v and closes it. A malformed
// body is reported as an UpstreamError.
func DecodeJSON(resp *http.Response, service string, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Msg:        fmt.Sprintf("decoding response: %v", err),
		}
	}
	return nil
}
