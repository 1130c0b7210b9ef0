// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the literature and
// generative clients: the upstream error taxonomy, request execution with
// status checking, and the fixed inter-request pacer.
package httputil

import (
	"fmt"
	"strings"

	"github.com/pdiddy/medaffairs/internal/textutil"
)

// maxErrorBody caps, in characters, how much of an upstream response body is kept on an error.
const maxErrorBody = 512

// NetworkError reports a transport failure reaching an upstream service.
type NetworkError struct {
	Service string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError reports a non-success HTTP status or a payload that does not
// have the expected shape. StatusCode and Body are set when available.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
	Msg        string
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString(e.Service)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " returned HTTP %d", e.StatusCode)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Body != "" {
		b.WriteString(": ")
		b.WriteString(e.Body)
	}
	return b.String()
}

func truncateBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if cut := textutil.Truncate(s, maxErrorBody); cut != s {
		return cut + "..."
	}
	return s
}
