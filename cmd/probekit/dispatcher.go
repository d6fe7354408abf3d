package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// httpRequest describes the request the diagnostic dispatcher sends.
type httpRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// httpResponse is the dispatch response value.
type httpResponse struct {
	StatusCode int
	BodyBytes  int64
}

// httpError represents an HTTP error response from the target.
type httpError struct {
	StatusCode int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// httpDispatcher sends one HTTP request per dispatch. It is the external
// Dispatcher collaborator the toolkit measures.
type httpDispatcher struct {
	client *http.Client
}

func newHTTPDispatcher(timeout time.Duration) *httpDispatcher {
	return &httpDispatcher{client: &http.Client{Timeout: timeout}}
}

func (d *httpDispatcher) Send(ctx context.Context, request any) (any, error) {
	req, ok := request.(*httpRequest)
	if !ok {
		return nil, fmt.Errorf("unsupported request type %T", request)
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Drain the body so connections are reused between iterations.
	n, _ := io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 400 {
		return nil, &httpError{StatusCode: resp.StatusCode}
	}
	return &httpResponse{StatusCode: resp.StatusCode, BodyBytes: n}, nil
}
