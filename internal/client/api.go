package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/model/response"
)

// API is the server surface the controller depends on.
type API interface {
	List(ctx context.Context) ([]response.TodoResponse, error)
	Create(ctx context.Context, req request.CreateTodoRequest) (response.TodoResponse, error)
	Delete(ctx context.Context, id int64) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}

	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (a *APIClient) List(ctx context.Context) ([]response.TodoResponse, error) {
	var todos []response.TodoResponse

	if err := a.do(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}

	return todos, nil
}

func (a *APIClient) Create(ctx context.Context, req request.CreateTodoRequest) (response.TodoResponse, error) {
	var todo response.TodoResponse

	err := a.do(ctx, http.MethodPost, "/api/todos", req, &todo)

	return todo, err
}

func (a *APIClient) Delete(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil, nil)
}

func (a *APIClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody response.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errBody)

		return &StatusError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
