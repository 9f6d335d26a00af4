// Package client provides a typed HTTP client for the todo API and a list
// controller that keeps an in-memory view model in sync with confirmed
// server state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"todolist-backend/internal/domain"
)

// Todo is the wire representation of a todo item as the API returns it.
type Todo struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"owner_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CreateTodoRequest is the body for creating a todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTodoRequest is the body for a partial update.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// TokenSource supplies the bearer token for each request, so callers can
// rotate tokens without rebuilding the client.
type TokenSource func() string

// Client talks to the todo API. HTTP statuses are translated back into the
// domain error taxonomy; network failures surface as domain.ErrTransport.
type Client struct {
	baseURL string
	token   TokenSource
	http    *http.Client
}

func New(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ListTodos fetches the caller's todos, newest-created first.
func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.do(ctx, http.MethodGet, "/todos/", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo submits a new todo and returns the server's authoritative row.
func (c *Client) CreateTodo(ctx context.Context, req CreateTodoRequest) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodPost, "/todos/", req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo patches a todo and returns the row as persisted, including the
// server-refreshed updated_at.
func (c *Client) UpdateTodo(ctx context.Context, id string, req UpdateTodoRequest) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodPatch, "/todos/"+id, req, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo permanently removes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/todos/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrTransport, err)
	}
	return nil
}

// statusError maps an error response back onto the sentinel the server
// mapped it from, carrying the server's message along.
func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrAuthorization, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	default:
		return fmt.Errorf("%w: %s", domain.ErrTransport, msg)
	}
}
