package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/okian/roster/internal/domain/model"
)

// Client is a small JSON client for the roster API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (int, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	return nil
}

// List fetches GET /students.
func (c *Client) List(ctx context.Context) (listResponse, error) {
	var out listResponse
	status, err := c.do(ctx, http.MethodGet, "/students", nil, &out)
	if err == nil && status != http.StatusOK {
		err = fmt.Errorf("list students: unexpected status %d", status)
	}
	return out, err
}

// Get fetches GET /students/{id} and returns the status code.
func (c *Client) Get(ctx context.Context, id int) (model.Student, int, error) {
	var out model.Student
	status, err := c.do(ctx, http.MethodGet, "/students/"+strconv.Itoa(id), nil, &out)
	return out, status, err
}

// Create posts a JSON payload to /students and returns the status code.
func (c *Client) Create(ctx context.Context, in model.NewStudent) (model.Student, int, error) {
	var out createResponse
	status, err := c.do(ctx, http.MethodPost, "/students", in, &out)
	return out.Student, status, err
}
