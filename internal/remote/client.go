package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/kairo/internal/logger"
	"github.com/tgienger/kairo/internal/models"
)

// Endpoints and the JSON keys their collections are wrapped in
const (
	TasksPath         = "/tasks"
	EventsPath        = "/events"
	CoursesPath       = "/courses"
	ArchivedTasksPath = "/tasks/archived"
	CompleteTaskPath  = "/tasks/complete"
	ChatPath          = "/chat"

	TasksKey         = "tasks"
	EventsKey        = "events"
	CoursesKey       = "courses"
	ArchivedTasksKey = "archived_tasks"
)

// RequestIDHeader carries a per-request id for correlating logs
const RequestIDHeader = "X-Request-ID"

// Client talks to the Remote Data Service on behalf of one user
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a client. A nil httpClient uses one with the given timeout.
func NewClient(baseURL, userID string, timeout time.Duration, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
		httpClient: httpClient,
		log:        log.WithComponent("remote"),
	}
}

// BaseURL returns the service root
func (c *Client) BaseURL() string { return c.baseURL }

// UserID returns the user every request is made for
func (c *Client) UserID() string { return c.userID }

// messageBody is the shape of mutation responses and error bodies
type messageBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// List fetches a collection and returns the raw items under key.
// A 204 or a missing key yields an empty collection.
func (c *Client) List(ctx context.Context, path, key string) ([]json.RawMessage, error) {
	body, status, err := c.do(ctx, http.MethodGet, path, c.userQuery(), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	raw, ok := envelope[key]
	if !ok || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s.%s: %w", path, key, err)
	}
	return items, nil
}

// ListOf fetches a collection and decodes each item as T
func ListOf[T any](ctx context.Context, c *Client, path, key string) ([]T, error) {
	raw, err := c.List(ctx, path, key)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s item: %w", key, err)
		}
		out = append(out, item)
	}
	return out, nil
}

// Create POSTs body to path and returns the service's message, if any
func (c *Client) Create(ctx context.Context, path string, body any) (string, error) {
	return c.mutate(ctx, http.MethodPost, path, nil, body)
}

// Update PUTs body to path/id
func (c *Client) Update(ctx context.Context, path, id string, body any) (string, error) {
	return c.mutate(ctx, http.MethodPut, path+"/"+url.PathEscape(id), c.userQuery(), body)
}

// Delete removes path/id. An empty body is a success.
func (c *Client) Delete(ctx context.Context, path, id string) (string, error) {
	return c.mutate(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), c.userQuery(), nil)
}

// Post sends body to an action endpoint
func (c *Client) Post(ctx context.Context, path string, body any) (string, error) {
	return c.mutate(ctx, http.MethodPost, path, nil, body)
}

// Chat sends one message to the assistant
func (c *Client) Chat(ctx context.Context, message, style string) (*models.ChatReply, error) {
	req := models.ChatRequest{UserID: c.userID, Message: message, Style: style}
	body, _, err := c.do(ctx, http.MethodPost, ChatPath, nil, req)
	if err != nil {
		return nil, err
	}

	var reply models.ChatReply
	if len(bytes.TrimSpace(body)) == 0 {
		return &reply, nil
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return &reply, nil
}

func (c *Client) mutate(ctx context.Context, method, path string, query url.Values, body any) (string, error) {
	data, _, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return "", nil
	}

	var msg messageBody
	if err := json.Unmarshal(data, &msg); err != nil {
		// a non-JSON success body still counts as success
		return "", nil
	}
	return msg.Message, nil
}

func (c *Client) userQuery() url.Values {
	return url.Values{"user_id": []string{c.userID}}
}

// do performs one request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		terr := &TransportError{Method: method, URL: endpoint, Err: err}
		c.log.LogRequest(method, path, requestID, 0, elapsed, errors.New(terr.Detail()))
		return nil, 0, terr
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := &TransportError{Method: method, URL: endpoint, Err: err}
		c.log.LogRequest(method, path, requestID, resp.StatusCode, elapsed, err)
		return nil, resp.StatusCode, terr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(resp.StatusCode, data)
		c.log.LogRequest(method, path, requestID, resp.StatusCode, elapsed, serr)
		return nil, resp.StatusCode, serr
	}

	c.log.LogRequest(method, path, requestID, resp.StatusCode, elapsed, nil)
	return data, resp.StatusCode, nil
}

func statusError(code int, data []byte) *StatusError {
	var msg messageBody
	if err := json.Unmarshal(data, &msg); err == nil {
		if msg.Error != "" {
			return &StatusError{Code: code, Message: msg.Error}
		}
		if msg.Message != "" {
			return &StatusError{Code: code, Message: msg.Message}
		}
	}
	return &StatusError{Code: code, Message: fmt.Sprintf("HTTP error! status: %d", code)}
}
