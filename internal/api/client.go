// Package api implements the HTTP client for the to-do backend. Every
// operation is one request/response pair with no retries and no auth
// headers. The backend contract is plain JSON over HTTP with business
// failures reported in-band via `success:false`.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrTransport wraps network-level and malformed-response failures so
// callers can show the generic "try again" message without inspecting the
// underlying error.
var ErrTransport = errors.New("transport failure")

// StatusError is a server-reported business failure (`success:false`)
// carrying the server's message when one was provided.
type StatusError struct {
	Message string
}

// Error returns the server message or a generic fallback.
func (e *StatusError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return "request rejected by server"
	}
	return e.Message
}

// Title is one task row as served by `/get-titles`.
type Title struct {
	ID     int64     `json:"id"`
	Title  string    `json:"title"`
	Status LooseBool `json:"status"`
}

// ListItem is one checklist row as served by `/get-task-list/{id}`.
type ListItem struct {
	ID       int64     `json:"id"`
	ListDesc string    `json:"list_desc"`
	Status   LooseBool `json:"status"`
}

// LooseBool decodes the backend's status values, which arrive as 0/1
// numbers from task rows and as booleans from item updates.
type LooseBool bool

// UnmarshalJSON accepts bool, number and numeric-string encodings.
func (b *LooseBool) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "true", "1", `"1"`, `"true"`:
		*b = true
	case "false", "0", `"0"`, `"false"`, "null", `""`:
		*b = false
	default:
		return fmt.Errorf("invalid status value %s", data)
	}
	return nil
}

// MarshalJSON encodes as a plain boolean.
func (b LooseBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

// Client talks to one backend deployment.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient constructs a client for the given base URL. The optional
// httpClient lets tests inject an httptest transport; nil uses the default
// client (no timeout, matching the source application's behavior).
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    httpClient,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// statusResponse is the common mutation envelope.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// CheckUser reports whether the username/password pair exists.
func (c *Client) CheckUser(ctx context.Context, username, password string) (bool, error) {
	var resp struct {
		Exist bool `json:"exist"`
	}
	payload := map[string]string{"username": username, "password": password}
	if err := c.postJSON(ctx, "/check-user", payload, &resp); err != nil {
		return false, err
	}
	return resp.Exist, nil
}

// AddUser registers a new account. A `success:false` response becomes a
// StatusError carrying the server message.
func (c *Client) AddUser(ctx context.Context, username, password, fname, lname string) error {
	payload := map[string]string{
		"username": username,
		"password": password,
		"fname":    fname,
		"lname":    lname,
	}
	var resp statusResponse
	if err := c.postJSON(ctx, "/add-user", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// GetTitles fetches every task row.
func (c *Client) GetTitles(ctx context.Context) ([]Title, error) {
	var resp struct {
		Titles []Title `json:"titles"`
	}
	if err := c.getJSON(ctx, "/get-titles", &resp); err != nil {
		return nil, err
	}
	return resp.Titles, nil
}

// AddToDo creates one task with its checklist strings and returns the
// server's confirmation message.
func (c *Client) AddToDo(ctx context.Context, username, title string, lists []string) (string, error) {
	payload := map[string]any{
		"username": username,
		"title":    title,
		"lists":    lists,
	}
	var resp statusResponse
	if err := c.postJSON(ctx, "/add-to-do", payload, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", &StatusError{Message: resp.Message}
	}
	return resp.Message, nil
}

// DeleteToDo removes one task and, server-side, its checklist items.
func (c *Client) DeleteToDo(ctx context.Context, titleID int64) error {
	var resp statusResponse
	if err := c.postJSON(ctx, "/delete-to-do", map[string]int64{"title_id": titleID}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// UpdateTaskStatus sets the task-level done flag, encoded as 0/1 per the
// backend contract.
func (c *Client) UpdateTaskStatus(ctx context.Context, titleID int64, done bool) error {
	status := 0
	if done {
		status = 1
	}
	payload := map[string]any{"title_id": titleID, "status": status}
	var resp statusResponse
	if err := c.postJSON(ctx, "/update-status", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// UpdateItemStatus toggles one checklist item. The endpoint is shared with
// the task-level update; the presence of `id` selects the item shape, and
// the status is a boolean here rather than 0/1.
func (c *Client) UpdateItemStatus(ctx context.Context, titleID, itemID int64, done bool) error {
	payload := map[string]any{"title_id": titleID, "id": itemID, "status": done}
	var resp statusResponse
	if err := c.postJSON(ctx, "/update-status", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// GetTaskList fetches the checklist for one task. A missing or non-array
// `list` field decodes as an empty checklist.
func (c *Client) GetTaskList(ctx context.Context, titleID int64) ([]ListItem, error) {
	var resp struct {
		List []ListItem `json:"list"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/get-task-list/%d", titleID), &resp); err != nil {
		return nil, err
	}
	return resp.List, nil
}

// AddListItem appends one checklist item and returns its server-assigned id.
func (c *Client) AddListItem(ctx context.Context, titleID int64, listDesc string) (int64, error) {
	payload := map[string]any{"title_id": titleID, "list_desc": listDesc}
	var resp statusResponse
	if err := c.postJSON(ctx, "/add-list-item", payload, &resp); err != nil {
		return 0, err
	}
	if !resp.Success {
		return 0, &StatusError{Message: resp.Message}
	}
	return resp.ID, nil
}

// DeleteListItem removes one checklist item by id.
func (c *Client) DeleteListItem(ctx context.Context, itemID int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/delete-list-item/%d", c.baseURL, itemID), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", errors.Join(ErrTransport, err))
	}
	var resp statusResponse
	if err := c.do(req, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// UpdateTaskTitle renames one task.
func (c *Client) UpdateTaskTitle(ctx context.Context, titleID int64, title string) error {
	payload := map[string]any{"id": titleID, "title": title}
	var resp statusResponse
	if err := c.postJSON(ctx, "/update-task-title", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// UpdateListItem rewrites one checklist item's description.
func (c *Client) UpdateListItem(ctx context.Context, itemID int64, listDesc string) error {
	payload := map[string]any{"id": itemID, "list_desc": listDesc}
	var resp statusResponse
	if err := c.postJSON(ctx, "/update-list-item", payload, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return &StatusError{Message: resp.Message}
	}
	return nil
}

// postJSON sends one JSON POST and decodes the JSON response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", errors.Join(ErrTransport, err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", errors.Join(ErrTransport, err))
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// getJSON sends one GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", errors.Join(ErrTransport, err))
	}
	return c.do(req, out)
}

// do executes one request and decodes the body. The client never branches on
// HTTP status codes: business failures travel in the JSON envelope, so only
// an unreadable or undecodable response counts as a transport failure.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, errors.Join(ErrTransport, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", errors.Join(ErrTransport, err))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", errors.Join(ErrTransport, err))
	}
	return nil
}
