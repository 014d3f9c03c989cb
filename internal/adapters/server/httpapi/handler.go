// Package httpapi provides the REST HTTP adapter for the local dev backend.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mittlund/syssla/internal/adapters/storage/sqlite"
	"github.com/mittlund/syssla/internal/app"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed request handling.
const maxRequestBodyBytes int64 = 1 << 20

// errMalformedBody marks requests whose JSON body failed strict decoding.
var errMalformedBody = errors.New("malformed request body")

// Store is the storage surface the handler depends on.
type Store interface {
	CheckUser(ctx context.Context, username, password string) (bool, error)
	AddUser(ctx context.Context, u sqlite.User) error
	ListTitles(ctx context.Context) ([]sqlite.Title, error)
	CreateToDo(ctx context.Context, username, title string, lists []string) (int64, error)
	DeleteToDo(ctx context.Context, titleID int64) error
	SetTitleStatus(ctx context.Context, titleID int64, done bool) error
	SetItemStatus(ctx context.Context, itemID int64, done bool) error
	ListItems(ctx context.Context, titleID int64) ([]sqlite.ListItem, error)
	AddListItem(ctx context.Context, titleID int64, listDesc string) (int64, error)
	DeleteListItem(ctx context.Context, itemID int64) error
	RenameTitle(ctx context.Context, titleID int64, title string) error
	RenameItem(ctx context.Context, itemID int64, listDesc string) error
}

// Handler serves the to-do REST contract at the mux root.
type Handler struct {
	store  Store
	logger *log.Logger
}

// statusResponse is the business-result envelope every mutation returns.
// Business failures travel in-band as success=false with HTTP 200.
type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// looseStatus accepts the bool and 0/1 encodings clients send for status flags.
type looseStatus bool

// UnmarshalJSON decodes bools, numbers, and numeric strings into one flag.
func (s *looseStatus) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch raw {
	case "true", "1":
		*s = true
	case "false", "0", "null", "":
		*s = false
	default:
		return fmt.Errorf("invalid status value %q", raw)
	}
	return nil
}

// NewHandler constructs one HTTP adapter over the given store.
func NewHandler(store Store, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Handler{store: store, logger: logger}
}

// ServeHTTP routes one request to the matching endpoint handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := normalizePath(r.URL.Path)
	switch {
	case path == "check-user":
		h.post(w, r, h.handleCheckUser)
	case path == "add-user":
		h.post(w, r, h.handleAddUser)
	case path == "get-titles":
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetTitles(w, r)
	case path == "add-to-do":
		h.post(w, r, h.handleAddToDo)
	case path == "delete-to-do":
		h.post(w, r, h.handleDeleteToDo)
	case path == "update-status":
		h.post(w, r, h.handleUpdateStatus)
	case strings.HasPrefix(path, "get-task-list/"):
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w, http.MethodGet)
			return
		}
		h.handleGetTaskList(w, r, strings.TrimPrefix(path, "get-task-list/"))
	case path == "add-list-item":
		h.post(w, r, h.handleAddListItem)
	case strings.HasPrefix(path, "delete-list-item/"):
		if r.Method != http.MethodDelete {
			writeMethodNotAllowed(w, http.MethodDelete)
			return
		}
		h.handleDeleteListItem(w, r, strings.TrimPrefix(path, "delete-list-item/"))
	case path == "update-task-title":
		h.post(w, r, h.handleUpdateTaskTitle)
	case path == "update-list-item":
		h.post(w, r, h.handleUpdateListItem)
	default:
		http.NotFound(w, r)
	}
}

// post enforces the POST method before dispatching.
func (h *Handler) post(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	next(w, r)
}

// handleCheckUser serves POST `/check-user`.
func (h *Handler) handleCheckUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	exist, err := h.store.CheckUser(r.Context(), req.Username, req.Password)
	if err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exist": exist})
}

// handleAddUser serves POST `/add-user`.
func (h *Handler) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Fname    string `json:"fname"`
		Lname    string `json:"lname"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if anyBlank(req.Username, req.Password, req.Fname, req.Lname) {
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "All fields are required"})
		return
	}
	err := h.store.AddUser(r.Context(), sqlite.User{
		Username:  strings.TrimSpace(req.Username),
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.Fname),
		LastName:  strings.TrimSpace(req.Lname),
	})
	switch {
	case errors.Is(err, app.ErrDuplicateUsername):
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Username already taken"})
	case err != nil:
		h.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, statusResponse{Success: true})
	}
}

// handleGetTitles serves GET `/get-titles`.
func (h *Handler) handleGetTitles(w http.ResponseWriter, r *http.Request) {
	titles, err := h.store.ListTitles(r.Context())
	if err != nil {
		h.internalError(w, err)
		return
	}
	type wireTitle struct {
		ID     int64  `json:"id"`
		Title  string `json:"title"`
		Status int    `json:"status"`
	}
	out := make([]wireTitle, 0, len(titles))
	for _, t := range titles {
		out = append(out, wireTitle{ID: t.ID, Title: t.Title, Status: statusInt(t.Status)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"titles": out})
}

// handleAddToDo serves POST `/add-to-do`.
func (h *Handler) handleAddToDo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string   `json:"username"`
		Title    string   `json:"title"`
		Lists    []string `json:"lists"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Title is required"})
		return
	}
	if _, err := h.store.CreateToDo(r.Context(), strings.TrimSpace(req.Username), strings.TrimSpace(req.Title), req.Lists); err != nil {
		h.internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Message: "To-Do added successfully"})
}

// handleDeleteToDo serves POST `/delete-to-do`.
func (h *Handler) handleDeleteToDo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TitleID int64 `json:"title_id"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	h.writeMutationResult(w, h.store.DeleteToDo(r.Context(), req.TitleID), "To-Do not found")
}

// handleUpdateStatus serves POST `/update-status`. The body is dual-shape:
// the presence of `id` selects the checklist-item update, otherwise the
// title-level update applies.
func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TitleID int64       `json:"title_id"`
		ID      *int64      `json:"id"`
		Status  looseStatus `json:"status"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if req.ID != nil {
		h.writeMutationResult(w, h.store.SetItemStatus(r.Context(), *req.ID, bool(req.Status)), "List item not found")
		return
	}
	h.writeMutationResult(w, h.store.SetTitleStatus(r.Context(), req.TitleID, bool(req.Status)), "To-Do not found")
}

// handleGetTaskList serves GET `/get-task-list/{id}`.
func (h *Handler) handleGetTaskList(w http.ResponseWriter, r *http.Request, rawID string) {
	titleID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeBadRequest(w, fmt.Errorf("invalid title id %q", rawID))
		return
	}
	items, err := h.store.ListItems(r.Context(), titleID)
	if err != nil {
		h.internalError(w, err)
		return
	}
	type wireItem struct {
		ID       int64  `json:"id"`
		ListDesc string `json:"list_desc"`
		Status   int    `json:"status"`
	}
	out := make([]wireItem, 0, len(items))
	for _, item := range items {
		out = append(out, wireItem{ID: item.ID, ListDesc: item.ListDesc, Status: statusInt(item.Status)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": out})
}

// handleAddListItem serves POST `/add-list-item`.
func (h *Handler) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TitleID  int64  `json:"title_id"`
		ListDesc string `json:"list_desc"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.ListDesc) == "" {
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Description is required"})
		return
	}
	itemID, err := h.store.AddListItem(r.Context(), req.TitleID, strings.TrimSpace(req.ListDesc))
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "To-Do not found"})
	case err != nil:
		h.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, statusResponse{Success: true, ID: itemID})
	}
}

// handleDeleteListItem serves DELETE `/delete-list-item/{id}`.
func (h *Handler) handleDeleteListItem(w http.ResponseWriter, r *http.Request, rawID string) {
	itemID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeBadRequest(w, fmt.Errorf("invalid item id %q", rawID))
		return
	}
	h.writeMutationResult(w, h.store.DeleteListItem(r.Context(), itemID), "List item not found")
}

// handleUpdateTaskTitle serves POST `/update-task-title`.
func (h *Handler) handleUpdateTaskTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Title is required"})
		return
	}
	h.writeMutationResult(w, h.store.RenameTitle(r.Context(), req.ID, strings.TrimSpace(req.Title)), "To-Do not found")
}

// handleUpdateListItem serves POST `/update-list-item`.
func (h *Handler) handleUpdateListItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       int64  `json:"id"`
		ListDesc string `json:"list_desc"`
	}
	if err := decodeJSONBody(r.Context(), w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}
	if strings.TrimSpace(req.ListDesc) == "" {
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: "Description is required"})
		return
	}
	h.writeMutationResult(w, h.store.RenameItem(r.Context(), req.ID, strings.TrimSpace(req.ListDesc)), "List item not found")
}

// writeMutationResult maps a store mutation error to the business envelope.
func (h *Handler) writeMutationResult(w http.ResponseWriter, err error, notFoundMessage string) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeJSON(w, http.StatusOK, statusResponse{Success: false, Message: notFoundMessage})
	case err != nil:
		h.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, statusResponse{Success: true})
	}
}

// anyBlank reports whether any field is blank after trimming.
func anyBlank(fields ...string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return true
		}
	}
	return false
}

// statusInt encodes a completion flag the way the original wire format does.
func statusInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// normalizePath canonicalizes one request path for route matching.
func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	path = strings.Trim(path, "/")
	return path
}

// writeMethodNotAllowed writes a 405 response with `Allow` headers.
func writeMethodNotAllowed(w http.ResponseWriter, methods ...string) {
	if len(methods) > 0 {
		w.Header().Set("Allow", strings.Join(methods, ", "))
	}
	writeJSON(w, http.StatusMethodNotAllowed, statusResponse{Success: false, Message: "method not allowed"})
}

// writeBadRequest writes a 400 response for malformed requests.
func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, statusResponse{Success: false, Message: err.Error()})
}

// internalError logs the store failure and writes a 500 without leaking detail.
func (h *Handler) internalError(w http.ResponseWriter, err error) {
	h.logger.Error("store operation failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, statusResponse{Success: false, Message: "internal error"})
}

// writeJSON writes one JSON response envelope.
func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, `{"success":false,"message":"encode error"}`, http.StatusInternalServerError)
	}
}

// decodeJSONBody decodes one required JSON request body with strict shape checks.
func decodeJSONBody(ctx context.Context, w http.ResponseWriter, r *http.Request, out any) error {
	reader := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer reader.Close()

	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("decode request body: %w", errors.Join(errMalformedBody, err))
	}
	// Reject trailing payloads so malformed JSON bodies fail closed.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: trailing content: %w", errMalformedBody)
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("request canceled: %w", ctx.Err())
	default:
		return nil
	}
}
