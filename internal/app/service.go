// Package app holds the client-side service: it binds the backend API and
// the session store into the operations the views invoke. The service keeps
// no task state of its own: every read replaces the caller's copy wholesale
// and every mutation is fire-and-confirm, per the backend's model.
package app

import (
	"context"
	"errors"

	"github.com/mittlund/syssla/internal/api"
	"github.com/mittlund/syssla/internal/domain"
	"github.com/mittlund/syssla/internal/session"
)

// Backend is the slice of the API client the service depends on.
type Backend interface {
	CheckUser(ctx context.Context, username, password string) (bool, error)
	AddUser(ctx context.Context, username, password, fname, lname string) error
	GetTitles(ctx context.Context) ([]api.Title, error)
	AddToDo(ctx context.Context, username, title string, lists []string) (string, error)
	DeleteToDo(ctx context.Context, titleID int64) error
	UpdateTaskStatus(ctx context.Context, titleID int64, done bool) error
	UpdateItemStatus(ctx context.Context, titleID, itemID int64, done bool) error
	GetTaskList(ctx context.Context, titleID int64) ([]api.ListItem, error)
	AddListItem(ctx context.Context, titleID int64, listDesc string) (int64, error)
	DeleteListItem(ctx context.Context, itemID int64) error
	UpdateTaskTitle(ctx context.Context, titleID int64, title string) error
	UpdateListItem(ctx context.Context, itemID int64, listDesc string) error
}

// SessionStore is the durable session record the service threads through
// the views.
type SessionStore interface {
	Current() (string, error)
	Save(username string) error
	Clear() error
}

// Service represents service data used by this package.
type Service struct {
	backend Backend
	session SessionStore
}

// NewService constructs a new value for this package.
func NewService(backend Backend, sessions SessionStore) *Service {
	return &Service{backend: backend, session: sessions}
}

// CurrentUser returns the active username or session.ErrNotLoggedIn.
func (s *Service) CurrentUser() (string, error) {
	return s.session.Current()
}

// Login validates the credentials locally, asks the backend whether the
// pair exists and persists the session on success. A rejected pair returns
// ErrLoginRejected; blank fields never reach the network.
func (s *Service) Login(ctx context.Context, username, password string) error {
	creds, err := domain.NewCredentials(username, password)
	if err != nil {
		return err
	}
	exist, err := s.backend.CheckUser(ctx, creds.Username, creds.Password)
	if err != nil {
		return err
	}
	if !exist {
		return ErrLoginRejected
	}
	if err := s.session.Save(creds.Username); err != nil {
		return err
	}
	return nil
}

// SignUp registers a new account. Blank fields fail locally without a
// network call; duplicate usernames come back as an api.StatusError with
// the server's message.
func (s *Service) SignUp(ctx context.Context, username, password, firstName, lastName string) error {
	user, err := domain.NewUser(username, password, firstName, lastName)
	if err != nil {
		return err
	}
	return s.backend.AddUser(ctx, user.Username, user.Password, user.FirstName, user.LastName)
}

// Logout clears the stored session record.
func (s *Service) Logout() error {
	return s.session.Clear()
}

// LoadTasks fetches every task and replaces the caller's list wholesale,
// mapping the backend's 0/1 status onto the derived done flag.
func (s *Service) LoadTasks(ctx context.Context) ([]domain.Task, error) {
	titles, err := s.backend.GetTitles(ctx)
	if err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, 0, len(titles))
	for _, title := range titles {
		tasks = append(tasks, domain.Task{
			ID:    title.ID,
			Title: title.Title,
			Done:  bool(title.Status),
		})
	}
	return tasks, nil
}

// CreateTask validates the add-task form and submits the creation request
// with blank checklist entries stripped. It returns the server's
// confirmation message.
func (s *Service) CreateTask(ctx context.Context, title string, items []string) (string, error) {
	username, err := s.session.Current()
	if err != nil {
		if errors.Is(err, session.ErrNotLoggedIn) {
			return "", ErrNotLoggedIn
		}
		return "", err
	}
	cleanTitle, err := domain.NewTaskTitle(title)
	if err != nil {
		return "", err
	}
	filtered := domain.FilterBlank(items)
	if len(filtered) == 0 {
		return "", ErrNoChecklistItems
	}
	return s.backend.AddToDo(ctx, username, cleanTitle, filtered)
}

// DeleteTask removes one task by id.
func (s *Service) DeleteTask(ctx context.Context, taskID int64) error {
	return s.backend.DeleteToDo(ctx, taskID)
}

// SetTaskDone pushes the derived task-level completion flag.
func (s *Service) SetTaskDone(ctx context.Context, taskID int64, done bool) error {
	return s.backend.UpdateTaskStatus(ctx, taskID, done)
}

// LoadChecklist fetches the checklist for one task.
func (s *Service) LoadChecklist(ctx context.Context, taskID int64) ([]domain.ChecklistItem, error) {
	rows, err := s.backend.GetTaskList(ctx, taskID)
	if err != nil {
		return nil, err
	}
	items := make([]domain.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.ChecklistItem{
			ID:          row.ID,
			TaskID:      taskID,
			Description: row.ListDesc,
			Done:        bool(row.Status),
		})
	}
	return items, nil
}

// ToggleItem inverts one checklist item's status and returns the updated
// item. Items without a server id are rejected before any network call.
func (s *Service) ToggleItem(ctx context.Context, item domain.ChecklistItem) (domain.ChecklistItem, error) {
	if item.ID == 0 {
		return domain.ChecklistItem{}, ErrMissingItemID
	}
	next := !item.Done
	if err := s.backend.UpdateItemStatus(ctx, item.TaskID, item.ID, next); err != nil {
		return domain.ChecklistItem{}, err
	}
	item.Done = next
	return item, nil
}

// AddItem appends one checklist item and returns it with the
// server-assigned id; new items always start pending.
func (s *Service) AddItem(ctx context.Context, taskID int64, description string) (domain.ChecklistItem, error) {
	desc, err := domain.NewItemDescription(description)
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	id, err := s.backend.AddListItem(ctx, taskID, desc)
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	return domain.ChecklistItem{ID: id, TaskID: taskID, Description: desc, Done: false}, nil
}

// DeleteItem removes one checklist item. Items without a server id are
// rejected before any network call.
func (s *Service) DeleteItem(ctx context.Context, item domain.ChecklistItem) error {
	if item.ID == 0 {
		return ErrMissingItemID
	}
	return s.backend.DeleteListItem(ctx, item.ID)
}

// RenameTask updates one task's title and returns the stored value.
func (s *Service) RenameTask(ctx context.Context, taskID int64, title string) (string, error) {
	if taskID == 0 {
		return "", ErrMissingTaskID
	}
	cleanTitle, err := domain.NewTaskTitle(title)
	if err != nil {
		return "", err
	}
	if err := s.backend.UpdateTaskTitle(ctx, taskID, cleanTitle); err != nil {
		return "", err
	}
	return cleanTitle, nil
}

// RenameItem rewrites one checklist item's description and returns the
// updated item.
func (s *Service) RenameItem(ctx context.Context, item domain.ChecklistItem, description string) (domain.ChecklistItem, error) {
	if item.ID == 0 {
		return domain.ChecklistItem{}, ErrMissingItemID
	}
	desc, err := domain.NewItemDescription(description)
	if err != nil {
		return domain.ChecklistItem{}, err
	}
	if err := s.backend.UpdateListItem(ctx, item.ID, desc); err != nil {
		return domain.ChecklistItem{}, err
	}
	item.Description = desc
	return item, nil
}
