package tui

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/mittlund/syssla/internal/api"
	"github.com/mittlund/syssla/internal/app"
	"github.com/mittlund/syssla/internal/domain"
	"github.com/mittlund/syssla/internal/session"
)

// Service represents service data used by this package.
type Service interface {
	CurrentUser() (string, error)
	Login(ctx context.Context, username, password string) error
	SignUp(ctx context.Context, username, password, firstName, lastName string) error
	Logout() error
	LoadTasks(ctx context.Context) ([]domain.Task, error)
	CreateTask(ctx context.Context, title string, items []string) (string, error)
	DeleteTask(ctx context.Context, taskID int64) error
	SetTaskDone(ctx context.Context, taskID int64, done bool) error
	LoadChecklist(ctx context.Context, taskID int64) ([]domain.ChecklistItem, error)
	ToggleItem(ctx context.Context, item domain.ChecklistItem) (domain.ChecklistItem, error)
	AddItem(ctx context.Context, taskID int64, description string) (domain.ChecklistItem, error)
	DeleteItem(ctx context.Context, item domain.ChecklistItem) error
	RenameTask(ctx context.Context, taskID int64, title string) (string, error)
	RenameItem(ctx context.Context, item domain.ChecklistItem, description string) (domain.ChecklistItem, error)
}

// inputMode represents a selectable mode.
type inputMode int

// modeLogin and related constants define package defaults.
const (
	modeLogin inputMode = iota
	modeSignup
	modeNone
	modeAddTask
	modeDetail
	modeAddItem
	modeRenameItem
	modeRenameTask
	modeConfirmDelete
	modeHelp
)

// auth-form field indexes used throughout keyboard/update logic.
const (
	authFieldUsername = iota
	authFieldPassword
	authFieldFirstName
	authFieldLastName
)

// board column indexes.
const (
	columnOngoing = iota
	columnCompleted
)

// signupSwitchDelay is how long the registration banner stays before the
// view returns to login mode.
const signupSwitchDelay = 2 * time.Second

// addTaskDismissDelay is how long the add-task success banner stays before
// the overlay closes and the board refreshes.
const addTaskDismissDelay = time.Second

// user-facing messages kept byte-identical with the deployed web client.
const (
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid username or password"
	msgAllFieldsRequired   = "All fields are required"
	msgRegistered          = "User successfully registered!"
	msgTransportFailure    = "Something went wrong. Please try again."
	msgGenericFailure      = "Something went wrong"
	msgNotLoggedIn         = "User not logged in!"
	msgTitleRequired       = "Title cannot be empty"
	msgItemsRequired       = "You must add at least one task!"
	msgAddTaskFailed       = "Failed to add task, please try again."
)

// Model represents model data used by this package.
type Model struct {
	svc    Service
	logger *log.Logger

	ready  bool
	width  int
	height int

	authenticated bool
	username      string
	status        string

	help help.Model
	keys keyMap

	mode inputMode

	authInputs []textinput.Model
	authFocus  int

	tasks          []domain.Task
	selectedColumn int
	selectedTask   int

	titleInput textinput.Model
	itemInputs []textinput.Model
	formFocus  int

	detailTask  domain.Task
	detailItems []domain.ChecklistItem
	detailIndex int

	editInput textinput.Model

	pendingDelete domain.Task
	confirmDelete bool

	md markdownRenderer
}

// sessionCheckedMsg carries the durable session state read at startup.
type sessionCheckedMsg struct {
	username string
}

// loggedInMsg carries message data through update handling.
type loggedInMsg struct {
	username string
	err      error
}

// signedUpMsg carries message data through update handling.
type signedUpMsg struct {
	err error
}

// signupSwitchMsg flips the auth view back to login mode.
type signupSwitchMsg struct{}

// loadedMsg carries message data through update handling.
type loadedMsg struct {
	tasks []domain.Task
	err   error
}

// taskAddedMsg carries the add-task result and the server's message.
type taskAddedMsg struct {
	message string
	err     error
}

// addTaskDismissMsg closes the add-task overlay and refreshes the board.
type addTaskDismissMsg struct{}

// checklistMsg carries one task's checklist rows.
type checklistMsg struct {
	task  domain.Task
	items []domain.ChecklistItem
	err   error
}

// itemToggledMsg carries message data through update handling.
type itemToggledMsg struct {
	item domain.ChecklistItem
	err  error
}

// itemAddedMsg carries message data through update handling.
type itemAddedMsg struct {
	item domain.ChecklistItem
	err  error
}

// itemDeletedMsg carries message data through update handling.
type itemDeletedMsg struct {
	item domain.ChecklistItem
	err  error
}

// itemRenamedMsg carries message data through update handling.
type itemRenamedMsg struct {
	item domain.ChecklistItem
	err  error
}

// taskRenamedMsg carries message data through update handling.
type taskRenamedMsg struct {
	taskID int64
	title  string
	err    error
}

// actionMsg carries message data through update handling.
type actionMsg struct {
	err    error
	status string
	reload bool
}

// copiedMsg carries the clipboard write result.
type copiedMsg struct {
	err error
}

// NewModel constructs a new value for this package.
func NewModel(svc Service, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		svc:           svc,
		logger:        log.New(io.Discard),
		help:          h,
		keys:          newKeyMap(),
		mode:          modeLogin,
		authInputs:    newAuthInputs(),
		editInput:     newModalInput("", "", "", 240),
		confirmDelete: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// newAuthInputs builds the four auth form fields in display order.
func newAuthInputs() []textinput.Model {
	username := newModalInput("username: ", "", "", 120)
	password := newModalInput("password: ", "", "", 120)
	password.EchoMode = textinput.EchoPassword
	firstName := newModalInput("first name: ", "", "", 120)
	lastName := newModalInput("last name: ", "", "", 120)
	return []textinput.Model{username, password, firstName, lastName}
}

// newModalInput builds one configured text input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.checkSession, m.authInputs[authFieldUsername].Focus())
}

// checkSession reads the durable session record written by the last login.
func (m Model) checkSession() tea.Msg {
	username, err := m.svc.CurrentUser()
	if err != nil {
		if !errors.Is(err, session.ErrNotLoggedIn) {
			m.logger.Warn("session check failed", "error", err)
		}
		return sessionCheckedMsg{}
	}
	return sessionCheckedMsg{username: username}
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionCheckedMsg:
		if msg.username == "" {
			return m, nil
		}
		m.authenticated = true
		m.username = msg.username
		m.mode = modeNone
		m.status = "loading..."
		return m, m.loadTasks

	case loggedInMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.authenticated = true
		m.username = msg.username
		m.mode = modeNone
		m.status = "loading..."
		m.blurAuthInputs()
		return m, m.loadTasks

	case signedUpMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.status = msgRegistered
		return m, tea.Tick(signupSwitchDelay, func(time.Time) tea.Msg {
			return signupSwitchMsg{}
		})

	case signupSwitchMsg:
		if m.authenticated {
			return m, nil
		}
		m.mode = modeLogin
		m.status = ""
		m.authInputs[authFieldFirstName].SetValue("")
		m.authInputs[authFieldLastName].SetValue("")
		return m, m.focusAuthField(authFieldUsername)

	case loadedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.tasks = msg.tasks
		m.clampSelection()
		if m.status == "loading..." || m.status == "reloading..." {
			m.status = ""
		}
		return m, nil

	case taskAddedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrTransport) {
				m.logger.Error("add task failed", "error", msg.err)
				m.status = msgAddTaskFailed
				return m, nil
			}
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.status = msg.message
		return m, tea.Tick(addTaskDismissDelay, func(time.Time) tea.Msg {
			return addTaskDismissMsg{}
		})

	case addTaskDismissMsg:
		if m.mode == modeAddTask {
			m.mode = modeNone
			m.clearAddTaskForm()
		}
		m.status = "loading..."
		return m, m.loadTasks

	case checklistMsg:
		// A load failure opens the overlay with an empty checklist; the
		// deployed web client behaved the same way.
		if msg.err != nil {
			m.logger.Error("load checklist failed", "task_id", msg.task.ID, "error", msg.err)
		}
		m.mode = modeDetail
		m.detailTask = msg.task
		m.detailItems = msg.items
		m.detailIndex = 0
		return m, nil

	case itemToggledMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.replaceDetailItem(msg.item)
		return m, m.pushCompletion(msg.item.TaskID)

	case itemAddedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		if m.inDetailFor(msg.item.TaskID) {
			m.detailItems = append(m.detailItems, msg.item)
			m.detailIndex = len(m.detailItems) - 1
		}
		return m, m.pushCompletion(msg.item.TaskID)

	case itemDeletedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.removeDetailItem(msg.item.ID)
		return m, m.pushCompletion(msg.item.TaskID)

	case itemRenamedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.replaceDetailItem(msg.item)
		return m, nil

	case taskRenamedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		if m.detailTask.ID == msg.taskID {
			m.detailTask.Title = msg.title
		}
		for i := range m.tasks {
			if m.tasks[i].ID == msg.taskID {
				m.tasks[i].Title = msg.title
			}
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, m.loadTasks
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = m.failureStatus(msg.err)
			return m, nil
		}
		m.status = "checklist copied"
		return m, nil

	case tea.KeyPressMsg:
		if !m.authenticated {
			return m.handleAuthKey(msg)
		}
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// handleAuthKey handles keys for the login and sign-up forms.
func (m Model) handleAuthKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case msg.Code == tea.KeyTab || msg.String() == "tab":
		if m.mode == modeLogin {
			m.mode = modeSignup
		} else {
			m.mode = modeLogin
		}
		m.status = ""
		return m, m.focusAuthField(authFieldUsername)
	case msg.String() == "down":
		return m, m.focusAuthField(m.authFocus + 1)
	case msg.String() == "up":
		return m, m.focusAuthField(m.authFocus - 1)
	case msg.Code == tea.KeyEnter || msg.String() == "enter":
		if m.mode == modeSignup {
			return m.submitSignup()
		}
		return m.submitLogin()
	default:
		var cmd tea.Cmd
		m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
		return m, cmd
	}
}

// submitLogin validates locally, then checks the pair against the backend.
func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	username := m.authInputs[authFieldUsername].Value()
	password := m.authInputs[authFieldPassword].Value()
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		m.status = msgCredentialsRequired
		return m, nil
	}
	m.status = "signing in..."
	return m, func() tea.Msg {
		if err := m.svc.Login(context.Background(), username, password); err != nil {
			return loggedInMsg{err: err}
		}
		return loggedInMsg{username: strings.TrimSpace(username)}
	}
}

// submitSignup validates locally, then registers the account.
func (m Model) submitSignup() (tea.Model, tea.Cmd) {
	username := m.authInputs[authFieldUsername].Value()
	password := m.authInputs[authFieldPassword].Value()
	firstName := m.authInputs[authFieldFirstName].Value()
	lastName := m.authInputs[authFieldLastName].Value()
	for _, field := range []string{username, password, firstName, lastName} {
		if strings.TrimSpace(field) == "" {
			m.status = msgAllFieldsRequired
			return m, nil
		}
	}
	m.status = "registering..."
	return m, func() tea.Msg {
		return signedUpMsg{err: m.svc.SignUp(context.Background(), username, password, firstName, lastName)}
	}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.mode = modeHelp
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadTasks
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > columnOngoing {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < columnCompleted {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.columnTasks(m.selectedColumn)
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		return m, m.startAddTaskForm()
	case key.Matches(msg, m.keys.openTask):
		task, ok := m.selectedBoardTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if task.Done {
			// Completed tasks have no detail view, matching the board's
			// read-only completed column.
			return m, nil
		}
		return m, m.loadChecklist(task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedBoardTask()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if task.Done {
			return m, nil
		}
		if m.confirmDelete {
			m.mode = modeConfirmDelete
			m.pendingDelete = task
			return m, nil
		}
		return m, m.deleteTask(task)
	case key.Matches(msg, m.keys.logout):
		if err := m.svc.Logout(); err != nil {
			m.status = m.failureStatus(err)
			return m, nil
		}
		m.authenticated = false
		m.username = ""
		m.tasks = nil
		m.selectedColumn = columnOngoing
		m.selectedTask = 0
		m.mode = modeLogin
		m.status = ""
		m.authInputs = newAuthInputs()
		return m, m.focusAuthField(authFieldUsername)
	default:
		return m, nil
	}
}

// handleInputModeKey handles input mode key.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.mode = modeNone
		}
		return m, nil
	}

	if m.mode == modeConfirmDelete {
		switch msg.String() {
		case "y", "enter":
			task := m.pendingDelete
			m.mode = modeNone
			m.pendingDelete = domain.Task{}
			return m, m.deleteTask(task)
		case "n", "esc":
			m.mode = modeNone
			m.pendingDelete = domain.Task{}
			m.status = "cancelled"
			return m, nil
		default:
			return m, nil
		}
	}

	if m.mode == modeDetail {
		return m.handleDetailKey(msg)
	}

	if m.mode == modeAddItem || m.mode == modeRenameItem || m.mode == modeRenameTask {
		switch {
		case msg.Code == tea.KeyEscape || msg.String() == "esc":
			m.mode = modeDetail
			m.editInput.SetValue("")
			m.editInput.Blur()
			return m, nil
		case msg.Code == tea.KeyEnter || msg.String() == "enter":
			return m.submitDetailEdit()
		default:
			var cmd tea.Cmd
			m.editInput, cmd = m.editInput.Update(msg)
			return m, cmd
		}
	}

	if m.mode == modeAddTask {
		return m.handleAddTaskKey(msg)
	}

	return m, nil
}

// handleDetailKey handles keys inside the task-detail overlay.
func (m Model) handleDetailKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNone
		m.detailItems = nil
		m.detailIndex = 0
		return m, nil
	case "j", "down":
		if len(m.detailItems) > 0 && m.detailIndex < len(m.detailItems)-1 {
			m.detailIndex++
		}
		return m, nil
	case "k", "up":
		if m.detailIndex > 0 {
			m.detailIndex--
		}
		return m, nil
	case " ", "space", "x":
		item, ok := m.selectedDetailItem()
		if !ok {
			return m, nil
		}
		return m, m.toggleItem(item)
	case "a":
		m.mode = modeAddItem
		m.editInput.Prompt = "item: "
		m.editInput.SetValue("")
		return m, m.editInput.Focus()
	case "d":
		item, ok := m.selectedDetailItem()
		if !ok {
			return m, nil
		}
		return m, m.deleteItem(item)
	case "e":
		item, ok := m.selectedDetailItem()
		if !ok {
			return m, nil
		}
		m.mode = modeRenameItem
		m.editInput.Prompt = "item: "
		m.editInput.SetValue(item.Description)
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()
	case "t":
		m.mode = modeRenameTask
		m.editInput.Prompt = "title: "
		m.editInput.SetValue(m.detailTask.Title)
		m.editInput.CursorEnd()
		return m, m.editInput.Focus()
	case "y":
		return m, m.copyChecklist()
	default:
		return m, nil
	}
}

// submitDetailEdit dispatches the pending add/rename edit.
func (m Model) submitDetailEdit() (tea.Model, tea.Cmd) {
	value := m.editInput.Value()
	mode := m.mode
	m.mode = modeDetail
	m.editInput.SetValue("")
	m.editInput.Blur()

	switch mode {
	case modeAddItem:
		if strings.TrimSpace(value) == "" {
			m.status = "description is required"
			return m, nil
		}
		task := m.detailTask
		return m, func() tea.Msg {
			item, err := m.svc.AddItem(context.Background(), task.ID, value)
			return itemAddedMsg{item: item, err: err}
		}
	case modeRenameItem:
		item, ok := m.selectedDetailItem()
		if !ok {
			return m, nil
		}
		if strings.TrimSpace(value) == "" {
			m.status = "description is required"
			return m, nil
		}
		return m, func() tea.Msg {
			renamed, err := m.svc.RenameItem(context.Background(), item, value)
			return itemRenamedMsg{item: renamed, err: err}
		}
	case modeRenameTask:
		if strings.TrimSpace(value) == "" {
			m.status = msgTitleRequired
			return m, nil
		}
		task := m.detailTask
		return m, func() tea.Msg {
			title, err := m.svc.RenameTask(context.Background(), task.ID, value)
			return taskRenamedMsg{taskID: task.ID, title: title, err: err}
		}
	default:
		return m, nil
	}
}

// handleAddTaskKey handles keys inside the add-task overlay.
func (m Model) handleAddTaskKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Code == tea.KeyEscape || msg.String() == "esc":
		m.mode = modeNone
		m.clearAddTaskForm()
		m.status = "cancelled"
		return m, nil
	case msg.Code == tea.KeyTab || msg.String() == "tab" || msg.String() == "down":
		return m, m.focusFormField(m.formFocus + 1)
	case msg.String() == "shift+tab" || msg.String() == "up":
		return m, m.focusFormField(m.formFocus - 1)
	case msg.String() == "ctrl+n":
		idx := len(m.itemInputs)
		m.itemInputs = append(m.itemInputs, newModalInput("- ", "checklist item", "", 240))
		return m, m.focusFormField(idx + 1)
	case msg.String() == "ctrl+d":
		if m.formFocus > 0 && len(m.itemInputs) > 1 {
			idx := m.formFocus - 1
			m.itemInputs = append(m.itemInputs[:idx], m.itemInputs[idx+1:]...)
			return m, m.focusFormField(m.formFocus - 1)
		}
		return m, nil
	case msg.Code == tea.KeyEnter || msg.String() == "enter":
		return m.submitAddTask()
	default:
		var cmd tea.Cmd
		if m.formFocus == 0 {
			m.titleInput, cmd = m.titleInput.Update(msg)
		} else {
			m.itemInputs[m.formFocus-1], cmd = m.itemInputs[m.formFocus-1].Update(msg)
		}
		return m, cmd
	}
}

// submitAddTask sends the add-task form to the backend.
func (m Model) submitAddTask() (tea.Model, tea.Cmd) {
	title := m.titleInput.Value()
	items := make([]string, 0, len(m.itemInputs))
	for _, in := range m.itemInputs {
		items = append(items, in.Value())
	}
	if strings.TrimSpace(title) == "" {
		m.status = msgTitleRequired
		return m, nil
	}
	if len(domain.FilterBlank(items)) == 0 {
		m.status = msgItemsRequired
		return m, nil
	}
	m.status = "saving..."
	return m, func() tea.Msg {
		message, err := m.svc.CreateTask(context.Background(), title, items)
		return taskAddedMsg{message: message, err: err}
	}
}

// startAddTaskForm opens the add-task overlay with one empty checklist row.
func (m *Model) startAddTaskForm() tea.Cmd {
	m.mode = modeAddTask
	m.titleInput = newModalInput("title: ", "what needs doing?", "", 240)
	m.itemInputs = []textinput.Model{newModalInput("- ", "checklist item", "", 240)}
	m.formFocus = 0
	m.status = ""
	return m.focusFormField(0)
}

// clearAddTaskForm drops the add-task form state.
func (m *Model) clearAddTaskForm() {
	m.titleInput = textinput.Model{}
	m.itemInputs = nil
	m.formFocus = 0
}

// focusFormField focuses one add-task form field.
func (m *Model) focusFormField(idx int) tea.Cmd {
	idx = clamp(idx, 0, len(m.itemInputs))
	m.formFocus = idx
	m.titleInput.Blur()
	for i := range m.itemInputs {
		m.itemInputs[i].Blur()
	}
	if idx == 0 {
		return m.titleInput.Focus()
	}
	return m.itemInputs[idx-1].Focus()
}

// focusAuthField focuses one auth form field.
func (m *Model) focusAuthField(idx int) tea.Cmd {
	last := authFieldPassword
	if m.mode == modeSignup {
		last = authFieldLastName
	}
	idx = clamp(idx, 0, last)
	m.authFocus = idx
	for i := range m.authInputs {
		m.authInputs[i].Blur()
	}
	return m.authInputs[idx].Focus()
}

// blurAuthInputs drops focus from every auth field.
func (m *Model) blurAuthInputs() {
	for i := range m.authInputs {
		m.authInputs[i].Blur()
	}
}

// loadTasks loads required data for the current operation.
func (m Model) loadTasks() tea.Msg {
	tasks, err := m.svc.LoadTasks(context.Background())
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{tasks: tasks}
}

// loadChecklist fetches one task's checklist before opening the overlay.
func (m Model) loadChecklist(task domain.Task) tea.Cmd {
	return func() tea.Msg {
		items, err := m.svc.LoadChecklist(context.Background(), task.ID)
		return checklistMsg{task: task, items: items, err: err}
	}
}

// deleteTask removes one board task and reloads.
func (m Model) deleteTask(task domain.Task) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteTask(context.Background(), task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "task deleted", reload: true}
	}
}

// toggleItem flips one checklist row on the backend.
func (m Model) toggleItem(item domain.ChecklistItem) tea.Cmd {
	return func() tea.Msg {
		updated, err := m.svc.ToggleItem(context.Background(), item)
		return itemToggledMsg{item: updated, err: err}
	}
}

// deleteItem removes one checklist row on the backend.
func (m Model) deleteItem(item domain.ChecklistItem) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.DeleteItem(context.Background(), item); err != nil {
			return itemDeletedMsg{err: err}
		}
		return itemDeletedMsg{item: item}
	}
}

// pushCompletion recomputes the task's completion from its checklist and
// pushes the task-level status, mirroring the paired posts the source
// application issued after every checklist mutation. A response that lands
// after the overlay closed must not push a completion computed from the
// cleared checklist.
func (m *Model) pushCompletion(taskID int64) tea.Cmd {
	if !m.inDetailFor(taskID) {
		return nil
	}
	done := domain.AllComplete(m.detailItems)
	m.detailTask.Done = done
	task := m.detailTask
	for i := range m.tasks {
		if m.tasks[i].ID == task.ID {
			m.tasks[i].Done = done
		}
	}
	m.clampSelection()
	return func() tea.Msg {
		if err := m.svc.SetTaskDone(context.Background(), task.ID, done); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{}
	}
}

// copyChecklist writes the detail task as a markdown task list to the clipboard.
func (m Model) copyChecklist() tea.Cmd {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", m.detailTask.Title)
	for _, item := range m.detailItems {
		mark := " "
		if item.Done {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, item.Description)
	}
	content := b.String()
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(content)}
	}
}

// failureStatus maps an operation error to the single status banner and
// logs the underlying cause.
func (m Model) failureStatus(err error) string {
	m.logger.Error("operation failed", "error", err)
	switch {
	case errors.Is(err, api.ErrTransport):
		return msgTransportFailure
	case errors.Is(err, app.ErrLoginRejected):
		return msgInvalidCredentials
	case errors.Is(err, app.ErrNotLoggedIn):
		return msgNotLoggedIn
	case errors.Is(err, app.ErrNoChecklistItems):
		return msgItemsRequired
	case errors.Is(err, domain.ErrInvalidTitle):
		return msgTitleRequired
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidPassword):
		if m.mode == modeSignup {
			return msgAllFieldsRequired
		}
		return msgCredentialsRequired
	case errors.Is(err, domain.ErrInvalidName):
		return msgAllFieldsRequired
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		if strings.TrimSpace(statusErr.Message) == "" {
			return msgGenericFailure
		}
		return statusErr.Message
	}
	return err.Error()
}

// columnTasks returns the tasks of one board column.
func (m Model) columnTasks(column int) []domain.Task {
	ongoing, completed := domain.Partition(m.tasks)
	if column == columnCompleted {
		return completed
	}
	return ongoing
}

// selectedBoardTask returns the task under the board cursor.
func (m Model) selectedBoardTask() (domain.Task, bool) {
	tasks := m.columnTasks(m.selectedColumn)
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// selectedDetailItem returns the checklist row under the overlay cursor.
func (m Model) selectedDetailItem() (domain.ChecklistItem, bool) {
	if len(m.detailItems) == 0 {
		return domain.ChecklistItem{}, false
	}
	return m.detailItems[clamp(m.detailIndex, 0, len(m.detailItems)-1)], true
}

// inDetailFor reports whether the detail overlay is open for the given task.
func (m Model) inDetailFor(taskID int64) bool {
	switch m.mode {
	case modeDetail, modeAddItem, modeRenameItem, modeRenameTask:
		return m.detailTask.ID == taskID
	default:
		return false
	}
}

// replaceDetailItem swaps one checklist row by id. Late responses for a
// closed overlay are dropped here.
func (m *Model) replaceDetailItem(item domain.ChecklistItem) {
	if !m.inDetailFor(item.TaskID) {
		return
	}
	for i := range m.detailItems {
		if m.detailItems[i].ID == item.ID {
			m.detailItems[i] = item
			return
		}
	}
}

// removeDetailItem drops one checklist row by id.
func (m *Model) removeDetailItem(itemID int64) {
	for i := range m.detailItems {
		if m.detailItems[i].ID == itemID {
			m.detailItems = append(m.detailItems[:i], m.detailItems[i+1:]...)
			break
		}
	}
	m.detailIndex = clamp(m.detailIndex, 0, len(m.detailItems)-1)
}

// clampSelection keeps the board cursor inside the current column.
func (m *Model) clampSelection() {
	tasks := m.columnTasks(m.selectedColumn)
	m.selectedTask = clamp(m.selectedTask, 0, max(0, len(tasks)-1))
}

// View renders output for the current model state.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}
	if !m.authenticated {
		return m.renderAuthView()
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)

	header := titleStyle.Render("syssla") + "  " + m.username
	header += statusStyle.Render("  [" + m.modeLabel() + "]")

	ongoing, completed := domain.Partition(m.tasks)
	colWidth := max(24, (m.width-6)/2)
	colHeight := max(8, m.height-6)
	columns := []string{
		m.renderColumn("Ongoing", ongoing, columnOngoing, accent, dim, colWidth, colHeight),
		m.renderColumn("Completed", completed, columnCompleted, accent, dim, colWidth, colHeight),
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	sections := []string{header, "", body}
	if strings.TrimSpace(m.status) != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	fullContent := content + "\n" + helpLine
	overlay := m.renderModeOverlay(accent, muted, dim, m.width-8)
	if overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}

	v := tea.NewView(fullContent)
	v.AltScreen = true
	return v
}

// renderAuthView renders the centered login / sign-up form.
func (m Model) renderAuthView() tea.View {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)

	formTitle := "Log in"
	hint := "enter submit • tab sign up • ↑/↓ move • ctrl+c quit"
	fields := m.authInputs[:authFieldPassword+1]
	if m.mode == modeSignup {
		formTitle = "Sign up"
		hint = "enter submit • tab log in • ↑/↓ move • ctrl+c quit"
		fields = m.authInputs
	}

	lines := []string{
		titleStyle.Render("syssla"),
		hintStyle.Render(formTitle),
		"",
	}
	for _, in := range fields {
		lines = append(lines, in.View())
	}
	lines = append(lines, "", hintStyle.Render(hint))
	if strings.TrimSpace(m.status) != "" {
		lines = append(lines, hintStyle.Render(m.status))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 2).
		Width(clamp(m.width-8, 32, 60)).
		Render(strings.Join(lines, "\n"))

	content := box
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderColumn renders one board column.
func (m Model) renderColumn(name string, tasks []domain.Task, column int, accent, dim color.Color, colWidth, colHeight int) string {
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", name, len(tasks)))}
	if len(tasks) == 0 {
		lines = append(lines, emptyStyle.Render("(empty)"))
	}
	for idx, task := range tasks {
		prefix := "   "
		if column == m.selectedColumn && idx == clamp(m.selectedTask, 0, len(tasks)-1) {
			prefix = "│  "
		}
		mark := ""
		if task.Done {
			mark = "✓ "
		}
		title := prefix + mark + truncate(task.Title, max(1, colWidth-10))
		switch {
		case column == m.selectedColumn && idx == clamp(m.selectedTask, 0, len(tasks)-1):
			title = selectedStyle.Render(title)
		case task.Done:
			title = doneStyle.Render(title)
		}
		lines = append(lines, title)
	}

	innerHeight := max(1, colHeight-4)
	content := fitLines(strings.Join(lines, "\n"), innerHeight)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(1, 2).
		MarginRight(1).
		Width(colWidth)
	if column == m.selectedColumn {
		style = style.BorderForeground(accent)
	}
	return style.Render(content)
}

// renderModeOverlay renders output for the current model state.
func (m Model) renderModeOverlay(accent, muted, dim color.Color, maxWidth int) string {
	switch m.mode {
	case modeAddTask:
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1)
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 24, 76))
		}
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
		hintStyle := lipgloss.NewStyle().Foreground(muted)
		lines := []string{titleStyle.Render("New To-Do"), m.titleInput.View()}
		for _, in := range m.itemInputs {
			lines = append(lines, in.View())
		}
		lines = append(lines,
			"",
			hintStyle.Render("enter save • esc cancel • tab next field"),
			hintStyle.Render("ctrl+n add item • ctrl+d remove item"),
		)
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeDetail, modeAddItem, modeRenameItem, modeRenameTask:
		return m.renderDetailOverlay(accent, muted, maxWidth)

	case modeConfirmDelete:
		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Padding(0, 1)
		if maxWidth > 0 {
			boxStyle = boxStyle.Width(clamp(maxWidth, 24, 60))
		}
		titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
		hintStyle := lipgloss.NewStyle().Foreground(muted)
		lines := []string{
			titleStyle.Render("Delete To-Do"),
			truncate(m.pendingDelete.Title, 52),
			"",
			hintStyle.Render("y/enter delete • n/esc cancel"),
		}
		return boxStyle.Render(strings.Join(lines, "\n"))

	case modeHelp:
		return m.renderHelpOverlay(accent, dim, maxWidth)

	default:
		return ""
	}
}

// renderDetailOverlay renders the checklist overlay for the open task.
func (m Model) renderDetailOverlay(accent, muted color.Color, maxWidth int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1)
	if maxWidth > 0 {
		boxStyle = boxStyle.Width(clamp(maxWidth, 24, 76))
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle := lipgloss.NewStyle().Foreground(muted)
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	lines := []string{titleStyle.Render(truncate(m.detailTask.Title, 60))}
	if len(m.detailItems) == 0 {
		lines = append(lines, hintStyle.Render("(no checklist items)"))
	}
	for idx, item := range m.detailItems {
		mark := "[ ]"
		if item.Done {
			mark = "[x]"
		}
		prefix := "  "
		row := fmt.Sprintf("%s%s %s", prefix, mark, truncate(item.Description, 56))
		if idx == clamp(m.detailIndex, 0, len(m.detailItems)-1) {
			row = selectedStyle.Render("│ " + mark + " " + truncate(item.Description, 56))
		}
		lines = append(lines, row)
	}

	switch m.mode {
	case modeAddItem, modeRenameItem, modeRenameTask:
		lines = append(lines, "", m.editInput.View())
		lines = append(lines, hintStyle.Render("enter save • esc back"))
	default:
		lines = append(lines,
			"",
			hintStyle.Render("space toggle • a add • e edit • d delete"),
			hintStyle.Render("t rename title • y copy • esc close"),
		)
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders output for the current model state.
func (m Model) renderHelpOverlay(accent, dim color.Color, maxWidth int) string {
	width := clamp(maxWidth, 48, 90)
	if width <= 0 {
		width = 64
	}
	hb := m.help
	hb.ShowAll = true
	hb.SetWidth(width - 4)

	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("syssla help")
	body := m.md.render(helpMarkdown, width-4)
	lines := []string{
		title,
		"",
		hb.View(m.keys),
		body,
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("press ? or esc to close"),
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dim).
		Padding(0, 1).
		Width(width)
	return style.Render(strings.Join(lines, "\n"))
}

// modeLabel returns a short label describing the active mode.
func (m Model) modeLabel() string {
	switch m.mode {
	case modeLogin:
		return "login"
	case modeSignup:
		return "signup"
	case modeAddTask:
		return "add"
	case modeDetail:
		return "detail"
	case modeAddItem, modeRenameItem, modeRenameTask:
		return "edit"
	case modeConfirmDelete:
		return "confirm"
	case modeHelp:
		return "help"
	default:
		return "board"
	}
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// max returns the larger of the provided values.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// min returns the smaller of the provided values.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
