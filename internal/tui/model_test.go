package tui

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/mittlund/syssla/internal/app"
	"github.com/mittlund/syssla/internal/domain"
	"github.com/mittlund/syssla/internal/session"
)

type fakeService struct {
	username string

	loginErr  error
	signupErr error

	loginCalls  int
	signupCalls int

	tasks []domain.Task
	items map[int64][]domain.ChecklistItem

	createTitle   string
	createItems   []string
	createMessage string

	deletedTaskID int64
	setDoneTaskID int64
	setDoneValue  bool
	setDoneCalls  int

	loggedOut  bool
	nextItemID int64
}

func newFakeBoard(tasks []domain.Task, items map[int64][]domain.ChecklistItem) *fakeService {
	if items == nil {
		items = map[int64][]domain.ChecklistItem{}
	}
	return &fakeService{
		username:      "bob",
		tasks:         tasks,
		items:         items,
		createMessage: "To-Do added successfully",
		nextItemID:    1000,
	}
}

func (f *fakeService) CurrentUser() (string, error) {
	if f.username == "" {
		return "", session.ErrNotLoggedIn
	}
	return f.username, nil
}

func (f *fakeService) Login(_ context.Context, username, _ string) error {
	f.loginCalls++
	if f.loginErr != nil {
		return f.loginErr
	}
	f.username = strings.TrimSpace(username)
	return nil
}

func (f *fakeService) SignUp(context.Context, string, string, string, string) error {
	f.signupCalls++
	return f.signupErr
}

func (f *fakeService) Logout() error {
	f.loggedOut = true
	f.username = ""
	return nil
}

func (f *fakeService) LoadTasks(context.Context) ([]domain.Task, error) {
	out := make([]domain.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeService) CreateTask(_ context.Context, title string, items []string) (string, error) {
	f.createTitle = strings.TrimSpace(title)
	f.createItems = append([]string(nil), items...)
	return f.createMessage, nil
}

func (f *fakeService) DeleteTask(_ context.Context, taskID int64) error {
	f.deletedTaskID = taskID
	for idx := range f.tasks {
		if f.tasks[idx].ID == taskID {
			f.tasks = append(f.tasks[:idx], f.tasks[idx+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeService) SetTaskDone(_ context.Context, taskID int64, done bool) error {
	f.setDoneCalls++
	f.setDoneTaskID = taskID
	f.setDoneValue = done
	for idx := range f.tasks {
		if f.tasks[idx].ID == taskID {
			f.tasks[idx].Done = done
		}
	}
	return nil
}

func (f *fakeService) LoadChecklist(_ context.Context, taskID int64) ([]domain.ChecklistItem, error) {
	out := make([]domain.ChecklistItem, len(f.items[taskID]))
	copy(out, f.items[taskID])
	return out, nil
}

func (f *fakeService) ToggleItem(_ context.Context, item domain.ChecklistItem) (domain.ChecklistItem, error) {
	item.Done = !item.Done
	rows := f.items[item.TaskID]
	for idx := range rows {
		if rows[idx].ID == item.ID {
			rows[idx] = item
		}
	}
	return item, nil
}

func (f *fakeService) AddItem(_ context.Context, taskID int64, description string) (domain.ChecklistItem, error) {
	f.nextItemID++
	item := domain.ChecklistItem{ID: f.nextItemID, TaskID: taskID, Description: strings.TrimSpace(description)}
	f.items[taskID] = append(f.items[taskID], item)
	return item, nil
}

func (f *fakeService) DeleteItem(_ context.Context, item domain.ChecklistItem) error {
	rows := f.items[item.TaskID]
	for idx := range rows {
		if rows[idx].ID == item.ID {
			f.items[item.TaskID] = append(rows[:idx], rows[idx+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeService) RenameTask(_ context.Context, taskID int64, title string) (string, error) {
	title = strings.TrimSpace(title)
	for idx := range f.tasks {
		if f.tasks[idx].ID == taskID {
			f.tasks[idx].Title = title
		}
	}
	return title, nil
}

func (f *fakeService) RenameItem(_ context.Context, item domain.ChecklistItem, description string) (domain.ChecklistItem, error) {
	item.Description = strings.TrimSpace(description)
	rows := f.items[item.TaskID]
	for idx := range rows {
		if rows[idx].ID == item.ID {
			rows[idx] = item
		}
	}
	return item, nil
}

func TestLoginBlankFieldsShowMessageWithoutNetwork(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	svc.username = ""
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != msgCredentialsRequired {
		t.Fatalf("status = %q, want %q", m.status, msgCredentialsRequired)
	}
	if svc.loginCalls != 0 {
		t.Fatalf("loginCalls = %d, want 0", svc.loginCalls)
	}
}

func TestLoginRejectedShowsInvalidCredentials(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	svc.username = ""
	svc.loginErr = app.ErrLoginRejected
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m.authInputs[authFieldUsername].SetValue("bob")
	m.authInputs[authFieldPassword].SetValue("wrong")

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.authenticated {
		t.Fatal("expected model to stay unauthenticated")
	}
	if m.status != msgInvalidCredentials {
		t.Fatalf("status = %q, want %q", m.status, msgInvalidCredentials)
	}
	if svc.loginCalls != 1 {
		t.Fatalf("loginCalls = %d, want 1", svc.loginCalls)
	}
}

func TestLoginSuccessLoadsBoard(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
		{ID: 2, Title: "Taxes", Done: true},
	}, nil)
	svc.username = ""
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m.authInputs[authFieldUsername].SetValue(" bob ")
	m.authInputs[authFieldPassword].SetValue("secret")

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.authenticated {
		t.Fatal("expected authenticated model after login")
	}
	if m.username != "bob" {
		t.Fatalf("username = %q, want %q", m.username, "bob")
	}
	if len(m.tasks) != 2 {
		t.Fatalf("len(tasks) = %d, want 2", len(m.tasks))
	}
}

func TestSignupBlankFieldShowsMessageWithoutNetwork(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	svc.username = ""
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	if m.mode != modeSignup {
		t.Fatalf("mode = %v, want modeSignup", m.mode)
	}
	m.authInputs[authFieldUsername].SetValue("bob")
	m.authInputs[authFieldPassword].SetValue("secret")
	m.authInputs[authFieldFirstName].SetValue("Bob")

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != msgAllFieldsRequired {
		t.Fatalf("status = %q, want %q", m.status, msgAllFieldsRequired)
	}
	if svc.signupCalls != 0 {
		t.Fatalf("signupCalls = %d, want 0", svc.signupCalls)
	}
}

func TestSignupSuccessSwitchesBackToLogin(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	svc.username = ""
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m.authInputs[authFieldUsername].SetValue("bob")
	m.authInputs[authFieldPassword].SetValue("secret")
	m.authInputs[authFieldFirstName].SetValue("Bob")
	m.authInputs[authFieldLastName].SetValue("Builder")

	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected submit cmd")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.status != msgRegistered {
		t.Fatalf("status = %q, want %q", m.status, msgRegistered)
	}

	updated, _ = m.Update(signupSwitchMsg{})
	m = updated.(Model)
	if m.mode != modeLogin {
		t.Fatalf("mode = %v, want modeLogin", m.mode)
	}
	if m.authInputs[authFieldFirstName].Value() != "" || m.authInputs[authFieldLastName].Value() != "" {
		t.Fatal("expected name fields cleared after switch back to login")
	}
}

func TestBoardPartitionAndNavigation(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
		{ID: 2, Title: "Taxes", Done: true},
	}, nil)
	m := boardModel(t, svc)

	accent := lipgloss.Color("62")
	dim := lipgloss.Color("239")
	ongoingCol := m.renderColumn("Ongoing", m.columnTasks(columnOngoing), columnOngoing, accent, dim, 40, 20)
	if !strings.Contains(ongoingCol, "Ongoing (1)") || !strings.Contains(ongoingCol, "Groceries") {
		t.Fatalf("unexpected ongoing column:\n%s", ongoingCol)
	}
	completedCol := m.renderColumn("Completed", m.columnTasks(columnCompleted), columnCompleted, accent, dim, 40, 20)
	if !strings.Contains(completedCol, "Completed (1)") || !strings.Contains(completedCol, "✓ Taxes") {
		t.Fatalf("unexpected completed column:\n%s", completedCol)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	if m.selectedColumn != columnCompleted {
		t.Fatalf("selectedColumn = %d, want %d", m.selectedColumn, columnCompleted)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.selectedColumn != columnOngoing {
		t.Fatalf("selectedColumn = %d, want %d", m.selectedColumn, columnOngoing)
	}
}

func TestOpenDetailOnlyForOngoingTasks(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
		{ID: 2, Title: "Taxes", Done: true},
	}, map[int64][]domain.ChecklistItem{
		1: {{ID: 10, TaskID: 1, Description: "milk"}},
	})
	m := boardModel(t, svc)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeNone {
		t.Fatalf("mode = %v, want modeNone for a completed task", m.mode)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.mode != modeDetail {
		t.Fatalf("mode = %v, want modeDetail", m.mode)
	}
	if len(m.detailItems) != 1 || m.detailItems[0].Description != "milk" {
		t.Fatalf("unexpected detail items: %#v", m.detailItems)
	}
}

func TestToggleItemPushesTaskCompletion(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, map[int64][]domain.ChecklistItem{
		1: {
			{ID: 10, TaskID: 1, Description: "milk", Done: true},
			{ID: 11, TaskID: 1, Description: "eggs"},
		},
	})
	m := boardModel(t, svc)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = applyMsg(t, m, keyRune('j'))

	m = applyMsg(t, m, keyRune('x'))
	if !m.detailItems[1].Done {
		t.Fatal("expected second item toggled on")
	}
	if svc.setDoneCalls != 1 {
		t.Fatalf("setDoneCalls = %d, want 1", svc.setDoneCalls)
	}
	if svc.setDoneTaskID != 1 || !svc.setDoneValue {
		t.Fatalf("SetTaskDone(%d, %v), want (1, true)", svc.setDoneTaskID, svc.setDoneValue)
	}
	if !m.detailTask.Done {
		t.Fatal("expected detail task recomputed as done")
	}

	m = applyMsg(t, m, keyRune('x'))
	if svc.setDoneValue {
		t.Fatal("expected task pushed back to ongoing after untoggle")
	}
}

func TestLateToggleResponseAfterCloseSkipsCompletionPush(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, map[int64][]domain.ChecklistItem{
		1: {
			{ID: 10, TaskID: 1, Description: "milk", Done: true},
			{ID: 11, TaskID: 1, Description: "eggs"},
		},
	})
	m := boardModel(t, svc)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = applyMsg(t, m, keyRune('j'))

	updated, cmd := m.Update(keyRune('x'))
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected toggle cmd")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.mode != modeNone {
		t.Fatalf("mode = %v, want modeNone", m.mode)
	}

	m = applyMsg(t, m, cmd())
	if svc.setDoneCalls != 0 {
		t.Fatalf("setDoneCalls = %d, want 0 for a response after close", svc.setDoneCalls)
	}
	if m.tasks[0].Done {
		t.Fatal("expected board task left ongoing until the next reload")
	}
}

func TestAddItemToOpenTask(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, map[int64][]domain.ChecklistItem{
		1: {{ID: 10, TaskID: 1, Description: "milk", Done: true}},
	})
	m := boardModel(t, svc)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune('a'))
	if m.mode != modeAddItem {
		t.Fatalf("mode = %v, want modeAddItem", m.mode)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "description is required" {
		t.Fatalf("status = %q, want description required", m.status)
	}

	m = applyMsg(t, m, keyRune('a'))
	m.editInput.SetValue("eggs")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if len(m.detailItems) != 2 || m.detailItems[1].Description != "eggs" {
		t.Fatalf("unexpected detail items: %#v", m.detailItems)
	}
	if m.detailTask.Done {
		t.Fatal("expected task recomputed as ongoing after adding an open item")
	}
	if svc.setDoneValue {
		t.Fatal("expected task-level status pushed as not done")
	}
}

func TestDeleteLastChecklistItemPushesTaskOngoing(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, map[int64][]domain.ChecklistItem{
		1: {{ID: 10, TaskID: 1, Description: "milk", Done: true}},
	})
	m := boardModel(t, svc)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune('d'))
	if len(m.detailItems) != 0 {
		t.Fatalf("detail items = %d, want 0", len(m.detailItems))
	}
	if len(svc.items[1]) != 0 {
		t.Fatalf("backend items = %d, want 0", len(svc.items[1]))
	}
	if svc.setDoneCalls != 1 || svc.setDoneTaskID != 1 || svc.setDoneValue {
		t.Fatalf("SetTaskDone calls=%d (%d, %v), want one call (1, false)",
			svc.setDoneCalls, svc.setDoneTaskID, svc.setDoneValue)
	}
	if m.detailTask.Done {
		t.Fatal("expected detail task recomputed as ongoing")
	}
}

func TestDeleteTaskConfirmation(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, nil)
	m := boardModel(t, svc)

	m = applyMsg(t, m, keyRune('d'))
	if m.mode != modeConfirmDelete {
		t.Fatalf("mode = %v, want modeConfirmDelete", m.mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.mode != modeNone || svc.deletedTaskID != 0 {
		t.Fatal("expected cancel to keep the task")
	}

	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('y'))
	if svc.deletedTaskID != 1 {
		t.Fatalf("deletedTaskID = %d, want 1", svc.deletedTaskID)
	}
	if len(m.tasks) != 0 {
		t.Fatalf("len(tasks) = %d, want 0 after reload", len(m.tasks))
	}
}

func TestDeleteTaskWithoutConfirmation(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, nil)
	m := NewModel(svc, WithConfirmDelete(false))
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	m = applyMsg(t, m, sessionCheckedMsg{username: "bob"})

	m = applyMsg(t, m, keyRune('d'))
	if svc.deletedTaskID != 1 {
		t.Fatalf("deletedTaskID = %d, want 1", svc.deletedTaskID)
	}
}

func TestRenameTaskUpdatesBoardAndDetail(t *testing.T) {
	svc := newFakeBoard([]domain.Task{
		{ID: 1, Title: "Groceries"},
	}, map[int64][]domain.ChecklistItem{
		1: {{ID: 10, TaskID: 1, Description: "milk"}},
	})
	m := boardModel(t, svc)
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune('t'))
	if m.mode != modeRenameTask {
		t.Fatalf("mode = %v, want modeRenameTask", m.mode)
	}
	m.editInput.SetValue("  Errands  ")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.detailTask.Title != "Errands" {
		t.Fatalf("detail title = %q, want %q", m.detailTask.Title, "Errands")
	}
	if m.tasks[0].Title != "Errands" {
		t.Fatalf("board title = %q, want %q", m.tasks[0].Title, "Errands")
	}
}

func TestAddTaskFormValidatesLocally(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	m := boardModel(t, svc)

	m = applyMsg(t, m, keyRune('a'))
	if m.mode != modeAddTask {
		t.Fatalf("mode = %v, want modeAddTask", m.mode)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "Title cannot be empty" {
		t.Fatalf("status = %q, want title required", m.status)
	}

	m.titleInput.SetValue("Groceries")
	m.itemInputs[0].SetValue("   ")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.status != "You must add at least one task!" {
		t.Fatalf("status = %q, want item required", m.status)
	}
	if svc.createTitle != "" {
		t.Fatal("expected no create call for an invalid form")
	}
}

func TestAddTaskSubmitAndDismiss(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	m := boardModel(t, svc)
	m = applyMsg(t, m, keyRune('a'))
	m.titleInput.SetValue("Groceries")
	m.itemInputs[0].SetValue("milk")

	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected submit cmd")
	}
	updated, _ = m.Update(cmd())
	m = updated.(Model)
	if m.status != "To-Do added successfully" {
		t.Fatalf("status = %q, want success message", m.status)
	}
	if svc.createTitle != "Groceries" {
		t.Fatalf("createTitle = %q, want %q", svc.createTitle, "Groceries")
	}

	m = applyMsg(t, m, addTaskDismissMsg{})
	if m.mode != modeNone {
		t.Fatalf("mode = %v, want modeNone after dismiss", m.mode)
	}
}

func TestAddTaskFormGrowsAndShrinks(t *testing.T) {
	svc := newFakeBoard(nil, nil)
	m := boardModel(t, svc)
	m = applyMsg(t, m, keyRune('a'))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl})
	if len(m.itemInputs) != 2 {
		t.Fatalf("len(itemInputs) = %d, want 2", len(m.itemInputs))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: 'd', Mod: tea.ModCtrl})
	if len(m.itemInputs) != 1 {
		t.Fatalf("len(itemInputs) = %d, want 1", len(m.itemInputs))
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	svc := newFakeBoard([]domain.Task{{ID: 1, Title: "Groceries"}}, nil)
	m := boardModel(t, svc)

	m = applyMsg(t, m, keyRune('L'))
	if !svc.loggedOut {
		t.Fatal("expected service logout")
	}
	if m.authenticated || m.mode != modeLogin {
		t.Fatalf("expected login mode, got authenticated=%v mode=%v", m.authenticated, m.mode)
	}
	if len(m.tasks) != 0 {
		t.Fatal("expected board state cleared on logout")
	}
}

func TestModelQuitKey(t *testing.T) {
	m := boardModel(t, newFakeBoard(nil, nil))
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
}

func TestModelViewStates(t *testing.T) {
	svc := newFakeBoard([]domain.Task{{ID: 1, Title: "Groceries"}}, nil)
	m := NewModel(svc)
	v := m.View()
	if v.Content == nil {
		t.Fatal("expected loading view content")
	}

	m = boardModel(t, svc)
	v = m.View()
	if v.Content == nil {
		t.Fatal("expected board view content")
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	overlay := m.renderModeOverlay(accent, muted, dim, 60)
	if overlay != "" {
		t.Fatalf("expected no overlay in board mode, got:\n%s", overlay)
	}
	m = applyMsg(t, m, keyRune('?'))
	if m.mode != modeHelp {
		t.Fatalf("mode = %v, want modeHelp", m.mode)
	}
	overlay = m.renderModeOverlay(accent, muted, dim, 60)
	if !strings.Contains(overlay, "syssla help") {
		t.Fatalf("expected help overlay, got:\n%s", overlay)
	}
}

func boardModel(t *testing.T, svc *fakeService) Model {
	t.Helper()
	m := NewModel(svc)
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 32})
	return applyMsg(t, m, sessionCheckedMsg{username: "bob"})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
