package app

import "errors"

// ErrNotLoggedIn and related errors describe validation and auth failures.
var (
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrLoginRejected    = errors.New("invalid username or password")
	ErrNoChecklistItems = errors.New("checklist needs at least one item")
	ErrMissingItemID    = errors.New("checklist item has no server id")
	ErrMissingTaskID    = errors.New("task has no server id")
)

// ErrNotFound and ErrDuplicateUsername are shared with the storage adapter.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already taken")
)
