package tui

import "github.com/charmbracelet/log"

type Option func(*Model)

// WithConfirmDelete controls whether board-level task deletion asks first.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) {
		m.confirmDelete = confirm
	}
}

// WithLogger routes operation failures to the given diagnostic logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}
