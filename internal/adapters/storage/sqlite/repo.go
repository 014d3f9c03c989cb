package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mittlund/syssla/internal/app"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// User represents a stored account row.
type User struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// Title represents a stored task row.
type Title struct {
	ID       int64
	Username string
	Title    string
	Status   bool
}

// ListItem represents a stored checklist row.
type ListItem struct {
	ID       int64
	TitleID  int64
	ListDesc string
	Status   bool
}

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS users (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			fname TEXT NOT NULL,
			lname TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS titles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			title TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY(username) REFERENCES users(username) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS list_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title_id INTEGER NOT NULL,
			list_desc TEXT NOT NULL,
			status INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY(title_id) REFERENCES titles(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_titles_username ON titles(username);`,
		`CREATE INDEX IF NOT EXISTS idx_list_items_title ON list_items(title_id);`,
	}

	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CheckUser reports whether the username and password pair matches a stored account.
func (r *Repository) CheckUser(ctx context.Context, username, password string) (bool, error) {
	var stored string
	err := r.db.QueryRowContext(ctx, `
		SELECT password
		FROM users
		WHERE username = ?
	`, username).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return stored == password, nil
}

// AddUser creates an account row, rejecting duplicate usernames.
func (r *Repository) AddUser(ctx context.Context, u User) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM users
		WHERE username = ?
	`, u.Username).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return app.ErrDuplicateUsername
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users(username, password, fname, lname, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, u.Username, u.Password, u.FirstName, u.LastName, ts(time.Now()))
	return err
}

// ListTitles lists all task rows in insertion order.
func (r *Repository) ListTitles(ctx context.Context) ([]Title, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, title, status
		FROM titles
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Title{}
	for rows.Next() {
		var (
			t      Title
			status int
		)
		if err := rows.Scan(&t.ID, &t.Username, &t.Title, &status); err != nil {
			return nil, err
		}
		t.Status = status != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateToDo inserts one title row plus its checklist rows in a single transaction.
func (r *Repository) CreateToDo(ctx context.Context, username, title string, lists []string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := ts(time.Now())
	res, err := tx.ExecContext(ctx, `
		INSERT INTO titles(username, title, status, created_at)
		VALUES (?, ?, 0, ?)
	`, username, title, now)
	if err != nil {
		return 0, err
	}
	titleID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, desc := range lists {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO list_items(title_id, list_desc, status, created_at)
			VALUES (?, ?, 0, ?)
		`, titleID, desc, now); err != nil {
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return titleID, nil
}

// DeleteToDo removes a title row and its checklist rows.
func (r *Repository) DeleteToDo(ctx context.Context, titleID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// The cascade is explicit because PRAGMA foreign_keys is per-connection
	// and database/sql pools connections.
	if _, err = tx.ExecContext(ctx, `DELETE FROM list_items WHERE title_id = ?`, titleID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM titles WHERE id = ?`, titleID)
	if err != nil {
		return err
	}
	if err = translateNoRows(res); err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

// SetTitleStatus updates a title row's completion flag.
func (r *Repository) SetTitleStatus(ctx context.Context, titleID int64, done bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE titles
		SET status = ?
		WHERE id = ?
	`, boolToInt(done), titleID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// SetItemStatus updates a checklist row's completion flag.
func (r *Repository) SetItemStatus(ctx context.Context, itemID int64, done bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE list_items
		SET status = ?
		WHERE id = ?
	`, boolToInt(done), itemID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// ListItems lists a title's checklist rows in insertion order.
func (r *Repository) ListItems(ctx context.Context, titleID int64) ([]ListItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title_id, list_desc, status
		FROM list_items
		WHERE title_id = ?
		ORDER BY id ASC
	`, titleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ListItem{}
	for rows.Next() {
		var (
			item   ListItem
			status int
		)
		if err := rows.Scan(&item.ID, &item.TitleID, &item.ListDesc, &status); err != nil {
			return nil, err
		}
		item.Status = status != 0
		out = append(out, item)
	}
	return out, rows.Err()
}

// AddListItem appends one checklist row and returns its generated id.
func (r *Repository) AddListItem(ctx context.Context, titleID int64, listDesc string) (int64, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(1)
		FROM titles
		WHERE id = ?
	`, titleID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, app.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO list_items(title_id, list_desc, status, created_at)
		VALUES (?, ?, 0, ?)
	`, titleID, listDesc, ts(time.Now()))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteListItem removes one checklist row.
func (r *Repository) DeleteListItem(ctx context.Context, itemID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM list_items WHERE id = ?`, itemID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// RenameTitle updates a title row's text.
func (r *Repository) RenameTitle(ctx context.Context, titleID int64, title string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE titles
		SET title = ?
		WHERE id = ?
	`, title, titleID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// RenameItem updates a checklist row's text.
func (r *Repository) RenameItem(ctx context.Context, itemID int64, listDesc string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE list_items
		SET list_desc = ?
		WHERE id = ?
	`, listDesc, itemID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// boolToInt handles bool to int.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
