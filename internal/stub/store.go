package stub

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/flowday/flowday/internal/models"
)

// Store is the SQLite persistence of the stub backend. Tasks are stored in
// their backend encoding.
type Store struct {
	db *sql.DB
}

// NewStore opens dbPath and runs migrations. ":memory:" gives a throwaway database.
func NewStore(dbPath string) (*Store, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; also keeps a :memory: database alive across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		first_name TEXT,
		last_name TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		priority TEXT NOT NULL DEFAULT 'MEDIUM',
		status TEXT NOT NULL DEFAULT 'PENDING',
		category TEXT,
		due_date DATETIME,
		completed_at DATETIME,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		response TEXT,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_user_id ON chat_messages(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// --- Users and sessions ---

// UpsertUser returns the user with email, creating it on first sight.
func (s *Store) UpsertUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u := &models.User{}
	var first, last sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, first_name, last_name FROM users WHERE email = ?`, email,
	).Scan(&u.ID, &u.Email, &first, &last)
	if err == nil {
		u.FirstName, u.LastName = first.String, last.String
		return u, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u = &models.User{ID: uuid.New().String(), Email: email}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		u.ID, u.Email, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// CreateSession issues a new session token for userID.
func (s *Store) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
		token, userID, time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

// SessionUser resolves a session token. It returns ErrUnauthenticated for unknown tokens.
func (s *Store) SessionUser(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `SELECT user_id FROM sessions WHERE token = ?`, token).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("query session: %w", err)
	}
	return userID, nil
}

// --- Tasks ---

const taskColumns = `id, user_id, title, description, priority, status, category, due_date, completed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.BackendTask, error) {
	var bt models.BackendTask
	var desc, category sql.NullString
	var due, completed sql.NullTime
	if err := row.Scan(&bt.ID, &bt.UserID, &bt.Title, &desc, &bt.Priority, &bt.Status, &category, &due, &completed, &bt.CreatedAt, &bt.UpdatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		bt.Description = &desc.String
	}
	if category.Valid {
		bt.Category = &category.String
	}
	if due.Valid {
		bt.DueDate = &due.Time
	}
	if completed.Valid {
		bt.CompletedAt = &completed.Time
	}
	return &bt, nil
}

// ListTasks returns the user's tasks, oldest first.
func (s *Store) ListTasks(ctx context.Context, userID string) ([]models.BackendTask, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.BackendTask{}
	for rows.Next() {
		bt, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *bt)
	}
	return tasks, rows.Err()
}

// GetTask returns one of the user's tasks or ErrNotFound.
func (s *Store) GetTask(ctx context.Context, userID, id string) (*models.BackendTask, error) {
	bt, err := scanTask(s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return bt, nil
}

// CreateTask inserts bt, assigning id and timestamps.
func (s *Store) CreateTask(ctx context.Context, bt *models.BackendTask) error {
	now := time.Now().UTC()
	bt.ID = uuid.New().String()
	bt.CreatedAt = now
	bt.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bt.ID, bt.UserID, bt.Title, nullString(bt.Description), bt.Priority, bt.Status,
		nullString(bt.Category), nullTime(bt.DueDate), nullTime(bt.CompletedAt), bt.CreatedAt, bt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// SaveTask writes every mutable column of bt.
func (s *Store) SaveTask(ctx context.Context, bt *models.BackendTask) error {
	bt.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, category = ?,
			due_date = ?, completed_at = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		bt.Title, nullString(bt.Description), bt.Priority, bt.Status, nullString(bt.Category),
		nullTime(bt.DueDate), nullTime(bt.CompletedAt), bt.UpdatedAt, bt.ID, bt.UserID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes one of the user's tasks.
func (s *Store) DeleteTask(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountTasks returns the number of stored tasks per backend status.
func (s *Store) CountTasks(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// --- Chat ---

// ListMessages returns the user's chat history, oldest first.
func (s *Store) ListMessages(ctx context.Context, userID string) ([]models.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, message, response, created_at FROM chat_messages WHERE user_id = ? ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var resp sql.NullString
		if err := rows.Scan(&m.ID, &m.Message, &resp, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if resp.Valid {
			m.Response = &resp.String
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AddMessage stores a question with its response.
func (s *Store) AddMessage(ctx context.Context, userID, message string, response *string) (*models.ChatMessage, error) {
	m := &models.ChatMessage{
		ID:        uuid.New().String(),
		Message:   message,
		Response:  response,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_messages (id, user_id, message, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		m.ID, userID, m.Message, nullString(m.Response), m.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

// ClearMessages deletes the user's chat history.
func (s *Store) ClearMessages(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_messages WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
