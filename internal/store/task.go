package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/model"
)

type TaskStore struct {
	db DBTX
}

func NewTaskStore(db DBTX) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var completed int
	var completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.Title, &t.Category, &t.TokenReward,
		&completed, &t.AssignedTo, &t.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	t.IsCompleted = completed != 0
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

const taskCols = `id, title, category, token_reward, is_completed, assigned_to, created_at, completed_at`

// Create inserts a task. The token reward is copied from the category's
// fixed table at creation time.
func (s *TaskStore) Create(title string, category model.TaskCategory, assignedTo int64) (*model.Task, error) {
	result, err := s.db.Exec(
		`INSERT INTO tasks (title, category, token_reward, assigned_to) VALUES (?, ?, ?, ?)`,
		title, category, category.DefaultReward(), assignedTo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTask(id)
}

func (s *TaskStore) GetTask(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List() ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT ` + taskCols + ` FROM tasks ORDER BY is_completed ASC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func (s *TaskStore) ListTasksByUser(userID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE assigned_to = ? ORDER BY is_completed ASC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks by user: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// SetTaskCompletion flips completion state. completedAt must be non-nil
// exactly when completed is true.
func (s *TaskStore) SetTaskCompletion(id int64, completed bool, completedAt *time.Time) error {
	var c int
	if completed {
		c = 1
	}
	var at sql.NullTime
	if completedAt != nil {
		at = sql.NullTime{Time: completedAt.UTC(), Valid: true}
	}

	result, err := s.db.Exec(
		`UPDATE tasks SET is_completed = ?, completed_at = ? WHERE id = ?`,
		c, at, id,
	)
	if err != nil {
		return fmt.Errorf("set task completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d not found", id)
	}
	return nil
}

func (s *TaskStore) Update(id int64, title string, category model.TaskCategory, assignedTo int64) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, category = ?, token_reward = ?, assigned_to = ? WHERE id = ?`,
		title, category, category.DefaultReward(), assignedTo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetTask(id)
}

func (s *TaskStore) DeleteTask(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
