// Package repository provides persistence for generated event plans.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventcraft_backend/platform/apperr"
)

const (
	eventNotFoundMessage = "Event not found"
	stepNotFoundMessage  = "Step not found"
)

// Event is a generated plan owned by one user.
type Event struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	EventType     string
	Prompt        string
	ChecklistJSON []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Task is one checklist step within an event.
type Task struct {
	ID                  uuid.UUID
	EventID             uuid.UUID
	StepTitle           string
	Description         string
	OrderNumber         int
	RefinementPrompt    *string
	MatchingProviderIDs []uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CreateEventParams holds the event row and its steps, persisted atomically.
type CreateEventParams struct {
	UserID        uuid.UUID
	EventType     string
	Prompt        string
	ChecklistJSON []byte
	Steps         []CreateTaskParams
}

// CreateTaskParams is one step of a new event plan.
type CreateTaskParams struct {
	StepTitle   string
	Description string
}

// Repository defines persistence operations for event plans.
type Repository interface {
	CreateEventWithTasks(ctx context.Context, params CreateEventParams) (Event, []Task, error)
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	GetEventForUser(ctx context.Context, id, userID uuid.UUID) (Event, error)
	ListEventsForUser(ctx context.Context, userID uuid.UUID) ([]Event, error)
	GetTaskInEvent(ctx context.Context, taskID, eventID uuid.UUID) (Task, error)
	ListTasks(ctx context.Context, eventID uuid.UUID) ([]Task, error)
	UpdateTaskRefinement(ctx context.Context, taskID uuid.UUID, description, refinementPrompt string) (Task, error)
	SetTaskMatches(ctx context.Context, taskID uuid.UUID, providerIDs []uuid.UUID) error
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new planner repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const eventColumns = `id, user_id, event_type, prompt, checklist_json, created_at, updated_at`

const taskColumns = `id, event_id, step_title, description, order_number, refinement_prompt, matching_provider_ids, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.UserID, &e.EventType, &e.Prompt, &e.ChecklistJSON, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.EventID, &t.StepTitle, &t.Description, &t.OrderNumber,
		&t.RefinementPrompt, &t.MatchingProviderIDs, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// CreateEventWithTasks persists an event and all of its steps in a single
// transaction. Either everything lands or nothing does.
func (r *Repo) CreateEventWithTasks(ctx context.Context, params CreateEventParams) (Event, []Task, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Event{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	eventQuery := `
		INSERT INTO events (user_id, event_type, prompt, checklist_json)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + eventColumns

	event, err := scanEvent(tx.QueryRow(ctx, eventQuery, params.UserID, params.EventType, params.Prompt, params.ChecklistJSON))
	if err != nil {
		return Event{}, nil, fmt.Errorf("insert event: %w", err)
	}

	taskQuery := `
		INSERT INTO tasks (event_id, step_title, description, order_number)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns

	tasks := make([]Task, 0, len(params.Steps))
	for i, step := range params.Steps {
		task, err := scanTask(tx.QueryRow(ctx, taskQuery, event.ID, step.StepTitle, step.Description, i+1))
		if err != nil {
			return Event{}, nil, fmt.Errorf("insert task %d: %w", i+1, err)
		}
		tasks = append(tasks, task)
	}

	if err := tx.Commit(ctx); err != nil {
		return Event{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	return event, tasks, nil
}

// GetEvent retrieves an event by ID.
func (r *Repo) GetEvent(ctx context.Context, id uuid.UUID) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, apperr.NotFound(eventNotFoundMessage)
		}
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// GetEventForUser retrieves an event scoped to its owner. A foreign event
// reads as not found.
func (r *Repo) GetEventForUser(ctx context.Context, id, userID uuid.UUID) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`

	e, err := scanEvent(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, apperr.NotFound(eventNotFoundMessage)
		}
		return Event{}, fmt.Errorf("get event for user: %w", err)
	}
	return e, nil
}

// ListEventsForUser returns a user's events, newest first.
func (r *Repo) ListEventsForUser(ctx context.Context, userID uuid.UUID) ([]Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// GetTaskInEvent retrieves a task scoped to its event. A task from another
// event reads as not found.
func (r *Repo) GetTaskInEvent(ctx context.Context, taskID, eventID uuid.UUID) (Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND event_id = $2`

	t, err := scanTask(r.pool.QueryRow(ctx, query, taskID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound(stepNotFoundMessage)
		}
		return Task{}, fmt.Errorf("get task in event: %w", err)
	}
	return t, nil
}

// ListTasks returns an event's tasks in checklist order.
func (r *Repo) ListTasks(ctx context.Context, eventID uuid.UUID) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE event_id = $1 ORDER BY order_number ASC`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskRefinement stores a refined description and the raw refinement
// prompt on a task.
func (r *Repo) UpdateTaskRefinement(ctx context.Context, taskID uuid.UUID, description, refinementPrompt string) (Task, error) {
	query := `
		UPDATE tasks
		SET description = $2, refinement_prompt = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + taskColumns

	t, err := scanTask(r.pool.QueryRow(ctx, query, taskID, description, refinementPrompt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, apperr.NotFound(stepNotFoundMessage)
		}
		return Task{}, fmt.Errorf("update task refinement: %w", err)
	}
	return t, nil
}

// SetTaskMatches records the matched provider IDs for a task.
func (r *Repo) SetTaskMatches(ctx context.Context, taskID uuid.UUID, providerIDs []uuid.UUID) error {
	query := `UPDATE tasks SET matching_provider_ids = $2, updated_at = now() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, taskID, providerIDs)
	if err != nil {
		return fmt.Errorf("set task matches: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(stepNotFoundMessage)
	}
	return nil
}
