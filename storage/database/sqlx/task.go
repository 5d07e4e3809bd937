package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/trezcool/yuva/core/task"
)

const (
	taskTable         = "task"
	taskResponseTable = "task_response"
)

var (
	taskColumns = columns{
		"id", "title", "description", "assigner_id", "assignee_ids", "due_date", "created_at", "updated_at",
	}
	taskResponseColumns = columns{"id", "task_id", "responder_id", "status", "body", "created_at"}
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	t.ID = newID()
	if t.AssigneeIDs == nil {
		t.AssigneeIDs = pq.StringArray{}
	}
	if err := insertRow(ctx, repo.db, taskColumns, taskTable, t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (repo *taskRepository) GetTask(ctx context.Context, id string) (task.Task, error) {
	return getByID[task.Task](ctx, repo.db, taskColumns, taskTable, id, task.ErrNotFound)
}

func (repo *taskRepository) QueryTasks(ctx context.Context, filter *task.QueryFilter) ([]task.Task, error) {
	w := new(where)
	if filter.VisibleTo != "" {
		w.and("(assigner_id::text = ? OR ? = ANY(assignee_ids))", filter.VisibleTo, filter.VisibleTo)
	}
	if filter.AssigneeID != "" {
		w.and("? = ANY(assignee_ids)", filter.AssigneeID)
	}
	if !filter.From.IsZero() {
		w.and("due_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		w.and("due_date <= ?", filter.To)
	}
	return selectWhere[task.Task](ctx, repo.db, w, taskColumns.selectFrom(taskTable),
		"ORDER BY due_date NULLS LAST, created_at", "querying tasks")
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if err := updateRow(ctx, repo.db, taskColumns, taskTable, t, task.ErrNotFound); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTask also removes its responses (ON DELETE CASCADE).
func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, taskTable, id, task.ErrNotFound)
}

func (repo *taskRepository) CreateResponse(ctx context.Context, r task.Response) (task.Response, error) {
	r.ID = newID()
	if err := insertRow(ctx, repo.db, taskResponseColumns, taskResponseTable, r); err != nil {
		return task.Response{}, err
	}
	return r, nil
}

func (repo *taskRepository) QueryResponses(ctx context.Context, taskID string) ([]task.Response, error) {
	w := new(where)
	w.and("task_id::text = ?", taskID)
	return selectWhere[task.Response](ctx, repo.db, w, taskResponseColumns.selectFrom(taskResponseTable),
		"ORDER BY created_at", "querying task responses")
}
