package inmemdb

import (
	"context"

	"github.com/trezcool/yuva/core/task"
)

type taskRepository struct {
	db        *table[task.Task]
	responses *table[task.Response]
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.tasks, responses: db.taskResponses}
}

func (repo *taskRepository) CreateTask(_ context.Context, t task.Task) (task.Task, error) {
	t.ID = newID()
	repo.db.insert(t.ID, t)
	return t, nil
}

func (repo *taskRepository) GetTask(_ context.Context, id string) (task.Task, error) {
	if t, ok := repo.db.get(id); ok {
		return t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryTasks(_ context.Context, filter *task.QueryFilter) ([]task.Task, error) {
	rows := repo.db.filter(func(t task.Task) bool {
		if filter.VisibleTo != "" && !(t.AssignerID.String == filter.VisibleTo || t.AssignedTo(filter.VisibleTo)) {
			return false
		}
		if filter.AssigneeID != "" && !t.AssignedTo(filter.AssigneeID) {
			return false
		}
		if !filter.From.IsZero() && (t.DueDate.IsZero() || t.DueDate.Before(filter.From)) {
			return false
		}
		if !filter.To.IsZero() && (t.DueDate.IsZero() || t.DueDate.After(filter.To)) {
			return false
		}
		return true
	})
	return sorted(rows, func(a, b task.Task) bool {
		switch {
		case a.DueDate.IsZero() != b.DueDate.IsZero():
			return b.DueDate.IsZero()
		case !a.DueDate.Equal(b.DueDate):
			return a.DueDate.Before(b.DueDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

func (repo *taskRepository) UpdateTask(_ context.Context, t task.Task) (task.Task, error) {
	if !repo.db.update(t.ID, t) {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo *taskRepository) DeleteTask(_ context.Context, id string) error {
	if repo.db.delete(id) == 0 {
		return task.ErrNotFound
	}
	for _, r := range repo.responses.filter(func(r task.Response) bool { return r.TaskID == id }) {
		repo.responses.delete(r.ID)
	}
	return nil
}

func (repo *taskRepository) CreateResponse(_ context.Context, r task.Response) (task.Response, error) {
	r.ID = newID()
	repo.responses.insert(r.ID, r)
	return r, nil
}

func (repo *taskRepository) QueryResponses(_ context.Context, taskID string) ([]task.Response, error) {
	rows := repo.responses.filter(func(r task.Response) bool { return r.TaskID == taskID })
	return sorted(rows, func(a, b task.Response) bool { return a.CreatedAt.Before(b.CreatedAt) }), nil
}
